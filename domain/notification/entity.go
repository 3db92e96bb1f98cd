// Package notification provides the in-app notification record kept alongside
// best-effort push delivery.
package notification

import "time"

// Type identifies what a notification is about.
type Type string

const (
	TypeTaskAssigned    Type = "task_assigned"
	TypeTaskCompleted   Type = "task_completed"
	TypeTaskDueReminder Type = "task_due_reminder"
)

// Notification is one in-app message for a recipient.
type Notification struct {
	ID          string    `gorm:"primarykey;size:36" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	RecipientID string    `gorm:"size:36;index;not null" json:"recipient_id"`
	SenderID    string    `gorm:"size:36" json:"sender_id,omitempty"`
	TaskID      string    `gorm:"size:36" json:"task_id,omitempty"`
	TeamID      string    `gorm:"size:36" json:"team_id,omitempty"`
	Type        Type      `gorm:"size:32;not null" json:"type"`
	Title       string    `gorm:"size:200" json:"title"`
	Message     string    `gorm:"size:500" json:"message"`
	Read        bool      `gorm:"index" json:"read"`
}

// TableName returns the table name for the Notification model.
func (Notification) TableName() string {
	return "notifications"
}
