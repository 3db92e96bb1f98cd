// Package team holds the membership state the task core consults for
// authorization. Account management itself lives outside this service; the
// tables here are read-mostly collaborator state.
package team

import (
	"time"

	"gorm.io/datatypes"
)

// Role is a member's role within a team.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// CanManageTasks reports whether the role may edit assignment details and
// delete other members' tasks.
func (r Role) CanManageTasks() bool {
	return r == RoleOwner || r == RoleAdmin
}

// User is the minimal account projection needed for assignment validation.
type User struct {
	ID        string    `gorm:"primarykey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:200;uniqueIndex" json:"email"`
}

// TableName returns the table name for the User model.
func (User) TableName() string {
	return "users"
}

// Member is one user's membership in a team.
type Member struct {
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
	InvitedBy string    `json:"invited_by,omitempty"`
}

// Team groups users for shared task assignment.
type Team struct {
	ID        string                      `gorm:"primarykey;size:36" json:"id"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`
	Name      string                      `gorm:"size:100;not null" json:"name"`
	OwnerID   string                      `gorm:"size:36;index" json:"owner_id"`
	Members   datatypes.JSONSlice[Member] `json:"members"`
}

// TableName returns the table name for the Team model.
func (Team) TableName() string {
	return "teams"
}

// MemberRole returns the role of userID in the team, if they are a member.
func (t *Team) MemberRole(userID string) (Role, bool) {
	for _, m := range t.Members {
		if m.UserID == userID {
			return m.Role, true
		}
	}
	return "", false
}

// MemberIDs returns the IDs of every member.
func (t *Team) MemberIDs() []string {
	ids := make([]string, 0, len(t.Members))
	for _, m := range t.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}
