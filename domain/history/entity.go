// Package history provides the durable completion ledger that survives task
// deletion. Records accumulate per (user, task-name) pair across re-creations
// of a same-named task and are never pruned by the service itself.
package history

import (
	"time"

	"gorm.io/datatypes"
)

// Record is the append-and-deduplicate ledger of completion days for one
// (user, task-name) pair. It carries no reference back to any task: deleting
// a task can never orphan its history.
type Record struct {
	ID        string    `gorm:"primarykey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID   string `gorm:"size:36;not null;uniqueIndex:idx_history_user_task" json:"user_id"`
	TaskName string `gorm:"size:200;not null;uniqueIndex:idx_history_user_task" json:"task_name"`
	// TeamID is a denormalized display tag; it is set on first merge and kept
	// thereafter.
	TeamID string `gorm:"size:36;index" json:"team_id,omitempty"`

	CompletedDays datatypes.JSONSlice[time.Time] `json:"completed_days"`
}

// TableName returns the table name for the Record model.
func (Record) TableName() string {
	return "task_histories"
}

// MergeDays unions days into the record, deduplicating by UTC timestamp.
// Existing dates are never removed, so merging is idempotent.
func (r *Record) MergeDays(days []time.Time) {
	seen := make(map[string]struct{}, len(r.CompletedDays)+len(days))
	merged := make([]time.Time, 0, len(r.CompletedDays)+len(days))
	for _, d := range r.CompletedDays {
		key := d.UTC().Format(time.RFC3339Nano)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, d)
	}
	for _, d := range days {
		key := d.UTC().Format(time.RFC3339Nano)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, d.UTC())
	}
	r.CompletedDays = merged
}
