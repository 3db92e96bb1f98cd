// Package task provides the core domain entity for tracked tasks and the
// state machine governing completion and archival.
package task

import (
	"time"

	"gorm.io/datatypes"
)

// Priority represents how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ValidPriority reports whether p is one of the known priority levels.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// AssignmentType describes how a task was assigned.
type AssignmentType string

const (
	AssignIndividual AssignmentType = "individual"
	AssignMultiple   AssignmentType = "multiple"
	AssignTeam       AssignmentType = "team"
)

// Completion records one assignee marking the task done. At most one live
// record exists per assignee per calendar day.
type Completion struct {
	UserID      string    `json:"user_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// Task is the unit of work being tracked. A task is Active while nobody has
// completed it today and Archived from the moment any assignee records a
// completion for the current day; the daily cleanup pipeline eventually
// deletes archived tasks after preserving their completion history.
type Task struct {
	ID          string    `gorm:"primarykey;size:36" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Description string    `gorm:"size:1000" json:"description,omitempty"`

	// Assignment
	AssignedTo     datatypes.JSONSlice[string] `json:"assigned_to"`
	AssignedBy     string                      `gorm:"size:36;index" json:"assigned_by"`
	TeamID         string                      `gorm:"size:36;index" json:"team_id,omitempty"`
	AssignmentType AssignmentType              `gorm:"size:16;default:individual" json:"assignment_type"`

	// Scheduling metadata
	Priority Priority                    `gorm:"size:16;default:medium" json:"priority"`
	DueDate  *time.Time                  `gorm:"index" json:"due_date,omitempty"`
	Tags     datatypes.JSONSlice[string] `json:"tags,omitempty"`

	// Completion tracking. CompletedDays holds one entry per calendar day the
	// task was marked done, regardless of how many assignees completed it.
	CompletedDays     datatypes.JSONSlice[time.Time]  `json:"completed_days"`
	CompletedBy       datatypes.JSONSlice[Completion] `json:"completed_by"`
	LastCompletedDate *time.Time                      `gorm:"index" json:"last_completed_date,omitempty"`

	// Archival state
	IsArchived bool       `gorm:"index" json:"is_archived"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`

	// Version supports compare-and-set updates so concurrent toggles from
	// different assignees never lose completion records.
	Version int `gorm:"not null;default:0" json:"-"`
}

// TableName returns the table name for the Task model.
func (Task) TableName() string {
	return "tasks"
}

// IsAssignee reports whether userID is in the task's assignee set.
func (t *Task) IsAssignee(userID string) bool {
	for _, id := range t.AssignedTo {
		if id == userID {
			return true
		}
	}
	return false
}

// IsTeamTask reports whether the task belongs to a team.
func (t *Task) IsTeamTask() bool {
	return t.TeamID != ""
}

// HasDay reports whether the completion-dates set contains day.
func (t *Task) HasDay(day time.Time) bool {
	for _, d := range t.CompletedDays {
		if SameDay(d, day) {
			return true
		}
	}
	return false
}

// CompletedBySomeoneOn reports whether any assignee has a completion record
// for the given calendar day.
func (t *Task) CompletedBySomeoneOn(day time.Time) bool {
	for _, c := range t.CompletedBy {
		if SameDay(c.CompletedAt, day) {
			return true
		}
	}
	return false
}

// CompletedByUserOn reports whether userID has a completion record for day.
func (t *Task) CompletedByUserOn(userID string, day time.Time) bool {
	for _, c := range t.CompletedBy {
		if c.UserID == userID && SameDay(c.CompletedAt, day) {
			return true
		}
	}
	return false
}

// Complete marks the task done by userID for the calendar day of now.
//
// It is idempotent: completing twice for the same user and day is a no-op and
// returns changed=false. On the first completion of a day the day is appended
// to the completion-dates set, lastCompletedDate advances, and the task
// transitions to Archived.
func (t *Task) Complete(userID string, now time.Time) (changed bool, err error) {
	if !t.IsAssignee(userID) {
		return false, ErrNotAssignee
	}

	day := Day(now)
	if t.CompletedByUserOn(userID, day) {
		return false, nil
	}

	if !t.HasDay(day) {
		t.CompletedDays = append(t.CompletedDays, day)
	}
	t.CompletedBy = append(t.CompletedBy, Completion{
		UserID:      userID,
		CompletedAt: now.UTC(),
	})

	last := day
	t.LastCompletedDate = &last

	archivedAt := now.UTC()
	t.IsArchived = true
	t.ArchivedAt = &archivedAt
	return true, nil
}

// Uncomplete removes userID's completion record for the calendar day of now.
//
// The shared day entry is only removed from the completion-dates set when no
// other assignee still has a completion for that day; a teammate's mark must
// survive. The task returns to Active when nobody remains completed for
// today.
func (t *Task) Uncomplete(userID string, now time.Time) (changed bool, err error) {
	if !t.IsAssignee(userID) {
		return false, ErrNotAssignee
	}

	day := Day(now)
	kept := make([]Completion, 0, len(t.CompletedBy))
	removed := false
	for _, c := range t.CompletedBy {
		if c.UserID == userID && SameDay(c.CompletedAt, day) {
			removed = true
			continue
		}
		kept = append(kept, c)
	}
	if !removed {
		return false, nil
	}
	t.CompletedBy = kept

	if !t.CompletedBySomeoneOn(day) {
		days := make([]time.Time, 0, len(t.CompletedDays))
		for _, d := range t.CompletedDays {
			if !SameDay(d, day) {
				days = append(days, d)
			}
		}
		t.CompletedDays = days
	}

	t.recomputeLastCompleted()

	if !t.CompletedBySomeoneOn(Day(now)) {
		t.IsArchived = false
		t.ArchivedAt = nil
	}
	return true, nil
}

// recomputeLastCompleted derives lastCompletedDate as the maximum remaining
// completion day, or clears it when none remain.
func (t *Task) recomputeLastCompleted() {
	if len(t.CompletedDays) == 0 {
		t.LastCompletedDate = nil
		return
	}
	max := t.CompletedDays[0]
	for _, d := range t.CompletedDays[1:] {
		if d.After(max) {
			max = d
		}
	}
	max = Day(max)
	t.LastCompletedDate = &max
}
