// Package events defines the typed domain events exchanged between modules.
package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// TaskAssignedEvent is emitted when a task is created and assigned.
type TaskAssignedEvent struct {
	TaskID      string     `json:"task_id"`
	Name        string     `json:"name"`
	AssignerID  string     `json:"assigner_id"`
	AssigneeIDs []string   `json:"assignee_ids"`
	TeamID      string     `json:"team_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TaskAssignedV1 is the typed event definition for task assignment.
// Subject: events.task.v1.task-assigned
var TaskAssignedV1 = helper.EventDefinition[TaskAssignedEvent](
	"task", "TaskAssigned", "v1",
)

// TaskCompletedEvent is emitted when an assignee marks a task done for a day.
type TaskCompletedEvent struct {
	TaskID      string    `json:"task_id"`
	Name        string    `json:"name"`
	CompletedBy string    `json:"completed_by"`
	AssignerID  string    `json:"assigner_id"`
	TeamID      string    `json:"team_id,omitempty"`
	Day         time.Time `json:"day"`
	CompletedAt time.Time `json:"completed_at"`
}

// TaskCompletedV1 is the typed event definition for task completion.
// Subject: events.task.v1.task-completed
var TaskCompletedV1 = helper.EventDefinition[TaskCompletedEvent](
	"task", "TaskCompleted", "v1",
)

// TaskDeletedEvent is emitted after a user hard-deletes a task. AssigneeIDs
// lets consumers invalidate per-user derived state such as the heatmap cache.
// Bulk deletions by the cleanup pipeline are announced through
// CleanupCompletedEvent instead.
type TaskDeletedEvent struct {
	TaskID      string    `json:"task_id"`
	Name        string    `json:"name"`
	DeletedBy   string    `json:"deleted_by,omitempty"`
	AssigneeIDs []string  `json:"assignee_ids"`
	DeletedAt   time.Time `json:"deleted_at"`
}

// TaskDeletedV1 is the typed event definition for task deletion.
// Subject: events.task.v1.task-deleted
var TaskDeletedV1 = helper.EventDefinition[TaskDeletedEvent](
	"task", "TaskDeleted", "v1",
)

// CleanupCompletedEvent is emitted after every cleanup pipeline run,
// successful or not.
type CleanupCompletedEvent struct {
	ArchivedCount int       `json:"archived_count"`
	DeletedCount  int       `json:"deleted_count"`
	CleanedCount  int       `json:"cleaned_count"`
	ProcessedDate string    `json:"processed_date"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
}

// CleanupCompletedV1 is the typed event definition for cleanup runs.
// Subject: events.cleanup.v1.cleanup-completed
var CleanupCompletedV1 = helper.EventDefinition[CleanupCompletedEvent](
	"cleanup", "CleanupCompleted", "v1",
)
