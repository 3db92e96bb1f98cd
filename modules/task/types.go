package task

import (
	"context"
	"time"

	domain "github.com/FahimSaki/Momentum/domain/task"
)

// CreateTaskRequest is the tagged input record for creating a task. Optional
// fields are validated at this boundary before a Task entity is constructed.
type CreateTaskRequest struct {
	ActorID        string     `json:"actor_id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	AssignedTo     []string   `json:"assigned_to,omitempty"`
	TeamID         string     `json:"team_id,omitempty"`
	Priority       string     `json:"priority,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	AssignmentType string     `json:"assignment_type,omitempty"`
}

// GetTaskRequest is the request for getting a task.
type GetTaskRequest struct {
	TaskID  string `json:"task_id"`
	ActorID string `json:"actor_id"`
}

// ListTasksRequest is the request for listing the acting user's tasks.
// Kind narrows the listing to "personal" or "team" tasks; the default is all
// tasks assigned to the user.
type ListTasksRequest struct {
	ActorID string `json:"actor_id"`
	TeamID  string `json:"team_id,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

// ListTasksResponse is the response for listing tasks.
type ListTasksResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int            `json:"total"`
}

// UpdateTaskRequest is the request for editing a task. Nil fields are left
// untouched. Assignment-affecting fields (assignees, priority, due date) are
// restricted to the task's creator and team owners/admins.
type UpdateTaskRequest struct {
	TaskID      string     `json:"task_id"`
	ActorID     string     `json:"actor_id"`
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Tags        *[]string  `json:"tags,omitempty"`
	AssignedTo  *[]string  `json:"assigned_to,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// ToggleCompleteRequest is the request for the completion toggle.
type ToggleCompleteRequest struct {
	TaskID    string `json:"task_id"`
	ActorID   string `json:"actor_id"`
	Completed bool   `json:"completed"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	TaskID  string `json:"task_id"`
	ActorID string `json:"actor_id"`
}

// DeleteTaskResponse is the response for deleting a task.
type DeleteTaskResponse struct {
	Deleted bool `json:"deleted"`
}

// StatsRequest is the request for dashboard counts.
type StatsRequest struct {
	ActorID string `json:"actor_id"`
	TeamID  string `json:"team_id,omitempty"`
}

// StatsResponse carries the dashboard counts for a user.
type StatsResponse struct {
	TotalTasks     int `json:"total_tasks"`
	CompletedToday int `json:"completed_today"`
	OverdueTasks   int `json:"overdue_tasks"`
	UpcomingTasks  int `json:"upcoming_tasks"`
}

// CompletionView is one assignee's completion record in transport form.
type CompletionView struct {
	UserID      string    `json:"user_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// TaskResponse is the transport form of a task.
type TaskResponse struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Description       string           `json:"description,omitempty"`
	AssignedTo        []string         `json:"assigned_to"`
	AssignedBy        string           `json:"assigned_by"`
	TeamID            string           `json:"team_id,omitempty"`
	AssignmentType    string           `json:"assignment_type"`
	Priority          string           `json:"priority"`
	DueDate           *time.Time       `json:"due_date,omitempty"`
	Tags              []string         `json:"tags,omitempty"`
	CompletedDays     []time.Time      `json:"completed_days"`
	CompletedBy       []CompletionView `json:"completed_by"`
	LastCompletedDate *time.Time       `json:"last_completed_date,omitempty"`
	IsArchived        bool             `json:"is_archived"`
	ArchivedAt        *time.Time       `json:"archived_at,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// toTaskResponse converts a domain Task to its transport form.
func toTaskResponse(t *domain.Task) TaskResponse {
	completions := make([]CompletionView, 0, len(t.CompletedBy))
	for _, c := range t.CompletedBy {
		completions = append(completions, CompletionView{UserID: c.UserID, CompletedAt: c.CompletedAt})
	}
	return TaskResponse{
		ID:                t.ID,
		Name:              t.Name,
		Description:       t.Description,
		AssignedTo:        t.AssignedTo,
		AssignedBy:        t.AssignedBy,
		TeamID:            t.TeamID,
		AssignmentType:    string(t.AssignmentType),
		Priority:          string(t.Priority),
		DueDate:           t.DueDate,
		Tags:              t.Tags,
		CompletedDays:     t.CompletedDays,
		CompletedBy:       completions,
		LastCompletedDate: t.LastCompletedDate,
		IsArchived:        t.IsArchived,
		ArchivedAt:        t.ArchivedAt,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

// TaskPort defines the interface for task operations (hexagonal port).
type TaskPort interface {
	CreateTask(ctx context.Context, req *CreateTaskRequest) (*TaskResponse, error)
	GetTask(ctx context.Context, taskID, actorID string) (*TaskResponse, error)
	ListTasks(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error)
	UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*TaskResponse, error)
	ToggleComplete(ctx context.Context, req *ToggleCompleteRequest) (*TaskResponse, error)
	DeleteTask(ctx context.Context, taskID, actorID string) error
	Stats(ctx context.Context, actorID, teamID string) (*StatsResponse, error)
}
