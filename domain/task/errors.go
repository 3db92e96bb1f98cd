package task

import "errors"

var (
	// ErrNotFound indicates the task was not found.
	ErrNotFound = errors.New("task not found")
	// ErrNameRequired indicates a task was submitted without a name.
	ErrNameRequired = errors.New("task name is required")
	// ErrNotAssignee indicates the acting user is not assigned to the task.
	ErrNotAssignee = errors.New("user is not assigned to this task")
	// ErrForbidden indicates the acting user lacks permission for the operation.
	ErrForbidden = errors.New("operation not permitted")
	// ErrVersionConflict indicates a concurrent modification was detected.
	ErrVersionConflict = errors.New("task was modified concurrently")
	// ErrInvalidAssignment indicates an assignee is not a member of the task's team.
	ErrInvalidAssignment = errors.New("assignee is not a member of the team")
)
