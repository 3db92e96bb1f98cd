package task

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-monolith/mono"
	"github.com/google/uuid"

	domain "github.com/FahimSaki/Momentum/domain/task"
	"github.com/FahimSaki/Momentum/events"
)

// createTask handles the create service request.
func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return TaskResponse{}, domain.ErrNameRequired
	}

	priority := domain.Priority(req.Priority)
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return TaskResponse{}, fmt.Errorf("invalid priority: %s", req.Priority)
	}

	assignmentType := domain.AssignmentType(req.AssignmentType)
	if assignmentType == "" {
		assignmentType = domain.AssignIndividual
	}

	// Creating into a team requires membership.
	if req.TeamID != "" {
		if _, member, err := m.teamPort.MemberRole(ctx, req.TeamID, req.ActorID); err != nil {
			return TaskResponse{}, fmt.Errorf("failed to check team membership: %w", err)
		} else if !member {
			return TaskResponse{}, domain.ErrForbidden
		}
	}

	assignees, err := m.resolveAssignees(ctx, &req, assignmentType)
	if err != nil {
		return TaskResponse{}, err
	}

	now := m.now().UTC()
	t := &domain.Task{
		ID:             uuid.New().String(),
		Name:           name,
		Description:    strings.TrimSpace(req.Description),
		AssignedTo:     assignees,
		AssignedBy:     req.ActorID,
		TeamID:         req.TeamID,
		AssignmentType: assignmentType,
		Priority:       priority,
		DueDate:        req.DueDate,
		Tags:           req.Tags,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := m.store.Create(ctx, t); err != nil {
		return TaskResponse{}, err
	}

	m.publishAssigned(t)
	return toTaskResponse(t), nil
}

// resolveAssignees expands the requested assignment into a concrete assignee
// set: team assignment covers every member, an empty request defaults to the
// creator, and every assignee must exist (and, for team tasks, be a member).
func (m *TaskModule) resolveAssignees(ctx context.Context, req *CreateTaskRequest, kind domain.AssignmentType) ([]string, error) {
	if kind == domain.AssignTeam && req.TeamID != "" {
		members, err := m.teamPort.ListMembers(ctx, req.TeamID)
		if err != nil {
			return nil, fmt.Errorf("failed to list team members: %w", err)
		}
		return members, nil
	}

	assignees := req.AssignedTo
	if len(assignees) == 0 {
		assignees = []string{req.ActorID}
	}

	if err := m.validateAssignees(ctx, req.TeamID, assignees); err != nil {
		return nil, err
	}
	return assignees, nil
}

// validateAssignees checks that every assignee exists and, for team tasks,
// belongs to the team. Shared by create and reassignment edits.
func (m *TaskModule) validateAssignees(ctx context.Context, teamID string, assignees []string) error {
	for _, id := range assignees {
		valid, err := m.teamPort.ValidateUser(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to validate assignee: %w", err)
		}
		if !valid {
			return fmt.Errorf("unknown assignee: %s", id)
		}
		if teamID != "" {
			if _, member, err := m.teamPort.MemberRole(ctx, teamID, id); err != nil {
				return fmt.Errorf("failed to check assignee membership: %w", err)
			} else if !member {
				return domain.ErrInvalidAssignment
			}
		}
	}
	return nil
}

// getTask handles the get service request. Visible to assignees, the creator
// and fellow team members.
func (m *TaskModule) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.store.FindByID(ctx, req.TaskID)
	if err != nil {
		return TaskResponse{}, err
	}
	if !m.canView(ctx, t, req.ActorID) {
		return TaskResponse{}, domain.ErrForbidden
	}
	return toTaskResponse(t), nil
}

// listTasks handles the list service request.
func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	tasks, err := m.store.FindByAssignee(ctx, req.ActorID, req.TeamID, req.Kind)
	if err != nil {
		return ListTasksResponse{}, err
	}

	resp := ListTasksResponse{Tasks: make([]TaskResponse, 0, len(tasks)), Total: len(tasks)}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, toTaskResponse(t))
	}
	return resp, nil
}

// updateTask handles the update service request. Basic fields may be edited
// by the creator, an assignee or a team owner/admin; assignment-affecting
// fields only by the creator or a team owner/admin.
func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	current, err := m.store.FindByID(ctx, req.TaskID)
	if err != nil {
		return TaskResponse{}, err
	}

	canManage := m.canManage(ctx, current, req.ActorID)
	canEdit := canManage || current.IsAssignee(req.ActorID)
	if !canEdit {
		return TaskResponse{}, domain.ErrForbidden
	}

	touchesAssignment := req.AssignedTo != nil || req.Priority != nil || req.DueDate != nil
	if touchesAssignment && !canManage {
		return TaskResponse{}, domain.ErrForbidden
	}

	if req.Priority != nil && !domain.ValidPriority(domain.Priority(*req.Priority)) {
		return TaskResponse{}, fmt.Errorf("invalid priority: %s", *req.Priority)
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return TaskResponse{}, domain.ErrNameRequired
	}
	if req.AssignedTo != nil {
		if len(*req.AssignedTo) == 0 {
			return TaskResponse{}, fmt.Errorf("assignee set must not be empty")
		}
		if err := m.validateAssignees(ctx, current.TeamID, *req.AssignedTo); err != nil {
			return TaskResponse{}, err
		}
	}

	updated, err := m.store.UpdateWithRetry(ctx, req.TaskID, func(t *domain.Task) error {
		if req.Name != nil {
			t.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			t.Description = strings.TrimSpace(*req.Description)
		}
		if req.Tags != nil {
			t.Tags = *req.Tags
		}
		if req.AssignedTo != nil {
			t.AssignedTo = *req.AssignedTo
		}
		if req.Priority != nil {
			t.Priority = domain.Priority(*req.Priority)
		}
		if req.DueDate != nil {
			t.DueDate = req.DueDate
		}
		return nil
	})
	if err != nil {
		return TaskResponse{}, err
	}
	return toTaskResponse(updated), nil
}

// toggleComplete handles the toggle-complete service request. The whole
// mutation runs through a compare-and-set loop so two assignees toggling the
// same task concurrently never lose each other's completion records.
func (m *TaskModule) toggleComplete(ctx context.Context, req ToggleCompleteRequest, _ *mono.Msg) (TaskResponse, error) {
	now := m.now()
	completedNow := false

	t, err := m.store.UpdateWithRetry(ctx, req.TaskID, func(t *domain.Task) error {
		completedNow = false
		if req.Completed {
			changed, err := t.Complete(req.ActorID, now)
			completedNow = changed
			return err
		}
		_, err := t.Uncomplete(req.ActorID, now)
		return err
	})
	if err != nil {
		return TaskResponse{}, err
	}

	if completedNow {
		m.publishCompleted(t, req.ActorID, now)
	}
	return toTaskResponse(t), nil
}

// deleteTask handles the delete service request. Completion days are merged
// into every assignee's history before the task is removed; a failed merge is
// logged but never blocks the deletion.
func (m *TaskModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	t, err := m.store.FindByID(ctx, req.TaskID)
	if err != nil {
		return DeleteTaskResponse{}, err
	}
	if !m.canManage(ctx, t, req.ActorID) {
		return DeleteTaskResponse{}, domain.ErrForbidden
	}

	if err := m.history.Preserve(ctx, t.AssignedTo, t.Name, t.TeamID, t.CompletedDays); err != nil {
		log.Printf("[task] History merge failed for task %s (continuing with delete): %v", t.ID, err)
	}

	if err := m.store.Delete(ctx, req.TaskID); err != nil {
		return DeleteTaskResponse{}, err
	}

	m.publishDeleted(t, req.ActorID)
	return DeleteTaskResponse{Deleted: true}, nil
}

// stats handles the stats service request (dashboard counts).
func (m *TaskModule) stats(ctx context.Context, req StatsRequest, _ *mono.Msg) (StatsResponse, error) {
	kind := "all"
	if req.TeamID != "" {
		kind = "team"
	}
	tasks, err := m.store.FindByAssignee(ctx, req.ActorID, req.TeamID, kind)
	if err != nil {
		return StatsResponse{}, err
	}

	today := domain.Day(m.now())
	weekAhead := today.Add(7 * 24 * time.Hour)

	var resp StatsResponse
	for _, t := range tasks {
		if !t.IsArchived {
			resp.TotalTasks++
		}
		if t.HasDay(today) {
			resp.CompletedToday++
		}
		if t.DueDate != nil && !t.IsArchived {
			if t.DueDate.Before(today) {
				resp.OverdueTasks++
			} else if !t.DueDate.After(weekAhead) {
				resp.UpcomingTasks++
			}
		}
	}
	return resp, nil
}

// canManage reports whether userID may delete the task or edit its
// assignment details: the creator always can, and for team tasks so can an
// owner or admin.
func (m *TaskModule) canManage(ctx context.Context, t *domain.Task, userID string) bool {
	if t.AssignedBy == userID {
		return true
	}
	if !t.IsTeamTask() {
		return false
	}
	role, member, err := m.teamPort.MemberRole(ctx, t.TeamID, userID)
	if err != nil {
		log.Printf("[task] Role lookup failed for team %s: %v", t.TeamID, err)
		return false
	}
	return member && role.CanManageTasks()
}

// canView reports whether userID may read the task.
func (m *TaskModule) canView(ctx context.Context, t *domain.Task, userID string) bool {
	if t.AssignedBy == userID || t.IsAssignee(userID) {
		return true
	}
	if !t.IsTeamTask() {
		return false
	}
	_, member, err := m.teamPort.MemberRole(ctx, t.TeamID, userID)
	if err != nil {
		log.Printf("[task] Role lookup failed for team %s: %v", t.TeamID, err)
		return false
	}
	return member
}

func (m *TaskModule) publishAssigned(t *domain.Task) {
	if m.eventBus == nil {
		return
	}
	event := events.TaskAssignedEvent{
		TaskID:      t.ID,
		Name:        t.Name,
		AssignerID:  t.AssignedBy,
		AssigneeIDs: t.AssignedTo,
		TeamID:      t.TeamID,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
	}
	if err := events.TaskAssignedV1.Publish(m.eventBus, event, nil); err != nil {
		log.Printf("[task] Warning: failed to publish TaskAssigned event for task %s: %v", t.ID, err)
	}
}

func (m *TaskModule) publishCompleted(t *domain.Task, actorID string, now time.Time) {
	if m.eventBus == nil {
		return
	}
	event := events.TaskCompletedEvent{
		TaskID:      t.ID,
		Name:        t.Name,
		CompletedBy: actorID,
		AssignerID:  t.AssignedBy,
		TeamID:      t.TeamID,
		Day:         domain.Day(now),
		CompletedAt: now.UTC(),
	}
	if err := events.TaskCompletedV1.Publish(m.eventBus, event, nil); err != nil {
		log.Printf("[task] Warning: failed to publish TaskCompleted event for task %s: %v", t.ID, err)
	}
}

func (m *TaskModule) publishDeleted(t *domain.Task, actorID string) {
	if m.eventBus == nil {
		return
	}
	event := events.TaskDeletedEvent{
		TaskID:      t.ID,
		Name:        t.Name,
		DeletedBy:   actorID,
		AssigneeIDs: t.AssignedTo,
		DeletedAt:   m.now().UTC(),
	}
	if err := events.TaskDeletedV1.Publish(m.eventBus, event, nil); err != nil {
		log.Printf("[task] Warning: failed to publish TaskDeleted event for task %s: %v", t.ID, err)
	}
}
