package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Store provides access to task storage.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new task store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create saves a new task.
func (s *Store) Create(ctx context.Context, t *Task) error {
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindByID retrieves a task by ID.
func (s *Store) FindByID(ctx context.Context, id string) (*Task, error) {
	var t Task
	if err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &t, nil
}

// SaveCAS persists t only if its version column still matches the version the
// task was loaded with. On success the in-memory version is advanced; a stale
// version returns ErrVersionConflict and the caller is expected to reload.
func (s *Store) SaveCAS(ctx context.Context, t *Task) error {
	loaded := t.Version
	t.Version = loaded + 1
	t.UpdatedAt = time.Now().UTC()

	result := s.db.WithContext(ctx).
		Model(&Task{}).
		Where("id = ? AND version = ?", t.ID, loaded).
		Select("*").
		Omit("created_at").
		Updates(t)
	if err := result.Error; err != nil {
		t.Version = loaded
		return fmt.Errorf("failed to save task: %w", err)
	}
	if result.RowsAffected == 0 {
		t.Version = loaded
		return ErrVersionConflict
	}
	return nil
}

// UpdateWithRetry loads the task, applies mutate and saves with a version
// check, retrying a few times on concurrent modification. The task returned
// is the state that was persisted.
func (s *Store) UpdateWithRetry(ctx context.Context, id string, mutate func(*Task) error) (*Task, error) {
	const attempts = 3
	for i := 0; i < attempts; i++ {
		t, err := s.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := mutate(t); err != nil {
			return nil, err
		}
		err = s.SaveCAS(ctx, t)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, ErrVersionConflict
}

// Delete hard-deletes a task by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&Task{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByAssignee retrieves tasks assigned to userID, optionally narrowed to a
// team ("team" kind), to personal tasks only ("personal"), or everything
// ("all"). Assignees are stored as a JSON array of user IDs, so membership is
// matched on the quoted ID.
func (s *Store) FindByAssignee(ctx context.Context, userID, teamID, kind string) ([]*Task, error) {
	q := s.db.WithContext(ctx).Where(`assigned_to LIKE ?`, `%"`+userID+`"%`)

	switch kind {
	case "personal":
		q = q.Where("team_id = ?", "")
	case "team":
		q = q.Where("team_id = ?", teamID)
	}

	var tasks []*Task
	if err := q.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// FindByTeam retrieves a team's tasks, filtered by archival status
// ("active", "archived" or "all").
func (s *Store) FindByTeam(ctx context.Context, teamID, status string) ([]*Task, error) {
	q := s.db.WithContext(ctx).Where("team_id = ?", teamID)
	switch status {
	case "active":
		q = q.Where("is_archived = ?", false)
	case "archived":
		q = q.Where("is_archived = ?", true)
	}

	var tasks []*Task
	if err := q.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list team tasks: %w", err)
	}
	return tasks, nil
}

// FindAll retrieves every task. Used by the cleanup pipeline's pruning stage.
func (s *Store) FindAll(ctx context.Context) ([]*Task, error) {
	var tasks []*Task
	if err := s.db.WithContext(ctx).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// FindDueOn retrieves active tasks whose due date falls on the given calendar
// day. Used for due-date reminders.
func (s *Store) FindDueOn(ctx context.Context, day time.Time) ([]*Task, error) {
	start := Day(day)
	end := start.Add(24 * time.Hour)

	var tasks []*Task
	err := s.db.WithContext(ctx).
		Where("is_archived = ? AND due_date >= ? AND due_date < ?", false, start, end).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due tasks: %w", err)
	}
	return tasks, nil
}

// ArchiveCompletedBefore archives every unarchived task whose last completion
// is strictly before cutoff. Returns the number of tasks archived. This is
// stage 1 of the cleanup pipeline: a task completed today was already
// archived synchronously by Complete and is never touched here.
func (s *Store) ArchiveCompletedBefore(ctx context.Context, cutoff, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&Task{}).
		Where("is_archived = ? AND last_completed_date IS NOT NULL AND last_completed_date < ?", false, cutoff).
		Updates(map[string]any{
			"is_archived": true,
			"archived_at": now.UTC(),
			"updated_at":  now.UTC(),
		})
	if err := result.Error; err != nil {
		return 0, fmt.Errorf("failed to archive tasks: %w", err)
	}
	return result.RowsAffected, nil
}

// FindArchivedBefore retrieves archived tasks whose archival moment is
// strictly before cutoff, i.e. tasks archived on a prior day that have aged
// past the one-day grace window.
func (s *Store) FindArchivedBefore(ctx context.Context, cutoff time.Time) ([]*Task, error) {
	var tasks []*Task
	err := s.db.WithContext(ctx).
		Where("is_archived = ? AND archived_at IS NOT NULL AND archived_at < ?", true, cutoff).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find archived tasks: %w", err)
	}
	return tasks, nil
}

// CountOverdue counts active tasks for userID with a due date before cutoff.
func (s *Store) CountOverdue(ctx context.Context, userID string, cutoff time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&Task{}).
		Where(`assigned_to LIKE ? AND is_archived = ? AND due_date IS NOT NULL AND due_date < ?`,
			`%"`+userID+`"%`, false, cutoff).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count overdue tasks: %w", err)
	}
	return n, nil
}
