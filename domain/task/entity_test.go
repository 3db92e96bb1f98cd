package task

import (
	"errors"
	"testing"
	"time"
)

func newTestTask(assignees ...string) *Task {
	return &Task{
		ID:         "task-1",
		Name:       "Water plants",
		AssignedTo: assignees,
		AssignedBy: assignees[0],
	}
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("UTC+6", 6*3600)
	moment := time.Date(2026, 8, 27, 3, 15, 0, 0, loc)

	day := Day(moment)
	want := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)
	if !day.Equal(want) {
		t.Errorf("Day() = %v, want %v", day, want)
	}

	if !SameDay(moment, time.Date(2026, 8, 26, 23, 0, 0, 0, time.UTC)) {
		t.Error("expected moments on the same UTC day to match")
	}
	if SameDay(moment, time.Date(2026, 8, 27, 1, 0, 0, 0, time.UTC)) {
		t.Error("expected moments on different UTC days not to match")
	}
}

func TestComplete(t *testing.T) {
	now := time.Date(2026, 8, 27, 14, 30, 0, 0, time.UTC)

	t.Run("first completion archives the task", func(t *testing.T) {
		task := newTestTask("user-1")

		changed, err := task.Complete("user-1", now)
		if err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		if !changed {
			t.Error("expected first completion to report a change")
		}
		if !task.IsArchived {
			t.Error("expected task to be archived after completion")
		}
		if task.ArchivedAt == nil {
			t.Error("expected archivedAt to be set")
		}
		if len(task.CompletedDays) != 1 || !task.HasDay(now) {
			t.Errorf("expected one completion day for today, got %v", task.CompletedDays)
		}
		if task.LastCompletedDate == nil || !SameDay(*task.LastCompletedDate, now) {
			t.Errorf("expected lastCompletedDate = today, got %v", task.LastCompletedDate)
		}
	})

	t.Run("idempotent per user and day", func(t *testing.T) {
		task := newTestTask("user-1")

		if _, err := task.Complete("user-1", now); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		changed, err := task.Complete("user-1", now.Add(2*time.Hour))
		if err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		if changed {
			t.Error("expected repeat completion to be a no-op")
		}
		if len(task.CompletedBy) != 1 {
			t.Errorf("expected one completion record, got %d", len(task.CompletedBy))
		}
		if len(task.CompletedDays) != 1 {
			t.Errorf("expected one completion day, got %d", len(task.CompletedDays))
		}
	})

	t.Run("second assignee shares the day entry", func(t *testing.T) {
		task := newTestTask("user-1", "user-2")

		if _, err := task.Complete("user-1", now); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		changed, err := task.Complete("user-2", now.Add(time.Hour))
		if err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		if !changed {
			t.Error("expected second assignee's completion to report a change")
		}
		if len(task.CompletedDays) != 1 {
			t.Errorf("expected the day entry to be shared, got %d entries", len(task.CompletedDays))
		}
		if len(task.CompletedBy) != 2 {
			t.Errorf("expected two completion records, got %d", len(task.CompletedBy))
		}
	})

	t.Run("non-assignee is rejected", func(t *testing.T) {
		task := newTestTask("user-1")

		if _, err := task.Complete("user-9", now); !errors.Is(err, ErrNotAssignee) {
			t.Errorf("Complete() error = %v, want ErrNotAssignee", err)
		}
	})
}

func TestUncomplete(t *testing.T) {
	now := time.Date(2026, 8, 27, 14, 30, 0, 0, time.UTC)

	t.Run("sole completion returns task to active", func(t *testing.T) {
		task := newTestTask("user-1")
		if _, err := task.Complete("user-1", now); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}

		changed, err := task.Uncomplete("user-1", now.Add(time.Hour))
		if err != nil {
			t.Fatalf("Uncomplete() error = %v", err)
		}
		if !changed {
			t.Error("expected uncomplete to report a change")
		}
		if task.IsArchived {
			t.Error("expected task to return to active")
		}
		if task.ArchivedAt != nil {
			t.Error("expected archivedAt to be cleared")
		}
		if len(task.CompletedDays) != 0 {
			t.Errorf("expected no completion days, got %v", task.CompletedDays)
		}
		if task.LastCompletedDate != nil {
			t.Errorf("expected lastCompletedDate cleared, got %v", task.LastCompletedDate)
		}
	})

	t.Run("teammate's completion keeps the day and archival", func(t *testing.T) {
		task := newTestTask("user-1", "user-2")
		if _, err := task.Complete("user-1", now); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		if _, err := task.Complete("user-2", now); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}

		if _, err := task.Uncomplete("user-1", now.Add(time.Hour)); err != nil {
			t.Fatalf("Uncomplete() error = %v", err)
		}
		if !task.HasDay(now) {
			t.Error("expected the shared day entry to survive")
		}
		if !task.IsArchived {
			t.Error("expected task to stay archived while a teammate remains completed")
		}
		if !task.CompletedByUserOn("user-2", now) {
			t.Error("expected user-2's completion record to survive")
		}
		if task.CompletedByUserOn("user-1", now) {
			t.Error("expected user-1's completion record to be removed")
		}
	})

	t.Run("lastCompletedDate falls back to prior day", func(t *testing.T) {
		yesterday := now.Add(-24 * time.Hour)
		task := newTestTask("user-1")
		if _, err := task.Complete("user-1", yesterday); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		if _, err := task.Complete("user-1", now); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}

		if _, err := task.Uncomplete("user-1", now); err != nil {
			t.Fatalf("Uncomplete() error = %v", err)
		}
		if task.LastCompletedDate == nil || !SameDay(*task.LastCompletedDate, yesterday) {
			t.Errorf("expected lastCompletedDate = yesterday, got %v", task.LastCompletedDate)
		}
		if task.IsArchived {
			t.Error("expected task to return to active, yesterday's completion does not archive")
		}
	})

	t.Run("no record for today is a no-op", func(t *testing.T) {
		task := newTestTask("user-1")
		if _, err := task.Complete("user-1", now.Add(-24*time.Hour)); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}

		changed, err := task.Uncomplete("user-1", now)
		if err != nil {
			t.Fatalf("Uncomplete() error = %v", err)
		}
		if changed {
			t.Error("expected uncomplete without a record for today to be a no-op")
		}
		if !task.HasDay(now.Add(-24 * time.Hour)) {
			t.Error("expected yesterday's completion to survive")
		}
	})
}
