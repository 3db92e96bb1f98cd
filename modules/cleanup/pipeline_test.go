package cleanup

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	historydomain "github.com/FahimSaki/Momentum/domain/history"
	domain "github.com/FahimSaki/Momentum/domain/task"
)

// setupTestPipeline creates a pipeline over an in-memory SQLite database with
// a fixed clock.
func setupTestPipeline(t *testing.T, now time.Time) (*Pipeline, *domain.Store, *historydomain.Store) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&domain.Task{}, &historydomain.Record{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	tasks := domain.NewStore(db)
	histories := historydomain.NewStore(db)
	p := NewPipeline(tasks, histories)
	p.now = func() time.Time { return now }
	return p, tasks, histories
}

func mustRun(t *testing.T, p *Pipeline) Result {
	t.Helper()
	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Status != "completed" {
		t.Fatalf("Run() status = %q (%s)", result.Status, result.Error)
	}
	return result
}

func TestPipeline_ArchivesStaleCompletedTasks(t *testing.T) {
	// Task completed yesterday but left unarchived (e.g. written by an older
	// deployment). The next run archives it.
	runAt := time.Date(2026, 8, 27, 0, 5, 0, 0, time.UTC)
	p, tasks, _ := setupTestPipeline(t, runAt)
	ctx := context.Background()

	yesterday := domain.Day(runAt).Add(-24 * time.Hour)
	if err := tasks.Create(ctx, &domain.Task{
		ID: "stale", Name: "Stale", AssignedTo: []string{"user-1"},
		LastCompletedDate: &yesterday,
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	result := mustRun(t, p)
	if result.ArchivedCount != 1 {
		t.Errorf("ArchivedCount = %d, want 1", result.ArchivedCount)
	}

	archived, err := tasks.FindByID(ctx, "stale")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if !archived.IsArchived {
		t.Error("expected stale task to be archived")
	}
}

func TestPipeline_DeletesAgedArchivedTasks(t *testing.T) {
	runAt := time.Date(2026, 8, 27, 0, 5, 0, 0, time.UTC)
	p, tasks, histories := setupTestPipeline(t, runAt)
	ctx := context.Background()

	yesterday := domain.Day(runAt).Add(-24 * time.Hour)
	completedAt := yesterday.Add(14 * time.Hour)

	task := &domain.Task{
		ID: "aged", Name: "Water plants",
		AssignedTo: []string{"user-1", "user-2"}, TeamID: "team-1",
	}
	if _, err := task.Complete("user-1", completedAt); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if err := tasks.Create(ctx, task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	result := mustRun(t, p)
	if result.DeletedCount != 1 {
		t.Errorf("DeletedCount = %d, want 1", result.DeletedCount)
	}

	if _, err := tasks.FindByID(ctx, "aged"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected aged task to be deleted, got err = %v", err)
	}

	// History is preserved for every assignee, not just the completer.
	for _, userID := range []string{"user-1", "user-2"} {
		records, err := histories.FindByUser(ctx, userID)
		if err != nil {
			t.Fatalf("FindByUser(%s) error = %v", userID, err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 history record for %s, got %d", userID, len(records))
		}
		if len(records[0].CompletedDays) != 1 || !domain.SameDay(records[0].CompletedDays[0], completedAt) {
			t.Errorf("expected %s's history to hold the completion day", userID)
		}
	}
}

func TestPipeline_GraceWindowBoundary(t *testing.T) {
	runAt := time.Date(2026, 8, 27, 0, 5, 0, 0, time.UTC)
	p, tasks, _ := setupTestPipeline(t, runAt)
	ctx := context.Background()

	midnight := domain.Day(runAt)
	lateYesterday := midnight.Add(-time.Millisecond)
	justAfterMidnight := midnight.Add(time.Millisecond)

	if err := tasks.Create(ctx, &domain.Task{
		ID: "expired", Name: "Expired", AssignedTo: []string{"user-1"},
		IsArchived: true, ArchivedAt: &lateYesterday,
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := tasks.Create(ctx, &domain.Task{
		ID: "protected", Name: "Protected", AssignedTo: []string{"user-1"},
		IsArchived: true, ArchivedAt: &justAfterMidnight,
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	result := mustRun(t, p)
	if result.DeletedCount != 1 {
		t.Errorf("DeletedCount = %d, want 1", result.DeletedCount)
	}

	if _, err := tasks.FindByID(ctx, "expired"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected task archived before midnight to be deleted, got err = %v", err)
	}
	if _, err := tasks.FindByID(ctx, "protected"); err != nil {
		t.Errorf("expected task archived today to survive the grace window: %v", err)
	}
}

func TestPipeline_PrunesOldCompletionDays(t *testing.T) {
	runAt := time.Date(2026, 8, 27, 0, 5, 0, 0, time.UTC)
	p, tasks, histories := setupTestPipeline(t, runAt)
	ctx := context.Background()

	today := domain.Day(runAt)
	yesterday := today.Add(-24 * time.Hour)
	lastWeek := today.Add(-7 * 24 * time.Hour)

	// Active task carrying old days alongside today's completion.
	if err := tasks.Create(ctx, &domain.Task{
		ID: "habit", Name: "Daily stretch", AssignedTo: []string{"user-1"},
		CompletedDays: []time.Time{lastWeek, yesterday, today},
		CompletedBy: []domain.Completion{
			{UserID: "user-1", CompletedAt: lastWeek.Add(8 * time.Hour)},
			{UserID: "user-1", CompletedAt: yesterday.Add(8 * time.Hour)},
			{UserID: "user-1", CompletedAt: today.Add(time.Minute)},
		},
		LastCompletedDate: &today,
		IsArchived:        true, ArchivedAt: &runAt,
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	result := mustRun(t, p)
	if result.CleanedCount != 1 {
		t.Errorf("CleanedCount = %d, want 1", result.CleanedCount)
	}

	pruned, err := tasks.FindByID(ctx, "habit")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if len(pruned.CompletedDays) != 1 || !domain.SameDay(pruned.CompletedDays[0], today) {
		t.Errorf("expected only today's day to remain, got %v", pruned.CompletedDays)
	}
	if len(pruned.CompletedBy) != 1 {
		t.Errorf("expected only today's completion record to remain, got %d", len(pruned.CompletedBy))
	}

	records, err := histories.FindByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("FindByUser() error = %v", err)
	}
	if len(records) != 1 || len(records[0].CompletedDays) != 2 {
		t.Fatalf("expected the 2 old days in history, got %v", records)
	}
}

func TestPipeline_RunLock(t *testing.T) {
	runAt := time.Date(2026, 8, 27, 0, 5, 0, 0, time.UTC)
	p, _, _ := setupTestPipeline(t, runAt)

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.Run(context.Background()); !errors.Is(err, ErrPipelineRunning) {
		t.Errorf("Run() while locked error = %v, want ErrPipelineRunning", err)
	}
}

func TestPipeline_StageErrorBecomesFailedResult(t *testing.T) {
	runAt := time.Date(2026, 8, 27, 0, 5, 0, 0, time.UTC)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&domain.Task{}, &historydomain.Record{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	p := NewPipeline(domain.NewStore(db), historydomain.NewStore(db))
	p.now = func() time.Time { return runAt }

	// Poison the connection so the archive stage errors.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("failed to close database: %v", err)
	}

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() must not propagate stage errors, got %v", err)
	}
	if result.Status != "failed" {
		t.Errorf("Status = %q, want failed", result.Status)
	}
	if result.Error == "" {
		t.Error("expected the stage error in the result")
	}
	if result.ProcessedDate != "2026-08-27" {
		t.Errorf("ProcessedDate = %q, want 2026-08-27", result.ProcessedDate)
	}
	if !result.Timestamp.Equal(runAt) {
		t.Errorf("Timestamp = %v, want %v", result.Timestamp, runAt)
	}
}

func TestPipeline_PanicBecomesFailedResult(t *testing.T) {
	runAt := time.Date(2026, 8, 27, 0, 5, 0, 0, time.UTC)

	// A nil gorm handle panics on first use; the run barrier must turn that
	// into a failed result instead of letting it escape to the scheduler.
	p := NewPipeline(domain.NewStore(nil), historydomain.NewStore(nil))
	p.now = func() time.Time { return runAt }

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() must not propagate panics as errors, got %v", err)
	}
	if result.Status != "failed" {
		t.Errorf("Status = %q, want failed", result.Status)
	}
	if !strings.Contains(result.Error, "panic") {
		t.Errorf("expected panic to be recorded in the result, got %q", result.Error)
	}
}

func TestPipeline_ResultMetadata(t *testing.T) {
	runAt := time.Date(2026, 8, 27, 0, 5, 0, 0, time.UTC)
	p, _, _ := setupTestPipeline(t, runAt)

	result := mustRun(t, p)
	if result.ProcessedDate != "2026-08-27" {
		t.Errorf("ProcessedDate = %q, want 2026-08-27", result.ProcessedDate)
	}
	if !result.Timestamp.Equal(runAt) {
		t.Errorf("Timestamp = %v, want %v", result.Timestamp, runAt)
	}
	if result.Error != "" {
		t.Errorf("expected empty error, got %q", result.Error)
	}
}
