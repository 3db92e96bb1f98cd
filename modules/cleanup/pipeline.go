package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/FahimSaki/Momentum/domain/history"
	domain "github.com/FahimSaki/Momentum/domain/task"
)

// ErrPipelineRunning is returned when a run is requested while another run
// holds the pipeline lock.
var ErrPipelineRunning = errors.New("cleanup pipeline already running")

// Result summarizes one pipeline run.
type Result struct {
	ArchivedCount int       `json:"archived_count"`
	DeletedCount  int       `json:"deleted_count"`
	CleanedCount  int       `json:"cleaned_count"`
	ProcessedDate string    `json:"processed_date"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Pipeline runs the three-stage daily maintenance pass over the task table:
// archive stale completed tasks, delete aged archived tasks after preserving
// their history, and prune old completion days out of live tasks. At most one
// run executes at a time.
type Pipeline struct {
	tasks   *domain.Store
	history *history.Store
	now     func() time.Time
	mu      sync.Mutex
}

// NewPipeline creates a Pipeline over the shared stores.
func NewPipeline(tasks *domain.Store, historyStore *history.Store) *Pipeline {
	return &Pipeline{tasks: tasks, history: historyStore, now: time.Now}
}

// Run executes one pipeline pass. A second caller arriving while a run is in
// flight gets ErrPipelineRunning instead of queueing behind it.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	if !p.mu.TryLock() {
		return Result{}, ErrPipelineRunning
	}
	defer p.mu.Unlock()

	return p.run(ctx), nil
}

// run executes the three stages. A panic in any stage is converted into a
// failed Result so the scheduler survives a bad run.
func (p *Pipeline) run(ctx context.Context) (result Result) {
	now := p.now().UTC()
	today := domain.Day(now)

	result = Result{
		ProcessedDate: today.Format("2006-01-02"),
		Timestamp:     now,
		Status:        "completed",
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[cleanup] Pipeline panicked: %v", r)
			result.Status = "failed"
			result.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	log.Printf("[cleanup] Pipeline starting for %s", result.ProcessedDate)

	archived, err := p.archiveStale(ctx, today, now)
	result.ArchivedCount = archived
	if err != nil {
		result.Status = "failed"
		result.Error = err.Error()
		return result
	}

	deleted, err := p.deleteAged(ctx, today)
	result.DeletedCount = deleted
	if err != nil {
		result.Status = "failed"
		result.Error = err.Error()
		return result
	}

	cleaned, err := p.pruneOldDays(ctx, today)
	result.CleanedCount = cleaned
	if err != nil {
		result.Status = "failed"
		result.Error = err.Error()
		return result
	}

	log.Printf("[cleanup] Pipeline finished for %s: archived=%d deleted=%d cleaned=%d",
		result.ProcessedDate, archived, deleted, cleaned)
	return result
}

// archiveStale is stage 1: any unarchived task whose last completion day is
// before today gets archived. Tasks completed today stay as they are.
func (p *Pipeline) archiveStale(ctx context.Context, today, now time.Time) (int, error) {
	n, err := p.tasks.ArchiveCompletedBefore(ctx, today, now)
	if err != nil {
		return 0, fmt.Errorf("archive stage: %w", err)
	}
	return int(n), nil
}

// deleteAged is stage 2: archived tasks whose archival moment predates today
// have aged past the grace window and are deleted, after their completion
// days are merged into every assignee's history. A task that cannot have its
// history preserved is kept for the next run rather than deleted.
func (p *Pipeline) deleteAged(ctx context.Context, today time.Time) (int, error) {
	aged, err := p.tasks.FindArchivedBefore(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("delete stage: %w", err)
	}

	deleted := 0
	for _, t := range aged {
		if err := p.history.Preserve(ctx, t.AssignedTo, t.Name, t.TeamID, t.CompletedDays); err != nil {
			log.Printf("[cleanup] Skipping delete of task %s, history merge failed: %v", t.ID, err)
			continue
		}
		if err := p.tasks.Delete(ctx, t.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			log.Printf("[cleanup] Failed to delete task %s: %v", t.ID, err)
			continue
		}
		deleted++
	}
	return deleted, nil
}

// pruneOldDays is stage 3: completion days before today are moved out of live
// tasks into history, keeping the task rows small. Today's completions stay
// on the task so the one-day grace window holds.
func (p *Pipeline) pruneOldDays(ctx context.Context, today time.Time) (int, error) {
	all, err := p.tasks.FindAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("prune stage: %w", err)
	}

	cleaned := 0
	for _, t := range all {
		oldDays, _ := partitionDays(t.CompletedDays, today)
		if len(oldDays) == 0 {
			continue
		}

		if err := p.history.Preserve(ctx, t.AssignedTo, t.Name, t.TeamID, oldDays); err != nil {
			log.Printf("[cleanup] Skipping prune of task %s, history merge failed: %v", t.ID, err)
			continue
		}

		_, err := p.tasks.UpdateWithRetry(ctx, t.ID, func(t *domain.Task) error {
			_, keep := partitionDays(t.CompletedDays, today)
			t.CompletedDays = keep
			t.CompletedBy = keepCompletionsOn(t.CompletedBy, today)
			return nil
		})
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			log.Printf("[cleanup] Failed to prune task %s: %v", t.ID, err)
			continue
		}
		cleaned++
	}
	return cleaned, nil
}

// partitionDays splits days into those before today and those on or after it.
func partitionDays(days []time.Time, today time.Time) (old, keep []time.Time) {
	for _, d := range days {
		if domain.Day(d).Before(today) {
			old = append(old, d)
		} else {
			keep = append(keep, d)
		}
	}
	return old, keep
}

// keepCompletionsOn drops completion records from days before today.
func keepCompletionsOn(completions []domain.Completion, today time.Time) []domain.Completion {
	keep := completions[:0]
	for _, c := range completions {
		if !domain.Day(c.CompletedAt).Before(today) {
			keep = append(keep, c)
		}
	}
	return keep
}
