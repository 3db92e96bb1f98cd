// Package history serves per-user completion heatmaps. A heatmap merges the
// preserved history records with the live completion records of tasks still
// in the active table, so deleting or archiving a task never dents the graph.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	domain "github.com/FahimSaki/Momentum/domain/history"
	taskdomain "github.com/FahimSaki/Momentum/domain/task"
	"github.com/FahimSaki/Momentum/events"
)

// HistoryModule provides the heatmap service and keeps the cache coherent by
// consuming task lifecycle events.
type HistoryModule struct {
	store *domain.Store
	tasks *taskdomain.Store
	cache *Cache
}

var _ mono.Module = (*HistoryModule)(nil)
var _ mono.ServiceProviderModule = (*HistoryModule)(nil)
var _ mono.EventConsumerModule = (*HistoryModule)(nil)

// NewModule creates a new HistoryModule backed by the shared stores.
func NewModule(store *domain.Store, tasks *taskdomain.Store, cache *Cache) *HistoryModule {
	return &HistoryModule{store: store, tasks: tasks, cache: cache}
}

// Name returns the module name.
func (m *HistoryModule) Name() string {
	return "history"
}

// RegisterServices registers request-reply services in the service container.
func (m *HistoryModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "heatmap", json.Unmarshal, json.Marshal, m.heatmap,
	); err != nil {
		return fmt.Errorf("failed to register heatmap service: %w", err)
	}

	log.Printf("[history] Registered services: heatmap")
	return nil
}

// RegisterEventConsumers subscribes to the task events that change heatmaps.
func (m *HistoryModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCompletedV1, m.handleTaskCompleted, m); err != nil {
		return fmt.Errorf("failed to register TaskCompleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.CleanupCompletedV1, m.handleCleanupCompleted, m); err != nil {
		return fmt.Errorf("failed to register CleanupCompleted consumer: %w", err)
	}

	log.Printf("[history] Registered event consumers: TaskCompleted, TaskDeleted, CleanupCompleted")
	return nil
}

// heatmap handles the heatmap service request.
func (m *HistoryModule) heatmap(ctx context.Context, req HeatmapRequest, _ *mono.Msg) (HeatmapResponse, error) {
	resp, err := m.cache.GetOrCompute(ctx, req.UserID, req.TeamID, func(ctx context.Context) (*HeatmapResponse, error) {
		return m.computeHeatmap(ctx, req.UserID, req.TeamID)
	})
	if err != nil {
		return HeatmapResponse{}, err
	}
	return *resp, nil
}

// computeHeatmap counts completions per calendar day from preserved history
// records plus the live tasks the user is assigned to.
func (m *HistoryModule) computeHeatmap(ctx context.Context, userID, teamID string) (*HeatmapResponse, error) {
	counts := make(map[time.Time]int)

	records, err := m.store.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history records: %w", err)
	}
	for _, r := range records {
		if teamID != "" && r.TeamID != teamID {
			continue
		}
		for _, d := range r.CompletedDays {
			counts[taskdomain.Day(d)]++
		}
	}

	kind := "all"
	if teamID != "" {
		kind = "team"
	}
	tasks, err := m.tasks.FindByAssignee(ctx, userID, teamID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load live tasks: %w", err)
	}
	for _, t := range tasks {
		for _, c := range t.CompletedBy {
			if c.UserID == userID {
				counts[taskdomain.Day(c.CompletedAt)]++
			}
		}
	}

	entries := make([]HeatmapEntry, 0, len(counts))
	for day, n := range counts {
		entries = append(entries, HeatmapEntry{Day: day, Count: n})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Day.Before(entries[j].Day) })

	return &HeatmapResponse{UserID: userID, Entries: entries}, nil
}

func (m *HistoryModule) handleTaskCompleted(ctx context.Context, event events.TaskCompletedEvent, _ *mono.Msg) error {
	m.cache.Invalidate(ctx, event.CompletedBy)
	return nil
}

func (m *HistoryModule) handleTaskDeleted(ctx context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	for _, id := range event.AssigneeIDs {
		m.cache.Invalidate(ctx, id)
	}
	return nil
}

func (m *HistoryModule) handleCleanupCompleted(ctx context.Context, event events.CleanupCompletedEvent, _ *mono.Msg) error {
	if event.Status != "completed" {
		return nil
	}
	log.Printf("[history] Cleanup run processed %s, flushing heatmap cache", event.ProcessedDate)
	m.cache.Flush(ctx)
	return nil
}

// Start logs cache availability.
func (m *HistoryModule) Start(_ context.Context) error {
	if m.cache.Enabled() {
		log.Println("[history] Module started (cache: redis)")
	} else {
		log.Println("[history] Module started (cache: disabled)")
	}
	return nil
}

// Stop releases the cache connection.
func (m *HistoryModule) Stop(_ context.Context) error {
	if err := m.cache.Close(); err != nil {
		log.Printf("[history] Failed to close cache: %v", err)
	}
	log.Println("[history] Module stopped")
	return nil
}
