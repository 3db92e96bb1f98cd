// Package cleanup schedules and exposes the daily task maintenance pipeline.
package cleanup

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/robfig/cron/v3"

	"github.com/FahimSaki/Momentum/events"
)

// Runs a few minutes past UTC midnight so every clock source agrees the day
// has rolled over.
const defaultSchedule = "5 0 * * *"

// CleanupModule schedules the pipeline and exposes it as a service for
// manual admin triggers.
type CleanupModule struct {
	pipeline *Pipeline
	cron     *cron.Cron
	eventBus mono.EventBus
	schedule string
}

var _ mono.Module = (*CleanupModule)(nil)
var _ mono.ServiceProviderModule = (*CleanupModule)(nil)
var _ mono.EventEmitterModule = (*CleanupModule)(nil)

// NewModule creates a new CleanupModule around the pipeline. The schedule can
// be overridden with the CLEANUP_SCHEDULE environment variable.
func NewModule(pipeline *Pipeline) *CleanupModule {
	schedule := os.Getenv("CLEANUP_SCHEDULE")
	if schedule == "" {
		schedule = defaultSchedule
	}
	return &CleanupModule{
		pipeline: pipeline,
		cron:     cron.New(cron.WithLocation(time.UTC)),
		schedule: schedule,
	}
}

// Name returns the module name.
func (m *CleanupModule) Name() string {
	return "cleanup"
}

// SetEventBus receives the application event bus.
func (m *CleanupModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module publishes.
func (m *CleanupModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.CleanupCompletedV1.ToBase(),
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *CleanupModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "run", json.Unmarshal, json.Marshal, m.runPipeline,
	); err != nil {
		return fmt.Errorf("failed to register run service: %w", err)
	}

	log.Printf("[cleanup] Registered services: run")
	return nil
}

// runPipeline handles the run service request (manual trigger).
func (m *CleanupModule) runPipeline(ctx context.Context, _ RunRequest, _ *mono.Msg) (Result, error) {
	result, err := m.pipeline.Run(ctx)
	if err != nil {
		return Result{}, err
	}
	m.publishResult(result)
	return result, nil
}

// scheduledRun is the cron entry point. Errors are logged, never propagated;
// the next tick gets a fresh attempt.
func (m *CleanupModule) scheduledRun() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result, err := m.pipeline.Run(ctx)
	if err != nil {
		log.Printf("[cleanup] Scheduled run skipped: %v", err)
		return
	}
	m.publishResult(result)
}

func (m *CleanupModule) publishResult(result Result) {
	if m.eventBus == nil {
		return
	}
	event := events.CleanupCompletedEvent{
		ArchivedCount: result.ArchivedCount,
		DeletedCount:  result.DeletedCount,
		CleanedCount:  result.CleanedCount,
		ProcessedDate: result.ProcessedDate,
		Status:        result.Status,
		Timestamp:     result.Timestamp,
	}
	if err := events.CleanupCompletedV1.Publish(m.eventBus, event, nil); err != nil {
		log.Printf("[cleanup] Warning: failed to publish CleanupCompleted event: %v", err)
	}
}

// Start installs the cron schedule.
func (m *CleanupModule) Start(_ context.Context) error {
	if _, err := m.cron.AddFunc(m.schedule, m.scheduledRun); err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", m.schedule, err)
	}
	m.cron.Start()
	log.Printf("[cleanup] Module started (schedule: %s UTC)", m.schedule)
	return nil
}

// Stop halts the scheduler, waiting for an in-flight run to finish.
func (m *CleanupModule) Stop(ctx context.Context) error {
	stopped := m.cron.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
		log.Println("[cleanup] Shutdown deadline reached before scheduled run finished")
	}
	log.Println("[cleanup] Module stopped")
	return nil
}
