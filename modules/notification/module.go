// Package notification turns task events into in-app notifications and
// best-effort pushes, sends due-date reminders, and purges old records.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/robfig/cron/v3"

	domain "github.com/FahimSaki/Momentum/domain/notification"
	taskdomain "github.com/FahimSaki/Momentum/domain/task"
	"github.com/FahimSaki/Momentum/events"
)

const (
	reminderSchedule = "0 9 * * *"
	purgeSchedule    = "0 2 * * 0"
	retention        = 30 * 24 * time.Hour
)

// NotificationModule consumes task events and owns the notification table.
type NotificationModule struct {
	store  *domain.Store
	tasks  *taskdomain.Store
	pusher Pusher
	cron   *cron.Cron
	now    func() time.Time
}

var _ mono.Module = (*NotificationModule)(nil)
var _ mono.ServiceProviderModule = (*NotificationModule)(nil)
var _ mono.EventConsumerModule = (*NotificationModule)(nil)

// NewModule creates a new NotificationModule backed by the shared stores.
func NewModule(store *domain.Store, tasks *taskdomain.Store, pusher Pusher) *NotificationModule {
	return &NotificationModule{
		store:  store,
		tasks:  tasks,
		pusher: pusher,
		cron:   cron.New(cron.WithLocation(time.UTC)),
		now:    time.Now,
	}
}

// Name returns the module name.
func (m *NotificationModule) Name() string {
	return "notification"
}

// RegisterServices registers request-reply services in the service container.
func (m *NotificationModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list", json.Unmarshal, json.Marshal, m.list,
	); err != nil {
		return fmt.Errorf("failed to register list service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "mark-read", json.Unmarshal, json.Marshal, m.markRead,
	); err != nil {
		return fmt.Errorf("failed to register mark-read service: %w", err)
	}

	log.Printf("[notification] Registered services: list, mark-read")
	return nil
}

// RegisterEventConsumers subscribes to task lifecycle events.
func (m *NotificationModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskAssignedV1, m.handleTaskAssigned, m); err != nil {
		return fmt.Errorf("failed to register TaskAssigned consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCompletedV1, m.handleTaskCompleted, m); err != nil {
		return fmt.Errorf("failed to register TaskCompleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.CleanupCompletedV1, m.handleCleanupCompleted, m); err != nil {
		return fmt.Errorf("failed to register CleanupCompleted consumer: %w", err)
	}

	log.Printf("[notification] Registered event consumers: TaskAssigned, TaskCompleted, CleanupCompleted")
	return nil
}

// list handles the list service request.
func (m *NotificationModule) list(ctx context.Context, req ListRequest, _ *mono.Msg) (ListResponse, error) {
	notifications, err := m.store.ListByRecipient(ctx, req.RecipientID, req.UnreadOnly, req.Limit)
	if err != nil {
		return ListResponse{}, err
	}

	resp := ListResponse{Notifications: make([]*domain.Notification, 0, len(notifications))}
	resp.Notifications = append(resp.Notifications, notifications...)
	resp.Total = len(resp.Notifications)
	return resp, nil
}

// markRead handles the mark-read service request.
func (m *NotificationModule) markRead(ctx context.Context, req MarkReadRequest, _ *mono.Msg) (MarkReadResponse, error) {
	if err := m.store.MarkRead(ctx, req.RecipientID, req.NotificationID); err != nil {
		return MarkReadResponse{}, err
	}
	return MarkReadResponse{Updated: true}, nil
}

func (m *NotificationModule) handleTaskAssigned(ctx context.Context, event events.TaskAssignedEvent, _ *mono.Msg) error {
	recipients := excluding(event.AssigneeIDs, event.AssignerID)
	if len(recipients) == 0 {
		return nil
	}

	m.fanout(ctx, recipients, domain.Notification{
		SenderID: event.AssignerID,
		TaskID:   event.TaskID,
		TeamID:   event.TeamID,
		Type:     domain.TypeTaskAssigned,
		Title:    "New task assigned",
		Message:  fmt.Sprintf("You were assigned %q", event.Name),
	})
	return nil
}

func (m *NotificationModule) handleTaskCompleted(ctx context.Context, event events.TaskCompletedEvent, _ *mono.Msg) error {
	if event.AssignerID == "" || event.AssignerID == event.CompletedBy {
		return nil
	}

	m.fanout(ctx, []string{event.AssignerID}, domain.Notification{
		SenderID: event.CompletedBy,
		TaskID:   event.TaskID,
		TeamID:   event.TeamID,
		Type:     domain.TypeTaskCompleted,
		Title:    "Task completed",
		Message:  fmt.Sprintf("%q was completed", event.Name),
	})
	return nil
}

func (m *NotificationModule) handleCleanupCompleted(_ context.Context, event events.CleanupCompletedEvent, _ *mono.Msg) error {
	log.Printf("[notification] Cleanup run for %s finished with status %s", event.ProcessedDate, event.Status)
	return nil
}

// remindDue notifies every assignee of a task due today.
func (m *NotificationModule) remindDue() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	due, err := m.tasks.FindDueOn(ctx, m.now())
	if err != nil {
		log.Printf("[notification] Due-date reminder query failed: %v", err)
		return
	}

	for _, t := range due {
		m.fanout(ctx, t.AssignedTo, domain.Notification{
			TaskID:  t.ID,
			TeamID:  t.TeamID,
			Type:    domain.TypeTaskDueReminder,
			Title:   "Task due today",
			Message: fmt.Sprintf("%q is due today", t.Name),
		})
	}
	if len(due) > 0 {
		log.Printf("[notification] Sent due-date reminders for %d tasks", len(due))
	}
}

// purgeOld removes notifications past the retention window.
func (m *NotificationModule) purgeOld() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	n, err := m.store.DeleteOlderThan(ctx, m.now().Add(-retention))
	if err != nil {
		log.Printf("[notification] Purge failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[notification] Purged %d old notifications", n)
	}
}

// Start initializes the pusher and installs the reminder and purge schedules.
func (m *NotificationModule) Start(_ context.Context) error {
	if err := m.pusher.Init(); err != nil {
		log.Printf("[notification] Pusher init failed, continuing without push delivery: %v", err)
	}

	if _, err := m.cron.AddFunc(reminderSchedule, m.remindDue); err != nil {
		return fmt.Errorf("invalid reminder schedule: %w", err)
	}
	if _, err := m.cron.AddFunc(purgeSchedule, m.purgeOld); err != nil {
		return fmt.Errorf("invalid purge schedule: %w", err)
	}
	m.cron.Start()

	log.Println("[notification] Module started")
	return nil
}

// Stop halts the schedulers.
func (m *NotificationModule) Stop(ctx context.Context) error {
	stopped := m.cron.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
	}
	log.Println("[notification] Module stopped")
	return nil
}
