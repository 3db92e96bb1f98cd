// Package task is the core domain module: task CRUD, the per-user completion
// toggle, and history preservation on delete.
package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/FahimSaki/Momentum/domain/history"
	domain "github.com/FahimSaki/Momentum/domain/task"
	"github.com/FahimSaki/Momentum/events"
	"github.com/FahimSaki/Momentum/modules/team"
)

// TaskModule provides task management services.
type TaskModule struct {
	store    *domain.Store
	history  *history.Store
	teamPort team.TeamPort
	eventBus mono.EventBus
	now      func() time.Time
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.DependentModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)

// NewModule creates a new TaskModule backed by the shared stores.
func NewModule(store *domain.Store, historyStore *history.Store) *TaskModule {
	return &TaskModule{
		store:   store,
		history: historyStore,
		now:     time.Now,
	}
}

// Name returns the module name.
func (m *TaskModule) Name() string {
	return "task"
}

// Dependencies returns the list of module dependencies.
func (m *TaskModule) Dependencies() []string {
	return []string{"team"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *TaskModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "team" {
		m.teamPort = team.NewTeamAdapter(container)
	}
}

// SetEventBus receives the application event bus.
func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module publishes.
func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskAssignedV1.ToBase(),
		events.TaskCompletedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	services := []struct {
		name string
		reg  func() error
	}{
		{"create", func() error {
			return helper.RegisterTypedRequestReplyService(container, "create", json.Unmarshal, json.Marshal, m.createTask)
		}},
		{"get", func() error {
			return helper.RegisterTypedRequestReplyService(container, "get", json.Unmarshal, json.Marshal, m.getTask)
		}},
		{"list", func() error {
			return helper.RegisterTypedRequestReplyService(container, "list", json.Unmarshal, json.Marshal, m.listTasks)
		}},
		{"update", func() error {
			return helper.RegisterTypedRequestReplyService(container, "update", json.Unmarshal, json.Marshal, m.updateTask)
		}},
		{"toggle-complete", func() error {
			return helper.RegisterTypedRequestReplyService(container, "toggle-complete", json.Unmarshal, json.Marshal, m.toggleComplete)
		}},
		{"delete", func() error {
			return helper.RegisterTypedRequestReplyService(container, "delete", json.Unmarshal, json.Marshal, m.deleteTask)
		}},
		{"stats", func() error {
			return helper.RegisterTypedRequestReplyService(container, "stats", json.Unmarshal, json.Marshal, m.stats)
		}},
	}
	for _, svc := range services {
		if err := svc.reg(); err != nil {
			return fmt.Errorf("failed to register %s service: %w", svc.name, err)
		}
	}

	log.Printf("[task] Registered services: create, get, list, update, toggle-complete, delete, stats")
	return nil
}

// Start verifies dependencies are wired.
func (m *TaskModule) Start(_ context.Context) error {
	if m.teamPort == nil {
		return fmt.Errorf("teamPort dependency not set")
	}
	if m.eventBus == nil {
		log.Println("[task] Warning: eventBus not set, events will not be published")
	}
	log.Println("[task] Module started (depends on: team)")
	return nil
}

// Stop shuts down the module.
func (m *TaskModule) Stop(_ context.Context) error {
	log.Println("[task] Module stopped")
	return nil
}
