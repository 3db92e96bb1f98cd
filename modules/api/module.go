// Package api is the HTTP gateway. It translates REST calls into service
// requests against the task, history, cleanup and notification modules.
package api

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/FahimSaki/Momentum/modules/cleanup"
	"github.com/FahimSaki/Momentum/modules/history"
	"github.com/FahimSaki/Momentum/modules/notification"
	"github.com/FahimSaki/Momentum/modules/task"
)

// APIModule is the HTTP API module.
type APIModule struct {
	app           *fiber.App
	port          string
	tasks         task.TaskPort
	heatmaps      history.HistoryPort
	cleanups      cleanup.CleanupPort
	notifications notification.NotificationPort
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule. The listen port comes from API_PORT,
// defaulting to 8080.
func NewModule() *APIModule {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	return &APIModule{port: port}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"task", "history", "cleanup", "notification"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "task":
		m.tasks = task.NewTaskAdapter(container)
	case "history":
		m.heatmaps = history.NewHistoryAdapter(container)
	case "cleanup":
		m.cleanups = cleanup.NewCleanupAdapter(container)
	case "notification":
		m.notifications = notification.NewNotificationAdapter(container)
	}
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.tasks == nil || m.heatmaps == nil || m.cleanups == nil || m.notifications == nil {
		return fmt.Errorf("api dependencies not set")
	}

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	// Add middleware
	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	m.app.Use(cors.New())

	m.setupRoutes()

	// Start server in goroutine
	go func() {
		if err := m.app.Listen(":" + m.port); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on :%s", m.port)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.port,
		},
	}
}

// setupRoutes configures all API routes.
func (m *APIModule) setupRoutes() {
	// Health check endpoint
	m.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"module": "api",
		})
	})

	v1 := m.app.Group("/api/v1")
	v1.Use(RequireActor())

	tasks := v1.Group("/tasks")
	tasks.Post("/", m.createTask)
	tasks.Get("/", m.listTasks)
	tasks.Get("/stats", m.taskStats)
	tasks.Get("/:id", m.getTask)
	tasks.Put("/:id", m.updateTask)
	tasks.Delete("/:id", m.deleteTask)
	tasks.Post("/:id/complete", m.toggleComplete)

	v1.Get("/history", m.heatmap)

	notifications := v1.Group("/notifications")
	notifications.Get("/", m.listNotifications)
	notifications.Post("/:id/read", m.markNotificationRead)

	v1.Post("/admin/cleanup", m.runCleanup)
}
