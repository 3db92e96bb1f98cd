package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	historydomain "github.com/FahimSaki/Momentum/domain/history"
	notificationdomain "github.com/FahimSaki/Momentum/domain/notification"
	taskdomain "github.com/FahimSaki/Momentum/domain/task"
	teamdomain "github.com/FahimSaki/Momentum/domain/team"
	"github.com/FahimSaki/Momentum/modules/api"
	"github.com/FahimSaki/Momentum/modules/cleanup"
	"github.com/FahimSaki/Momentum/modules/history"
	"github.com/FahimSaki/Momentum/modules/notification"
	"github.com/FahimSaki/Momentum/modules/task"
	"github.com/FahimSaki/Momentum/modules/team"
	"github.com/FahimSaki/Momentum/storage"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("Starting momentum application...")

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "momentum.db"
	}

	// Shared database and stores
	db, err := storage.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	taskStore := taskdomain.NewStore(db)
	historyStore := historydomain.NewStore(db)
	teamStore := teamdomain.NewStore(db)
	notificationStore := notificationdomain.NewStore(db)

	// Create mono application with embedded NATS
	app, err := mono.NewMonoApplication(
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
		mono.WithShutdownTimeout(shutdownTimeout),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	heatmapCache := history.NewCache(os.Getenv("REDIS_ADDR"))
	pipeline := cleanup.NewPipeline(taskStore, historyStore)

	modules := []mono.Module{
		team.NewModule(teamStore),
		history.NewModule(historyStore, taskStore, heatmapCache),
		notification.NewModule(notificationStore, taskStore, notification.NewLogPusher()),
		task.NewModule(taskStore, historyStore),
		cleanup.NewModule(pipeline),
		api.NewModule(),
	}
	for _, m := range modules {
		if err := app.Register(m); err != nil {
			log.Fatalf("Failed to register %s module: %v", m.Name(), err)
		}
	}

	// Start the application
	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	log.Println("Application started successfully")

	// Set up graceful shutdown
	shutdownCtx, forceShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer forceShutdown()

	shutdownChan := gfshutdown.GracefulShutdown(shutdownCtx, shutdownTimeout, map[string]gfshutdown.Operation{
		"application": func(ctx context.Context) error {
			return app.Stop(ctx)
		},
		"database": func(_ context.Context) error {
			return storage.Close(db)
		},
	})

	exitCode := <-shutdownChan
	if exitCode != 0 {
		log.Printf("Shutdown completed with exit code: %d", exitCode)
		os.Exit(exitCode)
	}

	log.Println("Shutdown completed successfully")
}
