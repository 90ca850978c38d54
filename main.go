package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/example/task-tracker/modules/activity"
	"github.com/example/task-tracker/modules/api"
	"github.com/example/task-tracker/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Task Tracker ===")

	cfg, err := task.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// The framework automatically calls:
	// - ServiceProviderModule.RegisterServices() for request-reply services
	// - EventEmitterModule.SetEventBus() on the task module
	// - EventConsumerModule.RegisterEventConsumers() on the activity module
	// - DependentModule.SetDependencyServiceContainer() on the api module
	app.Register(activity.NewModule())
	app.Register(task.NewModule(cfg))
	app.Register(api.NewModule(os.Getenv("HTTP_ADDR")))

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg task.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("Storage: %s", cfg.Driver)
	if cfg.RedisAddr != "" {
		log.Printf("Cache:   redis at %s (TTL %s)", cfg.RedisAddr, cfg.CacheTTL)
	} else {
		log.Println("Cache:   disabled (set REDIS_ADDR to enable)")
	}
	log.Println("")
	log.Println("HTTP Endpoints:")
	log.Println("  GET    /health                      - Health check")
	log.Println("  GET    /api/v1/tasks                - List active tasks")
	log.Println("  POST   /api/v1/tasks                - Create a task")
	log.Println("  GET    /api/v1/tasks/:id            - Get a task")
	log.Println("  PUT    /api/v1/tasks/:id            - Update content/description")
	log.Println("  DELETE /api/v1/tasks/:id            - Delete an active task")
	log.Println("  POST   /api/v1/tasks/:id/close      - Mark a task completed")
	log.Println("  POST   /api/v1/tasks/:id/reopen     - Reopen a completed task")
	log.Println("  GET    /api/v1/activity?limit=N     - Recent task events")
	log.Println("")
	log.Println("Services (via NATS request-reply):")
	log.Println("  services.task.{create,get,list,update,close,reopen,delete}")
	log.Println("  services.activity.recent")
	log.Println("")
	log.Println("Example:")
	log.Println("  curl -X POST localhost:3000/api/v1/tasks -H 'Content-Type: application/json' \\")
	log.Println("    -d '{\"content\":\"Buy milk\",\"description\":\"2% fat\"}'")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
