package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// storage is a Repo that owns a database connection.
type storage interface {
	domain.Repo
	Ping(ctx context.Context) error
	Close() error
}

// TaskModule provides task lifecycle services backed by SQLite or PostgreSQL,
// optionally fronted by a Redis cache.
type TaskModule struct {
	cfg      Config
	store    storage
	redis    *redis.Client
	cache    *RedisCache
	repo     domain.Repo
	eventBus mono.EventBus
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*TaskModule)(nil)
	_ mono.ServiceProviderModule = (*TaskModule)(nil)
	_ mono.HealthCheckableModule = (*TaskModule)(nil)
	_ mono.EventEmitterModule    = (*TaskModule)(nil)
)

// NewModule creates a new TaskModule that opens its storage on Start.
func NewModule(cfg Config) *TaskModule {
	return &TaskModule{cfg: cfg}
}

// NewModuleWithRepo creates a TaskModule over an existing repository.
// Start does not open any connection.
func NewModuleWithRepo(repo domain.Repo) *TaskModule {
	return &TaskModule{repo: repo}
}

// Name returns the module name.
func (m *TaskModule) Name() string {
	return "task"
}

// SetEventBus receives the event bus from the framework.
func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module publishes.
func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskClosedV1.ToBase(),
		events.TaskReopenedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

// Health performs a health check on the task module.
func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if m.store == nil {
		if m.repo != nil {
			return mono.HealthStatus{Healthy: true, Message: "operational (injected repository)"}
		}
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	if err := m.store.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	details := map[string]any{
		"driver": m.cfg.Driver,
		"cache":  m.cache != nil,
	}
	if m.cache != nil {
		if err := m.cache.Ping(ctx); err != nil {
			return mono.HealthStatus{
				Healthy: false,
				Message: fmt.Sprintf("redis ping failed: %v", err),
				Details: details,
			}
		}
		details["cache_stats"] = m.cache.Stats()
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: details,
	}
}

// RegisterServices registers request-reply services in the service container.
// The framework prefixes service names with "services.<module>.",
// so "create" becomes "services.task.create".
func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create", json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register create service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get", json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register get service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update", json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register update service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "close", json.Unmarshal, json.Marshal, m.closeTask,
	); err != nil {
		return fmt.Errorf("failed to register close service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "reopen", json.Unmarshal, json.Marshal, m.reopenTask,
	); err != nil {
		return fmt.Errorf("failed to register reopen service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete service: %w", err)
	}

	log.Printf("[task] Registered services: services.task.{create,get,list,update,close,reopen,delete}")
	return nil
}

// Start opens the configured database, runs migrations and sets up the cache.
func (m *TaskModule) Start(ctx context.Context) error {
	if m.repo != nil && m.store == nil {
		log.Println("[task] Module started with injected repository")
		return nil
	}

	store, err := m.openStorage(ctx)
	if err != nil {
		return err
	}
	m.store = store
	m.repo = store

	if m.cfg.RedisAddr != "" {
		if err := m.startCache(ctx); err != nil {
			_ = m.store.Close()
			return err
		}
		m.repo = NewCachedRepository(store, m.cache)
	}

	if m.eventBus == nil {
		log.Println("[task] Warning: eventBus not set, events will not be published")
	}
	log.Println("[task] Module started successfully")
	return nil
}

func (m *TaskModule) openStorage(ctx context.Context) (storage, error) {
	switch m.cfg.Driver {
	case DriverPostgres:
		log.Printf("[task] Connecting to PostgreSQL...")

		pool, err := pgxpool.New(ctx, m.cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create connection pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}

		repo := NewPostgresRepository(pool)
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return repo, nil

	default:
		log.Printf("[task] Connecting to SQLite database: %s", m.cfg.DBPath)

		logLevel := logger.Silent
		if m.cfg.DBDebug {
			logLevel = logger.Info
		}

		db, err := gorm.Open(sqlite.Open(m.cfg.DBPath), &gorm.Config{
			Logger: logger.Default.LogMode(logLevel),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		repo := NewGormRepository(db)
		if err := repo.Migrate(); err != nil {
			_ = repo.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return repo, nil
	}
}

func (m *TaskModule) startCache(ctx context.Context) error {
	m.redis = redis.NewClient(&redis.Options{
		Addr:         m.cfg.RedisAddr,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := m.redis.Ping(ctx).Err(); err != nil {
		_ = m.redis.Close()
		m.redis = nil
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	m.cache = NewRedisCache(m.redis, "task:", m.cfg.CacheTTL)
	log.Printf("[task] Connected to Redis at %s (TTL: %s)", m.cfg.RedisAddr, m.cfg.CacheTTL)
	return nil
}

// Stop closes the cache and database connections.
func (m *TaskModule) Stop(_ context.Context) error {
	if m.redis != nil {
		if err := m.redis.Close(); err != nil {
			log.Printf("[task] Error closing Redis connection: %v", err)
		}
	}

	if m.store == nil {
		return nil
	}

	log.Println("[task] Closing database connection...")
	if err := m.store.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	log.Println("[task] Database connection closed")
	return nil
}
