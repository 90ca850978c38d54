package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/example/task-tracker/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// DefaultCapacity is the number of entries kept in the feed.
const DefaultCapacity = 100

// Entry types.
const (
	TypeCreated  = "task_created"
	TypeUpdated  = "task_updated"
	TypeClosed   = "task_closed"
	TypeReopened = "task_reopened"
	TypeDeleted  = "task_deleted"
)

// ActivityModule records task lifecycle events in a bounded in-memory feed.
type ActivityModule struct {
	capacity int
	entries  []Entry
	mu       sync.RWMutex
}

var _ mono.Module = (*ActivityModule)(nil)
var _ mono.EventConsumerModule = (*ActivityModule)(nil)
var _ mono.ServiceProviderModule = (*ActivityModule)(nil)

func NewModule() *ActivityModule {
	return NewModuleWithCapacity(DefaultCapacity)
}

// NewModuleWithCapacity creates a module keeping at most capacity entries.
func NewModuleWithCapacity(capacity int) *ActivityModule {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ActivityModule{
		capacity: capacity,
		entries:  make([]Entry, 0, capacity),
	}
}

func (m *ActivityModule) Name() string {
	return "activity"
}

func (m *ActivityModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskClosedV1, m.handleTaskClosed, m); err != nil {
		return fmt.Errorf("failed to register TaskClosed consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskReopenedV1, m.handleTaskReopened, m); err != nil {
		return fmt.Errorf("failed to register TaskReopened consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	log.Printf("[activity] Registered event consumers: TaskCreated, TaskUpdated, TaskClosed, TaskReopened, TaskDeleted")
	return nil
}

// RegisterServices registers services.activity.recent.
func (m *ActivityModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "recent", json.Unmarshal, json.Marshal, m.recent,
	); err != nil {
		return fmt.Errorf("failed to register recent service: %w", err)
	}
	log.Printf("[activity] Registered services: services.activity.recent")
	return nil
}

func (m *ActivityModule) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	log.Printf("[activity] Task created: %d - %s", event.TaskID, event.Content)
	m.record(event.Meta, TypeCreated, fmt.Sprintf("Task %d created: %s", event.TaskID, event.Content))
	return nil
}

func (m *ActivityModule) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	log.Printf("[activity] Task updated: %d", event.TaskID)
	m.record(event.Meta, TypeUpdated, fmt.Sprintf("Task %d updated: %s", event.TaskID, event.Content))
	return nil
}

func (m *ActivityModule) handleTaskClosed(_ context.Context, event events.TaskClosedEvent, _ *mono.Msg) error {
	log.Printf("[activity] Task closed: %d", event.TaskID)
	m.record(event.Meta, TypeClosed, fmt.Sprintf("Task %d completed", event.TaskID))
	return nil
}

func (m *ActivityModule) handleTaskReopened(_ context.Context, event events.TaskReopenedEvent, _ *mono.Msg) error {
	log.Printf("[activity] Task reopened: %d", event.TaskID)
	m.record(event.Meta, TypeReopened, fmt.Sprintf("Task %d reopened", event.TaskID))
	return nil
}

func (m *ActivityModule) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	log.Printf("[activity] Task deleted: %d", event.TaskID)
	m.record(event.Meta, TypeDeleted, fmt.Sprintf("Task %d deleted", event.TaskID))
	return nil
}

// record appends an entry, dropping the oldest once the feed is full.
func (m *ActivityModule) record(meta events.Meta, entryType, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) == m.capacity {
		copy(m.entries, m.entries[1:])
		m.entries = m.entries[:len(m.entries)-1]
	}
	m.entries = append(m.entries, Entry{
		EventID:    meta.EventID,
		Type:       entryType,
		TaskID:     meta.TaskID,
		Message:    message,
		OccurredAt: meta.OccurredAt,
	})
}

// Entries returns up to limit entries, newest first. A limit of zero or
// less returns all of them.
func (m *ActivityModule) Entries(limit int) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	result := make([]Entry, 0, n)
	for i := len(m.entries) - 1; i >= 0 && len(result) < n; i-- {
		result = append(result, m.entries[i])
	}
	return result
}

func (m *ActivityModule) recent(_ context.Context, req RecentRequest, _ *mono.Msg) (RecentResponse, error) {
	entries := m.Entries(req.Limit)
	return RecentResponse{Entries: entries, Total: len(entries)}, nil
}

func (m *ActivityModule) Start(_ context.Context) error {
	log.Println("[activity] Module started - listening for task events")
	return nil
}

func (m *ActivityModule) Stop(_ context.Context) error {
	log.Println("[activity] Module stopped")
	return nil
}
