package activity

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/example/task-tracker/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlersRecordEntries(t *testing.T) {
	m := NewModule()
	ctx := context.Background()

	require.NoError(t, m.handleTaskCreated(ctx, events.TaskCreatedEvent{Meta: events.NewMeta(1), Content: "Buy milk"}, nil))
	require.NoError(t, m.handleTaskUpdated(ctx, events.TaskUpdatedEvent{Meta: events.NewMeta(1), Content: "Buy oat milk"}, nil))
	require.NoError(t, m.handleTaskClosed(ctx, events.TaskClosedEvent{Meta: events.NewMeta(1)}, nil))
	require.NoError(t, m.handleTaskReopened(ctx, events.TaskReopenedEvent{Meta: events.NewMeta(1)}, nil))
	require.NoError(t, m.handleTaskDeleted(ctx, events.TaskDeletedEvent{Meta: events.NewMeta(1)}, nil))

	entries := m.Entries(0)
	require.Len(t, entries, 5)

	types := make([]string, 0, len(entries))
	for _, e := range entries {
		types = append(types, e.Type)
		assert.Equal(t, uint64(1), e.TaskID)
		assert.NotEmpty(t, e.EventID)
	}
	assert.Equal(t, []string{TypeDeleted, TypeReopened, TypeClosed, TypeUpdated, TypeCreated}, types)
	assert.Equal(t, "Task 1 created: Buy milk", entries[4].Message)
}

func TestFeedIsBounded(t *testing.T) {
	m := NewModuleWithCapacity(3)
	for i := 1; i <= 5; i++ {
		m.record(events.NewMeta(uint64(i)), TypeCreated, fmt.Sprintf("task %d", i))
	}

	entries := m.Entries(0)
	require.Len(t, entries, 3)
	assert.Equal(t, uint64(5), entries[0].TaskID)
	assert.Equal(t, uint64(3), entries[2].TaskID)
}

func TestDefaultCapacity(t *testing.T) {
	m := NewModuleWithCapacity(0)
	for i := 0; i < DefaultCapacity+10; i++ {
		m.record(events.NewMeta(uint64(i)), TypeCreated, "")
	}
	assert.Len(t, m.Entries(0), DefaultCapacity)
}

func TestRecentLimit(t *testing.T) {
	m := NewModule()
	for i := 1; i <= 4; i++ {
		m.record(events.NewMeta(uint64(i)), TypeClosed, "")
	}

	resp, err := m.recent(context.Background(), RecentRequest{Limit: 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, uint64(4), resp.Entries[0].TaskID)
	assert.Equal(t, uint64(3), resp.Entries[1].TaskID)

	resp, err = m.recent(context.Background(), RecentRequest{Limit: 50}, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Total)
}

func TestRecentEmpty(t *testing.T) {
	resp, err := NewModule().recent(context.Background(), RecentRequest{}, nil)
	require.NoError(t, err)
	assert.NotNil(t, resp.Entries)
	assert.Empty(t, resp.Entries)
}

func TestConcurrentRecording(t *testing.T) {
	m := NewModule()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			m.record(events.NewMeta(id), TypeCreated, "")
			_ = m.Entries(10)
		}(uint64(i))
	}
	wg.Wait()
	assert.Len(t, m.Entries(0), 50)
}

func TestNewActivityAdapter_RequiresContainer(t *testing.T) {
	assert.PanicsWithValue(t, "activity adapter requires non-nil ServiceContainer", func() {
		NewActivityAdapter(nil)
	})
}
