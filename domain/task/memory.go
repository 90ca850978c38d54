package task

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo.
type MemoryRepo struct {
	mu     sync.RWMutex
	rows   map[uint64]Record
	lastID uint64
	now    func() time.Time
}

var _ Repo = (*MemoryRepo)(nil)

// MemoryOption configures a MemoryRepo.
type MemoryOption func(*MemoryRepo)

// WithClock overrides the clock used for creation timestamps.
func WithClock(now func() time.Time) MemoryOption {
	return func(r *MemoryRepo) {
		r.now = now
	}
}

// NewMemoryRepo creates an empty in-memory repository. Ids start at 1.
func NewMemoryRepo(opts ...MemoryOption) *MemoryRepo {
	r := &MemoryRepo{
		rows: make(map[uint64]Record),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *MemoryRepo) FindActiveTask(_ context.Context, id TaskID) (ActiveTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, found := r.rows[id.Uint64()]
	if !found || row.Completed {
		return ActiveTask{}, ErrNotFound
	}
	return row.Active(), nil
}

func (r *MemoryRepo) FindActiveTasks(_ context.Context) ([]ActiveTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uint64, 0, len(r.rows))
	for id, row := range r.rows {
		if !row.Completed {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := make([]ActiveTask, 0, len(ids))
	for _, id := range ids {
		result = append(result, r.rows[id].Active())
	}
	return result, nil
}

func (r *MemoryRepo) FindClosedTask(_ context.Context, id TaskID) (CompletedTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, found := r.rows[id.Uint64()]
	if !found || !row.Completed {
		return CompletedTask{}, ErrNotFound
	}
	return row.Closed(), nil
}

func (r *MemoryRepo) SaveNewTask(_ context.Context, task NewTask) (ActiveTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	row := Record{
		ID:          r.lastID,
		Content:     task.Content().String(),
		Description: task.Description().String(),
		CreatedAt:   r.now(),
	}
	r.rows[row.ID] = row
	return row.Active(), nil
}

func (r *MemoryRepo) SaveActiveTask(_ context.Context, task ActiveTask) (ActiveTask, error) {
	row, err := r.update(task, "save active task")
	if err != nil {
		return ActiveTask{}, err
	}
	return row.Active(), nil
}

func (r *MemoryRepo) SaveClosedTask(_ context.Context, task CompletedTask) (CompletedTask, error) {
	row, err := r.update(task, "save closed task")
	if err != nil {
		return CompletedTask{}, err
	}
	return row.Closed(), nil
}

func (r *MemoryRepo) DeleteActiveTask(_ context.Context, task ActiveTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rows, task.ID().Uint64())
	return nil
}

// update keeps the stored creation time; only content, description and the
// completion flag are writable.
func (r *MemoryRepo) update(task Task, op string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, found := r.rows[task.ID().Uint64()]
	if !found {
		return Record{}, &RepoError{Op: op, Err: ErrNoRow}
	}
	row.Content = task.Content().String()
	row.Description = task.Description().String()
	row.Completed = task.Completed()
	r.rows[row.ID] = row
	return row, nil
}
