package task

import (
	"context"
	"log"
	"sync/atomic"

	domain "github.com/example/task-tracker/domain/task"
	"golang.org/x/sync/singleflight"
)

// generationStripes bounds the invalidation counters; ids share a counter
// modulo this value.
const generationStripes = 256

// CachedRepository adds a cache-aside layer to single-task lookups of
// another Repo. Lists are always read from the underlying repository.
type CachedRepository struct {
	repo        domain.Repo
	cache       CacheStore
	sfGroup     singleflight.Group
	generations [generationStripes]atomic.Uint64
}

var _ domain.Repo = (*CachedRepository)(nil)

// NewCachedRepository wraps repo with cache.
func NewCachedRepository(repo domain.Repo, cache CacheStore) *CachedRepository {
	return &CachedRepository{repo: repo, cache: cache}
}

func activeKey(id domain.TaskID) string { return "active:" + id.String() }
func closedKey(id domain.TaskID) string { return "closed:" + id.String() }

func (r *CachedRepository) FindActiveTask(ctx context.Context, id domain.TaskID) (domain.ActiveTask, error) {
	record, err := r.lookup(ctx, id, activeKey(id), func(ctx context.Context) (domain.Record, error) {
		task, err := r.repo.FindActiveTask(ctx, id)
		if err != nil {
			return domain.Record{}, err
		}
		return domain.RecordOf(task), nil
	})
	if err != nil {
		return domain.ActiveTask{}, err
	}
	return record.Active(), nil
}

func (r *CachedRepository) FindActiveTasks(ctx context.Context) ([]domain.ActiveTask, error) {
	return r.repo.FindActiveTasks(ctx)
}

func (r *CachedRepository) FindClosedTask(ctx context.Context, id domain.TaskID) (domain.CompletedTask, error) {
	record, err := r.lookup(ctx, id, closedKey(id), func(ctx context.Context) (domain.Record, error) {
		task, err := r.repo.FindClosedTask(ctx, id)
		if err != nil {
			return domain.Record{}, err
		}
		return domain.RecordOf(task), nil
	})
	if err != nil {
		return domain.CompletedTask{}, err
	}
	return record.Closed(), nil
}

func (r *CachedRepository) SaveNewTask(ctx context.Context, task domain.NewTask) (domain.ActiveTask, error) {
	return r.repo.SaveNewTask(ctx, task)
}

func (r *CachedRepository) SaveActiveTask(ctx context.Context, task domain.ActiveTask) (domain.ActiveTask, error) {
	saved, err := r.repo.SaveActiveTask(ctx, task)
	r.invalidate(ctx, task.ID())
	return saved, err
}

func (r *CachedRepository) SaveClosedTask(ctx context.Context, task domain.CompletedTask) (domain.CompletedTask, error) {
	saved, err := r.repo.SaveClosedTask(ctx, task)
	r.invalidate(ctx, task.ID())
	return saved, err
}

func (r *CachedRepository) DeleteActiveTask(ctx context.Context, task domain.ActiveTask) error {
	err := r.repo.DeleteActiveTask(ctx, task)
	r.invalidate(ctx, task.ID())
	return err
}

// lookup reads key from the cache and falls back to load on a miss.
// Concurrent misses for the same key share one load, detached from the
// cancellation of whichever caller started it. A loaded record is not
// cached if id was invalidated while it was being read.
func (r *CachedRepository) lookup(ctx context.Context, id domain.TaskID, key string, load func(context.Context) (domain.Record, error)) (domain.Record, error) {
	var cached domain.Record
	found, err := r.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Printf("[task] Cache error for %s: %v", key, err)
	}
	if found {
		return cached, nil
	}

	val, err, _ := r.sfGroup.Do(key, func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)
		gen := r.generation(id)

		record, err := load(loadCtx)
		if err != nil {
			return nil, err
		}

		if r.generation(id) != gen {
			return record, nil
		}
		if err := r.cache.Set(loadCtx, key, record); err != nil {
			log.Printf("[task] Warning: failed to cache %s: %v", key, err)
			return record, nil
		}
		// An invalidation may have run between the check and the Set.
		if r.generation(id) != gen {
			if err := r.cache.Delete(loadCtx, key); err != nil {
				log.Printf("[task] Warning: failed to drop stale %s: %v", key, err)
			}
		}
		return record, nil
	})
	if err != nil {
		return domain.Record{}, err
	}
	return val.(domain.Record), nil
}

func (r *CachedRepository) generation(id domain.TaskID) uint64 {
	return r.generations[id.Uint64()%generationStripes].Load()
}

// invalidate drops both views of id; a save may have moved the task
// between states. Loads already in flight for id are neither joined nor
// cached afterwards.
func (r *CachedRepository) invalidate(ctx context.Context, id domain.TaskID) {
	r.generations[id.Uint64()%generationStripes].Add(1)
	r.sfGroup.Forget(activeKey(id))
	r.sfGroup.Forget(closedKey(id))

	if err := r.cache.Delete(ctx, activeKey(id), closedKey(id)); err != nil {
		log.Printf("[task] Warning: failed to invalidate cache for task %s: %v", id, err)
	}
}
