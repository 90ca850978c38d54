package task

import (
	"context"
	"errors"
	"math"
	"time"

	domain "github.com/example/task-tracker/domain/task"
	"gorm.io/gorm"
)

// GormRepository stores tasks through gorm (SQLite by default).
type GormRepository struct {
	db  *gorm.DB
	now func() time.Time
}

var _ domain.Repo = (*GormRepository)(nil)

// NewGormRepository creates a new gorm-backed task repository.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db, now: time.Now}
}

// Migrate creates or updates the tasks table.
func (r *GormRepository) Migrate() error {
	return r.db.AutoMigrate(&TaskRecord{})
}

// Ping verifies the underlying database connection.
func (r *GormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying database connection.
func (r *GormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *GormRepository) FindActiveTask(ctx context.Context, id domain.TaskID) (domain.ActiveTask, error) {
	record, err := r.findByID(ctx, id, false, "find active task")
	if err != nil {
		return domain.ActiveTask{}, err
	}
	return record.toDomain().Active(), nil
}

func (r *GormRepository) FindActiveTasks(ctx context.Context) ([]domain.ActiveTask, error) {
	var records []TaskRecord
	if err := r.db.WithContext(ctx).
		Where("is_completed = ?", false).
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, &domain.RepoError{Op: "find active tasks", Err: err}
	}

	tasks := make([]domain.ActiveTask, 0, len(records))
	for _, record := range records {
		tasks = append(tasks, record.toDomain().Active())
	}
	return tasks, nil
}

func (r *GormRepository) FindClosedTask(ctx context.Context, id domain.TaskID) (domain.CompletedTask, error) {
	record, err := r.findByID(ctx, id, true, "find closed task")
	if err != nil {
		return domain.CompletedTask{}, err
	}
	return record.toDomain().Closed(), nil
}

func (r *GormRepository) SaveNewTask(ctx context.Context, task domain.NewTask) (domain.ActiveTask, error) {
	record := TaskRecord{
		Content:     task.Content().String(),
		Description: task.Description().String(),
		IsCompleted: false,
		CreatedAt:   r.now(),
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return domain.ActiveTask{}, &domain.RepoError{Op: "save new task", Err: err}
	}
	return record.toDomain().Active(), nil
}

func (r *GormRepository) SaveActiveTask(ctx context.Context, task domain.ActiveTask) (domain.ActiveTask, error) {
	record, err := r.update(ctx, task, "save active task")
	if err != nil {
		return domain.ActiveTask{}, err
	}
	return record.toDomain().Active(), nil
}

func (r *GormRepository) SaveClosedTask(ctx context.Context, task domain.CompletedTask) (domain.CompletedTask, error) {
	record, err := r.update(ctx, task, "save closed task")
	if err != nil {
		return domain.CompletedTask{}, err
	}
	return record.toDomain().Closed(), nil
}

func (r *GormRepository) DeleteActiveTask(ctx context.Context, task domain.ActiveTask) error {
	rowID, ok := sqliteRowID(task.ID())
	if !ok {
		return nil
	}
	if err := r.db.WithContext(ctx).Delete(&TaskRecord{}, rowID).Error; err != nil {
		return &domain.RepoError{Op: "delete active task", Err: err}
	}
	return nil
}

func (r *GormRepository) findByID(ctx context.Context, id domain.TaskID, completed bool, op string) (*TaskRecord, error) {
	rowID, ok := sqliteRowID(id)
	if !ok {
		return nil, domain.ErrNotFound
	}

	var record TaskRecord
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_completed = ?", rowID, completed).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.RepoError{Op: op, Err: err}
	}
	return &record, nil
}

// update writes the mutable columns and reloads the row in one transaction.
// A map is used so that gorm does not skip is_completed = false.
func (r *GormRepository) update(ctx context.Context, task domain.Task, op string) (*TaskRecord, error) {
	rowID, ok := sqliteRowID(task.ID())
	if !ok {
		return nil, &domain.RepoError{Op: op, Err: domain.ErrNoRow}
	}

	var record TaskRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&TaskRecord{}).
			Where("id = ?", rowID).
			Updates(map[string]any{
				"content":      task.Content().String(),
				"description":  task.Description().String(),
				"is_completed": task.Completed(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrNoRow
		}
		return tx.First(&record, rowID).Error
	})
	if err != nil {
		return nil, &domain.RepoError{Op: op, Err: err}
	}
	return &record, nil
}

// sqliteRowID converts id to a rowid. Ids above math.MaxInt64 cannot be
// stored, so no row can carry them.
func sqliteRowID(id domain.TaskID) (int64, bool) {
	if id.Uint64() > math.MaxInt64 {
		return 0, false
	}
	return int64(id.Uint64()), true
}
