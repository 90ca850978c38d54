package task

import (
	"context"
	"errors"
	"time"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS tasks (
		id           BIGSERIAL PRIMARY KEY,
		content      VARCHAR(500)  NOT NULL,
		description  VARCHAR(2000) NOT NULL,
		is_completed BOOLEAN       NOT NULL DEFAULT FALSE,
		created_at   TIMESTAMPTZ   NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_is_completed ON tasks (is_completed)`,
}

const taskColumns = "id, content, description, is_completed, created_at"

// PostgresRepository stores tasks in PostgreSQL through a pgx pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

var _ domain.Repo = (*PostgresRepository)(nil)

// NewPostgresRepository creates a new PostgreSQL task repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool, now: time.Now}
}

// Migrate creates the tasks table if it does not exist.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Ping verifies the pool can reach the database.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the connection pool.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) FindActiveTask(ctx context.Context, id domain.TaskID) (domain.ActiveTask, error) {
	record, err := r.findByID(ctx, id, false, "find active task")
	if err != nil {
		return domain.ActiveTask{}, err
	}
	return record.Active(), nil
}

func (r *PostgresRepository) FindActiveTasks(ctx context.Context) ([]domain.ActiveTask, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE is_completed = false ORDER BY id ASC")
	if err != nil {
		return nil, &domain.RepoError{Op: "find active tasks", Err: err}
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Record, error) {
		return scanRecord(row)
	})
	if err != nil {
		return nil, &domain.RepoError{Op: "find active tasks", Err: err}
	}

	tasks := make([]domain.ActiveTask, 0, len(records))
	for _, record := range records {
		tasks = append(tasks, record.Active())
	}
	return tasks, nil
}

func (r *PostgresRepository) FindClosedTask(ctx context.Context, id domain.TaskID) (domain.CompletedTask, error) {
	record, err := r.findByID(ctx, id, true, "find closed task")
	if err != nil {
		return domain.CompletedTask{}, err
	}
	return record.Closed(), nil
}

func (r *PostgresRepository) SaveNewTask(ctx context.Context, task domain.NewTask) (domain.ActiveTask, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO tasks (content, description, is_completed, created_at)
		 VALUES ($1, $2, false, $3)
		 RETURNING `+taskColumns,
		task.Content().String(), task.Description().String(), r.now())

	record, err := scanRecord(row)
	if err != nil {
		return domain.ActiveTask{}, &domain.RepoError{Op: "save new task", Err: err}
	}
	return record.Active(), nil
}

func (r *PostgresRepository) SaveActiveTask(ctx context.Context, task domain.ActiveTask) (domain.ActiveTask, error) {
	record, err := r.update(ctx, task, "save active task")
	if err != nil {
		return domain.ActiveTask{}, err
	}
	return record.Active(), nil
}

func (r *PostgresRepository) SaveClosedTask(ctx context.Context, task domain.CompletedTask) (domain.CompletedTask, error) {
	record, err := r.update(ctx, task, "save closed task")
	if err != nil {
		return domain.CompletedTask{}, err
	}
	return record.Closed(), nil
}

func (r *PostgresRepository) DeleteActiveTask(ctx context.Context, task domain.ActiveTask) error {
	if _, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", int64(task.ID().Uint64())); err != nil {
		return &domain.RepoError{Op: "delete active task", Err: err}
	}
	return nil
}

func (r *PostgresRepository) findByID(ctx context.Context, id domain.TaskID, completed bool, op string) (domain.Record, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = $1 AND is_completed = $2",
		int64(id.Uint64()), completed)

	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Record{}, domain.ErrNotFound
		}
		return domain.Record{}, &domain.RepoError{Op: op, Err: err}
	}
	return record, nil
}

func (r *PostgresRepository) update(ctx context.Context, task domain.Task, op string) (domain.Record, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE tasks
		 SET content = $2, description = $3, is_completed = $4
		 WHERE id = $1
		 RETURNING `+taskColumns,
		int64(task.ID().Uint64()), task.Content().String(), task.Description().String(), task.Completed())

	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = domain.ErrNoRow
		}
		return domain.Record{}, &domain.RepoError{Op: op, Err: err}
	}
	return record, nil
}

func scanRecord(row pgx.Row) (domain.Record, error) {
	var (
		record domain.Record
		id     int64
	)
	if err := row.Scan(&id, &record.Content, &record.Description, &record.Completed, &record.CreatedAt); err != nil {
		return domain.Record{}, err
	}
	record.ID = uint64(id)
	return record, nil
}
