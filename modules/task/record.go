package task

import (
	"time"

	domain "github.com/example/task-tracker/domain/task"
)

// TaskRecord is the gorm model for a row of the tasks table.
type TaskRecord struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	Content     string    `gorm:"size:500;not null"`
	Description string    `gorm:"size:2000;not null"`
	IsCompleted bool      `gorm:"not null;default:false;index"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for TaskRecord model.
func (TaskRecord) TableName() string {
	return "tasks"
}

func (r TaskRecord) toDomain() domain.Record {
	return domain.Record{
		ID:          r.ID,
		Content:     r.Content,
		Description: r.Description,
		Completed:   r.IsCompleted,
		CreatedAt:   r.CreatedAt,
	}
}
