package task

import (
	"fmt"
	"time"
)

// Record is the storage shape of a task row. Adapters translate their own
// rows into a Record and use Active or Completed to get a domain value.
type Record struct {
	ID          uint64    `json:"id"`
	Content     string    `json:"content"`
	Description string    `json:"description"`
	Completed   bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecordOf converts an entity back into its storage shape.
func RecordOf(t Task) Record {
	return Record{
		ID:          t.ID().Uint64(),
		Content:     t.Content().String(),
		Description: t.Description().String(),
		Completed:   t.Completed(),
		CreatedAt:   t.CreatedAt(),
	}
}

// Active maps the record to an ActiveTask. It panics if the record is
// flagged completed or holds text that no longer validates: both mean the
// adapter queried the wrong rows or storage holds data the domain never wrote.
func (r Record) Active() ActiveTask {
	if r.Completed {
		panic(fmt.Sprintf("task: record %d is completed", r.ID))
	}
	content, description := r.mustText()
	return ActiveTask{
		id:          TaskIDFrom(r.ID),
		content:     content,
		description: description,
		createdAt:   r.CreatedAt.Local(),
	}
}

// Closed maps the record to a CompletedTask. It panics if the record is
// not flagged completed.
func (r Record) Closed() CompletedTask {
	if !r.Completed {
		panic(fmt.Sprintf("task: record %d is not completed", r.ID))
	}
	content, description := r.mustText()
	return CompletedTask{
		id:          TaskIDFrom(r.ID),
		content:     content,
		description: description,
		createdAt:   r.CreatedAt.Local(),
	}
}

func (r Record) mustText() (Content, Description) {
	content, err := NewContent(r.Content)
	if err != nil {
		panic(fmt.Sprintf("task: record %d: %v", r.ID, err))
	}
	description, err := NewDescription(r.Description)
	if err != nil {
		panic(fmt.Sprintf("task: record %d: %v", r.ID, err))
	}
	return content, description
}
