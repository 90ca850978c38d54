// Package task is the core domain of the task tracker: validated value
// objects, the draft/active/completed lifecycle and the repository port.
package task

import "time"

// Task is either an ActiveTask or a CompletedTask.
// The unexported marker keeps the set of variants closed.
type Task interface {
	ID() TaskID
	Content() Content
	Description() Description
	CreatedAt() time.Time
	Completed() bool
	isTask()
}

var (
	_ Task = ActiveTask{}
	_ Task = CompletedTask{}
)

// NewTask is a draft that has not been persisted yet.
type NewTask struct {
	content     Content
	description Description
}

// NewDraft assembles a draft from already validated values.
func NewDraft(content Content, description Description) NewTask {
	return NewTask{content: content, description: description}
}

func (t NewTask) Content() Content {
	return t.content
}

func (t NewTask) Description() Description {
	return t.description
}

// ActiveTask is a persisted task that is still open.
type ActiveTask struct {
	id          TaskID
	content     Content
	description Description
	createdAt   time.Time
}

func (t ActiveTask) ID() TaskID               { return t.id }
func (t ActiveTask) Content() Content         { return t.content }
func (t ActiveTask) Description() Description { return t.description }
func (t ActiveTask) CreatedAt() time.Time     { return t.createdAt }
func (t ActiveTask) Completed() bool          { return false }
func (ActiveTask) isTask()                    {}

// ModifyContent returns a copy of t with its content replaced.
func (t ActiveTask) ModifyContent(content Content) ActiveTask {
	t.content = content
	return t
}

// ModifyDescription returns a copy of t with its description replaced.
func (t ActiveTask) ModifyDescription(description Description) ActiveTask {
	t.description = description
	return t
}

// Close marks the task as completed. No data is dropped, so the
// transition can be undone with Reopen.
func (t ActiveTask) Close() CompletedTask {
	return CompletedTask{
		id:          t.id,
		content:     t.content,
		description: t.description,
		createdAt:   t.createdAt,
	}
}

// CompletedTask is a persisted task that has been closed.
type CompletedTask struct {
	id          TaskID
	content     Content
	description Description
	createdAt   time.Time
}

func (t CompletedTask) ID() TaskID               { return t.id }
func (t CompletedTask) Content() Content         { return t.content }
func (t CompletedTask) Description() Description { return t.description }
func (t CompletedTask) CreatedAt() time.Time     { return t.createdAt }
func (t CompletedTask) Completed() bool          { return true }
func (CompletedTask) isTask()                    {}

// Reopen moves the task back to the active state.
func (t CompletedTask) Reopen() ActiveTask {
	return ActiveTask{
		id:          t.id,
		content:     t.content,
		description: t.description,
		createdAt:   t.createdAt,
	}
}
