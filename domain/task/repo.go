package task

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by the Find methods when no task with the
	// requested id exists in the requested state.
	ErrNotFound = errors.New("task not found")
	// ErrNoRow is wrapped in a RepoError when a save targets an id that
	// storage does not hold.
	ErrNoRow = errors.New("no task row with that id")
)

// RepoError reports a failed storage operation.
type RepoError struct {
	Op  string
	Err error
}

func (e *RepoError) Error() string {
	return fmt.Sprintf("task repo: %s: %v", e.Op, e.Err)
}

func (e *RepoError) Unwrap() error {
	return e.Err
}

// Repo persists and retrieves tasks.
//
// Find methods fail with ErrNotFound when the task is absent in the
// requested state and with a *RepoError when storage fails. Save and delete
// methods fail only with a *RepoError.
type Repo interface {
	FindActiveTask(ctx context.Context, id TaskID) (ActiveTask, error)
	FindActiveTasks(ctx context.Context) ([]ActiveTask, error)
	FindClosedTask(ctx context.Context, id TaskID) (CompletedTask, error)

	// SaveNewTask assigns an id and a creation timestamp.
	SaveNewTask(ctx context.Context, task NewTask) (ActiveTask, error)
	// SaveActiveTask writes content and description, clears the completion
	// flag and returns the row as stored.
	SaveActiveTask(ctx context.Context, task ActiveTask) (ActiveTask, error)
	// SaveClosedTask writes content and description, sets the completion
	// flag and returns the row as stored.
	SaveClosedTask(ctx context.Context, task CompletedTask) (CompletedTask, error)

	// DeleteActiveTask removes the row. Deleting an absent id is not an error.
	DeleteActiveTask(ctx context.Context, task ActiveTask) error
}
