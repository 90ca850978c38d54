package task

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

const (
	// MaxContentLength is the maximum number of characters in a task's content.
	MaxContentLength = 500
	// MaxDescriptionLength is the maximum number of characters in a task's description.
	MaxDescriptionLength = 2000
)

var (
	// ErrEmpty is returned when a required text field is empty.
	ErrEmpty = errors.New("must not be empty")
	// ErrTooLong is returned when a text field exceeds its maximum length.
	ErrTooLong = errors.New("too long")
)

// ValidationError describes why a value object could not be constructed.
// It unwraps to ErrEmpty or ErrTooLong.
type ValidationError struct {
	Field string
	Max   int
	Err   error
}

func (e *ValidationError) Error() string {
	if errors.Is(e.Err, ErrTooLong) {
		return fmt.Sprintf("%s is too long (max %d characters)", e.Field, e.Max)
	}
	return fmt.Sprintf("%s %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Content is the short summary of a task.
type Content struct {
	value string
}

// NewContent validates s and wraps it as task content.
func NewContent(s string) (Content, error) {
	if err := validateText("content", s, MaxContentLength); err != nil {
		return Content{}, err
	}
	return Content{value: s}, nil
}

func (c Content) String() string {
	return c.value
}

// Description is the long-form text of a task. Empty descriptions are rejected.
type Description struct {
	value string
}

// NewDescription validates s and wraps it as a task description.
func NewDescription(s string) (Description, error) {
	if err := validateText("description", s, MaxDescriptionLength); err != nil {
		return Description{}, err
	}
	return Description{value: s}, nil
}

func (d Description) String() string {
	return d.value
}

// validateText counts characters, not bytes.
func validateText(field, s string, max int) error {
	if s == "" {
		return &ValidationError{Field: field, Max: max, Err: ErrEmpty}
	}
	if utf8.RuneCountInString(s) > max {
		return &ValidationError{Field: field, Max: max, Err: ErrTooLong}
	}
	return nil
}
