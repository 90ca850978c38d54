package task

import (
	"errors"

	domain "github.com/example/task-tracker/domain/task"
)

// Service error codes.
const (
	CodeValidation = "validation_error"
	CodeNotFound   = "not_found"
	CodeStorage    = "storage_error"
)

// ServiceError is a task failure in a form that survives JSON encoding
// across the service boundary.
type ServiceError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Reason is "empty" or "too_long" for validation errors.
	Reason string `json:"reason,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Is lets callers test a decoded ServiceError against the domain sentinels.
func (e *ServiceError) Is(target error) bool {
	switch target {
	case domain.ErrNotFound:
		return e.Code == CodeNotFound
	case domain.ErrEmpty:
		return e.Code == CodeValidation && e.Reason == "empty"
	case domain.ErrTooLong:
		return e.Code == CodeValidation && e.Reason == "too_long"
	}
	return false
}

// toServiceError classifies err. Storage details are not exposed.
func toServiceError(err error) *ServiceError {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		reason := "empty"
		if errors.Is(verr, domain.ErrTooLong) {
			reason = "too_long"
		}
		return &ServiceError{Code: CodeValidation, Message: verr.Error(), Reason: reason}
	case errors.Is(err, domain.ErrNotFound):
		return &ServiceError{Code: CodeNotFound, Message: "task not found"}
	default:
		return &ServiceError{Code: CodeStorage, Message: "storage operation failed"}
	}
}
