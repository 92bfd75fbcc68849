package tasks

import (
	"errors"
	"fmt"
)

// MaxTitleLen is the longest title, in characters, a task may carry.
const MaxTitleLen = 120

type Task struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"is_completed"`
}

// TaskInput holds the mutable fields of a task after validation.
type TaskInput struct {
	Title       string
	IsCompleted bool
}

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("task not found")
)

// ValidationError describes a rejected field. It matches ErrValidation.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports an absent task id. It matches ErrNotFound.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("there is no task at id %d", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
