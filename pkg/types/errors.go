package types

import (
	"errors"
	"fmt"
	"net/http"
)

// Store operation errors.
var (
	ErrNotFound    = errors.New("document not found")
	ErrInvalidID   = errors.New("invalid document ID")
	ErrInvalidData = errors.New("invalid document data")
	ErrDuplicateID = errors.New("duplicate document ID")
	ErrNotArray    = errors.New("field is not an array")
	ErrStoreClosed = errors.New("store is closed")
)

// Model and plugin errors.
var (
	ErrValidation     = errors.New("validation failed")
	ErrParentNotFound = errors.New("context parent not found")
	ErrRegistrySealed = errors.New("model registry is sealed")
	ErrModelExists    = errors.New("model already registered")
	ErrModelNotFound  = errors.New("model not found")
	ErrInvalidOptions = errors.New("invalid context options")
)

// MessageInvalidContextType is attached to context_type when it fails
// type validation.
const MessageInvalidContextType = "Invalid context type."

// MessageIncompleteContext is attached to the missing half of a context
// pair. The verbs are the missing field and the present one.
const MessageIncompleteContext = "Path `%s` is required when `%s` is set."

// ValidationError reports a field that failed validation. It blocks the
// persist attempt and is never retried.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ParentNotFoundError is returned when a back-reference is added to a parent
// that does not exist. It is a client error.
type ParentNotFoundError struct {
	Type string
	ID   string
}

func (e *ParentNotFoundError) Error() string {
	return e.Type + " not found"
}

// Status returns the HTTP-style status class of the error.
func (e *ParentNotFoundError) Status() int {
	return http.StatusBadRequest
}

// Is makes errors.Is(err, ErrParentNotFound) hold.
func (e *ParentNotFoundError) Is(target error) bool {
	return target == ErrParentNotFound
}

// StorageError wraps a failure returned by the backing store while patching
// a parent. Its message is the underlying error's message, unchanged.
type StorageError struct {
	Op         string
	Collection string
	ID         string
	Err        error
}

func (e *StorageError) Error() string {
	return e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// MoveDivergedError is returned when a move removed the child from its old
// parent but could not add it to the new one. Neither parent references the
// child afterwards; nothing compensates automatically.
type MoveDivergedError struct {
	ChildID string
	From    Context
	To      Context
	Err     error
}

func (e *MoveDivergedError) Error() string {
	return fmt.Sprintf("move %s from %s to %s diverged: %v", e.ChildID, e.From, e.To, e.Err)
}

func (e *MoveDivergedError) Unwrap() error {
	return e.Err
}
