package notebooks

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a notebook (or, where documented, a source) does not exist.
	ErrNotFound = errors.New("notebook not found")
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrStorage matches every *StorageError.
	ErrStorage = errors.New("storage failure")
	// ErrNoSources is returned when an infographic is requested for a notebook without sources.
	ErrNoSources = errors.New("add at least one source to generate an infographic")
)

// ValidationError reports input rejected before any persistence attempt.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Is makes errors.Is(err, ErrValidation) hold for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// StorageError wraps a failure of the underlying persistence layer.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrStorage) hold for any StorageError.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
