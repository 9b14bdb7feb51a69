package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// StoreError is a failed read or write against the pick store, tagged with the repository call
type StoreError struct {
	Operation string
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("pick store %s: %v", e.Operation, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NotFoundError means a lookup matched no row, e.g. no pick stored for a date
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s not found for %s", e.Resource, e.Key)
}

// ValidationError rejects a pick before it reaches the daily_picks table
type ValidationError struct {
	Field  string
	Reason string
	Value  interface{}
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s (%v)", e.Field, e.Reason, e.Value)
}

// WrapStoreError tags err with the repository call that produced it.
// A missing row becomes a *NotFoundError for that call.
func WrapStoreError(operation string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &NotFoundError{Resource: operation}
	default:
		return &StoreError{Operation: operation, Err: err}
	}
}

// IsNotFound reports whether err is or wraps a *NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// NewNotFoundError names the resource and the key that matched nothing
func NewNotFoundError(resource, key string) error {
	return &NotFoundError{Resource: resource, Key: key}
}

func invalidPick(field, reason string, value interface{}) error {
	return &ValidationError{Field: field, Reason: reason, Value: value}
}
