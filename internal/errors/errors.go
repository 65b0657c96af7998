// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrUnauthorized   = errors.New("unauthorized: no user scope")
	ErrNotFound       = errors.New("not found")
	ErrStrategyInUse  = errors.New("strategy is referenced by trades")
	ErrInvalidTrade   = errors.New("invalid trade")
	ErrInvalidWindow  = errors.New("invalid date window")
	ErrInvalidJournal = errors.New("invalid journal entry")
	ErrDatabaseError  = errors.New("database error")
	ErrConfigInvalid  = errors.New("invalid configuration")
	ErrInvalidToken   = errors.New("invalid token")
)

// StoreError describes a failed record store operation.
type StoreError struct {
	Op     string
	Entity string
	ID     string
	Err    error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("store %s %s [%s]: %v", e.Op, e.Entity, e.ID, e.Err)
	}
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(op, entity, id string, err error) *StoreError {
	return &StoreError{
		Op:     op,
		Entity: entity,
		ID:     id,
		Err:    err,
	}
}

// NotFound returns a StoreError wrapping ErrNotFound.
func NotFound(entity, id string) error {
	return NewStoreError("get", entity, id, ErrNotFound)
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
	Kind    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// Unwrap returns the sentinel the validation failure belongs to, if any.
func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// InvalidTrade creates a ValidationError that matches ErrInvalidTrade.
func InvalidTrade(field string, value interface{}, message string) *ValidationError {
	e := NewValidationError(field, value, message)
	e.Kind = ErrInvalidTrade
	return e
}

// InvalidJournal creates a ValidationError that matches ErrInvalidJournal.
func InvalidJournal(field string, value interface{}, message string) *ValidationError {
	e := NewValidationError(field, value, message)
	e.Kind = ErrInvalidJournal
	return e
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
