// Package domain contains business logic types and errors.
// Domain errors represent business-level failures, NOT HTTP errors.
// They are infrastructure-agnostic and can be mapped to HTTP or view messages by adapters.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates a required field is missing or empty.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyPool indicates a random pick was requested from an empty pool.
	ErrEmptyPool = errors.New("empty pool")

	// ErrStorage indicates a persistence read or write failed.
	ErrStorage = errors.New("storage failure")

	// ErrNetwork indicates a remote fetch or push failed.
	ErrNetwork = errors.New("network failure")

	// ErrImportFormat indicates an import payload is not a JSON array.
	ErrImportFormat = errors.New("invalid import format")
)

// NotFoundError provides context for not found errors.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
	}

	return e.Entity + " not found"
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a not found error with context.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ValidationError provides context for validation errors.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}

	return "validation failed: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error with context.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationErrorWithValue creates a validation error including the invalid value.
func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// EmptyPoolError reports that no quote could be picked for a category.
type EmptyPoolError struct {
	Category string
}

// Error implements the error interface.
func (e *EmptyPoolError) Error() string {
	if e.Category != "" && e.Category != CategoryAll {
		return fmt.Sprintf("no quotes in category %q", e.Category)
	}

	return "no quotes available"
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *EmptyPoolError) Unwrap() error {
	return ErrEmptyPool
}

// NewEmptyPoolError creates an empty pool error for the given category.
func NewEmptyPoolError(category string) error {
	return &EmptyPoolError{Category: category}
}

// StorageError wraps a persistence failure for a single key.
type StorageError struct {
	Op  string
	Key string
	Err error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
	}

	return fmt.Sprintf("storage %s %q failed", e.Op, e.Key)
}

// Unwrap returns both the sentinel and the cause.
func (e *StorageError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrStorage}
	}

	return []error{ErrStorage, e.Err}
}

// NewStorageError creates a storage error for an operation on key.
func NewStorageError(op, key string, err error) error {
	return &StorageError{Op: op, Key: key, Err: err}
}

// NetworkError provides context for remote source failures.
type NetworkError struct {
	Service string
	Reason  string
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
	}

	return fmt.Sprintf("service %q unavailable", e.Service)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *NetworkError) Unwrap() error {
	return ErrNetwork
}

// NewNetworkError creates a network error with context.
func NewNetworkError(service, reason string) error {
	return &NetworkError{Service: service, Reason: reason}
}

// ImportFormatError reports an import payload that could not be read as a JSON array.
type ImportFormatError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *ImportFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid import format: %s: %v", e.Reason, e.Err)
	}

	return "invalid import format: " + e.Reason
}

// Unwrap returns both the sentinel and the cause.
func (e *ImportFormatError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrImportFormat}
	}

	return []error{ErrImportFormat, e.Err}
}

// NewImportFormatError creates an import format error.
func NewImportFormatError(reason string, err error) error {
	return &ImportFormatError{Reason: reason, Err: err}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsEmptyPool checks if an error is an empty pool error.
func IsEmptyPool(err error) bool {
	return errors.Is(err, ErrEmptyPool)
}

// IsStorage checks if an error is a storage error.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}

// IsNetwork checks if an error is a network error.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsImportFormat checks if an error is an import format error.
func IsImportFormat(err error) bool {
	return errors.Is(err, ErrImportFormat)
}
