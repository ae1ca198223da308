// Package domain defines core types, interfaces, and errors for the janitor.
package domain

import "fmt"

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a conflict (e.g., duplicate resource).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// TenantNotFoundError indicates that no tenant matched the identifier a
// cross-account provisioning call resolved. This is a configuration or data
// problem and is surfaced to the caller rather than swallowed.
type TenantNotFoundError struct {
	Identifier string
	Mode       AuthMode
}

func (e *TenantNotFoundError) Error() string {
	return fmt.Sprintf("no tenant found for %s %q", e.Mode, e.Identifier)
}

// LookupUnavailableError indicates the identity lookup service returned a
// non-success status (or timed out) for a tenant's batch. The batch is left
// untouched and retried on the next scheduled run.
type LookupUnavailableError struct {
	Tenant string
	Status LookupStatus
}

func (e *LookupUnavailableError) Error() string {
	return fmt.Sprintf("identity lookup unresolved for tenant %s: %s", e.Tenant, e.Status)
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}
