package application

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/frontdesk-console/internal/tapechart"
)

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrOperationActive is returned when a second gesture starts while one
	// is still dragging or committing. The in-flight operation is untouched.
	ErrOperationActive = errors.New("application: another operation is active")
	// ErrInvalidOperationState is returned for calls that are not legal in
	// the operation's current state.
	ErrInvalidOperationState = errors.New("application: invalid operation state")
	// ErrNothingToUndo is returned when the undo history is empty.
	ErrNothingToUndo = errors.New("application: nothing to undo")
	// ErrChartUnavailable is returned when the calendar snapshot could not be
	// fetched. The current view stays unusable until a reload succeeds.
	ErrChartUnavailable = errors.New("application: chart unavailable")
	// ErrInvalidCredentials is returned for failed login attempts.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrAccountDisabled is returned when a disabled staff account logs in.
	ErrAccountDisabled = errors.New("application: account disabled")
	// ErrSessionExpired is returned when a presented session token is stale.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrSessionRevoked is returned when a presented session was revoked.
	ErrSessionRevoked = errors.New("application: session revoked")
)

// ValidationError captures field level validation issues that callers can
// surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// ConflictError rejects a drop whose re-validation found conflicts. It is
// recoverable: the gesture stays alive so the caller can retry elsewhere or
// with an explicit override.
type ConflictError struct {
	Results []tapechart.BatchResult
}

// Error implements the error interface.
func (c *ConflictError) Error() string {
	if c == nil {
		return ""
	}
	messages := make([]string, 0, len(c.Results))
	for _, result := range c.Results {
		if result.Conflict != nil {
			messages = append(messages, result.Conflict.Message)
		}
	}
	if len(messages) == 0 {
		return "assignment rejected"
	}
	return "assignment rejected: " + strings.Join(messages, "; ")
}

// Conflicts returns only the failing members.
func (c *ConflictError) Conflicts() []tapechart.BatchResult {
	if c == nil {
		return nil
	}
	failed := make([]tapechart.BatchResult, 0, len(c.Results))
	for _, result := range c.Results {
		if result.Conflict != nil {
			failed = append(failed, result)
		}
	}
	return failed
}

// CommitError reports a backend commit that failed fully or partially.
// Partial results remain available so the caller can retry just the failed
// members.
type CommitError struct {
	Result    CommitResult
	Retryable bool
	Partial   bool
	Err       error
}

// Error implements the error interface.
func (c *CommitError) Error() string {
	if c == nil {
		return ""
	}
	if c.Partial {
		return fmt.Sprintf("commit partially failed: %d succeeded, %d failed",
			len(c.Result.Succeeded), len(c.Result.Failed))
	}
	if c.Err != nil {
		return fmt.Sprintf("commit failed: %v", c.Err)
	}
	return "commit failed"
}

// Unwrap exposes the underlying backend error.
func (c *CommitError) Unwrap() error {
	if c == nil {
		return nil
	}
	return c.Err
}
