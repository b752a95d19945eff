// Package domain holds the quote model and the rules that operate on it:
// normalisation, categories, import policies, the import/export codec and
// reconciliation with a remote source.
//
// Errors here describe what went wrong in quote terms. Adapters decide how a
// failure is presented; the domain never speaks HTTP.
package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match them with errors.Is or the Is* helpers below;
// the typed errors carry the detail.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrValidation  = errors.New("validation failed")
	ErrForbidden   = errors.New("forbidden")
	ErrUnavailable = errors.New("unavailable")

	// ErrFormat marks an import document that is not a list of quotes.
	ErrFormat = errors.New("invalid format")

	// ErrSync marks a reconciliation cycle that could not fetch remote
	// quotes. The store is left as it was and the next cycle tries again.
	ErrSync = errors.New("sync failed")

	// ErrPost marks a new quote the remote endpoint did not accept.
	ErrPost = errors.New("post failed")

	// ErrEmptyStore marks an operation that needs at least one quote.
	ErrEmptyStore = errors.New("empty store")
)

// NotFoundError reports a missing entity, such as a remote post.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}

	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError reports that entity id does not exist. id may be empty.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError reports a write rejected because of the entity's current state.
type ConflictError struct {
	Entity string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Reason)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// NewConflictError creates a ConflictError.
func NewConflictError(entity, reason string) error {
	return &ConflictError{Entity: entity, Reason: reason}
}

// ValidationError names the field that broke a rule. Value, when set, is the
// rejected input and is echoed back to API clients.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid quote: " + e.Message
	}

	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationErrorWithValue is NewValidationError with the offending value attached.
func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// ForbiddenError reports an operation the remote refused to perform.
type ForbiddenError struct {
	Operation string
	Reason    string
}

func (e *ForbiddenError) Error() string {
	msg := e.Operation + " not permitted"
	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	return msg
}

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// NewForbiddenError creates a ForbiddenError. reason may be empty.
func NewForbiddenError(operation, reason string) error {
	return &ForbiddenError{Operation: operation, Reason: reason}
}

// UnavailableError reports that a collaborator, usually the remote source,
// could not be reached or answered with a server error.
type UnavailableError struct {
	Service string
	Reason  string
}

func (e *UnavailableError) Error() string {
	msg := e.Service + " is unavailable"
	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	return msg
}

func (e *UnavailableError) Unwrap() error { return ErrUnavailable }

// NewUnavailableError creates an UnavailableError. reason may be empty.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// FormatError explains why an import document was rejected.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string { return "invalid format: " + e.Reason }

func (e *FormatError) Unwrap() error { return ErrFormat }

// NewFormatError creates a FormatError.
func NewFormatError(reason string) error {
	return &FormatError{Reason: reason}
}

// SyncError wraps the fetch failure that ended a reconciliation cycle.
// errors.Is matches both ErrSync and the cause.
type SyncError struct {
	Source string
	Cause  error
}

func (e *SyncError) Error() string {
	if e.Cause == nil {
		return "sync with " + e.Source + " failed"
	}

	return fmt.Sprintf("sync with %s failed: %v", e.Source, e.Cause)
}

func (e *SyncError) Unwrap() []error { return withCause(ErrSync, e.Cause) }

// NewSyncError creates a SyncError for the named source.
func NewSyncError(source string, cause error) error {
	return &SyncError{Source: source, Cause: cause}
}

// PostError wraps the failure of submitting a new quote to the remote.
// errors.Is matches both ErrPost and the cause.
type PostError struct {
	Cause error
}

func (e *PostError) Error() string {
	if e.Cause == nil {
		return "posting quote failed"
	}

	return "posting quote failed: " + e.Cause.Error()
}

func (e *PostError) Unwrap() []error { return withCause(ErrPost, e.Cause) }

// NewPostError creates a PostError.
func NewPostError(cause error) error {
	return &PostError{Cause: cause}
}

// EmptyStoreError is returned by operations that refuse to run on an empty store.
type EmptyStoreError struct {
	Operation string
}

func (e *EmptyStoreError) Error() string {
	return "cannot " + e.Operation + ": no quotes stored"
}

func (e *EmptyStoreError) Unwrap() error { return ErrEmptyStore }

// NewEmptyStoreError creates an EmptyStoreError for operation.
func NewEmptyStoreError(operation string) error {
	return &EmptyStoreError{Operation: operation}
}

func withCause(kind, cause error) []error {
	if cause == nil {
		return []error{kind}
	}

	return []error{kind, cause}
}

// Kind predicates. Each matches anywhere in err's wrap chain.

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsForbidden(err error) bool { return errors.Is(err, ErrForbidden) }
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }
func IsFormat(err error) bool { return errors.Is(err, ErrFormat) }
func IsSync(err error) bool { return errors.Is(err, ErrSync) }
func IsPost(err error) bool { return errors.Is(err, ErrPost) }
func IsEmptyStore(err error) bool { return errors.Is(err, ErrEmptyStore) }
