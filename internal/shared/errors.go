package shared

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
)

var (
	// ErrNotFound indicates a mutation targets an id absent from the store.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates a malformed draft or patch.
	ErrValidation = errors.New("validation failed")
	// ErrStoreUnavailable indicates a transport level failure talking to the store.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrTimeout indicates the store did not settle before the deadline.
	ErrTimeout = errors.New("store timeout")
	// ErrBusy occurs when a mutation is already in flight for the same record.
	ErrBusy = errors.New("mutation already in flight")
	// ErrUnsavedChanges occurs when switching edit targets would drop a dirty draft.
	ErrUnsavedChanges = errors.New("unsaved changes")
	// ErrNotEditing occurs when committing without an edit target.
	ErrNotEditing = errors.New("no record in edit mode")
	// ErrNotReady occurs when mutating a controller before its first fetch settled.
	ErrNotReady = errors.New("controller not ready")
	// ErrUnmounted occurs when using a controller after it was unmounted.
	ErrUnmounted = errors.New("controller unmounted")
	// ErrUnknownKind occurs for an entity kind selector outside users|roles|permissions.
	ErrUnknownKind = errors.New("unknown entity kind")
	// ErrInvalidFilter occurs when a filter string cannot be parsed for a kind.
	ErrInvalidFilter = errors.New("invalid filter")
)

// ValidationError carries per-field messages and matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StoreError normalises low level failures into the store error kinds.
// Errors that already carry a known kind are returned untouched.
func StoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case IsStoreKind(err):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}

// IsStoreKind reports whether err already carries one of the store error kinds.
func IsStoreKind(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrTimeout)
}

// UserSafeMessage returns a short description suitable for notifications.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "Record no longer exists"
	case errors.Is(err, ErrValidation):
		return "Some fields are invalid"
	case errors.Is(err, ErrTimeout):
		return "The store did not respond in time"
	case errors.Is(err, ErrStoreUnavailable):
		return "The store is unavailable"
	case errors.Is(err, ErrBusy):
		return "Another change to this record is still in progress"
	case errors.Is(err, ErrUnsavedChanges):
		return "Save or discard the current edit first"
	default:
		return "Unexpected error"
	}
}
