// Package notify carries toast-style notifications from list controllers to
// the presentation layer.
package notify

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/admindash/internal/entity"
	"github.com/odyssey-erp/admindash/internal/shared"
)

// Severity selects how a notification is rendered.
type Severity string

const (
	// SeverityDefault is used for confirmations.
	SeverityDefault Severity = "default"
	// SeverityWarning is used for explicit but lossy actions such as discarding a draft.
	SeverityWarning Severity = "warning"
	// SeverityDestructive is used for failures.
	SeverityDestructive Severity = "destructive"
)

// Action names the operation a notification reports on.
type Action string

const (
	ActionFetch   Action = "fetch"
	ActionAdd     Action = "add"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionDiscard Action = "discard"
)

var pastTense = map[Action]string{
	ActionFetch:   "fetched",
	ActionAdd:     "added",
	ActionUpdate:  "updated",
	ActionDelete:  "deleted",
	ActionDiscard: "discarded",
}

// Notification is one toast.
type Notification struct {
	ID          string      `json:"id"`
	Kind        entity.Kind `json:"kind"`
	Action      Action      `json:"action"`
	RecordID    int64       `json:"record_id,omitempty"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Severity    Severity    `json:"severity"`
	Detail      string      `json:"detail,omitempty"`
	At          time.Time   `json:"at"`
	Err         error       `json:"-"`
}

// Success builds the confirmation for a completed action, e.g.
// "User added successfully".
func Success(kind entity.Kind, noun string, action Action, id int64) Notification {
	return Notification{
		ID:          uuid.NewString(),
		Kind:        kind,
		Action:      action,
		RecordID:    id,
		Title:       "Success",
		Description: fmt.Sprintf("%s %s successfully", noun, pastTense[action]),
		Severity:    SeverityDefault,
		At:          time.Now(),
	}
}

// Failure builds the error toast for a failed action, e.g. "Failed to add user".
// Fetch failures name the collection instead of the record noun.
func Failure(kind entity.Kind, noun string, action Action, id int64, err error) Notification {
	object := strings.ToLower(noun)
	if action == ActionFetch {
		object = string(kind)
	}
	return Notification{
		ID:          uuid.NewString(),
		Kind:        kind,
		Action:      action,
		RecordID:    id,
		Title:       "Error",
		Description: fmt.Sprintf("Failed to %s %s", action, object),
		Severity:    SeverityDestructive,
		Detail:      shared.UserSafeMessage(err),
		At:          time.Now(),
		Err:         err,
	}
}

// Discarded builds the warning emitted when unsaved edits are dropped on purpose.
func Discarded(kind entity.Kind, noun string, id int64) Notification {
	return Notification{
		ID:          uuid.NewString(),
		Kind:        kind,
		Action:      ActionDiscard,
		RecordID:    id,
		Title:       "Changes discarded",
		Description: fmt.Sprintf("Unsaved changes to %s %d were discarded", strings.ToLower(noun), id),
		Severity:    SeverityWarning,
		At:          time.Now(),
	}
}

// Notifier receives notifications. Implementations must not block.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

// Notify calls f.
func (f NotifierFunc) Notify(n Notification) { f(n) }

// Discard drops every notification.
var Discard Notifier = NotifierFunc(func(Notification) {})

// Multi fans a notification out to several notifiers.
type Multi []Notifier

// Notify forwards n to every non-nil notifier.
func (m Multi) Notify(n Notification) {
	for _, nt := range m {
		if nt != nil {
			nt.Notify(n)
		}
	}
}

// Log mirrors notifications to a structured logger.
type Log struct {
	Logger *slog.Logger
}

// Notify logs n at a level matching its severity.
func (l Log) Notify(n Notification) {
	if l.Logger == nil {
		return
	}
	attrs := []any{
		slog.String("kind", string(n.Kind)),
		slog.String("action", string(n.Action)),
		slog.String("description", n.Description),
	}
	if n.RecordID != 0 {
		attrs = append(attrs, slog.Int64("record_id", n.RecordID))
	}
	switch n.Severity {
	case SeverityDestructive:
		l.Logger.Error("notification", append(attrs, slog.Any("error", n.Err))...)
	case SeverityWarning:
		l.Logger.Warn("notification", attrs...)
	default:
		l.Logger.Info("notification", attrs...)
	}
}

// Stream is a buffered notification channel. When the reader falls behind,
// new notifications are dropped and counted rather than blocking controllers.
type Stream struct {
	mu      sync.Mutex
	ch      chan Notification
	closed  bool
	dropped int
}

// NewStream allocates a stream with the given buffer size.
func NewStream(buffer int) *Stream {
	if buffer <= 0 {
		buffer = 16
	}
	return &Stream{ch: make(chan Notification, buffer)}
}

// C returns the receive side.
func (s *Stream) C() <-chan Notification {
	return s.ch
}

// Notify enqueues n without blocking.
func (s *Stream) Notify(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- n:
	default:
		s.dropped++
	}
}

// Dropped reports how many notifications were lost to a full buffer.
func (s *Stream) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close ends the stream. Later notifications are ignored.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}
