// Package store holds decorators shared by every entity store backend.
package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/odyssey-erp/admindash/internal/entity"
	"github.com/odyssey-erp/admindash/internal/observability"
	"github.com/odyssey-erp/admindash/internal/shared"
)

// Instrumented records metrics and debug logs for every call of the wrapped store.
type Instrumented[T any, P any] struct {
	next    entity.Store[T, P]
	kind    string
	metrics *observability.Metrics
	logger  *slog.Logger
}

// Instrument wraps next. A nil metrics or logger disables that concern.
func Instrument[T any, P any](next entity.Store[T, P], kind entity.Kind, metrics *observability.Metrics, logger *slog.Logger) *Instrumented[T, P] {
	return &Instrumented[T, P]{next: next, kind: string(kind), metrics: metrics, logger: logger}
}

var _ entity.Store[struct{}, struct{}] = (*Instrumented[struct{}, struct{}])(nil)

func (s *Instrumented[T, P]) GetAll(ctx context.Context) ([]T, error) {
	start := time.Now()
	items, err := s.next.GetAll(ctx)
	s.observe(ctx, "get_all", 0, start, err)
	return items, err
}

func (s *Instrumented[T, P]) Get(ctx context.Context, id int64) (T, error) {
	start := time.Now()
	item, err := s.next.Get(ctx, id)
	s.observe(ctx, "get", id, start, err)
	return item, err
}

func (s *Instrumented[T, P]) Create(ctx context.Context, draft T) (T, error) {
	start := time.Now()
	item, err := s.next.Create(ctx, draft)
	s.observe(ctx, "create", 0, start, err)
	return item, err
}

func (s *Instrumented[T, P]) Update(ctx context.Context, id int64, patch P) (T, error) {
	start := time.Now()
	item, err := s.next.Update(ctx, id, patch)
	s.observe(ctx, "update", id, start, err)
	return item, err
}

func (s *Instrumented[T, P]) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	err := s.next.Delete(ctx, id)
	s.observe(ctx, "delete", id, start, err)
	return err
}

func (s *Instrumented[T, P]) observe(ctx context.Context, op string, id int64, start time.Time, err error) {
	elapsed := time.Since(start)
	s.metrics.ObserveStore(s.kind, op, elapsed, err)
	if s.logger == nil {
		return
	}
	attrs := []any{slog.String("kind", s.kind), slog.String("op", op), slog.Duration("elapsed", elapsed)}
	if id != 0 {
		attrs = append(attrs, slog.Int64("id", id))
	}
	if err != nil && !expected(err) {
		s.logger.WarnContext(ctx, "store call failed", append(attrs, slog.Any("error", err))...)
		return
	}
	s.logger.DebugContext(ctx, "store call", attrs...)
}

// expected reports errors caused by the caller rather than the backend.
func expected(err error) bool {
	return errors.Is(err, shared.ErrNotFound) || errors.Is(err, shared.ErrValidation) || errors.Is(err, context.Canceled)
}
