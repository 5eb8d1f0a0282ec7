// Package memory provides the in-memory, latency simulated store used as the
// dashboard's mock backend and in tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/odyssey-erp/admindash/internal/entity"
	"github.com/odyssey-erp/admindash/internal/shared"
)

// Latency configures the simulated delay of each operation.
type Latency struct {
	GetAll time.Duration
	Get    time.Duration
	Create time.Duration
	Update time.Duration
	Delete time.Duration
}

// DefaultLatency matches the delays of the dashboard mock API.
var DefaultLatency = Latency{
	GetAll: 300 * time.Millisecond,
	Get:    200 * time.Millisecond,
	Create: 400 * time.Millisecond,
	Update: 300 * time.Millisecond,
	Delete: 200 * time.Millisecond,
}

// Scale multiplies every delay by f.
func (l Latency) Scale(f float64) Latency {
	scale := func(d time.Duration) time.Duration { return time.Duration(float64(d) * f) }
	return Latency{GetAll: scale(l.GetAll), Get: scale(l.Get), Create: scale(l.Create), Update: scale(l.Update), Delete: scale(l.Delete)}
}

// Store is a thread-safe in-memory collection. It is shared process wide and
// applies last-write-wins semantics.
type Store[T any, P any] struct {
	desc    entity.Descriptor[T, P]
	latency Latency

	mu     sync.RWMutex
	items  []T
	nextID int64
}

var _ entity.Store[struct{}, struct{}] = (*Store[struct{}, struct{}])(nil)

// Option customises a Store.
type Option[T any, P any] func(*Store[T, P])

// WithLatency enables simulated delays.
func WithLatency[T any, P any](l Latency) Option[T, P] {
	return func(s *Store[T, P]) { s.latency = l }
}

// WithSeed preloads records. Their ids are kept as given.
func WithSeed[T any, P any](items []T) Option[T, P] {
	return func(s *Store[T, P]) {
		s.items = s.desc.CloneAll(items)
	}
}

// New constructs a store for the given kind.
func New[T any, P any](desc entity.Descriptor[T, P], opts ...Option[T, P]) *Store[T, P] {
	s := &Store[T, P]{desc: desc}
	for _, opt := range opts {
		opt(s)
	}
	s.nextID = desc.MaxID(s.items) + 1
	return s
}

// GetAll returns a copy of the collection.
func (s *Store[T, P]) GetAll(ctx context.Context) ([]T, error) {
	if err := s.wait(ctx, s.latency.GetAll); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.desc.CloneAll(s.items), nil
}

// Get returns one record.
func (s *Store[T, P]) Get(ctx context.Context, id int64) (T, error) {
	var zero T
	if err := s.wait(ctx, s.latency.Get); err != nil {
		return zero, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.desc.IndexOf(s.items, id)
	if idx < 0 {
		return zero, fmt.Errorf("memory: get %s %d: %w", s.desc.Kind, id, shared.ErrNotFound)
	}
	return s.desc.Clone(s.items[idx]), nil
}

// Create assigns the next id from a monotonic counter and appends the record.
func (s *Store[T, P]) Create(ctx context.Context, draft T) (T, error) {
	var zero T
	if err := s.wait(ctx, s.latency.Create); err != nil {
		return zero, err
	}
	draft = s.desc.Prepare(draft)
	if err := s.desc.Validate(draft); err != nil {
		return zero, fmt.Errorf("memory: create %s: %w", s.desc.Kind, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.desc.SetID(draft, s.nextID)
	s.nextID++
	s.items = append(s.items, rec)
	return s.desc.Clone(rec), nil
}

// Update merges patch into the stored record.
func (s *Store[T, P]) Update(ctx context.Context, id int64, patch P) (T, error) {
	var zero T
	if err := s.wait(ctx, s.latency.Update); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.desc.IndexOf(s.items, id)
	if idx < 0 {
		return zero, fmt.Errorf("memory: update %s %d: %w", s.desc.Kind, id, shared.ErrNotFound)
	}
	merged := s.desc.SetID(s.desc.Apply(s.desc.Clone(s.items[idx]), patch), id)
	if err := s.desc.Validate(merged); err != nil {
		return zero, fmt.Errorf("memory: update %s %d: %w", s.desc.Kind, id, err)
	}
	s.items[idx] = merged
	return s.desc.Clone(merged), nil
}

// Delete removes id when present.
func (s *Store[T, P]) Delete(ctx context.Context, id int64) error {
	if err := s.wait(ctx, s.latency.Delete); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.desc.IndexOf(s.items, id); idx >= 0 {
		s.items = append(s.items[:idx:idx], s.items[idx+1:]...)
	}
	return nil
}

func (s *Store[T, P]) wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return shared.StoreError(err)
	}
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return shared.StoreError(ctx.Err())
	case <-timer.C:
		return nil
	}
}
