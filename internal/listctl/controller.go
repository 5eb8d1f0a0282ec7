// Package listctl implements the list controller shared by every managed
// collection: fetch on activation, confirmed create/update/delete, a single
// edit target with an explicit draft, and projection for display.
package listctl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/admindash/internal/entity"
	"github.com/odyssey-erp/admindash/internal/notify"
	"github.com/odyssey-erp/admindash/internal/projector"
	"github.com/odyssey-erp/admindash/internal/shared"
)

// DefaultTimeout bounds every store call unless overridden.
const DefaultTimeout = 10 * time.Second

// Option customises a controller.
type Option func(*options)

type options struct {
	notifier notify.Notifier
	timeout  time.Duration
}

// WithNotifier sets where notifications are sent.
func WithNotifier(n notify.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithTimeout bounds each store call. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// Controller owns the local copy of one collection.
type Controller[T any, P any] struct {
	desc     entity.Descriptor[T, P]
	store    entity.Store[T, P]
	notifier notify.Notifier
	timeout  time.Duration
	fetch    singleflight.Group

	mu       sync.Mutex
	state    State
	items    []T
	loadErr  error
	edit     editState[T]
	addDraft T
	inflight map[int64]struct{}
}

// New builds a controller in the Uninitialized state.
func New[T any, P any](desc entity.Descriptor[T, P], store entity.Store[T, P], opts ...Option) *Controller[T, P] {
	o := options{notifier: notify.Discard, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.notifier == nil {
		o.notifier = notify.Discard
	}
	return &Controller[T, P]{
		desc:     desc,
		store:    store,
		notifier: o.notifier,
		timeout:  o.timeout,
		addDraft: desc.NewDraft(),
		inflight: make(map[int64]struct{}),
	}
}

// Kind returns the managed kind.
func (c *Controller[T, P]) Kind() entity.Kind {
	return c.desc.Kind
}

// Activate fetches the collection. It is also used to refresh a Ready
// controller. Concurrent calls share one fetch. On failure the collection is
// left empty and an error notification is sent; there is no retry.
func (c *Controller[T, P]) Activate(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateUnmounted {
		c.mu.Unlock()
		return shared.ErrUnmounted
	}
	c.state = StateLoading
	c.mu.Unlock()

	// The shared load outlives any single caller; it is bounded by the
	// controller timeout instead.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.fetch.DoChan("fetch", func() (any, error) {
		return nil, c.load(loadCtx)
	})
	select {
	case <-ctx.Done():
		return shared.StoreError(ctx.Err())
	case res := <-ch:
		return res.Err
	}
}

// Refresh is an alias of Activate for a Ready controller.
func (c *Controller[T, P]) Refresh(ctx context.Context) error {
	return c.Activate(ctx)
}

func (c *Controller[T, P]) load(ctx context.Context) error {
	callCtx, cancel := c.callContext(ctx)
	items, err := c.store.GetAll(callCtx)
	cancel()
	err = shared.StoreError(err)

	c.mu.Lock()
	if c.state == StateUnmounted {
		c.mu.Unlock()
		return shared.ErrUnmounted
	}
	c.state = StateReady
	c.loadErr = err
	if err != nil {
		c.items = nil
		c.edit.clear()
		c.mu.Unlock()
		c.notifier.Notify(notify.Failure(c.desc.Kind, c.desc.Noun, notify.ActionFetch, 0, err))
		return fmt.Errorf("listctl: fetch %s: %w", c.desc.Kind, err)
	}
	c.items = c.desc.CloneAll(items)
	if c.edit.active && c.desc.IndexOf(c.items, c.edit.id) < 0 {
		c.edit.clear()
	}
	c.mu.Unlock()
	return nil
}

// Add creates draft through the store and appends the confirmed record. The
// add-form draft is reset only on success.
func (c *Controller[T, P]) Add(ctx context.Context, draft T) (T, error) {
	var zero T
	if err := c.ready(); err != nil {
		return zero, err
	}
	callCtx, cancel := c.callContext(ctx)
	created, err := c.store.Create(callCtx, c.desc.Prepare(draft))
	cancel()
	if err != nil {
		err = shared.StoreError(err)
		c.notifier.Notify(notify.Failure(c.desc.Kind, c.desc.Noun, notify.ActionAdd, 0, err))
		return zero, fmt.Errorf("listctl: add %s: %w", c.desc.Noun, err)
	}

	c.mu.Lock()
	if c.state == StateUnmounted {
		c.mu.Unlock()
		return created, nil
	}
	if c.desc.IndexOf(c.items, c.desc.ID(created)) < 0 {
		c.items = append(c.items, c.desc.Clone(created))
	}
	c.addDraft = c.desc.NewDraft()
	c.mu.Unlock()

	c.notifier.Notify(notify.Success(c.desc.Kind, c.desc.Noun, notify.ActionAdd, c.desc.ID(created)))
	return created, nil
}

// AddDraft returns the add-form draft.
func (c *Controller[T, P]) AddDraft() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.desc.Clone(c.addDraft)
}

// SetAddDraft replaces the add-form draft.
func (c *Controller[T, P]) SetAddDraft(draft T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addDraft = c.desc.Clone(draft)
}

// SubmitAdd creates the current add-form draft.
func (c *Controller[T, P]) SubmitAdd(ctx context.Context) (T, error) {
	return c.Add(ctx, c.AddDraft())
}

// Delete removes id through the store, then locally.
func (c *Controller[T, P]) Delete(ctx context.Context, id int64) error {
	if err := c.ready(); err != nil {
		return err
	}
	if err := c.acquire(id); err != nil {
		c.notifier.Notify(notify.Failure(c.desc.Kind, c.desc.Noun, notify.ActionDelete, id, err))
		return fmt.Errorf("listctl: delete %s %d: %w", c.desc.Noun, id, err)
	}
	defer c.release(id)

	callCtx, cancel := c.callContext(ctx)
	err := c.store.Delete(callCtx, id)
	cancel()
	if err != nil {
		err = shared.StoreError(err)
		c.notifier.Notify(notify.Failure(c.desc.Kind, c.desc.Noun, notify.ActionDelete, id, err))
		return fmt.Errorf("listctl: delete %s %d: %w", c.desc.Noun, id, err)
	}

	c.mu.Lock()
	if idx := c.desc.IndexOf(c.items, id); idx >= 0 {
		c.items = append(c.items[:idx:idx], c.items[idx+1:]...)
	}
	if c.edit.active && c.edit.id == id {
		c.edit.clear()
	}
	c.mu.Unlock()

	c.notifier.Notify(notify.Success(c.desc.Kind, c.desc.Noun, notify.ActionDelete, id))
	return nil
}

// BeginEdit puts id in edit mode with a draft copied from the committed
// record. Switching away from a draft with unsaved changes fails with
// shared.ErrUnsavedChanges unless DiscardChanges is passed.
func (c *Controller[T, P]) BeginEdit(id int64, opts ...EditOption) error {
	var o editOptions
	for _, opt := range opts {
		opt(&o)
	}

	c.mu.Lock()
	if err := c.readyLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	idx := c.desc.IndexOf(c.items, id)
	if idx < 0 {
		c.mu.Unlock()
		return fmt.Errorf("listctl: edit %s %d: %w", c.desc.Noun, id, shared.ErrNotFound)
	}
	if c.edit.active && c.edit.id == id {
		c.mu.Unlock()
		return nil
	}
	var discarded int64
	if c.edit.active && c.dirtyLocked() {
		if !o.discard {
			prev := c.edit.id
			c.mu.Unlock()
			return fmt.Errorf("listctl: edit %s %d while %d has changes: %w", c.desc.Noun, id, prev, shared.ErrUnsavedChanges)
		}
		discarded = c.edit.id
	}
	committed := c.items[idx]
	c.edit = editState[T]{active: true, id: id, base: c.desc.Clone(committed), draft: c.desc.Clone(committed)}
	c.mu.Unlock()

	if discarded != 0 {
		c.notifier.Notify(notify.Discarded(c.desc.Kind, c.desc.Noun, discarded))
	}
	return nil
}

// CancelEdit leaves edit mode without persisting the draft.
func (c *Controller[T, P]) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edit.clear()
}

// UpdateDraft applies fn to the draft of the edit target. It fails with
// shared.ErrBusy while a mutation of the target is in flight.
func (c *Controller[T, P]) UpdateDraft(fn func(*T)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.edit.active {
		return shared.ErrNotEditing
	}
	if _, busy := c.inflight[c.edit.id]; busy {
		return fmt.Errorf("listctl: edit %s %d: %w", c.desc.Noun, c.edit.id, shared.ErrBusy)
	}
	draft := c.desc.Clone(c.edit.draft)
	fn(&draft)
	c.edit.draft = c.desc.SetID(draft, c.edit.id)
	return nil
}

// SetDraft replaces the draft of the edit target. The id is kept.
func (c *Controller[T, P]) SetDraft(draft T) error {
	return c.UpdateDraft(func(d *T) { *d = c.desc.Clone(draft) })
}

// Draft returns the in-progress draft, if any.
func (c *Controller[T, P]) Draft() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.edit.active {
		var zero T
		return zero, false
	}
	return c.desc.Clone(c.edit.draft), true
}

// Dirty reports whether the draft differs from the record it was copied from.
func (c *Controller[T, P]) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.edit.active && c.dirtyLocked()
}

// EditingID returns the edit target.
func (c *Controller[T, P]) EditingID() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.edit.id, c.edit.active
}

// CommitEdit sends the fields changed in the draft to the store. On success
// the local record is replaced by the store's record and edit mode ends. On
// failure the collection and the edit target are left as they were.
func (c *Controller[T, P]) CommitEdit(ctx context.Context) (T, error) {
	var zero T
	c.mu.Lock()
	if err := c.readyLocked(); err != nil {
		c.mu.Unlock()
		return zero, err
	}
	if !c.edit.active {
		c.mu.Unlock()
		return zero, shared.ErrNotEditing
	}
	id := c.edit.id
	if err := c.acquireLocked(id); err != nil {
		c.mu.Unlock()
		c.notifier.Notify(notify.Failure(c.desc.Kind, c.desc.Noun, notify.ActionUpdate, id, err))
		return zero, fmt.Errorf("listctl: update %s %d: %w", c.desc.Noun, id, err)
	}
	patch := c.desc.Diff(c.edit.base, c.edit.draft)
	c.mu.Unlock()
	defer c.release(id)

	callCtx, cancel := c.callContext(ctx)
	updated, err := c.store.Update(callCtx, id, patch)
	cancel()
	if err != nil {
		err = shared.StoreError(err)
		c.notifier.Notify(notify.Failure(c.desc.Kind, c.desc.Noun, notify.ActionUpdate, id, err))
		return zero, fmt.Errorf("listctl: update %s %d: %w", c.desc.Noun, id, err)
	}

	c.mu.Lock()
	if idx := c.desc.IndexOf(c.items, id); idx >= 0 {
		c.items[idx] = c.desc.Clone(updated)
	}
	if c.edit.active && c.edit.id == id {
		c.edit.clear()
	}
	c.mu.Unlock()

	c.notifier.Notify(notify.Success(c.desc.Kind, c.desc.Noun, notify.ActionUpdate, id))
	return updated, nil
}

// Visible projects the committed collection for display.
func (c *Controller[T, P]) Visible(query string, criterion projector.Criterion) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.desc.CloneAll(projector.Project(c.items, query, criterion, c.desc.Search))
}

// Items returns a copy of the committed collection.
func (c *Controller[T, P]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.desc.CloneAll(c.items)
}

// State returns the lifecycle state.
func (c *Controller[T, P]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Loading reports whether a fetch is outstanding.
func (c *Controller[T, P]) Loading() bool {
	return c.State() == StateLoading
}

// LoadErr returns the error of the last fetch, if it failed.
func (c *Controller[T, P]) LoadErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadErr
}

// Unmount discards local state. Results of calls still in flight are dropped.
func (c *Controller[T, P]) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateUnmounted
	c.items = nil
	c.edit.clear()
}

func (c *Controller[T, P]) ready() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readyLocked()
}

func (c *Controller[T, P]) readyLocked() error {
	switch c.state {
	case StateReady:
		return nil
	case StateUnmounted:
		return shared.ErrUnmounted
	default:
		return shared.ErrNotReady
	}
}

func (c *Controller[T, P]) dirtyLocked() bool {
	return !c.desc.EmptyPatch(c.desc.Diff(c.edit.base, c.edit.draft))
}

// acquire marks id as having a mutation in flight.
func (c *Controller[T, P]) acquire(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.acquireLocked(id)
}

func (c *Controller[T, P]) acquireLocked(id int64) error {
	if _, busy := c.inflight[id]; busy {
		return shared.ErrBusy
	}
	c.inflight[id] = struct{}{}
	return nil
}

func (c *Controller[T, P]) release(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, id)
}

func (c *Controller[T, P]) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}
