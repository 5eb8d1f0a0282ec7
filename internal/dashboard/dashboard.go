// Package dashboard is the top-level view: it holds the selected kind, the
// search query and the filter, and mounts a fresh list controller for the
// selected kind. Nothing is cached across kind switches.
package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/odyssey-erp/admindash/internal/entity"
	"github.com/odyssey-erp/admindash/internal/listctl"
	"github.com/odyssey-erp/admindash/internal/projector"
	"github.com/odyssey-erp/admindash/internal/rbac"
	"github.com/odyssey-erp/admindash/internal/roles"
	"github.com/odyssey-erp/admindash/internal/shared"
	"github.com/odyssey-erp/admindash/internal/users"
)

// Stores are the backing stores of the three kinds.
type Stores struct {
	Users       entity.Store[users.User, users.Patch]
	Roles       entity.Store[roles.Role, roles.Patch]
	Permissions entity.Store[rbac.Permission, rbac.PermissionPatch]
}

// View is the snapshot handed to the presentation layer.
type View struct {
	Kind          entity.Kind         `json:"kind"`
	Query         string              `json:"query"`
	Filter        projector.Criterion `json:"filter"`
	FilterOptions []string            `json:"filter_options"`
	Loading       bool                `json:"loading"`
	EditingID     int64               `json:"editing_id,omitempty"`
	Editing       bool                `json:"editing"`
	Rows          []any               `json:"rows"`
	LoadErr       error               `json:"-"`
}

// Dashboard is safe for concurrent use.
type Dashboard struct {
	stores Stores
	opts   []listctl.Option

	mu        sync.Mutex
	query     string
	criterion projector.Criterion
	pane      pane
}

// New builds a dashboard with no kind selected. opts are passed to every
// controller it mounts.
func New(stores Stores, opts ...listctl.Option) *Dashboard {
	return &Dashboard{stores: stores, opts: opts}
}

// Select switches to kind. The previous controller is unmounted, a fresh one
// is mounted and activated, and the filter is reset to All. The query is kept.
// Selecting the mounted kind again does nothing.
func (d *Dashboard) Select(ctx context.Context, kind entity.Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("dashboard: select %q: %w", kind, shared.ErrUnknownKind)
	}
	d.mu.Lock()
	if d.pane != nil && d.pane.kind() == kind {
		d.mu.Unlock()
		return nil
	}
	if d.pane != nil {
		d.pane.unmount()
	}
	p := d.mount(kind)
	d.pane = p
	d.criterion = projector.All()
	d.mu.Unlock()

	return p.activate(ctx)
}

func (d *Dashboard) mount(kind entity.Kind) pane {
	switch kind {
	case entity.KindRoles:
		return newPane(roles.Descriptor(), d.stores.Roles, d.opts)
	case entity.KindPermissions:
		return newPane(rbac.PermissionDescriptor(), d.stores.Permissions, d.opts)
	default:
		return newPane(users.Descriptor(), d.stores.Users, d.opts)
	}
}

// Refresh refetches the mounted kind.
func (d *Dashboard) Refresh(ctx context.Context) error {
	d.mu.Lock()
	p := d.pane
	d.mu.Unlock()
	if p == nil {
		return shared.ErrNotReady
	}
	return p.activate(ctx)
}

// Kind returns the mounted kind, or "" before the first Select.
func (d *Dashboard) Kind() entity.Kind {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pane == nil {
		return ""
	}
	return d.pane.kind()
}

// SetQuery sets the search text. It is matched case-insensitively as typed.
func (d *Dashboard) SetQuery(q string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.query = q
}

// SetFilter parses raw for the mounted kind. An unparseable filter leaves the
// current one in place.
func (d *Dashboard) SetFilter(raw string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pane == nil {
		return shared.ErrNotReady
	}
	c, err := d.pane.parseFilter(raw)
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	d.criterion = c
	return nil
}

// View snapshots the visible rows and view state.
func (d *Dashboard) View() View {
	d.mu.Lock()
	p, query, criterion := d.pane, d.query, d.criterion
	d.mu.Unlock()
	if p == nil {
		return View{Query: query, Filter: projector.All(), Rows: []any{}}
	}
	pv := p.snapshot(query, criterion)
	return View{
		Kind:          p.kind(),
		Query:         query,
		Filter:        criterion,
		FilterOptions: p.filterOptions(),
		Loading:       pv.loading,
		EditingID:     pv.editingID,
		Editing:       pv.editing,
		Rows:          pv.rows,
		LoadErr:       pv.loadErr,
	}
}

// Close unmounts the current controller.
func (d *Dashboard) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pane != nil {
		d.pane.unmount()
		d.pane = nil
	}
}

// Users returns the mounted users controller.
func (d *Dashboard) Users() (*listctl.Controller[users.User, users.Patch], bool) {
	return controller[users.User, users.Patch](d)
}

// Roles returns the mounted roles controller.
func (d *Dashboard) Roles() (*listctl.Controller[roles.Role, roles.Patch], bool) {
	return controller[roles.Role, roles.Patch](d)
}

// Permissions returns the mounted permissions controller.
func (d *Dashboard) Permissions() (*listctl.Controller[rbac.Permission, rbac.PermissionPatch], bool) {
	return controller[rbac.Permission, rbac.PermissionPatch](d)
}

func controller[T any, P any](d *Dashboard) (*listctl.Controller[T, P], bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.pane.(*typedPane[T, P])
	if !ok {
		return nil, false
	}
	return p.ctl, true
}
