package dashboard

import (
	"context"

	"github.com/odyssey-erp/admindash/internal/entity"
	"github.com/odyssey-erp/admindash/internal/listctl"
	"github.com/odyssey-erp/admindash/internal/projector"
)

// pane hides the record type of the mounted controller from the dashboard.
type pane interface {
	kind() entity.Kind
	activate(ctx context.Context) error
	unmount()
	parseFilter(raw string) (projector.Criterion, error)
	filterOptions() []string
	snapshot(query string, c projector.Criterion) paneView
}

type paneView struct {
	rows      []any
	loading   bool
	editingID int64
	editing   bool
	loadErr   error
}

type typedPane[T any, P any] struct {
	desc entity.Descriptor[T, P]
	ctl  *listctl.Controller[T, P]
}

func newPane[T any, P any](desc entity.Descriptor[T, P], store entity.Store[T, P], opts []listctl.Option) *typedPane[T, P] {
	return &typedPane[T, P]{desc: desc, ctl: listctl.New(desc, store, opts...)}
}

func (p *typedPane[T, P]) kind() entity.Kind { return p.desc.Kind }

func (p *typedPane[T, P]) activate(ctx context.Context) error { return p.ctl.Activate(ctx) }

func (p *typedPane[T, P]) unmount() { p.ctl.Unmount() }

func (p *typedPane[T, P]) parseFilter(raw string) (projector.Criterion, error) {
	return p.desc.ParseFilter(raw)
}

func (p *typedPane[T, P]) filterOptions() []string {
	return append([]string(nil), p.desc.FilterOptions...)
}

func (p *typedPane[T, P]) snapshot(query string, c projector.Criterion) paneView {
	visible := p.ctl.Visible(query, c)
	rows := make([]any, len(visible))
	for i, r := range visible {
		rows[i] = r
	}
	id, editing := p.ctl.EditingID()
	return paneView{rows: rows, loading: p.ctl.Loading(), editingID: id, editing: editing, loadErr: p.ctl.LoadErr()}
}
