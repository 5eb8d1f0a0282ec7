// Package cli implements the admindash operator commands on top of the
// dashboard and list controllers.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/odyssey-erp/admindash/internal/dashboard"
	"github.com/odyssey-erp/admindash/internal/entity"
	"github.com/odyssey-erp/admindash/internal/listctl"
	"github.com/odyssey-erp/admindash/internal/notify"
	"github.com/odyssey-erp/admindash/internal/rbac"
	"github.com/odyssey-erp/admindash/internal/roles"
	"github.com/odyssey-erp/admindash/internal/shared"
	"github.com/odyssey-erp/admindash/internal/users"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
	// ExitDirty is returned by the integrity command when weak references were found.
	ExitDirty = 3
)

// AdminCLI runs commands against one set of stores.
type AdminCLI struct {
	dash      *dashboard.Dashboard
	integrity rbac.Integrity
}

// NewAdminCLI wires a dashboard over stores. Notifications raised by the
// controllers are passed to notifier.
func NewAdminCLI(stores dashboard.Stores, notifier notify.Notifier, opts ...listctl.Option) (*AdminCLI, error) {
	if stores.Users == nil || stores.Roles == nil || stores.Permissions == nil {
		return nil, errors.New("admin cli: stores not configured")
	}
	opts = append([]listctl.Option{listctl.WithNotifier(notifier)}, opts...)
	return &AdminCLI{
		dash:      dashboard.New(stores, opts...),
		integrity: rbac.Integrity{Users: stores.Users, Roles: stores.Roles, Permissions: stores.Permissions},
	}, nil
}

// Close unmounts the dashboard.
func (c *AdminCLI) Close() {
	if c != nil && c.dash != nil {
		c.dash.Close()
	}
}

// BrowseOptions configures the browse command.
type BrowseOptions struct {
	Kind       string
	Query      string
	Filter     string
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// BrowseCommand lists the visible rows of one kind.
func (c *AdminCLI) BrowseCommand(ctx context.Context, opts BrowseOptions) int {
	if err := c.dash.Select(ctx, entity.Kind(strings.ToLower(opts.Kind))); err != nil {
		fmt.Fprintf(opts.Stderr, "browse: %v\n", err)
		if errors.Is(err, shared.ErrUnknownKind) {
			return ExitUsage
		}
		return ExitError
	}
	c.dash.SetQuery(opts.Query)
	if opts.Filter != "" {
		if err := c.dash.SetFilter(opts.Filter); err != nil {
			fmt.Fprintf(opts.Stderr, "browse: %v\n", err)
			return ExitUsage
		}
	}
	view := c.dash.View()
	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(view); err != nil {
			fmt.Fprintf(opts.Stderr, "browse: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
	renderRows(opts.Stdout, view)
	return ExitOK
}

// DeleteOptions configures the delete command.
type DeleteOptions struct {
	Kind   string
	ID     int64
	Stdout io.Writer
	Stderr io.Writer
}

// DeleteCommand removes one record through the kind's list controller.
func (c *AdminCLI) DeleteCommand(ctx context.Context, opts DeleteOptions) int {
	if opts.ID <= 0 {
		fmt.Fprintln(opts.Stderr, "delete: --id is required")
		return ExitUsage
	}
	kind := entity.Kind(strings.ToLower(opts.Kind))
	if err := c.dash.Select(ctx, kind); err != nil {
		fmt.Fprintf(opts.Stderr, "delete: %v\n", err)
		if errors.Is(err, shared.ErrUnknownKind) {
			return ExitUsage
		}
		return ExitError
	}
	var err error
	switch kind {
	case entity.KindUsers:
		ctl, _ := c.dash.Users()
		err = ctl.Delete(ctx, opts.ID)
	case entity.KindRoles:
		ctl, _ := c.dash.Roles()
		err = ctl.Delete(ctx, opts.ID)
	case entity.KindPermissions:
		ctl, _ := c.dash.Permissions()
		err = ctl.Delete(ctx, opts.ID)
	}
	if err != nil {
		fmt.Fprintf(opts.Stderr, "delete: %v\n", err)
		return ExitError
	}
	fmt.Fprintf(opts.Stdout, "deleted %s %d\n", kind, opts.ID)
	return ExitOK
}

// IntegrityOptions configures the integrity command.
type IntegrityOptions struct {
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// IntegrityCommand reports role permissions and user roles that reference
// missing records.
func (c *AdminCLI) IntegrityCommand(ctx context.Context, opts IntegrityOptions) int {
	report, err := c.integrity.Check(ctx)
	if err != nil {
		fmt.Fprintf(opts.Stderr, "integrity: %v\n", err)
		return ExitError
	}
	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(report); err != nil {
			fmt.Fprintf(opts.Stderr, "integrity: %v\n", err)
			return ExitError
		}
	} else {
		renderReport(opts.Stdout, report)
	}
	if !report.Clean() {
		return ExitDirty
	}
	return ExitOK
}

func renderRows(out io.Writer, view dashboard.View) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	switch view.Kind {
	case entity.KindUsers:
		fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tSTATUS")
	case entity.KindRoles:
		fmt.Fprintln(tw, "ID\tNAME\tPERMISSIONS")
	case entity.KindPermissions:
		fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
	}
	for _, row := range view.Rows {
		switch r := row.(type) {
		case users.User:
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Email, r.Role, r.Status)
		case roles.Role:
			fmt.Fprintf(tw, "%d\t%s\t%s\n", r.ID, r.Name, strings.Join(r.Permissions, ", "))
		case rbac.Permission:
			fmt.Fprintf(tw, "%d\t%s\t%s\n", r.ID, r.Name, r.Description)
		}
	}
	if len(view.Rows) == 0 {
		fmt.Fprintf(tw, "No %s found.\n", view.Kind)
	}
}

func renderReport(out io.Writer, report rbac.Report) {
	if report.Clean() {
		fmt.Fprintln(out, "No dangling references.")
		return
	}
	if len(report.DanglingPermissions) > 0 {
		fmt.Fprintf(out, "%d role permission(s) without a permission record:\n", len(report.DanglingPermissions))
		for _, d := range report.DanglingPermissions {
			fmt.Fprintf(out, " - role %s (%d) grants %s\n", d.RoleName, d.RoleID, d.Permission)
		}
	}
	if len(report.OrphanUsers) > 0 {
		fmt.Fprintf(out, "%d user(s) with an unknown role:\n", len(report.OrphanUsers))
		for _, u := range report.OrphanUsers {
			fmt.Fprintf(out, " - %s (%d) has role %s\n", u.Email, u.UserID, u.Role)
		}
	}
}

// PrintNotifier writes one line per notification to w.
func PrintNotifier(w io.Writer) notify.Notifier {
	return notify.NotifierFunc(func(n notify.Notification) {
		if n.Detail != "" {
			fmt.Fprintf(w, "%s: %s (%s)\n", n.Title, n.Description, n.Detail)
			return
		}
		fmt.Fprintf(w, "%s: %s\n", n.Title, n.Description)
	})
}
