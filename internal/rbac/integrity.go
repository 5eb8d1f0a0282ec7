package rbac

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/admindash/internal/entity"
	"github.com/odyssey-erp/admindash/internal/roles"
	"github.com/odyssey-erp/admindash/internal/users"
)

// DanglingPermission names a role permission with no matching Permission record.
type DanglingPermission struct {
	RoleID     int64  `json:"role_id"`
	RoleName   string `json:"role_name"`
	Permission string `json:"permission"`
}

// OrphanUser names a user whose role has no matching Role record.
type OrphanUser struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Report lists weak references found across the three collections.
type Report struct {
	DanglingPermissions []DanglingPermission `json:"dangling_permissions"`
	OrphanUsers         []OrphanUser         `json:"orphan_users"`
}

// Clean reports whether no dangling reference was found.
func (r Report) Clean() bool {
	return len(r.DanglingPermissions) == 0 && len(r.OrphanUsers) == 0
}

// Integrity checks references between users, roles and permissions. It reads
// only and never repairs anything.
type Integrity struct {
	Users       entity.Store[users.User, users.Patch]
	Roles       entity.Store[roles.Role, roles.Patch]
	Permissions entity.Store[Permission, PermissionPatch]
}

// Check loads the three collections concurrently and cross references them.
func (i Integrity) Check(ctx context.Context) (Report, error) {
	var (
		us    []users.User
		rs    []roles.Role
		perms []Permission
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		us, err = i.Users.GetAll(gctx)
		if err != nil {
			return fmt.Errorf("rbac: load users: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		rs, err = i.Roles.GetAll(gctx)
		if err != nil {
			return fmt.Errorf("rbac: load roles: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		perms, err = i.Permissions.GetAll(gctx)
		if err != nil {
			return fmt.Errorf("rbac: load permissions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	return CrossReference(us, rs, perms), nil
}

// CrossReference computes the report from already loaded collections.
func CrossReference(us []users.User, rs []roles.Role, perms []Permission) Report {
	known := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		known[p.Name] = struct{}{}
	}
	roleNames := make(map[string]struct{}, len(rs))
	report := Report{}
	for _, r := range rs {
		roleNames[r.Name] = struct{}{}
		for _, p := range r.Permissions {
			if _, ok := known[p]; !ok {
				report.DanglingPermissions = append(report.DanglingPermissions, DanglingPermission{RoleID: r.ID, RoleName: r.Name, Permission: p})
			}
		}
	}
	for _, u := range us {
		if _, ok := roleNames[u.Role]; !ok {
			report.OrphanUsers = append(report.OrphanUsers, OrphanUser{UserID: u.ID, Email: u.Email, Role: u.Role})
		}
	}
	return report
}
