package rbac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/admindash/internal/projector"
	"github.com/odyssey-erp/admindash/internal/roles"
	"github.com/odyssey-erp/admindash/internal/shared"
	"github.com/odyssey-erp/admindash/internal/store/memory"
	"github.com/odyssey-erp/admindash/internal/users"
)

func seededIntegrity() Integrity {
	return Integrity{
		Users: memory.New(users.Descriptor(), memory.WithSeed[users.User, users.Patch]([]users.User{
			{ID: 1, Name: "John Doe", Email: "john@example.com", Role: "Admin", Status: users.StatusActive},
			{ID: 2, Name: "Eve", Email: "eve@example.com", Role: "Auditor", Status: users.StatusActive},
		})),
		Roles: memory.New(roles.Descriptor(), memory.WithSeed[roles.Role, roles.Patch]([]roles.Role{
			{ID: 1, Name: "Admin", Permissions: roles.PermissionSet{"Read", "Write", "Delete", "Export"}},
		})),
		Permissions: memory.New(PermissionDescriptor(), memory.WithSeed[Permission, PermissionPatch]([]Permission{
			{ID: 1, Name: "Read"}, {ID: 2, Name: "Write"}, {ID: 3, Name: "Delete"},
		})),
	}
}

func TestIntegrityReportsWeakReferences(t *testing.T) {
	report, err := seededIntegrity().Check(context.Background())
	require.NoError(t, err)

	assert.False(t, report.Clean())
	assert.Equal(t, []DanglingPermission{{RoleID: 1, RoleName: "Admin", Permission: "Export"}}, report.DanglingPermissions)
	assert.Equal(t, []OrphanUser{{UserID: 2, Email: "eve@example.com", Role: "Auditor"}}, report.OrphanUsers)
}

func TestIntegrityCleanCollections(t *testing.T) {
	report := CrossReference(
		[]users.User{{ID: 1, Role: "Viewer"}},
		[]roles.Role{{ID: 3, Name: "Viewer", Permissions: roles.PermissionSet{"Read"}}},
		[]Permission{{ID: 1, Name: "Read"}},
	)
	assert.True(t, report.Clean())
}

func TestIntegrityPropagatesStoreErrors(t *testing.T) {
	i := seededIntegrity()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := i.Check(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestPermissionKind(t *testing.T) {
	base := Permission{ID: 1, Name: "Read", Description: "Ability to view resources"}
	draft := base
	draft.Description = "View"
	patch := DiffPermission(base, draft)
	assert.Nil(t, patch.Name)
	require.NotNil(t, patch.Description)
	assert.Equal(t, draft, ApplyPermission(base, patch))

	c, err := ParsePermissionFilter("Write")
	require.NoError(t, err)
	assert.Equal(t, projector.ByName("Write"), c)

	err = PermissionDescriptor().Validate(Permission{Description: "no name"})
	require.ErrorIs(t, err, shared.ErrValidation)
}
