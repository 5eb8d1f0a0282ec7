package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/admindash/internal/projector"
	"github.com/odyssey-erp/admindash/internal/shared"
)

func TestPermissionSet(t *testing.T) {
	set := NewPermissionSet(" Read", "Write", "Read", "")
	assert.Equal(t, PermissionSet{"Read", "Write"}, set)
	assert.True(t, set.Has("Write"))
	assert.False(t, set.Has("write"))

	added := set.Toggle("Delete")
	assert.Equal(t, PermissionSet{"Read", "Write", "Delete"}, added)
	assert.Equal(t, PermissionSet{"Read", "Write"}, set)
	assert.Equal(t, PermissionSet{"Read", "Write"}, added.Toggle("Delete"))

	assert.True(t, PermissionSet{"Write", "Read"}.Equal(set))
	assert.False(t, PermissionSet{"Read"}.Equal(set))
}

func TestDiffIgnoresPermissionOrder(t *testing.T) {
	base := Role{ID: 1, Name: "Editor", Permissions: PermissionSet{"Read", "Write"}}
	reordered := Clone(base)
	reordered.Permissions = PermissionSet{"Write", "Read"}
	assert.True(t, Diff(base, reordered).IsEmpty())

	granted := Clone(base)
	granted.Permissions = granted.Permissions.Toggle("Delete")
	patch := Diff(base, granted)
	require.NotNil(t, patch.Permissions)
	assert.Nil(t, patch.Name)
	assert.Equal(t, granted, Apply(base, patch))
}

func TestCloneDoesNotAlias(t *testing.T) {
	base := Role{ID: 1, Name: "Viewer", Permissions: PermissionSet{"Read"}}
	cp := Clone(base)
	cp.Permissions[0] = "Write"
	assert.Equal(t, "Read", base.Permissions[0])
}

func TestParseFilter(t *testing.T) {
	cases := map[string]projector.Criterion{
		"All":            projector.All(),
		"":               projector.All(),
		"With Delete":    projector.WithPermission("Delete"),
		"without delete": projector.WithoutPermission("delete"),
		"Without Write":  projector.WithoutPermission("Write"),
	}
	for raw, want := range cases {
		got, err := ParseFilter(raw)
		require.NoError(t, err, raw)
		if want.IsAll() {
			assert.True(t, got.IsAll(), raw)
			continue
		}
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseFilter("Admin")
	require.ErrorIs(t, err, shared.ErrInvalidFilter)
	_, err = ParseFilter("With ")
	require.ErrorIs(t, err, shared.ErrInvalidFilter)
}

func TestValidateRole(t *testing.T) {
	desc := Descriptor()
	require.NoError(t, desc.Validate(Role{Name: "Auditor", Permissions: PermissionSet{}}))
	require.ErrorIs(t, desc.Validate(Role{Permissions: PermissionSet{"Read"}}), shared.ErrValidation)
	require.ErrorIs(t, desc.Validate(Role{Name: "x", Permissions: PermissionSet{""}}), shared.ErrValidation)
}
