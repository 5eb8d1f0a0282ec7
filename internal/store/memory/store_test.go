package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/admindash/internal/roles"
	"github.com/odyssey-erp/admindash/internal/shared"
	"github.com/odyssey-erp/admindash/internal/users"
)

func seededUsers() []users.User {
	return []users.User{
		{ID: 1, Name: "John Doe", Email: "john@example.com", Role: "Admin", Status: users.StatusActive},
		{ID: 2, Name: "Jane Smith", Email: "jane@example.com", Role: "Editor", Status: users.StatusActive},
		{ID: 3, Name: "Bob Johnson", Email: "bob@example.com", Role: "Viewer", Status: users.StatusInactive},
	}
}

func newUserStore(opts ...Option[users.User, users.Patch]) *Store[users.User, users.Patch] {
	opts = append([]Option[users.User, users.Patch]{WithSeed[users.User, users.Patch](seededUsers())}, opts...)
	return New(users.Descriptor(), opts...)
}

func TestCreateAssignsFreshIDNeverReused(t *testing.T) {
	ctx := context.Background()
	store := newUserStore()

	require.NoError(t, store.Delete(ctx, 2))
	created, err := store.Create(ctx, users.User{Name: "Ann", Email: "ann@example.com", Role: "Viewer", Status: users.StatusActive})
	require.NoError(t, err)
	assert.Equal(t, int64(4), created.ID)

	require.NoError(t, store.Delete(ctx, 4))
	again, err := store.Create(ctx, users.User{Name: "Ben", Email: "ben@example.com", Role: "Viewer", Status: users.StatusActive})
	require.NoError(t, err)
	assert.Equal(t, int64(5), again.ID)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	count := 0
	for _, u := range all {
		if u.ID == again.ID {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, []int64{1, 3, 5}, ids(all))
}

func TestCreateValidatesDraft(t *testing.T) {
	store := newUserStore()

	_, err := store.Create(context.Background(), users.User{Email: "not-an-email"})
	require.ErrorIs(t, err, shared.ErrValidation)

	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "email")

	all, err := store.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUpdateMergesOnlyPresentFields(t *testing.T) {
	ctx := context.Background()
	store := newUserStore()
	name := "Jane Doe"

	updated, err := store.Update(ctx, 2, users.Patch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, users.User{ID: 2, Name: "Jane Doe", Email: "jane@example.com", Role: "Editor", Status: users.StatusActive}, updated)

	got, err := store.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestUpdateMissingIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	store := newUserStore()
	before, err := store.GetAll(ctx)
	require.NoError(t, err)
	name := "Ghost"

	_, err = store.Update(ctx, 99, users.Patch{Name: &name})
	require.ErrorIs(t, err, shared.ErrNotFound)

	after, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	once := newUserStore()
	twice := newUserStore()

	require.NoError(t, once.Delete(ctx, 1))
	require.NoError(t, twice.Delete(ctx, 1))
	require.NoError(t, twice.Delete(ctx, 1))
	require.NoError(t, twice.Delete(ctx, 42))

	a, err := once.GetAll(ctx)
	require.NoError(t, err)
	b, err := twice.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	ctx := context.Background()
	store := New(roles.Descriptor(), WithSeed[roles.Role, roles.Patch]([]roles.Role{
		{ID: 1, Name: "Admin", Permissions: roles.PermissionSet{"Read", "Write", "Delete"}},
	}))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	all[0].Permissions[0] = "Mutated"

	fresh, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, roles.PermissionSet{"Read", "Write", "Delete"}, fresh.Permissions)
}

func TestLatencyHonoursDeadline(t *testing.T) {
	store := newUserStore(WithLatency[users.User, users.Patch](Latency{GetAll: time.Second}))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := store.GetAll(ctx)
	require.ErrorIs(t, err, shared.ErrTimeout)
}

func TestDefaultLatencyScale(t *testing.T) {
	scaled := DefaultLatency.Scale(0.5)
	assert.Equal(t, 150*time.Millisecond, scaled.GetAll)
	assert.Equal(t, 200*time.Millisecond, scaled.Create)
}

func ids(us []users.User) []int64 {
	out := make([]int64, len(us))
	for i, u := range us {
		out[i] = u.ID
	}
	return out
}

func TestCreateRoleStoresPermissionSet(t *testing.T) {
	ctx := context.Background()
	store := New(roles.Descriptor())

	created, err := store.Create(ctx, roles.Role{Name: "Dup", Permissions: roles.PermissionSet{"Read", "Read", " Write", ""}})
	require.NoError(t, err)
	assert.Equal(t, roles.PermissionSet{"Read", "Write"}, created.Permissions)

	stored, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, roles.PermissionSet{"Read", "Write"}, stored.Permissions)
	assert.True(t, stored.Permissions.Has("Write"))
}
