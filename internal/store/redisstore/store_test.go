package redisstore

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/admindash/internal/roles"
	"github.com/odyssey-erp/admindash/internal/shared"
)

func newTestStore(t *testing.T) (*Store[roles.Role, roles.Patch], *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := New(client, "admindash", roles.Descriptor())
	require.NoError(t, store.Seed(context.Background(), []roles.Role{
		{ID: 1, Name: "Admin", Permissions: roles.PermissionSet{"Read", "Write", "Delete"}},
		{ID: 2, Name: "Editor", Permissions: roles.PermissionSet{"Read", "Write"}},
		{ID: 3, Name: "Viewer", Permissions: roles.PermissionSet{"Read"}},
	}))
	return store, mr
}

func TestGetAllReturnsSeedInIDOrder(t *testing.T) {
	store, mr := newTestStore(t)

	all, err := store.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Admin", all[0].Name)
	assert.Equal(t, "Viewer", all[2].Name)

	seq, err := mr.Get("admindash:roles:seq")
	require.NoError(t, err)
	assert.Equal(t, "3", seq)
}

func TestSeedDoesNotOverwriteOrLowerCounter(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, roles.Role{Name: "Auditor", Permissions: roles.PermissionSet{"Read"}})
	require.NoError(t, err)
	assert.Equal(t, int64(4), created.ID)

	require.NoError(t, store.Seed(ctx, []roles.Role{{ID: 1, Name: "Renamed"}}))
	admin, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Admin", admin.Name)

	seq, err := mr.Get("admindash:roles:seq")
	require.NoError(t, err)
	assert.Equal(t, "4", seq)
}

func TestCreateAfterDeleteNeverReusesID(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, 3))
	created, err := store.Create(ctx, roles.Role{Name: "Guest"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), created.ID)
}

func TestUpdateMergesPatch(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	perms := roles.PermissionSet{"Read", "Write", "Delete", "Read"}

	updated, err := store.Update(ctx, 2, roles.Patch{Permissions: &perms})
	require.NoError(t, err)
	assert.Equal(t, "Editor", updated.Name)
	assert.Equal(t, roles.PermissionSet{"Read", "Write", "Delete"}, updated.Permissions)

	got, err := store.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestUpdateMissingIsNotFound(t *testing.T) {
	store, _ := newTestStore(t)
	name := "Nobody"

	_, err := store.Update(context.Background(), 99, roles.Patch{Name: &name})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateRejectsInvalidMerge(t *testing.T) {
	store, _ := newTestStore(t)
	empty := ""

	_, err := store.Update(context.Background(), 1, roles.Patch{Name: &empty})
	require.ErrorIs(t, err, shared.ErrValidation)

	admin, err := store.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Admin", admin.Name)
}

func TestDeleteIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, 1))
	require.NoError(t, store.Delete(ctx, 1))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestClosedServerIsUnavailable(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	_, err := store.GetAll(context.Background())
	require.ErrorIs(t, err, shared.ErrStoreUnavailable)
}

func TestCreateRoleStoresPermissionSet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, roles.Role{Name: "Dup", Permissions: roles.PermissionSet{"Read", "Read", " Write"}})
	require.NoError(t, err)
	assert.Equal(t, roles.PermissionSet{"Read", "Write"}, created.Permissions)

	stored, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, roles.PermissionSet{"Read", "Write"}, stored.Permissions)
}
