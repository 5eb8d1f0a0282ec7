package httpstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/admindash/internal/platform/httpx"
	"github.com/odyssey-erp/admindash/internal/rbac"
	"github.com/odyssey-erp/admindash/internal/shared"
	"github.com/odyssey-erp/admindash/internal/store/memory"
)

func newTestClient(t *testing.T, latency memory.Latency) (*Client[rbac.Permission, rbac.PermissionPatch], *httptest.Server) {
	t.Helper()
	desc := rbac.PermissionDescriptor()
	backing := memory.New(desc,
		memory.WithSeed[rbac.Permission, rbac.PermissionPatch]([]rbac.Permission{
			{ID: 1, Name: "Read", Description: "Ability to view resources"},
			{ID: 2, Name: "Write", Description: "Ability to create and edit resources"},
			{ID: 3, Name: "Delete", Description: "Ability to remove resources"},
		}),
		memory.WithLatency[rbac.Permission, rbac.PermissionPatch](latency),
	)
	r := chi.NewRouter()
	r.Route("/api/permissions", NewHandler(nil, backing, desc).MountRoutes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.Client(), srv.URL+"/api/", desc)
	require.NoError(t, err)
	return client, srv
}

func TestClientRoundTrip(t *testing.T) {
	client, _ := newTestClient(t, memory.Latency{})
	ctx := context.Background()

	all, err := client.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Read", all[0].Name)

	created, err := client.Create(ctx, rbac.Permission{Name: "Export", Description: "Download reports"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), created.ID)

	desc := "View everything"
	updated, err := client.Update(ctx, 1, rbac.PermissionPatch{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, rbac.Permission{ID: 1, Name: "Read", Description: "View everything"}, updated)

	got, err := client.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	require.NoError(t, client.Delete(ctx, 4))
	require.NoError(t, client.Delete(ctx, 4))
	all, err = client.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestClientMapsNotFound(t *testing.T) {
	client, _ := newTestClient(t, memory.Latency{})
	name := "Ghost"

	_, err := client.Update(context.Background(), 99, rbac.PermissionPatch{Name: &name})
	require.ErrorIs(t, err, shared.ErrNotFound)

	_, err = client.Get(context.Background(), 99)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestClientMapsValidationFields(t *testing.T) {
	client, _ := newTestClient(t, memory.Latency{})

	_, err := client.Create(context.Background(), rbac.Permission{Description: "nameless"})
	require.ErrorIs(t, err, shared.ErrValidation)

	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields["name"])
}

func TestClientTimeout(t *testing.T) {
	client, _ := newTestClient(t, memory.Latency{GetAll: time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.GetAll(ctx)
	require.ErrorIs(t, err, shared.ErrTimeout)
}

func TestClientServerGone(t *testing.T) {
	client, srv := newTestClient(t, memory.Latency{})
	srv.Close()

	_, err := client.GetAll(context.Background())
	require.ErrorIs(t, err, shared.ErrStoreUnavailable)
}

func TestHandlerRejectsBadID(t *testing.T) {
	_, srv := newTestClient(t, memory.Latency{})

	resp, err := srv.Client().Get(srv.URL + "/api/permissions/abc")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandlerRejectsUnknownFields(t *testing.T) {
	_, srv := newTestClient(t, memory.Latency{})

	resp, err := http.Post(srv.URL+"/api/permissions", "application/json", strings.NewReader(`{"name":"Export","scope":"all"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, httpx.ProblemContentType, resp.Header.Get("Content-Type"))
}
