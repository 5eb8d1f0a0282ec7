package store

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/admindash/internal/entity"
	"github.com/odyssey-erp/admindash/internal/observability"
	"github.com/odyssey-erp/admindash/internal/shared"
	"github.com/odyssey-erp/admindash/internal/store/memory"
	"github.com/odyssey-erp/admindash/internal/users"
)

func TestInstrumentedRecordsOutcomes(t *testing.T) {
	metrics := observability.NewMetrics()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := Instrument[users.User, users.Patch](memory.New(users.Descriptor()), entity.KindUsers, metrics, logger)

	created, err := s.Create(context.Background(), users.User{Name: "Ann", Email: "ann@example.com", Role: "Viewer", Status: users.StatusActive})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	_, err = s.Get(context.Background(), 42)
	require.ErrorIs(t, err, shared.ErrNotFound)

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rr.Body.String()
	assert.Contains(t, body, `admindash_store_operations_total{kind="users",op="create",outcome="ok"} 1`)
	assert.Contains(t, body, `admindash_store_operations_total{kind="users",op="get",outcome="not_found"} 1`)

	assert.Contains(t, logs.String(), "op=create")
	assert.NotContains(t, logs.String(), "store call failed")
}

func TestInstrumentedWarnsOnBackendFailure(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	s := Instrument[users.User, users.Patch](memory.New(users.Descriptor()), entity.KindUsers, nil, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	_, err := s.GetAll(ctx)

	require.ErrorIs(t, err, shared.ErrTimeout)
	assert.Contains(t, logs.String(), "store call failed")
}
