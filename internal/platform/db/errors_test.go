package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/admindash/internal/shared"
)

func TestStoreError(t *testing.T) {
	require.NoError(t, StoreError(nil))
	require.ErrorIs(t, StoreError(pgx.ErrNoRows), shared.ErrNotFound)
	require.ErrorIs(t, StoreError(fmt.Errorf("scan: %w", context.DeadlineExceeded)), shared.ErrTimeout)
	require.ErrorIs(t, StoreError(context.Canceled), context.Canceled)
	require.ErrorIs(t, StoreError(errors.New("conn closed")), shared.ErrStoreUnavailable)
	require.ErrorIs(t, StoreError(&pgconn.PgError{Code: "40001"}), shared.ErrStoreUnavailable)

	already := fmt.Errorf("users: get 9: %w", shared.ErrNotFound)
	assert.Same(t, already, StoreError(already))
}

func TestStoreErrorConstraintViolation(t *testing.T) {
	err := StoreError(&pgconn.PgError{Code: "23505", ConstraintName: "roles_name_key", Message: "duplicate key value"})

	require.ErrorIs(t, err, shared.ErrValidation)
	var verr *shared.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "duplicate key value", verr.Fields["roles_name_key"])
}
