package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/odyssey-erp/admindash/internal/shared"
)

// StoreError maps pgx failures onto the store error kinds.
func StoreError(err error) error {
	if err == nil || shared.IsStoreKind(err) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %v", shared.ErrNotFound, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 23: integrity constraint violation.
		if len(pgErr.Code) == 5 && pgErr.Code[:2] == "23" {
			field := pgErr.ColumnName
			if field == "" {
				field = pgErr.ConstraintName
			}
			return &shared.ValidationError{Fields: map[string]string{field: pgErr.Message}}
		}
		return fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}
	if pgconn.Timeout(err) {
		return fmt.Errorf("%w: %v", shared.ErrTimeout, err)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	mapped := shared.StoreError(err)
	if !shared.IsStoreKind(mapped) {
		return fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}
	return mapped
}
