package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the three managed tables. Ids come from identity sequences
// so they are never reused after a delete.
const Schema = `
CREATE TABLE IF NOT EXISTS permissions (
	id          BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	name        TEXT NOT NULL CHECK (name <> ''),
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS roles (
	id          BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	name        TEXT NOT NULL CHECK (name <> ''),
	permissions TEXT[] NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS users (
	id     BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	name   TEXT NOT NULL CHECK (name <> ''),
	email  TEXT NOT NULL CHECK (email <> ''),
	role   TEXT NOT NULL CHECK (role <> ''),
	status TEXT NOT NULL DEFAULT 'Active' CHECK (status IN ('Active', 'Inactive'))
);
`

// EnsureSchema applies Schema idempotently.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("platform/db: ensure schema: %w", err)
	}
	return nil
}

// SyncSequence moves the identity sequence of table past both its largest id
// and its last issued value. Required after inserting rows with explicit ids.
func SyncSequence(ctx context.Context, q Querier, table string) error {
	sql := fmt.Sprintf(`
WITH s AS (SELECT pg_get_serial_sequence('%[1]s', 'id')::regclass AS seq)
SELECT setval(s.seq, GREATEST(
	(SELECT COALESCE(MAX(id), 0) FROM %[1]s),
	COALESCE(pg_sequence_last_value(s.seq), 0)
) + 1, false) FROM s`, table)
	if _, err := q.Exec(ctx, sql); err != nil {
		return fmt.Errorf("platform/db: sync sequence %s: %w", table, err)
	}
	return nil
}
