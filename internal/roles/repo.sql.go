package roles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/admindash/internal/entity"
	"github.com/odyssey-erp/admindash/internal/platform/db"
)

const roleColumns = `id, name, permissions`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

var _ entity.Store[Role, Patch] = (*Repository)(nil)

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetAll returns all roles.
func (r *Repository) GetAll(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("roles: list: %w", db.StoreError(err))
	}
	defer rows.Close()
	roles := []Role{}
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("roles: list: %w", db.StoreError(err))
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("roles: list: %w", db.StoreError(err))
	}
	return roles, nil
}

// Get fetches a role by ID.
func (r *Repository) Get(ctx context.Context, id int64) (Role, error) {
	role, err := scanRole(r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id))
	if err != nil {
		return Role{}, fmt.Errorf("roles: get %d: %w", id, db.StoreError(err))
	}
	return role, nil
}

// Create inserts a new role.
func (r *Repository) Create(ctx context.Context, draft Role) (Role, error) {
	draft = Normalize(draft)
	if err := entity.Validate(draft); err != nil {
		return Role{}, fmt.Errorf("roles: create: %w", err)
	}
	role, err := scanRole(r.pool.QueryRow(ctx,
		`INSERT INTO roles (name, permissions) VALUES ($1, $2) RETURNING `+roleColumns,
		draft.Name, []string(draft.Permissions)))
	if err != nil {
		return Role{}, fmt.Errorf("roles: create: %w", db.StoreError(err))
	}
	return role, nil
}

// Update merges patch into an existing role.
func (r *Repository) Update(ctx context.Context, id int64, patch Patch) (Role, error) {
	var out Role
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := scanRole(tx.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return db.StoreError(err)
		}
		merged := Apply(current, patch)
		if err := entity.Validate(merged); err != nil {
			return err
		}
		out, err = scanRole(tx.QueryRow(ctx,
			`UPDATE roles SET name = $2, permissions = $3 WHERE id = $1 RETURNING `+roleColumns,
			id, merged.Name, []string(merged.Permissions)))
		return db.StoreError(err)
	})
	if err != nil {
		return Role{}, fmt.Errorf("roles: update %d: %w", id, db.StoreError(err))
	}
	return out, nil
}

// Delete removes a role by ID. Missing rows are ignored.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id); err != nil {
		return fmt.Errorf("roles: delete %d: %w", id, db.StoreError(err))
	}
	return nil
}

// Seed inserts roles with fixed ids unless they already exist.
func (r *Repository) Seed(ctx context.Context, items []Role) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.SendBatch(ctx, seedBatch(items)).Close(); err != nil {
			return fmt.Errorf("roles: seed: %w", err)
		}
		return db.SyncSequence(ctx, tx, "roles")
	})
}

func seedBatch(items []Role) *pgx.Batch {
	batch := &pgx.Batch{}
	for _, role := range items {
		role = Normalize(role)
		batch.Queue(`INSERT INTO roles (id, name, permissions) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`,
			role.ID, role.Name, []string(role.Permissions))
	}
	return batch
}

func scanRole(row pgx.Row) (Role, error) {
	var (
		role  Role
		perms []string
	)
	if err := row.Scan(&role.ID, &role.Name, &perms); err != nil {
		return Role{}, err
	}
	role.Permissions = NewPermissionSet(perms...)
	return role, nil
}
