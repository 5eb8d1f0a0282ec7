package rbac

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/admindash/internal/entity"
	"github.com/odyssey-erp/admindash/internal/platform/db"
)

// PermissionRepository provides PostgreSQL backed persistence for permissions.
type PermissionRepository struct {
	pool *pgxpool.Pool
}

var _ entity.Store[Permission, PermissionPatch] = (*PermissionRepository)(nil)

// NewPermissionRepository constructs a repository.
func NewPermissionRepository(pool *pgxpool.Pool) *PermissionRepository {
	return &PermissionRepository{pool: pool}
}

// GetAll returns all permissions in insertion order.
func (r *PermissionRepository) GetAll(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description FROM permissions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("rbac: list permissions: %w", db.StoreError(err))
	}
	defer rows.Close()
	perms := []Permission{}
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, fmt.Errorf("rbac: list permissions: %w", db.StoreError(err))
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rbac: list permissions: %w", db.StoreError(err))
	}
	return perms, nil
}

// Get fetches a permission by ID.
func (r *PermissionRepository) Get(ctx context.Context, id int64) (Permission, error) {
	var p Permission
	err := r.pool.QueryRow(ctx, `SELECT id, name, description FROM permissions WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Description)
	if err != nil {
		return Permission{}, fmt.Errorf("rbac: get permission %d: %w", id, db.StoreError(err))
	}
	return p, nil
}

// Create inserts a new permission.
func (r *PermissionRepository) Create(ctx context.Context, draft Permission) (Permission, error) {
	if err := entity.Validate(draft); err != nil {
		return Permission{}, fmt.Errorf("rbac: create permission: %w", err)
	}
	var p Permission
	err := r.pool.QueryRow(ctx,
		`INSERT INTO permissions (name, description) VALUES ($1, $2) RETURNING id, name, description`,
		draft.Name, draft.Description).Scan(&p.ID, &p.Name, &p.Description)
	if err != nil {
		return Permission{}, fmt.Errorf("rbac: create permission: %w", db.StoreError(err))
	}
	return p, nil
}

// Update applies only the present patch fields in a single statement.
func (r *PermissionRepository) Update(ctx context.Context, id int64, patch PermissionPatch) (Permission, error) {
	if patch.Name != nil {
		if err := entity.Validate(Permission{Name: *patch.Name}); err != nil {
			return Permission{}, fmt.Errorf("rbac: update permission %d: %w", id, err)
		}
	}
	var p Permission
	err := r.pool.QueryRow(ctx,
		`UPDATE permissions SET name = COALESCE($2, name), description = COALESCE($3, description)
		 WHERE id = $1 RETURNING id, name, description`,
		id, patch.Name, patch.Description).Scan(&p.ID, &p.Name, &p.Description)
	if err != nil {
		return Permission{}, fmt.Errorf("rbac: update permission %d: %w", id, db.StoreError(err))
	}
	return p, nil
}

// Delete removes a permission by ID. Missing rows are ignored.
func (r *PermissionRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM permissions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("rbac: delete permission %d: %w", id, db.StoreError(err))
	}
	return nil
}

// Seed inserts permissions with fixed ids unless they already exist.
func (r *PermissionRepository) Seed(ctx context.Context, items []Permission) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, p := range items {
			batch.Queue(`INSERT INTO permissions (id, name, description) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`,
				p.ID, p.Name, p.Description)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("rbac: seed permissions: %w", err)
		}
		return db.SyncSequence(ctx, tx, "permissions")
	})
}
