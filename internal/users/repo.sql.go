package users

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/admindash/internal/entity"
	"github.com/odyssey-erp/admindash/internal/platform/db"
)

const userColumns = `id, name, email, role, status`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

var _ entity.Store[User, Patch] = (*Repository)(nil)

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetAll returns all users.
func (r *Repository) GetAll(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", db.StoreError(err))
	}
	defer rows.Close()
	users := []User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("users: list: %w", db.StoreError(err))
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("users: list: %w", db.StoreError(err))
	}
	return users, nil
}

// Get returns one user.
func (r *Repository) Get(ctx context.Context, id int64) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return User{}, fmt.Errorf("users: get %d: %w", id, db.StoreError(err))
	}
	return user, nil
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, draft User) (User, error) {
	if err := entity.Validate(draft); err != nil {
		return User{}, fmt.Errorf("users: create: %w", err)
	}
	user, err := scanUser(r.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, role, status) VALUES ($1, $2, $3, $4) RETURNING `+userColumns,
		draft.Name, draft.Email, draft.Role, string(draft.Status)))
	if err != nil {
		return User{}, fmt.Errorf("users: create: %w", db.StoreError(err))
	}
	return user, nil
}

// Update merges patch into the row under a row lock.
func (r *Repository) Update(ctx context.Context, id int64, patch Patch) (User, error) {
	var out User
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return db.StoreError(err)
		}
		merged := Apply(current, patch)
		if err := entity.Validate(merged); err != nil {
			return err
		}
		out, err = scanUser(tx.QueryRow(ctx,
			`UPDATE users SET name = $2, email = $3, role = $4, status = $5 WHERE id = $1 RETURNING `+userColumns,
			id, merged.Name, merged.Email, merged.Role, string(merged.Status)))
		return db.StoreError(err)
	})
	if err != nil {
		return User{}, fmt.Errorf("users: update %d: %w", id, db.StoreError(err))
	}
	return out, nil
}

// Delete removes a user. Missing rows are ignored.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("users: delete %d: %w", id, db.StoreError(err))
	}
	return nil
}

// Seed inserts users with fixed ids unless they already exist.
func (r *Repository) Seed(ctx context.Context, items []User) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.SendBatch(ctx, seedBatch(items)).Close(); err != nil {
			return fmt.Errorf("users: seed: %w", err)
		}
		return db.SyncSequence(ctx, tx, "users")
	})
}

func seedBatch(items []User) *pgx.Batch {
	batch := &pgx.Batch{}
	for _, u := range items {
		batch.Queue(`INSERT INTO users (id, name, email, role, status) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (id) DO NOTHING`,
			u.ID, u.Name, u.Email, u.Role, string(u.Status))
	}
	return batch
}

func scanUser(row pgx.Row) (User, error) {
	var (
		user   User
		status string
	)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &status); err != nil {
		return User{}, err
	}
	user.Status = Status(status)
	return user, nil
}
