package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/odyssey-erp/admindash/internal/dashboard"
	"github.com/odyssey-erp/admindash/internal/observability"
	"github.com/odyssey-erp/admindash/internal/platform/cache"
	"github.com/odyssey-erp/admindash/internal/platform/db"
	"github.com/odyssey-erp/admindash/internal/rbac"
	"github.com/odyssey-erp/admindash/internal/roles"
	"github.com/odyssey-erp/admindash/internal/seed"
	"github.com/odyssey-erp/admindash/internal/store"
	"github.com/odyssey-erp/admindash/internal/store/memory"
	"github.com/odyssey-erp/admindash/internal/store/redisstore"
	"github.com/odyssey-erp/admindash/internal/users"
)

// Backend is the set of stores selected by STORE_BACKEND, wrapped with metrics.
type Backend struct {
	Stores dashboard.Stores
	close  func()
}

// Close releases the backend connections.
func (b *Backend) Close() {
	if b != nil && b.close != nil {
		b.close()
	}
}

// Integrity returns the cross reference checker over the backend stores.
func (b *Backend) Integrity() rbac.Integrity {
	return rbac.Integrity{Users: b.Stores.Users, Roles: b.Stores.Roles, Permissions: b.Stores.Permissions}
}

// OpenBackend connects the configured backend and seeds it. Seeding never
// overwrites records that already exist.
func OpenBackend(ctx context.Context, cfg *Config, logger *slog.Logger, metrics *observability.Metrics) (*Backend, error) {
	data, err := seed.Load(cfg.SeedFile)
	if err != nil {
		return nil, err
	}

	var b *Backend
	switch cfg.StoreBackend {
	case BackendMemory:
		b = openMemory(cfg, data)
	case BackendRedis:
		b, err = openRedis(ctx, cfg, data)
	case BackendPostgres:
		b, err = openPostgres(ctx, cfg, data)
	default:
		err = fmt.Errorf("app: unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	if err != nil {
		return nil, err
	}

	b.Stores = dashboard.Stores{
		Users:       store.Instrument(b.Stores.Users, users.Descriptor().Kind, metrics, logger),
		Roles:       store.Instrument(b.Stores.Roles, roles.Descriptor().Kind, metrics, logger),
		Permissions: store.Instrument(b.Stores.Permissions, rbac.PermissionDescriptor().Kind, metrics, logger),
	}
	logger.Info("store backend ready", slog.String("backend", cfg.StoreBackend))
	return b, nil
}

func openMemory(cfg *Config, data seed.Data) *Backend {
	latency := memory.DefaultLatency.Scale(cfg.StoreLatency)
	return &Backend{Stores: dashboard.Stores{
		Users: memory.New(users.Descriptor(),
			memory.WithSeed[users.User, users.Patch](data.Users),
			memory.WithLatency[users.User, users.Patch](latency)),
		Roles: memory.New(roles.Descriptor(),
			memory.WithSeed[roles.Role, roles.Patch](data.Roles),
			memory.WithLatency[roles.Role, roles.Patch](latency)),
		Permissions: memory.New(rbac.PermissionDescriptor(),
			memory.WithSeed[rbac.Permission, rbac.PermissionPatch](data.Permissions),
			memory.WithLatency[rbac.Permission, rbac.PermissionPatch](latency)),
	}}
}

func openRedis(ctx context.Context, cfg *Config, data seed.Data) (*Backend, error) {
	client, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		return nil, err
	}
	us := redisstore.New(client, cfg.RedisPrefix, users.Descriptor())
	rs := redisstore.New(client, cfg.RedisPrefix, roles.Descriptor())
	ps := redisstore.New(client, cfg.RedisPrefix, rbac.PermissionDescriptor())
	if err := seedAll(ctx, us.Seed, data.Users, rs.Seed, data.Roles, ps.Seed, data.Permissions); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &Backend{
		Stores: dashboard.Stores{Users: us, Roles: rs, Permissions: ps},
		close:  func() { _ = client.Close() },
	}, nil
}

func openPostgres(ctx context.Context, cfg *Config, data seed.Data) (*Backend, error) {
	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	us := users.NewRepository(pool)
	rs := roles.NewRepository(pool)
	ps := rbac.NewPermissionRepository(pool)
	if err := seedAll(ctx, us.Seed, data.Users, rs.Seed, data.Roles, ps.Seed, data.Permissions); err != nil {
		pool.Close()
		return nil, err
	}
	return &Backend{
		Stores: dashboard.Stores{Users: us, Roles: rs, Permissions: ps},
		close:  pool.Close,
	}, nil
}

func seedAll(
	ctx context.Context,
	seedUsers func(context.Context, []users.User) error, us []users.User,
	seedRoles func(context.Context, []roles.Role) error, rs []roles.Role,
	seedPerms func(context.Context, []rbac.Permission) error, ps []rbac.Permission,
) error {
	if err := seedPerms(ctx, ps); err != nil {
		return fmt.Errorf("app: seed permissions: %w", err)
	}
	if err := seedRoles(ctx, rs); err != nil {
		return fmt.Errorf("app: seed roles: %w", err)
	}
	if err := seedUsers(ctx, us); err != nil {
		return fmt.Errorf("app: seed users: %w", err)
	}
	return nil
}
