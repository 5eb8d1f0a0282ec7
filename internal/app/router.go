package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/admindash/internal/dashboard"
	"github.com/odyssey-erp/admindash/internal/observability"
	"github.com/odyssey-erp/admindash/internal/platform/httpx"
	"github.com/odyssey-erp/admindash/internal/rbac"
	"github.com/odyssey-erp/admindash/internal/roles"
	"github.com/odyssey-erp/admindash/internal/store/httpstore"
	"github.com/odyssey-erp/admindash/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Stores  dashboard.Stores
	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router serving the store API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	integrity := rbac.Integrity{Users: params.Stores.Users, Roles: params.Stores.Roles, Permissions: params.Stores.Permissions}

	r.Route("/api", func(r chi.Router) {
		if params.Stores.Users != nil {
			r.Route("/users", httpstore.NewHandler(params.Logger, params.Stores.Users, users.Descriptor()).MountRoutes)
		}
		if params.Stores.Roles != nil {
			r.Route("/roles", httpstore.NewHandler(params.Logger, params.Stores.Roles, roles.Descriptor()).MountRoutes)
		}
		if params.Stores.Permissions != nil {
			r.Route("/permissions", httpstore.NewHandler(params.Logger, params.Stores.Permissions, rbac.PermissionDescriptor()).MountRoutes)
		}
		if params.Stores.Users != nil && params.Stores.Roles != nil && params.Stores.Permissions != nil {
			r.Get("/integrity", func(w http.ResponseWriter, r *http.Request) {
				report, err := integrity.Check(r.Context())
				if err != nil {
					params.Logger.Error("integrity check", slog.Any("error", err))
					httpx.RespondError(w, err)
					return
				}
				httpx.JSON(w, http.StatusOK, report)
			})
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
