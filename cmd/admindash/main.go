// Command admindash serves the users, roles and permissions store API and
// runs operator commands against it.
//
//	admindash [serve]
//	admindash browse    -kind users [-q text] [-filter Editor] [-json] [-api URL]
//	admindash delete    -kind roles -id 3 [-api URL]
//	admindash integrity [-json] [-api URL]
//
// Without -api the commands open the backend selected by STORE_BACKEND.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/odyssey-erp/admindash/cmd/admindash/cli"
	"github.com/odyssey-erp/admindash/internal/app"
	"github.com/odyssey-erp/admindash/internal/dashboard"
	"github.com/odyssey-erp/admindash/internal/listctl"
	"github.com/odyssey-erp/admindash/internal/notify"
	"github.com/odyssey-erp/admindash/internal/observability"
	"github.com/odyssey-erp/admindash/internal/rbac"
	"github.com/odyssey-erp/admindash/internal/roles"
	"github.com/odyssey-erp/admindash/internal/store/httpstore"
	"github.com/odyssey-erp/admindash/internal/users"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.TestMode {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	logger := app.NewLogger(cfg)

	args := os.Args[1:]
	command := "serve"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}
	if command == "serve" {
		if err := serve(ctx, stop, cfg, logger); err != nil {
			logger.Error("serve", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}
	os.Exit(run(ctx, cfg, logger, command, args, os.Stdout, os.Stderr))
}

func serve(ctx context.Context, stop context.CancelFunc, cfg *app.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()
	backend, err := app.OpenBackend(ctx, cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer backend.Close()

	router := app.NewRouter(app.RouterParams{
		Logger:  logger,
		Config:  cfg,
		Stores:  backend.Stores,
		Metrics: metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
	return nil
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger, command string, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(stderr)
	kind := fs.String("kind", "users", "entity kind: users, roles or permissions")
	query := fs.String("q", "", "search text")
	filter := fs.String("filter", "", "filter label, e.g. Editor or \"Without Delete\"")
	id := fs.Int64("id", 0, "record id")
	jsonOut := fs.Bool("json", false, "print JSON")
	api := fs.String("api", "", "base URL of a running admindash API, e.g. http://localhost:8080/api")
	if err := fs.Parse(args); err != nil {
		return cli.ExitUsage
	}

	stores, closeStores, err := openStores(ctx, cfg, logger, *api)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", command, err)
		return cli.ExitError
	}
	defer closeStores()

	notifier := notify.Multi{cli.PrintNotifier(stderr), notify.Log{Logger: logger}}
	admin, err := cli.NewAdminCLI(stores, notifier, listctl.WithTimeout(cfg.StoreTimeout))
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", command, err)
		return cli.ExitError
	}
	defer admin.Close()

	switch command {
	case "browse":
		return admin.BrowseCommand(ctx, cli.BrowseOptions{Kind: *kind, Query: *query, Filter: *filter, JSONOutput: *jsonOut, Stdout: stdout, Stderr: stderr})
	case "delete":
		return admin.DeleteCommand(ctx, cli.DeleteOptions{Kind: *kind, ID: *id, Stdout: stdout, Stderr: stderr})
	case "integrity":
		return admin.IntegrityCommand(ctx, cli.IntegrityOptions{JSONOutput: *jsonOut, Stdout: stdout, Stderr: stderr})
	default:
		fmt.Fprintf(stderr, "unknown command %q (expected serve, browse, delete or integrity)\n", command)
		return cli.ExitUsage
	}
}

func openStores(ctx context.Context, cfg *app.Config, logger *slog.Logger, api string) (dashboard.Stores, func(), error) {
	if api == "" {
		backend, err := app.OpenBackend(ctx, cfg, logger, nil)
		if err != nil {
			return dashboard.Stores{}, nil, err
		}
		return backend.Stores, backend.Close, nil
	}
	httpClient := &http.Client{Timeout: cfg.StoreTimeout}
	us, err := httpstore.NewClient(httpClient, api, users.Descriptor())
	if err != nil {
		return dashboard.Stores{}, nil, err
	}
	rs, err := httpstore.NewClient(httpClient, api, roles.Descriptor())
	if err != nil {
		return dashboard.Stores{}, nil, err
	}
	ps, err := httpstore.NewClient(httpClient, api, rbac.PermissionDescriptor())
	if err != nil {
		return dashboard.Stores{}, nil, err
	}
	return dashboard.Stores{Users: us, Roles: rs, Permissions: ps}, func() {}, nil
}
