// Command ynab-mcp serves YNAB budgeting tools to MCP clients.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/ynab-mcp/internal/config"
	"github.com/MrWong99/ynab-mcp/internal/health"
	"github.com/MrWong99/ynab-mcp/internal/observe"
	"github.com/MrWong99/ynab-mcp/internal/overview"
	"github.com/MrWong99/ynab-mcp/internal/server"
	"github.com/MrWong99/ynab-mcp/internal/tools"
	"github.com/MrWong99/ynab-mcp/internal/tools/accounttool"
	"github.com/MrWong99/ynab-mcp/internal/tools/budgettool"
	"github.com/MrWong99/ynab-mcp/internal/tools/categorytool"
	"github.com/MrWong99/ynab-mcp/internal/tools/overviewtool"
	"github.com/MrWong99/ynab-mcp/internal/tools/payeetool"
	"github.com/MrWong99/ynab-mcp/internal/tools/transactiontool"
	"github.com/MrWong99/ynab-mcp/internal/ynab"
)

const version = "1.0.0"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// A .env file is optional; environment variables win over file values.
	_ = godotenv.Load()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "ynab-mcp: config file %q not found\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "ynab-mcp: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	// Stdout belongs to the stdio transport, so all logging goes to stderr.
	// The LevelVar lets a config reload change verbosity without a restart.
	levelVar := new(slog.LevelVar)
	levelVar.Set(slogLevel(cfg.Server.LogLevel))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: levelVar}))
	slog.SetDefault(logger)

	slog.Info("ynab-mcp starting",
		"config", *configPath,
		"transport", cfg.Server.Transport,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "ynab-mcp",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── YNAB client and overview store ────────────────────────────────────────
	clientOpts := []ynab.Option{
		ynab.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.YNAB.TimeoutSeconds) * time.Second,
		}),
	}
	if cfg.YNAB.BaseURL != "" {
		clientOpts = append(clientOpts, ynab.WithBaseURL(cfg.YNAB.BaseURL))
	}
	client := ynab.New(cfg.YNAB.AccessToken, clientOpts...)

	store := overview.NewFileStore(cfg.Overview.Path)

	// ── Tool registry ─────────────────────────────────────────────────────────
	registry := tools.NewRegistry()
	for _, ts := range [][]tools.Tool{
		budgettool.Tools(client),
		accounttool.Tools(client),
		categorytool.Tools(client),
		payeetool.Tools(client),
		transactiontool.Tools(client),
		overviewtool.Tools(client, store),
	} {
		if err := registry.Register(ts...); err != nil {
			slog.Error("failed to register tools", "err", err)
			return 1
		}
	}
	slog.Info("tools registered", "count", len(registry.Descriptors()))

	srv := server.New(registry, server.WithImplementation("ynab-mcp", version))

	// ── Config hot reload ─────────────────────────────────────────────────────
	watcher, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
		diff := config.Diff(old, new)
		if diff.LogLevelChanged {
			levelVar.Set(slogLevel(diff.NewLogLevel))
			slog.Info("log level changed", "log_level", diff.NewLogLevel)
		}
		if diff.TokenChanged {
			client.SetToken(diff.NewToken)
			slog.Info("access token rotated")
		}
	})
	if err != nil {
		slog.Warn("config watcher disabled", "err", err)
	} else {
		defer watcher.Stop()
	}

	// ── Serve ─────────────────────────────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)

	switch cfg.Server.Transport {
	case config.TransportStdio:
		g.Go(func() error {
			slog.Info("serving MCP over stdio")
			return srv.Run(gctx)
		})

	case config.TransportStreamableHTTP:
		mcpServer := &http.Server{
			Addr:    cfg.Server.ListenAddr,
			Handler: srv.HTTPHandler(),
		}
		g.Go(func() error {
			slog.Info("serving MCP over streamable HTTP", "listen_addr", cfg.Server.ListenAddr)
			if err := mcpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return mcpServer.Shutdown(shutdownCtx)
		})
	}

	if cfg.Server.AdminAddr != "" {
		adminServer := newAdminServer(cfg.Server.AdminAddr, client, store)
		g.Go(func() error {
			slog.Info("serving admin endpoint", "admin_addr", cfg.Server.AdminAddr)
			if err := adminServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return adminServer.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	slog.Info("goodbye")
	return 0
}

// newAdminServer builds the HTTP server exposing /metrics, /healthz and
// /readyz, with trace-context propagation and request metrics on every route.
func newAdminServer(addr string, svc ynab.Service, store overview.Store) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	health.New(
		health.Upstream(svc),
		health.OverviewStore(store),
	).Register(mux)

	return &http.Server{
		Addr:    addr,
		Handler: observe.Middleware(observe.DefaultMetrics())(mux),
	}
}

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
