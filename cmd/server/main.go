package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/fulfillment/internal/config"
	"github.com/JonMunkholm/fulfillment/internal/core"
	_ "github.com/JonMunkholm/fulfillment/internal/core/pages" // Register all pages
	"github.com/JonMunkholm/fulfillment/internal/logging"
	"github.com/JonMunkholm/fulfillment/internal/web"
)

func main() {
	// A local .env wins over the shell environment.
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("configuration loaded", "config", cfg.String())

	pool, err := openPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info("connected to database", "name", databaseName(cfg.Database.URL))

	if path := cfg.Table.PagesFile; path != "" {
		if err := applyPagesFile(path, logger); err != nil {
			return err
		}
		go func() {
			if err := core.WatchPagesFile(ctx, path, logger); err != nil {
				logger.Error("pages file watcher stopped", "error", err)
			}
		}()
	}
	logger.Info("pages registered", "count", core.PageCount(), "groups", core.Groups())

	service, err := core.NewService(pool, cfg)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	server := web.NewServer(cfg, service, service.Exports(), logger)

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		logger.Info("shutting down", "active_exports", service.Exports().ActiveCount())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		stopped <- server.Shutdown(shutdownCtx)
	}()

	if err := server.Start(ctx); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-stopped; err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openPool(ctx context.Context, db config.DatabaseConfig) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(db.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	pc.MaxConns = int32(db.MaxConns)
	pc.MinConns = int32(db.MinConns)
	pc.MaxConnLifetime = db.MaxConnLifetime
	pc.MaxConnIdleTime = db.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func applyPagesFile(path string, logger *slog.Logger) error {
	file, err := core.LoadPagesFile(path)
	if err != nil {
		return fmt.Errorf("load pages file: %w", err)
	}
	keys, err := core.ApplyPages(file)
	if err != nil {
		return fmt.Errorf("apply pages file %s: %w", path, err)
	}
	logger.Info("page overrides applied", "path", path, "pages", keys)
	return nil
}

func databaseName(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}
