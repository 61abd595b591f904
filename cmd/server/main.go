package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/datagamesbr/dpohero/internal/catalog"
	"github.com/datagamesbr/dpohero/internal/config"
	"github.com/datagamesbr/dpohero/internal/database"
	"github.com/datagamesbr/dpohero/internal/progress"
	"github.com/datagamesbr/dpohero/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- Mission catalog ---
	var cat *catalog.Catalog
	if cfg.CatalogPath != "" {
		cat, err = catalog.LoadFile(cfg.CatalogPath, logger)
	} else {
		cat, err = catalog.Default(logger)
	}
	if err != nil {
		return fmt.Errorf("loading mission catalog: %w", err)
	}
	logger.Info("mission catalog loaded", "missions", cat.Len())

	// --- SQLite ---
	if dir := filepath.Dir(cfg.DBPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating data dir: %w", err)
		}
	}
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	// --- Stores ---
	identity, err := server.NewIdentityStore(ctx, db)
	if err != nil {
		return fmt.Errorf("initializing identity store: %w", err)
	}
	store, err := progress.NewStore(ctx, db, cat, logger)
	if err != nil {
		return fmt.Errorf("initializing progress store: %w", err)
	}

	if err := server.SeedAdmin(ctx, logger, identity, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("seeding educator account: %w", err)
	}

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, identity, store, cfg.SPADir)

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}
