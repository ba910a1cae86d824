// attune-worker drains the placement queue and persists calibrations.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/attune/internal/config"
	"github.com/felixgeelhaar/attune/internal/queue"
	"github.com/felixgeelhaar/attune/internal/results"
	"github.com/felixgeelhaar/attune/internal/storage/sqlite"
)

func main() {
	if err := run(); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	setupLogging(cfg.Debug)

	if cfg.RabbitMQURL == "" {
		return fmt.Errorf("RABBITMQ_URL must be set for the worker")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	conn, err := queue.NewConnection(cfg.RabbitMQURL)
	if err != nil {
		return fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	defer conn.Close()

	consumer := queue.NewConsumer(conn, results.NewRecorder(repo),
		queue.WithWorkers(cfg.WorkerPoolSize),
		queue.WithHandlerTimeout(time.Duration(cfg.WorkerTimeout)*time.Second),
	)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh

		slog.Info("received signal, shutting down", "signal", sig.String())
		cancel()
	}()

	slog.Info("attune-worker started", "workers", cfg.WorkerPoolSize)

	if err := consumer.Start(ctx); err != nil {
		return fmt.Errorf("consumer error: %w", err)
	}

	slog.Info("worker stopped")
	return nil
}

// openRepository picks Postgres when configured, SQLite otherwise.
func openRepository(ctx context.Context, cfg *config.Config) (results.Repository, func(), error) {
	if cfg.DatabaseURL != "" {
		db, err := results.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to placements database: %w", err)
		}
		return results.NewPostgresRepository(db), func() { db.Close() }, nil
	}

	db, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open placement store: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate placement store: %w", err)
	}
	return sqlite.NewPlacementStore(db), func() { db.Close() }, nil
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
