package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/attune/internal/config"
	"github.com/felixgeelhaar/attune/internal/engine"
	"github.com/felixgeelhaar/attune/internal/itembank"
	"github.com/felixgeelhaar/attune/internal/queue"
	"github.com/felixgeelhaar/attune/internal/results"
	"github.com/felixgeelhaar/attune/internal/storage/sqlite"
)

// App holds all application dependencies
type App struct {
	Config     *config.Config
	Engine     *engine.Engine
	Selector   itembank.Selector
	Placements results.Repository
	Producer   *queue.Producer

	pool     *pgxpool.Pool
	sqliteDB *sqlite.DB
	amqpConn *queue.Connection
	closers  []func() error
}

// NewApp creates a new application instance with all dependencies wired
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	selector, err := app.initSelector(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Selector = selector

	if err := app.initPlacements(ctx, cfg); err != nil {
		app.Close()
		return nil, err
	}

	if cfg.RabbitMQURL != "" {
		conn, err := queue.NewConnection(cfg.RabbitMQURL)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
		}
		app.amqpConn = conn
		app.Producer = queue.NewProducer(conn)
		app.closers = append(app.closers, conn.Close)
	}

	app.Engine = engine.New(selector, engine.Policy{
		MaxSteps:       cfg.MaxSteps,
		AdvanceStreak:  cfg.AdvanceStreak,
		DemoteMistakes: cfg.DemoteMistakes,
		AbortMistakes:  cfg.AbortMistakes,
	}, slog.Default())

	return app, nil
}

// initSelector builds the item source named by ITEM_BANK. The generator
// backend chains to the static bank so a declined generation falls back to
// shipped items; generator outages stay hard failures.
func (a *App) initSelector(ctx context.Context, cfg *config.Config) (itembank.Selector, error) {
	switch cfg.ItemBank {
	case config.BankStatic:
		registry := itembank.NewRegistry(itembank.NewLoader(cfg.ItemBankPath))
		if err := registry.Load(); err != nil {
			return nil, fmt.Errorf("load item bank: %w", err)
		}
		slog.Info("item bank loaded", "backend", "static", "items", registry.Len())
		return registry, nil

	case config.BankPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to item bank database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping item bank database: %w", err)
		}
		a.pool = pool
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		slog.Info("item bank connected", "backend", "postgres")
		return itembank.NewPostgresBank(pool), nil

	case config.BankGenerator:
		client := itembank.NewGeneratorClient(itembank.GeneratorConfig{
			BaseURL: cfg.GeneratorURL,
			APIKey:  cfg.GeneratorAPIKey,
		})
		resilient := itembank.NewResilientSelector(client, itembank.DefaultResilientConfig("generator"))
		a.closers = append(a.closers, resilient.Close)

		selectors := itembank.Chain{resilient}
		registry := itembank.NewRegistry(itembank.NewLoader(cfg.ItemBankPath))
		if err := registry.Load(); err != nil {
			slog.Warn("static fallback bank unavailable", "error", err)
		} else {
			selectors = append(selectors, registry)
		}
		slog.Info("item bank connected", "backend", "generator", "fallback", len(selectors) > 1)
		return selectors, nil

	default:
		return nil, fmt.Errorf("unknown item bank backend %q", cfg.ItemBank)
	}
}

// initPlacements wires the placement repository: Postgres when a DATABASE_URL
// is configured, otherwise the embedded SQLite store.
func (a *App) initPlacements(ctx context.Context, cfg *config.Config) error {
	if cfg.DatabaseURL != "" {
		db, err := results.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect to placements database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		a.Placements = results.NewPostgresRepository(db)
		slog.Info("placement store connected", "backend", "postgres")
		return nil
	}

	db, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("open placement store: %w", err)
	}
	a.sqliteDB = db
	a.closers = append(a.closers, db.Close)
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate placement store: %w", err)
	}
	a.Placements = sqlite.NewPlacementStore(db)
	slog.Info("placement store opened", "backend", "sqlite", "path", cfg.SQLitePath)
	return nil
}

// Ready reports whether the app's backing services are reachable.
func (a *App) Ready(ctx context.Context) error {
	if a.pool != nil {
		if err := a.pool.Ping(ctx); err != nil {
			return fmt.Errorf("item bank database: %w", err)
		}
	}
	if a.sqliteDB != nil {
		if err := a.sqliteDB.PingContext(ctx); err != nil {
			return fmt.Errorf("placement store: %w", err)
		}
	}
	if a.amqpConn != nil && !a.amqpConn.IsConnected() {
		return fmt.Errorf("rabbitmq: not connected")
	}
	return nil
}

// Close releases all held resources in reverse acquisition order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("error during shutdown", "error", err)
		}
	}
	a.closers = nil
}
