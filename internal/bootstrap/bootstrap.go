// Package bootstrap opens the stores and wires the ledger services.
// The HTTP server and the operator CLI build on the same graph.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flowi-ledger/internal/config"
	"github.com/flowi-ledger/internal/data/mongo"
	"github.com/flowi-ledger/internal/data/postgres"
	"github.com/flowi-ledger/internal/data/redis"
	"github.com/flowi-ledger/internal/domain/exchange"
	"github.com/flowi-ledger/internal/domain/obligation"
	"github.com/flowi-ledger/internal/ledger_api/handler"
	"github.com/flowi-ledger/internal/ledger_api/service"
	"github.com/flowi-ledger/internal/platform/messaging/producers"
	"github.com/flowi-ledger/internal/platform/persistence"
)

// publisher is an event sink that must be flushed on shutdown
type publisher interface {
	service.EventPublisher
	Close() error
}

// App holds the wired services together with the resources they need released
type App struct {
	Rates       service.RateService
	Obligations service.ObligationService
	Dashboard   service.DashboardService
	RateManager *exchange.Manager
	DLQ         *producers.DLQProducer

	logger    *slog.Logger
	postgres  *persistence.PostgresDB
	mongo     *persistence.MongoDB
	redis     *persistence.Redis
	publisher publisher
	loader    *service.SnapshotLoader
}

// Build connects to every store, restores the current rate and wires the services.
// Resources opened before a failure are released before returning.
func Build(ctx context.Context, log *slog.Logger, cfg *config.Config) (_ *App, err error) {
	app := &App{logger: log}
	defer func() {
		if err != nil {
			_ = app.Close(context.Background())
		}
	}()

	app.postgres, err = persistence.NewPostgresDB(ctx, log, &cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}

	app.mongo, err = persistence.NewMongoDB(ctx, log, &cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MongoDB: %w", err)
	}

	var obligationRepo obligation.Repository
	switch cfg.Store.Driver {
	case config.StoreDriverRedis:
		app.redis, err = persistence.NewRedis(ctx, log, &cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		obligationRepo = redis.NewObligationRepository(log, app.redis)
	default:
		obligationRepo = postgres.NewObligationRepository(log, app.postgres)
	}
	log.Info("Obligation store selected", "driver", cfg.Store.Driver)

	if cfg.Kafka.Enabled {
		var eventProducer *producers.EventProducer
		eventProducer, err = producers.NewEventProducer(ctx, log, &cfg.Kafka)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize event producer: %w", err)
		}
		app.publisher = eventProducer

		app.DLQ, err = producers.NewDLQProducer(ctx, log, &cfg.Kafka)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize DLQ producer: %w", err)
		}
	} else {
		app.publisher = producers.NewNopPublisher(log)
	}

	app.RateManager = exchange.NewManager(postgres.NewRateRepository(log, app.postgres), log)
	app.RateManager.Subscribe(service.RateChangeLogger(log))
	app.RateManager.Subscribe(service.RateChangePublisher(log, app.publisher))
	if err = app.RateManager.Restore(ctx, cfg.Ledger.InitialRate); err != nil {
		return nil, fmt.Errorf("failed to restore exchange rate: %w", err)
	}

	loc := cfg.Ledger.Location()
	catalog := mongo.NewCatalogRepository(log, app.mongo.Database())
	directory := mongo.NewDirectoryRepository(log, app.mongo.Database())

	app.Rates = service.NewRateService(log, app.RateManager)
	app.Obligations = service.NewObligationService(log, obligationRepo, directory, app.publisher, loc)

	app.loader, err = service.NewSnapshotLoader(log, cfg.WorkerPool.Size, catalog, app.Obligations)
	if err != nil {
		return nil, err
	}
	app.Dashboard = service.NewDashboardService(log, app.loader, app.RateManager, service.DashboardSettings{
		LowStockThreshold: cfg.Ledger.LowStockThreshold,
		TopProductsLimit:  cfg.Ledger.TopProductsLimit,
		TrendDays:         cfg.Ledger.TrendDays,
	}, loc)

	return app, nil
}

// HealthChecks lists a ping per connected store
func (a *App) HealthChecks() []handler.HealthCheck {
	checks := []handler.HealthCheck{
		{Name: "postgres", Check: a.postgres.Ping},
		{Name: "mongodb", Check: a.mongo.Ping},
	}
	if a.redis != nil {
		checks = append(checks, handler.HealthCheck{Name: "redis", Check: a.redis.Ping})
	}
	return checks
}

// Close releases the loader pool, then the producers, then the stores.
// It is safe on a partially built App.
func (a *App) Close(ctx context.Context) error {
	var errs []error

	if a.loader != nil {
		a.loader.Shutdown()
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing event producer: %w", err))
		}
	}
	if err := a.DLQ.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing DLQ producer: %w", err))
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing Redis: %w", err))
		}
	}
	if a.mongo != nil {
		if err := a.mongo.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("closing MongoDB: %w", err))
		}
	}
	if a.postgres != nil {
		a.postgres.Close()
	}

	if err := errors.Join(errs...); err != nil {
		a.logger.Error("Shutdown completed with errors", "error", err)
		return err
	}
	return nil
}
