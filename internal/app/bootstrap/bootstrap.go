// Package bootstrap is the composition root. Construction and wiring live
// here so context modules stay framework-agnostic.
package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/sourcegraph/conc"

	planningservice "wareflow/contexts/insights-analytics/planning-service"
	lotservice "wareflow/contexts/inventory-core/lot-service"
	lotpostgres "wareflow/contexts/inventory-core/lot-service/adapters/postgres"
	productservice "wareflow/contexts/inventory-core/product-service"
	productpostgres "wareflow/contexts/inventory-core/product-service/adapters/postgres"
	stockservice "wareflow/contexts/inventory-core/stock-service"
	stockpostgres "wareflow/contexts/inventory-core/stock-service/adapters/postgres"
	allocationservice "wareflow/contexts/order-fulfillment/allocation-service"
	allocationpostgres "wareflow/contexts/order-fulfillment/allocation-service/adapters/postgres"
	directoryservice "wareflow/contexts/warehouse-ops/directory-service"
	directorypostgres "wareflow/contexts/warehouse-ops/directory-service/adapters/postgres"
	slottingservice "wareflow/contexts/warehouse-ops/slotting-service"
	slottingpostgres "wareflow/contexts/warehouse-ops/slotting-service/adapters/postgres"
	slottingapp "wareflow/contexts/warehouse-ops/slotting-service/application"
	"wareflow/internal/agents"
	"wareflow/internal/bus"
	"wareflow/internal/platform/config"
	"wareflow/internal/platform/db"
	"wareflow/internal/platform/httpserver"
	"wareflow/internal/platform/messaging"
	"wareflow/internal/shared/eventstore"
	"wareflow/internal/shared/outbox"
)

type modules struct {
	Stock      stockservice.Module
	Lots       lotservice.Module
	Products   productservice.Module
	Allocation allocationservice.Module
	Slotting   slottingservice.Module
	Directory  directoryservice.Module
	Planning   planningservice.Module

	Events *eventstore.GormStore
	Outbox *outbox.GormStore
}

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres   *db.Postgres
	dispatchMQ *messaging.Rabbit
	consumeMQ  *messaging.Rabbit
	dispatcher *bus.Dispatcher
	consumer   *bus.Consumer
	scheduler  *bus.Scheduler
	prefetch   int
	logger     *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	pg, mods, err := connectAndWire(cfg, logger)
	if err != nil {
		return nil, err
	}

	server := httpserver.New(
		mods.Stock,
		mods.Allocation,
		mods.Slotting,
		mods.Products,
		mods.Directory,
		mods.Outbox,
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
	return &APIApp{server: server, postgres: pg, logger: logger}, nil
}

func BuildWorker(ctx context.Context) (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")

	pg, mods, err := connectAndWire(cfg, logger)
	if err != nil {
		return nil, err
	}

	// One broker connection per long-running role.
	dispatchMQ, err := messaging.Connect(ctx, cfg.RabbitURL, logger.With("role", "dispatcher"))
	if err != nil {
		_ = pg.Close()
		return nil, err
	}
	consumeMQ, err := messaging.Connect(ctx, cfg.RabbitURL, logger.With("role", "consumer"))
	if err != nil {
		_ = dispatchMQ.Close()
		_ = pg.Close()
		return nil, err
	}

	registry := agents.NewRegistry(logger)
	registry.Register(mods.Stock.ThresholdAgent)
	registry.Register(mods.Lots.ExpiryAgent)
	registry.Register(mods.Allocation.ReservationAgent)
	registry.Register(mods.Slotting.SlottingAgent)
	registry.Register(mods.Planning.AbcXyzAgent)
	registry.Register(mods.Planning.SafetyStockAgent)
	registry.Register(mods.Planning.ForecastAgent)
	registry.Register(mods.Planning.ActivityAgent)

	runtime := &agents.Runtime{
		Registry:        registry,
		Concurrency:     cfg.AgentConcurrency,
		Timeout:         cfg.AgentTimeout,
		ContinueOnError: cfg.ContinueOnError,
		Logger:          logger,
	}

	clock := bus.SystemClock{}
	dispatcher := &bus.Dispatcher{
		Outbox:       mods.Outbox,
		Publisher:    dispatchMQ,
		Clock:        clock,
		PollInterval: cfg.PollInterval,
		BatchSize:    cfg.BatchSize,
		Logger:       logger,
	}
	consumer := &bus.Consumer{
		Runtime:    runtime,
		Events:     mods.Events,
		Dedup:      mods.Events,
		Publisher:  consumeMQ,
		MaxRetries: cfg.MaxRetriesConsumer,
		Clock:      clock,
		Logger:     logger,
	}
	scheduler := &bus.Scheduler{
		Jobs:      bus.DefaultJobs(),
		Directory: mods.Directory.Service,
		Events:    mods.Events,
		Outbox:    mods.Outbox,
		Internal: map[string]func(ctx context.Context) error{
			bus.InternalJobPrefix + "outbox-cleanup": func(ctx context.Context) error {
				cutoff := clock.Now().UTC().AddDate(0, 0, -cfg.OutboxGCDays)
				removed, err := mods.Outbox.GC(ctx, cutoff)
				if err != nil {
					return err
				}
				logger.Info("outbox gc ran",
					"event", "outbox_gc_ran",
					"module", "internal/app/bootstrap",
					"layer", "worker",
					"removed", removed,
				)
				return nil
			},
		},
		Clock:  clock,
		Logger: logger,
	}

	return &WorkerApp{
		postgres:   pg,
		dispatchMQ: dispatchMQ,
		consumeMQ:  consumeMQ,
		dispatcher: dispatcher,
		consumer:   consumer,
		scheduler:  scheduler,
		prefetch:   cfg.PrefetchCount,
		logger:     logger,
	}, nil
}

func connectAndWire(cfg config.Config, logger *slog.Logger) (*db.Postgres, modules, error) {
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, modules{}, errors.New("POSTGRES_DSN is required")
	}
	pg, err := db.Connect(cfg.PostgresDSN, logger)
	if err != nil {
		return nil, modules{}, err
	}

	var models []any
	models = append(models, eventstore.Models()...)
	models = append(models, outbox.Models()...)
	models = append(models, stockpostgres.Models()...)
	models = append(models, lotpostgres.Models()...)
	models = append(models, productpostgres.Models()...)
	models = append(models, allocationpostgres.Models()...)
	models = append(models, slottingpostgres.Models()...)
	models = append(models, directorypostgres.Models()...)
	if err := pg.Migrate(models...); err != nil {
		_ = pg.Close()
		return nil, modules{}, err
	}

	weights, err := slottingapp.LoadWeights(cfg.SlottingWeightsFile)
	if err != nil {
		_ = pg.Close()
		return nil, modules{}, err
	}

	lots := lotservice.NewPostgresModule(pg.DB, logger)
	products := productservice.NewPostgresModule(pg.DB, logger)
	stock := stockservice.NewPostgresModule(pg.DB, lots.Service, products.Service, logger)
	slotting := slottingservice.NewPostgresModule(pg.DB, products.Service, weights, logger)
	allocation := allocationservice.NewPostgresModule(pg.DB, stock.Repo, lots.Repo, stock.Service, slotting.Service, logger)
	directory := directoryservice.NewPostgresModule(pg.DB, logger)
	planning := planningservice.NewPostgresModule(pg.DB, products.Service)

	outboxStore := outbox.NewGormStore(pg.DB)
	outboxStore.MaxRetries = cfg.MaxRetriesOutbox

	return pg, modules{
		Stock:      stock,
		Lots:       lots,
		Products:   products,
		Allocation: allocation,
		Slotting:   slotting,
		Directory:  directory,
		Planning:   planning,
		Events:     eventstore.NewGormStore(pg.DB),
		Outbox:     outboxStore,
	}, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)

	errCh := make(chan error, 1)
	go func() { errCh <- a.server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	}
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

// Run starts the three backbone roles and blocks until the context is
// cancelled: the consumer subscription stops first, in-flight work drains,
// then the scheduler halts.
func (w *WorkerApp) Run(ctx context.Context) error {
	deliveries, err := w.consumeMQ.Consume(ctx, w.prefetch)
	if err != nil {
		return err
	}
	if err := w.scheduler.Start(ctx); err != nil {
		return err
	}

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "worker",
	)

	var wg conc.WaitGroup
	wg.Go(func() { _ = w.dispatcher.Run(ctx) })
	wg.Go(func() { _ = w.consumer.Run(ctx, deliveries) })
	wg.Wait()

	w.scheduler.Stop()
	return nil
}

func (w *WorkerApp) Close() error {
	var errs []error
	if w.consumeMQ != nil {
		errs = append(errs, w.consumeMQ.Close())
	}
	if w.dispatchMQ != nil {
		errs = append(errs, w.dispatchMQ.Close())
	}
	if w.postgres != nil {
		errs = append(errs, w.postgres.Close())
	}
	return errors.Join(errs...)
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
