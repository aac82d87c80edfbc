package stockservice

import (
	"log/slog"

	"gorm.io/gorm"

	"wareflow/contexts/inventory-core/stock-service/adapters/memory"
	"wareflow/contexts/inventory-core/stock-service/adapters/postgres"
	"wareflow/contexts/inventory-core/stock-service/application"
	stockagents "wareflow/contexts/inventory-core/stock-service/application/agents"
	"wareflow/contexts/inventory-core/stock-service/ports"
	"wareflow/internal/shared/eventstore"
	"wareflow/internal/shared/ident"
	"wareflow/internal/shared/outbox"
)

type Module struct {
	Service        application.Service
	ThresholdAgent stockagents.ThresholdAgent
	Repo           ports.Repository
	Store          *memory.Store
}

type Dependencies struct {
	Repo     ports.Repository
	Lots     ports.LotIntake
	Policies ports.PolicyReader
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:   deps.Repo,
		Lots:   deps.Lots,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	return Module{
		Service: service,
		ThresholdAgent: stockagents.ThresholdAgent{
			Stock:    deps.Repo,
			Policies: deps.Policies,
			Clock:    deps.Clock,
		},
		Repo: deps.Repo,
	}
}

func NewPostgresModule(db *gorm.DB, lots ports.LotIntake, policies ports.PolicyReader, logger *slog.Logger) Module {
	return NewModule(Dependencies{
		Repo:     postgres.NewRepository(db),
		Lots:     lots,
		Policies: policies,
		Clock:    ident.SystemClock{},
		IDGen:    ident.UUIDGenerator{},
		Logger:   logger,
	})
}

func NewInMemoryModule(events *eventstore.MemoryStore, ob *outbox.MemoryStore, lots ports.LotIntake, policies ports.PolicyReader, logger *slog.Logger) Module {
	store := memory.NewStore(events, ob)
	module := NewModule(Dependencies{
		Repo:     store,
		Lots:     lots,
		Policies: policies,
		Clock:    ident.SystemClock{},
		IDGen:    ident.UUIDGenerator{},
		Logger:   logger,
	})
	module.Store = store
	return module
}
