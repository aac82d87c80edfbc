package slottingservice

import (
	"log/slog"

	"gorm.io/gorm"

	"wareflow/contexts/warehouse-ops/slotting-service/adapters/memory"
	"wareflow/contexts/warehouse-ops/slotting-service/adapters/postgres"
	"wareflow/contexts/warehouse-ops/slotting-service/application"
	slottingagents "wareflow/contexts/warehouse-ops/slotting-service/application/agents"
	"wareflow/contexts/warehouse-ops/slotting-service/domain/entities"
	"wareflow/contexts/warehouse-ops/slotting-service/domain/slotting"
	"wareflow/contexts/warehouse-ops/slotting-service/ports"
	"wareflow/internal/shared/ident"
)

type Module struct {
	Service       application.Service
	SlottingAgent slottingagents.SlottingAgent
	Store         *memory.Store
}

type Dependencies struct {
	Locations ports.LocationRepository
	Profiles  ports.ProfileReader
	Weights   slotting.Weights
	Clock     ports.Clock
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Locations: deps.Locations,
		Profiles:  deps.Profiles,
		Scorer:    slotting.NewScorer(deps.Weights),
		Logger:    deps.Logger,
	}
	return Module{
		Service: service,
		SlottingAgent: slottingagents.SlottingAgent{
			Slotting: service,
			Clock:    deps.Clock,
		},
	}
}

func NewPostgresModule(db *gorm.DB, profiles ports.ProfileReader, weights slotting.Weights, logger *slog.Logger) Module {
	return NewModule(Dependencies{
		Locations: postgres.NewRepository(db),
		Profiles:  profiles,
		Weights:   weights,
		Clock:     ident.SystemClock{},
		Logger:    logger,
	})
}

func NewInMemoryModule(seed []entities.Location, profiles ports.ProfileReader, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Locations: store,
		Profiles:  profiles,
		Weights:   slotting.DefaultWeights(),
		Clock:     ident.SystemClock{},
		Logger:    logger,
	})
	module.Store = store
	return module
}
