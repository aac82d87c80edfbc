package lotservice

import (
	"log/slog"

	"gorm.io/gorm"

	"wareflow/contexts/inventory-core/lot-service/adapters/memory"
	"wareflow/contexts/inventory-core/lot-service/adapters/postgres"
	"wareflow/contexts/inventory-core/lot-service/application"
	lotagents "wareflow/contexts/inventory-core/lot-service/application/agents"
	"wareflow/contexts/inventory-core/lot-service/ports"
	"wareflow/internal/shared/ident"
)

type Module struct {
	Service     application.Service
	ExpiryAgent lotagents.ExpiryAgent
	Repo        ports.Repository
	Store       *memory.Store
}

type Dependencies struct {
	Repo   ports.Repository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Service: application.Service{
			Repo:   deps.Repo,
			Clock:  deps.Clock,
			IDGen:  deps.IDGen,
			Logger: deps.Logger,
		},
		ExpiryAgent: lotagents.ExpiryAgent{
			Lots:  deps.Repo,
			Clock: deps.Clock,
		},
		Repo: deps.Repo,
	}
}

func NewPostgresModule(db *gorm.DB, logger *slog.Logger) Module {
	return NewModule(Dependencies{
		Repo:   postgres.NewRepository(db),
		Clock:  ident.SystemClock{},
		IDGen:  ident.UUIDGenerator{},
		Logger: logger,
	})
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repo:   store,
		Clock:  ident.SystemClock{},
		IDGen:  ident.UUIDGenerator{},
		Logger: logger,
	})
	module.Store = store
	return module
}
