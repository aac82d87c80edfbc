package productservice

import (
	"log/slog"

	"gorm.io/gorm"

	"wareflow/contexts/inventory-core/product-service/adapters/memory"
	"wareflow/contexts/inventory-core/product-service/adapters/postgres"
	"wareflow/contexts/inventory-core/product-service/application"
	"wareflow/contexts/inventory-core/product-service/domain/entities"
	"wareflow/contexts/inventory-core/product-service/ports"
	"wareflow/internal/shared/ident"
)

type Module struct {
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Repo   ports.Repository
	Clock  ports.Clock
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Service: application.Service{
			Repo:   deps.Repo,
			Clock:  deps.Clock,
			Logger: deps.Logger,
		},
	}
}

func NewPostgresModule(db *gorm.DB, logger *slog.Logger) Module {
	return NewModule(Dependencies{
		Repo:   postgres.NewRepository(db),
		Clock:  ident.SystemClock{},
		Logger: logger,
	})
}

func NewInMemoryModule(seed []entities.Product, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Repo:   store,
		Clock:  ident.SystemClock{},
		Logger: logger,
	})
	module.Store = store
	return module
}
