package directoryservice

import (
	"log/slog"

	"gorm.io/gorm"

	"wareflow/contexts/warehouse-ops/directory-service/adapters/memory"
	"wareflow/contexts/warehouse-ops/directory-service/adapters/postgres"
	"wareflow/contexts/warehouse-ops/directory-service/application"
	"wareflow/contexts/warehouse-ops/directory-service/domain/entities"
	"wareflow/contexts/warehouse-ops/directory-service/ports"
)

type Module struct {
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Repo   ports.Repository
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Service: application.Service{
			Repo:   deps.Repo,
			Logger: deps.Logger,
		},
	}
}

func NewPostgresModule(db *gorm.DB, logger *slog.Logger) Module {
	return NewModule(Dependencies{Repo: postgres.NewRepository(db), Logger: logger})
}

func NewInMemoryModule(tenants []entities.Tenant, warehouses []entities.Warehouse, logger *slog.Logger) Module {
	store := memory.NewStore(tenants, warehouses)
	module := NewModule(Dependencies{Repo: store, Logger: logger})
	module.Store = store
	return module
}
