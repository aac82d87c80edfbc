package ports

import (
	"context"

	"wareflow/contexts/warehouse-ops/directory-service/domain/entities"
)

type Repository interface {
	GetTenant(ctx context.Context, tenantID string) (entities.Tenant, error)
	ListActiveTenants(ctx context.Context) ([]entities.Tenant, error)
	ListActiveWarehouses(ctx context.Context, tenantID string) ([]entities.Warehouse, error)
	UpsertTenant(ctx context.Context, tenant entities.Tenant) error
	UpsertWarehouse(ctx context.Context, warehouse entities.Warehouse) error
}
