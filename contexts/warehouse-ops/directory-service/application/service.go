package application

import (
	"context"
	"log/slog"

	"wareflow/contexts/warehouse-ops/directory-service/domain/entities"
	domainerrors "wareflow/contexts/warehouse-ops/directory-service/domain/errors"
	"wareflow/contexts/warehouse-ops/directory-service/ports"
)

// Service exposes tenant and warehouse directory reads. It satisfies the
// scheduler's fan-out contract.
type Service struct {
	Repo   ports.Repository
	Logger *slog.Logger
}

func (s Service) ActiveTenants(ctx context.Context) ([]string, error) {
	tenants, err := s.Repo.ListActiveTenants(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(tenants))
	for _, tenant := range tenants {
		out = append(out, tenant.TenantID)
	}
	return out, nil
}

func (s Service) ActiveWarehouses(ctx context.Context, tenantID string) ([]string, error) {
	if tenantID == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	warehouses, err := s.Repo.ListActiveWarehouses(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(warehouses))
	for _, warehouse := range warehouses {
		out = append(out, warehouse.WarehouseID)
	}
	return out, nil
}

func (s Service) RegisterTenant(ctx context.Context, tenant entities.Tenant) error {
	if tenant.TenantID == "" {
		return domainerrors.ErrInvalidInput
	}
	return s.Repo.UpsertTenant(ctx, tenant)
}

func (s Service) RegisterWarehouse(ctx context.Context, warehouse entities.Warehouse) error {
	if warehouse.TenantID == "" || warehouse.WarehouseID == "" {
		return domainerrors.ErrInvalidInput
	}
	return s.Repo.UpsertWarehouse(ctx, warehouse)
}
