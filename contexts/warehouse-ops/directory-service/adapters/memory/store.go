package memory

import (
	"context"
	"sort"
	"sync"

	"wareflow/contexts/warehouse-ops/directory-service/domain/entities"
	domainerrors "wareflow/contexts/warehouse-ops/directory-service/domain/errors"
)

type Store struct {
	mu         sync.RWMutex
	tenants    map[string]entities.Tenant
	warehouses map[string]entities.Warehouse
}

func NewStore(tenants []entities.Tenant, warehouses []entities.Warehouse) *Store {
	store := &Store{
		tenants:    make(map[string]entities.Tenant, len(tenants)),
		warehouses: make(map[string]entities.Warehouse, len(warehouses)),
	}
	for _, tenant := range tenants {
		store.tenants[tenant.TenantID] = tenant
	}
	for _, warehouse := range warehouses {
		store.warehouses[warehouse.WarehouseID] = warehouse
	}
	return store
}

func (s *Store) GetTenant(_ context.Context, tenantID string) (entities.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tenant, ok := s.tenants[tenantID]
	if !ok {
		return entities.Tenant{}, domainerrors.ErrTenantNotFound
	}
	return tenant, nil
}

func (s *Store) ListActiveTenants(_ context.Context) ([]entities.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.Tenant
	for _, tenant := range s.tenants {
		if tenant.Active {
			out = append(out, tenant)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TenantID < out[j].TenantID })
	return out, nil
}

func (s *Store) ListActiveWarehouses(_ context.Context, tenantID string) ([]entities.Warehouse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.Warehouse
	for _, warehouse := range s.warehouses {
		if warehouse.TenantID == tenantID && warehouse.Active {
			out = append(out, warehouse)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WarehouseID < out[j].WarehouseID })
	return out, nil
}

func (s *Store) UpsertTenant(_ context.Context, tenant entities.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[tenant.TenantID] = tenant
	return nil
}

func (s *Store) UpsertWarehouse(_ context.Context, warehouse entities.Warehouse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warehouses[warehouse.WarehouseID] = warehouse
	return nil
}
