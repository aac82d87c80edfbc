package application

import (
	"context"
	"reflect"
	"testing"

	"wareflow/contexts/warehouse-ops/directory-service/adapters/memory"
	"wareflow/contexts/warehouse-ops/directory-service/domain/entities"
)

const (
	tenantOne = "0b9f2a44-1c6e-4f4b-9a17-3d2f8e5c6a01"
	tenantTwo = "4f7a9c12-8d3e-4b5a-9c6d-7e8f9a0b1c02"

	warehouseOne   = "7c1d5e90-2b3a-4c8d-8e6f-1a2b3c4d5e02"
	warehouseTwo   = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c03"
	warehouseOther = "2d3e4f5a-6b7c-4d8e-9f0a-1b2c3d4e5f04"
)

func newService(t *testing.T) Service {
	t.Helper()
	store := memory.NewStore(
		[]entities.Tenant{
			{TenantID: tenantOne, Name: "Acme Logistics", Active: true},
			{TenantID: tenantTwo, Name: "Dormant Co", Active: false},
		},
		[]entities.Warehouse{
			{WarehouseID: warehouseTwo, TenantID: tenantOne, Code: "DC-2", Active: true},
			{WarehouseID: warehouseOne, TenantID: tenantOne, Code: "DC-1", Active: true},
			{WarehouseID: warehouseOther, TenantID: tenantOne, Code: "DC-3", Active: false},
		},
	)
	return Service{Repo: store}
}

func TestActiveTenantsSkipsInactive(t *testing.T) {
	svc := newService(t)

	tenants, err := svc.ActiveTenants(context.Background())
	if err != nil {
		t.Fatalf("ActiveTenants: %v", err)
	}
	if !reflect.DeepEqual(tenants, []string{tenantOne}) {
		t.Fatalf("tenants = %v, want only the active one", tenants)
	}
}

func TestActiveWarehousesSortedAndFiltered(t *testing.T) {
	svc := newService(t)

	warehouses, err := svc.ActiveWarehouses(context.Background(), tenantOne)
	if err != nil {
		t.Fatalf("ActiveWarehouses: %v", err)
	}
	if !reflect.DeepEqual(warehouses, []string{warehouseOne, warehouseTwo}) {
		t.Fatalf("warehouses = %v", warehouses)
	}

	if _, err := svc.ActiveWarehouses(context.Background(), ""); err == nil {
		t.Fatal("expected error for blank tenant")
	}
}

func TestRegisterTenantActivates(t *testing.T) {
	svc := newService(t)

	tenant := entities.Tenant{TenantID: tenantTwo, Name: "Dormant Co", Active: true}
	if err := svc.RegisterTenant(context.Background(), tenant); err != nil {
		t.Fatalf("RegisterTenant: %v", err)
	}

	tenants, err := svc.ActiveTenants(context.Background())
	if err != nil {
		t.Fatalf("ActiveTenants: %v", err)
	}
	if len(tenants) != 2 {
		t.Fatalf("tenants = %v, want both active", tenants)
	}
}
