package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wareflow/contexts/warehouse-ops/directory-service/domain/entities"
	domainerrors "wareflow/contexts/warehouse-ops/directory-service/domain/errors"
)

type tenantModel struct {
	TenantID  string    `gorm:"column:tenant_id;primaryKey"`
	Name      string    `gorm:"column:name"`
	Active    bool      `gorm:"column:active;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (tenantModel) TableName() string { return "tenants" }

type warehouseModel struct {
	WarehouseID string    `gorm:"column:warehouse_id;primaryKey"`
	TenantID    string    `gorm:"column:tenant_id;index"`
	Code        string    `gorm:"column:code"`
	Name        string    `gorm:"column:name"`
	Timezone    string    `gorm:"column:timezone"`
	Active      bool      `gorm:"column:active"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (warehouseModel) TableName() string { return "warehouses" }

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetTenant(ctx context.Context, tenantID string) (entities.Tenant, error) {
	var row tenantModel
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Tenant{}, domainerrors.ErrTenantNotFound
		}
		return entities.Tenant{}, err
	}
	return entities.Tenant{
		TenantID:  row.TenantID,
		Name:      row.Name,
		Active:    row.Active,
		CreatedAt: row.CreatedAt,
	}, nil
}

func (r *Repository) ListActiveTenants(ctx context.Context) ([]entities.Tenant, error) {
	var rows []tenantModel
	if err := r.db.WithContext(ctx).Where("active").Order("tenant_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entities.Tenant, 0, len(rows))
	for _, row := range rows {
		out = append(out, entities.Tenant{
			TenantID:  row.TenantID,
			Name:      row.Name,
			Active:    row.Active,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

func (r *Repository) ListActiveWarehouses(ctx context.Context, tenantID string) ([]entities.Warehouse, error) {
	var rows []warehouseModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active", tenantID).
		Order("warehouse_id").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	out := make([]entities.Warehouse, 0, len(rows))
	for _, row := range rows {
		out = append(out, entities.Warehouse{
			WarehouseID: row.WarehouseID,
			TenantID:    row.TenantID,
			Code:        row.Code,
			Name:        row.Name,
			Timezone:    row.Timezone,
			Active:      row.Active,
			CreatedAt:   row.CreatedAt,
		})
	}
	return out, nil
}

func (r *Repository) UpsertTenant(ctx context.Context, tenant entities.Tenant) error {
	row := tenantModel{
		TenantID:  tenant.TenantID,
		Name:      tenant.Name,
		Active:    tenant.Active,
		CreatedAt: tenant.CreatedAt,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}},
			UpdateAll: true,
		}).
		Create(&row).
		Error
}

func (r *Repository) UpsertWarehouse(ctx context.Context, warehouse entities.Warehouse) error {
	row := warehouseModel{
		WarehouseID: warehouse.WarehouseID,
		TenantID:    warehouse.TenantID,
		Code:        warehouse.Code,
		Name:        warehouse.Name,
		Timezone:    warehouse.Timezone,
		Active:      warehouse.Active,
		CreatedAt:   warehouse.CreatedAt,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "warehouse_id"}},
			UpdateAll: true,
		}).
		Create(&row).
		Error
}

// Models lists the gorm models this package owns, for schema migration.
func Models() []any {
	return []any{&tenantModel{}, &warehouseModel{}}
}
