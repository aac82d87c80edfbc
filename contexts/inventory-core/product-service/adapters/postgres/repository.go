package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wareflow/contexts/inventory-core/product-service/domain/entities"
	domainerrors "wareflow/contexts/inventory-core/product-service/domain/errors"
)

type productModel struct {
	ProductID        string          `gorm:"column:product_id;primaryKey"`
	TenantID         string          `gorm:"column:tenant_id;uniqueIndex:idx_product_sku,priority:1"`
	SKU              string          `gorm:"column:sku;uniqueIndex:idx_product_sku,priority:2"`
	Name             string          `gorm:"column:name"`
	AbcClass         string          `gorm:"column:abc_class"`
	XyzClass         string          `gorm:"column:xyz_class"`
	ReorderPoint     int64           `gorm:"column:reorder_point"`
	SafetyStock      int64           `gorm:"column:safety_stock"`
	Hazmat           bool            `gorm:"column:hazmat"`
	TemperatureZone  string          `gorm:"column:temperature_zone"`
	MinShelfLifeDays int             `gorm:"column:min_shelf_life_days"`
	UnitPrice        decimal.Decimal `gorm:"column:unit_price;type:numeric(14,4)"`
	DemandMean       float64         `gorm:"column:demand_mean"`
	DemandStdDev     float64         `gorm:"column:demand_std_dev"`
	LeadTimeMean     float64         `gorm:"column:lead_time_mean"`
	LeadTimeStdDev   float64         `gorm:"column:lead_time_std_dev"`
	ServiceLevel     float64         `gorm:"column:service_level"`
	AnnualUsage      int64           `gorm:"column:annual_usage"`
	UpdatedAt        time.Time       `gorm:"column:updated_at"`
}

func (productModel) TableName() string { return "products" }

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetProduct(ctx context.Context, tenantID, productID string) (entities.Product, error) {
	var row productModel
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND tenant_id = ?", productID, tenantID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Product{}, domainerrors.ErrProductNotFound
		}
		return entities.Product{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) FindBySKU(ctx context.Context, tenantID, sku string) (entities.Product, bool, error) {
	var row productModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND sku = ?", tenantID, sku).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Product{}, false, nil
		}
		return entities.Product{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListByTenant(ctx context.Context, tenantID string) ([]entities.Product, error) {
	var rows []productModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("product_id").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	out := make([]entities.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (r *Repository) Upsert(ctx context.Context, product entities.Product) (entities.Product, error) {
	row := modelFromEntity(product)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}},
			UpdateAll: true,
		}).
		Create(&row).
		Error
	if err != nil {
		return entities.Product{}, err
	}
	return product, nil
}

func (m productModel) toEntity() entities.Product {
	return entities.Product{
		ProductID:        m.ProductID,
		TenantID:         m.TenantID,
		SKU:              m.SKU,
		Name:             m.Name,
		AbcClass:         entities.AbcClass(m.AbcClass),
		XyzClass:         entities.XyzClass(m.XyzClass),
		ReorderPoint:     m.ReorderPoint,
		SafetyStock:      m.SafetyStock,
		Hazmat:           m.Hazmat,
		TemperatureZone:  entities.TemperatureZone(m.TemperatureZone),
		MinShelfLifeDays: m.MinShelfLifeDays,
		UnitPrice:        m.UnitPrice,
		DemandMean:       m.DemandMean,
		DemandStdDev:     m.DemandStdDev,
		LeadTimeMean:     m.LeadTimeMean,
		LeadTimeStdDev:   m.LeadTimeStdDev,
		ServiceLevel:     m.ServiceLevel,
		AnnualUsage:      m.AnnualUsage,
		UpdatedAt:        m.UpdatedAt,
	}
}

func modelFromEntity(e entities.Product) productModel {
	return productModel{
		ProductID:        e.ProductID,
		TenantID:         e.TenantID,
		SKU:              e.SKU,
		Name:             e.Name,
		AbcClass:         string(e.AbcClass),
		XyzClass:         string(e.XyzClass),
		ReorderPoint:     e.ReorderPoint,
		SafetyStock:      e.SafetyStock,
		Hazmat:           e.Hazmat,
		TemperatureZone:  string(e.TemperatureZone),
		MinShelfLifeDays: e.MinShelfLifeDays,
		UnitPrice:        e.UnitPrice,
		DemandMean:       e.DemandMean,
		DemandStdDev:     e.DemandStdDev,
		LeadTimeMean:     e.LeadTimeMean,
		LeadTimeStdDev:   e.LeadTimeStdDev,
		ServiceLevel:     e.ServiceLevel,
		AnnualUsage:      e.AnnualUsage,
		UpdatedAt:        e.UpdatedAt,
	}
}

// Models lists the gorm models this package owns, for schema migration.
func Models() []any {
	return []any{&productModel{}}
}
