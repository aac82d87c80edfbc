package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"wareflow/contexts/inventory-core/stock-service/domain/entities"
	domainerrors "wareflow/contexts/inventory-core/stock-service/domain/errors"
	"wareflow/contexts/inventory-core/stock-service/ports"
	"wareflow/internal/shared/eventstore"
	"wareflow/internal/shared/outbox"
)

type stockLevelModel struct {
	StockLevelID   string    `gorm:"column:stock_level_id;primaryKey"`
	TenantID       string    `gorm:"column:tenant_id;index:idx_stock_scope"`
	WarehouseID    string    `gorm:"column:warehouse_id;index:idx_stock_scope"`
	ProductID      string    `gorm:"column:product_id;index:idx_stock_scope"`
	VariantID      string    `gorm:"column:variant_id"`
	LocationID     string    `gorm:"column:location_id"`
	LotID          string    `gorm:"column:lot_id"`
	OnHand         int64     `gorm:"column:on_hand"`
	Reserved       int64     `gorm:"column:reserved"`
	Available      int64     `gorm:"column:available"`
	Inbound        int64     `gorm:"column:inbound"`
	Outbound       int64     `gorm:"column:outbound"`
	RowVersion     int64     `gorm:"column:row_version"`
	LastMovementAt time.Time `gorm:"column:last_movement_at"`
}

func (stockLevelModel) TableName() string { return "stock_levels" }

type movementModel struct {
	MovementID   string    `gorm:"column:movement_id;primaryKey"`
	TenantID     string    `gorm:"column:tenant_id;index"`
	WarehouseID  string    `gorm:"column:warehouse_id"`
	StockLevelID string    `gorm:"column:stock_level_id;index"`
	ProductID    string    `gorm:"column:product_id;index"`
	VariantID    string    `gorm:"column:variant_id"`
	LocationID   string    `gorm:"column:location_id"`
	LotID        string    `gorm:"column:lot_id"`
	MovementType string    `gorm:"column:movement_type"`
	Quantity     int64     `gorm:"column:quantity"`
	Reference    string    `gorm:"column:reference"`
	OccurredAt   time.Time `gorm:"column:occurred_at"`
}

func (movementModel) TableName() string { return "stock_movements" }

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetStockLevel(ctx context.Context, tenantID, stockLevelID string) (entities.StockLevel, error) {
	var row stockLevelModel
	err := r.db.WithContext(ctx).
		Where("stock_level_id = ? AND tenant_id = ?", stockLevelID, tenantID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.StockLevel{}, domainerrors.ErrStockLevelNotFound
		}
		return entities.StockLevel{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) FindStockLevel(ctx context.Context, key entities.StockKey) (entities.StockLevel, bool, error) {
	var row stockLevelModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND warehouse_id = ? AND product_id = ? AND variant_id = ? AND location_id = ? AND lot_id = ?",
			key.TenantID, key.WarehouseID, key.ProductID, key.VariantID, key.LocationID, key.LotID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.StockLevel{}, false, nil
		}
		return entities.StockLevel{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListByProduct(ctx context.Context, tenantID, warehouseID, productID, variantID string) ([]entities.StockLevel, error) {
	tx := r.db.WithContext(ctx).
		Where("tenant_id = ? AND warehouse_id = ? AND product_id = ?", tenantID, warehouseID, productID)
	if variantID != "" {
		tx = tx.Where("variant_id = ?", variantID)
	}
	var rows []stockLevelModel
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entities.StockLevel, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (r *Repository) CreateStockLevel(ctx context.Context, level entities.StockLevel) (entities.StockLevel, error) {
	if level.RowVersion == 0 {
		level.RowVersion = 1
	}
	row := modelFromEntity(level)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return entities.StockLevel{}, err
	}
	return level, nil
}

// ApplyMovement is the optimistic mutator: the stock update only lands when
// the row version still matches, and the movement row, event-store append,
// and outbox row ride the same transaction.
func (r *Repository) ApplyMovement(ctx context.Context, input ports.ApplyMovementInput) (entities.StockLevel, error) {
	var updated entities.StockLevel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row stockLevelModel
		if err := tx.Where("stock_level_id = ?", input.StockLevelID).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrStockLevelNotFound
			}
			return err
		}

		at := input.Movement.OccurredAt
		if at.IsZero() {
			at = time.Now()
		}
		next, err := entities.Apply(row.toEntity(), input.Delta, input.AllowNegative, at)
		if err != nil {
			return err
		}

		result := tx.Model(&stockLevelModel{}).
			Where("stock_level_id = ? AND row_version = ?", input.StockLevelID, input.ExpectedVersion).
			Updates(map[string]any{
				"on_hand":          next.OnHand,
				"reserved":         next.Reserved,
				"available":        next.Available,
				"inbound":          next.Inbound,
				"outbound":         next.Outbound,
				"row_version":      next.RowVersion,
				"last_movement_at": next.LastMovementAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrVersionConflict.WithDetail("stock_level_id", input.StockLevelID)
		}

		if input.Movement.MovementID != "" {
			movement := movementModelFromEntity(input.Movement)
			if err := tx.Create(&movement).Error; err != nil {
				return err
			}
		}
		if input.Envelope.EventID != "" {
			if _, err := eventstore.AppendTx(tx, input.Envelope); err != nil {
				return err
			}
			if err := outbox.EnqueueTx(tx, input.OutboxEntry); err != nil {
				return err
			}
		}
		updated = next
		return nil
	})
	if err != nil {
		return entities.StockLevel{}, err
	}
	return updated, nil
}

func (r *Repository) AvailableForProduct(ctx context.Context, tenantID, warehouseID, productID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&stockLevelModel{}).
		Where("tenant_id = ? AND warehouse_id = ? AND product_id = ?", tenantID, warehouseID, productID).
		Select("COALESCE(SUM(available), 0)").
		Scan(&total).
		Error
	return total, err
}

func (m stockLevelModel) toEntity() entities.StockLevel {
	return entities.StockLevel{
		StockLevelID:   m.StockLevelID,
		TenantID:       m.TenantID,
		WarehouseID:    m.WarehouseID,
		ProductID:      m.ProductID,
		VariantID:      m.VariantID,
		LocationID:     m.LocationID,
		LotID:          m.LotID,
		OnHand:         m.OnHand,
		Reserved:       m.Reserved,
		Available:      m.Available,
		Inbound:        m.Inbound,
		Outbound:       m.Outbound,
		RowVersion:     m.RowVersion,
		LastMovementAt: m.LastMovementAt,
	}
}

func modelFromEntity(e entities.StockLevel) stockLevelModel {
	return stockLevelModel{
		StockLevelID:   e.StockLevelID,
		TenantID:       e.TenantID,
		WarehouseID:    e.WarehouseID,
		ProductID:      e.ProductID,
		VariantID:      e.VariantID,
		LocationID:     e.LocationID,
		LotID:          e.LotID,
		OnHand:         e.OnHand,
		Reserved:       e.Reserved,
		Available:      e.Available,
		Inbound:        e.Inbound,
		Outbound:       e.Outbound,
		RowVersion:     e.RowVersion,
		LastMovementAt: e.LastMovementAt,
	}
}

func movementModelFromEntity(m entities.Movement) movementModel {
	return movementModel{
		MovementID:   m.MovementID,
		TenantID:     m.TenantID,
		WarehouseID:  m.WarehouseID,
		StockLevelID: m.StockLevelID,
		ProductID:    m.ProductID,
		VariantID:    m.VariantID,
		LocationID:   m.LocationID,
		LotID:        m.LotID,
		MovementType: string(m.Type),
		Quantity:     m.Quantity,
		Reference:    m.Reference,
		OccurredAt:   m.OccurredAt.UTC(),
	}
}

// Models lists the gorm models this package owns, for schema migration.
func Models() []any {
	return []any{&stockLevelModel{}, &movementModel{}}
}
