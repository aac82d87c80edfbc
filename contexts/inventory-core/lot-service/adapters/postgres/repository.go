package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"wareflow/contexts/inventory-core/lot-service/domain/entities"
	domainerrors "wareflow/contexts/inventory-core/lot-service/domain/errors"
)

type lotModel struct {
	LotID          string     `gorm:"column:lot_id;primaryKey"`
	TenantID       string     `gorm:"column:tenant_id;uniqueIndex:idx_lot_number,priority:1"`
	ProductID      string     `gorm:"column:product_id;uniqueIndex:idx_lot_number,priority:2"`
	LotNumber      string     `gorm:"column:lot_number;uniqueIndex:idx_lot_number,priority:3"`
	Status         string     `gorm:"column:status;index"`
	ManufacturedAt *time.Time `gorm:"column:manufactured_at"`
	ExpiresAt      *time.Time `gorm:"column:expires_at;index"`
	ReceivedAt     time.Time  `gorm:"column:received_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (lotModel) TableName() string { return "lots" }

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetLot(ctx context.Context, tenantID, lotID string) (entities.Lot, error) {
	var row lotModel
	err := r.db.WithContext(ctx).
		Where("lot_id = ? AND tenant_id = ?", lotID, tenantID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Lot{}, domainerrors.ErrLotNotFound
		}
		return entities.Lot{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) FindByNumber(ctx context.Context, tenantID, productID, lotNumber string) (entities.Lot, bool, error) {
	var row lotModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND lot_number = ?", tenantID, productID, lotNumber).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Lot{}, false, nil
		}
		return entities.Lot{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) Create(ctx context.Context, lot entities.Lot) (entities.Lot, bool, error) {
	row := modelFromEntity(lot)
	err := r.db.WithContext(ctx).Create(&row).Error
	if err == nil {
		return lot, true, nil
	}
	if !isUniqueViolation(err) {
		return entities.Lot{}, false, err
	}
	existing, found, readErr := r.FindByNumber(ctx, lot.TenantID, lot.ProductID, lot.LotNumber)
	if readErr != nil {
		return entities.Lot{}, false, readErr
	}
	if !found {
		return entities.Lot{}, false, err
	}
	return existing, false, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, tenantID, lotID string, from, to entities.LotStatus, at time.Time) (entities.Lot, error) {
	result := r.db.WithContext(ctx).
		Model(&lotModel{}).
		Where("lot_id = ? AND tenant_id = ? AND status = ?", lotID, tenantID, string(from)).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": at.UTC(),
		})
	if result.Error != nil {
		return entities.Lot{}, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetLot(ctx, tenantID, lotID); err != nil {
			return entities.Lot{}, err
		}
		return entities.Lot{}, domainerrors.ErrStatusConflict.WithDetail("lot_id", lotID)
	}
	return r.GetLot(ctx, tenantID, lotID)
}

func (r *Repository) ListExpired(ctx context.Context, tenantID string, asOf time.Time) ([]entities.Lot, error) {
	y, m, d := asOf.UTC().Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	var rows []lotModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status <> ? AND expires_at IS NOT NULL AND expires_at < ?",
			tenantID, string(entities.LotExpired), dayStart).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	out := make([]entities.Lot, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (m lotModel) toEntity() entities.Lot {
	return entities.Lot{
		LotID:          m.LotID,
		TenantID:       m.TenantID,
		ProductID:      m.ProductID,
		LotNumber:      m.LotNumber,
		Status:         entities.LotStatus(m.Status),
		ManufacturedAt: m.ManufacturedAt,
		ExpiresAt:      m.ExpiresAt,
		ReceivedAt:     m.ReceivedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func modelFromEntity(e entities.Lot) lotModel {
	return lotModel{
		LotID:          e.LotID,
		TenantID:       e.TenantID,
		ProductID:      e.ProductID,
		LotNumber:      e.LotNumber,
		Status:         string(e.Status),
		ManufacturedAt: e.ManufacturedAt,
		ExpiresAt:      e.ExpiresAt,
		ReceivedAt:     e.ReceivedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Models lists the gorm models this package owns, for schema migration.
func Models() []any {
	return []any{&lotModel{}}
}
