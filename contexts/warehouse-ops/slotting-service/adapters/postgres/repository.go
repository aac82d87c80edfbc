package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wareflow/contexts/warehouse-ops/slotting-service/domain/entities"
	domainerrors "wareflow/contexts/warehouse-ops/slotting-service/domain/errors"
)

type locationModel struct {
	LocationID       string  `gorm:"column:location_id;primaryKey"`
	TenantID         string  `gorm:"column:tenant_id;index:idx_location_scope"`
	WarehouseID      string  `gorm:"column:warehouse_id;index:idx_location_scope"`
	Code             string  `gorm:"column:code"`
	Zone             string  `gorm:"column:zone"`
	Type             string  `gorm:"column:location_type"`
	TemperatureZone  string  `gorm:"column:temperature_zone"`
	HazmatCertified  bool    `gorm:"column:hazmat_certified"`
	Active           bool    `gorm:"column:active;index:idx_location_scope"`
	UtilizationPct   float64 `gorm:"column:utilization_pct"`
	DistanceFromDock float64 `gorm:"column:distance_from_dock"`
	PickFrequency    float64 `gorm:"column:pick_frequency"`
	PickSequence     int     `gorm:"column:pick_sequence"`
}

func (locationModel) TableName() string { return "locations" }

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetLocation(ctx context.Context, tenantID, locationID string) (entities.Location, error) {
	var row locationModel
	err := r.db.WithContext(ctx).
		Where("location_id = ? AND tenant_id = ?", locationID, tenantID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Location{}, domainerrors.ErrLocationNotFound
		}
		return entities.Location{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListActive(ctx context.Context, tenantID, warehouseID string) ([]entities.Location, error) {
	var rows []locationModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND warehouse_id = ? AND active", tenantID, warehouseID).
		Order("pick_sequence").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	out := make([]entities.Location, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (r *Repository) Upsert(ctx context.Context, location entities.Location) (entities.Location, error) {
	row := modelFromEntity(location)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "location_id"}},
			UpdateAll: true,
		}).
		Create(&row).
		Error
	if err != nil {
		return entities.Location{}, err
	}
	return location, nil
}

func (m locationModel) toEntity() entities.Location {
	return entities.Location{
		LocationID:       m.LocationID,
		TenantID:         m.TenantID,
		WarehouseID:      m.WarehouseID,
		Code:             m.Code,
		Zone:             m.Zone,
		Type:             entities.LocationType(m.Type),
		TemperatureZone:  m.TemperatureZone,
		HazmatCertified:  m.HazmatCertified,
		Active:           m.Active,
		UtilizationPct:   m.UtilizationPct,
		DistanceFromDock: m.DistanceFromDock,
		PickFrequency:    m.PickFrequency,
		PickSequence:     m.PickSequence,
	}
}

func modelFromEntity(e entities.Location) locationModel {
	return locationModel{
		LocationID:       e.LocationID,
		TenantID:         e.TenantID,
		WarehouseID:      e.WarehouseID,
		Code:             e.Code,
		Zone:             e.Zone,
		Type:             string(e.Type),
		TemperatureZone:  e.TemperatureZone,
		HazmatCertified:  e.HazmatCertified,
		Active:           e.Active,
		UtilizationPct:   e.UtilizationPct,
		DistanceFromDock: e.DistanceFromDock,
		PickFrequency:    e.PickFrequency,
		PickSequence:     e.PickSequence,
	}
}

// Models lists the gorm models this package owns, for schema migration.
func Models() []any {
	return []any{&locationModel{}}
}
