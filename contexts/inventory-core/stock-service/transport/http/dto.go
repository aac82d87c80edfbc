// Package http holds the wire DTOs of the stock service's command and
// query endpoints.
package http

import (
	"time"

	"wareflow/contexts/inventory-core/stock-service/domain/entities"
)

type ReceiveGoodsRequest struct {
	WarehouseID    string     `json:"warehouse_id"`
	ProductID      string     `json:"product_id"`
	VariantID      string     `json:"variant_id,omitempty"`
	LocationID     string     `json:"location_id"`
	LotNumber      string     `json:"lot_number,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	ManufacturedAt *time.Time `json:"manufactured_at,omitempty"`
	Quantity       int64      `json:"quantity"`
	Reference      string     `json:"reference,omitempty"`
}

type MovementRequest struct {
	WarehouseID  string `json:"warehouse_id"`
	ProductID    string `json:"product_id"`
	VariantID    string `json:"variant_id,omitempty"`
	LocationID   string `json:"location_id"`
	LotID        string `json:"lot_id,omitempty"`
	MovementType string `json:"movement_type"`
	Quantity     int64  `json:"quantity"`
	Reference    string `json:"reference,omitempty"`
}

type StockLevelDTO struct {
	StockLevelID   string    `json:"stock_level_id"`
	WarehouseID    string    `json:"warehouse_id"`
	ProductID      string    `json:"product_id"`
	VariantID      string    `json:"variant_id,omitempty"`
	LocationID     string    `json:"location_id"`
	LotID          string    `json:"lot_id,omitempty"`
	OnHand         int64     `json:"on_hand"`
	Reserved       int64     `json:"reserved"`
	Available      int64     `json:"available"`
	RowVersion     int64     `json:"row_version"`
	LastMovementAt time.Time `json:"last_movement_at"`
}

type MovementResponse struct {
	StockLevel StockLevelDTO `json:"stock_level"`
	MovementID string        `json:"movement_id"`
	EventID    string        `json:"event_id"`
}

type AvailabilityResponse struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Available   int64  `json:"available"`
}

func NewStockLevelDTO(level entities.StockLevel) StockLevelDTO {
	return StockLevelDTO{
		StockLevelID:   level.StockLevelID,
		WarehouseID:    level.WarehouseID,
		ProductID:      level.ProductID,
		VariantID:      level.VariantID,
		LocationID:     level.LocationID,
		LotID:          level.LotID,
		OnHand:         level.OnHand,
		Reserved:       level.Reserved,
		Available:      level.Available,
		RowVersion:     level.RowVersion,
		LastMovementAt: level.LastMovementAt,
	}
}
