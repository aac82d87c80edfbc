package entities

import (
	"time"

	"wareflow/internal/shared/faults"
)

// StockKey identifies one stock level. Variant and lot are optional.
type StockKey struct {
	TenantID    string
	WarehouseID string
	ProductID   string
	VariantID   string
	LocationID  string
	LotID       string
}

// StockLevel is the per-(tenant, warehouse, product, variant, location, lot)
// quantity record. Every mutation increments RowVersion; writers serialize
// through compare-and-swap on it.
type StockLevel struct {
	StockLevelID   string
	TenantID       string
	WarehouseID    string
	ProductID      string
	VariantID      string
	LocationID     string
	LotID          string
	OnHand         int64
	Reserved       int64
	Available      int64
	Inbound        int64
	Outbound       int64
	RowVersion     int64
	LastMovementAt time.Time
}

func (s StockLevel) Key() StockKey {
	return StockKey{
		TenantID:    s.TenantID,
		WarehouseID: s.WarehouseID,
		ProductID:   s.ProductID,
		VariantID:   s.VariantID,
		LocationID:  s.LocationID,
		LotID:       s.LotID,
	}
}

// Delta describes signed changes to the four tracked quantities.
type Delta struct {
	OnHand   int64
	Reserved int64
	Inbound  int64
	Outbound int64
}

type MovementType string

const (
	MovementReceipt    MovementType = "RECEIPT"
	MovementShip       MovementType = "SHIP"
	MovementTransfer   MovementType = "TRANSFER"
	MovementAdjustment MovementType = "ADJUSTMENT"
)

// Movement is the audit record of one stock mutation.
type Movement struct {
	MovementID   string
	TenantID     string
	WarehouseID  string
	StockLevelID string
	ProductID    string
	VariantID    string
	LocationID   string
	LotID        string
	Type         MovementType
	Quantity     int64
	Reference    string
	OccurredAt   time.Time
}

var ErrNegativeStockBlocked = faults.New(faults.KindConflict, faults.CodeNegativeStockBlocked, "movement would drive on-hand negative")

// Apply computes the post-mutation stock level. On-hand may never go
// negative; available clamps at zero unless the override is set. The row
// version advances and the movement timestamp is stamped.
func Apply(level StockLevel, delta Delta, allowNegativeAvailable bool, now time.Time) (StockLevel, error) {
	level.OnHand += delta.OnHand
	if level.OnHand < 0 {
		return StockLevel{}, ErrNegativeStockBlocked.
			WithDetail("stock_level_id", level.StockLevelID).
			WithDetail("on_hand", level.OnHand)
	}
	level.Reserved += delta.Reserved
	if level.Reserved < 0 {
		level.Reserved = 0
	}
	level.Inbound += delta.Inbound
	if level.Inbound < 0 {
		level.Inbound = 0
	}
	level.Outbound += delta.Outbound
	if level.Outbound < 0 {
		level.Outbound = 0
	}

	level.Available = level.OnHand - level.Reserved
	if level.Available < 0 && !allowNegativeAvailable {
		level.Available = 0
	}

	level.RowVersion++
	level.LastMovementAt = now.UTC()
	return level, nil
}
