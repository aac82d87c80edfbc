package sources

import (
	"context"
	"errors"

	lotdomainerrors "wareflow/contexts/inventory-core/lot-service/domain/errors"
	lotports "wareflow/contexts/inventory-core/lot-service/ports"
	stockports "wareflow/contexts/inventory-core/stock-service/ports"
	"wareflow/contexts/order-fulfillment/allocation-service/domain/fefo"
)

// Sequencer resolves the pick sequence of a location. Implemented by the
// slotting service; nil means no sequencing.
type Sequencer interface {
	PickSequence(ctx context.Context, tenantID, warehouseID, locationID string) (int, bool, error)
}

// Reader joins stock levels with their lot master data into allocator
// sources.
type Reader struct {
	Stock     stockports.Repository
	Lots      lotports.Repository
	Sequencer Sequencer
}

func (r Reader) ListSources(ctx context.Context, tenantID, warehouseID, productID, variantID string) ([]fefo.Source, error) {
	levels, err := r.Stock.ListByProduct(ctx, tenantID, warehouseID, productID, variantID)
	if err != nil {
		return nil, err
	}
	out := make([]fefo.Source, 0, len(levels))
	for _, level := range levels {
		source := fefo.Source{
			StockLevelID: level.StockLevelID,
			ProductID:    level.ProductID,
			VariantID:    level.VariantID,
			WarehouseID:  level.WarehouseID,
			LocationID:   level.LocationID,
			Available:    level.Available,
		}
		if level.LotID != "" {
			lot, err := r.Lots.GetLot(ctx, tenantID, level.LotID)
			if err != nil {
				// A stock level pointing at a vanished lot cannot be
				// validated for expiry, so it is not offered.
				if errors.Is(err, lotdomainerrors.ErrLotNotFound) {
					continue
				}
				return nil, err
			}
			source.Lot = &fefo.Lot{
				LotID:      lot.LotID,
				Status:     lot.Status,
				ExpiresAt:  lot.ExpiresAt,
				ReceivedAt: lot.ReceivedAt,
			}
		}
		if r.Sequencer != nil {
			if seq, ok, err := r.Sequencer.PickSequence(ctx, tenantID, warehouseID, level.LocationID); err != nil {
				return nil, err
			} else if ok {
				source.PickSequence = seq
			}
		}
		out = append(out, source)
	}
	return out, nil
}
