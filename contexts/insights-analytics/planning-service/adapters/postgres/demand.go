package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"wareflow/contexts/insights-analytics/planning-service/ports"
)

// DemandReader aggregates outbound shipment quantities from the stock
// movement journal into a zero-filled daily series.
type DemandReader struct {
	db    *gorm.DB
	clock ports.Clock
}

func NewDemandReader(db *gorm.DB, clock ports.Clock) *DemandReader {
	return &DemandReader{db: db, clock: clock}
}

func (r *DemandReader) DailyDemand(ctx context.Context, tenantID, warehouseID, productID string, days int) ([]float64, error) {
	if days <= 0 {
		return nil, nil
	}
	today := midnight(r.clock.Now().UTC())
	since := today.AddDate(0, 0, -(days - 1))

	var rows []struct {
		Day time.Time
		Qty int64
	}
	err := r.db.WithContext(ctx).
		Table("stock_movements").
		Select("date_trunc('day', occurred_at) AS day, COALESCE(SUM(quantity), 0) AS qty").
		Where("tenant_id = ? AND warehouse_id = ? AND product_id = ? AND movement_type = ? AND occurred_at >= ?",
			tenantID, warehouseID, productID, "SHIP", since).
		Group("day").
		Order("day").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}

	series := make([]float64, days)
	for _, row := range rows {
		offset := int(midnight(row.Day.UTC()).Sub(since).Hours() / 24)
		if offset < 0 || offset >= days {
			continue
		}
		series[offset] = float64(row.Qty)
	}
	return series, nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
