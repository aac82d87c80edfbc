package ports

import (
	"context"
	"time"

	"wareflow/contexts/warehouse-ops/slotting-service/domain/entities"
)

type Clock interface {
	Now() time.Time
}

type LocationRepository interface {
	GetLocation(ctx context.Context, tenantID, locationID string) (entities.Location, error)
	ListActive(ctx context.Context, tenantID, warehouseID string) ([]entities.Location, error)
	Upsert(ctx context.Context, location entities.Location) (entities.Location, error)
}

// ProductProfile is the slice of product master data the scorer needs.
type ProductProfile struct {
	ProductID       string
	AbcClass        string
	TemperatureZone string
	Hazmat          bool
}

// ProfileReader is implemented by the product service.
type ProfileReader interface {
	ProductProfile(ctx context.Context, tenantID, productID string) (ProductProfile, bool, error)
}
