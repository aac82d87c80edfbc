package ports

import (
	"context"
	"time"

	productentities "wareflow/contexts/inventory-core/product-service/domain/entities"
)

type Clock interface {
	Now() time.Time
}

// Catalog is the product master data surface the planning agents read and
// write back to.
type Catalog interface {
	ListProducts(ctx context.Context, tenantID string) ([]productentities.Product, error)
	UpdateClassification(ctx context.Context, tenantID, productID string, abc productentities.AbcClass, xyz productentities.XyzClass) error
	UpdateReplenishment(ctx context.Context, tenantID, productID string, safetyStock, reorderPoint int64) error
}

// DemandReader yields a product's daily outbound demand for the trailing
// `days` days, oldest first, zero-filled for days without shipments.
type DemandReader interface {
	DailyDemand(ctx context.Context, tenantID, warehouseID, productID string, days int) ([]float64, error)
}
