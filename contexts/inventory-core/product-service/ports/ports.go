package ports

import (
	"context"
	"time"

	"wareflow/contexts/inventory-core/product-service/domain/entities"
)

type Clock interface {
	Now() time.Time
}

type Repository interface {
	GetProduct(ctx context.Context, tenantID, productID string) (entities.Product, error)
	FindBySKU(ctx context.Context, tenantID, sku string) (entities.Product, bool, error)
	ListByTenant(ctx context.Context, tenantID string) ([]entities.Product, error)
	Upsert(ctx context.Context, product entities.Product) (entities.Product, error)
}
