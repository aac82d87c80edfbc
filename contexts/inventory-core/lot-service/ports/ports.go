package ports

import (
	"context"
	"time"

	"wareflow/contexts/inventory-core/lot-service/domain/entities"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID() string
}

// Repository persists lot master data. Create must enforce uniqueness on
// (tenant, product, lot number) so goods receipt stays idempotent.
type Repository interface {
	GetLot(ctx context.Context, tenantID, lotID string) (entities.Lot, error)
	FindByNumber(ctx context.Context, tenantID, productID, lotNumber string) (entities.Lot, bool, error)
	Create(ctx context.Context, lot entities.Lot) (entities.Lot, bool, error)
	// UpdateStatus transitions the lot only when it still carries the
	// expected status; a lost race returns a status conflict fault.
	UpdateStatus(ctx context.Context, tenantID, lotID string, from, to entities.LotStatus, at time.Time) (entities.Lot, error)
	// ListExpired returns lots of the tenant whose expiry date lies before
	// the day of asOf and whose status is not yet EXPIRED.
	ListExpired(ctx context.Context, tenantID string, asOf time.Time) ([]entities.Lot, error)
}
