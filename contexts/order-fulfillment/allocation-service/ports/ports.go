package ports

import (
	"context"
	"time"

	stockentities "wareflow/contexts/inventory-core/stock-service/domain/entities"
	"wareflow/contexts/order-fulfillment/allocation-service/domain/entities"
	"wareflow/contexts/order-fulfillment/allocation-service/domain/fefo"
	"wareflow/internal/shared/events"
	"wareflow/internal/shared/outbox"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID() string
}

// CreateOrderInput commits the order row, the OrderPlaced envelope, and its
// outbox row in one transaction.
type CreateOrderInput struct {
	Order       entities.SalesOrder
	Envelope    events.Envelope
	OutboxEntry outbox.Entry
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) error
	GetOrder(ctx context.Context, tenantID, orderID string) (entities.SalesOrder, error)
	UpdateStatus(ctx context.Context, tenantID, orderID string, status entities.OrderStatus, at time.Time) error
}

// ReservationRepository enforces uniqueness on (tenant, reference type, id,
// line, stock level) so the reservation agent stays idempotent on
// redelivery.
type ReservationRepository interface {
	Create(ctx context.Context, reservation entities.Reservation) (entities.Reservation, bool, error)
	ListByReference(ctx context.Context, tenantID, referenceType, referenceID string) ([]entities.Reservation, error)
	Get(ctx context.Context, tenantID, reservationID string) (entities.Reservation, error)
	Update(ctx context.Context, reservation entities.Reservation) error
}

// SourceReader assembles allocator sources from stock levels and lot master
// data.
type SourceReader interface {
	ListSources(ctx context.Context, tenantID, warehouseID, productID, variantID string) ([]fefo.Source, error)
}

// StockReserver adjusts the reserved total on a stock level. Implemented by
// the stock service.
type StockReserver interface {
	Reserve(ctx context.Context, tenantID, stockLevelID string, quantity int64) (stockentities.StockLevel, error)
	Release(ctx context.Context, tenantID, stockLevelID string, quantity int64) (stockentities.StockLevel, error)
}
