package application

import (
	"context"
	"log/slog"

	"wareflow/contexts/order-fulfillment/allocation-service/domain/entities"
	domainerrors "wareflow/contexts/order-fulfillment/allocation-service/domain/errors"
	"wareflow/contexts/order-fulfillment/allocation-service/ports"
	"wareflow/internal/shared/events"
	"wareflow/internal/shared/outbox"
)

const (
	EventOrderPlaced         = "SalesOrder.OrderPlaced"
	EventOrderFullyAllocated = "SalesOrder.OrderFullyAllocated"
	EventStockReserved       = "Inventory.StockReserved"
)

type Service struct {
	Orders       ports.OrderRepository
	Reservations ports.ReservationRepository
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

type PlaceOrderLine struct {
	ProductID string
	VariantID string
	Quantity  int64
}

type PlaceOrderCommand struct {
	TenantID      string
	WarehouseID   string
	Reference     string
	Lines         []PlaceOrderLine
	CorrelationID string
	ActorID       string
}

type PlaceOrderResult struct {
	Order   entities.SalesOrder
	EventID string
}

// PlaceOrder books the demand document and emits OrderPlaced through the
// outbox; the reservation agent picks it up downstream.
func (s Service) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (PlaceOrderResult, error) {
	if cmd.TenantID == "" || cmd.WarehouseID == "" || len(cmd.Lines) == 0 {
		return PlaceOrderResult{}, domainerrors.ErrInvalidInput
	}
	for _, line := range cmd.Lines {
		if line.ProductID == "" || line.Quantity <= 0 {
			return PlaceOrderResult{}, domainerrors.ErrInvalidInput
		}
	}

	now := s.Clock.Now().UTC()
	order := entities.SalesOrder{
		OrderID:     s.IDGen.NewID(),
		TenantID:    cmd.TenantID,
		WarehouseID: cmd.WarehouseID,
		Reference:   cmd.Reference,
		Status:      entities.OrderPlaced,
		PlacedAt:    now,
		UpdatedAt:   now,
	}
	lines := make([]map[string]any, 0, len(cmd.Lines))
	for i, line := range cmd.Lines {
		order.Lines = append(order.Lines, entities.OrderLine{
			LineNo:    i + 1,
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
		})
		lines = append(lines, map[string]any{
			"line_no":    i + 1,
			"product_id": line.ProductID,
			"variant_id": line.VariantID,
			"quantity":   line.Quantity,
		})
	}

	env, err := events.New(EventOrderPlaced, map[string]any{
		"order_id":  order.OrderID,
		"reference": order.Reference,
		"lines":     lines,
	}, events.Context{
		CorrelationID: cmd.CorrelationID,
		Actor:         events.Actor{Type: events.ActorUser, ID: cmd.ActorID},
		TenantID:      cmd.TenantID,
		WarehouseID:   cmd.WarehouseID,
	}, now)
	if err != nil {
		return PlaceOrderResult{}, err
	}
	entry, err := outbox.NewEntry(env, "", now)
	if err != nil {
		return PlaceOrderResult{}, err
	}

	if err := s.Orders.CreateOrder(ctx, ports.CreateOrderInput{
		Order:       order,
		Envelope:    env,
		OutboxEntry: entry,
	}); err != nil {
		return PlaceOrderResult{}, err
	}
	return PlaceOrderResult{Order: order, EventID: env.EventID}, nil
}

func (s Service) GetOrder(ctx context.Context, tenantID, orderID string) (entities.SalesOrder, error) {
	if tenantID == "" || orderID == "" {
		return entities.SalesOrder{}, domainerrors.ErrInvalidInput
	}
	return s.Orders.GetOrder(ctx, tenantID, orderID)
}

func (s Service) ListReservations(ctx context.Context, tenantID, orderID string) ([]entities.Reservation, error) {
	if tenantID == "" || orderID == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	return s.Reservations.ListByReference(ctx, tenantID, "SALES_ORDER", orderID)
}
