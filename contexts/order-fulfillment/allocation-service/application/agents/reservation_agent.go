package agents

import (
	"context"
	"fmt"

	"wareflow/contexts/order-fulfillment/allocation-service/application"
	"wareflow/contexts/order-fulfillment/allocation-service/domain/entities"
	"wareflow/contexts/order-fulfillment/allocation-service/domain/fefo"
	"wareflow/contexts/order-fulfillment/allocation-service/ports"
	"wareflow/internal/agents"
	"wareflow/internal/shared/events"
)

const referenceSalesOrder = "SALES_ORDER"

// ReservationAgent turns a placed order into FEFO reservations. The
// reservation natural key makes redelivery safe: a line already reserved
// inserts nothing and does not touch the stock level again.
type ReservationAgent struct {
	Sources      ports.SourceReader
	Reservations ports.ReservationRepository
	Stock        ports.StockReserver
	Orders       ports.OrderRepository
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	// MinDaysToExpiration filters lots too close to expiry from picks.
	MinDaysToExpiration int
}

func (a ReservationAgent) Name() string { return "order-reservation" }

func (a ReservationAgent) Description() string {
	return "reserves stock for placed orders in first-expire-first-out order"
}

func (a ReservationAgent) SubscribesTo() []string {
	return []string{application.EventOrderPlaced}
}

func (a ReservationAgent) Handle(ctx context.Context, env events.Envelope, ec agents.ExecutionContext) agents.Result {
	orderID := events.PayloadString(env.Payload, "order_id")
	if orderID == "" {
		return agents.Fail("order payload has no order_id")
	}
	orderLines := events.PayloadObjects(env.Payload, "lines")
	if len(orderLines) == 0 {
		return agents.Fail("order payload has no lines")
	}

	now := a.Clock.Now().UTC()
	actor := events.Actor{Type: events.ActorAgent, ID: a.Name()}
	result := agents.Succeed(fmt.Sprintf("reserved order %s", orderID))
	fullyReserved := true

	for _, line := range orderLines {
		lineNo := int(events.PayloadInt64(line, "line_no"))
		productID := events.PayloadString(line, "product_id")
		variantID := events.PayloadString(line, "variant_id")
		quantity := events.PayloadInt64(line, "quantity")
		if productID == "" || quantity <= 0 {
			return agents.Fail(fmt.Sprintf("order line %d is invalid", lineNo))
		}

		sources, err := a.Sources.ListSources(ctx, env.TenantID, env.WarehouseID, productID, variantID)
		if err != nil {
			return agents.FailErr("list allocation sources", err)
		}
		allocation := fefo.Allocate(fefo.Request{
			ProductID:           productID,
			VariantID:           variantID,
			WarehouseID:         env.WarehouseID,
			Quantity:            quantity,
			MinDaysToExpiration: a.MinDaysToExpiration,
		}, sources, now)

		allocations := make([]map[string]any, 0, len(allocation.Lines))
		for _, alloc := range allocation.Lines {
			reservation := entities.Reservation{
				ReservationID: a.IDGen.NewID(),
				TenantID:      env.TenantID,
				WarehouseID:   env.WarehouseID,
				ProductID:     productID,
				VariantID:     variantID,
				StockLevelID:  alloc.StockLevelID,
				LotID:         alloc.LotID,
				Quantity:      alloc.Quantity,
				ReferenceType: referenceSalesOrder,
				ReferenceID:   orderID,
				ReferenceLine: lineNo,
				Status:        entities.ReservationActive,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			created, inserted, err := a.Reservations.Create(ctx, reservation)
			if err != nil {
				return agents.FailErr("create reservation", err)
			}
			if inserted {
				if _, err := a.Stock.Reserve(ctx, env.TenantID, alloc.StockLevelID, alloc.Quantity); err != nil {
					return agents.FailErr("reserve stock", err)
				}
			}
			allocations = append(allocations, map[string]any{
				"reservation_id": created.ReservationID,
				"stock_level_id": alloc.StockLevelID,
				"location_id":    alloc.LocationID,
				"lot_id":         alloc.LotID,
				"quantity":       alloc.Quantity,
			})
		}

		if !allocation.FullyAllocated {
			fullyReserved = false
		}
		reserved, err := env.Derive(application.EventStockReserved, map[string]any{
			"order_id":       orderID,
			"line_no":        lineNo,
			"product_id":     productID,
			"requested":      quantity,
			"allocated":      allocation.Allocated,
			"shortfall":      allocation.Shortfall,
			"fully_reserved": allocation.FullyAllocated,
			"allocations":    allocations,
		}, actor, now)
		if err != nil {
			return agents.FailErr("build reservation envelope", err)
		}
		result = result.WithEvents(reserved)
	}

	status := entities.OrderPartial
	if fullyReserved {
		status = entities.OrderFullyAllocated
	}
	if err := a.Orders.UpdateStatus(ctx, env.TenantID, orderID, status, now); err != nil {
		return agents.FailErr("update order status", err)
	}
	if fullyReserved {
		complete, err := env.Derive(application.EventOrderFullyAllocated, map[string]any{
			"order_id": orderID,
		}, actor, now)
		if err != nil {
			return agents.FailErr("build completion envelope", err)
		}
		result = result.WithEvents(complete)
	}
	return result.WithData("fully_reserved", fullyReserved)
}
