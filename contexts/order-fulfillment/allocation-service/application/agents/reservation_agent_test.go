package agents

import (
	"context"
	"fmt"
	"testing"
	"time"

	lotmemory "wareflow/contexts/inventory-core/lot-service/adapters/memory"
	lotentities "wareflow/contexts/inventory-core/lot-service/domain/entities"
	stockmemory "wareflow/contexts/inventory-core/stock-service/adapters/memory"
	stockapp "wareflow/contexts/inventory-core/stock-service/application"
	stockentities "wareflow/contexts/inventory-core/stock-service/domain/entities"
	allocmemory "wareflow/contexts/order-fulfillment/allocation-service/adapters/memory"
	"wareflow/contexts/order-fulfillment/allocation-service/adapters/sources"
	"wareflow/contexts/order-fulfillment/allocation-service/application"
	"wareflow/contexts/order-fulfillment/allocation-service/domain/entities"
	sharedagents "wareflow/internal/agents"
	"wareflow/internal/shared/events"
	"wareflow/internal/shared/eventstore"
	"wareflow/internal/shared/outbox"
)

var (
	testTenant    = "0b9f2a44-1c6e-4f4b-9a17-3d2f8e5c6a01"
	testWarehouse = "7c1d5e90-2b3a-4c8d-8e6f-1a2b3c4d5e02"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type seqIDGen struct {
	prefix string
	n      int
}

func (g *seqIDGen) NewID() string {
	g.n++
	return fmt.Sprintf("%s-%03d", g.prefix, g.n)
}

type fixture struct {
	agent      ReservationAgent
	stockStore *stockmemory.Store
	allocStore *allocmemory.Store
	orderEnv   events.Envelope
}

// newFixture seeds the S2 shape: P2 has lot L1 (exp 2030) qty 5 at A-01 and
// lot L2 (exp 2029) qty 5 at A-02, and a placed order for 7 units.
func newFixture(t *testing.T, orderQty int64) fixture {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	eventsStore := eventstore.NewMemoryStore()
	ob := outbox.NewMemoryStore()
	stockStore := stockmemory.NewStore(eventsStore, ob)
	lotStore := lotmemory.NewStore()
	allocStore := allocmemory.NewStore(eventsStore, ob)

	seedLot := func(lotID string, expires time.Time) {
		if _, _, err := lotStore.Create(ctx, lotentities.Lot{
			LotID:     lotID,
			TenantID:  testTenant,
			ProductID: "P2",
			LotNumber: "N-" + lotID,
			Status:    lotentities.LotAvailable,
			ExpiresAt: &expires,
		}); err != nil {
			t.Fatalf("seed lot %s failed: %v", lotID, err)
		}
	}
	seedLot("L1", time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	seedLot("L2", time.Date(2029, 1, 1, 0, 0, 0, 0, time.UTC))

	seedLevel := func(id, location, lotID string, qty int64) {
		if _, err := stockStore.CreateStockLevel(ctx, stockentities.StockLevel{
			StockLevelID: id,
			TenantID:     testTenant,
			WarehouseID:  testWarehouse,
			ProductID:    "P2",
			LocationID:   location,
			LotID:        lotID,
			OnHand:       qty,
			Available:    qty,
			RowVersion:   1,
		}); err != nil {
			t.Fatalf("seed level %s failed: %v", id, err)
		}
	}
	seedLevel("sl-1", "A-01", "L1", 5)
	seedLevel("sl-2", "A-02", "L2", 5)

	stockService := stockapp.Service{
		Repo:  stockStore,
		Clock: fixedClock{now: now},
		IDGen: &seqIDGen{prefix: "mv"},
	}
	orderService := application.Service{
		Orders:       allocStore,
		Reservations: allocStore,
		Clock:        fixedClock{now: now},
		IDGen:        &seqIDGen{prefix: "ord"},
	}

	placed, err := orderService.PlaceOrder(ctx, application.PlaceOrderCommand{
		TenantID:    testTenant,
		WarehouseID: testWarehouse,
		Reference:   "SO-100",
		Lines:       []application.PlaceOrderLine{{ProductID: "P2", Quantity: orderQty}},
		ActorID:     "user-1",
	})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	orderEnv, err := eventsStore.Get(ctx, placed.EventID)
	if err != nil {
		t.Fatalf("load order envelope failed: %v", err)
	}

	return fixture{
		agent: ReservationAgent{
			Sources:      sources.Reader{Stock: stockStore, Lots: lotStore},
			Reservations: allocStore,
			Stock:        stockService,
			Orders:       allocStore,
			Clock:        fixedClock{now: now},
			IDGen:        &seqIDGen{prefix: "rsv"},
		},
		stockStore: stockStore,
		allocStore: allocStore,
		orderEnv:   orderEnv,
	}
}

func TestReservationAgentAllocatesFefoAcrossLots(t *testing.T) {
	f := newFixture(t, 7)
	ctx := context.Background()

	result := f.agent.Handle(ctx, f.orderEnv, sharedagents.ExecutionContext{})
	if !result.Success {
		t.Fatalf("agent failed: %s %v", result.Message, result.Errors)
	}

	orderID := events.PayloadString(f.orderEnv.Payload, "order_id")
	reservations, err := f.allocStore.ListByReference(ctx, testTenant, "SALES_ORDER", orderID)
	if err != nil {
		t.Fatalf("list reservations failed: %v", err)
	}
	if len(reservations) != 2 {
		t.Fatalf("expected two reservations, got %d", len(reservations))
	}
	byLot := map[string]int64{}
	for _, reservation := range reservations {
		byLot[reservation.LotID] = reservation.Quantity
	}
	if byLot["L2"] != 5 || byLot["L1"] != 2 {
		t.Fatalf("expected 5 against L2 and 2 against L1, got %v", byLot)
	}

	level1, err := f.stockStore.GetStockLevel(ctx, testTenant, "sl-1")
	if err != nil {
		t.Fatalf("get level failed: %v", err)
	}
	level2, err := f.stockStore.GetStockLevel(ctx, testTenant, "sl-2")
	if err != nil {
		t.Fatalf("get level failed: %v", err)
	}
	if level2.Reserved != 5 || level2.Available != 0 {
		t.Fatalf("expected sl-2 fully reserved, got %+v", level2)
	}
	if level1.Reserved != 2 || level1.Available != 3 {
		t.Fatalf("expected sl-1 reserved 2, got %+v", level1)
	}

	var sawReserved, sawComplete bool
	for _, derived := range result.Events {
		switch derived.EventType {
		case application.EventStockReserved:
			sawReserved = true
			if !derived.Payload["fully_reserved"].(bool) {
				t.Fatalf("expected fully_reserved true, got %+v", derived.Payload)
			}
			if events.PayloadInt64(derived.Payload, "allocated") != 7 {
				t.Fatalf("expected allocated 7, got %+v", derived.Payload)
			}
		case application.EventOrderFullyAllocated:
			sawComplete = true
		}
	}
	if !sawReserved || !sawComplete {
		t.Fatalf("expected StockReserved and OrderFullyAllocated, got %+v", result.Events)
	}

	order, err := f.allocStore.GetOrder(ctx, testTenant, orderID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if order.Status != entities.OrderFullyAllocated {
		t.Fatalf("expected order FULLY_ALLOCATED, got %s", order.Status)
	}
}

func TestReservationAgentRedeliveryDoesNotDoubleReserve(t *testing.T) {
	f := newFixture(t, 7)
	ctx := context.Background()

	first := f.agent.Handle(ctx, f.orderEnv, sharedagents.ExecutionContext{})
	if !first.Success {
		t.Fatalf("first run failed: %s %v", first.Message, first.Errors)
	}
	second := f.agent.Handle(ctx, f.orderEnv, sharedagents.ExecutionContext{})
	if !second.Success {
		t.Fatalf("redelivery failed: %s %v", second.Message, second.Errors)
	}

	level2, err := f.stockStore.GetStockLevel(ctx, testTenant, "sl-2")
	if err != nil {
		t.Fatalf("get level failed: %v", err)
	}
	if level2.Reserved != 5 {
		t.Fatalf("redelivery must not double-reserve, got reserved %d", level2.Reserved)
	}
}

func TestReservationAgentReportsShortfall(t *testing.T) {
	f := newFixture(t, 12)
	ctx := context.Background()

	result := f.agent.Handle(ctx, f.orderEnv, sharedagents.ExecutionContext{})
	if !result.Success {
		t.Fatalf("agent failed: %s %v", result.Message, result.Errors)
	}

	var reserved events.Envelope
	for _, derived := range result.Events {
		if derived.EventType == application.EventStockReserved {
			reserved = derived
		}
		if derived.EventType == application.EventOrderFullyAllocated {
			t.Fatalf("short order must not emit OrderFullyAllocated")
		}
	}
	if events.PayloadInt64(reserved.Payload, "allocated") != 10 {
		t.Fatalf("expected allocated 10, got %+v", reserved.Payload)
	}
	if events.PayloadInt64(reserved.Payload, "shortfall") != 2 {
		t.Fatalf("expected shortfall 2, got %+v", reserved.Payload)
	}

	orderID := events.PayloadString(f.orderEnv.Payload, "order_id")
	order, err := f.allocStore.GetOrder(ctx, testTenant, orderID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if order.Status != entities.OrderPartial {
		t.Fatalf("expected PARTIALLY_ALLOCATED, got %s", order.Status)
	}
}
