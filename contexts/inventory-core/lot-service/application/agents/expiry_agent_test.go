package agents

import (
	"context"
	"testing"
	"time"

	"wareflow/contexts/inventory-core/lot-service/adapters/memory"
	"wareflow/contexts/inventory-core/lot-service/domain/entities"
	sharedagents "wareflow/internal/agents"
	"wareflow/internal/shared/events"
)

var (
	testTenant    = "0b9f2a44-1c6e-4f4b-9a17-3d2f8e5c6a01"
	testWarehouse = "7c1d5e90-2b3a-4c8d-8e6f-1a2b3c4d5e02"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func seedLot(t *testing.T, store *memory.Store, lotID string, status entities.LotStatus, expiresAt time.Time) {
	t.Helper()
	_, _, err := store.Create(context.Background(), entities.Lot{
		LotID:     lotID,
		TenantID:  testTenant,
		ProductID: "prod-1",
		LotNumber: "LOT-" + lotID,
		Status:    status,
		ExpiresAt: &expiresAt,
	})
	if err != nil {
		t.Fatalf("seed lot failed: %v", err)
	}
}

func checkEnvelope(t *testing.T) events.Envelope {
	t.Helper()
	env, err := events.New("Scheduled.ExpiryCheck", map[string]any{
		"job_name":     "lot-expiry-check",
		"triggered_by": "scheduler",
	}, events.Context{
		Actor:       events.Actor{Type: events.ActorSystem, ID: "scheduler"},
		TenantID:    testTenant,
		WarehouseID: testWarehouse,
	}, time.Now())
	if err != nil {
		t.Fatalf("build envelope failed: %v", err)
	}
	return env
}

func TestExpiryAgentExpiresOverdueLots(t *testing.T) {
	store := memory.NewStore()
	today := time.Date(2026, 3, 10, 0, 30, 0, 0, time.UTC)
	seedLot(t, store, "overdue", entities.LotAvailable, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC))
	seedLot(t, store, "fresh", entities.LotAvailable, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))

	agent := ExpiryAgent{Lots: store, Clock: fixedClock{now: today}}
	result := agent.Handle(context.Background(), checkEnvelope(t), sharedagents.ExecutionContext{})
	if !result.Success {
		t.Fatalf("agent failed: %s %v", result.Message, result.Errors)
	}
	if len(result.Events) != 1 {
		t.Fatalf("expected one LotExpired event, got %d", len(result.Events))
	}

	alert := result.Events[0]
	if alert.EventType != EventLotExpired {
		t.Fatalf("expected %s, got %s", EventLotExpired, alert.EventType)
	}
	if got := events.PayloadString(alert.Payload, "action_taken"); got != ActionAutoQuarantine {
		t.Fatalf("expected %s, got %s", ActionAutoQuarantine, got)
	}
	if got := events.PayloadInt64(alert.Payload, "days_expired"); got != 1 {
		t.Fatalf("expected 1 day expired, got %d", got)
	}

	lot, err := store.GetLot(context.Background(), testTenant, "overdue")
	if err != nil {
		t.Fatalf("get lot failed: %v", err)
	}
	if lot.Status != entities.LotExpired {
		t.Fatalf("expected lot EXPIRED, got %s", lot.Status)
	}

	fresh, err := store.GetLot(context.Background(), testTenant, "fresh")
	if err != nil {
		t.Fatalf("get fresh lot failed: %v", err)
	}
	if fresh.Status != entities.LotAvailable {
		t.Fatalf("fresh lot must stay AVAILABLE, got %s", fresh.Status)
	}
}

func TestExpiryAgentRedeliveryEmitsNothing(t *testing.T) {
	store := memory.NewStore()
	today := time.Date(2026, 3, 10, 0, 30, 0, 0, time.UTC)
	seedLot(t, store, "overdue", entities.LotAvailable, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	agent := ExpiryAgent{Lots: store, Clock: fixedClock{now: today}}
	env := checkEnvelope(t)

	first := agent.Handle(context.Background(), env, sharedagents.ExecutionContext{})
	if len(first.Events) != 1 {
		t.Fatalf("expected one event on first run, got %d", len(first.Events))
	}
	second := agent.Handle(context.Background(), env, sharedagents.ExecutionContext{})
	if !second.Success || len(second.Events) != 0 {
		t.Fatalf("expected quiet success on redelivery, got %+v", second)
	}
}
