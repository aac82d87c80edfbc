package agents

import (
	"context"
	"testing"
	"time"

	"wareflow/contexts/warehouse-ops/slotting-service/adapters/memory"
	"wareflow/contexts/warehouse-ops/slotting-service/application"
	"wareflow/contexts/warehouse-ops/slotting-service/domain/entities"
	"wareflow/contexts/warehouse-ops/slotting-service/domain/slotting"
	"wareflow/contexts/warehouse-ops/slotting-service/ports"
	sharedagents "wareflow/internal/agents"
	"wareflow/internal/shared/events"
)

var (
	testTenant    = "0b9f2a44-1c6e-4f4b-9a17-3d2f8e5c6a01"
	testWarehouse = "7c1d5e90-2b3a-4c8d-8e6f-1a2b3c4d5e02"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type stubProfiles struct {
	profile ports.ProductProfile
	found   bool
}

func (s stubProfiles) ProductProfile(context.Context, string, string) (ports.ProductProfile, bool, error) {
	return s.profile, s.found, nil
}

func seedLocations() []entities.Location {
	base := entities.Location{
		TenantID:        testTenant,
		WarehouseID:     testWarehouse,
		Type:            entities.LocationPick,
		TemperatureZone: "AMBIENT",
		Active:          true,
	}
	a := base
	a.LocationID, a.Code, a.PickFrequency, a.DistanceFromDock, a.PickSequence = "loc-a", "A-01", 80, 1, 1
	b := base
	b.LocationID, b.Code, b.PickFrequency, b.DistanceFromDock, b.PickSequence = "loc-b", "B-01", 50, 5, 2
	c := base
	c.LocationID, c.Code, c.PickFrequency, c.DistanceFromDock, c.PickSequence = "loc-c", "C-01", 20, 9, 3
	return []entities.Location{a, b, c}
}

func receiptEnvelope(t *testing.T) events.Envelope {
	t.Helper()
	env, err := events.New("Inventory.GoodsReceived", map[string]any{
		"product_id": "P1",
		"quantity":   int64(10),
	}, events.Context{
		Actor:       events.Actor{Type: events.ActorUser, ID: "user-1"},
		TenantID:    testTenant,
		WarehouseID: testWarehouse,
	}, time.Now())
	if err != nil {
		t.Fatalf("build envelope failed: %v", err)
	}
	return env
}

func TestSlottingAgentTopSuggestionForClassA(t *testing.T) {
	service := application.Service{
		Locations: memory.NewStore(seedLocations()),
		Profiles: stubProfiles{
			profile: ports.ProductProfile{ProductID: "P1", AbcClass: "A", TemperatureZone: "AMBIENT"},
			found:   true,
		},
		Scorer: slotting.NewScorer(slotting.DefaultWeights()),
	}
	agent := SlottingAgent{Slotting: service, Clock: fixedClock{now: time.Now()}}

	result := agent.Handle(context.Background(), receiptEnvelope(t), sharedagents.ExecutionContext{})
	if !result.Success {
		t.Fatalf("agent failed: %s %v", result.Message, result.Errors)
	}
	if len(result.Events) != 1 {
		t.Fatalf("expected one suggestion event, got %d", len(result.Events))
	}

	derived := result.Events[0]
	if derived.EventType != EventSuggestionsGenerated {
		t.Fatalf("expected %s, got %s", EventSuggestionsGenerated, derived.EventType)
	}
	suggestions := events.PayloadObjects(derived.Payload, "suggestions")
	if len(suggestions) != 3 {
		t.Fatalf("expected three suggestions, got %d", len(suggestions))
	}
	if code := events.PayloadString(suggestions[0], "code"); code != "A-01" {
		t.Fatalf("expected A-01 on top, got %s", code)
	}
	top := events.PayloadFloat(suggestions[0], "score")
	for _, other := range suggestions[1:] {
		if events.PayloadFloat(other, "score") >= top {
			t.Fatalf("top score must be strictly greater, got %+v", suggestions)
		}
	}
}

func TestSlottingAgentQuietWithoutEligibleLocations(t *testing.T) {
	service := application.Service{
		Locations: memory.NewStore(nil),
		Profiles: stubProfiles{
			profile: ports.ProductProfile{ProductID: "P1"},
			found:   true,
		},
		Scorer: slotting.NewScorer(slotting.DefaultWeights()),
	}
	agent := SlottingAgent{Slotting: service, Clock: fixedClock{now: time.Now()}}

	result := agent.Handle(context.Background(), receiptEnvelope(t), sharedagents.ExecutionContext{})
	if !result.Success || len(result.Events) != 0 {
		t.Fatalf("expected quiet success, got %+v", result)
	}
}
