package agents

import (
	"context"
	"testing"
	"time"

	"wareflow/internal/shared/events"
	"wareflow/internal/shared/faults"
)

var (
	testTenant    = "0b9f2a44-1c6e-4f4b-9a17-3d2f8e5c6a01"
	testWarehouse = "7c1d5e90-2b3a-4c8d-8e6f-1a2b3c4d5e02"
)

func inboundEnvelope(t *testing.T) events.Envelope {
	t.Helper()
	env, err := events.New("Stock.ThresholdBreached", map[string]any{"available": 2}, events.Context{
		Actor:       events.Actor{Type: events.ActorSystem, ID: "test"},
		TenantID:    testTenant,
		WarehouseID: testWarehouse,
	}, time.Now())
	if err != nil {
		t.Fatalf("mint envelope failed: %v", err)
	}
	return env
}

func TestRunAggregatesOutcomes(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Register(stubAgent{name: "ok", subscribes: []string{"Stock.ThresholdBreached"}})
	registry.Register(stubAgent{
		name:       "broken",
		subscribes: []string{"Stock.ThresholdBreached"},
		handle: func(context.Context, events.Envelope, ExecutionContext) Result {
			return Fail("cannot reach store", "timeout")
		},
	})

	rt := &Runtime{Registry: registry, ContinueOnError: true}
	dispatch := rt.Run(context.Background(), inboundEnvelope(t))
	if dispatch.Agents != 2 || dispatch.Succeeded != 1 || dispatch.Failed != 1 {
		t.Fatalf("expected 2 agents, 1/1 split, got %+v", dispatch)
	}
	if len(dispatch.Outcomes) != 2 {
		t.Fatalf("expected an outcome per agent, got %d", len(dispatch.Outcomes))
	}
}

func TestRunNoSubscribers(t *testing.T) {
	rt := &Runtime{Registry: NewRegistry(nil)}
	dispatch := rt.Run(context.Background(), inboundEnvelope(t))
	if dispatch.Agents != 0 || len(dispatch.Derived) != 0 {
		t.Fatalf("expected empty dispatch, got %+v", dispatch)
	}
}

func TestRunRecoversPanickingAgent(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Register(stubAgent{
		name:       "explosive",
		subscribes: []string{"Stock.ThresholdBreached"},
		handle: func(context.Context, events.Envelope, ExecutionContext) Result {
			panic("nil map write")
		},
	})

	rt := &Runtime{Registry: registry}
	dispatch := rt.Run(context.Background(), inboundEnvelope(t))
	if dispatch.Failed != 1 {
		t.Fatalf("expected panic counted as failure, got %+v", dispatch)
	}
	if dispatch.Outcomes[0].Message != "agent panicked" {
		t.Fatalf("expected panic outcome, got %+v", dispatch.Outcomes[0])
	}
}

func TestRunEnforcesDeadline(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Register(stubAgent{
		name:       "sleepy",
		subscribes: []string{"Stock.ThresholdBreached"},
		handle: func(context.Context, events.Envelope, ExecutionContext) Result {
			time.Sleep(500 * time.Millisecond)
			return Succeed("too late")
		},
	})

	rt := &Runtime{Registry: registry, Timeout: 20 * time.Millisecond}
	dispatch := rt.Run(context.Background(), inboundEnvelope(t))
	if dispatch.Failed != 1 {
		t.Fatalf("expected timeout counted as failure, got %+v", dispatch)
	}
	if !dispatch.Outcomes[0].TimedOut {
		t.Fatalf("expected timed out outcome, got %+v", dispatch.Outcomes[0])
	}
	if !dispatch.Retriable {
		t.Fatalf("timeout must mark the dispatch retriable, got %+v", dispatch)
	}
}

func TestFailErrCarriesRetriability(t *testing.T) {
	transient := FailErr("read availability", faults.New(faults.KindTransient, faults.CodeDownstreamUnavailable, "store unreachable"))
	if !transient.Retriable {
		t.Fatalf("transient fault must be retriable, got %+v", transient)
	}
	conflict := FailErr("reserve stock", faults.New(faults.KindConflict, faults.CodeInsufficientStock, "not enough on hand"))
	if conflict.Retriable {
		t.Fatalf("domain conflict must not be retriable, got %+v", conflict)
	}
	if Fail("order payload has no lines").Retriable {
		t.Fatalf("plain failure must not be retriable")
	}
}

func TestRunMarksDispatchRetriable(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Register(stubAgent{
		name:       "flaky",
		subscribes: []string{"Stock.ThresholdBreached"},
		handle: func(context.Context, events.Envelope, ExecutionContext) Result {
			return FailErr("load reorder policy", faults.New(faults.KindTransient, faults.CodeDownstreamUnavailable, "store unreachable"))
		},
	})
	registry.Register(stubAgent{
		name:       "strict",
		subscribes: []string{"Stock.ThresholdBreached"},
		handle: func(context.Context, events.Envelope, ExecutionContext) Result {
			return Fail("movement payload has no product_id")
		},
	})

	rt := &Runtime{Registry: registry, ContinueOnError: true}
	dispatch := rt.Run(context.Background(), inboundEnvelope(t))
	if dispatch.Failed != 2 {
		t.Fatalf("expected both agents failed, got %+v", dispatch)
	}
	if !dispatch.Retriable {
		t.Fatalf("one retriable failure must mark the dispatch retriable, got %+v", dispatch)
	}
	for _, outcome := range dispatch.Outcomes {
		if outcome.Agent == "flaky" && !outcome.Retriable {
			t.Fatalf("expected flaky outcome retriable, got %+v", outcome)
		}
		if outcome.Agent == "strict" && outcome.Retriable {
			t.Fatalf("expected strict outcome non-retriable, got %+v", outcome)
		}
	}
}

func TestRunSanitizesDerivedEnvelopes(t *testing.T) {
	inbound := inboundEnvelope(t)
	registry := NewRegistry(nil)
	registry.Register(stubAgent{
		name:       "reactor",
		subscribes: []string{"Stock.ThresholdBreached"},
		handle: func(_ context.Context, env events.Envelope, _ ExecutionContext) Result {
			// Tenancy and lineage left blank on purpose; the runtime fills them.
			return Succeed("reacted").WithEvents(events.Envelope{
				EventType:  "Stock.ReplenishmentRequested",
				OccurredAt: time.Now().UTC(),
				Payload:    map[string]any{"quantity": 10},
			})
		},
	})

	rt := &Runtime{Registry: registry}
	dispatch := rt.Run(context.Background(), inbound)
	if len(dispatch.Derived) != 1 {
		t.Fatalf("expected one derived envelope, got %d", len(dispatch.Derived))
	}
	derived := dispatch.Derived[0]
	if derived.TenantID != inbound.TenantID {
		t.Fatalf("expected tenant rewritten, got %s", derived.TenantID)
	}
	if derived.CorrelationID != inbound.CorrelationID || derived.CausationID != inbound.EventID {
		t.Fatalf("expected lineage rewritten, got %+v", derived)
	}
	if derived.Actor.Type != events.ActorAgent || derived.Actor.ID != "reactor" {
		t.Fatalf("expected agent actor, got %+v", derived.Actor)
	}
	if derived.EventID == "" || derived.EventID == inbound.EventID {
		t.Fatalf("expected fresh event id, got %s", derived.EventID)
	}
}

func TestRunDropsInvalidDerivedEnvelopes(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Register(stubAgent{
		name:       "sloppy",
		subscribes: []string{"Stock.ThresholdBreached"},
		handle: func(context.Context, events.Envelope, ExecutionContext) Result {
			return Succeed("reacted").WithEvents(events.Envelope{EventType: "not-an-event-type"})
		},
	})

	rt := &Runtime{Registry: registry}
	dispatch := rt.Run(context.Background(), inboundEnvelope(t))
	if dispatch.Succeeded != 1 {
		t.Fatalf("agent itself still succeeds, got %+v", dispatch)
	}
	if len(dispatch.Derived) != 0 {
		t.Fatalf("invalid derived envelope must be dropped, got %v", dispatch.Derived)
	}
}
