package agents

import (
	"context"
	"testing"

	"wareflow/internal/shared/events"
)

type stubAgent struct {
	name       string
	subscribes []string
	handle     func(ctx context.Context, env events.Envelope, ec ExecutionContext) Result
}

func (a stubAgent) Name() string           { return a.name }
func (a stubAgent) Description() string    { return "stub" }
func (a stubAgent) SubscribesTo() []string { return a.subscribes }

func (a stubAgent) Handle(ctx context.Context, env events.Envelope, ec ExecutionContext) Result {
	if a.handle == nil {
		return Succeed("ok")
	}
	return a.handle(ctx, env, ec)
}

func agentNames(agents []Agent) []string {
	out := make([]string, 0, len(agents))
	for _, a := range agents {
		out = append(out, a.Name())
	}
	return out
}

func TestAgentsForUnionsSpecificAndCatchAll(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Register(stubAgent{name: "specific", subscribes: []string{"Stock.ThresholdBreached"}})
	registry.Register(stubAgent{name: "other", subscribes: []string{"Lot.Expired"}})
	registry.Register(stubAgent{name: "watcher", subscribes: []string{SubscribeAll}})

	got := agentNames(registry.AgentsFor("Stock.ThresholdBreached"))
	if len(got) != 2 || got[0] != "specific" || got[1] != "watcher" {
		t.Fatalf("expected [specific watcher], got %v", got)
	}

	got = agentNames(registry.AgentsFor("Unknown.Type"))
	if len(got) != 1 || got[0] != "watcher" {
		t.Fatalf("expected only the catch-all, got %v", got)
	}
}

func TestAgentsForDeduplicatesOverlappingSubscriptions(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Register(stubAgent{name: "greedy", subscribes: []string{"Stock.ThresholdBreached", SubscribeAll}})

	got := agentNames(registry.AgentsFor("Stock.ThresholdBreached"))
	if len(got) != 1 {
		t.Fatalf("expected one invocation per agent, got %v", got)
	}
}

func TestRegisterDuplicateNameReplaces(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Register(stubAgent{name: "worker", subscribes: []string{"Lot.Expired"}})
	registry.Register(stubAgent{name: "worker", subscribes: []string{"Stock.ThresholdBreached"}})

	if got := registry.AgentsFor("Lot.Expired"); len(got) != 0 {
		t.Fatalf("stale subscription must be gone, got %v", agentNames(got))
	}
	got := agentNames(registry.AgentsFor("Stock.ThresholdBreached"))
	if len(got) != 1 || got[0] != "worker" {
		t.Fatalf("expected replacement subscription, got %v", got)
	}
}

func TestUnregisterRemovesAllSubscriptions(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Register(stubAgent{name: "worker", subscribes: []string{"Lot.Expired", SubscribeAll}})
	registry.Unregister("worker")

	if _, ok := registry.Get("worker"); ok {
		t.Fatalf("expected agent gone after unregister")
	}
	if got := registry.AgentsFor("Lot.Expired"); len(got) != 0 {
		t.Fatalf("expected no subscribers, got %v", agentNames(got))
	}
}
