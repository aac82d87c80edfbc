package agents

import (
	"context"
	"sync"

	"wareflow/internal/agents"
	"wareflow/internal/shared/events"
)

// ActivityAgent tallies every event the consumer delivers, per tenant and
// event type. It is the one catch-all subscriber in the process and its
// counts back the activity read endpoint.
type ActivityAgent struct {
	mu      sync.Mutex
	tallies map[string]map[string]int64
}

func NewActivityAgent() *ActivityAgent {
	return &ActivityAgent{tallies: make(map[string]map[string]int64)}
}

func (a *ActivityAgent) Name() string { return "event-activity-tally" }

func (a *ActivityAgent) Description() string {
	return "counts delivered events per tenant and event type"
}

func (a *ActivityAgent) SubscribesTo() []string {
	return []string{agents.SubscribeAll}
}

func (a *ActivityAgent) Handle(_ context.Context, env events.Envelope, _ agents.ExecutionContext) agents.Result {
	a.mu.Lock()
	byType := a.tallies[env.TenantID]
	if byType == nil {
		byType = make(map[string]int64)
		a.tallies[env.TenantID] = byType
	}
	byType[env.EventType]++
	var total int64
	for _, count := range byType {
		total += count
	}
	a.mu.Unlock()

	return agents.Succeed("tallied").WithData("tenant_events", total)
}

// Snapshot copies a tenant's per-type counts.
func (a *ActivityAgent) Snapshot(tenantID string) map[string]int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]int64, len(a.tallies[tenantID]))
	for eventType, count := range a.tallies[tenantID] {
		out[eventType] = count
	}
	return out
}
