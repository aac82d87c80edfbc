package agents

import (
	"log/slog"
	"sync"
)

// Registry indexes agents by the event types they subscribe to. It is
// populated at process start and read-only during steady state; writes are
// serialized by a coarse mutex.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Agent
	byType map[string][]string
	logger *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		byName: make(map[string]Agent),
		byType: make(map[string][]string),
		logger: logger,
	}
}

// Register indexes the agent under each of its subscribed event types.
// Registering a duplicate name replaces the prior entry with a warning.
func (r *Registry) Register(agent Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := agent.Name()
	if _, exists := r.byName[name]; exists {
		r.logger.Warn("agent registration replaced",
			"event", "agent_registration_replaced",
			"module", "internal/agents",
			"layer", "runtime",
			"agent", name,
		)
		r.removeLocked(name)
	}
	r.byName[name] = agent
	for _, eventType := range agent.SubscribesTo() {
		r.byType[eventType] = append(r.byType[eventType], name)
	}
	r.logger.Info("agent registered",
		"event", "agent_registered",
		"module", "internal/agents",
		"layer", "runtime",
		"agent", name,
		"subscriptions", agent.SubscribesTo(),
	)
}

func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(name)
}

func (r *Registry) removeLocked(name string) {
	delete(r.byName, name)
	for eventType, names := range r.byType {
		kept := names[:0]
		for _, n := range names {
			if n != name {
				kept = append(kept, n)
			}
		}
		if len(kept) == 0 {
			delete(r.byType, eventType)
			continue
		}
		r.byType[eventType] = kept
	}
}

// AgentsFor returns the union of agents subscribed to the specific event
// type and the catch-all, in registration order, without duplicates.
func (r *Registry) AgentsFor(eventType string) []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var out []Agent
	for _, name := range r.byType[eventType] {
		if !seen[name] {
			seen[name] = true
			out = append(out, r.byName[name])
		}
	}
	for _, name := range r.byType[SubscribeAll] {
		if !seen[name] {
			seen[name] = true
			out = append(out, r.byName[name])
		}
	}
	return out
}

func (r *Registry) Get(name string) (Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agent, ok := r.byName[name]
	return agent, ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	return names
}
