package agents

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"wareflow/internal/shared/events"
)

const (
	DefaultConcurrency = 10
	DefaultTimeout     = 30 * time.Second
)

// Runtime executes the agents subscribed to one inbound envelope in batches
// of bounded concurrency with a per-agent deadline.
type Runtime struct {
	Registry        *Registry
	Concurrency     int
	Timeout         time.Duration
	ContinueOnError bool
	Logger          *slog.Logger
}

// AgentOutcome records one agent invocation inside a dispatch.
type AgentOutcome struct {
	Agent     string
	Success   bool
	Message   string
	Errors    []string
	Elapsed   time.Duration
	TimedOut  bool
	Retriable bool
}

// Dispatch aggregates a full run over one inbound envelope. Derived
// envelopes are concatenated in agent-completion order; the caller (the
// consumer) publishes them. Retriable is set when any failed outcome was
// retriable, which sends the whole delivery back through the retry queue.
type Dispatch struct {
	EventID   string
	EventType string
	Agents    int
	Succeeded int
	Failed    int
	Retriable bool
	Elapsed   time.Duration
	Derived   []events.Envelope
	Outcomes  []AgentOutcome
}

// Run looks up subscribers for the envelope's type and invokes them. A
// failing agent never fails the dispatch itself; callers act on the
// aggregation, including its Retriable flag. ContinueOnError=false stops
// scheduling further batches once any failure has been observed.
func (r *Runtime) Run(ctx context.Context, env events.Envelope) Dispatch {
	started := time.Now()
	subscribed := r.Registry.AgentsFor(env.EventType)

	dispatch := Dispatch{
		EventID:   env.EventID,
		EventType: env.EventType,
		Agents:    len(subscribed),
	}
	if len(subscribed) == 0 {
		dispatch.Elapsed = time.Since(started)
		return dispatch
	}

	ec := ExecutionContext{
		TenantID:      env.TenantID,
		WarehouseID:   env.WarehouseID,
		CorrelationID: env.CorrelationID,
		Logger:        r.logger().With("correlation_id", env.CorrelationID, "tenant_id", env.TenantID),
	}

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var mu sync.Mutex
	for offset := 0; offset < len(subscribed); offset += concurrency {
		end := offset + concurrency
		if end > len(subscribed) {
			end = len(subscribed)
		}
		batch := subscribed[offset:end]

		p := pool.New().WithMaxGoroutines(concurrency)
		for _, agent := range batch {
			agent := agent
			p.Go(func() {
				outcome, result := r.invoke(ctx, agent, env, ec)
				derived := r.sanitize(env, agent.Name(), result.Events)

				mu.Lock()
				defer mu.Unlock()
				dispatch.Outcomes = append(dispatch.Outcomes, outcome)
				if outcome.Success {
					dispatch.Succeeded++
					dispatch.Derived = append(dispatch.Derived, derived...)
				} else {
					dispatch.Failed++
					if outcome.Retriable {
						dispatch.Retriable = true
					}
				}
			})
		}
		p.Wait()

		if !r.ContinueOnError && dispatch.Failed > 0 {
			break
		}
	}

	dispatch.Elapsed = time.Since(started)
	r.logger().Info("agent dispatch finished",
		"event", "agent_dispatch_finished",
		"module", "internal/agents",
		"layer", "runtime",
		"event_type", env.EventType,
		"event_id", env.EventID,
		"agents", dispatch.Agents,
		"succeeded", dispatch.Succeeded,
		"failed", dispatch.Failed,
		"derived", len(dispatch.Derived),
		"elapsed", dispatch.Elapsed.String(),
	)
	return dispatch
}

// invoke applies the per-agent deadline. The handler runs in its own
// goroutine so a handler ignoring the context cannot stall the batch past
// the deadline.
func (r *Runtime) invoke(ctx context.Context, agent Agent, env events.Envelope, ec ExecutionContext) (AgentOutcome, Result) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	done := make(chan Result, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				crashed := Fail("agent panicked", fmt.Sprintf("panic: %v", rec))
				crashed.Retriable = true
				done <- crashed
			}
		}()
		done <- agent.Handle(actx, env, ec)
	}()

	var result Result
	timedOut := false
	select {
	case result = <-done:
	case <-actx.Done():
		timedOut = true
		result = Fail("agent deadline exceeded", actx.Err().Error())
		result.Retriable = true
	}

	outcome := AgentOutcome{
		Agent:     agent.Name(),
		Success:   result.Success,
		Message:   result.Message,
		Errors:    result.Errors,
		Elapsed:   time.Since(started),
		TimedOut:  timedOut,
		Retriable: result.Retriable,
	}
	if !result.Success {
		r.logger().Warn("agent failed",
			"event", "agent_failed",
			"module", "internal/agents",
			"layer", "runtime",
			"agent", agent.Name(),
			"event_type", env.EventType,
			"event_id", env.EventID,
			"timed_out", timedOut,
			"errors", result.Errors,
		)
	}
	return outcome, result
}

// sanitize defensively rewrites tenancy, correlation, and causation on every
// envelope an agent returns. Re-publishing the inbound envelope unchanged is
// forbidden; such envelopes get a fresh identity as a derivation.
func (r *Runtime) sanitize(inbound events.Envelope, agentName string, derived []events.Envelope) []events.Envelope {
	out := make([]events.Envelope, 0, len(derived))
	for _, env := range derived {
		env.TenantID = inbound.TenantID
		env.CorrelationID = inbound.CorrelationID
		env.CausationID = inbound.EventID
		if env.SchemaVersion == "" {
			env.SchemaVersion = events.SchemaVersion
		}
		if env.Actor.ID == "" {
			env.Actor = events.Actor{Type: events.ActorAgent, ID: agentName}
		}
		if env.EventID == "" || env.EventID == inbound.EventID {
			env.EventID = uuid.NewString()
		}
		if err := env.Validate(); err != nil {
			r.logger().Warn("derived envelope rejected",
				"event", "derived_envelope_rejected",
				"module", "internal/agents",
				"layer", "runtime",
				"agent", agentName,
				"event_type", env.EventType,
				"error", err.Error(),
			)
			continue
		}
		out = append(out, env)
	}
	return out
}

func (r *Runtime) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}
