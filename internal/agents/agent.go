// Package agents defines the contract every reaction handler implements,
// the process-wide subscription registry, and the execution harness that
// runs subscribed agents for one inbound envelope.
package agents

import (
	"context"
	"log/slog"

	"wareflow/internal/shared/events"
	"wareflow/internal/shared/faults"
)

// SubscribeAll subscribes an agent to every event type.
const SubscribeAll = "*"

// ExecutionContext is the ambient state an agent invocation runs under.
type ExecutionContext struct {
	TenantID      string
	WarehouseID   string
	CorrelationID string
	Logger        *slog.Logger
}

// Result is the only way an agent affects the outside world besides its own
// transactional state changes. Returned envelopes are published by the
// consumer; agents never touch the broker. Retriable separates
// infrastructure failures, which the bus redelivers, from domain failures,
// which are recorded and acked.
type Result struct {
	Success   bool
	Message   string
	Data      map[string]any
	Events    []events.Envelope
	Errors    []string
	Retriable bool
}

func Succeed(message string) Result {
	return Result{Success: true, Message: message}
}

// Fail marks a non-retriable failure: bad payload, domain conflict.
// Redelivering the same envelope would fail the same way.
func Fail(message string, errs ...string) Result {
	return Result{Success: false, Message: message, Errors: errs}
}

// FailErr marks a failure caused by an error value, carrying the error's
// retriability: store and downstream outages redeliver, domain conflicts
// and validation errors do not.
func FailErr(message string, err error) Result {
	return Result{
		Success:   false,
		Message:   message,
		Errors:    []string{err.Error()},
		Retriable: faults.Retriable(err),
	}
}

func (r Result) WithEvents(envs ...events.Envelope) Result {
	r.Events = append(r.Events, envs...)
	return r
}

func (r Result) WithData(key string, value any) Result {
	if r.Data == nil {
		r.Data = make(map[string]any)
	}
	r.Data[key] = value
	return r
}

// Agent is a reaction handler. Handle must be idempotent on redelivery of
// the same inbound envelope and complete within the runtime's per-agent
// deadline.
type Agent interface {
	Name() string
	Description() string
	SubscribesTo() []string
	Handle(ctx context.Context, env events.Envelope, ec ExecutionContext) Result
}
