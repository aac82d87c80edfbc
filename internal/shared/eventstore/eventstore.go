package eventstore

import (
	"context"

	"wareflow/internal/shared/events"
	"wareflow/internal/shared/faults"
)

var ErrEventNotFound = faults.New(faults.KindNotFound, faults.CodeNotFound, "event not found")

// Store is the append-only log of envelopes that committed with their
// aggregates. Rows are unique on event_id and never mutated.
type Store interface {
	// Append persists the envelope. Returns false when an envelope with
	// the same event id already exists (the append is a no-op then).
	Append(ctx context.Context, env events.Envelope) (bool, error)
	Get(ctx context.Context, eventID string) (events.Envelope, error)
	ListByCorrelation(ctx context.Context, correlationID string) ([]events.Envelope, error)
}

// Dedup is the consumer's idempotency guard. Processed marks are written
// only after an inbound envelope has been fully handled, so a redelivery
// after a mid-flight crash is processed again while a redelivery after a
// successful run is acked without side effects.
type Dedup interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, eventID string) error
}
