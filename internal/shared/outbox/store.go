package outbox

import (
	"context"
	"time"
)

// Store is the durable queue boundary between command transactions and the
// dispatcher. Enqueue happens inside business transactions through the
// adapter-specific transactional variants; the polling side is adapter
// agnostic.
type Store interface {
	Enqueue(ctx context.Context, entry Entry) error
	ClaimPending(ctx context.Context, limit int, now time.Time) ([]Entry, error)
	MarkPublished(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id string, cause string, now time.Time) error
	Requeue(ctx context.Context, id string, now time.Time) error
	GC(ctx context.Context, publishedBefore time.Time) (int, error)
	PendingCount(ctx context.Context) (int, error)
}
