package bus

import (
	"context"
	"log/slog"
	"time"

	"wareflow/internal/shared/events"
	"wareflow/internal/shared/outbox"
)

const (
	DefaultPollInterval = time.Second
	DefaultBatchSize    = 100
)

// Dispatcher drains the outbox to the broker. Publish-then-mark gives
// at-least-once semantics: a crash between broker ack and MarkPublished
// replays the same envelope with the same message id, which consumers
// deduplicate on event_id.
type Dispatcher struct {
	Outbox       outbox.Store
	Publisher    Publisher
	Clock        Clock
	PollInterval time.Duration
	BatchSize    int
	Logger       *slog.Logger
}

// Run polls until the context is cancelled. The batch in flight when
// cancellation arrives is drained before Run returns.
func (d *Dispatcher) Run(ctx context.Context) error {
	interval := d.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.logger().Info("outbox dispatcher started",
		"event", "dispatcher_started",
		"module", "internal/bus",
		"layer", "worker",
		"poll_interval", interval.String(),
	)

	for {
		if _, _, err := d.RunOnce(ctx); err != nil {
			d.logger().Error("outbox dispatch cycle failed",
				"event", "dispatcher_cycle_failed",
				"module", "internal/bus",
				"layer", "worker",
				"error", err.Error(),
			)
		}
		select {
		case <-ctx.Done():
			d.logger().Info("outbox dispatcher stopped",
				"event", "dispatcher_stopped",
				"module", "internal/bus",
				"layer", "worker",
			)
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce claims one batch of due entries and publishes each. Per-entry
// failures are recorded on the entry (backoff or terminal FAILED) and never
// abort the batch.
func (d *Dispatcher) RunOnce(ctx context.Context) (published, failed int, err error) {
	now := d.now()
	batchSize := d.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	entries, err := d.Outbox.ClaimPending(ctx, batchSize, now)
	if err != nil {
		return 0, 0, err
	}

	for _, entry := range entries {
		if publishErr := d.publish(ctx, entry); publishErr != nil {
			failed++
			if markErr := d.Outbox.MarkFailed(ctx, entry.ID, publishErr.Error(), d.now()); markErr != nil {
				d.logger().Error("outbox mark failed errored",
					"event", "outbox_mark_failed_errored",
					"module", "internal/bus",
					"layer", "worker",
					"outbox_id", entry.ID,
					"error", markErr.Error(),
				)
			}
			continue
		}
		if markErr := d.Outbox.MarkPublished(ctx, entry.ID, d.now()); markErr != nil {
			// The envelope reached the broker; the row will be claimed and
			// published again, which consumer dedup absorbs.
			d.logger().Error("outbox mark published errored",
				"event", "outbox_mark_published_errored",
				"module", "internal/bus",
				"layer", "worker",
				"outbox_id", entry.ID,
				"error", markErr.Error(),
			)
			continue
		}
		published++
	}

	if pending, countErr := d.Outbox.PendingCount(ctx); countErr == nil {
		d.logger().Debug("outbox queue size",
			"event", "outbox_queue_size",
			"module", "internal/bus",
			"layer", "worker",
			"outbox_queue_size", pending,
		)
	}
	return published, failed, nil
}

func (d *Dispatcher) publish(ctx context.Context, entry outbox.Entry) error {
	headers := map[string]any{
		HeaderTenantID:  entry.TenantID,
		HeaderEventType: entry.EventType,
	}
	if env, err := events.Decode(entry.Envelope); err == nil {
		headers[HeaderCorrelationID] = env.CorrelationID
		if env.CausationID != "" {
			headers[HeaderCausationID] = env.CausationID
		}
	}
	return d.Publisher.Publish(ctx, Outbound{
		RoutingKey: entry.RoutingKey,
		MessageID:  entry.EventID,
		Headers:    headers,
		Body:       entry.Envelope,
	})
}

func (d *Dispatcher) now() time.Time {
	if d.Clock != nil {
		return d.Clock.Now()
	}
	return time.Now()
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}
