package bus

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"context"

	"wareflow/internal/agents"
	"wareflow/internal/shared/events"
	"wareflow/internal/shared/eventstore"
)

const (
	DefaultConsumerMaxRetries = 3
	// DefaultRetryQueue is the TTL'd delay queue: messages published here
	// with a per-message expiration dead-letter back into the events
	// exchange, so a retry delay survives process restarts.
	DefaultRetryQueue = "events.retry"
)

// Consumer handles the fan-in queue: parse, dedup, run the agent runtime,
// persist and re-publish derived envelopes, then ack. Infrastructure errors
// walk the retry path; agent-level domain failures are recorded and acked.
type Consumer struct {
	Runtime    *agents.Runtime
	Events     eventstore.Store
	Dedup      eventstore.Dedup
	Publisher  Publisher
	MaxRetries int
	RetryQueue string
	Clock      Clock
	Logger     *slog.Logger
}

// Run consumes deliveries until the channel closes or the context is
// cancelled. In-flight handling finishes before Run returns.
func (c *Consumer) Run(ctx context.Context, deliveries <-chan Delivery) error {
	c.logger().Info("event consumer started",
		"event", "consumer_started",
		"module", "internal/bus",
		"layer", "worker",
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				c.logger().Info("event consumer stopped",
					"event", "consumer_stopped",
					"module", "internal/bus",
					"layer", "worker",
				)
				return nil
			}
			c.Handle(ctx, d)
		}
	}
}

// Handle drives one delivery through the message state machine:
// RECEIVED -> PARSING -> DISPATCHING -> publish derived -> ACK, with the
// failure edge retrying up to MaxRetries through the durable delay queue and
// dead-lettering after that.
func (c *Consumer) Handle(ctx context.Context, d Delivery) {
	env, err := events.Decode(d.Body)
	if err != nil {
		c.retryOrDead(ctx, d, fmt.Errorf("parse envelope: %w", err))
		return
	}

	seen, err := c.Dedup.Seen(ctx, env.EventID)
	if err != nil {
		c.retryOrDead(ctx, d, fmt.Errorf("dedup lookup: %w", err))
		return
	}
	if seen {
		// Duplicate broker delivery of an already-handled envelope
		// (at-least-once publish); absorb it.
		c.logger().Info("duplicate envelope absorbed",
			"event", "duplicate_envelope_absorbed",
			"module", "internal/bus",
			"layer", "worker",
			"event_id", env.EventID,
			"event_type", env.EventType,
		)
		c.ack(d, env.EventID)
		return
	}

	dispatch := c.Runtime.Run(ctx, env)

	if dispatch.Retriable {
		// A store or downstream outage hit at least one agent. Nothing is
		// persisted for this attempt; redelivery reruns every subscriber,
		// which agents must tolerate.
		c.retryOrDead(ctx, d, fmt.Errorf("agent dispatch: %s", retriableFailures(dispatch)))
		return
	}

	for _, derived := range dispatch.Derived {
		if err := c.publishDerived(ctx, derived); err != nil {
			c.retryOrDead(ctx, d, fmt.Errorf("publish derived %s: %w", derived.EventType, err))
			return
		}
	}

	if err := c.Dedup.MarkProcessed(ctx, env.EventID); err != nil {
		c.retryOrDead(ctx, d, fmt.Errorf("mark processed: %w", err))
		return
	}
	c.ack(d, env.EventID)

	if dispatch.Failed > 0 {
		// Only non-retriable failures reach here: the envelope was handled,
		// the outcomes record what went wrong.
		c.logger().Warn("dispatch finished with agent failures",
			"event", "dispatch_agent_failures",
			"module", "internal/bus",
			"layer", "worker",
			"event_id", env.EventID,
			"event_type", env.EventType,
			"failed", dispatch.Failed,
		)
	}
}

func (c *Consumer) publishDerived(ctx context.Context, env events.Envelope) error {
	if _, err := c.Events.Append(ctx, env); err != nil {
		return err
	}
	body, err := events.Encode(env)
	if err != nil {
		return err
	}
	headers := map[string]any{
		HeaderTenantID:      env.TenantID,
		HeaderEventType:     env.EventType,
		HeaderCorrelationID: env.CorrelationID,
		HeaderCausationID:   env.CausationID,
	}
	return c.Publisher.Publish(ctx, Outbound{
		RoutingKey: events.RoutingKey(env.EventType),
		MessageID:  env.EventID,
		Headers:    headers,
		Body:       body,
	})
}

// retryOrDead re-publishes the message to the TTL'd retry queue with an
// incremented counter, or nacks without requeue so the broker dead-letters
// it once the retry budget is spent.
func (c *Consumer) retryOrDead(ctx context.Context, d Delivery, cause error) {
	maxRetries := c.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultConsumerMaxRetries
	}
	retry := d.RetryCount()

	if retry >= maxRetries {
		c.logger().Error("message dead-lettered",
			"event", "message_dead_lettered",
			"module", "internal/bus",
			"layer", "worker",
			"routing_key", d.RoutingKey,
			"retries", retry,
			"error", cause.Error(),
		)
		if err := d.Nack(false); err != nil {
			c.logger().Error("nack failed",
				"event", "nack_failed",
				"module", "internal/bus",
				"layer", "worker",
				"error", err.Error(),
			)
		}
		return
	}

	headers := make(map[string]any, len(d.Headers)+2)
	for k, v := range d.Headers {
		headers[k] = v
	}
	headers[HeaderRetryCount] = retry + 1
	// The default-exchange hop into the retry queue rewrites the routing key
	// to the queue name, so the original key rides along in a header. Set
	// once on the first retry and left alone after.
	if _, ok := headers[HeaderOriginalRoutingKey]; !ok {
		headers[HeaderOriginalRoutingKey] = d.RoutingKey
	}

	retryQueue := c.RetryQueue
	if retryQueue == "" {
		retryQueue = DefaultRetryQueue
	}
	delay := retryDelay(retry)
	err := c.Publisher.Publish(ctx, Outbound{
		Queue:      retryQueue,
		RoutingKey: d.RoutingKey,
		Headers:    headers,
		Body:       d.Body,
		Expiration: delay,
	})
	if err != nil {
		// Could not park the message durably; hand it back to the broker.
		c.logger().Error("retry publish failed, requeueing",
			"event", "retry_publish_failed",
			"module", "internal/bus",
			"layer", "worker",
			"error", err.Error(),
		)
		_ = d.Nack(true)
		return
	}

	c.logger().Warn("message scheduled for retry",
		"event", "message_retry_scheduled",
		"module", "internal/bus",
		"layer", "worker",
		"routing_key", d.RoutingKey,
		"retry", retry+1,
		"delay", delay.String(),
		"error", cause.Error(),
	)
	if err := d.Ack(); err != nil {
		c.logger().Error("ack after retry publish failed",
			"event", "ack_failed",
			"module", "internal/bus",
			"layer", "worker",
			"error", err.Error(),
		)
	}
}

func (c *Consumer) ack(d Delivery, eventID string) {
	if err := d.Ack(); err != nil {
		c.logger().Error("ack failed",
			"event", "ack_failed",
			"module", "internal/bus",
			"layer", "worker",
			"event_id", eventID,
			"error", err.Error(),
		)
	}
}

// retriableFailures names the agents whose failures triggered the retry.
func retriableFailures(dispatch agents.Dispatch) string {
	var parts []string
	for _, outcome := range dispatch.Outcomes {
		if outcome.Success || !outcome.Retriable {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", outcome.Agent, outcome.Message))
	}
	return strings.Join(parts, "; ")
}

func retryDelay(retry int) time.Duration {
	if retry < 0 {
		retry = 0
	}
	if retry > 16 {
		retry = 16
	}
	return time.Duration(1<<uint(retry)) * time.Second
}

func (c *Consumer) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
