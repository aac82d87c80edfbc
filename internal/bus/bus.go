// Package bus hosts the three long-running backbone roles: the outbox
// dispatcher, the broker consumer, and the cron scheduler. Each role is
// isolated so a crash in one never tears down the others.
package bus

import (
	"context"
	"time"
)

// Broker header names carried on every published message.
const (
	HeaderTenantID      = "x-tenant-id"
	HeaderEventType     = "x-event-type"
	HeaderCorrelationID = "x-correlation-id"
	HeaderCausationID   = "x-causation-id"
	HeaderRetryCount    = "x-retry-count"
	// HeaderOriginalRoutingKey preserves the topic routing key across the
	// retry queue, whose default-exchange publish rewrites the key to the
	// queue name.
	HeaderOriginalRoutingKey = "x-original-routing-key"
)

// Outbound is one message bound for the broker. Queue routes through the
// default exchange (used for the TTL'd retry queue); otherwise the message
// goes to the events topic exchange under RoutingKey.
type Outbound struct {
	RoutingKey string
	Queue      string
	MessageID  string
	Headers    map[string]any
	Body       []byte
	Expiration time.Duration
}

// Publisher is the broker publish boundary. Implementations use confirm
// semantics: Publish returns only after the broker acked the message.
type Publisher interface {
	Publish(ctx context.Context, msg Outbound) error
}

// Delivery is one inbound broker message with manual acknowledgement.
type Delivery struct {
	Body        []byte
	RoutingKey  string
	Headers     map[string]any
	Redelivered bool

	ack  func() error
	nack func(requeue bool) error
}

func NewDelivery(body []byte, routingKey string, headers map[string]any, ack func() error, nack func(requeue bool) error) Delivery {
	return Delivery{Body: body, RoutingKey: routingKey, Headers: headers, ack: ack, nack: nack}
}

func (d Delivery) Ack() error {
	if d.ack == nil {
		return nil
	}
	return d.ack()
}

func (d Delivery) Nack(requeue bool) error {
	if d.nack == nil {
		return nil
	}
	return d.nack(requeue)
}

// RetryCount reads the redelivery counter header, tolerating the integer
// widths AMQP clients hand back.
func (d Delivery) RetryCount() int {
	raw, ok := d.Headers[HeaderRetryCount]
	if !ok {
		return 0
	}
	switch v := raw.(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
