// Package messaging is the RabbitMQ adapter behind the bus package's
// Publisher and delivery-channel boundaries.
package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	amqp "github.com/rabbitmq/amqp091-go"

	"wareflow/internal/bus"
)

// Broker topology per the event backbone contract.
const (
	EventsExchange       = "events"
	DeadLetterExchange   = "events.dlx"
	DeadLetterQueue      = "events.dlq"
	DeadLetterRoutingKey = "dead-letter"
	ConsumerQueue        = "agent-processor"
	RetryQueue           = "events.retry"
)

// Rabbit owns one connection with one confirm-mode channel per role
// instance. Publishes block until the broker acks.
type Rabbit struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	mu     sync.Mutex
	logger *slog.Logger
}

// Connect dials the broker, retrying with exponential backoff until the
// context is cancelled, then declares the full topology.
func Connect(ctx context.Context, url string, logger *slog.Logger) (*Rabbit, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var conn *amqp.Connection
	backoffCfg := backoff.NewExponentialBackOff()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var err error
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		sleep := backoffCfg.NextBackOff()
		logger.Warn("broker dial failed",
			"event", "broker_dial_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"retry_in", sleep.String(),
			"error", err.Error(),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleep):
		}
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("enable confirms: %w", err)
	}

	r := &Rabbit{conn: conn, ch: ch, logger: logger}
	if err := r.declareTopology(); err != nil {
		_ = r.Close()
		return nil, err
	}
	logger.Info("broker connected",
		"event", "broker_connected",
		"module", "internal/platform/messaging",
		"layer", "platform",
	)
	return r, nil
}

// declareTopology sets up the durable topic exchange, the fan-in queue
// dead-lettered into events.dlx, the dead-letter queue, and the TTL'd retry
// queue that feeds expired messages back into the topic.
func (r *Rabbit) declareTopology() error {
	if err := r.ch.ExchangeDeclare(EventsExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s exchange: %w", EventsExchange, err)
	}
	if err := r.ch.ExchangeDeclare(DeadLetterExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s exchange: %w", DeadLetterExchange, err)
	}

	if _, err := r.ch.QueueDeclare(DeadLetterQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", DeadLetterQueue, err)
	}
	if err := r.ch.QueueBind(DeadLetterQueue, DeadLetterRoutingKey, DeadLetterExchange, false, nil); err != nil {
		return fmt.Errorf("bind %s: %w", DeadLetterQueue, err)
	}

	if _, err := r.ch.QueueDeclare(ConsumerQueue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    DeadLetterExchange,
		"x-dead-letter-routing-key": DeadLetterRoutingKey,
	}); err != nil {
		return fmt.Errorf("declare %s: %w", ConsumerQueue, err)
	}
	if err := r.ch.QueueBind(ConsumerQueue, "#", EventsExchange, false, nil); err != nil {
		return fmt.Errorf("bind %s: %w", ConsumerQueue, err)
	}

	if _, err := r.ch.QueueDeclare(RetryQueue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange": EventsExchange,
	}); err != nil {
		return fmt.Errorf("declare %s: %w", RetryQueue, err)
	}
	return nil
}

// Publish sends one message with persistent delivery and waits for the
// broker confirm. Outbound.Queue routes through the default exchange, which
// is how messages land in the retry queue.
func (r *Rabbit) Publish(ctx context.Context, msg bus.Outbound) error {
	exchange := EventsExchange
	routingKey := msg.RoutingKey
	if msg.Queue != "" {
		exchange = ""
		routingKey = msg.Queue
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.MessageID,
		Headers:      amqp.Table(msg.Headers),
		Body:         msg.Body,
	}
	if msg.Expiration > 0 {
		publishing.Expiration = strconv.FormatInt(msg.Expiration.Milliseconds(), 10)
	}

	r.mu.Lock()
	confirmation, err := r.ch.PublishWithDeferredConfirmWithContext(ctx, exchange, routingKey, false, false, publishing)
	r.mu.Unlock()
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	acked, err := confirmation.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("await confirm for %s: %w", routingKey, err)
	}
	if !acked {
		return fmt.Errorf("broker nacked publish for %s", routingKey)
	}
	return nil
}

// Consume opens the fan-in queue with the given prefetch and adapts AMQP
// deliveries to the bus delivery shape. Closing the context cancels the
// subscription and closes the returned channel.
func (r *Rabbit) Consume(ctx context.Context, prefetch int) (<-chan bus.Delivery, error) {
	if err := r.ch.Qos(prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("set prefetch: %w", err)
	}
	msgs, err := r.ch.Consume(ConsumerQueue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", ConsumerQueue, err)
	}

	out := make(chan bus.Delivery)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				if err := r.ch.Cancel("", false); err != nil {
					r.logger.Warn("cancel consumer failed",
						"event", "consumer_cancel_failed",
						"module", "internal/platform/messaging",
						"layer", "platform",
						"error", err.Error(),
					)
				}
				return
			case d, ok := <-msgs:
				if !ok {
					return
				}
				delivery := bus.NewDelivery(
					d.Body,
					d.RoutingKey,
					map[string]any(d.Headers),
					func() error { return d.Ack(false) },
					func(requeue bool) error { return d.Nack(false, requeue) },
				)
				select {
				case out <- delivery:
				case <-ctx.Done():
					_ = d.Nack(false, true)
					return
				}
			}
		}
	}()
	return out, nil
}

func (r *Rabbit) Close() error {
	if err := r.ch.Close(); err != nil {
		_ = r.conn.Close()
		return err
	}
	return r.conn.Close()
}
