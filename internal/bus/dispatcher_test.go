package bus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"wareflow/internal/shared/events"
	"wareflow/internal/shared/outbox"
)

var (
	testTenant    = "0b9f2a44-1c6e-4f4b-9a17-3d2f8e5c6a01"
	testWarehouse = "7c1d5e90-2b3a-4c8d-8e6f-1a2b3c4d5e02"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fakePublisher struct {
	mu        sync.Mutex
	published []Outbound
	fail      func(msg Outbound) error
}

func (p *fakePublisher) Publish(_ context.Context, msg Outbound) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		if err := p.fail(msg); err != nil {
			return err
		}
	}
	p.published = append(p.published, msg)
	return nil
}

func (p *fakePublisher) all() []Outbound {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Outbound(nil), p.published...)
}

func mintEnvelope(t *testing.T, eventType string) events.Envelope {
	t.Helper()
	env, err := events.New(eventType, map[string]any{"quantity": 1}, events.Context{
		Actor:       events.Actor{Type: events.ActorSystem, ID: "test"},
		TenantID:    testTenant,
		WarehouseID: testWarehouse,
	}, time.Now())
	if err != nil {
		t.Fatalf("mint envelope failed: %v", err)
	}
	return env
}

func enqueue(t *testing.T, store *outbox.MemoryStore, env events.Envelope, now time.Time) outbox.Entry {
	t.Helper()
	entry, err := outbox.NewEntry(env, "", now)
	if err != nil {
		t.Fatalf("new entry failed: %v", err)
	}
	if err := store.Enqueue(context.Background(), entry); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	return entry
}

func TestDispatcherPublishesAndMarks(t *testing.T) {
	store := outbox.NewMemoryStore()
	publisher := &fakePublisher{}
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	env := mintEnvelope(t, "Inventory.GoodsReceived")
	entry := enqueue(t, store, env, now)

	d := &Dispatcher{Outbox: store, Publisher: publisher, Clock: fixedClock{now: now}}
	published, failed, err := d.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once failed: %v", err)
	}
	if published != 1 || failed != 0 {
		t.Fatalf("expected 1 published, got %d/%d", published, failed)
	}

	msgs := publisher.all()
	if len(msgs) != 1 {
		t.Fatalf("expected one broker publish, got %d", len(msgs))
	}
	msg := msgs[0]
	if msg.RoutingKey != "inventory.goodsreceived" {
		t.Fatalf("expected canonical routing key, got %s", msg.RoutingKey)
	}
	if msg.MessageID != env.EventID {
		t.Fatalf("expected message id %s, got %s", env.EventID, msg.MessageID)
	}
	if msg.Headers[HeaderTenantID] != testTenant || msg.Headers[HeaderEventType] != env.EventType {
		t.Fatalf("expected tenancy headers, got %v", msg.Headers)
	}
	if msg.Headers[HeaderCorrelationID] != env.CorrelationID {
		t.Fatalf("expected correlation header, got %v", msg.Headers)
	}

	stored, _ := store.Get(entry.ID)
	if stored.Status != outbox.StatusPublished {
		t.Fatalf("expected entry PUBLISHED, got %s", stored.Status)
	}
	pending, _ := store.PendingCount(context.Background())
	if pending != 0 {
		t.Fatalf("expected empty queue, got %d", pending)
	}
}

func TestDispatcherFailureBacksOffEntry(t *testing.T) {
	store := outbox.NewMemoryStore()
	publisher := &fakePublisher{fail: func(Outbound) error { return errors.New("broker down") }}
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	entry := enqueue(t, store, mintEnvelope(t, "Inventory.GoodsReceived"), now)

	d := &Dispatcher{Outbox: store, Publisher: publisher, Clock: fixedClock{now: now}}
	published, failed, err := d.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once failed: %v", err)
	}
	if published != 0 || failed != 1 {
		t.Fatalf("expected 1 failed, got %d/%d", published, failed)
	}

	stored, _ := store.Get(entry.ID)
	if stored.Status != outbox.StatusPending || stored.RetryCount != 1 {
		t.Fatalf("expected rescheduled entry, got %+v", stored)
	}
	if stored.LastError != "broker down" {
		t.Fatalf("expected publish error recorded, got %q", stored.LastError)
	}

	// Not due again until the backoff elapses.
	republished, _, err := d.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once failed: %v", err)
	}
	if republished != 0 {
		t.Fatalf("backed-off entry must not republish immediately, got %d", republished)
	}
}

func TestDispatcherPerEntryFailureDoesNotAbortBatch(t *testing.T) {
	store := outbox.NewMemoryStore()
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	poison := enqueue(t, store, mintEnvelope(t, "Inventory.GoodsReceived"), now)
	enqueue(t, store, mintEnvelope(t, "Order.Placed"), now.Add(time.Second))

	publisher := &fakePublisher{fail: func(msg Outbound) error {
		if msg.MessageID == poison.EventID {
			return errors.New("broker rejected")
		}
		return nil
	}}

	d := &Dispatcher{Outbox: store, Publisher: publisher, Clock: fixedClock{now: now.Add(2 * time.Second)}}
	published, failed, err := d.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once failed: %v", err)
	}
	if published != 1 || failed != 1 {
		t.Fatalf("expected 1 published and 1 failed, got %d/%d", published, failed)
	}
}
