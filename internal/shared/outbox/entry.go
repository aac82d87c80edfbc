package outbox

import (
	"time"

	"github.com/google/uuid"

	"wareflow/internal/shared/events"
	"wareflow/internal/shared/faults"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPublished Status = "PUBLISHED"
	StatusFailed    Status = "FAILED"
)

// DefaultMaxRetries bounds broker publish attempts per entry.
const DefaultMaxRetries = 5

// ClaimLease is how long a claimed row stays invisible to other dispatcher
// replicas. A replica that crashes between claim and publish surfaces its
// rows again once the lease expires.
const ClaimLease = time.Minute

// Entry owns exactly one serialized envelope awaiting broker publication.
// Rows are written inside the same transaction as the business mutation
// that emitted the envelope.
type Entry struct {
	ID          string
	TenantID    string
	EventID     string
	EventType   string
	RoutingKey  string
	Envelope    []byte
	Status      Status
	RetryCount  int
	MaxRetries  int
	LastError   string
	ScheduledAt time.Time
	CreatedAt   time.Time
	PublishedAt *time.Time
}

var ErrEntryNotFound = faults.New(faults.KindNotFound, faults.CodeNotFound, "outbox entry not found")

// NewEntry wraps an envelope into a PENDING entry due immediately. An empty
// routing key falls back to the envelope's canonical routing key.
func NewEntry(env events.Envelope, routingKey string, now time.Time) (Entry, error) {
	raw, err := events.Encode(env)
	if err != nil {
		return Entry{}, err
	}
	if routingKey == "" {
		routingKey = events.RoutingKey(env.EventType)
	}
	return Entry{
		ID:          uuid.NewString(),
		TenantID:    env.TenantID,
		EventID:     env.EventID,
		EventType:   env.EventType,
		RoutingKey:  routingKey,
		Envelope:    raw,
		Status:      StatusPending,
		MaxRetries:  DefaultMaxRetries,
		ScheduledAt: now.UTC(),
		CreatedAt:   now.UTC(),
	}, nil
}

// Backoff returns the retry delay after the given attempt count: 2^n seconds.
func Backoff(retryCount int) time.Duration {
	if retryCount < 0 {
		retryCount = 0
	}
	if retryCount > 16 {
		retryCount = 16
	}
	return time.Duration(1<<uint(retryCount)) * time.Second
}

// ApplyPublished transitions an entry to its terminal success state.
func ApplyPublished(e Entry, at time.Time) Entry {
	at = at.UTC()
	e.Status = StatusPublished
	e.PublishedAt = &at
	return e
}

// ApplyFailure records a publish failure: the entry either reschedules with
// exponential backoff or, once retries are exhausted, parks as FAILED for
// operator inspection.
func ApplyFailure(e Entry, cause string, now time.Time) Entry {
	e.RetryCount++
	e.LastError = cause
	maxRetries := e.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if e.RetryCount >= maxRetries {
		e.Status = StatusFailed
		return e
	}
	e.Status = StatusPending
	e.ScheduledAt = now.UTC().Add(Backoff(e.RetryCount))
	return e
}

// ApplyRequeue resets an entry for another round of attempts. Used by
// operators on FAILED rows.
func ApplyRequeue(e Entry, now time.Time) Entry {
	e.Status = StatusPending
	e.RetryCount = 0
	e.LastError = ""
	e.ScheduledAt = now.UTC()
	return e
}
