package events

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"wareflow/internal/shared/faults"
)

// SchemaVersion is stamped on every envelope minted by this process.
const SchemaVersion = "1.0"

// ActorType identifies who caused an event.
type ActorType string

const (
	ActorUser        ActorType = "USER"
	ActorSystem      ActorType = "SYSTEM"
	ActorAgent       ActorType = "AGENT"
	ActorIntegration ActorType = "INTEGRATION"
)

type Actor struct {
	Type  ActorType `json:"type"`
	ID    string    `json:"id"`
	Roles []string  `json:"roles,omitempty"`
}

// Envelope is the canonical wire shape of a domain event. Envelopes are
// value-typed and immutable once minted; derivations go through Derive so
// causation and correlation links stay intact.
type Envelope struct {
	EventID       string         `json:"event_id"`
	EventType     string         `json:"event_type"`
	OccurredAt    time.Time      `json:"occurred_at"`
	SchemaVersion string         `json:"schema_version"`
	CorrelationID string         `json:"correlation_id"`
	CausationID   string         `json:"causation_id,omitempty"`
	Actor         Actor          `json:"actor"`
	TenantID      string         `json:"tenant_id"`
	WarehouseID   string         `json:"warehouse_id,omitempty"`
	Payload       map[string]any `json:"payload"`
}

// Context carries the ambient identifiers a new envelope is minted under.
type Context struct {
	CorrelationID string
	CausationID   string
	Actor         Actor
	TenantID      string
	WarehouseID   string
}

var eventTypePattern = regexp.MustCompile(`^[A-Z][A-Za-z]+\.[A-Z][A-Za-z]+$`)

var (
	ErrInvalidEventType = faults.New(faults.KindValidation, faults.CodeValidationFailed, "event type must match AggregateName.VerbPhrase")
	ErrInvalidID        = faults.New(faults.KindValidation, faults.CodeValidationFailed, "envelope identifier is not a UUID")
	ErrMissingTenant    = faults.New(faults.KindValidation, faults.CodeMissingTenant, "envelope requires a tenant id")
)

// New mints an envelope with a fresh event id and the current timestamp.
func New(eventType string, payload map[string]any, ectx Context, now time.Time) (Envelope, error) {
	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		OccurredAt:    now.UTC(),
		SchemaVersion: SchemaVersion,
		CorrelationID: ectx.CorrelationID,
		CausationID:   ectx.CausationID,
		Actor:         ectx.Actor,
		TenantID:      ectx.TenantID,
		WarehouseID:   ectx.WarehouseID,
		Payload:       payload,
	}
	if env.CorrelationID == "" {
		env.CorrelationID = uuid.NewString()
	}
	if err := env.Validate(); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

// Derive mints a new envelope caused by e. Correlation, tenant, warehouse,
// and actor carry over; causation points at the source event.
func (e Envelope) Derive(eventType string, payload map[string]any, actor Actor, now time.Time) (Envelope, error) {
	return New(eventType, payload, Context{
		CorrelationID: e.CorrelationID,
		CausationID:   e.EventID,
		Actor:         actor,
		TenantID:      e.TenantID,
		WarehouseID:   e.WarehouseID,
	}, now)
}

func (e Envelope) Validate() error {
	if !eventTypePattern.MatchString(e.EventType) {
		return ErrInvalidEventType.WithDetail("event_type", e.EventType)
	}
	if !isUUID(e.EventID) || !isUUID(e.CorrelationID) {
		return ErrInvalidID
	}
	if e.TenantID == "" || !isUUID(e.TenantID) {
		return ErrMissingTenant
	}
	if e.CausationID != "" && !isUUID(e.CausationID) {
		return ErrInvalidID.WithDetail("field", "causation_id")
	}
	if e.WarehouseID != "" && !isUUID(e.WarehouseID) {
		return ErrInvalidID.WithDetail("field", "warehouse_id")
	}
	return nil
}

// Aggregate returns the part of the event type before the dot.
func (e Envelope) Aggregate() string {
	if i := strings.IndexByte(e.EventType, '.'); i > 0 {
		return e.EventType[:i]
	}
	return e.EventType
}

// RoutingKey lowers an event type into its broker routing key,
// e.g. Inventory.MovementRecorded -> inventory.movementrecorded.
func RoutingKey(eventType string) string {
	return strings.ToLower(eventType)
}

func isUUID(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}
