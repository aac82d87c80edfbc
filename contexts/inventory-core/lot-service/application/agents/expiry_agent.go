package agents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wareflow/contexts/inventory-core/lot-service/domain/entities"
	domainerrors "wareflow/contexts/inventory-core/lot-service/domain/errors"
	"wareflow/contexts/inventory-core/lot-service/ports"
	"wareflow/internal/agents"
	"wareflow/internal/shared/events"
)

const (
	EventLotExpired = "Inventory.LotExpired"

	ActionAutoQuarantine = "AUTO_QUARANTINE"
)

// ExpiryAgent runs on the daily expiry check. Lots past their expiry date
// move to EXPIRED and a LotExpired event goes out per lot. The status guard
// makes redelivery harmless: a lot already moved emits nothing.
type ExpiryAgent struct {
	Lots  ports.Repository
	Clock ports.Clock
}

func (a ExpiryAgent) Name() string { return "lot-expiry-monitor" }

func (a ExpiryAgent) Description() string {
	return "expires overdue lots and emits LotExpired events"
}

func (a ExpiryAgent) SubscribesTo() []string {
	return []string{"Scheduled.ExpiryCheck"}
}

func (a ExpiryAgent) Handle(ctx context.Context, env events.Envelope, ec agents.ExecutionContext) agents.Result {
	today := a.Clock.Now().UTC()
	expired, err := a.Lots.ListExpired(ctx, env.TenantID, today)
	if err != nil {
		return agents.FailErr("list expired lots", err)
	}
	if len(expired) == 0 {
		return agents.Succeed("no overdue lots")
	}

	result := agents.Succeed(fmt.Sprintf("expired %d lots", len(expired)))
	moved := 0
	for _, lot := range expired {
		if _, err := a.Lots.UpdateStatus(ctx, lot.TenantID, lot.LotID, lot.Status, entities.LotExpired, today); err != nil {
			if errors.Is(err, domainerrors.ErrStatusConflict) {
				continue
			}
			return agents.FailErr("expire lot", err)
		}
		moved++

		alert, err := env.Derive(EventLotExpired, map[string]any{
			"lot_id":       lot.LotID,
			"lot_number":   lot.LotNumber,
			"product_id":   lot.ProductID,
			"expires_at":   lot.ExpiresAt.Format(time.RFC3339),
			"days_expired": lot.DaysExpired(today),
			"action_taken": ActionAutoQuarantine,
		}, events.Actor{Type: events.ActorAgent, ID: a.Name()}, today)
		if err != nil {
			return agents.FailErr("build lot expired envelope", err)
		}
		result = result.WithEvents(alert)
	}
	return result.WithData("expired_count", moved)
}
