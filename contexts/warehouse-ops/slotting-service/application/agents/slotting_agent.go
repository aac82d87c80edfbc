package agents

import (
	"context"
	"fmt"

	"wareflow/contexts/warehouse-ops/slotting-service/application"
	"wareflow/contexts/warehouse-ops/slotting-service/ports"
	"wareflow/internal/agents"
	"wareflow/internal/shared/events"
)

const (
	EventSuggestionsGenerated = "Slotting.SuggestionsGenerated"

	// maxSuggestions bounds the payload size of one suggestion event.
	maxSuggestions = 5
)

// SlottingAgent reacts to goods receipts with a ranked putaway proposal.
// It reads and derives only, so redelivery just recomputes the same
// ranking.
type SlottingAgent struct {
	Slotting application.Service
	Clock    ports.Clock
}

func (a SlottingAgent) Name() string { return "putaway-slotting" }

func (a SlottingAgent) Description() string {
	return "ranks putaway locations for received goods"
}

func (a SlottingAgent) SubscribesTo() []string {
	return []string{"Inventory.GoodsReceived"}
}

func (a SlottingAgent) Handle(ctx context.Context, env events.Envelope, ec agents.ExecutionContext) agents.Result {
	productID := events.PayloadString(env.Payload, "product_id")
	if productID == "" {
		return agents.Fail("receipt payload has no product_id")
	}
	quantity := events.PayloadInt64(env.Payload, "quantity")

	ranked, err := a.Slotting.Suggest(ctx, application.SuggestRequest{
		TenantID:    env.TenantID,
		WarehouseID: env.WarehouseID,
		ProductID:   productID,
		Quantity:    quantity,
	})
	if err != nil {
		return agents.FailErr("rank putaway locations", err)
	}
	if len(ranked) == 0 {
		return agents.Succeed("no eligible locations")
	}
	if len(ranked) > maxSuggestions {
		ranked = ranked[:maxSuggestions]
	}

	suggestions := make([]map[string]any, 0, len(ranked))
	for _, suggestion := range ranked {
		suggestions = append(suggestions, map[string]any{
			"location_id": suggestion.Location.LocationID,
			"code":        suggestion.Location.Code,
			"score":       suggestion.Score,
			"breakdown":   suggestion.Breakdown,
		})
	}
	derived, err := env.Derive(EventSuggestionsGenerated, map[string]any{
		"product_id":  productID,
		"quantity":    quantity,
		"suggestions": suggestions,
	}, events.Actor{Type: events.ActorAgent, ID: a.Name()}, a.Clock.Now())
	if err != nil {
		return agents.FailErr("build suggestion envelope", err)
	}
	return agents.Succeed(fmt.Sprintf("ranked %d locations for %s", len(suggestions), productID)).
		WithData("top_location", ranked[0].Location.LocationID).
		WithEvents(derived)
}
