package agents

import (
	"context"
	"fmt"

	"wareflow/contexts/inventory-core/stock-service/ports"
	"wareflow/internal/agents"
	"wareflow/internal/shared/events"
)

const (
	EventLowStockAlert = "Inventory.LowStockAlert"

	AlertWarning  = "WARNING"
	AlertCritical = "CRITICAL"
)

// ThresholdAgent watches recorded movements and raises low-stock alerts when
// warehouse-wide availability for the product crosses the reorder point
// (WARNING) or the safety stock (CRITICAL). It mutates nothing, so it is
// idempotent on redelivery by construction.
type ThresholdAgent struct {
	Stock    ports.Repository
	Policies ports.PolicyReader
	Clock    ports.Clock
}

func (a ThresholdAgent) Name() string { return "stock-threshold-monitor" }

func (a ThresholdAgent) Description() string {
	return "raises low-stock alerts when availability crosses reorder thresholds"
}

func (a ThresholdAgent) SubscribesTo() []string {
	return []string{"Inventory.MovementRecorded"}
}

func (a ThresholdAgent) Handle(ctx context.Context, env events.Envelope, ec agents.ExecutionContext) agents.Result {
	productID := events.PayloadString(env.Payload, "product_id")
	if productID == "" {
		return agents.Fail("movement payload has no product_id")
	}

	policy, found, err := a.Policies.ReorderPolicy(ctx, env.TenantID, productID)
	if err != nil {
		return agents.FailErr("load reorder policy", err)
	}
	if !found || policy.ReorderPoint <= 0 {
		return agents.Succeed("product has no reorder policy")
	}

	available, err := a.Stock.AvailableForProduct(ctx, env.TenantID, env.WarehouseID, productID)
	if err != nil {
		return agents.FailErr("read availability", err)
	}
	if available > policy.ReorderPoint {
		return agents.Succeed("availability above reorder point").
			WithData("available", available)
	}

	level := AlertWarning
	if available <= policy.SafetyStock {
		level = AlertCritical
	}

	alert, err := env.Derive(EventLowStockAlert, map[string]any{
		"product_id":    productID,
		"warehouse_id":  env.WarehouseID,
		"available":     available,
		"reorder_point": policy.ReorderPoint,
		"safety_stock":  policy.SafetyStock,
		"alert_level":   level,
	}, events.Actor{Type: events.ActorAgent, ID: a.Name()}, a.Clock.Now())
	if err != nil {
		return agents.FailErr("build alert envelope", err)
	}

	return agents.Succeed(fmt.Sprintf("low stock %s for %s", level, productID)).
		WithData("alert_level", level).
		WithEvents(alert)
}
