package agents

import (
	"context"
	"fmt"

	"wareflow/contexts/insights-analytics/planning-service/domain/planning"
	"wareflow/contexts/insights-analytics/planning-service/ports"
	"wareflow/internal/agents"
	"wareflow/internal/shared/events"
)

// SafetyStockAgent resizes safety stock and reorder points from each
// product's demand and lead-time statistics on the weekly recalc tick.
// Products without usable statistics keep their current policy.
type SafetyStockAgent struct {
	Catalog ports.Catalog
}

func (a SafetyStockAgent) Name() string { return "safety-stock-recalc" }

func (a SafetyStockAgent) Description() string {
	return "recomputes safety stock and reorder points from demand statistics"
}

func (a SafetyStockAgent) SubscribesTo() []string {
	return []string{"Scheduled.SafetyStockRecalc"}
}

func (a SafetyStockAgent) Handle(ctx context.Context, env events.Envelope, ec agents.ExecutionContext) agents.Result {
	products, err := a.Catalog.ListProducts(ctx, env.TenantID)
	if err != nil {
		return agents.FailErr("list products", err)
	}

	updated, skipped := 0, 0
	for _, product := range products {
		profile := planning.DemandProfile{
			DemandMean:     product.DemandMean,
			DemandStdDev:   product.DemandStdDev,
			LeadTimeMean:   product.LeadTimeMean,
			LeadTimeStdDev: product.LeadTimeStdDev,
			ServiceLevel:   product.ServiceLevel,
		}
		if profile.DemandMean <= 0 || profile.LeadTimeMean <= 0 {
			skipped++
			continue
		}
		safetyStock := planning.SafetyStock(profile)
		reorderPoint := planning.ReorderPoint(profile, safetyStock)
		if product.SafetyStock == safetyStock && product.ReorderPoint == reorderPoint {
			continue
		}
		if err := a.Catalog.UpdateReplenishment(ctx, env.TenantID, product.ProductID, safetyStock, reorderPoint); err != nil {
			return agents.FailErr("update replenishment", err)
		}
		updated++
	}

	return agents.Succeed(fmt.Sprintf("recalculated %d products", updated)).
		WithData("updated", updated).
		WithData("skipped_no_statistics", skipped)
}
