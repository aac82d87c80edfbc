package agents

import (
	"context"
	"fmt"

	"wareflow/contexts/insights-analytics/planning-service/domain/planning"
	"wareflow/contexts/insights-analytics/planning-service/ports"
	productentities "wareflow/contexts/inventory-core/product-service/domain/entities"
	"wareflow/internal/agents"
	"wareflow/internal/shared/events"
)

// AbcXyzAgent recomputes the revenue and variability classes for a tenant's
// whole catalog on the monthly analysis tick. The computation is a pure
// function of the catalog, so redelivery converges to the same classes and
// writes nothing the second time.
type AbcXyzAgent struct {
	Catalog ports.Catalog
}

func (a AbcXyzAgent) Name() string { return "abc-xyz-classifier" }

func (a AbcXyzAgent) Description() string {
	return "recomputes ABC consumption classes and XYZ variability classes"
}

func (a AbcXyzAgent) SubscribesTo() []string {
	return []string{"Scheduled.AbcXyzAnalysis"}
}

func (a AbcXyzAgent) Handle(ctx context.Context, env events.Envelope, ec agents.ExecutionContext) agents.Result {
	products, err := a.Catalog.ListProducts(ctx, env.TenantID)
	if err != nil {
		return agents.FailErr("list products", err)
	}
	if len(products) == 0 {
		return agents.Succeed("no products to classify")
	}

	items := make([]planning.AbcItem, 0, len(products))
	for _, product := range products {
		items = append(items, planning.AbcItem{
			ProductID:        product.ProductID,
			ConsumptionValue: product.ConsumptionValue(),
		})
	}
	abcByProduct := planning.ClassifyAbc(items)

	reclassified := 0
	for _, product := range products {
		abc := productentities.AbcClass(abcByProduct[product.ProductID])
		xyz := productentities.XyzClass(planning.ClassifyXyz(product.DemandMean, product.DemandStdDev))
		if product.AbcClass == abc && product.XyzClass == xyz {
			continue
		}
		if err := a.Catalog.UpdateClassification(ctx, env.TenantID, product.ProductID, abc, xyz); err != nil {
			return agents.FailErr("update classification", err)
		}
		reclassified++
	}

	return agents.Succeed(fmt.Sprintf("classified %d products", len(products))).
		WithData("reclassified", reclassified)
}
