package agents

import (
	"context"
	"fmt"

	"wareflow/contexts/insights-analytics/planning-service/domain/planning"
	"wareflow/contexts/insights-analytics/planning-service/ports"
	"wareflow/internal/agents"
	"wareflow/internal/shared/events"
)

const EventDemandForecastGenerated = "Analytics.DemandForecastGenerated"

const (
	defaultHistoryDays = 28
	defaultWindowDays  = 7
	defaultHorizonDays = 7
)

// ForecastAgent projects demand per product on the weekly forecast tick and
// announces each projection as an analytics event. Products with no
// observed demand in the history window stay quiet.
type ForecastAgent struct {
	Catalog ports.Catalog
	Demand  ports.DemandReader
	Clock   ports.Clock

	HistoryDays int
	WindowDays  int
	HorizonDays int
}

func (a ForecastAgent) Name() string { return "demand-forecaster" }

func (a ForecastAgent) Description() string {
	return "projects daily demand from shipment history"
}

func (a ForecastAgent) SubscribesTo() []string {
	return []string{"Scheduled.DemandForecast"}
}

func (a ForecastAgent) Handle(ctx context.Context, env events.Envelope, ec agents.ExecutionContext) agents.Result {
	products, err := a.Catalog.ListProducts(ctx, env.TenantID)
	if err != nil {
		return agents.FailErr("list products", err)
	}

	now := a.Clock.Now().UTC()
	var announcements []events.Envelope
	for _, product := range products {
		history, err := a.Demand.DailyDemand(ctx, env.TenantID, env.WarehouseID, product.ProductID, a.historyDays())
		if err != nil {
			return agents.FailErr("read demand history", err)
		}
		forecast, ok := planning.ForecastDemand(history, a.windowDays(), a.horizonDays())
		if !ok || (forecast.DailyAverage == 0 && forecast.Trend == 0) {
			continue
		}

		announcement, err := env.Derive(EventDemandForecastGenerated, map[string]any{
			"product_id":    product.ProductID,
			"sku":           product.SKU,
			"window_days":   a.windowDays(),
			"horizon_days":  a.horizonDays(),
			"daily_average": forecast.DailyAverage,
			"trend":         forecast.Trend,
			"forecast":      forecast.Horizon,
		}, events.Actor{Type: events.ActorAgent, ID: a.Name()}, now)
		if err != nil {
			return agents.FailErr("build forecast envelope", err)
		}
		announcements = append(announcements, announcement)
	}

	return agents.Succeed(fmt.Sprintf("forecasted %d products", len(announcements))).
		WithEvents(announcements...).
		WithData("forecasted", len(announcements))
}

func (a ForecastAgent) historyDays() int {
	if a.HistoryDays > 0 {
		return a.HistoryDays
	}
	return defaultHistoryDays
}

func (a ForecastAgent) windowDays() int {
	if a.WindowDays > 0 {
		return a.WindowDays
	}
	return defaultWindowDays
}

func (a ForecastAgent) horizonDays() int {
	if a.HorizonDays > 0 {
		return a.HorizonDays
	}
	return defaultHorizonDays
}
