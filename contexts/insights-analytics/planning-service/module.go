package planningservice

import (
	"gorm.io/gorm"

	"wareflow/contexts/insights-analytics/planning-service/adapters/memory"
	"wareflow/contexts/insights-analytics/planning-service/adapters/postgres"
	"wareflow/contexts/insights-analytics/planning-service/application/agents"
	"wareflow/contexts/insights-analytics/planning-service/ports"
	"wareflow/internal/shared/ident"
)

type Module struct {
	AbcXyzAgent      agents.AbcXyzAgent
	SafetyStockAgent agents.SafetyStockAgent
	ForecastAgent    agents.ForecastAgent
	ActivityAgent    *agents.ActivityAgent

	Demand *memory.DemandStore
}

type Dependencies struct {
	Catalog ports.Catalog
	Demand  ports.DemandReader
	Clock   ports.Clock
}

func NewModule(deps Dependencies) Module {
	return Module{
		AbcXyzAgent:      agents.AbcXyzAgent{Catalog: deps.Catalog},
		SafetyStockAgent: agents.SafetyStockAgent{Catalog: deps.Catalog},
		ForecastAgent: agents.ForecastAgent{
			Catalog: deps.Catalog,
			Demand:  deps.Demand,
			Clock:   deps.Clock,
		},
		ActivityAgent: agents.NewActivityAgent(),
	}
}

func NewPostgresModule(db *gorm.DB, catalog ports.Catalog) Module {
	clock := ident.SystemClock{}
	return NewModule(Dependencies{
		Catalog: catalog,
		Demand:  postgres.NewDemandReader(db, clock),
		Clock:   clock,
	})
}

func NewInMemoryModule(catalog ports.Catalog) Module {
	demand := memory.NewDemandStore()
	module := NewModule(Dependencies{
		Catalog: catalog,
		Demand:  demand,
		Clock:   ident.SystemClock{},
	})
	module.Demand = demand
	return module
}
