package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type AbcClass string

const (
	AbcA AbcClass = "A"
	AbcB AbcClass = "B"
	AbcC AbcClass = "C"
)

type XyzClass string

const (
	XyzX XyzClass = "X"
	XyzY XyzClass = "Y"
	XyzZ XyzClass = "Z"
)

type TemperatureZone string

const (
	ZoneAmbient TemperatureZone = "AMBIENT"
	ZoneChilled TemperatureZone = "CHILLED"
	ZoneFrozen  TemperatureZone = "FROZEN"
)

// Product is SKU master data: identity, storage requirements, replenishment
// policy, and the demand statistics the planning agents maintain.
type Product struct {
	ProductID        string
	TenantID         string
	SKU              string
	Name             string
	AbcClass         AbcClass
	XyzClass         XyzClass
	ReorderPoint     int64
	SafetyStock      int64
	Hazmat           bool
	TemperatureZone  TemperatureZone
	MinShelfLifeDays int
	UnitPrice        decimal.Decimal
	// Demand and lead time statistics in units/day and days.
	DemandMean     float64
	DemandStdDev   float64
	LeadTimeMean   float64
	LeadTimeStdDev float64
	ServiceLevel   float64
	AnnualUsage    int64
	UpdatedAt      time.Time
}

// ConsumptionValue is annual usage priced at the unit price, the ranking
// quantity for ABC classification.
func (p Product) ConsumptionValue() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(p.AnnualUsage))
}
