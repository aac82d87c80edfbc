// Package planning holds the pure replenishment math: ABC/XYZ
// classification, safety-stock sizing, and demand forecasting. Nothing in
// here performs I/O.
package planning

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Pareto cut points on cumulative consumption value.
var (
	abcCutA = decimal.NewFromFloat(0.80)
	abcCutB = decimal.NewFromFloat(0.95)
)

// XYZ cut points on the demand coefficient of variation.
const (
	xyzCutX = 0.5
	xyzCutY = 1.0
)

// AbcItem is one product's ranking input: its annual consumption value.
type AbcItem struct {
	ProductID        string
	ConsumptionValue decimal.Decimal
}

// ClassifyAbc ranks items by consumption value and assigns Pareto classes:
// A while cumulative share stays within 80 %, B within 95 %, C beyond.
// Accumulation is exact decimal arithmetic so a long tail of small values
// cannot drift the cut. A zero-value population classifies entirely as C.
func ClassifyAbc(items []AbcItem) map[string]string {
	classes := make(map[string]string, len(items))
	if len(items) == 0 {
		return classes
	}

	ranked := make([]AbcItem, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool {
		if cmp := ranked[i].ConsumptionValue.Cmp(ranked[j].ConsumptionValue); cmp != 0 {
			return cmp > 0
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})

	total := decimal.Zero
	for _, item := range ranked {
		total = total.Add(item.ConsumptionValue)
	}
	if total.Sign() <= 0 {
		for _, item := range ranked {
			classes[item.ProductID] = "C"
		}
		return classes
	}

	cumulative := decimal.Zero
	for _, item := range ranked {
		cumulative = cumulative.Add(item.ConsumptionValue)
		share := cumulative.Div(total)
		switch {
		case share.Cmp(abcCutA) <= 0:
			classes[item.ProductID] = "A"
		case share.Cmp(abcCutB) <= 0:
			classes[item.ProductID] = "B"
		default:
			classes[item.ProductID] = "C"
		}
	}
	return classes
}

// ClassifyXyz maps the demand coefficient of variation (stddev over mean)
// to a variability class: X below 0.5, Y below 1.0, Z otherwise. Demand
// with no positive mean is unpredictable and classifies as Z.
func ClassifyXyz(demandMean, demandStdDev float64) string {
	if demandMean <= 0 {
		return "Z"
	}
	cv := demandStdDev / demandMean
	switch {
	case cv < xyzCutX:
		return "X"
	case cv < xyzCutY:
		return "Y"
	default:
		return "Z"
	}
}
