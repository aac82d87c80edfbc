package planning

import "math"

// zTable maps cycle service level to the standard normal z score. Lookup
// picks the highest entry not above the requested level, so 0.97 sizes at
// the 0.95 row rather than over-buffering.
var zTable = []struct {
	serviceLevel float64
	z            float64
}{
	{0.50, 0.00},
	{0.80, 0.84},
	{0.85, 1.04},
	{0.90, 1.28},
	{0.95, 1.65},
	{0.975, 1.96},
	{0.99, 2.33},
	{0.995, 2.58},
	{0.999, 3.09},
}

// DefaultServiceLevel is applied when a product carries no target.
const DefaultServiceLevel = 0.95

// ZScore resolves a target cycle service level to its z score.
func ZScore(serviceLevel float64) float64 {
	if serviceLevel <= 0 {
		serviceLevel = DefaultServiceLevel
	}
	z := zTable[0].z
	for _, row := range zTable {
		if row.serviceLevel > serviceLevel {
			break
		}
		z = row.z
	}
	return z
}

// DemandProfile is the per-product statistical input to replenishment
// sizing. Demand is units per day, lead time is days.
type DemandProfile struct {
	DemandMean     float64
	DemandStdDev   float64
	LeadTimeMean   float64
	LeadTimeStdDev float64
	ServiceLevel   float64
}

// SafetyStock sizes the buffer above mean lead-time demand:
// Z * sqrt(LT * sigmaD^2 + D^2 * sigmaLT^2), rounded up to whole units.
func SafetyStock(p DemandProfile) int64 {
	if p.DemandMean <= 0 || p.LeadTimeMean <= 0 {
		return 0
	}
	variance := p.LeadTimeMean*p.DemandStdDev*p.DemandStdDev +
		p.DemandMean*p.DemandMean*p.LeadTimeStdDev*p.LeadTimeStdDev
	if variance <= 0 {
		return 0
	}
	buffer := ZScore(p.ServiceLevel) * math.Sqrt(variance)
	return int64(math.Ceil(buffer))
}

// ReorderPoint is mean lead-time demand plus the safety buffer, rounded up.
func ReorderPoint(p DemandProfile, safetyStock int64) int64 {
	if p.DemandMean <= 0 || p.LeadTimeMean <= 0 {
		return safetyStock
	}
	leadTimeDemand := int64(math.Ceil(p.DemandMean * p.LeadTimeMean))
	return leadTimeDemand + safetyStock
}
