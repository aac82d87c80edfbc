// Package slotting ranks candidate locations for a putaway as a weighted
// sum of normalized subscores. Scoring is pure and deterministic for a
// fixed input.
package slotting

import (
	"sort"

	"wareflow/contexts/warehouse-ops/slotting-service/domain/entities"
)

// Subscore names used in suggestion breakdowns and weight overrides.
const (
	SubscoreAbcVelocity = "abc_velocity"
	SubscoreProximity   = "proximity"
	SubscoreCapacity    = "capacity"
	SubscoreTemperature = "temperature"
	SubscoreFefo        = "fefo"
	SubscoreHazard      = "hazard"
)

const ZoneAmbient = "AMBIENT"

// Weights are the relative importance of each subscore. They need not sum
// to one; scores are comparable only under the same weights.
type Weights struct {
	AbcVelocity float64
	Proximity   float64
	Capacity    float64
	Temperature float64
	Fefo        float64
	Hazard      float64
}

func DefaultWeights() Weights {
	return Weights{
		AbcVelocity: 0.30,
		Proximity:   0.25,
		Capacity:    0.20,
		Temperature: 0.10,
		Fefo:        0.10,
		Hazard:      0.05,
	}
}

// Context describes the product being put away.
type Context struct {
	AbcClass          string
	TemperatureZone   string
	Hazmat            bool
	Quantity          int64
	PreferredZones    []string
	ExcludedLocations []string
}

type Suggestion struct {
	Location  entities.Location
	Score     float64
	Breakdown map[string]float64
}

type Scorer struct {
	weights Weights
}

func NewScorer(weights Weights) Scorer {
	return Scorer{weights: weights}
}

// Rank filters and scores the candidates, best first. Ties break on the
// lower pick sequence.
func (s Scorer) Rank(candidates []entities.Location, sctx Context) []Suggestion {
	excluded := make(map[string]bool, len(sctx.ExcludedLocations))
	for _, id := range sctx.ExcludedLocations {
		excluded[id] = true
	}
	preferred := make(map[string]bool, len(sctx.PreferredZones))
	for _, zone := range sctx.PreferredZones {
		preferred[zone] = true
	}

	eligible := make([]entities.Location, 0, len(candidates))
	var maxDistance, maxFrequency float64
	for _, location := range candidates {
		if !location.Active || excluded[location.LocationID] {
			continue
		}
		if len(preferred) > 0 && !preferred[location.Zone] {
			continue
		}
		if !temperatureCompatible(sctx.TemperatureZone, location.TemperatureZone) {
			continue
		}
		if sctx.Hazmat && !location.HazmatCertified {
			continue
		}
		eligible = append(eligible, location)
		if location.DistanceFromDock > maxDistance {
			maxDistance = location.DistanceFromDock
		}
		if location.PickFrequency > maxFrequency {
			maxFrequency = location.PickFrequency
		}
	}

	suggestions := make([]Suggestion, 0, len(eligible))
	for _, location := range eligible {
		breakdown := map[string]float64{
			SubscoreAbcVelocity: abcVelocity(sctx.AbcClass, location.PickFrequency, maxFrequency),
			SubscoreProximity:   proximity(location.DistanceFromDock, maxDistance),
			SubscoreCapacity:    capacity(location.UtilizationPct),
			SubscoreTemperature: temperature(sctx.TemperatureZone, location.TemperatureZone),
			SubscoreFefo:        fefoFriendliness(location.Type),
			SubscoreHazard:      hazard(sctx.Hazmat, location.HazmatCertified),
		}
		score := s.weights.AbcVelocity*breakdown[SubscoreAbcVelocity] +
			s.weights.Proximity*breakdown[SubscoreProximity] +
			s.weights.Capacity*breakdown[SubscoreCapacity] +
			s.weights.Temperature*breakdown[SubscoreTemperature] +
			s.weights.Fefo*breakdown[SubscoreFefo] +
			s.weights.Hazard*breakdown[SubscoreHazard]
		suggestions = append(suggestions, Suggestion{
			Location:  location,
			Score:     score,
			Breakdown: breakdown,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		return suggestions[i].Location.PickSequence < suggestions[j].Location.PickSequence
	})
	return suggestions
}

// temperatureCompatible: ambient goods store anywhere; anything else needs
// the matching zone.
func temperatureCompatible(required, zone string) bool {
	if required == "" || required == ZoneAmbient {
		return true
	}
	return zone == required
}

// abcVelocity steers fast movers into busy bays and slow movers out of
// them.
func abcVelocity(abcClass string, frequency, maxFrequency float64) float64 {
	if maxFrequency <= 0 {
		return 0.5
	}
	normalized := frequency / maxFrequency
	switch abcClass {
	case "A":
		return normalized
	case "C":
		return 1 - normalized
	default:
		return 0.5
	}
}

func proximity(distance, maxDistance float64) float64 {
	if maxDistance <= 0 {
		return 1
	}
	return 1 - distance/maxDistance
}

func capacity(utilizationPct float64) float64 {
	score := 1 - utilizationPct/100
	if score < 0 {
		return 0
	}
	return score
}

func temperature(required, zone string) float64 {
	switch {
	case required == "":
		return 0.5
	case required == zone:
		return 1
	default:
		return 0
	}
}

func fefoFriendliness(locationType entities.LocationType) float64 {
	if locationType == entities.LocationPick || locationType == entities.LocationStaging {
		return 1
	}
	return 0.5
}

func hazard(hazmat, certified bool) float64 {
	if !hazmat || certified {
		return 1
	}
	return 0
}
