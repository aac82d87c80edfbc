// Package fefo allocates demand across inventory sources in
// first-expire-first-out order. Allocation is total: every input either
// yields a line, a skip with a reason, or is silently dropped as
// out-of-scope for the request.
package fefo

import (
	"sort"
	"time"

	lotentities "wareflow/contexts/inventory-core/lot-service/domain/entities"
)

// Request describes one demand to cover.
type Request struct {
	ProductID           string
	VariantID           string
	WarehouseID         string
	Quantity            int64
	PreferredLocations  []string
	ExcludedLots        []string
	MinDaysToExpiration int
}

// Lot is the slice of lot master data the allocator consults.
type Lot struct {
	LotID      string
	Status     lotentities.LotStatus
	ExpiresAt  *time.Time
	ReceivedAt time.Time
}

// Source is one stock level, optionally lot-tracked, that could cover part
// of the demand.
type Source struct {
	StockLevelID string
	ProductID    string
	VariantID    string
	WarehouseID  string
	LocationID   string
	PickSequence int
	Available    int64
	Lot          *Lot
}

type SkipReason string

const (
	SkipNoAvailability SkipReason = "NO_AVAILABILITY"
	SkipLotStatus      SkipReason = "LOT_STATUS"
	SkipShelfLife      SkipReason = "INSUFFICIENT_SHELF_LIFE"
	SkipExcludedLot    SkipReason = "EXCLUDED_LOT"
)

type Skip struct {
	Source Source
	Reason SkipReason
}

// Line is one allocation against a source.
type Line struct {
	StockLevelID string
	LocationID   string
	LotID        string
	Quantity     int64
}

type Result struct {
	Lines          []Line
	Skips          []Skip
	Allocated      int64
	Shortfall      int64
	FullyAllocated bool
}

// Allocate covers the requested quantity from the given sources. Preferred
// locations are drained first; within a group, lot-tracked sources go before
// lotless ones and earlier expiry wins. Never errors; an uncoverable
// remainder surfaces as Shortfall.
func Allocate(req Request, sources []Source, today time.Time) Result {
	candidates := make([]Source, 0, len(sources))
	for _, source := range sources {
		if source.ProductID != req.ProductID || source.WarehouseID != req.WarehouseID {
			continue
		}
		if req.VariantID != "" && source.VariantID != req.VariantID {
			continue
		}
		candidates = append(candidates, source)
	}

	preferred := make(map[string]bool, len(req.PreferredLocations))
	for _, loc := range req.PreferredLocations {
		preferred[loc] = true
	}
	excluded := make(map[string]bool, len(req.ExcludedLots))
	for _, lot := range req.ExcludedLots {
		excluded[lot] = true
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if preferred[a.LocationID] != preferred[b.LocationID] {
			return preferred[a.LocationID]
		}
		if less, decided := fefoLess(a.Lot, b.Lot); decided {
			return less
		}
		return a.PickSequence < b.PickSequence
	})

	result := Result{}
	remaining := req.Quantity
	for _, source := range candidates {
		if remaining <= 0 {
			break
		}
		if reason, skip := skipReason(source, req.MinDaysToExpiration, excluded, today); skip {
			result.Skips = append(result.Skips, Skip{Source: source, Reason: reason})
			continue
		}
		take := source.Available
		if take > remaining {
			take = remaining
		}
		lotID := ""
		if source.Lot != nil {
			lotID = source.Lot.LotID
		}
		result.Lines = append(result.Lines, Line{
			StockLevelID: source.StockLevelID,
			LocationID:   source.LocationID,
			LotID:        lotID,
			Quantity:     take,
		})
		result.Allocated += take
		remaining -= take
	}

	result.Shortfall = remaining
	result.FullyAllocated = remaining == 0
	return result
}

// fefoLess orders two optional lots. It reports decided=false when the pair
// ties and the caller should fall through to the next criterion.
func fefoLess(a, b *Lot) (less, decided bool) {
	switch {
	case a == nil && b == nil:
		return false, false
	case a == nil:
		return false, true
	case b == nil:
		return true, true
	}
	switch {
	case a.ExpiresAt != nil && b.ExpiresAt != nil:
		if a.ExpiresAt.Equal(*b.ExpiresAt) {
			break
		}
		return a.ExpiresAt.Before(*b.ExpiresAt), true
	case a.ExpiresAt != nil:
		return true, true
	case b.ExpiresAt != nil:
		return false, true
	default:
		if a.ReceivedAt.Equal(b.ReceivedAt) {
			break
		}
		return a.ReceivedAt.Before(b.ReceivedAt), true
	}
	return false, false
}

func skipReason(source Source, minDays int, excluded map[string]bool, today time.Time) (SkipReason, bool) {
	if source.Available <= 0 {
		return SkipNoAvailability, true
	}
	if source.Lot == nil {
		return "", false
	}
	switch source.Lot.Status {
	case lotentities.LotAvailable, lotentities.LotReleased:
	default:
		return SkipLotStatus, true
	}
	if source.Lot.ExpiresAt != nil && daysUntil(*source.Lot.ExpiresAt, today) < minDays {
		return SkipShelfLife, true
	}
	if excluded[source.Lot.LotID] {
		return SkipExcludedLot, true
	}
	return "", false
}

func daysUntil(expiresAt, today time.Time) int {
	return int(midnight(expiresAt).Sub(midnight(today)).Hours() / 24)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
