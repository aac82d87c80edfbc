package entities

import (
	"time"
)

type LotStatus string

const (
	LotAvailable  LotStatus = "AVAILABLE"
	LotReleased   LotStatus = "RELEASED"
	LotQuarantine LotStatus = "QUARANTINE"
	LotHold       LotStatus = "HOLD"
	LotExpired    LotStatus = "EXPIRED"
)

// Lot is batch master data for a product. One lot may back many stock
// levels; expiry and quality status live here, quantities live on the
// stock levels.
type Lot struct {
	LotID          string
	TenantID       string
	ProductID      string
	LotNumber      string
	Status         LotStatus
	ManufacturedAt *time.Time
	ExpiresAt      *time.Time
	ReceivedAt     time.Time
	UpdatedAt      time.Time
}

// Pickable reports whether the lot may satisfy an allocation: the status
// must permit picking and, when the lot expires, at least minShelfLifeDays
// of shelf life must remain as of today.
func (l Lot) Pickable(minShelfLifeDays int, today time.Time) bool {
	switch l.Status {
	case LotAvailable, LotReleased:
	default:
		return false
	}
	if l.ExpiresAt == nil {
		return true
	}
	cutoff := midnight(today).AddDate(0, 0, minShelfLifeDays)
	return !l.ExpiresAt.Before(cutoff)
}

// ExpiredAsOf reports whether the lot's expiry date has passed.
func (l Lot) ExpiredAsOf(today time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(midnight(today))
}

// DaysExpired returns whole days since expiry, zero when not expired.
func (l Lot) DaysExpired(today time.Time) int {
	if !l.ExpiredAsOf(today) {
		return 0
	}
	return int(midnight(today).Sub(midnight(*l.ExpiresAt)).Hours() / 24)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
