package entities

import (
	"testing"
	"time"
)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestPickableRespectsStatusAndShelfLife(t *testing.T) {
	today := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		lot  Lot
		min  int
		want bool
	}{
		{"available without expiry", Lot{Status: LotAvailable}, 0, true},
		{"released with remaining life", Lot{Status: LotReleased, ExpiresAt: datePtr(2026, 3, 20)}, 5, true},
		{"available inside shelf-life window", Lot{Status: LotAvailable, ExpiresAt: datePtr(2026, 3, 12)}, 5, false},
		{"quarantined", Lot{Status: LotQuarantine}, 0, false},
		{"held", Lot{Status: LotHold}, 0, false},
		{"expired status", Lot{Status: LotExpired}, 0, false},
		{"expires today", Lot{Status: LotAvailable, ExpiresAt: datePtr(2026, 3, 10)}, 0, true},
		{"expired yesterday", Lot{Status: LotAvailable, ExpiresAt: datePtr(2026, 3, 9)}, 0, false},
	}
	for _, tc := range cases {
		if got := tc.lot.Pickable(tc.min, today); got != tc.want {
			t.Errorf("%s: pickable = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDaysExpired(t *testing.T) {
	today := time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC)

	lot := Lot{Status: LotAvailable, ExpiresAt: datePtr(2026, 3, 9)}
	if got := lot.DaysExpired(today); got != 1 {
		t.Fatalf("expected 1 day expired, got %d", got)
	}

	fresh := Lot{Status: LotAvailable, ExpiresAt: datePtr(2026, 3, 11)}
	if got := fresh.DaysExpired(today); got != 0 {
		t.Fatalf("expected 0 for unexpired lot, got %d", got)
	}
	if fresh.ExpiredAsOf(today) {
		t.Fatalf("lot expiring tomorrow must not count as expired")
	}
}
