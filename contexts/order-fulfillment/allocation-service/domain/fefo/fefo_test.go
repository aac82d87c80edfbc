package fefo

import (
	"testing"
	"time"

	lotentities "wareflow/contexts/inventory-core/lot-service/domain/entities"
)

var today = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func source(id, location string, available int64, lot *Lot) Source {
	return Source{
		StockLevelID: id,
		ProductID:    "P2",
		WarehouseID:  "W1",
		LocationID:   location,
		Available:    available,
		Lot:          lot,
	}
}

func availableLot(lotID string, expires *time.Time) *Lot {
	return &Lot{LotID: lotID, Status: lotentities.LotAvailable, ExpiresAt: expires}
}

func TestAllocateTakesEarliestExpiryFirst(t *testing.T) {
	result := Allocate(Request{ProductID: "P2", WarehouseID: "W1", Quantity: 7}, []Source{
		source("sl-1", "A-01", 5, availableLot("L1", datePtr(2030, 1, 1))),
		source("sl-2", "A-02", 5, availableLot("L2", datePtr(2029, 1, 1))),
	}, today)

	if !result.FullyAllocated || result.Allocated != 7 || result.Shortfall != 0 {
		t.Fatalf("expected full allocation of 7, got %+v", result)
	}
	if len(result.Lines) != 2 {
		t.Fatalf("expected two lines, got %d", len(result.Lines))
	}
	if result.Lines[0].LotID != "L2" || result.Lines[0].Quantity != 5 {
		t.Fatalf("expected 5 from earlier-expiring L2 first, got %+v", result.Lines[0])
	}
	if result.Lines[1].LotID != "L1" || result.Lines[1].Quantity != 2 {
		t.Fatalf("expected remaining 2 from L1, got %+v", result.Lines[1])
	}
}

func TestAllocateNeverSkipsEarlierLotWithStock(t *testing.T) {
	sources := []Source{
		source("sl-1", "A-01", 10, availableLot("L1", datePtr(2031, 6, 1))),
		source("sl-2", "A-02", 10, availableLot("L2", datePtr(2029, 6, 1))),
		source("sl-3", "A-03", 10, availableLot("L3", datePtr(2030, 6, 1))),
	}
	result := Allocate(Request{ProductID: "P2", WarehouseID: "W1", Quantity: 15}, sources, today)

	if len(result.Lines) != 2 {
		t.Fatalf("expected two lines, got %+v", result.Lines)
	}
	if result.Lines[0].LotID != "L2" || result.Lines[1].LotID != "L3" {
		t.Fatalf("expected L2 then L3, got %s then %s", result.Lines[0].LotID, result.Lines[1].LotID)
	}
}

func TestAllocatePrefersRequestedLocations(t *testing.T) {
	result := Allocate(Request{
		ProductID:          "P2",
		WarehouseID:        "W1",
		Quantity:           4,
		PreferredLocations: []string{"B-09"},
	}, []Source{
		source("sl-1", "A-01", 10, availableLot("L1", datePtr(2029, 1, 1))),
		source("sl-2", "B-09", 10, availableLot("L2", datePtr(2030, 1, 1))),
	}, today)

	if len(result.Lines) != 1 || result.Lines[0].StockLevelID != "sl-2" {
		t.Fatalf("expected preferred location to win, got %+v", result.Lines)
	}
}

func TestAllocateLottedBeforeLotless(t *testing.T) {
	result := Allocate(Request{ProductID: "P2", WarehouseID: "W1", Quantity: 3}, []Source{
		source("sl-1", "A-01", 10, nil),
		source("sl-2", "A-02", 10, availableLot("L1", nil)),
	}, today)

	if len(result.Lines) != 1 || result.Lines[0].StockLevelID != "sl-2" {
		t.Fatalf("expected lot-tracked source first, got %+v", result.Lines)
	}
}

func TestAllocateSkipReasons(t *testing.T) {
	quarantined := &Lot{LotID: "LQ", Status: lotentities.LotQuarantine}
	shortLife := availableLot("LS", datePtr(2026, 3, 5))
	excluded := availableLot("LX", datePtr(2030, 1, 1))

	result := Allocate(Request{
		ProductID:           "P2",
		WarehouseID:         "W1",
		Quantity:            20,
		ExcludedLots:        []string{"LX"},
		MinDaysToExpiration: 30,
	}, []Source{
		source("sl-1", "A-01", 0, availableLot("L0", datePtr(2030, 1, 1))),
		source("sl-2", "A-02", 5, quarantined),
		source("sl-3", "A-03", 5, shortLife),
		source("sl-4", "A-04", 5, excluded),
		source("sl-5", "A-05", 5, availableLot("LG", datePtr(2030, 1, 1))),
	}, today)

	if result.Allocated != 5 || result.Shortfall != 15 || result.FullyAllocated {
		t.Fatalf("expected partial allocation of 5, got %+v", result)
	}
	reasons := map[string]SkipReason{}
	for _, skip := range result.Skips {
		reasons[skip.Source.StockLevelID] = skip.Reason
	}
	expect := map[string]SkipReason{
		"sl-1": SkipNoAvailability,
		"sl-2": SkipLotStatus,
		"sl-3": SkipShelfLife,
		"sl-4": SkipExcludedLot,
	}
	for id, want := range expect {
		if reasons[id] != want {
			t.Errorf("source %s: expected skip %s, got %s", id, want, reasons[id])
		}
	}
}

func TestAllocateIgnoresOtherProductsAndWarehouses(t *testing.T) {
	other := source("sl-x", "A-01", 10, nil)
	other.ProductID = "P9"
	elsewhere := source("sl-y", "A-01", 10, nil)
	elsewhere.WarehouseID = "W2"

	result := Allocate(Request{ProductID: "P2", WarehouseID: "W1", Quantity: 5}, []Source{other, elsewhere}, today)
	if result.Allocated != 0 || len(result.Skips) != 0 {
		t.Fatalf("out-of-scope sources must be dropped silently, got %+v", result)
	}
	if result.Shortfall != 5 {
		t.Fatalf("expected shortfall 5, got %d", result.Shortfall)
	}
}

func TestAllocateFifoFallbackOnReceivedDate(t *testing.T) {
	older := &Lot{LotID: "LA", Status: lotentities.LotAvailable, ReceivedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := &Lot{LotID: "LB", Status: lotentities.LotAvailable, ReceivedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}

	result := Allocate(Request{ProductID: "P2", WarehouseID: "W1", Quantity: 3}, []Source{
		source("sl-1", "A-01", 10, newer),
		source("sl-2", "A-02", 10, older),
	}, today)

	if len(result.Lines) != 1 || result.Lines[0].LotID != "LA" {
		t.Fatalf("expected FIFO fallback to pick older receipt, got %+v", result.Lines)
	}
}
