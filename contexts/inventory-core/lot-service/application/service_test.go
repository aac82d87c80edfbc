package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"wareflow/contexts/inventory-core/lot-service/adapters/memory"
	"wareflow/contexts/inventory-core/lot-service/domain/entities"
	domainerrors "wareflow/contexts/inventory-core/lot-service/domain/errors"
	stockports "wareflow/contexts/inventory-core/stock-service/ports"
)

var testTenant = "0b9f2a44-1c6e-4f4b-9a17-3d2f8e5c6a01"

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type seqIDGen struct{ n int }

func (g *seqIDGen) NewID() string {
	g.n++
	return fmt.Sprintf("lot-%03d", g.n)
}

func newService() (Service, *memory.Store) {
	store := memory.NewStore()
	return Service{
		Repo:  store,
		Clock: fixedClock{now: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)},
		IDGen: &seqIDGen{},
	}, store
}

func TestEnsureLotIsIdempotentOnLotNumber(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	input := stockports.EnsureLotInput{
		TenantID:  testTenant,
		ProductID: "prod-1",
		LotNumber: "LOT-A",
	}
	first, err := service.EnsureLot(ctx, input)
	if err != nil {
		t.Fatalf("first ensure failed: %v", err)
	}
	second, err := service.EnsureLot(ctx, input)
	if err != nil {
		t.Fatalf("replayed ensure failed: %v", err)
	}
	if first != second {
		t.Fatalf("expected same lot id on replay, got %s and %s", first, second)
	}

	other, err := service.EnsureLot(ctx, stockports.EnsureLotInput{
		TenantID:  testTenant,
		ProductID: "prod-1",
		LotNumber: "LOT-B",
	})
	if err != nil {
		t.Fatalf("second lot ensure failed: %v", err)
	}
	if other == first {
		t.Fatalf("distinct lot numbers must mint distinct lots")
	}
}

func TestEnsureLotRejectsBlankInput(t *testing.T) {
	service, _ := newService()
	if _, err := service.EnsureLot(context.Background(), stockports.EnsureLotInput{
		TenantID:  testTenant,
		ProductID: "prod-1",
		LotNumber: "   ",
	}); !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestStatusTransitions(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	lotID, err := service.EnsureLot(ctx, stockports.EnsureLotInput{
		TenantID:  testTenant,
		ProductID: "prod-1",
		LotNumber: "LOT-A",
	})
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}

	lot, err := service.Quarantine(ctx, testTenant, lotID)
	if err != nil {
		t.Fatalf("quarantine failed: %v", err)
	}
	if lot.Status != entities.LotQuarantine {
		t.Fatalf("expected QUARANTINE, got %s", lot.Status)
	}

	lot, err = service.Release(ctx, testTenant, lotID)
	if err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if lot.Status != entities.LotReleased {
		t.Fatalf("expected RELEASED, got %s", lot.Status)
	}
}

func TestExpiredLotCannotBeReleased(t *testing.T) {
	service, store := newService()
	ctx := context.Background()

	lotID, err := service.EnsureLot(ctx, stockports.EnsureLotInput{
		TenantID:  testTenant,
		ProductID: "prod-1",
		LotNumber: "LOT-A",
	})
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	if _, err := store.UpdateStatus(ctx, testTenant, lotID, entities.LotAvailable, entities.LotExpired, time.Now()); err != nil {
		t.Fatalf("force expire failed: %v", err)
	}

	if _, err := service.Release(ctx, testTenant, lotID); !errors.Is(err, domainerrors.ErrLotNotPickable) {
		t.Fatalf("expected not pickable, got %v", err)
	}
}
