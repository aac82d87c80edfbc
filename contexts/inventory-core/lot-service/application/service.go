package application

import (
	"context"
	"log/slog"
	"strings"

	"wareflow/contexts/inventory-core/lot-service/domain/entities"
	domainerrors "wareflow/contexts/inventory-core/lot-service/domain/errors"
	"wareflow/contexts/inventory-core/lot-service/ports"
	stockports "wareflow/contexts/inventory-core/stock-service/ports"
)

type Service struct {
	Repo   ports.Repository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// EnsureLot registers lot master data on goods receipt. Replayed receipts
// for the same (tenant, product, lot number) return the existing lot id.
func (s Service) EnsureLot(ctx context.Context, input stockports.EnsureLotInput) (string, error) {
	lotNumber := strings.TrimSpace(input.LotNumber)
	if input.TenantID == "" || input.ProductID == "" || lotNumber == "" {
		return "", domainerrors.ErrInvalidInput
	}

	existing, found, err := s.Repo.FindByNumber(ctx, input.TenantID, input.ProductID, lotNumber)
	if err != nil {
		return "", err
	}
	if found {
		return existing.LotID, nil
	}

	now := s.Clock.Now().UTC()
	receivedAt := input.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = now
	}
	lot := entities.Lot{
		LotID:          s.IDGen.NewID(),
		TenantID:       input.TenantID,
		ProductID:      input.ProductID,
		LotNumber:      lotNumber,
		Status:         entities.LotAvailable,
		ManufacturedAt: input.ManufacturedAt,
		ExpiresAt:      input.ExpiresAt,
		ReceivedAt:     receivedAt,
		UpdatedAt:      now,
	}
	created, inserted, err := s.Repo.Create(ctx, lot)
	if err != nil {
		return "", err
	}
	if !inserted {
		// Another receipt won the insert race; take its lot.
		resolveLogger(s.Logger).Debug("lot insert lost race, reusing existing",
			"event", "lot_ensure_race",
			"module", "inventory-core/lot-service",
			"layer", "application",
			"lot_number", lotNumber,
		)
	}
	return created.LotID, nil
}

func (s Service) GetLot(ctx context.Context, tenantID, lotID string) (entities.Lot, error) {
	if tenantID == "" || lotID == "" {
		return entities.Lot{}, domainerrors.ErrInvalidInput
	}
	return s.Repo.GetLot(ctx, tenantID, lotID)
}

// Quarantine pulls a lot out of circulation pending inspection.
func (s Service) Quarantine(ctx context.Context, tenantID, lotID string) (entities.Lot, error) {
	return s.transition(ctx, tenantID, lotID, entities.LotQuarantine)
}

// Hold blocks picking without implying a quality problem.
func (s Service) Hold(ctx context.Context, tenantID, lotID string) (entities.Lot, error) {
	return s.transition(ctx, tenantID, lotID, entities.LotHold)
}

// Release returns a held or quarantined lot to circulation.
func (s Service) Release(ctx context.Context, tenantID, lotID string) (entities.Lot, error) {
	return s.transition(ctx, tenantID, lotID, entities.LotReleased)
}

func (s Service) transition(ctx context.Context, tenantID, lotID string, to entities.LotStatus) (entities.Lot, error) {
	lot, err := s.Repo.GetLot(ctx, tenantID, lotID)
	if err != nil {
		return entities.Lot{}, err
	}
	if lot.Status == entities.LotExpired {
		return entities.Lot{}, domainerrors.ErrLotNotPickable.WithDetail("lot_id", lotID)
	}
	if lot.Status == to {
		return lot, nil
	}
	return s.Repo.UpdateStatus(ctx, tenantID, lotID, lot.Status, to, s.Clock.Now().UTC())
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
