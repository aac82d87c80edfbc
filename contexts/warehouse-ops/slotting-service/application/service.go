package application

import (
	"context"
	"errors"
	"log/slog"

	"wareflow/contexts/warehouse-ops/slotting-service/domain/entities"
	domainerrors "wareflow/contexts/warehouse-ops/slotting-service/domain/errors"
	"wareflow/contexts/warehouse-ops/slotting-service/domain/slotting"
	"wareflow/contexts/warehouse-ops/slotting-service/ports"
)

// Service answers putaway ranking queries and exposes location master data.
type Service struct {
	Locations ports.LocationRepository
	Profiles  ports.ProfileReader
	Scorer    slotting.Scorer
	Logger    *slog.Logger
}

type SuggestRequest struct {
	TenantID          string
	WarehouseID       string
	ProductID         string
	Quantity          int64
	PreferredZones    []string
	ExcludedLocations []string
}

// Suggest ranks the active locations of the warehouse for the product.
func (s Service) Suggest(ctx context.Context, req SuggestRequest) ([]slotting.Suggestion, error) {
	if req.TenantID == "" || req.WarehouseID == "" || req.ProductID == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	profile, _, err := s.Profiles.ProductProfile(ctx, req.TenantID, req.ProductID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.Locations.ListActive(ctx, req.TenantID, req.WarehouseID)
	if err != nil {
		return nil, err
	}
	return s.Scorer.Rank(candidates, slotting.Context{
		AbcClass:          profile.AbcClass,
		TemperatureZone:   profile.TemperatureZone,
		Hazmat:            profile.Hazmat,
		Quantity:          req.Quantity,
		PreferredZones:    req.PreferredZones,
		ExcludedLocations: req.ExcludedLocations,
	}), nil
}

func (s Service) UpsertLocation(ctx context.Context, location entities.Location) (entities.Location, error) {
	if location.TenantID == "" || location.WarehouseID == "" || location.LocationID == "" {
		return entities.Location{}, domainerrors.ErrInvalidInput
	}
	return s.Locations.Upsert(ctx, location)
}

// PickSequence satisfies the allocation service's location sequencer.
func (s Service) PickSequence(ctx context.Context, tenantID, _ string, locationID string) (int, bool, error) {
	location, err := s.Locations.GetLocation(ctx, tenantID, locationID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrLocationNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return location.PickSequence, true, nil
}
