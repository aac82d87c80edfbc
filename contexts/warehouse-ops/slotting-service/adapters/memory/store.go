package memory

import (
	"context"
	"sort"
	"sync"

	"wareflow/contexts/warehouse-ops/slotting-service/domain/entities"
	domainerrors "wareflow/contexts/warehouse-ops/slotting-service/domain/errors"
)

type Store struct {
	mu        sync.RWMutex
	locations map[string]entities.Location
}

func NewStore(seed []entities.Location) *Store {
	store := &Store{locations: make(map[string]entities.Location, len(seed))}
	for _, location := range seed {
		store.locations[location.LocationID] = location
	}
	return store
}

func (s *Store) GetLocation(_ context.Context, tenantID, locationID string) (entities.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	location, ok := s.locations[locationID]
	if !ok || location.TenantID != tenantID {
		return entities.Location{}, domainerrors.ErrLocationNotFound
	}
	return location, nil
}

func (s *Store) ListActive(_ context.Context, tenantID, warehouseID string) ([]entities.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.Location
	for _, location := range s.locations {
		if location.TenantID == tenantID && location.WarehouseID == warehouseID && location.Active {
			out = append(out, location)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PickSequence < out[j].PickSequence })
	return out, nil
}

func (s *Store) Upsert(_ context.Context, location entities.Location) (entities.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[location.LocationID] = location
	return location, nil
}
