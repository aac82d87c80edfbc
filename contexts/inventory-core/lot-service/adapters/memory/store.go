package memory

import (
	"context"
	"sync"
	"time"

	"wareflow/contexts/inventory-core/lot-service/domain/entities"
	domainerrors "wareflow/contexts/inventory-core/lot-service/domain/errors"
)

type lotKey struct {
	tenantID  string
	productID string
	lotNumber string
}

type Store struct {
	mu       sync.RWMutex
	lots     map[string]entities.Lot
	byNumber map[lotKey]string
}

func NewStore() *Store {
	return &Store{
		lots:     make(map[string]entities.Lot),
		byNumber: make(map[lotKey]string),
	}
}

func (s *Store) GetLot(_ context.Context, tenantID, lotID string) (entities.Lot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lot, ok := s.lots[lotID]
	if !ok || lot.TenantID != tenantID {
		return entities.Lot{}, domainerrors.ErrLotNotFound
	}
	return lot, nil
}

func (s *Store) FindByNumber(_ context.Context, tenantID, productID, lotNumber string) (entities.Lot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byNumber[lotKey{tenantID, productID, lotNumber}]
	if !ok {
		return entities.Lot{}, false, nil
	}
	return s.lots[id], true, nil
}

func (s *Store) Create(_ context.Context, lot entities.Lot) (entities.Lot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := lotKey{lot.TenantID, lot.ProductID, lot.LotNumber}
	if existingID, ok := s.byNumber[key]; ok {
		return s.lots[existingID], false, nil
	}
	s.lots[lot.LotID] = lot
	s.byNumber[key] = lot.LotID
	return lot, true, nil
}

func (s *Store) UpdateStatus(_ context.Context, tenantID, lotID string, from, to entities.LotStatus, at time.Time) (entities.Lot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lot, ok := s.lots[lotID]
	if !ok || lot.TenantID != tenantID {
		return entities.Lot{}, domainerrors.ErrLotNotFound
	}
	if lot.Status != from {
		return entities.Lot{}, domainerrors.ErrStatusConflict.
			WithDetail("lot_id", lotID).
			WithDetail("expected", string(from)).
			WithDetail("actual", string(lot.Status))
	}
	lot.Status = to
	lot.UpdatedAt = at.UTC()
	s.lots[lotID] = lot
	return lot, nil
}

func (s *Store) ListExpired(_ context.Context, tenantID string, asOf time.Time) ([]entities.Lot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.Lot
	for _, lot := range s.lots {
		if lot.TenantID != tenantID || lot.Status == entities.LotExpired {
			continue
		}
		if lot.ExpiredAsOf(asOf) {
			out = append(out, lot)
		}
	}
	return out, nil
}
