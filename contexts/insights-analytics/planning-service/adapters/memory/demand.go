package memory

import (
	"context"
	"sync"
)

type demandKey struct {
	tenantID    string
	warehouseID string
	productID   string
}

// DemandStore holds seeded daily demand series for tests and the in-memory
// runtime profile.
type DemandStore struct {
	mu     sync.RWMutex
	series map[demandKey][]float64
}

func NewDemandStore() *DemandStore {
	return &DemandStore{series: make(map[demandKey][]float64)}
}

// Seed replaces the series for one product, oldest day first.
func (s *DemandStore) Seed(tenantID, warehouseID, productID string, daily []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]float64, len(daily))
	copy(copied, daily)
	s.series[demandKey{tenantID, warehouseID, productID}] = copied
}

func (s *DemandStore) DailyDemand(_ context.Context, tenantID, warehouseID, productID string, days int) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.series[demandKey{tenantID, warehouseID, productID}]
	if len(stored) > days {
		stored = stored[len(stored)-days:]
	}
	out := make([]float64, len(stored))
	copy(out, stored)
	return out, nil
}
