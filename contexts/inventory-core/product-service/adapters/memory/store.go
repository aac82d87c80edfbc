package memory

import (
	"context"
	"sort"
	"sync"

	"wareflow/contexts/inventory-core/product-service/domain/entities"
	domainerrors "wareflow/contexts/inventory-core/product-service/domain/errors"
)

type Store struct {
	mu       sync.RWMutex
	products map[string]entities.Product
}

func NewStore(seed []entities.Product) *Store {
	store := &Store{products: make(map[string]entities.Product, len(seed))}
	for _, product := range seed {
		store.products[product.ProductID] = product
	}
	return store
}

func (s *Store) GetProduct(_ context.Context, tenantID, productID string) (entities.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	product, ok := s.products[productID]
	if !ok || product.TenantID != tenantID {
		return entities.Product{}, domainerrors.ErrProductNotFound
	}
	return product, nil
}

func (s *Store) FindBySKU(_ context.Context, tenantID, sku string) (entities.Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, product := range s.products {
		if product.TenantID == tenantID && product.SKU == sku {
			return product, true, nil
		}
	}
	return entities.Product{}, false, nil
}

func (s *Store) ListByTenant(_ context.Context, tenantID string) ([]entities.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.Product
	for _, product := range s.products {
		if product.TenantID == tenantID {
			out = append(out, product)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (s *Store) Upsert(_ context.Context, product entities.Product) (entities.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[product.ProductID] = product
	return product, nil
}
