package memory

import (
	"context"
	"sync"

	"wareflow/contexts/inventory-core/stock-service/domain/entities"
	domainerrors "wareflow/contexts/inventory-core/stock-service/domain/errors"
	"wareflow/contexts/inventory-core/stock-service/ports"
	"wareflow/internal/shared/eventstore"
	"wareflow/internal/shared/outbox"
)

// Store keeps stock state in process. ApplyMovement mirrors the postgres
// adapter's transaction: all writes land or none do, and the outbox row only
// exists when the mutation committed.
type Store struct {
	mu        sync.RWMutex
	levels    map[string]entities.StockLevel
	movements []entities.Movement
	events    *eventstore.MemoryStore
	outbox    *outbox.MemoryStore
}

func NewStore(events *eventstore.MemoryStore, ob *outbox.MemoryStore) *Store {
	return &Store{
		levels: make(map[string]entities.StockLevel),
		events: events,
		outbox: ob,
	}
}

func (s *Store) GetStockLevel(_ context.Context, tenantID, stockLevelID string) (entities.StockLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	level, ok := s.levels[stockLevelID]
	if !ok || level.TenantID != tenantID {
		return entities.StockLevel{}, domainerrors.ErrStockLevelNotFound
	}
	return level, nil
}

func (s *Store) FindStockLevel(_ context.Context, key entities.StockKey) (entities.StockLevel, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, level := range s.levels {
		if level.Key() == key {
			return level, true, nil
		}
	}
	return entities.StockLevel{}, false, nil
}

func (s *Store) ListByProduct(_ context.Context, tenantID, warehouseID, productID, variantID string) ([]entities.StockLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.StockLevel
	for _, level := range s.levels {
		if level.TenantID != tenantID || level.WarehouseID != warehouseID || level.ProductID != productID {
			continue
		}
		if variantID != "" && level.VariantID != variantID {
			continue
		}
		out = append(out, level)
	}
	return out, nil
}

func (s *Store) CreateStockLevel(_ context.Context, level entities.StockLevel) (entities.StockLevel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.levels[level.StockLevelID]; exists {
		return entities.StockLevel{}, domainerrors.ErrInvalidInput
	}
	if level.RowVersion == 0 {
		level.RowVersion = 1
	}
	s.levels[level.StockLevelID] = level
	return level, nil
}

func (s *Store) ApplyMovement(ctx context.Context, input ports.ApplyMovementInput) (entities.StockLevel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	level, ok := s.levels[input.StockLevelID]
	if !ok {
		return entities.StockLevel{}, domainerrors.ErrStockLevelNotFound
	}
	if level.RowVersion != input.ExpectedVersion {
		return entities.StockLevel{}, domainerrors.ErrVersionConflict.
			WithDetail("expected", input.ExpectedVersion).
			WithDetail("actual", level.RowVersion)
	}

	at := input.Movement.OccurredAt
	if at.IsZero() {
		at = level.LastMovementAt
	}
	updated, err := entities.Apply(level, input.Delta, input.AllowNegative, at)
	if err != nil {
		return entities.StockLevel{}, err
	}

	// Commit point: nothing below may fail, so the outbox row exists iff
	// the stock mutation does.
	s.levels[input.StockLevelID] = updated
	if input.Movement.MovementID != "" {
		s.movements = append(s.movements, input.Movement)
	}
	if input.Envelope.EventID != "" {
		if _, err := s.events.Append(ctx, input.Envelope); err != nil {
			s.levels[input.StockLevelID] = level
			return entities.StockLevel{}, err
		}
		if err := s.outbox.Enqueue(ctx, input.OutboxEntry); err != nil {
			s.levels[input.StockLevelID] = level
			return entities.StockLevel{}, err
		}
	}
	return updated, nil
}

func (s *Store) AvailableForProduct(_ context.Context, tenantID, warehouseID, productID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, level := range s.levels {
		if level.TenantID == tenantID && level.WarehouseID == warehouseID && level.ProductID == productID {
			total += level.Available
		}
	}
	return total, nil
}

// Movements returns recorded movements. Test helper.
func (s *Store) Movements() []entities.Movement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.Movement, len(s.movements))
	copy(out, s.movements)
	return out
}
