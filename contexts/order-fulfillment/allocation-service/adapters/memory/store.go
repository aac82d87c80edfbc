package memory

import (
	"context"
	"sync"
	"time"

	"wareflow/contexts/order-fulfillment/allocation-service/domain/entities"
	domainerrors "wareflow/contexts/order-fulfillment/allocation-service/domain/errors"
	"wareflow/contexts/order-fulfillment/allocation-service/ports"
	"wareflow/internal/shared/eventstore"
	"wareflow/internal/shared/outbox"
)

type reservationKey struct {
	tenantID      string
	referenceType string
	referenceID   string
	referenceLine int
	stockLevelID  string
}

type Store struct {
	mu           sync.RWMutex
	orders       map[string]entities.SalesOrder
	reservations map[string]entities.Reservation
	byKey        map[reservationKey]string
	events       *eventstore.MemoryStore
	outbox       *outbox.MemoryStore
}

func NewStore(events *eventstore.MemoryStore, ob *outbox.MemoryStore) *Store {
	return &Store{
		orders:       make(map[string]entities.SalesOrder),
		reservations: make(map[string]entities.Reservation),
		byKey:        make(map[reservationKey]string),
		events:       events,
		outbox:       ob,
	}
}

func (s *Store) CreateOrder(ctx context.Context, input ports.CreateOrderInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orders[input.Order.OrderID]; exists {
		return domainerrors.ErrDuplicateOrder
	}
	if _, err := s.events.Append(ctx, input.Envelope); err != nil {
		return err
	}
	if err := s.outbox.Enqueue(ctx, input.OutboxEntry); err != nil {
		return err
	}
	s.orders[input.Order.OrderID] = input.Order
	return nil
}

func (s *Store) GetOrder(_ context.Context, tenantID, orderID string) (entities.SalesOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[orderID]
	if !ok || order.TenantID != tenantID {
		return entities.SalesOrder{}, domainerrors.ErrOrderNotFound
	}
	return order, nil
}

func (s *Store) UpdateStatus(_ context.Context, tenantID, orderID string, status entities.OrderStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok || order.TenantID != tenantID {
		return domainerrors.ErrOrderNotFound
	}
	order.Status = status
	order.UpdatedAt = at.UTC()
	s.orders[orderID] = order
	return nil
}

func (s *Store) Create(_ context.Context, reservation entities.Reservation) (entities.Reservation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := reservationKey{
		tenantID:      reservation.TenantID,
		referenceType: reservation.ReferenceType,
		referenceID:   reservation.ReferenceID,
		referenceLine: reservation.ReferenceLine,
		stockLevelID:  reservation.StockLevelID,
	}
	if existingID, ok := s.byKey[key]; ok {
		return s.reservations[existingID], false, nil
	}
	s.reservations[reservation.ReservationID] = reservation
	s.byKey[key] = reservation.ReservationID
	return reservation, true, nil
}

func (s *Store) ListByReference(_ context.Context, tenantID, referenceType, referenceID string) ([]entities.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.Reservation
	for _, reservation := range s.reservations {
		if reservation.TenantID == tenantID &&
			reservation.ReferenceType == referenceType &&
			reservation.ReferenceID == referenceID {
			out = append(out, reservation)
		}
	}
	return out, nil
}

func (s *Store) Get(_ context.Context, tenantID, reservationID string) (entities.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reservation, ok := s.reservations[reservationID]
	if !ok || reservation.TenantID != tenantID {
		return entities.Reservation{}, domainerrors.ErrReservationNotFound
	}
	return reservation, nil
}

func (s *Store) Update(_ context.Context, reservation entities.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reservations[reservation.ReservationID]; !ok {
		return domainerrors.ErrReservationNotFound
	}
	s.reservations[reservation.ReservationID] = reservation
	return nil
}
