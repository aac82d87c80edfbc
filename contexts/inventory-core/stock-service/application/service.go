package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"wareflow/contexts/inventory-core/stock-service/domain/entities"
	domainerrors "wareflow/contexts/inventory-core/stock-service/domain/errors"
	"wareflow/contexts/inventory-core/stock-service/ports"
	"wareflow/internal/shared/events"
	"wareflow/internal/shared/outbox"
)

// casAttempts bounds optimistic-lock retries per command.
const casAttempts = 3

const (
	EventGoodsReceived    = "Inventory.GoodsReceived"
	EventMovementRecorded = "Inventory.MovementRecorded"
)

type Service struct {
	Repo   ports.Repository
	Lots   ports.LotIntake
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

type ReceiveGoodsCommand struct {
	TenantID       string
	WarehouseID    string
	ProductID      string
	VariantID      string
	LocationID     string
	LotNumber      string
	ExpiresAt      *time.Time
	ManufacturedAt *time.Time
	Quantity       int64
	Reference      string
	CorrelationID  string
	ActorID        string
}

type MovementCommand struct {
	TenantID      string
	WarehouseID   string
	ProductID     string
	VariantID     string
	LocationID    string
	LotID         string
	Type          entities.MovementType
	Quantity      int64
	Reference     string
	CorrelationID string
	ActorID       string
}

type MovementResult struct {
	StockLevel entities.StockLevel
	MovementID string
	EventID    string
}

// ReceiveGoods books inbound quantity onto a stock level, creating the level
// (and lot master data) on first receipt. The GoodsReceived envelope and its
// outbox row commit with the stock mutation.
func (s Service) ReceiveGoods(ctx context.Context, cmd ReceiveGoodsCommand) (MovementResult, error) {
	if cmd.TenantID == "" || cmd.WarehouseID == "" || cmd.ProductID == "" || cmd.LocationID == "" || cmd.Quantity <= 0 {
		return MovementResult{}, domainerrors.ErrInvalidInput
	}

	lotID := ""
	if strings.TrimSpace(cmd.LotNumber) != "" {
		var err error
		lotID, err = s.Lots.EnsureLot(ctx, ports.EnsureLotInput{
			TenantID:       cmd.TenantID,
			ProductID:      cmd.ProductID,
			LotNumber:      strings.TrimSpace(cmd.LotNumber),
			ExpiresAt:      cmd.ExpiresAt,
			ManufacturedAt: cmd.ManufacturedAt,
			ReceivedAt:     s.Clock.Now().UTC(),
		})
		if err != nil {
			return MovementResult{}, err
		}
	}

	key := entities.StockKey{
		TenantID:    cmd.TenantID,
		WarehouseID: cmd.WarehouseID,
		ProductID:   cmd.ProductID,
		VariantID:   cmd.VariantID,
		LocationID:  cmd.LocationID,
		LotID:       lotID,
	}
	level, found, err := s.Repo.FindStockLevel(ctx, key)
	if err != nil {
		return MovementResult{}, err
	}
	if !found {
		level, err = s.Repo.CreateStockLevel(ctx, entities.StockLevel{
			StockLevelID:   s.IDGen.NewID(),
			TenantID:       key.TenantID,
			WarehouseID:    key.WarehouseID,
			ProductID:      key.ProductID,
			VariantID:      key.VariantID,
			LocationID:     key.LocationID,
			LotID:          key.LotID,
			RowVersion:     1,
			LastMovementAt: s.Clock.Now().UTC(),
		})
		if err != nil {
			return MovementResult{}, err
		}
	}

	payload := map[string]any{
		"product_id":   cmd.ProductID,
		"variant_id":   cmd.VariantID,
		"warehouse_id": cmd.WarehouseID,
		"location_id":  cmd.LocationID,
		"lot_id":       lotID,
		"lot_number":   strings.TrimSpace(cmd.LotNumber),
		"quantity":     cmd.Quantity,
		"reference":    cmd.Reference,
	}
	return s.applyWithEvent(ctx, level.TenantID, level.StockLevelID, applySpec{
		Delta:         entities.Delta{OnHand: cmd.Quantity},
		MovementType:  entities.MovementReceipt,
		Quantity:      cmd.Quantity,
		Reference:     cmd.Reference,
		EventType:     EventGoodsReceived,
		Payload:       payload,
		CorrelationID: cmd.CorrelationID,
		ActorID:       cmd.ActorID,
	})
}

// RecordMovement books an outbound ship or a signed adjustment against an
// existing stock level and emits MovementRecorded.
func (s Service) RecordMovement(ctx context.Context, cmd MovementCommand) (MovementResult, error) {
	if cmd.TenantID == "" || cmd.WarehouseID == "" || cmd.ProductID == "" || cmd.LocationID == "" || cmd.Quantity == 0 {
		return MovementResult{}, domainerrors.ErrInvalidInput
	}

	var delta entities.Delta
	switch cmd.Type {
	case entities.MovementShip:
		if cmd.Quantity < 0 {
			return MovementResult{}, domainerrors.ErrInvalidInput
		}
		delta = entities.Delta{OnHand: -cmd.Quantity, Reserved: -cmd.Quantity}
	case entities.MovementAdjustment:
		delta = entities.Delta{OnHand: cmd.Quantity}
	default:
		return MovementResult{}, domainerrors.ErrInvalidInput
	}

	key := entities.StockKey{
		TenantID:    cmd.TenantID,
		WarehouseID: cmd.WarehouseID,
		ProductID:   cmd.ProductID,
		VariantID:   cmd.VariantID,
		LocationID:  cmd.LocationID,
		LotID:       cmd.LotID,
	}
	level, found, err := s.Repo.FindStockLevel(ctx, key)
	if err != nil {
		return MovementResult{}, err
	}
	if !found {
		return MovementResult{}, domainerrors.ErrStockLevelNotFound
	}

	quantity := cmd.Quantity
	if quantity < 0 {
		quantity = -quantity
	}
	return s.applyWithEvent(ctx, cmd.TenantID, level.StockLevelID, applySpec{
		Delta:         delta,
		MovementType:  cmd.Type,
		Quantity:      quantity,
		Reference:     cmd.Reference,
		EventType:     EventMovementRecorded,
		CorrelationID: cmd.CorrelationID,
		ActorID:       cmd.ActorID,
	})
}

func (s Service) GetStockLevel(ctx context.Context, tenantID, stockLevelID string) (entities.StockLevel, error) {
	if tenantID == "" || stockLevelID == "" {
		return entities.StockLevel{}, domainerrors.ErrInvalidInput
	}
	return s.Repo.GetStockLevel(ctx, tenantID, stockLevelID)
}

// Availability sums available quantity across every stock level of the
// product in the warehouse.
func (s Service) Availability(ctx context.Context, tenantID, warehouseID, productID string) (int64, error) {
	if tenantID == "" || warehouseID == "" || productID == "" {
		return 0, domainerrors.ErrInvalidInput
	}
	return s.Repo.AvailableForProduct(ctx, tenantID, warehouseID, productID)
}

// Reserve adds to the reserved total of a stock level on behalf of the
// allocation service. The caller has already validated availability through
// the allocator; the guard here protects against racing reservations.
func (s Service) Reserve(ctx context.Context, tenantID, stockLevelID string, quantity int64) (entities.StockLevel, error) {
	if quantity <= 0 {
		return entities.StockLevel{}, domainerrors.ErrInvalidInput
	}
	return s.mutate(ctx, tenantID, stockLevelID, func(level entities.StockLevel) (ports.ApplyMovementInput, error) {
		if level.Available < quantity {
			return ports.ApplyMovementInput{}, domainerrors.ErrInsufficientStock.
				WithDetail("stock_level_id", stockLevelID).
				WithDetail("available", level.Available).
				WithDetail("requested", quantity)
		}
		return ports.ApplyMovementInput{
			StockLevelID:    level.StockLevelID,
			ExpectedVersion: level.RowVersion,
			Delta:           entities.Delta{Reserved: quantity},
		}, nil
	})
}

// Release subtracts from the reserved total, e.g. on reservation cancel.
func (s Service) Release(ctx context.Context, tenantID, stockLevelID string, quantity int64) (entities.StockLevel, error) {
	if quantity <= 0 {
		return entities.StockLevel{}, domainerrors.ErrInvalidInput
	}
	return s.mutate(ctx, tenantID, stockLevelID, func(level entities.StockLevel) (ports.ApplyMovementInput, error) {
		return ports.ApplyMovementInput{
			StockLevelID:    level.StockLevelID,
			ExpectedVersion: level.RowVersion,
			Delta:           entities.Delta{Reserved: -quantity},
		}, nil
	})
}

type applySpec struct {
	Delta         entities.Delta
	MovementType  entities.MovementType
	Quantity      int64
	Reference     string
	EventType     string
	Payload       map[string]any
	CorrelationID string
	ActorID       string
}

func (s Service) applyWithEvent(ctx context.Context, tenantID, stockLevelID string, spec applySpec) (MovementResult, error) {
	var result MovementResult
	_, err := s.mutate(ctx, tenantID, stockLevelID, func(level entities.StockLevel) (ports.ApplyMovementInput, error) {
		now := s.Clock.Now().UTC()
		movement := entities.Movement{
			MovementID:   s.IDGen.NewID(),
			TenantID:     level.TenantID,
			WarehouseID:  level.WarehouseID,
			StockLevelID: level.StockLevelID,
			ProductID:    level.ProductID,
			VariantID:    level.VariantID,
			LocationID:   level.LocationID,
			LotID:        level.LotID,
			Type:         spec.MovementType,
			Quantity:     spec.Quantity,
			Reference:    spec.Reference,
			OccurredAt:   now,
		}

		projected, err := entities.Apply(level, spec.Delta, false, now)
		if err != nil {
			return ports.ApplyMovementInput{}, err
		}

		payload := spec.Payload
		if payload == nil {
			payload = map[string]any{}
		}
		payload["movement_id"] = movement.MovementID
		payload["movement_type"] = string(spec.MovementType)
		payload["stock_level_id"] = level.StockLevelID
		payload["product_id"] = level.ProductID
		payload["location_id"] = level.LocationID
		payload["lot_id"] = level.LotID
		payload["quantity"] = spec.Quantity
		payload["on_hand_after"] = projected.OnHand
		payload["available_after"] = projected.Available

		env, err := events.New(spec.EventType, payload, events.Context{
			CorrelationID: spec.CorrelationID,
			Actor:         events.Actor{Type: events.ActorUser, ID: spec.ActorID},
			TenantID:      level.TenantID,
			WarehouseID:   level.WarehouseID,
		}, now)
		if err != nil {
			return ports.ApplyMovementInput{}, err
		}
		entry, err := outbox.NewEntry(env, "", now)
		if err != nil {
			return ports.ApplyMovementInput{}, err
		}

		result.MovementID = movement.MovementID
		result.EventID = env.EventID
		return ports.ApplyMovementInput{
			StockLevelID:    level.StockLevelID,
			ExpectedVersion: level.RowVersion,
			Delta:           spec.Delta,
			Movement:        movement,
			Envelope:        env,
			OutboxEntry:     entry,
		}, nil
	})
	if err != nil {
		return MovementResult{}, err
	}
	level, err := s.Repo.GetStockLevel(ctx, tenantID, stockLevelID)
	if err != nil {
		return MovementResult{}, err
	}
	result.StockLevel = level
	return result, nil
}

// mutate runs the read-build-CAS cycle, retrying a bounded number of times
// when another writer won the row version race.
func (s Service) mutate(
	ctx context.Context,
	tenantID, stockLevelID string,
	build func(level entities.StockLevel) (ports.ApplyMovementInput, error),
) (entities.StockLevel, error) {
	var lastErr error
	for attempt := 0; attempt < casAttempts; attempt++ {
		level, err := s.Repo.GetStockLevel(ctx, tenantID, stockLevelID)
		if err != nil {
			return entities.StockLevel{}, err
		}
		input, err := build(level)
		if err != nil {
			return entities.StockLevel{}, err
		}
		updated, err := s.Repo.ApplyMovement(ctx, input)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, domainerrors.ErrVersionConflict) {
			return entities.StockLevel{}, err
		}
		lastErr = err
		resolveLogger(s.Logger).Debug("stock version conflict, retrying",
			"event", "stock_cas_retry",
			"module", "inventory-core/stock-service",
			"layer", "application",
			"stock_level_id", stockLevelID,
			"attempt", attempt+1,
		)
	}
	return entities.StockLevel{}, lastErr
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
