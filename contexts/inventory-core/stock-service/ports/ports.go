package ports

import (
	"context"
	"time"

	"wareflow/contexts/inventory-core/stock-service/domain/entities"
	"wareflow/internal/shared/events"
	"wareflow/internal/shared/outbox"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for entities and movements.
type IDGenerator interface {
	NewID() string
}

// ApplyMovementInput is persisted atomically: the CAS stock update, the
// movement row, the event-store append, and the outbox row commit or abort
// together.
type ApplyMovementInput struct {
	StockLevelID    string
	ExpectedVersion int64
	Delta           entities.Delta
	AllowNegative   bool
	Movement        entities.Movement
	Envelope        events.Envelope
	OutboxEntry     outbox.Entry
}

// Repository is the write/read boundary for stock state.
type Repository interface {
	GetStockLevel(ctx context.Context, tenantID, stockLevelID string) (entities.StockLevel, error)
	FindStockLevel(ctx context.Context, key entities.StockKey) (entities.StockLevel, bool, error)
	ListByProduct(ctx context.Context, tenantID, warehouseID, productID, variantID string) ([]entities.StockLevel, error)
	// CreateStockLevel inserts a fresh row at version 1. Used on first
	// receipt into a (product, location, lot).
	CreateStockLevel(ctx context.Context, level entities.StockLevel) (entities.StockLevel, error)
	// ApplyMovement performs the version-checked mutation; it fails with a
	// retriable OPTIMISTIC_LOCK_CONFLICT fault when the version moved.
	ApplyMovement(ctx context.Context, input ApplyMovementInput) (entities.StockLevel, error)
	AvailableForProduct(ctx context.Context, tenantID, warehouseID, productID string) (int64, error)
}

// ReorderPolicy is the slice of product master data the threshold agent
// needs.
type ReorderPolicy struct {
	ProductID    string
	ReorderPoint int64
	SafetyStock  int64
}

// PolicyReader is implemented by the product service.
type PolicyReader interface {
	ReorderPolicy(ctx context.Context, tenantID, productID string) (ReorderPolicy, bool, error)
}

// LotIntake registers lot master data during goods receipt. Implemented by
// the lot service; idempotent on (tenant, product, lot number).
type LotIntake interface {
	EnsureLot(ctx context.Context, input EnsureLotInput) (string, error)
}

type EnsureLotInput struct {
	TenantID       string
	ProductID      string
	LotNumber      string
	ExpiresAt      *time.Time
	ManufacturedAt *time.Time
	ReceivedAt     time.Time
}
