package entities

import (
	"time"
)

type OrderStatus string

const (
	OrderPlaced         OrderStatus = "PLACED"
	OrderFullyAllocated OrderStatus = "FULLY_ALLOCATED"
	OrderPartial        OrderStatus = "PARTIALLY_ALLOCATED"
	OrderCancelled      OrderStatus = "CANCELLED"
)

type OrderLine struct {
	LineNo    int
	ProductID string
	VariantID string
	Quantity  int64
}

// SalesOrder is the demand document the reservation agent allocates against.
type SalesOrder struct {
	OrderID     string
	TenantID    string
	WarehouseID string
	Reference   string
	Status      OrderStatus
	Lines       []OrderLine
	PlacedAt    time.Time
	UpdatedAt   time.Time
}
