package entities

import (
	"time"

	"wareflow/internal/shared/faults"
)

type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "ACTIVE"
	ReservationFulfilled ReservationStatus = "FULFILLED"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationExpired   ReservationStatus = "EXPIRED"
)

var ErrOverFulfilled = faults.New(faults.KindConflict, faults.CodeValidationFailed, "fulfilled quantity would exceed reservation")

// Reservation holds quantity against one stock level for one order line.
// While ACTIVE its remaining quantity counts into the stock level's
// reserved total.
type Reservation struct {
	ReservationID     string
	TenantID          string
	WarehouseID       string
	ProductID         string
	VariantID         string
	StockLevelID      string
	LotID             string
	Quantity          int64
	QuantityFulfilled int64
	ReferenceType     string
	ReferenceID       string
	ReferenceLine     int
	Status            ReservationStatus
	ExpiresAt         *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Remaining is the quantity still held against the stock level.
func (r Reservation) Remaining() int64 {
	return r.Quantity - r.QuantityFulfilled
}

// Fulfill books picked quantity; the reservation flips to FULFILLED when
// nothing remains.
func (r Reservation) Fulfill(quantity int64, now time.Time) (Reservation, error) {
	if quantity <= 0 || r.QuantityFulfilled+quantity > r.Quantity {
		return Reservation{}, ErrOverFulfilled.
			WithDetail("reservation_id", r.ReservationID).
			WithDetail("requested", quantity).
			WithDetail("remaining", r.Remaining())
	}
	r.QuantityFulfilled += quantity
	if r.QuantityFulfilled == r.Quantity {
		r.Status = ReservationFulfilled
	}
	r.UpdatedAt = now.UTC()
	return r, nil
}

func (r Reservation) Cancel(now time.Time) Reservation {
	r.Status = ReservationCancelled
	r.UpdatedAt = now.UTC()
	return r
}
