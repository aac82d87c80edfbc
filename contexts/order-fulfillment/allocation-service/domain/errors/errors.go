package errors

import (
	"wareflow/internal/shared/faults"
)

var (
	ErrInvalidInput        = faults.New(faults.KindValidation, faults.CodeValidationFailed, "order command input is invalid")
	ErrOrderNotFound       = faults.New(faults.KindNotFound, faults.CodeNotFound, "sales order not found")
	ErrReservationNotFound = faults.New(faults.KindNotFound, faults.CodeNotFound, "reservation not found")
	ErrDuplicateOrder      = faults.New(faults.KindConflict, faults.CodeIdempotencyConflict, "sales order already placed")
	ErrReservationDupe     = faults.New(faults.KindConflict, faults.CodeIdempotencyConflict, "reservation already exists for the order line and stock level")
)
