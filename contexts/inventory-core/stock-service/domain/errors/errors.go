package errors

import (
	"wareflow/internal/shared/faults"
)

var (
	ErrInvalidInput       = faults.New(faults.KindValidation, faults.CodeValidationFailed, "stock command input is invalid")
	ErrStockLevelNotFound = faults.New(faults.KindNotFound, faults.CodeNotFound, "stock level not found")
	ErrVersionConflict    = faults.New(faults.KindOptimisticLock, faults.CodeOptimisticLockLost, "stock level row version conflict")
	ErrInsufficientStock  = faults.New(faults.KindConflict, faults.CodeInsufficientStock, "not enough available stock")
)
