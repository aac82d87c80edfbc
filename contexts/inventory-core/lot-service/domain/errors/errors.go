package errors

import (
	"wareflow/internal/shared/faults"
)

var (
	ErrInvalidInput   = faults.New(faults.KindValidation, faults.CodeValidationFailed, "lot command input is invalid")
	ErrLotNotFound    = faults.New(faults.KindNotFound, faults.CodeNotFound, "lot not found")
	ErrLotNotPickable = faults.New(faults.KindConflict, faults.CodeLotNotPickable, "lot status does not permit picking")
	ErrStatusConflict = faults.New(faults.KindOptimisticLock, faults.CodeOptimisticLockLost, "lot status changed concurrently")
)
