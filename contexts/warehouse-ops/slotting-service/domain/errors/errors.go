package errors

import (
	"wareflow/internal/shared/faults"
)

var (
	ErrInvalidInput     = faults.New(faults.KindValidation, faults.CodeValidationFailed, "slotting command input is invalid")
	ErrLocationNotFound = faults.New(faults.KindNotFound, faults.CodeNotFound, "location not found")
)
