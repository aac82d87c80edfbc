package errors

import (
	"wareflow/internal/shared/faults"
)

var (
	ErrInvalidInput    = faults.New(faults.KindValidation, faults.CodeValidationFailed, "product command input is invalid")
	ErrProductNotFound = faults.New(faults.KindNotFound, faults.CodeNotFound, "product not found")
)
