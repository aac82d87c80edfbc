package errors

import (
	"wareflow/internal/shared/faults"
)

var (
	ErrInvalidInput   = faults.New(faults.KindValidation, faults.CodeValidationFailed, "directory command input is invalid")
	ErrTenantNotFound = faults.New(faults.KindNotFound, faults.CodeNotFound, "tenant not found")
)
