package faults

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind buckets an error for retry and HTTP mapping decisions.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindOptimisticLock
	KindTransient
)

// Stable error codes surfaced in envelopes, logs, and HTTP error bodies.
const (
	CodeValidationFailed      = "VALIDATION_FAILED"
	CodeMissingTenant         = "MISSING_TENANT_CONTEXT"
	CodeOptimisticLockLost    = "OPTIMISTIC_LOCK_CONFLICT"
	CodeNegativeStockBlocked  = "NEGATIVE_STOCK_BLOCKED"
	CodeInsufficientStock     = "INSUFFICIENT_STOCK"
	CodeIdempotencyConflict   = "IDEMPOTENCY_CONFLICT"
	CodeLotNotPickable        = "LOT_NOT_PICKABLE"
	CodeNotFound              = "NOT_FOUND"
	CodeDownstreamUnavailable = "DOWNSTREAM_UNAVAILABLE"
	CodeInternal              = "INTERNAL_ERROR"
)

// Fault is the shared error value all services layer their sentinels on.
type Fault struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
	cause   error
}

func New(kind Kind, code, message string) *Fault {
	return &Fault{Kind: kind, Code: code, Message: message}
}

func Wrap(kind Kind, code, message string, cause error) *Fault {
	return &Fault{Kind: kind, Code: code, Message: message, cause: cause}
}

func (f *Fault) Error() string {
	if f.cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.Code, f.Message, f.cause)
	}
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

func (f *Fault) Unwrap() error { return f.cause }

// Is matches on code so sentinel faults compare across wrap layers.
func (f *Fault) Is(target error) bool {
	var other *Fault
	if !errors.As(target, &other) {
		return false
	}
	return f.Code == other.Code
}

func (f *Fault) WithDetail(key string, value any) *Fault {
	clone := *f
	clone.Details = make(map[string]any, len(f.Details)+1)
	for k, v := range f.Details {
		clone.Details[k] = v
	}
	clone.Details[key] = value
	return &clone
}

// KindOf reports the fault kind, defaulting unknown errors to internal.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindInternal
}

func CodeOf(err error) string {
	var f *Fault
	if errors.As(err, &f) {
		return f.Code
	}
	return CodeInternal
}

// Retriable reports whether a caller should retry the failed operation.
// Only CAS conflicts, downstream transients, and unknown internals retry.
func Retriable(err error) bool {
	switch KindOf(err) {
	case KindOptimisticLock, KindTransient, KindInternal:
		return true
	default:
		return false
	}
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindOptimisticLock:
		return http.StatusConflict
	case KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
