package faults

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIsMatchesOnCodeAcrossWrapLayers(t *testing.T) {
	sentinel := New(KindNotFound, CodeNotFound, "order not found")
	wrapped := fmt.Errorf("load order: %w", sentinel.WithDetail("order_id", "o-1"))
	if !errors.Is(wrapped, sentinel) {
		t.Fatalf("expected wrapped fault to match its sentinel")
	}
	other := New(KindConflict, CodeIdempotencyConflict, "conflict")
	if errors.Is(wrapped, other) {
		t.Fatalf("faults with different codes must not match")
	}
}

func TestWithDetailDoesNotMutateSentinel(t *testing.T) {
	sentinel := New(KindValidation, CodeValidationFailed, "bad input")
	detailed := sentinel.WithDetail("field", "quantity")
	if len(sentinel.Details) != 0 {
		t.Fatalf("sentinel must stay detail-free, got %v", sentinel.Details)
	}
	if detailed.Details["field"] != "quantity" {
		t.Fatalf("expected detail on clone, got %v", detailed.Details)
	}
}

func TestWrapUnwrapsToCause(t *testing.T) {
	cause := errors.New("connection refused")
	fault := Wrap(KindTransient, CodeDownstreamUnavailable, "broker unreachable", cause)
	if !errors.Is(fault, cause) {
		t.Fatalf("expected fault to unwrap to its cause")
	}
}

func TestKindOfDefaultsToInternal(t *testing.T) {
	if got := KindOf(errors.New("anything")); got != KindInternal {
		t.Fatalf("expected KindInternal for plain errors, got %v", got)
	}
	if got := KindOf(New(KindOptimisticLock, CodeOptimisticLockLost, "lost")); got != KindOptimisticLock {
		t.Fatalf("expected KindOptimisticLock, got %v", got)
	}
}

func TestRetriable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{New(KindOptimisticLock, CodeOptimisticLockLost, "lost"), true},
		{New(KindTransient, CodeDownstreamUnavailable, "down"), true},
		{errors.New("unknown"), true},
		{New(KindValidation, CodeValidationFailed, "bad"), false},
		{New(KindConflict, CodeInsufficientStock, "short"), false},
		{New(KindNotFound, CodeNotFound, "gone"), false},
	}
	for _, tc := range cases {
		if got := Retriable(tc.err); got != tc.want {
			t.Fatalf("Retriable(%v): expected %v, got %v", tc.err, tc.want, got)
		}
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{New(KindValidation, CodeValidationFailed, "bad"), http.StatusBadRequest},
		{New(KindNotFound, CodeNotFound, "gone"), http.StatusNotFound},
		{New(KindConflict, CodeInsufficientStock, "short"), http.StatusConflict},
		{New(KindOptimisticLock, CodeOptimisticLockLost, "lost"), http.StatusConflict},
		{New(KindTransient, CodeDownstreamUnavailable, "down"), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Fatalf("HTTPStatus(%v): expected %d, got %d", tc.err, tc.want, got)
		}
	}
}
