// Package httpserver is the thin command-and-query front end. Handlers
// decode DTOs, resolve tenancy from headers, call module services, and shape
// faults into the shared error body.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	productservice "wareflow/contexts/inventory-core/product-service"
	stockservice "wareflow/contexts/inventory-core/stock-service"
	allocationservice "wareflow/contexts/order-fulfillment/allocation-service"
	directoryservice "wareflow/contexts/warehouse-ops/directory-service"
	slottingservice "wareflow/contexts/warehouse-ops/slotting-service"
	"wareflow/internal/shared/faults"
	"wareflow/internal/shared/outbox"
)

const (
	HeaderTenantID      = "X-Tenant-Id"
	HeaderCorrelationID = "X-Correlation-Id"
	HeaderUserID        = "X-User-Id"
)

type Server struct {
	mux    *http.ServeMux
	srv    *http.Server
	logger *slog.Logger
	addr   string

	stock      stockservice.Module
	allocation allocationservice.Module
	slotting   slottingservice.Module
	products   productservice.Module
	directory  directoryservice.Module
	outbox     outbox.Store
}

func New(
	stock stockservice.Module,
	allocation allocationservice.Module,
	slotting slottingservice.Module,
	products productservice.Module,
	directory directoryservice.Module,
	outboxStore outbox.Store,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		addr:       addr,
		stock:      stock,
		allocation: allocation,
		slotting:   slotting,
		products:   products,
		directory:  directory,
		outbox:     outboxStore,
	}
	s.registerRoutes()
	s.srv = &http.Server{Addr: addr, Handler: s.mux}
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("POST /api/inventory/v1/receipts", s.handleReceiveGoods)
	s.mux.HandleFunc("POST /api/inventory/v1/movements", s.handleRecordMovement)
	s.mux.HandleFunc("GET /api/inventory/v1/stock-levels/{stock_level_id}", s.handleGetStockLevel)
	s.mux.HandleFunc("GET /api/inventory/v1/availability", s.handleAvailability)

	s.mux.HandleFunc("POST /api/orders/v1/orders", s.handlePlaceOrder)
	s.mux.HandleFunc("GET /api/orders/v1/orders/{order_id}", s.handleGetOrder)
	s.mux.HandleFunc("GET /api/orders/v1/orders/{order_id}/reservations", s.handleListReservations)

	s.mux.HandleFunc("POST /api/slotting/v1/suggestions", s.handleSuggestSlots)
	s.mux.HandleFunc("PUT /api/slotting/v1/locations", s.handleUpsertLocation)

	s.mux.HandleFunc("PUT /api/products/v1/products", s.handleUpsertProduct)
	s.mux.HandleFunc("GET /api/products/v1/products/{product_id}", s.handleGetProduct)

	s.mux.HandleFunc("PUT /api/directory/v1/tenants", s.handleRegisterTenant)
	s.mux.HandleFunc("PUT /api/directory/v1/warehouses", s.handleRegisterWarehouse)

	s.mux.HandleFunc("GET /api/admin/v1/outbox/pending", s.handleOutboxPending)
	s.mux.HandleFunc("POST /api/admin/v1/outbox/{outbox_id}/requeue", s.handleOutboxRequeue)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// errorBody is the uniform error shape of every endpoint.
type errorBody struct {
	ErrorCode     string         `json:"error_code"`
	Message       string         `json:"message"`
	Details       map[string]any `json:"details,omitempty"`
	Retriable     bool           `json:"retriable"`
	HTTPStatus    int            `json:"http_status"`
	CorrelationID string         `json:"correlation_id"`
	Timestamp     time.Time      `json:"timestamp"`
}

func (s *Server) writeFault(w http.ResponseWriter, correlationID string, err error) {
	status := faults.HTTPStatus(err)
	body := errorBody{
		ErrorCode:     faults.CodeOf(err),
		Message:       err.Error(),
		Retriable:     faults.Retriable(err),
		HTTPStatus:    status,
		CorrelationID: correlationID,
		Timestamp:     time.Now().UTC(),
	}
	var fault *faults.Fault
	if errors.As(err, &fault) {
		body.Details = fault.Details
	}
	if status >= http.StatusInternalServerError {
		body.Message = "internal server error"
		s.logger.Error("request failed",
			"event", "http_request_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"correlation_id", correlationID,
			"error", err.Error(),
		)
	}
	writeJSON(w, status, body)
}

func (s *Server) writeBadRequest(w http.ResponseWriter, correlationID, message string) {
	writeJSON(w, http.StatusBadRequest, errorBody{
		ErrorCode:     faults.CodeValidationFailed,
		Message:       message,
		Retriable:     false,
		HTTPStatus:    http.StatusBadRequest,
		CorrelationID: correlationID,
		Timestamp:     time.Now().UTC(),
	})
}

// tenantContext resolves tenancy and correlation from headers. A missing
// tenant fails the request before any handler work.
func (s *Server) tenantContext(w http.ResponseWriter, r *http.Request) (tenantID, correlationID string, ok bool) {
	correlationID = strings.TrimSpace(r.Header.Get(HeaderCorrelationID))
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	tenantID = strings.TrimSpace(r.Header.Get(HeaderTenantID))
	if tenantID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{
			ErrorCode:     faults.CodeMissingTenant,
			Message:       HeaderTenantID + " header is required",
			Retriable:     false,
			HTTPStatus:    http.StatusBadRequest,
			CorrelationID: correlationID,
			Timestamp:     time.Now().UTC(),
		})
		return "", correlationID, false
	}
	return tenantID, correlationID, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, into any) error {
	return json.NewDecoder(r.Body).Decode(into)
}
