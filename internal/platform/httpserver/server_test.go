package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	lotservice "wareflow/contexts/inventory-core/lot-service"
	productservice "wareflow/contexts/inventory-core/product-service"
	stockservice "wareflow/contexts/inventory-core/stock-service"
	allocationservice "wareflow/contexts/order-fulfillment/allocation-service"
	directoryservice "wareflow/contexts/warehouse-ops/directory-service"
	slottingservice "wareflow/contexts/warehouse-ops/slotting-service"
	"wareflow/internal/shared/eventstore"
	"wareflow/internal/shared/faults"
	"wareflow/internal/shared/outbox"
)

var (
	testTenant    = "0b9f2a44-1c6e-4f4b-9a17-3d2f8e5c6a01"
	testWarehouse = "7c1d5e90-2b3a-4c8d-8e6f-1a2b3c4d5e02"
)

type harness struct {
	server *Server
	outbox *outbox.MemoryStore
}

func newHarness() harness {
	events := eventstore.NewMemoryStore()
	ob := outbox.NewMemoryStore()

	lots := lotservice.NewInMemoryModule(nil)
	products := productservice.NewInMemoryModule(nil, nil)
	stock := stockservice.NewInMemoryModule(events, ob, lots.Service, products.Service, nil)
	slotting := slottingservice.NewInMemoryModule(nil, products.Service, nil)
	allocation := allocationservice.NewInMemoryModule(events, ob, stock.Repo, lots.Repo, stock.Service, nil)
	directory := directoryservice.NewInMemoryModule(nil, nil, nil)

	server := New(stock, allocation, slotting, products, directory, ob, nil, ":0")
	return harness{server: server, outbox: ob}
}

func (h harness) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.server.mux.ServeHTTP(rec, req)
	return rec
}

func tenantHeaders() map[string]string {
	return map[string]string{HeaderTenantID: testTenant}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(into); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := newHarness()
	rec := h.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestMissingTenantHeaderRejected(t *testing.T) {
	h := newHarness()
	rec := h.do(t, http.MethodPost, "/api/inventory/v1/receipts", `{}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body errorBody
	decodeBody(t, rec, &body)
	if body.ErrorCode != faults.CodeMissingTenant {
		t.Fatalf("expected %s, got %s", faults.CodeMissingTenant, body.ErrorCode)
	}
	if body.CorrelationID == "" {
		t.Fatalf("expected generated correlation id")
	}
	if body.Retriable {
		t.Fatalf("missing tenant must not be retriable")
	}
}

func TestCorrelationIDEchoedInErrorBody(t *testing.T) {
	h := newHarness()
	headers := tenantHeaders()
	headers[HeaderCorrelationID] = "corr-123"
	rec := h.do(t, http.MethodGet, "/api/products/v1/products/missing", "", headers)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body errorBody
	decodeBody(t, rec, &body)
	if body.CorrelationID != "corr-123" {
		t.Fatalf("expected caller correlation id echoed, got %s", body.CorrelationID)
	}
	if body.ErrorCode != faults.CodeNotFound || body.HTTPStatus != http.StatusNotFound {
		t.Fatalf("unexpected error body: %+v", body)
	}
}

func TestReceiveGoodsAndAvailability(t *testing.T) {
	h := newHarness()
	rec := h.do(t, http.MethodPost, "/api/inventory/v1/receipts", `{
		"warehouse_id": "`+testWarehouse+`",
		"product_id": "prod-1",
		"location_id": "loc-recv",
		"quantity": 40,
		"reference": "PO-1001"
	}`, tenantHeaders())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		StockLevel struct {
			StockLevelID string `json:"stock_level_id"`
			OnHand       int64  `json:"on_hand"`
			Available    int64  `json:"available"`
		} `json:"stock_level"`
		EventID string `json:"event_id"`
	}
	decodeBody(t, rec, &created)
	if created.StockLevel.OnHand != 40 || created.StockLevel.Available != 40 {
		t.Fatalf("expected 40 on hand, got %+v", created.StockLevel)
	}
	if created.EventID == "" {
		t.Fatalf("expected event id in response")
	}

	rec = h.do(t, http.MethodGet,
		"/api/inventory/v1/availability?warehouse_id="+testWarehouse+"&product_id=prod-1",
		"", tenantHeaders())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var avail struct {
		Available int64 `json:"available"`
	}
	decodeBody(t, rec, &avail)
	if avail.Available != 40 {
		t.Fatalf("expected availability 40, got %d", avail.Available)
	}

	rec = h.do(t, http.MethodGet, "/api/inventory/v1/stock-levels/"+created.StockLevel.StockLevelID, "", tenantHeaders())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for stock level lookup, got %d", rec.Code)
	}
}

func TestReceiveGoodsRejectsMalformedBody(t *testing.T) {
	h := newHarness()
	rec := h.do(t, http.MethodPost, "/api/inventory/v1/receipts", "{broken", tenantHeaders())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body errorBody
	decodeBody(t, rec, &body)
	if body.ErrorCode != faults.CodeValidationFailed {
		t.Fatalf("expected %s, got %s", faults.CodeValidationFailed, body.ErrorCode)
	}
}

func TestOutboxAdminEndpoints(t *testing.T) {
	h := newHarness()
	rec := h.do(t, http.MethodPost, "/api/inventory/v1/receipts", `{
		"warehouse_id": "`+testWarehouse+`",
		"product_id": "prod-1",
		"location_id": "loc-recv",
		"quantity": 5
	}`, tenantHeaders())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = h.do(t, http.MethodGet, "/api/admin/v1/outbox/pending", "", tenantHeaders())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var pending struct {
		OutboxQueueSize int `json:"outbox_queue_size"`
	}
	decodeBody(t, rec, &pending)
	if pending.OutboxQueueSize != 1 {
		t.Fatalf("expected one pending entry, got %d", pending.OutboxQueueSize)
	}

	rec = h.do(t, http.MethodPost, "/api/admin/v1/outbox/missing/requeue", "", tenantHeaders())
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown entry, got %d", rec.Code)
	}
}
