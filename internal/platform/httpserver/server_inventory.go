package httpserver

import (
	"net/http"

	"wareflow/contexts/inventory-core/stock-service/application"
	"wareflow/contexts/inventory-core/stock-service/domain/entities"
	stockhttp "wareflow/contexts/inventory-core/stock-service/transport/http"
)

func (s *Server) handleReceiveGoods(w http.ResponseWriter, r *http.Request) {
	tenantID, correlationID, ok := s.tenantContext(w, r)
	if !ok {
		return
	}

	var req stockhttp.ReceiveGoodsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeBadRequest(w, correlationID, "request body must be valid JSON")
		return
	}

	result, err := s.stock.Service.ReceiveGoods(r.Context(), application.ReceiveGoodsCommand{
		TenantID:       tenantID,
		WarehouseID:    req.WarehouseID,
		ProductID:      req.ProductID,
		VariantID:      req.VariantID,
		LocationID:     req.LocationID,
		LotNumber:      req.LotNumber,
		ExpiresAt:      req.ExpiresAt,
		ManufacturedAt: req.ManufacturedAt,
		Quantity:       req.Quantity,
		Reference:      req.Reference,
		CorrelationID:  correlationID,
		ActorID:        r.Header.Get(HeaderUserID),
	})
	if err != nil {
		s.writeFault(w, correlationID, err)
		return
	}
	writeJSON(w, http.StatusCreated, stockhttp.MovementResponse{
		StockLevel: stockhttp.NewStockLevelDTO(result.StockLevel),
		MovementID: result.MovementID,
		EventID:    result.EventID,
	})
}

func (s *Server) handleRecordMovement(w http.ResponseWriter, r *http.Request) {
	tenantID, correlationID, ok := s.tenantContext(w, r)
	if !ok {
		return
	}

	var req stockhttp.MovementRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeBadRequest(w, correlationID, "request body must be valid JSON")
		return
	}

	result, err := s.stock.Service.RecordMovement(r.Context(), application.MovementCommand{
		TenantID:      tenantID,
		WarehouseID:   req.WarehouseID,
		ProductID:     req.ProductID,
		VariantID:     req.VariantID,
		LocationID:    req.LocationID,
		LotID:         req.LotID,
		Type:          entities.MovementType(req.MovementType),
		Quantity:      req.Quantity,
		Reference:     req.Reference,
		CorrelationID: correlationID,
		ActorID:       r.Header.Get(HeaderUserID),
	})
	if err != nil {
		s.writeFault(w, correlationID, err)
		return
	}
	writeJSON(w, http.StatusOK, stockhttp.MovementResponse{
		StockLevel: stockhttp.NewStockLevelDTO(result.StockLevel),
		MovementID: result.MovementID,
		EventID:    result.EventID,
	})
}

func (s *Server) handleGetStockLevel(w http.ResponseWriter, r *http.Request) {
	tenantID, correlationID, ok := s.tenantContext(w, r)
	if !ok {
		return
	}

	level, err := s.stock.Service.GetStockLevel(r.Context(), tenantID, r.PathValue("stock_level_id"))
	if err != nil {
		s.writeFault(w, correlationID, err)
		return
	}
	writeJSON(w, http.StatusOK, stockhttp.NewStockLevelDTO(level))
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	tenantID, correlationID, ok := s.tenantContext(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	warehouseID := query.Get("warehouse_id")
	productID := query.Get("product_id")

	available, err := s.stock.Service.Availability(r.Context(), tenantID, warehouseID, productID)
	if err != nil {
		s.writeFault(w, correlationID, err)
		return
	}
	writeJSON(w, http.StatusOK, stockhttp.AvailabilityResponse{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Available:   available,
	})
}
