package httpserver

import (
	"net/http"
	"time"

	productentities "wareflow/contexts/inventory-core/product-service/domain/entities"
	producthttp "wareflow/contexts/inventory-core/product-service/transport/http"
	directoryentities "wareflow/contexts/warehouse-ops/directory-service/domain/entities"
	directoryhttp "wareflow/contexts/warehouse-ops/directory-service/transport/http"
)

func (s *Server) handleUpsertProduct(w http.ResponseWriter, r *http.Request) {
	tenantID, correlationID, ok := s.tenantContext(w, r)
	if !ok {
		return
	}

	var req producthttp.UpsertProductRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeBadRequest(w, correlationID, "request body must be valid JSON")
		return
	}

	product, err := s.products.Service.UpsertProduct(r.Context(), productentities.Product{
		ProductID:        req.ProductID,
		TenantID:         tenantID,
		SKU:              req.SKU,
		Name:             req.Name,
		Hazmat:           req.Hazmat,
		TemperatureZone:  productentities.TemperatureZone(req.TemperatureZone),
		MinShelfLifeDays: req.MinShelfLifeDays,
		UnitPrice:        req.UnitPrice,
		DemandMean:       req.DemandMean,
		DemandStdDev:     req.DemandStdDev,
		LeadTimeMean:     req.LeadTimeMean,
		LeadTimeStdDev:   req.LeadTimeStdDev,
		ServiceLevel:     req.ServiceLevel,
		AnnualUsage:      req.AnnualUsage,
	})
	if err != nil {
		s.writeFault(w, correlationID, err)
		return
	}
	writeJSON(w, http.StatusOK, producthttp.NewProductResponse(product))
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	tenantID, correlationID, ok := s.tenantContext(w, r)
	if !ok {
		return
	}

	product, err := s.products.Service.GetProduct(r.Context(), tenantID, r.PathValue("product_id"))
	if err != nil {
		s.writeFault(w, correlationID, err)
		return
	}
	writeJSON(w, http.StatusOK, producthttp.NewProductResponse(product))
}

func (s *Server) handleRegisterTenant(w http.ResponseWriter, r *http.Request) {
	_, correlationID, ok := s.tenantContext(w, r)
	if !ok {
		return
	}

	var req directoryhttp.TenantRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeBadRequest(w, correlationID, "request body must be valid JSON")
		return
	}

	err := s.directory.Service.RegisterTenant(r.Context(), directoryentities.Tenant{
		TenantID:  req.TenantID,
		Name:      req.Name,
		Active:    req.Active,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.writeFault(w, correlationID, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleRegisterWarehouse(w http.ResponseWriter, r *http.Request) {
	tenantID, correlationID, ok := s.tenantContext(w, r)
	if !ok {
		return
	}

	var req directoryhttp.WarehouseRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeBadRequest(w, correlationID, "request body must be valid JSON")
		return
	}

	err := s.directory.Service.RegisterWarehouse(r.Context(), directoryentities.Warehouse{
		WarehouseID: req.WarehouseID,
		TenantID:    tenantID,
		Code:        req.Code,
		Name:        req.Name,
		Timezone:    req.Timezone,
		Active:      req.Active,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		s.writeFault(w, correlationID, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}
