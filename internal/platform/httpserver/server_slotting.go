package httpserver

import (
	"net/http"

	"wareflow/contexts/warehouse-ops/slotting-service/application"
	"wareflow/contexts/warehouse-ops/slotting-service/domain/entities"
	slottinghttp "wareflow/contexts/warehouse-ops/slotting-service/transport/http"
)

func (s *Server) handleSuggestSlots(w http.ResponseWriter, r *http.Request) {
	tenantID, correlationID, ok := s.tenantContext(w, r)
	if !ok {
		return
	}

	var req slottinghttp.SuggestRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeBadRequest(w, correlationID, "request body must be valid JSON")
		return
	}

	suggestions, err := s.slotting.Service.Suggest(r.Context(), application.SuggestRequest{
		TenantID:          tenantID,
		WarehouseID:       req.WarehouseID,
		ProductID:         req.ProductID,
		Quantity:          req.Quantity,
		PreferredZones:    req.PreferredZones,
		ExcludedLocations: req.ExcludedLocations,
	})
	if err != nil {
		s.writeFault(w, correlationID, err)
		return
	}

	out := make([]slottinghttp.SuggestionDTO, 0, len(suggestions))
	for _, suggestion := range suggestions {
		out = append(out, slottinghttp.NewSuggestionDTO(suggestion))
	}
	writeJSON(w, http.StatusOK, slottinghttp.SuggestResponse{
		ProductID:   req.ProductID,
		Suggestions: out,
	})
}

func (s *Server) handleUpsertLocation(w http.ResponseWriter, r *http.Request) {
	tenantID, correlationID, ok := s.tenantContext(w, r)
	if !ok {
		return
	}

	var req slottinghttp.UpsertLocationRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeBadRequest(w, correlationID, "request body must be valid JSON")
		return
	}

	location, err := s.slotting.Service.UpsertLocation(r.Context(), entities.Location{
		LocationID:       req.LocationID,
		TenantID:         tenantID,
		WarehouseID:      req.WarehouseID,
		Code:             req.Code,
		Zone:             req.Zone,
		Type:             entities.LocationType(req.Type),
		TemperatureZone:  req.TemperatureZone,
		HazmatCertified:  req.HazmatCertified,
		Active:           req.Active,
		UtilizationPct:   req.UtilizationPct,
		DistanceFromDock: req.DistanceFromDock,
		PickFrequency:    req.PickFrequency,
		PickSequence:     req.PickSequence,
	})
	if err != nil {
		s.writeFault(w, correlationID, err)
		return
	}
	writeJSON(w, http.StatusOK, slottinghttp.NewLocationResponse(location))
}
