package httpserver

import (
	"net/http"

	"wareflow/contexts/order-fulfillment/allocation-service/application"
	allochttp "wareflow/contexts/order-fulfillment/allocation-service/transport/http"
)

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	tenantID, correlationID, ok := s.tenantContext(w, r)
	if !ok {
		return
	}

	var req allochttp.PlaceOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeBadRequest(w, correlationID, "request body must be valid JSON")
		return
	}

	lines := make([]application.PlaceOrderLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, application.PlaceOrderLine{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
		})
	}

	result, err := s.allocation.Service.PlaceOrder(r.Context(), application.PlaceOrderCommand{
		TenantID:      tenantID,
		WarehouseID:   req.WarehouseID,
		Reference:     req.Reference,
		Lines:         lines,
		CorrelationID: correlationID,
		ActorID:       r.Header.Get(HeaderUserID),
	})
	if err != nil {
		s.writeFault(w, correlationID, err)
		return
	}
	writeJSON(w, http.StatusCreated, allochttp.NewOrderResponse(result.Order, result.EventID))
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	tenantID, correlationID, ok := s.tenantContext(w, r)
	if !ok {
		return
	}

	order, err := s.allocation.Service.GetOrder(r.Context(), tenantID, r.PathValue("order_id"))
	if err != nil {
		s.writeFault(w, correlationID, err)
		return
	}
	writeJSON(w, http.StatusOK, allochttp.NewOrderResponse(order, ""))
}

func (s *Server) handleListReservations(w http.ResponseWriter, r *http.Request) {
	tenantID, correlationID, ok := s.tenantContext(w, r)
	if !ok {
		return
	}

	orderID := r.PathValue("order_id")
	reservations, err := s.allocation.Service.ListReservations(r.Context(), tenantID, orderID)
	if err != nil {
		s.writeFault(w, correlationID, err)
		return
	}

	out := make([]allochttp.ReservationDTO, 0, len(reservations))
	for _, reservation := range reservations {
		out = append(out, allochttp.NewReservationDTO(reservation))
	}
	writeJSON(w, http.StatusOK, allochttp.ListReservationsResponse{
		OrderID:      orderID,
		Reservations: out,
	})
}
