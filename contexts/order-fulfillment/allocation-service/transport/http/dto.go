// Package http holds the wire DTOs of the allocation service's order
// endpoints.
package http

import (
	"time"

	"wareflow/contexts/order-fulfillment/allocation-service/domain/entities"
)

type PlaceOrderRequest struct {
	WarehouseID string             `json:"warehouse_id"`
	Reference   string             `json:"reference,omitempty"`
	Lines       []OrderLineRequest `json:"lines"`
}

type OrderLineRequest struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int64  `json:"quantity"`
}

type OrderLineDTO struct {
	LineNo    int    `json:"line_no"`
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int64  `json:"quantity"`
}

type OrderResponse struct {
	OrderID     string         `json:"order_id"`
	WarehouseID string         `json:"warehouse_id"`
	Reference   string         `json:"reference,omitempty"`
	Status      string         `json:"status"`
	Lines       []OrderLineDTO `json:"lines"`
	PlacedAt    time.Time      `json:"placed_at"`
	EventID     string         `json:"event_id,omitempty"`
}

type ReservationDTO struct {
	ReservationID string `json:"reservation_id"`
	ProductID     string `json:"product_id"`
	VariantID     string `json:"variant_id,omitempty"`
	StockLevelID  string `json:"stock_level_id"`
	LotID         string `json:"lot_id,omitempty"`
	Quantity      int64  `json:"quantity"`
	Remaining     int64  `json:"remaining"`
	ReferenceLine int    `json:"reference_line"`
	Status        string `json:"status"`
}

type ListReservationsResponse struct {
	OrderID      string           `json:"order_id"`
	Reservations []ReservationDTO `json:"reservations"`
}

func NewOrderResponse(order entities.SalesOrder, eventID string) OrderResponse {
	lines := make([]OrderLineDTO, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, OrderLineDTO{
			LineNo:    line.LineNo,
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
		})
	}
	return OrderResponse{
		OrderID:     order.OrderID,
		WarehouseID: order.WarehouseID,
		Reference:   order.Reference,
		Status:      string(order.Status),
		Lines:       lines,
		PlacedAt:    order.PlacedAt,
		EventID:     eventID,
	}
}

func NewReservationDTO(reservation entities.Reservation) ReservationDTO {
	return ReservationDTO{
		ReservationID: reservation.ReservationID,
		ProductID:     reservation.ProductID,
		VariantID:     reservation.VariantID,
		StockLevelID:  reservation.StockLevelID,
		LotID:         reservation.LotID,
		Quantity:      reservation.Quantity,
		Remaining:     reservation.Remaining(),
		ReferenceLine: reservation.ReferenceLine,
		Status:        string(reservation.Status),
	}
}
