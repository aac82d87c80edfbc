// Package http holds the wire DTOs of the slotting service's endpoints.
package http

import (
	"wareflow/contexts/warehouse-ops/slotting-service/domain/entities"
	"wareflow/contexts/warehouse-ops/slotting-service/domain/slotting"
)

type SuggestRequest struct {
	WarehouseID       string   `json:"warehouse_id"`
	ProductID         string   `json:"product_id"`
	Quantity          int64    `json:"quantity,omitempty"`
	PreferredZones    []string `json:"preferred_zones,omitempty"`
	ExcludedLocations []string `json:"excluded_locations,omitempty"`
}

type SuggestionDTO struct {
	LocationID string             `json:"location_id"`
	Code       string             `json:"code"`
	Zone       string             `json:"zone"`
	Score      float64            `json:"score"`
	Breakdown  map[string]float64 `json:"breakdown"`
}

type SuggestResponse struct {
	ProductID   string          `json:"product_id"`
	Suggestions []SuggestionDTO `json:"suggestions"`
}

type UpsertLocationRequest struct {
	LocationID       string  `json:"location_id"`
	WarehouseID      string  `json:"warehouse_id"`
	Code             string  `json:"code"`
	Zone             string  `json:"zone,omitempty"`
	Type             string  `json:"type"`
	TemperatureZone  string  `json:"temperature_zone,omitempty"`
	HazmatCertified  bool    `json:"hazmat_certified,omitempty"`
	Active           bool    `json:"active"`
	UtilizationPct   float64 `json:"utilization_pct"`
	DistanceFromDock float64 `json:"distance_from_dock"`
	PickFrequency    float64 `json:"pick_frequency"`
	PickSequence     int     `json:"pick_sequence"`
}

type LocationResponse struct {
	LocationID  string `json:"location_id"`
	WarehouseID string `json:"warehouse_id"`
	Code        string `json:"code"`
	Zone        string `json:"zone,omitempty"`
	Type        string `json:"type"`
	Active      bool   `json:"active"`
}

func NewSuggestionDTO(suggestion slotting.Suggestion) SuggestionDTO {
	return SuggestionDTO{
		LocationID: suggestion.Location.LocationID,
		Code:       suggestion.Location.Code,
		Zone:       suggestion.Location.Zone,
		Score:      suggestion.Score,
		Breakdown:  suggestion.Breakdown,
	}
}

func NewLocationResponse(location entities.Location) LocationResponse {
	return LocationResponse{
		LocationID:  location.LocationID,
		WarehouseID: location.WarehouseID,
		Code:        location.Code,
		Zone:        location.Zone,
		Type:        string(location.Type),
		Active:      location.Active,
	}
}
