// Package http holds the wire DTOs of the directory endpoints.
package http

type TenantRequest struct {
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
	Active   bool   `json:"active"`
}

type WarehouseRequest struct {
	WarehouseID string `json:"warehouse_id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Timezone    string `json:"timezone,omitempty"`
	Active      bool   `json:"active"`
}
