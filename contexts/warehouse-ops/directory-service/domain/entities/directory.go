package entities

import (
	"time"
)

// Tenant is one customer of the platform. Scheduled jobs fan out over
// active tenants only.
type Tenant struct {
	TenantID  string
	Name      string
	Active    bool
	CreatedAt time.Time
}

// Warehouse is one physical site of a tenant.
type Warehouse struct {
	WarehouseID string
	TenantID    string
	Code        string
	Name        string
	Timezone    string
	Active      bool
	CreatedAt   time.Time
}
