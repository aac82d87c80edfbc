package entities

type LocationType string

const (
	LocationPick    LocationType = "PICK"
	LocationStaging LocationType = "STAGING"
	LocationBulk    LocationType = "BULK"
	LocationReserve LocationType = "RESERVE"
)

// Location is one storage bin with the operational attributes the slotting
// scorer ranks on.
type Location struct {
	LocationID       string
	TenantID         string
	WarehouseID      string
	Code             string
	Zone             string
	Type             LocationType
	TemperatureZone  string
	HazmatCertified  bool
	Active           bool
	UtilizationPct   float64
	DistanceFromDock float64
	PickFrequency    float64
	PickSequence     int
}
