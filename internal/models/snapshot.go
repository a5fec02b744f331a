package models

// ConsumptionStats summarizes a vehicle's fuel records. Totals and
// the average are rounded to 2 decimals; min/max come from the stored
// per-record Consumption values.
type ConsumptionStats struct {
	Count              int     `json:"count"`
	TotalDistance      float64 `json:"totalDistance"`
	TotalFuel          float64 `json:"totalFuel"`
	AverageConsumption float64 `json:"averageConsumption"`
	MinConsumption     float64 `json:"minConsumption"`
	MaxConsumption     float64 `json:"maxConsumption"`
}

// Snapshot is the export/import shape for full-state backup and
// transfer. Import tolerates partial presence of the two collections.
type Snapshot struct {
	Vehicles   []*Vehicle    `json:"vehicles"`
	Records    []*FuelRecord `json:"records"`
	ExportedAt string        `json:"exportedAt"`
}
