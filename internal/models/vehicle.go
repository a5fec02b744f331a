package models

import (
	"time"
)

// Fuel types recognized by convention. The store does not enforce them.
const (
	FuelTypePetrol   = "petrol"
	FuelTypeDiesel   = "diesel"
	FuelTypeElectric = "electric"
	FuelTypeHybrid   = "hybrid"
)

type Vehicle struct {
	ID                string    `json:"id" validate:"required"`
	Name              string    `json:"name" validate:"required"`
	FuelType          string    `json:"fuelType"`
	CreatedAt         time.Time `json:"createdAt"`
	TotalDistance     float64   `json:"totalDistance"`
	TotalFuelConsumed float64   `json:"totalFuelConsumed"`
}

// FuelRecord is a single refueling log entry. TotalDistance and
// TotalFuelConsumed on the owning Vehicle must always equal the sums of
// Distance and FuelAmount across its records; every record mutation
// adjusts the vehicle totals by the delta.
type FuelRecord struct {
	ID          string    `json:"id"`
	VehicleID   string    `json:"vehicleId" validate:"required"`
	FuelAmount  float64   `json:"fuelAmount" validate:"required,gt=0"`
	Distance    float64   `json:"distance" validate:"required,gt=0"`
	Consumption float64   `json:"consumption"`
	Date        time.Time `json:"date"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
