package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"fueltrack-backend/internal/models"
	"fueltrack-backend/pkg/storage"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Store owns the vehicle and fuel-record collections in memory and
// mirrors them to the storage backend after every mutation. Collections
// are slices so insertion order is preserved and lookups are first
// match wins. A per-instance mutex guards each read-modify-persist
// sequence; separate Store instances share no state.
type Store struct {
	mu       sync.Mutex
	vehicles []*models.Vehicle
	records  []*models.FuelRecord
	backend  storage.Backend
	log      *zap.Logger
	validate *validator.Validate
}

// NewStore creates a Store and hydrates its collections from the
// backend. A nil backend means memory-only operation: all persistence
// calls are skipped. A nil logger disables logging.
func NewStore(backend storage.Backend, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Store{
		vehicles: []*models.Vehicle{},
		records:  []*models.FuelRecord{},
		backend:  backend,
		log:      log,
		validate: validator.New(),
	}

	s.hydrate()
	return s
}

// AddVehicle registers a vehicle with zeroed aggregates. An empty
// fuelType defaults to petrol. IDs are caller-supplied and not checked
// for uniqueness; a duplicate creates a second vehicle reachable only
// positionally.
func (s *Store) AddVehicle(id, name, fuelType string) *models.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fuelType == "" {
		fuelType = models.FuelTypePetrol
	}

	vehicle := &models.Vehicle{
		ID:                id,
		Name:              name,
		FuelType:          fuelType,
		CreatedAt:         time.Now(),
		TotalDistance:     0,
		TotalFuelConsumed: 0,
	}

	s.vehicles = append(s.vehicles, vehicle)
	s.persist()
	return vehicle
}

type recordInput struct {
	VehicleID  string  `validate:"required"`
	FuelAmount float64 `validate:"required,gt=0"`
	Distance   float64 `validate:"required,gt=0"`
}

// RecordFuelConsumption appends a fuel record for an existing vehicle
// and adds its distance and fuel amount to the vehicle's running
// totals. A zero date defaults to now. Non-positive fuelAmount or
// distance is rejected with a ValidationError rather than storing a
// non-finite consumption.
func (s *Store) RecordFuelConsumption(vehicleID string, fuelAmount, distance float64, date time.Time, notes string) (*models.FuelRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vehicle := s.findVehicle(vehicleID)
	if vehicle == nil {
		return nil, &NotFoundError{Kind: "vehicle", ID: vehicleID}
	}

	input := recordInput{VehicleID: vehicleID, FuelAmount: fuelAmount, Distance: distance}
	if err := s.validate.Struct(&input); err != nil {
		return nil, &ValidationError{Err: err}
	}

	if date.IsZero() {
		date = time.Now()
	}

	record := &models.FuelRecord{
		ID:          generateID(),
		VehicleID:   vehicleID,
		FuelAmount:  fuelAmount,
		Distance:    distance,
		Consumption: round2(distance / fuelAmount),
		Date:        date,
		Notes:       notes,
		CreatedAt:   time.Now(),
	}

	s.records = append(s.records, record)
	vehicle.TotalDistance += distance
	vehicle.TotalFuelConsumed += fuelAmount

	s.persist()
	return record, nil
}

// GetVehicleRecords returns the vehicle's records in insertion order.
// An unknown ID yields an empty slice, not an error.
func (s *Store) GetVehicleRecords(vehicleID string) []*models.FuelRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordsFor(vehicleID)
}

// GetAverageConsumption returns the overall distance per unit of fuel
// across the vehicle's records, rounded to 2 decimals. It returns 0
// with no records, and 0 when total fuel is exactly zero.
func (s *Store) GetAverageConsumption(vehicleID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.recordsFor(vehicleID)
	if len(records) == 0 {
		return 0
	}

	var totalDistance, totalFuel float64
	for _, r := range records {
		totalDistance += r.Distance
		totalFuel += r.FuelAmount
	}

	if totalFuel == 0 {
		return 0
	}
	return round2(totalDistance / totalFuel)
}

// GetConsumptionStats summarizes the vehicle's records. A vehicle with
// no records yields the zero value.
func (s *Store) GetConsumptionStats(vehicleID string) models.ConsumptionStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.recordsFor(vehicleID)
	if len(records) == 0 {
		return models.ConsumptionStats{}
	}

	var totalDistance, totalFuel float64
	minConsumption := records[0].Consumption
	maxConsumption := records[0].Consumption
	for _, r := range records {
		totalDistance += r.Distance
		totalFuel += r.FuelAmount
		if r.Consumption < minConsumption {
			minConsumption = r.Consumption
		}
		if r.Consumption > maxConsumption {
			maxConsumption = r.Consumption
		}
	}

	return models.ConsumptionStats{
		Count:              len(records),
		TotalDistance:      round2(totalDistance),
		TotalFuel:          round2(totalFuel),
		AverageConsumption: round2(totalDistance / totalFuel),
		MinConsumption:     minConsumption,
		MaxConsumption:     maxConsumption,
	}
}

// GetRecordsByDateRange returns the vehicle's records whose date falls
// within [start, end], both bounds inclusive.
func (s *Store) GetRecordsByDateRange(vehicleID string, start, end time.Time) []*models.FuelRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := []*models.FuelRecord{}
	for _, r := range s.records {
		if r.VehicleID != vehicleID {
			continue
		}
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

// UpdateRecordRequest is a partial patch: nil fields retain their prior
// values.
type UpdateRecordRequest struct {
	FuelAmount *float64   `json:"fuelAmount,omitempty"`
	Distance   *float64   `json:"distance,omitempty"`
	Date       *time.Time `json:"date,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
}

// UpdateRecord applies a partial patch to a record. Consumption is
// recomputed only when both patched values remain positive; otherwise
// the previous value stays, a deliberate fallback. The owning vehicle's
// aggregates are adjusted by the old-out/new-in delta; if the vehicle
// no longer exists the adjustment is skipped with a logged warning.
func (s *Store) UpdateRecord(recordID string, updates *UpdateRecordRequest) (*models.FuelRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.findRecord(recordID)
	if record == nil {
		return nil, &NotFoundError{Kind: "record", ID: recordID}
	}

	oldFuel := record.FuelAmount
	oldDistance := record.Distance

	if updates != nil {
		if updates.FuelAmount != nil {
			record.FuelAmount = *updates.FuelAmount
		}
		if updates.Distance != nil {
			record.Distance = *updates.Distance
		}
		if updates.Date != nil {
			record.Date = *updates.Date
		}
		if updates.Notes != nil {
			record.Notes = *updates.Notes
		}
	}

	if record.Distance > 0 && record.FuelAmount > 0 {
		record.Consumption = round2(record.Distance / record.FuelAmount)
	}

	if vehicle := s.findVehicle(record.VehicleID); vehicle != nil {
		vehicle.TotalDistance += record.Distance - oldDistance
		vehicle.TotalFuelConsumed += record.FuelAmount - oldFuel
	} else {
		s.log.Warn("owning vehicle missing, aggregates not adjusted",
			zap.String("recordId", recordID),
			zap.String("vehicleId", record.VehicleID))
	}

	s.persist()
	return record, nil
}

// DeleteRecord removes a record and subtracts its contribution from the
// owning vehicle's aggregates (skipped with a logged warning if the
// vehicle is missing).
func (s *Store) DeleteRecord(recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, r := range s.records {
		if r.ID == recordID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &NotFoundError{Kind: "record", ID: recordID}
	}

	record := s.records[idx]
	if vehicle := s.findVehicle(record.VehicleID); vehicle != nil {
		vehicle.TotalDistance -= record.Distance
		vehicle.TotalFuelConsumed -= record.FuelAmount
	} else {
		s.log.Warn("owning vehicle missing, aggregates not adjusted",
			zap.String("recordId", recordID),
			zap.String("vehicleId", record.VehicleID))
	}

	s.records = append(s.records[:idx], s.records[idx+1:]...)
	s.persist()
	return nil
}

// GetAllVehicles returns all vehicles in registration order.
func (s *Store) GetAllVehicles() []*models.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()

	vehicles := make([]*models.Vehicle, len(s.vehicles))
	copy(vehicles, s.vehicles)
	return vehicles
}

// GetVehicle returns the first vehicle with the given ID, or nil.
func (s *Store) GetVehicle(vehicleID string) *models.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findVehicle(vehicleID)
}

// DeleteVehicle removes a vehicle and cascades to every fuel record
// referencing its ID.
func (s *Store) DeleteVehicle(vehicleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findVehicle(vehicleID) == nil {
		return &NotFoundError{Kind: "vehicle", ID: vehicleID}
	}

	kept := s.records[:0]
	for _, r := range s.records {
		if r.VehicleID != vehicleID {
			kept = append(kept, r)
		}
	}
	s.records = kept

	vehicles := s.vehicles[:0]
	for _, v := range s.vehicles {
		if v.ID != vehicleID {
			vehicles = append(vehicles, v)
		}
	}
	s.vehicles = vehicles

	s.persist()
	return nil
}

// ExportData serializes the full store state as a pretty-printed JSON
// snapshot, preserving collection order.
func (s *Store) ExportData() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := models.Snapshot{
		Vehicles:   s.vehicles,
		Records:    s.records,
		ExportedAt: time.Now().Format(time.RFC3339),
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return string(data), nil
}

// snapshotImport distinguishes absent collections from empty ones so a
// partial snapshot replaces only what it carries.
type snapshotImport struct {
	Vehicles   *[]*models.Vehicle    `json:"vehicles"`
	Records    *[]*models.FuelRecord `json:"records"`
	ExportedAt string                `json:"exportedAt"`
}

// ImportData replaces whichever collections are present in the snapshot
// and persists. Imported vehicle aggregates are trusted as-is; records
// are not validated against existing vehicles. Divergence from the
// aggregate invariant is logged, not repaired.
func (s *Store) ImportData(data string) (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var parsed snapshotImport
	if err := json.Unmarshal([]byte(data), &parsed); err != nil {
		return nil, &ImportError{Err: err}
	}

	snapshot := &models.Snapshot{ExportedAt: parsed.ExportedAt}
	if parsed.Vehicles != nil {
		s.vehicles = *parsed.Vehicles
		snapshot.Vehicles = *parsed.Vehicles
	}
	if parsed.Records != nil {
		s.records = *parsed.Records
		snapshot.Records = *parsed.Records
	}

	s.checkAggregates()
	s.persist()
	return snapshot, nil
}

// ClearAllData empties both collections and removes the persisted
// copies.
func (s *Store) ClearAllData() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vehicles = []*models.Vehicle{}
	s.records = []*models.FuelRecord{}

	if s.backend == nil {
		return
	}
	ctx := context.Background()
	if err := s.backend.Remove(ctx, storage.VehiclesKey); err != nil {
		s.log.Warn("failed to remove persisted vehicles", zap.Error(err))
	}
	if err := s.backend.Remove(ctx, storage.RecordsKey); err != nil {
		s.log.Warn("failed to remove persisted records", zap.Error(err))
	}
}

// Lookup helpers. Callers hold s.mu.

func (s *Store) findVehicle(vehicleID string) *models.Vehicle {
	for _, v := range s.vehicles {
		if v.ID == vehicleID {
			return v
		}
	}
	return nil
}

func (s *Store) findRecord(recordID string) *models.FuelRecord {
	for _, r := range s.records {
		if r.ID == recordID {
			return r
		}
	}
	return nil
}

func (s *Store) recordsFor(vehicleID string) []*models.FuelRecord {
	filtered := []*models.FuelRecord{}
	for _, r := range s.records {
		if r.VehicleID == vehicleID {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// hydrate loads both collections from the backend, falling back to
// empty on absence or decode failure.
func (s *Store) hydrate() {
	if s.backend == nil {
		return
	}
	ctx := context.Background()

	if data, err := s.backend.Get(ctx, storage.VehiclesKey); err == nil {
		var vehicles []*models.Vehicle
		if err := json.Unmarshal([]byte(data), &vehicles); err != nil {
			s.log.Warn("failed to decode persisted vehicles", zap.Error(err))
		} else {
			s.vehicles = vehicles
		}
	} else if err != storage.ErrKeyNotFound {
		s.log.Warn("failed to load persisted vehicles", zap.Error(err))
	}

	if data, err := s.backend.Get(ctx, storage.RecordsKey); err == nil {
		var records []*models.FuelRecord
		if err := json.Unmarshal([]byte(data), &records); err != nil {
			s.log.Warn("failed to decode persisted records", zap.Error(err))
		} else {
			s.records = records
		}
	} else if err != storage.ErrKeyNotFound {
		s.log.Warn("failed to load persisted records", zap.Error(err))
	}

	s.log.Debug("store hydrated",
		zap.Int("vehicles", len(s.vehicles)),
		zap.Int("records", len(s.records)))
}

// persist mirrors both collections to the backend. Failures are logged
// and never surfaced: the collaborator is optional. Caller holds s.mu.
func (s *Store) persist() {
	if s.backend == nil {
		return
	}
	ctx := context.Background()

	if data, err := json.Marshal(s.vehicles); err != nil {
		s.log.Warn("failed to encode vehicles", zap.Error(err))
	} else if err := s.backend.Set(ctx, storage.VehiclesKey, string(data)); err != nil {
		s.log.Warn("failed to persist vehicles", zap.Error(err))
	}

	if data, err := json.Marshal(s.records); err != nil {
		s.log.Warn("failed to encode records", zap.Error(err))
	} else if err := s.backend.Set(ctx, storage.RecordsKey, string(data)); err != nil {
		s.log.Warn("failed to persist records", zap.Error(err))
	}
}

// checkAggregates compares each vehicle's stored totals against the
// sums over its records after an import. Caller holds s.mu.
func (s *Store) checkAggregates() {
	for _, v := range s.vehicles {
		var distance, fuel float64
		for _, r := range s.records {
			if r.VehicleID == v.ID {
				distance += r.Distance
				fuel += r.FuelAmount
			}
		}
		if distance != v.TotalDistance || fuel != v.TotalFuelConsumed {
			s.log.Warn("imported vehicle aggregates diverge from records",
				zap.String("vehicleId", v.ID),
				zap.Float64("totalDistance", v.TotalDistance),
				zap.Float64("recordDistance", distance),
				zap.Float64("totalFuelConsumed", v.TotalFuelConsumed),
				zap.Float64("recordFuel", fuel))
		}
	}
}

// generateID combines the current time with a random suffix. Collision
// resistance is adequate for single-process use only.
func generateID() string {
	return fmt.Sprintf("%d-%06d", time.Now().UnixMilli(), rand.Intn(1000000))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
