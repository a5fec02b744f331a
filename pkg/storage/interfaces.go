package storage

import (
	"context"
	"errors"
)

// Fixed keys the tracker core persists under. Each holds a JSON array.
const (
	VehiclesKey = "fueltrack:vehicles"
	RecordsKey  = "fueltrack:records"
)

// ErrKeyNotFound is returned by Get when a key has no value.
var ErrKeyNotFound = errors.New("storage: key not found")

// Backend is the opaque string key/value collaborator the tracker core
// persists through. Implementations must treat values as opaque; the
// core owns serialization.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
