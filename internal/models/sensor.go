package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SensorType identifies the physical quantity a reading measures.
type SensorType string

const (
	SensorTemperature SensorType = "temperature"
	SensorHumidity    SensorType = "humidity"
	SensorWeight      SensorType = "weight"
	SensorVibration   SensorType = "vibration"
	SensorPressure    SensorType = "pressure"
)

// Valid reports whether t is one of the supported sensor types.
func (t SensorType) Valid() bool {
	switch t {
	case SensorTemperature, SensorHumidity, SensorWeight, SensorVibration, SensorPressure:
		return true
	}
	return false
}

// SensorReading is a single measurement reported by an embedded sensor.
// Readings are immutable once stored.
type SensorReading struct {
	ID         uuid.UUID  `json:"id"`
	ProductID  int64      `json:"product_id"`
	SensorType SensorType `json:"sensor_type"`
	Value      float64    `json:"value"`
	Unit       string     `json:"unit,omitempty"`
	LocationID int64      `json:"location_id"`
	RecordedAt time.Time  `json:"recorded_at"`
}

func (r SensorReading) String() string {
	return fmt.Sprintf("%s=%g%s (product %d, location %d)", r.SensorType, r.Value, r.Unit, r.ProductID, r.LocationID)
}
