// Package ingest accepts sensor readings and dataset uploads from the
// outside world, validates them, and feeds the scoring pipeline.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"inventory-monitor/internal/detector"
	"inventory-monitor/internal/logging"
	"inventory-monitor/internal/metrics"
	"inventory-monitor/internal/models"
)

// ErrValidation marks malformed input; handlers map it to a client error.
var ErrValidation = errors.New("validation failed")

// Store is the persistence surface sensor ingestion needs.
type Store interface {
	GetProductByBarcode(ctx context.Context, barcode string) (models.Product, error)
	GetStorageLocation(ctx context.Context, id int64) (models.StorageLocation, error)
	CreateSensorReading(ctx context.Context, r models.SensorReading) error
}

// Alerter raises an alert from a finding.
type Alerter interface {
	Raise(ctx context.Context, f models.Finding) (models.Alert, error)
}

// Reading is the inbound sensor record. Pointer fields distinguish a missing
// required field from a legitimate zero.
type Reading struct {
	ProductBarcode string   `json:"product_barcode"`
	SensorType     string   `json:"sensor_type"`
	Value          *float64 `json:"value"`
	Unit           string   `json:"unit"`
	LocationID     *int64   `json:"location_id"`
}

// Validate checks the required fields.
func (r Reading) Validate() error {
	switch {
	case r.ProductBarcode == "":
		return fmt.Errorf("%w: missing field: product_barcode", ErrValidation)
	case r.SensorType == "":
		return fmt.Errorf("%w: missing field: sensor_type", ErrValidation)
	case r.Value == nil:
		return fmt.Errorf("%w: missing field: value", ErrValidation)
	case r.LocationID == nil:
		return fmt.Errorf("%w: missing field: location_id", ErrValidation)
	}
	if !models.SensorType(r.SensorType).Valid() {
		return fmt.Errorf("%w: unknown sensor_type %q", ErrValidation, r.SensorType)
	}
	return nil
}

// Service stores readings and raises alerts for out-of-range values.
type Service struct {
	store   Store
	alerter Alerter
	logger  *logging.Logger
}

func New(store Store, alerter Alerter, logger *logging.Logger) *Service {
	return &Service{store: store, alerter: alerter, logger: logger}
}

// Ingest validates and persists one reading, scores it, and raises alerts
// for any finding. Returns the number of alerts generated.
func (s *Service) Ingest(ctx context.Context, rec Reading) (int, error) {
	if err := rec.Validate(); err != nil {
		metrics.SensorReadingsTotal.WithLabelValues(rec.SensorType, "rejected").Inc()
		return 0, err
	}

	product, err := s.store.GetProductByBarcode(ctx, rec.ProductBarcode)
	if err != nil {
		metrics.SensorReadingsTotal.WithLabelValues(rec.SensorType, "rejected").Inc()
		return 0, err
	}
	location, err := s.store.GetStorageLocation(ctx, *rec.LocationID)
	if err != nil {
		metrics.SensorReadingsTotal.WithLabelValues(rec.SensorType, "rejected").Inc()
		return 0, err
	}

	reading := models.SensorReading{
		ID:         uuid.New(),
		ProductID:  product.ID,
		SensorType: models.SensorType(rec.SensorType),
		Value:      *rec.Value,
		Unit:       rec.Unit,
		LocationID: location.ID,
		RecordedAt: time.Now().UTC(),
	}
	if err := s.store.CreateSensorReading(ctx, reading); err != nil {
		metrics.SensorReadingsTotal.WithLabelValues(rec.SensorType, "rejected").Inc()
		return 0, err
	}
	metrics.SensorReadingsTotal.WithLabelValues(rec.SensorType, "accepted").Inc()

	created := 0
	for f := range detector.ScoreReadings([]detector.ReadingProduct{{Reading: reading, Product: product}}) {
		metrics.FindingsTotal.WithLabelValues(f.DetectedBy).Inc()
		if _, err := s.alerter.Raise(ctx, f); err != nil {
			// A failed alert is scoped to this finding; the reading is already stored.
			s.logger.Errorf("Failed to raise alert for reading %s: %v", reading.ID, err)
			continue
		}
		created++
	}
	return created, nil
}
