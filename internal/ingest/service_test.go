package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-monitor/internal/logging"
	"inventory-monitor/internal/models"
)

type fakeStore struct {
	products  map[string]models.Product
	locations map[int64]models.StorageLocation
	saved     []models.SensorReading
	saveErr   error
}

func (f *fakeStore) GetProductByBarcode(ctx context.Context, barcode string) (models.Product, error) {
	p, ok := f.products[barcode]
	if !ok {
		return models.Product{}, errors.New("product not found")
	}
	return p, nil
}

func (f *fakeStore) GetStorageLocation(ctx context.Context, id int64) (models.StorageLocation, error) {
	l, ok := f.locations[id]
	if !ok {
		return models.StorageLocation{}, errors.New("location not found")
	}
	return l, nil
}

func (f *fakeStore) CreateSensorReading(ctx context.Context, r models.SensorReading) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, r)
	return nil
}

type fakeAlerter struct {
	raised []models.Finding
	err    error
}

func (f *fakeAlerter) Raise(ctx context.Context, finding models.Finding) (models.Alert, error) {
	if f.err != nil {
		return models.Alert{}, f.err
	}
	f.raised = append(f.raised, finding)
	return models.Alert{}, nil
}

func newTestStore() *fakeStore {
	return &fakeStore{
		products: map[string]models.Product{
			"MILK-1": {ID: 10, Name: "Milk", Barcode: "MILK-1", Category: "food"},
		},
		locations: map[int64]models.StorageLocation{
			5: {ID: 5, Name: "Cold Storage A"},
		},
	}
}

func ptr[T any](v T) *T { return &v }

func TestIngestNormalReading(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	alerter := &fakeAlerter{}
	svc := New(store, alerter, logging.NewNop())

	created, err := svc.Ingest(context.Background(), Reading{
		ProductBarcode: "MILK-1",
		SensorType:     "temperature",
		Value:          ptr(3.5),
		Unit:           "C",
		LocationID:     ptr(int64(5)),
	})

	require.NoError(t, err)
	assert.Zero(t, created)
	require.Len(t, store.saved, 1)
	saved := store.saved[0]
	assert.Equal(t, int64(10), saved.ProductID)
	assert.Equal(t, models.SensorTemperature, saved.SensorType)
	assert.Equal(t, 3.5, saved.Value)
	assert.Equal(t, int64(5), saved.LocationID)
	assert.Empty(t, alerter.raised)
}

func TestIngestOutOfRangeRaisesAlert(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	alerter := &fakeAlerter{}
	svc := New(store, alerter, logging.NewNop())

	created, err := svc.Ingest(context.Background(), Reading{
		ProductBarcode: "MILK-1",
		SensorType:     "temperature",
		Value:          ptr(30.0),
		LocationID:     ptr(int64(5)),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, created)
	require.Len(t, alerter.raised, 1)
	f := alerter.raised[0]
	assert.Equal(t, "temperature_anomaly", f.AlertType)
	assert.Equal(t, models.SeverityCritical, f.Severity)
}

func TestIngestValidation(t *testing.T) {
	t.Parallel()

	svc := New(newTestStore(), &fakeAlerter{}, logging.NewNop())

	tests := []struct {
		name string
		rec  Reading
	}{
		{"missing barcode", Reading{SensorType: "temperature", Value: ptr(1.0), LocationID: ptr(int64(5))}},
		{"missing sensor type", Reading{ProductBarcode: "MILK-1", Value: ptr(1.0), LocationID: ptr(int64(5))}},
		{"missing value", Reading{ProductBarcode: "MILK-1", SensorType: "temperature", LocationID: ptr(int64(5))}},
		{"missing location", Reading{ProductBarcode: "MILK-1", SensorType: "temperature", Value: ptr(1.0)}},
		{"unknown sensor type", Reading{ProductBarcode: "MILK-1", SensorType: "radiation", Value: ptr(1.0), LocationID: ptr(int64(5))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Ingest(context.Background(), tt.rec)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestIngestZeroValueIsValid(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	svc := New(store, &fakeAlerter{}, logging.NewNop())

	// Zero is a legitimate measurement, distinct from a missing value.
	_, err := svc.Ingest(context.Background(), Reading{
		ProductBarcode: "MILK-1",
		SensorType:     "temperature",
		Value:          ptr(0.0),
		LocationID:     ptr(int64(5)),
	})
	require.NoError(t, err)
	require.Len(t, store.saved, 1)
}

func TestIngestUnknownProduct(t *testing.T) {
	t.Parallel()

	svc := New(newTestStore(), &fakeAlerter{}, logging.NewNop())

	_, err := svc.Ingest(context.Background(), Reading{
		ProductBarcode: "GONE",
		SensorType:     "temperature",
		Value:          ptr(3.0),
		LocationID:     ptr(int64(5)),
	})
	assert.Error(t, err)
}

func TestIngestAlerterFailureKeepsReading(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	alerter := &fakeAlerter{err: errors.New("db down")}
	svc := New(store, alerter, logging.NewNop())

	created, err := svc.Ingest(context.Background(), Reading{
		ProductBarcode: "MILK-1",
		SensorType:     "temperature",
		Value:          ptr(30.0),
		LocationID:     ptr(int64(5)),
	})

	// The reading is already stored; a failed alert does not undo it.
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Len(t, store.saved, 1)
}
