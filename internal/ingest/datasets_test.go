package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-monitor/internal/logging"
	"inventory-monitor/internal/models"
)

type fakeDatasetStore struct {
	saved []models.Dataset
	err   error
}

func (f *fakeDatasetStore) CreateDataset(ctx context.Context, ds models.Dataset) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, ds)
	return nil
}

const sampleCSV = "stock_quantity,sales_velocity,return_rate\n10,1.5,0.01\n20,2.0,0.02\n"

func TestUploadDataset(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := &fakeDatasetStore{}
	svc := NewDatasetService(store, dir, logging.NewNop())

	ds, err := svc.Upload(context.Background(), "stock history", models.DatasetAnomalyDetection,
		"warehouse export", "export.csv", strings.NewReader(sampleCSV))

	require.NoError(t, err)
	assert.Equal(t, "stock history", ds.Name)
	assert.Equal(t, []string{"stock_quantity", "sales_velocity", "return_rate"}, ds.Columns)
	assert.Equal(t, 2, ds.RowCount)
	require.Len(t, store.saved, 1)

	// The CSV body must be on disk under the datasets directory.
	data, err := os.ReadFile(ds.FilePath)
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, string(data))
	assert.Equal(t, filepath.Join(dir, "datasets"), filepath.Dir(ds.FilePath))
}

func TestUploadRejectsNonCSV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := &fakeDatasetStore{}
	svc := NewDatasetService(store, dir, logging.NewNop())

	_, err := svc.Upload(context.Background(), "blob", models.DatasetAnomalyDetection,
		"", "export.xlsx", strings.NewReader("junk"))

	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, store.saved)
	entries, _ := os.ReadDir(filepath.Join(dir, "datasets"))
	assert.Empty(t, entries, "nothing may be written for a rejected upload")
}

func TestUploadMissingFields(t *testing.T) {
	t.Parallel()

	svc := NewDatasetService(&fakeDatasetStore{}, t.TempDir(), logging.NewNop())

	_, err := svc.Upload(context.Background(), "", models.DatasetAnomalyDetection, "", "a.csv", strings.NewReader(sampleCSV))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Upload(context.Background(), "name", "", "", "a.csv", strings.NewReader(sampleCSV))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUploadStoreFailureRemovesFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := &fakeDatasetStore{err: errors.New("insert failed")}
	svc := NewDatasetService(store, dir, logging.NewNop())

	_, err := svc.Upload(context.Background(), "stock history", models.DatasetAnomalyDetection,
		"", "export.csv", strings.NewReader(sampleCSV))

	require.Error(t, err)
	entries, _ := os.ReadDir(filepath.Join(dir, "datasets"))
	assert.Empty(t, entries)
}

func TestInspectCSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sample.csv")
	require.NoError(t, os.WriteFile(path, []byte(" stock_quantity , sales_velocity\n1,2\n3,4\n5,6\n"), 0o644))

	columns, rows, err := InspectCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"stock_quantity", "sales_velocity"}, columns)
	assert.Equal(t, 3, rows)
}

func TestInspectCSVMalformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2,3,4\n"), 0o644))

	_, _, err := InspectCSV(path)
	assert.Error(t, err)
}
