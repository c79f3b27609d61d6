package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"inventory-monitor/internal/logging"
	"inventory-monitor/internal/models"
)

// DatasetStore persists dataset records.
type DatasetStore interface {
	CreateDataset(ctx context.Context, ds models.Dataset) error
}

// DatasetService handles tabular dataset uploads.
type DatasetService struct {
	store   DatasetStore
	dataDir string
	logger  *logging.Logger
}

func NewDatasetService(store DatasetStore, dataDir string, logger *logging.Logger) *DatasetService {
	return &DatasetService{store: store, dataDir: dataDir, logger: logger}
}

// Upload validates and stores a CSV dataset, recording its column list and
// row count. Non-CSV input is rejected before anything is written.
func (s *DatasetService) Upload(ctx context.Context, name, dsType, description, filename string, data io.Reader) (models.Dataset, error) {
	if name == "" {
		return models.Dataset{}, fmt.Errorf("%w: missing field: name", ErrValidation)
	}
	if dsType == "" {
		return models.Dataset{}, fmt.Errorf("%w: missing field: dataset_type", ErrValidation)
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return models.Dataset{}, fmt.Errorf("%w: only CSV files are supported", ErrValidation)
	}

	id := uuid.New()
	path := filepath.Join(s.dataDir, "datasets", fmt.Sprintf("%s.csv", id))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return models.Dataset{}, fmt.Errorf("failed to create dataset directory: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return models.Dataset{}, fmt.Errorf("failed to create dataset file: %w", err)
	}
	if _, err := io.Copy(out, data); err != nil {
		out.Close()
		os.Remove(path)
		return models.Dataset{}, fmt.Errorf("failed to write dataset file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return models.Dataset{}, fmt.Errorf("failed to close dataset file: %w", err)
	}

	columns, rowCount, err := InspectCSV(path)
	if err != nil {
		os.Remove(path)
		return models.Dataset{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	ds := models.Dataset{
		ID:          id,
		Name:        name,
		Type:        dsType,
		Description: description,
		FilePath:    path,
		Columns:     columns,
		RowCount:    rowCount,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateDataset(ctx, ds); err != nil {
		os.Remove(path)
		return models.Dataset{}, err
	}

	s.logger.Infof("Dataset %s uploaded: %d rows, columns %v", ds.ID, ds.RowCount, ds.Columns)
	return ds, nil
}

// InspectCSV reads a CSV file's header and counts its data rows.
func InspectCSV(path string) (columns []string, rowCount int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("not a tabular file: %w", err)
	}
	for _, col := range header {
		columns = append(columns, strings.TrimSpace(col))
	}

	for {
		_, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("not a tabular file: %w", err)
		}
		rowCount++
	}
	return columns, rowCount, nil
}
