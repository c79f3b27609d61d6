// Package trainer fits an anomaly-detection model on an uploaded dataset and
// makes it the active detector.
package trainer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"inventory-monitor/internal/detector"
	"inventory-monitor/internal/logging"
	"inventory-monitor/internal/models"
)

// Store is the persistence surface training needs.
type Store interface {
	GetDataset(ctx context.Context, id uuid.UUID) (models.Dataset, error)
	ActivateModel(ctx context.Context, m models.TrainedModel) error
}

// Service trains models and hot-swaps them into the running detector.
type Service struct {
	store    Store
	detector *detector.Service
	dataDir  string
	logger   *logging.Logger
}

func New(store Store, det *detector.Service, dataDir string, logger *logging.Logger) *Service {
	return &Service{store: store, detector: det, dataDir: dataDir, logger: logger}
}

// Train fits a scaler and isolation forest on the dataset, persists the model
// file and its database record, and swaps the detector to the new model.
// Any failure leaves no partial state: the model file is removed if the
// database write does not land.
func (s *Service) Train(ctx context.Context, datasetID uuid.UUID) (models.TrainedModel, error) {
	ds, err := s.store.GetDataset(ctx, datasetID)
	if err != nil {
		return models.TrainedModel{}, err
	}
	if ds.Type != models.DatasetAnomalyDetection {
		return models.TrainedModel{}, fmt.Errorf("dataset %s has type %q, want %q", ds.ID, ds.Type, models.DatasetAnomalyDetection)
	}

	columns, rows, err := loadFeatureMatrix(ds.FilePath)
	if err != nil {
		return models.TrainedModel{}, fmt.Errorf("failed to load dataset %s: %w", ds.ID, err)
	}

	scaler, err := detector.FitScaler(rows)
	if err != nil {
		return models.TrainedModel{}, fmt.Errorf("failed to fit scaler: %w", err)
	}
	scaled, err := scaler.TransformAll(rows)
	if err != nil {
		return models.TrainedModel{}, fmt.Errorf("failed to scale training data: %w", err)
	}
	forest, err := detector.TrainIsolationForest(scaled,
		detector.DefaultTrees, detector.DefaultSubsampleSize, detector.DefaultContamination, detector.DefaultSeed)
	if err != nil {
		return models.TrainedModel{}, fmt.Errorf("failed to train forest: %w", err)
	}

	mf := &detector.ModelFile{
		ModelType:      detector.ModelTypeAnomalyDetection,
		FeatureColumns: columns,
		Scaler:         scaler,
		Forest:         forest,
	}
	// Validate before anything is persisted, so the database never flags a
	// model active that the detector would refuse to load.
	if err := mf.Validate(); err != nil {
		return models.TrainedModel{}, fmt.Errorf("trained model failed validation: %w", err)
	}

	filename := fmt.Sprintf("anomaly_model_%s_%s.json", datasetID, time.Now().UTC().Format("20060102"))
	relPath := filepath.Join("trained_models", filename)
	fullPath := filepath.Join(s.dataDir, relPath)
	if err := mf.Save(fullPath); err != nil {
		return models.TrainedModel{}, err
	}

	m := models.TrainedModel{
		ID:             uuid.New(),
		Name:           fmt.Sprintf("Anomaly Detection Model - %s", ds.Name),
		Type:           detector.ModelTypeAnomalyDetection,
		DatasetID:      ds.ID,
		ModelFile:      relPath,
		FeatureColumns: columns,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.ActivateModel(ctx, m); err != nil {
		os.Remove(fullPath)
		return models.TrainedModel{}, err
	}

	if err := s.detector.LoadModel(mf); err != nil {
		return models.TrainedModel{}, fmt.Errorf("trained model failed to load: %w", err)
	}

	s.logger.Infof("Trained model %s on dataset %s (%d rows, features %v)", m.ID, ds.ID, len(rows), columns)
	return m, nil
}

// loadFeatureMatrix reads the canonical feature columns present in the CSV.
// Missing or unparsable cells are filled with the column mean; a row never
// fails the whole load.
func loadFeatureMatrix(path string) ([]string, [][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[name] = i
	}

	var columns []string
	var indices []int
	for _, name := range detector.CanonicalFeatureColumns {
		if i, ok := colIndex[name]; ok {
			columns = append(columns, name)
			indices = append(indices, i)
		}
	}
	if len(columns) == 0 {
		return nil, nil, fmt.Errorf("dataset has none of the feature columns %v", detector.CanonicalFeatureColumns)
	}

	var rows [][]float64
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read row: %w", err)
		}
		row := make([]float64, len(indices))
		for j, idx := range indices {
			if idx >= len(record) {
				row[j] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(record[idx], 64)
			if err != nil {
				row[j] = math.NaN()
				continue
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("dataset has no data rows")
	}

	fillMissingWithMean(rows)
	return columns, rows, nil
}

func fillMissingWithMean(rows [][]float64) {
	dims := len(rows[0])
	for j := 0; j < dims; j++ {
		sum, count := 0.0, 0
		for _, row := range rows {
			if !math.IsNaN(row[j]) {
				sum += row[j]
				count++
			}
		}
		mean := 0.0
		if count > 0 {
			mean = sum / float64(count)
		}
		for _, row := range rows {
			if math.IsNaN(row[j]) {
				row[j] = mean
			}
		}
	}
}
