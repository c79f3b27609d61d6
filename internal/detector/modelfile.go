package detector

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ModelTypeAnomalyDetection is the only model type currently trained.
const ModelTypeAnomalyDetection = "anomaly_detection"

// ModelFile is the on-disk form of a trained detector: the forest, its
// scaling transform, and the feature columns both were fit on.
type ModelFile struct {
	ModelType      string           `json:"model_type"`
	FeatureColumns []string         `json:"feature_columns"`
	Scaler         *StandardScaler  `json:"scaler"`
	Forest         *IsolationForest `json:"forest"`
}

// Save writes the model as JSON, creating parent directories as needed.
func (m *ModelFile) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	return nil
}

// Validate checks that the model can drive the product scorer: every declared
// feature column has an accessor and the scaler matches the column count.
func (m *ModelFile) Validate() error {
	if _, err := resolveFeatures(m.FeatureColumns); err != nil {
		return err
	}
	if m.Scaler == nil {
		return fmt.Errorf("model has no scaler")
	}
	if len(m.Scaler.Mean) != len(m.FeatureColumns) {
		return fmt.Errorf("scaler dimensionality %d does not match %d feature columns",
			len(m.Scaler.Mean), len(m.FeatureColumns))
	}
	return nil
}

// LoadModelFile reads and validates a serialized model.
func LoadModelFile(path string) (*ModelFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file %s: %w", path, err)
	}
	var m ModelFile
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode model file %s: %w", path, err)
	}
	if m.Scaler == nil || m.Forest == nil || len(m.FeatureColumns) == 0 {
		return nil, fmt.Errorf("model file %s is incomplete", path)
	}
	return &m, nil
}
