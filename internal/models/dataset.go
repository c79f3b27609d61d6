package models

import (
	"time"

	"github.com/google/uuid"
)

// DatasetAnomalyDetection is the dataset type consumed by model training.
const DatasetAnomalyDetection = "anomaly_detection"

// Dataset describes an uploaded tabular file. Write-once after upload.
type Dataset struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"dataset_type"`
	Description string    `json:"description,omitempty"`
	FilePath    string    `json:"file_path"`
	Columns     []string  `json:"columns"`
	RowCount    int       `json:"row_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// TrainedModel points at a serialized detector on disk. Only models flagged
// active are loaded at runtime.
type TrainedModel struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Type           string    `json:"model_type"`
	DatasetID      uuid.UUID `json:"dataset_id"`
	ModelFile      string    `json:"model_file"`
	FeatureColumns []string  `json:"feature_columns"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}
