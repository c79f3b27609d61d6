package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"inventory-monitor/internal/models"
)

// ActivateModel inserts a freshly trained model and deactivates every other
// model of the same type, in one transaction. Training failure before this
// point leaves no partial state behind.
func (d *DB) ActivateModel(ctx context.Context, m models.TrainedModel) error {
	features, err := json.Marshal(m.FeatureColumns)
	if err != nil {
		return fmt.Errorf("failed to marshal feature columns: %w", err)
	}

	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin model transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE trained_models SET is_active = FALSE
		WHERE model_type = $1 AND is_active`, m.Type)
	if err != nil {
		return fmt.Errorf("failed to deactivate previous models: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO trained_models (id, name, model_type, dataset_id, model_file, feature_columns, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, TRUE, $7)`,
		m.ID, m.Name, m.Type, m.DatasetID, m.ModelFile, string(features), m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert trained model: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit model transaction: %w", err)
	}
	return nil
}

// GetActiveModel returns the active model of the given type, if any.
func (d *DB) GetActiveModel(ctx context.Context, modelType string) (models.TrainedModel, error) {
	var m models.TrainedModel
	var featuresRaw []byte
	err := d.Pool.QueryRow(ctx, `
		SELECT id, name, model_type, dataset_id, model_file, feature_columns, is_active, created_at
		FROM trained_models
		WHERE model_type = $1 AND is_active
		ORDER BY created_at DESC
		LIMIT 1`, modelType).
		Scan(&m.ID, &m.Name, &m.Type, &m.DatasetID, &m.ModelFile, &featuresRaw, &m.IsActive, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.TrainedModel{}, fmt.Errorf("active %s model: %w", modelType, ErrNotFound)
		}
		return models.TrainedModel{}, fmt.Errorf("failed to get active model: %w", err)
	}
	if err := json.Unmarshal(featuresRaw, &m.FeatureColumns); err != nil {
		return models.TrainedModel{}, fmt.Errorf("failed to decode feature columns: %w", err)
	}
	return m, nil
}
