package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"inventory-monitor/internal/models"
)

// CreateDataset records an uploaded dataset. Datasets are write-once.
func (d *DB) CreateDataset(ctx context.Context, ds models.Dataset) error {
	columns, err := json.Marshal(ds.Columns)
	if err != nil {
		return fmt.Errorf("failed to marshal dataset columns: %w", err)
	}
	_, err = d.Pool.Exec(ctx, `
		INSERT INTO product_datasets (id, name, dataset_type, description, file_path, columns, row_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8)`,
		ds.ID, ds.Name, ds.Type, ds.Description, ds.FilePath, string(columns), ds.RowCount, ds.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert dataset: %w", err)
	}
	return nil
}

// GetDataset fetches a dataset by id.
func (d *DB) GetDataset(ctx context.Context, id uuid.UUID) (models.Dataset, error) {
	var ds models.Dataset
	var columnsRaw []byte
	err := d.Pool.QueryRow(ctx, `
		SELECT id, name, dataset_type, description, file_path, columns, row_count, created_at
		FROM product_datasets WHERE id = $1`, id).
		Scan(&ds.ID, &ds.Name, &ds.Type, &ds.Description, &ds.FilePath, &columnsRaw, &ds.RowCount, &ds.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Dataset{}, fmt.Errorf("dataset %s: %w", id, ErrNotFound)
		}
		return models.Dataset{}, fmt.Errorf("failed to get dataset %s: %w", id, err)
	}
	if err := json.Unmarshal(columnsRaw, &ds.Columns); err != nil {
		return models.Dataset{}, fmt.Errorf("failed to decode dataset columns: %w", err)
	}
	return ds, nil
}
