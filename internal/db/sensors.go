package db

import (
	"context"
	"fmt"

	"inventory-monitor/internal/models"
)

// CreateSensorReading inserts a reading. Readings are immutable afterwards.
func (d *DB) CreateSensorReading(ctx context.Context, r models.SensorReading) error {
	_, err := d.Pool.Exec(ctx, `
		INSERT INTO sensor_readings (id, product_id, sensor_type, value, unit, location_id, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.ProductID, r.SensorType, r.Value, r.Unit, r.LocationID, r.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to insert sensor reading: %w", err)
	}
	return nil
}

// GetRecentSensorReadings returns the latest readings for a product, newest first.
func (d *DB) GetRecentSensorReadings(ctx context.Context, productID int64, limit int) ([]models.SensorReading, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := d.Pool.Query(ctx, `
		SELECT id, product_id, sensor_type, value, unit, location_id, recorded_at
		FROM sensor_readings
		WHERE product_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2`, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get sensor readings for product %d: %w", productID, err)
	}
	defer rows.Close()

	var list []models.SensorReading
	for rows.Next() {
		var r models.SensorReading
		if err := rows.Scan(&r.ID, &r.ProductID, &r.SensorType, &r.Value, &r.Unit, &r.LocationID, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sensor reading: %w", err)
		}
		list = append(list, r)
	}
	return list, rows.Err()
}
