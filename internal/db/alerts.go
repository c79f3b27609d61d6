package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"inventory-monitor/internal/models"
)

// CreateAlertWithNotifications persists an alert and its notification set in
// one transaction. Either all rows land or none do, so a reader never sees an
// alert without its mandatory recipients. Notification inserts are keyed on
// (alert_id, recipient_id); conflicts are ignored, which makes a fan-out retry
// for an already-persisted alert idempotent.
func (d *DB) CreateAlertWithNotifications(ctx context.Context, alert models.Alert, notifs []models.Notification) error {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin alert transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO product_alerts (id, product_id, alert_type, severity, message, detected_by, is_resolved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`,
		alert.ID, alert.ProductID, alert.AlertType, alert.Severity, alert.Message,
		alert.DetectedBy, alert.IsResolved, alert.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}

	for _, n := range notifs {
		_, err = tx.Exec(ctx, `
			INSERT INTO notifications (id, recipient_id, title, message, notification_type, is_read, alert_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (alert_id, recipient_id) DO NOTHING`,
			n.ID, n.RecipientID, n.Title, n.Message, n.Type, n.IsRead, n.AlertID, n.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert notification for user %d: %w", n.RecipientID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit alert transaction: %w", err)
	}
	return nil
}

const alertColumns = `id, product_id, alert_type, severity, message, detected_by, is_resolved, created_at`

func scanAlerts(rows pgx.Rows) ([]models.Alert, error) {
	defer rows.Close()
	var list []models.Alert
	for rows.Next() {
		var a models.Alert
		if err := rows.Scan(&a.ID, &a.ProductID, &a.AlertType, &a.Severity, &a.Message, &a.DetectedBy, &a.IsResolved, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// GetAlerts lists alerts, optionally filtered by resolved state, newest first.
func (d *DB) GetAlerts(ctx context.Context, resolved *bool, limit int) ([]models.Alert, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := `SELECT ` + alertColumns + ` FROM product_alerts`
	args := []interface{}{limit}
	if resolved != nil {
		query += ` WHERE is_resolved = $2`
		args = append(args, *resolved)
	}
	query += ` ORDER BY created_at DESC LIMIT $1`

	rows, err := d.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get alerts: %w", err)
	}
	return scanAlerts(rows)
}

// GetAlertsByVendor lists unresolved alerts for products owned by a vendor.
func (d *DB) GetAlertsByVendor(ctx context.Context, vendorID int64) ([]models.Alert, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT a.id, a.product_id, a.alert_type, a.severity, a.message, a.detected_by, a.is_resolved, a.created_at
		FROM product_alerts a
		JOIN products p ON p.id = a.product_id
		WHERE p.vendor_id = $1 AND NOT a.is_resolved
		ORDER BY a.created_at DESC`, vendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get alerts for vendor %d: %w", vendorID, err)
	}
	return scanAlerts(rows)
}

// ResolveAlert flips the resolved flag. Alerts are never deleted.
func (d *DB) ResolveAlert(ctx context.Context, id uuid.UUID) error {
	result, err := d.Pool.Exec(ctx, `UPDATE product_alerts SET is_resolved = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to resolve alert %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("alert %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetAlert fetches a single alert.
func (d *DB) GetAlert(ctx context.Context, id uuid.UUID) (models.Alert, error) {
	var a models.Alert
	err := d.Pool.QueryRow(ctx, `SELECT `+alertColumns+` FROM product_alerts WHERE id = $1`, id).
		Scan(&a.ID, &a.ProductID, &a.AlertType, &a.Severity, &a.Message, &a.DetectedBy, &a.IsResolved, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Alert{}, fmt.Errorf("alert %s: %w", id, ErrNotFound)
		}
		return models.Alert{}, fmt.Errorf("failed to get alert %s: %w", id, err)
	}
	return a, nil
}
