package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"inventory-monitor/internal/models"
)

// GetNotificationsByUserID fetches a user's notifications, newest first.
func (d *DB) GetNotificationsByUserID(ctx context.Context, userID int64, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := d.Pool.Query(ctx, `
		SELECT id, recipient_id, title, message, notification_type, is_read, alert_id, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications for user %d: %w", userID, err)
	}
	defer rows.Close()

	var list []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Title, &n.Message, &n.Type, &n.IsRead, &n.AlertID, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

// GetUnreadCounts returns the unread total plus the unread urgent_alert count.
func (d *DB) GetUnreadCounts(ctx context.Context, userID int64) (models.UnreadCounts, error) {
	var c models.UnreadCounts
	err := d.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE NOT is_read),
			COUNT(*) FILTER (WHERE NOT is_read AND notification_type = 'urgent_alert')
		FROM notifications
		WHERE recipient_id = $1`, userID).Scan(&c.Unread, &c.Critical)
	if err != nil {
		return models.UnreadCounts{}, fmt.Errorf("failed to count notifications for user %d: %w", userID, err)
	}
	return c, nil
}

// MarkNotificationRead flips the read flag. The flag never goes back to unread,
// so the update is a no-op for an already-read notification.
func (d *DB) MarkNotificationRead(ctx context.Context, id uuid.UUID, userID int64) error {
	result, err := d.Pool.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE id = $1 AND recipient_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return nil
}

// MarkAllNotificationsRead marks every unread notification of a user as read.
func (d *DB) MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error) {
	result, err := d.Pool.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE recipient_id = $1 AND NOT is_read`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read for user %d: %w", userID, err)
	}
	return result.RowsAffected(), nil
}

// DeleteNotification removes a notification owned by the user.
func (d *DB) DeleteNotification(ctx context.Context, id uuid.UUID, userID int64) error {
	result, err := d.Pool.Exec(ctx, `
		DELETE FROM notifications WHERE id = $1 AND recipient_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return nil
}
