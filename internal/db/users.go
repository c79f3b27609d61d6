package db

import (
	"context"
	"fmt"

	"inventory-monitor/internal/models"
)

// GetActiveUsersByRoles returns every active user whose role is in roles.
func (d *DB) GetActiveUsersByRoles(ctx context.Context, roles ...string) ([]models.User, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, username, user_type, is_active, date_joined
		FROM users
		WHERE is_active AND user_type = ANY($1)
		ORDER BY id`, roles)
	if err != nil {
		return nil, fmt.Errorf("failed to get users by roles %v: %w", roles, err)
	}
	defer rows.Close()

	var list []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Role, &u.IsActive, &u.DateJoined); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}
