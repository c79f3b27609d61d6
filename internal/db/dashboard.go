package db

import (
	"context"
	"fmt"
)

// DashboardSummary aggregates the counters shown on the admin dashboard.
// The specific aggregates (today revenue, low-stock split) are carried over
// from the marketplace dashboard as policy.
type DashboardSummary struct {
	TotalUsers     int `json:"total_users"`
	TotalAdmins    int `json:"total_admins"`
	TotalVendors   int `json:"total_vendors"`
	TotalCustomers int `json:"total_customers"`

	TotalProducts    int `json:"total_products"`
	ActiveProducts   int `json:"active_products"`
	LowStockProducts int `json:"low_stock_products"`
	OutOfStock       int `json:"out_of_stock_products"`

	TotalOrders   int     `json:"total_orders"`
	PendingOrders int     `json:"pending_orders"`
	TotalRevenue  float64 `json:"total_revenue"`
	TodayRevenue  float64 `json:"today_revenue"`

	UnresolvedAlerts int `json:"unresolved_alerts"`
}

// GetDashboardSummary computes the dashboard counters in one round trip.
func (d *DB) GetDashboardSummary(ctx context.Context) (DashboardSummary, error) {
	var s DashboardSummary
	err := d.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE user_type = 'admin'),
			(SELECT COUNT(*) FROM users WHERE user_type = 'vendor'),
			(SELECT COUNT(*) FROM users WHERE user_type = 'customer'),
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM products WHERE status = 'active'),
			(SELECT COUNT(*) FROM products WHERE track_inventory AND stock_quantity > 0 AND stock_quantity <= low_stock_threshold),
			(SELECT COUNT(*) FROM products WHERE track_inventory AND stock_quantity = 0),
			(SELECT COUNT(*) FROM orders),
			(SELECT COUNT(*) FROM orders WHERE status = 'pending'),
			(SELECT COALESCE(SUM(total_amount), 0) FROM orders),
			(SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE created_at >= date_trunc('day', NOW())),
			(SELECT COUNT(*) FROM product_alerts WHERE NOT is_resolved)
	`).Scan(
		&s.TotalUsers, &s.TotalAdmins, &s.TotalVendors, &s.TotalCustomers,
		&s.TotalProducts, &s.ActiveProducts, &s.LowStockProducts, &s.OutOfStock,
		&s.TotalOrders, &s.PendingOrders, &s.TotalRevenue, &s.TodayRevenue,
		&s.UnresolvedAlerts,
	)
	if err != nil {
		return DashboardSummary{}, fmt.Errorf("failed to compute dashboard summary: %w", err)
	}
	return s, nil
}
