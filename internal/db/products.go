package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"inventory-monitor/internal/models"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

const productColumns = `
	id, name, sku, barcode, category, vendor_id, status, price,
	stock_quantity, low_stock_threshold, track_inventory,
	sales_velocity, return_rate, defect_rate, shelf_life_days, created_at`

func scanProduct(row pgx.Row) (models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.SKU, &p.Barcode, &p.Category, &p.VendorID, &p.Status, &p.Price,
		&p.StockQuantity, &p.LowStockThreshold, &p.TrackInventory,
		&p.SalesVelocity, &p.ReturnRate, &p.DefectRate, &p.ShelfLifeDays, &p.CreatedAt,
	)
	return p, err
}

// GetActiveProducts returns every product with status 'active'.
func (d *DB) GetActiveProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := d.Pool.Query(ctx, `SELECT`+productColumns+` FROM products WHERE status = 'active' ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get active products: %w", err)
	}
	defer rows.Close()

	var list []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// GetProductByBarcode resolves a product by its scanner barcode.
func (d *DB) GetProductByBarcode(ctx context.Context, barcode string) (models.Product, error) {
	row := d.Pool.QueryRow(ctx, `SELECT`+productColumns+` FROM products WHERE barcode = $1`, barcode)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Product{}, fmt.Errorf("product %s: %w", barcode, ErrNotFound)
		}
		return models.Product{}, fmt.Errorf("failed to get product by barcode %s: %w", barcode, err)
	}
	return p, nil
}

func (d *DB) GetProductByID(ctx context.Context, id int64) (models.Product, error) {
	row := d.Pool.QueryRow(ctx, `SELECT`+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return models.Product{}, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return p, nil
}

// GetLowStockProducts returns tracked products with 0 < stock <= threshold.
func (d *DB) GetLowStockProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT`+productColumns+`
		FROM products
		WHERE track_inventory
		  AND stock_quantity > 0
		  AND stock_quantity <= low_stock_threshold
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get low stock products: %w", err)
	}
	defer rows.Close()

	var list []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// GetStorageLocation resolves a warehouse location by id.
func (d *DB) GetStorageLocation(ctx context.Context, id int64) (models.StorageLocation, error) {
	var loc models.StorageLocation
	err := d.Pool.QueryRow(ctx, `SELECT id, name FROM storage_locations WHERE id = $1`, id).
		Scan(&loc.ID, &loc.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.StorageLocation{}, fmt.Errorf("location %d: %w", id, ErrNotFound)
		}
		return models.StorageLocation{}, fmt.Errorf("failed to get location %d: %w", id, err)
	}
	return loc, nil
}
