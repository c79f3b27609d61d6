package models

import "time"

// Product mirrors the marketplace product row. This service reads stock and
// feature columns; the CRUD surface that mutates it lives in the web app.
type Product struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	SKU               string    `json:"sku"`
	Barcode           string    `json:"barcode"`
	Category          string    `json:"category"`
	VendorID          *int64    `json:"vendor_id,omitempty"`
	Status            string    `json:"status"`
	Price             float64   `json:"price"`
	StockQuantity     int       `json:"stock_quantity"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	TrackInventory    bool      `json:"track_inventory"`
	SalesVelocity     float64   `json:"sales_velocity"`
	ReturnRate        float64   `json:"return_rate"`
	DefectRate        float64   `json:"defect_rate"`
	ShelfLifeDays     float64   `json:"shelf_life_days"`
	CreatedAt         time.Time `json:"created_at"`
}

// StorageLocation is a warehouse site where sensor readings originate.
type StorageLocation struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
