package detector

import (
	"fmt"

	"inventory-monitor/internal/models"
)

// CanonicalFeatureColumns is the feature set model training selects from.
// Columns absent from an uploaded dataset are dropped at training time.
var CanonicalFeatureColumns = []string{
	"stock_quantity",
	"sales_velocity",
	"return_rate",
	"defect_rate",
	"shelf_life_days",
}

// featureAccessors maps a trained model's feature-column names onto product
// fields. The mapping is validated when a model loads; an unknown column is a
// configuration error, not a silent zero.
var featureAccessors = map[string]func(models.Product) float64{
	"stock_quantity":  func(p models.Product) float64 { return float64(p.StockQuantity) },
	"sales_velocity":  func(p models.Product) float64 { return p.SalesVelocity },
	"return_rate":     func(p models.Product) float64 { return p.ReturnRate },
	"defect_rate":     func(p models.Product) float64 { return p.DefectRate },
	"shelf_life_days": func(p models.Product) float64 { return p.ShelfLifeDays },
}

// resolveFeatures returns one accessor per declared feature column, in order.
func resolveFeatures(columns []string) ([]func(models.Product) float64, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("model declares no feature columns")
	}
	accessors := make([]func(models.Product) float64, 0, len(columns))
	for _, col := range columns {
		fn, ok := featureAccessors[col]
		if !ok {
			return nil, fmt.Errorf("no accessor for feature column %q", col)
		}
		accessors = append(accessors, fn)
	}
	return accessors, nil
}
