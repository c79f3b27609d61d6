package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-monitor/internal/logging"
	"inventory-monitor/internal/models"
)

func TestRuleBasedDetection(t *testing.T) {
	t.Parallel()

	svc := New(logging.NewNop())
	require.False(t, svc.ModelLoaded())

	products := []models.Product{
		{ID: 1, TrackInventory: true, StockQuantity: 3, LowStockThreshold: 10},
		{ID: 2, TrackInventory: true, StockQuantity: 50, LowStockThreshold: 10},
		{ID: 3, TrackInventory: false, StockQuantity: 1, LowStockThreshold: 10},
		{ID: 4, TrackInventory: true, StockQuantity: 0, LowStockThreshold: 10},
		{ID: 5, TrackInventory: true, StockQuantity: 10, LowStockThreshold: 10},
	}

	var findings []models.Finding
	for f := range svc.DetectProductAnomalies(products) {
		findings = append(findings, f)
	}

	// Every product with 0 < stock <= threshold is flagged, untracked ones
	// included; zero stock is excluded.
	require.Len(t, findings, 3)
	assert.Equal(t, int64(1), findings[0].ProductID)
	assert.Equal(t, int64(3), findings[1].ProductID)
	assert.Equal(t, int64(5), findings[2].ProductID)
	for _, f := range findings {
		assert.Equal(t, models.AlertAIAnomaly, f.AlertType)
		assert.Equal(t, models.SeverityHigh, f.Severity)
		assert.Equal(t, "Low stock detected", f.Message)
		assert.Equal(t, models.DetectedByAISystem, f.DetectedBy)
		assert.Equal(t, RuleBasedScore, f.Score)
	}
}

func TestDetectProductAnomaliesIsRestartable(t *testing.T) {
	t.Parallel()

	svc := New(logging.NewNop())
	products := []models.Product{
		{ID: 1, TrackInventory: true, StockQuantity: 3, LowStockThreshold: 10},
	}

	seq := svc.DetectProductAnomalies(products)
	for range 2 {
		count := 0
		for range seq {
			count++
		}
		assert.Equal(t, 1, count)
	}
}

func TestLoadModelRejectsUnknownFeature(t *testing.T) {
	t.Parallel()

	svc := New(logging.NewNop())
	mf := &ModelFile{
		ModelType:      ModelTypeAnomalyDetection,
		FeatureColumns: []string{"stock_quantity", "unit_price"},
		Scaler:         &StandardScaler{Mean: []float64{0, 0}, Scale: []float64{1, 1}},
		Forest:         &IsolationForest{SubsampleSize: 2},
	}

	err := svc.LoadModel(mf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unit_price")
	assert.False(t, svc.ModelLoaded(), "rejected model must not activate")
}

func TestLoadModelRejectsScalerMismatch(t *testing.T) {
	t.Parallel()

	svc := New(logging.NewNop())
	mf := &ModelFile{
		ModelType:      ModelTypeAnomalyDetection,
		FeatureColumns: []string{"stock_quantity", "sales_velocity"},
		Scaler:         &StandardScaler{Mean: []float64{0}, Scale: []float64{1}},
		Forest:         &IsolationForest{SubsampleSize: 2},
	}

	err := svc.LoadModel(mf)
	require.Error(t, err)
	assert.False(t, svc.ModelLoaded())
}

func TestModelFileValidate(t *testing.T) {
	t.Parallel()

	valid := &ModelFile{
		ModelType:      ModelTypeAnomalyDetection,
		FeatureColumns: []string{"stock_quantity", "sales_velocity"},
		Scaler:         &StandardScaler{Mean: []float64{0, 0}, Scale: []float64{1, 1}},
		Forest:         &IsolationForest{SubsampleSize: 2},
	}
	assert.NoError(t, valid.Validate())

	unknown := *valid
	unknown.FeatureColumns = []string{"stock_quantity", "unit_price"}
	assert.Error(t, unknown.Validate())

	mismatched := *valid
	mismatched.Scaler = &StandardScaler{Mean: []float64{0}, Scale: []float64{1}}
	assert.Error(t, mismatched.Validate())

	noScaler := *valid
	noScaler.Scaler = nil
	assert.Error(t, noScaler.Validate())
}

func TestModelBasedDetectionFlagsOutlier(t *testing.T) {
	t.Parallel()

	// Tight cluster plus one obvious outlier, in (stock, velocity) space.
	rows := make([][]float64, 0, 101)
	for i := 0; i < 50; i++ {
		rows = append(rows, []float64{100 + float64(i%5), 10 + float64(i%3)})
		rows = append(rows, []float64{95 + float64(i%4), 12 + float64(i%2)})
	}
	rows = append(rows, []float64{5000, 500})

	scaler, err := FitScaler(rows)
	require.NoError(t, err)
	scaled, err := scaler.TransformAll(rows)
	require.NoError(t, err)
	forest, err := TrainIsolationForest(scaled, DefaultTrees, DefaultSubsampleSize, DefaultContamination, DefaultSeed)
	require.NoError(t, err)

	svc := New(logging.NewNop())
	err = svc.LoadModel(&ModelFile{
		ModelType:      ModelTypeAnomalyDetection,
		FeatureColumns: []string{"stock_quantity", "sales_velocity"},
		Scaler:         scaler,
		Forest:         forest,
	})
	require.NoError(t, err)
	require.True(t, svc.ModelLoaded())

	products := []models.Product{
		{ID: 1, StockQuantity: 100, SalesVelocity: 11},
		{ID: 2, StockQuantity: 5000, SalesVelocity: 500},
	}

	var findings []models.Finding
	for f := range svc.DetectProductAnomalies(products) {
		findings = append(findings, f)
	}

	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, int64(2), f.ProductID)
	assert.Equal(t, models.AlertAIAnomaly, f.AlertType)
	assert.Equal(t, models.DetectedByAISystem, f.DetectedBy)
	assert.Negative(t, f.Score)
	assert.Contains(t, f.Message, "Score: ")
}
