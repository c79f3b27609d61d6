package detector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-monitor/internal/logging"
)

func clusterWithOutlier() [][]float64 {
	rows := make([][]float64, 0, 201)
	for i := 0; i < 200; i++ {
		rows = append(rows, []float64{float64(i%7) * 0.1, 1 + float64(i%5)*0.1})
	}
	rows = append(rows, []float64{50, 50})
	return rows
}

func TestTrainIsolationForestDeterministic(t *testing.T) {
	t.Parallel()

	rows := clusterWithOutlier()
	f1, err := TrainIsolationForest(rows, 20, 64, 0.1, 42)
	require.NoError(t, err)
	f2, err := TrainIsolationForest(rows, 20, 64, 0.1, 42)
	require.NoError(t, err)

	assert.Equal(t, f1.Offset, f2.Offset)
	assert.Equal(t, f1.Score(rows[0]), f2.Score(rows[0]))
}

func TestIsolationForestSeparatesOutlier(t *testing.T) {
	t.Parallel()

	rows := clusterWithOutlier()
	forest, err := TrainIsolationForest(rows, DefaultTrees, DefaultSubsampleSize, DefaultContamination, DefaultSeed)
	require.NoError(t, err)

	inlier := []float64{0.3, 1.2}
	outlier := []float64{50, 50}

	assert.Greater(t, forest.Score(outlier), forest.Score(inlier))
	assert.True(t, forest.IsOutlier(outlier))
	assert.False(t, forest.IsOutlier(inlier))
	assert.Negative(t, forest.Decision(outlier))
	assert.Positive(t, forest.Decision(inlier))
}

func TestIsolationForestScoreBounds(t *testing.T) {
	t.Parallel()

	rows := clusterWithOutlier()
	forest, err := TrainIsolationForest(rows, 50, 128, 0.1, 1)
	require.NoError(t, err)

	for _, row := range rows {
		s := forest.Score(row)
		assert.Greater(t, s, 0.0)
		assert.Less(t, s, 1.0)
	}
}

func TestTrainIsolationForestEmptyData(t *testing.T) {
	t.Parallel()

	_, err := TrainIsolationForest(nil, DefaultTrees, DefaultSubsampleSize, DefaultContamination, DefaultSeed)
	assert.Error(t, err)
}

func TestAvgPathLength(t *testing.T) {
	t.Parallel()

	assert.Zero(t, avgPathLength(0))
	assert.Zero(t, avgPathLength(1))
	assert.Equal(t, 1.0, avgPathLength(2))
	// c(256) is about 10.24 for the standard subsample size.
	assert.InDelta(t, 10.24, avgPathLength(256), 0.05)
}

func TestQuantile(t *testing.T) {
	t.Parallel()

	values := []float64{4, 1, 3, 2}
	assert.Equal(t, 1.0, quantile(values, 0))
	assert.Equal(t, 4.0, quantile(values, 1))
	assert.Equal(t, 2.5, quantile(values, 0.5))
	assert.Equal(t, []float64{4, 1, 3, 2}, values, "input must not be reordered")
}

func TestModelFileRoundTrip(t *testing.T) {
	t.Parallel()

	rows := clusterWithOutlier()
	scaler, err := FitScaler(rows)
	require.NoError(t, err)
	scaled, err := scaler.TransformAll(rows)
	require.NoError(t, err)
	forest, err := TrainIsolationForest(scaled, 20, 64, 0.1, 42)
	require.NoError(t, err)

	path := t.TempDir() + "/model.json"
	mf := &ModelFile{
		ModelType:      ModelTypeAnomalyDetection,
		FeatureColumns: []string{"stock_quantity", "sales_velocity"},
		Scaler:         scaler,
		Forest:         forest,
	}
	require.NoError(t, mf.Save(path))

	loaded, err := LoadModelFile(path)
	require.NoError(t, err)
	assert.Equal(t, mf.FeatureColumns, loaded.FeatureColumns)
	assert.Equal(t, forest.Offset, loaded.Forest.Offset)

	// The reloaded forest must classify identically.
	probe, err := scaler.Transform([]float64{50, 50})
	require.NoError(t, err)
	assert.Equal(t, forest.Score(probe), loaded.Forest.Score(probe))

	svc := New(logging.NewNop())
	require.NoError(t, svc.LoadModel(loaded))
}

func TestLoadModelFileIncomplete(t *testing.T) {
	t.Parallel()

	path := t.TempDir() + "/bad.json"
	mf := &ModelFile{ModelType: ModelTypeAnomalyDetection}
	require.NoError(t, mf.Save(path))

	_, err := LoadModelFile(path)
	assert.Error(t, err)
}

func TestFitScaler(t *testing.T) {
	t.Parallel()

	rows := [][]float64{
		{1, 10, 7},
		{3, 20, 7},
		{5, 30, 7},
	}
	scaler, err := FitScaler(rows)
	require.NoError(t, err)

	assert.Equal(t, []float64{3, 20, 7}, scaler.Mean)
	assert.InDelta(t, math.Sqrt(8.0/3.0), scaler.Scale[0], 1e-12)
	assert.Equal(t, 1.0, scaler.Scale[2], "constant column gets unit scale")

	scaled, err := scaler.Transform([]float64{3, 20, 7})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, scaled)

	_, err = scaler.Transform([]float64{1, 2})
	assert.Error(t, err)
}
