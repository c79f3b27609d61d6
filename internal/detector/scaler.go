package detector

import (
	"fmt"
	"math"
)

// StandardScaler centers each feature to zero mean and unit variance.
// Mean and Scale are fit on training data and frozen with the model.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// FitScaler computes per-column mean and standard deviation over rows.
func FitScaler(rows [][]float64) (*StandardScaler, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("cannot fit scaler on empty data")
	}
	dims := len(rows[0])
	mean := make([]float64, dims)
	scale := make([]float64, dims)

	for _, row := range rows {
		for j, v := range row {
			mean[j] += v
		}
	}
	n := float64(len(rows))
	for j := range mean {
		mean[j] /= n
	}
	for _, row := range rows {
		for j, v := range row {
			d := v - mean[j]
			scale[j] += d * d
		}
	}
	for j := range scale {
		scale[j] = math.Sqrt(scale[j] / n)
		if scale[j] == 0 {
			// Constant column; transform maps it to zero instead of dividing by zero.
			scale[j] = 1
		}
	}
	return &StandardScaler{Mean: mean, Scale: scale}, nil
}

// Transform scales one feature vector in place-safe fashion.
func (s *StandardScaler) Transform(row []float64) ([]float64, error) {
	if len(row) != len(s.Mean) {
		return nil, fmt.Errorf("expected %d features, got %d", len(s.Mean), len(row))
	}
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Mean[j]) / s.Scale[j]
	}
	return out, nil
}

// TransformAll scales a batch of feature vectors.
func (s *StandardScaler) TransformAll(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		scaled, err := s.Transform(row)
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}
