// Package detector scores products and sensor readings for anomalies.
//
// The product scorer is a variant resolved at startup: rule-based when no
// trained model is active, model-based (isolation forest plus scaling
// transform) otherwise. Scoring never mutates state and a single bad record
// never aborts a batch.
package detector

import (
	"fmt"
	"iter"
	"sync"

	"inventory-monitor/internal/logging"
	"inventory-monitor/internal/models"
)

// RuleBasedScore is the fixed score attached to rule-path findings.
const RuleBasedScore = 0.8

type productModel struct {
	forest    *IsolationForest
	scaler    *StandardScaler
	columns   []string
	accessors []func(models.Product) float64
}

// Service holds the currently loaded detector. It is constructed once per
// process and passed by reference; a newly trained model is hot-swapped in
// via LoadModel.
type Service struct {
	mu     sync.RWMutex
	logger *logging.Logger
	model  *productModel
}

// New returns a Service in rule-based mode.
func New(logger *logging.Logger) *Service {
	return &Service{logger: logger}
}

// LoadModel swaps in a trained model. The model's declared feature columns
// are validated against the accessor map; a mismatch rejects the model and
// leaves the current detector untouched.
func (s *Service) LoadModel(mf *ModelFile) error {
	if err := mf.Validate(); err != nil {
		return fmt.Errorf("model validation failed: %w", err)
	}
	accessors, err := resolveFeatures(mf.FeatureColumns)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.model = &productModel{
		forest:    mf.Forest,
		scaler:    mf.Scaler,
		columns:   mf.FeatureColumns,
		accessors: accessors,
	}
	s.mu.Unlock()

	s.logger.Infof("Loaded %s model (features: %v)", mf.ModelType, mf.FeatureColumns)
	return nil
}

// ModelLoaded reports whether the model-based path is active.
func (s *Service) ModelLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model != nil
}

// DetectProductAnomalies scores products and yields one finding per anomaly.
// The sequence is lazy and restartable; each range re-runs the scoring.
func (s *Service) DetectProductAnomalies(products []models.Product) iter.Seq[models.Finding] {
	s.mu.RLock()
	model := s.model
	s.mu.RUnlock()

	if model == nil {
		return s.ruleBased(products)
	}
	return s.modelBased(model, products)
}

// ruleBased flags products sitting at or below their low-stock threshold.
// Deterministic, no external dependency. The track_inventory flag gates only
// the scheduled stock-level check, not this scorer.
func (s *Service) ruleBased(products []models.Product) iter.Seq[models.Finding] {
	return func(yield func(models.Finding) bool) {
		for _, p := range products {
			if p.StockQuantity > 0 && p.StockQuantity <= p.LowStockThreshold {
				f := models.Finding{
					ProductID:  p.ID,
					AlertType:  models.AlertAIAnomaly,
					Severity:   models.SeverityHigh,
					Message:    "Low stock detected",
					DetectedBy: models.DetectedByAISystem,
					Score:      RuleBasedScore,
				}
				if !yield(f) {
					return
				}
			}
		}
	}
}

// modelBased extracts each product's feature vector, applies the scaling
// transform, and classifies with the forest. A product that fails to score
// is logged and skipped.
func (s *Service) modelBased(model *productModel, products []models.Product) iter.Seq[models.Finding] {
	return func(yield func(models.Finding) bool) {
		for _, p := range products {
			row := make([]float64, len(model.accessors))
			for j, accessor := range model.accessors {
				row[j] = accessor(p)
			}
			scaled, err := model.scaler.Transform(row)
			if err != nil {
				s.logger.Errorf("Failed to scale product %d: %v", p.ID, err)
				continue
			}
			if !model.forest.IsOutlier(scaled) {
				continue
			}
			score := model.forest.Decision(scaled)
			f := models.Finding{
				ProductID:  p.ID,
				AlertType:  models.AlertAIAnomaly,
				Severity:   models.SeverityHigh,
				Message:    fmt.Sprintf("Score: %.4f", score),
				DetectedBy: models.DetectedByAISystem,
				Score:      score,
			}
			if !yield(f) {
				return
			}
		}
	}
}
