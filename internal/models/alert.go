package models

import (
	"time"

	"github.com/google/uuid"
)

// Severity is ordered: low < medium < high < critical.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns the position of s in the severity ordering, for comparisons.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	}
	return -1
}

// Urgent reports whether s triggers the escalation notification tier.
func (s Severity) Urgent() bool {
	return s == SeverityHigh || s == SeverityCritical
}

// Detector identity values recorded on alerts.
const (
	DetectedByAISystem     = "ai_system"
	DetectedBySystem       = "system"
	DetectedBySensorSystem = "sensor_system"
)

// Alert types.
const (
	AlertAIAnomaly = "ai_anomaly"
	AlertStockLow  = "stock_low"
)

// Finding is the transient output of the anomaly scorer. It is consumed
// immediately by the alert factory and never persisted.
type Finding struct {
	ProductID  int64
	AlertType  string
	Severity   Severity
	Message    string
	DetectedBy string
	Score      float64
}

// Alert is the persisted record of a detected anomaly. Alerts are never
// deleted; the only mutation is flipping IsResolved.
type Alert struct {
	ID         uuid.UUID `json:"id"`
	ProductID  int64     `json:"product_id"`
	AlertType  string    `json:"alert_type"`
	Severity   Severity  `json:"severity"`
	Message    string    `json:"message"`
	DetectedBy string    `json:"detected_by"`
	IsResolved bool      `json:"is_resolved"`
	CreatedAt  time.Time `json:"created_at"`
}
