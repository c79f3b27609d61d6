package detector

import (
	"fmt"
	"iter"
	"strings"

	"inventory-monitor/internal/models"
)

// SensorRange is the (min, max) band a reading is considered normal within.
// Boundary values are in range.
type SensorRange struct {
	Min float64
	Max float64
}

func (r SensorRange) width() float64 { return r.Max - r.Min }

// baseRanges are the normal bands per sensor type. Hand-tuned policy values.
var baseRanges = map[models.SensorType]SensorRange{
	models.SensorTemperature: {15, 25},    // Celsius
	models.SensorHumidity:    {30, 70},    // percentage
	models.SensorWeight:      {0.95, 1.05}, // ratio to expected
	models.SensorVibration:   {0, 5},      // intensity
	models.SensorPressure:    {95, 105},   // kPa
}

// NormalRanges returns the sensor bands for a product, tightened or widened
// by its category: refrigerated food narrows temperature, electronics lower
// humidity tolerance, fragile goods lower vibration tolerance.
func NormalRanges(category string) map[models.SensorType]SensorRange {
	ranges := make(map[models.SensorType]SensorRange, len(baseRanges))
	for k, v := range baseRanges {
		ranges[k] = v
	}
	cat := strings.ToLower(category)
	switch {
	case strings.Contains(cat, "food"):
		ranges[models.SensorTemperature] = SensorRange{0, 5}
	case strings.Contains(cat, "electronic"):
		ranges[models.SensorHumidity] = SensorRange{20, 50}
	case strings.Contains(cat, "fragile"):
		ranges[models.SensorVibration] = SensorRange{0, 2}
	}
	return ranges
}

var sensorAlertTypes = map[models.SensorType]string{
	models.SensorTemperature: "temperature_anomaly",
	models.SensorHumidity:    "humidity_issue",
	models.SensorWeight:      "weight_discrepancy",
	models.SensorVibration:   "vibration_alert",
	models.SensorPressure:    "pressure_anomaly",
}

// SensorAlertType maps a sensor type to its alert type.
func SensorAlertType(t models.SensorType) string {
	if at, ok := sensorAlertTypes[t]; ok {
		return at
	}
	return "sensor_anomaly"
}

// RangeSeverity grades how far outside the band a value falls. The deviation
// is measured to the nearest bound; thresholds are strict, so a deviation of
// exactly half the band width is high, not critical.
func RangeSeverity(value float64, r SensorRange) models.Severity {
	deviation := abs(value - r.Min)
	if d := abs(value - r.Max); d < deviation {
		deviation = d
	}
	width := r.width()
	switch {
	case deviation > width*0.5:
		return models.SeverityCritical
	case deviation > width*0.3:
		return models.SeverityHigh
	case deviation > width*0.1:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

func sensorMessage(r models.SensorReading, alertType string, severity models.Severity) string {
	var base string
	switch alertType {
	case "temperature_anomaly":
		base = fmt.Sprintf("Temperature anomaly detected: %g°C", r.Value)
	case "humidity_issue":
		base = fmt.Sprintf("Humidity issue: %g%%", r.Value)
	case "weight_discrepancy":
		base = fmt.Sprintf("Weight discrepancy: %g", r.Value)
	case "vibration_alert":
		base = fmt.Sprintf("Unusual vibration detected: %g", r.Value)
	case "pressure_anomaly":
		base = fmt.Sprintf("Pressure anomaly: %g", r.Value)
	default:
		base = fmt.Sprintf("Sensor anomaly: %s = %g", r.SensorType, r.Value)
	}
	return fmt.Sprintf("%s - %s", strings.ToUpper(string(severity)), base)
}

// ScoreReading checks one reading against the product's normal band. The
// second return is false when the reading is in range or the sensor type has
// no configured band.
func ScoreReading(r models.SensorReading, p models.Product) (models.Finding, bool) {
	band, ok := NormalRanges(p.Category)[r.SensorType]
	if !ok {
		return models.Finding{}, false
	}
	if r.Value >= band.Min && r.Value <= band.Max {
		return models.Finding{}, false
	}

	alertType := SensorAlertType(r.SensorType)
	severity := RangeSeverity(r.Value, band)
	return models.Finding{
		ProductID:  p.ID,
		AlertType:  alertType,
		Severity:   severity,
		Message:    sensorMessage(r, alertType, severity),
		DetectedBy: models.DetectedBySensorSystem,
		Score:      r.Value,
	}, true
}

// ReadingProduct pairs a reading with its product for batch scoring.
type ReadingProduct struct {
	Reading models.SensorReading
	Product models.Product
}

// ScoreReadings lazily scores a batch. A reading that is in range, or whose
// sensor type is unknown, is skipped; one bad record never aborts the rest.
func ScoreReadings(batch []ReadingProduct) iter.Seq[models.Finding] {
	return func(yield func(models.Finding) bool) {
		for _, rp := range batch {
			if f, ok := ScoreReading(rp.Reading, rp.Product); ok {
				if !yield(f) {
					return
				}
			}
		}
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
