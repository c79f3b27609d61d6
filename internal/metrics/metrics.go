package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invmon_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "invmon_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Pipeline metrics
	SensorReadingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invmon_sensor_readings_total",
			Help: "Total number of sensor readings processed",
		},
		[]string{"sensor_type", "status"}, // status: accepted, rejected
	)

	FindingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invmon_findings_total",
			Help: "Total number of anomaly findings produced by the scorer",
		},
		[]string{"detector"},
	)

	AlertsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invmon_alerts_created_total",
			Help: "Total number of alerts persisted",
		},
		[]string{"severity"},
	)

	NotificationsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invmon_notifications_created_total",
			Help: "Total number of notifications fanned out",
		},
		[]string{"type"},
	)

	AnalysisRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invmon_analysis_runs_total",
			Help: "Total number of analysis job runs",
		},
		[]string{"status"}, // status: ok, error
	)

	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "invmon_analysis_duration_seconds",
			Help:    "Duration of analysis job runs",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)
)
