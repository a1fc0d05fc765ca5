package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bloomwatch_http_requests_total",
			Help: "Total HTTP requests by method, path and status.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bloomwatch_http_request_duration_seconds",
			Help:    "HTTP request latency by method and path.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Engine Metrics
var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bloomwatch_runs_total",
			Help: "Engine runs by outcome.",
		},
		[]string{"outcome"},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bloomwatch_run_duration_seconds",
			Help:    "Duration of one engine run.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	RegionsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bloomwatch_regions_processed_total",
			Help: "Regions processed by outcome (ok, skipped, failed).",
		},
		[]string{"outcome"},
	)

	SyntheticFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bloomwatch_synthetic_fallbacks_total",
			Help: "Raster layers served by the synthetic generator.",
		},
		[]string{"layer"},
	)
)

// Detection Metrics
var (
	EventsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bloomwatch_events_detected_total",
			Help: "Bloom events detected by confidence tier.",
		},
		[]string{"tier"},
	)
)

// Alerting Metrics
var (
	AlertsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bloomwatch_alerts_dispatched_total",
			Help: "Alert records written by channel and status.",
		},
		[]string{"channel", "status"},
	)
)
