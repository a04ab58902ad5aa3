// Package metrics provides Prometheus metrics definitions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "continuity"

// Analysis outcome labels.
const (
	StatusOK        = "ok"
	StatusCancelled = "cancelled"
	StatusInvalid   = "invalid"
)

var (
	// AnalysesTotal counts engine runs by outcome.
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "analyses_total",
			Help:      "Total analysis runs by status",
		},
		[]string{"status"},
	)

	// AnalysisDuration tracks engine run latency.
	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "analysis_duration_seconds",
			Help:      "Analysis run duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	// ReadinessScore is the latest readiness score per organization.
	ReadinessScore = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "bcdr",
			Name:      "readiness_score",
			Help:      "Latest readiness score (0-100) by organization",
		},
		[]string{"organization"},
	)

	// SkippedEdges counts dependency edges dropped for unknown endpoints.
	SkippedEdges = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "skipped_edges_total",
			Help:      "Total dependency edges skipped because an endpoint is unknown",
		},
	)

	// SinkFailures counts failed report or alert writes by sink.
	SinkFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "sink_failures_total",
			Help:      "Total failed writes by sink",
		},
		[]string{"sink"},
	)

	// ReportsWritten counts reports flushed to all sinks.
	ReportsWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "reports_written_total",
			Help:      "Total reports flushed to sinks",
		},
	)

	// CacheLookups counts report cache lookups by result.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "cache_lookups_total",
			Help:      "Report cache lookups by result",
		},
		[]string{"result"},
	)

	// AlertsSent counts readiness alerts emitted.
	AlertsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "sent_total",
			Help:      "Total readiness alerts emitted",
		},
	)
)

// RecordAnalysis records one engine run.
func RecordAnalysis(status string, duration time.Duration) {
	AnalysesTotal.WithLabelValues(status).Inc()
	AnalysisDuration.Observe(duration.Seconds())
}

// RecordReadiness sets the readiness gauge for an organization.
func RecordReadiness(organization string, score int) {
	if organization == "" {
		organization = "unknown"
	}
	ReadinessScore.WithLabelValues(organization).Set(float64(score))
}

// RecordSkippedEdges adds n skipped edges.
func RecordSkippedEdges(n int) {
	if n > 0 {
		SkippedEdges.Add(float64(n))
	}
}

// RecordSinkFailure records a failed write to sink.
func RecordSinkFailure(sink string) {
	SinkFailures.WithLabelValues(sink).Inc()
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(result).Inc()
}
