// Package telemetry exposes Prometheus metrics for page monitoring.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/entrhq/pagewatch/pkg/changedetect"
)

var (
	classificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagewatch_classifications_total",
		Help: "Classifications performed, by severity level",
	}, []string{"level"})

	baselinesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagewatch_baselines_initialized_total",
		Help: "Observations that only established a baseline",
	})

	reasonsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagewatch_change_reasons_total",
		Help: "Change reasons reported, by tier",
	}, []string{"tier"})

	captureDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pagewatch_metrics_capture_duration_seconds",
		Help:    "Time to collect one metrics vector from a page",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})

	captureErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagewatch_metrics_capture_errors_total",
		Help: "Failed metrics captures",
	})

	capturesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagewatch_captures_total",
		Help: "Screenshots and snapshots written, by kind",
	}, []string{"kind"})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pagewatch_active_sessions",
		Help: "Open browser sessions",
	})
)

// RecordClassification counts one classification result.
func RecordClassification(r changedetect.Result) {
	if r.BaselineInitialized {
		baselinesTotal.Inc()
	}
	classificationsTotal.WithLabelValues(string(r.Level)).Inc()
	if n := len(r.MajorReasons); n > 0 {
		reasonsTotal.WithLabelValues(string(changedetect.LevelMajor)).Add(float64(n))
	}
	if n := len(r.MinorReasons); n > 0 {
		reasonsTotal.WithLabelValues(string(changedetect.LevelMinor)).Add(float64(n))
	}
}

// ObserveCapture records how long a metrics capture took and whether it failed.
func ObserveCapture(started time.Time, err error) {
	captureDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		captureErrors.Inc()
	}
}

// RecordArtifact counts a written screenshot or snapshot.
func RecordArtifact(kind string) {
	capturesTotal.WithLabelValues(kind).Inc()
}

// SetActiveSessions reports the number of open sessions.
func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
