// Package metrics records generation metrics and pushes them to a
// Prometheus Pushgateway at the end of a run.
package metrics

import (
	"context"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"

	"promptgen/config"
)

// Recorder owns the metric set of one process
type Recorder struct {
	registry    *prometheus.Registry
	generations *prometheus.CounterVec
	failures    *prometheus.CounterVec
	duration    prometheus.Histogram
	pusher      *push.Pusher
	logger      *zap.Logger
}

// NewRecorder creates the metric set. Metrics are pushed only when a
// Pushgateway URL is configured.
func NewRecorder(cfg config.MetricsConfig, logger *zap.Logger) *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	r := &Recorder{
		registry: reg,
		generations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "promptgen_generations_total",
			Help: "Total number of image generation attempts by outcome.",
		}, []string{"outcome"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "promptgen_generation_failures_total",
			Help: "Total number of failed image generations by reason.",
		}, []string{"reason"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "promptgen_generation_duration_seconds",
			Help:    "Duration of image generation calls.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		logger: logger,
	}

	if cfg.PushgatewayURL != "" {
		hostname, _ := os.Hostname()
		r.pusher = push.New(cfg.PushgatewayURL, cfg.Job).
			Grouping("instance", hostname).
			Gatherer(reg)
		logger.Debug("Prometheus Pusher initialized", zap.String("url", cfg.PushgatewayURL), zap.String("instance", hostname))
	}
	return r
}

// ObserveGeneration records one attempt. reason is empty on success.
func (r *Recorder) ObserveGeneration(outcome, reason string, d time.Duration) {
	r.generations.WithLabelValues(outcome).Inc()
	if reason != "" {
		r.failures.WithLabelValues(reason).Inc()
	}
	r.duration.Observe(d.Seconds())
}

// Push sends the current values to the Pushgateway, if configured
func (r *Recorder) Push(ctx context.Context) error {
	if r.pusher == nil {
		return nil
	}
	if err := r.pusher.PushContext(ctx); err != nil {
		r.logger.Error("Failed to push metrics to Pushgateway", zap.Error(err))
		return err
	}
	r.logger.Debug("Metrics pushed to Pushgateway")
	return nil
}
