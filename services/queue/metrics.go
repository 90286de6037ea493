package queue

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Metrics counts queue traffic. A nil *Metrics records nothing.
type Metrics struct {
	enqueued  *prometheus.CounterVec
	dropped   *prometheus.CounterVec
	processed *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		enqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gobarber",
			Subsystem: "queue",
			Name:      "jobs_enqueued_total",
			Help:      "Jobs accepted by the queue.",
		}, []string{"key"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gobarber",
			Subsystem: "queue",
			Name:      "jobs_dropped_total",
			Help:      "Jobs rejected before execution.",
		}, []string{"key", "reason"}),
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gobarber",
			Subsystem: "queue",
			Name:      "jobs_processed_total",
			Help:      "Jobs executed, by outcome.",
		}, []string{"key", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gobarber",
			Subsystem: "queue",
			Name:      "job_duration_seconds",
			Help:      "Job handler latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"key"}),
	}
	if reg != nil {
		reg.MustRegister(m.enqueued, m.dropped, m.processed, m.duration)
	}
	return m
}

// Reporter is where both backends send job outcomes. Failures are logged,
// counted, and forwarded to OnFailure when set.
type Reporter struct {
	Logger    *zap.Logger
	Metrics   *Metrics
	OnFailure func(key string, err error)
}

func (r Reporter) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func (r Reporter) enqueued(key string) {
	if r.Metrics != nil {
		r.Metrics.enqueued.WithLabelValues(key).Inc()
	}
}

func (r Reporter) duplicate(key, uniqueID string) {
	r.logger().Info("Duplicate job dropped", zap.String("key", key), zap.String("unique_id", uniqueID))
	if r.Metrics != nil {
		r.Metrics.dropped.WithLabelValues(key, "duplicate").Inc()
	}
}

func (r Reporter) rejected(key string, err error) {
	r.logger().Error("Job rejected", zap.String("key", key), zap.Error(err))
	if r.Metrics != nil {
		r.Metrics.dropped.WithLabelValues(key, "error").Inc()
	}
	if r.OnFailure != nil {
		r.OnFailure(key, err)
	}
}

func (r Reporter) succeeded(key string, elapsed time.Duration) {
	r.logger().Debug("Job processed", zap.String("key", key), zap.Duration("elapsed", elapsed))
	if r.Metrics != nil {
		r.Metrics.processed.WithLabelValues(key, "success").Inc()
		r.Metrics.duration.WithLabelValues(key).Observe(elapsed.Seconds())
	}
}

func (r Reporter) failed(key string, err error, elapsed time.Duration) {
	r.logger().Error("Job failed", zap.String("key", key), zap.Duration("elapsed", elapsed), zap.Error(err))
	if r.Metrics != nil {
		r.Metrics.processed.WithLabelValues(key, "failure").Inc()
		if elapsed > 0 {
			r.Metrics.duration.WithLabelValues(key).Observe(elapsed.Seconds())
		}
	}
	if r.OnFailure != nil {
		r.OnFailure(key, err)
	}
}
