package plugin

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Conversion outcomes recorded on the conversions counter.
const (
	statusConverted = "converted"
	statusUnchanged = "unchanged"
	statusError     = "error"
)

// Metrics stores the conversion endpoint metrics.
type Metrics struct {
	conversions *prometheus.CounterVec
	duration    prometheus.Histogram
}

// NewMetrics creates a new set of metrics. Metrics will be registered to reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	var m Metrics

	m.conversions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "converter",
		Name:      "conversions_total",
		Help:      "Total number of conversion requests by outcome",
	}, []string{"status"})

	m.duration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "converter",
		Name:      "conversion_duration_seconds",
		Help:      "Time spent rewriting one configuration",
		Buckets:   prometheus.DefBuckets,
	})

	reg.MustRegister(m.conversions, m.duration)
	return &m
}

func (m *Metrics) observe(status string, elapsed time.Duration) {
	m.conversions.WithLabelValues(status).Inc()
	m.duration.Observe(elapsed.Seconds())
}
