// Package metrics provides a Prometheus implementation of the calculator's
// metrics sink.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// CalculatorMetrics exposes counters/histograms for send-time calculations.
// It satisfies sendtime.MetricsSink.
type CalculatorMetrics struct {
	calculations *prometheus.HistogramVec
	fallbacks    *prometheus.CounterVec
	adjustments  *prometheus.CounterVec
}

// NewCalculatorMetrics registers the calculator metrics on reg, falling back
// to the default registerer when reg is nil.
func NewCalculatorMetrics(reg prometheus.Registerer) *CalculatorMetrics {
	m := &CalculatorMetrics{
		calculations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sendtime",
			Name:      "calculation_duration_seconds",
			Help:      "Duration of send-time calculations by outcome",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sendtime",
			Name:      "fallbacks_total",
			Help:      "Total fallback substitutions by kind",
		}, []string{"kind"}),
		adjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sendtime",
			Name:      "adjustments_total",
			Help:      "Total audit-trail adjustments by type",
		}, []string{"type"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.calculations, m.fallbacks, m.adjustments)
	return m
}

func (m *CalculatorMetrics) CalculationObserved(status string, seconds float64) {
	if m == nil {
		return
	}
	m.calculations.WithLabelValues(status).Observe(seconds)
}

func (m *CalculatorMetrics) FallbackObserved(kind string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(kind).Inc()
}

func (m *CalculatorMetrics) AdjustmentObserved(adjustmentType string) {
	if m == nil {
		return
	}
	m.adjustments.WithLabelValues(adjustmentType).Inc()
}
