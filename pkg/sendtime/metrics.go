package sendtime

// MetricsSink receives calculation observability events. Implementations
// must be safe for concurrent use; the prometheus-backed implementation
// lives in pkg/metrics. The calculator itself stays a pure function of its
// inputs — all counters are owned by the caller through this interface.
type MetricsSink interface {
	// CalculationObserved records one finished calculation with its
	// outcome ("success" or an error category) and duration in seconds.
	CalculationObserved(status string, seconds float64)
	// FallbackObserved records a graceful degradation, e.g. "timezone".
	FallbackObserved(kind string)
	// AdjustmentObserved records one audit-trail entry by type.
	AdjustmentObserved(adjustmentType string)
}

// noopMetrics discards every observation.
type noopMetrics struct{}

func (noopMetrics) CalculationObserved(string, float64) {}
func (noopMetrics) FallbackObserved(string)             {}
func (noopMetrics) AdjustmentObserved(string)           {}
