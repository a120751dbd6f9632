package timezone

import "sync/atomic"

// Stats tracks validation outcomes with lock-free counters so resolvers can
// be shared across concurrent calculations.
type Stats struct {
	total     atomic.Int64
	valid     atomic.Int64
	invalid   atomic.Int64
	fallbacks atomic.Int64
	errors    atomic.Int64
}

// StatsSnapshot is a point-in-time copy of the validation counters.
type StatsSnapshot struct {
	Total     int64 `json:"total"`
	Valid     int64 `json:"valid"`
	Invalid   int64 `json:"invalid"`
	Fallbacks int64 `json:"fallbacks"`
	Errors    int64 `json:"errors"`
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Total:     s.total.Load(),
		Valid:     s.valid.Load(),
		Invalid:   s.invalid.Load(),
		Fallbacks: s.fallbacks.Load(),
		Errors:    s.errors.Load(),
	}
}

// Reset zeroes all counters.
func (s *Stats) Reset() {
	s.total.Store(0)
	s.valid.Store(0)
	s.invalid.Store(0)
	s.fallbacks.Store(0)
	s.errors.Store(0)
}
