package timezone

import (
	"math"
	"time"
)

// Conversion describes a reference-clock conversion that was applied to a
// timestamp.
type Conversion struct {
	Converted   time.Time `json:"converted"`
	OffsetHours float64   `json:"offset_hours"`
	DeltaHours  float64   `json:"delta_hours"`
}

// offsetDelta returns the wall-clock shift, in minutes, from a country clock
// to the reference clock. Fractional-hour offsets are handled at minute
// precision.
func offsetDelta(countryOffset float64) time.Duration {
	minutes := math.Round((ReferenceOffsetHours - countryOffset) * 60)
	return time.Duration(minutes) * time.Minute
}

// ToReferenceClock converts a timestamp's wall-clock value from a country's
// clock to the reference clock: converted = t - countryOffset + referenceOffset.
// The result carries the reference zone so later comparisons against "now"
// agree with their wall-clock values.
func (r *Resolver) ToReferenceClock(t time.Time, countryCode string) (Conversion, Resolution) {
	res := r.Resolve(countryCode)
	delta := offsetDelta(res.Record.OffsetHours)
	shifted := t.Add(delta)
	converted := restamp(shifted, ReferenceZone)
	return Conversion{
		Converted:   converted,
		OffsetHours: res.Record.OffsetHours,
		DeltaHours:  delta.Minutes() / 60,
	}, res
}

// FromReferenceClock is the inverse of ToReferenceClock: it shifts a
// reference-clock wall time back to the country's clock. Round-tripping the
// same country code is an identity transform to the minute.
func (r *Resolver) FromReferenceClock(t time.Time, countryCode string) (Conversion, Resolution) {
	res := r.Resolve(countryCode)
	delta := offsetDelta(res.Record.OffsetHours)
	shifted := t.Add(-delta)
	converted := restamp(shifted, time.UTC)
	return Conversion{
		Converted:   converted,
		OffsetHours: res.Record.OffsetHours,
		DeltaHours:  -delta.Minutes() / 60,
	}, res
}

// restamp rebuilds t's wall-clock fields in loc without shifting them.
func restamp(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}
