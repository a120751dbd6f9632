package window

import (
	"context"
	"time"
)

// DefaultMaxLookaheadDays bounds the holiday-avoidance loop.
const DefaultMaxLookaheadDays = 30

// HolidayChecker reports whether a calendar day is a public holiday. The
// holiday.Oracle satisfies this; lookups are expected to fail open.
type HolidayChecker interface {
	IsHoliday(ctx context.Context, day time.Time, countryCode string) (bool, string)
}

// WeekendShift describes a weekend-exclusion outcome.
type WeekendShift struct {
	Time         time.Time `json:"time"`
	DaysAdjusted int       `json:"days_adjusted"`
}

// ApplyWeekendExclusion advances a Saturday to the following Monday (+2 days)
// and a Sunday to Monday (+1 day), preserving time of day. A no-op when
// disabled or when t already falls on a weekday.
func ApplyWeekendExclusion(t time.Time, enabled bool) WeekendShift {
	if !enabled {
		return WeekendShift{Time: t}
	}
	switch t.Weekday() {
	case time.Saturday:
		return WeekendShift{Time: t.AddDate(0, 0, 2), DaysAdjusted: 2}
	case time.Sunday:
		return WeekendShift{Time: t.AddDate(0, 0, 1), DaysAdjusted: 1}
	default:
		return WeekendShift{Time: t}
	}
}

// SkippedHoliday records one holiday passed over during exclusion.
type SkippedHoliday struct {
	Date time.Time `json:"date"`
	Name string    `json:"name"`
}

// HolidayShift describes a holiday-exclusion outcome.
type HolidayShift struct {
	Time            time.Time        `json:"time"`
	DaysAdjusted    int              `json:"days_adjusted"`
	SkippedHolidays []SkippedHoliday `json:"skipped_holidays,omitempty"`
	LookaheadHit    bool             `json:"lookahead_hit,omitempty"`
}

// ApplyHolidayExclusion advances t one day at a time while it lands on a
// public holiday. A day reached by skipping a holiday that is itself a
// weekend is also skipped, regardless of the weekend flag elsewhere in the
// pipeline. The loop is bounded by maxLookaheadDays; hitting the bound is not
// an error, the date reached so far is returned with LookaheadHit set.
// Holiday-check failures degrade to "not a holiday" inside the checker.
func ApplyHolidayExclusion(ctx context.Context, t time.Time, countryCode string, enabled bool, checker HolidayChecker, maxLookaheadDays int) HolidayShift {
	if !enabled || checker == nil {
		return HolidayShift{Time: t}
	}
	if maxLookaheadDays <= 0 {
		maxLookaheadDays = DefaultMaxLookaheadDays
	}

	shift := HolidayShift{Time: t}
	for i := 0; i < maxLookaheadDays; i++ {
		isHoliday, name := checker.IsHoliday(ctx, shift.Time, countryCode)
		if !isHoliday {
			return shift
		}

		shift.SkippedHolidays = append(shift.SkippedHolidays, SkippedHoliday{
			Date: atHour(shift.Time, 0),
			Name: name,
		})
		shift.Time = shift.Time.AddDate(0, 0, 1)
		shift.DaysAdjusted++

		// Landing on a weekend while avoiding a holiday skips the
		// weekend too, even when the weekend rule alone is off.
		weekend := ApplyWeekendExclusion(shift.Time, true)
		shift.Time = weekend.Time
		shift.DaysAdjusted += weekend.DaysAdjusted
	}

	shift.LookaheadHit = true
	return shift
}
