// Package window selects send-time slots inside allowed hour-of-day windows
// and advances dates past excluded days (weekends, public holidays).
package window

import (
	"fmt"
	"sort"
	"time"
)

// Window is an allowed hour-of-day interval [StartHour, EndHour) during which
// a send may occur.
type Window struct {
	StartHour int  `json:"start_hour"`
	EndHour   int  `json:"end_hour"`
	Enabled   bool `json:"enabled"`
}

// Valid reports whether the window's hours are well formed.
func (w Window) Valid() bool {
	return w.StartHour >= 0 && w.StartHour < w.EndHour && w.EndHour <= 24
}

// Contains reports whether an hour falls inside the window.
func (w Window) Contains(hour int) bool {
	return hour >= w.StartHour && hour < w.EndHour
}

func (w Window) String() string {
	return fmt.Sprintf("%02d:00-%02d:00", w.StartHour, w.EndHour)
}

// DefaultWindows is the built-in window set substituted when a configuration
// enables no windows at all.
func DefaultWindows() []Window {
	return []Window{
		{StartHour: 9, EndHour: 12, Enabled: true},
		{StartHour: 13, EndHour: 17, Enabled: true},
	}
}

// Normalize filters a window set down to the enabled, well-formed windows in
// ascending start-hour order. An empty result substitutes DefaultWindows.
func Normalize(windows []Window) []Window {
	out := make([]Window, 0, len(windows))
	for _, w := range windows {
		if w.Enabled && w.Valid() {
			out = append(out, w)
		}
	}
	if len(out) == 0 {
		return DefaultWindows()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartHour < out[j].StartHour })
	return out
}

// Validate rejects configurations with enabled but malformed windows. Unlike
// Normalize this is a hard check: a window with inverted or out-of-range
// hours is a configuration error, not something to silently drop.
func Validate(windows []Window) error {
	for i, w := range windows {
		if w.Enabled && !w.Valid() {
			return fmt.Errorf("window %d (%d-%d) is invalid: hours must satisfy 0 <= start < end <= 24", i, w.StartHour, w.EndHour)
		}
	}
	return nil
}

// Selection is the outcome of SelectSlot.
type Selection struct {
	Time     time.Time `json:"time"`
	Window   Window    `json:"window"`
	Adjusted bool      `json:"adjusted"`
}

// SelectSlot finds the next timestamp at or after t that falls inside one of
// the windows. Windows must already be normalized (enabled, ascending).
// Deterministic and single pass:
//  1. If t's hour is inside a window, t is kept unchanged; the first matching
//     window wins.
//  2. Otherwise the first window starting after t's hour is used, with
//     minutes and seconds zeroed.
//  3. If t's hour is past every window, the date advances one day to the
//     first window's start.
func SelectSlot(t time.Time, windows []Window) Selection {
	hour := t.Hour()

	for _, w := range windows {
		if w.Contains(hour) {
			return Selection{Time: t, Window: w}
		}
	}

	for _, w := range windows {
		if w.StartHour > hour {
			return Selection{Time: atHour(t, w.StartHour), Window: w, Adjusted: true}
		}
	}

	next := atHour(t.AddDate(0, 0, 1), windows[0].StartHour)
	return Selection{Time: next, Window: windows[0], Adjusted: true}
}

// atHour returns t's date at hour with minutes and seconds zeroed.
func atHour(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
}
