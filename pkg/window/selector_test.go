package window

import (
	"testing"
	"time"
)

func wins(pairs ...[2]int) []Window {
	out := make([]Window, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, Window{StartHour: p[0], EndHour: p[1], Enabled: true})
	}
	return out
}

func TestNormalize(t *testing.T) {
	t.Run("drops disabled and invalid windows", func(t *testing.T) {
		in := []Window{
			{StartHour: 14, EndHour: 15, Enabled: true},
			{StartHour: 9, EndHour: 10, Enabled: true},
			{StartHour: 11, EndHour: 12, Enabled: false},
			{StartHour: 18, EndHour: 6, Enabled: true}, // inverted
		}
		got := Normalize(in)
		if len(got) != 2 {
			t.Fatalf("got %d windows, want 2", len(got))
		}
		if got[0].StartHour != 9 || got[1].StartHour != 14 {
			t.Errorf("windows not in ascending order: %v", got)
		}
	})

	t.Run("empty set substitutes defaults", func(t *testing.T) {
		got := Normalize(nil)
		want := DefaultWindows()
		if len(got) != len(want) {
			t.Fatalf("got %d windows, want %d defaults", len(got), len(want))
		}
	})

	t.Run("all disabled substitutes defaults", func(t *testing.T) {
		got := Normalize([]Window{{StartHour: 9, EndHour: 10, Enabled: false}})
		if len(got) != len(DefaultWindows()) {
			t.Fatalf("got %v, want defaults", got)
		}
	})
}

func TestValidate(t *testing.T) {
	if err := Validate(wins([2]int{9, 10})); err != nil {
		t.Errorf("valid window rejected: %v", err)
	}
	if err := Validate([]Window{{StartHour: 10, EndHour: 9, Enabled: true}}); err == nil {
		t.Error("inverted enabled window accepted")
	}
	// A malformed but disabled window is ignorable.
	if err := Validate([]Window{{StartHour: 10, EndHour: 9, Enabled: false}}); err != nil {
		t.Errorf("disabled window rejected: %v", err)
	}
}

func TestSelectSlot(t *testing.T) {
	windows := wins([2]int{9, 10}, [2]int{14, 15})

	t.Run("inside a window keeps timestamp unchanged", func(t *testing.T) {
		in := time.Date(2024, 1, 1, 14, 23, 45, 0, time.UTC)
		sel := SelectSlot(in, windows)
		if sel.Adjusted {
			t.Error("in-window timestamp marked adjusted")
		}
		if !sel.Time.Equal(in) {
			t.Errorf("time = %v, want unchanged %v", sel.Time, in)
		}
		if sel.Window.StartHour != 14 {
			t.Errorf("selected window %v, want 14-15", sel.Window)
		}
	})

	t.Run("before first window snaps to its start", func(t *testing.T) {
		in := time.Date(2024, 1, 1, 7, 45, 12, 0, time.UTC)
		sel := SelectSlot(in, windows)
		if !sel.Adjusted {
			t.Error("expected adjustment")
		}
		want := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
		if !sel.Time.Equal(want) {
			t.Errorf("time = %v, want %v", sel.Time, want)
		}
	})

	t.Run("between windows snaps to the next start", func(t *testing.T) {
		in := time.Date(2024, 1, 1, 11, 30, 0, 0, time.UTC)
		sel := SelectSlot(in, windows)
		want := time.Date(2024, 1, 1, 14, 0, 0, 0, time.UTC)
		if !sel.Time.Equal(want) {
			t.Errorf("time = %v, want %v", sel.Time, want)
		}
	})

	t.Run("past all windows rolls to next day first window", func(t *testing.T) {
		in := time.Date(2024, 1, 1, 16, 0, 0, 0, time.UTC)
		sel := SelectSlot(in, windows)
		want := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
		if !sel.Time.Equal(want) {
			t.Errorf("time = %v, want %v", sel.Time, want)
		}
	})

	t.Run("first matching window wins ties", func(t *testing.T) {
		overlapping := wins([2]int{9, 12}, [2]int{10, 14})
		in := time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC)
		sel := SelectSlot(in, overlapping)
		if sel.Window.StartHour != 9 {
			t.Errorf("selected window %v, want first (9-12)", sel.Window)
		}
	})

	t.Run("idempotent on its own output", func(t *testing.T) {
		inputs := []time.Time{
			time.Date(2024, 1, 1, 3, 10, 0, 0, time.UTC),
			time.Date(2024, 1, 1, 9, 59, 59, 0, time.UTC),
			time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC),
		}
		for _, in := range inputs {
			first := SelectSlot(in, windows)
			second := SelectSlot(first.Time, windows)
			if second.Adjusted {
				t.Errorf("SelectSlot(%v) output %v re-adjusted", in, first.Time)
			}
			if !second.Time.Equal(first.Time) {
				t.Errorf("SelectSlot not idempotent: %v -> %v -> %v", in, first.Time, second.Time)
			}
		}
	})

	t.Run("never lands outside every window", func(t *testing.T) {
		for hour := 0; hour < 24; hour++ {
			in := time.Date(2024, 1, 1, hour, 30, 0, 0, time.UTC)
			sel := SelectSlot(in, windows)
			inWindow := false
			for _, w := range windows {
				if w.Contains(sel.Time.Hour()) {
					inWindow = true
				}
			}
			if !inWindow {
				t.Errorf("hour %d: selected %v is outside every window", hour, sel.Time)
			}
		}
	})
}
