package timezone

import (
	"testing"
	"time"
)

func TestToReferenceClock(t *testing.T) {
	r := NewResolver(testLogger(), "US")

	tests := []struct {
		name     string
		country  string
		in       time.Time
		wantWall string // wall clock in the reference zone
	}{
		{
			name:     "Brazil UTC-3 to reference UTC-6",
			country:  "BR",
			in:       time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC),
			wantWall: "2024-01-06 09:00",
		},
		{
			name:     "US UTC-5 to reference UTC-6",
			country:  "US",
			in:       time.Date(2024, 1, 1, 14, 0, 0, 0, time.UTC),
			wantWall: "2024-01-01 13:00",
		},
		{
			name:     "India fractional offset +5.5",
			country:  "IN",
			in:       time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC),
			wantWall: "2024-03-15 01:00",
		},
		{
			name:     "Nepal fractional offset +5.75",
			country:  "NP",
			in:       time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
			wantWall: "2024-03-15 00:15",
		},
		{
			name:     "Mexico UTC-6 is identity",
			country:  "MX",
			in:       time.Date(2024, 6, 1, 8, 45, 0, 0, time.UTC),
			wantWall: "2024-06-01 08:45",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv, res := r.ToReferenceClock(tt.in, tt.country)
			if res.FallbackUsed {
				t.Fatalf("unexpected fallback: %s", res.FallbackReason)
			}
			got := conv.Converted.Format("2006-01-02 15:04")
			if got != tt.wantWall {
				t.Errorf("converted wall = %s, want %s", got, tt.wantWall)
			}
			if conv.Converted.Location() != ReferenceZone {
				t.Errorf("converted location = %v, want reference zone", conv.Converted.Location())
			}
		})
	}
}

func TestReferenceClockRoundTrip(t *testing.T) {
	r := NewResolver(testLogger(), "US")

	in := time.Date(2024, 5, 20, 17, 42, 0, 0, time.UTC)
	for _, code := range Countries() {
		conv, _ := r.ToReferenceClock(in, code)
		back, _ := r.FromReferenceClock(conv.Converted, code)

		want := in.Format("2006-01-02 15:04")
		got := back.Converted.Format("2006-01-02 15:04")
		if got != want {
			t.Errorf("%s: round trip = %s, want %s", code, got, want)
		}
	}
}

func TestToReferenceClockMinutePrecision(t *testing.T) {
	r := NewResolver(testLogger(), "US")

	// +5.75 relative to -6 is an 11h45m shift; seconds must be preserved.
	in := time.Date(2024, 1, 1, 12, 0, 30, 0, time.UTC)
	conv, _ := r.ToReferenceClock(in, "NP")
	if conv.Converted.Second() != 30 {
		t.Errorf("seconds not preserved: got %d", conv.Converted.Second())
	}
	if conv.Converted.Minute() != 15 {
		t.Errorf("minute = %d, want 15", conv.Converted.Minute())
	}
}
