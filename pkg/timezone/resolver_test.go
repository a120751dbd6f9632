package timezone

import (
	"log/slog"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.Default()
}

func TestResolveValidCountries(t *testing.T) {
	r := NewResolver(testLogger(), "US")

	// Every code in the mapping table must resolve cleanly.
	for _, code := range Countries() {
		res := r.Resolve(code)
		if res.FallbackUsed {
			t.Errorf("Resolve(%q) used fallback unexpectedly: %s", code, res.FallbackReason)
		}
		if res.EffectiveCountry != code {
			t.Errorf("Resolve(%q) effective country = %q", code, res.EffectiveCountry)
		}
		if res.Record.Zone == "" {
			t.Errorf("Resolve(%q) returned empty zone", code)
		}
	}
}

func TestResolveNormalization(t *testing.T) {
	r := NewResolver(testLogger(), "US")

	tests := []struct {
		input string
		want  string
	}{
		{"us", "US"},
		{" br ", "BR"},
		{"De", "DE"},
		{"\tjp\n", "JP"},
	}
	for _, tt := range tests {
		res := r.Resolve(tt.input)
		if res.FallbackUsed {
			t.Errorf("Resolve(%q) used fallback: %s", tt.input, res.FallbackReason)
		}
		if res.EffectiveCountry != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.input, res.EffectiveCountry, tt.want)
		}
	}
}

func TestResolveFallbacks(t *testing.T) {
	r := NewResolver(testLogger(), "US")

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"too short", "U"},
		{"too long", "USA"},
		{"digits", "12"},
		{"mixed", "U1"},
		{"unmapped", "ZZ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Resolve(tt.input)
			if !res.FallbackUsed {
				t.Fatalf("Resolve(%q) expected fallback", tt.input)
			}
			if res.EffectiveCountry != "US" {
				t.Errorf("Resolve(%q) effective = %q, want default US", tt.input, res.EffectiveCountry)
			}
			if res.FallbackReason == "" {
				t.Error("fallback reason should be human readable, got empty string")
			}
			if res.Degraded {
				t.Error("fallback to a mapped default must not be degraded")
			}
		})
	}
}

func TestResolveDegradedWhenDefaultUnmapped(t *testing.T) {
	r := NewResolver(testLogger(), "XX")

	res := r.Resolve("ZZ")
	if !res.FallbackUsed || !res.Degraded {
		t.Fatalf("expected degraded fallback, got %+v", res)
	}
	if res.Record.OffsetHours != ReferenceOffsetHours {
		t.Errorf("degraded record offset = %v, want reference offset %v", res.Record.OffsetHours, ReferenceOffsetHours)
	}
}

func TestResolverStats(t *testing.T) {
	r := NewResolver(testLogger(), "US")

	r.Resolve("US")
	r.Resolve("BR")
	r.Resolve("ZZ")
	r.Resolve("")

	s := r.Stats()
	if s.Total != 4 {
		t.Errorf("total = %d, want 4", s.Total)
	}
	if s.Valid != 2 {
		t.Errorf("valid = %d, want 2", s.Valid)
	}
	if s.Invalid != 2 || s.Fallbacks != 2 {
		t.Errorf("invalid = %d, fallbacks = %d, want 2 and 2", s.Invalid, s.Fallbacks)
	}

	r.ResetStats()
	if s := r.Stats(); s.Total != 0 || s.Fallbacks != 0 {
		t.Errorf("after reset stats = %+v, want zeroes", s)
	}
}
