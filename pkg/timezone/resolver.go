// Package timezone resolves contact country codes to timezone records and
// converts timestamps to and from the fixed-offset reference clock that the
// downstream wait mechanism reads.
package timezone

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ReferenceOffsetHours is the fixed UTC offset of the reference clock. The
// reference clock does not observe daylight-saving transitions.
const ReferenceOffsetHours = -6.0

// ReferenceZone is the time.Location of the reference clock.
var ReferenceZone = time.FixedZone("REF-06", int(ReferenceOffsetHours*3600))

// DefaultCountry is used when a contact's country code cannot be resolved.
const DefaultCountry = "US"

// Resolution is the outcome of resolving a country code. A fallback is not an
// error: the caller always receives a usable Record. Degraded is set only in
// the terminal case where even the default country could not be resolved and
// the reference clock's own identity was substituted.
type Resolution struct {
	Input            string `json:"input"`
	EffectiveCountry string `json:"effective_country"`
	Record           Record `json:"record"`
	FallbackUsed     bool   `json:"fallback_used"`
	FallbackReason   string `json:"fallback_reason,omitempty"`
	Degraded         bool   `json:"degraded,omitempty"`
}

// Resolver maps country codes to timezone records with graceful fallbacks.
// Safe for concurrent use; the mapping table is immutable and statistics are
// kept with atomic counters.
type Resolver struct {
	logger         *slog.Logger
	defaultCountry string
	stats          Stats
}

// NewResolver creates a Resolver that falls back to defaultCountry for
// unresolvable inputs. An empty defaultCountry selects DefaultCountry.
func NewResolver(logger *slog.Logger, defaultCountry string) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultCountry == "" {
		defaultCountry = DefaultCountry
	}
	return &Resolver{logger: logger, defaultCountry: strings.ToUpper(defaultCountry)}
}

// DefaultCountry returns the configured fallback country code.
func (r *Resolver) DefaultCountry() string { return r.defaultCountry }

// Stats returns a snapshot of the resolver's validation counters.
func (r *Resolver) Stats() StatsSnapshot { return r.stats.Snapshot() }

// ResetStats zeroes the validation counters.
func (r *Resolver) ResetStats() { r.stats.Reset() }

// Resolve maps a raw country code to a timezone record. Validation failures
// fall back to the configured default country, in priority order: missing
// input, wrong length, non-alphabetic, not present in the mapping table.
// Resolve never returns an error; if the default country itself is unmapped,
// the result is a degraded reference-clock identity record.
func (r *Resolver) Resolve(countryCode string) Resolution {
	r.stats.total.Add(1)

	normalized := strings.ToUpper(strings.TrimSpace(countryCode))

	switch {
	case normalized == "":
		return r.fallback(countryCode, "country code missing")
	case len(normalized) != 2:
		return r.fallback(countryCode, fmt.Sprintf("country code %q is not 2 characters", normalized))
	case !isAlpha(normalized):
		return r.fallback(countryCode, fmt.Sprintf("country code %q contains non-alphabetic characters", normalized))
	}

	rec, ok := Lookup(normalized)
	if !ok {
		return r.fallback(countryCode, fmt.Sprintf("country code %q is not in the mapping table", normalized))
	}

	r.stats.valid.Add(1)
	return Resolution{
		Input:            countryCode,
		EffectiveCountry: normalized,
		Record:           rec,
	}
}

// fallback substitutes the default country for an unresolvable input. If the
// default country is itself unmapped the terminal reference-clock identity is
// used and Degraded is set.
func (r *Resolver) fallback(input, reason string) Resolution {
	r.stats.invalid.Add(1)
	r.stats.fallbacks.Add(1)

	rec, ok := Lookup(r.defaultCountry)
	if !ok {
		r.stats.errors.Add(1)
		r.logger.Error("default country is unmapped, degrading to reference clock identity",
			"default_country", r.defaultCountry, "input", input)
		return Resolution{
			Input:            input,
			EffectiveCountry: r.defaultCountry,
			Record: Record{
				CountryCode: r.defaultCountry,
				CountryName: "Reference Clock",
				Zone:        ReferenceZone.String(),
				OffsetHours: ReferenceOffsetHours,
			},
			FallbackUsed:   true,
			FallbackReason: reason + " (default country unmapped, using reference clock)",
			Degraded:       true,
		}
	}

	r.logger.Debug("country code fallback", "input", input, "reason", reason, "effective", r.defaultCountry)
	return Resolution{
		Input:            input,
		EffectiveCountry: r.defaultCountry,
		Record:           rec,
		FallbackUsed:     true,
		FallbackReason:   reason,
	}
}

func isAlpha(s string) bool {
	for _, ch := range s {
		if ch < 'A' || ch > 'Z' {
			return false
		}
	}
	return true
}
