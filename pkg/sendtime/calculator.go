// Package sendtime computes the next allowed send timestamp for a
// marketing-journey contact: timezone resolution to a fixed reference clock,
// time-window slot selection, weekend and holiday exclusion, and future-time
// enforcement, with a complete audit trail of every adjustment.
package sendtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/journeykit/sendtime/pkg/holiday"
	"github.com/journeykit/sendtime/pkg/timezone"
	"github.com/journeykit/sendtime/pkg/window"
)

// DefaultMinFutureBuffer is the minimum distance into the future a computed
// send time must keep from "now".
const DefaultMinFutureBuffer = 5 * time.Minute

// maxHorizon caps how far ahead a computed send time may land.
const maxHorizon = 365 * 24 * time.Hour

// Calculator runs the send-time optimization pipeline. Create one with New
// and share it across goroutines; each Calculate call is independent and the
// only shared state is the holiday cache and the statistics counters.
type Calculator struct {
	logger           *slog.Logger
	resolver         *timezone.Resolver
	oracle           *holiday.Oracle
	metrics          MetricsSink
	now              func() time.Time
	minFutureBuffer  time.Duration
	maxLookaheadDays int
}

// New creates a Calculator. The context governs the holiday cache's
// background persistence when a cache directory is configured.
func New(ctx context.Context, logger *slog.Logger, opts ...Option) (*Calculator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.minFutureBuffer <= 0 {
		o.minFutureBuffer = DefaultMinFutureBuffer
	}
	if o.maxLookaheadDays <= 0 {
		o.maxLookaheadDays = window.DefaultMaxLookaheadDays
	}
	if o.metrics == nil {
		o.metrics = noopMetrics{}
	}
	if o.now == nil {
		o.now = time.Now
	}

	holidayCfg := holiday.DefaultConfig()
	if o.holidayCfg != nil {
		holidayCfg = *o.holidayCfg
	}

	oracleOpts := []holiday.OracleOption{}
	if o.holidayFetcher != nil {
		oracleOpts = append(oracleOpts, holiday.WithFetcher(o.holidayFetcher))
	}
	if o.cacheDir != "" && !o.noCache {
		cache, err := holiday.NewCache(ctx, o.cacheDir, holidayCfg.CacheTTL, holidayCfg.CacheMaxEntries, logger)
		if err != nil {
			logger.Warn("holiday cache initialization failed, using memory cache", "error", err, "cache_dir", o.cacheDir)
		} else {
			oracleOpts = append(oracleOpts, holiday.WithCache(cache))
		}
	}

	return &Calculator{
		logger:           logger,
		resolver:         timezone.NewResolver(logger, o.defaultCountry),
		oracle:           holiday.NewOracle(holidayCfg, logger, oracleOpts...),
		metrics:          o.metrics,
		now:              o.now,
		minFutureBuffer:  o.minFutureBuffer,
		maxLookaheadDays: o.maxLookaheadDays,
	}, nil
}

// Close releases the holiday cache, flushing it to disk when disk-backed.
func (c *Calculator) Close() error {
	return c.oracle.Close()
}

// ResolverStats exposes the timezone validation counters.
func (c *Calculator) ResolverStats() timezone.StatsSnapshot { return c.resolver.Stats() }

// HolidayStats exposes the holiday lookup counters.
func (c *Calculator) HolidayStats() holiday.LookupStats { return c.oracle.Stats() }

// Calculate runs the full pipeline for one contact. It is a pure function of
// its inputs and the injected clock: identical inputs with a non-advanced
// clock produce identical results. Calculate never panics across component
// boundaries; input and terminal-compatibility violations return a failure
// Result, resolution and lookup problems degrade gracefully with an audit
// entry.
func (c *Calculator) Calculate(ctx context.Context, contact Contact, cfg ActivityConfig) Result {
	start := c.now()
	result := c.calculate(ctx, contact, cfg)

	status := "success"
	if !result.Success {
		status = result.ErrorCategory
	}
	c.metrics.CalculationObserved(status, c.now().Sub(start).Seconds())
	return result
}

func (c *Calculator) calculate(ctx context.Context, contact Contact, cfg ActivityConfig) Result {
	entry := contact.EntryTime
	if entry.IsZero() {
		entry = c.now().UTC()
	}

	result := Result{
		SubscriberKey: contact.SubscriberKey,
		OriginalTime:  entry,
	}

	if err := ctx.Err(); err != nil {
		result.ErrorCategory = ErrCategoryCanceled
		result.Error = err.Error()
		return result
	}

	// Stage 1: input validation. Fatal; no partial result.
	if err := validateInputs(contact, cfg); err != nil {
		var cerr *configError
		category := ErrCategoryInvalidContact
		if errors.As(err, &cerr) {
			category = ErrCategoryInvalidConfig
		}
		c.logger.Warn("calculation rejected", "subscriber", contact.SubscriberKey, "error", err)
		result.ErrorCategory = category
		result.Error = err.Error()
		result.Steps = append(result.Steps, Step{Name: "validate_input", Status: StepFailed, Detail: err.Error()})
		return result
	}
	result.Steps = append(result.Steps, Step{Name: "validate_input", Status: StepOK})

	windows := window.Normalize(cfg.TimeWindows)

	// Stage 2: timezone resolution and reference-clock conversion.
	conv, res := c.resolver.ToReferenceClock(entry, contact.CountryCode)
	result.EffectiveCountry = res.EffectiveCountry
	result.Timezone = res.Record.Zone
	result.FallbackUsed = res.FallbackUsed
	if res.FallbackUsed {
		c.metrics.FallbackObserved("timezone")
		result.Adjustments = append(result.Adjustments, Adjustment{
			Type:   AdjustTimezoneFallback,
			Reason: res.FallbackReason,
			Before: entry,
			After:  entry,
		})
		c.metrics.AdjustmentObserved(string(AdjustTimezoneFallback))
	}
	current := conv.Converted
	if conv.DeltaHours != 0 {
		result.Adjustments = append(result.Adjustments, Adjustment{
			Type: AdjustTimezone,
			Reason: fmt.Sprintf("converted from %s (UTC%+.2g) to reference clock (UTC%+.2g)",
				res.EffectiveCountry, res.Record.OffsetHours, timezone.ReferenceOffsetHours),
			Before: entry,
			After:  current,
		})
		c.metrics.AdjustmentObserved(string(AdjustTimezone))
	}
	result.Steps = append(result.Steps, Step{Name: "timezone", Status: StepOK, Detail: res.Record.Zone})

	// Stage 3: time-window slot selection.
	sel := window.SelectSlot(current, windows)
	if sel.Adjusted {
		result.Adjustments = append(result.Adjustments, Adjustment{
			Type:         AdjustTimeWindow,
			Reason:       fmt.Sprintf("moved into send window %s", sel.Window),
			DaysAdjusted: daysBetween(current, sel.Time),
			Before:       current,
			After:        sel.Time,
		})
		c.metrics.AdjustmentObserved(string(AdjustTimeWindow))
	}
	current = sel.Time
	result.Steps = append(result.Steps, Step{Name: "time_window", Status: StepOK, Detail: sel.Window.String()})

	// Stage 4: weekend exclusion.
	if cfg.SkipWeekends {
		shift := window.ApplyWeekendExclusion(current, true)
		if shift.DaysAdjusted > 0 {
			result.Adjustments = append(result.Adjustments, Adjustment{
				Type:         AdjustWeekend,
				Reason:       fmt.Sprintf("%s moved to following Monday", current.Weekday()),
				DaysAdjusted: shift.DaysAdjusted,
				Before:       current,
				After:        shift.Time,
			})
			c.metrics.AdjustmentObserved(string(AdjustWeekend))
			current = shift.Time
		}
		result.Steps = append(result.Steps, Step{Name: "weekend_exclusion", Status: StepOK})
	} else {
		result.Steps = append(result.Steps, Step{Name: "weekend_exclusion", Status: StepSkipped})
	}

	// Stage 5: holiday exclusion. Lookup failures degrade inside the
	// oracle; the loop is bounded.
	if cfg.SkipHolidays && c.oracle.Enabled() {
		shift := window.ApplyHolidayExclusion(ctx, current, result.EffectiveCountry, true, c.oracle, c.maxLookaheadDays)
		if shift.DaysAdjusted > 0 {
			names := make([]string, 0, len(shift.SkippedHolidays))
			for _, h := range shift.SkippedHolidays {
				names = append(names, h.Name)
			}
			result.Adjustments = append(result.Adjustments, Adjustment{
				Type:         AdjustHoliday,
				Reason:       fmt.Sprintf("skipped holidays: %s", strings.Join(names, ", ")),
				DaysAdjusted: shift.DaysAdjusted,
				Before:       current,
				After:        shift.Time,
			})
			c.metrics.AdjustmentObserved(string(AdjustHoliday))
			current = shift.Time
		}
		detail := ""
		if shift.LookaheadHit {
			detail = fmt.Sprintf("lookahead bound of %d days reached", c.maxLookaheadDays)
		}
		result.Steps = append(result.Steps, Step{Name: "holiday_exclusion", Status: StepOK, Detail: detail})
	} else {
		result.Steps = append(result.Steps, Step{Name: "holiday_exclusion", Status: StepSkipped})
	}

	// Stage 5b: date shifts preserve the selected hour, but a multi-day
	// shift cannot drift outside the window set. Re-validate and re-snap
	// if it somehow did.
	if resel := window.SelectSlot(current, windows); resel.Adjusted {
		result.Adjustments = append(result.Adjustments, Adjustment{
			Type:         AdjustTimeWindow,
			Reason:       fmt.Sprintf("re-aligned to send window %s after date shift", resel.Window),
			DaysAdjusted: daysBetween(current, resel.Time),
			Before:       current,
			After:        resel.Time,
		})
		c.metrics.AdjustmentObserved(string(AdjustTimeWindow))
		current = resel.Time
	}

	// Stage 6: future-time enforcement against the reference clock.
	now := c.now().In(timezone.ReferenceZone)
	floor := now.Add(c.minFutureBuffer)
	if !current.After(floor) {
		snapped := nextWindowStart(floor, windows)
		result.Adjustments = append(result.Adjustments, Adjustment{
			Type:         AdjustFutureTime,
			Reason:       fmt.Sprintf("send time was within %s of now, moved to next window start", c.minFutureBuffer),
			DaysAdjusted: daysBetween(current, snapped),
			Before:       current,
			After:        snapped,
		})
		c.metrics.AdjustmentObserved(string(AdjustFutureTime))
		current = snapped
	}
	result.Steps = append(result.Steps, Step{Name: "future_time", Status: StepOK})

	// Stage 7: terminal compatibility check. Violations fail the whole
	// calculation.
	result.Validation = Validation{
		ValidDateTime:  !current.IsZero() && current.Year() > 1970 && current.Year() < 3000,
		FutureTime:     current.After(now),
		WaitCompatible: current.Sub(now) <= maxHorizon,
	}
	if !result.Validation.ValidDateTime || !result.Validation.FutureTime || !result.Validation.WaitCompatible {
		result.ErrorCategory = ErrCategoryIncompatibleResult
		result.Error = fmt.Sprintf("computed send time %s is not compatible with the downstream wait (valid=%v future=%v within_horizon=%v)",
			current.Format(time.RFC3339), result.Validation.ValidDateTime, result.Validation.FutureTime, result.Validation.WaitCompatible)
		result.Steps = append(result.Steps, Step{Name: "compatibility", Status: StepFailed, Detail: result.Error})
		c.logger.Error("send time failed compatibility check",
			"subscriber", contact.SubscriberKey, "send_time", current, "error", result.Error)
		return result
	}
	result.Steps = append(result.Steps, Step{Name: "compatibility", Status: StepOK})

	result.Success = true
	result.OptimalSendTime = current
	c.logger.Debug("send time calculated",
		"subscriber", contact.SubscriberKey,
		"country", result.EffectiveCountry,
		"send_time", current,
		"adjustments", len(result.Adjustments))
	return result
}

// configError marks validation failures caused by the activity configuration
// rather than the contact.
type configError struct{ msg string }

func (e *configError) Error() string { return e.msg }

func validateInputs(contact Contact, cfg ActivityConfig) error {
	if contact.SubscriberKey == "" {
		return errors.New("subscriber key is required")
	}
	if err := window.Validate(cfg.TimeWindows); err != nil {
		return &configError{msg: err.Error()}
	}
	return nil
}

// nextWindowStart finds the first window start at or after floor, rolling to
// the next day's first window when none remain today.
func nextWindowStart(floor time.Time, windows []window.Window) time.Time {
	for _, w := range windows {
		start := time.Date(floor.Year(), floor.Month(), floor.Day(), w.StartHour, 0, 0, 0, floor.Location())
		if !start.Before(floor) {
			return start
		}
	}
	next := floor.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), windows[0].StartHour, 0, 0, 0, floor.Location())
}

// daysBetween counts whole calendar days from a to b.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}
