package sendtime

import (
	"time"

	"github.com/journeykit/sendtime/pkg/holiday"
	"github.com/journeykit/sendtime/pkg/window"
)

// Option configures a Calculator.
type Option func(*options)

// WithDefaultCountry sets the country substituted when a contact's country
// code cannot be resolved.
func WithDefaultCountry(code string) Option {
	return func(o *options) { o.defaultCountry = code }
}

// WithMinFutureBuffer sets how far into the future a computed send time must
// be before it is accepted without adjustment.
func WithMinFutureBuffer(d time.Duration) Option {
	return func(o *options) { o.minFutureBuffer = d }
}

// WithMaxLookaheadDays bounds the holiday-avoidance loop.
func WithMaxLookaheadDays(days int) Option {
	return func(o *options) { o.maxLookaheadDays = days }
}

// WithHolidayConfig sets the holiday oracle configuration.
func WithHolidayConfig(cfg holiday.Config) Option {
	return func(o *options) { o.holidayCfg = &cfg }
}

// WithHolidayFetcher overrides the remote holiday source (tests, custom feeds).
func WithHolidayFetcher(f holiday.Fetcher) Option {
	return func(o *options) { o.holidayFetcher = f }
}

// WithCacheDir enables a disk-backed holiday cache in dir (CLI usage).
func WithCacheDir(dir string) Option {
	return func(o *options) { o.cacheDir = dir }
}

// WithNoCache disables holiday-cache persistence; lookups still use the
// in-memory cache for the lifetime of the calculator.
func WithNoCache() Option {
	return func(o *options) { o.noCache = true }
}

// WithMetrics installs a metrics sink. The default sink discards everything.
func WithMetrics(sink MetricsSink) Option {
	return func(o *options) { o.metrics = sink }
}

// WithClock overrides the wall-clock source used for the future-time floor.
// Tests use this to make calculations reproducible.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

type options struct {
	defaultCountry   string
	minFutureBuffer  time.Duration
	maxLookaheadDays int
	holidayCfg       *holiday.Config
	holidayFetcher   holiday.Fetcher
	cacheDir         string
	noCache          bool
	metrics          MetricsSink
	now              func() time.Time
}

// Contact identifies the recipient a send time is computed for. Immutable
// input: the calculator never mutates it.
type Contact struct {
	// SubscriberKey uniquely identifies the recipient. Required.
	SubscriberKey string `json:"subscriber_key"`
	// CountryCode is the contact's ISO 3166-1 alpha-2 country. Optional;
	// absence triggers the default-country fallback.
	CountryCode string `json:"country_code,omitempty"`
	// EntryTime anchors the computation. Zero means "now".
	EntryTime time.Time `json:"entry_time,omitempty"`
}

// ActivityConfig is the per-computation configuration supplied by the
// invoking journey. Not mutated.
type ActivityConfig struct {
	TimeWindows      []window.Window `json:"time_windows,omitempty"`
	SkipWeekends     bool            `json:"skip_weekends"`
	SkipHolidays     bool            `json:"skip_holidays"`
	FallbackBehavior string          `json:"fallback_behavior,omitempty"`
}

// AdjustmentType tags one entry in the audit trail.
type AdjustmentType string

// Adjustment types, in pipeline order.
const (
	AdjustTimezoneFallback AdjustmentType = "timezone_fallback"
	AdjustTimezone         AdjustmentType = "timezone_conversion"
	AdjustTimeWindow       AdjustmentType = "time_window_adjustment"
	AdjustWeekend          AdjustmentType = "weekend_exclusion"
	AdjustHoliday          AdjustmentType = "holiday_exclusion"
	AdjustFutureTime       AdjustmentType = "future_time_adjustment"
)

// Adjustment is one append-only audit record of a pipeline stage that moved
// the timestamp (or substituted a fallback).
type Adjustment struct {
	Type         AdjustmentType `json:"type"`
	Reason       string         `json:"reason"`
	DaysAdjusted int            `json:"days_adjusted"`
	Before       time.Time      `json:"before"`
	After        time.Time      `json:"after"`
}

// StepStatus is the outcome of a single pipeline stage.
type StepStatus string

// Step statuses.
const (
	StepOK      StepStatus = "ok"
	StepSkipped StepStatus = "skipped"
	StepFailed  StepStatus = "failed"
)

// Step records the status of one pipeline stage, in execution order.
type Step struct {
	Name   string     `json:"name"`
	Status StepStatus `json:"status"`
	Detail string     `json:"detail,omitempty"`
}

// Error categories for failed calculations. Stable strings: collaborators
// branch on them.
const (
	ErrCategoryInvalidContact     = "invalid_contact"
	ErrCategoryInvalidConfig      = "invalid_config"
	ErrCategoryIncompatibleResult = "incompatible_result"
	ErrCategoryCanceled           = "canceled"
)

// Validation carries the terminal compatibility flags of a result.
type Validation struct {
	FutureTime     bool `json:"future_time"`
	ValidDateTime  bool `json:"valid_date_time"`
	WaitCompatible bool `json:"wait_compatible"`
}

// Result is the outcome of one calculation. On failure Success is false,
// ErrorCategory/Error are set, and OriginalTime echoes the input; there is
// never a partial OptimalSendTime.
type Result struct {
	SubscriberKey    string       `json:"subscriber_key"`
	Success          bool         `json:"success"`
	ErrorCategory    string       `json:"error_category,omitempty"`
	Error            string       `json:"error,omitempty"`
	OriginalTime     time.Time    `json:"original_time"`
	OptimalSendTime  time.Time    `json:"optimal_send_time,omitempty"`
	EffectiveCountry string       `json:"effective_country,omitempty"`
	Timezone         string       `json:"timezone,omitempty"`
	FallbackUsed     bool         `json:"fallback_used,omitempty"`
	Adjustments      []Adjustment `json:"adjustments,omitempty"`
	Steps            []Step       `json:"steps,omitempty"`
	Validation       Validation   `json:"validation"`
}
