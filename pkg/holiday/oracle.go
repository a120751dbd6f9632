// Package holiday answers "is this calendar day a public holiday in this
// country" with a TTL cache in front of a retrying remote lookup. Lookups
// fail open: an unreachable API degrades to the built-in fixed-date dataset,
// or to "not a holiday", and never blocks a send-time calculation.
package holiday

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Defaults for Config fields left at their zero value.
const (
	defaultBaseURL         = "https://date.nager.at"
	defaultCacheTTL        = 24 * time.Hour
	defaultCacheMaxEntries = 512
	defaultFetchAttempts   = 3
	defaultFetchDelay      = 500 * time.Millisecond
	defaultFetchTimeout    = 10 * time.Second
)

// Record is a single public holiday produced by the remote lookup or the
// local fallback dataset. Date carries no meaningful time component.
type Record struct {
	Date        time.Time `json:"date"`
	Name        string    `json:"name"`
	CountryCode string    `json:"country_code"`
}

// Config controls the oracle's cache and remote lookup behavior. Zero values
// select the documented defaults.
type Config struct {
	// Enabled gates all holiday lookups. When false IsHoliday always
	// reports false without any I/O.
	Enabled bool
	// BaseURL of the Nager.Date-compatible API.
	BaseURL string
	// CacheTTL bounds how long a (country, year) holiday list is reused.
	CacheTTL time.Duration
	// CacheMaxEntries bounds the number of cached (country, year) pairs.
	CacheMaxEntries int
	// FetchAttempts bounds the remote retry loop.
	FetchAttempts int
	// FetchDelay is the base backoff delay between retries.
	FetchDelay time.Duration
	// FetchTimeout caps each individual HTTP request.
	FetchTimeout time.Duration
}

// DefaultConfig returns the oracle configuration with lookups enabled.
func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		BaseURL:         defaultBaseURL,
		CacheTTL:        defaultCacheTTL,
		CacheMaxEntries: defaultCacheMaxEntries,
		FetchAttempts:   defaultFetchAttempts,
		FetchDelay:      defaultFetchDelay,
		FetchTimeout:    defaultFetchTimeout,
	}
}

// LookupStats counts lookup outcomes for observability.
type LookupStats struct {
	Lookups       int64 `json:"lookups"`
	CacheHits     int64 `json:"cache_hits"`
	RemoteFetches int64 `json:"remote_fetches"`
	FetchFailures int64 `json:"fetch_failures"`
	FallbackHits  int64 `json:"fallback_hits"`
}

// Oracle reports public holidays with caching and graceful degradation.
// Safe for concurrent use.
type Oracle struct {
	cfg     Config
	fetcher Fetcher
	cache   *Cache
	logger  *slog.Logger

	lookups       atomic.Int64
	cacheHits     atomic.Int64
	remoteFetches atomic.Int64
	fetchFailures atomic.Int64
	fallbackHits  atomic.Int64
}

// OracleOption configures an Oracle beyond its Config.
type OracleOption func(*Oracle)

// WithFetcher overrides the remote holiday source. Used by tests and by
// callers with their own holiday feed.
func WithFetcher(f Fetcher) OracleOption {
	return func(o *Oracle) { o.fetcher = f }
}

// WithCache supplies a pre-built cache, e.g. a disk-backed one for the CLI.
func WithCache(c *Cache) OracleOption {
	return func(o *Oracle) { o.cache = c }
}

// NewOracle creates an Oracle with a memory cache and the HTTP client unless
// options substitute them.
func NewOracle(cfg Config, logger *slog.Logger, opts ...OracleOption) *Oracle {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.CacheMaxEntries <= 0 {
		cfg.CacheMaxEntries = defaultCacheMaxEntries
	}

	o := &Oracle{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(o)
	}
	if o.fetcher == nil {
		o.fetcher = NewClient(cfg.BaseURL, cfg.FetchAttempts, cfg.FetchDelay, cfg.FetchTimeout, logger)
	}
	if o.cache == nil {
		o.cache = NewMemoryCache(cfg.CacheTTL, cfg.CacheMaxEntries, logger)
	}
	return o
}

// Enabled reports whether holiday lookups are active.
func (o *Oracle) Enabled() bool { return o.cfg.Enabled }

// Stats returns a snapshot of lookup outcome counters.
func (o *Oracle) Stats() LookupStats {
	return LookupStats{
		Lookups:       o.lookups.Load(),
		CacheHits:     o.cacheHits.Load(),
		RemoteFetches: o.remoteFetches.Load(),
		FetchFailures: o.fetchFailures.Load(),
		FallbackHits:  o.fallbackHits.Load(),
	}
}

// Flush drops every cached holiday list.
func (o *Oracle) Flush() { o.cache.Flush() }

// Close releases the cache (flushing it to disk when disk-backed).
func (o *Oracle) Close() error { return o.cache.Close() }

// IsHoliday reports whether day is a public holiday in countryCode, along
// with the holiday name. The lookup never returns an error: on remote
// failure it degrades to the local fixed-date dataset and finally to
// "not a holiday".
func (o *Oracle) IsHoliday(ctx context.Context, day time.Time, countryCode string) (bool, string) {
	if !o.cfg.Enabled {
		return false, ""
	}
	o.lookups.Add(1)

	year := day.Year()
	if list, ok := o.cache.Get(countryCode, year); ok {
		o.cacheHits.Add(1)
		return scan(list, day)
	}

	o.remoteFetches.Add(1)
	list, err := o.fetcher.Holidays(ctx, year, countryCode)
	if err != nil {
		o.fetchFailures.Add(1)
		o.logger.Warn("holiday lookup failed, failing open",
			"country", countryCode, "year", year, "error", err)

		// Local static dataset, if we have one for this country. Cached
		// with the normal TTL so the outage does not hammer the API.
		if records, ok := fallbackRecords(year, countryCode); ok {
			o.fallbackHits.Add(1)
			o.cache.Set(countryCode, year, records)
			return scan(records, day)
		}
		return false, ""
	}

	o.cache.Set(countryCode, year, list)
	return scan(list, day)
}

// scan finds day in a holiday list by calendar date.
func scan(list []Record, day time.Time) (bool, string) {
	key := dateKey(day)
	for _, rec := range list {
		if dateKey(rec.Date) == key {
			return true, rec.Name
		}
	}
	return false, ""
}
