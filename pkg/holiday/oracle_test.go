package holiday

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
)

type fakeFetcher struct {
	holidays map[string][]Record // keyed by "CC:year"
	err      error
	calls    int
}

func (f *fakeFetcher) Holidays(_ context.Context, year int, countryCode string) ([]Record, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.holidays[cacheKey(countryCode, year)], nil
}

func newTestOracle(t *testing.T, cfg Config, fetcher Fetcher) *Oracle {
	t.Helper()
	return NewOracle(cfg, slog.Default(), WithFetcher(fetcher))
}

func TestIsHolidayDisabledSkipsIO(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("must not be called")}
	o := newTestOracle(t, Config{Enabled: false}, fetcher)

	isHoliday, name := o.IsHoliday(context.Background(), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "US")
	if isHoliday || name != "" {
		t.Errorf("disabled oracle reported holiday %q", name)
	}
	if fetcher.calls != 0 {
		t.Errorf("disabled oracle performed %d fetches", fetcher.calls)
	}
}

func TestIsHolidayRemoteHit(t *testing.T) {
	fetcher := &fakeFetcher{holidays: map[string][]Record{
		"US:2024": {
			{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Name: "New Year's Day", CountryCode: "US"},
			{Date: time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC), Name: "Independence Day", CountryCode: "US"},
		},
	}}
	o := newTestOracle(t, DefaultConfig(), fetcher)

	isHoliday, name := o.IsHoliday(context.Background(), time.Date(2024, 1, 1, 14, 30, 0, 0, time.UTC), "US")
	if !isHoliday || name != "New Year's Day" {
		t.Fatalf("IsHoliday = %v %q, want true New Year's Day", isHoliday, name)
	}

	// Time-of-day must not matter; only the calendar date does.
	if isHoliday, _ := o.IsHoliday(context.Background(), time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "US"); isHoliday {
		t.Error("Jan 2 reported as holiday")
	}
}

func TestIsHolidayCachesPerCountryYear(t *testing.T) {
	fetcher := &fakeFetcher{holidays: map[string][]Record{}}
	o := newTestOracle(t, DefaultConfig(), fetcher)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	o.IsHoliday(context.Background(), day, "US")
	o.IsHoliday(context.Background(), day.AddDate(0, 0, 1), "US")
	o.IsHoliday(context.Background(), day, "BR")

	if fetcher.calls != 2 {
		t.Errorf("fetch calls = %d, want 2 (one per country/year)", fetcher.calls)
	}
	stats := o.Stats()
	if stats.CacheHits != 1 {
		t.Errorf("cache hits = %d, want 1", stats.CacheHits)
	}
}

func TestIsHolidayFailsOpenToFallbackDataset(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("api unreachable")}
	o := newTestOracle(t, DefaultConfig(), fetcher)

	// US has a built-in fixed-date dataset: Jan 1 is still a holiday.
	isHoliday, name := o.IsHoliday(context.Background(), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "US")
	if !isHoliday || name != "New Year's Day" {
		t.Errorf("fallback lookup = %v %q, want true New Year's Day", isHoliday, name)
	}

	// The fallback list is cached, so the outage is not re-hit per date.
	o.IsHoliday(context.Background(), time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "US")
	if fetcher.calls != 1 {
		t.Errorf("fetch calls = %d, want 1", fetcher.calls)
	}

	stats := o.Stats()
	if stats.FetchFailures != 1 || stats.FallbackHits != 1 {
		t.Errorf("stats = %+v, want 1 failure and 1 fallback hit", stats)
	}
}

func TestIsHolidayFailsOpenToNotHoliday(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("api unreachable")}
	o := newTestOracle(t, DefaultConfig(), fetcher)

	// No local dataset for SG: the date is treated as not a holiday.
	isHoliday, _ := o.IsHoliday(context.Background(), time.Date(2024, 8, 9, 0, 0, 0, 0, time.UTC), "SG")
	if isHoliday {
		t.Error("fail-open lookup reported a holiday")
	}
}

func TestFlushForcesRefetch(t *testing.T) {
	fetcher := &fakeFetcher{holidays: map[string][]Record{}}
	o := newTestOracle(t, DefaultConfig(), fetcher)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	o.IsHoliday(context.Background(), day, "US")
	o.Flush()
	o.IsHoliday(context.Background(), day, "US")

	if fetcher.calls != 2 {
		t.Errorf("fetch calls after flush = %d, want 2", fetcher.calls)
	}
}
