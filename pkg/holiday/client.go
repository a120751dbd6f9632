package holiday

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

// Fetcher retrieves the public holidays for a country and year. Implemented
// by Client for the remote API and by test doubles.
type Fetcher interface {
	Holidays(ctx context.Context, year int, countryCode string) ([]Record, error)
}

// Client fetches public holidays from a Nager.Date-compatible API with
// bounded retries and exponential backoff. This is the only component in the
// pipeline that performs network I/O.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	attempts   int
	delay      time.Duration
}

// apiHoliday is the remote API's wire shape for a single holiday.
type apiHoliday struct {
	Date      string `json:"date"` // YYYY-MM-DD
	LocalName string `json:"localName"`
	Name      string `json:"name"`
	Country   string `json:"countryCode"`
}

// NewClient creates a holiday API client. attempts and delay bound the retry
// loop; requestTimeout caps each individual HTTP call.
func NewClient(baseURL string, attempts int, delay, requestTimeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if attempts <= 0 {
		attempts = defaultFetchAttempts
	}
	if delay <= 0 {
		delay = defaultFetchDelay
	}
	if requestTimeout <= 0 {
		requestTimeout = defaultFetchTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
		baseURL:    baseURL,
		attempts:   attempts,
		delay:      delay,
	}
}

// Holidays fetches the holiday list for a year and country. A 404 means the
// API has no dataset for the country and yields an empty list rather than an
// error; rate limiting aborts the retry loop immediately.
func (c *Client) Holidays(ctx context.Context, year int, countryCode string) ([]Record, error) {
	url := fmt.Sprintf("%s/api/v3/PublicHolidays/%d/%s", c.baseURL, year, countryCode)
	start := time.Now()

	var body []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("building request: %w", err))
			}
			req.Header.Set("Accept", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				c.logger.Warn("holiday API request failed", "url", url, "error", err)
				return err
			}
			defer func() {
				if closeErr := resp.Body.Close(); closeErr != nil {
					c.logger.Debug("failed to close response body", "error", closeErr)
				}
			}()

			switch {
			case resp.StatusCode == http.StatusOK:
				body, err = io.ReadAll(resp.Body)
				if err != nil {
					return fmt.Errorf("reading response body: %w", err)
				}
				return nil
			case resp.StatusCode == http.StatusNotFound:
				// No dataset for this country; not a failure.
				body = []byte("[]")
				return nil
			case resp.StatusCode == http.StatusTooManyRequests:
				return retry.Unrecoverable(fmt.Errorf("rate limited by holiday API: %d", resp.StatusCode))
			case resp.StatusCode >= 500:
				return fmt.Errorf("holiday API server error: %d", resp.StatusCode)
			default:
				return retry.Unrecoverable(fmt.Errorf("holiday API unexpected status: %d", resp.StatusCode))
			}
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.attempts)),
		retry.Delay(c.delay),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.MaxJitter(c.delay/2),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Info("retrying holiday API request", "url", url, "attempt", n+1, "error", err)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("fetching holidays for %s/%d: %w", countryCode, year, err)
	}

	var raw []apiHoliday
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decoding holiday response for %s/%d: %w", countryCode, year, err)
	}

	records := make([]Record, 0, len(raw))
	for _, h := range raw {
		day, err := time.Parse("2006-01-02", h.Date)
		if err != nil {
			c.logger.Debug("skipping holiday with unparseable date", "date", h.Date, "name", h.Name)
			continue
		}
		name := h.Name
		if h.LocalName != "" {
			name = h.LocalName
		}
		records = append(records, Record{
			Date:        day,
			Name:        name,
			CountryCode: countryCode,
		})
	}

	c.logger.Debug("holiday API fetch completed",
		"country", countryCode, "year", year, "holidays", len(records), "duration", time.Since(start))
	return records, nil
}
