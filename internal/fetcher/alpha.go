package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"TickerVault/internal/httputil"
	"TickerVault/internal/model"
)

const maxBodySize = 16 << 20

// Config holds the provider connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Retries int
	Backoff float64
}

// AlphaFetcher implements Fetcher against an Alpha Vantage style
// TIME_SERIES_INTRADAY endpoint.
type AlphaFetcher struct {
	Client  *http.Client
	baseURL string
	apiKey  string
	retry   httputil.RetryConfig
}

// NewAlphaFetcher creates a new Alpha Vantage fetcher.
func NewAlphaFetcher(cfg Config) *AlphaFetcher {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &AlphaFetcher{
		Client:  &http.Client{Timeout: timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		retry:   httputil.RetryConfig{MaxAttempts: cfg.Retries, Backoff: cfg.Backoff},
	}
}

func (f *AlphaFetcher) Name() string { return "alphavantage" }

// FetchIntraday requests one slice of intraday bars. Transport errors,
// non-2xx statuses, provider soft errors and responses without a time-series
// payload are all retried; once the attempts are exhausted the returned
// error wraps ErrUnavailable.
func (f *AlphaFetcher) FetchIntraday(ctx context.Context, symbol, interval string, slice model.FetchSlice, outputSize string) (model.RawSeries, error) {
	if !ValidInterval(interval) {
		return nil, fmt.Errorf("invalid interval %q", interval)
	}
	u := f.queryURL(symbol, interval, slice, outputSize)

	var series model.RawSeries
	err := httputil.Do(ctx, f.retry, func() error {
		s, err := f.fetchOnce(ctx, u)
		if err != nil {
			return err
		}
		series = s
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return series, nil
}

func (f *AlphaFetcher) queryURL(symbol, interval string, slice model.FetchSlice, outputSize string) string {
	q := url.Values{}
	q.Set("function", "TIME_SERIES_INTRADAY")
	q.Set("symbol", strings.ToUpper(symbol))
	q.Set("interval", interval)
	q.Set("adjusted", "true")
	q.Set("extended_hours", "true")
	q.Set("datatype", "json")
	q.Set("apikey", f.apiKey)
	if slice.Latest() {
		if outputSize == "" {
			outputSize = OutputCompact
		}
		q.Set("outputsize", outputSize)
	} else {
		// The provider returns the whole month regardless of output size.
		q.Set("month", slice.Month)
		q.Set("outputsize", OutputFull)
	}
	return f.baseURL + "?" + q.Encode()
}

func (f *AlphaFetcher) fetchOnce(ctx context.Context, u string) (model.RawSeries, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 256))
	}
	return parseSeries(body)
}

// parseSeries extracts the time-series payload from a provider response.
// The payload key varies by interval ("Time Series (1min)", "Time Series
// (5min)", ...) and is located by substring. Rate-limit notes and error
// messages embedded in a 200 body are surfaced as failures.
func parseSeries(body []byte) (model.RawSeries, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	for _, k := range []string{"Error Message", "Note", "Information"} {
		if raw, ok := payload[k]; ok {
			var msg string
			_ = json.Unmarshal(raw, &msg)
			return nil, fmt.Errorf("provider error: %s", msg)
		}
	}

	for k, raw := range payload {
		if strings.Contains(k, "Time Series") {
			var series model.RawSeries
			if err := json.Unmarshal(raw, &series); err != nil {
				return nil, fmt.Errorf("decode series %q: %w", k, err)
			}
			return series, nil
		}
	}
	return nil, fmt.Errorf("no time series payload in response")
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
