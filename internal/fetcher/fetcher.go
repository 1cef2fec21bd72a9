package fetcher

import (
	"context"
	"errors"

	"TickerVault/internal/model"
)

// ErrUnavailable marks a fetch that failed after exhausting every retry.
// Ingestion for the affected symbol cannot proceed past it.
var ErrUnavailable = errors.New("price source unavailable")

// Output size hints for latest-window fetches. Ignored for month slices,
// where the provider always returns the full month.
const (
	OutputCompact = "compact" // ~100 most recent points
	OutputFull    = "full"    // ~30 days
)

var intervals = map[string]bool{
	"1min":  true,
	"5min":  true,
	"15min": true,
	"30min": true,
	"60min": true,
}

// ValidInterval reports whether s is a supported intraday interval.
func ValidInterval(s string) bool { return intervals[s] }

// Fetcher defines the interface for fetching intraday market data.
type Fetcher interface {
	// FetchIntraday requests one slice of intraday bars for symbol. The
	// returned series is raw provider data, keyed by timestamp string.
	FetchIntraday(ctx context.Context, symbol, interval string, slice model.FetchSlice, outputSize string) (model.RawSeries, error)
	Name() string
}

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Series  model.RawSeries
	ByMonth map[string]model.RawSeries
	Err     error
	Calls   int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchIntraday(_ context.Context, _, _ string, slice model.FetchSlice, _ string) (model.RawSeries, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if !slice.Latest() && m.ByMonth != nil {
		return m.ByMonth[slice.Month], nil
	}
	return m.Series, nil
}
