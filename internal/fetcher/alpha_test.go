package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TickerVault/internal/httputil"
	"TickerVault/internal/model"
)

const seriesBody = `{
	"Meta Data": {"2. Symbol": "AAPL"},
	"Time Series (5min)": {
		"2024-01-01 09:30:00": {
			"1. open": "100", "2. high": "101", "3. low": "99",
			"4. close": "100.5", "5. volume": "10000"
		}
	}
}`

func newTestFetcher(baseURL string, retries int) *AlphaFetcher {
	f := NewAlphaFetcher(Config{
		BaseURL: baseURL,
		APIKey:  "demo",
		Timeout: 5 * time.Second,
		Retries: retries,
		Backoff: 2,
	})
	f.retry.Unit = time.Millisecond
	return f
}

func TestFetchIntradaySuccess(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(seriesBody))
	}))
	defer srv.Close()

	f := newTestFetcher(srv.URL, 3)
	series, err := f.FetchIntraday(context.Background(), "aapl", "5min", model.FetchSlice{Month: "2024-01"}, "")
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, "100", series["2024-01-01 09:30:00"]["1. open"])

	assert.Equal(t, "TIME_SERIES_INTRADAY", gotQuery["function"][0])
	assert.Equal(t, "AAPL", gotQuery["symbol"][0])
	assert.Equal(t, "2024-01", gotQuery["month"][0])
	assert.Equal(t, OutputFull, gotQuery["outputsize"][0])
}

func TestFetchIntradayLatestOmitsMonth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("month") {
			t.Error("latest fetch must not send a month filter")
		}
		if got := r.URL.Query().Get("outputsize"); got != OutputCompact {
			t.Errorf("expected compact output size, got %q", got)
		}
		w.Write([]byte(seriesBody))
	}))
	defer srv.Close()

	f := newTestFetcher(srv.URL, 3)
	_, err := f.FetchIntraday(context.Background(), "AAPL", "5min", model.FetchSlice{}, OutputCompact)
	require.NoError(t, err)
}

func TestFetchIntradayRetriesThenSucceeds(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(seriesBody))
	}))
	defer srv.Close()

	f := newTestFetcher(srv.URL, 3)
	series, err := f.FetchIntraday(context.Background(), "AAPL", "5min", model.FetchSlice{}, "")
	require.NoError(t, err)
	assert.Len(t, series, 1)
	assert.Equal(t, 3, calls)
}

func TestFetchIntradayExhaustedRetriesIsFatal(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := newTestFetcher(srv.URL, 3)
	series, err := f.FetchIntraday(context.Background(), "AAPL", "1min", model.FetchSlice{}, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable), "expected ErrUnavailable, got %v", err)
	assert.True(t, errors.Is(err, httputil.ErrExhausted), "expected ErrExhausted in chain, got %v", err)
	assert.Nil(t, series)
	assert.Equal(t, 3, calls)
}

func TestFetchIntradaySoftErrorIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Rate-limit note inside a 200 response.
		w.Write([]byte(`{"Note": "Thank you for using our API, please slow down."}`))
	}))
	defer srv.Close()

	f := newTestFetcher(srv.URL, 2)
	_, err := f.FetchIntraday(context.Background(), "AAPL", "1min", model.FetchSlice{}, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestFetchIntradayInvalidInterval(t *testing.T) {
	f := newTestFetcher("http://unused", 3)
	_, err := f.FetchIntraday(context.Background(), "AAPL", "2min", model.FetchSlice{}, "")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnavailable), "bad input must be rejected before any network call")
}

func TestParseSeriesKeyVariesByInterval(t *testing.T) {
	for _, key := range []string{"Time Series (1min)", "Time Series (5min)", "Time Series (60min)"} {
		body := `{"` + key + `": {"2024-01-01 09:30:00": {"1. open": "1"}}}`
		series, err := parseSeries([]byte(body))
		require.NoError(t, err, key)
		assert.Len(t, series, 1, key)
	}
}

func TestParseSeriesMissingPayload(t *testing.T) {
	_, err := parseSeries([]byte(`{"Meta Data": {}}`))
	require.Error(t, err)

	_, err = parseSeries([]byte(`{"Error Message": "Invalid API call."}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API call")
}
