package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"TickerVault/internal/fetcher"
	"TickerVault/internal/model"
	"TickerVault/internal/normalize"
)

var timeLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable date-time %q", s)
}

// handleHistory serves GET /api/history?symbol=S&from=ISO&to=ISO. Defaults:
// to = now, from = start of the current day.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.URL.Query().Get("symbol"))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	now := time.Now().UTC()
	from := now.Truncate(24 * time.Hour)
	to := now

	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = parseTime(v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid from: "+err.Error())
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = parseTime(v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid to: "+err.Error())
			return
		}
	}

	bars, err := s.store.QueryRange(symbol, from, to)
	if err != nil {
		fmt.Printf("Error querying history for %s: %v\n", symbol, err)
		writeError(w, http.StatusInternalServerError, "failed to query history")
		return
	}
	if bars == nil {
		bars = []model.PriceBar{}
	}
	writeJSON(w, http.StatusOK, bars)
}

// handleCurrent serves GET /api/current?symbol=S with the single most
// recent bar from a live compact fetch. There is no stored-data fallback:
// if the provider stays unavailable through every retry the request fails.
func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.URL.Query().Get("symbol"))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	interval := r.URL.Query().Get("interval")
	if interval == "" {
		interval = s.interval
	}
	if !fetcher.ValidInterval(interval) {
		writeError(w, http.StatusBadRequest, "invalid interval "+interval)
		return
	}

	raw, err := s.fetcher.FetchIntraday(r.Context(), symbol, interval, model.FetchSlice{}, fetcher.OutputCompact)
	if err != nil {
		fmt.Printf("Error fetching current price for %s: %v\n", symbol, err)
		if errors.Is(err, fetcher.ErrUnavailable) {
			writeError(w, http.StatusBadGateway, "price source unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch current price")
		return
	}

	bars, err := normalize.Series(raw, symbol)
	if err != nil {
		fmt.Printf("Error normalizing current price for %s: %v\n", symbol, err)
		writeError(w, http.StatusBadGateway, "malformed provider response")
		return
	}
	if len(bars) == 0 {
		writeError(w, http.StatusNotFound, "no price data available")
		return
	}

	latest := bars[0]
	for _, b := range bars[1:] {
		if b.Timestamp.After(latest.Timestamp) {
			latest = b
		}
	}
	writeJSON(w, http.StatusOK, latest)
}
