// Package normalize converts raw provider time-series payloads into
// canonical PriceBar rows.
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"TickerVault/internal/model"
)

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Series converts one raw series into PriceBars carrying symbol. Raw field
// keys are prefixed labels ("1. open", "2. high", ...); the numeric prefix
// is stripped to obtain the canonical name. An empty raw series yields an
// empty result and no error; a malformed field value yields a parse error.
// The output order is unspecified; the store orders rows on read.
func Series(raw model.RawSeries, symbol string) ([]model.PriceBar, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	symbol = strings.ToUpper(symbol)
	bars := make([]model.PriceBar, 0, len(raw))
	for ts, fields := range raw {
		bar, err := row(ts, fields, symbol)
		if err != nil {
			return nil, fmt.Errorf("row %q: %w", ts, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func row(ts string, fields map[string]string, symbol string) (model.PriceBar, error) {
	t, err := parseTimestamp(ts)
	if err != nil {
		return model.PriceBar{}, err
	}

	bar := model.PriceBar{Symbol: symbol, Timestamp: t}
	seen := 0
	for key, val := range fields {
		switch fieldName(key) {
		case "open":
			bar.Open, err = parsePrice(val)
		case "high":
			bar.High, err = parsePrice(val)
		case "low":
			bar.Low, err = parsePrice(val)
		case "close":
			bar.Close, err = parsePrice(val)
		case "volume":
			bar.Volume, err = parseVolume(val)
		default:
			continue
		}
		if err != nil {
			return model.PriceBar{}, fmt.Errorf("field %q: %w", key, err)
		}
		seen++
	}
	if seen < 5 {
		return model.PriceBar{}, fmt.Errorf("incomplete row: %d of 5 fields", seen)
	}
	return bar, nil
}

// fieldName strips the "1. " style prefix from a provider field key.
func fieldName(key string) string {
	if _, name, ok := strings.Cut(key, ". "); ok {
		return name
	}
	return key
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", s)
}

func parsePrice(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unparsable price %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("price %q out of range", s)
	}
	return v, nil
}

func parseVolume(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unparsable volume %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative volume %q", s)
	}
	return v, nil
}
