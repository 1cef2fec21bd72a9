package model

import "time"

// PriceBar is one OHLCV observation for one symbol at one minute-granularity
// timestamp. Within a symbol's store the timestamp is unique.
type PriceBar struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// RawSeries is a provider time-series payload before normalization:
// timestamp string -> prefixed field name (e.g. "1. open") -> string value.
type RawSeries map[string]map[string]string
