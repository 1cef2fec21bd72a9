package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TickerVault/internal/model"
)

func rawRow(open, high, low, close, volume string) map[string]string {
	return map[string]string{
		"1. open":   open,
		"2. high":   high,
		"3. low":    low,
		"4. close":  close,
		"5. volume": volume,
	}
}

func TestSeries(t *testing.T) {
	raw := model.RawSeries{
		"2024-01-01 09:30:00": rawRow("100", "101", "99", "100.5", "10000"),
		"2024-01-01 09:31:00": rawRow("100.5", "102", "100", "101.25", "11000"),
	}

	bars, err := Series(raw, "aapl")
	require.NoError(t, err)
	require.Len(t, bars, 2)

	byTime := map[string]model.PriceBar{}
	for _, b := range bars {
		assert.Equal(t, "AAPL", b.Symbol)
		byTime[b.Timestamp.Format("15:04")] = b
	}

	first := byTime["09:30"]
	assert.Equal(t, 100.0, first.Open)
	assert.Equal(t, 101.0, first.High)
	assert.Equal(t, 99.0, first.Low)
	assert.Equal(t, 100.5, first.Close)
	assert.Equal(t, int64(10000), first.Volume)
	assert.Equal(t, time.UTC, first.Timestamp.Location())
}

func TestSeriesEmptyInput(t *testing.T) {
	bars, err := Series(nil, "AAPL")
	require.NoError(t, err)
	assert.Empty(t, bars)

	bars, err = Series(model.RawSeries{}, "AAPL")
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestSeriesMalformedValues(t *testing.T) {
	cases := map[string]map[string]string{
		"bad price":       rawRow("not-a-number", "101", "99", "100.5", "10000"),
		"negative price":  rawRow("-1", "101", "99", "100.5", "10000"),
		"bad volume":      rawRow("100", "101", "99", "100.5", "10.5"),
		"negative volume": rawRow("100", "101", "99", "100.5", "-3"),
		"missing fields": {
			"1. open": "100",
		},
	}
	for name, fields := range cases {
		_, err := Series(model.RawSeries{"2024-01-01 09:30:00": fields}, "AAPL")
		assert.Error(t, err, name)
	}

	_, err := Series(model.RawSeries{"yesterday": rawRow("1", "1", "1", "1", "1")}, "AAPL")
	assert.Error(t, err, "bad timestamp")
}

func TestFieldNamePrefixStripping(t *testing.T) {
	assert.Equal(t, "open", fieldName("1. open"))
	assert.Equal(t, "volume", fieldName("5. volume"))
	assert.Equal(t, "open", fieldName("open"))
}
