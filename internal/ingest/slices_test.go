package ingest

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func TestSlicesForYear(t *testing.T) {
	slices, err := SlicesForYear("2024", testNow)
	require.NoError(t, err)
	require.Len(t, slices, 12)
	for i, s := range slices {
		assert.Equal(t, fmt.Sprintf("2024-%02d", i+1), s.Month)
		assert.False(t, s.Latest())
	}
}

func TestSlicesForYearBounds(t *testing.T) {
	for _, year := range []string{"1950", "2026"} {
		_, err := SlicesForYear(year, testNow)
		assert.NoError(t, err, year)
	}
	for _, year := range []string{"1949", "2027", "800", "20x4", "", "02024"} {
		_, err := SlicesForYear(year, testNow)
		assert.Error(t, err, year)
	}
}

func TestSliceForMonth(t *testing.T) {
	s, err := SliceForMonth("2024-02", testNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-02", s.Month)

	// Current month is allowed, the month after is not.
	_, err = SliceForMonth("2026-08", testNow)
	assert.NoError(t, err)
	_, err = SliceForMonth("2026-09", testNow)
	assert.Error(t, err)

	for _, month := range []string{"2024-13", "2024-00", "2024", "01-2024", "1949-12"} {
		_, err := SliceForMonth(month, testNow)
		assert.Error(t, err, month)
	}
}
