package ingest

import (
	"fmt"
	"regexp"
	"time"

	"TickerVault/internal/model"
)

var yearRe = regexp.MustCompile(`^\d{4}$`)

// SlicesForYear validates a 4-digit year between 1950 and the current year
// and expands it into the twelve month slices YYYY-01 .. YYYY-12, ascending.
func SlicesForYear(year string, now time.Time) ([]model.FetchSlice, error) {
	if !yearRe.MatchString(year) {
		return nil, fmt.Errorf("year %q must be a 4-digit number", year)
	}
	y, _ := time.Parse("2006", year)
	if y.Year() < 1950 || y.Year() > now.Year() {
		return nil, fmt.Errorf("year %q must be between 1950 and %d", year, now.Year())
	}

	slices := make([]model.FetchSlice, 0, 12)
	for m := 1; m <= 12; m++ {
		slices = append(slices, model.FetchSlice{Month: fmt.Sprintf("%s-%02d", year, m)})
	}
	return slices, nil
}

// SliceForMonth validates a YYYY-MM month no later than the current
// year-month and wraps it in a single slice.
func SliceForMonth(month string, now time.Time) (model.FetchSlice, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return model.FetchSlice{}, fmt.Errorf("month %q must be formatted YYYY-MM", month)
	}
	if t.Year() < 1950 {
		return model.FetchSlice{}, fmt.Errorf("month %q is before 1950", month)
	}
	if month > now.Format("2006-01") {
		return model.FetchSlice{}, fmt.Errorf("month %q is in the future", month)
	}
	return model.FetchSlice{Month: month}, nil
}
