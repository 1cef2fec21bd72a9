package model

// FetchSlice describes one unit of fetch work: a specific calendar month,
// or the most recent window when Month is empty.
type FetchSlice struct {
	Month string // "YYYY-MM", empty for latest
}

// Latest reports whether the slice means "most recent window" rather than
// a specific month.
func (s FetchSlice) Latest() bool { return s.Month == "" }

func (s FetchSlice) String() string {
	if s.Month == "" {
		return "latest"
	}
	return s.Month
}
