package sentiment

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownTimeFilter is returned when a symbolic filter name is not recognized.
var ErrUnknownTimeFilter = errors.New("unknown time filter")

// TimeFilter selects a lookback window measured back from "now".
type TimeFilter string

const (
	Day       TimeFilter = "day"
	Week      TimeFilter = "week"
	Month     TimeFilter = "month"
	SixMonths TimeFilter = "sixMonths"
	Year      TimeFilter = "year"
)

const day = 24 * time.Hour

// AllTimeFilters lists every filter from the shortest window to the longest.
var AllTimeFilters = []TimeFilter{Day, Week, Month, SixMonths, Year}

var lookbacks = map[TimeFilter]time.Duration{
	Day:       1 * day,
	Week:      7 * day,
	Month:     30 * day,
	SixMonths: 180 * day,
	Year:      365 * day,
}

var labels = map[TimeFilter]string{
	Day:       "Last 24 hours",
	Week:      "Last 7 days",
	Month:     "Last 30 days",
	SixMonths: "Last 6 months",
	Year:      "Last 12 months",
}

// ParseTimeFilter maps a user-supplied name to a TimeFilter.
// Matching is case-insensitive; "6month" and "6months" are accepted for SixMonths.
func ParseTimeFilter(name string) (TimeFilter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "day":
		return Day, nil
	case "week":
		return Week, nil
	case "month":
		return Month, nil
	case "sixmonths", "6month", "6months":
		return SixMonths, nil
	case "year":
		return Year, nil
	}
	return "", fmt.Errorf("%w %q: must be day, week, month, sixMonths or year", ErrUnknownTimeFilter, name)
}

// Lookback returns the fixed window length of the filter.
// Unknown values fall back to the Month window.
func (f TimeFilter) Lookback() time.Duration {
	if d, ok := lookbacks[f]; ok {
		return d
	}
	return lookbacks[Month]
}

// Label returns the human-readable period shown above the dashboard.
func (f TimeFilter) Label() string {
	if l, ok := labels[f]; ok {
		return l
	}
	return labels[Month]
}

// Resolve returns the earliest instant included in the window ending at now.
func Resolve(filter TimeFilter, now time.Time) time.Time {
	return now.Add(-filter.Lookback())
}

// FilterSince keeps the records created at or after cutoff, preserving input order.
func FilterSince(records []Record, cutoff time.Time) []Record {
	kept := make([]Record, 0, len(records))
	for _, r := range records {
		if !r.CreatedAt.Before(cutoff) {
			kept = append(kept, r)
		}
	}
	return kept
}
