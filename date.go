package budget

import (
	"strings"
	"time"
)

// DateLayout is the only date format the engine reads or writes.
const DateLayout = "2006-01-02"

// IsDate reports whether s is a valid calendar date in YYYY-MM-DD form.
func IsDate(s string) bool {
	_, ok := parseDate(s)
	return ok
}

// parseDate reads s as a calendar date. UTC is used only so that day
// arithmetic never crosses a DST transition.
func parseDate(s string) (time.Time, bool) {
	if len(s) != len(DateLayout) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddDays returns the calendar date n days after date. A malformed date is
// returned unchanged.
func AddDays(date string, n int) string {
	t, ok := parseDate(date)
	if !ok {
		return date
	}
	return t.AddDate(0, 0, n).Format(DateLayout)
}

// AddMonthsKeepingDay moves date forward by n whole months and then sets the
// day of month to desiredDay, clamped to the last day of the target month.
// A rule anchored on the 31st therefore lands on the 28th or 29th in
// February. If desiredDay is below 1 the day of date is kept.
func AddMonthsKeepingDay(date string, n, desiredDay int) string {
	t, ok := parseDate(date)
	if !ok {
		return date
	}
	// Step from the first of the month so AddDate never normalizes
	// Jan 31 + 1 month into March.
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)

	day := desiredDay
	if day < 1 {
		day = t.Day()
	}
	if last := DaysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC).Format(DateLayout)
}

// CompareDates returns -1, 0 or 1. Zero padded ISO dates sort
// lexicographically in calendar order.
func CompareDates(a, b string) int {
	return strings.Compare(a, b)
}
