package shared

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Periods are year-month strings in "YYYY-MM" form. Records are attributed to
// a period independent of the literal sale date, so the helpers here work on
// the string form and only touch time.Time when a date range is required.

var ymPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ErrInvalidPeriod indicates a malformed year-month string.
var ErrInvalidPeriod = errors.New("invalid period, want YYYY-MM")

// ValidYM reports whether ym is a well-formed "YYYY-MM" period.
func ValidYM(ym string) bool {
	return ymPattern.MatchString(ym)
}

// ParseYM validates ym and returns it unchanged, or ErrInvalidPeriod.
func ParseYM(ym string) (string, error) {
	if !ValidYM(ym) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, ym)
	}
	return ym, nil
}

// MonthBounds returns the first day of ym and the first day of the following
// month, both at midnight UTC. The second value is an exclusive bound.
func MonthBounds(ym string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", ym)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, ym)
	}
	return start, start.AddDate(0, 1, 0), nil
}

// FirstOfMonth returns the first day of ym at midnight UTC.
func FirstOfMonth(ym string) (time.Time, error) {
	start, _, err := MonthBounds(ym)
	return start, err
}

// AddMonths shifts ym by n months and returns the resulting period.
func AddMonths(ym string, n int) (string, error) {
	start, err := time.Parse("2006-01", ym)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, ym)
	}
	return start.AddDate(0, n, 0).Format("2006-01"), nil
}

// MonthsBetween lists every period from startYm to endYm inclusive. Periods
// compare lexicographically, so an inverted range yields an empty slice.
func MonthsBetween(startYm, endYm string) ([]string, error) {
	if !ValidYM(startYm) || !ValidYM(endYm) {
		return nil, ErrInvalidPeriod
	}
	var months []string
	for ym := startYm; ym <= endYm; {
		months = append(months, ym)
		next, err := AddMonths(ym, 1)
		if err != nil {
			return nil, err
		}
		ym = next
	}
	return months, nil
}

// CurrentYM returns the period containing now in UTC.
func CurrentYM(now time.Time) string {
	return now.UTC().Format("2006-01")
}

// RecentPeriods lists the n periods ending with the one containing now,
// oldest first.
func RecentPeriods(now time.Time, n int) []string {
	if n <= 0 {
		return nil
	}
	periods := make([]string, 0, n)
	// Anchor to the first of the month: subtracting months from a day-31
	// timestamp would normalize past short months and skip them.
	utc := now.UTC()
	base := time.Date(utc.Year(), utc.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := n - 1; i >= 0; i-- {
		periods = append(periods, base.AddDate(0, -i, 0).Format("2006-01"))
	}
	return periods
}
