package extract

import (
	"fmt"
	"strings"
	"time"
)

// resolveDate parses raw date text against the ordered format list. Layouts
// without a year assume the current year, rolling forward one year when the
// result would land strictly before today. Explicitly written years are kept
// as-is even when they are in the past. Yearless dates that do not exist in
// their assumed year (29 February outside a leap year) fail to resolve.
func resolveDate(raw string, today time.Time, formats []string) (time.Time, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return time.Time{}, fmt.Errorf("%w: empty date text", ErrParseFailure)
	}

	today = dateOnly(today)
	for _, layout := range formats {
		parsed, err := time.Parse(layout, text)
		if err != nil {
			continue
		}
		if strings.Contains(layout, "2006") {
			return dateOnly(parsed), nil
		}
		resolved := time.Date(today.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
		if resolved.Before(today) {
			resolved = resolved.AddDate(1, 0, 0)
		}
		// time.Date normalizes overflow (29 February in a non-leap year
		// becomes 1 March); a candidate that drifted off its parsed month
		// and day never existed in the assumed year.
		if resolved.Month() != parsed.Month() || resolved.Day() != parsed.Day() {
			return time.Time{}, fmt.Errorf("%w: %q does not exist in year %d", ErrParseFailure, text, resolved.Year())
		}
		return resolved, nil
	}

	return time.Time{}, fmt.Errorf("%w: no format matched %q", ErrParseFailure, text)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
