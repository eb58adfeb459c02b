package domain

import (
	"math"
	"time"
)

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// displayDateLayout is the pt-BR rendering of calendar dates
const displayDateLayout = "02/01/2006"

// CivilDate strips the time of day from t, keeping t's own calendar date.
// The result is midnight UTC so that differences are exact multiples of 24h.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole calendar days from `from` to `to`, negative if `to` is earlier
func DaysBetween(from, to time.Time) int {
	diff := CivilDate(to).Sub(CivilDate(from))
	return int(math.Round(diff.Hours() / 24))
}

// ParseDate parses a calendar date in DateLayout, falling back to RFC 3339 timestamps
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err == nil {
		return t, nil
	}
	ts, tsErr := time.Parse(time.RFC3339, value)
	if tsErr != nil {
		return time.Time{}, err
	}
	return CivilDate(ts), nil
}

// FormatDate renders a calendar date in DateLayout
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
