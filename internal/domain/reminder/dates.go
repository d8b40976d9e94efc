package reminder

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the date-only storage format of renewal dates.
const DateLayout = "2006-01-02"

var ErrMissingDate = errors.New("renewal date is empty")

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// ParseRenewalDate accepts a date-only value or a timestamp with or without zone.
// The calendar date is taken in the timestamp's own offset and returned at UTC midnight.
func ParseRenewalDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrMissingDate
	}
	if !strings.Contains(raw, "T") {
		d, err := time.Parse(DateLayout, raw)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid renewal date %q: %w", raw, err)
		}
		return d, nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return CivilDate(ts), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid renewal timestamp %q", raw)
}

// CivilDate drops the clock and zone of t, keeping its calendar date at UTC midnight.
func CivilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the calendar date of now in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return CivilDate(now.In(loc))
}

// DaysUntil is the number of whole calendar days from today to date.
func DaysUntil(date, today time.Time) int {
	return int(CivilDate(date).Sub(CivilDate(today)).Hours() / 24)
}

// AddDays offsets a calendar date by n days.
func AddDays(date time.Time, n int) time.Time {
	return CivilDate(date).AddDate(0, 0, n)
}
