// Package civildate converts between calendar dates in a civil timezone and
// the UTC timestamps the log stores are keyed by. All functions are pure; the
// timezone is always passed in explicitly.
package civildate

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Normalize strips a timestamp down to its calendar date components,
// re-anchored at midnight UTC. This is the canonical in-memory form of a
// calendar date, and matches how pgx scans postgres `date` columns.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Date builds a calendar date from its components.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date in loc.
func Today(loc *time.Location) time.Time {
	return At(time.Now(), loc)
}

// At returns the calendar date that the given instant falls on in loc.
func At(t time.Time, loc *time.Location) time.Time {
	return Normalize(t.In(loc))
}

// DayBounds returns the half-open UTC interval [start, end) covering the
// civil day of `day` in loc. Around daylight-saving transitions the interval
// is 23 or 25 hours long; time.Date with an explicit location handles that.
func DayBounds(day time.Time, loc *time.Location) (start, end time.Time) {
	start = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	end = time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, loc)
	return start.UTC(), end.UTC()
}

// Parse reads a date in YYYY-MM-DD form.
func Parse(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}

// Format renders a calendar date as YYYY-MM-DD.
func Format(d time.Time) string {
	return d.Format(dateLayout)
}
