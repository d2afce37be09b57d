package billing

import (
	"time"
)

// =============================================================================
// DATE - ISO calendar date (YYYY-MM-DD)
// =============================================================================

// Date is an ISO-8601 calendar date string. The fixed-width format makes
// lexicographic order equal chronological order, which is how range checks
// and grouping keys compare dates throughout the engine.
type Date string

const dateLayout = "2006-01-02"

// ParseDate validates s as a YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	if _, err := time.Parse(dateLayout, s); err != nil {
		return "", err
	}
	return Date(s), nil
}

// DateOf truncates an RFC 3339 timestamp to its calendar day.
func DateOf(timestamp string) (Date, error) {
	if len(timestamp) < len(dateLayout) {
		return "", ErrMalformedTimestamp
	}
	return ParseDate(timestamp[:len(dateLayout)])
}

// DateAt returns the calendar date of t in t's location.
func DateAt(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

func (d Date) Before(other Date) bool { return d < other }
func (d Date) After(other Date) bool  { return d > other }
func (d Date) IsZero() bool           { return d == "" }

// InRange reports whether d falls within [start, end] inclusive.
func (d Date) InRange(start, end Date) bool {
	return d >= start && d <= end
}

// Time returns the date at midnight UTC. Panics on a malformed date;
// construct Dates via ParseDate or DateAt.
func (d Date) Time() time.Time {
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		panic("billing: malformed date " + string(d))
	}
	return t
}

func (d Date) AddDays(n int) Date {
	return DateAt(d.Time().AddDate(0, 0, n))
}

// WeekOf returns the Monday-Sunday week containing d.
func WeekOf(d Date) (start, end Date) {
	t := d.Time()
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	start = DateAt(t.AddDate(0, 0, -offset))
	end = start.AddDays(6)
	return start, end
}
