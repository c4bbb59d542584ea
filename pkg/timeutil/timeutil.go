// Package timeutil converts between the business' fixed local timezone
// (UTC+5:30, no daylight saving) and the UTC instants stored in the
// database. Every calendar date entered by an operator means local
// midnight of that day.
package timeutil

import (
	"fmt"
	"time"
)

// Local is the fixed business timezone. A plain offset is deliberate:
// the original deployment region has no daylight saving rules.
var Local = time.FixedZone("IST", 5*3600+30*60)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// ParseDate interprets a YYYY-MM-DD string as a calendar date in the
// business timezone.
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", value, err)
	}
	return t, nil
}

// DayStartUTC returns the UTC instant of local midnight on the calendar
// date carried by d. Local midnight on day D is 18:30 UTC on day D-1.
func DayStartUTC(d time.Time) time.Time {
	local := d.In(Local)
	y, m, day := local.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, Local).UTC()
}

// DayEndUTC returns the last UTC instant of the calendar date carried
// by d, i.e. one nanosecond before the next local midnight.
func DayEndUTC(d time.Time) time.Time {
	return DayStartUTC(d.AddDate(0, 0, 1)).Add(-time.Nanosecond)
}

// WindowUTC returns the inclusive UTC instant window covering the
// closed local-date interval [start, end].
func WindowUTC(start, end time.Time) (time.Time, time.Time) {
	return DayStartUTC(start), DayEndUTC(end)
}

// NowUTC returns the current instant normalized to UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// UTCDay truncates a stored UTC instant to its UTC calendar date.
// Day grouping on bills works on the stored UTC date, not a re-localized one.
func UTCDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TodayLocal returns the current calendar date in the business timezone.
func TodayLocal() time.Time {
	now := time.Now().In(Local)
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, Local)
}
