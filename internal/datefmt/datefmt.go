// Package datefmt contains the display/classification helpers for event
// timestamps. Every function is total: malformed or missing input produces
// the documented zero result (empty string, false, or ok == false), never an
// error. Range formatting works in UTC; day-relative helpers (RelativeDateLabel,
// DaysRemaining) use the local calendar day.
package datefmt

import (
	"strings"
	"time"
)

// Default display layouts, mirroring the mobile client's date-fns patterns.
const (
	LayoutDate     = "Jan 2, 2006"      // MMM d, yyyy
	LayoutLongDate = "Mon, Jan 2, 2006" // EEE, MMM d, yyyy
	LayoutTime     = "3:04 PM"          // h:mm a
	LayoutDay      = "2006-01-02"       // yyyy-MM-dd
	LayoutFullDate = "January 2, 2006"  // MMMM d, yyyy
)

// now is swapped out in tests.
var now = time.Now

// parseLayouts are tried in order by Parse.
var parseLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	LayoutDay,
}

// Parse attempts to interpret value as an ISO-8601 timestamp or bare date.
// Inputs without a zone offset are taken as local time, matching how the
// calendar day-boundary logic treats them.
func Parse(value string) (time.Time, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate formats value with the given Go layout, or LayoutDate when
// layout is empty. Returns "" for missing/unparseable input.
func FormatDate(value, layout string) string {
	t, ok := Parse(value)
	if !ok {
		return ""
	}
	if layout == "" {
		layout = LayoutDate
	}
	return t.Format(layout)
}

// FormatTime renders the time-of-day portion, e.g. "7:30 PM".
func FormatTime(value string) string {
	t, ok := Parse(value)
	if !ok {
		return ""
	}
	return t.Format(LayoutTime)
}

// RelativeDateLabel returns "Today", "Tomorrow", the weekday name when the
// date falls inside the current week (Sunday-start, containing today), and
// otherwise an absolute date.
func RelativeDateLabel(value string) string {
	t, ok := Parse(value)
	if !ok {
		return ""
	}

	n := now()
	today := startOfDay(n)
	day := startOfDay(t.In(n.Location()))

	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, 1)):
		return "Tomorrow"
	}

	weekStart := today.AddDate(0, 0, -int(today.Weekday()))
	weekEnd := weekStart.AddDate(0, 0, 7)
	if !day.Before(weekStart) && day.Before(weekEnd) {
		return day.Format("Monday")
	}
	return t.Format(LayoutDate)
}

// FormatDateRange renders a start/end pair on one line. Same-UTC-day ranges
// collapse to a single date with both times; multi-day ranges show two full
// date-times. Returns "" when either input is missing or unparseable.
func FormatDateRange(start, end string) string {
	s, ok := Parse(start)
	if !ok {
		return ""
	}
	e, ok := Parse(end)
	if !ok {
		return ""
	}

	s = s.UTC()
	e = e.UTC()

	if s.Format(LayoutDay) == e.Format(LayoutDay) {
		return s.Format(LayoutLongDate) + " • " + s.Format(LayoutTime) + " - " + e.Format(LayoutTime)
	}
	return s.Format(LayoutLongDate+" "+LayoutTime) + " - " + e.Format(LayoutLongDate+" "+LayoutTime)
}

// DaysRemaining returns whole days from the start of today until value,
// floored at 0 for dates already past. ok is false for unusable input.
func DaysRemaining(value string) (int, bool) {
	t, ok := Parse(value)
	if !ok {
		return 0, false
	}
	n := now()
	days := int(utcMidnight(t.In(n.Location())).Sub(utcMidnight(n)).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return days, true
}

// HasEventEnded reports whether end is strictly before the current instant.
// Missing or unparseable input counts as not ended.
func HasEventEnded(end string) bool {
	e, ok := Parse(end)
	if !ok {
		return false
	}
	return e.Before(now())
}

// IsHappeningNow reports whether the current instant lies within
// [start, end], inclusive at both bounds. Inverted or unparseable ranges
// are never "happening now".
func IsHappeningNow(start, end string) bool {
	s, ok := Parse(start)
	if !ok {
		return false
	}
	e, ok := Parse(end)
	if !ok {
		return false
	}
	if e.Before(s) {
		return false
	}
	n := now()
	return !n.Before(s) && !n.After(e)
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// utcMidnight maps t's calendar date onto UTC midnight so that day
// arithmetic is immune to DST transitions.
func utcMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
