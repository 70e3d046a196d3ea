package datefmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// withNow pins the package clock for the duration of a test.
func withNow(t *testing.T, fixed time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = prev })
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		layout   string
		expected string
	}{
		{"default layout", "2024-03-15T19:00:00Z", "", "Mar 15, 2024"},
		{"bare date", "2024-03-15", "", "Mar 15, 2024"},
		{"explicit layout", "2024-03-15T19:00:00Z", LayoutFullDate, "March 15, 2024"},
		{"empty input", "", LayoutDate, ""},
		{"garbage input", "not-a-date", LayoutDate, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDate(tt.value, tt.layout))
		})
	}
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "7:30 PM", FormatTime("2024-03-15T19:30:00"))
	assert.Equal(t, "12:05 AM", FormatTime("2024-03-15T00:05:00"))
	assert.Equal(t, "", FormatTime(""))
	assert.Equal(t, "", FormatTime("2024-13-99"))
}

func TestRelativeDateLabel(t *testing.T) {
	// Wednesday, local time.
	withNow(t, time.Date(2024, 3, 13, 10, 0, 0, 0, time.Local))

	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{"today", "2024-03-13T22:00:00", "Today"},
		{"tomorrow", "2024-03-14T01:00:00", "Tomorrow"},
		{"later this week", "2024-03-15T12:00:00", "Friday"},
		{"earlier this week", "2024-03-11T12:00:00", "Monday"},
		{"next week", "2024-03-20T12:00:00", "Mar 20, 2024"},
		{"unparseable", "???", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RelativeDateLabel(tt.value))
		})
	}
}

func TestFormatDateRangeSameDay(t *testing.T) {
	got := FormatDateRange("2024-03-15T19:00:00Z", "2024-03-15T21:00:00Z")
	assert.Equal(t, "Fri, Mar 15, 2024 • 7:00 PM - 9:00 PM", got)
}

func TestFormatDateRangeMultiDay(t *testing.T) {
	got := FormatDateRange("2024-03-15T19:00:00Z", "2024-03-16T01:00:00Z")
	assert.Equal(t, "Fri, Mar 15, 2024 7:00 PM - Sat, Mar 16, 2024 1:00 AM", got)
}

func TestFormatDateRangeBadInput(t *testing.T) {
	assert.Equal(t, "", FormatDateRange("", "2024-03-15T21:00:00Z"))
	assert.Equal(t, "", FormatDateRange("2024-03-15T19:00:00Z", ""))
	assert.Equal(t, "", FormatDateRange("nope", "also nope"))
}

func TestDaysRemaining(t *testing.T) {
	withNow(t, time.Date(2024, 3, 13, 15, 0, 0, 0, time.Local))

	d, ok := DaysRemaining("2024-03-16T01:00:00")
	assert.True(t, ok)
	assert.Equal(t, 3, d)

	d, ok = DaysRemaining("2024-03-13T23:59:59")
	assert.True(t, ok)
	assert.Equal(t, 0, d)

	// Past dates floor at zero rather than going negative.
	d, ok = DaysRemaining("2024-03-01")
	assert.True(t, ok)
	assert.Equal(t, 0, d)

	_, ok = DaysRemaining("")
	assert.False(t, ok)
}

func TestHasEventEnded(t *testing.T) {
	fixed := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	withNow(t, fixed)

	assert.True(t, HasEventEnded(fixed.Add(-time.Second).Format(time.RFC3339)))
	assert.False(t, HasEventEnded(fixed.Add(time.Second).Format(time.RFC3339)))
	assert.False(t, HasEventEnded(fixed.Format(time.RFC3339))) // not strictly before
	assert.False(t, HasEventEnded(""))
	assert.False(t, HasEventEnded("garbage"))
}

func TestIsHappeningNow(t *testing.T) {
	start := time.Date(2024, 3, 15, 19, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	s := start.Format(time.RFC3339)
	e := end.Format(time.RFC3339)

	withNow(t, start)
	assert.True(t, IsHappeningNow(s, e), "now == start is inclusive")

	withNow(t, end)
	assert.True(t, IsHappeningNow(s, e), "now == end is inclusive")

	withNow(t, end.Add(time.Millisecond))
	assert.False(t, IsHappeningNow(s, e))

	withNow(t, start.Add(time.Hour))
	assert.True(t, IsHappeningNow(s, e))
	assert.False(t, IsHappeningNow(e, s), "inverted range")
	assert.False(t, IsHappeningNow("", e))
	assert.False(t, IsHappeningNow(s, "???"))
}
