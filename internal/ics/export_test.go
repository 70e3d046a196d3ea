package ics

import (
	"strings"
	"testing"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evscout/internal/model"
)

func ptr[T any](v T) *T { return &v }

func TestExportRoundTrip(t *testing.T) {
	events := []model.Event{
		{
			ID:           "1",
			Title:        "Jazz Night",
			Description:  "Live quartet",
			Location:     "Blue Room",
			StartDate:    "2024-03-15T19:00:00Z",
			EndDate:      "2024-03-15T22:00:00Z",
			CategoryName: "Music",
			Latitude:     ptr(37.7749),
			Longitude:    ptr(-122.4194),
		},
		{
			ID:        "2",
			Title:     "Street Fair",
			StartDate: "2024-03-16",
			EndDate:   "2024-03-17",
		},
	}

	out := Export(events, "Saved Events")
	require.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "X-WR-CALNAME:Saved Events")

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, cal.Events(), 2)

	first := cal.Events()[0]
	assert.Equal(t, "event-1@evscout", first.GetProperty(ical.ComponentPropertyUniqueId).Value)
	assert.Equal(t, "Jazz Night", first.GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "Blue Room", first.GetProperty(ical.ComponentPropertyLocation).Value)

	start, err := first.GetStartAt()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15T19:00:00Z", start.UTC().Format("2006-01-02T15:04:05Z"))
}

func TestExportSkipsUnparseableStart(t *testing.T) {
	events := []model.Event{
		{ID: "1", Title: "Broken", StartDate: "not-a-date"},
		{ID: "2", Title: "Fine", StartDate: "2024-03-16T10:00:00Z", EndDate: "2024-03-16T12:00:00Z"},
	}

	out := Export(events, "")
	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, cal.Events(), 1)
	assert.Equal(t, "Fine", cal.Events()[0].GetProperty(ical.ComponentPropertySummary).Value)
}

func TestExportEndBeforeStartClampsToStart(t *testing.T) {
	events := []model.Event{
		{ID: "3", Title: "Inverted", StartDate: "2024-03-16T10:00:00Z", EndDate: "2024-03-15T10:00:00Z"},
	}

	out := Export(events, "")
	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, cal.Events(), 1)

	start, err := cal.Events()[0].GetStartAt()
	require.NoError(t, err)
	end, err := cal.Events()[0].GetEndAt()
	require.NoError(t, err)
	assert.True(t, end.Equal(start))
}
