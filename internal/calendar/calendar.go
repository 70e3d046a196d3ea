// Package calendar derives per-day calendar markings from an event list and
// filters events to the day list of a selected date. Both operations are
// pure functions of (events, selected date); the marking map is always
// recomputable from scratch and Reselect is guaranteed to produce the same
// map an equivalent rebuild would.
package calendar

import (
	"time"

	"evscout/internal/datefmt"
	"evscout/internal/model"
)

// Accent colors carried in the marking payload, matching the mobile
// calendar theme.
const (
	SelectedColor = "#5C6BC0"
	DotColor      = "#5C6BC0"
)

// Marking describes one calendar day for rendering.
type Marking struct {
	// Selected is true on exactly one day: the currently selected one.
	Selected bool `json:"selected,omitempty"`
	// HasEvents is true when at least one event's start..end span covers
	// this day.
	HasEvents bool `json:"marked,omitempty"`

	SelectedColor string `json:"selected_color,omitempty"`
	DotColor      string `json:"dot_color,omitempty"`
}

// styled fills in the colors implied by the flags so that incremental and
// full recomputation agree byte-for-byte.
func styled(m Marking) Marking {
	m.SelectedColor = ""
	m.DotColor = ""
	if m.Selected {
		m.SelectedColor = SelectedColor
	}
	if m.HasEvents && !m.Selected {
		m.DotColor = DotColor
	}
	return m
}

// BuildMarkings computes the complete day -> marking map for the given
// events and selected date (yyyy-MM-dd). Days are keyed in loc; nil loc
// means time.Local.
//
// Every day an event spans, start through end inclusive at day granularity,
// is marked HasEvents. An event whose end parses before its start is
// treated as spanning only its start day. The selected date always has an
// entry carrying Selected, whether or not it has events.
func BuildMarkings(events []model.Event, selected string, loc *time.Location) map[string]Marking {
	if loc == nil {
		loc = time.Local
	}
	marked := make(map[string]Marking)

	for i := range events {
		for _, day := range spanDays(&events[i], loc) {
			m := marked[day]
			m.HasEvents = true
			marked[day] = m
		}
	}

	if selected != "" {
		m := marked[selected]
		m.Selected = true
		marked[selected] = m
	}

	for day, m := range marked {
		marked[day] = styled(m)
	}
	return marked
}

// Reselect moves the Selected flag from prev to next in place, touching
// only those two entries. The prev entry keeps its HasEvents flag and is
// removed entirely when nothing remains to show. The result is identical
// to BuildMarkings over the same inputs with next selected.
func Reselect(marked map[string]Marking, prev, next string) {
	if marked == nil || prev == next {
		return
	}

	if prev != "" {
		if m, ok := marked[prev]; ok {
			m.Selected = false
			if m.HasEvents {
				marked[prev] = styled(m)
			} else {
				delete(marked, prev)
			}
		}
	}

	if next != "" {
		m := marked[next]
		m.Selected = true
		marked[next] = styled(m)
	}
}

// EventsOnDay returns the events whose start timestamp falls within the
// local-time boundaries of day (yyyy-MM-dd). Attribution is by start day
// only: a multi-day event shows up in the day list of its start date even
// though the calendar grid marks its whole span.
func EventsOnDay(events []model.Event, day string, loc *time.Location) []model.Event {
	if loc == nil {
		loc = time.Local
	}
	dayStart, err := time.ParseInLocation(datefmt.LayoutDay, day, loc)
	if err != nil {
		return nil
	}
	nextDay := dayStart.AddDate(0, 0, 1)

	out := make([]model.Event, 0)
	for i := range events {
		start, ok := datefmt.Parse(events[i].StartDate)
		if !ok {
			continue
		}
		start = start.In(loc)
		if !start.Before(dayStart) && start.Before(nextDay) {
			out = append(out, events[i])
		}
	}
	return out
}

// spanDays enumerates the yyyy-MM-dd keys an event covers in loc. Events
// with an unparseable start contribute nothing; an end before the start
// (or unparseable) clamps the span to the start day.
func spanDays(ev *model.Event, loc *time.Location) []string {
	start, ok := datefmt.Parse(ev.StartDate)
	if !ok {
		return nil
	}
	startDay := dayOf(start.In(loc), loc)

	endDay := startDay
	if end, ok := datefmt.Parse(ev.EndDate); ok {
		if d := dayOf(end.In(loc), loc); d.After(startDay) {
			endDay = d
		}
	}

	days := make([]string, 0, 1)
	for d := startDay; !d.After(endDay); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(datefmt.LayoutDay))
	}
	return days
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
