// Package ics serializes events into an iCalendar feed so discovered
// events can be imported into desktop and phone calendars.
package ics

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"evscout/internal/datefmt"
	appLog "evscout/internal/log"
	"evscout/internal/model"
)

const prodID = "-//evscout//event export//EN"

// Export renders events as a VCALENDAR. Events whose start date cannot be
// parsed are skipped with a warning rather than failing the whole export.
// calName becomes the calendar display name when non-empty.
func Export(events []model.Event, calName string) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(prodID)
	if calName != "" {
		cal.SetXWRCalName(calName)
	}

	stamp := time.Now().UTC()
	for _, ev := range events {
		start, ok := datefmt.Parse(ev.StartDate)
		if !ok {
			appLog.Warn("skipping event with unparseable start date", "id", ev.ID.String(), "start_date", ev.StartDate)
			continue
		}
		end, ok := datefmt.Parse(ev.EndDate)
		if !ok || end.Before(start) {
			end = start
		}

		ve := cal.AddEvent(eventUID(ev))
		ve.SetDtStampTime(stamp)
		ve.SetStartAt(start.UTC())
		ve.SetEndAt(end.UTC())
		ve.SetSummary(ev.Title)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		if ev.CategoryName != "" {
			ve.AddProperty(ical.ComponentProperty("CATEGORIES"), escapeText(ev.CategoryName))
		}
		if c := ev.Coordinate(); c != nil {
			ve.AddProperty(ical.ComponentProperty("GEO"), fmt.Sprintf("%f;%f", c.Latitude, c.Longitude))
		}
	}

	return cal.Serialize()
}

// eventUID gives each exported event a stable UID so re-imports update
// rather than duplicate.
func eventUID(ev model.Event) string {
	return fmt.Sprintf("event-%s@evscout", ev.ID.String())
}

// escapeText escapes commas and semicolons per RFC 5545 text rules for
// property values the library does not escape for us.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ";", `\;`)
	s = strings.ReplaceAll(s, ",", `\,`)
	return s
}
