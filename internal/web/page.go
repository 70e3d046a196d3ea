package web

import (
	"html/template"
	"net/http"
	"time"

	"evscout/internal/calendar"
	"evscout/internal/datefmt"
	appLog "evscout/internal/log"
)

// The calendar page is fully server-rendered so the headless snapshot can
// wait on [data-ready="true"] without running any client script.
var pageTmpl = template.Must(template.New("calendar").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.MonthLabel}} – evscout</title>
<style>
body { font-family: sans-serif; margin: 24px; color: #222; }
h1 { font-size: 1.4em; margin-bottom: 12px; }
table { border-collapse: collapse; width: 100%; table-layout: fixed; }
th, td { border: 1px solid #ccc; padding: 8px; vertical-align: top; height: 64px; }
th { background: #f4f4f4; font-weight: 600; }
td.out { color: #bbb; background: #fafafa; }
td.selected { outline: 3px solid {{.SelectedColor}}; outline-offset: -3px; }
span.dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; background: {{.DotColor}}; margin-left: 4px; }
ul.day-events { margin-top: 16px; padding-left: 20px; }
ul.day-events li { margin-bottom: 4px; }
</style>
</head>
<body data-ready="true">
<h1>{{.MonthLabel}}</h1>
<table>
<tr>{{range .WeekdayNames}}<th>{{.}}</th>{{end}}</tr>
{{range .Weeks}}<tr>
{{range .}}<td class="{{if not .InMonth}}out{{end}}{{if .Selected}} selected{{end}}">{{.DayNum}}{{if .HasEvents}}<span class="dot"></span>{{end}}</td>
{{end}}</tr>
{{end}}</table>
<h2>{{.SelectedLabel}}</h2>
{{if .DayEvents}}<ul class="day-events">
{{range .DayEvents}}<li><strong>{{.Title}}</strong> {{.When}}{{if .Location}} · {{.Location}}{{end}}</li>
{{end}}</ul>{{else}}<p>No events on this day.</p>{{end}}
</body>
</html>
`))

type pageData struct {
	MonthLabel    string
	SelectedLabel string
	SelectedColor string
	DotColor      string
	WeekdayNames  []string
	Weeks         [][]pageCell
	DayEvents     []pageEvent
}

type pageCell struct {
	DayNum    int
	InMonth   bool
	Selected  bool
	HasEvents bool
}

type pageEvent struct {
	Title    string
	When     string
	Location string
}

func (s *Server) handleCalendarPage(w http.ResponseWriter, r *http.Request) {
	loc := s.cfg.Location()

	month, selected, err := calendarParams(r, loc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	events, err := s.monthEvents(r.Context(), month, loc)
	if err != nil {
		appLog.Error("calendar page: upstream fetch failed", err)
		http.Error(w, "failed to fetch events", http.StatusBadGateway)
		return
	}

	markings := calendar.BuildMarkings(events, selected, loc)

	data := pageData{
		MonthLabel:    month.Format("January 2006"),
		SelectedLabel: datefmt.FormatDate(selected, datefmt.LayoutLongDate),
		SelectedColor: calendar.SelectedColor,
		DotColor:      calendar.DotColor,
		WeekdayNames:  weekdayNames(s.cfg.WeekStart),
		Weeks:         monthGrid(month, markings, s.cfg.WeekStart),
	}
	for _, ev := range calendar.EventsOnDay(events, selected, loc) {
		data.DayEvents = append(data.DayEvents, pageEvent{
			Title:    ev.Title,
			When:     datefmt.FormatTime(ev.StartDate),
			Location: ev.Location,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, data); err != nil {
		appLog.Error("calendar page: render failed", err)
	}
}

func weekdayNames(weekStart string) []string {
	if weekStart == "monday" {
		return []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	}
	return []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
}

// monthGrid lays the month out in full weeks, padding with the neighboring
// months' days so every row has seven cells.
func monthGrid(month time.Time, markings map[string]calendar.Marking, weekStart string) [][]pageCell {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	next := first.AddDate(0, 1, 0)

	startOffset := int(first.Weekday()) // days to back up to the row start
	if weekStart == "monday" {
		startOffset = (startOffset + 6) % 7
	}
	cur := first.AddDate(0, 0, -startOffset)

	var weeks [][]pageCell
	for cur.Before(next) || len(weeks) == 0 {
		week := make([]pageCell, 0, 7)
		for i := 0; i < 7; i++ {
			m := markings[cur.Format(datefmt.LayoutDay)]
			week = append(week, pageCell{
				DayNum:    cur.Day(),
				InMonth:   cur.Month() == month.Month(),
				Selected:  m.Selected,
				HasEvents: m.HasEvents,
			})
			cur = cur.AddDate(0, 0, 1)
		}
		weeks = append(weeks, week)
	}
	return weeks
}
