package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evscout/internal/api"
	"evscout/internal/calendar"
	"evscout/internal/config"
	"evscout/internal/model"
)

func ptr[T any](v T) *T { return &v }

func upstreamEvents() []model.Event {
	return []model.Event{
		{ID: "1", Title: "Jazz Night", CategoryID: "2", StartDate: "2024-03-15T19:00:00", EndDate: "2024-03-15T22:00:00", Latitude: ptr(37.7749), Longitude: ptr(-122.4194), Location: "Blue Room"},
		{ID: "2", Title: "Street Fair", CategoryID: "5", StartDate: "2024-03-16T11:00:00", EndDate: "2024-03-16T15:00:00", Latitude: ptr(34.0522), Longitude: ptr(-118.2437)},
		{ID: "3", Title: "Book Club", CategoryID: "2", StartDate: "2024-03-15T18:00:00", EndDate: "2024-03-15T20:00:00"},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/events", "/events/dates":
			json.NewEncoder(w).Encode(upstreamEvents())
		case "/categories":
			json.NewEncoder(w).Encode([]model.Category{{ID: "2", Name: "Music"}, {ID: "5", Name: "Food"}})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(upstream.Close)

	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	cfg.APIBaseURL = upstream.URL
	cfg.Normalize()

	client := api.NewClient(cfg, nil, "")
	return NewServer(cfg, client, "/nonexistent/preview.png")
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t, nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBasicAuth(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BasicAuth = &config.BasicAuthConfig{Username: "admin", Password: "secret"}

	srv := httptest.NewServer(newTestServer(t, cfg).Handler())
	defer srv.Close()

	// /health is exempt.
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Everything else requires credentials.
	resp, err = http.Get(srv.URL + "/api/events")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/events", nil)
	req.SetBasicAuth("admin", "secret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPIEventsCategoryFilter(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t, nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/events?category_id=2")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out eventsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 2, out.Count)
	assert.False(t, out.LocationWarning)
	for _, ev := range out.Events {
		assert.Equal(t, "2", ev.CategoryID.String())
	}
}

func TestAPIEventsRadiusFilter(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t, nil).Handler())
	defer srv.Close()

	// 50km around San Francisco keeps only the Jazz Night; the Book Club
	// has no coordinates and LA is too far.
	resp, err := http.Get(srv.URL + "/api/events?lat=37.7749&lng=-122.4194&radius=50")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out eventsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, 1, out.Count)
	assert.Equal(t, "Jazz Night", out.Events[0].Title)
}

func TestAPIEventsLocationWarning(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t, nil).Handler())
	defer srv.Close()

	// lat/lng present but unparseable: the filter is requested without a
	// usable position, so the full listing comes back flagged.
	resp, err := http.Get(srv.URL + "/api/events?lat=abc&lng=def&radius=50")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out eventsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.LocationWarning)
	assert.Equal(t, len(upstreamEvents()), out.Count)
}

func TestAPIEventsBadRadius(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t, nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/events?lat=37.7&lng=-122.4&radius=9000")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPICalendar(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t, nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/calendar?month=2024-03&selected=2024-03-15")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out calendarResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "2024-03", out.Month)
	assert.Equal(t, "2024-03-15", out.Selected)

	m := out.Markings["2024-03-15"]
	assert.True(t, m.Selected)
	assert.True(t, m.HasEvents)
	assert.Equal(t, calendar.SelectedColor, m.SelectedColor)
	assert.True(t, out.Markings["2024-03-16"].HasEvents)

	require.Len(t, out.DayEvents, 2)
}

func TestAPICalendarBadMonth(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t, nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/calendar?month=march")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCalendarPage(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t, nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/calendar?month=2024-03&selected=2024-03-15")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	html := string(body)
	assert.Contains(t, html, `data-ready="true"`)
	assert.Contains(t, html, "March 2024")
	assert.Contains(t, html, "Jazz Night")
}

func TestCalendarICS(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t, nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/calendar.ics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/calendar; charset=utf-8", resp.Header.Get("Content-Type"))
}

func TestPreviewMissingFile(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t, nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/preview.png")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMonthGridShape(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Normalize()

	month, _, err := calendarParams(httptest.NewRequest(http.MethodGet, "/api/calendar?month=2024-03", nil), cfg.Location())
	require.NoError(t, err)

	weeks := monthGrid(month, map[string]calendar.Marking{}, "sunday")
	for _, week := range weeks {
		assert.Len(t, week, 7)
	}
	// March 2024 starts on a Friday; the first row begins with padding.
	assert.False(t, weeks[0][0].InMonth)
	assert.True(t, weeks[0][5].InMonth)
	assert.Equal(t, 1, weeks[0][5].DayNum)
}
