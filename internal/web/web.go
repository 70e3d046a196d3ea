// Package web is the local companion server: a JSON API over the filtered
// event feed plus a server-rendered calendar page that doubles as the
// snapshot target for headless capture.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"evscout/internal/api"
	"evscout/internal/calendar"
	"evscout/internal/config"
	"evscout/internal/datefmt"
	"evscout/internal/filter"
	"evscout/internal/ics"
	appLog "evscout/internal/log"
	"evscout/internal/model"
)

// Server provides HTTP access to the event feed for the local UI and for
// headless snapshot capture.
type Server struct {
	cfg         *config.Config
	client      *api.Client
	previewPath string
	mux         *http.ServeMux

	// In-memory cache of the upstream event listing so UI polling and the
	// calendar page do not hammer the remote API between cron refreshes.
	eventsMu    sync.RWMutex
	eventsCache *eventsCache

	categoriesMu    sync.RWMutex
	categoriesCache *categoriesCache
}

const (
	eventsCacheTTL     = 30 * time.Second
	categoriesCacheTTL = 5 * time.Minute
)

// eventsCache holds the last upstream event listing and its timestamp.
type eventsCache struct {
	events    []model.Event
	updatedAt time.Time
}

type categoriesCache struct {
	categories []model.Category
	updatedAt  time.Time
}

// NewServer constructs a new Server. previewPath is where the snapshot
// pipeline writes its PNG; it is served verbatim on /preview.png.
func NewServer(cfg *config.Config, client *api.Client, previewPath string) *Server {
	s := &Server{
		cfg:         cfg,
		client:      client,
		previewPath: previewPath,
		mux:         http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// An empty username or password counts as disabled.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /health stays reachable for liveness probes.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="evscout", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// StartServer binds to cfg.Listen and serves until the listener fails.
// Graceful shutdown is the caller's concern; serve mode wraps this in an
// http.Server when it needs one.
func StartServer(_ context.Context, cfg *config.Config, client *api.Client, previewPath string) error {
	s := NewServer(cfg, client, previewPath)
	appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
	return http.ListenAndServe(cfg.Listen, s.Handler())
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/events", s.handleEvents)
	s.mux.HandleFunc("/api/calendar", s.handleCalendar)
	s.mux.HandleFunc("/api/categories", s.handleCategories)
	s.mux.HandleFunc("/calendar", s.handleCalendarPage)
	s.mux.HandleFunc("/calendar.ics", s.handleICS)
	s.mux.HandleFunc("/preview.png", s.handlePreview)
	s.mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/calendar", http.StatusFound)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Refresh forces a refetch of the upstream event listing. The serve-mode
// cron loop calls this so UI reads between ticks stay warm.
func (s *Server) Refresh(ctx context.Context) error {
	_, err := s.fetchEvents(ctx, true)
	return err
}

// fetchEvents returns the upstream event listing, from cache when fresh.
func (s *Server) fetchEvents(ctx context.Context, force bool) ([]model.Event, error) {
	now := time.Now()

	if !force {
		s.eventsMu.RLock()
		ec := s.eventsCache
		s.eventsMu.RUnlock()
		if ec != nil && now.Sub(ec.updatedAt) < eventsCacheTTL {
			return ec.events, nil
		}
	}

	events, err := s.client.ListEvents(ctx, api.EventQuery{})
	if err != nil {
		// Serve stale data over an error page when we have any.
		s.eventsMu.RLock()
		ec := s.eventsCache
		s.eventsMu.RUnlock()
		if ec != nil {
			appLog.Warn("event refresh failed; serving stale listing", "error", err.Error())
			return ec.events, nil
		}
		return nil, err
	}

	s.eventsMu.Lock()
	s.eventsCache = &eventsCache{events: events, updatedAt: time.Now()}
	s.eventsMu.Unlock()
	return events, nil
}

// eventsResponse is the JSON response shape for /api/events.
type eventsResponse struct {
	Events []model.Event `json:"events"`

	// LocationWarning is true when a location filter was requested but the
	// user position was missing or invalid; the listing is then unfiltered
	// by distance.
	LocationWarning bool `json:"location_warning"`
	Count           int  `json:"count"`
}

// handleEvents returns the event listing with optional client-side filters.
//
// GET /api/events?category_id=2&lat=37.77&lng=-122.41&radius=25
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	state := filter.State{RadiusKm: s.cfg.DefaultRadiusKm}
	if cat := q.Get("category_id"); cat != "" {
		state.CategoryID = &cat
	}
	if q.Get("lat") != "" && q.Get("lng") != "" {
		lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
		lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
		state.LocationEnabled = true
		if errLat == nil && errLng == nil {
			state.UserCoordinate = &model.Coordinate{Latitude: lat, Longitude: lng}
		}
	}
	if v := q.Get("radius"); v != "" {
		if radius, err := strconv.ParseFloat(v, 64); err == nil {
			state.RadiusKm = radius
		}
	}
	if err := state.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := s.fetchEvents(ctx, false)
	if err != nil {
		appLog.Error("api events: upstream fetch failed", err)
		writeError(w, http.StatusBadGateway, "failed to fetch events")
		return
	}

	res := filter.Apply(events, state)
	if res.LocationUnavailable {
		appLog.Warn("location filter requested without a usable position; returning unfiltered listing")
	}

	writeJSON(w, http.StatusOK, eventsResponse{
		Events:          res.Events,
		LocationWarning: res.LocationUnavailable,
		Count:           len(res.Events),
	})
}

// calendarResponse is the JSON response shape for /api/calendar.
type calendarResponse struct {
	Month     string                      `json:"month"`
	Selected  string                      `json:"selected"`
	WeekStart string                      `json:"week_start"`
	Markings  map[string]calendar.Marking `json:"markings"`
	DayEvents []model.Event               `json:"day_events"`
}

// handleCalendar returns day markings for one month plus the event list of
// the selected day.
//
// GET /api/calendar?month=2024-03&selected=2024-03-15
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	loc := s.cfg.Location()

	month, selected, err := calendarParams(r, loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := s.monthEvents(ctx, month, loc)
	if err != nil {
		appLog.Error("api calendar: upstream fetch failed", err)
		writeError(w, http.StatusBadGateway, "failed to fetch events")
		return
	}

	writeJSON(w, http.StatusOK, calendarResponse{
		Month:     month.Format("2006-01"),
		Selected:  selected,
		WeekStart: s.cfg.WeekStart,
		Markings:  calendar.BuildMarkings(events, selected, loc),
		DayEvents: calendar.EventsOnDay(events, selected, loc),
	})
}

// calendarParams parses the month (2006-01, default current) and selected
// day (2006-01-02, default today) query parameters.
func calendarParams(r *http.Request, loc *time.Location) (time.Time, string, error) {
	q := r.URL.Query()
	now := time.Now().In(loc)

	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	if v := q.Get("month"); v != "" {
		m, err := time.ParseInLocation("2006-01", v, loc)
		if err != nil {
			return time.Time{}, "", err
		}
		month = m
	}

	selected := now.Format(datefmt.LayoutDay)
	if v := q.Get("selected"); v != "" {
		if _, err := time.ParseInLocation(datefmt.LayoutDay, v, loc); err != nil {
			return time.Time{}, "", err
		}
		selected = v
	}
	return month, selected, nil
}

// monthEvents fetches the events overlapping one calendar month.
func (s *Server) monthEvents(ctx context.Context, month time.Time, loc *time.Location) ([]model.Event, error) {
	start := month.Format(datefmt.LayoutDay)
	end := month.AddDate(0, 1, 0).Format(datefmt.LayoutDay)
	return s.client.EventsByDateRange(ctx, start, end)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	s.categoriesMu.RLock()
	cc := s.categoriesCache
	s.categoriesMu.RUnlock()
	if cc != nil && now.Sub(cc.updatedAt) < categoriesCacheTTL {
		writeJSON(w, http.StatusOK, cc.categories)
		return
	}

	categories, err := s.client.Categories(r.Context())
	if err != nil {
		appLog.Error("api categories: upstream fetch failed", err)
		writeError(w, http.StatusBadGateway, "failed to fetch categories")
		return
	}

	s.categoriesMu.Lock()
	s.categoriesCache = &categoriesCache{categories: categories, updatedAt: time.Now()}
	s.categoriesMu.Unlock()

	writeJSON(w, http.StatusOK, categories)
}

// handleICS exports the current event listing as an iCalendar feed.
func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	events, err := s.fetchEvents(r.Context(), false)
	if err != nil {
		appLog.Error("ics export: upstream fetch failed", err)
		writeError(w, http.StatusBadGateway, "failed to fetch events")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="evscout.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ics.Export(events, "evscout")))
}

// handlePreview serves the last rendered PNG snapshot from disk.
// http.ServeFile maps a missing file to 404 for us.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, s.previewPath)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
