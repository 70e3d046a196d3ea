package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/imroc/req"

	"evscout/internal/log"
	"evscout/internal/model"
)

// EventQuery carries the server-side filter parameters of GET /events.
// These are distinct from the client-side filter in internal/filter and may
// be combined with it (e.g. a date-ranged server fetch re-filtered locally
// for the calendar view).
type EventQuery struct {
	// CategoryID filters by category when non-nil.
	CategoryID *string
	// Lat/Lng plus RadiusKm ask the server for a geo-bounded listing.
	Lat, Lng *float64
	RadiusKm float64
	// StartDate/EndDate bound the listing by date, yyyy-MM-dd.
	StartDate, EndDate string
	// Limit caps the number of returned events; 0 means server default.
	Limit int
}

func (q EventQuery) params() req.QueryParam {
	p := req.QueryParam{}
	if q.CategoryID != nil {
		p["category_id"] = *q.CategoryID
	}
	if q.Lat != nil && q.Lng != nil {
		p["lat"] = *q.Lat
		p["lng"] = *q.Lng
		if q.RadiusKm > 0 {
			p["radius"] = q.RadiusKm
		}
	}
	if q.StartDate != "" {
		p["start_date"] = q.StartDate
	}
	if q.EndDate != "" {
		p["end_date"] = q.EndDate
	}
	if q.Limit > 0 {
		p["limit"] = q.Limit
	}
	return p
}

// ListEvents fetches events matching q. Listings go through the disk-backed
// conditional-GET cache when one is configured: a 304 or a network error
// serves the last cached body instead of failing the caller.
func (c *Client) ListEvents(ctx context.Context, q EventQuery) ([]model.Event, error) {
	params := q.params()

	if c.cache == nil {
		var events []model.Event
		if err := c.do(ctx, http.MethodGet, "/events", params, nil, &events); err != nil {
			return nil, err
		}
		return events, nil
	}
	return c.listEventsCached(ctx, params)
}

func (c *Client) listEventsCached(ctx context.Context, params req.QueryParam) ([]model.Event, error) {
	cacheKey := c.url("/events") + "?" + marshalQuery(params)
	meta, cachedBody := c.cache.load(cacheKey)

	h := c.headers()
	if meta.ETag != "" {
		h["If-None-Match"] = meta.ETag
	}
	if meta.LastModified != "" {
		h["If-Modified-Since"] = meta.LastModified
	}

	resp, err := c.r.Get(c.url("/events"), ctx, h, params)
	if err != nil {
		if len(cachedBody) > 0 {
			log.Warn("event listing fetch failed, serving cached body",
				"err", err, "cached_at", meta.UpdatedAt)
			return decodeEvents(cachedBody)
		}
		return nil, fmt.Errorf("GET /events: %w", err)
	}

	status := resp.Response().StatusCode
	switch {
	case status == http.StatusOK:
		body := resp.Bytes()
		newMeta := cacheEntry{
			ETag:         resp.Response().Header.Get("ETag"),
			LastModified: resp.Response().Header.Get("Last-Modified"),
		}
		if err := c.cache.save(cacheKey, newMeta, body); err != nil {
			log.Error("event listing cache save failed", err)
		}
		return decodeEvents(body)

	case status == http.StatusNotModified:
		if len(cachedBody) == 0 {
			return nil, fmt.Errorf("GET /events: 304 with no cached body")
		}
		log.Debug("event listing not modified, using cache", "cached_at", meta.UpdatedAt)
		return decodeEvents(cachedBody)

	case status >= 500 && len(cachedBody) > 0:
		log.Warn("event listing upstream error, serving cached body",
			"status", status, "cached_at", meta.UpdatedAt)
		return decodeEvents(cachedBody)

	default:
		return nil, decodeError(resp, status)
	}
}

func decodeEvents(body []byte) ([]model.Event, error) {
	var events []model.Event
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("GET /events: decode response: %w", err)
	}
	return events, nil
}

// GetEvent fetches a single event by id.
func (c *Client) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	var ev model.Event
	if err := c.do(ctx, http.MethodGet, "/events/"+id, nil, nil, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// NearbyEvents asks the server for events within radiusKm of the given
// position.
func (c *Client) NearbyEvents(ctx context.Context, at model.Coordinate, radiusKm float64) ([]model.Event, error) {
	params := req.QueryParam{
		"lat":    at.Latitude,
		"lng":    at.Longitude,
		"radius": radiusKm,
	}
	var events []model.Event
	if err := c.do(ctx, http.MethodGet, "/events/nearby", params, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// EventsByDateRange fetches events between two yyyy-MM-dd dates inclusive.
func (c *Client) EventsByDateRange(ctx context.Context, startDate, endDate string) ([]model.Event, error) {
	params := req.QueryParam{
		"start_date": startDate,
		"end_date":   endDate,
	}
	var events []model.Event
	if err := c.do(ctx, http.MethodGet, "/events/dates", params, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// RegisterForEvent registers the logged-in user for an event.
func (c *Client) RegisterForEvent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/events/"+id+"/register", nil, nil, nil)
}

// CancelRegistration removes the logged-in user's registration.
func (c *Client) CancelRegistration(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/events/"+id+"/register", nil, nil, nil)
}
