package model

import "encoding/json"

// Event is a single discoverable event as returned by the remote API.
// Field names follow the API's snake_case wire format. Start/end timestamps
// are kept as the raw ISO-8601 strings from the wire; parsing happens at the
// point of use (internal/datefmt) so that malformed values degrade to the
// documented defaults instead of failing the whole payload.
type Event struct {
	ID          json.Number `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`

	// StartDate / EndDate are ISO-8601 timestamps (RFC3339 or bare
	// yyyy-MM-dd), exactly as received.
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	// Location is the human-readable venue label.
	Location  string   `json:"location"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	CategoryID   json.Number `json:"category_id"`
	CategoryName string      `json:"category_name"`

	// Price is nil when the API did not provide one; 0 means free.
	Price           *float64 `json:"price"`
	Capacity        *int     `json:"capacity"`
	RegisteredCount int      `json:"registered_count"`
	ImageURL        *string  `json:"image_url"`
}

// Coordinate returns the event's position, or nil when either component is
// missing. Events without a full lat/lng pair must not participate in
// distance or map-marker logic.
func (e *Event) Coordinate() *Coordinate {
	if e.Latitude == nil || e.Longitude == nil {
		return nil
	}
	return &Coordinate{Latitude: *e.Latitude, Longitude: *e.Longitude}
}

// Category is read-only reference data for event classification.
type Category struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
	Icon string      `json:"icon,omitempty"`
}

// Coordinate is a latitude/longitude pair. Both components are required
// together; a partial pair is represented as a nil *Coordinate.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// User is the authenticated account profile.
type User struct {
	ID       json.Number `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Name     string      `json:"name"`
}

// Bookmark links a user to a saved event. The API returns the embedded
// event alongside the bookmark row.
type Bookmark struct {
	ID      json.Number `json:"id"`
	EventID json.Number `json:"event_id"`
	Event   *Event      `json:"event,omitempty"`
}
