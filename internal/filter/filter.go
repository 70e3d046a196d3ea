// Package filter implements the client-side event filtering pipeline:
// category and location-radius predicates ANDed over an in-memory event
// list. Filtering is a pure function of its inputs; it never mutates the
// passed state or events and never reorders the list.
package filter

import (
	"github.com/go-playground/validator"

	"evscout/internal/geo"
	"evscout/internal/model"
)

// Radius bounds match the search-radius slider of the mobile client.
const (
	MinRadiusKm = 1
	MaxRadiusKm = 500
)

var validate = validator.New()

// State holds the active filter selections. It is owned by the caller and
// passed in by value; Apply never modifies it.
type State struct {
	// CategoryID selects a category when non-nil. Note that "" and "0"
	// are legitimate category identifiers; only nil disables the
	// predicate.
	CategoryID *string

	// LocationEnabled turns on the radius predicate.
	LocationEnabled bool

	// RadiusKm is the search radius in kilometers, 1-500 inclusive.
	RadiusKm float64 `validate:"omitempty,min=1,max=500"`

	// UserCoordinate is the current device position, nil while permission
	// is denied or the fix is still pending.
	UserCoordinate *model.Coordinate
}

// Validate checks the radius bounds. A zero radius is accepted so that a
// state with the location predicate disabled validates cleanly.
func (s State) Validate() error {
	return validate.Struct(s)
}

// Result is the outcome of one filter pass.
type Result struct {
	// Events is the surviving subset, in the original order.
	Events []model.Event

	// LocationUnavailable is the fail-open notice: the location predicate
	// was enabled but no user coordinate was available, so it passed all
	// events. Callers must surface this rather than drop it.
	LocationUnavailable bool
}

// Apply runs all active predicates over events and returns the subset
// satisfying every one of them.
//
//   - Category: active iff state.CategoryID != nil; exact identifier match.
//   - Location: active iff state.LocationEnabled and a valid user coordinate
//     exists; an event passes iff its distance from the user is within
//     state.RadiusKm. Events without a usable coordinate pair never pass an
//     active location predicate.
//   - Location enabled without a coordinate fails open: every event passes
//     and Result.LocationUnavailable is set.
//
// With no active predicates the input is returned as-is (same backing
// array, same order).
func Apply(events []model.Event, state State) Result {
	categoryActive := state.CategoryID != nil

	locationRequested := state.LocationEnabled
	locationActive := locationRequested && geo.Valid(state.UserCoordinate)
	locationUnavailable := locationRequested && !locationActive

	if !categoryActive && !locationActive {
		return Result{Events: events, LocationUnavailable: locationUnavailable}
	}

	out := make([]model.Event, 0, len(events))
	for i := range events {
		ev := &events[i]
		if categoryActive && ev.CategoryID.String() != *state.CategoryID {
			continue
		}
		if locationActive && !withinRadius(ev, state.UserCoordinate, state.RadiusKm) {
			continue
		}
		out = append(out, *ev)
	}

	return Result{Events: out, LocationUnavailable: locationUnavailable}
}

func withinRadius(ev *model.Event, user *model.Coordinate, radiusKm float64) bool {
	d, ok := geo.Distance(user, ev.Coordinate())
	if !ok {
		return false
	}
	return d <= radiusKm
}
