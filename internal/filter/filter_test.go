package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"evscout/internal/model"
)

func ptr[T any](v T) *T { return &v }

func testEvents() []model.Event {
	return []model.Event{
		{
			ID: "1", Title: "Jazz Night", CategoryID: "2",
			Latitude: ptr(37.7749), Longitude: ptr(-122.4194), // SF
		},
		{
			ID: "2", Title: "Food Truck Rally", CategoryID: "5",
			Latitude: ptr(37.8044), Longitude: ptr(-122.2708), // Oakland, ~13km from SF
		},
		{
			ID: "3", Title: "Online Hackathon", CategoryID: "2",
			// No coordinates at all.
		},
		{
			ID: "4", Title: "Marathon", CategoryID: "5",
			Latitude: ptr(34.0522), Longitude: ptr(-118.2437), // LA, ~560km from SF
		},
	}
}

func TestApplyNoPredicates(t *testing.T) {
	events := testEvents()
	res := Apply(events, State{})

	assert.False(t, res.LocationUnavailable)
	assert.Equal(t, events, res.Events)
	// Stable: same elements in the same order, no reslicing games.
	for i := range events {
		assert.Equal(t, events[i].ID, res.Events[i].ID)
	}
}

func TestApplyEmptyList(t *testing.T) {
	res := Apply(nil, State{CategoryID: ptr("2")})
	assert.Empty(t, res.Events)
}

func TestApplyCategory(t *testing.T) {
	events := testEvents()
	res := Apply(events, State{CategoryID: ptr("2")})

	assert.Len(t, res.Events, 2)
	assert.Equal(t, "Jazz Night", res.Events[0].Title)
	assert.Equal(t, "Online Hackathon", res.Events[1].Title)
	for _, ev := range res.Events {
		assert.Equal(t, "2", ev.CategoryID.String())
	}
}

func TestApplyCategoryNoMatch(t *testing.T) {
	res := Apply(testEvents(), State{CategoryID: ptr("99")})
	assert.Empty(t, res.Events)
}

// An empty-string category id is a real (if unusual) value, distinct from
// "no category filter".
func TestApplyCategoryEmptyStringIsReal(t *testing.T) {
	events := []model.Event{
		{ID: "1", CategoryID: ""},
		{ID: "2", CategoryID: "5"},
	}
	res := Apply(events, State{CategoryID: ptr("")})
	assert.Len(t, res.Events, 1)
	assert.Equal(t, "1", res.Events[0].ID.String())
}

func TestApplyLocationRadius(t *testing.T) {
	sf := &model.Coordinate{Latitude: 37.7749, Longitude: -122.4194}
	res := Apply(testEvents(), State{
		LocationEnabled: true,
		RadiusKm:        50,
		UserCoordinate:  sf,
	})

	assert.False(t, res.LocationUnavailable)
	// SF itself and Oakland survive; the coordinate-less event and LA do not.
	assert.Len(t, res.Events, 2)
	assert.Equal(t, "Jazz Night", res.Events[0].Title)
	assert.Equal(t, "Food Truck Rally", res.Events[1].Title)
}

func TestApplyLocationFailOpen(t *testing.T) {
	events := testEvents()
	res := Apply(events, State{
		LocationEnabled: true,
		RadiusKm:        10,
		UserCoordinate:  nil,
	})

	// All events pass and the caller gets the warning flag.
	assert.True(t, res.LocationUnavailable)
	assert.Equal(t, events, res.Events)
}

func TestApplyLocationInvalidCoordinateFailsOpen(t *testing.T) {
	res := Apply(testEvents(), State{
		LocationEnabled: true,
		RadiusKm:        10,
		UserCoordinate:  &model.Coordinate{Latitude: 91, Longitude: 0},
	})
	assert.True(t, res.LocationUnavailable)
	assert.Len(t, res.Events, 4)
}

func TestApplyBothPredicates(t *testing.T) {
	sf := &model.Coordinate{Latitude: 37.7749, Longitude: -122.4194}
	res := Apply(testEvents(), State{
		CategoryID:      ptr("5"),
		LocationEnabled: true,
		RadiusKm:        50,
		UserCoordinate:  sf,
	})

	assert.Len(t, res.Events, 1)
	assert.Equal(t, "Food Truck Rally", res.Events[0].Title)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	events := testEvents()
	state := State{CategoryID: ptr("2")}
	_ = Apply(events, state)

	assert.Equal(t, testEvents(), events)
	assert.Equal(t, "2", *state.CategoryID)
}

func TestStateValidate(t *testing.T) {
	assert.NoError(t, State{}.Validate())
	assert.NoError(t, State{RadiusKm: 1}.Validate())
	assert.NoError(t, State{RadiusKm: 500}.Validate())
	assert.Error(t, State{RadiusKm: 0.5}.Validate())
	assert.Error(t, State{RadiusKm: 501}.Validate())
}
