package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	u := newTestUniverse()
	national := NewViewState(u)
	inTexas := NewViewState(u)
	require.NoError(t, inTexas.SelectState("48"))

	tests := []struct {
		name string
		view *ViewState
		id   string
		want Intent
	}{
		{"state at national", national, "06", Intent{Kind: IntentSelectState, ID: "06"}},
		{"district at national is ignored", national, "TX07", Intent{Kind: IntentIgnore, ID: "TX07"}},
		{"district in scope", inTexas, "TX07", Intent{Kind: IntentSelectDistrict, ID: "TX07"}},
		{"district out of scope", inTexas, "CA12", Intent{Kind: IntentIgnore, ID: "CA12"}},
		{"other state from state level", inTexas, "44", Intent{Kind: IntentSelectState, ID: "44"}},
		{"unknown", inTexas, "ZZ", Intent{Kind: IntentIgnore, ID: "ZZ"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.id, tt.view))
		})
	}
}

func TestResolve_StateWinsOverDistrict(t *testing.T) {
	u := newTestUniverse()
	// A district whose office id collides with a state FIPS code.
	u.districts = append(u.districts, &DistrictFeature{OfficeID: "48", Geometry: square(-100, 30, -99, 31)})
	u.states[1].Abbr = "48"
	v := NewViewState(u)
	require.NoError(t, v.SelectState("48"))

	assert.Equal(t, IntentSelectState, Resolve("48", v).Kind)
}

func TestDispatch(t *testing.T) {
	v := NewViewState(newTestUniverse())

	require.NoError(t, Dispatch(v, Resolve("48", v)))
	assert.Equal(t, LevelState, v.Level())

	require.NoError(t, Dispatch(v, Resolve("TX21", v)))
	assert.Equal(t, LevelDistrict, v.Level())

	err := Dispatch(v, Resolve("nope", v))
	require.ErrorIs(t, err, ErrLookupMiss)
	assert.Equal(t, LevelDistrict, v.Level())
}

func TestLocate(t *testing.T) {
	v := NewViewState(newTestUniverse())

	assert.Equal(t, "48", Locate(GeoPoint{Lon: -97.7, Lat: 30.3}, v), "austin is in texas")
	assert.Equal(t, "", Locate(GeoPoint{Lon: 0, Lat: 0}, v))

	require.NoError(t, v.SelectState("48"))
	assert.Equal(t, "TX07", Locate(GeoPoint{Lon: -95.4, Lat: 29.7}, v), "houston is in TX07")
	assert.Equal(t, "48", Locate(GeoPoint{Lon: -102, Lat: 33}, v), "no district here, state is returned")
	assert.Equal(t, "06", Locate(GeoPoint{Lon: -119, Lat: 36}, v), "click on another state")
}
