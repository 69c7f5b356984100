package domain

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewState_StartsNational(t *testing.T) {
	v := NewViewState(newTestUniverse())

	assert.Equal(t, LevelNational, v.Level())
	assert.Nil(t, v.State())
	assert.Nil(t, v.District())

	cam, err := v.Camera()
	require.NoError(t, err)
	assert.Equal(t, NationalCamera, cam)
}

func TestViewState_FullNavigation(t *testing.T) {
	v := NewViewState(newTestUniverse())

	require.NoError(t, v.SelectState("06"))
	assert.Equal(t, LevelState, v.Level())
	require.NotNil(t, v.State())
	assert.Equal(t, "CA", v.State().Abbr)
	assert.Nil(t, v.District())
	require.Len(t, v.Districts(), 2)

	require.NoError(t, v.SelectDistrict("CA12"))
	assert.Equal(t, LevelDistrict, v.Level())
	assert.Equal(t, "CA12", v.District().OfficeID)
	assert.Equal(t, "CA", v.State().Abbr)

	require.NoError(t, v.BackToState())
	assert.Equal(t, LevelState, v.Level())
	assert.Nil(t, v.District())
	assert.Equal(t, "CA", v.State().Abbr)

	require.NoError(t, v.SelectDistrict("CA01"))
	v.Reset()
	assert.Equal(t, LevelNational, v.Level())
	assert.Nil(t, v.State())
	assert.Nil(t, v.District())
	assert.Empty(t, v.Districts())
}

func TestViewState_SelectStateUnknownIsNoOp(t *testing.T) {
	v := NewViewState(newTestUniverse())
	require.NoError(t, v.SelectState("48"))
	require.NoError(t, v.SelectDistrict("TX07"))
	before := v.Snapshot()

	err := v.SelectState("99")
	require.ErrorIs(t, err, ErrLookupMiss)
	assert.Equal(t, before, v.Snapshot())
}

func TestViewState_SelectStateFromDistrictClearsDistrict(t *testing.T) {
	v := NewViewState(newTestUniverse())
	require.NoError(t, v.SelectState("48"))
	require.NoError(t, v.SelectDistrict("TX21"))

	require.NoError(t, v.SelectState("06"))
	assert.Equal(t, LevelState, v.Level())
	assert.Equal(t, "CA", v.State().Abbr)
	assert.Nil(t, v.District())
}

func TestViewState_SelectDistrictScopedToState(t *testing.T) {
	v := NewViewState(newTestUniverse())

	err := v.SelectDistrict("CA12")
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, LevelNational, v.Level())

	require.NoError(t, v.SelectState("06"))
	err = v.SelectDistrict("TX07")
	require.ErrorIs(t, err, ErrLookupMiss)
	assert.Equal(t, LevelState, v.Level())
	assert.Nil(t, v.District())
}

func TestViewState_BackToStateOnlyFromDistrict(t *testing.T) {
	v := NewViewState(newTestUniverse())
	require.ErrorIs(t, v.BackToState(), ErrInvalidTransition)
	assert.Equal(t, LevelNational, v.Level())

	require.NoError(t, v.SelectState("44"))
	require.ErrorIs(t, v.BackToState(), ErrInvalidTransition)
	assert.Equal(t, LevelState, v.Level())
	assert.Equal(t, "RI", v.State().Abbr)
}

func TestViewState_DistrictsShareStatePrefix(t *testing.T) {
	v := NewViewState(newTestUniverse())
	require.NoError(t, v.SelectState("48"))

	require.NotEmpty(t, v.Districts())
	for _, d := range v.Districts() {
		assert.Equal(t, "TX", d.OfficeID[:2])
	}
}

func TestViewState_Camera(t *testing.T) {
	u := newTestUniverse()
	v := NewViewState(u)
	require.NoError(t, v.SelectState("06"))

	caBox, err := BoundingBoxOf(u.states[0].Geometry)
	require.NoError(t, err)

	cam, err := v.Camera()
	require.NoError(t, err)
	assert.Equal(t, FitState(caBox, "CA"), cam)

	back, err := v.CameraAfterBack()
	require.NoError(t, err)
	assert.Equal(t, FitBox(caBox), back)

	require.NoError(t, v.SelectDistrict("CA12"))
	cam, err = v.Camera()
	require.NoError(t, err)
	assert.InDelta(t, -122.25, cam.Center.Lon, 1e-9)
	assert.InDelta(t, 37.8, cam.Center.Lat, 1e-9)
}

func TestViewState_CameraInvalidGeometryFallsBack(t *testing.T) {
	u := newTestUniverse()
	u.states = append(u.states, &StateFeature{FIPS: "72", Abbr: "PR", Name: "Puerto Rico", Geometry: orb.Point{-66, 18}})
	v := NewViewState(u)
	require.NoError(t, v.SelectState("72"))

	cam, err := v.Camera()
	var ge *InvalidGeometryError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "72", ge.FeatureID)
	assert.Equal(t, FitBox(BoundingBox{}), cam)
}

func TestViewState_SnapshotIsACopy(t *testing.T) {
	v := NewViewState(newTestUniverse())
	require.NoError(t, v.SelectState("06"))

	snap := v.Snapshot()
	snap.Districts[0] = nil
	assert.NotNil(t, v.Districts()[0])
}
