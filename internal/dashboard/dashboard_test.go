package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/congress-dashboard/internal/domain"
	"github.com/couchcryptid/congress-dashboard/internal/render"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard_SessionLifecycle(t *testing.T) {
	h := newHarness()

	id := h.d.NewSession()
	require.NotEmpty(t, id)
	assert.InDelta(t, 1, testutil.ToFloat64(h.metrics.ActiveSessions), 0)

	frame, err := h.d.View(id)
	require.NoError(t, err)
	assert.Equal(t, domain.LevelNational, frame.Level)
	assert.Equal(t, domain.NationalCamera, frame.Camera)
	assert.Equal(t, render.NationalMapHeader, frame.MapHeader)

	require.NoError(t, h.d.CloseSession(id))
	assert.InDelta(t, 0, testutil.ToFloat64(h.metrics.ActiveSessions), 0)

	_, err = h.d.View(id)
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.ErrorIs(t, h.d.CloseSession(id), ErrSessionNotFound)
	_, err = h.d.Click(context.Background(), id, "48")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDashboard_ClickRoutesStateThenDistrict(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	id := h.d.NewSession()

	frame, err := h.d.Click(ctx, id, "48")
	require.NoError(t, err)
	assert.Equal(t, domain.LevelState, frame.Level)
	assert.Equal(t, "Texas Selected", frame.MapHeader)
	assert.Equal(t, "Congress Members for Texas", frame.MemberHeader)
	assert.Equal(t, uint64(1), frame.Generation)
	assert.True(t, frame.Buttons.BackToNational)
	assert.False(t, frame.Buttons.BackToState)

	frame, err = h.d.Click(ctx, id, "TX07")
	require.NoError(t, err)
	assert.Equal(t, domain.LevelDistrict, frame.Level)
	assert.Equal(t, "Congress Members for Texas - District 07", frame.MemberHeader)
	assert.Equal(t, uint64(2), frame.Generation)
	assert.True(t, frame.Buttons.BackToState)

	assert.Equal(t, []string{domain.TransitionSelectState, domain.TransitionSelectDistrict}, h.pub.kinds())
	assert.InDelta(t, 1, testutil.ToFloat64(h.metrics.Transitions.WithLabelValues(domain.TransitionSelectDistrict)), 0)
}

func TestDashboard_ClickUnknownIsNoOp(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	id := h.d.NewSession()

	before, err := h.d.Click(ctx, id, "48")
	require.NoError(t, err)

	after, err := h.d.Click(ctx, id, "CA12")
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Len(t, h.pub.events, 1)
	assert.InDelta(t, 1, testutil.ToFloat64(h.metrics.LookupMisses.WithLabelValues("click")), 0)
}

func TestDashboard_DistrictOfOtherStateIgnored(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	id := h.d.NewSession()

	_, err := h.d.SelectState(ctx, id, "44")
	require.NoError(t, err)
	frame, err := h.d.SelectDistrict(ctx, id, "TX07")
	require.NoError(t, err)
	assert.Equal(t, domain.LevelState, frame.Level)
	assert.Equal(t, "Rhode Island Selected", frame.MapHeader)
	assert.InDelta(t, 1, testutil.ToFloat64(h.metrics.LookupMisses.WithLabelValues("district")), 0)
}

func TestDashboard_SelectDistrictAtNationalIgnored(t *testing.T) {
	h := newHarness()
	id := h.d.NewSession()

	frame, err := h.d.SelectDistrict(context.Background(), id, "TX07")
	require.NoError(t, err)
	assert.Equal(t, domain.LevelNational, frame.Level)
	assert.Empty(t, h.pub.events)
}

func TestDashboard_ClickAt(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	id := h.d.NewSession()

	frame, err := h.d.ClickAt(ctx, id, domain.GeoPoint{Lon: -95.45, Lat: 29.75})
	require.NoError(t, err)
	assert.Equal(t, domain.LevelState, frame.Level, "first click selects the containing state")

	frame, err = h.d.ClickAt(ctx, id, domain.GeoPoint{Lon: -95.45, Lat: 29.75})
	require.NoError(t, err)
	assert.Equal(t, domain.LevelDistrict, frame.Level)

	frame, err = h.d.ClickAt(ctx, id, domain.GeoPoint{Lon: 10, Lat: 50})
	require.NoError(t, err)
	assert.Equal(t, domain.LevelDistrict, frame.Level)
	assert.InDelta(t, 1, testutil.ToFloat64(h.metrics.LookupMisses.WithLabelValues("point")), 0)
}

func TestDashboard_SelectStateByAbbr(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	id := h.d.NewSession()

	frame, err := h.d.SelectStateByAbbr(ctx, id, "ri")
	require.NoError(t, err)
	assert.Equal(t, "Rhode Island Selected", frame.MapHeader)

	frame, err = h.d.SelectStateByAbbr(ctx, id, "XX")
	require.NoError(t, err)
	assert.Equal(t, "Rhode Island Selected", frame.MapHeader)
	assert.InDelta(t, 1, testutil.ToFloat64(h.metrics.LookupMisses.WithLabelValues("state")), 0)
}

func TestDashboard_BackToStateAndReset(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	id := h.d.NewSession()

	stateFrame, err := h.d.Click(ctx, id, "48")
	require.NoError(t, err)
	_, err = h.d.Click(ctx, id, "TX21")
	require.NoError(t, err)

	back, err := h.d.BackToState(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.LevelState, back.Level)
	assert.False(t, back.Buttons.BackToState)
	assert.Greater(t, back.Camera.Scale, stateFrame.Camera.Scale, "leaving a district frames the state unpadded")

	view, err := h.d.View(id)
	require.NoError(t, err)
	assert.Equal(t, back.Camera, view.Camera)

	again, err := h.d.BackToState(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, back.Generation, again.Generation, "back outside the district level is a no-op")

	reset, err := h.d.Reset(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.LevelNational, reset.Level)
	assert.Equal(t, domain.NationalCamera, reset.Camera)
	assert.Equal(t, uint64(4), reset.Generation)

	reselected, err := h.d.Click(ctx, id, "48")
	require.NoError(t, err)
	assert.Equal(t, stateFrame.Camera, reselected.Camera, "a fresh selection is padded again")

	assert.Equal(t, []string{
		domain.TransitionSelectState,
		domain.TransitionSelectDistrict,
		domain.TransitionBackToState,
		domain.TransitionReset,
		domain.TransitionSelectState,
	}, h.pub.kinds())
}

func TestDashboard_EventsCarrySelection(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	id := h.d.NewSession()

	_, err := h.d.Click(ctx, id, "48")
	require.NoError(t, err)
	_, err = h.d.Click(ctx, id, "TX07")
	require.NoError(t, err)

	require.Len(t, h.pub.events, 2)
	ev := h.pub.events[1]
	assert.Equal(t, id, ev.SessionID)
	assert.Equal(t, domain.LevelDistrict, ev.Level)
	assert.Equal(t, "48", ev.StateFIPS)
	assert.Equal(t, "TX", ev.StateAbbr)
	assert.Equal(t, "TX07", ev.OfficeID)
	assert.Equal(t, uint64(2), ev.Generation)
}

func TestDashboard_PublishFailureDoesNotFailTransition(t *testing.T) {
	h := newHarness()
	h.pub.err = errors.New("broker unavailable")
	id := h.d.NewSession()

	frame, err := h.d.Click(context.Background(), id, "06")
	require.NoError(t, err)
	assert.Equal(t, "California Selected", frame.MapHeader)
}

func TestDashboard_InvalidGeometryWarns(t *testing.T) {
	h := newHarness()
	id := h.d.NewSession()

	frame, err := h.d.Click(context.Background(), id, "99")
	require.NoError(t, err)
	assert.Equal(t, domain.LevelState, frame.Level)
	assert.Contains(t, frame.Warning, "99")
	assert.InDelta(t, 1, testutil.ToFloat64(h.metrics.InvalidGeometries), 0)
}

func TestDashboard_DistrictNumberFallbackAndMismatch(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	id := h.d.NewSession()

	_, err := h.d.Click(ctx, id, "44")
	require.NoError(t, err)

	frame, err := h.d.Click(ctx, id, "RI01")
	require.NoError(t, err)
	assert.Equal(t, "Congress Members for Rhode Island - District 01", frame.MemberHeader)

	_, err = h.d.BackToState(ctx, id)
	require.NoError(t, err)
	frame, err = h.d.Click(ctx, id, "RI02")
	require.NoError(t, err)
	assert.Equal(t, "Congress Members for Rhode Island - District 03", frame.MemberHeader, "DISTRICT property wins")

	// Resolution happens when the store loads, not per render.
	assert.Zero(t, testutil.ToFloat64(h.metrics.DistrictNumberMismatches))
	assert.Zero(t, testutil.ToFloat64(h.metrics.DistrictNumberFallbacks))
}

func TestDashboard_SessionsAreIndependent(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	a := h.d.NewSession()
	b := h.d.NewSession()

	_, err := h.d.Click(ctx, a, "48")
	require.NoError(t, err)

	frame, err := h.d.View(b)
	require.NoError(t, err)
	assert.Equal(t, domain.LevelNational, frame.Level)
	assert.Equal(t, uint64(0), frame.Generation)
}

func TestDashboard_CheckReadiness(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.d.CheckReadiness(context.Background()))

	h.geo.notReady = errors.New("geo data not loaded")
	require.Error(t, h.d.CheckReadiness(context.Background()))
}
