package domain

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// IntentKind is the action a map click resolves to.
type IntentKind string

const (
	IntentIgnore         IntentKind = "ignore"
	IntentSelectState    IntentKind = "select_state"
	IntentSelectDistrict IntentKind = "select_district"
)

// Intent is a resolved map click.
type Intent struct {
	Kind IntentKind
	ID   string
}

// Resolve maps a clicked feature id to an intent. A state FIPS match wins
// over a coincidental district match; districts are only matched within the
// currently selected state's districts.
func Resolve(id string, v *ViewState) Intent {
	if _, ok := v.universe.StateByFIPS(id); ok {
		return Intent{Kind: IntentSelectState, ID: id}
	}
	if v.level != LevelNational && v.scopedDistrict(id) != nil {
		return Intent{Kind: IntentSelectDistrict, ID: id}
	}
	return Intent{Kind: IntentIgnore, ID: id}
}

// Dispatch applies an intent to v. An ignored intent returns ErrLookupMiss.
func Dispatch(v *ViewState, in Intent) error {
	switch in.Kind {
	case IntentSelectState:
		return v.SelectState(in.ID)
	case IntentSelectDistrict:
		return v.SelectDistrict(in.ID)
	default:
		return fmt.Errorf("click %q: %w", in.ID, ErrLookupMiss)
	}
}

// Locate returns the id of the feature under a clicked coordinate: a district
// of the selected state when one contains the point, otherwise the containing
// state's FIPS code. It returns "" when the point is outside every state.
func Locate(p GeoPoint, v *ViewState) string {
	pt := orb.Point{p.Lon, p.Lat}
	if v.level != LevelNational {
		for _, d := range v.districts {
			if contains(d.Geometry, pt) {
				return d.OfficeID
			}
		}
	}
	for _, s := range v.universe.States() {
		if contains(s.Geometry, pt) {
			return s.FIPS
		}
	}
	return ""
}

func contains(geom orb.Geometry, pt orb.Point) bool {
	switch g := geom.(type) {
	case orb.Polygon:
		return g.Bound().Contains(pt) && planar.PolygonContains(g, pt)
	case orb.MultiPolygon:
		return g.Bound().Contains(pt) && planar.MultiPolygonContains(g, pt)
	}
	return false
}
