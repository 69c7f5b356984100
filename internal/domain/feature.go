package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Property keys carried by the Census-derived state and district layers.
const (
	PropStateFIPS    = "STATEFP"
	PropStateAbbr    = "STUSPS"
	PropStateName    = "NAME"
	PropStateParty   = "STATE_PARTY"
	PropOfficeID     = "OFFICE_ID"
	PropDistrict     = "DISTRICT"
	PropParty        = "PARTY"
	PropListingName  = "LISTING_NAME"
	republicanMarker = "R"
)

// StateFeature is a U.S. state outline keyed by its FIPS code.
type StateFeature struct {
	FIPS     string
	Abbr     string
	Name     string
	Party    string
	Geometry orb.Geometry
}

// DistrictFeature is a congressional district keyed by its office id, e.g. "TX07".
// The first two characters of OfficeID are the owning state's abbreviation.
type DistrictFeature struct {
	OfficeID    string
	District    string // raw DISTRICT property, empty when absent
	Party       string
	ListingName string
	Geometry    orb.Geometry
	Number      DistrictNumber // resolved once by NewDistrictFeature
}

// StateAbbr returns the owning state's abbreviation from the office id prefix.
func (d *DistrictFeature) StateAbbr() string {
	if len(d.OfficeID) < 2 {
		return ""
	}
	return d.OfficeID[:2]
}

// Republican reports whether the feature is colored as a Republican seat.
func (s *StateFeature) Republican() bool { return s.Party == republicanMarker }

// Republican reports whether the district is held by a Republican.
func (d *DistrictFeature) Republican() bool { return d.Party == republicanMarker }

// NewStateFeature converts a decoded GeoJSON feature into a StateFeature.
// Features without a FIPS code or a non-empty outer ring are rejected.
func NewStateFeature(f *geojson.Feature) (*StateFeature, error) {
	fips := PropString(f.Properties, PropStateFIPS)
	if fips == "" {
		fips = idString(f.ID)
	}
	if fips == "" {
		return nil, fmt.Errorf("state feature missing %s", PropStateFIPS)
	}
	if !HasOuterRing(f.Geometry) {
		return nil, &InvalidGeometryError{FeatureID: fips, Reason: "empty outer ring"}
	}
	return &StateFeature{
		FIPS:     fips,
		Abbr:     PropString(f.Properties, PropStateAbbr),
		Name:     PropString(f.Properties, PropStateName),
		Party:    PropString(f.Properties, PropStateParty),
		Geometry: f.Geometry,
	}, nil
}

// NewDistrictFeature converts a decoded GeoJSON feature into a DistrictFeature.
func NewDistrictFeature(f *geojson.Feature) (*DistrictFeature, error) {
	officeID := PropString(f.Properties, PropOfficeID)
	if officeID == "" {
		officeID = idString(f.ID)
	}
	if len(officeID) < 2 {
		return nil, fmt.Errorf("district feature missing %s", PropOfficeID)
	}
	if !HasOuterRing(f.Geometry) {
		return nil, &InvalidGeometryError{FeatureID: officeID, Reason: "empty outer ring"}
	}
	d := &DistrictFeature{
		OfficeID:    officeID,
		District:    PropString(f.Properties, PropDistrict),
		Party:       PropString(f.Properties, PropParty),
		ListingName: PropString(f.Properties, PropListingName),
		Geometry:    f.Geometry,
	}
	d.Number = ResolveDistrictNumber(d)
	return d, nil
}

// HasOuterRing reports whether geom is a polygon (or multipolygon) with at
// least one non-empty outer ring.
func HasOuterRing(geom orb.Geometry) bool {
	switch g := geom.(type) {
	case orb.Polygon:
		return len(g) > 0 && len(g[0]) > 0
	case orb.MultiPolygon:
		for _, p := range g {
			if len(p) > 0 && len(p[0]) > 0 {
				return true
			}
		}
	}
	return false
}

// PropString reads a property as a string. Numbers are formatted without a
// trailing fraction so a numeric DISTRICT of 7 reads as "7".
func PropString(props geojson.Properties, key string) string {
	v, ok := props[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case int:
		return strconv.Itoa(val)
	default:
		return fmt.Sprint(val)
	}
}

func idString(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
