package domain

import (
	"strings"

	"github.com/paulmach/orb"
)

func square(minLon, minLat, maxLon, maxLat float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}}
}

// testUniverse is a small in-memory FeatureUniverse.
type testUniverse struct {
	states    []*StateFeature
	districts []*DistrictFeature
}

func (u *testUniverse) States() []*StateFeature { return u.states }

func (u *testUniverse) StateByFIPS(fips string) (*StateFeature, bool) {
	for _, s := range u.states {
		if s.FIPS == fips {
			return s, true
		}
	}
	return nil, false
}

func (u *testUniverse) DistrictsFor(abbr string) []*DistrictFeature {
	var out []*DistrictFeature
	for _, d := range u.districts {
		if strings.HasPrefix(d.OfficeID, abbr) {
			out = append(out, d)
		}
	}
	return out
}

func newTestUniverse() *testUniverse {
	return &testUniverse{
		states: []*StateFeature{
			{FIPS: "06", Abbr: "CA", Name: "California", Party: "D", Geometry: square(-124.4, 32.5, -114.1, 42.0)},
			{FIPS: "48", Abbr: "TX", Name: "Texas", Party: "R", Geometry: square(-106.6, 25.8, -93.5, 36.5)},
			{FIPS: "44", Abbr: "RI", Name: "Rhode Island", Party: "D", Geometry: square(-71.9, 41.1, -71.1, 42.0)},
		},
		districts: []*DistrictFeature{
			{OfficeID: "CA01", District: "1", Party: "R", ListingName: "LaMalfa", Geometry: square(-124.4, 39.0, -120.0, 42.0)},
			{OfficeID: "CA12", District: "12", Party: "D", ListingName: "Simon", Geometry: square(-122.4, 37.7, -122.1, 37.9)},
			{OfficeID: "TX07", District: "7", Party: "D", ListingName: "Fletcher", Geometry: square(-95.6, 29.6, -95.3, 29.9)},
			{OfficeID: "TX21", District: "21", Party: "R", ListingName: "Roy", Geometry: square(-99.8, 29.3, -97.7, 30.8)},
			{OfficeID: "RI01", District: "1", Party: "D", ListingName: "Amo", Geometry: square(-71.6, 41.4, -71.1, 42.0)},
		},
	}
}
