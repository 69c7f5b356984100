package domain

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDistrict(t *testing.T) {
	assert.Equal(t, "07", FormatDistrict(7))
	assert.Equal(t, "12", FormatDistrict(12))
	assert.Equal(t, "00", FormatDistrict(0))
}

func TestNormalizeDistrict(t *testing.T) {
	tests := map[string]string{
		"7":    "07",
		"07":   "07",
		"7.0":  "07",
		" 12 ": "12",
		"":     "",
		"AL":   "AL",
		"7.5":  "7.5",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeDistrict(in), in)
	}
}

func TestMember_DistrictLabel(t *testing.T) {
	var m Member
	require.NoError(t, json.Unmarshal([]byte(`{"bioguide_id":"F000468","name":"Lizzie Fletcher","chamber":"House of Representatives","state":"Texas","district":7}`), &m))
	assert.Equal(t, "07", m.DistrictLabel())

	var senator Member
	require.NoError(t, json.Unmarshal([]byte(`{"bioguide_id":"C001098","chamber":"Senate","state":"Texas","district":null}`), &senator))
	assert.Empty(t, senator.DistrictLabel())
}

func TestProportionRecord_Accessors(t *testing.T) {
	rec := ProportionRecord{"bioguide_id": " A000001 ", "name": "Ann", "chamber": ChamberHouse, "state": "Ohio", "district": 3.0}
	assert.Equal(t, "A000001", rec.BioguideID())
	assert.Equal(t, "Ann", rec.Name())
	assert.Equal(t, ChamberHouse, rec.Chamber())
	assert.Equal(t, "Ohio", rec.State())

	_, ok := rec.Float("missing")
	assert.False(t, ok)
	v, ok := rec.Float("district")
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)
}

func TestNewStateFeature(t *testing.T) {
	f := geojson.NewFeature(square(-71.9, 41.1, -71.1, 42.0))
	f.Properties = geojson.Properties{"STATEFP": "44", "STUSPS": "RI", "NAME": "Rhode Island", "STATE_PARTY": "D"}

	s, err := NewStateFeature(f)
	require.NoError(t, err)
	assert.Equal(t, "44", s.FIPS)
	assert.Equal(t, "RI", s.Abbr)
	assert.Equal(t, "Rhode Island", s.Name)
	assert.False(t, s.Republican())
}

func TestNewStateFeature_RejectsEmptyOuterRing(t *testing.T) {
	f := geojson.NewFeature(square(0, 0, 1, 1))
	f.Geometry = nil
	f.Properties = geojson.Properties{"STATEFP": "44"}

	_, err := NewStateFeature(f)
	var ge *InvalidGeometryError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "44", ge.FeatureID)
}

func TestNewDistrictFeature(t *testing.T) {
	f := geojson.NewFeature(square(-95.6, 29.6, -95.3, 29.9))
	f.Properties = geojson.Properties{"OFFICE_ID": "TX07", "DISTRICT": 7.0, "PARTY": "D", "LISTING_NAME": "Fletcher"}

	d, err := NewDistrictFeature(f)
	require.NoError(t, err)
	assert.Equal(t, "TX07", d.OfficeID)
	assert.Equal(t, "TX", d.StateAbbr())
	assert.Equal(t, "7", d.District)
	assert.Equal(t, "Fletcher", d.ListingName)
	assert.Equal(t, DistrictNumber{Value: "07", Source: SourceProperty, Suffix: "07"}, d.Number)

	f.Properties = geojson.Properties{}
	_, err = NewDistrictFeature(f)
	require.Error(t, err)
}

func TestResolveDistrictNumber(t *testing.T) {
	tests := []struct {
		name string
		d    DistrictFeature
		want DistrictNumber
	}{
		{"property agrees", DistrictFeature{OfficeID: "TX07", District: "7"},
			DistrictNumber{Value: "07", Source: SourceProperty, Suffix: "07"}},
		{"property disagrees", DistrictFeature{OfficeID: "TX07", District: "8"},
			DistrictNumber{Value: "08", Source: SourceProperty, Suffix: "07", Mismatch: true}},
		{"property missing", DistrictFeature{OfficeID: "WY00"},
			DistrictNumber{Value: "00", Source: SourceSuffix, Suffix: "00"}},
		{"nothing usable", DistrictFeature{OfficeID: "X"},
			DistrictNumber{Source: SourceNone}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveDistrictNumber(&tt.d))
		})
	}
}

func TestDistrictFeature_Label(t *testing.T) {
	f := geojson.NewFeature(square(-71.6, 41.4, -71.1, 42.0))
	f.Properties = geojson.Properties{"OFFICE_ID": "RI01"}
	resolved, err := NewDistrictFeature(f)
	require.NoError(t, err)
	assert.Equal(t, SourceSuffix, resolved.Number.Source)
	assert.Equal(t, "01", resolved.Label())

	literal := &DistrictFeature{OfficeID: "RI02", District: "3"}
	assert.Equal(t, "03", literal.Label(), "DISTRICT wins over the suffix")
}

func TestDistrictNumberOf_LogsMismatchAndFallback(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	DistrictNumberOf(&DistrictFeature{OfficeID: "TX07", District: "8"}, logger)
	assert.Contains(t, buf.String(), "district number disagrees with office id")

	buf.Reset()
	DistrictNumberOf(&DistrictFeature{OfficeID: "TX07"}, logger)
	assert.Contains(t, buf.String(), "district number taken from office id suffix")

	buf.Reset()
	DistrictNumberOf(&DistrictFeature{OfficeID: "TX07", District: "7"}, logger)
	assert.Empty(t, buf.String())
}
