// Package render turns view state and datasets into renderer-ready output:
// map frames as JSON and charts as standalone echarts HTML documents.
package render

import (
	"fmt"

	"github.com/couchcryptid/congress-dashboard/internal/domain"
	"github.com/paulmach/orb"
)

// Layer z order, bottom to top.
const (
	ZStates    = 0
	ZDistricts = 1
	ZOutline   = 2
	ZHighlight = 3
)

// Headers shown at the national level.
const (
	NationalMapHeader    = "Select Your State / District"
	NationalMemberHeader = "Member Information"
)

// Party colors shared by the state and district layers.
const (
	ColorRepublican = "rgba(247, 23, 19, 0.8)"
	ColorDemocratic = "rgba(51, 8, 241, 0.94)"
	ColorOutline    = "turquoise"
	ColorHighlight  = "gold"
)

// FeatureStyle is how one clickable feature is drawn.
type FeatureStyle struct {
	ID    string `json:"id"`
	Fill  string `json:"fill"`
	Hover string `json:"hover"`
}

// Layer is a set of clickable features drawn at one z level.
type Layer struct {
	Name     string         `json:"name"`
	Z        int            `json:"z"`
	Features []FeatureStyle `json:"features"`
}

// Overlay is a non-clickable ring set drawn over the layers.
type Overlay struct {
	Name  string     `json:"name"`
	Z     int        `json:"z"`
	Color string     `json:"color"`
	Fill  bool       `json:"fill"`
	Rings []orb.Ring `json:"rings"`
}

// Buttons says which navigation buttons are visible.
type Buttons struct {
	BackToNational bool `json:"back_to_national"`
	BackToState    bool `json:"back_to_state"`
}

// MapFrame is everything a map renderer needs to draw one view.
type MapFrame struct {
	Generation   uint64        `json:"generation"`
	Level        domain.Level  `json:"level"`
	Camera       domain.Camera `json:"camera"`
	MapHeader    string        `json:"map_header"`
	MemberHeader string        `json:"member_header"`
	Layers       []Layer       `json:"layers"`
	Overlays     []Overlay     `json:"overlays"`
	Buttons      Buttons       `json:"buttons"`
	Warning      string        `json:"warning,omitempty"`
}

// FrameInput is the state a frame is built from. DistrictLabel is the
// selected district's two-digit number, if any.
type FrameInput struct {
	Snapshot      domain.ViewSnapshot
	Camera        domain.Camera
	States        []*domain.StateFeature
	DistrictLabel string
	Generation    uint64
	Warning       string
}

// BuildFrame assembles the map frame for in.
func BuildFrame(in FrameInput) MapFrame {
	snap := in.Snapshot
	f := MapFrame{
		Generation:   in.Generation,
		Level:        snap.Level,
		Camera:       in.Camera,
		MapHeader:    NationalMapHeader,
		MemberHeader: NationalMemberHeader,
		Layers:       []Layer{stateLayer(in.States)},
		Overlays:     []Overlay{},
		Warning:      in.Warning,
	}
	if snap.State == nil {
		return f
	}

	f.MapHeader = snap.State.Name + " Selected"
	f.MemberHeader = MemberHeader(snap.State.Name, in.DistrictLabel)
	f.Layers = append(f.Layers, districtLayer(snap.Districts))
	f.Overlays = append(f.Overlays, Overlay{
		Name:  "state_outline",
		Z:     ZOutline,
		Color: ColorOutline,
		Rings: OuterRings(snap.State.Geometry),
	})
	f.Buttons.BackToNational = true

	if snap.District != nil {
		f.Overlays = append(f.Overlays, Overlay{
			Name:  "district_highlight",
			Z:     ZHighlight,
			Color: ColorHighlight,
			Fill:  true,
			Rings: OuterRings(snap.District.Geometry),
		})
		f.Buttons.BackToState = true
	}
	return f
}

// MemberHeader titles the profile panel for a state and optional district.
func MemberHeader(stateName, districtLabel string) string {
	h := "Congress Members for " + stateName
	if districtLabel != "" {
		h += " - District " + districtLabel
	}
	return h
}

func stateLayer(states []*domain.StateFeature) Layer {
	l := Layer{Name: "states", Z: ZStates, Features: make([]FeatureStyle, 0, len(states))}
	for _, s := range states {
		l.Features = append(l.Features, FeatureStyle{
			ID:    s.FIPS,
			Fill:  partyColor(s.Republican()),
			Hover: fmt.Sprintf("%s (%s)", s.Name, s.Party),
		})
	}
	return l
}

func districtLayer(districts []*domain.DistrictFeature) Layer {
	l := Layer{Name: "districts", Z: ZDistricts, Features: make([]FeatureStyle, 0, len(districts))}
	for _, d := range districts {
		l.Features = append(l.Features, FeatureStyle{
			ID:    d.OfficeID,
			Fill:  partyColor(d.Republican()),
			Hover: fmt.Sprintf("%s (%s) - District %s", d.ListingName, d.Party, d.District),
		})
	}
	return l
}

func partyColor(republican bool) string {
	if republican {
		return ColorRepublican
	}
	return ColorDemocratic
}

// OuterRings returns the outer ring of every polygon in geom.
func OuterRings(geom orb.Geometry) []orb.Ring {
	switch g := geom.(type) {
	case orb.Polygon:
		if len(g) == 0 {
			return []orb.Ring{}
		}
		return []orb.Ring{g[0]}
	case orb.MultiPolygon:
		rings := make([]orb.Ring, 0, len(g))
		for _, p := range g {
			if len(p) > 0 {
				rings = append(rings, p[0])
			}
		}
		return rings
	default:
		return []orb.Ring{}
	}
}
