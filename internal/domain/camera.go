package domain

import (
	"math"

	"github.com/paulmach/orb"
)

// Zoom thresholds and clamps for ZoomScale. The span thresholds are exact and
// the resulting curve is discontinuous at each of them.
const (
	baseZoom      = 5.0
	minZoom       = 2.0
	maxZoom       = 6.0
	largeLonSpan  = 15.0
	largeLatSpan  = 10.0
	mediumSpan    = 5.0
	largeFactor   = 1.65
	smallFactor   = 0.7
	spanToZoomFac = 0.1
)

// NationalCamera frames the contiguous United States.
var NationalCamera = Camera{
	Center: GeoPoint{Lon: -95.7129, Lat: 37.0902},
	Scale:  0.9,
}

// wideStates get extra padding because their outlines overflow the default frame.
var wideStates = map[string]bool{"CA": true, "TX": true, "NV": true}

// BoundingBox is an axis-aligned lon/lat box. It is derived, never persisted.
type BoundingBox struct {
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
}

// LonSpan returns the longitudinal extent in degrees.
func (b BoundingBox) LonSpan() float64 { return b.MaxLon - b.MinLon }

// LatSpan returns the latitudinal extent in degrees.
func (b BoundingBox) LatSpan() float64 { return b.MaxLat - b.MinLat }

// GeoPoint is a lon/lat pair.
type GeoPoint struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Camera is the projection center and scale handed to the map renderer.
type Camera struct {
	Center GeoPoint `json:"center"`
	Scale  float64  `json:"scale"`
}

// BoundingBoxOf computes the bounding box of a polygonal geometry. Polygons
// use their outer ring only; multipolygons use every ring of every polygon.
func BoundingBoxOf(geom orb.Geometry) (BoundingBox, error) {
	var pts []orb.Point
	switch g := geom.(type) {
	case nil:
		return BoundingBox{}, &InvalidGeometryError{Reason: "geometry is absent"}
	case orb.Polygon:
		if len(g) > 0 {
			pts = g[0]
		}
	case orb.MultiPolygon:
		for _, poly := range g {
			for _, ring := range poly {
				pts = append(pts, ring...)
			}
		}
	default:
		return BoundingBox{}, &InvalidGeometryError{Reason: "unsupported geometry type " + geom.GeoJSONType()}
	}

	box := BoundingBox{
		MinLon: math.Inf(1), MaxLon: math.Inf(-1),
		MinLat: math.Inf(1), MaxLat: math.Inf(-1),
	}
	n := 0
	for _, p := range pts {
		lon, lat := p.Lon(), p.Lat()
		if math.IsNaN(lon) || math.IsNaN(lat) {
			continue
		}
		box.MinLon = math.Min(box.MinLon, lon)
		box.MaxLon = math.Max(box.MaxLon, lon)
		box.MinLat = math.Min(box.MinLat, lat)
		box.MaxLat = math.Max(box.MaxLat, lat)
		n++
	}
	if n == 0 {
		return BoundingBox{}, &InvalidGeometryError{Reason: "geometry has no coordinates"}
	}
	return box, nil
}

// PaddingFor returns the lon and lat padding fractions applied to a state's box.
func PaddingFor(box BoundingBox, abbr string) (lonFrac, latFrac float64) {
	switch {
	case wideStates[abbr]:
		return 0.25, 0.30
	case box.LonSpan() > largeLonSpan || box.LatSpan() > largeLatSpan:
		return 0.15, 0.15
	default:
		return 0.10, 0.10
	}
}

// PaddedBounds expands box on both sides by the fractions from PaddingFor.
func PaddedBounds(box BoundingBox, abbr string) BoundingBox {
	lonFrac, latFrac := PaddingFor(box, abbr)
	lonPad := box.LonSpan() * lonFrac
	latPad := box.LatSpan() * latFrac
	return BoundingBox{
		MinLon: box.MinLon - lonPad,
		MaxLon: box.MaxLon + lonPad,
		MinLat: box.MinLat - latPad,
		MaxLat: box.MaxLat + latPad,
	}
}

// ZoomScale maps a box's extent to a projection scale in [2, 6].
func ZoomScale(box BoundingBox) float64 {
	lonSpan, latSpan := box.LonSpan(), box.LatSpan()
	sf := math.Max(lonSpan, latSpan) * spanToZoomFac

	var scale float64
	switch {
	case lonSpan > largeLonSpan || latSpan > largeLatSpan:
		scale = baseZoom - sf*largeFactor
	case lonSpan > mediumSpan || latSpan > mediumSpan:
		scale = baseZoom - sf
	default:
		scale = baseZoom - sf*smallFactor
	}
	return math.Max(minZoom, math.Min(scale, maxZoom))
}

// Center returns the per-axis midpoint of box.
func Center(box BoundingBox) GeoPoint {
	return GeoPoint{
		Lon: (box.MinLon + box.MaxLon) / 2,
		Lat: (box.MinLat + box.MaxLat) / 2,
	}
}

// FitBox frames box without padding.
func FitBox(box BoundingBox) Camera {
	return Camera{Center: Center(box), Scale: ZoomScale(box)}
}

// FitState frames a state using its padded bounds.
func FitState(box BoundingBox, abbr string) Camera {
	return FitBox(PaddedBounds(box, abbr))
}

// FitDistrict frames a district using its raw bounds.
func FitDistrict(box BoundingBox) Camera {
	return FitBox(box)
}
