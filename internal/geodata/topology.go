package geodata

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Object names used by the congress API topologies.
const (
	ObjectStates    = "us_states"
	ObjectDistricts = "congressional_districts"
)

type topology struct {
	Type      string                `json:"type"`
	Transform *topoTransform        `json:"transform"`
	Objects   map[string]topoObject `json:"objects"`
	Arcs      [][][]float64         `json:"arcs"`
}

type topoTransform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

type topoObject struct {
	Type       string         `json:"type"`
	Geometries []topoGeometry `json:"geometries"`
}

type topoGeometry struct {
	Type       string          `json:"type"`
	ID         any             `json:"id"`
	Properties map[string]any  `json:"properties"`
	Arcs       json.RawMessage `json:"arcs"`
}

// decodeCollection decodes a GeoJSON FeatureCollection or a TopoJSON
// Topology, choosing by the payload's top-level type. For topologies the
// named object is used, or the only object when there is exactly one.
func decodeCollection(data []byte, object string) (*geojson.FeatureCollection, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("decode feature collection: %w", err)
		}
		return fc, nil
	case "Topology":
		return decodeTopology(data, object)
	default:
		return nil, fmt.Errorf("unsupported payload type %q", head.Type)
	}
}

func decodeTopology(data []byte, object string) (*geojson.FeatureCollection, error) {
	var topo topology
	if err := json.Unmarshal(data, &topo); err != nil {
		return nil, fmt.Errorf("decode topology: %w", err)
	}

	obj, ok := topo.Objects[object]
	if !ok {
		if len(topo.Objects) != 1 {
			return nil, fmt.Errorf("topology has no object %q", object)
		}
		for _, only := range topo.Objects {
			obj = only
		}
	}

	arcs, err := absoluteArcs(topo.Arcs, topo.Transform)
	if err != nil {
		return nil, err
	}

	fc := geojson.NewFeatureCollection()
	for i, g := range obj.Geometries {
		geom, err := g.geometry(arcs)
		if err != nil {
			return nil, fmt.Errorf("geometry %d: %w", i, err)
		}
		if geom == nil {
			continue
		}
		f := geojson.NewFeature(geom)
		f.ID = g.ID
		if g.Properties != nil {
			f.Properties = geojson.Properties(g.Properties)
		}
		fc.Append(f)
	}
	return fc, nil
}

// absoluteArcs converts quantized, delta-encoded arcs to lon/lat points.
// Without a transform the positions are already absolute.
func absoluteArcs(raw [][][]float64, tr *topoTransform) ([][]orb.Point, error) {
	arcs := make([][]orb.Point, len(raw))
	for i, arc := range raw {
		pts := make([]orb.Point, len(arc))
		var x, y float64
		for j, pos := range arc {
			if len(pos) < 2 {
				return nil, fmt.Errorf("arc %d position %d: want 2 coordinates, got %d", i, j, len(pos))
			}
			if tr == nil {
				pts[j] = orb.Point{pos[0], pos[1]}
				continue
			}
			x += pos[0]
			y += pos[1]
			pts[j] = orb.Point{x*tr.Scale[0] + tr.Translate[0], y*tr.Scale[1] + tr.Translate[1]}
		}
		arcs[i] = pts
	}
	return arcs, nil
}

func (g topoGeometry) geometry(arcs [][]orb.Point) (orb.Geometry, error) {
	switch g.Type {
	case "", "null":
		return nil, nil
	case "Polygon":
		var rings [][]int
		if err := json.Unmarshal(g.Arcs, &rings); err != nil {
			return nil, fmt.Errorf("decode polygon arcs: %w", err)
		}
		return polygon(rings, arcs)
	case "MultiPolygon":
		var polys [][][]int
		if err := json.Unmarshal(g.Arcs, &polys); err != nil {
			return nil, fmt.Errorf("decode multipolygon arcs: %w", err)
		}
		mp := make(orb.MultiPolygon, 0, len(polys))
		for _, rings := range polys {
			p, err := polygon(rings, arcs)
			if err != nil {
				return nil, err
			}
			mp = append(mp, p)
		}
		return mp, nil
	default:
		return nil, fmt.Errorf("unsupported topology geometry %q", g.Type)
	}
}

func polygon(rings [][]int, arcs [][]orb.Point) (orb.Polygon, error) {
	poly := make(orb.Polygon, 0, len(rings))
	for _, idx := range rings {
		r, err := stitchRing(idx, arcs)
		if err != nil {
			return nil, err
		}
		poly = append(poly, r)
	}
	return poly, nil
}

// stitchRing joins arcs end to start. Consecutive arcs share their boundary
// point, so every arc after the first drops its leading point. A negative
// index ^i refers to arc i traversed in reverse.
func stitchRing(indexes []int, arcs [][]orb.Point) (orb.Ring, error) {
	var ring orb.Ring
	for k, idx := range indexes {
		reverse := idx < 0
		if reverse {
			idx = ^idx
		}
		if idx >= len(arcs) {
			return nil, errArcIndex(idx, len(arcs))
		}
		arc := arcs[idx]
		if reverse {
			rev := make([]orb.Point, len(arc))
			for i, p := range arc {
				rev[len(arc)-1-i] = p
			}
			arc = rev
		}
		if k > 0 && len(arc) > 0 {
			arc = arc[1:]
		}
		ring = append(ring, arc...)
	}
	return ring, nil
}

var errArcOutOfRange = errors.New("arc index out of range")

func errArcIndex(idx, n int) error {
	return fmt.Errorf("%w: %d of %d", errArcOutOfRange, idx, n)
}
