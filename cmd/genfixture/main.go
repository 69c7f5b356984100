// Command genfixture converts Census cartographic boundary shapefiles into
// the state and district GeoJSON fixtures served by the mock congress API.
// Every converted feature is run through the domain constructors so the
// fixtures load exactly as the dashboard would load them.
//
// Usage:
//
//	go run ./cmd/genfixture \
//	  -states-shp data/census/cb_2023_us_state_20m.shp \
//	  -districts-shp data/census/cb_2023_us_cd118_20m.shp \
//	  -states-out data/mock/us_states.geojson \
//	  -districts-out data/mock/us_districts.geojson
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/couchcryptid/congress-dashboard/internal/domain"
	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Census attribute names.
const (
	censusStateFP = "STATEFP"
	censusAbbr    = "STUSPS"
	censusName    = "NAME"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	statesShp := flag.String("states-shp", "", "Census state boundary shapefile")
	districtsShp := flag.String("districts-shp", "", "Census congressional district shapefile")
	districtField := flag.String("district-field", "CD118FP", "district number attribute in the district shapefile")
	statesOut := flag.String("states-out", "", "output path for the state GeoJSON fixture")
	districtsOut := flag.String("districts-out", "", "output path for the district GeoJSON fixture")
	flag.Parse()

	if *statesShp == "" || *districtsShp == "" || *statesOut == "" || *districtsOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -states-shp, -districts-shp, -states-out, -districts-out")
	}

	states, err := readShapefile(*statesShp)
	if err != nil {
		return fmt.Errorf("reading states: %w", err)
	}
	abbrByFIPS := map[string]string{}
	for _, f := range states.Features {
		abbrByFIPS[prop(f, censusStateFP)] = prop(f, censusAbbr)
		f.Properties = geojson.Properties{
			domain.PropStateFIPS: prop(f, censusStateFP),
			domain.PropStateAbbr: prop(f, censusAbbr),
			domain.PropStateName: prop(f, censusName),
		}
	}
	log.Printf("states: %d features", len(states.Features))

	districts, err := readShapefile(*districtsShp)
	if err != nil {
		return fmt.Errorf("reading districts: %w", err)
	}
	kept := make([]*geojson.Feature, 0, len(districts.Features))
	for _, f := range districts.Features {
		abbr, ok := abbrByFIPS[prop(f, censusStateFP)]
		if !ok {
			log.Printf("skipping district in unknown state %q", prop(f, censusStateFP))
			continue
		}
		number := prop(f, *districtField)
		if len(number) == 1 {
			number = "0" + number
		}
		district := strings.TrimLeft(number, "0")
		if district == "" {
			district = "0" // at-large
		}
		f.Properties = geojson.Properties{
			domain.PropOfficeID: abbr + number,
			domain.PropDistrict: district,
		}
		kept = append(kept, f)
	}
	districts.Features = kept
	log.Printf("districts: %d features", len(districts.Features))

	if err := check(states, districts); err != nil {
		return err
	}

	if err := writeJSON(*statesOut, states); err != nil {
		return fmt.Errorf("writing state fixture: %w", err)
	}
	log.Printf("wrote state fixture: %s", *statesOut)

	if err := writeJSON(*districtsOut, districts); err != nil {
		return fmt.Errorf("writing district fixture: %w", err)
	}
	log.Printf("wrote district fixture: %s", *districtsOut)
	return nil
}

func readShapefile(path string) (*geojson.FeatureCollection, error) {
	shape, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shapefile: %w", err)
	}
	defer shape.Close()

	fields := shape.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.String()
	}

	fc := geojson.NewFeatureCollection()
	for shape.Next() {
		n, p := shape.Shape()
		poly, ok := p.(*shp.Polygon)
		if !ok {
			log.Printf("skipping %T shape %d", p, n)
			continue
		}
		f := geojson.NewFeature(polygonGeometry(poly))
		for i, name := range names {
			f.Properties[name] = strings.TrimSpace(strings.Trim(shape.ReadAttribute(n, i), "\x00"))
		}
		fc.Append(f)
	}
	if err := shape.Err(); err != nil {
		return nil, fmt.Errorf("iterating shapes: %w", err)
	}
	return fc, nil
}

// polygonGeometry groups shapefile parts into polygons. Shapefile outer rings
// are clockwise and holes counter-clockwise; each clockwise ring starts a new
// polygon. Rings are rewound to GeoJSON order (outer counter-clockwise).
func polygonGeometry(s *shp.Polygon) orb.Geometry {
	var mp orb.MultiPolygon
	for i := 0; i < int(s.NumParts); i++ {
		start := s.Parts[i]
		end := s.NumPoints
		if i < int(s.NumParts)-1 {
			end = s.Parts[i+1]
		}

		ring := make(orb.Ring, 0, end-start)
		for j := start; j < end; j++ {
			ring = append(ring, orb.Point{s.Points[j].X, s.Points[j].Y})
		}
		if ring.Orientation() == orb.CW || len(mp) == 0 {
			if ring.Orientation() == orb.CW {
				ring.Reverse()
			}
			mp = append(mp, orb.Polygon{ring})
			continue
		}
		ring.Reverse()
		mp[len(mp)-1] = append(mp[len(mp)-1], ring)
	}
	if len(mp) == 1 {
		return mp[0]
	}
	return mp
}

// check loads every feature the way the dashboard does and prints a per-state
// district count.
func check(states, districts *geojson.FeatureCollection) error {
	for _, f := range states.Features {
		if _, err := domain.NewStateFeature(f); err != nil {
			return fmt.Errorf("state fixture would not load: %w", err)
		}
	}
	perState := map[string]int{}
	for _, f := range districts.Features {
		d, err := domain.NewDistrictFeature(f)
		if err != nil {
			return fmt.Errorf("district fixture would not load: %w", err)
		}
		if n := d.Number; n.Mismatch {
			log.Printf("district %s: number %s disagrees with office id", d.OfficeID, n.Value)
		}
		perState[d.StateAbbr()]++
	}

	abbrs := make([]string, 0, len(perState))
	for a := range perState {
		abbrs = append(abbrs, a)
	}
	sort.Strings(abbrs)
	fmt.Println("\n=== Districts per state ===")
	for _, a := range abbrs {
		fmt.Printf("%s=%d ", a, perState[a])
	}
	fmt.Println()
	return nil
}

func prop(f *geojson.Feature, key string) string {
	s, _ := f.Properties[key].(string)
	return s
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
