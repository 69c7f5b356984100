// Command validate performs data integrity checks on a state and district
// geometry pair, as served by the congress API or produced by genfixture,
// and optionally on the member feed that references it. It loads the data
// through the same geodata store the dashboard uses, then verifies district
// ownership, district number consistency, geometry containment, and member
// alignment.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -states data/mock/us_states.geojson \
//	  -districts data/mock/us_districts.geojson \
//	  -members data/mock/congress_members.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/couchcryptid/congress-dashboard/internal/domain"
	"github.com/couchcryptid/congress-dashboard/internal/geodata"
	"github.com/couchcryptid/congress-dashboard/internal/observability"
)

// containmentTolerance absorbs generalization differences between the state
// and district layers, in degrees.
const containmentTolerance = 0.05

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
	notes  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// fileFetcher serves reference resources from local files.
type fileFetcher map[domain.Resource]string

func (f fileFetcher) Fetch(_ context.Context, res domain.Resource) ([]byte, error) {
	path, ok := f[res]
	if !ok {
		return nil, fmt.Errorf("no file for %s", res.Key)
	}
	return os.ReadFile(path)
}

func main() {
	statesPath := flag.String("states", "", "state GeoJSON or TopoJSON file")
	districtsPath := flag.String("districts", "", "district GeoJSON or TopoJSON file")
	membersPath := flag.String("members", "", "optional congress members JSON file")
	flag.Parse()

	if *statesPath == "" || *districtsPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*statesPath, *districtsPath, *membersPath); code != 0 {
		os.Exit(code)
	}
}

func run(statesPath, districtsPath, membersPath string) int {
	fmt.Println("=== Congress Map Data Validation ===")
	fmt.Println()

	// ── Load all data sources ──
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := geodata.NewStore(fileFetcher{
		domain.ResourceStates:    statesPath,
		domain.ResourceDistricts: districtsPath,
	}, logger, observability.NewMetricsForTesting())
	if err := store.Load(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load geo data: %v\n", err)
		return 1
	}

	var members []domain.Member
	if membersPath != "" {
		data, err := os.ReadFile(membersPath)
		if err == nil {
			err = json.Unmarshal(data, &members)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load members: %v\n", err)
			return 1
		}
	}

	// ── Run validation phases ──
	phases := []*phase{
		validateOwnership(store),
		validateDistrictNumbers(store),
		validateContainment(store),
	}
	if membersPath != "" {
		phases = append(phases, validateMembers(store, members))
	}

	// ── Report results ──
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Features: %d states, %d districts, %d members\n",
		len(store.States()), len(store.AllDistricts()), len(members))

	for _, p := range phases {
		if len(p.notes) > 0 {
			fmt.Printf("\n--- %s (notes) ---\n", p.name)
			for _, n := range p.notes {
				fmt.Printf("  %s\n", n)
			}
		}
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: District Ownership ──
// Every district's office id prefix must name a loaded state.

func validateOwnership(store *geodata.Store) *phase {
	p := &phase{name: "Phase 1: District Ownership"}

	for _, d := range store.AllDistricts() {
		if _, ok := store.StateByAbbr(d.StateAbbr()); !ok {
			p.errorf("district %s: no state with abbreviation %q", d.OfficeID, d.StateAbbr())
		}
	}
	for _, s := range store.States() {
		if len(store.DistrictsFor(s.Abbr)) == 0 {
			p.notef("state %s (%s) has no districts", s.Abbr, s.Name)
		}
	}
	return p
}

// ── Phase 2: District Numbers ──
// DISTRICT must agree with the office id suffix; a missing DISTRICT falls back
// to the suffix and is noted.

func validateDistrictNumbers(store *geodata.Store) *phase {
	p := &phase{name: "Phase 2: District Numbers (DISTRICT vs OFFICE_ID)"}

	fallbacks := 0
	for _, d := range store.AllDistricts() {
		n := d.Number
		switch {
		case n.Mismatch:
			p.errorf("district %s: DISTRICT=%s, suffix=%s", d.OfficeID, n.Value, n.Suffix)
		case n.Source == domain.SourceNone:
			p.errorf("district %s: no district number", d.OfficeID)
		case n.Source == domain.SourceSuffix:
			fallbacks++
		}
	}
	if fallbacks > 0 {
		p.notef("%d districts without DISTRICT use the office id suffix", fallbacks)
	}
	return p
}

// ── Phase 3: Geometry Containment ──
// Each district's bounding box must sit inside its state's bounding box.

func validateContainment(store *geodata.Store) *phase {
	p := &phase{name: "Phase 3: Geometry Containment"}

	for _, s := range store.States() {
		stateBox, err := domain.BoundingBoxOf(s.Geometry)
		if err != nil {
			p.errorf("state %s: %v", s.FIPS, err)
			continue
		}
		for _, d := range store.DistrictsFor(s.Abbr) {
			box, err := domain.BoundingBoxOf(d.Geometry)
			if err != nil {
				p.errorf("district %s: %v", d.OfficeID, err)
				continue
			}
			if !within(box, stateBox) {
				p.errorf("district %s: bounds %+v outside %s bounds %+v", d.OfficeID, box, s.Abbr, stateBox)
			}
		}
	}
	return p
}

func within(inner, outer domain.BoundingBox) bool {
	return inner.MinLon >= outer.MinLon-containmentTolerance &&
		inner.MaxLon <= outer.MaxLon+containmentTolerance &&
		inner.MinLat >= outer.MinLat-containmentTolerance &&
		inner.MaxLat <= outer.MaxLat+containmentTolerance
}

// ── Phase 4: Member Alignment ──
// Every House member must map to a loaded district and every member's state
// to a loaded state.

func validateMembers(store *geodata.Store, members []domain.Member) *phase {
	p := &phase{name: "Phase 4: Member Alignment"}

	houseSeats := map[string]int{}
	for _, m := range members {
		st, ok := store.StateByName(m.State)
		if !ok {
			st, ok = store.StateByAbbr(m.State)
		}
		if !ok {
			p.errorf("member %s: unknown state %q", m.BioguideID, m.State)
			continue
		}
		if m.Chamber != domain.ChamberHouse {
			continue
		}
		label := m.DistrictLabel()
		if label == "" {
			p.notef("member %s: House member without district", m.BioguideID)
			continue
		}
		officeID := st.Abbr + label
		if _, ok := store.District(officeID); !ok {
			p.errorf("member %s: no district %s", m.BioguideID, officeID)
		}
		houseSeats[officeID]++
	}

	seats := make([]string, 0, len(houseSeats))
	for id, n := range houseSeats {
		if n > 1 {
			seats = append(seats, id)
		}
	}
	sort.Strings(seats)
	for _, id := range seats {
		p.errorf("district %s: %d House members", id, houseSeats[id])
	}
	return p
}
