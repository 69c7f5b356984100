package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/couchcryptid/congress-dashboard/internal/domain"
	"github.com/couchcryptid/congress-dashboard/internal/observability"
	"github.com/paulmach/orb"
)

func square(minLon, minLat, maxLon, maxLat float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}}
}

// --- fake geo source ---

type fakeGeo struct {
	states    []*domain.StateFeature
	districts []*domain.DistrictFeature
	notReady  error
}

func (g *fakeGeo) States() []*domain.StateFeature { return g.states }

func (g *fakeGeo) StateByFIPS(fips string) (*domain.StateFeature, bool) {
	for _, s := range g.states {
		if s.FIPS == fips {
			return s, true
		}
	}
	return nil, false
}

func (g *fakeGeo) StateByAbbr(abbr string) (*domain.StateFeature, bool) {
	for _, s := range g.states {
		if strings.EqualFold(s.Abbr, strings.TrimSpace(abbr)) {
			return s, true
		}
	}
	return nil, false
}

func (g *fakeGeo) StateByName(name string) (*domain.StateFeature, bool) {
	for _, s := range g.states {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return s, true
		}
	}
	return nil, false
}

func (g *fakeGeo) DistrictsFor(abbr string) []*domain.DistrictFeature {
	var out []*domain.DistrictFeature
	for _, d := range g.districts {
		if d.StateAbbr() == abbr {
			out = append(out, d)
		}
	}
	return out
}

func (g *fakeGeo) CheckReadiness(context.Context) error { return g.notReady }

func newFakeGeo() *fakeGeo {
	return &fakeGeo{
		states: []*domain.StateFeature{
			{FIPS: "06", Abbr: "CA", Name: "California", Party: "D", Geometry: square(-124.4, 32.5, -114.1, 42.0)},
			{FIPS: "48", Abbr: "TX", Name: "Texas", Party: "R", Geometry: square(-106.6, 25.8, -93.5, 36.5)},
			{FIPS: "44", Abbr: "RI", Name: "Rhode Island", Party: "D", Geometry: square(-71.9, 41.1, -71.1, 42.0)},
			{FIPS: "99", Abbr: "ZZ", Name: "Broken", Geometry: orb.Polygon{}},
		},
		districts: []*domain.DistrictFeature{
			{OfficeID: "TX07", District: "7", Party: "D", ListingName: "Fletcher", Geometry: square(-95.6, 29.6, -95.3, 29.9)},
			{OfficeID: "TX21", District: "21", Party: "R", ListingName: "Roy", Geometry: square(-99.8, 29.3, -97.7, 30.8)},
			{OfficeID: "RI01", Party: "D", ListingName: "Amo", Geometry: square(-71.6, 41.4, -71.1, 42.0)},
			{OfficeID: "RI02", District: "3", Party: "D", ListingName: "Magaziner", Geometry: square(-71.9, 41.1, -71.6, 41.4)},
		},
	}
}

// --- fake reference data ---

type fakeRef struct {
	members     []domain.Member
	proportions []domain.ProportionRecord
	topics      []string
	rows        []domain.LabeledRow
	err         error
	topicsErr   error
	rowsErr     error
	onMembers   func()
}

func (r *fakeRef) Members(context.Context) ([]domain.Member, error) {
	if r.onMembers != nil {
		r.onMembers()
	}
	return r.members, r.err
}

func (r *fakeRef) Proportions(context.Context) ([]domain.ProportionRecord, error) {
	return r.proportions, r.err
}

func (r *fakeRef) Topics(context.Context) ([]string, error) { return r.topics, r.topicsErr }

func (r *fakeRef) LabeledRows(context.Context) ([]domain.LabeledRow, error) { return r.rows, r.rowsErr }

func intPtr(n int) *int { return &n }

func newFakeRef() *fakeRef {
	return &fakeRef{
		members: []domain.Member{
			{BioguideID: "C001098", Name: "Cruz, Ted", Party: "Republican", Chamber: domain.ChamberSenate, State: "Texas"},
			{BioguideID: "F000468", Name: "Fletcher, Lizzie", Party: "Democratic", Chamber: domain.ChamberHouse, State: "Texas", District: intPtr(7)},
			{BioguideID: "R000614", Name: "Roy, Chip", Party: "Republican", Chamber: domain.ChamberHouse, State: "TX", District: intPtr(21)},
			{BioguideID: "A000380", Name: "Amo, Gabe", Party: "Democratic", Chamber: domain.ChamberHouse, State: "Rhode Island", District: intPtr(1)},
		},
		proportions: []domain.ProportionRecord{
			{
				"bioguide_id": "F000468", "name": "Fletcher, Lizzie", "chamber": domain.ChamberHouse, "state": "Texas",
				"Health_and_Healthcare_self_proportion":       0.4,
				"Health_And_Healthcare_state_self_proportion": 0.3,
			},
			{
				"bioguide_id": "A000380", "name": "Amo, Gabe", "chamber": domain.ChamberHouse, "state": "Rhode Island",
				"Health_And_Healthcare_state_self_proportion": 0.1,
			},
		},
	}
}

// --- fake topic counter ---

type fakeCounter struct {
	result domain.TopicCounts
	err    error
}

func (c *fakeCounter) TopicCounts(_ context.Context, topic string) (domain.TopicCounts, error) {
	r := c.result
	r.Topic = topic
	return r, c.err
}

// --- recording publisher ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ViewEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev domain.ViewEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Kind)
	}
	return out
}

var errUpstream = errors.New("upstream down")

type harness struct {
	d       *Dashboard
	geo     *fakeGeo
	ref     *fakeRef
	counter *fakeCounter
	pub     *recordingPublisher
	metrics *observability.Metrics
}

func newHarness() *harness {
	h := &harness{
		geo:     newFakeGeo(),
		ref:     newFakeRef(),
		counter: &fakeCounter{},
		pub:     &recordingPublisher{},
		metrics: observability.NewMetricsForTesting(),
	}
	h.d = New(h.geo, h.ref, h.counter, h.pub, h.metrics, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return h
}
