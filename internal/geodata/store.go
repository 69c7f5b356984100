// Package geodata loads and indexes the state and congressional district
// features behind the map.
package geodata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/couchcryptid/congress-dashboard/internal/domain"
	"github.com/couchcryptid/congress-dashboard/internal/observability"
	"golang.org/x/sync/errgroup"
)

// Fetcher returns the raw payload of an upstream resource.
type Fetcher interface {
	Fetch(ctx context.Context, res domain.Resource) ([]byte, error)
}

// Invalidator is implemented by fetchers that cache payloads. Load calls it
// for a resource whose payload could not be decoded, so a retry refetches it.
type Invalidator interface {
	Invalidate(ctx context.Context, res domain.Resource) error
}

// Store holds the state and district collections. The collections are set
// once by Load and read-only afterwards; the per-state district index is
// filled lazily and never expires.
type Store struct {
	fetcher Fetcher
	logger  *slog.Logger
	metrics *observability.Metrics

	mu        sync.RWMutex
	loaded    bool
	states    []*domain.StateFeature
	byFIPS    map[string]*domain.StateFeature
	byAbbr    map[string]*domain.StateFeature
	byName    map[string]*domain.StateFeature
	districts []*domain.DistrictFeature
	byOffice  map[string]*domain.DistrictFeature

	indexMu sync.Mutex
	index   map[string][]*domain.DistrictFeature
}

// NewStore creates an empty Store backed by fetcher.
func NewStore(fetcher Fetcher, logger *slog.Logger, metrics *observability.Metrics) *Store {
	return &Store{
		fetcher: fetcher,
		logger:  logger,
		metrics: metrics,
		index:   make(map[string][]*domain.DistrictFeature),
	}
}

// Load fetches states and districts concurrently and decodes both. Either
// failure aborts the whole load with a *domain.LoadError and leaves the store
// empty. Once a load has succeeded, further calls are no-ops.
func (s *Store) Load(ctx context.Context) error {
	if s.Loaded() {
		return nil
	}

	var statesRaw, districtsRaw []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := s.fetcher.Fetch(gctx, domain.ResourceStates)
		if err != nil {
			return &domain.LoadError{Resource: domain.ResourceStates.Key, Err: err}
		}
		statesRaw = b
		return nil
	})
	g.Go(func() error {
		b, err := s.fetcher.Fetch(gctx, domain.ResourceDistricts)
		if err != nil {
			return &domain.LoadError{Resource: domain.ResourceDistricts.Key, Err: err}
		}
		districtsRaw = b
		return nil
	})
	if err := g.Wait(); err != nil {
		return s.loadFailed(err)
	}

	states, err := parseStates(statesRaw)
	if err != nil {
		s.invalidate(ctx, domain.ResourceStates)
		return s.loadFailed(&domain.LoadError{Resource: domain.ResourceStates.Key, Err: err})
	}
	districts, err := parseDistricts(districtsRaw)
	if err != nil {
		s.invalidate(ctx, domain.ResourceDistricts)
		return s.loadFailed(&domain.LoadError{Resource: domain.ResourceDistricts.Key, Err: err})
	}

	s.set(states, districts)
	s.metrics.GeoLoads.WithLabelValues("success").Inc()
	s.metrics.GeoDataLoaded.Set(1)
	s.logger.Info("geo data loaded", "states", len(s.States()), "districts", len(districts))
	return nil
}

func (s *Store) invalidate(ctx context.Context, res domain.Resource) {
	inv, ok := s.fetcher.(Invalidator)
	if !ok {
		return
	}
	if err := inv.Invalidate(ctx, res); err != nil {
		s.logger.Warn("cache invalidation failed", "resource", res.Key, "error", err)
	}
}

func (s *Store) loadFailed(err error) error {
	s.metrics.GeoLoads.WithLabelValues("error").Inc()
	s.logger.Error("geo data load failed", "error", err)
	return err
}

func (s *Store) set(states []*domain.StateFeature, districts []*domain.DistrictFeature) {
	byFIPS := make(map[string]*domain.StateFeature, len(states))
	byAbbr := make(map[string]*domain.StateFeature, len(states))
	byName := make(map[string]*domain.StateFeature, len(states))
	kept := make([]*domain.StateFeature, 0, len(states))
	for _, st := range states {
		if _, dup := byFIPS[st.FIPS]; dup {
			s.logger.Warn("duplicate state feature ignored", "fips", st.FIPS)
			continue
		}
		kept = append(kept, st)
		byFIPS[st.FIPS] = st
		if st.Abbr != "" {
			byAbbr[strings.ToUpper(st.Abbr)] = st
		}
		if st.Name != "" {
			byName[strings.ToLower(st.Name)] = st
		}
	}
	byOffice := make(map[string]*domain.DistrictFeature, len(districts))
	for _, d := range districts {
		byOffice[d.OfficeID] = d
		s.checkDistrict(d, byAbbr)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = kept
	s.byFIPS = byFIPS
	s.byAbbr = byAbbr
	s.byName = byName
	s.districts = districts
	s.byOffice = byOffice
	s.loaded = true
}

// checkDistrict logs and counts, once per load, districts with no owning
// state and district numbers that disagree with or fall back to the office
// id suffix.
func (s *Store) checkDistrict(d *domain.DistrictFeature, byAbbr map[string]*domain.StateFeature) {
	if _, ok := byAbbr[strings.ToUpper(d.StateAbbr())]; !ok {
		s.metrics.OrphanDistricts.Inc()
		s.logger.Warn("district has no owning state", "office_id", d.OfficeID, "prefix", d.StateAbbr())
	}

	n := domain.DistrictNumberOf(d, s.logger)
	if n.Mismatch {
		s.metrics.DistrictNumberMismatches.Inc()
	}
	if n.Source == domain.SourceSuffix {
		s.metrics.DistrictNumberFallbacks.Inc()
	}
}

// Loaded reports whether a load has succeeded.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// CheckReadiness returns nil once geo data is loaded.
func (s *Store) CheckReadiness(_ context.Context) error {
	if !s.Loaded() {
		return errors.New("geo data has not been loaded yet")
	}
	return nil
}

// States returns every state feature in load order.
func (s *Store) States() []*domain.StateFeature {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states
}

// AllDistricts returns every district feature in load order.
func (s *Store) AllDistricts() []*domain.DistrictFeature {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.districts
}

// StateByFIPS looks up a state by FIPS code.
func (s *Store) StateByFIPS(fips string) (*domain.StateFeature, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.byFIPS[fips]
	return st, ok
}

// StateByAbbr looks up a state by postal abbreviation, ignoring case.
func (s *Store) StateByAbbr(abbr string) (*domain.StateFeature, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.byAbbr[strings.ToUpper(abbr)]
	return st, ok
}

// StateByName looks up a state by full name, ignoring case.
func (s *Store) StateByName(name string) (*domain.StateFeature, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.byName[strings.ToLower(strings.TrimSpace(name))]
	return st, ok
}

// District looks up a district by office id.
func (s *Store) District(officeID string) (*domain.DistrictFeature, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byOffice[officeID]
	return d, ok
}

// DistrictsFor returns the districts whose office id starts with abbr, in
// load order. Results are memoized per abbreviation once data is loaded.
func (s *Store) DistrictsFor(abbr string) []*domain.DistrictFeature {
	if !s.Loaded() || abbr == "" {
		return nil
	}

	s.indexMu.Lock()
	defer s.indexMu.Unlock()
	if cached, ok := s.index[abbr]; ok {
		return cached
	}

	var out []*domain.DistrictFeature
	for _, d := range s.AllDistricts() {
		if strings.HasPrefix(d.OfficeID, abbr) {
			out = append(out, d)
		}
	}
	s.index[abbr] = out
	return out
}

func parseStates(data []byte) ([]*domain.StateFeature, error) {
	fc, err := decodeCollection(data, ObjectStates)
	if err != nil {
		return nil, err
	}
	states := make([]*domain.StateFeature, 0, len(fc.Features))
	for i, f := range fc.Features {
		st, err := domain.NewStateFeature(f)
		if err != nil {
			return nil, fmt.Errorf("state feature %d: %w", i, err)
		}
		states = append(states, st)
	}
	return states, nil
}

func parseDistricts(data []byte) ([]*domain.DistrictFeature, error) {
	fc, err := decodeCollection(data, ObjectDistricts)
	if err != nil {
		return nil, err
	}
	districts := make([]*domain.DistrictFeature, 0, len(fc.Features))
	for i, f := range fc.Features {
		d, err := domain.NewDistrictFeature(f)
		if err != nil {
			return nil, fmt.Errorf("district feature %d: %w", i, err)
		}
		districts = append(districts, d)
	}
	return districts, nil
}
