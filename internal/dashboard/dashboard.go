// Package dashboard is the application core: it owns one ViewState per
// session and turns clicks into transitions, camera updates, map frames and
// view events.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/congress-dashboard/internal/domain"
	"github.com/couchcryptid/congress-dashboard/internal/observability"
	"github.com/couchcryptid/congress-dashboard/internal/render"
	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

// GeoSource is the loaded state and district reference data.
type GeoSource interface {
	domain.FeatureUniverse
	StateByAbbr(abbr string) (*domain.StateFeature, bool)
	StateByName(name string) (*domain.StateFeature, bool)
	CheckReadiness(ctx context.Context) error
}

// ReferenceData is the member and ideology reference data.
type ReferenceData interface {
	Members(ctx context.Context) ([]domain.Member, error)
	Proportions(ctx context.Context) ([]domain.ProportionRecord, error)
	Topics(ctx context.Context) ([]string, error)
	LabeledRows(ctx context.Context) ([]domain.LabeledRow, error)
}

// TopicCounter returns per-state counts for an ideology topic.
type TopicCounter interface {
	TopicCounts(ctx context.Context, topic string) (domain.TopicCounts, error)
}

// Publisher receives every applied view transition.
type Publisher interface {
	Publish(ctx context.Context, event domain.ViewEvent) error
}

// NopPublisher drops events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, domain.ViewEvent) error { return nil }

type session struct {
	mu   sync.Mutex
	view *domain.ViewState
	gen  uint64
	// The state view reached by leaving a district is framed unpadded.
	afterBack bool
}

// Dashboard dispatches session commands. It is safe for concurrent use;
// commands on one session are serialized.
type Dashboard struct {
	geo     GeoSource
	ref     ReferenceData
	topics  TopicCounter
	pub     Publisher
	metrics *observability.Metrics
	logger  *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*session
}

// New creates a Dashboard. A nil publisher drops view events.
func New(geo GeoSource, ref ReferenceData, topics TopicCounter, pub Publisher, metrics *observability.Metrics, logger *slog.Logger) *Dashboard {
	if pub == nil {
		pub = NopPublisher{}
	}
	return &Dashboard{
		geo:      geo,
		ref:      ref,
		topics:   topics,
		pub:      pub,
		metrics:  metrics,
		logger:   logger,
		sessions: make(map[string]*session),
	}
}

// CheckReadiness reports whether geo data is loaded.
func (d *Dashboard) CheckReadiness(ctx context.Context) error {
	return d.geo.CheckReadiness(ctx)
}

// NewSession starts a session at the national view and returns its id.
func (d *Dashboard) NewSession() string {
	id := uuid.NewString()
	d.mu.Lock()
	d.sessions[id] = &session{view: domain.NewViewState(d.geo)}
	n := len(d.sessions)
	d.mu.Unlock()

	d.metrics.ActiveSessions.Set(float64(n))
	d.logger.Debug("session created", "session", id)
	return id
}

// CloseSession forgets a session.
func (d *Dashboard) CloseSession(id string) error {
	d.mu.Lock()
	_, ok := d.sessions[id]
	delete(d.sessions, id)
	n := len(d.sessions)
	d.mu.Unlock()

	if !ok {
		return fmt.Errorf("close %s: %w", id, ErrSessionNotFound)
	}
	d.metrics.ActiveSessions.Set(float64(n))
	return nil
}

func (d *Dashboard) session(id string) (*session, error) {
	d.mu.RLock()
	s, ok := d.sessions[id]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

// View returns the current frame of a session without changing it.
func (d *Dashboard) View(id string) (render.MapFrame, error) {
	s, err := d.session(id)
	if err != nil {
		return render.MapFrame{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	frame, _ := d.frame(s)
	return frame, nil
}

// Click routes a clicked feature id: a state FIPS selects the state, a
// district of the selected state selects the district, anything else is
// ignored and the current frame is returned unchanged.
func (d *Dashboard) Click(ctx context.Context, id, featureID string) (render.MapFrame, error) {
	return d.apply(ctx, id, func(v *domain.ViewState) (string, error) {
		in := domain.Resolve(featureID, v)
		if in.Kind == domain.IntentIgnore {
			d.lookupMiss("click", featureID)
		}
		if err := domain.Dispatch(v, in); err != nil {
			return "", err
		}
		if in.Kind == domain.IntentSelectDistrict {
			return domain.TransitionSelectDistrict, nil
		}
		return domain.TransitionSelectState, nil
	})
}

// ClickAt routes a click on a map coordinate to the feature under it.
func (d *Dashboard) ClickAt(ctx context.Context, id string, p domain.GeoPoint) (render.MapFrame, error) {
	s, err := d.session(id)
	if err != nil {
		return render.MapFrame{}, err
	}
	s.mu.Lock()
	featureID := domain.Locate(p, s.view)
	s.mu.Unlock()

	if featureID == "" {
		d.lookupMiss("point", fmt.Sprintf("%.4f,%.4f", p.Lon, p.Lat))
		return d.View(id)
	}
	return d.Click(ctx, id, featureID)
}

// SelectState selects a state by FIPS code.
func (d *Dashboard) SelectState(ctx context.Context, id, fips string) (render.MapFrame, error) {
	return d.apply(ctx, id, func(v *domain.ViewState) (string, error) {
		if err := v.SelectState(fips); err != nil {
			d.lookupMiss("state", fips)
			return "", err
		}
		return domain.TransitionSelectState, nil
	})
}

// SelectStateByAbbr selects a state by postal abbreviation.
func (d *Dashboard) SelectStateByAbbr(ctx context.Context, id, abbr string) (render.MapFrame, error) {
	st, ok := d.geo.StateByAbbr(abbr)
	if !ok {
		d.lookupMiss("state", abbr)
		return d.View(id)
	}
	return d.SelectState(ctx, id, st.FIPS)
}

// SelectDistrict selects a district of the currently selected state.
func (d *Dashboard) SelectDistrict(ctx context.Context, id, officeID string) (render.MapFrame, error) {
	return d.apply(ctx, id, func(v *domain.ViewState) (string, error) {
		if err := v.SelectDistrict(officeID); err != nil {
			if errors.Is(err, domain.ErrLookupMiss) {
				d.lookupMiss("district", officeID)
			}
			return "", err
		}
		return domain.TransitionSelectDistrict, nil
	})
}

// Reset returns a session to the national view.
func (d *Dashboard) Reset(ctx context.Context, id string) (render.MapFrame, error) {
	return d.apply(ctx, id, func(v *domain.ViewState) (string, error) {
		v.Reset()
		return domain.TransitionReset, nil
	})
}

// BackToState leaves the selected district, keeping the state. Outside the
// district level it leaves the view unchanged.
func (d *Dashboard) BackToState(ctx context.Context, id string) (render.MapFrame, error) {
	return d.apply(ctx, id, func(v *domain.ViewState) (string, error) {
		if err := v.BackToState(); err != nil {
			return "", err
		}
		return domain.TransitionBackToState, nil
	})
}

// apply runs one transition under the session lock. Lookup misses and
// invalid transitions are no-ops: the unchanged frame is returned with a nil
// error. Applied transitions bump the generation and publish a view event.
func (d *Dashboard) apply(ctx context.Context, id string, step func(*domain.ViewState) (string, error)) (render.MapFrame, error) {
	s, err := d.session(id)
	if err != nil {
		return render.MapFrame{}, err
	}

	s.mu.Lock()
	kind, err := step(s.view)
	if err != nil {
		frame, _ := d.frame(s)
		s.mu.Unlock()
		if errors.Is(err, domain.ErrLookupMiss) || errors.Is(err, domain.ErrInvalidTransition) {
			d.logger.Debug("transition ignored", "session", id, "reason", err)
			return frame, nil
		}
		return frame, err
	}
	s.gen++
	s.afterBack = kind == domain.TransitionBackToState
	frame, cam := d.frame(s)
	event := domain.NewViewEvent(id, kind, s.view.Snapshot(), cam, s.gen)
	s.mu.Unlock()

	d.metrics.Transitions.WithLabelValues(kind).Inc()
	if err := d.pub.Publish(ctx, event); err != nil {
		d.logger.Warn("view event not published", "session", id, "kind", kind, "error", err)
	}
	return frame, nil
}

// frame builds the session's current frame. Caller holds s.mu.
func (d *Dashboard) frame(s *session) (render.MapFrame, domain.Camera) {
	var (
		cam domain.Camera
		err error
	)
	if s.afterBack {
		cam, err = s.view.CameraAfterBack()
	} else {
		cam, err = s.view.Camera()
	}

	in := render.FrameInput{
		Snapshot:   s.view.Snapshot(),
		Camera:     cam,
		States:     d.geo.States(),
		Generation: s.gen,
	}
	if err != nil {
		d.metrics.InvalidGeometries.Inc()
		d.logger.Warn("camera fit on invalid geometry", "error", err)
		in.Warning = err.Error()
	}
	if dist := in.Snapshot.District; dist != nil {
		in.DistrictLabel = dist.Label()
	}
	return render.BuildFrame(in), cam
}

func (d *Dashboard) lookupMiss(kind, id string) {
	d.metrics.LookupMisses.WithLabelValues(kind).Inc()
	d.logger.Warn("selection matched no feature", "kind", kind, "id", id)
}
