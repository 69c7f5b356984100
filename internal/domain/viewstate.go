package domain

import (
	"fmt"
)

// Level is the map zoom level of a ViewState.
type Level string

const (
	LevelNational Level = "national"
	LevelState    Level = "state"
	LevelDistrict Level = "district"
)

// Transition kinds, used as metric labels and view event kinds.
const (
	TransitionSelectState    = "select_state"
	TransitionSelectDistrict = "select_district"
	TransitionReset          = "reset"
	TransitionBackToState    = "back_to_state"
)

// FeatureUniverse is the set of features a ViewState can select from.
type FeatureUniverse interface {
	States() []*StateFeature
	StateByFIPS(fips string) (*StateFeature, bool)
	DistrictsFor(abbr string) []*DistrictFeature
}

// ViewState tracks the current level and selections of one map view.
//
// Invariants: at LevelNational neither selection is set; at LevelState only
// the state is set; at LevelDistrict both are set and the district belongs to
// the state. ViewState is not safe for concurrent use.
type ViewState struct {
	universe  FeatureUniverse
	level     Level
	state     *StateFeature
	district  *DistrictFeature
	districts []*DistrictFeature
}

// ViewSnapshot is an immutable copy of a ViewState.
type ViewSnapshot struct {
	Level     Level
	State     *StateFeature
	District  *DistrictFeature
	Districts []*DistrictFeature
}

// NewViewState returns a ViewState at the national level.
func NewViewState(universe FeatureUniverse) *ViewState {
	return &ViewState{universe: universe, level: LevelNational}
}

func (v *ViewState) Level() Level { return v.level }

// State returns the selected state, or nil at the national level.
func (v *ViewState) State() *StateFeature { return v.state }

// District returns the selected district, or nil above the district level.
func (v *ViewState) District() *DistrictFeature { return v.district }

// Districts returns the selected state's districts.
func (v *ViewState) Districts() []*DistrictFeature { return v.districts }

// SelectState moves to the state level for the state with the given FIPS code.
// It is valid from any level. An unknown id leaves the view unchanged and
// returns ErrLookupMiss.
func (v *ViewState) SelectState(fips string) error {
	s, ok := v.universe.StateByFIPS(fips)
	if !ok {
		return fmt.Errorf("select state %q: %w", fips, ErrLookupMiss)
	}
	v.level = LevelState
	v.state = s
	v.district = nil
	v.districts = v.universe.DistrictsFor(s.Abbr)
	return nil
}

// SelectDistrict moves to the district level. The office id is looked up in
// the selected state's districts only.
func (v *ViewState) SelectDistrict(officeID string) error {
	if v.level == LevelNational {
		return fmt.Errorf("select district %q at %s level: %w", officeID, v.level, ErrInvalidTransition)
	}
	d := v.scopedDistrict(officeID)
	if d == nil {
		return fmt.Errorf("select district %q: %w", officeID, ErrLookupMiss)
	}
	v.level = LevelDistrict
	v.district = d
	return nil
}

// Reset returns to the national level from any level.
func (v *ViewState) Reset() {
	v.level = LevelNational
	v.state = nil
	v.district = nil
	v.districts = nil
}

// BackToState leaves the district level, keeping the selected state.
// From any other level it is a no-op returning ErrInvalidTransition.
func (v *ViewState) BackToState() error {
	if v.level != LevelDistrict {
		return fmt.Errorf("back to state at %s level: %w", v.level, ErrInvalidTransition)
	}
	v.level = LevelState
	v.district = nil
	return nil
}

// Camera frames the current selection: a state by its padded bounds, a
// district by its raw bounds. Invalid geometry yields the camera of a zeroed
// box plus the error.
func (v *ViewState) Camera() (Camera, error) {
	return v.camera(false)
}

// CameraAfterBack frames the state without padding, matching the view
// produced when leaving a district.
func (v *ViewState) CameraAfterBack() (Camera, error) {
	return v.camera(true)
}

func (v *ViewState) camera(unpadded bool) (Camera, error) {
	switch v.level {
	case LevelState:
		box, err := BoundingBoxOf(v.state.Geometry)
		if err != nil {
			return FitBox(BoundingBox{}), withFeatureID(err, v.state.FIPS)
		}
		if unpadded {
			return FitBox(box), nil
		}
		return FitState(box, v.state.Abbr), nil
	case LevelDistrict:
		box, err := BoundingBoxOf(v.district.Geometry)
		if err != nil {
			return FitBox(BoundingBox{}), withFeatureID(err, v.district.OfficeID)
		}
		return FitDistrict(box), nil
	default:
		return NationalCamera, nil
	}
}

// Snapshot copies the current state for rendering.
func (v *ViewState) Snapshot() ViewSnapshot {
	districts := make([]*DistrictFeature, len(v.districts))
	copy(districts, v.districts)
	return ViewSnapshot{
		Level:     v.level,
		State:     v.state,
		District:  v.district,
		Districts: districts,
	}
}

func (v *ViewState) scopedDistrict(officeID string) *DistrictFeature {
	for _, d := range v.districts {
		if d.OfficeID == officeID {
			return d
		}
	}
	return nil
}

func withFeatureID(err error, id string) error {
	if ge, ok := err.(*InvalidGeometryError); ok && ge.FeatureID == "" {
		return &InvalidGeometryError{FeatureID: id, Reason: ge.Reason}
	}
	return err
}
