package domain

import (
	"errors"
	"fmt"
)

// ErrLookupMiss is returned when a selection id matches no feature in the
// current universe. Callers treat it as a silent no-op.
var ErrLookupMiss = errors.New("lookup miss")

// ErrInvalidTransition is returned when a transition is requested from a
// level that does not allow it, e.g. BackToState at the national level.
var ErrInvalidTransition = errors.New("invalid view transition")

// LoadError reports a fetch or decode failure for a reference resource.
type LoadError struct {
	Resource string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Resource, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// InvalidGeometryError reports an absent, malformed, or unsupported geometry.
type InvalidGeometryError struct {
	FeatureID string
	Reason    string
}

func (e *InvalidGeometryError) Error() string {
	if e.FeatureID == "" {
		return "invalid geometry: " + e.Reason
	}
	return fmt.Sprintf("invalid geometry for %s: %s", e.FeatureID, e.Reason)
}
