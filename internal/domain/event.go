package domain

import (
	"time"

	"github.com/google/uuid"
)

// Resource names an upstream payload and the cache key it is stored under.
type Resource struct {
	Key  string
	Path string
}

// Reference resources fetched from the congress API.
var (
	ResourceStates      = Resource{Key: "us_states_cache", Path: "/api/us_states_topojson/"}
	ResourceDistricts   = Resource{Key: "congressional_districts_cache", Path: "/api/us_districts_topojson/"}
	ResourceMembers     = Resource{Key: "congress_members_cache", Path: "/api/congress_members/"}
	ResourceProportions = Resource{Key: "member_proportions_cache", Path: "/api/member_proportions/"}
	ResourceTopics      = Resource{Key: "ideology_topics_cache", Path: "/api/ideology_topics/"}
	ResourceLabeledRows = Resource{Key: "combined_data_cache", Path: "/api/combined_data/"}
)

// ViewEvent records one applied view transition.
type ViewEvent struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Kind       string    `json:"kind"`
	Level      Level     `json:"level"`
	StateFIPS  string    `json:"state_fips,omitempty"`
	StateAbbr  string    `json:"state_abbr,omitempty"`
	OfficeID   string    `json:"office_id,omitempty"`
	Camera     Camera    `json:"camera"`
	Generation uint64    `json:"generation"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewViewEvent stamps a transition of a session's view.
func NewViewEvent(sessionID, kind string, snap ViewSnapshot, cam Camera, generation uint64) ViewEvent {
	ev := ViewEvent{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Kind:       kind,
		Level:      snap.Level,
		Camera:     cam,
		Generation: generation,
		OccurredAt: clock.Now().UTC(),
	}
	if snap.State != nil {
		ev.StateFIPS = snap.State.FIPS
		ev.StateAbbr = snap.State.Abbr
	}
	if snap.District != nil {
		ev.OfficeID = snap.District.OfficeID
	}
	return ev
}
