package dashboard

import (
	"context"
	"strings"

	"github.com/couchcryptid/congress-dashboard/internal/domain"
	"github.com/couchcryptid/congress-dashboard/internal/render"
)

// MemberCard is one member in the profile panel.
type MemberCard struct {
	domain.Member
	DistrictLabel string `json:"district_label"`
	Highlighted   bool   `json:"highlighted"`
}

// Profile is the member panel for a session's current selection. Stale is
// set when the selection changed while the members were being fetched; the
// caller should discard it in favor of a newer request.
type Profile struct {
	Generation uint64       `json:"generation"`
	Stale      bool         `json:"stale"`
	Header     string       `json:"header"`
	State      string       `json:"state,omitempty"`
	District   string       `json:"district,omitempty"`
	Members    []MemberCard `json:"members"`
}

// Profile returns the members of the session's selected state, highlighting
// the representative of the selected district.
func (d *Dashboard) Profile(ctx context.Context, id string) (Profile, error) {
	s, err := d.session(id)
	if err != nil {
		return Profile{}, err
	}

	s.mu.Lock()
	gen := s.gen
	snap := s.view.Snapshot()
	s.mu.Unlock()

	p := Profile{Generation: gen, Header: render.NationalMemberHeader, Members: []MemberCard{}}
	if snap.State == nil {
		return p, nil
	}
	if snap.District != nil {
		p.District = snap.District.Label()
	}

	members, err := d.ref.Members(ctx)
	if err != nil {
		return Profile{}, err
	}
	p.State = snap.State.Name
	p.Header = render.MemberHeader(snap.State.Name, p.District)
	p.Members = MembersFor(members, snap.State, p.District)

	s.mu.Lock()
	p.Stale = s.gen != gen
	s.mu.Unlock()
	return p, nil
}

// MembersFor filters members to state, matched by full name or
// abbreviation, and highlights the House members of district (two digits,
// empty for none). Order follows members.
func MembersFor(members []domain.Member, state *domain.StateFeature, district string) []MemberCard {
	out := []MemberCard{}
	for _, m := range members {
		if !sameState(m.State, state) {
			continue
		}
		label := m.DistrictLabel()
		out = append(out, MemberCard{
			Member:        m,
			DistrictLabel: label,
			Highlighted:   district != "" && m.Chamber == domain.ChamberHouse && label == district,
		})
	}
	return out
}

func sameState(memberState string, st *domain.StateFeature) bool {
	memberState = strings.TrimSpace(memberState)
	return strings.EqualFold(memberState, st.Name) || strings.EqualFold(memberState, st.Abbr)
}
