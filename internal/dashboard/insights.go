package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/couchcryptid/congress-dashboard/internal/domain"
)

// ErrMemberNotFound is returned when no proportions exist for a bioguide id.
var ErrMemberNotFound = errors.New("member not found")

// StateSummary lists a state for pickers.
type StateSummary struct {
	FIPS  string `json:"fips"`
	Abbr  string `json:"abbr"`
	Name  string `json:"name"`
	Party string `json:"party,omitempty"`
}

// DistrictSummary lists a district for pickers.
type DistrictSummary struct {
	OfficeID    string `json:"office_id"`
	District    string `json:"district"`
	Party       string `json:"party,omitempty"`
	ListingName string `json:"listing_name,omitempty"`
}

// States lists every loaded state in load order.
func (d *Dashboard) States() []StateSummary {
	states := d.geo.States()
	out := make([]StateSummary, 0, len(states))
	for _, s := range states {
		out = append(out, StateSummary{FIPS: s.FIPS, Abbr: s.Abbr, Name: s.Name, Party: s.Party})
	}
	return out
}

// Districts lists the districts of the state with abbreviation abbr.
func (d *Dashboard) Districts(abbr string) ([]DistrictSummary, error) {
	st, ok := d.geo.StateByAbbr(abbr)
	if !ok {
		return nil, fmt.Errorf("state %q: %w", abbr, domain.ErrLookupMiss)
	}
	districts := d.geo.DistrictsFor(st.Abbr)
	out := make([]DistrictSummary, 0, len(districts))
	for _, dist := range districts {
		out = append(out, DistrictSummary{
			OfficeID:    dist.OfficeID,
			District:    dist.Label(),
			Party:       dist.Party,
			ListingName: dist.ListingName,
		})
	}
	return out, nil
}

// Radar builds the radar dataset for one member.
func (d *Dashboard) Radar(ctx context.Context, bioguideID string, mode domain.ProportionMode) (domain.RadarDataset, error) {
	recs, err := d.ref.Proportions(ctx)
	if err != nil {
		return domain.RadarDataset{}, err
	}
	bioguideID = strings.TrimSpace(bioguideID)
	for _, rec := range recs {
		if strings.EqualFold(rec.BioguideID(), bioguideID) {
			return domain.BuildRadarDataset(rec, mode), nil
		}
	}
	return domain.RadarDataset{}, fmt.Errorf("radar for %s: %w", bioguideID, ErrMemberNotFound)
}

// Topics lists the ideology topics. When upstream has none, the topics are
// derived from the labeled rows.
func (d *Dashboard) Topics(ctx context.Context) ([]string, error) {
	topics, err := d.ref.Topics(ctx)
	if err == nil && len(topics) > 0 {
		return topics, nil
	}
	if err != nil {
		d.logger.Warn("ideology topics unavailable, deriving from labeled rows", "error", err)
	}
	rows, rowsErr := d.ref.LabeledRows(ctx)
	if rowsErr != nil {
		if err != nil {
			return nil, err
		}
		return nil, rowsErr
	}
	return domain.ExtractTopics(rows), nil
}

// TopicCounts returns per-state counts for topic. If upstream fails, the
// counts are computed from the labeled rows instead.
func (d *Dashboard) TopicCounts(ctx context.Context, topic string) (domain.TopicCounts, error) {
	counts, err := d.topics.TopicCounts(ctx, topic)
	if err == nil {
		return counts, nil
	}
	d.logger.Warn("topic counts unavailable, counting labeled rows", "topic", topic, "error", err)

	rows, rowsErr := d.ref.LabeledRows(ctx)
	if rowsErr != nil {
		return domain.TopicCounts{}, err
	}
	out := domain.TopicCounts{Topic: topic, Counts: domain.CountByState(rows, topic)}
	if len(out.Counts) == 0 {
		out.Message = domain.TopicMessageNoData
	}
	return out, nil
}

// Sankey builds the national-to-state policy area flow for a state given by
// abbreviation or full name.
func (d *Dashboard) Sankey(ctx context.Context, state string) (domain.SankeyGraph, error) {
	name := strings.TrimSpace(state)
	if st, ok := d.geo.StateByAbbr(name); ok {
		name = st.Name
	} else if st, ok := d.geo.StateByName(name); ok {
		name = st.Name
	}

	recs, err := d.ref.Proportions(ctx)
	if err != nil {
		return domain.SankeyGraph{}, err
	}
	for _, rec := range recs {
		if strings.EqualFold(rec.State(), name) {
			return domain.BuildSankey(domain.NationalShares(recs), domain.StateShares(rec), rec.State()), nil
		}
	}
	return domain.SankeyGraph{}, fmt.Errorf("sankey for %q: %w", state, domain.ErrLookupMiss)
}
