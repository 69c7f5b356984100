package domain

import "strings"

// ProportionMode selects which proportion columns feed the radar chart.
type ProportionMode string

const (
	// ModeSelf compares each policy area to the member's own total.
	ModeSelf ProportionMode = "self"
	// ModeAcrossAll compares each policy area to all bills across Congress.
	ModeAcrossAll ProportionMode = "across_all"
)

// ParseMode returns the mode named by s. Unknown names fall back to ModeSelf.
func ParseMode(s string) ProportionMode {
	if ProportionMode(strings.ToLower(strings.TrimSpace(s))) == ModeAcrossAll {
		return ModeAcrossAll
	}
	return ModeSelf
}

// truncatedColumnLengths are the lengths at which the upstream schema cut
// over-long proportion column names.
var truncatedColumnLengths = []int{64, 63}

// PolicyArea is one axis of the radar chart.
type PolicyArea struct {
	Display string
	// memberKeys are the column stems used for member proportions; the
	// first is canonical, the rest are variants seen in the feed.
	memberKeys []string
	stateKey   string
}

// PolicyAreas is the fixed axis order of every radar dataset.
var PolicyAreas = []PolicyArea{
	newPolicyArea("Agriculture and Food"),
	newPolicyArea("Crime and Law Enforcement"),
	newPolicyArea("Culture and Recreation"),
	newPolicyArea("Economy and Finance"),
	newPolicyArea("Education and Social Services"),
	newPolicyArea("Environment and Natural Resources"),
	newPolicyArea("Government Operations and Politics"),
	newPolicyArea("Health and Healthcare"),
	newPolicyArea("Immigration and Civil Rights"),
	newPolicyArea("National Security and International Affairs"),
	newPolicyArea("Science, Technology and Communications", "Science__Technology__and_Communications"),
	newPolicyArea("Transportation and Infrastructure"),
}

func newPolicyArea(display string, variants ...string) PolicyArea {
	stem := strings.ReplaceAll(strings.ReplaceAll(display, ",", ""), " ", "_")
	return PolicyArea{
		Display:    display,
		memberKeys: append([]string{stem}, variants...),
		stateKey:   strings.ReplaceAll(stem, "_and_", "_And_"),
	}
}

// MemberColumns lists the candidate member columns for mode, canonical first.
func (a PolicyArea) MemberColumns(mode ProportionMode) []string {
	suffix := "_self_proportion"
	if mode == ModeAcrossAll {
		suffix = "_across_all_proportion"
	}
	var cols []string
	for _, k := range a.memberKeys {
		cols = append(cols, columnVariants(k+suffix)...)
	}
	return cols
}

// StateColumns lists the candidate state columns for mode, canonical first.
// Self mode reads the state's own distribution; across_all reads the state's
// share of the national total.
func (a PolicyArea) StateColumns(mode ProportionMode) []string {
	suffix := "_state_self_proportion"
	if mode == ModeAcrossAll {
		suffix = "_state_national_proportion"
	}
	return columnVariants(a.stateKey + suffix)
}

func columnVariants(name string) []string {
	out := []string{name}
	for _, n := range truncatedColumnLengths {
		if len(name) > n {
			out = append(out, name[:n])
		}
	}
	return out
}

// ChamberScale returns the across_all display multiplier for a chamber. It
// makes Senate and House magnitudes visually comparable; it is not a
// statistical correction.
func ChamberScale(chamber string) float64 {
	switch chamber {
	case ChamberSenate:
		return 2
	case ChamberHouse:
		return 5
	default:
		return 1
	}
}

// RadarPoint is one axis value of a radar series.
type RadarPoint struct {
	Axis  string  `json:"axis"`
	Value float64 `json:"value"`
}

// RadarDataset holds the member and state series of a radar chart. Both
// series always have one point per PolicyAreas entry, in that order.
type RadarDataset struct {
	BioguideID string         `json:"bioguide_id"`
	MemberName string         `json:"member_name"`
	StateName  string         `json:"state_name"`
	Chamber    string         `json:"chamber"`
	Mode       ProportionMode `json:"mode"`
	Member     []RadarPoint   `json:"member"`
	State      []RadarPoint   `json:"state"`
}

// BuildRadarDataset builds the radar series for one member record.
func BuildRadarDataset(rec ProportionRecord, mode ProportionMode) RadarDataset {
	if mode != ModeAcrossAll {
		mode = ModeSelf
	}
	scale := 1.0
	if mode == ModeAcrossAll {
		scale = ChamberScale(rec.Chamber())
	}

	ds := RadarDataset{
		BioguideID: rec.BioguideID(),
		MemberName: rec.Name(),
		StateName:  rec.State(),
		Chamber:    rec.Chamber(),
		Mode:       mode,
		Member:     make([]RadarPoint, len(PolicyAreas)),
		State:      make([]RadarPoint, len(PolicyAreas)),
	}
	for i, area := range PolicyAreas {
		ds.Member[i] = RadarPoint{Axis: area.Display, Value: firstFloat(rec, area.MemberColumns(mode)) * scale}
		ds.State[i] = RadarPoint{Axis: area.Display, Value: firstFloat(rec, area.StateColumns(mode))}
	}
	return ds
}

func firstFloat(rec ProportionRecord, cols []string) float64 {
	for _, c := range cols {
		if v, ok := rec.Float(c); ok {
			return v
		}
	}
	return 0
}
