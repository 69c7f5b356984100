package domain

import (
	"encoding/json"
	"sort"
	"strings"
)

// LabeledRow is one labeled bill or statement: the state it came from and its
// assigned topic labels.
type LabeledRow struct {
	State  string   `json:"state"`
	Labels []string `json:"assigned_label"`
}

// IdeologyCount is the number of labeled rows for a topic in one state.
type IdeologyCount struct {
	State string `json:"state"`
	Count int    `json:"count"`
}

// TopicCounts is the per-state breakdown for one ideology topic. Pending is
// set while upstream is still computing it; Message explains an empty result.
type TopicCounts struct {
	Topic   string          `json:"topic"`
	Counts  []IdeologyCount `json:"counts"`
	Pending bool            `json:"pending,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Messages explaining an empty TopicCounts.
const (
	TopicMessagePending = "Data is being fetched. Please wait..."
	TopicMessageNoData  = "No data found for selected topic."
)

// ParseAssignedLabel decodes an assigned_label cell. The upstream feed writes
// label lists in single-quoted form (['a', 'b']); those quotes are swapped for
// double quotes before decoding. Invalid input yields an empty list.
func ParseAssignedLabel(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}
	var labels []string
	if err := json.Unmarshal([]byte(strings.ReplaceAll(raw, "'", `"`)), &labels); err != nil {
		return []string{}
	}
	return labels
}

// ExtractTopics returns the distinct labels across rows in first-seen order.
func ExtractTopics(rows []LabeledRow) []string {
	seen := make(map[string]bool)
	topics := []string{}
	for _, r := range rows {
		for _, l := range r.Labels {
			if l == "" || seen[l] {
				continue
			}
			seen[l] = true
			topics = append(topics, l)
		}
	}
	return topics
}

// CountByState counts the rows labeled with topic per state, sorted by state.
func CountByState(rows []LabeledRow, topic string) []IdeologyCount {
	if topic == "" {
		return []IdeologyCount{}
	}
	counts := make(map[string]int)
	for _, r := range rows {
		for _, l := range r.Labels {
			if l == topic {
				counts[r.State]++
				break
			}
		}
	}
	return sortedCounts(counts)
}

// SortCounts orders counts by state name.
func SortCounts(counts []IdeologyCount) []IdeologyCount {
	out := make([]IdeologyCount, len(counts))
	copy(out, counts)
	sort.SliceStable(out, func(i, j int) bool { return out[i].State < out[j].State })
	return out
}

func sortedCounts(m map[string]int) []IdeologyCount {
	out := make([]IdeologyCount, 0, len(m))
	for state, n := range m {
		out = append(out, IdeologyCount{State: state, Count: n})
	}
	return SortCounts(out)
}

// SankeyNode is a named node of a sankey graph.
type SankeyNode struct {
	Name string `json:"name"`
}

// SankeyLink is a weighted edge between two node names.
type SankeyLink struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Value  float64 `json:"value"`
}

// SankeyGraph is a three-column flow: National, topics, and one state.
type SankeyGraph struct {
	State string       `json:"state"`
	Nodes []SankeyNode `json:"nodes"`
	Links []SankeyLink `json:"links"`
}

// NationalNode names the source column of every sankey graph.
const NationalNode = "National"

// BuildSankey links the national topic shares to a state's shares. Topics are
// ordered by national share, largest first; a topic missing from the state
// flows with value 0.
func BuildSankey(national map[string]float64, stateShares map[string]float64, state string) SankeyGraph {
	topics := make([]string, 0, len(national))
	for t := range national {
		topics = append(topics, t)
	}
	sort.SliceStable(topics, func(i, j int) bool {
		if national[topics[i]] != national[topics[j]] {
			return national[topics[i]] > national[topics[j]]
		}
		return topics[i] < topics[j]
	})

	g := SankeyGraph{
		State: state,
		Nodes: make([]SankeyNode, 0, len(topics)+2),
		Links: make([]SankeyLink, 0, 2*len(topics)),
	}
	g.Nodes = append(g.Nodes, SankeyNode{Name: NationalNode})
	for _, t := range topics {
		g.Nodes = append(g.Nodes, SankeyNode{Name: t})
	}
	g.Nodes = append(g.Nodes, SankeyNode{Name: state})

	for _, t := range topics {
		g.Links = append(g.Links,
			SankeyLink{Source: NationalNode, Target: t, Value: national[t]},
			SankeyLink{Source: t, Target: state, Value: stateShares[t]},
		)
	}
	return g
}

// StateShares reads a state's self-proportion per policy area from any member
// record of that state. Members of one state share the same state columns.
func StateShares(rec ProportionRecord) map[string]float64 {
	shares := make(map[string]float64, len(PolicyAreas))
	for _, a := range PolicyAreas {
		shares[a.Display] = firstFloat(rec, a.StateColumns(ModeSelf))
	}
	return shares
}

// NationalShares averages the state shares of every distinct state in recs.
func NationalShares(recs []ProportionRecord) map[string]float64 {
	perState := make(map[string]map[string]float64)
	for _, r := range recs {
		if _, ok := perState[r.State()]; ok || r.State() == "" {
			continue
		}
		perState[r.State()] = StateShares(r)
	}
	national := make(map[string]float64, len(PolicyAreas))
	if len(perState) == 0 {
		return national
	}
	for _, shares := range perState {
		for area, v := range shares {
			national[area] += v
		}
	}
	for area := range national {
		national[area] /= float64(len(perState))
	}
	return national
}
