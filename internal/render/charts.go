package render

import (
	"fmt"
	"io"

	"github.com/couchcryptid/congress-dashboard/internal/domain"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	chartWidth  = "900px"
	chartHeight = "600px"

	// Headroom above the largest radar value.
	radarBuffer = 0.1
)

// RadarChart writes the member and state series of ds as a radar chart.
func RadarChart(w io.Writer, ds domain.RadarDataset) error {
	radar := charts.NewRadar()
	radar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Policy Areas",
			Width:     chartWidth,
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    ds.MemberName,
			Subtitle: fmt.Sprintf("%s, %s (%s)", ds.Chamber, ds.StateName, ds.Mode),
		}),
		charts.WithRadarComponentOpts(opts.RadarComponent{
			Indicator: radarIndicators(ds),
			Shape:     "polygon",
		}),
	)

	radar.AddSeries(ds.MemberName, []opts.RadarData{{Name: ds.MemberName, Value: pointValues(ds.Member)}})
	radar.AddSeries(ds.StateName, []opts.RadarData{{Name: ds.StateName, Value: pointValues(ds.State)}})

	if err := radar.Render(w); err != nil {
		return fmt.Errorf("render radar chart: %w", err)
	}
	return nil
}

// radarIndicators gives every axis the same max: the largest value across
// both series plus a buffer.
func radarIndicators(ds domain.RadarDataset) []*opts.Indicator {
	maxValue := 0.0
	for _, series := range [][]domain.RadarPoint{ds.Member, ds.State} {
		for _, p := range series {
			maxValue = max(maxValue, p.Value)
		}
	}
	if maxValue == 0 {
		maxValue = 1
	}
	limit := float32(maxValue * (1 + radarBuffer))

	out := make([]*opts.Indicator, 0, len(domain.PolicyAreas))
	for _, a := range domain.PolicyAreas {
		out = append(out, &opts.Indicator{Name: a.Display, Max: limit})
	}
	return out
}

func pointValues(points []domain.RadarPoint) []float64 {
	vals := make([]float64, len(points))
	for i, p := range points {
		vals[i] = p.Value
	}
	return vals
}

// TopicBarChart writes per-state counts for one topic as a bar chart.
func TopicBarChart(w io.Writer, topic string, counts []domain.IdeologyCount) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Ideology by State",
			Width:     chartWidth,
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{Title: topic, Subtitle: "Labeled items per state"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "State"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Count"}),
	)

	states := make([]string, len(counts))
	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		states[i] = c.State
		data[i] = opts.BarData{Name: c.State, Value: c.Count}
	}
	bar.SetXAxis(states).AddSeries(topic, data)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

// SankeyChart writes g as a sankey diagram.
func SankeyChart(w io.Writer, g domain.SankeyGraph) error {
	sankey := charts.NewSankey()
	sankey.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Policy Area Flow",
			Width:     chartWidth,
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("National vs %s", g.State),
			Subtitle: "Share of bills by policy area",
		}),
	)

	nodes := make([]opts.SankeyNode, len(g.Nodes))
	for i, n := range g.Nodes {
		nodes[i] = opts.SankeyNode{Name: n.Name}
	}
	links := make([]opts.SankeyLink, len(g.Links))
	for i, l := range g.Links {
		links[i] = opts.SankeyLink{Source: l.Source, Target: l.Target, Value: float32(l.Value)}
	}
	sankey.AddSeries(g.State, nodes, links)

	if err := sankey.Render(w); err != nil {
		return fmt.Errorf("render sankey chart: %w", err)
	}
	return nil
}
