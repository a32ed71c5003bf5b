package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/CodeStranger-Fred/dynaprog/dp"
	"github.com/CodeStranger-Fred/dynaprog/mdp"
)

// Run is one solver's history to chart.
type Run struct {
	Method  dp.Method
	History []dp.ValueTable
}

// WriteHistoryChart renders an HTML page with one line chart per run: a
// series per state, v(s) over sweeps. Only every step-th sweep is plotted,
// plus the last one.
func WriteHistoryChart(w io.Writer, m *mdp.MDP, step int, runs ...Run) error {
	if step < 1 {
		return fmt.Errorf("report: chart step must be positive, got %d", step)
	}
	if len(runs) == 0 {
		return fmt.Errorf("report: nothing to chart")
	}

	page := components.NewPage()
	page.PageTitle = "value convergence"
	for _, run := range runs {
		page.AddCharts(historyLine(m, step, run))
	}
	return page.Render(w)
}

func historyLine(m *mdp.MDP, step int, run Run) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    string(run.Method),
			Subtitle: fmt.Sprintf("%d sweeps", len(run.History)-1),
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "sweep"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "v(s)"}),
	)

	idx := sampled(len(run.History), step)
	sweeps := make([]string, len(idx))
	for i, h := range idx {
		sweeps[i] = strconv.Itoa(h)
	}
	line.SetXAxis(sweeps)

	for s := 0; s < m.NumStates(); s++ {
		items := make([]opts.LineData, 0, len(idx))
		for _, h := range idx {
			items = append(items, opts.LineData{Value: run.History[h][s]})
		}
		line.AddSeries(string(m.StateAt(s)), items)
	}
	return line
}

func sampled(n, step int) []int {
	var idx []int
	for i := 0; i < n; i += step {
		idx = append(idx, i)
	}
	if n > 0 && idx[len(idx)-1] != n-1 {
		idx = append(idx, n-1)
	}
	return idx
}
