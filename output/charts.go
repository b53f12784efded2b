package output

import (
	"fmt"
	"io"
	"os"

	"github.com/ChristianF88/launchdash/query"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// Chart ids of the static page. go-echarts derives script variable names
// from them, so they must be valid JavaScript identifiers.
const (
	PieChartID     = "successPieChart"
	ScatterChartID = "successPayloadScatterChart"
)

const (
	chartWidth  = "100%"
	chartHeight = "450px"
)

// PieChart builds the success pie for a summary
func PieChart(summary query.SuccessSummary) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID: PieChartID,
			Width:   chartWidth,
			Height:  chartHeight,
			Theme:   types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title: summary.Title,
			Left:  "center",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show:   opts.Bool(true),
			Orient: "vertical",
			Left:   "left",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Trigger:   "item",
			Formatter: "{b}: {c} ({d}%)",
		}),
	)

	data := make([]opts.PieData, 0, len(summary.Slices))
	for _, sl := range summary.Slices {
		data = append(data, opts.PieData{Name: sl.Label, Value: sl.Value})
	}

	pie.AddSeries("Launches", data).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{
			Show:      opts.Bool(true),
			Formatter: "{b}: {d}%",
		}))
	return pie
}

// ScatterChart builds the payload scatter for a series. The x-axis is
// clipped to the series bounds and every booster category gets its own
// colored series.
func ScatterChart(series query.ScatterSeries) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID: ScatterChartID,
			Width:   chartWidth,
			Height:  chartHeight,
			Theme:   types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title: series.Title,
			Left:  "center",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "bottom",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Trigger:   "item",
			Formatter: "{a}<br />{c}",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Payload Mass (kg)",
			Type: "value",
			Min:  series.XMin,
			Max:  series.XMax,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:        "class",
			Type:        "value",
			Min:         0,
			Max:         1,
			SplitNumber: 1,
		}),
	)

	byCategory := make(map[string][]opts.ScatterData)
	for _, p := range series.Points {
		byCategory[p.BoosterCategory] = append(byCategory[p.BoosterCategory], opts.ScatterData{
			Value:      []interface{}{p.PayloadMassKg, p.OutcomeClass},
			SymbolSize: 12,
		})
	}
	for _, category := range series.Categories() {
		scatter.AddSeries(category, byCategory[category])
	}
	return scatter
}

// ChartOptions returns the ECharts option object for spec, ready to be
// JSON encoded and passed to setOption in the browser.
func ChartOptions(spec query.ChartSpec) (map[string]interface{}, error) {
	switch s := spec.(type) {
	case query.SuccessSummary:
		return PieChart(s).JSON(), nil
	case query.ScatterSeries:
		return ScatterChart(s).JSON(), nil
	}
	return nil, fmt.Errorf("unsupported chart spec %T", spec)
}

// WriteDashboard renders both charts as a standalone HTML page
func WriteDashboard(w io.Writer, title string, summary query.SuccessSummary, series query.ScatterSeries) error {
	page := components.NewPage()
	page.PageTitle = title
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(PieChart(summary), ScatterChart(series))

	if err := page.Render(w); err != nil {
		return fmt.Errorf("rendering dashboard: %w", err)
	}
	return nil
}

// RenderDashboard writes the static dashboard page to filename
func RenderDashboard(filename, title string, summary query.SuccessSummary, series query.ScatterSeries) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create dashboard file %s: %w", filename, err)
	}
	defer f.Close()

	return WriteDashboard(f, title, summary, series)
}
