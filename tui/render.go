package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/ChristianF88/launchdash/pools"
	"github.com/ChristianF88/launchdash/query"
	"github.com/rivo/tview"
)

const (
	barWidth     = 40
	minGridWidth = 10
)

// slice colors, cycled in slice order
var pieColors = []string{"green", "blue", "yellow", "magenta", "cyan", "orange", "purple", "teal"}

// one glyph per booster category, cycled in first-appearance order
var categoryGlyphs = []rune{'●', '■', '▲', '◆', '★', '✚', '✖', '◉'}

// RenderPie draws a success summary as labelled horizontal bars
func RenderPie(summary query.SuccessSummary) string {
	content := pools.Pools.GetBuilder()
	defer pools.Pools.ReturnBuilder(content)

	content.WriteString(fmt.Sprintf("[white::b]%s[white::-]\n\n", tview.Escape(summary.Title)))

	total := summary.Total()
	labelWidth := 0
	for _, sl := range summary.Slices {
		if len(sl.Label) > labelWidth {
			labelWidth = len(sl.Label)
		}
	}

	for i, sl := range summary.Slices {
		share := 0.0
		if total > 0 {
			share = float64(sl.Value) / float64(total)
		}
		filled := int(math.Round(share * barWidth))
		color := pieColors[i%len(pieColors)]

		content.WriteString(fmt.Sprintf("%-*s [%s]%s[dim]%s[white] %d (%.1f%%)\n",
			labelWidth, tview.Escape(sl.Label),
			color, strings.Repeat("█", filled),
			strings.Repeat("░", barWidth-filled),
			sl.Value, share*100))
	}

	if total == 0 {
		content.WriteString("\n[yellow]No launches match this selection[white]\n")
	}
	content.WriteString(fmt.Sprintf("\n[dim]Total:[white] %d\n", total))

	return content.String()
}

// column maps a payload mass onto one of width grid columns spanning
// [lo, hi]. Masses outside the bounds return -1.
func column(mass, lo, hi float64, width int) int {
	if mass < lo || mass > hi {
		return -1
	}
	if hi == lo {
		return 0
	}
	return int(math.Round((mass - lo) / (hi - lo) * float64(width-1)))
}

// scatterGrid places the visible points of series on two rows of width
// cells: index 0 holds class 1 outcomes, index 1 class 0. Each point is
// drawn with the glyph of its booster category; later points overwrite
// earlier ones in the same cell.
func scatterGrid(series query.ScatterSeries, width int) [2]string {
	if width < minGridWidth {
		width = minGridWidth
	}

	glyphs := make(map[string]rune)
	for i, category := range series.Categories() {
		glyphs[category] = categoryGlyphs[i%len(categoryGlyphs)]
	}

	rows := [2][]rune{pools.Pools.GetRuneRow(width), pools.Pools.GetRuneRow(width)}
	defer pools.Pools.ReturnRuneRow(rows[0])
	defer pools.Pools.ReturnRuneRow(rows[1])

	for _, p := range series.Points {
		col := column(p.PayloadMassKg, series.XMin, series.XMax, width)
		if col < 0 {
			continue
		}
		row := 1
		if p.OutcomeClass == 1 {
			row = 0
		}
		rows[row][col] = glyphs[p.BoosterCategory]
	}

	return [2]string{string(rows[0]), string(rows[1])}
}

// RenderScatter draws a scatter series as a character grid clipped to the
// series bounds, with an axis line and a category legend.
func RenderScatter(series query.ScatterSeries, width int) string {
	if width < minGridWidth {
		width = minGridWidth
	}

	content := pools.Pools.GetBuilder()
	defer pools.Pools.ReturnBuilder(content)

	content.WriteString(fmt.Sprintf("[white::b]%s[white::-]\n\n", tview.Escape(series.Title)))

	grid := scatterGrid(series, width)
	content.WriteString(fmt.Sprintf("class 1 │[green]%s[white]│\n", grid[0]))
	content.WriteString(fmt.Sprintf("class 0 │[red]%s[white]│\n", grid[1]))
	content.WriteString(fmt.Sprintf("        └%s┘\n", strings.Repeat("─", width)))

	lo := fmt.Sprintf("%.0f", series.XMin)
	hi := fmt.Sprintf("%.0f kg", series.XMax)
	gap := width + 2 - len(lo) - len(hi)
	if gap < 1 {
		gap = 1
	}
	content.WriteString(fmt.Sprintf("        %s%s%s\n\n", lo, strings.Repeat(" ", gap), hi))

	categories := series.Categories()
	if len(categories) == 0 {
		content.WriteString("[yellow]No launches match this selection[white]\n")
		return content.String()
	}

	content.WriteString("[dim]Booster Version Category:[white] ")
	for i, category := range categories {
		if i > 0 {
			content.WriteString("  ")
		}
		content.WriteString(fmt.Sprintf("%c %s", categoryGlyphs[i%len(categoryGlyphs)], tview.Escape(category)))
	}
	content.WriteString(fmt.Sprintf("\n[dim]Points shown:[white] %d of %d\n", len(series.Visible()), len(series.Points)))

	return content.String()
}
