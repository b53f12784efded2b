package reactive

import (
	"errors"
	"fmt"

	"github.com/ChristianF88/launchdash/query"
)

var (
	ErrUnknownInput = errors.New("unknown input")
	ErrUnknownCell  = errors.New("unknown cell")
	ErrInputType    = errors.New("input value has wrong type")
)

// InputID names a widget whose value drives cells
type InputID string

// CellID names a chart output region
type CellID string

const (
	SiteInput    InputID = "site-dropdown"
	PayloadInput InputID = "payload-slider"

	PieCell     CellID = "success-pie-chart"
	ScatterCell CellID = "success-payload-scatter-chart"
)

// Derivation computes a chart spec from the current selection
type Derivation func(sel query.Selection) query.ChartSpec

// Cell is one row of the dependency table
type Cell struct {
	ID     CellID     `json:"cell"`
	Inputs []InputID  `json:"inputs"`
	Derive Derivation `json:"-"`
}

// DependsOn reports whether the cell declared input
func (c Cell) DependsOn(input InputID) bool {
	for _, in := range c.Inputs {
		if in == input {
			return true
		}
	}
	return false
}

// Table is the declarative dependency table, in declaration order
type Table []Cell

// DashboardTable wires the pie chart to the site dropdown and the scatter
// chart to the site dropdown and payload slider.
func DashboardTable(q query.Querier) Table {
	return Table{
		{
			ID:     PieCell,
			Inputs: []InputID{SiteInput},
			Derive: func(sel query.Selection) query.ChartSpec {
				return q.SuccessSummary(sel.Site)
			},
		},
		{
			ID:     ScatterCell,
			Inputs: []InputID{SiteInput, PayloadInput},
			Derive: func(sel query.Selection) query.ChartSpec {
				return q.ScatterSeries(sel.Site, sel.Payload)
			},
		},
	}
}

// Inputs returns every input referenced by the table
func (t Table) Inputs() []InputID {
	seen := make(map[InputID]struct{})
	var inputs []InputID
	for _, c := range t {
		for _, in := range c.Inputs {
			if _, ok := seen[in]; ok {
				continue
			}
			seen[in] = struct{}{}
			inputs = append(inputs, in)
		}
	}
	return inputs
}

// HasInput reports whether any cell depends on input
func (t Table) HasInput(input InputID) bool {
	for _, c := range t {
		if c.DependsOn(input) {
			return true
		}
	}
	return false
}

// Affected returns the cells that depend on input, in declaration order
func (t Table) Affected(input InputID) []Cell {
	var cells []Cell
	for _, c := range t {
		if c.DependsOn(input) {
			cells = append(cells, c)
		}
	}
	return cells
}

// Cell looks up a cell by id
func (t Table) Cell(id CellID) (Cell, error) {
	for _, c := range t {
		if c.ID == id {
			return c, nil
		}
	}
	return Cell{}, fmt.Errorf("%w: %s", ErrUnknownCell, id)
}

// Evaluate derives the given cells for sel without touching any renderer.
// With no cells every cell of the table is evaluated.
func (t Table) Evaluate(sel query.Selection, cells ...Cell) map[CellID]query.ChartSpec {
	if len(cells) == 0 {
		cells = t
	}
	sel.Payload = sel.Payload.Normalize()

	specs := make(map[CellID]query.ChartSpec, len(cells))
	for _, c := range cells {
		specs[c.ID] = c.Derive(sel)
	}
	return specs
}
