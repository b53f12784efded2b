package reactive

import (
	"errors"
	"fmt"

	"github.com/ChristianF88/launchdash/query"
)

// Renderer hands a chart spec to a charting collaborator
type Renderer interface {
	Render(spec query.ChartSpec) error
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(spec query.ChartSpec) error

func (f RendererFunc) Render(spec query.ChartSpec) error {
	return f(spec)
}

// Dispatcher interprets a Table for one UI. It keeps the current widget
// values and re-runs exactly the cells that depend on a changed input.
// It is not safe for concurrent use; drive it from the UI event loop.
type Dispatcher struct {
	table     Table
	renderers map[CellID]Renderer
	selection query.Selection
}

// NewDispatcher creates a dispatcher starting from initial
func NewDispatcher(table Table, initial query.Selection) *Dispatcher {
	initial.Payload = initial.Payload.Normalize()
	return &Dispatcher{
		table:     table,
		renderers: make(map[CellID]Renderer),
		selection: initial,
	}
}

// Bind routes the output of cell to r
func (d *Dispatcher) Bind(cell CellID, r Renderer) error {
	if _, err := d.table.Cell(cell); err != nil {
		return err
	}
	d.renderers[cell] = r
	return nil
}

// Selection returns the current widget values
func (d *Dispatcher) Selection() query.Selection {
	return d.selection
}

// Table returns the dependency table being interpreted
func (d *Dispatcher) Table() Table {
	return d.table
}

// Set records a new value for input and re-renders the dependent cells.
// Site values are strings, payload values are query.PayloadRange or
// [2]float64. Reversed payload ranges are normalized.
func (d *Dispatcher) Set(input InputID, value any) error {
	if !d.table.HasInput(input) {
		return fmt.Errorf("%w: %s", ErrUnknownInput, input)
	}

	next := d.selection
	switch input {
	case SiteInput:
		site, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s expects a string, got %T", ErrInputType, input, value)
		}
		next.Site = site
	case PayloadInput:
		switch v := value.(type) {
		case query.PayloadRange:
			next.Payload = v.Normalize()
		case [2]float64:
			next.Payload = query.PayloadRange{Min: v[0], Max: v[1]}.Normalize()
		default:
			return fmt.Errorf("%w: %s expects a payload range, got %T", ErrInputType, input, value)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownInput, input)
	}

	d.selection = next
	return d.run(d.table.Affected(input))
}

// SetSite is Set(SiteInput, site)
func (d *Dispatcher) SetSite(site string) error {
	return d.Set(SiteInput, site)
}

// SetPayloadRange is Set(PayloadInput, rng)
func (d *Dispatcher) SetPayloadRange(rng query.PayloadRange) error {
	return d.Set(PayloadInput, rng)
}

// Refresh evaluates and renders every cell, used for the initial paint
func (d *Dispatcher) Refresh() error {
	return d.run(d.table)
}

func (d *Dispatcher) run(cells []Cell) error {
	var errs []error
	for _, c := range cells {
		r, ok := d.renderers[c.ID]
		if !ok {
			continue
		}
		if err := r.Render(c.Derive(d.selection)); err != nil {
			errs = append(errs, fmt.Errorf("rendering %s: %w", c.ID, err))
		}
	}
	return errors.Join(errs...)
}
