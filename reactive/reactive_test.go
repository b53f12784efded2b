package reactive

import (
	"errors"
	"strings"
	"testing"

	"github.com/ChristianF88/launchdash/dataset"
	"github.com/ChristianF88/launchdash/query"
	"github.com/ChristianF88/launchdash/testutil"
	"github.com/google/go-cmp/cmp"
)

// recorder keeps every spec handed to it
type recorder struct {
	specs []query.ChartSpec
}

func (r *recorder) Render(spec query.ChartSpec) error {
	r.specs = append(r.specs, spec)
	return nil
}

func (r *recorder) last() query.ChartSpec {
	if len(r.specs) == 0 {
		return nil
	}
	return r.specs[len(r.specs)-1]
}

func newDashboard(t *testing.T) (*Dispatcher, *recorder, *recorder) {
	t.Helper()

	ds, err := dataset.Read(strings.NewReader(testutil.ScenarioCSV), dataset.Columns{})
	if err != nil {
		t.Fatalf("Failed to read scenario dataset: %v", err)
	}

	d := NewDispatcher(DashboardTable(query.NewCache(ds)), query.DefaultSelection())
	pie, scatter := &recorder{}, &recorder{}
	if err := d.Bind(PieCell, pie); err != nil {
		t.Fatalf("Bind pie failed: %v", err)
	}
	if err := d.Bind(ScatterCell, scatter); err != nil {
		t.Fatalf("Bind scatter failed: %v", err)
	}
	return d, pie, scatter
}

func TestDashboardTable_Dependencies(t *testing.T) {
	table := DashboardTable(query.Direct{})

	ids := func(cells []Cell) []CellID {
		var out []CellID
		for _, c := range cells {
			out = append(out, c.ID)
		}
		return out
	}

	if diff := cmp.Diff([]CellID{PieCell, ScatterCell}, ids(table.Affected(SiteInput))); diff != "" {
		t.Errorf("Site dependents mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]CellID{ScatterCell}, ids(table.Affected(PayloadInput))); diff != "" {
		t.Errorf("Payload dependents mismatch (-want +got):\n%s", diff)
	}
	if len(table.Affected("nope")) != 0 {
		t.Error("Expected no dependents for an unknown input")
	}
	if diff := cmp.Diff([]InputID{SiteInput, PayloadInput}, table.Inputs()); diff != "" {
		t.Errorf("Inputs mismatch (-want +got):\n%s", diff)
	}
	if _, err := table.Cell("nope"); !errors.Is(err, ErrUnknownCell) {
		t.Errorf("Expected ErrUnknownCell, got %v", err)
	}
}

func TestDispatcher_Refresh(t *testing.T) {
	d, pie, scatter := newDashboard(t)

	if err := d.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if len(pie.specs) != 1 || len(scatter.specs) != 1 {
		t.Fatalf("Expected one render per cell, got pie=%d scatter=%d", len(pie.specs), len(scatter.specs))
	}

	summary := pie.last().(query.SuccessSummary)
	if diff := cmp.Diff([]query.Slice{{Label: "CCAFS", Value: 2}, {Label: "KSC", Value: 1}}, summary.Slices); diff != "" {
		t.Errorf("Initial pie mismatch (-want +got):\n%s", diff)
	}
	series := scatter.last().(query.ScatterSeries)
	if len(series.Visible()) != 4 {
		t.Errorf("Expected 4 visible points initially, got %d", len(series.Visible()))
	}
}

func TestDispatcher_SiteChangeTriggersBothCells(t *testing.T) {
	d, pie, scatter := newDashboard(t)

	if err := d.SetSite("CCAFS"); err != nil {
		t.Fatalf("SetSite failed: %v", err)
	}
	if len(pie.specs) != 1 || len(scatter.specs) != 1 {
		t.Fatalf("Expected both cells to render once, got pie=%d scatter=%d", len(pie.specs), len(scatter.specs))
	}

	summary := pie.last().(query.SuccessSummary)
	if diff := cmp.Diff([]query.Slice{{Label: query.FailuresLabel, Value: 1}, {Label: query.SuccessesLabel, Value: 2}}, summary.Slices); diff != "" {
		t.Errorf("Pie mismatch (-want +got):\n%s", diff)
	}
	if got := len(scatter.last().(query.ScatterSeries).Visible()); got != 3 {
		t.Errorf("Expected 3 visible CCAFS points, got %d", got)
	}
}

func TestDispatcher_PayloadChangeTriggersScatterOnly(t *testing.T) {
	d, pie, scatter := newDashboard(t)

	if err := d.SetSite("CCAFS"); err != nil {
		t.Fatalf("SetSite failed: %v", err)
	}
	if err := d.Set(PayloadInput, [2]float64{0, 1000}); err != nil {
		t.Fatalf("Set payload failed: %v", err)
	}

	if len(pie.specs) != 1 {
		t.Errorf("Pie must not re-render on payload change, rendered %d times", len(pie.specs))
	}
	if len(scatter.specs) != 2 {
		t.Fatalf("Expected scatter to render twice, got %d", len(scatter.specs))
	}

	series := scatter.last().(query.ScatterSeries)
	want := []query.Point{{PayloadMassKg: 500, OutcomeClass: 1, BoosterCategory: "v1.0"}}
	if diff := cmp.Diff(want, series.Visible()); diff != "" {
		t.Errorf("Visible points mismatch (-want +got):\n%s", diff)
	}
	if series.XMin != 0 || series.XMax != 1000 {
		t.Errorf("Expected axis [0, 1000], got [%v, %v]", series.XMin, series.XMax)
	}
}

func TestDispatcher_ReversedPayloadIsNormalized(t *testing.T) {
	d, _, scatter := newDashboard(t)

	if err := d.SetPayloadRange(query.PayloadRange{Min: 9500, Max: 2000}); err != nil {
		t.Fatalf("SetPayloadRange failed: %v", err)
	}
	if got := d.Selection().Payload; got.Min != 2000 || got.Max != 9500 {
		t.Errorf("Expected normalized selection [2000, 9500], got %v", got)
	}
	if got := len(scatter.last().(query.ScatterSeries).Visible()); got != 2 {
		t.Errorf("Expected 2 visible points in [2000, 9500], got %d", got)
	}
}

func TestDispatcher_UnknownSiteIsEmpty(t *testing.T) {
	d, pie, scatter := newDashboard(t)

	if err := d.SetSite("UNKNOWN_SITE"); err != nil {
		t.Fatalf("Unknown site must not be an error, got %v", err)
	}
	summary := pie.last().(query.SuccessSummary)
	if summary.Total() != 0 || len(summary.Slices) != 2 {
		t.Errorf("Expected zero Failures/Successes, got %v", summary.Slices)
	}
	if n := len(scatter.last().(query.ScatterSeries).Points); n != 0 {
		t.Errorf("Expected empty scatter, got %d points", n)
	}
}

func TestDispatcher_InputErrors(t *testing.T) {
	d, pie, scatter := newDashboard(t)

	if err := d.Set("colour-picker", "red"); !errors.Is(err, ErrUnknownInput) {
		t.Errorf("Expected ErrUnknownInput, got %v", err)
	}
	if err := d.Set(SiteInput, 42); !errors.Is(err, ErrInputType) {
		t.Errorf("Expected ErrInputType for site, got %v", err)
	}
	if err := d.Set(PayloadInput, "0-1000"); !errors.Is(err, ErrInputType) {
		t.Errorf("Expected ErrInputType for payload, got %v", err)
	}
	if len(pie.specs)+len(scatter.specs) != 0 {
		t.Error("Rejected inputs must not trigger renders")
	}
	if d.Selection() != query.DefaultSelection() {
		t.Errorf("Rejected inputs must not change the selection, got %v", d.Selection())
	}
	if err := d.Bind("nope", &recorder{}); !errors.Is(err, ErrUnknownCell) {
		t.Errorf("Expected ErrUnknownCell, got %v", err)
	}
}

func TestDispatcher_RendererErrorsAreJoined(t *testing.T) {
	d, _, scatter := newDashboard(t)
	boom := errors.New("boom")
	if err := d.Bind(PieCell, RendererFunc(func(query.ChartSpec) error { return boom })); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	err := d.SetSite("KSC")
	if !errors.Is(err, boom) {
		t.Fatalf("Expected renderer error, got %v", err)
	}
	if len(scatter.specs) != 1 {
		t.Errorf("A failing renderer must not stop other cells, scatter rendered %d times", len(scatter.specs))
	}
}

func TestTable_Evaluate(t *testing.T) {
	ds, err := dataset.Read(strings.NewReader(testutil.ScenarioCSV), dataset.Columns{})
	if err != nil {
		t.Fatalf("Failed to read scenario dataset: %v", err)
	}
	table := DashboardTable(query.Direct{Dataset: ds})

	specs := table.Evaluate(query.Selection{Site: "CCAFS", Payload: query.PayloadRange{Min: 1000, Max: 0}}, table.Affected(PayloadInput)...)
	if len(specs) != 1 {
		t.Fatalf("Expected only the scatter cell, got %d specs", len(specs))
	}
	series, ok := specs[ScatterCell].(query.ScatterSeries)
	if !ok {
		t.Fatalf("Expected scatter series, got %T", specs[ScatterCell])
	}
	if len(series.Visible()) != 1 {
		t.Errorf("Expected 1 visible point, got %d", len(series.Visible()))
	}

	if all := table.Evaluate(query.DefaultSelection()); len(all) != 2 {
		t.Errorf("Expected every cell to be evaluated, got %d", len(all))
	}
}
