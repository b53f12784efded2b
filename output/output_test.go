package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ChristianF88/launchdash/dataset"
	"github.com/ChristianF88/launchdash/query"
	"github.com/ChristianF88/launchdash/testutil"
)

func scenario(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Read(strings.NewReader(testutil.ScenarioCSV), dataset.Columns{})
	if err != nil {
		t.Fatalf("Failed to read scenario dataset: %v", err)
	}
	return ds
}

type chartOption struct {
	Series []struct {
		Name string            `json:"name"`
		Type string            `json:"type"`
		Data []json.RawMessage `json:"data"`
	} `json:"series"`
}

func decodeOption(t *testing.T, spec query.ChartSpec) (chartOption, string) {
	t.Helper()

	opt, err := ChartOptions(spec)
	if err != nil {
		t.Fatalf("ChartOptions() error: %v", err)
	}
	raw, err := json.Marshal(opt)
	if err != nil {
		t.Fatalf("Marshal option error: %v", err)
	}
	var decoded chartOption
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal option error: %v", err)
	}
	return decoded, string(raw)
}

func TestChartOptions_Pie(t *testing.T) {
	ds := scenario(t)

	opt, raw := decodeOption(t, query.DeriveSuccessSummary(ds, "CCAFS"))
	if len(opt.Series) != 1 {
		t.Fatalf("len(Series) = %d, want 1", len(opt.Series))
	}
	if opt.Series[0].Type != "pie" {
		t.Errorf("Series type = %q, want pie", opt.Series[0].Type)
	}
	if len(opt.Series[0].Data) != 2 {
		t.Errorf("len(Data) = %d, want 2", len(opt.Series[0].Data))
	}
	for _, want := range []string{"Successes and Failures for CCAFS", `"Failures"`, `"Successes"`} {
		if !strings.Contains(raw, want) {
			t.Errorf("Option JSON does not contain %s", want)
		}
	}
}

func TestChartOptions_ScatterSplitsByCategory(t *testing.T) {
	ds := scenario(t)

	opt, raw := decodeOption(t, query.DeriveScatterSeries(ds, query.AllSites, query.PayloadRange{Min: 0, Max: 4000}))
	if len(opt.Series) != 3 {
		t.Fatalf("len(Series) = %d, want one per booster category (3)", len(opt.Series))
	}

	wantNames := []string{"v1.0", "v1.1", "FT"}
	wantPoints := []int{1, 1, 2}
	for i, s := range opt.Series {
		if s.Type != "scatter" {
			t.Errorf("Series[%d] type = %q, want scatter", i, s.Type)
		}
		if s.Name != wantNames[i] {
			t.Errorf("Series[%d] name = %q, want %q", i, s.Name, wantNames[i])
		}
		if len(s.Data) != wantPoints[i] {
			t.Errorf("Series[%d] has %d points, want %d", i, len(s.Data), wantPoints[i])
		}
	}
	if !strings.Contains(raw, `"max":4000`) {
		t.Errorf("Option JSON does not clip the x-axis at 4000: %s", raw)
	}
}

func TestChartOptions_Unsupported(t *testing.T) {
	if _, err := ChartOptions(nil); err == nil {
		t.Error("Expected error for nil spec")
	}
}

func TestRenderDashboard(t *testing.T) {
	ds := scenario(t)
	path := filepath.Join(t.TempDir(), "dashboard.html")

	err := RenderDashboard(path, "Launch Records",
		query.DeriveSuccessSummary(ds, query.AllSites),
		query.DeriveScatterSeries(ds, query.AllSites, query.DefaultPayloadRange()))
	if err != nil {
		t.Fatalf("RenderDashboard() error: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	html := string(content)
	for _, want := range []string{PieChartID, ScatterChartID, "Successes per Launch Site", "Launch Records"} {
		if !strings.Contains(html, want) {
			t.Errorf("Dashboard HTML does not contain %q", want)
		}
	}

	decls := scriptDecl.FindAllStringSubmatch(html, -1)
	if len(decls) == 0 {
		t.Fatal("Dashboard HTML declares no chart variables")
	}
	for _, d := range decls {
		if !jsIdentifier.MatchString(d[1]) {
			t.Errorf("Chart variable %q is not a valid JavaScript identifier", d[1])
		}
		if strings.TrimSpace(d[2]) == "" || strings.HasPrefix(strings.TrimSpace(d[2]), ";") {
			t.Errorf("Chart variable %q has no initializer", d[1])
		}
	}
}

var (
	scriptDecl   = regexp.MustCompile(`let\s+([^\s=]+)\s*=([^\n]*)`)
	jsIdentifier = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)
)

func TestRenderDashboard_BadPath(t *testing.T) {
	ds := scenario(t)
	path := filepath.Join(t.TempDir(), "missing", "dashboard.html")

	err := RenderDashboard(path, "x", query.DeriveSuccessSummary(ds, query.AllSites), query.ScatterSeries{})
	if err == nil {
		t.Error("Expected error for a path in a missing directory")
	}
}

func TestReport_ToJSON_RoundTrip(t *testing.T) {
	ds := scenario(t)
	start := time.Now()

	out := NewReport("summary", "1.2.3", start)
	out.SetDataset("launches.csv", ds)
	out.Selection = query.Selection{Site: "CCAFS", Payload: query.PayloadRange{Min: 0, Max: 1000}}
	out.SetSummary(query.DeriveSuccessSummary(ds, "CCAFS"))
	out.SetScatter(query.DeriveScatterSeries(ds, "CCAFS", out.Selection.Payload))
	out.AddWarning("selection", "payload range was reversed", 1)

	data, err := out.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error: %v", err)
	}

	var restored Report
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	if restored.Metadata.ReportType != "summary" {
		t.Errorf("ReportType = %q, want %q", restored.Metadata.ReportType, "summary")
	}
	if restored.Metadata.Version != "1.2.3" {
		t.Errorf("Version = %q, want %q", restored.Metadata.Version, "1.2.3")
	}
	if restored.Dataset.Records != 4 || restored.Dataset.Successes != 3 {
		t.Errorf("Dataset = %+v, want 4 records and 3 successes", restored.Dataset)
	}
	if restored.Selection.Site != "CCAFS" {
		t.Errorf("Selection.Site = %q, want CCAFS", restored.Selection.Site)
	}
	if restored.Summary.Total != 3 || len(restored.Summary.Slices) != 2 {
		t.Fatalf("Summary = %+v, want 2 slices totalling 3", restored.Summary)
	}
	if got := restored.Summary.Slices[1].Percentage; got < 66.6 || got > 66.7 {
		t.Errorf("Successes percentage = %v, want ~66.67", got)
	}
	if restored.Scatter.TotalPoints != 3 || len(restored.Scatter.Visible) != 1 {
		t.Errorf("Scatter = %d total / %d visible, want 3 / 1", restored.Scatter.TotalPoints, len(restored.Scatter.Visible))
	}
	if len(restored.Warnings) != 1 || restored.Warnings[0].Count != 1 {
		t.Errorf("Warnings = %+v, want one warning with count 1", restored.Warnings)
	}

	compact, err := out.ToCompactJSON()
	if err != nil {
		t.Fatalf("ToCompactJSON() error: %v", err)
	}
	if bytes.Contains(compact, []byte("\n")) {
		t.Error("Compact JSON contains newlines")
	}
}

func TestReport_SetSummary_ZeroTotal(t *testing.T) {
	out := NewReport("summary", "dev", time.Now())
	out.SetSummary(query.DeriveSuccessSummary(scenario(t), "UNKNOWN_SITE"))

	for _, sl := range out.Summary.Slices {
		if sl.Value != 0 || sl.Percentage != 0 {
			t.Errorf("Slice %s = %d (%v%%), want 0 (0%%)", sl.Label, sl.Value, sl.Percentage)
		}
	}
}

func TestReport_WritePlain(t *testing.T) {
	ds := scenario(t)
	out := NewReport("summary", "dev", time.Now())
	out.SetDataset("", ds)
	out.Selection = query.DefaultSelection()
	out.SetSummary(query.DeriveSuccessSummary(ds, query.AllSites))
	out.SetScatter(query.DeriveScatterSeries(ds, query.AllSites, query.DefaultPayloadRange()))
	out.AddError("render", "pie renderer failed", 1)

	var buf bytes.Buffer
	out.WritePlain(&buf)
	text := buf.String()

	for _, want := range []string{"All Sites", "SUCCESSES PER LAUNCH SITE", "CCAFS", "Visible Points:  4 of 4", "pie renderer failed"} {
		if !strings.Contains(text, want) {
			t.Errorf("Plain output does not contain %q:\n%s", want, text)
		}
	}
}

func TestReport_AddWarning_Concurrent(t *testing.T) {
	out := NewReport("summary", "dev", time.Now())

	const goroutines = 10
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			out.AddWarning("concurrent", fmt.Sprintf("warning from goroutine %d", id), id)
		}(i)
	}
	wg.Wait()

	if len(out.Warnings) != goroutines {
		t.Errorf("len(Warnings) = %d, want %d", len(out.Warnings), goroutines)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		input int
		want  string
	}{
		{0, "0"},
		{1, "1"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4500, "-4,500"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.input), func(t *testing.T) {
			got := FormatNumber(tt.input)
			if got != tt.want {
				t.Errorf("FormatNumber(%d) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func BenchmarkChartOptions(b *testing.B) {
	records := make([]dataset.LaunchRecord, 0, 2000)
	for i := 0; i < 2000; i++ {
		records = append(records, dataset.LaunchRecord{
			Site:            fmt.Sprintf("SITE-%d", i%4),
			PayloadMassKg:   float64(i * 5),
			OutcomeClass:    i % 2,
			BoosterCategory: fmt.Sprintf("B%d", i%5),
		})
	}
	ds, err := dataset.New(records)
	if err != nil {
		b.Fatalf("New failed: %v", err)
	}
	series := query.DeriveScatterSeries(ds, query.AllSites, query.DefaultPayloadRange())

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ChartOptions(series)
	}
}
