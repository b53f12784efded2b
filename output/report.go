package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/ChristianF88/launchdash/dataset"
	"github.com/ChristianF88/launchdash/query"
)

// Report is the machine-readable result of the summary command
type Report struct {
	Metadata  Metadata        `json:"metadata"`
	Dataset   DatasetStats    `json:"dataset"`
	Selection query.Selection `json:"selection"`
	Summary   SummaryResult   `json:"summary"`
	Scatter   ScatterResult   `json:"scatter"`
	Warnings  []Warning       `json:"warnings"`
	Errors    []Error         `json:"errors"`

	// Mutex for thread-safe warning/error appending
	mu sync.Mutex `json:"-"`
}

// Metadata contains information about the run
type Metadata struct {
	GeneratedAt time.Time `json:"generated_at"`
	ReportType  string    `json:"report_type"`
	Version     string    `json:"version"`
	DurationMS  int64     `json:"duration_ms"`
}

// DatasetStats describes the loaded table
type DatasetStats struct {
	File       string   `json:"file,omitempty"`
	Records    int      `json:"records"`
	Sites      []string `json:"sites"`
	Successes  int      `json:"successes"`
	PayloadMin float64  `json:"payload_min_kg"`
	PayloadMax float64  `json:"payload_max_kg"`
}

// SummaryResult is the pie chart data
type SummaryResult struct {
	Title  string        `json:"title"`
	Slices []SliceResult `json:"slices"`
	Total  int           `json:"total"`
}

// SliceResult is one pie slice with its share of the total
type SliceResult struct {
	Label      string  `json:"label"`
	Value      int     `json:"value"`
	Percentage float64 `json:"percentage"`
}

// ScatterResult is the scatter chart data reduced to the visible points
type ScatterResult struct {
	Title       string        `json:"title"`
	XMin        float64       `json:"x_min"`
	XMax        float64       `json:"x_max"`
	TotalPoints int           `json:"total_points"`
	Visible     []query.Point `json:"visible"`
	Categories  []string      `json:"categories"`
}

// Warning represents a warning message
type Warning struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// Error represents an error message
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// NewReport creates a report with default metadata
func NewReport(reportType, version string, startTime time.Time) *Report {
	return &Report{
		Metadata: Metadata{
			GeneratedAt: time.Now().UTC(),
			ReportType:  reportType,
			Version:     version,
			DurationMS:  time.Since(startTime).Milliseconds(),
		},
		Warnings: []Warning{},
		Errors:   []Error{},
	}
}

// SetDataset fills the dataset section
func (r *Report) SetDataset(file string, ds *dataset.Dataset) {
	min, max := ds.PayloadBounds()
	r.Dataset = DatasetStats{
		File:       file,
		Records:    ds.Len(),
		Sites:      ds.Sites(),
		Successes:  ds.Successes(),
		PayloadMin: min,
		PayloadMax: max,
	}
}

// SetSummary fills the summary section, computing slice percentages
func (r *Report) SetSummary(s query.SuccessSummary) {
	total := s.Total()
	result := SummaryResult{
		Title:  s.Title,
		Slices: make([]SliceResult, 0, len(s.Slices)),
		Total:  total,
	}
	for _, sl := range s.Slices {
		pct := 0.0
		if total > 0 {
			pct = float64(sl.Value) / float64(total) * 100
		}
		result.Slices = append(result.Slices, SliceResult{Label: sl.Label, Value: sl.Value, Percentage: pct})
	}
	r.Summary = result
}

// SetScatter fills the scatter section with the points inside the axis
func (r *Report) SetScatter(s query.ScatterSeries) {
	r.Scatter = ScatterResult{
		Title:       s.Title,
		XMin:        s.XMin,
		XMax:        s.XMax,
		TotalPoints: len(s.Points),
		Visible:     s.Visible(),
		Categories:  s.Categories(),
	}
}

// ToJSON converts the report to pretty-printed JSON
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// ToCompactJSON converts the report to compact JSON
func (r *Report) ToCompactJSON() ([]byte, error) {
	return json.Marshal(r)
}

// AddWarning adds a warning to the report (thread-safe)
func (r *Report) AddWarning(warningType, message string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Warnings = append(r.Warnings, Warning{
		Type:    warningType,
		Message: message,
		Count:   count,
	})
}

// AddError adds an error to the report (thread-safe)
func (r *Report) AddError(errorType, message string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, Error{
		Type:    errorType,
		Message: message,
		Count:   count,
	})
}

// UpdateDuration updates the duration in metadata
func (r *Report) UpdateDuration(startTime time.Time) {
	r.Metadata.DurationMS = time.Since(startTime).Milliseconds()
}

const (
	heavyRule = "═══════════════════════════════════════════════════════════════════════════════"
	lightRule = "───────────────────────────────────────────────────────────────────────────────"
)

// WritePlain formats the report as human-readable text
func (r *Report) WritePlain(w io.Writer) {
	fmt.Fprintln(w, heavyRule)
	fmt.Fprintln(w, "                         Launch Records Dashboard Summary")
	fmt.Fprintln(w, heavyRule)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "DATASET")
	fmt.Fprintln(w, lightRule)
	if r.Dataset.File != "" {
		fmt.Fprintf(w, "File:            %s\n", r.Dataset.File)
	}
	fmt.Fprintf(w, "Records:         %s\n", FormatNumber(r.Dataset.Records))
	fmt.Fprintf(w, "Successes:       %s\n", FormatNumber(r.Dataset.Successes))
	fmt.Fprintf(w, "Sites:           %s\n", strings.Join(r.Dataset.Sites, ", "))
	fmt.Fprintf(w, "Payload Range:   %.0f - %.0f kg\n", r.Dataset.PayloadMin, r.Dataset.PayloadMax)
	fmt.Fprintf(w, "Generated:       %s\n", r.Metadata.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintln(w)

	site := r.Selection.Site
	if site == query.AllSites {
		site = "All Sites"
	}
	fmt.Fprintln(w, "SELECTION")
	fmt.Fprintln(w, lightRule)
	fmt.Fprintf(w, "Site:            %s\n", site)
	fmt.Fprintf(w, "Payload:         %.0f - %.0f kg\n", r.Selection.Payload.Min, r.Selection.Payload.Max)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s\n", strings.ToUpper(r.Summary.Title))
	fmt.Fprintln(w, lightRule)
	for _, sl := range r.Summary.Slices {
		fmt.Fprintf(w, "  %-20s  %8s  (%6.2f%%)\n", sl.Label, FormatNumber(sl.Value), sl.Percentage)
	}
	fmt.Fprintf(w, "  %-20s  %8s\n", "Total", FormatNumber(r.Summary.Total))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s\n", strings.ToUpper(r.Scatter.Title))
	fmt.Fprintln(w, lightRule)
	fmt.Fprintf(w, "Visible Points:  %d of %d\n", len(r.Scatter.Visible), r.Scatter.TotalPoints)
	for _, p := range r.Scatter.Visible {
		outcome := query.FailuresLabel
		if p.OutcomeClass == 1 {
			outcome = query.SuccessesLabel
		}
		fmt.Fprintf(w, "  %10.1f kg  %-10s  %s\n", p.PayloadMassKg, outcome, p.BoosterCategory)
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 || len(r.Errors) > 0 {
		fmt.Fprintln(w, "DIAGNOSTICS")
		fmt.Fprintln(w, lightRule)
		for _, warning := range r.Warnings {
			if warning.Type != "info" {
				fmt.Fprintf(w, "  • %s\n", warning.Message)
			}
		}
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  • %s\n", e.Message)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, heavyRule)
}

// FormatNumber adds thousand separators to numbers
func FormatNumber(n int) string {
	str := fmt.Sprintf("%d", n)
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	if len(str) <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}
	return result.String()
}
