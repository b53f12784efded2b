package query

import (
	"sort"

	"github.com/ChristianF88/launchdash/dataset"
)

// AllSites is the dropdown value that selects every launch site
const AllSites = dataset.ReservedSite

const (
	FailuresLabel  = "Failures"
	SuccessesLabel = "Successes"

	allSitesSummaryTitle = "Successes per Launch Site"
	scatterTitle         = "Success/Failure for Different Payload Masses and Booster Versions"
)

// Default payload slider configuration
const (
	DefaultPayloadMin  = 0
	DefaultPayloadMax  = 10000
	DefaultPayloadStep = 1000
)

// ChartKind identifies which chart a ChartSpec is rendered as
type ChartKind string

const (
	PieKind     ChartKind = "pie"
	ScatterKind ChartKind = "scatter"
)

// ChartSpec is chart-ready data handed to a rendering collaborator
type ChartSpec interface {
	Kind() ChartKind
	ChartTitle() string
}

// PayloadRange is an inclusive payload mass interval in kilograms
type PayloadRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DefaultPayloadRange spans the whole slider
func DefaultPayloadRange() PayloadRange {
	return PayloadRange{Min: DefaultPayloadMin, Max: DefaultPayloadMax}
}

// Normalize swaps reversed bounds so that Min <= Max
func (r PayloadRange) Normalize() PayloadRange {
	if r.Min > r.Max {
		return PayloadRange{Min: r.Max, Max: r.Min}
	}
	return r
}

// Contains reports whether mass lies inside the normalized range
func (r PayloadRange) Contains(mass float64) bool {
	n := r.Normalize()
	return mass >= n.Min && mass <= n.Max
}

// Selection holds the current dropdown and slider values
type Selection struct {
	Site    string       `json:"site"`
	Payload PayloadRange `json:"payload"`
}

// DefaultSelection is the initial state of the dashboard widgets
func DefaultSelection() Selection {
	return Selection{Site: AllSites, Payload: DefaultPayloadRange()}
}

// Slice is one labelled wedge of the success pie
type Slice struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// SuccessSummary is the categorical distribution shown by the pie chart
type SuccessSummary struct {
	Title  string  `json:"title"`
	Site   string  `json:"site"`
	Slices []Slice `json:"slices"`
}

func (s SuccessSummary) Kind() ChartKind    { return PieKind }
func (s SuccessSummary) ChartTitle() string { return s.Title }

// Total is the sum of all slice values
func (s SuccessSummary) Total() int {
	total := 0
	for _, sl := range s.Slices {
		total += sl.Value
	}
	return total
}

// Value returns the value of the slice with the given label
func (s SuccessSummary) Value(label string) (int, bool) {
	for _, sl := range s.Slices {
		if sl.Label == label {
			return sl.Value, true
		}
	}
	return 0, false
}

// Point is one launch in the payload scatter plot
type Point struct {
	PayloadMassKg   float64 `json:"x"`
	OutcomeClass    int     `json:"y"`
	BoosterCategory string  `json:"category"`
}

// ScatterSeries holds every launch of the selected site. The payload range
// only sets the x-axis bounds; renderers show the points within them.
type ScatterSeries struct {
	Title  string  `json:"title"`
	Site   string  `json:"site"`
	Points []Point `json:"points"`
	XMin   float64 `json:"x_min"`
	XMax   float64 `json:"x_max"`
}

func (s ScatterSeries) Kind() ChartKind    { return ScatterKind }
func (s ScatterSeries) ChartTitle() string { return s.Title }

// Bounds returns the x-axis range
func (s ScatterSeries) Bounds() PayloadRange {
	return PayloadRange{Min: s.XMin, Max: s.XMax}
}

// Visible returns the points inside the x-axis bounds, in series order
func (s ScatterSeries) Visible() []Point {
	bounds := s.Bounds()
	visible := make([]Point, 0, len(s.Points))
	for _, p := range s.Points {
		if bounds.Contains(p.PayloadMassKg) {
			visible = append(visible, p)
		}
	}
	return visible
}

// Categories returns the distinct booster categories in order of first
// appearance
func (s ScatterSeries) Categories() []string {
	seen := make(map[string]struct{})
	var categories []string
	for _, p := range s.Points {
		if _, ok := seen[p.BoosterCategory]; ok {
			continue
		}
		seen[p.BoosterCategory] = struct{}{}
		categories = append(categories, p.BoosterCategory)
	}
	return categories
}

// WithBounds returns a copy of the series clipped to r
func (s ScatterSeries) WithBounds(r PayloadRange) ScatterSeries {
	r = r.Normalize()
	out := s
	out.Points = make([]Point, len(s.Points))
	copy(out.Points, s.Points)
	out.XMin, out.XMax = r.Min, r.Max
	return out
}

// DeriveSuccessSummary computes the pie chart for site. For AllSites it
// returns successes per site, ordered by site name. For a concrete site it
// returns exactly two slices, Failures then Successes. Sites without records
// yield zero counts.
func DeriveSuccessSummary(ds *dataset.Dataset, site string) SuccessSummary {
	if site == AllSites {
		perSite := make(map[string]int)
		ds.Each(func(r dataset.LaunchRecord) bool {
			perSite[r.Site] += r.OutcomeClass
			return true
		})

		sites := make([]string, 0, len(perSite))
		for s := range perSite {
			sites = append(sites, s)
		}
		sort.Strings(sites)

		slices := make([]Slice, 0, len(sites))
		for _, s := range sites {
			slices = append(slices, Slice{Label: s, Value: perSite[s]})
		}
		return SuccessSummary{Title: allSitesSummaryTitle, Site: site, Slices: slices}
	}

	// indexed by outcome class
	var counts [2]int
	ds.Each(func(r dataset.LaunchRecord) bool {
		if r.Site == site {
			counts[r.OutcomeClass]++
		}
		return true
	})

	return SuccessSummary{
		Title: "Successes and Failures for " + site,
		Site:  site,
		Slices: []Slice{
			{Label: FailuresLabel, Value: counts[0]},
			{Label: SuccessesLabel, Value: counts[1]},
		},
	}
}

// DeriveScatterSeries computes the payload scatter for site with the x-axis
// clipped to rng. Reversed ranges are normalized.
func DeriveScatterSeries(ds *dataset.Dataset, site string, rng PayloadRange) ScatterSeries {
	rng = rng.Normalize()

	title := scatterTitle
	if site != AllSites {
		title += " for " + site
	}

	points := make([]Point, 0, ds.Len())
	ds.Each(func(r dataset.LaunchRecord) bool {
		if site == AllSites || r.Site == site {
			points = append(points, Point{
				PayloadMassKg:   r.PayloadMassKg,
				OutcomeClass:    r.OutcomeClass,
				BoosterCategory: r.BoosterCategory,
			})
		}
		return true
	})

	return ScatterSeries{
		Title:  title,
		Site:   site,
		Points: points,
		XMin:   rng.Min,
		XMax:   rng.Max,
	}
}
