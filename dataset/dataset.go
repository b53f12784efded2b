package dataset

import (
	"errors"
	"fmt"
	"math"
)

// ReservedSite is the selection value meaning every site. No record may
// carry it as its own site name.
const ReservedSite = "ALL"

var (
	ErrEmptyDataset   = errors.New("dataset contains no records")
	ErrInvalidRecord  = errors.New("invalid launch record")
	ErrMissingColumn  = errors.New("missing column")
	ErrMalformedValue = errors.New("malformed value")
)

// LaunchRecord is one observed launch attempt
type LaunchRecord struct {
	Site            string  `json:"site"`
	PayloadMassKg   float64 `json:"payload_mass_kg"`
	OutcomeClass    int     `json:"class"`
	BoosterCategory string  `json:"booster_category"`
}

// Success reports whether the launch landed successfully
func (r LaunchRecord) Success() bool {
	return r.OutcomeClass == 1
}

// RecordError points at the offending row of a dataset
type RecordError struct {
	Row    int
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

func (e *RecordError) Unwrap() error {
	return ErrInvalidRecord
}

// Dataset is an immutable table of launch records. The zero value is an
// empty dataset; use New or Load to build one.
type Dataset struct {
	records []LaunchRecord
	sites   []string
	siteSet map[string]struct{}

	minPayload float64
	maxPayload float64
}

// New validates records and builds a Dataset holding its own copy of them.
func New(records []LaunchRecord) (*Dataset, error) {
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	ds := &Dataset{
		records:    make([]LaunchRecord, len(records)),
		siteSet:    make(map[string]struct{}),
		minPayload: math.Inf(1),
		maxPayload: math.Inf(-1),
	}
	copy(ds.records, records)

	for i, r := range ds.records {
		if err := validateRecord(r); err != nil {
			return nil, &RecordError{Row: i + 1, Reason: err.Error()}
		}
		if _, seen := ds.siteSet[r.Site]; !seen {
			ds.siteSet[r.Site] = struct{}{}
			ds.sites = append(ds.sites, r.Site)
		}
		ds.minPayload = math.Min(ds.minPayload, r.PayloadMassKg)
		ds.maxPayload = math.Max(ds.maxPayload, r.PayloadMassKg)
	}

	return ds, nil
}

func validateRecord(r LaunchRecord) error {
	if r.Site == "" {
		return errors.New("site is empty")
	}
	if r.Site == ReservedSite {
		return fmt.Errorf("site name %q is reserved for the all-sites selection", ReservedSite)
	}
	if r.BoosterCategory == "" {
		return errors.New("booster category is empty")
	}
	if math.IsNaN(r.PayloadMassKg) || math.IsInf(r.PayloadMassKg, 0) || r.PayloadMassKg < 0 {
		return fmt.Errorf("payload mass %v is not a non-negative number", r.PayloadMassKg)
	}
	if r.OutcomeClass != 0 && r.OutcomeClass != 1 {
		return fmt.Errorf("outcome class %d is not 0 or 1", r.OutcomeClass)
	}
	return nil
}

// Len returns the number of records
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Records returns a copy of all records in table order
func (d *Dataset) Records() []LaunchRecord {
	if d == nil {
		return nil
	}
	out := make([]LaunchRecord, len(d.records))
	copy(out, d.records)
	return out
}

// Each calls fn for every record in table order until fn returns false.
// Records are passed by value so fn cannot mutate the table.
func (d *Dataset) Each(fn func(LaunchRecord) bool) {
	if d == nil {
		return
	}
	for _, r := range d.records {
		if !fn(r) {
			return
		}
	}
}

// Sites returns the distinct sites in order of first appearance
func (d *Dataset) Sites() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.sites))
	copy(out, d.sites)
	return out
}

// HasSite reports whether any record belongs to site
func (d *Dataset) HasSite(site string) bool {
	if d == nil {
		return false
	}
	_, ok := d.siteSet[site]
	return ok
}

// PayloadBounds returns the smallest and largest payload mass in the table
func (d *Dataset) PayloadBounds() (min, max float64) {
	if d.Len() == 0 {
		return 0, 0
	}
	return d.minPayload, d.maxPayload
}

// Successes returns the total number of successful launches
func (d *Dataset) Successes() int {
	total := 0
	d.Each(func(r LaunchRecord) bool {
		total += r.OutcomeClass
		return true
	})
	return total
}
