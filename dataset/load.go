package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Default column headers of the launch records export
const (
	DefaultSiteColumn    = "Launch Site"
	DefaultPayloadColumn = "Payload Mass (kg)"
	DefaultOutcomeColumn = "class"
	DefaultBoosterColumn = "Booster Version Category"
)

// Columns maps the logical record fields onto CSV header names
type Columns struct {
	Site    string
	Payload string
	Outcome string
	Booster string
}

// DefaultColumns returns the header names used by the launch records export
func DefaultColumns() Columns {
	return Columns{
		Site:    DefaultSiteColumn,
		Payload: DefaultPayloadColumn,
		Outcome: DefaultOutcomeColumn,
		Booster: DefaultBoosterColumn,
	}
}

// withDefaults fills every empty column name with its default
func (c Columns) withDefaults() Columns {
	def := DefaultColumns()
	if c.Site == "" {
		c.Site = def.Site
	}
	if c.Payload == "" {
		c.Payload = def.Payload
	}
	if c.Outcome == "" {
		c.Outcome = def.Outcome
	}
	if c.Booster == "" {
		c.Booster = def.Booster
	}
	return c
}

// Load reads a CSV file into a Dataset
func Load(path string, cols Columns) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer f.Close()

	ds, err := Read(f, cols)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", path, err)
	}
	return ds, nil
}

// Read parses CSV launch records from r. Extra columns are ignored.
func Read(r io.Reader, cols Columns) (*Dataset, error) {
	cols = cols.withDefaults()

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDataset
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		// Excel exports prepend a BOM to the first header cell
		name = strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")
		index[name] = i
	}

	lookup := func(name string) (int, error) {
		i, ok := index[name]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
		return i, nil
	}

	siteIdx, err := lookup(cols.Site)
	if err != nil {
		return nil, err
	}
	payloadIdx, err := lookup(cols.Payload)
	if err != nil {
		return nil, err
	}
	outcomeIdx, err := lookup(cols.Outcome)
	if err != nil {
		return nil, err
	}
	boosterIdx, err := lookup(cols.Booster)
	if err != nil {
		return nil, err
	}

	var records []LaunchRecord
	row := 0
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", row, err)
		}

		payload, err := strconv.ParseFloat(strings.TrimSpace(fields[payloadIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w: payload %q", row, ErrMalformedValue, fields[payloadIdx])
		}
		outcome, err := parseOutcome(fields[outcomeIdx])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		records = append(records, LaunchRecord{
			Site:            strings.TrimSpace(fields[siteIdx]),
			PayloadMassKg:   payload,
			OutcomeClass:    outcome,
			BoosterCategory: strings.TrimSpace(fields[boosterIdx]),
		})
	}

	return New(records)
}

// parseOutcome accepts "0", "1" and their float spellings ("1.0")
func parseOutcome(s string) (int, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: class %q", ErrMalformedValue, s)
	}
	switch v {
	case 0:
		return 0, nil
	case 1:
		return 1, nil
	}
	return 0, fmt.Errorf("%w: class %q is not 0 or 1", ErrMalformedValue, s)
}
