package query

import (
	"github.com/ChristianF88/launchdash/dataset"
	"github.com/alphadose/haxmap"
)

// Querier derives chart specs for a selection
type Querier interface {
	SuccessSummary(site string) SuccessSummary
	ScatterSeries(site string, rng PayloadRange) ScatterSeries
}

// Direct runs every derivation against the dataset
type Direct struct {
	Dataset *dataset.Dataset
}

func (d Direct) SuccessSummary(site string) SuccessSummary {
	return DeriveSuccessSummary(d.Dataset, site)
}

func (d Direct) ScatterSeries(site string, rng PayloadRange) ScatterSeries {
	return DeriveScatterSeries(d.Dataset, site, rng)
}

// Cache memoizes derivations per site. Entries never expire because the
// dataset is immutable. Safe for concurrent use.
type Cache struct {
	ds        *dataset.Dataset
	summaries *haxmap.Map[string, SuccessSummary]
	scatters  *haxmap.Map[string, ScatterSeries]
}

// NewCache creates a cache sized for the sites of ds plus the AllSites entry
func NewCache(ds *dataset.Dataset) *Cache {
	size := uintptr(len(ds.Sites()) + 1)
	return &Cache{
		ds:        ds,
		summaries: haxmap.New[string, SuccessSummary](size),
		scatters:  haxmap.New[string, ScatterSeries](size),
	}
}

// SuccessSummary returns the memoized summary for site
func (c *Cache) SuccessSummary(site string) SuccessSummary {
	if !c.cacheable(site) {
		return DeriveSuccessSummary(c.ds, site)
	}
	summary, _ := c.summaries.GetOrCompute(site, func() SuccessSummary {
		return DeriveSuccessSummary(c.ds, site)
	})
	return cloneSummary(summary)
}

// ScatterSeries returns the memoized series for site re-bounded to rng
func (c *Cache) ScatterSeries(site string, rng PayloadRange) ScatterSeries {
	if !c.cacheable(site) {
		return DeriveScatterSeries(c.ds, site, rng)
	}
	series, _ := c.scatters.GetOrCompute(site, func() ScatterSeries {
		return DeriveScatterSeries(c.ds, site, DefaultPayloadRange())
	})
	return series.WithBounds(rng)
}

// Unknown sites are answered directly so arbitrary request values cannot
// grow the cache.
func (c *Cache) cacheable(site string) bool {
	return site == AllSites || c.ds.HasSite(site)
}

// Len returns the number of memoized derivations
func (c *Cache) Len() int {
	return int(c.summaries.Len() + c.scatters.Len())
}

func cloneSummary(s SuccessSummary) SuccessSummary {
	out := s
	out.Slices = make([]Slice, len(s.Slices))
	copy(out.Slices, s.Slices)
	return out
}
