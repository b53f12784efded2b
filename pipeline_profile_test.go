package main

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/ChristianF88/launchdash/cli"
	"github.com/ChristianF88/launchdash/dataset"
	"github.com/ChristianF88/launchdash/output"
	"github.com/ChristianF88/launchdash/query"
	"github.com/ChristianF88/launchdash/reactive"
	"github.com/ChristianF88/launchdash/testutil"
)

// BenchmarkFullPipelineProfile profiles one dashboard update end to end:
// load CSV → derive both cells → build chart options
func BenchmarkFullPipelineProfile(b *testing.B) {
	dataFile := testutil.GenerateTestDataFile(b, 100000)
	sel := query.Selection{Site: "KSC LC-39A", Payload: query.PayloadRange{Min: 2000, Max: 8000}}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		// Phase 1: Load
		ds, err := dataset.Load(dataFile, dataset.DefaultColumns())
		if err != nil {
			b.Fatal(err)
		}

		// Phase 2: Derive
		specs := reactive.DashboardTable(query.Direct{Dataset: ds}).Evaluate(sel)

		// Phase 3: Chart options
		for _, spec := range specs {
			if _, err := output.ChartOptions(spec); err != nil {
				b.Fatal(err)
			}
		}
	}
}

// BenchmarkLoadOnly isolates CSV parsing cost
func BenchmarkLoadOnly(b *testing.B) {
	dataFile := testutil.GenerateTestDataFile(b, 100000)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := dataset.Load(dataFile, dataset.DefaultColumns()); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkDerive compares uncached and cached derivations for a site change
func BenchmarkDerive(b *testing.B) {
	for _, size := range []int{1000, 100000} {
		ds, err := dataset.Load(testutil.GenerateTestDataFile(b, size), dataset.DefaultColumns())
		if err != nil {
			b.Fatal(err)
		}
		sites := append([]string{query.AllSites}, ds.Sites()...)

		b.Run(fmt.Sprintf("Direct_%d_records", size), func(b *testing.B) {
			table := reactive.DashboardTable(query.Direct{Dataset: ds})
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				table.Evaluate(query.Selection{Site: sites[i%len(sites)], Payload: query.DefaultPayloadRange()})
			}
		})

		b.Run(fmt.Sprintf("Cached_%d_records", size), func(b *testing.B) {
			table := reactive.DashboardTable(query.NewCache(ds))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				table.Evaluate(query.Selection{Site: sites[i%len(sites)], Payload: query.DefaultPayloadRange()})
			}
		})
	}
}

// BenchmarkSummaryCommand runs the summary command as a user would
func BenchmarkSummaryCommand(b *testing.B) {
	dataFile := testutil.GenerateTestDataFile(b, 10000)
	app := cli.NewApp()
	var out bytes.Buffer
	app.Writer = &out

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		out.Reset()
		if err := app.Run([]string{"launchdash", "summary", "--data", dataFile, "--logLevel", "error", "--compact"}); err != nil {
			b.Fatal(err)
		}
	}
}
