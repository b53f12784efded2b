package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ChristianF88/launchdash/config"
	"github.com/ChristianF88/launchdash/dataset"
	"github.com/ChristianF88/launchdash/logging"
	"github.com/ChristianF88/launchdash/output"
	"github.com/ChristianF88/launchdash/query"
	"github.com/ChristianF88/launchdash/reactive"
	"github.com/ChristianF88/launchdash/server"
	"github.com/ChristianF88/launchdash/tui"
	"github.com/ChristianF88/launchdash/version"
	cli "github.com/urfave/cli/v2"
)

// ============================================================================
// CONFIGURATION STRUCTS
// ============================================================================

// OutputConfig contains output formatting options
type OutputConfig struct {
	Compact bool
	Plain   bool
}

// SelectionFlags is the selection requested on the command line. Unset
// bounds fall back to the slider bounds once the dataset is loaded.
type SelectionFlags struct {
	Site   string
	Min    float64
	Max    float64
	MinSet bool
	MaxSet bool
}

// ============================================================================
// MAIN ENTRY POINTS - These are the only functions that should be called externally
// ============================================================================

// Serve runs the HTTP dashboard until ctx is cancelled or a signal arrives
func Serve(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := initLogging(cfg, os.Stderr); err != nil {
		return err
	}
	return executeServe(ctx, cfg)
}

// TUI runs the terminal dashboard
func TUI(cfg *config.Config) error {
	// tview owns the terminal, so nothing may be logged to it
	if err := initLogging(cfg, io.Discard); err != nil {
		return err
	}
	return executeTUI(cfg)
}

// Export writes the static dashboard page for one selection
func Export(cfg *config.Config, sel SelectionFlags, w io.Writer) error {
	if err := initLogging(cfg, os.Stderr); err != nil {
		return err
	}
	return executeExport(cfg, sel, w)
}

// Summary prints the chart data of one selection
func Summary(cfg *config.Config, sel SelectionFlags, outputConfig OutputConfig, w io.Writer) error {
	if err := initLogging(cfg, os.Stderr); err != nil {
		return err
	}
	return executeSummary(cfg, sel, outputConfig, w)
}

// ============================================================================
// CORE EXECUTION LOGIC - Single unified execution path
// ============================================================================

// executeServe handles the serve command - CLI or config file, doesn't matter
func executeServe(ctx context.Context, cfg *config.Config) error {
	ds, err := loadDataset(cfg)
	if err != nil {
		return err
	}

	srv := server.New(server.Options{
		Address: cfg.GetAddr(),
		Title:   cfg.GetTitle(),
		Dataset: ds,
		Slider:  cfg.GetSlider(ds),
		Logger:  logging.New("server"),
	})

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}

// executeTUI runs TUI mode - works for both CLI and config file inputs
func executeTUI(cfg *config.Config) error {
	ds, err := loadDataset(cfg)
	if err != nil {
		return err
	}

	app, err := tui.NewApp(tui.Options{
		Title:   cfg.GetTitle(),
		Dataset: ds,
		Slider:  cfg.GetSlider(ds),
		Logger:  logging.Discard(),
	})
	if err != nil {
		return fmt.Errorf("building terminal dashboard: %w", err)
	}

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// executeExport renders both charts of the selection into the plot path
func executeExport(cfg *config.Config, flags SelectionFlags, w io.Writer) error {
	ds, err := loadDataset(cfg)
	if err != nil {
		return err
	}

	sel, reversed, err := resolveSelection(flags, cfg.GetSlider(ds))
	if err != nil {
		return err
	}
	if reversed {
		logging.New("cli").Warn("payload range reversed, bounds swapped",
			"min", sel.Payload.Min, "max", sel.Payload.Max)
	}

	summary, series, err := evaluate(ds, sel)
	if err != nil {
		return err
	}

	plotStart := time.Now()
	if err := output.RenderDashboard(cfg.GetPlotPath(), cfg.GetTitle(), summary, series); err != nil {
		return err
	}

	fmt.Fprintf(w, "Dashboard generated in %v at %s\n", time.Since(plotStart), cfg.GetPlotPath())
	return nil
}

// executeSummary builds the report of one selection and prints it
func executeSummary(cfg *config.Config, flags SelectionFlags, outputConfig OutputConfig, w io.Writer) error {
	start := time.Now()
	report := output.NewReport("summary", version.Version, start)

	ds, err := loadDataset(cfg)
	if err != nil {
		return err
	}
	report.SetDataset(cfg.Global.DataFile, ds)

	sel, reversed, err := resolveSelection(flags, cfg.GetSlider(ds))
	if err != nil {
		return err
	}
	if reversed {
		report.AddWarning("payload_range", fmt.Sprintf("payload range was reversed and has been normalized to %.0f - %.0f kg", sel.Payload.Min, sel.Payload.Max), 0)
	}
	if sel.Site != query.AllSites && !ds.HasSite(sel.Site) {
		report.AddWarning("unknown_site", fmt.Sprintf("site %q does not occur in the dataset", sel.Site), 0)
	}
	report.Selection = sel

	summary, series, err := evaluate(ds, sel)
	if err != nil {
		return err
	}
	report.SetSummary(summary)
	report.SetScatter(series)
	report.UpdateDuration(start)

	return outputResult(report, outputConfig, w)
}

// evaluate derives both dashboard cells for sel
func evaluate(ds *dataset.Dataset, sel query.Selection) (query.SuccessSummary, query.ScatterSeries, error) {
	specs := reactive.DashboardTable(query.Direct{Dataset: ds}).Evaluate(sel)

	summary, ok := specs[reactive.PieCell].(query.SuccessSummary)
	if !ok {
		return query.SuccessSummary{}, query.ScatterSeries{}, fmt.Errorf("cell %s did not produce a pie chart", reactive.PieCell)
	}
	series, ok := specs[reactive.ScatterCell].(query.ScatterSeries)
	if !ok {
		return query.SuccessSummary{}, query.ScatterSeries{}, fmt.Errorf("cell %s did not produce a scatter chart", reactive.ScatterCell)
	}
	return summary, series, nil
}

// outputResult handles output formatting
func outputResult(report *output.Report, outputConfig OutputConfig, w io.Writer) error {
	if outputConfig.Plain {
		report.WritePlain(w)
		return nil
	}

	var data []byte
	var err error
	if outputConfig.Compact {
		data, err = report.ToCompactJSON()
	} else {
		data, err = report.ToJSON()
	}
	if err != nil {
		return fmt.Errorf("error generating JSON: %w", err)
	}

	fmt.Fprintln(w, string(data))
	return nil
}

// ============================================================================
// HELPER FUNCTIONS - Conversion and utility functions
// ============================================================================

// createConfigFromCLI creates a config.Config directly from CLI parameters,
// with the same structure as a config file
func createConfigFromCLI(c *cli.Context) *config.Config {
	cfg := config.Default()

	cfg.Global.DataFile = c.String("data")
	cfg.Global.LogLevel = c.String("logLevel")
	cfg.Global.LogFormat = c.String("logFormat")

	cfg.Columns.Site = c.String("siteColumn")
	cfg.Columns.Payload = c.String("payloadColumn")
	cfg.Columns.Outcome = c.String("outcomeColumn")
	cfg.Columns.Booster = c.String("boosterColumn")

	cfg.Slider.Step = c.Float64("step")
	cfg.Slider.FitToData = c.Bool("fitToData")

	if addr := c.String("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if title := c.String("title"); title != "" {
		cfg.Server.Title = title
	}
	if plotPath := c.String("plotPath"); plotPath != "" {
		cfg.Export.PlotPath = plotPath
	}

	return cfg
}

// selectionFlags reads the site and payload flags of a command
func selectionFlags(c *cli.Context) SelectionFlags {
	site := c.String("site")
	if site == "" {
		site = query.AllSites
	}
	return SelectionFlags{
		Site:   site,
		Min:    c.Float64("min"),
		Max:    c.Float64("max"),
		MinSet: c.IsSet("min"),
		MaxSet: c.IsSet("max"),
	}
}

// Validate rejects payload bounds that are not finite numbers
func (f SelectionFlags) Validate() error {
	for _, b := range []struct {
		name  string
		value float64
		set   bool
	}{
		{"min", f.Min, f.MinSet},
		{"max", f.Max, f.MaxSet},
	} {
		if b.set && (math.IsNaN(b.value) || math.IsInf(b.value, 0)) {
			return fmt.Errorf("invalid %s: %q is not a number", b.name, strconv.FormatFloat(b.value, 'g', -1, 64))
		}
	}
	return nil
}

// resolveSelection fills unset bounds from the slider and normalizes the
// range. reversed reports whether the bounds had to be swapped.
func resolveSelection(flags SelectionFlags, slider config.SliderConfig) (sel query.Selection, reversed bool, err error) {
	if err := flags.Validate(); err != nil {
		return query.Selection{}, false, err
	}

	rng := query.PayloadRange{Min: slider.Min, Max: slider.Max}
	if flags.MinSet {
		rng.Min = flags.Min
	}
	if flags.MaxSet {
		rng.Max = flags.Max
	}
	reversed = rng.Min > rng.Max

	return query.Selection{Site: flags.Site, Payload: rng.Normalize()}, reversed, nil
}

// initLogging configures the default logger from the global section
func initLogging(cfg *config.Config, w io.Writer) error {
	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	return logging.Init(level, cfg.GetLogFormat(), w)
}

// loadDataset reads the launch records named by the configuration
func loadDataset(cfg *config.Config) (*dataset.Dataset, error) {
	loadStart := time.Now()
	ds, err := dataset.Load(cfg.Global.DataFile, cfg.DatasetColumns())
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}

	logging.New("cli").Info("dataset loaded",
		"file", cfg.Global.DataFile,
		"records", ds.Len(),
		"sites", len(ds.Sites()),
		"duration", time.Since(loadStart))
	return ds, nil
}
