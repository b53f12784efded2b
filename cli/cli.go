package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ChristianF88/launchdash/config"
	"github.com/ChristianF88/launchdash/version"
	cli "github.com/urfave/cli/v2"
)

// parseDate attempts to parse the build date
func parseDate(d string) time.Time {
	t, err := time.Parse(time.RFC3339, d)
	if err != nil {
		return time.Now()
	}
	return t
}

// Shared flag definitions to eliminate duplication
var (
	// Configuration flags
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Path to configuration file (mutually exclusive with other flags)",
	}

	// Dataset flags
	dataFlag = &cli.StringFlag{
		Name:  "data",
		Usage: "Path to the launch records CSV file",
		Value: config.DefaultDataFile,
	}
	siteColumnFlag = &cli.StringFlag{
		Name:  "siteColumn",
		Usage: "CSV header of the launch site column",
		Value: config.Default().Columns.Site,
	}
	payloadColumnFlag = &cli.StringFlag{
		Name:  "payloadColumn",
		Usage: "CSV header of the payload mass column",
		Value: config.Default().Columns.Payload,
	}
	outcomeColumnFlag = &cli.StringFlag{
		Name:  "outcomeColumn",
		Usage: "CSV header of the outcome class column (0 or 1)",
		Value: config.Default().Columns.Outcome,
	}
	boosterColumnFlag = &cli.StringFlag{
		Name:  "boosterColumn",
		Usage: "CSV header of the booster version category column",
		Value: config.Default().Columns.Booster,
	}
	logLevelFlag = &cli.StringFlag{
		Name:  "logLevel",
		Usage: "Log level: debug, info, warn or error",
		Value: config.DefaultLogLevel,
	}
	logFormatFlag = &cli.StringFlag{
		Name:  "logFormat",
		Usage: "Log format: text or json",
		Value: config.DefaultLogFormat,
	}

	// Slider flags
	stepFlag = &cli.Float64Flag{
		Name:  "step",
		Usage: "Payload slider step in kg",
		Value: config.DefaultSliderStep,
	}
	fitToDataFlag = &cli.BoolFlag{
		Name:  "fitToData",
		Usage: "Fit the payload slider bounds to the dataset",
		Value: false,
	}

	// Selection flags
	siteFlag = &cli.StringFlag{
		Name:  "site",
		Usage: "Launch site to select, or ALL for every site",
		Value: "ALL",
	}
	minFlag = &cli.Float64Flag{
		Name:  "min",
		Usage: "Lower payload bound in kg (defaults to the slider minimum)",
	}
	maxFlag = &cli.Float64Flag{
		Name:  "max",
		Usage: "Upper payload bound in kg (defaults to the slider maximum)",
	}

	// Server flags
	addrFlag = &cli.StringFlag{
		Name:  "addr",
		Usage: "Address to listen on",
		Value: config.DefaultAddr,
	}
	titleFlag = &cli.StringFlag{
		Name:  "title",
		Usage: "Dashboard title",
		Value: config.DefaultTitle,
	}

	// Output flags
	plotPathFlag = &cli.StringFlag{
		Name:  "plotPath",
		Usage: "Path where to save the dashboard page (e.g., '/path/to/dashboard.html')",
		Value: config.DefaultPlotPath,
	}
	compactFlag = &cli.BoolFlag{
		Name:  "compact",
		Usage: "Output compact JSON (no pretty printing)",
		Value: false,
	}
	plainFlag = &cli.BoolFlag{
		Name:  "plain",
		Usage: "Output plain text format for easy readability",
		Value: false,
	}
)

// datasetFlags are accepted by every command
var datasetFlags = []cli.Flag{
	configFlag,
	dataFlag,
	siteColumnFlag,
	payloadColumnFlag,
	outcomeColumnFlag,
	boosterColumnFlag,
	stepFlag,
	fitToDataFlag,
	logLevelFlag,
	logFormatFlag,
}

// Shared validation functions
func validateConfigModeFlags(c *cli.Context, allowedFlags []string) error {
	// Create a map for quick lookup of allowed flags
	allowed := make(map[string]bool)
	for _, flag := range allowedFlags {
		allowed[flag] = true
	}

	// Check all possible flags
	flagsToCheck := []string{
		"data", "siteColumn", "payloadColumn", "outcomeColumn", "boosterColumn",
		"step", "fitToData", "logLevel", "logFormat", "site", "min", "max",
		"addr", "title", "plotPath", "compact", "plain",
	}

	for _, flag := range flagsToCheck {
		if c.IsSet(flag) && !allowed[flag] {
			return fmt.Errorf("when using --config, only %v flags are allowed", allowedFlags)
		}
	}
	return nil
}

func validatePlotPath(plotPath string) error {
	if plotPath != "" {
		plotDir := filepath.Dir(plotPath)
		if plotDir == "." {
			plotDir, _ = os.Getwd()
		}
		if _, err := os.Stat(plotDir); os.IsNotExist(err) {
			return fmt.Errorf("plot directory does not exist: %s", plotDir)
		}
	}
	return nil
}

func validateOutputFlags(c *cli.Context) error {
	if c.Bool("compact") && c.Bool("plain") {
		return fmt.Errorf("--compact and --plain are mutually exclusive")
	}
	return nil
}

// Command handler functions to reduce deep nesting

// loadCommandConfig resolves the configuration of a command, either from
// the --config file (where only allowedFlags may be combined with it) or
// from the individual flags.
func loadCommandConfig(c *cli.Context, allowedFlags []string) (*config.Config, error) {
	configPath := c.String("config")
	if configPath == "" {
		return createConfigFromCLI(c), nil
	}

	// Validate only allowed flags in config mode
	if err := validateConfigModeFlags(c, allowedFlags); err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// handleServeCommand processes the serve command
func handleServeCommand(c *cli.Context) error {
	cfg, err := loadCommandConfig(c, nil)
	if err != nil {
		return err
	}

	if err := cfg.ValidateServe(); err != nil {
		return fmt.Errorf("invalid serve configuration: %w", err)
	}

	return Serve(c.Context, cfg)
}

// handleTUICommand processes the tui command
func handleTUICommand(c *cli.Context) error {
	cfg, err := loadCommandConfig(c, nil)
	if err != nil {
		return err
	}

	if err := cfg.ValidateData(); err != nil {
		return fmt.Errorf("invalid tui configuration: %w", err)
	}

	return TUI(cfg)
}

// handleExportCommand processes the export command
func handleExportCommand(c *cli.Context) error {
	selection := selectionFlags(c)
	if err := selection.Validate(); err != nil {
		return err
	}

	cfg, err := loadCommandConfig(c, []string{"site", "min", "max"})
	if err != nil {
		return err
	}

	if err := validatePlotPath(cfg.GetPlotPath()); err != nil {
		return err
	}

	if err := cfg.ValidateExport(); err != nil {
		return fmt.Errorf("invalid export configuration: %w", err)
	}

	return Export(cfg, selection, c.App.Writer)
}

// handleSummaryCommand processes the summary command
func handleSummaryCommand(c *cli.Context) error {
	if err := validateOutputFlags(c); err != nil {
		return err
	}

	selection := selectionFlags(c)
	if err := selection.Validate(); err != nil {
		return err
	}

	cfg, err := loadCommandConfig(c, []string{"site", "min", "max", "compact", "plain"})
	if err != nil {
		return err
	}

	if err := cfg.ValidateData(); err != nil {
		return fmt.Errorf("invalid summary configuration: %w", err)
	}

	outputConfig := OutputConfig{
		Compact: c.Bool("compact"),
		Plain:   c.Bool("plain"),
	}
	return Summary(cfg, selection, outputConfig, c.App.Writer)
}

// NewApp builds the command line application
func NewApp() *cli.App {
	return &cli.App{
		Name:     "launchdash",
		Usage:    "Explore launch outcomes per site and payload mass",
		Version:  version.Version,
		Compiled: parseDate(version.Date),
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the interactive dashboard over HTTP",
				Flags:  append(append([]cli.Flag{}, datasetFlags...), addrFlag, titleFlag),
				Action: handleServeCommand,
			},
			{
				Name:   "tui",
				Usage:  "Run the dashboard in the terminal",
				Flags:  append(append([]cli.Flag{}, datasetFlags...), titleFlag),
				Action: handleTUICommand,
			},
			{
				Name:  "export",
				Usage: "Write a static dashboard page for one selection",
				Flags: append(append([]cli.Flag{}, datasetFlags...),
					titleFlag,
					siteFlag,
					minFlag,
					maxFlag,
					plotPathFlag,
				),
				Action: handleExportCommand,
			},
			{
				Name:  "summary",
				Usage: "Print the chart data for one selection",
				Flags: append(append([]cli.Flag{}, datasetFlags...),
					siteFlag,
					minFlag,
					maxFlag,
					compactFlag,
					plainFlag,
				),
				Action: handleSummaryCommand,
			},
		},
	}
}

var App = NewApp()
