package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ChristianF88/launchdash/dataset"
	"github.com/ChristianF88/launchdash/query"
)

const (
	DefaultDataFile  = "spacex_launch_dash.csv"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	DefaultAddr      = ":8050"
	DefaultTitle     = "SpaceX Launch Records Dashboard"
	DefaultPlotPath  = "dashboard.html"

	DefaultSliderMin  = float64(query.DefaultPayloadMin)
	DefaultSliderMax  = float64(query.DefaultPayloadMax)
	DefaultSliderStep = float64(query.DefaultPayloadStep)
)

type GlobalConfig struct {
	DataFile  string `toml:"dataFile"`
	LogLevel  string `toml:"logLevel"`
	LogFormat string `toml:"logFormat"`
}

// ColumnsConfig maps dataset fields to CSV header names
type ColumnsConfig struct {
	Site    string `toml:"site"`
	Payload string `toml:"payload"`
	Outcome string `toml:"outcome"`
	Booster string `toml:"booster"`
}

// SliderConfig describes the payload range slider
type SliderConfig struct {
	Min       float64 `toml:"min"`
	Max       float64 `toml:"max"`
	Step      float64 `toml:"step"`
	FitToData bool    `toml:"fitToData"`
}

type ServerConfig struct {
	Addr  string `toml:"addr"`
	Title string `toml:"title"`
}

type ExportConfig struct {
	PlotPath string `toml:"plotPath"`
}

type Config struct {
	Global  *GlobalConfig  `toml:"global"`
	Columns *ColumnsConfig `toml:"columns"`
	Slider  *SliderConfig  `toml:"slider"`
	Server  *ServerConfig  `toml:"server"`
	Export  *ExportConfig  `toml:"export"`
}

// Default returns a config with every section populated with defaults
func Default() *Config {
	return &Config{
		Global: &GlobalConfig{
			DataFile:  DefaultDataFile,
			LogLevel:  DefaultLogLevel,
			LogFormat: DefaultLogFormat,
		},
		Columns: &ColumnsConfig{
			Site:    dataset.DefaultSiteColumn,
			Payload: dataset.DefaultPayloadColumn,
			Outcome: dataset.DefaultOutcomeColumn,
			Booster: dataset.DefaultBoosterColumn,
		},
		Slider: &SliderConfig{
			Min:  DefaultSliderMin,
			Max:  DefaultSliderMax,
			Step: DefaultSliderStep,
		},
		Server: &ServerConfig{
			Addr:  DefaultAddr,
			Title: DefaultTitle,
		},
		Export: &ExportConfig{
			PlotPath: DefaultPlotPath,
		},
	}
}

func LoadConfig(configPath string) (*Config, error) {
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var rawConfig map[string]any
	if _, err := toml.Decode(string(configData), &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config := Default()

	for key, value := range rawConfig {
		section, ok := value.(map[string]any)
		if !ok {
			continue
		}
		switch key {
		case "global":
			parseGlobalConfig(section, config.Global)
		case "columns":
			parseColumnsConfig(section, config.Columns)
		case "slider":
			if err := parseSliderConfig(section, config.Slider); err != nil {
				return nil, fmt.Errorf("parsing slider config: %w", err)
			}
		case "server":
			parseServerConfig(section, config.Server)
		case "export":
			parseExportConfig(section, config.Export)
		}
	}

	// Relative data and plot paths are resolved against the config file
	baseDir := filepath.Dir(configPath)
	config.Global.DataFile = resolvePath(baseDir, config.Global.DataFile)
	config.Export.PlotPath = resolvePath(baseDir, config.Export.PlotPath)

	return config, nil
}

func resolvePath(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

func parseGlobalConfig(m map[string]any, config *GlobalConfig) {
	if v, ok := m["dataFile"].(string); ok {
		config.DataFile = v
	}
	if v, ok := m["logLevel"].(string); ok {
		config.LogLevel = v
	}
	if v, ok := m["logFormat"].(string); ok {
		config.LogFormat = v
	}
}

func parseColumnsConfig(m map[string]any, config *ColumnsConfig) {
	if v, ok := m["site"].(string); ok && v != "" {
		config.Site = v
	}
	if v, ok := m["payload"].(string); ok && v != "" {
		config.Payload = v
	}
	if v, ok := m["outcome"].(string); ok && v != "" {
		config.Outcome = v
	}
	if v, ok := m["booster"].(string); ok && v != "" {
		config.Booster = v
	}
}

func parseSliderConfig(m map[string]any, config *SliderConfig) error {
	for _, key := range []string{"min", "max", "step"} {
		raw, ok := m[key]
		if !ok {
			continue
		}
		v, err := toFloat(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		switch key {
		case "min":
			config.Min = v
		case "max":
			config.Max = v
		case "step":
			config.Step = v
		}
	}
	if v, ok := m["fitToData"].(bool); ok {
		config.FitToData = v
	}
	return nil
}

// toFloat accepts both TOML integers and floats
func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	}
	return 0, fmt.Errorf("expected a number, got %T", v)
}

func parseServerConfig(m map[string]any, config *ServerConfig) {
	if v, ok := m["addr"].(string); ok {
		config.Addr = v
	}
	if v, ok := m["title"].(string); ok {
		config.Title = v
	}
}

func parseExportConfig(m map[string]any, config *ExportConfig) {
	if v, ok := m["plotPath"].(string); ok {
		config.PlotPath = v
	}
}

// DatasetColumns returns the CSV column names for dataset loading
func (c *Config) DatasetColumns() dataset.Columns {
	if c.Columns == nil {
		return dataset.DefaultColumns()
	}
	return dataset.Columns{
		Site:    c.Columns.Site,
		Payload: c.Columns.Payload,
		Outcome: c.Columns.Outcome,
		Booster: c.Columns.Booster,
	}
}

func (c *Config) GetAddr() string {
	if c.Server != nil && c.Server.Addr != "" {
		return c.Server.Addr
	}
	return DefaultAddr
}

func (c *Config) GetTitle() string {
	if c.Server != nil && c.Server.Title != "" {
		return c.Server.Title
	}
	return DefaultTitle
}

func (c *Config) GetPlotPath() string {
	if c.Export != nil && c.Export.PlotPath != "" {
		return c.Export.PlotPath
	}
	return DefaultPlotPath
}

// GetSlider returns the slider settings, widened to the dataset payload
// bounds when FitToData is set.
func (c *Config) GetSlider(ds *dataset.Dataset) SliderConfig {
	s := SliderConfig{Min: DefaultSliderMin, Max: DefaultSliderMax, Step: DefaultSliderStep}
	if c.Slider != nil {
		s = *c.Slider
	}
	if s.FitToData && ds.Len() > 0 {
		lo, hi := ds.PayloadBounds()
		s = s.Fit(lo, hi)
	}
	return s
}

// Fit snaps the slider bounds outward to whole steps around [lo, hi]
func (s SliderConfig) Fit(lo, hi float64) SliderConfig {
	if s.Step <= 0 {
		s.Min, s.Max = lo, hi
		return s
	}
	s.Min = math.Floor(lo/s.Step) * s.Step
	s.Max = math.Ceil(hi/s.Step) * s.Step
	if s.Max == s.Min {
		s.Max = s.Min + s.Step
	}
	return s
}

// Marks returns the slider positions from Min to Max inclusive
func (s SliderConfig) Marks() []float64 {
	if s.Step <= 0 || s.Max < s.Min {
		return []float64{s.Min, s.Max}
	}
	n := int(math.Floor((s.Max-s.Min)/s.Step + 1e-9))
	marks := make([]float64, 0, n+2)
	for i := 0; i <= n; i++ {
		marks = append(marks, s.Min+float64(i)*s.Step)
	}
	if marks[len(marks)-1] < s.Max {
		marks = append(marks, s.Max)
	}
	return marks
}

// LogLevel parses global.logLevel into a slog level
func (c *Config) LogLevel() (slog.Level, error) {
	level := DefaultLogLevel
	if c.Global != nil && c.Global.LogLevel != "" {
		level = c.Global.LogLevel
	}
	return ParseLogLevel(level)
}

func ParseLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid logLevel %q: expected debug, info, warn or error", level)
	}
	return l, nil
}

func (c *Config) GetLogFormat() string {
	if c.Global != nil && c.Global.LogFormat != "" {
		return c.Global.LogFormat
	}
	return DefaultLogFormat
}

// ValidateData checks the settings every command needs to load the dataset
func (c *Config) ValidateData() error {
	if c.Global == nil {
		return fmt.Errorf("global configuration section is required")
	}

	if c.Global.DataFile == "" {
		return fmt.Errorf("dataFile is required in global configuration")
	}

	if _, err := os.Stat(c.Global.DataFile); os.IsNotExist(err) {
		return fmt.Errorf("data file does not exist: %s", c.Global.DataFile)
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}

	switch c.GetLogFormat() {
	case "text", "json":
	default:
		return fmt.Errorf("invalid logFormat %q: expected text or json", c.Global.LogFormat)
	}

	cols := c.DatasetColumns()
	if cols.Site == "" || cols.Payload == "" || cols.Outcome == "" || cols.Booster == "" {
		return fmt.Errorf("every column name must be non-empty")
	}

	return c.ValidateSlider()
}

func (c *Config) ValidateSlider() error {
	if c.Slider == nil {
		return nil
	}
	if c.Slider.Step <= 0 {
		return fmt.Errorf("slider step must be positive, got %v", c.Slider.Step)
	}
	if c.Slider.Min < 0 {
		return fmt.Errorf("slider min must not be negative, got %v", c.Slider.Min)
	}
	if c.Slider.Max <= c.Slider.Min {
		return fmt.Errorf("slider max (%v) must be greater than min (%v)", c.Slider.Max, c.Slider.Min)
	}
	return nil
}

func (c *Config) ValidateServe() error {
	if err := c.ValidateData(); err != nil {
		return err
	}

	if c.GetAddr() == "" {
		return fmt.Errorf("addr is required in server configuration")
	}

	return nil
}

func (c *Config) ValidateExport() error {
	if err := c.ValidateData(); err != nil {
		return err
	}

	plotDir := filepath.Dir(c.GetPlotPath())
	if _, err := os.Stat(plotDir); os.IsNotExist(err) {
		return fmt.Errorf("plot directory does not exist: %s", plotDir)
	}

	return nil
}
