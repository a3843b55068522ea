// Package config loads the plot and server settings from a TOML or YAML file,
// applies defaults and environment overrides, and validates the result.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/iafilius/SolveTrends/src/analysis"
	"github.com/iafilius/SolveTrends/src/applog"
	"github.com/iafilius/SolveTrends/src/render"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

var logger = applog.For("config")

// Environment variables read by Load. The bucket and port names match the
// deployment environment of the hosted trigger.
const (
	EnvDBBucket   = "DB_BUCKET_NAME"
	EnvPlotBucket = "PLOT_BUCKET_NAME"
	EnvPort       = "PORT"
	EnvLogLevel   = "SOLVETRENDS_LOG_LEVEL"
)

// SplitDateLayout is the format of distribution.split_date and --split-date.
const SplitDateLayout = "2006-01-02"

// FileConfig is the on-disk configuration. Nil fields were not set.
type FileConfig struct {
	LogLevel     *string          `toml:"log_level" yaml:"log_level"`
	Plot         PlotFile         `toml:"plot" yaml:"plot"`
	Distribution DistributionFile `toml:"distribution" yaml:"distribution"`
	Server       ServerFile       `toml:"server" yaml:"server"`
}

// PlotFile maps the [plot] section.
type PlotFile struct {
	Style       *string `toml:"style" yaml:"style"`
	WindowDays  *int    `toml:"window_days" yaml:"window_days"`
	YMax        *int    `toml:"y_max" yaml:"y_max"`
	Labels      *string `toml:"labels" yaml:"labels"`
	Width       *int    `toml:"width" yaml:"width"`
	Height      *int    `toml:"height" yaml:"height"`
	TitlePrefix *string `toml:"title_prefix" yaml:"title_prefix"`
}

// DistributionFile maps the [distribution] section.
type DistributionFile struct {
	Enabled   *bool    `toml:"enabled" yaml:"enabled"`
	SplitDate *string  `toml:"split_date" yaml:"split_date"`
	Bandwidth *float64 `toml:"bandwidth" yaml:"bandwidth"`
}

// ServerFile maps the [server] section.
type ServerFile struct {
	Port           *int      `toml:"port" yaml:"port"`
	Schedule       *string   `toml:"schedule" yaml:"schedule"`
	JobTimeout     *string   `toml:"job_timeout" yaml:"job_timeout"`
	DBBucket       *string   `toml:"db_bucket" yaml:"db_bucket"`
	PlotBucket     *string   `toml:"plot_bucket" yaml:"plot_bucket"`
	CSVObject      *string   `toml:"csv_object" yaml:"csv_object"`
	PlotObject     *string   `toml:"plot_object" yaml:"plot_object"`
	WorkDir        *string   `toml:"work_dir" yaml:"work_dir"`
	HistoryDB      *string   `toml:"history_db" yaml:"history_db"`
	RefreshCommand *[]string `toml:"refresh_command" yaml:"refresh_command"`
}

// Config is the resolved configuration.
type Config struct {
	LogLevel     string
	Plot         Plot
	Distribution Distribution
	Server       Server
}

type Plot struct {
	Style       string
	WindowDays  int
	YMax        *int
	Labels      string
	Width       int
	Height      int
	TitlePrefix string
}

type Distribution struct {
	Enabled   bool
	SplitDate time.Time // zero disables the split chart
	Bandwidth float64   // 0 selects Scott's rule
}

type Server struct {
	Port       int
	Schedule   string // cron expression; empty disables the timer
	JobTimeout time.Duration
	DBBucket   string
	PlotBucket string
	CSVObject  string
	PlotObject string
	WorkDir    string
	HistoryDB  string
	// RefreshCommand is the fetcher invocation; the CSV path is appended.
	RefreshCommand []string
}

// Defaults returns a Config with all default values set.
func Defaults() Config {
	return Config{
		LogLevel: "info",
		Plot: Plot{
			Style:       render.DefaultStyle,
			WindowDays:  analysis.DefaultWindowDays,
			Labels:      string(render.LabelsShort),
			Width:       render.DefaultWidth,
			Height:      render.DefaultHeight,
			TitlePrefix: render.DefaultTitlePrefix,
		},
		Distribution: Distribution{Enabled: true},
		Server: Server{
			Port:           8080,
			JobTimeout:     10 * time.Minute,
			CSVObject:      "data.csv",
			PlotObject:     "plot.svg",
			WorkDir:        DefaultWorkDir(),
			HistoryDB:      DefaultHistoryPath(),
			RefreshCommand: []string{"crossword"},
		},
	}
}

// LoadFile reads a TOML (.toml) or YAML (.yaml, .yml) config. Missing file is not an error.
func LoadFile(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debugf("%s not found, using defaults", path)
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to read config: %w", err)
	}
	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), &fc); err != nil {
			return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
		}
	}
	return fc, nil
}

// Load resolves defaults, then the file at path, then environment overrides, and validates.
func Load(path string) (Config, error) {
	fc, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Defaults()
	if err := cfg.apply(fc); err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnvironmentOverrides(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) apply(fc FileConfig) error {
	setString(&c.LogLevel, fc.LogLevel)

	setString(&c.Plot.Style, fc.Plot.Style)
	setInt(&c.Plot.WindowDays, fc.Plot.WindowDays)
	if fc.Plot.YMax != nil {
		v := *fc.Plot.YMax
		c.Plot.YMax = &v
	}
	setString(&c.Plot.Labels, fc.Plot.Labels)
	setInt(&c.Plot.Width, fc.Plot.Width)
	setInt(&c.Plot.Height, fc.Plot.Height)
	setString(&c.Plot.TitlePrefix, fc.Plot.TitlePrefix)

	if fc.Distribution.Enabled != nil {
		c.Distribution.Enabled = *fc.Distribution.Enabled
	}
	if fc.Distribution.SplitDate != nil && strings.TrimSpace(*fc.Distribution.SplitDate) != "" {
		t, err := ParseSplitDate(*fc.Distribution.SplitDate)
		if err != nil {
			return err
		}
		c.Distribution.SplitDate = t
	}
	if fc.Distribution.Bandwidth != nil {
		c.Distribution.Bandwidth = *fc.Distribution.Bandwidth
	}

	setInt(&c.Server.Port, fc.Server.Port)
	setString(&c.Server.Schedule, fc.Server.Schedule)
	if fc.Server.JobTimeout != nil {
		d, err := time.ParseDuration(*fc.Server.JobTimeout)
		if err != nil {
			return fmt.Errorf("invalid server.job_timeout %q: %w", *fc.Server.JobTimeout, err)
		}
		c.Server.JobTimeout = d
	}
	setString(&c.Server.DBBucket, fc.Server.DBBucket)
	setString(&c.Server.PlotBucket, fc.Server.PlotBucket)
	setString(&c.Server.CSVObject, fc.Server.CSVObject)
	setString(&c.Server.PlotObject, fc.Server.PlotObject)
	setString(&c.Server.WorkDir, fc.Server.WorkDir)
	setString(&c.Server.HistoryDB, fc.Server.HistoryDB)
	if fc.Server.RefreshCommand != nil {
		c.Server.RefreshCommand = append([]string(nil), (*fc.Server.RefreshCommand)...)
	}
	return nil
}

func (c *Config) applyEnvironmentOverrides() error {
	if v := os.Getenv(EnvDBBucket); v != "" {
		c.Server.DBBucket = v
	}
	if v := os.Getenv(EnvPlotBucket); v != "" {
		c.Server.PlotBucket = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		c.Server.Port = p
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks that values are in range and names resolve.
func (c *Config) Validate() error {
	if !applog.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q (want debug, info, warn or error)", c.LogLevel)
	}
	if _, err := render.LookupTheme(c.Plot.Style); err != nil {
		return fmt.Errorf("plot.style: %w", err)
	}
	if _, err := render.ParseLabelFormat(c.Plot.Labels); err != nil {
		return fmt.Errorf("plot.labels: %w", err)
	}
	if c.Plot.WindowDays <= 0 || c.Plot.WindowDays > analysis.MaxWindowDays {
		return fmt.Errorf("plot.window_days must be between 1 and %d, got %d", analysis.MaxWindowDays, c.Plot.WindowDays)
	}
	if c.Plot.YMax != nil && *c.Plot.YMax <= 0 {
		return fmt.Errorf("plot.y_max must be positive, got %d", *c.Plot.YMax)
	}
	if c.Plot.Width < 0 || c.Plot.Height < 0 {
		return fmt.Errorf("plot size must not be negative")
	}
	if c.Distribution.Bandwidth < 0 {
		return fmt.Errorf("distribution.bandwidth must not be negative")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Server.Schedule != "" {
		if _, err := cron.ParseStandard(c.Server.Schedule); err != nil {
			return fmt.Errorf("invalid server.schedule %q: %w", c.Server.Schedule, err)
		}
	}
	if c.Server.JobTimeout <= 0 {
		return fmt.Errorf("server.job_timeout must be positive")
	}
	if len(c.Server.RefreshCommand) == 0 || c.Server.RefreshCommand[0] == "" {
		return fmt.Errorf("server.refresh_command is empty")
	}
	return nil
}

// ParseSplitDate parses a YYYY-MM-DD date as UTC midnight.
func ParseSplitDate(s string) (time.Time, error) {
	t, err := time.Parse(SplitDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid split date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
