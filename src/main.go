// SolveTrends main entrypoint.
//
// Three commands:
//  1. plot: read a crossword solve log (CSV) and write the rolling-average trend chart plus the
//     per-weekday distribution charts next to it (PNG or SVG by extension).
//  2. serve: HTTP trigger (GET /) and optional cron timer that fetch the log from a bucket, run the
//     external fetcher, publish the refreshed log and the charts, and record each run in a SQLite ledger.
//  3. summary: print per-weekday statistics of a solve log as a terminal table.
//
// Settings come from the config file (TOML or YAML), then environment overrides, then flags that
// were set explicitly on the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iafilius/SolveTrends/src/analysis"
	"github.com/iafilius/SolveTrends/src/applog"
	"github.com/iafilius/SolveTrends/src/config"
	"github.com/iafilius/SolveTrends/src/history"
	"github.com/iafilius/SolveTrends/src/pipeline"
	"github.com/iafilius/SolveTrends/src/refresh"
	"github.com/iafilius/SolveTrends/src/render"
	"github.com/iafilius/SolveTrends/src/report"
	"github.com/iafilius/SolveTrends/src/server"
	"github.com/iafilius/SolveTrends/src/storage"
)

var logger = applog.For("main")

var (
	configPath string
	logLevel   string

	plotYMax           int
	plotStyle          string
	plotWindowDays     int
	plotNoDistribution bool
	plotSplitDate      string
	plotLabels         string
	plotWidth          int
	plotHeight         int
	plotRecord         bool

	servePort       int
	serveSchedule   string
	serveDBBucket   string
	servePlotBucket string
	serveHistory    string

	summaryWindowDays int
	summaryColor      bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "solvetrends",
		Short:         "Crossword solve-time trend charts",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "config file (.toml, .yaml or .yml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(newPlotCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSummaryCmd())
	return rootCmd
}

// loadConfig resolves the config file and environment, then the log level flag.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	overrideString(cmd, "log-level", &cfg.LogLevel, logLevel)
	if !applog.SetLogLevel(cfg.LogLevel) {
		return config.Config{}, fmt.Errorf("invalid log level %q (want debug, info, warn or error)", cfg.LogLevel)
	}
	return cfg, nil
}

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot <input.csv> <output.(png|svg)>",
		Short: "Render the trend and distribution charts of a solve log",
		Args:  cobra.ExactArgs(2),
		RunE:  runPlotCmd,
	}
	cmd.Flags().IntVar(&plotYMax, "y-max", 0, "fixed y-axis ceiling in minutes (default: 99th percentile)")
	cmd.Flags().StringVar(&plotStyle, "style", render.DefaultStyle, fmt.Sprintf("chart style %v", render.StyleNames()))
	cmd.Flags().IntVar(&plotWindowDays, "window-days", analysis.DefaultWindowDays, "rolling average window in days")
	cmd.Flags().BoolVar(&plotNoDistribution, "no-distribution", false, "skip the violin charts")
	cmd.Flags().StringVar(&plotSplitDate, "split-date", "", "also write a split violin chart comparing solves before/since YYYY-MM-DD")
	cmd.Flags().StringVar(&plotLabels, "labels", string(render.LabelsShort), "weekday labels: short or long")
	cmd.Flags().IntVar(&plotWidth, "width", render.DefaultWidth, "chart width in pixels")
	cmd.Flags().IntVar(&plotHeight, "height", render.DefaultHeight, "chart height in pixels")
	cmd.Flags().BoolVar(&plotRecord, "record", false, "record the run in the history database")
	return cmd
}

// applyPlotFlags copies explicitly set plot flags over the resolved config.
func applyPlotFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("y-max") {
		v := plotYMax
		cfg.Plot.YMax = &v
	}
	overrideString(cmd, "style", &cfg.Plot.Style, plotStyle)
	overrideInt(cmd, "window-days", &cfg.Plot.WindowDays, plotWindowDays)
	overrideString(cmd, "labels", &cfg.Plot.Labels, plotLabels)
	overrideInt(cmd, "width", &cfg.Plot.Width, plotWidth)
	overrideInt(cmd, "height", &cfg.Plot.Height, plotHeight)
	if cmd.Flags().Changed("no-distribution") {
		cfg.Distribution.Enabled = !plotNoDistribution
	}
	if cmd.Flags().Changed("split-date") {
		cfg.Distribution.SplitDate = time.Time{}
		if plotSplitDate != "" {
			t, err := config.ParseSplitDate(plotSplitDate)
			if err != nil {
				return err
			}
			cfg.Distribution.SplitDate = t
		}
	}
	return cfg.Validate()
}

func runPlotCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyPlotFlags(cmd, &cfg); err != nil {
		return err
	}
	started := time.Now().UTC()
	res, err := pipeline.Run(pipeline.FromConfig(cfg, args[0], args[1]))
	if plotRecord {
		recordCLIRun(cfg, started, res, err)
	}
	if err != nil {
		return fmt.Errorf("plot %s: %w", args[0], err)
	}
	for _, p := range res.Paths() {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), p); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// recordCLIRun writes a plot run to the history database; failures are only logged.
func recordCLIRun(cfg config.Config, started time.Time, res pipeline.Result, runErr error) {
	st, err := history.Open(cfg.Server.HistoryDB)
	if err != nil {
		logger.Warnf("open history: %v", err)
		return
	}
	defer st.Close()
	run := history.Run{
		Trigger:     "cli",
		StartedAt:   started,
		FinishedAt:  time.Now().UTC(),
		Status:      history.StatusOK,
		Loaded:      res.Loaded,
		Valid:       res.Valid,
		LatestSolve: res.LatestSolve,
		Outputs:     res.Paths(),
	}
	if runErr != nil {
		run.Status, run.Error = history.StatusFailed, runErr.Error()
	}
	run.Weekdays = history.StatsFrom(res.Summaries)
	if _, err := st.Record(context.Background(), run); err != nil {
		logger.Warnf("record run: %v", err)
	}
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP trigger that refreshes the solve log and republishes the charts",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().IntVar(&servePort, "port", 8080, "listen port")
	cmd.Flags().StringVar(&serveSchedule, "schedule", "", "cron expression for timed runs (empty: HTTP only)")
	cmd.Flags().StringVar(&serveDBBucket, "db-bucket", "", "bucket (directory or file:// URL) holding the solve log")
	cmd.Flags().StringVar(&servePlotBucket, "plot-bucket", "", "bucket (directory or file:// URL) receiving the charts")
	cmd.Flags().StringVar(&serveHistory, "history", "", "run history database path")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	overrideInt(cmd, "port", &cfg.Server.Port, servePort)
	overrideString(cmd, "schedule", &cfg.Server.Schedule, serveSchedule)
	overrideString(cmd, "db-bucket", &cfg.Server.DBBucket, serveDBBucket)
	overrideString(cmd, "plot-bucket", &cfg.Server.PlotBucket, servePlotBucket)
	overrideString(cmd, "history", &cfg.Server.HistoryDB, serveHistory)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Server.DBBucket == "" || cfg.Server.PlotBucket == "" {
		return fmt.Errorf("serve needs both buckets (%s, %s or --db-bucket/--plot-bucket)", config.EnvDBBucket, config.EnvPlotBucket)
	}
	db, err := storage.Open(cfg.Server.DBBucket)
	if err != nil {
		return fmt.Errorf("db bucket: %w", err)
	}
	plots, err := storage.Open(cfg.Server.PlotBucket)
	if err != nil {
		return fmt.Errorf("plot bucket: %w", err)
	}
	ledger, err := history.Open(cfg.Server.HistoryDB)
	if err != nil {
		return fmt.Errorf("failed to open history db: %w", err)
	}
	defer func() {
		if cerr := ledger.Close(); cerr != nil {
			logger.Warnf("close history: %v", cerr)
		}
	}()

	job := &server.Job{
		Config:    cfg,
		DB:        db,
		Plots:     plots,
		Refresher: refresh.Tool{Command: cfg.Server.RefreshCommand},
		Ledger:    ledger,
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(job).ListenAndServe(ctx, fmt.Sprintf(":%d", cfg.Server.Port), cfg.Server.Schedule)
}

func newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary <input.csv>",
		Short: "Print per-weekday solve statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  runSummaryCmd,
	}
	cmd.Flags().IntVar(&summaryWindowDays, "window-days", analysis.DefaultWindowDays, "rolling average window in days")
	cmd.Flags().BoolVar(&summaryColor, "color", false, "force colored output")
	return cmd
}

func runSummaryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	overrideInt(cmd, "window-days", &cfg.Plot.WindowDays, summaryWindowDays)
	if err := cfg.Validate(); err != nil {
		return err
	}
	records, err := analysis.LoadSolveLog(args[0])
	if err != nil {
		return fmt.Errorf("summary %s: %w", args[0], err)
	}
	dataset := analysis.Filter(records)
	series, err := analysis.Aggregate(dataset, cfg.Plot.WindowDays)
	if err != nil {
		return err
	}
	latest, _ := analysis.LatestSolve(dataset)
	out := cmd.OutOrStdout()
	return report.Write(out, analysis.Summarize(dataset, series), report.Meta{
		Source:      filepath.Base(args[0]),
		Loaded:      len(records),
		Valid:       len(dataset),
		LatestSolve: latest,
		WindowDays:  cfg.Plot.WindowDays,
	}, report.Options{
		Color: report.ShouldUseColor(out, summaryColor),
		Width: report.TerminalWidth(out),
	})
}

func overrideString(cmd *cobra.Command, name string, target *string, value string) {
	if cmd.Flags().Changed(name) {
		*target = value
	}
}

func overrideInt(cmd *cobra.Command, name string, target *int, value int) {
	if cmd.Flags().Changed(name) {
		*target = value
	}
}
