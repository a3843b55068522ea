package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := Defaults()
	if cfg.Plot.Style != def.Plot.Style || cfg.Plot.WindowDays != 56 || cfg.Server.Port != 8080 {
		t.Fatalf("defaults not kept: %+v", cfg)
	}
	if !cfg.Distribution.Enabled || !cfg.Distribution.SplitDate.IsZero() {
		t.Fatalf("distribution defaults: %+v", cfg.Distribution)
	}
}

func TestLoad_TOML(t *testing.T) {
	p := writeFile(t, "config.toml", `
log_level = "debug"

[plot]
style = "dark"
window_days = 28
y_max = 45
labels = "long"

[distribution]
enabled = true
split_date = "2021-01-01"

[server]
schedule = "0 6 * * *"
job_timeout = "90s"
refresh_command = ["crossword", "--quiet"]
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.Plot.Style != "dark" || cfg.Plot.WindowDays != 28 || cfg.Plot.Labels != "long" {
		t.Fatalf("plot section not applied: %+v", cfg.Plot)
	}
	if cfg.Plot.YMax == nil || *cfg.Plot.YMax != 45 {
		t.Fatalf("y_max not applied")
	}
	if !cfg.Distribution.SplitDate.Equal(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("split date: %v", cfg.Distribution.SplitDate)
	}
	if cfg.Server.JobTimeout != 90*time.Second || len(cfg.Server.RefreshCommand) != 2 {
		t.Fatalf("server section: %+v", cfg.Server)
	}
}

func TestLoad_YAML(t *testing.T) {
	p := writeFile(t, "config.yaml", `
plot:
  style: ggplot
distribution:
  enabled: false
server:
  port: 9090
  db_bucket: /srv/db
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Plot.Style != "ggplot" || cfg.Distribution.Enabled || cfg.Server.Port != 9090 || cfg.Server.DBBucket != "/srv/db" {
		t.Fatalf("yaml not applied: %+v", cfg)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	p := writeFile(t, "config.toml", "[server]\nport = 9090\ndb_bucket = \"from-file\"\n")
	t.Setenv(EnvPort, "7070")
	t.Setenv(EnvDBBucket, "from-env")
	t.Setenv(EnvPlotBucket, "plots")
	t.Setenv(EnvLogLevel, "warn")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 || cfg.Server.DBBucket != "from-env" || cfg.Server.PlotBucket != "plots" || cfg.LogLevel != "warn" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"style":    "[plot]\nstyle = \"neon\"\n",
		"window":   "[plot]\nwindow_days = 0\n",
		"huge":     "[plot]\nwindow_days = 200000\n",
		"ymax":     "[plot]\ny_max = -1\n",
		"labels":   "[plot]\nlabels = \"tiny\"\n",
		"split":    "[distribution]\nsplit_date = \"01/01/2021\"\n",
		"schedule": "[server]\nschedule = \"every day\"\n",
		"timeout":  "[server]\njob_timeout = \"soon\"\n",
		"level":    "log_level = \"loud\"\n",
		"syntax":   "[plot\n",
	}
	for name, body := range cases {
		if _, err := Load(writeFile(t, "config.toml", body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoad_BadPortEnv(t *testing.T) {
	t.Setenv(EnvPort, "eighty")
	_, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	if err == nil || !strings.Contains(err.Error(), EnvPort) {
		t.Fatalf("want PORT error, got %v", err)
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "solvetrends", "config.toml") {
		t.Fatalf("config path %q", got)
	}
	if got := DefaultHistoryPath(); got != filepath.Join("/data", "solvetrends", "runs.db") {
		t.Fatalf("history path %q", got)
	}
}
