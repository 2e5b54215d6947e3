package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/navtrend/navtrend/internal/eastmoney"
	"github.com/navtrend/navtrend/internal/feed"
)

var allKeys = []string{
	"BASELINE_DATE", "TRACKED_FUNDS", "OUTPUT_PATHS", "XLSX_OUTPUT",
	"GOOGLE_SHEETS_ID", "GOOGLE_CREDENTIALS_JSON", "UPSTREAM_URL", "UPSTREAM_TIMEOUT",
	"UPSTREAM_RETRY_MAX", "UPSTREAM_RETRY_BASE_DELAY", "UPSTREAM_DELAY", "FETCH_CONCURRENCY",
	"SCHEDULE", "SCHEDULE_TZ", "DATA_URLS", "FETCH_POLICY", "FEED_TIMEOUT",
	"HTTP_PORT", "PUBLIC_DIR", "CORS_ORIGINS", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	// Load reads .env from the working directory; keep it out of the way.
	t.Chdir(t.TempDir())
	for _, key := range allKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if !cfg.Baseline.Equal(DefaultBaseline) {
		t.Errorf("Baseline = %v, want %v", cfg.Baseline, DefaultBaseline)
	}
	if len(cfg.Registry) != 5 || cfg.Registry[0].Code != "588000" {
		t.Errorf("Registry = %v, want default five funds", cfg.Registry)
	}
	if len(cfg.OutputPaths) != 2 || cfg.OutputPaths[0] != "public/data/fund-data.json" || cfg.OutputPaths[1] != "data/fund-data.json" {
		t.Errorf("OutputPaths = %v", cfg.OutputPaths)
	}
	if cfg.UpstreamURL != eastmoney.DefaultURL {
		t.Errorf("UpstreamURL = %q, want default", cfg.UpstreamURL)
	}
	if cfg.UpstreamRetryMax != 3 {
		t.Errorf("UpstreamRetryMax = %d, want 3", cfg.UpstreamRetryMax)
	}
	if cfg.UpstreamDelay != 200*time.Millisecond {
		t.Errorf("UpstreamDelay = %v, want 200ms", cfg.UpstreamDelay)
	}
	if cfg.FetchPolicy != feed.PolicyStrict {
		t.Errorf("FetchPolicy = %q, want strict", cfg.FetchPolicy)
	}
	if cfg.ScheduleTZ.String() != "Asia/Shanghai" {
		t.Errorf("ScheduleTZ = %v, want Asia/Shanghai", cfg.ScheduleTZ)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %q, want 8080", cfg.HTTPPort)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
	if cfg.SheetsEnabled() {
		t.Error("SheetsEnabled = true without credentials")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("BASELINE_DATE", "2026-01-05")
	t.Setenv("TRACKED_FUNDS", "588000:科创50ETF, 159338:信创ETF")
	t.Setenv("OUTPUT_PATHS", " out/a.json ,, out/b.json")
	t.Setenv("DATA_URLS", "https://a.example.com/d.json,https://b.example.com/d.json")
	t.Setenv("FETCH_POLICY", "resilient")
	t.Setenv("UPSTREAM_RETRY_MAX", "10")
	t.Setenv("UPSTREAM_RETRY_BASE_DELAY", "5s")
	t.Setenv("SCHEDULE_TZ", "UTC")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("GOOGLE_SHEETS_ID", "sheet")
	t.Setenv("GOOGLE_CREDENTIALS_JSON", "{}")

	cfg := Load()

	if got := cfg.Baseline.Format(time.DateOnly); got != "2026-01-05" {
		t.Errorf("Baseline = %s, want override", got)
	}
	if len(cfg.Registry) != 2 || cfg.Registry[1].Code != "159338" || cfg.Registry[1].Name != "信创ETF" {
		t.Errorf("Registry = %v", cfg.Registry)
	}
	if len(cfg.OutputPaths) != 2 || cfg.OutputPaths[0] != "out/a.json" || cfg.OutputPaths[1] != "out/b.json" {
		t.Errorf("OutputPaths = %q", cfg.OutputPaths)
	}
	if len(cfg.DataURLs) != 2 {
		t.Errorf("DataURLs = %v", cfg.DataURLs)
	}
	if cfg.FetchPolicy != feed.PolicyResilient {
		t.Errorf("FetchPolicy = %q, want resilient", cfg.FetchPolicy)
	}
	if cfg.UpstreamRetryMax != 10 || cfg.UpstreamRetryBaseDelay != 5*time.Second {
		t.Errorf("retry = %d/%v, want 10/5s", cfg.UpstreamRetryMax, cfg.UpstreamRetryBaseDelay)
	}
	if cfg.ScheduleTZ != time.UTC {
		t.Errorf("ScheduleTZ = %v, want UTC", cfg.ScheduleTZ)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if !cfg.SheetsEnabled() {
		t.Error("SheetsEnabled = false with both settings")
	}
}

func TestLoadInvalidEnvFallsBackToDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("BASELINE_DATE", "12/01/2025")
	t.Setenv("TRACKED_FUNDS", "588000")
	t.Setenv("UPSTREAM_RETRY_MAX", "not-a-number")
	t.Setenv("UPSTREAM_RETRY_BASE_DELAY", "invalid-duration")
	t.Setenv("FETCH_POLICY", "optimistic")
	t.Setenv("SCHEDULE_TZ", "Mars/Olympus")
	t.Setenv("LOG_LEVEL", "loud")
	t.Setenv("CORS_ORIGINS", " , ")

	cfg := Load()

	if !cfg.Baseline.Equal(DefaultBaseline) {
		t.Errorf("Baseline = %v, want default on invalid input", cfg.Baseline)
	}
	if len(cfg.Registry) != 5 {
		t.Errorf("Registry = %v, want default on invalid input", cfg.Registry)
	}
	if cfg.UpstreamRetryMax != 3 {
		t.Errorf("UpstreamRetryMax = %d, want default 3 on invalid input", cfg.UpstreamRetryMax)
	}
	if cfg.UpstreamRetryBaseDelay != 2*time.Second {
		t.Errorf("UpstreamRetryBaseDelay = %v, want default 2s on invalid input", cfg.UpstreamRetryBaseDelay)
	}
	if cfg.FetchPolicy != feed.PolicyStrict {
		t.Errorf("FetchPolicy = %q, want strict on invalid input", cfg.FetchPolicy)
	}
	if cfg.ScheduleTZ != time.UTC {
		t.Errorf("ScheduleTZ = %v, want UTC on invalid input", cfg.ScheduleTZ)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info on invalid input", cfg.LogLevel)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v, want default", cfg.CORSOrigins)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	clearEnv(t)
	if err := os.WriteFile(".env", []byte("HTTP_PORT=9191\nPUBLIC_DIR=site\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("HTTP_PORT")
		os.Unsetenv("PUBLIC_DIR")
	})

	cfg := Load()

	if cfg.HTTPPort != "9191" || cfg.PublicDir != "site" {
		t.Errorf("HTTPPort=%q PublicDir=%q, want values from .env", cfg.HTTPPort, cfg.PublicDir)
	}
}
