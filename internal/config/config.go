package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // SCHEDULE_TZ must resolve on hosts without zoneinfo

	"github.com/joho/godotenv"

	"github.com/navtrend/navtrend/internal/domain"
	"github.com/navtrend/navtrend/internal/eastmoney"
	"github.com/navtrend/navtrend/internal/feed"
)

// DefaultBaseline is the first day of every published series.
var DefaultBaseline = time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Baseline time.Time
	Registry domain.Registry

	OutputPaths           []string
	XLSXOutput            string
	GoogleSheetsID        string
	GoogleCredentialsJSON string

	UpstreamURL            string
	UpstreamTimeout        time.Duration
	UpstreamRetryMax       int
	UpstreamRetryBaseDelay time.Duration
	UpstreamDelay          time.Duration
	FetchConcurrency       int

	Schedule   string
	ScheduleTZ *time.Location

	DataURLs    []string
	FetchPolicy feed.Policy
	FeedTimeout time.Duration

	HTTPPort    string
	PublicDir   string
	CORSOrigins []string
	LogLevel    slog.Level
}

// Load reads a .env file if present, then environment variables with
// sensible defaults. Invalid values are logged and replaced by the default.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Baseline: envOrDefaultDate("BASELINE_DATE", DefaultBaseline),
		Registry: envOrDefaultRegistry("TRACKED_FUNDS", domain.DefaultRegistry()),

		OutputPaths:           envOrDefaultList("OUTPUT_PATHS", []string{"public/data/fund-data.json", "data/fund-data.json"}),
		XLSXOutput:            envOrDefault("XLSX_OUTPUT", ""),
		GoogleSheetsID:        envOrDefault("GOOGLE_SHEETS_ID", ""),
		GoogleCredentialsJSON: envOrDefault("GOOGLE_CREDENTIALS_JSON", ""),

		UpstreamURL:            envOrDefault("UPSTREAM_URL", eastmoney.DefaultURL),
		UpstreamTimeout:        envOrDefaultDuration("UPSTREAM_TIMEOUT", 10*time.Second),
		UpstreamRetryMax:       envOrDefaultInt("UPSTREAM_RETRY_MAX", 3),
		UpstreamRetryBaseDelay: envOrDefaultDuration("UPSTREAM_RETRY_BASE_DELAY", 2*time.Second),
		UpstreamDelay:          envOrDefaultDuration("UPSTREAM_DELAY", 200*time.Millisecond),
		FetchConcurrency:       envOrDefaultInt("FETCH_CONCURRENCY", 1),

		Schedule:   envOrDefault("SCHEDULE", "0 16 * * 1-5"),
		ScheduleTZ: envOrDefaultLocation("SCHEDULE_TZ", "Asia/Shanghai"),

		DataURLs:    envOrDefaultList("DATA_URLS", []string{"http://localhost:8080/data/fund-data.json"}),
		FetchPolicy: envOrDefaultPolicy("FETCH_POLICY", feed.PolicyStrict),
		FeedTimeout: envOrDefaultDuration("FEED_TIMEOUT", 15*time.Second),

		HTTPPort:    envOrDefault("HTTP_PORT", "8080"),
		PublicDir:   envOrDefault("PUBLIC_DIR", "public"),
		CORSOrigins: envOrDefaultList("CORS_ORIGINS", []string{"*"}),
		LogLevel:    envOrDefaultLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

// SheetsEnabled reports whether both spreadsheet settings are present.
func (c Config) SheetsEnabled() bool {
	return c.GoogleSheetsID != "" && c.GoogleCredentialsJSON != ""
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}

func envOrDefaultDate(key string, defaultVal time.Time) time.Time {
	if v := os.Getenv(key); v != "" {
		d, err := time.Parse(time.DateOnly, v)
		if err != nil {
			slog.Warn("invalid date env var, using default", "key", key, "value", v, "default", defaultVal.Format(time.DateOnly))
			return defaultVal
		}
		return d
	}
	return defaultVal
}

// envOrDefaultList splits a comma-separated value, dropping blank items.
func envOrDefaultList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var items []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		slog.Warn("empty list env var, using default", "key", key, "value", v)
		return defaultVal
	}
	return items
}

func envOrDefaultRegistry(key string, defaultVal domain.Registry) domain.Registry {
	if v := os.Getenv(key); v != "" {
		r, err := domain.ParseRegistry(v)
		if err != nil {
			slog.Warn("invalid fund registry env var, using default", "key", key, "error", err)
			return defaultVal
		}
		return r
	}
	return defaultVal
}

func envOrDefaultPolicy(key string, defaultVal feed.Policy) feed.Policy {
	if v := os.Getenv(key); v != "" {
		p, err := feed.ParsePolicy(v)
		if err != nil {
			slog.Warn("invalid fetch policy env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return p
	}
	return defaultVal
}

func envOrDefaultLocation(key, defaultVal string) *time.Location {
	name := envOrDefault(key, defaultVal)
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("invalid time zone env var, using UTC", "key", key, "value", name, "error", err)
		return time.UTC
	}
	return loc
}

func envOrDefaultLevel(key string, defaultVal slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(v)); err != nil {
			slog.Warn("invalid log level env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return level
	}
	return defaultVal
}
