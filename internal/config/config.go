package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Donation source
	DataBackend   string // "file" or "sqlite"
	DonationsFile string
	SQLiteDBPath  string

	// Cleaning
	Timezone string // IANA name used to derive hour/day fields

	// Aggregation defaults
	TimelineBucket time.Duration
	TopDonorsLimit int
	HistogramEdges []float64

	// Cache
	CacheTTL time.Duration

	// AMQP (optional; empty URL disables publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export (worker)
	GoogleSpreadsheetID string
	GoogleSheetName     string
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend:   getEnv("DATA_BACKEND", "file"),
		DonationsFile: getEnv("DONATIONS_FILE", "./data/donations.json"),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/dons.db"),

		Timezone: getEnv("TIMEZONE", "UTC"),

		TimelineBucket: getEnvDuration("TIMELINE_BUCKET", time.Hour),
		TopDonorsLimit: getEnvInt("TOP_DONORS_LIMIT", 10),
		HistogramEdges: getEnvEdges("HISTOGRAM_EDGES", nil),

		CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "dons"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "dataset_refresh"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Donations"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "file":
		if c.DonationsFile == "" {
			errors = append(errors, "donations file path is required for file backend")
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path is required for sqlite backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [file sqlite]", c.DataBackend))
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if c.TimelineBucket <= 0 {
		errors = append(errors, "timeline bucket must be positive")
	}
	if c.TopDonorsLimit <= 0 {
		errors = append(errors, "top donors limit must be positive")
	}
	for i := 1; i < len(c.HistogramEdges); i++ {
		if c.HistogramEdges[i] <= c.HistogramEdges[i-1] {
			errors = append(errors, "histogram edges must be strictly ascending")
			break
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errors, "; "))
	}
	return nil
}

// Location resolves the configured timezone. Call Validate first; an
// unloadable name falls back to UTC here.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvEdges parses a comma-separated ascending list of bin edges
// (e.g. "0,5,10,20,50,100,500"). Invalid values fall back.
func getEnvEdges(key string, fallback []float64) []float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	edges := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return fallback
		}
		edges = append(edges, f)
	}
	return edges
}
