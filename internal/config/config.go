// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	CORSOrigins []string

	// MaxBodyBytes caps request bodies. Target lists are the largest payloads.
	MaxBodyBytes int64

	// ORSAPIKey enables the openrouteservice client. When empty, travel
	// times come from the great-circle estimator.
	ORSAPIKey  string
	ORSBaseURL string

	// RoutingTimeout bounds one day recomputation.
	RoutingTimeout     time.Duration
	RoutingRatePerSec  float64
	RoutingBurst       int
	RoutingConcurrency int

	CoverageTopN            int
	CriticalMinPercent      float64
	CriticalMinObservations float64

	// MigrateOnStart runs the embedded goose migrations before serving.
	MigrateOnStart bool
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or the
// first variable that does not parse.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		ORSAPIKey:   os.Getenv("ORS_API_KEY"),
		ORSBaseURL:  getEnv("ORS_BASE_URL", "https://api.openrouteservice.org"),
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	p := parser{}
	cfg.MaxBodyBytes = p.int64("MAX_BODY_BYTES", 1<<20)
	cfg.RoutingTimeout = p.duration("ROUTING_TIMEOUT", 20*time.Second)
	cfg.RoutingRatePerSec = p.float("ROUTING_RATE_PER_SEC", 1)
	cfg.RoutingBurst = p.int("ROUTING_BURST", 10)
	cfg.RoutingConcurrency = p.int("ROUTING_CONCURRENCY", 4)
	cfg.CoverageTopN = p.int("COVERAGE_TOP_N", 5)
	cfg.CriticalMinPercent = p.float("CRITICAL_MIN_PERCENT", 15)
	cfg.CriticalMinObservations = p.float("CRITICAL_MIN_OBSERVATIONS", 10)
	cfg.MigrateOnStart = p.bool("MIGRATE_ON_START", false)
	if p.err != nil {
		return Config{}, p.err
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// parser reads typed variables and keeps the first parse error.
type parser struct {
	err error
}

func (p *parser) lookup(key string, parse func(string) error) {
	v := os.Getenv(key)
	if v == "" || p.err != nil {
		return
	}
	if err := parse(v); err != nil {
		p.err = fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
}

func (p *parser) int(key string, fallback int) int {
	out := fallback
	p.lookup(key, func(v string) (err error) {
		out, err = strconv.Atoi(v)
		return err
	})
	return out
}

func (p *parser) int64(key string, fallback int64) int64 {
	out := fallback
	p.lookup(key, func(v string) (err error) {
		out, err = strconv.ParseInt(v, 10, 64)
		return err
	})
	return out
}

func (p *parser) float(key string, fallback float64) float64 {
	out := fallback
	p.lookup(key, func(v string) (err error) {
		out, err = strconv.ParseFloat(v, 64)
		return err
	})
	return out
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	out := fallback
	p.lookup(key, func(v string) (err error) {
		out, err = time.ParseDuration(v)
		return err
	})
	return out
}

func (p *parser) bool(key string, fallback bool) bool {
	out := fallback
	p.lookup(key, func(v string) (err error) {
		out, err = strconv.ParseBool(v)
		return err
	})
	return out
}
