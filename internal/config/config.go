// Package config loads service settings from the environment and domain
// tables from an optional YAML file.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required when REGISTRY_SOURCE=db")
	ErrInvalidRefresh     = errors.New("TREND_REFRESH must be a positive duration")
	ErrInvalidRateLimit   = errors.New("RATE_LIMIT_RPS must be >= 0 and RATE_LIMIT_BURST >= 1")
	ErrInvalidSource      = errors.New("REGISTRY_SOURCE must be csv or db")
	ErrInvalidTrendSource = errors.New("TREND_SOURCE must be csv or feed")
)

// Registry sources.
const (
	SourceCSV = "csv"
	SourceDB  = "db"
)

// Trend sources.
const (
	TrendFromCSV  = "csv"
	TrendFromFeed = "feed"
)

const (
	DefaultPort        = "5050"
	DefaultDataDir     = "public/data"
	DefaultState       = "Kerala"
	DefaultRefresh     = 5 * time.Minute
	DefaultFeedBaseURL = "https://trend.kerala.nic.in"
)

// Config holds the service settings.
type Config struct {
	Port           string
	DatabaseURL    string
	RegistrySource string
	DataDir        string
	StateName      string
	TrendSource    string
	TrendCSV       string
	Refresh        time.Duration
	RedisAddr      string
	RedisPass      string
	RedisDB        int
	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string
	TrustProxy     bool
	ConfigFile     string
	FeedBaseURL    string
	GeoBaseURL     string
	LogLevel       string
	LogFormat      string
}

// LoadFromEnv reads the configuration.
//
// Environment variables:
//   - PORT: listen port (default 5050)
//   - DATABASE_URL: Postgres DSN, needed for REGISTRY_SOURCE=db
//   - REGISTRY_SOURCE: csv or db (default csv)
//   - DATA_DIR: root of csv/, topojson/ and geojson/ (default public/data)
//   - STATE_NAME: state directory under topojson/ (default Kerala)
//   - TREND_SOURCE: csv or feed (default csv)
//   - TREND_CSV: detailed trend CSV (default <DATA_DIR>/csv/trend_detailed.csv)
//   - TREND_REFRESH: reload interval (default 5m)
//   - REDIS_ADDR, REDIS_PASS, REDIS_DB: optional summary cache
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST: per-client limit, 0 disables
//   - CORS_ORIGINS: comma separated allow-list
//   - TRUST_PROXY: take the client address from X-Forwarded-For / X-Real-IP
//   - CONFIG_FILE: YAML domain tables
//   - FEED_BASE_URL: live trend host
//   - GEO_BASE_URL: fetch boundary files over HTTP instead of DATA_DIR
//   - LOG_LEVEL, LOG_FORMAT
func LoadFromEnv() Config {
	dataDir := env("DATA_DIR", DefaultDataDir)
	return Config{
		Port:           env("PORT", DefaultPort),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RegistrySource: strings.ToLower(env("REGISTRY_SOURCE", SourceCSV)),
		DataDir:        dataDir,
		StateName:      env("STATE_NAME", DefaultState),
		TrendSource:    strings.ToLower(env("TREND_SOURCE", TrendFromCSV)),
		TrendCSV:       env("TREND_CSV", dataDir+"/csv/trend_detailed.csv"),
		Refresh:        envDuration("TREND_REFRESH", DefaultRefresh),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPass:      os.Getenv("REDIS_PASS"),
		RedisDB:        envInt("REDIS_DB", 0),
		RateLimitRPS:   envFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 40),
		CORSOrigins:    splitList(os.Getenv("CORS_ORIGINS")),
		TrustProxy:     envBool("TRUST_PROXY"),
		ConfigFile:     os.Getenv("CONFIG_FILE"),
		FeedBaseURL:    env("FEED_BASE_URL", DefaultFeedBaseURL),
		GeoBaseURL:     os.Getenv("GEO_BASE_URL"),
		LogLevel:       env("LOG_LEVEL", "info"),
		LogFormat:      env("LOG_FORMAT", "json"),
	}
}

func (c Config) Validate() error {
	switch c.RegistrySource {
	case SourceCSV:
	case SourceDB:
		if c.DatabaseURL == "" {
			return ErrMissingDatabaseURL
		}
	default:
		return ErrInvalidSource
	}
	switch c.TrendSource {
	case TrendFromCSV, TrendFromFeed:
	default:
		return ErrInvalidTrendSource
	}
	if c.Refresh <= 0 {
		return ErrInvalidRefresh
	}
	if c.RateLimitRPS < 0 || (c.RateLimitRPS > 0 && c.RateLimitBurst < 1) {
		return ErrInvalidRateLimit
	}
	return nil
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envDuration returns def when unset. An unparseable value reads as 0 and
// fails Validate.
func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}

func envFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return -1
	}
	return f
}

func envBool(key string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return b
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
