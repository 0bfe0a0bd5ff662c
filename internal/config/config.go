// Package config loads matchd settings from the environment. Every setting
// has a default; malformed values and out-of-range settings are reported
// together so a misconfigured deployment fails once with the full list.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig lists browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig controls HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// DBConfig selects and locates the datastore.
type DBConfig struct {
	Driver string // DB_DRIVER: sqlite|postgres
	Path   string // DB_PATH: SQLite file (sqlite driver)
	URL    string // DATABASE_URL: connection string (postgres driver)
}

// RedisConfig points at the shared rate-limit store. An empty Addr keeps
// limiting in-process.
type RedisConfig struct {
	Addr     string // REDIS_ADDR, e.g. "localhost:6379"
	Password string // REDIS_PASSWORD
	DB       int    // REDIS_DB
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool { return strings.TrimSpace(r.Addr) != "" }

// AuthConfig defines how callers are identified.
type AuthConfig struct {
	JWTSecret   string        // AUTH_JWT_SECRET: HS256 key for bearer tokens
	AccessTTL   time.Duration // AUTH_ACCESS_TTL: lifetime of issued tokens
	AllowHeader bool          // AUTH_ALLOW_HEADER: trust X-User-ID (dev only)
}

// OTELConfig configures trace export.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT, host:port
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE: plaintext gRPC
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0,1]
}

// Config is the full process configuration.
type Config struct {
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration // graceful drain on SIGINT/SIGTERM
	MaxHeaderBytes    int
	GinMode           string // debug|release|test

	LogLevel       string
	LogPretty      bool
	SwaggerEnabled bool
	APIBasePath    string

	DB DBConfig

	MaxSlotsPerSubmission int

	RateRPS    float64       // local token refill per second
	RateBurst  int           // local bucket size, also the Redis per-window budget
	RateWindow time.Duration // Redis fixed window
	Redis      RedisConfig

	Auth     AuthConfig
	CORS     CORSConfig
	Security SecurityConfig

	IdempotencyTTL time.Duration

	OTEL OTELConfig
}

// MustLoad is Load for callers that cannot continue without configuration.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the environment, applies defaults and validates the result.
// The returned error joins every problem found.
func Load() (Config, error) {
	var env envReader
	cfg := Config{
		Port:              env.str("PORT", "8080"),
		ReadTimeout:       env.dur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: env.dur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      env.dur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       env.dur("IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:   env.dur("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxHeaderBytes:    env.int("MAX_HEADER_BYTES", 1<<20),
		GinMode:           ginMode(env.str("GIN_MODE", "release")),

		LogLevel:       logLevel(env.str("LOG_LEVEL", "info")),
		LogPretty:      env.bool("LOG_PRETTY", false),
		SwaggerEnabled: env.bool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(env.str("API_BASE_PATH", "/api/v1")),

		DB: DBConfig{
			Driver: strings.ToLower(strings.TrimSpace(env.str("DB_DRIVER", "sqlite"))),
			Path:   env.str("DB_PATH", "match.db"),
			URL:    env.str("DATABASE_URL", ""),
		},

		MaxSlotsPerSubmission: env.int("MAX_SLOTS_PER_SUBMISSION", 50),

		RateRPS:    env.float("RATE_RPS", 5),
		RateBurst:  env.int("RATE_BURST", 10),
		RateWindow: env.dur("RATE_WINDOW", time.Second),
		Redis: RedisConfig{
			Addr:     env.str("REDIS_ADDR", ""),
			Password: env.str("REDIS_PASSWORD", ""),
			DB:       env.int("REDIS_DB", 0),
		},

		Auth: AuthConfig{
			JWTSecret:   env.str("AUTH_JWT_SECRET", ""),
			AccessTTL:   env.dur("AUTH_ACCESS_TTL", 15*time.Minute),
			AllowHeader: env.bool("AUTH_ALLOW_HEADER", false),
		},
		CORS: CORSConfig{AllowedOrigins: splitCSV(env.str("CORS_ALLOWED_ORIGINS", ""))},
		Security: SecurityConfig{
			EnableHSTS: env.bool("ENABLE_HSTS", false),
			HSTSMaxAge: env.dur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		IdempotencyTTL: env.dur("IDEMPOTENCY_TTL", 24*time.Hour),

		OTEL: OTELConfig{
			Enabled:     env.bool("OTEL_ENABLED", false),
			Endpoint:    env.str("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    env.bool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: env.str("OTEL_SERVICE_NAME", "go-match-backend"),
			SampleRatio: env.float("OTEL_TRACES_SAMPLER_ARG", 1),
		},
	}
	return cfg, errors.Join(append(env.errs, cfg.validate()...)...)
}

func (c Config) validate() []error {
	var errs []error
	check := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, errors.New(msg))
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error, fatal, panic", c.LogLevel))
	}
	check(strings.TrimSpace(c.Port) != "", "PORT must not be empty")
	for name, d := range map[string]time.Duration{
		"READ_TIMEOUT":        c.ReadTimeout,
		"READ_HEADER_TIMEOUT": c.ReadHeaderTimeout,
		"WRITE_TIMEOUT":       c.WriteTimeout,
		"IDLE_TIMEOUT":        c.IdleTimeout,
		"SHUTDOWN_TIMEOUT":    c.ShutdownTimeout,
	} {
		check(d > 0, name+" must be positive")
	}
	check(c.MaxHeaderBytes > 0, "MAX_HEADER_BYTES must be > 0")

	switch c.DB.Driver {
	case "sqlite":
		check(strings.TrimSpace(c.DB.Path) != "", "DB_PATH must not be empty")
	case "postgres":
		check(strings.TrimSpace(c.DB.URL) != "", "DATABASE_URL is required when DB_DRIVER=postgres")
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not one of sqlite, postgres", c.DB.Driver))
	}

	check(c.MaxSlotsPerSubmission >= 1, "MAX_SLOTS_PER_SUBMISSION must be >= 1")
	check(c.RateRPS >= 0, "RATE_RPS must be >= 0")
	check(c.RateBurst >= 1, "RATE_BURST must be >= 1")
	check(c.RateWindow > 0, "RATE_WINDOW must be > 0")
	check(c.Redis.DB >= 0, "REDIS_DB must be >= 0")
	check(c.Auth.AccessTTL > 0, "AUTH_ACCESS_TTL must be > 0")
	check(c.Auth.JWTSecret != "" || c.Auth.AllowHeader, "AUTH_JWT_SECRET is required unless AUTH_ALLOW_HEADER=true")
	check(c.Security.HSTSMaxAge >= 0, "HSTS_MAX_AGE must be >= 0")
	check(c.IdempotencyTTL > 0, "IDEMPOTENCY_TTL must be > 0")
	check(c.OTEL.SampleRatio >= 0 && c.OTEL.SampleRatio <= 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	return errs
}

// envReader looks up variables and records the ones it could not parse.
// Unset and empty variables take the default.
type envReader struct {
	errs []error
}

func (r *envReader) lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	return v, ok && v != ""
}

func (r *envReader) fail(key, v, kind string) {
	r.errs = append(r.errs, fmt.Errorf("%s=%q is not a valid %s", key, v, kind))
}

func (r *envReader) str(key, def string) string {
	if v, ok := r.lookup(key); ok {
		return v
	}
	return def
}

func (r *envReader) int(key string, def int) int {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		r.fail(key, v, "integer")
		return def
	}
	return n
}

func (r *envReader) float(key string, def float64) float64 {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		r.fail(key, v, "number")
		return def
	}
	return f
}

func (r *envReader) dur(key string, def time.Duration) time.Duration {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		r.fail(key, v, "duration")
		return def
	}
	return d
}

func (r *envReader) bool(key string, def bool) bool {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	}
	r.fail(key, v, "boolean")
	return def
}

func logLevel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		return "warn"
	}
	return s
}

// ginMode falls back to release for anything gin does not know.
func ginMode(s string) string {
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case "debug", "release", "test":
		return s
	}
	return "release"
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeBasePath returns p with one leading slash and no trailing slash,
// or "/" when p is blank.
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}
