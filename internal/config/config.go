package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string

	GateTokenSecret   string
	GatePassphrase    string
	GateMaxAttempts   int
	GateLockoutWindow time.Duration
	GateSessionTTL    time.Duration

	DefaultRestPercentage     float64
	SettingsCacheTTL          time.Duration
	DashboardCacheTTL         time.Duration
	DashboardDefaultRangeDays int

	IdempotencyTTL         time.Duration
	RateLimit              string
	BodyLimitBytes         int64
	SecurityHeadersEnabled bool
	HSTSEnabled            bool
	AuditEnabled           bool
	AuditSamplingRate      float64

	LogFormat        string
	LogLevel         string
	MetricsEnabled   bool
	MetricsNamespace string
	MetricsBuckets   string
	TracingEnabled   bool
	TracingExporter  string
	OTLPEndpoint     string
	TracingSampling  float64
	PprofEnabled     bool
	PprofUser        string
	PprofPass        string

	AutoMigrate       bool
	LockTTL           time.Duration
	LockRetryBackoff  time.Duration
	WorkerConcurrency int
	ListDefaultLimit  int
	ListMaxLimit      int
}

// defaults is the bottom koanf layer; the environment overrides it key by key.
var defaults = map[string]string{
	"APP_ENV":                         "development",
	"PORT":                            "8080",
	"GATE_MAX_ATTEMPTS":               "5",
	"GATE_LOCKOUT_WINDOW":             "15m",
	"GATE_SESSION_TTL":                "12h",
	"COMMISSION_DEFAULT_REST_PERCENT": "25",
	"SETTINGS_CACHE_TTL":              "1m",
	"DASHBOARD_CACHE_TTL":             "5m",
	"DASHBOARD_DEFAULT_RANGE_DAYS":    "30",
	"IDEMPOTENCY_TTL":                 "24h",
	"RATE_LIMIT":                      "300-M",
	"BODY_LIMIT_BYTES":                "1048576",
	"SECURITY_HEADERS_ENABLED":        "true",
	"HSTS_ENABLED":                    "false",
	"AUDIT_ENABLED":                   "true",
	"AUDIT_SAMPLING_RATE":             "1",
	"OBS_LOG_FORMAT":                  "json",
	"OBS_LOG_LEVEL":                   "info",
	"OBS_ENABLE_PROMETHEUS":           "true",
	"OBS_METRICS_NAMESPACE":           "komisi",
	"OBS_ENABLE_TRACING":              "false",
	"OBS_TRACING_EXPORTER":            "otlp",
	"OBS_TRACING_SAMPLING_RATIO":      "1",
	"OBS_ENABLE_PPROF":                "false",
	"DB_AUTO_MIGRATE":                 "false",
	"LOCK_TTL":                        "5s",
	"LOCK_RETRY_BACKOFF":              "50ms",
	"WORKER_CONCURRENCY":              "4",
	"LIST_DEFAULT_LIMIT":              "20",
	"LIST_MAX_LIMIT":                  "100",
}

// stringMap is a koanf.Provider over a flat map of strings.
type stringMap map[string]string

func (m stringMap) ReadBytes() ([]byte, error) {
	return nil, errors.New("config: stringMap does not provide bytes")
}

func (m stringMap) Read() (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out, nil
}

// Load reads configuration from the process environment, after applying an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(env.Provider("", ".", func(s string) string { return s }))
}

func load(overrides koanf.Provider) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(stringMap(defaults), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if err := k.Load(overrides, nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	r := reader{k: k}
	cfg := &Config{
		AppEnv:             r.str("APP_ENV"),
		Port:               r.str("PORT"),
		DatabaseURL:        r.str("DATABASE_URL"),
		RedisURL:           r.str("REDIS_URL"),
		CORSAllowedOrigins: r.list("CORS_ALLOWED_ORIGINS"),

		GateTokenSecret:   r.str("GATE_TOKEN_SECRET"),
		GatePassphrase:    r.str("GATE_PASSPHRASE"),
		GateMaxAttempts:   r.integer("GATE_MAX_ATTEMPTS"),
		GateLockoutWindow: r.duration("GATE_LOCKOUT_WINDOW"),
		GateSessionTTL:    r.duration("GATE_SESSION_TTL"),

		DefaultRestPercentage:     r.float("COMMISSION_DEFAULT_REST_PERCENT"),
		SettingsCacheTTL:          r.duration("SETTINGS_CACHE_TTL"),
		DashboardCacheTTL:         r.duration("DASHBOARD_CACHE_TTL"),
		DashboardDefaultRangeDays: r.integer("DASHBOARD_DEFAULT_RANGE_DAYS"),

		IdempotencyTTL:         r.duration("IDEMPOTENCY_TTL"),
		RateLimit:              r.str("RATE_LIMIT"),
		BodyLimitBytes:         int64(r.integer("BODY_LIMIT_BYTES")),
		SecurityHeadersEnabled: r.boolean("SECURITY_HEADERS_ENABLED"),
		HSTSEnabled:            r.boolean("HSTS_ENABLED"),
		AuditEnabled:           r.boolean("AUDIT_ENABLED"),
		AuditSamplingRate:      r.float("AUDIT_SAMPLING_RATE"),

		LogFormat:        r.str("OBS_LOG_FORMAT"),
		LogLevel:         r.str("OBS_LOG_LEVEL"),
		MetricsEnabled:   r.boolean("OBS_ENABLE_PROMETHEUS"),
		MetricsNamespace: r.str("OBS_METRICS_NAMESPACE"),
		MetricsBuckets:   r.str("OBS_METRICS_BUCKETS_MS"),
		TracingEnabled:   r.boolean("OBS_ENABLE_TRACING"),
		TracingExporter:  r.str("OBS_TRACING_EXPORTER"),
		OTLPEndpoint:     r.str("OBS_OTLP_ENDPOINT"),
		TracingSampling:  r.float("OBS_TRACING_SAMPLING_RATIO"),
		PprofEnabled:     r.boolean("OBS_ENABLE_PPROF"),
		PprofUser:        r.str("SECURE_PPROF_BASIC_AUTH_USER"),
		PprofPass:        r.str("SECURE_PPROF_BASIC_AUTH_PASS"),

		AutoMigrate:       r.boolean("DB_AUTO_MIGRATE"),
		LockTTL:           r.duration("LOCK_TTL"),
		LockRetryBackoff:  r.duration("LOCK_RETRY_BACKOFF"),
		WorkerConcurrency: r.integer("WORKER_CONCURRENCY"),
		ListDefaultLimit:  r.integer("LIST_DEFAULT_LIMIT"),
		ListMaxLimit:      r.integer("LIST_MAX_LIMIT"),
	}
	if err := errors.Join(append(r.errs, cfg.validate()...)...); err != nil {
		return nil, err
	}
	if cfg.ListMaxLimit < cfg.ListDefaultLimit {
		cfg.ListMaxLimit = cfg.ListDefaultLimit
	}
	return cfg, nil
}

func (c *Config) validate() []error {
	var errs []error
	for key, v := range map[string]string{
		"DATABASE_URL":      c.DatabaseURL,
		"REDIS_URL":         c.RedisURL,
		"GATE_TOKEN_SECRET": c.GateTokenSecret,
	} {
		if v == "" {
			errs = append(errs, fmt.Errorf("%s is required", key))
		}
	}
	if c.DefaultRestPercentage < 0 || c.DefaultRestPercentage > 100 {
		errs = append(errs, fmt.Errorf("COMMISSION_DEFAULT_REST_PERCENT must be between 0 and 100, got %v", c.DefaultRestPercentage))
	}
	if c.GateMaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("GATE_MAX_ATTEMPTS must be positive, got %d", c.GateMaxAttempts))
	}
	return errs
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.AppEnv), "production")
}

// reader converts koanf string values, collecting one error per malformed key.
type reader struct {
	k    *koanf.Koanf
	errs []error
}

func (r *reader) str(key string) string { return strings.TrimSpace(r.k.String(key)) }

func (r *reader) list(key string) []string {
	return strings.FieldsFunc(r.str(key), func(c rune) bool { return c == ',' || c == ' ' })
}

func (r *reader) fail(key string, err error) {
	r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
}

func (r *reader) duration(key string) time.Duration {
	d, err := time.ParseDuration(r.str(key))
	if err != nil {
		r.fail(key, err)
	}
	return d
}

func (r *reader) integer(key string) int {
	n, err := strconv.Atoi(r.str(key))
	if err != nil {
		r.fail(key, err)
	}
	return n
}

func (r *reader) float(key string) float64 {
	f, err := strconv.ParseFloat(r.str(key), 64)
	if err != nil {
		r.fail(key, err)
	}
	return f
}

func (r *reader) boolean(key string) bool {
	switch strings.ToLower(r.str(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		r.fail(key, fmt.Errorf("invalid boolean %q", r.str(key)))
		return false
	}
}
