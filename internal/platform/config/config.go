// Package config loads the quotebook settings with koanf and checks them with
// validator. Every setting has a default, so an empty environment still
// yields a runnable local configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Defaults that tests and callers compare against. The full set lives in
// defaults().
const (
	DefaultServerPort     = 8080
	DefaultMaxRequestSize = 1 << 20

	DefaultClientRetryMaxAttempts     = 3
	DefaultClientRetryMultiplier      = 2.0
	DefaultClientRetryJitterFactor    = 0.25
	DefaultClientCircuitMaxFailures   = 5
	DefaultClientCircuitHalfOpenLimit = 3

	DefaultTransportMaxIdleConns        = 100
	DefaultTransportMaxIdleConnsPerHost = 10
	DefaultTransportIdleConnTimeout     = 90 * time.Second

	DefaultLogFileMaxSizeMB  = 100
	DefaultLogFileMaxBackups = 3
	DefaultLogFileMaxAgeDays = 28

	DefaultSyncMaxItems   = 10
	DefaultSyncUserID     = 1
	DefaultNoticeCapacity = 20
	DefaultSessionMaxCost = 1 << 20
)

// Config is everything the service reads at startup.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Client    ClientConfig    `koanf:"client"    validate:"required"`
	Services  ServicesConfig  `koanf:"services"  validate:"required"`
	Storage   StorageConfig   `koanf:"storage"   validate:"required"`
	Quotes    QuotesConfig    `koanf:"quotes"    validate:"required"`
	Sync      SyncConfig      `koanf:"sync"      validate:"required"`
}

// AppConfig identifies the running build.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig tunes the HTTP listener.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig picks the log level and output format.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig adds a rotated log file next to stdout.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"       validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"   validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"    validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig controls trace export. Prometheus metrics are always on.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// ClientConfig is shared by every outbound HTTP client.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

// RetryConfig shapes the exponential backoff between attempts.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms,gtefield=InitialInterval"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

// CircuitBreakerConfig decides when a failing remote stops being called.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// TransportConfig sizes the connection pool.
type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"         validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"      validate:"required,min=1s"`
}

// ServicesConfig lists the remotes the service talks to.
type ServicesConfig struct {
	Quote ServiceEndpointConfig `koanf:"quote" validate:"required"`
}

// ServiceEndpointConfig locates one remote. Name labels its logs, metrics and health check.
type ServiceEndpointConfig struct {
	BaseURL string `koanf:"base_url" validate:"required,url"`
	Name    string `koanf:"name"     validate:"required"`
}

// StorageConfig selects the durable key/value driver and the slot names.
type StorageConfig struct {
	Driver      string            `koanf:"driver"       validate:"required,oneof=sqlite postgres memory"`
	SQLitePath  string            `koanf:"sqlite_path"  validate:"required_if=Driver sqlite"`
	PostgresDSN string            `koanf:"postgres_dsn" validate:"required_if=Driver postgres"`
	Table       string            `koanf:"table"        validate:"required"`
	Keys        StorageKeysConfig `koanf:"keys"         validate:"required"`
	Session     SessionConfig     `koanf:"session"`
}

// StorageKeysConfig names the storage slots.
type StorageKeysConfig struct {
	Quotes     string `koanf:"quotes"      validate:"required"`
	Filter     string `koanf:"filter"      validate:"required"`
	LastViewed string `koanf:"last_viewed" validate:"required"`
}

// SessionConfig sizes the in-process session cache.
type SessionConfig struct {
	NumCounters int64 `koanf:"num_counters" validate:"omitempty,min=1"`
	MaxCost     int64 `koanf:"max_cost"     validate:"omitempty,min=1"`
	BufferItems int64 `koanf:"buffer_items" validate:"omitempty,min=1"`
}

// QuotesConfig holds the quote store rules.
type QuotesConfig struct {
	ImportPolicy     string `koanf:"import_policy"      validate:"required,oneof=replace append"`
	AllowEmptyExport bool   `koanf:"allow_empty_export"`
	NoticeCapacity   int    `koanf:"notice_capacity"    validate:"required,min=1,max=1000"`
}

// SyncConfig drives the periodic reconciliation with the remote source.
type SyncConfig struct {
	Enabled       bool          `koanf:"enabled"`
	Interval      time.Duration `koanf:"interval"        validate:"required,min=1s"`
	Source        string        `koanf:"source"          validate:"required,oneof=http static"`
	MaxItems      int           `koanf:"max_items"       validate:"required,min=1,max=100"`
	Category      string        `koanf:"category"        validate:"required,ne=all"`
	PostNewQuotes bool          `koanf:"post_new_quotes"`
	UserID        int           `koanf:"user_id"         validate:"required,min=1"`
	StaticLatency time.Duration `koanf:"static_latency"  validate:"min=0"`
}

func defaults() map[string]any {
	return map[string]any{
		"app.name":        "quotebook",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/app.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "quotebook",
		"telemetry.sampling_rate": 1.0,

		"client.timeout":                           "30s",
		"client.retry.max_attempts":                DefaultClientRetryMaxAttempts,
		"client.retry.initial_interval":            "100ms",
		"client.retry.max_interval":                "5s",
		"client.retry.multiplier":                  DefaultClientRetryMultiplier,
		"client.retry.jitter_factor":               DefaultClientRetryJitterFactor,
		"client.circuit_breaker.max_failures":      DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":           "30s",
		"client.circuit_breaker.half_open_limit":   DefaultClientCircuitHalfOpenLimit,
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       DefaultTransportIdleConnTimeout,

		"services.quote.base_url": "https://jsonplaceholder.typicode.com",
		"services.quote.name":     "quote-source",

		"storage.driver":           "sqlite",
		"storage.sqlite_path":      "./data/quotebook.db",
		"storage.postgres_dsn":     "",
		"storage.table":            "kv",
		"storage.keys.quotes":      "quotes",
		"storage.keys.filter":      "selectedCategory",
		"storage.keys.last_viewed": "lastViewedQuote",
		"storage.session.max_cost": DefaultSessionMaxCost,

		"quotes.import_policy":      "replace",
		"quotes.allow_empty_export": false,
		"quotes.notice_capacity":    DefaultNoticeCapacity,

		"sync.enabled":         true,
		"sync.interval":        "60s",
		"sync.source":          "http",
		"sync.max_items":       DefaultSyncMaxItems,
		"sync.category":        "Server",
		"sync.post_new_quotes": false,
		"sync.user_id":         DefaultSyncUserID,
		"sync.static_latency":  "1s",
	}
}

// envPrefix marks the environment variables that override settings.
const envPrefix = "APP_"

// Load builds the configuration from, in rising precedence: defaults(),
// configs/base.yaml, configs/<profile>.yaml and APP_* environment variables.
// Missing files are skipped. Load does not validate; call Validate.
func Load(profile string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	files := []string{"configs/base.yaml"}
	if profile != "" {
		files = append(files, fmt.Sprintf("configs/%s.yaml", profile))
	}

	for _, path := range files {
		if err := loadFileIfExists(k, path); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey(k.Keys())), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKey maps APP_SYNC_MAX_ITEMS to sync.max_items. Underscores are
// ambiguous, so names are resolved against the known keys first and fall back
// to treating every underscore as a level separator.
func envKey(known []string) func(string) string {
	byEnv := make(map[string]string, len(known))
	for _, key := range known {
		byEnv[strings.ReplaceAll(key, ".", "_")] = key
	}

	return func(name string) string {
		name = strings.ToLower(strings.TrimPrefix(name, envPrefix))
		if key, ok := byEnv[name]; ok {
			return key
		}

		return strings.ReplaceAll(name, "_", ".")
	}
}

func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
