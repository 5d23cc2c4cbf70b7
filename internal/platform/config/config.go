// Package config loads layered YAML and environment configuration with koanf
// and validates it before the service starts.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Defaults that code outside this package or its tests refers to. The full
// set of defaults lives in defaults().
const (
	DefaultServerPort     = 8080
	DefaultMaxRequestSize = 1 << 20

	DefaultClientRetryMaxAttempts  = 3
	DefaultClientRetryMultiplier   = 2.0
	DefaultClientRetryJitterFactor = 0.25 // backoff varies by up to 25% either way

	DefaultClientCircuitMaxFailures   = 5
	DefaultClientCircuitHalfOpenLimit = 3

	DefaultTransportMaxIdleConns        = 100
	DefaultTransportMaxIdleConnsPerHost = 10

	DefaultLogFileMaxSizeMB  = 100
	DefaultLogFileMaxBackups = 3
	DefaultLogFileMaxAgeDays = 28

	DefaultSyncInterval        = 30 * time.Second
	DefaultSyncPullLimit       = 20
	DefaultSyncPushConcurrency = 4

	DefaultNotificationCapacity = 50

	// DefaultConfigDir holds base.yaml and one YAML file per profile.
	DefaultConfigDir = "configs"
)

// Category mapping modes for pulled records.
const (
	CategoryModeBody  = "body"
	CategoryModeFixed = "fixed"
)

// Config is the root configuration structure.
type Config struct {
	App           AppConfig          `koanf:"app"           validate:"required"`
	Server        ServerConfig       `koanf:"server"        validate:"required"`
	Log           LogConfig          `koanf:"log"           validate:"required"`
	Telemetry     TelemetryConfig    `koanf:"telemetry"`
	Client        ClientConfig       `koanf:"client"        validate:"required"`
	Services      ServicesConfig     `koanf:"services"      validate:"required"`
	Storage       StorageConfig      `koanf:"storage"       validate:"required"`
	Sync          SyncConfig         `koanf:"sync"          validate:"required"`
	Notifications NotificationConfig `koanf:"notifications"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	RequestTimeout  time.Duration `koanf:"request_timeout"  validate:"required,min=100ms"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// ClientConfig contains HTTP client settings for the remote quote service.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

// RetryConfig contains retry settings for HTTP clients.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

// CircuitBreakerConfig contains circuit breaker settings for HTTP clients.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// TransportConfig contains HTTP transport pool settings.
type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"          validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"       validate:"required,min=1s"`
}

// ServicesConfig contains configuration for downstream services.
type ServicesConfig struct {
	Quotes QuoteServiceConfig `koanf:"quotes" validate:"required"`
}

// QuoteServiceConfig describes the remote list resource quotes sync with.
type QuoteServiceConfig struct {
	BaseURL  string `koanf:"base_url" validate:"required,url"`
	Name     string `koanf:"name"     validate:"required"`
	Resource string `koanf:"resource" validate:"required,startswith=/"`
	UserID   int    `koanf:"user_id"  validate:"min=0"`
	APIKey   string `koanf:"api_key"`
}

// StorageConfig selects where quotes are persisted.
type StorageConfig struct {
	Driver string `koanf:"driver" validate:"required,oneof=file sqlite memory"`
	Path   string `koanf:"path"   validate:"required_unless=Driver memory"`
	Watch  bool   `koanf:"watch"`
}

// SyncConfig controls reconciliation with the remote service.
type SyncConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Interval        time.Duration `koanf:"interval"         validate:"required,min=1s"`
	RunOnStart      bool          `koanf:"run_on_start"`
	PullLimit       int           `koanf:"pull_limit"       validate:"required,min=1,max=1000"`
	PushConcurrency int           `koanf:"push_concurrency" validate:"required,min=1,max=32"`
	CategoryMode    string        `koanf:"category_mode"    validate:"required,oneof=body fixed"`
	FixedCategory   string        `koanf:"fixed_category"   validate:"required_if=CategoryMode fixed"`
}

// NotificationConfig sizes the notification board.
type NotificationConfig struct {
	Capacity int `koanf:"capacity" validate:"required,min=1,max=1000"`
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "quotesync",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.request_timeout":  "20s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/quotesync.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "quotesync",
		"telemetry.sampling_rate": 1.0,

		"client.timeout":                           "10s",
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
		"client.transport.idle_conn_timeout":       "90s",

		"services.quotes.base_url": "https://jsonplaceholder.typicode.com",
		"services.quotes.name":     "quote-remote",
		"services.quotes.resource": "/posts",
		"services.quotes.user_id":  1,
		"services.quotes.api_key":  "",

		"storage.driver": "file",
		"storage.path":   "./data/quotes.json",
		"storage.watch":  true,

		"sync.enabled":          true,
		"sync.interval":         DefaultSyncInterval.String(),
		"sync.run_on_start":     true,
		"sync.pull_limit":       DefaultSyncPullLimit,
		"sync.push_concurrency": DefaultSyncPushConcurrency,
		"sync.category_mode":    CategoryModeBody,
		"sync.fixed_category":   "Server",

		"notifications.capacity": DefaultNotificationCapacity,
	}
}

// Load reads the configuration from DefaultConfigDir. See LoadDir.
func Load(profile string) (*Config, error) {
	return LoadDir(DefaultConfigDir, profile)
}

// LoadDir layers, lowest first: built-in defaults, dir/base.yaml, the
// profile file dir/<profile>.yaml, then APP_ environment variables. Missing
// files are skipped. The result is not validated; call Validate.
func LoadDir(dir, profile string) (*Config, error) {
	k := koanf.New(".")

	layers := []struct {
		name string
		load func() error
	}{
		{"defaults", func() error { return k.Load(confmap.Provider(defaults(), "."), nil) }},
		{"base.yaml", func() error { return loadYAML(k, filepath.Join(dir, "base.yaml")) }},
		{profile + ".yaml", func() error {
			if profile == "" {
				return nil
			}

			return loadYAML(k, filepath.Join(dir, profile+".yaml"))
		}},
		{"environment", func() error { return k.Load(env.Provider("APP_", ".", envKeyMapper(k.Keys())), nil) }},
	}

	for _, l := range layers {
		if err := l.load(); err != nil {
			return nil, fmt.Errorf("loading %s: %w", l.name, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	return &cfg, nil
}

// envKeyMapper maps APP_SYNC_PULL_LIMIT to sync.pull_limit. Underscores are
// ambiguous, so the flattened name is first looked up among the keys loaded
// so far and only otherwise split on every underscore.
func envKeyMapper(known []string) func(string) string {
	keys := make(map[string]string, len(known))
	for _, key := range known {
		keys[strings.ReplaceAll(key, ".", "_")] = key
	}

	return func(name string) string {
		flat := strings.ToLower(strings.TrimPrefix(name, "APP_"))
		if key, ok := keys[flat]; ok {
			return key
		}

		return strings.ReplaceAll(flat, "_", ".")
	}
}

func loadYAML(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
