package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a configuration that passes Validate.
func validConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "quotesync",
			Version:     "0.3.1",
			Environment: "local",
		},
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RequestTimeout:  20 * time.Second,
			MaxRequestSize:  1048576,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Client: ClientConfig{
			Timeout: 30 * time.Second,
			Retry: RetryConfig{
				MaxAttempts:     3,
				InitialInterval: 100 * time.Millisecond,
				MaxInterval:     5 * time.Second,
				Multiplier:      2.0,
				JitterFactor:    0.25,
			},
			CircuitBreaker: CircuitBreakerConfig{
				MaxFailures:   5,
				Timeout:       30 * time.Second,
				HalfOpenLimit: 3,
			},
			Transport: TransportConfig{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		Services: ServicesConfig{
			Quotes: QuoteServiceConfig{
				BaseURL:  "https://jsonplaceholder.typicode.com",
				Name:     "quote-remote",
				Resource: "/posts",
				UserID:   1,
			},
		},
		Storage: StorageConfig{
			Driver: "file",
			Path:   "./data/quotes.json",
		},
		Sync: SyncConfig{
			Enabled:         true,
			Interval:        30 * time.Second,
			PullLimit:       20,
			PushConcurrency: 4,
			CategoryMode:    CategoryModeBody,
		},
		Notifications: NotificationConfig{
			Capacity: 50,
		},
	}
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	for _, env := range []string{"local", "dev", "qa", "prod", "test"} {
		cfg := validConfig()
		cfg.App.Environment = env
		assert.NoError(t, cfg.Validate(), env)
	}
}

// TestConfig_Validate_Fields breaks one setting at a time and checks the
// single key and problem reported for it.
func TestConfig_Validate_Fields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		key     string
		problem string
	}{
		{"app name", func(c *Config) { c.App.Name = "" }, "app.name", "is required"},
		{"app version", func(c *Config) { c.App.Version = "" }, "app.version", "is required"},
		{"unknown environment", func(c *Config) { c.App.Environment = "staging" }, "app.environment", "must be one of: local dev qa prod test"},

		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server.port", "is required"},
		{"negative port", func(c *Config) { c.Server.Port = -1 }, "server.port", "must be at least 1"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "server.port", "must be at most 65535"},
		{"server host", func(c *Config) { c.Server.Host = "" }, "server.host", "is required"},
		{"read timeout too short", func(c *Config) { c.Server.ReadTimeout = 500 * time.Millisecond }, "server.read_timeout", "must be at least 1s"},
		{"request timeout too short", func(c *Config) { c.Server.RequestTimeout = 10 * time.Millisecond }, "server.request_timeout", "must be at least 100ms"},
		{"request size", func(c *Config) { c.Server.MaxRequestSize = -1 }, "server.max_request_size", "must be at least 1"},

		{"log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level", "must be one of: trace debug info warn error"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format", "must be one of: json text pretty"},
		{"log file without path", func(c *Config) { c.Log.File.Enabled = true }, "log.file.path", "is required when Enabled true"},
		{"log file too large", func(c *Config) {
			c.Log.File = LogFileConfig{Enabled: true, Path: "quotesync.log", MaxSizeMB: 2048}
		}, "log.file.max_size", "must be at most 1024"},
		{"log file kept too long", func(c *Config) {
			c.Log.File = LogFileConfig{Enabled: true, Path: "quotesync.log", MaxAgeDays: 400}
		}, "log.file.max_age", "must be at most 365"},

		{"telemetry without endpoint", func(c *Config) {
			c.Telemetry = TelemetryConfig{Enabled: true, ServiceName: "quotesync"}
		}, "telemetry.endpoint", "is required when Enabled true"},
		{"telemetry endpoint not a url", func(c *Config) {
			c.Telemetry = TelemetryConfig{Enabled: true, ServiceName: "quotesync", Endpoint: "collector"}
		}, "telemetry.endpoint", "must be a valid URL"},
		{"telemetry without service name", func(c *Config) {
			c.Telemetry = TelemetryConfig{Enabled: true, Endpoint: "http://localhost:4317"}
		}, "telemetry.service_name", "is required when Enabled true"},
		{"sampling above one", func(c *Config) { c.Telemetry.SamplingRate = 1.5 }, "telemetry.sampling_rate", "must be at most 1"},

		{"client timeout", func(c *Config) { c.Client.Timeout = 0 }, "client.timeout", "is required"},
		{"too many attempts", func(c *Config) { c.Client.Retry.MaxAttempts = 11 }, "client.retry.max_attempts", "must be at most 10"},
		{"initial interval too short", func(c *Config) { c.Client.Retry.InitialInterval = 5 * time.Millisecond }, "client.retry.initial_interval", "must be at least 10ms"},
		{"multiplier too small", func(c *Config) { c.Client.Retry.Multiplier = 1 }, "client.retry.multiplier", "must be at least 1.1"},
		{"jitter above one", func(c *Config) { c.Client.Retry.JitterFactor = 2 }, "client.retry.jitter_factor", "must be at most 1"},
		{"breaker max failures", func(c *Config) { c.Client.CircuitBreaker.MaxFailures = 0 }, "client.circuit_breaker.max_failures", "is required"},
		{"breaker timeout too short", func(c *Config) { c.Client.CircuitBreaker.Timeout = time.Millisecond }, "client.circuit_breaker.timeout", "must be at least 1s"},
		{"idle conns", func(c *Config) { c.Client.Transport.MaxIdleConns = 0 }, "client.transport.max_idle_conns", "is required"},

		{"remote url", func(c *Config) { c.Services.Quotes.BaseURL = "not a url" }, "services.quotes.base_url", "must be a valid URL"},
		{"remote resource", func(c *Config) { c.Services.Quotes.Resource = "posts" }, "services.quotes.resource", "must start with /"},
		{"remote user", func(c *Config) { c.Services.Quotes.UserID = -3 }, "services.quotes.user_id", "must be at least 0"},

		{"storage driver", func(c *Config) { c.Storage.Driver = "redis" }, "storage.driver", "must be one of: file sqlite memory"},
		{"sqlite without path", func(c *Config) {
			c.Storage = StorageConfig{Driver: "sqlite"}
		}, "storage.path", "is required unless Driver memory"},

		{"sync interval", func(c *Config) { c.Sync.Interval = 100 * time.Millisecond }, "sync.interval", "must be at least 1s"},
		{"pull limit too high", func(c *Config) { c.Sync.PullLimit = 5000 }, "sync.pull_limit", "must be at most 1000"},
		{"push concurrency too high", func(c *Config) { c.Sync.PushConcurrency = 64 }, "sync.push_concurrency", "must be at most 32"},
		{"category mode", func(c *Config) { c.Sync.CategoryMode = "title" }, "sync.category_mode", "must be one of: body fixed"},
		{"fixed mode without category", func(c *Config) { c.Sync.CategoryMode = CategoryModeFixed }, "sync.fixed_category", "is required when CategoryMode fixed"},

		{"board capacity", func(c *Config) { c.Notifications.Capacity = 0 }, "notifications.capacity", "is required"},

		{"max interval below initial", func(c *Config) {
			c.Client.Retry.InitialInterval = 2 * time.Second
			c.Client.Retry.MaxInterval = time.Second
		}, "client.retry.max_interval", "must not be below initial_interval (2s)"},
		{"fixed category All", func(c *Config) {
			c.Sync.CategoryMode = CategoryModeFixed
			c.Sync.FixedCategory = " all "
		}, "sync.fixed_category", "must not be the reserved category All"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			var verr *ValidationError
			require.ErrorAs(t, cfg.Validate(), &verr)

			assert.Equal(t, []FieldError{{Key: tt.key, Problem: tt.problem}}, verr.Fields)
		})
	}
}

func TestConfig_Validate_Accepts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"memory store without path", func(c *Config) { c.Storage = StorageConfig{Driver: "memory"} }},
		{"disabled log file without path", func(c *Config) { c.Log.File = LogFileConfig{Enabled: false} }},
		{"disabled telemetry without endpoint", func(c *Config) { c.Telemetry = TelemetryConfig{} }},
		{"All outside fixed mode", func(c *Config) { c.Sync.FixedCategory = "All" }},
		{"ordinary fixed category", func(c *Config) {
			c.Sync.CategoryMode = CategoryModeFixed
			c.Sync.FixedCategory = "Travel"
		}},
		{"equal retry intervals", func(c *Config) {
			c.Client.Retry.InitialInterval = time.Second
			c.Client.Retry.MaxInterval = time.Second
		}},
		{"zero jitter", func(c *Config) { c.Client.Retry.JitterFactor = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestConfig_Validate_ReportsEverything(t *testing.T) {
	cfg := validConfig()
	cfg.Sync.PullLimit = 0
	cfg.Storage.Driver = "redis"
	cfg.Client.Retry.InitialInterval = 10 * time.Second

	var verr *ValidationError
	require.ErrorAs(t, cfg.Validate(), &verr)

	keys := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		keys = append(keys, f.Key)
	}

	assert.ElementsMatch(t, []string{"sync.pull_limit", "storage.driver", "client.retry.max_interval"}, keys)
	assert.Contains(t, verr.Error(), "config validation failed:\n  ")
	assert.Contains(t, verr.Error(), "\n  sync.pull_limit is required")
}

func TestConfig_Validate_EmptyConfig(t *testing.T) {
	err := (&Config{}).Validate()
	require.Error(t, err)

	for _, key := range []string{"app", "server", "storage", "sync", "services", "notifications.capacity"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestKeyOf(t *testing.T) {
	tests := map[string]string{
		"Config.server.port":               "server.port",
		"Config.client.retry.max_attempts": "client.retry.max_attempts",
		"Config.services.quotes.base_url":  "services.quotes.base_url",
		"port":                             "port",
	}

	for namespace, want := range tests {
		assert.Equal(t, want, keyOf(namespace), namespace)
	}
}
