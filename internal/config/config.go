package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppName is the environment variable prefix, e.g. CALCULATOR_SERVER_PORT.
const AppName = "CALCULATOR"

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Port            string        `envconfig:"PORT" default:"8080"`
	BasePath        string        `envconfig:"BASE_PATH" default:"/api/v1"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
}

// Addr returns the host:port pair for http.Server.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// ServiceConfig tunes the calculator service.
type ServiceConfig struct {
	// AddDelay is slept on every uncached add so cache hits are observable.
	AddDelay time.Duration `envconfig:"ADD_DELAY" default:"1s"`
	// CacheCapacity bounds the result cache. Zero means unbounded.
	CacheCapacity uint64 `envconfig:"CACHE_CAPACITY" default:"0"`
}

type LogConfig struct {
	Level string `envconfig:"LEVEL" default:"info"`
}

// TelemetryConfig switches the OTLP exporters. Endpoints are read by the
// exporters themselves from the standard OTEL_EXPORTER_OTLP_* variables.
type TelemetryConfig struct {
	Enabled     bool   `envconfig:"ENABLED" default:"false"`
	ServiceName string `envconfig:"SERVICE_NAME" default:"calculator-api"`
	ExportLogs  bool   `envconfig:"EXPORT_LOGS" default:"false"`
}

// Config is the application configuration, filled by envconfig with the
// CALCULATOR prefix.
type Config struct {
	Server    ServerConfig    `envconfig:"SERVER"`
	Service   ServiceConfig   `envconfig:"SERVICE"`
	Log       LogConfig       `envconfig:"LOG"`
	Telemetry TelemetryConfig `envconfig:"TELEMETRY"`
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(AppName, &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the loaded values and normalises the base path.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Server.BasePath, "/") {
		return fmt.Errorf("invalid base path %q: must start with /", c.Server.BasePath)
	}
	c.Server.BasePath = strings.TrimRight(c.Server.BasePath, "/")

	if c.Service.AddDelay < 0 {
		return errors.New("add delay must not be negative")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}

	return nil
}
