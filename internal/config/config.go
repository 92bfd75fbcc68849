package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the runtime configuration of the API server.
type Config struct {
	Addr    string        `toml:"addr"`
	Log     LogConfig     `toml:"log"`
	Store   StoreConfig   `toml:"store"`
	Limit   LimitConfig   `toml:"rate_limit"`
	Tracing TracingConfig `toml:"tracing"`
	CORS    CORSConfig    `toml:"cors"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type StoreConfig struct {
	Driver string `toml:"driver"`
	Path   string `toml:"path"`
}

type LimitConfig struct {
	RPS   float64 `toml:"rps"`
	Burst int     `toml:"burst"`
}

type TracingConfig struct {
	Exporter string `toml:"exporter"`
	Endpoint string `toml:"endpoint"`
	Service  string `toml:"service"`
}

type CORSConfig struct {
	AllowedOrigins []string `toml:"allowed_origins"`
}

const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"

	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Addr: ":8080",
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Store: StoreConfig{
			Driver: DriverSQLite,
			Path:   "./data/tasks.db",
		},
		Limit: LimitConfig{
			RPS:   0,
			Burst: 20,
		},
		Tracing: TracingConfig{
			Exporter: ExporterNone,
			Service:  "tasklist-api",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
	}
}

// Load builds the configuration from defaults, the optional TOML file named
// by TASKS_CONFIG, and finally environment variables.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(getenv("TASKS_CONFIG")); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	str("ADDR", &cfg.Addr)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("STORE_DRIVER", &cfg.Store.Driver)
	str("DB_PATH", &cfg.Store.Path)
	str("TRACING_EXPORTER", &cfg.Tracing.Exporter)
	str("OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.Tracing.Endpoint)
	str("OTEL_SERVICE_NAME", &cfg.Tracing.Service)

	if v := strings.TrimSpace(getenv("RATE_LIMIT_RPS")); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		cfg.Limit.RPS = rps
	}
	if v := strings.TrimSpace(getenv("RATE_LIMIT_BURST")); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		cfg.Limit.Burst = burst
	}
	if v := strings.TrimSpace(getenv("CORS_ALLOWED_ORIGINS")); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORS.AllowedOrigins = origins
	}
	return nil
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.Path == "" {
			return errors.New("store path must not be empty for sqlite driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Limit.RPS < 0 {
		return errors.New("rate limit rps must not be negative")
	}
	if c.Limit.RPS > 0 && c.Limit.Burst < 1 {
		return errors.New("rate limit burst must be at least 1")
	}
	switch c.Tracing.Exporter {
	case ExporterNone, ExporterStdout:
	case ExporterOTLP:
		if c.Tracing.Endpoint == "" {
			return errors.New("tracing endpoint is required for otlp exporter")
		}
	default:
		return fmt.Errorf("unknown tracing exporter %q", c.Tracing.Exporter)
	}
	return nil
}
