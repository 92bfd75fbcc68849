package config

import (
	"os"
	"path/filepath"
	"testing"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(envMap(nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("expected addr :8080, got %q", cfg.Addr)
	}
	if cfg.Store.Driver != DriverSQLite {
		t.Errorf("expected sqlite driver, got %q", cfg.Store.Driver)
	}
	if cfg.Tracing.Exporter != ExporterNone {
		t.Errorf("expected tracing none, got %q", cfg.Tracing.Exporter)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.toml")
	content := `
addr = ":9090"

[store]
driver = "memory"

[log]
level = "debug"

[rate_limit]
rps = 5
burst = 10
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := load(envMap(map[string]string{
		"TASKS_CONFIG":         path,
		"ADDR":                 ":7070",
		"CORS_ALLOWED_ORIGINS": "https://a.example, https://b.example",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Errorf("env should win over file, got %q", cfg.Addr)
	}
	if cfg.Store.Driver != DriverMemory {
		t.Errorf("expected memory driver from file, got %q", cfg.Store.Driver)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected debug level, got %q", cfg.Log.Level)
	}
	if cfg.Limit.RPS != 5 || cfg.Limit.Burst != 10 {
		t.Errorf("unexpected rate limit: %+v", cfg.Limit)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins: %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"driver":   {"STORE_DRIVER": "postgres"},
		"level":    {"LOG_LEVEL": "loud"},
		"exporter": {"TRACING_EXPORTER": "zipkin"},
		"otlp":     {"TRACING_EXPORTER": "otlp"},
		"rps":      {"RATE_LIMIT_RPS": "fast"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := load(envMap(env)); err == nil {
				t.Fatalf("expected error for %v", env)
			}
		})
	}
}
