package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "signpose.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
env: production
port: "9000"
dict_path: dict.json
legacy: true
annotator:
  url: http://localhost:5000/annotate
  timeout: 3s
cache:
  redis_url: redis://localhost:6379/0
  ttl: 1h
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.IsProduction() || cfg.Port != "9000" || cfg.DictPath != "dict.json" || !cfg.Legacy {
		t.Fatalf("unexpected config %+v", cfg)
	}

	if cfg.Annotator.Timeout != 3*time.Second || !cfg.Annotator.Enabled() {
		t.Fatalf("expected annotator with 3s timeout, got %+v", cfg.Annotator)
	}

	if cfg.Cache.TTL != time.Hour || !cfg.Cache.Enabled() {
		t.Fatalf("expected cache with 1h ttl, got %+v", cfg.Cache)
	}

	// not in the file
	if cfg.LogLevel != "info" || cfg.OTel.ServiceName != "signpose" || cfg.OTel.Enabled() {
		t.Fatalf("expected defaults for unset values, got %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeFile(t, "dict_path: dict.json\nport: \"9000\"\n")

	t.Setenv("PORT", "7000")
	t.Setenv("SIGNPOSE_DICT", "dict.db")
	t.Setenv("SIGNPOSE_CACHE_TTL", "5m")
	t.Setenv("SIGNPOSE_LEGACY", "not-a-bool")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "7000" || cfg.DictPath != "dict.db" {
		t.Fatalf("expected env to win, got port %s dict %s", cfg.Port, cfg.DictPath)
	}

	if cfg.Cache.TTL != 5*time.Minute {
		t.Fatalf("expected ttl 5m, got %s", cfg.Cache.TTL)
	}

	if cfg.Legacy {
		t.Fatalf("expected unparseable bool to keep the fallback")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}

	if _, err := Load(writeFile(t, "port: [")); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}

	if _, err := Load(writeFile(t, "port: \"8080\"\n")); err == nil {
		t.Fatalf("expected error for missing dictionary path")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.DictPath = "dict.json"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to be valid, got %v", err)
	}

	cases := map[string]func(*Config){
		"port":  func(c *Config) { c.Port = "http" },
		"range": func(c *Config) { c.Port = "70000" },
		"level": func(c *Config) { c.LogLevel = "trace" },
		"ttl":   func(c *Config) { c.Cache.TTL = -time.Second },
	}

	for name, mutate := range cases {
		c := cfg
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}
