// Package config loads the settings shared by the signpose binaries: an
// optional YAML file, then the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env      string `yaml:"env"`
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	// DictPath is the coordinate dictionary, a JSON file or a SQLite
	// database
	DictPath string `yaml:"dict_path"`

	// Legacy collapses repeated gloss words to one token
	Legacy bool `yaml:"legacy"`

	Annotator AnnotatorConfig `yaml:"annotator"`
	Cache     CacheConfig     `yaml:"cache"`
	OTel      OTelConfig      `yaml:"otel"`
}

type AnnotatorConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type CacheConfig struct {
	RedisURL string        `yaml:"redis_url"`
	TTL      time.Duration `yaml:"ttl"`
}

type OTelConfig struct {
	Endpoint       string `yaml:"endpoint"`
	Headers        string `yaml:"headers"`
	ServiceName    string `yaml:"service_name"`
	ServiceVersion string `yaml:"service_version"`
}

// Default returns the configuration used when neither file nor environment
// set a value.
func Default() Config {
	return Config{
		Env:      "development",
		Port:     "8080",
		LogLevel: "info",
		Annotator: AnnotatorConfig{
			Timeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			TTL: 24 * time.Hour,
		},
		OTel: OTelConfig{
			ServiceName:    "signpose",
			ServiceVersion: "dev",
		},
	}
}

// Load reads the configuration with Read and validates it.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Read reads the YAML file at path, if any, and applies the environment on
// top of it. In development a .env file in the working directory is loaded
// first. The result is not validated.
func Read(path string) (Config, error) {
	if getEnv("SIGNPOSE_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	return cfg.FromEnv(), nil
}

// FromEnv returns c with the values overridden by the environment.
func (c Config) FromEnv() Config {
	c.Env = getEnv("SIGNPOSE_ENV", c.Env)
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("SIGNPOSE_LOG_LEVEL", c.LogLevel)
	c.DictPath = getEnv("SIGNPOSE_DICT", c.DictPath)
	c.Legacy = getEnvBool("SIGNPOSE_LEGACY", c.Legacy)

	c.Annotator.URL = getEnv("SIGNPOSE_ANNOTATOR_URL", c.Annotator.URL)
	c.Annotator.Timeout = getEnvDuration("SIGNPOSE_ANNOTATOR_TIMEOUT", c.Annotator.Timeout)

	c.Cache.RedisURL = getEnv("REDIS_URL", c.Cache.RedisURL)
	c.Cache.TTL = getEnvDuration("SIGNPOSE_CACHE_TTL", c.Cache.TTL)

	c.OTel.Endpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTel.Endpoint)
	c.OTel.Headers = getEnv("OTEL_EXPORTER_OTLP_HEADERS", c.OTel.Headers)
	c.OTel.ServiceName = getEnv("OTEL_SERVICE_NAME", c.OTel.ServiceName)
	c.OTel.ServiceVersion = getEnv("OTEL_SERVICE_VERSION", c.OTel.ServiceVersion)

	return c
}

func (c Config) Validate() error {
	if c.DictPath == "" {
		return errors.New("dictionary path is required (dict_path or SIGNPOSE_DICT)")
	}

	port, err := strconv.Atoi(c.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port %q", c.Port)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}

	if c.Annotator.Timeout < 0 || c.Cache.TTL < 0 {
		return errors.New("timeouts must not be negative")
	}

	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c CacheConfig) Enabled() bool {
	return c.RedisURL != ""
}

func (c AnnotatorConfig) Enabled() bool {
	return c.URL != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
