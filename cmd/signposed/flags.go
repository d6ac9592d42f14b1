package main

import (
	"github.com/urfave/cli/v2"

	"github.com/revelaction/signpose/config"
)

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML configuration file",
			EnvVars: []string{"SIGNPOSE_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "dict",
			Aliases: []string{"d"},
			Usage:   "coordinate dictionary, JSON file or SQLite database",
			EnvVars: []string{"SIGNPOSE_DICT"},
		},
		&cli.StringFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "HTTP listen port",
			EnvVars: []string{"PORT"},
		},
		&cli.StringFlag{
			Name:    "env",
			Usage:   "development or production",
			EnvVars: []string{"SIGNPOSE_ENV"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "debug, info, warn or error",
			EnvVars: []string{"SIGNPOSE_LOG_LEVEL"},
		},
		&cli.BoolFlag{
			Name:    "legacy",
			Usage:   "keep one token per distinct gloss word",
			EnvVars: []string{"SIGNPOSE_LEGACY"},
		},
		&cli.StringFlag{
			Name:    "annotator-url",
			Usage:   "annotator service turning English text into tokens",
			EnvVars: []string{"SIGNPOSE_ANNOTATOR_URL"},
		},
		&cli.DurationFlag{
			Name:    "annotator-timeout",
			Usage:   "timeout of one annotator request",
			EnvVars: []string{"SIGNPOSE_ANNOTATOR_TIMEOUT"},
		},
		&cli.StringFlag{
			Name:    "corpus",
			Usage:   "directory of annotated docs answering text requests when no annotator URL is set",
			EnvVars: []string{"SIGNPOSE_CORPUS"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis URL of the timeline cache, no cache when empty",
			EnvVars: []string{"REDIS_URL"},
		},
		&cli.DurationFlag{
			Name:    "cache-ttl",
			Usage:   "expiration of cached timelines",
			EnvVars: []string{"SIGNPOSE_CACHE_TTL"},
		},
	}
}

// applyFlags overrides cfg with the flags set on the command line or through
// their environment variables.
func applyFlags(c *cli.Context, cfg config.Config) config.Config {
	if c.IsSet("dict") {
		cfg.DictPath = c.String("dict")
	}
	if c.IsSet("port") {
		cfg.Port = c.String("port")
	}
	if c.IsSet("env") {
		cfg.Env = c.String("env")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("legacy") {
		cfg.Legacy = c.Bool("legacy")
	}
	if c.IsSet("annotator-url") {
		cfg.Annotator.URL = c.String("annotator-url")
	}
	if c.IsSet("annotator-timeout") {
		cfg.Annotator.Timeout = c.Duration("annotator-timeout")
	}
	if c.IsSet("redis-url") {
		cfg.Cache.RedisURL = c.String("redis-url")
	}
	if c.IsSet("cache-ttl") {
		cfg.Cache.TTL = c.Duration("cache-ttl")
	}

	return cfg
}

// loadConfig reads the configuration file and environment, applies the flags
// and validates the result.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Read(c.String("config"))
	if err != nil {
		return config.Config{}, err
	}

	cfg = applyFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, cli.Exit("invalid configuration: "+err.Error(), 1)
	}

	return cfg, nil
}
