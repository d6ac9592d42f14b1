package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"

	"github.com/revelaction/signpose/annotate"
	"github.com/revelaction/signpose/cache"
	"github.com/revelaction/signpose/logger"
	"github.com/revelaction/signpose/pipeline"
	"github.com/revelaction/signpose/resolve"
	"github.com/revelaction/signpose/server"
	"github.com/revelaction/signpose/storage/loader"
	"github.com/revelaction/signpose/telemetry"
)

// Set at build time with -ldflags "-X main.BuildTag=...".
var BuildTag = "dev"

func main() {
	app := &cli.App{
		Name:    "signposed",
		Usage:   "serve sign language gloss and hand pose timelines over HTTP",
		Version: BuildTag,
		Flags:   flags(),
		Action:  serve,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "signposed: %v\n", err)
		os.Exit(1)
	}
}

func serve(c *cli.Context) error {
	ctx := c.Context

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	// OTel must init before logger (logger uses OTel provider in production)
	tel, err := telemetry.Setup(ctx, cfg.OTel)
	if err != nil {
		return fmt.Errorf("failed to initialize otel: %w", err)
	}

	logger.Setup(cfg)

	if tel != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "signposed starting", "env", cfg.Env, "version", BuildTag, "legacy", cfg.Legacy)

	d, err := loader.Load(cfg.DictPath)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load dictionary", "error", err, "path", cfg.DictPath)
		return err
	}
	slog.InfoContext(ctx, "dictionary loaded", "path", cfg.DictPath, "keys", len(d))

	r := resolve.NewResolver(d)
	r.Legacy = cfg.Legacy

	p := pipeline.New(r)
	p.Fingerprint = d.Fingerprint()

	switch {
	case cfg.Annotator.Enabled():
		p.Annotator = annotate.NewClient(cfg.Annotator.URL, cfg.Annotator.Timeout)
		slog.InfoContext(ctx, "annotator configured", "url", cfg.Annotator.URL)
	case c.String("corpus") != "":
		corpus, err := annotate.LoadCorpus(c.String("corpus"))
		if err != nil {
			slog.ErrorContext(ctx, "failed to load corpus", "error", err)
			return err
		}
		p.Annotator = corpus
		slog.InfoContext(ctx, "corpus annotator loaded", "docs", corpus.Len())
	default:
		slog.InfoContext(ctx, "no annotator configured, text requests are rejected")
	}

	if cfg.Cache.Enabled() {
		redisClient, err := connectRedis(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		p.Cache = cache.NewRedis(redisClient, cfg.Cache.TTL)
		slog.InfoContext(ctx, "redis connected", "ttl", cfg.Cache.TTL)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	routerCfg := server.RouterConfig{}
	if tel != nil {
		routerCfg.ServiceName = cfg.OTel.ServiceName
	}

	router := server.NewRouter(routerCfg, server.NewHandler(p, d.Keys()))
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case <-quit:
	case serveErr = <-errCh:
		slog.ErrorContext(ctx, "http server error", "error", serveErr)
	}

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if tel != nil {
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
	return serveErr
}

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		client.Close()
		return nil, err
	}

	return client, nil
}
