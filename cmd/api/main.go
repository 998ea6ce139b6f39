package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"github.com/user/caption-service/internal/adapter/azurevision"
	"github.com/user/caption-service/internal/adapter/filesystem"
	"github.com/user/caption-service/internal/adapter/gemini"
	redis_adapter "github.com/user/caption-service/internal/adapter/redis"
	"github.com/user/caption-service/internal/delivery/http/handler"
	"github.com/user/caption-service/internal/delivery/http/router"
	"github.com/user/caption-service/internal/delivery/http/view"
	"github.com/user/caption-service/internal/repository"
	"github.com/user/caption-service/internal/usecase"
	"github.com/user/caption-service/pkg/config"
	"github.com/user/caption-service/pkg/logger"
	"github.com/user/caption-service/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := pflag.StringP("config", "c", config.DefaultPath, "path to the dotenv configuration file")
	pflag.Parse()

	// --- Configuration ---
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Could not load config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	// --- Logger ---
	logLevel := logger.ParseLevel(cfg.LogLevel)
	logger.Init(os.Stdout, logLevel)
	slog.Info("Logger initialized", "level", logLevel.String())

	// --- Metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)
	slog.Info("Metrics initialized")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Repositories ---
	uploads, err := filesystem.NewUploadStore(cfg.UploadDir)
	if err != nil {
		slog.Error("Unable to prepare upload directory", "dir", cfg.UploadDir, "error", err)
		os.Exit(1)
	}

	vision, err := newVision(ctx, cfg)
	if err != nil {
		slog.Error("Unable to create vision client", "provider", cfg.VisionProvider, "error", err)
		os.Exit(1)
	}
	slog.Info("Vision client ready", "provider", vision.Name())

	var cache repository.CaptionCacheRepository
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Error("Unable to connect to Redis", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		cache = redis_adapter.NewCaptionCache(rdb)
		slog.Info("Redis caption cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CaptionCacheTTL.String())
	}

	// --- Use Cases ---
	pipeline := usecase.NewCaptionPipeline(uploads, vision, cache, m, usecase.PipelineOptions{
		AllowedExtensions: cfg.AllowedExtensions,
		AnalyzeTimeout:    cfg.VisionTimeout,
		CacheTTL:          cfg.CaptionCacheTTL,
	})

	// --- HTTP Server ---
	renderer, err := view.NewRenderer(cfg.AllowedExtensions)
	if err != nil {
		slog.Error("Unable to load page template", "error", err)
		os.Exit(1)
	}
	apiHandler := handler.NewHandler(pipeline, renderer, cache, vision.Name(), cfg.MaxUploadBytes)
	httpRouter := router.New(apiHandler, m, reg)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httpRouter,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.VisionTimeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", "port", cfg.ServerPort, "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	slog.Info("Server exiting")
}

func newVision(ctx context.Context, cfg *config.Config) (repository.VisionRepository, error) {
	if cfg.VisionProvider == "gemini" {
		v, err := gemini.NewVision(ctx, cfg.Endpoint, cfg.Key, cfg.GeminiModel, nil)
		if err != nil {
			return nil, err
		}
		return v, nil
	}

	c, err := azurevision.NewClient(cfg.Endpoint, cfg.Key, cfg.VisionAPIVersion, nil)
	if err != nil {
		return nil, err
	}
	return c, nil
}
