package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/config"
	"shareit/internal/gateway"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/ratelimit"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	limiter := initLimiter(cfg, &logger)
	metrics.Register()

	gw := gateway.New(cfg.Gateway, limiter, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := gw.Start(); err != nil {
			logger.Error().Err(err).Msg("gateway stopped")
		}
	}()

	logger.Info().Int("port", cfg.Gateway.Port).Str("server_url", cfg.Gateway.ServerURL).Msg("gateway started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = gw.Shutdown(shutdownCtx)

	logger.Info().Msg("gateway stopped")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "gateway").Logger()

	return cfg, logger, closer, nil
}

// initLimiter собирает лимитер: Redis с откатом в память, либо только память.
func initLimiter(cfg *config.Config, logger *zerolog.Logger) ratelimit.Limiter {
	memory := ratelimit.NewMemoryLimiter()
	if cfg.Redis.Address == "" {
		return memory
	}

	client := ratelimit.NewRedisClient(cfg.Redis)
	if err := ratelimit.Ping(context.Background(), client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, using in-memory rate limiter")
		return memory
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return ratelimit.NewFailoverLimiter(ratelimit.NewRedisLimiter(client), memory, logger)
}
