// @title           Emotion Detector API
// @version         1.0.0
// @description     Scores text for anger, disgust, fear, joy and sadness using the Watson NLP emotion model.
// @BasePath        /
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	_ "github.com/ZanzyTHEbar/emotion-detector/docs"
	"github.com/ZanzyTHEbar/emotion-detector/internal/adapters"
	"github.com/ZanzyTHEbar/emotion-detector/internal/config"
	"github.com/ZanzyTHEbar/emotion-detector/internal/frontend"
	"github.com/ZanzyTHEbar/emotion-detector/internal/monitoring"
	"github.com/ZanzyTHEbar/emotion-detector/internal/resilience"
	"github.com/ZanzyTHEbar/emotion-detector/internal/security"
	"github.com/ZanzyTHEbar/emotion-detector/internal/server"
)

const version = "1.0.0"

// app is everything main wires together
type app struct {
	cfg      *config.Config
	logger   *monitoring.Logger
	metrics  *monitoring.Metrics
	client   *adapters.WatsonClient
	security *security.SecurityMiddleware
	router   *gin.Engine
}

func newApp(cfg *config.Config, logOutput io.Writer) (*app, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := monitoring.NewLogger(monitoring.LoggerOptions{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: logOutput,
	})
	metrics := monitoring.NewMetrics()

	client := adapters.NewWatsonClient(adapters.WatsonConfig{
		URL:     cfg.EmotionAPIURL,
		Timeout: cfg.EmotionAPITimeout,
		Breaker: resilience.CircuitBreakerConfig{
			FailureThreshold: uint32(cfg.EmotionAPIBreakerFailures),
			RecoveryTimeout:  cfg.EmotionAPIBreakerTimeout,
			SuccessThreshold: 1,
		},
	}, metrics, logger)

	sm := security.NewSecurityMiddleware(security.SecurityConfig{
		MaxInputLength:    cfg.MaxInputLength,
		MaxRequestsPerMin: cfg.MaxRequestsPerMin,
		AllowedOrigins:    cfg.Origins(),
		RequestTimeout:    cfg.RequestTimeout,
		EnableHSTS:        cfg.EnableHSTS,
	})

	index, err := frontend.NewIndexHandler(cfg.MaxInputLength)
	if err != nil {
		return nil, fmt.Errorf("failed to load index page: %w", err)
	}

	if cfg.EnableProfiling {
		logger.Info("Enabling performance profiling endpoints")
	}

	router := server.NewRouter(server.Dependencies{
		Detector:        client,
		Health:          client,
		Metrics:         metrics,
		Logger:          logger,
		Security:        sm,
		Index:           index,
		EnableProfiling: cfg.EnableProfiling,
		Version:         version,
	})

	return &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		client:   client,
		security: sm,
		router:   router,
	}, nil
}

// run serves until ctx is cancelled, then shuts down gracefully
func run(ctx context.Context, a *app) error {
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	a.security.Cleanup(sweepCtx)

	srv := server.New(a.cfg.Addr(), a.router, a.cfg.RequestTimeout)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	a.logger.SystemLogger("startup", fmt.Sprintf("listening on %s, emotion API %s", a.cfg.Addr(), a.cfg.EmotionAPIURL))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	if err := a.client.Close(); err != nil {
		a.logger.Warn("Failed to close emotion API client", "error", err)
	}

	a.logger.SystemLogger("shutdown", "server exited")
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	a, err := newApp(cfg, os.Stdout)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, a); err != nil {
		a.logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
