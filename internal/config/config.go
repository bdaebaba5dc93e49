package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Config holds every setting read from the environment
type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Host      string `env:"HOST" default:"0.0.0.0"`
	Port      string `env:"PORT" default:"5000"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"json"`

	EmotionAPIURL             string        `env:"EMOTION_API_URL" default:"https://sn-watson-emotion.labs.skills.network/v1/watson.runtime.nlp.v1/NlpService/EmotionPredict"`
	EmotionAPITimeout         time.Duration `env:"EMOTION_API_TIMEOUT" default:"30s"`
	EmotionAPIBreakerFailures int           `env:"EMOTION_API_BREAKER_FAILURES" default:"5"`
	EmotionAPIBreakerTimeout  time.Duration `env:"EMOTION_API_BREAKER_TIMEOUT" default:"30s"`

	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" default:"30s"`
	MaxRequestsPerMin int           `env:"MAX_REQUESTS_PER_MIN" default:"100"`
	MaxInputLength    int           `env:"MAX_INPUT_LENGTH" default:"10000"`
	AllowedOrigins    string        `env:"ALLOWED_ORIGINS" default:"*"`
	EnableProfiling   bool          `env:"ENABLE_PROFILING" default:"false"`
	EnableHSTS        bool          `env:"ENABLE_HSTS" default:"false"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// Load reads an optional .env file, then the environment, and validates the result
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Addr is the listen address
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Origins splits ALLOWED_ORIGINS on commas
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.EmotionAPIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("EMOTION_API_URL must be an absolute http(s) URL, got %q", cfg.EmotionAPIURL)
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"EMOTION_API_TIMEOUT", cfg.EmotionAPITimeout},
		{"EMOTION_API_BREAKER_TIMEOUT", cfg.EmotionAPIBreakerTimeout},
		{"REQUEST_TIMEOUT", cfg.RequestTimeout},
		{"SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive", d.name)
		}
	}

	if cfg.EmotionAPIBreakerFailures < 1 {
		return errors.New("EMOTION_API_BREAKER_FAILURES must be at least 1")
	}
	if cfg.MaxRequestsPerMin < 1 {
		return errors.New("MAX_REQUESTS_PER_MIN must be at least 1")
	}
	if cfg.MaxInputLength < 1 {
		return errors.New("MAX_INPUT_LENGTH must be at least 1")
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", cfg.LogLevel)
	}

	switch strings.ToLower(cfg.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", cfg.LogFormat)
	}

	if cfg.Port == "" {
		return errors.New("PORT is required")
	}

	return nil
}
