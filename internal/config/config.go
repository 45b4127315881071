package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Netflix/go-env"

	"github.com/kursadbilgin/orderflow/internal/domain"
	"github.com/kursadbilgin/orderflow/internal/retry"
	"github.com/kursadbilgin/orderflow/internal/schema"
)

type Config struct {
	InputPath string `env:"INPUT_PATH,required=true"`
	Dataset   string `env:"DATASET,default=orders"`
	LogLevel  string `env:"LOG_LEVEL,default=info"`

	WorkerConcurrency int           `env:"WORKER_CONCURRENCY,default=5"`
	RetryMaxAttempts  int           `env:"RETRY_MAX_ATTEMPTS,default=3"`
	RetryBaseDelay    time.Duration `env:"RETRY_BASE_DELAY,default=1s"`
	RetryMaxDelay     time.Duration `env:"RETRY_MAX_DELAY,default=30s"`

	WeightTolerance float64 `env:"WEIGHT_TOLERANCE,default=0.10"`
	PriceTolerance  float64 `env:"PRICE_TOLERANCE,default=0.05"`

	SendLatency     time.Duration `env:"SEND_LATENCY,default=100ms"`
	SendFailureRate float64       `env:"SEND_FAILURE_RATE,default=0.02"`
	WebhookURL      string        `env:"WEBHOOK_URL"`

	DatabaseDSN     string `env:"DATABASE_DSN"`
	RedisURL        string `env:"REDIS_URL"`
	RateLimitPerSec int    `env:"RATE_LIMIT_PER_SEC,default=100"`
	OpsPort         int    `env:"OPS_PORT,default=0"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Dataset = strings.ToLower(strings.TrimSpace(cfg.Dataset))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.InputPath) == "" {
		return fmt.Errorf("%w: INPUT_PATH is required", domain.ErrValidation)
	}
	if _, err := schema.ByName(c.Dataset); err != nil {
		return err
	}
	if c.WorkerConcurrency < 1 {
		return fmt.Errorf("%w: WORKER_CONCURRENCY must be positive, got %d", domain.ErrValidation, c.WorkerConcurrency)
	}
	if err := c.RetryPolicy().Validate(); err != nil {
		return err
	}
	if !openUnit(c.WeightTolerance) {
		return fmt.Errorf("%w: WEIGHT_TOLERANCE must be in (0, 1), got %v", domain.ErrValidation, c.WeightTolerance)
	}
	if !openUnit(c.PriceTolerance) {
		return fmt.Errorf("%w: PRICE_TOLERANCE must be in (0, 1), got %v", domain.ErrValidation, c.PriceTolerance)
	}
	if c.SendFailureRate < 0 || c.SendFailureRate > 1 {
		return fmt.Errorf("%w: SEND_FAILURE_RATE must be in [0, 1], got %v", domain.ErrValidation, c.SendFailureRate)
	}
	if c.SendLatency < 0 {
		return fmt.Errorf("%w: SEND_LATENCY must not be negative", domain.ErrValidation)
	}
	if c.RedisURL != "" && c.RateLimitPerSec < 1 {
		return fmt.Errorf("%w: RATE_LIMIT_PER_SEC must be positive when REDIS_URL is set", domain.ErrValidation)
	}
	if c.OpsPort < 0 || c.OpsPort > 65535 {
		return fmt.Errorf("%w: OPS_PORT out of range: %d", domain.ErrValidation, c.OpsPort)
	}
	return nil
}

func (c *Config) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: c.RetryMaxAttempts,
		BaseDelay:   c.RetryBaseDelay,
		MaxDelay:    c.RetryMaxDelay,
	}
}

func openUnit(v float64) bool {
	return v > 0 && v < 1
}
