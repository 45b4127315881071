package config

import (
	"errors"
	"testing"
	"time"

	"github.com/kursadbilgin/orderflow/internal/domain"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("INPUT_PATH", "testdata/orders.csv")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Dataset != "orders" {
		t.Errorf("Dataset = %s, want orders", cfg.Dataset)
	}
	if cfg.WorkerConcurrency != 5 {
		t.Errorf("WorkerConcurrency = %d, want 5", cfg.WorkerConcurrency)
	}
	if cfg.RetryBaseDelay != time.Second || cfg.RetryMaxDelay != 30*time.Second {
		t.Errorf("retry delays = %s/%s, want 1s/30s", cfg.RetryBaseDelay, cfg.RetryMaxDelay)
	}
	if cfg.WeightTolerance != 0.10 || cfg.PriceTolerance != 0.05 {
		t.Errorf("tolerances = %v/%v, want 0.10/0.05", cfg.WeightTolerance, cfg.PriceTolerance)
	}
	if cfg.SendLatency != 100*time.Millisecond || cfg.SendFailureRate != 0.02 {
		t.Errorf("send simulation = %s/%v, want 100ms/0.02", cfg.SendLatency, cfg.SendFailureRate)
	}
	if cfg.OpsPort != 0 || cfg.DatabaseDSN != "" || cfg.RedisURL != "" || cfg.WebhookURL != "" {
		t.Errorf("optional integrations should default to disabled: %+v", cfg)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATASET", " Reservations ")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("WORKER_CONCURRENCY", "12")
	t.Setenv("RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("RETRY_BASE_DELAY", "250ms")
	t.Setenv("RATE_LIMIT_PER_SEC", "250")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Dataset != "reservations" {
		t.Errorf("Dataset = %s, want reservations", cfg.Dataset)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
	if cfg.WorkerConcurrency != 12 {
		t.Errorf("WorkerConcurrency = %d, want 12", cfg.WorkerConcurrency)
	}

	policy := cfg.RetryPolicy()
	if policy.MaxAttempts != 5 || policy.BaseDelay != 250*time.Millisecond {
		t.Errorf("RetryPolicy() = %+v", policy)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("INPUT_PATH", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing INPUT_PATH")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		return Config{
			InputPath:         "orders.csv",
			Dataset:           "orders",
			WorkerConcurrency: 5,
			RetryMaxAttempts:  3,
			RetryBaseDelay:    time.Second,
			RetryMaxDelay:     30 * time.Second,
			WeightTolerance:   0.10,
			PriceTolerance:    0.05,
			SendFailureRate:   0.02,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "unknown dataset", mutate: func(c *Config) { c.Dataset = "invoices" }, wantErr: true},
		{name: "zero workers", mutate: func(c *Config) { c.WorkerConcurrency = 0 }, wantErr: true},
		{name: "zero attempts", mutate: func(c *Config) { c.RetryMaxAttempts = 0 }, wantErr: true},
		{name: "base above max", mutate: func(c *Config) { c.RetryBaseDelay = time.Minute }, wantErr: true},
		{name: "weight tolerance one", mutate: func(c *Config) { c.WeightTolerance = 1 }, wantErr: true},
		{name: "price tolerance zero", mutate: func(c *Config) { c.PriceTolerance = 0 }, wantErr: true},
		{name: "failure rate above one", mutate: func(c *Config) { c.SendFailureRate = 1.5 }, wantErr: true},
		{name: "always failing transport allowed", mutate: func(c *Config) { c.SendFailureRate = 1 }},
		{name: "redis without rate", mutate: func(c *Config) { c.RedisURL = "redis://x"; c.RateLimitPerSec = 0 }, wantErr: true},
		{name: "ops port out of range", mutate: func(c *Config) { c.OpsPort = 70000 }, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Fatalf("Validate() = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() = %v", err)
			}
		})
	}
}
