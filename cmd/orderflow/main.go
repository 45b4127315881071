package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/kursadbilgin/orderflow/internal/config"
	"github.com/kursadbilgin/orderflow/internal/domain"
	"github.com/kursadbilgin/orderflow/internal/handler"
	"github.com/kursadbilgin/orderflow/internal/infra/postgresql"
	"github.com/kursadbilgin/orderflow/internal/infra/postgresql/migrations"
	infraredis "github.com/kursadbilgin/orderflow/internal/infra/redis"
	"github.com/kursadbilgin/orderflow/internal/ingest"
	"github.com/kursadbilgin/orderflow/internal/observability"
	"github.com/kursadbilgin/orderflow/internal/provider"
	"github.com/kursadbilgin/orderflow/internal/ratelimit"
	"github.com/kursadbilgin/orderflow/internal/repository"
	"github.com/kursadbilgin/orderflow/internal/schema"
	"github.com/kursadbilgin/orderflow/internal/service"
	"github.com/kursadbilgin/orderflow/internal/validation"
	"go.uber.org/zap"
)

const opsShutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("orderflow run failed", zap.Error(err))
		stop()
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	s, err := schema.ByName(cfg.Dataset)
	if err != nil {
		return err
	}
	metrics := observability.NewMetrics()

	var (
		checks   []handler.ReadinessCheck
		runs     repository.RunRepository
		attempts repository.AttemptRepository
		limiter  ratelimit.RateLimiter = ratelimit.Unlimited{}
	)

	if cfg.DatabaseDSN != "" {
		db, err := postgresql.NewPostgres(ctx, cfg.DatabaseDSN)
		if err != nil {
			return err
		}
		if err := migrations.Migrate(db); err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		runs = repository.NewGormRunRepo(db)
		attempts = repository.NewGormAttemptRepo(db)
		checks = append(checks, handler.ReadinessCheck{
			Name: "postgres",
			Ping: func(ctx context.Context) error { return postgresql.Ping(ctx, db) },
		})
	}

	if cfg.RedisURL != "" {
		client, err := infraredis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()

		sendLimiter, err := infraredis.NewSendLimiter(client, cfg.RateLimitPerSec)
		if err != nil {
			return err
		}
		limiter = sendLimiter
		checks = append(checks, handler.ReadinessCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error { return infraredis.Ping(ctx, client) },
		})
	}

	if cfg.OpsPort > 0 {
		var (
			runReader     handler.RunReader
			attemptReader handler.AttemptReader
		)
		if runs != nil {
			runReader, attemptReader = runs, attempts
		}
		app, err := handler.NewOpsApp(logger, metrics, checks, runReader, attemptReader)
		if err != nil {
			return err
		}
		go func() {
			if err := app.Listen(fmt.Sprintf(":%d", cfg.OpsPort)); err != nil {
				logger.Error("ops server stopped", zap.Error(err))
			}
		}()
		defer func() {
			if err := app.ShutdownWithTimeout(opsShutdownTimeout); err != nil {
				logger.Warn("ops server shutdown failed", zap.Error(err))
			}
		}()
		logger.Info("ops server started", zap.Int("port", cfg.OpsPort))
	}

	transport, err := newTransport(cfg, logger)
	if err != nil {
		return err
	}

	var recorder *service.RunRecorder
	if runs != nil {
		if recorder, err = service.NewRunRecorder(runs, logger); err != nil {
			return err
		}
	}

	runID := uuid.NewString()
	ctx = observability.WithRun(ctx, runID, s.Name)
	runLogger := observability.WithContextLogger(logger, ctx)
	runLogger.Info("run started",
		zap.String("input", cfg.InputPath),
		zap.String("transport", provider.Channel(transport)),
	)

	records, err := ingest.ReadFile(cfg.InputPath, s)
	if err != nil {
		return abort(ctx, recorder, runID, s.Name, err, runLogger)
	}

	rules, err := validation.RulesFor(s.Name, orderRules(cfg), validation.DefaultReservationRules())
	if err != nil {
		return err
	}
	pipeline, err := service.NewPipeline(s, rules, logger)
	if err != nil {
		return err
	}
	pipeline.SetMetrics(metrics)

	outcome, err := pipeline.Run(ctx, records)
	if err != nil {
		return abort(ctx, recorder, runID, s.Name, err, runLogger)
	}

	dispatcher, err := service.NewDispatcher(s, transport, limiter, attempts, cfg.RetryPolicy(), cfg.WorkerConcurrency, logger)
	if err != nil {
		return err
	}
	dispatcher.SetMetrics(metrics)

	results := dispatcher.Dispatch(ctx, outcome.Valid)
	summary := service.Summarize(results)
	runLogger.Info("run completed",
		zap.Int("total", outcome.Total),
		zap.Int("valid", len(outcome.Valid)),
		zap.Int("invalid", len(outcome.Invalid)),
		zap.Int("duplicatesRemoved", outcome.Duplicates),
		zap.Int("coercionWarnings", len(outcome.Warnings)),
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Float64("successRate", summary.SuccessRate),
		zap.Duration("meanLatency", summary.MeanLatency),
		zap.Float64("meanAttempts", summary.MeanAttempts),
	)

	if recorder != nil {
		if _, err := recorder.Record(context.WithoutCancel(ctx), outcome, results); err != nil {
			return err
		}
	}
	return nil
}

func orderRules(cfg *config.Config) validation.OrderRules {
	rules := validation.DefaultOrderRules()
	rules.WeightTolerance = cfg.WeightTolerance
	rules.PriceTolerance = cfg.PriceTolerance
	return rules
}

func newTransport(cfg *config.Config, logger *zap.Logger) (provider.Transport, error) {
	if cfg.WebhookURL != "" {
		return provider.NewWebhookTransport(cfg.WebhookURL)
	}
	return provider.NewSimulatedTransport(
		provider.WithLatency(cfg.SendLatency),
		provider.WithFailureRate(cfg.SendFailureRate),
		provider.WithLogger(logger),
	), nil
}

// abort records a run that stopped before dispatch and returns its cause.
func abort(ctx context.Context, recorder *service.RunRecorder, runID, dataset string, cause error, logger *zap.Logger) error {
	if recorder != nil && errors.Is(cause, domain.ErrMalformedInput) {
		if err := recorder.RecordAborted(context.WithoutCancel(ctx), runID, dataset, cause); err != nil {
			logger.Warn("failed to record aborted run", zap.Error(err))
		}
	}
	return cause
}
