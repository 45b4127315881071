package observability

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type runScopeKey struct{}

// runScope identifies the pipeline run a context belongs to.
type runScope struct {
	id      string
	dataset string
}

func NewLogger(level string) (*zap.Logger, error) {
	parsedLevel, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parsedLevel)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true

	logger, err := cfg.Build(zap.AddCaller(), zap.Fields(zap.String("service", "orderflow")))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

func parseLevel(level string) (zapcore.Level, error) {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if normalized == "" {
		normalized = "info"
	}

	var parsed zapcore.Level
	if err := parsed.UnmarshalText([]byte(normalized)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return parsed, nil
}

// WithRun tags ctx with the run id and dataset it belongs to.
func WithRun(ctx context.Context, runID, dataset string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, runScopeKey{}, runScope{id: runID, dataset: dataset})
}

// WithRunID tags ctx with a run id, keeping any dataset already set.
func WithRunID(ctx context.Context, runID string) context.Context {
	return WithRun(ctx, runID, scopeFrom(ctx).dataset)
}

func scopeFrom(ctx context.Context) runScope {
	if ctx == nil {
		return runScope{}
	}
	scope, _ := ctx.Value(runScopeKey{}).(runScope)
	return scope
}

func RunIDFromContext(ctx context.Context) (string, bool) {
	id := scopeFrom(ctx).id
	return id, id != ""
}

// WithContextLogger adds the run id and dataset from ctx, when set, to every entry.
func WithContextLogger(logger *zap.Logger, ctx context.Context) *zap.Logger {
	if logger == nil {
		return nil
	}

	scope := scopeFrom(ctx)
	fields := make([]zap.Field, 0, 2)
	if scope.id != "" {
		fields = append(fields, zap.String("runId", scope.id))
	}
	if scope.dataset != "" {
		fields = append(fields, zap.String("dataset", scope.dataset))
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}
