package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kursadbilgin/orderflow/internal/cleaning"
	"github.com/kursadbilgin/orderflow/internal/domain"
	"github.com/kursadbilgin/orderflow/internal/observability"
	"github.com/kursadbilgin/orderflow/internal/schema"
	"github.com/kursadbilgin/orderflow/internal/validation"
	"go.uber.org/zap"
)

// Pipeline cleans a raw record collection and partitions it into valid and invalid records.
type Pipeline struct {
	schema    schema.Schema
	cleaner   *cleaning.BatchCleaner
	validator *validation.RecordValidator
	logger    *zap.Logger
	metrics   *observability.Metrics
	newID     func() string
}

func NewPipeline(s schema.Schema, rules []validation.Rule, logger *zap.Logger) (*Pipeline, error) {
	if s.Name == "" || s.KeyField == "" {
		return nil, fmt.Errorf("%w: schema name and key field are required", domain.ErrValidation)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: at least one validation rule is required", domain.ErrValidation)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pipeline{
		schema:    s,
		cleaner:   cleaning.NewBatchCleaner(s, logger),
		validator: validation.NewRecordValidator(rules, logger),
		logger:    logger,
		newID:     uuid.NewString,
	}, nil
}

func (p *Pipeline) SetMetrics(metrics *observability.Metrics) {
	if p == nil {
		return
	}
	p.metrics = metrics
}

// Run validates every cleaned record and never stops at the first violation.
// Only a structural input error is returned; counts are rebuilt on every call.
// A run id already on ctx is reused, otherwise a new one is generated.
func (p *Pipeline) Run(ctx context.Context, records []domain.Record) (*domain.ValidationOutcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	runID, ok := observability.RunIDFromContext(ctx)
	if !ok {
		runID = p.newID()
	}
	ctx = observability.WithRun(ctx, runID, p.schema.Name)
	logger := observability.WithContextLogger(p.logger, ctx)

	cleaned, err := p.cleaner.Clean(records)
	if err != nil {
		logger.Error("input rejected", zap.Error(err))
		return nil, fmt.Errorf("failed to clean %s records: %w", p.schema.Name, err)
	}

	outcome := &domain.ValidationOutcome{
		RunID:         runID,
		Dataset:       p.schema.Name,
		Total:         len(records),
		Valid:         make([]domain.Record, 0, len(cleaned.Records)),
		Duplicates:    cleaned.Duplicates,
		DuplicateKeys: cleaned.DuplicateKeys,
		Warnings:      cleaned.Warnings,
		Counts:        make(map[domain.CountKey]int),
	}

	for _, rec := range cleaned.Records {
		violations := p.validator.Validate(rec)
		if len(violations) == 0 {
			outcome.Valid = append(outcome.Valid, rec)
			continue
		}

		outcome.Invalid = append(outcome.Invalid, domain.InvalidRecord{
			Key:        rec.Label(),
			Row:        rec.Row(),
			Record:     rec,
			Violations: violations,
		})
		for _, v := range violations {
			outcome.Counts[domain.CountKey{Field: v.Field, Category: v.Category}]++
		}
		logger.Debug("record rejected",
			zap.String("key", rec.Label()),
			zap.Int("row", rec.Row()),
			zap.String("violations", domain.JoinViolations(violations)),
		)
	}

	p.observe(outcome)
	logger.Info("validation completed",
		zap.Int("total", outcome.Total),
		zap.Int("valid", len(outcome.Valid)),
		zap.Int("invalid", len(outcome.Invalid)),
		zap.Int("duplicates", outcome.Duplicates),
		zap.Int("warnings", len(outcome.Warnings)),
		zap.Strings("summary", outcome.Summary()),
	)

	return outcome, nil
}

func (p *Pipeline) observe(outcome *domain.ValidationOutcome) {
	if p.metrics == nil {
		return
	}

	byCategory := make(map[string]int)
	for category, n := range outcome.CategoryTotals() {
		byCategory[category.String()] = n
	}
	p.metrics.ObserveValidation(outcome.Dataset, outcome.Cleaned(), len(outcome.Invalid), outcome.Duplicates, byCategory)
}
