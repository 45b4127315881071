package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kursadbilgin/orderflow/internal/domain"
	"github.com/kursadbilgin/orderflow/internal/repository"
	"go.uber.org/zap"
)

// BuildRun flattens a validation outcome and its dispatch results into a persistable run.
func BuildRun(outcome *domain.ValidationOutcome, results []domain.DispatchResult, now time.Time) *domain.Run {
	summary := Summarize(results)

	run := &domain.Run{
		Status:    domain.RunStatusFor(summary.Failed),
		Sent:      summary.Sent,
		Failed:    summary.Failed,
		Skipped:   summary.Skipped,
		Results:   results,
		CreatedAt: now.UTC(),
	}
	if outcome == nil {
		return run
	}

	run.ID = outcome.RunID
	run.Dataset = outcome.Dataset
	run.Total = outcome.Total
	run.Valid = len(outcome.Valid)
	run.Invalid = len(outcome.Invalid)
	run.Duplicates = outcome.Duplicates
	run.Warnings = len(outcome.Warnings)
	run.Summary = outcome.Summary()
	for _, inv := range outcome.Invalid {
		run.Violations = append(run.Violations, inv.Violations...)
	}
	return run
}

// RunRecorder persists finished runs to the reporting sink.
type RunRecorder struct {
	runs   repository.RunRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewRunRecorder(runs repository.RunRepository, logger *zap.Logger) (*RunRecorder, error) {
	if runs == nil {
		return nil, fmt.Errorf("%w: run repository is required", domain.ErrValidation)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunRecorder{runs: runs, logger: logger, now: time.Now}, nil
}

func (r *RunRecorder) Record(ctx context.Context, outcome *domain.ValidationOutcome, results []domain.DispatchResult) (*domain.Run, error) {
	run := BuildRun(outcome, results, r.now())
	if run.ID == "" {
		return nil, fmt.Errorf("%w: run id is required", domain.ErrValidation)
	}

	if err := r.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to persist run %s: %w", run.ID, err)
	}

	r.logger.Info("run persisted",
		zap.String("runId", run.ID),
		zap.String("status", run.Status.String()),
		zap.Int("violations", len(run.Violations)),
		zap.Int("results", len(run.Results)),
	)
	return run, nil
}

// RecordAborted stores a run that stopped on structurally invalid input.
func (r *RunRecorder) RecordAborted(ctx context.Context, runID, dataset string, cause error) error {
	run := &domain.Run{
		ID:        runID,
		Dataset:   dataset,
		Status:    domain.RunStatusAborted,
		CreatedAt: r.now().UTC(),
	}
	if cause != nil {
		run.Summary = []string{cause.Error()}
	}

	if err := r.runs.Create(ctx, run); err != nil {
		return fmt.Errorf("failed to persist aborted run %s: %w", runID, err)
	}
	return nil
}
