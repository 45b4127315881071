package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/kursadbilgin/orderflow/internal/domain"
	"gorm.io/gorm"
)

// AttemptRepository stores the send history of each record within a run.
type AttemptRepository interface {
	Create(ctx context.Context, a *domain.SendAttempt) error
	ListByRecord(ctx context.Context, runID, key string) ([]domain.SendAttempt, error)
}

type GormAttemptRepo struct {
	db *gorm.DB
}

func NewGormAttemptRepo(db *gorm.DB) *GormAttemptRepo {
	return &GormAttemptRepo{db: db}
}

func (r *GormAttemptRepo) Create(ctx context.Context, a *domain.SendAttempt) error {
	if a == nil {
		return fmt.Errorf("%w: attempt is required", domain.ErrValidation)
	}
	if a.AttemptNumber < 1 {
		return fmt.Errorf("%w: attempt number must be positive, got %d", domain.ErrValidation, a.AttemptNumber)
	}

	model := attemptModelFromDomain(a)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to store attempt %d for %s: %w", a.AttemptNumber, a.Key, err)
	}
	*a = *attemptModelToDomain(model)
	return nil
}

// ListByRecord returns the attempts for one record of one run, oldest first.
func (r *GormAttemptRepo) ListByRecord(ctx context.Context, runID, key string) ([]domain.SendAttempt, error) {
	runID, key = strings.TrimSpace(runID), strings.TrimSpace(key)
	if runID == "" || key == "" {
		return nil, fmt.Errorf("%w: run id and record key are required", domain.ErrValidation)
	}

	var models []SendAttemptModel
	err := r.db.WithContext(ctx).
		Where("run_id = ? AND record_key = ?", runID, key).
		Order("attempt_number ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts for %s in run %s: %w", key, runID, err)
	}

	attempts := make([]domain.SendAttempt, len(models))
	for i := range models {
		attempts[i] = *attemptModelToDomain(&models[i])
	}
	return attempts, nil
}
