package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/kursadbilgin/orderflow/internal/domain"
	"gorm.io/gorm"
)

const insertBatchSize = 500

type RunRepository interface {
	Create(ctx context.Context, run *domain.Run) error
	GetByID(ctx context.Context, id string) (*domain.Run, error)
	UpdateStatus(ctx context.Context, id string, status domain.RunStatus) error
}

type GormRunRepo struct {
	db *gorm.DB
}

func NewGormRunRepo(db *gorm.DB) *GormRunRepo {
	return &GormRunRepo{db: db}
}

// Create stores the run together with its violations and dispatch results in one transaction.
func (r *GormRunRepo) Create(ctx context.Context, run *domain.Run) error {
	if run == nil {
		return fmt.Errorf("%w: run is required", domain.ErrValidation)
	}
	if !run.Status.IsValid() {
		return fmt.Errorf("%w: invalid run status %q", domain.ErrValidation, run.Status)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(runModelFromDomain(run)).Error; err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		if len(run.Violations) > 0 {
			violations := make([]RunViolationModel, 0, len(run.Violations))
			for _, v := range run.Violations {
				violations = append(violations, violationModelFromDomain(run.ID, v))
			}
			if err := tx.CreateInBatches(&violations, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to insert run violations: %w", err)
			}
		}

		if len(run.Results) > 0 {
			results := make([]DispatchResultModel, 0, len(run.Results))
			for _, res := range run.Results {
				results = append(results, resultModelFromDomain(run.ID, res))
			}
			if err := tx.CreateInBatches(&results, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to insert dispatch results: %w", err)
			}
		}
		return nil
	})
}

func (r *GormRunRepo) GetByID(ctx context.Context, id string) (*domain.Run, error) {
	db := r.db.WithContext(ctx)

	var model RunModel
	err := db.First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	run := runModelToDomain(&model)

	var violations []RunViolationModel
	if err := db.Where("run_id = ?", id).Order("id ASC").Find(&violations).Error; err != nil {
		return nil, err
	}
	for i := range violations {
		run.Violations = append(run.Violations, violationModelToDomain(&violations[i]))
	}

	var results []DispatchResultModel
	if err := db.Where("run_id = ?", id).Order("id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	for i := range results {
		run.Results = append(run.Results, resultModelToDomain(&results[i]))
	}

	return run, nil
}

func (r *GormRunRepo) UpdateStatus(ctx context.Context, id string, status domain.RunStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: invalid run status %q", domain.ErrValidation, status)
	}

	result := r.db.WithContext(ctx).
		Model(&RunModel{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
