package repository

import (
	"strings"
	"time"

	"github.com/kursadbilgin/orderflow/internal/domain"
)

// RunModel is the persistence model for the runs table.
type RunModel struct {
	ID         string           `gorm:"type:varchar(36);primaryKey"`
	Dataset    string           `gorm:"type:varchar(32);not null"`
	Status     domain.RunStatus `gorm:"type:varchar(20);not null"`
	Total      int              `gorm:"not null;default:0"`
	Valid      int              `gorm:"not null;default:0"`
	Invalid    int              `gorm:"not null;default:0"`
	Duplicates int              `gorm:"not null;default:0"`
	Warnings   int              `gorm:"not null;default:0"`
	Sent       int              `gorm:"not null;default:0"`
	Failed     int              `gorm:"not null;default:0"`
	Skipped    int              `gorm:"not null;default:0"`
	Summary    string           `gorm:"type:text"`
	CreatedAt  time.Time
}

func (RunModel) TableName() string {
	return "runs"
}

// RunViolationModel is the persistence model for run_violations. Keys come from
// raw input and are unbounded.
type RunViolationModel struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"`
	RunID     string          `gorm:"type:varchar(36);not null"`
	RecordKey string          `gorm:"type:text;not null"`
	Field     string          `gorm:"type:varchar(64);not null"`
	Category  domain.Category `gorm:"type:varchar(20);not null"`
	Message   string          `gorm:"type:text;not null"`
}

func (RunViolationModel) TableName() string {
	return "run_violations"
}

// DispatchResultModel is the persistence model for dispatch_results.
type DispatchResultModel struct {
	ID            uint             `gorm:"primaryKey;autoIncrement"`
	RunID         string           `gorm:"type:varchar(36);not null"`
	RecordKey     string           `gorm:"type:text;not null"`
	Destination   string           `gorm:"type:text"`
	State         domain.TaskState `gorm:"type:varchar(20);not null"`
	LastError     *string          `gorm:"type:text"`
	Attempts      int              `gorm:"not null;default:0"`
	ElapsedMillis int64            `gorm:"not null;default:0"`
	FinishedAt    time.Time
}

func (DispatchResultModel) TableName() string {
	return "dispatch_results"
}

// SendAttemptModel is the persistence model for send_attempts.
type SendAttemptModel struct {
	ID             string  `gorm:"type:varchar(36);primaryKey"`
	RunID          string  `gorm:"type:varchar(36)"`
	RecordKey      string  `gorm:"type:text;not null"`
	Destination    string  `gorm:"type:text;not null"`
	AttemptNumber  int     `gorm:"not null"`
	StatusCode     *int    `gorm:"type:int"`
	Error          *string `gorm:"type:text"`
	DurationMillis int64   `gorm:"not null;default:0"`
	CreatedAt      time.Time
}

func (SendAttemptModel) TableName() string {
	return "send_attempts"
}

const summarySeparator = "\n"

func runModelFromDomain(r *domain.Run) *RunModel {
	if r == nil {
		return nil
	}

	return &RunModel{
		ID:         r.ID,
		Dataset:    r.Dataset,
		Status:     r.Status,
		Total:      r.Total,
		Valid:      r.Valid,
		Invalid:    r.Invalid,
		Duplicates: r.Duplicates,
		Warnings:   r.Warnings,
		Sent:       r.Sent,
		Failed:     r.Failed,
		Skipped:    r.Skipped,
		Summary:    strings.Join(r.Summary, summarySeparator),
		CreatedAt:  r.CreatedAt,
	}
}

func runModelToDomain(m *RunModel) *domain.Run {
	if m == nil {
		return nil
	}

	var summary []string
	if m.Summary != "" {
		summary = strings.Split(m.Summary, summarySeparator)
	}

	return &domain.Run{
		ID:         m.ID,
		Dataset:    m.Dataset,
		Status:     m.Status,
		Total:      m.Total,
		Valid:      m.Valid,
		Invalid:    m.Invalid,
		Duplicates: m.Duplicates,
		Warnings:   m.Warnings,
		Sent:       m.Sent,
		Failed:     m.Failed,
		Skipped:    m.Skipped,
		Summary:    summary,
		CreatedAt:  m.CreatedAt,
	}
}

func violationModelFromDomain(runID string, v domain.Violation) RunViolationModel {
	return RunViolationModel{
		RunID:     runID,
		RecordKey: v.Key,
		Field:     v.Field,
		Category:  v.Category,
		Message:   v.Message,
	}
}

func violationModelToDomain(m *RunViolationModel) domain.Violation {
	return domain.Violation{
		Key:      m.RecordKey,
		Field:    m.Field,
		Category: m.Category,
		Message:  m.Message,
	}
}

func resultModelFromDomain(runID string, r domain.DispatchResult) DispatchResultModel {
	var lastError *string
	if r.LastError != "" {
		value := r.LastError
		lastError = &value
	}

	return DispatchResultModel{
		RunID:         runID,
		RecordKey:     r.Key,
		Destination:   r.Destination,
		State:         r.State,
		LastError:     lastError,
		Attempts:      r.Attempts,
		ElapsedMillis: r.Elapsed.Milliseconds(),
		FinishedAt:    r.Timestamp,
	}
}

func resultModelToDomain(m *DispatchResultModel) domain.DispatchResult {
	result := domain.DispatchResult{
		Key:         m.RecordKey,
		Destination: m.Destination,
		State:       m.State,
		Attempts:    m.Attempts,
		Elapsed:     time.Duration(m.ElapsedMillis) * time.Millisecond,
		Timestamp:   m.FinishedAt,
	}
	if m.LastError != nil {
		result.LastError = *m.LastError
	}
	return result
}

func attemptModelFromDomain(a *domain.SendAttempt) *SendAttemptModel {
	if a == nil {
		return nil
	}

	return &SendAttemptModel{
		ID:             a.ID,
		RunID:          a.RunID,
		RecordKey:      a.Key,
		Destination:    a.Destination,
		AttemptNumber:  a.AttemptNumber,
		StatusCode:     a.StatusCode,
		Error:          a.Error,
		DurationMillis: a.Duration.Milliseconds(),
		CreatedAt:      a.CreatedAt,
	}
}

func attemptModelToDomain(m *SendAttemptModel) *domain.SendAttempt {
	if m == nil {
		return nil
	}

	return &domain.SendAttempt{
		ID:            m.ID,
		RunID:         m.RunID,
		Key:           m.RecordKey,
		Destination:   m.Destination,
		AttemptNumber: m.AttemptNumber,
		StatusCode:    m.StatusCode,
		Error:         m.Error,
		Duration:      time.Duration(m.DurationMillis) * time.Millisecond,
		CreatedAt:     m.CreatedAt,
	}
}
