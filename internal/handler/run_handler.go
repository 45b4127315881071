package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/orderflow/internal/domain"
)

// RunReader is the read side of the reporting sink.
type RunReader interface {
	GetByID(ctx context.Context, id string) (*domain.Run, error)
}

// AttemptReader lists the send history of a record within a run.
type AttemptReader interface {
	ListByRecord(ctx context.Context, runID, key string) ([]domain.SendAttempt, error)
}

type RunHandler struct {
	runs     RunReader
	attempts AttemptReader
}

// NewRunHandler requires runs; attempts may be nil, which disables the attempts route.
func NewRunHandler(runs RunReader, attempts AttemptReader) (*RunHandler, error) {
	if runs == nil {
		return nil, fmt.Errorf("%w: run reader is required", domain.ErrValidation)
	}
	return &RunHandler{runs: runs, attempts: attempts}, nil
}

func RegisterRunRoutes(router fiber.Router, runs RunReader, attempts AttemptReader) error {
	h, err := NewRunHandler(runs, attempts)
	if err != nil {
		return err
	}
	router.Get("/runs/:id", h.GetRun)
	if attempts != nil {
		router.Get("/runs/:id/records/:key/attempts", h.ListAttempts)
	}
	return nil
}

type runResponse struct {
	ID         string         `json:"id"`
	Dataset    string         `json:"dataset"`
	Status     string         `json:"status"`
	Total      int            `json:"total"`
	Valid      int            `json:"valid"`
	Invalid    int            `json:"invalid"`
	Duplicates int            `json:"duplicates"`
	Warnings   int            `json:"warnings"`
	Sent       int            `json:"sent"`
	Failed     int            `json:"failed"`
	Skipped    int            `json:"skipped"`
	Summary    []string       `json:"summary"`
	Violations map[string]int `json:"violationsByCategory"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func (h *RunHandler) GetRun(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return fmt.Errorf("%w: run id is required", domain.ErrValidation)
	}

	run, err := h.runs.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(toRunResponse(run))
}

type attemptResponse struct {
	Attempt    int       `json:"attempt"`
	StatusCode *int      `json:"statusCode,omitempty"`
	Error      *string   `json:"error,omitempty"`
	Succeeded  bool      `json:"succeeded"`
	DurationMS int64     `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
}

type attemptsResponse struct {
	RunID       string            `json:"runId"`
	Key         string            `json:"key"`
	Destination string            `json:"destination,omitempty"`
	Attempts    []attemptResponse `json:"attempts"`
}

func (h *RunHandler) ListAttempts(c *fiber.Ctx) error {
	runID := strings.TrimSpace(c.Params("id"))
	key := strings.TrimSpace(c.Params("key"))

	attempts, err := h.attempts.ListByRecord(c.UserContext(), runID, key)
	if err != nil {
		return err
	}
	if len(attempts) == 0 {
		return fmt.Errorf("%w: no attempts for %s in run %s", domain.ErrNotFound, key, runID)
	}

	resp := attemptsResponse{
		RunID:       runID,
		Key:         key,
		Destination: attempts[0].Destination,
		Attempts:    make([]attemptResponse, len(attempts)),
	}
	for i, a := range attempts {
		resp.Attempts[i] = attemptResponse{
			Attempt:    a.AttemptNumber,
			StatusCode: a.StatusCode,
			Error:      a.Error,
			Succeeded:  a.Succeeded(),
			DurationMS: a.Duration.Milliseconds(),
			CreatedAt:  a.CreatedAt,
		}
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func toRunResponse(run *domain.Run) runResponse {
	byCategory := make(map[string]int)
	for _, v := range run.Violations {
		byCategory[v.Category.String()]++
	}

	summary := run.Summary
	if summary == nil {
		summary = []string{}
	}

	return runResponse{
		ID:         run.ID,
		Dataset:    run.Dataset,
		Status:     run.Status.String(),
		Total:      run.Total,
		Valid:      run.Valid,
		Invalid:    run.Invalid,
		Duplicates: run.Duplicates,
		Warnings:   run.Warnings,
		Sent:       run.Sent,
		Failed:     run.Failed,
		Skipped:    run.Skipped,
		Summary:    summary,
		Violations: byCategory,
		CreatedAt:  run.CreatedAt,
	}
}
