package domain

import "time"

// RunStatus is the overall result of one pipeline run.
type RunStatus string

const (
	RunStatusCompleted      RunStatus = "COMPLETED"
	RunStatusPartialFailure RunStatus = "PARTIAL_FAILURE"
	RunStatusAborted        RunStatus = "ABORTED"
)

func (s RunStatus) String() string { return string(s) }

func (s RunStatus) IsValid() bool {
	switch s {
	case RunStatusCompleted, RunStatusPartialFailure, RunStatusAborted:
		return true
	}
	return false
}

// Run is the persisted summary of validating and dispatching one input collection.
type Run struct {
	ID         string
	Dataset    string
	Status     RunStatus
	Total      int
	Valid      int
	Invalid    int
	Duplicates int
	Warnings   int
	Sent       int
	Failed     int
	Skipped    int
	Summary    []string
	Violations []Violation
	Results    []DispatchResult
	CreatedAt  time.Time
}

// RunStatusFor derives the run status from its dispatch counts.
func RunStatusFor(failed int) RunStatus {
	if failed > 0 {
		return RunStatusPartialFailure
	}
	return RunStatusCompleted
}
