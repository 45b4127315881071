package domain

import (
	"fmt"
	"strings"
	"time"
)

// TaskState represents the lifecycle state of a notification task.
type TaskState string

const (
	TaskCreated    TaskState = "CREATED"
	TaskAttempting TaskState = "ATTEMPTING"
	TaskSent       TaskState = "SENT"
	TaskFailed     TaskState = "FAILED"
	TaskSkipped    TaskState = "SKIPPED"
)

func (s TaskState) String() string { return string(s) }

func (s TaskState) IsValid() bool {
	switch s {
	case TaskCreated, TaskAttempting, TaskSent, TaskFailed, TaskSkipped:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s TaskState) IsTerminal() bool {
	switch s {
	case TaskSent, TaskFailed, TaskSkipped:
		return true
	}
	return false
}

func ParseTaskStateFromString(s string) (TaskState, error) {
	st := TaskState(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid task state %q", ErrValidation, s)
	}
	return st, nil
}

// NotificationTask is one pending notification for one valid record.
type NotificationTask struct {
	Key         string
	Destination string
	Subject     string
	Body        string
	Attempts    int
	State       TaskState
}

// DispatchResult is the terminal outcome of a NotificationTask.
type DispatchResult struct {
	Key         string
	Destination string
	State       TaskState
	LastError   string
	Attempts    int
	Elapsed     time.Duration
	Timestamp   time.Time
}
