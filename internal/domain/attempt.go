package domain

import "time"

// SendAttempt records a single transport call for one notification task.
type SendAttempt struct {
	ID            string
	RunID         string
	Key           string
	Destination   string
	AttemptNumber int
	StatusCode    *int
	Error         *string
	Duration      time.Duration
	CreatedAt     time.Time
}

// Succeeded reports whether the transport accepted the message on this attempt.
func (a SendAttempt) Succeeded() bool {
	return a.Error == nil
}
