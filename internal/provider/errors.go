package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// SendError is a delivery failure reported by a transport.
type SendError struct {
	StatusCode int
	Message    string
	Transient  bool
	Cause      error
}

func transientError(message string, cause error) *SendError {
	return &SendError{Message: message, Transient: true, Cause: cause}
}

// statusError maps a non-2xx response. 429 and 5xx are expected to clear up.
func statusError(status int, body string) *SendError {
	msg := fmt.Sprintf("status %d", status)
	if text := strings.TrimSpace(body); text != "" {
		msg += ": " + text
	}
	return &SendError{
		StatusCode: status,
		Message:    msg,
		Transient:  status == http.StatusTooManyRequests || status >= http.StatusInternalServerError,
	}
}

func (e *SendError) Error() string {
	if e == nil {
		return "<nil>"
	}

	var b strings.Builder
	b.WriteString("send failed")
	if msg := strings.TrimSpace(e.Message); msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *SendError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// StatusCode extracts the transport status code from err, zero when there is none.
func StatusCode(err error) int {
	var sendErr *SendError
	if errors.As(err, &sendErr) {
		return sendErr.StatusCode
	}
	return 0
}

// IsTransient reports whether a send failure looks temporary. It only labels
// failures; retry decisions belong to retry.Policy.
func IsTransient(err error) bool {
	var sendErr *SendError
	var netErr net.Error
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, context.DeadlineExceeded):
		return true
	case errors.As(err, &sendErr):
		return sendErr.Transient
	case errors.As(err, &netErr):
		return netErr.Timeout()
	}
	return false
}
