package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedInput marks structural input errors; only these abort a pipeline run.
	ErrMalformedInput = errors.New("malformed input")
	// ErrFieldType marks a field holding a value of the wrong kind.
	ErrFieldType = errors.New("field type mismatch")
	// ErrNoDestination is the one dispatch failure that is never retried.
	ErrNoDestination = errors.New("no destination")
	// ErrValidation marks invalid configuration or arguments.
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
)

// MalformedInputError reports a collection that does not match the expected schema.
type MalformedInputError struct {
	Schema         string
	MissingColumns []string
	Row            int
	Reason         string
	Err            error
}

func (e *MalformedInputError) Error() string {
	if e == nil {
		return "<nil>"
	}

	parts := []string{ErrMalformedInput.Error()}
	if e.Schema != "" {
		parts = append(parts, fmt.Sprintf("schema=%s", e.Schema))
	}
	if e.Row > 0 {
		parts = append(parts, fmt.Sprintf("row=%d", e.Row))
	}
	if len(e.MissingColumns) > 0 {
		parts = append(parts, "missing columns "+strings.Join(e.MissingColumns, ", "))
	}
	if msg := strings.TrimSpace(e.Reason); msg != "" {
		parts = append(parts, msg)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

func (e *MalformedInputError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// FieldTypeError is returned by typed Record accessors when the stored kind differs.
type FieldTypeError struct {
	Field string
	Want  Kind
	Got   Kind
	Raw   string
}

func (e *FieldTypeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("field %s: expected %s, got %s %q", e.Field, e.Want, e.Got, e.Raw)
}

func (e *FieldTypeError) Is(target error) bool {
	return target == ErrFieldType
}
