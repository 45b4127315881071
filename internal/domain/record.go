package domain

import (
	"fmt"
	"strings"
	"time"
)

// Record is one business entity (order or reservation) as an ordered set of typed fields.
// Records are values: every transformation returns a new Record.
type Record struct {
	row      int
	keyField string
	names    []string
	values   map[string]Value
}

// NewRecord builds a record from parallel name/value slices. Row is the 1-based input position.
func NewRecord(row int, keyField string, names []string, values []Value) (Record, error) {
	if len(names) != len(values) {
		return Record{}, fmt.Errorf("%w: %d field names for %d values", ErrMalformedInput, len(names), len(values))
	}

	r := Record{
		row:      row,
		keyField: keyField,
		names:    make([]string, 0, len(names)),
		values:   make(map[string]Value, len(names)),
	}
	for i, name := range names {
		if _, dup := r.values[name]; dup {
			return Record{}, fmt.Errorf("%w: duplicate field %q", ErrMalformedInput, name)
		}
		r.names = append(r.names, name)
		r.values[name] = values[i]
	}
	return r, nil
}

// Key returns the trimmed business key, empty when the key field is absent.
func (r Record) Key() string {
	return strings.TrimSpace(r.Get(r.keyField).Text())
}

// Label identifies the record in logs and reports even when the key is empty.
func (r Record) Label() string {
	if key := r.Key(); key != "" {
		return key
	}
	return fmt.Sprintf("row-%d", r.row)
}

func (r Record) Row() int { return r.row }

func (r Record) KeyField() string { return r.keyField }

// Fields returns the field names in input order.
func (r Record) Fields() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Has reports whether the record carries the named column, present or not.
func (r Record) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Get returns the named value; unknown fields are absent.
func (r Record) Get(name string) Value {
	return r.values[name]
}

// With returns a copy of the record with the field set. New fields are appended.
func (r Record) With(name string, v Value) Record {
	out := r.clone()
	if _, ok := out.values[name]; !ok {
		out.names = append(out.names, name)
	}
	out.values[name] = v
	return out
}

// Without returns a copy of the record with the field removed.
func (r Record) Without(name string) Record {
	if !r.Has(name) {
		return r
	}
	out := r.clone()
	delete(out.values, name)
	names := out.names[:0]
	for _, n := range out.names {
		if n != name {
			names = append(names, n)
		}
	}
	out.names = names
	return out
}

// Equal compares row, fields, order and values.
func (r Record) Equal(other Record) bool {
	if r.row != other.row || r.keyField != other.keyField || len(r.names) != len(other.names) {
		return false
	}
	for i, name := range r.names {
		if other.names[i] != name {
			return false
		}
		if !r.values[name].Equal(other.values[name]) {
			return false
		}
	}
	return true
}

// Number returns a numeric field. ok is false when the field is absent.
func (r Record) Number(name string) (float64, bool, error) {
	v := r.Get(name)
	if !v.IsPresent() {
		return 0, false, nil
	}
	n, ok := v.Num()
	if !ok {
		return 0, false, &FieldTypeError{Field: name, Want: KindNumber, Got: v.Kind(), Raw: v.Text()}
	}
	return n, true, nil
}

// Text returns a string field. Empty strings are reported as absent.
func (r Record) Text(name string) (string, bool, error) {
	v := r.Get(name)
	if v.IsEmpty() {
		return "", false, nil
	}
	s, ok := v.Str()
	if !ok {
		return "", false, &FieldTypeError{Field: name, Want: KindString, Got: v.Kind(), Raw: v.Text()}
	}
	return s, true, nil
}

// Date returns a date field. ok is false when the field is absent.
func (r Record) Date(name string) (time.Time, bool, error) {
	v := r.Get(name)
	if v.IsEmpty() {
		return time.Time{}, false, nil
	}
	t, ok := v.Time()
	if !ok {
		return time.Time{}, false, &FieldTypeError{Field: name, Want: KindDate, Got: v.Kind(), Raw: v.Text()}
	}
	return t, true, nil
}

func (r Record) clone() Record {
	out := Record{
		row:      r.row,
		keyField: r.keyField,
		names:    make([]string, len(r.names), len(r.names)+1),
		values:   make(map[string]Value, len(r.values)+1),
	}
	copy(out.names, r.names)
	for k, v := range r.values {
		out.values[k] = v
	}
	return out
}
