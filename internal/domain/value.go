package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Kind identifies the type carried by a Value.
type Kind int

const (
	KindMissing Kind = iota
	KindString
	KindNumber
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "missing"
	}
}

// Value is a single typed field value. The zero Value is absent.
type Value struct {
	kind Kind
	str  string
	num  float64
	date time.Time
}

func String(s string) Value { return Value{kind: KindString, str: s} }

func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

func Date(t time.Time) Value { return Value{kind: KindDate, date: t} }

func Missing() Value { return Value{} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsPresent() bool { return v.kind != KindMissing }

// IsEmpty reports whether the value is absent or an empty string.
func (v Value) IsEmpty() bool {
	return v.kind == KindMissing || (v.kind == KindString && v.str == "")
}

func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

func (v Value) Num() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

func (v Value) Time() (time.Time, bool) {
	if v.kind != KindDate {
		return time.Time{}, false
	}
	return v.date, true
}

// Equal compares kind and payload; dates compare by instant.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindDate:
		return v.date.Equal(other.date)
	default:
		return true
	}
}

// Text renders the value for messages and templates.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindDate:
		return v.date.Format(time.DateOnly)
	default:
		return ""
	}
}

func (v Value) GoString() string {
	return fmt.Sprintf("%s(%s)", v.kind, v.Text())
}
