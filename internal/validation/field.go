// Package validation holds per-field predicates and the per-record rule engine.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^[\d\s\-\(\)\+x\.]+$`)
)

// Bounds is a closed numeric interval, optionally open at the minimum.
type Bounds struct {
	Min          float64
	Max          float64
	ExclusiveMin bool
}

func (b Bounds) Contains(v float64) bool {
	return InRange(v, b)
}

func (b Bounds) String() string {
	open := "["
	if b.ExclusiveMin {
		open = "("
	}
	return fmt.Sprintf("%s%s, %s]", open, formatNumber(b.Min), formatNumber(b.Max))
}

func MatchesPattern(re *regexp.Regexp, s string) bool {
	return re != nil && re.MatchString(s)
}

// InSet is an exact, case-sensitive membership test.
func InSet(set map[string]struct{}, s string) bool {
	_, ok := set[s]
	return ok
}

func InRange(v float64, b Bounds) bool {
	if math.IsNaN(v) {
		return false
	}
	if b.ExclusiveMin {
		if v <= b.Min {
			return false
		}
	} else if v < b.Min {
		return false
	}
	return v <= b.Max
}

func Positive(v float64) bool {
	return v > 0
}

// RelativeDeviation is |actual-expected|/expected. ok is false when expected is not positive.
func RelativeDeviation(actual, expected float64) (deviation float64, ok bool) {
	if !(expected > 0) || math.IsInf(expected, 0) {
		return 0, false
	}
	return math.Abs(actual-expected) / expected, true
}

// WithinTolerance reports true when the deviation cannot be computed.
func WithinTolerance(actual, expected, tolerance float64) bool {
	deviation, ok := RelativeDeviation(actual, expected)
	if !ok {
		return true
	}
	return deviation <= tolerance
}

func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

func IsPhone(s string) bool {
	return phonePattern.MatchString(s)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
