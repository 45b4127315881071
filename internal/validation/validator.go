package validation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kursadbilgin/orderflow/internal/domain"
)

// Rule is a named check over one record. Check returns every violation it finds;
// a returned error is reported as a data-type-error violation.
type Rule struct {
	Name     string
	Category domain.Category
	Check    func(domain.Record) ([]domain.Violation, error)
}

// RecordValidator runs all of its rules against a record without short-circuiting.
type RecordValidator struct {
	rules  []Rule
	logger *zap.Logger
}

func NewRecordValidator(rules []Rule, logger *zap.Logger) *RecordValidator {
	if logger == nil {
		logger = zap.NewNop()
	}

	copied := make([]Rule, len(rules))
	copy(copied, rules)

	return &RecordValidator{rules: copied, logger: logger}
}

// Validate returns the violations of every rule in rule order. An empty result means valid.
func (v *RecordValidator) Validate(record domain.Record) []domain.Violation {
	var out []domain.Violation
	for _, rule := range v.rules {
		out = append(out, v.apply(rule, record)...)
	}
	return out
}

func (v *RecordValidator) apply(rule Rule, record domain.Record) (violations []domain.Violation) {
	key := record.Label()

	defer func() {
		if r := recover(); r != nil {
			v.logger.Error("validation rule panicked",
				zap.String("rule", rule.Name),
				zap.String("key", key),
				zap.Any("panic", r),
			)
			violations = []domain.Violation{{
				Key:      key,
				Field:    rule.Name,
				Category: domain.CategoryDataType,
				Message:  fmt.Sprintf("rule %s failed: %v", rule.Name, r),
			}}
		}
	}()

	found, err := rule.Check(record)
	if err != nil {
		field := rule.Name
		var typeErr *domain.FieldTypeError
		if errors.As(err, &typeErr) {
			field = typeErr.Field
		}
		return []domain.Violation{{
			Key:      key,
			Field:    field,
			Category: domain.CategoryDataType,
			Message:  err.Error(),
		}}
	}

	for i := range found {
		found[i].Key = key
		if found[i].Category == "" {
			found[i].Category = rule.Category
		}
		if found[i].Field == "" {
			found[i].Field = rule.Name
		}
	}
	return found
}

func violation(field, format string, args ...any) domain.Violation {
	return domain.Violation{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Required reports every listed field that is absent or empty.
func Required(fields ...string) Rule {
	return Rule{
		Name:     "required",
		Category: domain.CategoryRequired,
		Check: func(r domain.Record) ([]domain.Violation, error) {
			var out []domain.Violation
			for _, f := range fields {
				if r.Get(f).IsEmpty() {
					out = append(out, violation(f, "required field is missing"))
				}
			}
			return out, nil
		},
	}
}

// Pattern checks a text field against a regular expression; absent values pass.
func Pattern(field string, re *regexp.Regexp, expected string) Rule {
	return Format(field, func(s string) bool { return MatchesPattern(re, s) }, expected)
}

// Format checks a text field with an arbitrary predicate; absent values pass.
func Format(field string, ok func(string) bool, expected string) Rule {
	return Rule{
		Name:     field + " format",
		Category: domain.CategoryFormat,
		Check: func(r domain.Record) ([]domain.Violation, error) {
			s, present, err := r.Text(field)
			if err != nil || !present {
				return nil, err
			}
			if !ok(s) {
				return []domain.Violation{violation(field, "invalid format %q, expected %s", s, expected)}, nil
			}
			return nil, nil
		},
	}
}

// Membership checks a text field against a closed set; absent values pass.
func Membership(field string, allowed []string) Rule {
	set := toSet(allowed)
	sorted := append([]string(nil), allowed...)
	sort.Strings(sorted)
	listing := strings.Join(sorted, ", ")

	return Rule{
		Name:     field + " membership",
		Category: domain.CategoryMembership,
		Check: func(r domain.Record) ([]domain.Violation, error) {
			s, present, err := r.Text(field)
			if err != nil || !present {
				return nil, err
			}
			if !InSet(set, s) {
				return []domain.Violation{violation(field, "unknown value %q, must be one of: %s", s, listing)}, nil
			}
			return nil, nil
		},
	}
}

// Range checks a numeric field against bounds; absent values pass, zero sentinels do not.
func Range(field, unit string, b Bounds) Rule {
	return Rule{
		Name:     field + " range",
		Category: domain.CategoryRange,
		Check: func(r domain.Record) ([]domain.Violation, error) {
			n, present, err := r.Number(field)
			if err != nil || !present {
				return nil, err
			}
			if !InRange(n, b) {
				return []domain.Violation{violation(field, "%s%s outside valid range %s", formatNumber(n), unit, b)}, nil
			}
			return nil, nil
		},
	}
}

// Tolerance compares a declared numeric field with a value computed from the record.
// Violations are reported against name, the field group involved. expected returns
// ok=false when the check cannot run, which never yields a violation.
func Tolerance(name, field string, tolerance float64, expected func(domain.Record) (float64, bool, error)) Rule {
	return Rule{
		Name:     name,
		Category: domain.CategoryCrossField,
		Check: func(r domain.Record) ([]domain.Violation, error) {
			declared, present, err := r.Number(field)
			if err != nil || !present || !Positive(declared) {
				return nil, err
			}
			want, ok, err := expected(r)
			if err != nil || !ok {
				return nil, err
			}
			deviation, ok := RelativeDeviation(declared, want)
			if !ok || deviation <= tolerance {
				return nil, nil
			}
			return []domain.Violation{violation(name,
				"%s %s differs from calculated %.2f by %.1f%% (tolerance %.1f%%)",
				field, formatNumber(declared), want, deviation*100, tolerance*100,
			)}, nil
		},
	}
}

// positiveNumbers returns the named numbers when every one is present and positive.
func positiveNumbers(r domain.Record, names ...string) ([]float64, bool, error) {
	out := make([]float64, 0, len(names))
	for _, name := range names {
		n, present, err := r.Number(name)
		if err != nil {
			return nil, false, err
		}
		if !present || !Positive(n) {
			return nil, false, nil
		}
		out = append(out, n)
	}
	return out, true, nil
}
