package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Category groups validation rules for reporting.
type Category string

const (
	CategoryRequired      Category = "required"
	CategoryFormat        Category = "format"
	CategoryMembership    Category = "membership"
	CategoryRange         Category = "range"
	CategoryCrossField    Category = "cross-field"
	CategoryBusinessState Category = "business-state"
	CategoryDataType      Category = "data-type-error"
)

func (c Category) String() string { return string(c) }

func (c Category) IsValid() bool {
	switch c {
	case CategoryRequired, CategoryFormat, CategoryMembership, CategoryRange,
		CategoryCrossField, CategoryBusinessState, CategoryDataType:
		return true
	}
	return false
}

// Violation is one rule failure on one record.
type Violation struct {
	Key      string
	Field    string
	Category Category
	Message  string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s [%s] %s: %s", v.Key, v.Category, v.Field, v.Message)
}

// CountKey aggregates violations per field and rule category.
type CountKey struct {
	Field    string
	Category Category
}

func (k CountKey) String() string {
	return fmt.Sprintf("%s: %s", k.Field, k.Category)
}

// InvalidRecord is a rejected record with every reason it was rejected.
type InvalidRecord struct {
	Key        string
	Row        int
	Record     Record
	Violations []Violation
}

// CoercionWarning records a value that could not be converted and was replaced.
type CoercionWarning struct {
	Key         string
	Row         int
	Field       string
	Raw         string
	Replacement string
	Reason      string
}

// ValidationOutcome partitions the cleaned input into valid and invalid records.
type ValidationOutcome struct {
	RunID         string
	Dataset       string
	Total         int
	Valid         []Record
	Invalid       []InvalidRecord
	Duplicates    int
	DuplicateKeys []string
	Warnings      []CoercionWarning
	Counts        map[CountKey]int
}

// Cleaned is the number of records that survived deduplication.
func (o *ValidationOutcome) Cleaned() int {
	if o == nil {
		return 0
	}
	return len(o.Valid) + len(o.Invalid)
}

// ViolationCount is the total number of violations across invalid records.
func (o *ValidationOutcome) ViolationCount() int {
	if o == nil {
		return 0
	}
	total := 0
	for _, n := range o.Counts {
		total += n
	}
	return total
}

// Summary renders the counts keyed "field: category", sorted by key.
func (o *ValidationOutcome) Summary() []string {
	if o == nil || len(o.Counts) == 0 {
		return nil
	}

	keys := make([]CountKey, 0, len(o.Counts))
	for k := range o.Counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Field != keys[j].Field {
			return keys[i].Field < keys[j].Field
		}
		return keys[i].Category < keys[j].Category
	})

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s=%d", k, o.Counts[k]))
	}
	return lines
}

// CategoryTotals folds the counts by category only.
func (o *ValidationOutcome) CategoryTotals() map[Category]int {
	totals := make(map[Category]int)
	if o == nil {
		return totals
	}
	for k, n := range o.Counts {
		totals[k.Category] += n
	}
	return totals
}

// JoinViolations renders violation messages on one line for logs.
func JoinViolations(violations []Violation) string {
	parts := make([]string, 0, len(violations))
	for _, v := range violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return strings.Join(parts, "; ")
}
