// Package schema describes the column layout of each supported dataset.
package schema

import (
	"fmt"
	"strings"

	"github.com/kursadbilgin/orderflow/internal/domain"
)

// ColumnKind tells the cleaner how to coerce a raw column value.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindNumber
	KindMoney
	KindDate
)

func (k ColumnKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindMoney:
		return "money"
	case KindDate:
		return "date"
	default:
		return "text"
	}
}

type Column struct {
	Name string
	Kind ColumnKind
}

// Derivation computes a field from positive numeric inputs.
type Derivation struct {
	Name    string
	Inputs  []string
	Compute func(inputs []float64) float64
}

// Schema is the fixed column layout for one dataset.
type Schema struct {
	Name             string
	KeyField         string
	DestinationField string
	NameField        string
	Columns          []Column
	Derived          []Derivation
}

func (s Schema) ColumnNames() []string {
	names := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		names = append(names, c.Name)
	}
	return names
}

func (s Schema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// MissingColumns lists schema columns absent from the given header, in schema order.
func (s Schema) MissingColumns(header []string) []string {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = struct{}{}
	}

	var missing []string
	for _, c := range s.Columns {
		if _, ok := present[c.Name]; !ok {
			missing = append(missing, c.Name)
		}
	}
	return missing
}

// ByName resolves a dataset name.
func ByName(name string) (Schema, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case OrdersName:
		return Orders(), nil
	case ReservationsName:
		return Reservations(), nil
	}
	return Schema{}, fmt.Errorf("%w: unknown dataset %q", domain.ErrValidation, name)
}
