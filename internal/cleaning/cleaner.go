// Package cleaning deduplicates raw records, coerces them to typed values
// and computes derived fields.
package cleaning

import (
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kursadbilgin/orderflow/internal/domain"
	"github.com/kursadbilgin/orderflow/internal/schema"
)

var moneyReplacer = strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "")

var numberReplacer = strings.NewReplacer(",", "", " ", "")

// Result is the cleaned batch. Records keep input order.
type Result struct {
	Records       []domain.Record
	Duplicates    int
	DuplicateKeys []string
	Warnings      []domain.CoercionWarning
}

type BatchCleaner struct {
	schema schema.Schema
	logger *zap.Logger
}

func NewBatchCleaner(s schema.Schema, logger *zap.Logger) *BatchCleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchCleaner{schema: s, logger: logger}
}

// Clean returns new records; the input is never modified. Cleaning an already
// cleaned batch yields the same records.
func (c *BatchCleaner) Clean(records []domain.Record) (Result, error) {
	if err := c.checkStructure(records); err != nil {
		return Result{}, err
	}

	var res Result
	seen := make(map[string]struct{}, len(records))
	res.Records = make([]domain.Record, 0, len(records))

	for _, rec := range records {
		// Records without a key each reach validation and fail there.
		if key := rec.Key(); key != "" {
			if _, dup := seen[key]; dup {
				res.Duplicates++
				res.DuplicateKeys = append(res.DuplicateKeys, key)
				continue
			}
			seen[key] = struct{}{}
		}

		cleaned, warnings := c.coerce(rec)
		cleaned = c.derive(cleaned)

		res.Records = append(res.Records, cleaned)
		res.Warnings = append(res.Warnings, warnings...)
	}

	for _, w := range res.Warnings {
		c.logger.Warn("value coerced",
			zap.String("dataset", c.schema.Name),
			zap.String("key", w.Key),
			zap.Int("row", w.Row),
			zap.String("field", w.Field),
			zap.String("raw", w.Raw),
			zap.String("replacement", w.Replacement),
			zap.String("reason", w.Reason),
		)
	}
	if res.Duplicates > 0 {
		c.logger.Info("duplicate records dropped",
			zap.String("dataset", c.schema.Name),
			zap.Int("count", res.Duplicates),
			zap.Strings("keys", res.DuplicateKeys),
		)
	}

	return res, nil
}

func (c *BatchCleaner) checkStructure(records []domain.Record) error {
	var (
		firstRow int
		missing  []string
		reported = make(map[string]struct{})
	)

	for _, rec := range records {
		for _, col := range c.schema.Columns {
			if rec.Has(col.Name) {
				continue
			}
			if firstRow == 0 {
				firstRow = rec.Row()
			}
			if _, ok := reported[col.Name]; !ok {
				reported[col.Name] = struct{}{}
				missing = append(missing, col.Name)
			}
		}
	}

	if len(missing) == 0 {
		return nil
	}
	return &domain.MalformedInputError{Schema: c.schema.Name, Row: firstRow, MissingColumns: missing}
}

func (c *BatchCleaner) coerce(rec domain.Record) (domain.Record, []domain.CoercionWarning) {
	var warnings []domain.CoercionWarning
	out := rec

	for _, col := range c.schema.Columns {
		v := rec.Get(col.Name)
		raw, isString := v.Str()
		if v.IsPresent() && !isString {
			continue
		}
		trimmed := strings.TrimSpace(raw)

		var (
			next   domain.Value
			reason string
		)
		switch col.Kind {
		case schema.KindText:
			if trimmed == "" {
				next = domain.Missing()
			} else {
				next = domain.String(trimmed)
			}
		case schema.KindNumber:
			next, reason = parseNumber(numberReplacer.Replace(trimmed))
		case schema.KindMoney:
			next, reason = parseNumber(moneyReplacer.Replace(trimmed))
		case schema.KindDate:
			next, reason = parseDate(trimmed)
		}

		if reason != "" {
			warnings = append(warnings, domain.CoercionWarning{
				Key:         rec.Label(),
				Row:         rec.Row(),
				Field:       col.Name,
				Raw:         raw,
				Replacement: next.Text(),
				Reason:      reason,
			})
		}
		if !next.Equal(v) {
			out = out.With(col.Name, next)
		}
	}

	return out, warnings
}

func (c *BatchCleaner) derive(rec domain.Record) domain.Record {
	for _, d := range c.schema.Derived {
		inputs := make([]float64, 0, len(d.Inputs))
		for _, name := range d.Inputs {
			n, ok, err := rec.Number(name)
			if err != nil || !ok || n <= 0 {
				break
			}
			inputs = append(inputs, n)
		}

		if len(inputs) != len(d.Inputs) {
			rec = rec.Without(d.Name)
			continue
		}

		value := d.Compute(inputs)
		if math.IsNaN(value) || math.IsInf(value, 0) {
			rec = rec.Without(d.Name)
			continue
		}
		rec = rec.With(d.Name, domain.Number(value))
	}
	return rec
}

func parseNumber(s string) (domain.Value, string) {
	if s == "" {
		return domain.Number(0), "empty value"
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return domain.Number(0), "not a number"
	}
	return domain.Number(n), ""
}

func parseDate(s string) (domain.Value, string) {
	if s == "" {
		return domain.Missing(), ""
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return domain.Date(t), ""
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return domain.Date(t), ""
	}
	return domain.String(s), "unparseable date"
}
