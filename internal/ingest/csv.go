// Package ingest turns tabular input into raw, untyped records.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kursadbilgin/orderflow/internal/domain"
	"github.com/kursadbilgin/orderflow/internal/schema"
)

const utf8BOM = "\ufeff"

// ReadCSV reads a header row followed by data rows. Every cell becomes a string Value;
// typing is left to the cleaner.
func ReadCSV(r io.Reader, s schema.Schema) ([]domain.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &domain.MalformedInputError{Schema: s.Name, Reason: "empty input"}
	}
	if err != nil {
		return nil, &domain.MalformedInputError{Schema: s.Name, Reason: "failed to read header", Err: err}
	}

	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(strings.TrimPrefix(h, utf8BOM))
	}
	if missing := s.MissingColumns(names); len(missing) > 0 {
		return nil, &domain.MalformedInputError{Schema: s.Name, MissingColumns: missing}
	}

	var records []domain.Record
	for row := 1; ; row++ {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &domain.MalformedInputError{Schema: s.Name, Row: row, Err: err}
		}
		if len(cells) != len(names) {
			return nil, &domain.MalformedInputError{
				Schema: s.Name,
				Row:    row,
				Reason: fmt.Sprintf("expected %d fields, got %d", len(names), len(cells)),
			}
		}

		values := make([]domain.Value, len(cells))
		for i, cell := range cells {
			values[i] = domain.String(cell)
		}

		record, err := domain.NewRecord(row, s.KeyField, names, values)
		if err != nil {
			return nil, fmt.Errorf("failed to build record at row %d: %w", row, err)
		}
		records = append(records, record)
	}

	return records, nil
}

// ReadFile opens path and reads it with ReadCSV.
func ReadFile(path string, s schema.Schema) ([]domain.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	return ReadCSV(f, s)
}
