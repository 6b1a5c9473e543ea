package core

// loader.go reads CSV data into a Table.
//
// The reader strips a UTF-8 BOM (common in Windows exports) and replaces
// invalid UTF-8 with U+FFFD before the CSV parser sees the bytes. Columns
// named in the field specs get their declared type; other columns are numeric
// when every non-blank cell parses as a number and text otherwise. Cells that
// fail to parse as their declared type become missing and are counted.

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// WrapForReading applies BOM removal and UTF-8 sanitizing to r.
func WrapForReading(r io.Reader) io.Reader {
	return transform.NewReader(r, transform.Chain(
		unicode.BOMOverride(transform.Nop),
		runes.ReplaceIllFormed(),
	))
}

// LoadResult is the outcome of reading a CSV file.
type LoadResult struct {
	Table         *Table
	ParseFailures []ParseFailure
}

// ReadCSV parses r into a table typed by specs.
func ReadCSV(r io.Reader, specs []FieldSpec) (*LoadResult, error) {
	cr := csv.NewReader(WrapForReading(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}

	names := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := CleanCell(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("invalid csv: duplicate column %q", name)
		}
		seen[name] = true
		names[i] = name
	}

	raw := make([][]string, len(names))
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("invalid csv: line %d: %w", line, err)
		}
		if len(record) > len(names) {
			return nil, fmt.Errorf("invalid csv: line %d has %d fields, expected %d", line, len(record), len(names))
		}
		for i := range names {
			cell := ""
			if i < len(record) {
				cell = CleanCell(record[i])
			}
			raw[i] = append(raw[i], cell)
		}
	}

	return BuildTable(names, raw, specs)
}

// BuildTable types raw string columns using specs. raw[i] holds every value
// of column names[i]. Headers matching a spec case-insensitively take the
// spec's Name, so audit rules find them by their declared spelling.
func BuildTable(names []string, raw [][]string, specs []FieldSpec) (*LoadResult, error) {
	specIdx := make(map[string]FieldSpec, len(specs))
	for _, s := range specs {
		specIdx[normalizeKey(s.Name)] = s
	}

	result := &LoadResult{}
	cols := make([]*Column, len(names))
	for i, name := range names {
		values := raw[i]
		spec, declared := specIdx[normalizeKey(name)]
		if spec.Normalizer != nil {
			values = normalizeAll(values, spec.Normalizer)
		}

		typ := spec.Type
		if declared {
			name = spec.Name
		} else {
			typ = inferType(values)
		}

		col, failures := typedColumn(name, typ, values)
		if failures > 0 {
			result.ParseFailures = append(result.ParseFailures, ParseFailure{Column: name, Count: failures})
		}
		cols[i] = col
	}

	t, err := NewTable(cols...)
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	result.Table = t
	return result, nil
}

// typedColumn parses values into a column of typ. It returns the number of
// non-blank values that failed to parse.
func typedColumn(name string, typ ColumnType, values []string) (*Column, int) {
	col := newColumn(name, typ, len(values))
	failures := 0
	for i, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		switch typ {
		case ColumnNumeric:
			col.numbers[i], col.valid[i] = ParseNumeric(v)
		case ColumnTemporal:
			col.times[i], col.valid[i] = ParseTimestamp(v)
		default:
			col.texts[i], col.valid[i] = v, true
		}
		if !col.valid[i] {
			failures++
		}
	}
	return col, failures
}

// inferType picks numeric when every non-blank value parses as a number.
func inferType(values []string) ColumnType {
	hasValue := false
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if _, ok := ParseNumeric(v); !ok {
			return ColumnText
		}
		hasValue = true
	}
	if !hasValue {
		return ColumnText
	}
	return ColumnNumeric
}

func normalizeAll(values []string, fn func(string) string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		if v != "" {
			v = fn(v)
		}
		out[i] = v
	}
	return out
}
