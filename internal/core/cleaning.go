package core

// cleaning.go holds the table transformations behind the CleaningEngine.
//
// Each function takes a table snapshot and returns a new one plus a
// human-readable impact message. The input table is never modified.

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Impute fills missing values of column using strategy, or drops the rows
// where it is missing. Mean and Median require a numeric column.
func Impute(t *Table, column string, strategy ImputeStrategy) (*Table, string, error) {
	c, ok := t.Column(column)
	if !ok {
		return nil, "", missingColumn(column)
	}

	switch strategy {
	case ImputeMean, ImputeMedian:
		if c.Type != ColumnNumeric {
			return nil, "", typeMismatch(column, c.Type, "numeric")
		}
		values := presentNumbers(c)
		if len(values) == 0 {
			return t.withColumn(c.clone()), fmt.Sprintf("Imputed '%s' with %s: %s", column, strategy, NotAvailable), nil
		}
		fill := mean(values)
		if strategy == ImputeMedian {
			fill = median(values)
		}
		out := c.clone()
		for i := range out.valid {
			if !out.valid[i] {
				out.numbers[i], out.valid[i] = fill, true
			}
		}
		return t.withColumn(out), fmt.Sprintf("Imputed '%s' with %s: %.2f", column, strategy, fill), nil

	case ImputeMode:
		out, label := fillMode(c)
		return t.withColumn(out), fmt.Sprintf("Imputed '%s' with Mode: %s", column, label), nil

	case ImputeDropRows:
		before := c.MissingCount()
		keep := make([]int, 0, t.rows-before)
		for i := 0; i < t.rows; i++ {
			if c.valid[i] {
				keep = append(keep, i)
			}
		}
		return t.selectRows(keep), fmt.Sprintf("Dropped %d rows with missing values in '%s'", before, column), nil
	}

	return nil, "", unknownStrategy(string(strategy))
}

// fillMode fills missing values with the most frequent value. Ties go to the
// smallest value. A column with no values is replaced by a text column of
// "N/A", so a numeric or temporal column changes type.
func fillMode(c *Column) (*Column, string) {
	counts := make(map[string]int)
	best := -1
	for i := 0; i < c.Len(); i++ {
		if !c.valid[i] {
			continue
		}
		k := c.key(i)
		counts[k]++
		switch {
		case best < 0:
			best = i
		case counts[k] > counts[c.key(best)]:
			best = i
		case counts[k] == counts[c.key(best)] && c.less(i, best):
			best = i
		}
	}

	if best < 0 {
		values := make([]string, c.Len())
		for i := range values {
			values[i] = NotAvailable
		}
		return NewTextColumn(c.Name, values), NotAvailable
	}

	out := c.clone()
	for i := range out.valid {
		if !out.valid[i] {
			out.set(i, c, best)
		}
	}
	return out, c.Format(best)
}

// DropDuplicates removes rows that repeat an earlier row on subset, or on
// every column when subset is empty.
func DropDuplicates(t *Table, subset ...string) (*Table, string, error) {
	cols, err := lookupColumns(t, subset)
	if err != nil {
		return nil, "", err
	}

	seen := make(map[string]struct{}, t.rows)
	keep := make([]int, 0, t.rows)
	for i := 0; i < t.rows; i++ {
		k := rowKey(cols, i)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keep = append(keep, i)
	}

	msg := fmt.Sprintf("Removed %d duplicate rows", t.rows-len(keep))
	if len(subset) > 0 {
		msg += fmt.Sprintf(" based on [%s]", strings.Join(subset, ", "))
	}
	return t.selectRows(keep), msg, nil
}

// StandardizeTemporal converts column to a temporal column. Values that do
// not parse become missing and are counted in the message.
func StandardizeTemporal(t *Table, column string) (*Table, string, error) {
	c, ok := t.Column(column)
	if !ok {
		return nil, "", missingColumn(column)
	}

	out, failure := ParseTemporalColumn(c)
	msg := fmt.Sprintf("Standardized '%s' to datetime.", column)
	if failure.Count > 0 {
		msg += fmt.Sprintf(" (Note: %d values failed to parse and were set to missing)", failure.Count)
	}
	return t.withColumn(out), msg, nil
}

// ParseTemporalColumn returns c as a temporal column along with the number of
// previously present values that failed to parse.
func ParseTemporalColumn(c *Column) (*Column, ParseFailure) {
	failure := ParseFailure{Column: c.Name}
	if c.Type == ColumnTemporal {
		return c.clone(), failure
	}

	out := newColumn(c.Name, ColumnTemporal, c.Len())
	for i := 0; i < c.Len(); i++ {
		if !c.valid[i] {
			continue
		}
		out.times[i], out.valid[i] = ParseTimestamp(c.Format(i))
		if !out.valid[i] {
			failure.Count++
		}
	}
	return out, failure
}

// DropMissing removes rows with a missing value in any of columns, or in
// any column when none are given.
func DropMissing(t *Table, columns ...string) (*Table, string, error) {
	cols, err := lookupColumns(t, columns)
	if err != nil {
		return nil, "", err
	}

	keep := make([]int, 0, t.rows)
	for i := 0; i < t.rows; i++ {
		if !slices.ContainsFunc(cols, func(c *Column) bool { return !c.valid[i] }) {
			keep = append(keep, i)
		}
	}
	return t.selectRows(keep), fmt.Sprintf("Removed %d rows.", t.rows-len(keep)), nil
}

// FillMissing replaces missing values of column with value, parsed as the
// column's type.
func FillMissing(t *Table, column, value string) (*Table, string, error) {
	c, ok := t.Column(column)
	if !ok {
		return nil, "", missingColumn(column)
	}

	fill := newColumn(c.Name, c.Type, 1)
	v := CleanCell(value)
	switch c.Type {
	case ColumnNumeric:
		fill.numbers[0], fill.valid[0] = ParseNumeric(v)
	case ColumnTemporal:
		fill.times[0], fill.valid[0] = ParseTimestamp(v)
	default:
		fill.texts[0], fill.valid[0] = v, v != ""
	}
	if !fill.valid[0] {
		return nil, "", fmt.Errorf("invalid fill value %q for %s column %q", value, c.Type, column)
	}

	out := c.clone()
	filled := 0
	for i := range out.valid {
		if !out.valid[i] {
			out.set(i, fill, 0)
			filled++
		}
	}
	return t.withColumn(out), fmt.Sprintf("Filled %d values with '%s'.", filled, fill.Format(0)), nil
}

// FilterMinYear keeps rows whose year in column is at least minYear.
// Temporal columns use the year of each timestamp. Rows with no year are removed.
func FilterMinYear(t *Table, column string, minYear int) (*Table, string, error) {
	c, ok := t.Column(column)
	if !ok {
		return nil, "", missingColumn(column)
	}

	years, valid, err := yearValues(c)
	if err != nil {
		return nil, "", err
	}

	keep := make([]int, 0, t.rows)
	for i := 0; i < t.rows; i++ {
		if valid[i] && years[i] >= float64(minYear) {
			keep = append(keep, i)
		}
	}
	return t.selectRows(keep), fmt.Sprintf("Removed %d rows.", t.rows-len(keep)), nil
}

func yearValues(c *Column) ([]float64, []bool, error) {
	if c.Type == ColumnTemporal {
		years := make([]float64, c.Len())
		for i, ts := range c.times {
			years[i] = float64(ts.Year())
		}
		return years, c.valid, nil
	}
	values, valid, ok := numericView(c)
	if !ok {
		return nil, nil, typeMismatch(c.Name, c.Type, "numeric or temporal")
	}
	return values, valid, nil
}

// lookupColumns resolves names, or returns every column when names is empty.
func lookupColumns(t *Table, names []string) ([]*Column, error) {
	if len(names) == 0 {
		return t.Columns(), nil
	}
	cols := make([]*Column, 0, len(names))
	for _, name := range names {
		c, ok := t.Column(name)
		if !ok {
			return nil, missingColumn(name)
		}
		cols = append(cols, c)
	}
	return cols, nil
}

func presentNumbers(c *Column) []float64 {
	out := make([]float64, 0, c.Len())
	for i, v := range c.numbers {
		if c.valid[i] {
			out = append(out, v)
		}
	}
	return out
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
