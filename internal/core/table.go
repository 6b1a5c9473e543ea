package core

// table.go defines the columnar in-memory table audited by this package.
//
// Each column declares one type up front and stores its values in a typed
// slice next to a validity mask. A false entry in the mask is the explicit
// missing marker. Tables are snapshots: cleaning operations never modify a
// table in place, they build a new one with a higher Version.

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// versionSeq hands out table versions so two snapshots never share one.
var versionSeq atomic.Uint64

// Column is a named, typed sequence of values.
type Column struct {
	Name string
	Type ColumnType

	texts   []string
	numbers []float64
	times   []time.Time
	valid   []bool
}

// NewTextColumn builds a text column. Blank values are missing.
func NewTextColumn(name string, values []string) *Column {
	c := &Column{Name: name, Type: ColumnText, texts: make([]string, len(values)), valid: make([]bool, len(values))}
	for i, v := range values {
		v = strings.TrimSpace(v)
		c.texts[i] = v
		c.valid[i] = v != ""
	}
	return c
}

// NewNumericColumn builds a numeric column. NaN values are missing.
func NewNumericColumn(name string, values []float64) *Column {
	c := &Column{Name: name, Type: ColumnNumeric, numbers: make([]float64, len(values)), valid: make([]bool, len(values))}
	for i, v := range values {
		c.numbers[i] = v
		c.valid[i] = !math.IsNaN(v)
	}
	return c
}

// NewTemporalColumn builds a temporal column. Zero times are missing.
func NewTemporalColumn(name string, values []time.Time) *Column {
	c := &Column{Name: name, Type: ColumnTemporal, times: make([]time.Time, len(values)), valid: make([]bool, len(values))}
	for i, v := range values {
		c.times[i] = v
		c.valid[i] = !v.IsZero()
	}
	return c
}

// newColumn allocates an all-missing column of n rows.
func newColumn(name string, typ ColumnType, n int) *Column {
	c := &Column{Name: name, Type: typ, valid: make([]bool, n)}
	switch typ {
	case ColumnNumeric:
		c.numbers = make([]float64, n)
	case ColumnTemporal:
		c.times = make([]time.Time, n)
	default:
		c.texts = make([]string, n)
	}
	return c
}

// Len returns the number of values in the column.
func (c *Column) Len() int { return len(c.valid) }

// IsMissing reports whether row i holds the missing marker.
func (c *Column) IsMissing(i int) bool { return !c.valid[i] }

// MissingCount returns the number of missing values.
func (c *Column) MissingCount() int {
	n := 0
	for _, ok := range c.valid {
		if !ok {
			n++
		}
	}
	return n
}

// Text returns the value at row i of a text column.
func (c *Column) Text(i int) string {
	if c.Type != ColumnText || !c.valid[i] {
		return ""
	}
	return c.texts[i]
}

// Number returns the value at row i of a numeric column.
func (c *Column) Number(i int) (float64, bool) {
	if c.Type != ColumnNumeric || !c.valid[i] {
		return 0, false
	}
	return c.numbers[i], true
}

// Time returns the value at row i of a temporal column.
func (c *Column) Time(i int) (time.Time, bool) {
	if c.Type != ColumnTemporal || !c.valid[i] {
		return time.Time{}, false
	}
	return c.times[i], true
}

// Value returns the value at row i as string, float64 or time.Time, or nil if missing.
func (c *Column) Value(i int) any {
	if !c.valid[i] {
		return nil
	}
	switch c.Type {
	case ColumnNumeric:
		return c.numbers[i]
	case ColumnTemporal:
		return c.times[i]
	default:
		return c.texts[i]
	}
}

// Format renders row i for messages and exports. Missing values render as "".
func (c *Column) Format(i int) string {
	if !c.valid[i] {
		return ""
	}
	switch c.Type {
	case ColumnNumeric:
		return strconv.FormatFloat(c.numbers[i], 'f', -1, 64)
	case ColumnTemporal:
		return c.times[i].Format(TimestampLayout)
	default:
		return c.texts[i]
	}
}

// key returns a comparable encoding of row i. Missing values share one key,
// present values are length-prefixed so composite keys cannot collide.
func (c *Column) key(i int) string {
	if !c.valid[i] {
		return "-"
	}
	var k string
	switch c.Type {
	case ColumnNumeric:
		k = strconv.FormatFloat(c.numbers[i], 'g', -1, 64)
	case ColumnTemporal:
		k = c.times[i].UTC().Format(time.RFC3339Nano)
	default:
		k = c.texts[i]
	}
	return strconv.Itoa(len(k)) + ":" + k
}

// less orders two valid rows of the same column.
func (c *Column) less(i, j int) bool {
	switch c.Type {
	case ColumnNumeric:
		return c.numbers[i] < c.numbers[j]
	case ColumnTemporal:
		return c.times[i].Before(c.times[j])
	default:
		return c.texts[i] < c.texts[j]
	}
}

// set copies row src of from into row dst of c. Both columns share a type.
func (c *Column) set(dst int, from *Column, src int) {
	c.valid[dst] = from.valid[src]
	switch c.Type {
	case ColumnNumeric:
		c.numbers[dst] = from.numbers[src]
	case ColumnTemporal:
		c.times[dst] = from.times[src]
	default:
		c.texts[dst] = from.texts[src]
	}
}

// clone returns a deep copy of the column.
func (c *Column) clone() *Column {
	out := &Column{Name: c.Name, Type: c.Type, valid: append([]bool(nil), c.valid...)}
	switch c.Type {
	case ColumnNumeric:
		out.numbers = append([]float64(nil), c.numbers...)
	case ColumnTemporal:
		out.times = append([]time.Time(nil), c.times...)
	default:
		out.texts = append([]string(nil), c.texts...)
	}
	return out
}

// take returns a new column holding only the given rows, in order.
func (c *Column) take(rows []int) *Column {
	out := newColumn(c.Name, c.Type, len(rows))
	for dst, src := range rows {
		out.set(dst, c, src)
	}
	return out
}

// Table is an ordered collection of equal-length named columns.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
	version uint64
}

// NewTable assembles columns into a table. Columns must have unique names
// and equal lengths.
func NewTable(columns ...*Column) (*Table, error) {
	t := &Table{
		columns: make([]*Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
		version: versionSeq.Add(1),
	}
	for i, c := range columns {
		if c == nil {
			return nil, fmt.Errorf("column %d is nil", i)
		}
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name, c.Len(), t.rows)
		}
		t.index[c.Name] = i
		t.columns = append(t.columns, c)
	}
	return t, nil
}

// MustTable is NewTable that panics on error. Intended for tests and fixtures.
func MustTable(columns ...*Column) *Table {
	t, err := NewTable(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// RowCount returns N.
func (t *Table) RowCount() int { return t.rows }

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int { return len(t.columns) }

// IsEmpty reports whether the table has no rows or no columns.
func (t *Table) IsEmpty() bool { return t == nil || t.rows == 0 || len(t.columns) == 0 }

// Version identifies this snapshot. Every derived table gets a new version.
func (t *Table) Version() uint64 { return t.version }

// Columns returns the columns in order. The columns must not be modified.
func (t *Table) Columns() []*Column {
	return append([]*Column(nil), t.columns...)
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column by exact name.
func (t *Table) Column(name string) (*Column, bool) {
	if t == nil || name == "" {
		return nil, false
	}
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// HasColumn reports whether the table has a column with this name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// withColumn returns a new table with the named column replaced.
func (t *Table) withColumn(c *Column) *Table {
	cols := t.Columns()
	cols[t.index[c.Name]] = c
	return &Table{columns: cols, index: t.index, rows: t.rows, version: versionSeq.Add(1)}
}

// selectRows returns a new table holding only the given rows, in order.
func (t *Table) selectRows(rows []int) *Table {
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.take(rows)
	}
	return &Table{columns: cols, index: t.index, rows: len(rows), version: versionSeq.Add(1)}
}

// rowKey encodes the given columns of row i for duplicate detection.
func rowKey(cols []*Column, i int) string {
	if len(cols) == 1 {
		return cols[0].key(i)
	}
	var b strings.Builder
	for _, c := range cols {
		b.WriteString(c.key(i))
	}
	return b.String()
}

// duplicateRows returns the indexes of rows whose key on cols repeats an
// earlier row. The first occurrence is never marked.
func duplicateRows(cols []*Column, n int) []int {
	seen := make(map[string]struct{}, n)
	var dups []int
	for i := 0; i < n; i++ {
		k := rowKey(cols, i)
		if _, ok := seen[k]; ok {
			dups = append(dups, i)
			continue
		}
		seen[k] = struct{}{}
	}
	return dups
}
