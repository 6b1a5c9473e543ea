package core

// Profile returns one ColumnProfile per column, in column order.
// An empty table reports every column as fully missing.
func Profile(t *Table) []ColumnProfile {
	if t == nil {
		return nil
	}

	out := make([]ColumnProfile, 0, t.ColumnCount())
	for _, c := range t.columns {
		missing := c.MissingCount()
		ratio := 1.0
		if t.rows > 0 {
			ratio = float64(missing) / float64(t.rows)
		}
		out = append(out, ColumnProfile{
			Name:          c.Name,
			Type:          c.Type,
			TypeLabel:     c.Type.String(),
			MissingCount:  missing,
			MissingRatio:  ratio,
			DistinctCount: distinctCount(c),
		})
	}
	return out
}

// distinctCount counts distinct non-missing values.
func distinctCount(c *Column) int {
	seen := make(map[string]struct{})
	for i := 0; i < c.Len(); i++ {
		if c.valid[i] {
			seen[c.key(i)] = struct{}{}
		}
	}
	return len(seen)
}

// CellCompleteness returns the share of non-missing cells in [0,1].
// An empty table returns 0.
func CellCompleteness(t *Table) float64 {
	if t.IsEmpty() {
		return 0
	}
	total := t.rows * len(t.columns)
	return float64(total-missingCells(t)) / float64(total)
}

func missingCells(t *Table) int {
	n := 0
	for _, c := range t.columns {
		n += c.MissingCount()
	}
	return n
}

// TakeSnapshot captures row, missing-cell and full-row duplicate counts.
func TakeSnapshot(t *Table) Snapshot {
	if t == nil {
		return Snapshot{}
	}
	return Snapshot{
		RowCount:      t.rows,
		MissingCells:  missingCells(t),
		DuplicateRows: len(duplicateRows(t.columns, t.rows)),
	}
}

// DataDictionary describes each column with its type, non-missing count and
// the first non-missing value as a sample.
func DataDictionary(t *Table) []DictionaryEntry {
	if t == nil {
		return nil
	}

	out := make([]DictionaryEntry, 0, len(t.columns))
	for _, c := range t.columns {
		entry := DictionaryEntry{
			Column:       c.Name,
			Type:         c.Type.String(),
			NonNullCount: c.Len() - c.MissingCount(),
			SampleValue:  NotAvailable,
		}
		for i := 0; i < c.Len(); i++ {
			if c.valid[i] {
				entry.SampleValue = c.Format(i)
				break
			}
		}
		out = append(out, entry)
	}
	return out
}
