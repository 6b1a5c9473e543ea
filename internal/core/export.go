package core

import (
	"encoding/csv"
	"io"
)

// WriteCSV writes t with a header row. Missing values are written as empty
// fields and timestamps use TimestampLayout.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.ColumnNames()); err != nil {
		return err
	}
	cols := t.Columns()
	record := make([]string, len(cols))
	for i := 0; i < t.RowCount(); i++ {
		for j, c := range cols {
			record[j] = c.Format(i)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
