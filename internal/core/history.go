package core

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// CleaningEngine owns one working table and its append-only transformation
// log. Every successful operation replaces the table with a new version and
// appends exactly one log entry; a failed operation changes neither.
//
// A CleaningEngine is not safe for concurrent use. Callers that share one
// across goroutines must serialize access to the engine as a whole.
type CleaningEngine struct {
	table   *Table
	history []TransformationLogEntry
	now     func() time.Time
	logger  *slog.Logger
}

// EngineOption configures a CleaningEngine.
type EngineOption func(*CleaningEngine)

// WithClock sets the clock used to timestamp log entries.
func WithClock(now func() time.Time) EngineOption {
	return func(e *CleaningEngine) { e.now = now }
}

// WithLogger sets the logger that records each applied operation.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *CleaningEngine) { e.logger = l }
}

// NewCleaningEngine starts a session over t with an empty log.
func NewCleaningEngine(t *Table, opts ...EngineOption) *CleaningEngine {
	e := &CleaningEngine{
		table:  t,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Table returns the current table snapshot.
func (e *CleaningEngine) Table() *Table { return e.table }

// History returns a copy of the transformation log, oldest first.
func (e *CleaningEngine) History() []TransformationLogEntry {
	return append([]TransformationLogEntry(nil), e.history...)
}

// Impute fills or drops missing values of column.
func (e *CleaningEngine) Impute(column string, strategy ImputeStrategy) (*Table, string, error) {
	return e.apply(fmt.Sprintf("Impute '%s' (%s)", column, strategy), column, func(t *Table) (*Table, string, error) {
		return Impute(t, column, strategy)
	})
}

// DropDuplicates removes duplicate rows on subset, or on full rows.
func (e *CleaningEngine) DropDuplicates(subset ...string) (*Table, string, error) {
	op := "Drop Duplicates"
	if len(subset) > 0 {
		op += fmt.Sprintf(" on [%s]", strings.Join(subset, ", "))
	}
	return e.apply(op, strings.Join(subset, ","), func(t *Table) (*Table, string, error) {
		return DropDuplicates(t, subset...)
	})
}

// StandardizeTemporal parses column into timestamps.
func (e *CleaningEngine) StandardizeTemporal(column string) (*Table, string, error) {
	return e.apply(fmt.Sprintf("Standardize '%s' to datetime", column), column, func(t *Table) (*Table, string, error) {
		return StandardizeTemporal(t, column)
	})
}

// DropMissing removes rows with missing values in columns, or in any column.
func (e *CleaningEngine) DropMissing(columns ...string) (*Table, string, error) {
	target := "all columns"
	if len(columns) > 0 {
		target = strings.Join(columns, ", ")
	}
	return e.apply("Drop Nulls in "+target, strings.Join(columns, ","), func(t *Table) (*Table, string, error) {
		return DropMissing(t, columns...)
	})
}

// FillMissing replaces missing values of column with value.
func (e *CleaningEngine) FillMissing(column, value string) (*Table, string, error) {
	return e.apply("Fill Nulls in "+column, column, func(t *Table) (*Table, string, error) {
		return FillMissing(t, column, value)
	})
}

// FilterMinYear keeps rows whose year in column is at least minYear.
func (e *CleaningEngine) FilterMinYear(column string, minYear int) (*Table, string, error) {
	return e.apply(fmt.Sprintf("Filter %s >= %d", column, minYear), column, func(t *Table) (*Table, string, error) {
		return FilterMinYear(t, column, minYear)
	})
}

// apply runs fn against the current table and, on success, commits the new
// table and appends one log entry.
func (e *CleaningEngine) apply(operation, column string, fn func(*Table) (*Table, string, error)) (*Table, string, error) {
	if e.table == nil {
		return nil, "", ErrEmptyTable
	}

	before := e.table.RowCount()
	next, impact, err := fn(e.table)
	if err != nil {
		e.logger.Warn("cleaning operation failed",
			"operation", operation,
			"column", column,
			"error", err,
		)
		return nil, "", err
	}

	e.table = next
	e.history = append(e.history, TransformationLogEntry{
		Timestamp: e.now(),
		Operation: operation,
		Impact:    impact,
	})

	e.logger.Info("cleaning operation applied",
		"operation", operation,
		"column", column,
		"rows_before", before,
		"rows_after", next.RowCount(),
		"version", next.Version(),
	)
	return next, impact, nil
}
