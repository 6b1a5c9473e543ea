package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the audit engine. Wrapped errors carry the column name;
// match them with errors.Is.
var (
	// ErrEmptyTable marks an operation that has no rows to work with.
	// Audit and insight functions degrade gracefully instead of returning it.
	ErrEmptyTable = errors.New("empty table")

	// ErrMissingColumn is returned when a named column is absent from the table.
	ErrMissingColumn = errors.New("column not found")

	// ErrTypeMismatch is returned when a numeric or temporal operation is
	// requested on a column of another declared type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrUnknownStrategy is returned for an unrecognized imputation strategy.
	ErrUnknownStrategy = errors.New("unknown imputation strategy")
)

// ParseFailure counts values in one column that could not be parsed and were
// replaced by the missing marker. It is reported, never raised.
type ParseFailure struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}

func missingColumn(name string) error {
	return fmt.Errorf("%w: %q", ErrMissingColumn, name)
}

func typeMismatch(name string, got ColumnType, want string) error {
	return fmt.Errorf("%w: column %q is %s, %s required", ErrTypeMismatch, name, got, want)
}

func unknownStrategy(s string) error {
	return fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}
