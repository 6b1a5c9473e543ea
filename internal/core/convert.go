package core

// convert.go parses raw cell text into typed column values.
//
// These functions handle the messy reality of exported crash data:
//   - Multiple timestamp formats (US 12-hour, ISO, date-only)
//   - Thousands separators and accounting-style negatives in numbers
//   - Excel formula prefixes (="value") and stray quotes
//
// Parse* functions report ok=false for empty or unparsable input; callers
// store that as the missing marker.

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// TimestampLayout formats timestamps to second precision in reports.
const TimestampLayout = "2006-01-02 15:04:05"

// NotAvailable is the placeholder for values that cannot be computed.
const NotAvailable = "N/A"

// numericRegex validates that a string is a valid numeric format after cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would land more than this many years in the future are
// assumed to be in the previous century.
var TwoDigitYearPivot = 20

// currencyReplacer strips currency symbols and thousands separators.
var currencyReplacer = strings.NewReplacer("$", "", "\u20ac", "", "\u00a3", "", ",", "")

var (
	dateTimeLayouts = []string{
		"01/02/2006 03:04:05 PM", "1/2/2006 3:04:05 PM", "01/02/2006 03:04 PM", "1/2/2006 3:04 PM",
		"01/02/2006 15:04:05", "1/2/2006 15:04:05", "01/02/2006 15:04", "1/2/2006 15:04",
		"2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02 15:04",
		"2006/01/02 15:04:05",
	}
	zonedLayouts = []string{time.RFC3339Nano, time.RFC3339}
	fourDigitYearLayouts = []string{
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"2006-01-02", "2006/01/02", "2006.01.02",
		"Jan 2, 2006", "2 Jan 2006",
		"20060102",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
)

// WallClock returns t's wall-clock reading labelled UTC.
func WallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// CleanCell removes common CSV artifacts from a cell value:
// surrounding whitespace, an Excel formula prefix (="...") and surrounding quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}

// ParseNumeric converts a cell to float64.
// Handles thousands separators, currency symbols and accounting format
// (parentheses for negative).
func ParseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = currencyReplacer.Replace(s)
	s = strings.TrimSpace(s)
	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return 0, false
	}

	var n pgtype.Numeric
	if err := n.Scan(s); err == nil {
		if f, err := n.Float64Value(); err == nil && f.Valid {
			return f.Float64, true
		}
	}

	// pgtype.Numeric does not accept exponents; the regex already vetted s.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseTimestamp converts a cell to a wall-clock time.Time in UTC.
// Values without a zone are taken as written; values with a zone are
// converted to the local wall clock first, so every timestamp compares
// against WallClock(time.Now()).
// Supports timestamps with and without a time part and 2-digit years with pivot.
func ParseTimestamp(s string) (time.Time, bool) {
	return parseTimestampIn(s, time.Local)
}

func parseTimestampIn(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return WallClock(t.In(loc)), true
		}
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// numericView returns the values of c as numbers. Text columns are parsed
// cell by cell; temporal columns are not numeric and return ok=false.
func numericView(c *Column) (values []float64, valid []bool, ok bool) {
	switch c.Type {
	case ColumnNumeric:
		return c.numbers, c.valid, true
	case ColumnText:
		values = make([]float64, c.Len())
		valid = make([]bool, c.Len())
		for i := range values {
			if c.valid[i] {
				values[i], valid[i] = ParseNumeric(c.texts[i])
			}
		}
		return values, valid, true
	}
	return nil, nil, false
}

// temporalView returns the values of c as timestamps. Text columns are parsed
// cell by cell; numeric columns return ok=false.
func temporalView(c *Column) (values []time.Time, valid []bool, ok bool) {
	switch c.Type {
	case ColumnTemporal:
		return c.times, c.valid, true
	case ColumnText:
		values = make([]time.Time, c.Len())
		valid = make([]bool, c.Len())
		for i := range values {
			if c.valid[i] {
				values[i], valid[i] = ParseTimestamp(c.texts[i])
			}
		}
		return values, valid, true
	}
	return nil, nil, false
}

// normalizeKey lowercases and trims a lookup key.
func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
