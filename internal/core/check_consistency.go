package core

import "fmt"

// CheckConsistency detects duplicate primary keys and scores
// 100 - duplicate rate. A table without the primary-key column scores 100.
//
// Rows whose year field is more than one year ahead of the timestamp's year
// are reported but do not change the score.
func CheckConsistency(t *Table, cfg AuditConfig) DimensionResult {
	res := DimensionResult{Dimension: DimensionConsistency, Scored: true}
	if t.IsEmpty() {
		return res
	}

	res.Score = 100
	if pk, ok := t.Column(cfg.PrimaryKey); ok {
		dups := len(duplicateRows([]*Column{pk}, t.rows))
		res.Score = clampScore(100 - 100*float64(dups)/float64(t.rows))
		if dups > 0 {
			res.Issues = append(res.Issues, Finding{
				Message:      fmt.Sprintf("Found %s duplicate IDs based on '%s'.", formatCount(dups), pk.Name),
				Severity:     SeverityWarning,
				AffectedRows: dups,
			})
		}
	}

	if f, ok := yearAheadOfTimestamp(t, cfg); ok {
		res.Issues = append(res.Issues, f)
	}
	return res
}

// yearAheadOfTimestamp reports rows where the year field exceeds the event
// year + 1. ok is false when there is nothing to report.
func yearAheadOfTimestamp(t *Table, cfg AuditConfig) (Finding, bool) {
	tsCol, ok := t.Column(cfg.TimestampField)
	if !ok {
		return Finding{}, false
	}
	yearCol, ok := t.Column(cfg.YearField)
	if !ok {
		return Finding{}, false
	}

	times, timesValid, ok := temporalView(tsCol)
	if !ok {
		return skipped(tsCol, "temporal"), true
	}
	years, yearsValid, ok := numericView(yearCol)
	if !ok {
		return skipped(yearCol, "numeric"), true
	}

	n := 0
	for i := 0; i < t.rows; i++ {
		if timesValid[i] && yearsValid[i] && years[i] > float64(times[i].Year()+1) {
			n++
		}
	}
	if n == 0 {
		return Finding{}, false
	}
	return Finding{
		Message:      fmt.Sprintf("Found %s rows where '%s' is ahead of '%s'.", formatCount(n), yearCol.Name, tsCol.Name),
		Severity:     SeverityWarning,
		AffectedRows: n,
	}, true
}

// skipped records a check that could not run because c has the wrong type.
func skipped(c *Column, want string) Finding {
	return Finding{
		Message:  fmt.Sprintf("Column '%s' is not %s; check skipped.", c.Name, want),
		Severity: SeverityInfo,
	}
}
