package core

import (
	"fmt"
	"time"
)

// accuracyChecks is the fixed divisor of the accuracy score. It does not
// shrink when a configured field is absent.
const accuracyChecks = 3

// CheckAccuracy counts logically invalid values as of now:
//   - timestamps after now
//   - year values beyond now's year + 1
//   - negative values in each non-negative field
//
// Score = max(0, 100 * (1 - issues / (N * 3))).
//
// Timestamps hold wall-clock time (see ParseTimestamp), so now is compared
// by its own wall clock in its location.
//
// Coordinate and range plausibility findings are appended after the scored
// ones and never affect the score.
func CheckAccuracy(t *Table, cfg AuditConfig, now time.Time) DimensionResult {
	res := DimensionResult{Dimension: DimensionAccuracy, Scored: true}
	if t.IsEmpty() {
		return res
	}
	now = WallClock(now)

	total := 0
	record := func(f Finding) {
		res.Issues = append(res.Issues, f)
		if f.Severity != SeverityInfo {
			total += f.AffectedRows
		}
	}

	if c, ok := t.Column(cfg.TimestampField); ok {
		if f, hit := futureTimestamps(c, now); hit {
			record(f)
		}
	}
	if c, ok := t.Column(cfg.YearField); ok {
		if f, hit := yearsBeyond(c, now.Year()+1); hit {
			record(f)
		}
	}
	for _, name := range cfg.NonNegativeFields {
		if c, ok := t.Column(name); ok {
			if f, hit := negativeValues(c); hit {
				record(f)
			}
		}
	}

	res.Score = clampScore(100 * (1 - float64(total)/float64(t.rows*accuracyChecks)))
	res.Issues = append(res.Issues, plausibility(t, cfg)...)
	return res
}

func futureTimestamps(c *Column, now time.Time) (Finding, bool) {
	times, valid, ok := temporalView(c)
	if !ok {
		return skipped(c, "temporal"), true
	}
	n := 0
	for i, ts := range times {
		if valid[i] && ts.After(now) {
			n++
		}
	}
	if n == 0 {
		return Finding{}, false
	}
	return Finding{
		Message:      fmt.Sprintf("Detected %s records dated in the future ('%s').", formatCount(n), c.Name),
		Severity:     SeverityWarning,
		AffectedRows: n,
	}, true
}

func yearsBeyond(c *Column, limit int) (Finding, bool) {
	n, ok := countNumeric(c, func(v float64) bool { return v > float64(limit) })
	if !ok {
		return skipped(c, "numeric"), true
	}
	if n == 0 {
		return Finding{}, false
	}
	return Finding{
		Message:      fmt.Sprintf("Detected %s records with '%s' beyond %d.", formatCount(n), c.Name, limit),
		Severity:     SeverityWarning,
		AffectedRows: n,
	}, true
}

func negativeValues(c *Column) (Finding, bool) {
	n, ok := countNumeric(c, func(v float64) bool { return v < 0 })
	if !ok {
		return skipped(c, "numeric"), true
	}
	if n == 0 {
		return Finding{}, false
	}
	return Finding{
		Message:      fmt.Sprintf("Detected %s negative values in '%s'.", formatCount(n), c.Name),
		Severity:     SeverityWarning,
		AffectedRows: n,
	}, true
}

// plausibility runs the unscored coordinate and range checks.
func plausibility(t *Table, cfg AuditConfig) []Finding {
	var out []Finding

	lat, hasLat := t.Column(cfg.LatitudeField)
	lon, hasLon := t.Column(cfg.LongitudeField)
	if hasLat && hasLon {
		latV, latOK, ok1 := numericView(lat)
		lonV, lonOK, ok2 := numericView(lon)
		switch {
		case !ok1:
			out = append(out, skipped(lat, "numeric"))
		case !ok2:
			out = append(out, skipped(lon, "numeric"))
		default:
			n := 0
			for i := 0; i < t.rows; i++ {
				badLat := latOK[i] && (latV[i] < -90 || latV[i] > 90)
				badLon := lonOK[i] && (lonV[i] < -180 || lonV[i] > 180)
				if badLat || badLon {
					n++
				}
			}
			if n > 0 {
				out = append(out, Finding{
					Message:      fmt.Sprintf("Found %s rows with invalid GPS coordinates.", formatCount(n)),
					Severity:     SeverityWarning,
					AffectedRows: n,
				})
			}
		}
	}

	for _, r := range cfg.Ranges {
		c, ok := t.Column(r.Field)
		if !ok {
			continue
		}
		n, ok := countNumeric(c, func(v float64) bool { return v < r.Min || v > r.Max })
		if !ok {
			out = append(out, skipped(c, "numeric"))
			continue
		}
		if n > 0 {
			out = append(out, Finding{
				Message: fmt.Sprintf("Found %s rows with suspicious '%s' values (outside [%g, %g]).",
					formatCount(n), c.Name, r.Min, r.Max),
				Severity:     SeverityWarning,
				AffectedRows: n,
			})
		}
	}
	return out
}

// countNumeric counts non-missing values of c matching pred. ok is false when
// c cannot be read as numbers.
func countNumeric(c *Column, pred func(float64) bool) (int, bool) {
	values, valid, ok := numericView(c)
	if !ok {
		return 0, false
	}
	n := 0
	for i, v := range values {
		if valid[i] && pred(v) {
			n++
		}
	}
	return n, true
}
