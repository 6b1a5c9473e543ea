package core

import (
	"fmt"
	"math"
	"time"
)

// CheckTimeliness reports the coverage of the timestamp field: earliest and
// latest values and the whole-day span between them. It is never scored.
func CheckTimeliness(t *Table, cfg AuditConfig) (DimensionResult, TimelinessReport) {
	res := DimensionResult{Dimension: DimensionTimeliness}
	rep := TimelinessReport{Column: cfg.TimestampField}

	c, ok := t.Column(cfg.TimestampField)
	if !ok {
		rep.Message = fmt.Sprintf("%s column not found.", displayName(cfg.TimestampField))
		return res, rep
	}
	times, valid, ok := temporalView(c)
	if !ok {
		f := skipped(c, "temporal")
		res.Issues = append(res.Issues, f)
		rep.Message = f.Message
		return res, rep
	}

	var earliest, latest time.Time
	found := false
	for i, ts := range times {
		if !valid[i] {
			continue
		}
		if !found || ts.Before(earliest) {
			earliest = ts
		}
		if !found || ts.After(latest) {
			latest = ts
		}
		found = true
	}
	if !found {
		rep.Message = fmt.Sprintf("Column '%s' has no valid timestamps.", c.Name)
		return res, rep
	}

	rep.Available = true
	rep.Earliest = &earliest
	rep.Latest = &latest
	rep.SpanDays = int(math.Floor(latest.Sub(earliest).Hours() / 24))
	res.Issues = append(res.Issues, Finding{
		Message: fmt.Sprintf("Data spans %s days; latest record at %s.",
			formatCount(rep.SpanDays), latest.Format(TimestampLayout)),
		Severity: SeverityInfo,
	})
	return res, rep
}

func displayName(name string) string {
	if name == "" {
		return "Timestamp"
	}
	return name
}
