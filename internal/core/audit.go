package core

import (
	"time"
)

// AuditConfig names the columns each check reads. Every field is optional:
// a check whose column is absent is skipped.
type AuditConfig struct {
	KeyFields         []string    `yaml:"key_fields" json:"keyFields"`
	PrimaryKey        string      `yaml:"primary_key" json:"primaryKey"`
	TimestampField    string      `yaml:"timestamp_field" json:"timestampField"`
	YearField         string      `yaml:"year_field" json:"yearField"`
	NonNegativeFields []string    `yaml:"non_negative_fields" json:"nonNegativeFields"`
	CategoryField     string      `yaml:"category_field" json:"categoryField"`
	RecencyField      string      `yaml:"recency_field" json:"recencyField"`
	LatitudeField     string      `yaml:"latitude_field" json:"latitudeField"`
	LongitudeField    string      `yaml:"longitude_field" json:"longitudeField"`
	Ranges            []RangeRule `yaml:"ranges" json:"ranges"`
}

// RangeRule bounds a numeric field to a plausible [Min, Max] range.
type RangeRule struct {
	Field string  `yaml:"field" json:"field"`
	Min   float64 `yaml:"min" json:"min"`
	Max   float64 `yaml:"max" json:"max"`
}

// EmptyTableSummary is the only summary line of an audit over an empty table.
const EmptyTableSummary = "No rows available to audit."

// Audit runs every check against t using the current wall clock.
func Audit(t *Table, cfg AuditConfig) *AuditReport {
	return AuditAt(t, cfg, time.Now())
}

// AuditAt runs every check against t as of now and combines the results.
// The health score is the mean of completeness, consistency and accuracy;
// timeliness is reported but not scored.
//
// An empty table yields zero scores, no column stats and no latest timestamp.
func AuditAt(t *Table, cfg AuditConfig, now time.Time) *AuditReport {
	report := &AuditReport{
		DimensionScores: make(map[Dimension]float64, 3),
		ColumnStats:     []ColumnStat{},
		Summary:         []string{},
		GeneratedAt:     now,
	}
	if t != nil {
		report.RowCount = t.RowCount()
		report.ColumnCount = t.ColumnCount()
		report.TableVersion = t.Version()
	}

	if t.IsEmpty() {
		for _, d := range []Dimension{DimensionCompleteness, DimensionConsistency, DimensionAccuracy} {
			report.DimensionScores[d] = 0
			report.Dimensions = append(report.Dimensions, DimensionResult{Dimension: d, Scored: true})
		}
		report.Dimensions = append(report.Dimensions, DimensionResult{Dimension: DimensionTimeliness})
		report.Timeliness = TimelinessReport{Column: cfg.TimestampField, Message: EmptyTableSummary}
		report.Summary = append(report.Summary, EmptyTableSummary)
		return report
	}

	comp, stats := completeness(Profile(t), cfg)
	cons := CheckConsistency(t, cfg)
	acc := CheckAccuracy(t, cfg, now)
	timely, coverage := CheckTimeliness(t, cfg)

	report.Dimensions = []DimensionResult{comp, cons, acc, timely}
	report.ColumnStats = stats
	report.Timeliness = coverage
	report.LatestTimestamp = coverage.Latest
	report.CellCompleteness = CellCompleteness(t)

	var sum float64
	for _, d := range report.Dimensions {
		if !d.Scored {
			continue
		}
		report.DimensionScores[d.Dimension] = d.Score
		sum += d.Score
		for _, f := range d.Issues {
			if f.Severity != SeverityInfo {
				report.Summary = append(report.Summary, f.Message)
			}
		}
	}
	report.HealthScore = clampScore(sum / float64(len(report.DimensionScores)))
	return report
}
