package core

import "time"

// ColumnType is the single declared type of every value in a column.
type ColumnType int

const (
	ColumnText ColumnType = iota
	ColumnNumeric
	ColumnTemporal
)

// String returns the label used in column stats and data dictionaries.
func (t ColumnType) String() string {
	switch t {
	case ColumnNumeric:
		return "numeric"
	case ColumnTemporal:
		return "temporal"
	default:
		return "text"
	}
}

// FieldSpec declares how a CSV column is typed when loaded.
type FieldSpec struct {
	Name       string              // Column header name (matched case-insensitively)
	Type       ColumnType          // Declared type
	Normalizer func(string) string // Optional transformation applied to raw text before parsing
}

// Dimension is one of the four audit axes.
type Dimension string

const (
	DimensionCompleteness Dimension = "completeness"
	DimensionConsistency  Dimension = "consistency"
	DimensionAccuracy     Dimension = "accuracy"
	DimensionTimeliness   Dimension = "timeliness"
)

// Severity ranks a finding.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// ColumnStatus classifies a column by its missing-value rate.
type ColumnStatus string

const (
	StatusValid    ColumnStatus = "Valid"
	StatusWarning  ColumnStatus = "Warning"
	StatusCritical ColumnStatus = "Critical"
)

// Finding is a single reported data-quality issue.
type Finding struct {
	Message      string   `json:"message"`
	Severity     Severity `json:"severity"`
	AffectedRows int      `json:"affectedRows"`
}

// DimensionResult is the outcome of one dimension check. Unscored dimensions
// (timeliness) leave Score at 0 and Scored false.
type DimensionResult struct {
	Dimension Dimension `json:"dimension"`
	Score     float64   `json:"score"`
	Scored    bool      `json:"scored"`
	Issues    []Finding `json:"issues"`
}

// ColumnProfile holds per-column statistics for the current table state.
type ColumnProfile struct {
	Name          string     `json:"name"`
	Type          ColumnType `json:"-"`
	TypeLabel     string     `json:"type"`
	MissingCount  int        `json:"missingCount"`
	MissingRatio  float64    `json:"missingRatio"`
	DistinctCount int        `json:"distinctCount"`
}

// ColumnStat is one row of the audit report's column table.
type ColumnStat struct {
	Column       string       `json:"column"`
	Type         string       `json:"type"`
	MissingPct   float64      `json:"missingPct"`
	MissingLabel string       `json:"missingLabel"` // e.g. "5.00%"
	UniqueCount  int          `json:"uniqueCount"`
	Status       ColumnStatus `json:"status"`
}

// TimelinessReport describes the temporal coverage of the primary timestamp column.
type TimelinessReport struct {
	Column    string     `json:"column"`
	Available bool       `json:"available"`
	Earliest  *time.Time `json:"earliest,omitempty"`
	Latest    *time.Time `json:"latest,omitempty"`
	SpanDays  int        `json:"spanDays"`
	Message   string     `json:"message,omitempty"`
}

// AuditReport is produced fresh on every audit call and never persisted.
type AuditReport struct {
	HealthScore      float64               `json:"healthScore"`
	DimensionScores  map[Dimension]float64 `json:"dimensionScores"`
	Dimensions       []DimensionResult     `json:"dimensions"`
	ColumnStats      []ColumnStat          `json:"columnStats"`
	Summary          []string              `json:"summary"`
	LatestTimestamp  *time.Time            `json:"latestTimestamp,omitempty"`
	Timeliness       TimelinessReport      `json:"timeliness"`
	CellCompleteness float64               `json:"cellCompleteness"`
	RowCount         int                   `json:"rowCount"`
	ColumnCount      int                   `json:"columnCount"`
	TableVersion     uint64                `json:"tableVersion"`
	GeneratedAt      time.Time             `json:"generatedAt"`
}

// LatestTimestampLabel formats the latest timestamp to second precision,
// or "N/A" when the table has no usable timestamp.
func (r *AuditReport) LatestTimestampLabel() string {
	if r == nil || r.LatestTimestamp == nil {
		return NotAvailable
	}
	return r.LatestTimestamp.Format(TimestampLayout)
}

// Dimension returns the result for d, if the report contains it.
func (r *AuditReport) Dimension(d Dimension) (DimensionResult, bool) {
	for _, res := range r.Dimensions {
		if res.Dimension == d {
			return res, true
		}
	}
	return DimensionResult{}, false
}

// ImputeStrategy selects how missing values are filled.
type ImputeStrategy string

const (
	ImputeMean     ImputeStrategy = "Mean"
	ImputeMedian   ImputeStrategy = "Median"
	ImputeMode     ImputeStrategy = "Mode"
	ImputeDropRows ImputeStrategy = "Drop"
)

// ParseImputeStrategy accepts the strategy names case-insensitively.
func ParseImputeStrategy(s string) (ImputeStrategy, error) {
	switch normalizeKey(s) {
	case "mean":
		return ImputeMean, nil
	case "median":
		return ImputeMedian, nil
	case "mode":
		return ImputeMode, nil
	case "drop", "droprows", "drop_rows":
		return ImputeDropRows, nil
	}
	return "", unknownStrategy(s)
}

// TransformationLogEntry records one applied cleaning operation.
type TransformationLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Operation string    `json:"operation"`
	Impact    string    `json:"impact"`
}

// Snapshot holds before/after metrics for a cleaning step.
type Snapshot struct {
	RowCount      int `json:"rowCount"`
	MissingCells  int `json:"missingCells"`
	DuplicateRows int `json:"duplicateRows"`
}

// DictionaryEntry is one row of a data dictionary.
type DictionaryEntry struct {
	Column       string `json:"column"`
	Type         string `json:"type"`
	NonNullCount int    `json:"nonNullCount"`
	SampleValue  string `json:"sampleValue"`
}
