// Package core provides the data quality audit engine for crash datasets.
//
// This package contains all domain logic independent of any UI or transport
// layer. It can be used by web handlers, CLI tools, or tests without
// modification.
//
// # Architecture
//
//   - Table: a columnar in-memory snapshot. Each column has one declared
//     [ColumnType] and an explicit missing marker per value.
//   - Profiler: [Profile] computes per-column missing ratios and cardinality.
//   - Checks: [CheckCompleteness], [CheckConsistency], [CheckAccuracy] and
//     [CheckTimeliness] each produce a [DimensionResult].
//   - Aggregator: [Audit] combines the checks into an [AuditReport].
//   - Insight: [SynthesizeInsight] fills a four-part narrative template.
//   - Cleaning: [CleaningEngine] applies transformations and keeps an
//     append-only log of them.
//
// # Dataset Registry
//
// Datasets are registered at init time using [Register]. Each
// [DatasetDefinition] carries the field specs used to type a CSV on load and
// the default [AuditConfig]:
//
//	core.Register(core.DatasetDefinition{
//	    Info: core.DatasetInfo{Key: "crash_reports", Label: "Crash Reports"},
//	    FieldSpecs: []core.FieldSpec{
//	        {Name: "Report Number", Type: core.ColumnText},
//	        {Name: "Crash Date/Time", Type: core.ColumnTemporal},
//	    },
//	    Rules: core.AuditConfig{PrimaryKey: "Report Number"},
//	})
//
// # Scoring
//
// The health score is the mean of the completeness, consistency and accuracy
// scores. Timeliness is reported but never scored. Cross-field consistency
// findings are reported without affecting the consistency score, and the
// accuracy score always divides by three checks.
//
// # Error Handling
//
// Operations return wrapped sentinels ([ErrMissingColumn], [ErrTypeMismatch],
// [ErrUnknownStrategy], [ErrEmptyTable]); match them with errors.Is. Audit
// functions never fail: a check whose column is absent is skipped. Technical
// errors are mapped to user-facing messages with [MapError].
package core
