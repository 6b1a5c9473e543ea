package core

import (
	"fmt"
	"slices"
)

const (
	// KeyFieldMissingThreshold is the missing percentage above which a key field is Critical.
	KeyFieldMissingThreshold = 1.0
	// ColumnMissingThreshold is the missing percentage above which any other column is a Warning.
	ColumnMissingThreshold = 10.0
)

// CheckCompleteness scores missing values per column and classifies each
// column's status. The score is the mean of (100 - missing%) over all columns;
// a table with no columns scores 0.
func CheckCompleteness(t *Table, cfg AuditConfig) (DimensionResult, []ColumnStat) {
	return completeness(Profile(t), cfg)
}

func completeness(profiles []ColumnProfile, cfg AuditConfig) (DimensionResult, []ColumnStat) {
	res := DimensionResult{Dimension: DimensionCompleteness, Scored: true}
	if len(profiles) == 0 {
		return res, nil
	}

	stats := make([]ColumnStat, 0, len(profiles))
	var sum float64
	for _, p := range profiles {
		pct := 100 * p.MissingRatio
		status := StatusValid
		switch {
		case slices.Contains(cfg.KeyFields, p.Name) && pct > KeyFieldMissingThreshold:
			status = StatusCritical
			res.Issues = append(res.Issues, Finding{
				Message:      fmt.Sprintf("Key field '%s' exceeds 1%% missing threshold (%.2f%%).", p.Name, pct),
				Severity:     SeverityCritical,
				AffectedRows: p.MissingCount,
			})
		case pct > ColumnMissingThreshold:
			status = StatusWarning
		}

		stats = append(stats, ColumnStat{
			Column:       p.Name,
			Type:         p.TypeLabel,
			MissingPct:   pct,
			MissingLabel: fmt.Sprintf("%.2f%%", pct),
			UniqueCount:  p.DistinctCount,
			Status:       status,
		})
		sum += 100 - pct
	}

	res.Score = clampScore(sum / float64(len(profiles)))
	return res, stats
}

// clampScore bounds s to [0,100].
func clampScore(s float64) float64 {
	return max(0, min(100, s))
}
