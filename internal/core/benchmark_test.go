package core

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"
)

// ============================================================================
// Conversion Benchmarks
// ============================================================================

// BenchmarkParseNumeric benchmarks numeric cell parsing, the hot path when
// loading numeric columns.
func BenchmarkParseNumeric(b *testing.B) {
	testCases := []string{
		"123",
		"-456.78",
		"$1,234.56",
		"(123.45)",
		"1,234,567.89",
		"  999.99  ",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			ParseNumeric(tc)
		}
	}
}

// BenchmarkParseTimestamp benchmarks timestamp parsing across layouts.
func BenchmarkParseTimestamp(b *testing.B) {
	testCases := []string{
		"05/01/2023 03:30:00 PM",
		"2023-05-01 15:30:00",
		"2024-01-15",
		"Jan 15, 2024",
		"1/5/24",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			ParseTimestamp(tc)
		}
	}
}

// ============================================================================
// Audit Benchmarks
// ============================================================================

func benchmarkTable(rows int) *Table {
	ids := make([]string, rows)
	agencies := make([]string, rows)
	dates := make([]time.Time, rows)
	speeds := make([]float64, rows)
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < rows; i++ {
		ids[i] = fmt.Sprintf("R%07d", i%(rows-rows/50))
		agencies[i] = []string{"Montgomery County Police", "Rockville Police", "Gaithersburg Police"}[i%3]
		dates[i] = base.Add(time.Duration(i) * time.Minute)
		speeds[i] = float64(25 + i%40)
		if i%20 == 0 {
			speeds[i] = math.NaN()
		}
	}
	return MustTable(
		NewTextColumn("Report Number", ids),
		NewTextColumn("Agency Name", agencies),
		NewTemporalColumn("Crash Date/Time", dates),
		NewNumericColumn("Speed Limit", speeds),
	)
}

func BenchmarkAudit_10k(b *testing.B) {
	t := benchmarkTable(10000)
	cfg := AuditConfig{
		KeyFields:         []string{"Report Number", "Agency Name", "Crash Date/Time"},
		PrimaryKey:        "Report Number",
		TimestampField:    "Crash Date/Time",
		NonNegativeFields: []string{"Speed Limit"},
	}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		AuditAt(t, cfg, now)
	}
}

func BenchmarkReadCSV_10k(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("Report Number,Agency Name,Crash Date/Time,Speed Limit\n")
	for i := 0; i < 10000; i++ {
		fmt.Fprintf(&sb, "R%07d,Rockville Police,05/01/2023 03:30:00 PM,%d\n", i, 25+i%40)
	}
	data := sb.String()
	specs := []FieldSpec{{Name: "Crash Date/Time", Type: ColumnTemporal}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ReadCSV(strings.NewReader(data), specs); err != nil {
			b.Fatal(err)
		}
	}
}
