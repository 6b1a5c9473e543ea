package core

import (
	"math"
	"strings"
	"testing"
	"time"
)

func TestNewTable(t *testing.T) {
	tests := []struct {
		name    string
		columns []*Column
		wantErr string
	}{
		{
			name:    "valid",
			columns: []*Column{NewTextColumn("A", []string{"x"}), NewNumericColumn("B", []float64{1})},
		},
		{
			name:    "duplicate names",
			columns: []*Column{NewTextColumn("A", []string{"x"}), NewTextColumn("A", []string{"y"})},
			wantErr: "duplicate column",
		},
		{
			name:    "length mismatch",
			columns: []*Column{NewTextColumn("A", []string{"x"}), NewNumericColumn("B", []float64{1, 2})},
			wantErr: "has 2 rows, expected 1",
		},
		{
			name:    "nil column",
			columns: []*Column{nil},
			wantErr: "is nil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.columns...)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("NewTable() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("NewTable() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestColumn_MissingMarkers(t *testing.T) {
	text := NewTextColumn("A", []string{"x", "  ", ""})
	num := NewNumericColumn("B", []float64{1, math.NaN(), 0})
	ts := NewTemporalColumn("C", []time.Time{{}, time.Now(), {}})

	if got := text.MissingCount(); got != 2 {
		t.Errorf("text MissingCount() = %d, want 2", got)
	}
	if got := num.MissingCount(); got != 1 {
		t.Errorf("numeric MissingCount() = %d, want 1", got)
	}
	if got := ts.MissingCount(); got != 2 {
		t.Errorf("temporal MissingCount() = %d, want 2", got)
	}
	if v := num.Value(1); v != nil {
		t.Errorf("Value(missing) = %v, want nil", v)
	}
	if v, ok := num.Number(2); !ok || v != 0 {
		t.Errorf("Number(2) = %v, %v, want 0, true", v, ok)
	}
}

func TestTable_VersionsAreUnique(t *testing.T) {
	tbl := MustTable(NewNumericColumn("A", []float64{1, math.NaN()}))
	next, _, err := Impute(tbl, "A", ImputeMean)
	if err != nil {
		t.Fatal(err)
	}
	if next.Version() == tbl.Version() {
		t.Errorf("Version() unchanged after Impute: %d", next.Version())
	}

	orig, _ := tbl.Column("A")
	if !orig.IsMissing(1) {
		t.Error("Impute modified the source table")
	}
}
