package core

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestEngine(t *testing.T, tbl *Table) *CleaningEngine {
	t.Helper()
	clock := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	return NewCleaningEngine(tbl,
		WithClock(func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func TestCleaningEngine_History(t *testing.T) {
	tbl := MustTable(
		NewTextColumn("Report Number", []string{"A", "A", "B", "C"}),
		NewNumericColumn("Speed Limit", []float64{25, 25, math.NaN(), 40}),
		NewTextColumn("Crash Date/Time", []string{"2024-01-01", "2024-01-01", "bad", "2024-01-03"}),
	)
	e := newTestEngine(t, tbl)

	if _, _, err := e.DropDuplicates(); err != nil {
		t.Fatal(err)
	}
	if _, _, err := e.Impute("Speed Limit", ImputeMedian); err != nil {
		t.Fatal(err)
	}
	if _, _, err := e.StandardizeTemporal("Crash Date/Time"); err != nil {
		t.Fatal(err)
	}

	want := []TransformationLogEntry{
		{
			Timestamp: time.Date(2024, 6, 1, 9, 1, 0, 0, time.UTC),
			Operation: "Drop Duplicates",
			Impact:    "Removed 1 duplicate rows",
		},
		{
			Timestamp: time.Date(2024, 6, 1, 9, 2, 0, 0, time.UTC),
			Operation: "Impute 'Speed Limit' (Median)",
			Impact:    "Imputed 'Speed Limit' with Median: 32.50",
		},
		{
			Timestamp: time.Date(2024, 6, 1, 9, 3, 0, 0, time.UTC),
			Operation: "Standardize 'Crash Date/Time' to datetime",
			Impact:    "Standardized 'Crash Date/Time' to datetime. (Note: 1 values failed to parse and were set to missing)",
		},
	}
	if diff := cmp.Diff(want, e.History()); diff != "" {
		t.Errorf("History() mismatch (-want +got):\n%s", diff)
	}
	if e.Table().RowCount() != 3 {
		t.Errorf("RowCount() = %d, want 3", e.Table().RowCount())
	}
}

func TestCleaningEngine_FailureLeavesStateUnchanged(t *testing.T) {
	tbl := MustTable(NewTextColumn("Agency Name", []string{"A", ""}))
	e := newTestEngine(t, tbl)

	_, _, err := e.Impute("Agency Name", ImputeMean)
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("error = %v, want ErrTypeMismatch", err)
	}
	if len(e.History()) != 0 {
		t.Errorf("len(History()) = %d, want 0", len(e.History()))
	}
	if e.Table() != tbl {
		t.Error("Table() replaced after failed operation")
	}
}

func TestCleaningEngine_HistoryIsACopy(t *testing.T) {
	e := newTestEngine(t, MustTable(NewTextColumn("A", []string{"x", ""})))
	if _, _, err := e.DropMissing("A"); err != nil {
		t.Fatal(err)
	}

	h := e.History()
	h[0].Operation = "tampered"
	if got := e.History()[0].Operation; got != "Drop Nulls in A" {
		t.Errorf("Operation = %q, want unchanged", got)
	}
}

func TestCleaningEngine_OperationLabels(t *testing.T) {
	tbl := MustTable(
		NewTextColumn("Report Number", []string{"A", "B", ""}),
		NewNumericColumn("Vehicle Year", []float64{2010, 2020, 2021}),
	)
	e := newTestEngine(t, tbl)

	steps := []func() error{
		func() error { _, _, err := e.FillMissing("Report Number", "UNKNOWN"); return err },
		func() error { _, _, err := e.FilterMinYear("Vehicle Year", 2015); return err },
		func() error { _, _, err := e.DropDuplicates("Report Number"); return err },
		func() error { _, _, err := e.DropMissing(); return err },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	var got []string
	for _, entry := range e.History() {
		got = append(got, entry.Operation)
	}
	want := []string{
		"Fill Nulls in Report Number",
		"Filter Vehicle Year >= 2015",
		"Drop Duplicates on [Report Number]",
		"Drop Nulls in all columns",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("operations mismatch (-want +got):\n%s", diff)
	}
}
