package postgres

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/crashaudit/internal/core"
)

type fakeRows struct {
	fields []pgconn.FieldDescription
	rows   [][]any
	pos    int
	err    error
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return r.fields }
func (r *fakeRows) Scan(...any) error                            { return errors.New("not supported") }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) { return r.rows[r.pos-1], nil }

type fakeQuerier struct {
	rows  *fakeRows
	err   error
	query string
}

func (q *fakeQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	q.query = sql
	if q.err != nil {
		return nil, q.err
	}
	return q.rows, nil
}

func crashRows() *fakeRows {
	return &fakeRows{
		fields: []pgconn.FieldDescription{
			{Name: "Report Number"},
			{Name: "Crash Date/Time"},
			{Name: "Speed Limit"},
		},
		rows: [][]any{
			{"MCP1", time.Date(2023, 5, 1, 15, 30, 0, 0, time.UTC), pgtype.Numeric{Int: big.NewInt(35), Valid: true}},
			{"MCP2", nil, int32(40)},
			{"MCP3", time.Date(2023, 5, 3, 8, 0, 0, 0, time.UTC), nil},
		},
	}
}

func TestSource_Load(t *testing.T) {
	rows := crashRows()
	q := &fakeQuerier{rows: rows}
	specs := []core.FieldSpec{
		{Name: "Report Number", Type: core.ColumnText},
		{Name: "Crash Date/Time", Type: core.ColumnTemporal},
		{Name: "Speed Limit", Type: core.ColumnNumeric},
	}

	res, err := New(q, 0).Load(context.Background(), "SELECT * FROM crashes", specs)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !rows.closed {
		t.Error("rows not closed")
	}

	tbl := res.Table
	if tbl.RowCount() != 3 || tbl.ColumnCount() != 3 {
		t.Fatalf("table = %dx%d, want 3x3", tbl.RowCount(), tbl.ColumnCount())
	}
	date, _ := tbl.Column("Crash Date/Time")
	if date.Type != core.ColumnTemporal || date.MissingCount() != 1 {
		t.Errorf("date = %s with %d missing", date.Type, date.MissingCount())
	}
	speed, _ := tbl.Column("Speed Limit")
	if v, _ := speed.Number(0); v != 35 {
		t.Errorf("speed row 0 = %v, want 35", v)
	}
	if v, _ := speed.Number(1); v != 40 {
		t.Errorf("speed row 1 = %v, want 40", v)
	}
	if len(res.ParseFailures) != 0 {
		t.Errorf("ParseFailures = %+v, want none", res.ParseFailures)
	}
}

func TestSource_LoadMaxRows(t *testing.T) {
	res, err := New(&fakeQuerier{rows: crashRows()}, 2).Load(context.Background(), "SELECT 1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Table.RowCount() != 2 {
		t.Errorf("RowCount() = %d, want 2", res.Table.RowCount())
	}
}

func TestSource_LoadErrors(t *testing.T) {
	ctx := context.Background()

	if _, err := (*Source)(nil).Load(ctx, "SELECT 1", nil); !errors.Is(err, ErrNoPool) {
		t.Errorf("nil source error = %v, want ErrNoPool", err)
	}

	boom := errors.New("connection refused")
	if _, err := New(&fakeQuerier{err: boom}, 0).Load(ctx, "SELECT 1", nil); !errors.Is(err, boom) {
		t.Errorf("query error = %v, want wrapped %v", err, boom)
	}

	rows := crashRows()
	rows.err = errors.New("conn reset")
	if _, err := New(&fakeQuerier{rows: rows}, 0).Load(ctx, "SELECT 1", nil); err == nil {
		t.Error("rows.Err() not reported")
	}

	empty := &fakeRows{}
	if _, err := New(&fakeQuerier{rows: empty}, 0).Load(ctx, "SELECT", nil); !errors.Is(err, core.ErrEmptyTable) {
		t.Errorf("no columns error = %v, want ErrEmptyTable", err)
	}
}

func TestCellText(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"abc", "abc"},
		{[]byte("raw"), "raw"},
		{int64(-7), "-7"},
		{2.5, "2.5"},
		{true, "true"},
		{time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "2024-01-02 03:04:05"},
		{time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("EST", -5*3600)), "2024-01-02 03:04:05"},
		{pgtype.Numeric{Int: big.NewInt(1234), Exp: -2, Valid: true}, "12.34"},
		{pgtype.Numeric{}, ""},
	}

	for _, tt := range tests {
		if got := cellText(tt.in); got != tt.want {
			t.Errorf("cellText(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
