// Package postgres loads an audit table from a PostgreSQL query.
//
// Every value is rendered as text and typed through core.BuildTable, so a
// query result is audited exactly like an uploaded CSV with the same header.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/crashaudit/internal/core"
	"github.com/JonMunkholm/crashaudit/internal/logging"
)

// ErrNoPool is returned when no database is configured.
var ErrNoPool = errors.New("database source is not configured")

// Querier is the subset of *pgxpool.Pool the loader needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var _ Querier = (*pgxpool.Pool)(nil)

// Source runs queries against a pool.
type Source struct {
	db      Querier
	maxRows int
}

// New returns a Source over db. maxRows caps the rows read per query; zero
// means no cap.
func New(db Querier, maxRows int) *Source {
	return &Source{db: db, maxRows: maxRows}
}

// Load runs query and returns its result as a table typed by specs.
func (s *Source) Load(ctx context.Context, query string, specs []core.FieldSpec, args ...any) (*core.LoadResult, error) {
	if s == nil || s.db == nil {
		return nil, ErrNoPool
	}

	start := time.Now()
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	raw := make([][]string, len(fields))

	n := 0
	for rows.Next() {
		if s.maxRows > 0 && n >= s.maxRows {
			break
		}
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", n+1, err)
		}
		for i, v := range values {
			raw[i] = append(raw[i], cellText(v))
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	if len(names) == 0 {
		return nil, core.ErrEmptyTable
	}

	res, err := core.BuildTable(names, raw, specs)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("loaded table from database",
		"columns", len(names),
		"rows", n,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// cellText renders a decoded pgx value the way it would appear in a CSV.
func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		// timestamp arrives in UTC, timestamptz in time.Local; both keep their wall clock.
		return x.Format(core.TimestampLayout)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case pgtype.Numeric:
		if !x.Valid {
			return ""
		}
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return ""
		}
		return strconv.FormatFloat(f.Float64, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// NewPool opens and pings a pool using the given settings.
func NewPool(ctx context.Context, url string, maxConns, minConns int, lifetime, idle time.Duration) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = int32(maxConns)
	cfg.MinConns = int32(minConns)
	cfg.MaxConnLifetime = lifetime
	cfg.MaxConnIdleTime = idle

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}
