// Package rows converts PostgreSQL result sets read through pgx into values.
//
// Each row becomes a *value.Map keyed by column name in column order, so the
// map can be handed to any codec without losing the select list order.
package rows

import (
	"context"
	"database/sql/driver"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/valuekit/value-go"
	"github.com/valuekit/value-go/logging"
)

// Rows is the part of pgx.Rows that Collect reads.
type Rows interface {
	Next() bool
	Values() ([]any, error)
	FieldDescriptions() []pgconn.FieldDescription
	Err() error
	Close()
}

var _ Rows = (pgx.Rows)(nil)

// Querier runs a query. *pgx.Conn, *pgxpool.Pool and pgx.Tx satisfy it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ConvertFunc converts the Go value pgx decoded for one column.
type ConvertFunc func(field pgconn.FieldDescription, v any) (value.Value, error)

// Options configures Row and Collect.
type Options struct {
	// Convert overrides the per-column conversion. Defaults to Convert.
	Convert ConvertFunc

	// Logger receives a DEBUG entry when a later column replaces an earlier
	// one with the same name.
	Logger logging.Logger
}

func resolveOptions(optFns []func(*Options)) Options {
	var o Options
	for _, fn := range optFns {
		fn(&o)
	}
	if o.Convert == nil {
		o.Convert = Convert
	}
	o.Logger = logging.OrNoop(o.Logger)
	return o
}

// Convert is the default column conversion. UUID columns become their
// canonical string, driver.Valuer types (numeric, intervals, ranges) use
// their driver value, and everything else goes through value.From.
func Convert(field pgconn.FieldDescription, v any) (value.Value, error) {
	if v == nil {
		return value.Null{}, nil
	}

	if field.DataTypeOID == pgtype.UUIDOID {
		if u, ok := v.([16]byte); ok {
			return value.String(formatUUID(u)), nil
		}
	}

	if dv, ok := v.(driver.Valuer); ok {
		x, err := dv.Value()
		if err != nil {
			return nil, err
		}
		return value.From(x)
	}

	return value.From(v)
}

func formatUUID(u [16]byte) string {
	return fmt.Sprintf("%x-%x-%x-%x-%x", u[0:4], u[4:6], u[6:8], u[8:10], u[10:16])
}

// Row builds the map for one row.
func Row(fields []pgconn.FieldDescription, values []any, optFns ...func(*Options)) (*value.Map, error) {
	o := resolveOptions(optFns)
	return row(fields, values, &o)
}

func row(fields []pgconn.FieldDescription, values []any, o *Options) (*value.Map, error) {
	if len(fields) != len(values) {
		return nil, fmt.Errorf("rows: %d fields but %d values", len(fields), len(values))
	}

	m := value.NewMapWithCapacity(len(fields))
	for i, f := range fields {
		v, err := o.Convert(f, values[i])
		if err != nil {
			return nil, fmt.Errorf("rows: column %q: %w", f.Name, err)
		}
		if _, dup := m.Insert(value.String(f.Name), v); dup {
			o.Logger.Logf(logging.Debug, "rows: duplicate column %q, keeping last value", f.Name)
		}
	}
	return m, nil
}

// Collect drains r into an Array of row maps. r is always closed.
func Collect(r Rows, optFns ...func(*Options)) (value.Array, error) {
	defer r.Close()

	o := resolveOptions(optFns)
	fields := r.FieldDescriptions()

	out := value.Array{}
	for r.Next() {
		values, err := r.Values()
		if err != nil {
			return nil, fmt.Errorf("rows: read row %d: %w", len(out), err)
		}

		m, err := row(fields, values, &o)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// Query runs sql on q and collects the result.
func Query(ctx context.Context, q Querier, sql string, args []any, optFns ...func(*Options)) (value.Array, error) {
	r, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("rows: query: %w", err)
	}
	return Collect(r, optFns...)
}
