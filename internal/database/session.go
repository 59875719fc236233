package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/matthieukhl/shopstats/internal/analytics"
)

// Session is one scoped query session over a dedicated connection. It is
// only valid inside the function passed to DB.WithSession.
type Session struct {
	ID      string
	dialect Dialect
	conn    *sql.Conn
	logger  *slog.Logger
}

// ListTables returns every relation name the store knows, in store order
func (s *Session) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, s.dialect.TablesQuery)
	if err != nil {
		return nil, storeError("list tables", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list tables: %w: %w", analytics.ErrSchemaMismatch, err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list tables", err)
	}
	return tables, nil
}

// resolve maps a requested relation name onto the store's own spelling
func (s *Session) resolve(ctx context.Context, table string) (string, error) {
	tables, err := s.ListTables(ctx)
	if err != nil {
		return "", err
	}
	return matchRelation(tables, table)
}

func matchRelation(tables []string, table string) (string, error) {
	for _, t := range tables {
		if t == table {
			return t, nil
		}
	}
	for _, t := range tables {
		if strings.EqualFold(t, table) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%q: %w", table, analytics.ErrUnknownRelation)
}

// Describe returns a relation's column names in declaration order
func (s *Session) Describe(ctx context.Context, table string) ([]string, error) {
	name, err := s.resolve(ctx, table)
	if err != nil {
		return nil, err
	}
	return s.columns(ctx, name)
}

// columns reads the column names of an already resolved relation
func (s *Session) columns(ctx context.Context, name string) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s WHERE 1 = 0", s.dialect.Quote(name)))
	if err != nil {
		return nil, storeError("describe "+name, err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w: %w", name, analytics.ErrSchemaMismatch, err)
	}
	return columns, nil
}

// matchColumns maps the wanted column names onto the store's own spelling,
// exact match first, then case-insensitively. Unquoted postgres identifiers
// fold to lower case.
func matchColumns(table string, available, wanted []string) ([]string, error) {
	out := make([]string, len(wanted))
	for i, w := range wanted {
		name, err := matchRelation(available, w)
		if err != nil {
			return nil, fmt.Errorf("%s: missing column %q: %w", table, w, analytics.ErrSchemaMismatch)
		}
		out[i] = name
	}
	return out, nil
}

// Relation returns every row of a relation paired with its column names
func (s *Session) Relation(ctx context.Context, table string) (analytics.ResultSet, error) {
	name, err := s.resolve(ctx, table)
	if err != nil {
		return analytics.ResultSet{}, err
	}

	rows, err := s.conn.QueryContext(ctx, "SELECT * FROM "+s.dialect.Quote(name))
	if err != nil {
		return analytics.ResultSet{}, storeError("read "+name, err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return analytics.ResultSet{}, fmt.Errorf("read %s: %w: %w", name, analytics.ErrSchemaMismatch, err)
	}

	rs := analytics.ResultSet{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		values, err := scanRow(rows, len(columns))
		if err != nil {
			return analytics.ResultSet{}, fmt.Errorf("read %s: %w", name, err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		rs.Rows = append(rs.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return analytics.ResultSet{}, storeError("read "+name, err)
	}

	s.logger.Debug("relation read", "relation", name, "rows", rs.Len())
	return rs, nil
}

// scanRow scans the current row into untyped values
func scanRow(rows *sql.Rows, n int) ([]any, error) {
	values := make([]any, n)
	ptrs := make([]any, n)
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("%w: %w", analytics.ErrSchemaMismatch, err)
	}
	return values, nil
}

func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, analytics.ErrStoreUnavailable, err)
}
