// Package sqlexec implements the SQL executor used by db_write nodes.
// Structured operations go through bun's query builders; raw
// statements bind named parameters. Every call runs in its own
// transaction and rolls back on error.
package sqlexec

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/uptrace/bun"

	"github.com/flowmesh/flowmesh/pkg/clients"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Executor is a clients.SQLExecutor over a shared bun connection pool.
type Executor struct {
	db     *bun.DB
	logger zerolog.Logger
}

// NewExecutor creates a SQL executor on the given database.
func NewExecutor(db *bun.DB, logger zerolog.Logger) *Executor {
	return &Executor{
		db:     db,
		logger: logger.With().Str("component", "sqlexec").Logger(),
	}
}

// ExecuteStructured runs one structured operation. Identifiers are
// validated and quoted; all values are bound as parameters.
func (e *Executor) ExecuteStructured(ctx context.Context, stmt clients.StructuredStatement) (*clients.SQLResult, error) {
	if err := validateIdent(stmt.Table); err != nil {
		return nil, err
	}
	for col := range stmt.Values {
		if err := validateIdent(col); err != nil {
			return nil, err
		}
	}
	for col := range stmt.Where {
		if err := validateIdent(col); err != nil {
			return nil, err
		}
	}
	for _, col := range stmt.Returning {
		if err := validateIdent(col); err != nil {
			return nil, err
		}
	}

	var result *clients.SQLResult
	err := e.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		switch stmt.Operation {
		case clients.SQLInsert:
			result, err = e.runInsert(ctx, tx, stmt)
		case clients.SQLUpdate:
			result, err = e.runUpdate(ctx, tx, stmt)
		case clients.SQLDelete:
			result, err = e.runDelete(ctx, tx, stmt)
		case clients.SQLSelect:
			result, err = e.runSelect(ctx, tx, stmt)
		default:
			err = fmt.Errorf("unsupported operation: %s", stmt.Operation)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Executor) runInsert(ctx context.Context, tx bun.Tx, stmt clients.StructuredStatement) (*clients.SQLResult, error) {
	if len(stmt.Values) == 0 {
		return nil, fmt.Errorf("INSERT requires values")
	}

	values := stmt.Values
	q := tx.NewInsert().Model(&values).TableExpr("?", bun.Ident(stmt.Table))

	if len(stmt.Returning) > 0 {
		q = q.Returning(joinIdents(stmt.Returning))
		returned := map[string]interface{}{}
		if _, err := q.Exec(ctx, &returned); err != nil {
			return nil, fmt.Errorf("insert into %s failed: %w", stmt.Table, err)
		}
		return &clients.SQLResult{RowsAffected: 1, Returned: returned}, nil
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("insert into %s failed: %w", stmt.Table, err)
	}
	affected, _ := res.RowsAffected()
	return &clients.SQLResult{RowsAffected: affected}, nil
}

func (e *Executor) runUpdate(ctx context.Context, tx bun.Tx, stmt clients.StructuredStatement) (*clients.SQLResult, error) {
	if len(stmt.Values) == 0 {
		return nil, fmt.Errorf("UPDATE requires values")
	}
	if len(stmt.Where) == 0 {
		return nil, fmt.Errorf("UPDATE requires a where clause")
	}

	values := stmt.Values
	q := tx.NewUpdate().Model(&values).TableExpr("?", bun.Ident(stmt.Table))
	for col, val := range stmt.Where {
		q = q.Where("? = ?", bun.Ident(col), val)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("update of %s failed: %w", stmt.Table, err)
	}
	affected, _ := res.RowsAffected()
	return &clients.SQLResult{RowsAffected: affected}, nil
}

func (e *Executor) runDelete(ctx context.Context, tx bun.Tx, stmt clients.StructuredStatement) (*clients.SQLResult, error) {
	if len(stmt.Where) == 0 {
		return nil, fmt.Errorf("DELETE requires a where clause")
	}

	q := tx.NewDelete().TableExpr("?", bun.Ident(stmt.Table))
	for col, val := range stmt.Where {
		q = q.Where("? = ?", bun.Ident(col), val)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("delete from %s failed: %w", stmt.Table, err)
	}
	affected, _ := res.RowsAffected()
	return &clients.SQLResult{RowsAffected: affected}, nil
}

func (e *Executor) runSelect(ctx context.Context, tx bun.Tx, stmt clients.StructuredStatement) (*clients.SQLResult, error) {
	q := tx.NewSelect().TableExpr("?", bun.Ident(stmt.Table)).ColumnExpr("*")
	for col, val := range stmt.Where {
		q = q.Where("? = ?", bun.Ident(col), val)
	}

	var rows []map[string]interface{}
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("select from %s failed: %w", stmt.Table, err)
	}
	return &clients.SQLResult{RowsAffected: int64(len(rows)), Rows: rows}, nil
}

// ExecuteRaw runs one raw statement, rewriting :name parameters to
// positional bindings.
func (e *Executor) ExecuteRaw(ctx context.Context, query string, params map[string]interface{}) (*clients.SQLResult, error) {
	rewritten, args, err := bindNamedParams(query, params)
	if err != nil {
		return nil, err
	}

	var result *clients.SQLResult
	err = e.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if returnsRows(rewritten) {
			rows, err := tx.QueryContext(ctx, rewritten, args...)
			if err != nil {
				return fmt.Errorf("raw query failed: %w", err)
			}
			defer rows.Close()

			scanned, err := scanRows(rows)
			if err != nil {
				return err
			}
			result = &clients.SQLResult{RowsAffected: int64(len(scanned)), Rows: scanned}
			return nil
		}

		res, err := tx.ExecContext(ctx, rewritten, args...)
		if err != nil {
			return fmt.Errorf("raw statement failed: %w", err)
		}
		affected, _ := res.RowsAffected()
		result = &clients.SQLResult{RowsAffected: affected}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func validateIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier: %q", name)
	}
	return nil
}

func joinIdents(cols []string) string {
	return strings.Join(cols, ", ")
}

// bindNamedParams rewrites :name placeholders to ? bindings in
// statement order. Double colons (Postgres casts) are left alone.
func bindNamedParams(query string, params map[string]interface{}) (string, []interface{}, error) {
	var out strings.Builder
	var args []interface{}

	for i := 0; i < len(query); i++ {
		ch := query[i]
		if ch != ':' {
			out.WriteByte(ch)
			continue
		}
		// Skip "::" casts and a colon not followed by an identifier.
		if i+1 < len(query) && query[i+1] == ':' {
			out.WriteString("::")
			i++
			continue
		}
		start := i + 1
		end := start
		for end < len(query) && (isIdentChar(query[end])) {
			end++
		}
		if end == start {
			out.WriteByte(ch)
			continue
		}
		name := query[start:end]
		value, ok := params[name]
		if !ok {
			return "", nil, fmt.Errorf("missing parameter: %s", name)
		}
		out.WriteString("?")
		args = append(args, value)
		i = end - 1
	}

	return out.String(), args, nil
}

func isIdentChar(ch byte) bool {
	return ch == '_' ||
		(ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9')
}

func returnsRows(query string) bool {
	trimmed := strings.ToUpper(strings.TrimSpace(query))
	return strings.HasPrefix(trimmed, "SELECT") ||
		strings.HasPrefix(trimmed, "WITH") ||
		strings.Contains(trimmed, "RETURNING")
}

func scanRows(rows *sql.Rows) ([]map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var result []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result = append(result, row)
	}

	return result, rows.Err()
}
