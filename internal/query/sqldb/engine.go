// Package sqldb executes read-only statements against the live database
// through database/sql.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/askdb/askdb/internal/database"
	"github.com/askdb/askdb/internal/query"
)

type Engine struct {
	DB      *sql.DB
	Dialect database.Dialect
}

func NewEngine(db *sql.DB, dialect database.Dialect) *Engine {
	return &Engine{DB: db, Dialect: dialect}
}

func (e *Engine) Execute(ctx context.Context, request query.Request) (query.Result, error) {
	sqlText := query.StripTrailingSemicolons(request.SQL)
	if sqlText == "" {
		return query.Result{}, fmt.Errorf("sql is required")
	}
	if !query.IsAllowedSQL(sqlText) {
		return query.Result{}, query.ErrNotReadOnly
	}
	if e.DB == nil {
		return query.Result{}, fmt.Errorf("database is required")
	}
	sqlText = e.limitSQL(sqlText, request.RowLimit)

	start := time.Now()
	tx, err := e.DB.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return query.Result{}, fmt.Errorf("begin read-only transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, sqlText)
	if err != nil {
		return query.Result{}, fmt.Errorf("execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return query.Result{}, fmt.Errorf("query columns: %w", err)
	}

	resultRows := make([][]any, 0)
	for rows.Next() {
		if request.RowLimit > 0 && len(resultRows) >= request.RowLimit {
			break
		}
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return query.Result{}, fmt.Errorf("scan row: %w", err)
		}
		resultRows = append(resultRows, normalizeValues(values))
	}
	if err := rows.Err(); err != nil {
		return query.Result{}, fmt.Errorf("iterate rows: %w", err)
	}

	return query.Result{
		Columns:  columns,
		Rows:     resultRows,
		Duration: time.Since(start),
	}, nil
}

// limitSQL pushes the row limit into the statement where the dialect allows
// wrapping it. MySQL rejects derived tables with duplicate column names, so
// there the limit is only applied while scanning.
func (e *Engine) limitSQL(sqlText string, limit int) string {
	if limit <= 0 || e.Dialect == database.MySQL {
		return sqlText
	}
	return fmt.Sprintf("SELECT * FROM (%s) AS q LIMIT %d", sqlText, limit)
}

// Explain asks the database to plan the statement, surfacing syntax and
// unknown-object errors without executing it.
func (e *Engine) Explain(ctx context.Context, sqlText string) error {
	sqlText = query.StripTrailingSemicolons(sqlText)
	if !query.IsAllowedSQL(sqlText) {
		return query.ErrNotReadOnly
	}
	if e.DB == nil {
		return fmt.Errorf("database is required")
	}

	tx, err := e.DB.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("begin read-only transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, "EXPLAIN "+sqlText)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
	}
	return rows.Err()
}

func normalizeValues(values []any) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		switch typed := value.(type) {
		case []byte:
			normalized[i] = string(typed)
		case time.Time:
			normalized[i] = typed.Format(time.RFC3339)
		case string:
			normalized[i] = strings.ToValidUTF8(typed, "?")
		default:
			normalized[i] = typed
		}
	}
	return normalized
}
