package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/askdb/askdb/internal/database"
)

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type catalogQueries struct {
	currentDatabase string
	tableColumns    string
}

var dialectQueries = map[database.Dialect]catalogQueries{
	database.Postgres: {
		currentDatabase: `SELECT current_database()`,
		tableColumns: `
SELECT t.table_name, c.column_name, c.data_type, c.is_nullable, c.column_default
FROM information_schema.tables t
JOIN information_schema.columns c
  ON c.table_schema = t.table_schema AND c.table_name = t.table_name
WHERE t.table_schema = 'public' AND t.table_type = 'BASE TABLE'
ORDER BY t.table_name, c.ordinal_position`,
	},
	database.MySQL: {
		currentDatabase: `SELECT DATABASE()`,
		tableColumns: `
SELECT t.table_name, c.column_name, c.data_type, c.is_nullable, c.column_default
FROM information_schema.tables t
JOIN information_schema.columns c
  ON c.table_schema = t.table_schema AND c.table_name = t.table_name
WHERE t.table_schema = DATABASE() AND t.table_type = 'BASE TABLE'
ORDER BY t.table_name, c.ordinal_position`,
	},
}

// Load reads the database name and every base table with its columns.
// It returns either a complete snapshot or an error.
func Load(ctx context.Context, q Querier, dialect database.Dialect) (Snapshot, error) {
	queries, ok := dialectQueries[dialect]
	if !ok {
		return Snapshot{}, fmt.Errorf("unsupported dialect %q", dialect)
	}

	var databaseName sql.NullString
	if err := q.QueryRowContext(ctx, queries.currentDatabase).Scan(&databaseName); err != nil {
		return Snapshot{}, fmt.Errorf("query current database: %w", err)
	}

	rows, err := q.QueryContext(ctx, queries.tableColumns)
	if err != nil {
		return Snapshot{}, fmt.Errorf("query catalog columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	snapshot := Snapshot{DatabaseName: databaseName.String, Tables: make([]Table, 0)}
	index := map[string]int{}
	for rows.Next() {
		var (
			tableName  string
			column     Column
			isNullable string
			defaultVal sql.NullString
		)
		if err := rows.Scan(&tableName, &column.Name, &column.DataType, &isNullable, &defaultVal); err != nil {
			return Snapshot{}, fmt.Errorf("scan catalog row: %w", err)
		}
		column.Nullable = strings.EqualFold(strings.TrimSpace(isNullable), "YES")
		if defaultVal.Valid {
			value := defaultVal.String
			column.Default = &value
		}

		pos, seen := index[tableName]
		if !seen {
			pos = len(snapshot.Tables)
			index[tableName] = pos
			snapshot.Tables = append(snapshot.Tables, Table{Name: tableName})
		}
		snapshot.Tables[pos].Columns = append(snapshot.Tables[pos].Columns, column)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("iterate catalog rows: %w", err)
	}
	return snapshot, nil
}
