// Package sqltool exposes the database to the agent as four tools:
// list tables, describe tables, check a query and run a query.
package sqltool

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/askdb/askdb/internal/agent"
	"github.com/askdb/askdb/internal/database"
	"github.com/askdb/askdb/internal/query"
	"github.com/askdb/askdb/internal/schema"
)

const (
	ListTablesTool   = "sql_db_list_tables"
	SchemaTool       = "sql_db_schema"
	QueryTool        = "sql_db_query"
	QueryCheckerTool = "sql_db_query_checker"
)

// Engine is what the toolbox needs from the query layer.
type Engine interface {
	query.Engine
	query.Explainer
}

type Config struct {
	Dialect    database.Dialect
	TopK       int
	SampleRows int
}

type Toolbox struct {
	catalog schema.Querier
	engine  Engine
	cfg     Config
}

// New builds a toolbox. catalog is used for table and column metadata,
// engine for everything that reads user data.
func New(catalog schema.Querier, engine Engine, cfg Config) *Toolbox {
	if cfg.TopK <= 0 {
		cfg.TopK = 10
	}
	if cfg.SampleRows < 0 {
		cfg.SampleRows = 0
	}
	return &Toolbox{catalog: catalog, engine: engine, cfg: cfg}
}

// Tools returns the tools in the order they are advertised to the model.
func (b *Toolbox) Tools() []agent.Tool {
	return []agent.Tool{
		listTablesTool{b},
		schemaTool{b},
		queryCheckerTool{b},
		queryTool{b},
	}
}

func (b *Toolbox) snapshot(ctx context.Context) (schema.Snapshot, error) {
	return schema.Load(ctx, b.catalog, b.cfg.Dialect)
}

type listTablesTool struct{ b *Toolbox }

func (listTablesTool) Spec() agent.ToolSpec {
	return agent.ToolSpec{
		Name:        ListTablesTool,
		Description: "Input is an empty string, output is a comma-separated list of tables in the database.",
		Params:      []agent.Param{{Name: "tool_input", Description: "An empty string."}},
	}
}

func (t listTablesTool) Run(ctx context.Context, _ map[string]any) (string, error) {
	snapshot, err := t.b.snapshot(ctx)
	if err != nil {
		return "", err
	}
	return strings.Join(snapshot.TableNames(), ", "), nil
}

type schemaTool struct{ b *Toolbox }

func (schemaTool) Spec() agent.ToolSpec {
	return agent.ToolSpec{
		Name: SchemaTool,
		Description: "Input to this tool is a comma-separated list of tables, output is the schema and sample rows for those tables. " +
			"Be sure that the tables actually exist by calling " + ListTablesTool + " first! Example Input: table1, table2, table3",
		Params: []agent.Param{{Name: "table_names", Description: "A comma-separated list of the table names for which to return the schema.", Required: true}},
	}
}

func (t schemaTool) Run(ctx context.Context, args map[string]any) (string, error) {
	raw, _ := agent.StringArg(args, "table_names")
	names := splitNames(raw)
	if len(names) == 0 {
		return "", fmt.Errorf("table_names is required")
	}

	snapshot, err := t.b.snapshot(ctx)
	if err != nil {
		return "", err
	}
	var missing []string
	tables := make([]schema.Table, 0, len(names))
	for _, name := range names {
		table, ok := snapshot.Table(name)
		if !ok {
			missing = append(missing, "'"+name+"'")
			continue
		}
		tables = append(tables, table)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", fmt.Errorf("table_names {%s} not found in database", strings.Join(missing, ", "))
	}

	var out strings.Builder
	for i, table := range tables {
		if i > 0 {
			out.WriteString("\n\n")
		}
		writeCreateTable(&out, t.b.cfg.Dialect, table)
		if t.b.cfg.SampleRows > 0 {
			out.WriteString("\n\n")
			t.writeSampleRows(ctx, &out, table)
		}
	}
	return out.String(), nil
}

func (t schemaTool) writeSampleRows(ctx context.Context, out *strings.Builder, table schema.Table) {
	fmt.Fprintf(out, "/*\n%d rows from %s table:\n", t.b.cfg.SampleRows, table.Name)
	result, err := t.b.engine.Execute(ctx, query.Request{
		SQL:      "SELECT * FROM " + t.b.cfg.Dialect.QuoteIdent(table.Name),
		RowLimit: t.b.cfg.SampleRows,
	})
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n*/", err)
		return
	}
	out.WriteString(strings.Join(result.Columns, "\t"))
	out.WriteString("\n")
	for _, row := range result.Rows {
		cells := make([]string, len(row))
		for i, value := range row {
			cells[i] = truncate(formatValue(value), 100)
		}
		out.WriteString(strings.Join(cells, "\t"))
		out.WriteString("\n")
	}
	out.WriteString("*/")
}

type queryCheckerTool struct{ b *Toolbox }

func (queryCheckerTool) Spec() agent.ToolSpec {
	return agent.ToolSpec{
		Name: QueryCheckerTool,
		Description: "Use this tool to double check if your query is correct before executing it. " +
			"Always use this tool before executing a query with " + QueryTool + "!",
		Params: []agent.Param{{Name: "query", Description: "A detailed and SQL query to be checked.", Required: true}},
	}
}

func (t queryCheckerTool) Run(ctx context.Context, args map[string]any) (string, error) {
	sqlText, _ := agent.StringArg(args, "query")
	sqlText = query.StripTrailingSemicolons(sqlText)
	if sqlText == "" {
		return "", fmt.Errorf("query is required")
	}
	if err := t.b.engine.Explain(ctx, sqlText); err != nil {
		return "", fmt.Errorf("query check failed: %w", err)
	}
	return sqlText, nil
}

type queryTool struct{ b *Toolbox }

func (queryTool) Spec() agent.ToolSpec {
	return agent.ToolSpec{
		Name: QueryTool,
		Description: "Input to this tool is a detailed and correct SQL query, output is a result from the database. " +
			"If the query is not correct, an error message will be returned. " +
			"If an error is returned, rewrite the query, check the query, and try again. " +
			"If you encounter an issue with Unknown column 'xxxx' in 'field list', use " + SchemaTool + " to query the correct table fields.",
		Params: []agent.Param{{Name: "query", Description: "A detailed and correct SQL query.", Required: true}},
	}
}

func (t queryTool) Run(ctx context.Context, args map[string]any) (string, error) {
	sqlText, _ := agent.StringArg(args, "query")
	result, err := t.b.engine.Execute(ctx, query.Request{SQL: sqlText, RowLimit: t.b.cfg.TopK})
	if err != nil {
		return "", err
	}
	if len(result.Rows) == 0 {
		return "Query returned no rows.", nil
	}
	var out strings.Builder
	WriteTable(&out, result.Columns, result.Rows)
	return strings.TrimRight(out.String(), "\n"), nil
}

// WriteTable renders a result as a borderless pipe table.
func WriteTable(w io.Writer, columns []string, rows [][]any) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorders(tablewriter.Border{Left: false, Top: false, Right: false, Bottom: false})
	table.SetCenterSeparator("|")
	table.SetColumnSeparator("|")
	table.SetRowSeparator("-")
	table.SetHeaderLine(true)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, value := range row {
			cells[i] = formatValue(value)
		}
		table.Append(cells)
	}
	table.Render()
}

func writeCreateTable(out *strings.Builder, dialect database.Dialect, table schema.Table) {
	fmt.Fprintf(out, "CREATE TABLE %s (\n", dialect.QuoteIdent(table.Name))
	for i, column := range table.Columns {
		fmt.Fprintf(out, "\t%s %s", dialect.QuoteIdent(column.Name), column.DataType)
		if !column.Nullable {
			out.WriteString(" NOT NULL")
		}
		if column.Default != nil {
			fmt.Fprintf(out, " DEFAULT %s", *column.Default)
		}
		if i < len(table.Columns)-1 {
			out.WriteString(",")
		}
		out.WriteString("\n")
	}
	out.WriteString(")")
}

func splitNames(raw string) []string {
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	seen := map[string]bool{}
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

func formatValue(value any) string {
	if value == nil {
		return "NULL"
	}
	return fmt.Sprint(value)
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max]) + "..."
}
