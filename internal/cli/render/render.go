// Package render prints answers and schema snapshots to a terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/askdb/askdb/internal/answer"
	"github.com/askdb/askdb/internal/schema"
)

var (
	metricStyle  = color.New(color.FgGreen, color.Bold)
	infoStyle    = color.New(color.FgCyan)
	warnStyle    = color.New(color.FgYellow)
	errorStyle   = color.New(color.FgRed)
	headingStyle = color.New(color.Bold)
	dimStyle     = color.New(color.Faint)
)

// Answer writes a classified answer. Text starting with "Error:" is shown
// as an error whatever its kind.
func Answer(w io.Writer, hint answer.Hint) {
	if strings.HasPrefix(hint.Text, "Error:") {
		_, _ = errorStyle.Fprintln(w, hint.Text)
		return
	}
	switch hint.Kind {
	case answer.KindMetric:
		_, _ = fmt.Fprint(w, "Answer: ")
		_, _ = metricStyle.Fprintln(w, hint.Text)
	case answer.KindInfo:
		_, _ = infoStyle.Fprintln(w, "ℹ "+hint.Text)
	case answer.KindTable:
		_, _ = fmt.Fprintln(w, "Results:")
		for _, line := range strings.Split(hint.Text, "\n") {
			_, _ = fmt.Fprintln(w, "    "+line)
		}
	default:
		_, _ = fmt.Fprintln(w, hint.Text)
	}
}

func Warning(w io.Writer, message string) {
	_, _ = warnStyle.Fprintln(w, message)
}

// SchemaUnavailable is shown when introspection failed.
func SchemaUnavailable(w io.Writer) {
	_, _ = errorStyle.Fprintln(w, "Could not load database schema")
}

// Schema writes the database name, the table count and one block per table
// listing each column with its type and Required/Optional label.
func Schema(w io.Writer, snapshot schema.Snapshot) {
	_, _ = headingStyle.Fprintf(w, "Database: %s\n", snapshot.DatabaseName)
	_, _ = fmt.Fprintf(w, "Tables: %d\n", len(snapshot.Tables))
	for _, table := range snapshot.Tables {
		_, _ = fmt.Fprintln(w)
		_, _ = headingStyle.Fprintf(w, "%s (%d columns)\n", table.Name, len(table.Columns))
		width := 0
		for _, column := range table.Columns {
			width = max(width, len(column.Name))
		}
		for _, column := range table.Columns {
			_, _ = fmt.Fprintf(w, "  %-*s  %s ", width, column.Name, column.DataType)
			_, _ = dimStyle.Fprintln(w, column.Requirement())
		}
	}
}

// Questions writes a numbered list.
func Questions(w io.Writer, questions []string) {
	_, _ = headingStyle.Fprintln(w, "Sample questions:")
	for i, question := range questions {
		_, _ = fmt.Fprintf(w, "  %d. %s\n", i+1, question)
	}
}
