package query

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrNotReadOnly = errors.New("only read-only SELECT/WITH queries are allowed")

type Request struct {
	SQL      string
	RowLimit int
}

type Result struct {
	Columns  []string
	Rows     [][]any
	Duration time.Duration
}

type Engine interface {
	Execute(ctx context.Context, request Request) (Result, error)
}

// Explainer validates a statement against the live database without running it.
type Explainer interface {
	Explain(ctx context.Context, sqlText string) error
}

// StripTrailingSemicolons trims whitespace and any run of trailing semicolons.
func StripTrailingSemicolons(sqlText string) string {
	trimmed := strings.TrimSpace(sqlText)
	for strings.HasSuffix(trimmed, ";") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, ";"))
	}
	return trimmed
}

// IsAllowedSQL reports whether sqlText is a single SELECT or WITH statement.
func IsAllowedSQL(sqlText string) bool {
	normalized := strings.ToLower(StripTrailingSemicolons(sqlText))
	if normalized == "" {
		return false
	}
	if !strings.HasPrefix(normalized, "select") && !strings.HasPrefix(normalized, "with") {
		return false
	}
	return !hasStatementSeparator(normalized)
}

// hasStatementSeparator looks for a semicolon outside quotes.
func hasStatementSeparator(sqlText string) bool {
	var quote rune
	for _, r := range sqlText {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"' || r == '`':
			quote = r
		case r == ';':
			return true
		}
	}
	return false
}
