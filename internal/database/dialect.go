package database

import "strings"

type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
)

// DialectForScheme maps a URL scheme such as "postgresql+psycopg2" to a dialect.
// Anything after '+' names a client driver and is ignored.
func DialectForScheme(scheme string) (Dialect, bool) {
	base, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(scheme)), "+")
	switch base {
	case "postgres", "postgresql":
		return Postgres, true
	case "mysql", "mariadb":
		return MySQL, true
	default:
		return "", false
	}
}

func (d Dialect) DriverName() string {
	if d == MySQL {
		return "mysql"
	}
	return "pgx"
}

func (d Dialect) DisplayName() string {
	if d == MySQL {
		return "MySQL"
	}
	return "PostgreSQL"
}

func (d Dialect) QuoteIdent(value string) string {
	if d == MySQL {
		return "`" + strings.ReplaceAll(value, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
