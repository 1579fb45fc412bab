package dialects

import (
	"strings"
)

// SQLiteDialect implements SQLite-specific SQL dialect.
type SQLiteDialect struct{}

// SQLite is the registered SQLite dialect.
var SQLite Dialect = &SQLiteDialect{}

func init() {
	RegisterDialect("sqlite", SQLite)
	RegisterDialect("sqlite3", SQLite)
}

// Name returns "sqlite".
func (d *SQLiteDialect) Name() string {
	return "sqlite"
}

// QuoteIdentifier quotes a SQLite identifier using double quotes.
func (d *SQLiteDialect) QuoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Placeholder returns SQLite placeholder format (always "?").
func (d *SQLiteDialect) Placeholder(_ int, _ string) string {
	return "?"
}

// CaseInsensitiveLike returns LIKE, which is case-insensitive for ASCII in SQLite.
func (d *SQLiteDialect) CaseInsensitiveLike() string {
	return "LIKE"
}
