package dialects

import (
	"strings"
)

// MySQLDialect implements MySQL-specific SQL dialect.
type MySQLDialect struct{}

// MySQL is the registered MySQL dialect.
var MySQL Dialect = &MySQLDialect{}

func init() {
	RegisterDialect("mysql", MySQL)
}

// Name returns "mysql".
func (d *MySQLDialect) Name() string {
	return "mysql"
}

// QuoteIdentifier quotes a MySQL identifier using backticks.
func (d *MySQLDialect) QuoteIdentifier(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// Placeholder returns MySQL placeholder format (always "?").
func (d *MySQLDialect) Placeholder(_ int, _ string) string {
	return "?"
}

// CaseInsensitiveLike returns LIKE; the default MySQL collations compare
// case-insensitively.
func (d *MySQLDialect) CaseInsensitiveLike() string {
	return "LIKE"
}
