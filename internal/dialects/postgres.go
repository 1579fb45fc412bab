package dialects

import (
	"strconv"

	"github.com/lib/pq"
)

// PostgresDialect implements PostgreSQL-specific SQL dialect.
type PostgresDialect struct{}

// Postgres is the registered PostgreSQL dialect.
var Postgres Dialect = &PostgresDialect{}

func init() {
	RegisterDialect("postgres", Postgres)
	RegisterDialect("postgresql", Postgres)
}

// Name returns "postgres".
func (d *PostgresDialect) Name() string {
	return "postgres"
}

// QuoteIdentifier quotes a PostgreSQL identifier using double quotes.
func (d *PostgresDialect) QuoteIdentifier(s string) string {
	return pq.QuoteIdentifier(s)
}

// Placeholder returns PostgreSQL placeholder format ($1, $2, etc.).
func (d *PostgresDialect) Placeholder(index int, _ string) string {
	return "$" + strconv.Itoa(index+1)
}

// CaseInsensitiveLike returns ILIKE.
func (d *PostgresDialect) CaseInsensitiveLike() string {
	return "ILIKE"
}
