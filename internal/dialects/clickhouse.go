package dialects

import (
	"strconv"
	"strings"
)

// ClickHouseDialect implements the ClickHouse dialect. Placeholders are
// typed query parameters of the form {paramN:Tag}.
type ClickHouseDialect struct{}

// ClickHouse is the default dialect used by the builder.
var ClickHouse Dialect = &ClickHouseDialect{}

func init() {
	RegisterDialect("clickhouse", ClickHouse)
}

// Name returns "clickhouse".
func (d *ClickHouseDialect) Name() string {
	return "clickhouse"
}

// QuoteIdentifier quotes a ClickHouse identifier using backticks.
func (d *ClickHouseDialect) QuoteIdentifier(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// Placeholder returns {paramN:Tag}.
func (d *ClickHouseDialect) Placeholder(index int, tag string) string {
	return "{param" + strconv.Itoa(index) + ":" + tag + "}"
}

// CaseInsensitiveLike returns ILIKE.
func (d *ClickHouseDialect) CaseInsensitiveLike() string {
	return "ILIKE"
}
