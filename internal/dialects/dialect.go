// Package dialects provides SQL dialect implementations for ClickHouse,
// MySQL, PostgreSQL and SQLite, handling identifier quoting, typed or
// positional placeholders, and the case-insensitive pattern operator.
package dialects

import "sort"

// Dialect defines database-specific rendering rules.
type Dialect interface {
	// Name returns the registered name of the dialect.
	Name() string
	// QuoteIdentifier quotes a single, already validated identifier token.
	QuoteIdentifier(string) string
	// Placeholder renders the placeholder for the zero-based parameter
	// index carrying the given type tag.
	Placeholder(index int, tag string) string
	// CaseInsensitiveLike returns the case-insensitive pattern operator.
	CaseInsensitiveLike() string
}

var dialects = make(map[string]Dialect)

// RegisterDialect registers a database dialect by driver name.
func RegisterDialect(name string, d Dialect) {
	dialects[name] = d
}

// GetDialect retrieves a registered dialect by driver name, panics if not found.
func GetDialect(name string) Dialect {
	if d, ok := dialects[name]; ok {
		return d
	}
	panic("unsupported dialect: " + name)
}

// Lookup retrieves a registered dialect by driver name.
func Lookup(name string) (Dialect, bool) {
	d, ok := dialects[name]
	return d, ok
}

// Names returns the sorted names of all registered dialects.
func Names() []string {
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
