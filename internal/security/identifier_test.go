package security

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backtick(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

func TestQuoteIdentifier_Valid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare", in: "users", want: "`users`"},
		{name: "underscore prefix", in: "_internal", want: "`_internal`"},
		{name: "digits after first char", in: "col_2", want: "`col_2`"},
		{name: "table.column", in: "users.id", want: "`users`.`id`"},
		{name: "db.table.column", in: "analytics.events.ts", want: "`analytics`.`events`.`ts`"},
		{name: "mixed case", in: "UserEvents", want: "`UserEvents`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := QuoteIdentifier(tt.in, backtick)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuoteIdentifier_Rejected(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "empty", in: ""},
		{name: "stacked statement", in: "users; DROP TABLE users--"},
		{name: "semicolon", in: "a;b"},
		{name: "single quote", in: "a'b"},
		{name: "double quote", in: `a"b`},
		{name: "backtick breakout", in: "a`b"},
		{name: "space", in: "first name"},
		{name: "tab", in: "a\tb"},
		{name: "newline", in: "a\nb"},
		{name: "leading digit", in: "1users"},
		{name: "leading digit in second segment", in: "users.1id"},
		{name: "leading dot", in: ".users"},
		{name: "trailing dot", in: "users."},
		{name: "double dot", in: "db..users"},
		{name: "dash", in: "user-name"},
		{name: "parenthesis", in: "count(id)"},
		{name: "wildcard", in: "*"},
		{name: "unicode", in: "usérs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := QuoteIdentifier(tt.in, backtick)
			require.Error(t, err)
			assert.Empty(t, got)
			assert.True(t, errors.Is(err, ErrInjection))

			var injErr *InjectionError
			require.True(t, errors.As(err, &injErr))
			assert.Equal(t, tt.in, injErr.Value)
		})
	}
}

func TestQuoteIdentifier_QuotesEachSegment(t *testing.T) {
	var seen []string
	quote := func(s string) string {
		seen = append(seen, s)
		return "[" + s + "]"
	}

	got, err := QuoteIdentifier("a.b.c", quote)
	require.NoError(t, err)
	assert.Equal(t, "[a].[b].[c]", got)
	assert.Equal(t, []string{"a", "b", "c"}, seen)
}

func TestInjectionError_Message(t *testing.T) {
	err := NewInjectionError("x;y", "forbidden character ';' in identifier")
	assert.Contains(t, err.Error(), `"x;y"`)
	assert.Contains(t, err.Error(), "forbidden character")
	assert.False(t, errors.Is(err, errors.New("other")))
}

func TestValidateTypeExpr(t *testing.T) {
	valid := []string{
		"UInt64",
		"String",
		"Nullable(String)",
		"Array(Nullable(String))",
		"Decimal(18, 4)",
		"DateTime64(3)",
		"LowCardinality(String)",
		"MergeTree()",
		"ReplacingMergeTree(version)",
		"Tuple(a String, b UInt8)",
		"Map(String, Array(UInt64))",
	}
	for _, expr := range valid {
		t.Run("valid "+expr, func(t *testing.T) {
			assert.NoError(t, ValidateTypeExpr(expr))
		})
	}

	invalid := []string{
		"",
		"(String)",
		"9Int",
		"String)",
		"Nullable(String",
		"String; DROP TABLE t",
		"DateTime64(3, 'UTC')",
		"Enum8('a' = 1)",
		"String -- comment",
		"MergeTree() SETTINGS x=1",
		"String, secret String",
		"String secret",
		"Nullable(String) DEFAULT x",
		"Array(String)Int",
		"Tuple(a String) , b UInt8",
	}
	for _, expr := range invalid {
		t.Run("invalid "+expr, func(t *testing.T) {
			err := ValidateTypeExpr(expr)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInjection))
		})
	}
}
