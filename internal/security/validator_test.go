package security

import (
	"errors"
	"testing"
)

func TestValidator_ValidateFragment(t *testing.T) {
	tests := []struct {
		name      string
		fragment  string
		strict    bool
		wantError bool
	}{
		// Legitimate fragments (should pass)
		{
			name:     "aggregate_call",
			fragment: "count() AS total",
		},
		{
			name:     "arithmetic_assignment",
			fragment: "`hits` + 1",
		},
		{
			name:     "date_function",
			fragment: "toStartOfDay(`created_at`)",
		},
		{
			name:     "placeholder_marker",
			fragment: "`score` > ?",
		},

		// Comment attacks
		{
			name:      "double_dash_comment",
			fragment:  "1 -- AND password = 'x'",
			wantError: true,
		},
		{
			name:      "c_style_comment",
			fragment:  "1 /*comment*/",
			wantError: true,
		},
		{
			name:      "hash_comment",
			fragment:  "1 # trailing",
			wantError: true,
		},

		// Stacked statements
		{
			name:      "stacked_drop",
			fragment:  "1; DROP TABLE users",
			wantError: true,
		},

		// UNION-based attacks
		{
			name:      "union_select",
			fragment:  "1 UNION SELECT password FROM admin",
			wantError: true,
		},
		{
			name:      "union_all_select_lowercase",
			fragment:  "1 union all select * from secrets",
			wantError: true,
		},

		// ClickHouse table functions and metadata
		{
			name:      "file_table_function",
			fragment:  "(SELECT * FROM file('/etc/passwd'))",
			wantError: true,
		},
		{
			name:      "url_table_function",
			fragment:  "url ('http://evil', CSV)",
			wantError: true,
		},
		{
			name:      "system_tables",
			fragment:  "name IN (SELECT name FROM system.users)",
			wantError: true,
		},
		{
			name:      "into_outfile",
			fragment:  "INTO OUTFILE 'dump.csv'",
			wantError: true,
		},

		// Timing attacks
		{
			name:      "clickhouse_sleep",
			fragment:  "sleep(3) = 0",
			wantError: true,
		},
		{
			name:      "postgres_sleep",
			fragment:  "pg_sleep(10) > 0",
			wantError: true,
		},

		// Boolean-based blind injection
		{
			name:      "or_1_equals_1",
			fragment:  "`user` = 'admin' OR 1 = 1",
			wantError: true,
		},
		{
			name:      "or_quoted_1_equals_1",
			fragment:  "x OR '1' = '1'",
			wantError: true,
		},

		// Strict mode
		{
			name:      "string_literal_in_strict_mode",
			fragment:  "`status` = 'active'",
			strict:    true,
			wantError: true,
		},
		{
			name:      "or_in_strict_mode",
			fragment:  "`a` > ? OR `b` > ?",
			strict:    true,
			wantError: true,
		},
		{
			name:      "drop_in_strict_mode",
			fragment:  "drop",
			strict:    true,
			wantError: true,
		},
		{
			name:     "plain_expression_in_strict_mode",
			fragment: "`hits` + 1",
			strict:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := NewValidator(WithStrict(tt.strict))
			err := validator.ValidateFragment(tt.fragment)

			if tt.wantError && err == nil {
				t.Errorf("ValidateFragment() expected error but got none for fragment: %s", tt.fragment)
			}
			if !tt.wantError && err != nil {
				t.Errorf("ValidateFragment() unexpected error for fragment %s: %v", tt.fragment, err)
			}
			if err != nil && !errors.Is(err, ErrInjection) {
				t.Errorf("ValidateFragment() error %v does not match ErrInjection", err)
			}
		})
	}
}

func TestValidator_StrictAddsPatterns(t *testing.T) {
	normal := NewValidator()
	strict := NewValidator(WithStrict(true))

	if len(strict.patterns) <= len(normal.patterns) {
		t.Errorf("strict validator has %d patterns, want more than %d", len(strict.patterns), len(normal.patterns))
	}
}
