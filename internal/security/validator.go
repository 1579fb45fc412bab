// Package security provides identifier validation and escaping, type
// expression checks for DDL, and pattern screening of raw SQL fragments.
package security

import (
	"regexp"
)

// Validator screens raw SQL fragments against dangerous patterns.
// Raw fragments bypass identifier and parameter processing, so a Validator
// is the only check they receive.
type Validator struct {
	patterns []*regexp.Regexp
	strict   bool
}

// ValidatorOption configures the Validator.
type ValidatorOption func(*Validator)

// WithStrict enables strict validation mode (more aggressive).
func WithStrict(strict bool) ValidatorOption {
	return func(v *Validator) {
		v.strict = strict
	}
}

// NewValidator creates a fragment validator with the default dangerous patterns.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{
		patterns: compilePatterns(dangerousPatterns),
	}

	for _, opt := range opts {
		opt(v)
	}

	if v.strict {
		v.patterns = append(v.patterns, compilePatterns(strictPatterns)...)
	}

	return v
}

// dangerousPatterns never appear in fragments the builder itself produces.
var dangerousPatterns = []string{
	// Comments truncate the rest of the statement
	`--`,
	`/\*`,
	`#`,

	// Statement terminators allow stacked queries
	`;`,

	// UNION-based exfiltration
	`(?i)\bUNION\s+(ALL\s+)?SELECT\b`,

	// ClickHouse table functions and metadata that reach outside the table
	`(?i)\b(file|url|s3|remote|remoteSecure|mysql|postgresql|executable)\s*\(`,
	`(?i)\bsystem\s*\.`,
	`(?i)\bINFORMATION_SCHEMA\b`,
	`(?i)\bINTO\s+OUTFILE\b`,

	// Timing attacks
	`(?i)\b(sleep|sleepEachRow|pg_sleep|benchmark)\s*\(`,

	// Boolean-based blind injection
	`(?i)\bOR\s+1\s*=\s*1\b`,
	`(?i)\bOR\s+'1'\s*=\s*'1'`,
}

// strictPatterns may reject legitimate fragments.
var strictPatterns = []string{
	`'`,
	`(?i)\bOR\b`,
	`(?i)\bUNION\b`,
	`(?i)\b(DROP|ALTER|TRUNCATE|ATTACH|DETACH|RENAME)\b`,
}

// ValidateFragment returns an *InjectionError when fragment matches a
// dangerous pattern.
func (v *Validator) ValidateFragment(fragment string) error {
	for _, pattern := range v.patterns {
		if pattern.MatchString(fragment) {
			return NewInjectionError(fragment, "raw fragment matches dangerous pattern "+pattern.String())
		}
	}
	return nil
}

// compilePatterns compiles string patterns to regexp.Regexp.
func compilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		compiled = append(compiled, regexp.MustCompile(pattern))
	}
	return compiled
}
