package security

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInjection is the sentinel matched by every rejection of caller input.
// Use errors.Is(err, ErrInjection) to detect it.
var ErrInjection = errors.New("injection-class rejection")

// InjectionError reports caller input that cannot be placed into SQL safely.
// Value carries the offending input for diagnostics.
type InjectionError struct {
	Value  string
	Reason string
}

// NewInjectionError creates an InjectionError for the given value and reason.
func NewInjectionError(value, reason string) *InjectionError {
	return &InjectionError{Value: value, Reason: reason}
}

func (e *InjectionError) Error() string {
	return fmt.Sprintf("rejected %q: %s", e.Value, e.Reason)
}

// Is reports whether target is ErrInjection.
func (e *InjectionError) Is(target error) bool {
	return target == ErrInjection
}

// ValidateIdentifier checks that name is a bare or dot-qualified identifier
// whose every segment matches [A-Za-z_][A-Za-z0-9_]*.
func ValidateIdentifier(name string) error {
	if name == "" {
		return NewInjectionError(name, "empty identifier")
	}
	for _, segment := range strings.Split(name, ".") {
		if reason := checkToken(segment); reason != "" {
			return NewInjectionError(name, reason)
		}
	}
	return nil
}

// checkToken returns an empty string for a valid token or the rejection reason.
func checkToken(token string) string {
	if token == "" {
		return "empty identifier segment"
	}
	for i := 0; i < len(token); i++ {
		c := token[i]
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9':
			if i == 0 {
				return "identifier segment starts with a digit"
			}
		default:
			return fmt.Sprintf("forbidden character %q in identifier", c)
		}
	}
	return ""
}

// QuoteIdentifier validates name and quotes each dot-separated segment
// with quote. The result is the only form in which names may enter SQL.
//
// Example:
//
//	QuoteIdentifier("db.events", mysqlQuote) // `db`.`events`
func QuoteIdentifier(name string, quote func(string) string) (string, error) {
	if err := ValidateIdentifier(name); err != nil {
		return "", err
	}
	segments := strings.Split(name, ".")
	for i, segment := range segments {
		segments[i] = quote(segment)
	}
	return strings.Join(segments, "."), nil
}

// ValidateTypeExpr checks a column type or table engine expression such as
// "Nullable(String)", "Decimal(18, 4)" or "ReplacingMergeTree(version)".
// The expression is a name made of letters, digits and underscores that
// starts with a letter, optionally followed by one balanced parenthesized
// argument list that ends the expression. Commas and spaces are accepted
// only inside the parentheses.
func ValidateTypeExpr(expr string) error {
	if expr == "" {
		return NewInjectionError(expr, "empty type expression")
	}
	first := expr[0]
	if !('a' <= first && first <= 'z' || 'A' <= first && first <= 'Z') {
		return NewInjectionError(expr, "type expression must start with a letter")
	}

	depth := 0
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth < 0 {
				return NewInjectionError(expr, "unbalanced parentheses")
			}
			if depth == 0 && i != len(expr)-1 {
				return NewInjectionError(expr, "unexpected text after type arguments")
			}
		case c == ',', c == ' ':
			if depth == 0 {
				return NewInjectionError(expr, fmt.Sprintf("%q outside type arguments", c))
			}
		case c == '_':
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		default:
			return NewInjectionError(expr, fmt.Sprintf("forbidden character %q in type expression", c))
		}
	}
	if depth != 0 {
		return NewInjectionError(expr, "unbalanced parentheses")
	}
	return nil
}
