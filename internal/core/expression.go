// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package core

// Expr is a pre-formatted SQL fragment that bypasses identifier and
// parameter processing. Each "?" marker in SQL is replaced with a typed
// placeholder for the matching element of Args, so the counts must agree.
//
// An Expr can be used as a WHERE predicate, as the operand of a condition,
// or as a value in Set and Values.
//
// Example:
//
//	quill.Raw("toStartOfDay(`created_at`) = ?", day)
type Expr struct {
	SQL  string
	Args []interface{}
}

// Raw creates a raw SQL expression with optional parameter bindings.
func Raw(sql string, args ...interface{}) Expr {
	return Expr{SQL: sql, Args: args}
}

func (Expr) condition() {}

// markers returns the byte offsets of the "?" markers in the expression
// text. A "?" inside a quoted string or a quoted identifier is literal text.
func (e Expr) markers() []int {
	var at []int
	var quote byte
	for i := 0; i < len(e.SQL); i++ {
		c := e.SQL[i]
		switch {
		case quote != 0 && c == '\\':
			i++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '?':
			at = append(at, i)
		}
	}
	return at
}

// Column names a column used as an operand. It is rendered as a quoted
// identifier instead of a parameter, which allows column-to-column
// comparisons such as JOIN ... ON predicates.
//
// Example:
//
//	quill.Eq("orders.user_id", quill.Col("users.id"))
type Column string

// Col creates a column reference.
func Col(name string) Column {
	return Column(name)
}
