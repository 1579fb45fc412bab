// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package core

import "strings"

// =============================================================================
// Aggregate functions
// =============================================================================

// Count generates count(column), or count() when column is empty.
//
// Example:
//
//	quill.Count("").As("total")
//
// Generates: count() AS `total`
func Count(column string) Expr {
	return aggregate("count", column)
}

// Uniq generates the ClickHouse approximate distinct count uniq(column).
func Uniq(column string) Expr {
	return aggregate("uniq", column)
}

// Sum generates sum(column).
func Sum(column string) Expr {
	return aggregate("sum", column)
}

// Avg generates avg(column).
func Avg(column string) Expr {
	return aggregate("avg", column)
}

// Min generates min(column).
func Min(column string) Expr {
	return aggregate("min", column)
}

// Max generates max(column).
func Max(column string) Expr {
	return aggregate("max", column)
}

// aggregate passes the column as a Column argument so it is validated and
// quoted when the expression is rendered.
func aggregate(name, column string) Expr {
	if column == "" {
		return Expr{SQL: name + "()"}
	}
	return Expr{SQL: name + "(?)", Args: []interface{}{Column(column)}}
}

// =============================================================================
// COALESCE Expression
// =============================================================================

// Coalesce generates COALESCE(v1, v2, ...). Column arguments are rendered as
// identifiers, everything else as parameters.
//
// Example:
//
//	quill.Coalesce(quill.Col("nickname"), quill.Col("name"), "anonymous")
//
// Generates: COALESCE(`nickname`, `name`, {param0:String})
func Coalesce(values ...interface{}) Expr {
	markers := make([]string, len(values))
	for i := range markers {
		markers[i] = "?"
	}
	return Expr{SQL: "COALESCE(" + strings.Join(markers, ", ") + ")", Args: values}
}

// =============================================================================
// Aliases
// =============================================================================

// As appends AS alias. The alias is validated like any identifier.
func (e Expr) As(alias string) Expr {
	args := make([]interface{}, 0, len(e.Args)+1)
	args = append(args, e.Args...)
	args = append(args, Column(alias))
	return Expr{SQL: e.SQL + " AS ?", Args: args}
}
