package core

// Condition is a WHERE-style predicate. The canonical forms are Leaf, Group
// and Expr; Filter and Document are surface syntaxes that are normalized to
// the canonical tree before compilation.
type Condition interface {
	condition()
}

// Operator is a comparison operator of a Leaf.
type Operator string

// Comparison operators.
const (
	OpEq      Operator = "eq"
	OpNe      Operator = "ne"
	OpGt      Operator = "gt"
	OpGte     Operator = "gte"
	OpLt      Operator = "lt"
	OpLte     Operator = "lte"
	OpIn      Operator = "in"
	OpNotIn   Operator = "notIn"
	OpLike    Operator = "like"
	OpILike   Operator = "ilike"
	OpIsNull  Operator = "isNull"
	OpNotNull Operator = "notNull"
	OpBetween Operator = "between"
)

// Logic is the kind of a Group.
type Logic string

// Logical combinators.
const (
	LogicAnd Logic = "and"
	LogicOr  Logic = "or"
	LogicNot Logic = "not"
)

// Leaf compares a field with an operand.
// The operand is a parameter value, a Column or an Expr; in and notIn take
// a non-empty slice or array, between takes exactly two bounds, isNull and
// notNull ignore it.
type Leaf struct {
	Field   string
	Op      Operator
	Operand interface{}
}

func (Leaf) condition() {}

// Group combines child conditions. A NOT group has exactly one child.
type Group struct {
	Logic    Logic
	Children []Condition
}

func (Group) condition() {}

// Eq generates an equality condition (field = value).
func Eq(field string, value interface{}) Condition {
	return Leaf{Field: field, Op: OpEq, Operand: value}
}

// Ne generates an inequality condition (field != value).
func Ne(field string, value interface{}) Condition {
	return Leaf{Field: field, Op: OpNe, Operand: value}
}

// Gt generates a greater-than condition (field > value).
func Gt(field string, value interface{}) Condition {
	return Leaf{Field: field, Op: OpGt, Operand: value}
}

// Gte generates a greater-than-or-equal condition (field >= value).
func Gte(field string, value interface{}) Condition {
	return Leaf{Field: field, Op: OpGte, Operand: value}
}

// Lt generates a less-than condition (field < value).
func Lt(field string, value interface{}) Condition {
	return Leaf{Field: field, Op: OpLt, Operand: value}
}

// Lte generates a less-than-or-equal condition (field <= value).
func Lte(field string, value interface{}) Condition {
	return Leaf{Field: field, Op: OpLte, Operand: value}
}

// In generates an IN condition. At least one value is required. A single
// slice argument is expanded, so In("id", ids) matches In("id", ids...).
func In(field string, values ...interface{}) Condition {
	return Leaf{Field: field, Op: OpIn, Operand: inOperand(values)}
}

// NotIn generates a NOT IN condition. At least one value is required.
// A single slice argument is expanded as in In.
func NotIn(field string, values ...interface{}) Condition {
	return Leaf{Field: field, Op: OpNotIn, Operand: inOperand(values)}
}

func inOperand(values []interface{}) interface{} {
	if len(values) == 1 {
		if items, ok := listItems(values[0]); ok {
			return items
		}
	}
	return values
}

// Like generates a case-sensitive pattern match. The pattern is passed as
// a parameter, wildcards are up to the caller.
func Like(field, pattern string) Condition {
	return Leaf{Field: field, Op: OpLike, Operand: pattern}
}

// ILike generates a case-insensitive pattern match using the dialect's
// operator (ILIKE on ClickHouse and PostgreSQL).
func ILike(field, pattern string) Condition {
	return Leaf{Field: field, Op: OpILike, Operand: pattern}
}

// IsNull generates "field IS NULL".
func IsNull(field string) Condition {
	return Leaf{Field: field, Op: OpIsNull}
}

// NotNull generates "field IS NOT NULL".
func NotNull(field string) Condition {
	return Leaf{Field: field, Op: OpNotNull}
}

// Between generates "field BETWEEN from AND to".
func Between(field string, from, to interface{}) Condition {
	return Leaf{Field: field, Op: OpBetween, Operand: []interface{}{from, to}}
}

// And combines conditions with AND. With no conditions it matches
// everything and contributes no filter.
func And(conds ...Condition) Condition {
	return Group{Logic: LogicAnd, Children: conds}
}

// Or combines conditions with OR. With no conditions it matches nothing.
func Or(conds ...Condition) Condition {
	return Group{Logic: LogicOr, Children: conds}
}

// Not negates a condition.
func Not(cond Condition) Condition {
	return Group{Logic: LogicNot, Children: []Condition{cond}}
}
