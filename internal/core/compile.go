package core

import (
	"fmt"
	"strings"
)

// truth is the constant value of a condition when it is known without
// looking at any row.
type truth int

const (
	truthUnknown truth = iota
	truthAlways
	truthNever
)

const (
	alwaysSQL = "1 = 1"
	neverSQL  = "1 = 0"
)

var comparisonSQL = map[Operator]string{
	OpEq:  "=",
	OpNe:  "!=",
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
}

// simplify folds empty groups into constants. An empty AND always holds, an
// empty OR never does; NOT flips them; AND drops children that always hold
// and OR drops children that never do. No parameters are touched, so a
// condition that folds away leaves the parameter list alone.
func simplify(c Condition) (Condition, truth) {
	g, ok := c.(Group)
	if !ok {
		return c, truthUnknown
	}

	switch g.Logic {
	case LogicNot:
		child, t := simplify(g.Children[0])
		switch t {
		case truthAlways:
			return nil, truthNever
		case truthNever:
			return nil, truthAlways
		}
		return Group{Logic: LogicNot, Children: []Condition{child}}, truthUnknown

	case LogicAnd, LogicOr:
		absorbing, neutral := truthNever, truthAlways
		if g.Logic == LogicOr {
			absorbing, neutral = truthAlways, truthNever
		}

		kept := make([]Condition, 0, len(g.Children))
		for _, child := range g.Children {
			n, t := simplify(child)
			switch t {
			case absorbing:
				return nil, absorbing
			case neutral:
				continue
			}
			kept = append(kept, n)
		}
		if len(kept) == 0 {
			return nil, neutral
		}
		return Group{Logic: g.Logic, Children: kept}, truthUnknown
	}
	return c, truthUnknown
}

// staged collects parameters for one clause. Placeholders are numbered as
// if the parameters were already appended; commit appends them only once
// the whole clause has been rendered, so a failing clause leaves the
// builder's parameters aligned with its text.
type staged struct {
	b      *Builder
	params []interface{}
}

func (b *Builder) stage() *staged {
	return &staged{b: b}
}

func (b *Builder) commit(s *staged) {
	b.params = append(b.params, s.params...)
	b.counter += len(s.params)
}

func (s *staged) param(v interface{}) (string, error) {
	enc, err := Encode(v)
	if err != nil {
		return "", err
	}
	ph := s.b.dialect.Placeholder(s.b.counter+len(s.params), string(enc.Tag))
	s.params = append(s.params, enc.Value)
	return ph, nil
}

// operand renders a value: a Column as an identifier, an Expr inline, and
// anything else as a parameter.
func (s *staged) operand(v interface{}) (string, error) {
	switch x := v.(type) {
	case Column:
		return s.b.quote(string(x))
	case Expr:
		return s.expr(x)
	case *Expr:
		if x != nil {
			return s.expr(*x)
		}
	}
	return s.param(v)
}

func (s *staged) expr(e Expr) (string, error) {
	at := e.markers()
	if len(at) != len(e.Args) {
		return "", reject(e.SQL, fmt.Sprintf("expression has %d markers but %d args", len(at), len(e.Args)))
	}
	if s.b.validator != nil {
		if err := s.b.validator.ValidateFragment(e.SQL); err != nil {
			return "", err
		}
	}
	if len(e.Args) == 0 {
		return e.SQL, nil
	}

	var sb strings.Builder
	last := 0
	for i, pos := range at {
		ph, err := s.operand(e.Args[i])
		if err != nil {
			return "", err
		}
		sb.WriteString(e.SQL[last:pos])
		sb.WriteString(ph)
		last = pos + 1
	}
	sb.WriteString(e.SQL[last:])
	return sb.String(), nil
}

func (s *staged) lower(c Condition, nested bool) (string, error) {
	switch n := c.(type) {
	case Leaf:
		return s.leaf(n)

	case Expr:
		// Raw text may hold its own OR, so it is always parenthesized.
		sql, err := s.expr(n)
		if err != nil {
			return "", err
		}
		return "(" + sql + ")", nil

	case Group:
		if n.Logic == LogicNot {
			inner, err := s.lowerBare(n.Children[0])
			if err != nil {
				return "", err
			}
			return "NOT (" + inner + ")", nil
		}

		joined, err := s.join(n)
		if err != nil {
			return "", err
		}
		if len(n.Children) > 1 || nested {
			return "(" + joined + ")", nil
		}
		return joined, nil
	}
	return "", reject(fmt.Sprintf("%T", c), "unsupported condition type")
}

// lowerBare renders c without outer parentheses, for use inside NOT (...).
func (s *staged) lowerBare(c Condition) (string, error) {
	switch n := c.(type) {
	case Group:
		if n.Logic != LogicNot {
			return s.join(n)
		}
	case Expr:
		return s.expr(n)
	}
	return s.lower(c, false)
}

func (s *staged) join(g Group) (string, error) {
	sep := " AND "
	if g.Logic == LogicOr {
		sep = " OR "
	}

	parts := make([]string, 0, len(g.Children))
	for _, child := range g.Children {
		part, err := s.lower(child, true)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, sep), nil
}

func (s *staged) leaf(l Leaf) (string, error) {
	id, err := s.b.quote(l.Field)
	if err != nil {
		return "", err
	}

	switch l.Op {
	case OpIsNull:
		return id + " IS NULL", nil

	case OpNotNull:
		return id + " IS NOT NULL", nil

	case OpIn, OpNotIn:
		items, ok := listItems(l.Operand)
		if !ok || len(items) == 0 {
			return "", reject(fmt.Sprintf("%v", l.Operand), string(l.Op)+" on "+l.Field+" requires a non-empty list")
		}
		phs := make([]string, 0, len(items))
		for _, item := range items {
			ph, err := s.operand(item)
			if err != nil {
				return "", err
			}
			phs = append(phs, ph)
		}
		keyword := "IN"
		if l.Op == OpNotIn {
			keyword = "NOT IN"
		}
		return id + " " + keyword + " (" + strings.Join(phs, ", ") + ")", nil

	case OpBetween:
		items, ok := listItems(l.Operand)
		if !ok || len(items) != 2 {
			return "", reject(fmt.Sprintf("%v", l.Operand), "between on "+l.Field+" requires exactly two bounds")
		}
		from, err := s.operand(items[0])
		if err != nil {
			return "", err
		}
		to, err := s.operand(items[1])
		if err != nil {
			return "", err
		}
		return id + " BETWEEN " + from + " AND " + to, nil

	case OpLike, OpILike:
		ph, err := s.operand(l.Operand)
		if err != nil {
			return "", err
		}
		keyword := "LIKE"
		if l.Op == OpILike {
			keyword = s.b.dialect.CaseInsensitiveLike()
		}
		return id + " " + keyword + " " + ph, nil
	}

	sqlOp, ok := comparisonSQL[l.Op]
	if !ok {
		return "", reject(string(l.Op), "unknown operator")
	}
	ph, err := s.operand(l.Operand)
	if err != nil {
		return "", err
	}
	return id + " " + sqlOp + " " + ph, nil
}

// compiled is a condition ready to be placed after a keyword. When t is
// known, sql is empty and nothing has been staged.
type compiled struct {
	sql   string
	t     truth
	stage *staged
}

// compile normalizes, simplifies and lowers c against the builder's current
// parameter position. Nothing is committed.
func (b *Builder) compile(c Condition) (compiled, error) {
	node, err := normalize(c)
	if err != nil {
		return compiled{}, err
	}
	node, t := simplify(node)
	if t != truthUnknown {
		return compiled{t: t}, nil
	}

	s := b.stage()
	sql, err := s.lower(node, false)
	if err != nil {
		return compiled{}, err
	}
	return compiled{sql: sql, stage: s}, nil
}

// text renders the condition, spelling out constants.
func (c compiled) text() string {
	switch c.t {
	case truthAlways:
		return alwaysSQL
	case truthNever:
		return neverSQL
	}
	return c.sql
}

// Compile lowers a condition on its own, without a statement around it.
// A condition that always holds compiles to an empty fragment; one that
// never holds compiles to "1 = 0".
//
// Example:
//
//	stmt, err := Compile(Filter{"$or": []Filter{{"a": 1}, {"b": 2}}})
//	// stmt.SQL:    (`a` = {param0:Int32} OR `b` = {param1:Int32})
//	// stmt.Params: [1 2]
func Compile(c Condition, opts ...Option) (*Statement, error) {
	b := NewBuilder(opts...)
	cc, err := b.compile(c)
	if err != nil {
		b.rejected(err)
		return nil, err
	}
	stmt := &Statement{}
	switch cc.t {
	case truthNever:
		stmt.SQL = neverSQL
	case truthUnknown:
		b.commit(cc.stage)
		stmt.SQL = cc.sql
		stmt.Params = b.params
	}
	return stmt, nil
}
