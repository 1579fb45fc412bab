package core

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Filter is a map-shaped condition. Keys are field names, logical keys
// (and, or, not) or, inside a field's value, operator names. Native and
// "$"-prefixed spellings are both accepted. Keys are visited in sorted
// order; use Document when the order of parameters matters.
//
// Example:
//
//	quill.Filter{
//	    "status": "active",                       // `status` = {param0:String}
//	    "age":    quill.Filter{"$gte": 18},       // `age` >= {param1:Int32}
//	    "$or": []quill.Filter{{"role": "admin"}, {"role": "owner"}},
//	}
type Filter map[string]interface{}

func (Filter) condition() {}

// Document is an ordered Filter. Entries are visited in document order.
//
// Example:
//
//	quill.Document(bson.D{{Key: "age", Value: bson.D{{Key: "$gt", Value: 18}}}})
type Document bson.D

func (Document) condition() {}

var operatorNames = map[string]Operator{
	"eq":       OpEq,
	"$eq":      OpEq,
	"ne":       OpNe,
	"$ne":      OpNe,
	"gt":       OpGt,
	"$gt":      OpGt,
	"gte":      OpGte,
	"$gte":     OpGte,
	"lt":       OpLt,
	"$lt":      OpLt,
	"lte":      OpLte,
	"$lte":     OpLte,
	"in":       OpIn,
	"$in":      OpIn,
	"notIn":    OpNotIn,
	"$notIn":   OpNotIn,
	"$nin":     OpNotIn,
	"like":     OpLike,
	"$like":    OpLike,
	"ilike":    OpILike,
	"$ilike":   OpILike,
	"isNull":   OpIsNull,
	"$isNull":  OpIsNull,
	"notNull":  OpNotNull,
	"$notNull": OpNotNull,
	"between":  OpBetween,
	"$between": OpBetween,
}

var logicNames = map[string]Logic{
	"and":  LogicAnd,
	"$and": LogicAnd,
	"or":   LogicOr,
	"$or":  LogicOr,
	"not":  LogicNot,
	"$not": LogicNot,
}

type entry struct {
	key   string
	value interface{}
}

// normalize rewrites any accepted condition into the canonical tree of
// Leaf, Group and Expr nodes. It is the only place that knows about the
// surface spellings.
func normalize(c Condition) (Condition, error) {
	switch n := c.(type) {
	case nil:
		return nil, reject("<nil>", "nil condition")
	case Leaf:
		return normalizeLeaf(n)
	case Group:
		return normalizeGroup(n)
	case Expr:
		return n, nil
	case Filter:
		return normalizeDocument(sortedEntries(n))
	case Document:
		return normalizeDocument(orderedEntries(primitive.D(n)))
	}
	return nil, reject(fmt.Sprintf("%T", c), "unsupported condition type")
}

func normalizeLeaf(l Leaf) (Condition, error) {
	op, ok := operatorNames[string(l.Op)]
	if !ok {
		return nil, reject(string(l.Op), "unknown operator")
	}
	l.Op = op

	if op == OpIsNull || op == OpNotNull {
		if b, ok := l.Operand.(bool); ok && !b {
			if op == OpIsNull {
				l.Op = OpNotNull
			} else {
				l.Op = OpIsNull
			}
		}
		l.Operand = nil
	}
	return l, nil
}

func normalizeGroup(g Group) (Condition, error) {
	logic, ok := logicNames[string(g.Logic)]
	if !ok {
		return nil, reject(string(g.Logic), "unknown logical operator")
	}
	if logic == LogicNot && len(g.Children) != 1 {
		return nil, reject(string(g.Logic), fmt.Sprintf("not takes exactly one condition, got %d", len(g.Children)))
	}

	children := make([]Condition, 0, len(g.Children))
	for _, child := range g.Children {
		n, err := normalize(child)
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	return Group{Logic: logic, Children: children}, nil
}

// normalizeDocument turns document entries into a condition. A single entry
// stands alone, several are combined with AND, none is an empty AND.
func normalizeDocument(entries []entry) (Condition, error) {
	nodes := make([]Condition, 0, len(entries))
	for _, e := range entries {
		n, err := normalizeEntry(e.key, e.value)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if len(nodes) == 1 {
		return nodes[0], nil
	}
	return Group{Logic: LogicAnd, Children: nodes}, nil
}

func normalizeEntry(key string, value interface{}) (Condition, error) {
	if logic, ok := logicNames[key]; ok {
		return normalizeLogic(key, logic, value)
	}
	if _, ok := operatorNames[key]; ok {
		return nil, reject(key, "operator used without a field")
	}
	if strings.HasPrefix(key, "$") {
		return nil, reject(key, "unknown operator")
	}

	entries, ok := documentEntries(value)
	if ok {
		for _, e := range entries {
			if !isKnownKey(e.key) && strings.HasPrefix(e.key, "$") {
				return nil, reject(e.key, "unknown operator in the value of "+key)
			}
		}
	}
	if !ok || !hasOperator(entries) {
		return normalizeLeaf(Leaf{Field: key, Op: OpEq, Operand: value})
	}

	nodes := make([]Condition, 0, len(entries))
	for _, e := range entries {
		if logic, ok := logicNames[e.key]; ok && logic == LogicNot {
			// {field: {$not: {$gt: 5}}}
			child, err := normalizeEntry(key, e.value)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, Group{Logic: LogicNot, Children: []Condition{child}})
			continue
		}
		if _, ok := logicNames[e.key]; ok {
			return nil, reject(e.key, "only not may appear in the value of "+key)
		}
		op, ok := operatorNames[e.key]
		if !ok {
			return nil, reject(e.key, "cannot mix operators and plain keys in the value of "+key)
		}
		n, err := normalizeLeaf(Leaf{Field: key, Op: op, Operand: e.value})
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if len(nodes) == 1 {
		return nodes[0], nil
	}
	return Group{Logic: LogicAnd, Children: nodes}, nil
}

func normalizeLogic(key string, logic Logic, value interface{}) (Condition, error) {
	if logic == LogicNot {
		var child Condition
		var err error
		if items, ok := listItems(value); ok {
			child, err = normalizeItems(key, LogicAnd, items)
		} else {
			child, err = normalizeValue(key, value)
		}
		if err != nil {
			return nil, err
		}
		return Group{Logic: LogicNot, Children: []Condition{child}}, nil
	}

	items, ok := listItems(value)
	if !ok {
		items = []interface{}{value}
	}
	return normalizeItems(key, logic, items)
}

func normalizeItems(key string, logic Logic, items []interface{}) (Condition, error) {
	children := make([]Condition, 0, len(items))
	for _, item := range items {
		n, err := normalizeValue(key, item)
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	return Group{Logic: logic, Children: children}, nil
}

// normalizeValue normalizes an element of a logical list.
func normalizeValue(key string, v interface{}) (Condition, error) {
	if c, ok := v.(Condition); ok {
		return normalize(c)
	}
	if entries, ok := documentEntries(v); ok {
		return normalizeDocument(entries)
	}
	return nil, reject(fmt.Sprintf("%v", v), key+" expects conditions")
}

func isKnownKey(key string) bool {
	if _, ok := operatorNames[key]; ok {
		return true
	}
	_, ok := logicNames[key]
	return ok
}

func hasOperator(entries []entry) bool {
	for _, e := range entries {
		if isKnownKey(e.key) {
			return true
		}
	}
	return false
}

// documentEntries returns the entries of a map-shaped or ordered document.
func documentEntries(v interface{}) ([]entry, bool) {
	switch d := v.(type) {
	case Filter:
		return sortedEntries(d), true
	case map[string]interface{}:
		return sortedEntries(d), true
	case primitive.M:
		return sortedEntries(d), true
	case Document:
		return orderedEntries(primitive.D(d)), true
	case primitive.D:
		return orderedEntries(d), true
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	m := make(map[string]interface{}, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return sortedEntries(m), true
}

func sortedEntries(m map[string]interface{}) []entry {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, entry{key: k, value: m[k]})
	}
	return entries
}

func orderedEntries(d primitive.D) []entry {
	entries := make([]entry, 0, len(d))
	for _, e := range d {
		entries = append(entries, entry{key: e.Key, value: e.Value})
	}
	return entries
}

// listItems returns the elements of a slice or array operand.
// Byte slices and byte arrays (such as UUIDs) are values, not lists.
func listItems(v interface{}) ([]interface{}, bool) {
	switch l := v.(type) {
	case nil, []byte, primitive.D, Document:
		return nil, false
	case []interface{}:
		return l, true
	case primitive.A:
		return l, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	items := make([]interface{}, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}
