package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCompile_Leaves(t *testing.T) {
	tests := []struct {
		name       string
		cond       Condition
		wantSQL    string
		wantParams []interface{}
	}{
		{"eq", Eq("a", 1), "`a` = {param0:Int32}", []interface{}{1}},
		{"ne", Ne("a", "x"), "`a` != {param0:String}", []interface{}{"x"}},
		{"gt", Gt("a", 1.5), "`a` > {param0:Float64}", []interface{}{1.5}},
		{"gte", Gte("a", int64(2)), "`a` >= {param0:Int64}", []interface{}{int64(2)}},
		{"lt", Lt("a", 3), "`a` < {param0:Int32}", []interface{}{3}},
		{"lte", Lte("a", 4), "`a` <= {param0:Int32}", []interface{}{4}},
		{
			"in", In("id", 1, 2, 3),
			"`id` IN ({param0:Int32}, {param1:Int32}, {param2:Int32})",
			[]interface{}{1, 2, 3},
		},
		{"not in", NotIn("id", "a"), "`id` NOT IN ({param0:String})", []interface{}{"a"}},
		{
			"in single slice argument", In("id", []int{1, 2}),
			"`id` IN ({param0:Int32}, {param1:Int32})",
			[]interface{}{1, 2},
		},
		{
			"not in single slice argument", NotIn("name", []string{"a", "b"}),
			"`name` NOT IN ({param0:String}, {param1:String})",
			[]interface{}{"a", "b"},
		},
		{
			"in typed slice", Leaf{Field: "id", Op: OpIn, Operand: []int64{7, 8}},
			"`id` IN ({param0:Int64}, {param1:Int64})",
			[]interface{}{int64(7), int64(8)},
		},
		{"like", Like("name", "a%"), "`name` LIKE {param0:String}", []interface{}{"a%"}},
		{"ilike", ILike("name", "a%"), "`name` ILIKE {param0:String}", []interface{}{"a%"}},
		{"is null", IsNull("deleted_at"), "`deleted_at` IS NULL", nil},
		{"not null", NotNull("deleted_at"), "`deleted_at` IS NOT NULL", nil},
		{
			"between", Between("age", 18, 65),
			"`age` BETWEEN {param0:Int32} AND {param1:Int32}",
			[]interface{}{18, 65},
		},
		{"column operand", Eq("a.id", Col("b.a_id")), "`a`.`id` = `b`.`a_id`", nil},
		{
			"expr operand", Gt("ts", Raw("now() - ?", 3600)),
			"`ts` > now() - {param0:Int32}",
			[]interface{}{3600},
		},
		{"eq nil", Eq("a", nil), "`a` = {param0:Nullable(String)}", []interface{}{nil}},
		{"flag", Eq("active", true), "`active` = {param0:UInt8}", []interface{}{uint8(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := Compile(tt.cond)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, stmt.SQL)
			if tt.wantParams == nil {
				assert.Empty(t, stmt.Params)
			} else {
				assert.Equal(t, tt.wantParams, stmt.Params)
			}
		})
	}
}

func TestCompile_Groups(t *testing.T) {
	tests := []struct {
		name    string
		cond    Condition
		wantSQL string
	}{
		{
			name:    "nested or is parenthesized",
			cond:    And(Eq("a", 1), Or(Eq("b", 2), Eq("c", 3))),
			wantSQL: "(`a` = {param0:Int32} AND (`b` = {param1:Int32} OR `c` = {param2:Int32}))",
		},
		{
			name:    "nested and under or",
			cond:    Or(And(Eq("a", 1), Eq("b", 2)), Eq("c", 3)),
			wantSQL: "((`a` = {param0:Int32} AND `b` = {param1:Int32}) OR `c` = {param2:Int32})",
		},
		{
			name:    "single child group at top",
			cond:    And(Eq("a", 1)),
			wantSQL: "`a` = {param0:Int32}",
		},
		{
			name:    "single child group nested",
			cond:    Or(Eq("a", 1), And(Eq("b", 2))),
			wantSQL: "(`a` = {param0:Int32} OR (`b` = {param1:Int32}))",
		},
		{
			name:    "not leaf",
			cond:    Not(Eq("a", 1)),
			wantSQL: "NOT (`a` = {param0:Int32})",
		},
		{
			name:    "not group",
			cond:    Not(And(Eq("a", 1), Eq("b", 2))),
			wantSQL: "NOT (`a` = {param0:Int32} AND `b` = {param1:Int32})",
		},
		{
			name:    "not nested",
			cond:    And(Eq("a", 1), Not(Or(Eq("b", 2), Eq("c", 3)))),
			wantSQL: "(`a` = {param0:Int32} AND NOT (`b` = {param1:Int32} OR `c` = {param2:Int32}))",
		},
		{
			name:    "raw expression nested",
			cond:    And(Eq("a", 1), Raw("x = 1 OR y = 2")),
			wantSQL: "(`a` = {param0:Int32} AND (x = 1 OR y = 2))",
		},
		{
			name:    "raw expression alone",
			cond:    Raw("x = ?", 5),
			wantSQL: "(x = {param0:Int32})",
		},
		{
			name:    "raw expression negated",
			cond:    Not(Raw("x = 1 OR y = 2")),
			wantSQL: "NOT (x = 1 OR y = 2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := Compile(tt.cond)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, stmt.SQL)
		})
	}
}

func TestCompile_QuotedMarkersAreText(t *testing.T) {
	tests := []struct {
		name       string
		cond       Condition
		wantSQL    string
		wantParams []interface{}
	}{
		{
			name:       "single quoted",
			cond:       Raw("a = '?' AND b = ?", 1),
			wantSQL:    "(a = '?' AND b = {param0:Int32})",
			wantParams: []interface{}{1},
		},
		{
			name:       "escaped quote inside literal",
			cond:       Raw(`a = 'it\'s ?' AND b = ?`, 2),
			wantSQL:    `(a = 'it\'s ?' AND b = {param0:Int32})`,
			wantParams: []interface{}{2},
		},
		{
			name:       "doubled quote inside literal",
			cond:       Raw("a = 'x''?' AND b = ?", 3),
			wantSQL:    "(a = 'x''?' AND b = {param0:Int32})",
			wantParams: []interface{}{3},
		},
		{
			name:       "quoted identifier",
			cond:       Raw("`odd?col` = ?", "v"),
			wantSQL:    "(`odd?col` = {param0:String})",
			wantParams: []interface{}{"v"},
		},
		{
			name:    "double quoted",
			cond:    Raw(`"q?" = 1`),
			wantSQL: `("q?" = 1)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := Compile(tt.cond)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, stmt.SQL)
			assert.Equal(t, tt.wantParams, stmt.Params)
		})
	}

	_, err := Compile(Raw("a = '?'", 1))
	assert.True(t, errors.Is(err, ErrInjection), "a quoted marker does not take an argument")
}

func TestCompile_ParamsDepthFirst(t *testing.T) {
	stmt, err := Compile(Or(
		And(Eq("a", 1), In("b", 2, 3)),
		Not(Between("c", 4, 5)),
		Eq("d", 6),
	))
	require.NoError(t, err)
	assert.Equal(t, []interface{}{1, 2, 3, 4, 5, 6}, stmt.Params)
	assert.Equal(t,
		"((`a` = {param0:Int32} AND `b` IN ({param1:Int32}, {param2:Int32})) OR NOT (`c` BETWEEN {param3:Int32} AND {param4:Int32}) OR `d` = {param5:Int32})",
		stmt.SQL)
}

func TestCompile_EmptyGroups(t *testing.T) {
	tests := []struct {
		name    string
		cond    Condition
		wantSQL string
	}{
		{"empty and", And(), ""},
		{"empty or", Or(), "1 = 0"},
		{"not empty and", Not(And()), "1 = 0"},
		{"not empty or", Not(Or()), ""},
		{"and with contradiction", And(Eq("a", 1), Or()), "1 = 0"},
		{"or with tautology", Or(Eq("a", 1), And()), ""},
		{"and drops tautology", And(Eq("a", 1), And()), "`a` = {param0:Int32}"},
		{"or drops contradiction", Or(Or(), Eq("a", 1)), "`a` = {param0:Int32}"},
		{"empty filter", Filter{}, ""},
		{"nil filter", Filter(nil), ""},
		{"empty $or", Filter{"$or": []Filter{}}, "1 = 0"},
		{"empty $and", Filter{"$and": []Filter{}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := Compile(tt.cond)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, stmt.SQL)
			if tt.wantSQL == "" || tt.wantSQL == "1 = 0" {
				assert.Empty(t, stmt.Params)
			}
		})
	}
}

func TestCompile_SurfaceSyntax(t *testing.T) {
	tests := []struct {
		name    string
		cond    Condition
		wantSQL string
	}{
		{
			name:    "implicit equality",
			cond:    Filter{"id": 1},
			wantSQL: "`id` = {param0:Int32}",
		},
		{
			name:    "several fields in sorted order",
			cond:    Filter{"name": "x", "age": 3},
			wantSQL: "(`age` = {param0:Int32} AND `name` = {param1:String})",
		},
		{
			name: "dollar or",
			cond: Filter{"$or": []Filter{
				{"a": 1},
				{"b": Filter{"$in": []int{2, 3}}},
			}},
			wantSQL: "(`a` = {param0:Int32} OR `b` IN ({param1:Int32}, {param2:Int32}))",
		},
		{
			name: "native or",
			cond: Filter{"or": []interface{}{
				Filter{"a": 1},
				map[string]interface{}{"b": map[string]interface{}{"in": []int{2, 3}}},
			}},
			wantSQL: "(`a` = {param0:Int32} OR `b` IN ({param1:Int32}, {param2:Int32}))",
		},
		{
			name:    "several operators on one field",
			cond:    Filter{"age": bson.M{"$gte": 18, "$lt": 65}},
			wantSQL: "(`age` >= {param0:Int32} AND `age` < {param1:Int32})",
		},
		{
			name:    "$nin",
			cond:    Filter{"status": Filter{"$nin": bson.A{"banned", "deleted"}}},
			wantSQL: "`status` NOT IN ({param0:String}, {param1:String})",
		},
		{
			name:    "$isNull false",
			cond:    Filter{"deleted_at": Filter{"$isNull": false}},
			wantSQL: "`deleted_at` IS NOT NULL",
		},
		{
			name:    "notNull false",
			cond:    Filter{"deleted_at": Filter{"notNull": false}},
			wantSQL: "`deleted_at` IS NULL",
		},
		{
			name:    "$between",
			cond:    Filter{"age": Filter{"$between": []int{18, 65}}},
			wantSQL: "`age` BETWEEN {param0:Int32} AND {param1:Int32}",
		},
		{
			name:    "$not on a field",
			cond:    Filter{"age": Filter{"$not": Filter{"$gt": 5}}},
			wantSQL: "NOT (`age` > {param0:Int32})",
		},
		{
			name:    "$not document",
			cond:    Filter{"$not": Filter{"a": 1}},
			wantSQL: "NOT (`a` = {param0:Int32})",
		},
		{
			name:    "not list",
			cond:    Filter{"not": []Filter{{"a": 1}, {"b": 2}}},
			wantSQL: "NOT (`a` = {param0:Int32} AND `b` = {param1:Int32})",
		},
		{
			name:    "$and with single document",
			cond:    Filter{"$and": Filter{"a": 1}},
			wantSQL: "`a` = {param0:Int32}",
		},
		{
			name:    "conditions inside filter lists",
			cond:    Filter{"$or": []Condition{Eq("a", 1), Filter{"b": 2}}},
			wantSQL: "(`a` = {param0:Int32} OR `b` = {param1:Int32})",
		},
		{
			name:    "plain nested map is a value",
			cond:    Filter{"meta": map[string]interface{}{"k": "v"}},
			wantSQL: "`meta` = {param0:String}",
		},
		{
			name: "document keeps order",
			cond: Document(bson.D{
				{Key: "z", Value: 1},
				{Key: "a", Value: bson.D{{Key: "$lt", Value: 5}, {Key: "$gt", Value: 1}}},
			}),
			wantSQL: "(`z` = {param0:Int32} AND (`a` < {param1:Int32} AND `a` > {param2:Int32}))",
		},
		{
			name:    "dollar leaf operator",
			cond:    Leaf{Field: "a", Op: "$gte", Operand: 1},
			wantSQL: "`a` >= {param0:Int32}",
		},
		{
			name:    "dollar group logic",
			cond:    Group{Logic: "$or", Children: []Condition{Eq("a", 1), Eq("b", 2)}},
			wantSQL: "(`a` = {param0:Int32} OR `b` = {param1:Int32})",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := Compile(tt.cond)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, stmt.SQL)
		})
	}
}

func TestCompile_TypedOperatorMaps(t *testing.T) {
	tests := []struct {
		name       string
		cond       Condition
		wantSQL    string
		wantParams []interface{}
	}{
		{
			name:       "map of ints",
			cond:       Filter{"age": map[string]int{"$gt": 18}},
			wantSQL:    "`age` > {param0:Int32}",
			wantParams: []interface{}{18},
		},
		{
			name:       "map of strings",
			cond:       Filter{"name": map[string]string{"$ne": "x"}},
			wantSQL:    "`name` != {param0:String}",
			wantParams: []interface{}{"x"},
		},
		{
			name:       "logic list of typed maps",
			cond:       Filter{"$or": []map[string]int{{"a": 1}, {"b": 2}}},
			wantSQL:    "(`a` = {param0:Int32} OR `b` = {param1:Int32})",
			wantParams: []interface{}{1, 2},
		},
		{
			name:       "plain map stays a JSON value",
			cond:       Filter{"meta": map[string]string{"k": "v"}},
			wantSQL:    "`meta` = {param0:String}",
			wantParams: []interface{}{`{"k":"v"}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := Compile(tt.cond)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, stmt.SQL)
			assert.Equal(t, tt.wantParams, stmt.Params)
		})
	}
}

func TestCompile_DollarAndNativeAgree(t *testing.T) {
	dollar := Filter{
		"$and": []Filter{
			{"age": Filter{"$gte": 18, "$lte": 65}},
			{"$or": []Filter{{"name": Filter{"$like": "a%"}}, {"email": Filter{"$isNull": true}}}},
		},
	}
	native := Filter{
		"and": []Filter{
			{"age": Filter{"gte": 18, "lte": 65}},
			{"or": []Filter{{"name": Filter{"like": "a%"}}, {"email": Filter{"isNull": true}}}},
		},
	}
	tree := And(
		And(Gte("age", 18), Lte("age", 65)),
		Or(Like("name", "a%"), IsNull("email")),
	)

	want, err := Compile(tree)
	require.NoError(t, err)
	for _, cond := range []Condition{dollar, native} {
		got, err := Compile(cond)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestCompile_Rejected(t *testing.T) {
	tests := []struct {
		name string
		cond Condition
	}{
		{"nil", nil},
		{"in without values", In("id")},
		{"in scalar", Leaf{Field: "id", Op: OpIn, Operand: 5}},
		{"in bytes", Leaf{Field: "id", Op: OpIn, Operand: []byte("ab")}},
		{"between one bound", Leaf{Field: "age", Op: OpBetween, Operand: []int{1}}},
		{"between three bounds", Filter{"age": Filter{"$between": []int{1, 2, 3}}}},
		{"unknown operator", Leaf{Field: "a", Op: "near", Operand: 1}},
		{"unknown logic", Group{Logic: "xor"}},
		{"not with two children", Group{Logic: LogicNot, Children: []Condition{Eq("a", 1), Eq("b", 2)}}},
		{"nil child", And(Eq("a", 1), nil)},
		{"bad field", Eq("a;b", 1)},
		{"bad column operand", Eq("a", Col("b c"))},
		{"operator without field", Filter{"$gt": 1}},
		{"mixed operators and keys", Filter{"a": Filter{"$gt": 1, "b": 2}}},
		{"or of scalars", Filter{"$or": []int{1, 2}}},
		{"expr marker mismatch", Raw("a = ? AND b = ?", 1)},
		{"unserializable value", Eq("a", map[string]interface{}{"f": func() {}})},
		{"misspelled operator", Filter{"age": Filter{"$gtee": 18}}},
		{"unsupported operator", Filter{"name": Filter{"$regex": "a.*"}}},
		{"unknown operator next to known", Filter{"age": Filter{"$gt": 1, "$near": 2}}},
		{"unknown operator in typed map", Filter{"age": map[string]int{"$gtee": 18}}},
		{"unknown top-level operator", Filter{"$where": "1"}},
		{"logic inside field value", Filter{"age": Filter{"$or": []Filter{{"a": 1}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := Compile(tt.cond)
			require.Error(t, err)
			assert.Nil(t, stmt)
			assert.True(t, errors.Is(err, ErrInjection), "error %v", err)
		})
	}
}
