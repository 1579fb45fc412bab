package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coregx/quill/internal/security"
	"github.com/coregx/quill/internal/util"
)

// Order is one ORDER BY term.
type Order struct {
	Field     string
	Direction Direction
}

// SelectOptions configures SelectStatement.
type SelectOptions struct {
	// Fields to select. Empty selects "*".
	Fields []string
	// Final adds the ClickHouse FINAL modifier.
	Final bool
	// Where is a flat AND of equalities, emitted in sorted key order.
	Where map[string]interface{}
	// OrderBy terms, in order.
	OrderBy []Order
	// Limit and Offset are emitted when not nil.
	Limit  *int
	Offset *int
}

// UpdateOptions configures UpdateStatement.
type UpdateOptions struct {
	// Set holds the column assignments; it must not be empty.
	Set map[string]interface{}
	// Where is a flat AND of equalities. Empty updates every row.
	Where map[string]interface{}
}

// ColumnDef is one column of CreateTableStatement.
type ColumnDef struct {
	Name string
	Type string
}

// CreateTableOptions configures CreateTableStatement.
type CreateTableOptions struct {
	Columns []ColumnDef
	// Engine defaults to MergeTree().
	Engine string
	// OrderBy defaults to tuple() for MergeTree-family engines.
	OrderBy []string
	// PartitionBy holds column names or function calls such as
	// toYYYYMM(created_at).
	PartitionBy []string
	PrimaryKey  []string
	IfNotExists bool
}

// DropTableOptions configures DropTableStatement.
type DropTableOptions struct {
	IfExists bool
}

// DefaultEngine is the table engine used when CreateTableOptions.Engine is empty.
const DefaultEngine = "MergeTree()"

// SelectStatement builds SELECT fields FROM table [WHERE ...] [ORDER BY ...]
// [LIMIT n] [OFFSET n].
func SelectStatement(table string, o SelectOptions, opts ...Option) (*Statement, error) {
	fields := o.Fields
	if len(fields) == 0 {
		fields = []string{"*"}
	}

	b := NewBuilder(opts...).Select(fields...).From(table)
	if o.Final {
		b.Final()
	}
	b.whereEquals(o.Where)
	for _, ord := range o.OrderBy {
		b.OrderBy(ord.Field, ord.Direction)
	}
	if o.Limit != nil {
		b.Limit(*o.Limit)
	}
	if o.Offset != nil {
		b.Offset(*o.Offset)
	}
	return b.Build()
}

// InsertStatement builds a multi-row INSERT. The columns are the sorted
// union of all record keys; a record missing a column binds NULL for it.
func InsertStatement(table string, records []map[string]interface{}, opts ...Option) (*Statement, error) {
	b := NewBuilder(opts...)
	if len(records) == 0 {
		return b.rejectInput(table, "insert requires at least one record")
	}

	seen := make(map[string]interface{})
	for _, record := range records {
		for col := range record {
			seen[col] = nil
		}
	}
	if len(seen) == 0 {
		return b.rejectInput(table, "insert records have no columns")
	}
	columns := getKeys(seen)

	rows := make([][]interface{}, 0, len(records))
	for _, record := range records {
		row := make([]interface{}, len(columns))
		for i, col := range columns {
			row[i] = record[col]
		}
		rows = append(rows, row)
	}

	return b.InsertInto(table, columns...).Values(rows...).Build()
}

// InsertStructsStatement is InsertStatement over structs. rows is a struct,
// a struct pointer, or a slice of either; columns come from db tags, a
// field tagged db:"-" is skipped and an untagged field uses its name.
//
// Example:
//
//	type Event struct {
//	    ID   uint64 `db:"id"`
//	    Kind string `db:"kind"`
//	}
//	InsertStructsStatement("events", []Event{{1, "click"}})
//	// INSERT INTO `events` (`id`, `kind`) VALUES ({param0:Int64}, {param1:String})
func InsertStructsStatement(table string, rows interface{}, opts ...Option) (*Statement, error) {
	records, err := util.StructsToMaps(rows)
	if err != nil {
		return NewBuilder(opts...).rejectInput(fmt.Sprintf("%T", rows), err.Error())
	}
	return InsertStatement(table, records, opts...)
}

// UpdateStatement builds UPDATE table SET ... [WHERE ...].
func UpdateStatement(table string, o UpdateOptions, opts ...Option) (*Statement, error) {
	b := NewBuilder(opts...)
	if len(o.Set) == 0 {
		return b.rejectInput(table, "update requires at least one column to set")
	}
	b.Update(table).Set(o.Set).whereEquals(o.Where)
	return b.Build()
}

// DeleteStatement builds DELETE FROM table WHERE .... An empty filter is
// rejected rather than deleting every row.
func DeleteStatement(table string, where map[string]interface{}, opts ...Option) (*Statement, error) {
	b := NewBuilder(opts...)
	if len(where) == 0 {
		return b.rejectInput(table, "delete requires a filter")
	}
	return b.DeleteFrom(table).whereEquals(where).Build()
}

// CreateTableStatement builds a ClickHouse CREATE TABLE statement.
// Clauses follow the engine in the order ORDER BY, PARTITION BY,
// PRIMARY KEY. Column types and the engine must pass
// security.ValidateTypeExpr; key elements are column names or function
// calls over them.
//
// Example:
//
//	CreateTableStatement("events", CreateTableOptions{
//	    Columns: []ColumnDef{{Name: "id", Type: "UInt64"}, {Name: "ts", Type: "DateTime"}},
//	    OrderBy: []string{"id"},
//	})
//	// CREATE TABLE `events` (`id` UInt64, `ts` DateTime) ENGINE = MergeTree() ORDER BY `id`
func CreateTableStatement(table string, o CreateTableOptions, opts ...Option) (*Statement, error) {
	b := NewBuilder(opts...)
	if len(o.Columns) == 0 {
		return b.rejectInput(table, "create table requires at least one column")
	}

	keyword := "CREATE TABLE"
	if o.IfNotExists {
		keyword += " IF NOT EXISTS"
	}
	b.keywordIdentifier(keyword, table)
	if b.err != nil {
		return nil, b.err
	}

	defs := make([]string, 0, len(o.Columns))
	for _, col := range o.Columns {
		id, err := b.quote(col.Name)
		if err != nil {
			return b.failed(err)
		}
		if err := security.ValidateTypeExpr(col.Type); err != nil {
			return b.failed(err)
		}
		defs = append(defs, id+" "+col.Type)
	}
	b.emit("(" + strings.Join(defs, ", ") + ")")

	engine := o.Engine
	if engine == "" {
		engine = DefaultEngine
	}
	if err := security.ValidateTypeExpr(engine); err != nil {
		return b.failed(err)
	}
	b.emit("ENGINE = " + engine)

	switch {
	case len(o.OrderBy) > 0:
		key, err := b.tableKey(o.OrderBy)
		if err != nil {
			return b.failed(err)
		}
		b.emit("ORDER BY " + key)
	case isMergeTree(engine):
		b.emit("ORDER BY tuple()")
	}

	if len(o.PartitionBy) > 0 {
		key, err := b.tableKey(o.PartitionBy)
		if err != nil {
			return b.failed(err)
		}
		b.emit("PARTITION BY " + key)
	}

	if len(o.PrimaryKey) > 0 {
		key, err := b.tableKey(o.PrimaryKey)
		if err != nil {
			return b.failed(err)
		}
		b.emit("PRIMARY KEY " + key)
	}

	return b.Build()
}

// DropTableStatement builds DROP TABLE [IF EXISTS] table.
func DropTableStatement(table string, o DropTableOptions, opts ...Option) (*Statement, error) {
	keyword := "DROP TABLE"
	if o.IfExists {
		keyword += " IF EXISTS"
	}
	return NewBuilder(opts...).keywordIdentifier(keyword, table).Build()
}

// whereEquals emits a flat AND of equalities in sorted key order.
func (b *Builder) whereEquals(where map[string]interface{}) *Builder {
	for i, col := range getKeys(where) {
		if i == 0 {
			b.Where(Eq(col, where[col]))
			continue
		}
		b.And(Eq(col, where[col]))
	}
	return b
}

// tableKey renders a table key: a single element bare, several as a tuple.
func (b *Builder) tableKey(elems []string) (string, error) {
	parts := make([]string, 0, len(elems))
	for _, elem := range elems {
		part, err := b.keyExpr(elem)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, ", ") + ")", nil
}

// keyExpr renders one table-key element: a column name, or a function call
// whose arguments are column names, integer literals or nested calls, such
// as toYYYYMM(ts) or intDiv(user_id, 16). Column names are quoted.
func (b *Builder) keyExpr(elem string) (string, error) {
	name, rest, isCall := strings.Cut(strings.TrimSpace(elem), "(")
	if !isCall {
		return b.quote(name)
	}
	if security.ValidateIdentifier(name) != nil || strings.Contains(name, ".") {
		return "", reject(elem, "table key function name must be a bare identifier")
	}
	inner, ok := strings.CutSuffix(rest, ")")
	if !ok {
		return "", reject(elem, "table key function call must end with )")
	}

	args, err := splitArgs(inner)
	if err != nil {
		return "", reject(elem, err.Error())
	}
	rendered := make([]string, 0, len(args))
	for _, arg := range args {
		if isUnsignedInt(arg) {
			rendered = append(rendered, arg)
			continue
		}
		part, err := b.keyExpr(arg)
		if err != nil {
			return "", err
		}
		rendered = append(rendered, part)
	}
	return name + "(" + strings.Join(rendered, ", ") + ")", nil
}

// splitArgs splits a call's argument list on top-level commas.
func splitArgs(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var args []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, errors.New("unbalanced parentheses")
			}
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, errors.New("unbalanced parentheses")
	}
	args = append(args, strings.TrimSpace(s[start:]))
	for _, arg := range args {
		if arg == "" {
			return nil, errors.New("empty argument")
		}
	}
	return args, nil
}

func isUnsignedInt(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isMergeTree(engine string) bool {
	name, _, _ := strings.Cut(engine, "(")
	return strings.HasSuffix(strings.TrimSpace(name), "MergeTree")
}

func (b *Builder) rejectInput(value, reason string) (*Statement, error) {
	return b.failed(reject(value, reason))
}

func (b *Builder) failed(err error) (*Statement, error) {
	b.fail(err)
	return nil, b.err
}
