package core

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/coregx/quill/internal/dialects"
	"github.com/coregx/quill/internal/logger"
	"github.com/coregx/quill/internal/security"
	"github.com/coregx/quill/internal/tracer"
)

// Statement is the output of a builder: SQL text and the parameters bound
// to its placeholders, in placeholder order.
type Statement struct {
	SQL    string
	Params []interface{}
}

// Direction is an ORDER BY direction. The zero value means ASC.
type Direction string

// Sort directions.
const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// JoinKind is the kind of a JOIN clause.
type JoinKind string

// Join kinds. A cross join never carries an ON predicate.
const (
	InnerJoin JoinKind = "INNER"
	LeftJoin  JoinKind = "LEFT"
	RightJoin JoinKind = "RIGHT"
	FullJoin  JoinKind = "FULL"
	CrossJoin JoinKind = "CROSS"
)

type whereState int

const (
	whereNone whereState = iota
	whereOpen
	// whereTautology means WHERE was requested with a condition that always
	// holds, so no keyword was emitted.
	whereTautology
)

// Builder assembles one SQL statement from clause calls. It owns the text
// parts and the parameter list; placeholder N always refers to Params()[N].
//
// Clause methods return the builder for chaining. The first rejected input
// is kept and returned by Err and Build; the failing clause appends nothing
// and every later clause call is ignored.
//
// A Builder is not safe for concurrent use. Use one builder per statement.
//
// Example:
//
//	stmt, err := core.NewBuilder().
//	    Select("id", "name").
//	    From("users").
//	    Where(core.Filter{"status": "active"}).
//	    OrderBy("name", core.Asc).
//	    Limit(10).
//	    Build()
//	// SELECT `id`, `name` FROM `users` WHERE `status` = {param0:String} ORDER BY `name` ASC LIMIT 10
type Builder struct {
	dialect   dialects.Dialect
	logger    logger.Logger
	sanitizer *logger.Sanitizer
	tracer    tracer.Tracer
	validator *security.Validator

	parts   []string
	params  []interface{}
	counter int
	err     error

	where       whereState
	orderByOpen bool
	// insertColumns is the column count declared by InsertInto, -1 before it.
	insertColumns int
}

// NewBuilder creates a builder. Without options it targets ClickHouse and
// neither logs nor traces.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		dialect:       dialects.ClickHouse,
		logger:        &logger.NoopLogger{},
		sanitizer:     logger.NewSanitizer(nil),
		tracer:        &tracer.NoopTracer{},
		insertColumns: -1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Dialect returns the dialect the builder renders for.
func (b *Builder) Dialect() dialects.Dialect {
	return b.dialect
}

// Param encodes v, appends its wire value to the parameter list and returns
// the placeholder that refers to it.
func (b *Builder) Param(v interface{}) (string, error) {
	s := b.stage()
	ph, err := s.param(v)
	if err != nil {
		b.rejected(err)
		return "", err
	}
	b.commit(s)
	return ph, nil
}

// Identifier validates name and returns it quoted for the dialect. This is
// the only way table and column names enter the statement.
func (b *Builder) Identifier(name string) (string, error) {
	id, err := b.quote(name)
	if err != nil {
		b.rejected(err)
		return "", err
	}
	return id, nil
}

func (b *Builder) quote(name string) (string, error) {
	return security.QuoteIdentifier(name, b.dialect.QuoteIdentifier)
}

// Err returns the first input rejected by a clause method.
func (b *Builder) Err() error {
	return b.err
}

// fail records err unless an earlier error is already recorded.
func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
		b.rejected(err)
	}
	return b
}

func (b *Builder) rejected(err error) {
	var injErr *InjectionError
	if errors.As(err, &injErr) {
		b.logger.Warn(logger.EventInputRejected,
			"value", injErr.Value,
			"reason", injErr.Reason,
			"dialect", b.dialect.Name(),
		)
		return
	}
	b.logger.Warn(logger.EventInputRejected, "error", err, "dialect", b.dialect.Name())
}

func (b *Builder) emit(parts ...string) *Builder {
	b.parts = append(b.parts, parts...)
	return b
}

// Raw appends text verbatim. The caller asserts it is safe; it must never
// carry caller-supplied values. With WithRawValidator the text is screened
// first.
func (b *Builder) Raw(text string) *Builder {
	if b.err != nil || text == "" {
		return b
	}
	if b.validator != nil {
		if err := b.validator.ValidateFragment(text); err != nil {
			return b.fail(err)
		}
	}
	return b.emit(text)
}

// RawExpr appends an expression with its arguments parameterized.
func (b *Builder) RawExpr(e Expr) *Builder {
	if b.err != nil {
		return b
	}
	s := b.stage()
	sql, err := s.expr(e)
	if err != nil {
		return b.fail(err)
	}
	b.commit(s)
	if sql == "" {
		return b
	}
	return b.emit(sql)
}

// Select appends SELECT with the given fields. Any "*" selects everything;
// "t.*" selects every column of t.
func (b *Builder) Select(fields ...string) *Builder {
	if b.err != nil {
		return b
	}
	if len(fields) == 0 {
		return b.fail(reject("", "select requires at least one field"))
	}
	for _, f := range fields {
		if f == "*" {
			return b.emit("SELECT *")
		}
	}

	ids, err := b.quoteFields(fields)
	if err != nil {
		return b.fail(err)
	}
	return b.emit("SELECT " + strings.Join(ids, ", "))
}

// SelectExpr appends SELECT with expression projections such as
// Count("").As("total").
func (b *Builder) SelectExpr(exprs ...Expr) *Builder {
	if b.err != nil {
		return b
	}
	if len(exprs) == 0 {
		return b.fail(reject("", "select requires at least one field"))
	}

	s := b.stage()
	cols := make([]string, 0, len(exprs))
	for _, e := range exprs {
		sql, err := s.expr(e)
		if err != nil {
			return b.fail(err)
		}
		cols = append(cols, sql)
	}
	b.commit(s)
	return b.emit("SELECT " + strings.Join(cols, ", "))
}

func (b *Builder) quoteFields(fields []string) ([]string, error) {
	ids := make([]string, 0, len(fields))
	for _, f := range fields {
		if table, ok := strings.CutSuffix(f, ".*"); ok {
			id, err := b.quote(table)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id+".*")
			continue
		}
		id, err := b.quote(f)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// From appends FROM table.
func (b *Builder) From(table string) *Builder {
	return b.keywordIdentifier("FROM", table)
}

// Final appends the ClickHouse FINAL modifier.
func (b *Builder) Final() *Builder {
	if b.err != nil {
		return b
	}
	return b.emit("FINAL")
}

func (b *Builder) keywordIdentifier(keyword, name string) *Builder {
	if b.err != nil {
		return b
	}
	id, err := b.quote(name)
	if err != nil {
		return b.fail(err)
	}
	return b.emit(keyword + " " + id)
}

// Join appends a JOIN clause. ON is emitted only when on is not nil and
// the kind is not CrossJoin; AS only when alias is not empty.
func (b *Builder) Join(kind JoinKind, table string, on Condition, alias string) *Builder {
	if b.err != nil {
		return b
	}
	switch kind {
	case InnerJoin, LeftJoin, RightJoin, FullJoin, CrossJoin:
	default:
		return b.fail(reject(string(kind), "unknown join kind"))
	}

	id, err := b.quote(table)
	if err != nil {
		return b.fail(err)
	}
	clause := string(kind) + " JOIN " + id
	if alias != "" {
		as, err := b.quote(alias)
		if err != nil {
			return b.fail(err)
		}
		clause += " AS " + as
	}
	if on == nil || kind == CrossJoin {
		return b.emit(clause)
	}

	cc, err := b.compile(on)
	if err != nil {
		return b.fail(err)
	}
	if cc.stage != nil {
		b.commit(cc.stage)
	}
	return b.emit(clause + " ON " + cc.text())
}

// Prewhere appends a ClickHouse PREWHERE clause. A condition that always
// holds emits nothing.
func (b *Builder) Prewhere(c Condition) *Builder {
	return b.filterClause("PREWHERE", c)
}

// Having appends a HAVING clause. A condition that always holds emits
// nothing.
func (b *Builder) Having(c Condition) *Builder {
	return b.filterClause("HAVING", c)
}

func (b *Builder) filterClause(keyword string, c Condition) *Builder {
	if b.err != nil {
		return b
	}
	cc, err := b.compile(c)
	if err != nil {
		return b.fail(err)
	}
	if cc.t == truthAlways {
		return b
	}
	if cc.stage != nil {
		b.commit(cc.stage)
	}
	return b.emit(keyword + " " + cc.text())
}

// Where appends WHERE c. A condition that always holds emits nothing, and
// one that never holds emits WHERE 1 = 0.
func (b *Builder) Where(c Condition) *Builder {
	if b.err != nil {
		return b
	}
	if b.where == whereOpen {
		return b.fail(reject("WHERE", "where clause already started, use And or Or"))
	}
	cc, err := b.compile(c)
	if err != nil {
		return b.fail(err)
	}
	if cc.t == truthAlways {
		b.where = whereTautology
		return b
	}
	return b.openWhere(cc)
}

func (b *Builder) openWhere(cc compiled) *Builder {
	if cc.stage != nil {
		b.commit(cc.stage)
	}
	b.where = whereOpen
	return b.emit("WHERE " + cc.text())
}

// And appends AND c to the WHERE clause, or starts it when none is open.
func (b *Builder) And(c Condition) *Builder {
	if b.err != nil {
		return b
	}
	cc, err := b.compile(c)
	if err != nil {
		return b.fail(err)
	}
	if cc.t == truthAlways {
		return b
	}
	if b.where != whereOpen {
		return b.openWhere(cc)
	}
	if cc.stage != nil {
		b.commit(cc.stage)
	}
	return b.emit("AND " + cc.text())
}

// Or appends OR c to the WHERE clause. After a WHERE that always holds it
// emits nothing; with no WHERE at all it behaves like Where.
func (b *Builder) Or(c Condition) *Builder {
	if b.err != nil {
		return b
	}
	cc, err := b.compile(c)
	if err != nil {
		return b.fail(err)
	}

	switch b.where {
	case whereNone:
		if cc.t == truthAlways {
			b.where = whereTautology
			return b
		}
		return b.openWhere(cc)
	case whereTautology:
		return b
	}

	if cc.t == truthNever {
		return b
	}
	if cc.stage != nil {
		b.commit(cc.stage)
	}
	return b.emit("OR " + cc.text())
}

// GroupBy appends GROUP BY with the given fields.
func (b *Builder) GroupBy(fields ...string) *Builder {
	if b.err != nil {
		return b
	}
	if len(fields) == 0 {
		return b.fail(reject("", "group by requires at least one field"))
	}
	ids, err := b.quoteFields(fields)
	if err != nil {
		return b.fail(err)
	}
	return b.emit("GROUP BY " + strings.Join(ids, ", "))
}

// OrderBy appends an ordering term. The first call emits ORDER BY, later
// calls continue the same list.
func (b *Builder) OrderBy(field string, dir Direction) *Builder {
	if b.err != nil {
		return b
	}
	if dir == "" {
		dir = Asc
	}
	if dir != Asc && dir != Desc {
		return b.fail(reject(string(dir), "direction must be ASC or DESC"))
	}
	id, err := b.quote(field)
	if err != nil {
		return b.fail(err)
	}
	if b.orderByOpen {
		return b.emit(",", id, string(dir))
	}
	b.orderByOpen = true
	return b.emit("ORDER BY "+id, string(dir))
}

// Limit appends LIMIT n. Zero is valid, negative counts are rejected.
func (b *Builder) Limit(n int) *Builder {
	return b.count("LIMIT", n)
}

// Offset appends OFFSET n. Zero is valid, negative counts are rejected.
func (b *Builder) Offset(n int) *Builder {
	return b.count("OFFSET", n)
}

func (b *Builder) count(keyword string, n int) *Builder {
	if b.err != nil {
		return b
	}
	if n < 0 {
		return b.fail(reject(strconv.Itoa(n), strings.ToLower(keyword)+" must not be negative"))
	}
	return b.emit(keyword + " " + strconv.Itoa(n))
}

// InsertInto appends INSERT INTO table (columns...).
func (b *Builder) InsertInto(table string, columns ...string) *Builder {
	if b.err != nil {
		return b
	}
	if len(columns) == 0 {
		return b.fail(reject(table, "insert requires at least one column"))
	}
	id, err := b.quote(table)
	if err != nil {
		return b.fail(err)
	}
	ids, err := b.quoteFields(columns)
	if err != nil {
		return b.fail(err)
	}
	b.insertColumns = len(columns)
	return b.emit("INSERT INTO "+id, "("+strings.Join(ids, ", ")+")")
}

// Values appends VALUES with one tuple per row. Parameters are appended
// row by row, in column order. After InsertInto every row must have one
// value per declared column.
func (b *Builder) Values(rows ...[]interface{}) *Builder {
	if b.err != nil {
		return b
	}
	if len(rows) == 0 {
		return b.fail(reject("", "values requires at least one row"))
	}

	s := b.stage()
	tuples := make([]string, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			return b.fail(reject(strconv.Itoa(i), "values row is empty"))
		}
		if b.insertColumns >= 0 && len(row) != b.insertColumns {
			return b.fail(reject(strconv.Itoa(i), "values row has "+strconv.Itoa(len(row))+
				" values for "+strconv.Itoa(b.insertColumns)+" columns"))
		}
		phs := make([]string, 0, len(row))
		for _, v := range row {
			ph, err := s.operand(v)
			if err != nil {
				return b.fail(err)
			}
			phs = append(phs, ph)
		}
		tuples = append(tuples, "("+strings.Join(phs, ", ")+")")
	}
	b.commit(s)
	return b.emit("VALUES " + strings.Join(tuples, ", "))
}

// Update appends UPDATE table.
func (b *Builder) Update(table string) *Builder {
	return b.keywordIdentifier("UPDATE", table)
}

// Set appends SET column = value assignments. Columns are emitted in sorted
// order so the same map always yields the same statement.
func (b *Builder) Set(updates map[string]interface{}) *Builder {
	if b.err != nil {
		return b
	}
	if len(updates) == 0 {
		return b.fail(reject("", "set requires at least one column"))
	}

	s := b.stage()
	assignments := make([]string, 0, len(updates))
	for _, col := range getKeys(updates) {
		id, err := b.quote(col)
		if err != nil {
			return b.fail(err)
		}
		ph, err := s.operand(updates[col])
		if err != nil {
			return b.fail(err)
		}
		assignments = append(assignments, id+" = "+ph)
	}
	b.commit(s)
	return b.emit("SET " + strings.Join(assignments, ", "))
}

// DeleteFrom appends DELETE FROM table.
func (b *Builder) DeleteFrom(table string) *Builder {
	return b.keywordIdentifier("DELETE FROM", table)
}

// getKeys returns sorted keys from a map for deterministic ordering.
func getKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SQL returns the statement text assembled so far.
func (b *Builder) SQL() string {
	return strings.Join(b.parts, " ")
}

// Params returns a copy of the parameters appended so far.
func (b *Builder) Params() []interface{} {
	params := make([]interface{}, len(b.params))
	copy(params, b.params)
	return params
}

// Reset clears text, parameters, the placeholder counter, clause state and
// any recorded error, so the builder can assemble a new statement.
func (b *Builder) Reset() *Builder {
	b.parts = nil
	b.params = nil
	b.counter = 0
	b.err = nil
	b.where = whereNone
	b.orderByOpen = false
	b.insertColumns = -1
	return b
}

// Build returns the assembled statement, or the first rejected input.
// The returned Params is the builder's own slice; call Reset before reusing
// the builder if the statement is kept.
func (b *Builder) Build() (*Statement, error) {
	if b.err != nil {
		return nil, b.err
	}
	stmt := &Statement{SQL: b.SQL(), Params: b.params}
	b.logger.Debug(logger.EventStatementBuilt,
		"sql", stmt.SQL,
		"params", b.sanitizer.FormatParams(b.sanitizer.MaskParams(stmt.SQL, stmt.Params)),
		"dialect", b.dialect.Name(),
	)
	return stmt, nil
}

// BuildContext is Build wrapped in a "quill.build" span of the configured
// tracer.
func (b *Builder) BuildContext(ctx context.Context) (*Statement, error) {
	_, span := b.tracer.StartSpan(ctx, "quill.build")
	defer span.End()

	stmt, err := b.Build()
	meta := &tracer.StatementMetadata{
		Dialect: b.dialect.Name(),
		Error:   err,
	}
	if stmt != nil {
		meta.SQL = stmt.SQL
		meta.ParamsCount = len(stmt.Params)
		meta.Operation = tracer.DetectOperation(stmt.SQL)
	} else {
		meta.Operation = tracer.DetectOperation(b.SQL())
	}
	tracer.AnnotateStatement(span, meta)
	return stmt, err
}
