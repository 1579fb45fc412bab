// Package quill builds parameterized SQL statements and compiles structured
// WHERE filters without letting caller-supplied strings reach the SQL text.
// Table and column names are validated and quoted, values become typed
// placeholders such as {param0:Int32} with the values returned alongside.
// ClickHouse is the default dialect; MySQL, PostgreSQL and SQLite are
// available through WithDialect.
package quill

import (
	"github.com/coregx/quill/internal/core"
	"github.com/coregx/quill/internal/dialects"
	"github.com/coregx/quill/internal/logger"
	"github.com/coregx/quill/internal/security"
	"github.com/coregx/quill/internal/tracer"
)

type (
	// Builder assembles one SQL statement from clause calls.
	Builder = core.Builder
	// Option is a functional option for configuring a Builder.
	Option = core.Option
	// Statement is SQL text plus its parameters in placeholder order.
	Statement = core.Statement
	// Direction is an ORDER BY direction.
	Direction = core.Direction
	// JoinKind is the kind of a JOIN clause.
	JoinKind = core.JoinKind

	// Condition is a WHERE-style predicate.
	Condition = core.Condition
	// Leaf compares a field with an operand.
	Leaf = core.Leaf
	// Group combines conditions with AND, OR or NOT.
	Group = core.Group
	// Operator is a comparison operator.
	Operator = core.Operator
	// Logic is the kind of a Group.
	Logic = core.Logic
	// Filter is a map-shaped condition with native or "$"-prefixed operators.
	Filter = core.Filter
	// Document is an ordered Filter.
	Document = core.Document
	// Expr is a raw SQL fragment with "?" markers bound to Args.
	Expr = core.Expr
	// Column is a column reference operand.
	Column = core.Column

	// Encoded is a parameter ready for the transport.
	Encoded = core.Encoded
	// Kind is the inspected kind of a parameter value.
	Kind = core.Kind
	// Tag is a placeholder type tag.
	Tag = core.Tag

	// SelectOptions configures SelectStatement.
	SelectOptions = core.SelectOptions
	// Order is one ORDER BY term.
	Order = core.Order
	// UpdateOptions configures UpdateStatement.
	UpdateOptions = core.UpdateOptions
	// ColumnDef is one column of CreateTableStatement.
	ColumnDef = core.ColumnDef
	// CreateTableOptions configures CreateTableStatement.
	CreateTableOptions = core.CreateTableOptions
	// DropTableOptions configures DropTableStatement.
	DropTableOptions = core.DropTableOptions

	// InjectionError reports rejected caller input.
	InjectionError = core.InjectionError
	// Dialect renders quoting and placeholders for a database.
	Dialect = dialects.Dialect
)

// Directions and join kinds.
const (
	Asc  = core.Asc
	Desc = core.Desc

	InnerJoin = core.InnerJoin
	LeftJoin  = core.LeftJoin
	RightJoin = core.RightJoin
	FullJoin  = core.FullJoin
	CrossJoin = core.CrossJoin
)

// ErrInjection is matched by every rejection of caller input.
var ErrInjection = core.ErrInjection

// Re-export core functions.
var (
	NewBuilder       = core.NewBuilder
	WithDialect      = core.WithDialect
	WithLogger       = core.WithLogger
	WithSanitizer    = core.WithSanitizer
	WithTracer       = core.WithTracer
	WithRawValidator = core.WithRawValidator

	Encode  = core.Encode
	Compile = core.Compile

	// Condition builders
	Eq      = core.Eq
	Ne      = core.Ne
	Gt      = core.Gt
	Gte     = core.Gte
	Lt      = core.Lt
	Lte     = core.Lte
	In      = core.In
	NotIn   = core.NotIn
	Like    = core.Like
	ILike   = core.ILike
	IsNull  = core.IsNull
	NotNull = core.NotNull
	Between = core.Between
	And     = core.And
	Or      = core.Or
	Not     = core.Not
	Raw     = core.Raw
	Col     = core.Col

	// Aggregates
	Count    = core.Count
	Uniq     = core.Uniq
	Sum      = core.Sum
	Avg      = core.Avg
	Min      = core.Min
	Max      = core.Max
	Coalesce = core.Coalesce

	// Statement factories
	SelectStatement        = core.SelectStatement
	InsertStatement        = core.InsertStatement
	InsertStructsStatement = core.InsertStructsStatement
	UpdateStatement        = core.UpdateStatement
	DeleteStatement        = core.DeleteStatement
	CreateTableStatement   = core.CreateTableStatement
	DropTableStatement     = core.DropTableStatement
)

// Dialects, logging, tracing and validation.
var (
	ClickHouse    = dialects.ClickHouse
	MySQL         = dialects.MySQL
	Postgres      = dialects.Postgres
	SQLite        = dialects.SQLite
	LookupDialect = dialects.Lookup

	NewSlogLogger      = logger.NewSlogAdapter
	NewSanitizer       = logger.NewSanitizer
	NewOtelTracer      = tracer.NewOtelTracer
	NewValidator       = security.NewValidator
	WithStrict         = security.WithStrict
	ValidateIdentifier = security.ValidateIdentifier
)
