package cli

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"

	"github.com/coregx/quill/internal/core"
)

// TableDef is the YAML form of a table definition.
//
// Example:
//
//	name: events
//	if_not_exists: true
//	columns:
//	  - {name: id, type: UInt64}
//	  - {name: ts, type: DateTime}
//	order_by: [id, ts]
//	partition_by: ["toYYYYMM(ts)"]
type TableDef struct {
	Name        string      `yaml:"name"`
	IfNotExists bool        `yaml:"if_not_exists"`
	Engine      string      `yaml:"engine"`
	Columns     []ColumnDef `yaml:"columns"`
	OrderBy     []string    `yaml:"order_by"`
	PartitionBy []string    `yaml:"partition_by"`
	PrimaryKey  []string    `yaml:"primary_key"`
}

// ColumnDef is one column of a TableDef.
type ColumnDef struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// parseTableDef decodes a table definition. Unknown keys are errors.
func parseTableDef(data []byte) (*TableDef, error) {
	var def TableDef
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, core.WrapError(err, "parse table definition")
	}
	if def.Name == "" {
		return nil, errors.New("parse table definition: name is required")
	}
	return &def, nil
}

// CreateOptions converts the definition to CreateTableStatement options.
func (d *TableDef) CreateOptions() core.CreateTableOptions {
	cols := make([]core.ColumnDef, 0, len(d.Columns))
	for _, c := range d.Columns {
		cols = append(cols, core.ColumnDef{Name: c.Name, Type: c.Type})
	}
	return core.CreateTableOptions{
		Columns:     cols,
		Engine:      d.Engine,
		OrderBy:     d.OrderBy,
		PartitionBy: d.PartitionBy,
		PrimaryKey:  d.PrimaryKey,
		IfNotExists: d.IfNotExists,
	}
}
