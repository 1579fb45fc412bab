package cli

import (
	"github.com/spf13/cobra"

	"github.com/coregx/quill/internal/core"
)

// DDLOptions holds flags for the ddl command.
type DDLOptions struct {
	Drop     bool
	IfExists bool
}

// NewDDLCommand creates the ddl command.
func NewDDLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DDLOptions{}

	cmd := &cobra.Command{
		Use:   "ddl <table.yaml>",
		Short: "Build CREATE TABLE or DROP TABLE from a table definition",
		Long: `Build a ClickHouse CREATE TABLE statement from a YAML table definition.

With --drop, build DROP TABLE for the definition's table instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDDL(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Drop, "drop", false, "build DROP TABLE instead of CREATE TABLE")
	cmd.Flags().BoolVar(&opts.IfExists, "if-exists", false, "add IF EXISTS to DROP TABLE")

	return cmd
}

func runDDL(cmd *cobra.Command, rootOpts *RootOptions, opts *DDLOptions, path string) error {
	formatter := rootOpts.formatter(cmd)

	data, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		return formatter.fail(ErrCodeReadFailed, err)
	}
	def, err := parseTableDef(data)
	if err != nil {
		return formatter.fail(ErrCodeParseFailed, err)
	}

	if opts.Drop {
		return formatter.emit(core.DropTableStatement(def.Name,
			core.DropTableOptions{IfExists: opts.IfExists}, rootOpts.builderOptions()...))
	}
	formatter.VerboseLog("table %s: %d columns", def.Name, len(def.Columns))
	return formatter.emit(core.CreateTableStatement(def.Name, def.CreateOptions(), rootOpts.builderOptions()...))
}
