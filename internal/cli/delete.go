package cli

import (
	"github.com/spf13/cobra"

	"github.com/coregx/quill/internal/core"
	"github.com/coregx/quill/internal/security"
)

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	var where string

	cmd := &cobra.Command{
		Use:   "delete <table> --where <filter.json>",
		Short: "Build a DELETE statement",
		Long: `Build a DELETE statement. A filter is required, and a filter that
matches every row is refused.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, rootOpts, args[0], where)
		},
	}

	cmd.Flags().StringVar(&where, "where", "", "filter file (Extended JSON, - for stdin)")
	_ = cmd.MarkFlagRequired("where")

	return cmd
}

func runDelete(cmd *cobra.Command, rootOpts *RootOptions, table, where string) error {
	formatter := rootOpts.formatter(cmd)

	doc, code, err := loadFilter(where, cmd.InOrStdin())
	if err != nil {
		return formatter.fail(code, err)
	}

	// A filter that always holds compiles to nothing and would delete every row.
	probe, err := core.Compile(doc, rootOpts.builderOptions()...)
	if err != nil {
		return formatter.fail(ErrCodeRejected, err)
	}
	if probe.SQL == "" {
		return formatter.fail(ErrCodeRejected,
			security.NewInjectionError(table, "delete requires a filter that does not match every row"))
	}

	return formatter.emit(core.NewBuilder(rootOpts.builderOptions()...).DeleteFrom(table).Where(doc).Build())
}
