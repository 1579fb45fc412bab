package cli

import (
	"github.com/spf13/cobra"

	"github.com/coregx/quill/internal/core"
)

// NewWhereCommand creates the where command.
func NewWhereCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "where <filter.json>",
		Short: "Compile a filter into a WHERE fragment",
		Long: `Compile a filter document into a condition fragment and its parameters.

The filter is Extended JSON and may use native or "$" operators:
  {"status": "active", "age": {"$gte": 18}, "$or": [{"role": "admin"}, {"role": "owner"}]}

Use "-" to read the filter from standard input. A filter that always
holds compiles to an empty fragment.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhere(cmd, rootOpts, args[0])
		},
	}
	return cmd
}

func runWhere(cmd *cobra.Command, rootOpts *RootOptions, path string) error {
	formatter := rootOpts.formatter(cmd)

	doc, code, err := loadFilter(path, cmd.InOrStdin())
	if err != nil {
		return formatter.fail(code, err)
	}
	formatter.VerboseLog("compiling filter with %d top-level keys (dialect %s)", len(doc), rootOpts.Dialect)

	return formatter.emit(core.Compile(doc, rootOpts.builderOptions()...))
}
