// Package cli implements the quill command line: compiling filters and
// statements from JSON and YAML files into SQL text plus parameters.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coregx/quill/internal/core"
	"github.com/coregx/quill/internal/dialects"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Dialect string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the quill CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "quill",
		Short: "quill - parameterized SQL from structured input",
		Long: `Compile WHERE filters, queries and table definitions into SQL text
with typed placeholders and a separate parameter list.`,
		// Commands report their own failures through the output formatter.
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if _, ok := dialects.Lookup(opts.Dialect); !ok {
				return fmt.Errorf("invalid dialect %q: must be one of %s", opts.Dialect, strings.Join(dialects.Names(), ", "))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Dialect, "dialect", "d", "clickhouse", "SQL dialect")

	// Add subcommands
	cmd.AddCommand(NewWhereCommand(opts))
	cmd.AddCommand(NewSelectCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewDDLCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// builderOptions returns the builder options selected by the global flags.
func (o *RootOptions) builderOptions() []core.Option {
	d, _ := dialects.Lookup(o.Dialect)
	return []core.Option{core.WithDialect(d)}
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}
