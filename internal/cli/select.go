package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coregx/quill/internal/core"
)

// SelectOptions holds flags for the select command.
type SelectOptions struct {
	Fields []string
	Where  string
	Order  []string
	Limit  int
	Offset int
	Final  bool
}

// NewSelectCommand creates the select command.
func NewSelectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SelectOptions{}

	cmd := &cobra.Command{
		Use:   "select <table>",
		Short: "Build a SELECT statement",
		Long: `Build a SELECT statement over a table.

Examples:
  quill select events --fields id,name --where filter.json
  quill select events --order ts:desc --limit 10 --final`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().StringSliceVar(&opts.Fields, "fields", []string{"*"}, "fields to select")
	cmd.Flags().StringVar(&opts.Where, "where", "", "filter file (Extended JSON, - for stdin)")
	cmd.Flags().StringSliceVar(&opts.Order, "order", nil, "ordering terms as field[:asc|desc]")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of rows")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "number of rows to skip")
	cmd.Flags().BoolVar(&opts.Final, "final", false, "add the FINAL modifier")

	return cmd
}

func runSelect(cmd *cobra.Command, rootOpts *RootOptions, opts *SelectOptions, table string) error {
	formatter := rootOpts.formatter(cmd)

	doc, code, err := loadFilter(opts.Where, cmd.InOrStdin())
	if err != nil {
		return formatter.fail(code, err)
	}
	orders, err := parseOrders(opts.Order)
	if err != nil {
		return formatter.fail(ErrCodeParseFailed, err)
	}

	b := core.NewBuilder(rootOpts.builderOptions()...).Select(opts.Fields...).From(table)
	if opts.Final {
		b.Final()
	}
	b.Where(doc)
	for _, o := range orders {
		b.OrderBy(o.Field, o.Direction)
	}
	if cmd.Flags().Changed("limit") {
		b.Limit(opts.Limit)
	}
	if cmd.Flags().Changed("offset") {
		b.Offset(opts.Offset)
	}

	return formatter.emit(b.Build())
}

// parseOrders parses "field" and "field:dir" terms.
func parseOrders(terms []string) ([]core.Order, error) {
	orders := make([]core.Order, 0, len(terms))
	for _, term := range terms {
		field, dir, _ := strings.Cut(term, ":")
		o := core.Order{Field: field, Direction: core.Asc}
		switch strings.ToLower(dir) {
		case "", "asc":
		case "desc":
			o.Direction = core.Desc
		default:
			return nil, fmt.Errorf("invalid order %q: direction must be asc or desc", term)
		}
		orders = append(orders, o)
	}
	return orders, nil
}
