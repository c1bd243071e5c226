package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/codesan/internal/redact"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List redaction categories in the order they are applied",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat := redact.DefaultCatalog()
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CATEGORY\tFLAG\tPATTERNS\tREPLACEMENT")
		for _, e := range cat.Entries() {
			fmt.Fprintf(tw, "%s\t--skip-%s\t%d\t%s\n",
				e.Category, e.Category.FlagName(), len(e.Patterns), e.Replacement)
		}
		return tw.Flush()
	},
}
