package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/fulfillment/internal/core"
)

func newPagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pages",
		Short: "List the registered list screens",
		Long: `List every registered page by group with its path and filters.

With --toml the registry is printed in the pages file format, a starting
point for TABLE_PAGES_FILE overrides.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asTOML, _ := cmd.Flags().GetBool("toml")
			if asTOML {
				return core.EncodePages(cmd.OutOrStdout(), core.All())
			}
			printPages(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().Bool("toml", false, "Print the registry as a pages file")
	return cmd
}

func printPages(w io.Writer) {
	for _, group := range core.Groups() {
		fmt.Fprintln(w, paint(groupStyle, group))
		for _, def := range core.ByGroup(group) {
			fmt.Fprintf(w, "  %-20s %-24s %s\n",
				def.Info.Key,
				def.Info.Label,
				paint(mutedStyle, def.Info.Path+filterSummary(def.Filters)))
		}
	}
}

func filterSummary(f core.FilterCaps) string {
	var names []string
	if f.Date {
		names = append(names, "date")
	}
	if f.SKU {
		names = append(names, "sku")
	}
	if f.PerPage {
		names = append(names, "per_page")
	}
	if len(names) == 0 {
		return ""
	}
	return "  [" + strings.Join(names, ", ") + "]"
}
