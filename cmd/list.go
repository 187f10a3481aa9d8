package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	listDatasets    bool
	listComparisons bool
)

var listCmd = &cobra.Command{
	Use:   "list [manifest.yaml]",
	Short: "List datasets and comparisons of a manifest",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadManifest(args)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		all := !listDatasets && !listComparisons
		if all || listDatasets {
			fmt.Fprintln(out, "Datasets:")
			if len(m.Datasets) == 0 {
				fmt.Fprintln(out, "(no datasets)")
			}
			for _, d := range m.Datasets {
				value := d.ValueCol
				if d.Wide {
					value = "(every numeric column)"
				}
				fmt.Fprintf(out, "- %s: %s -> %s\n", d.Name, value, d.OutputName())
			}
		}
		if all || listComparisons {
			fmt.Fprintln(out, "Comparisons:")
			if len(m.Comparisons) == 0 {
				fmt.Fprintln(out, "(no comparisons)")
			}
			for _, c := range m.Comparisons {
				fmt.Fprintf(out, "- %s: %s by %s\n", c.Name, c.RowKind, c.ColumnKind)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listDatasets, "datasets", false, "list datasets only")
	listCmd.Flags().BoolVar(&listComparisons, "comparisons", false, "list comparisons only")
}
