package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/sift-cli/internal/pipeline"
	"github.com/KaramelBytes/sift-cli/internal/selection"
	"github.com/spf13/cobra"
)

var (
	cmpKind     string
	cmpRowsKind string
	cmpColsKind string
	cmpOptions  string
	cmpSheet    string
	cmpName     string
	cmpGrouped  bool
	cmpQuiet    bool
)

const kindQuestion = "Compare (f)oods, (a)dulterants or (p)rovinces? "

var compareCmd = &cobra.Command{
	Use:   "compare [file]",
	Short: "Pick two foods, adulterants or provinces and chart their top rows side by side",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		p := selection.NewPrompter(cmd.InOrStdin(), out)

		answer := cmpKind
		if answer == "" {
			a, err := p.Choose(kindQuestion)
			if err != nil {
				return err
			}
			answer = a
		}
		kind, ok := selection.ParseKind(answer)
		if !ok {
			fmt.Fprintln(out, "Invalid input.")
			return &exitError{code: 1}
		}

		spec, err := comparisonSpec(args, kind)
		if err != nil {
			return err
		}
		r, err := newRunner()
		if err != nil {
			return err
		}
		if !cmpQuiet {
			r.Console = out
		}
		c, err := r.PrepareComparison(spec, kind)
		if err != nil {
			return err
		}
		_, path, err := r.Interactive(c, p)
		if errors.Is(err, selection.ErrTooFewOptions) {
			return fmt.Errorf("%s offers %d %s; at least two are needed to compare", spec.Name, len(c.Options), kind)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Wrote %s\n", path)
		return nil
	},
}

// comparisonSpec describes the file given on the command line, or picks the
// manifest comparison that offers kind.
func comparisonSpec(args []string, kind selection.Kind) (pipeline.ComparisonSpec, error) {
	if len(args) == 1 {
		src := resolveInput(args[0])
		base := filepath.Base(src)
		spec := pipeline.ComparisonSpec{
			Name:          strings.TrimSuffix(base, filepath.Ext(base)),
			Source:        src,
			Sheet:         cmpSheet,
			RowKind:       cmpRowsKind,
			ColumnKind:    cmpColsKind,
			OptionsSource: optionsSource(),
			Grouped:       cmpGrouped,
		}
		if _, _, err := spec.Kinds(); err != nil {
			return spec, err
		}
		return spec, nil
	}
	m, err := loadManifest(nil)
	if err != nil {
		return pipeline.ComparisonSpec{}, err
	}
	if cmpName != "" {
		spec, ok := m.Comparison(cmpName)
		if !ok {
			return spec, fmt.Errorf("comparison %q not found in %s", cmpName, m.Path())
		}
		return spec, nil
	}
	spec, ok := m.ComparisonFor(kind)
	if !ok {
		return spec, fmt.Errorf("no comparison in %s offers %s", m.Path(), kind)
	}
	return spec, nil
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().StringVar(&cmpKind, "kind", "", "what to compare: f|a|p (prompted when omitted)")
	compareCmd.Flags().StringVar(&cmpRowsKind, "rows-kind", "foods", "kind of the file's rows")
	compareCmd.Flags().StringVar(&cmpColsKind, "columns-kind", "adulterants", "kind of the file's columns")
	compareCmd.Flags().StringVar(&cmpOptions, "options", "", "file whose first column lists the offered items")
	compareCmd.Flags().StringVar(&cmpSheet, "sheet", "", "XLSX: sheet name (default: first sheet)")
	compareCmd.Flags().StringVar(&cmpName, "comparison", "", "manifest comparison to use instead of picking by kind")
	compareCmd.Flags().BoolVar(&cmpGrouped, "grouped", false, "show row and column labels verbatim")
	compareCmd.Flags().BoolVar(&cmpQuiet, "quiet", false, "suppress the console table")
}

func optionsSource() string {
	if cmpOptions == "" {
		return ""
	}
	return resolveInput(cmpOptions)
}
