package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/sift-cli/internal/aggregate"
	"github.com/KaramelBytes/sift-cli/internal/parser"
	"github.com/KaramelBytes/sift-cli/internal/pipeline"
	"github.com/KaramelBytes/sift-cli/internal/render"
	"github.com/KaramelBytes/sift-cli/internal/table"
	"github.com/KaramelBytes/sift-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	aggKey       string
	aggValue     string
	aggQualifier string
	aggThreshold float64
	aggAbsolute  bool
	aggTitle     string
	aggSheet     string
	aggOutput    string
	aggWide      bool
	aggMarkdown  string
	aggDecimal   string
	aggThousands string
	aggQuiet     bool
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate <file>",
	Short: "Fold minor categories of a CSV/TSV/XLSX table into Other and render a pie chart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := resolveInput(args[0])
		if aggValue == "" && !aggWide {
			return fmt.Errorf("--value is required unless --wide is set")
		}
		format, err := numberFormat(aggDecimal, aggThousands)
		if err != nil {
			return err
		}
		r, err := newRunner()
		if err != nil {
			return err
		}
		r.Load = func(p string, opt parser.Options) (*table.Table, error) {
			opt.Format = format
			return parser.LoadFile(p, opt)
		}
		if !aggQuiet {
			r.Console = cmd.OutOrStdout()
			r.Width = render.TerminalWidth()
		}

		base := filepath.Base(path)
		d := pipeline.Descriptor{
			Name:         strings.TrimSuffix(base, filepath.Ext(base)),
			Source:       path,
			Sheet:        aggSheet,
			KeyCol:       aggKey,
			QualifierCol: aggQualifier,
			ValueCol:     aggValue,
			Title:        aggTitle,
			Output:       aggOutput,
			Wide:         aggWide,
		}
		if cmd.Flags().Changed("threshold") {
			if aggThreshold < 0 {
				return fmt.Errorf("--threshold must be >= 0")
			}
			d.Threshold = &aggThreshold
		}
		if cmd.Flags().Changed("absolute") {
			pct := !aggAbsolute
			d.ThresholdIsPercentage = &pct
		}
		m := &pipeline.Manifest{Datasets: []pipeline.Descriptor{d}}
		if err := m.Validate(); err != nil {
			return err
		}
		recs, err := r.Dataset(d)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", rec.Path)
		}

		if aggMarkdown != "" && !aggWide {
			if err := writeMarkdown(r, d, aggMarkdown); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote summary to %s\n", aggMarkdown)
		}
		return nil
	},
}

// writeMarkdown saves the bucketed table of d as a markdown summary.
func writeMarkdown(r *pipeline.Runner, d pipeline.Descriptor, out string) error {
	t, opt, err := r.Prepare(d)
	if err != nil {
		return err
	}
	res, err := aggregate.Aggregate(t, opt)
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(out, []byte(res.Markdown(d.Name))); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// numberFormat maps the --decimal and --thousands flags to a table.NumberFormat.
func numberFormat(decimal, thousands string) (table.NumberFormat, error) {
	var nf table.NumberFormat
	switch strings.ToLower(strings.TrimSpace(decimal)) {
	case ",", "comma":
		nf.Decimal = ','
	case ".", "dot":
		nf.Decimal = '.'
	case "":
	default:
		return nf, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", decimal)
	}
	switch strings.ToLower(strings.TrimSpace(thousands)) {
	case ",":
		nf.Thousands = ','
	case ".":
		nf.Thousands = '.'
	case "space", " ":
		nf.Thousands = ' '
	case "":
	default:
		return nf, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", thousands)
	}
	return nf, nil
}

func init() {
	rootCmd.AddCommand(aggregateCmd)
	aggregateCmd.Flags().StringVarP(&aggKey, "key", "k", "", "category column (default: first column)")
	aggregateCmd.Flags().StringVarP(&aggValue, "value", "v", "", "value column holding the magnitude")
	aggregateCmd.Flags().StringVar(&aggQualifier, "qualifier", "", "column appended to the key as \"<key> (<qualifier>)\"")
	aggregateCmd.Flags().Float64VarP(&aggThreshold, "threshold", "t", aggregate.DefaultThreshold, "minimum share (or value with --absolute) a category needs to stay distinct")
	aggregateCmd.Flags().BoolVar(&aggAbsolute, "absolute", false, "treat --threshold as an absolute value instead of a percentage")
	aggregateCmd.Flags().StringVar(&aggTitle, "title", "", "chart title ({column} is replaced in --wide mode)")
	aggregateCmd.Flags().StringVar(&aggSheet, "sheet", "", "XLSX: sheet name (default: first sheet)")
	aggregateCmd.Flags().StringVarP(&aggOutput, "output", "o", "", "chart file name without extension (default: input base name)")
	aggregateCmd.Flags().BoolVar(&aggWide, "wide", false, "chart every numeric column after the key separately")
	aggregateCmd.Flags().StringVar(&aggMarkdown, "markdown", "", "also write the bucketed table as markdown to this path")
	aggregateCmd.Flags().StringVar(&aggDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	aggregateCmd.Flags().StringVar(&aggThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	aggregateCmd.Flags().BoolVar(&aggQuiet, "quiet", false, "suppress the console table")
}
