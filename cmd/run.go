package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/sift-cli/internal/pipeline"
	"github.com/KaramelBytes/sift-cli/internal/render"
	"github.com/KaramelBytes/sift-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	runIndex bool
	runOnly  []string
	runQuiet bool
	runTable bool
)

var runCmd = &cobra.Command{
	Use:   "run [manifest.yaml]",
	Short: "Render a pie chart for every dataset in a manifest",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadManifest(args)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(runOnly) > 0 {
			var picked []pipeline.Descriptor
			for _, name := range runOnly {
				d, ok := m.Dataset(name)
				if !ok {
					return fmt.Errorf("dataset %q not found in %s", name, m.Path())
				}
				picked = append(picked, d)
			}
			m.Datasets = picked
		}
		if len(m.Datasets) == 0 {
			fmt.Fprintln(out, "(no datasets)")
			return nil
		}

		r, err := newRunner()
		if err != nil {
			return err
		}
		if !runQuiet {
			r.Progress = func(i, n int, d pipeline.Descriptor) {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i, n, d.Name)
			}
		}
		if runTable && !runQuiet {
			r.Console = out
			r.Width = render.TerminalWidth()
		}
		run, err := r.Run(m)
		if err != nil {
			return err
		}
		if !runQuiet {
			for _, c := range run.Charts {
				fmt.Fprintf(out, "✓ %s -> %s\n", c.Title, c.Path)
			}
		}
		if runIndex {
			b, err := utils.PrettyJSON(run)
			if err != nil {
				return err
			}
			path := filepath.Join(r.OutDir, "index.json")
			if err := utils.SafeWriteFile(path, b); err != nil {
				return err
			}
			if !runQuiet {
				fmt.Fprintf(out, "✓ Wrote run index to %s\n", path)
			}
		}
		return nil
	},
}

// loadManifest reads the manifest named in args, or finds the configured one
// by walking up from the working directory.
func loadManifest(args []string) (*pipeline.Manifest, error) {
	if len(args) == 1 {
		return pipeline.LoadManifest(args[0])
	}
	c, err := effectiveConfig()
	if err != nil {
		return nil, err
	}
	name := c.Manifest
	if name == "" {
		name = defaultManifestName
	}
	if filepath.IsAbs(name) {
		return pipeline.LoadManifest(name)
	}
	path, err := utils.FindFile("", name)
	if err != nil {
		return nil, err
	}
	return pipeline.LoadManifest(path)
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runIndex, "index", false, "write index.json describing the rendered charts")
	runCmd.Flags().StringSliceVar(&runOnly, "only", nil, "comma-separated dataset names to render (repeatable)")
	runCmd.Flags().BoolVar(&runTable, "table", false, "print a console table for every chart")
	runCmd.Flags().BoolVar(&runQuiet, "quiet", false, "suppress progress and non-essential output")
}
