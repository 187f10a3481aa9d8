package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/sift-cli/internal/aggregate"
	"github.com/KaramelBytes/sift-cli/internal/pipeline"
	"github.com/KaramelBytes/sift-cli/internal/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const defaultManifestName = "sift.yaml"

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a starter sift.yaml manifest",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		if err := utils.EnsureDir(dir); err != nil {
			return err
		}
		path := filepath.Join(dir, defaultManifestName)
		// Refuse to overwrite an existing manifest.
		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("manifest already exists at %s (use --force to overwrite)", path)
		} else if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("stat manifest: %w", err)
		}
		b, err := yaml.Marshal(starterManifest())
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		if err := utils.SafeWriteFile(path, b); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Manifest initialized: %s\n", path)
		return nil
	},
}

func starterManifest() *pipeline.Manifest {
	threshold := aggregate.DefaultThreshold
	return &pipeline.Manifest{
		Datasets: []pipeline.Descriptor{
			{
				Name:      "food_by_pct",
				Source:    "data/food_by_pct.xlsx",
				ValueCol:  "pct",
				Threshold: &threshold,
				Title:     "Distribution of Food Types by Percentage",
			},
			{
				Name:         "loc_by_pct",
				Source:       "data/loc_by_pct.xlsx",
				QualifierCol: "subtype",
				ValueCol:     "pct",
				Title:        "Distribution of Sampled Location Types by Percentage",
			},
			{
				Name:   "food_by_adult",
				Source: "data/food_by_adult.xlsx",
				Wide:   true,
				Output: "food_by",
				Title:  "Distribution of Food by " + pipeline.ColumnPlaceholder,
			},
		},
		Comparisons: []pipeline.ComparisonSpec{
			{Name: "food_by_adult", Source: "data/food_by_adult.xlsx", RowKind: "foods", ColumnKind: "adulterants"},
			{Name: "prov_by_food", Source: "data/prov_by_food.xlsx", RowKind: "provinces", ColumnKind: "foods"},
		},
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing manifest")
}
