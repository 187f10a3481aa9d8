package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/sift-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set sift configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := effectiveConfig()
		if err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "data_dir: %s\n", c.DataDir)
		fmt.Fprintf(out, "charts_dir: %s\n", c.ChartsDir)
		fmt.Fprintf(out, "manifest: %s\n", c.Manifest)
		fmt.Fprintf(out, "default_threshold: %g\n", c.DefaultThreshold)
		fmt.Fprintf(out, "default_threshold_is_percentage: %t\n", c.DefaultThresholdIsPercentage)
		fmt.Fprintf(out, "chart_width: %d\n", c.ChartWidth)
		fmt.Fprintf(out, "chart_height: %d\n", c.ChartHeight)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := effectiveConfig()
		if err != nil {
			return err
		}
		switch key {
		case "data_dir":
			c.DataDir = val
		case "charts_dir":
			c.ChartsDir = val
		case "manifest":
			c.Manifest = val
		case "default_threshold":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < 0 {
				return fmt.Errorf("invalid float for default_threshold: %v", val)
			}
			c.DefaultThreshold = f
		case "default_threshold_is_percentage":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for default_threshold_is_percentage: %w", err)
			}
			c.DefaultThresholdIsPercentage = b
		case "chart_width":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for chart_width: %v", val)
			}
			c.ChartWidth = i
		case "chart_height":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for chart_height: %v", val)
			}
			c.ChartHeight = i
		default:
			return fmt.Errorf("unknown key: %s (known: %v)", key, cfgpkg.Keys)
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
