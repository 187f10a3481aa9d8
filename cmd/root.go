package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	cfgpkg "github.com/KaramelBytes/sift-cli/internal/config"
	"github.com/KaramelBytes/sift-cli/internal/pipeline"
	"github.com/KaramelBytes/sift-cli/internal/render"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Output flags (override config if set)
	flagChartsDir   string
	flagChartWidth  int
	flagChartHeight int

	// Loaded configuration
	cfg *cfgpkg.Global
	// Diagnostics go to stderr; results stay on stdout.
	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "sift",
	Short: "sift: bucket small category tables into Top-N + Other charts",
	Long: `sift loads small CSV/TSV/XLSX tables of category -> measure pairs, folds
minor categories into "Other" and renders pie charts, and compares two
selected items side by side as grouped bar charts.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// exitError ends the process with code after the command already reported
// the problem to the user.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.sift/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagChartsDir, "charts-dir", "", "directory for rendered charts (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagChartWidth, "width", 0, "chart width in pixels (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagChartHeight, "height", 0, "chart height in pixels (overrides config)")
}

func loadConfig() {
	initLogger()
	if _, err := effectiveConfig(); err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
	}
}

func initLogger() {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

// effectiveConfig returns the loaded config with CLI overrides applied.
func effectiveConfig() (*cfgpkg.Global, error) {
	if cfg == nil {
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = c
		logger.Debug().Str("charts_dir", cfg.ChartsDir).Float64("default_threshold", cfg.DefaultThreshold).Msg("config loaded")
	}

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("charts-dir") && flagChartsDir != "" {
		cfg.ChartsDir = flagChartsDir
	}
	if f.Changed("width") && flagChartWidth > 0 {
		cfg.ChartWidth = flagChartWidth
	}
	if f.Changed("height") && flagChartHeight > 0 {
		cfg.ChartHeight = flagChartHeight
	}
	return cfg, nil
}

// newRunner builds a pipeline runner from the effective configuration.
func newRunner() (*pipeline.Runner, error) {
	c, err := effectiveConfig()
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(c.ChartsDir, &logger)
	r.Defaults.Threshold = c.DefaultThreshold
	r.Defaults.ThresholdIsPercentage = c.DefaultThresholdIsPercentage
	r.Render = render.Options{Width: c.ChartWidth, Height: c.ChartHeight}
	return r, nil
}

// resolveInput returns path as given when it exists, otherwise the same
// relative path under the configured data_dir.
func resolveInput(path string) string {
	if _, err := os.Stat(path); err == nil || filepath.IsAbs(path) {
		return path
	}
	c, err := effectiveConfig()
	if err != nil || c.DataDir == "" {
		return path
	}
	candidate := filepath.Join(c.DataDir, path)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return path
}
