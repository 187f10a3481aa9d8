package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	DataDir   string `mapstructure:"data_dir" yaml:"data_dir"`
	ChartsDir string `mapstructure:"charts_dir" yaml:"charts_dir"`
	Manifest  string `mapstructure:"manifest" yaml:"manifest"`

	// Bucketing defaults for datasets that do not set their own threshold
	DefaultThreshold             float64 `mapstructure:"default_threshold" yaml:"default_threshold"`
	DefaultThresholdIsPercentage bool    `mapstructure:"default_threshold_is_percentage" yaml:"default_threshold_is_percentage"`

	// Chart size in pixels
	ChartWidth  int `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight int `mapstructure:"chart_height" yaml:"chart_height"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"data_dir",
	"charts_dir",
	"manifest",
	"default_threshold",
	"default_threshold_is_percentage",
	"chart_width",
	"chart_height",
}

// Dir returns ~/.sift.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".sift"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.sift/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SIFT")
	v.AutomaticEnv()

	v.SetDefault("data_dir", "data")
	v.SetDefault("charts_dir", "charts")
	v.SetDefault("manifest", "sift.yaml")
	v.SetDefault("default_threshold", 3.0)
	v.SetDefault("default_threshold_is_percentage", true)
	v.SetDefault("chart_width", 1000)
	v.SetDefault("chart_height", 600)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.DefaultThreshold < 0 {
		return nil, fmt.Errorf("default_threshold must be >= 0, got %v", c.DefaultThreshold)
	}
	return &c, nil
}
