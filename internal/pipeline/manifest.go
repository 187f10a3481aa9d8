// Package pipeline turns a manifest of dataset descriptors into charts.
package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/sift-cli/internal/selection"
	"gopkg.in/yaml.v3"
)

// ColumnPlaceholder is replaced by the column name in the title of a wide
// descriptor.
const ColumnPlaceholder = "{column}"

// Descriptor names one dataset and how to chart it.
type Descriptor struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	Sheet  string `yaml:"sheet,omitempty"`
	// KeyCol defaults to the first column.
	KeyCol string `yaml:"key,omitempty"`
	// QualifierCol, when set, builds a "<key> (<qualifier>)" grouping label.
	QualifierCol string `yaml:"qualifier,omitempty"`
	ValueCol     string `yaml:"value,omitempty"`
	// Threshold and ThresholdIsPercentage fall back to the runner defaults.
	Threshold             *float64 `yaml:"threshold,omitempty"`
	ThresholdIsPercentage *bool    `yaml:"percentage,omitempty"`
	Title                 string   `yaml:"title,omitempty"`
	Output                string   `yaml:"output_name,omitempty"`
	// Wide charts every numeric column after the key separately.
	Wide bool `yaml:"wide,omitempty"`
	// Grouped marks the key as a grouping index.
	Grouped bool `yaml:"grouped,omitempty"`
}

// OutputName is the chart file stem, defaulting to the descriptor name.
func (d Descriptor) OutputName() string {
	if d.Output != "" {
		return d.Output
	}
	return d.Name
}

// ComparisonSpec describes a table whose rows and columns are both
// selectable kinds, such as provinces by foods.
type ComparisonSpec struct {
	Name       string `yaml:"name"`
	Source     string `yaml:"source"`
	Sheet      string `yaml:"sheet,omitempty"`
	RowKind    string `yaml:"rows"`
	ColumnKind string `yaml:"columns"`
	// OptionsSource lists the offered items in its first column.
	OptionsSource string `yaml:"options,omitempty"`
	// Grouped shows index values and column names verbatim.
	Grouped bool `yaml:"grouped,omitempty"`
}

// Kinds parses RowKind and ColumnKind.
func (c ComparisonSpec) Kinds() (rows, cols selection.Kind, err error) {
	var ok bool
	if rows, ok = selection.ParseKind(c.RowKind); !ok {
		return rows, cols, fmt.Errorf("comparison %q: unknown rows kind %q", c.Name, c.RowKind)
	}
	if cols, ok = selection.ParseKind(c.ColumnKind); !ok {
		return rows, cols, fmt.Errorf("comparison %q: unknown columns kind %q", c.Name, c.ColumnKind)
	}
	if rows == cols {
		return rows, cols, fmt.Errorf("comparison %q: rows and columns are both %s", c.Name, rows)
	}
	return rows, cols, nil
}

// Manifest is the YAML document listing datasets and comparisons.
type Manifest struct {
	Datasets    []Descriptor     `yaml:"datasets"`
	Comparisons []ComparisonSpec `yaml:"comparisons,omitempty"`

	path string
}

// Path returns the file the manifest was loaded from, if any.
func (m *Manifest) Path() string { return m.path }

// LoadManifest reads and validates a manifest. Relative sources resolve
// against the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", filepath.Base(path), err)
	}
	m.path = path
	dir := filepath.Dir(path)
	for i := range m.Datasets {
		m.Datasets[i].Source = resolve(dir, m.Datasets[i].Source)
	}
	for i := range m.Comparisons {
		m.Comparisons[i].Source = resolve(dir, m.Comparisons[i].Source)
		m.Comparisons[i].OptionsSource = resolve(dir, m.Comparisons[i].OptionsSource)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Validate reports every problem found in the manifest.
func (m *Manifest) Validate() error {
	var errs []error
	seen := map[string]bool{}
	for i, d := range m.Datasets {
		where := fmt.Sprintf("datasets[%d]", i)
		if d.Name != "" {
			where = fmt.Sprintf("dataset %q", d.Name)
		}
		switch {
		case d.Name == "":
			errs = append(errs, fmt.Errorf("%s: name is required", where))
		case seen[d.Name]:
			errs = append(errs, fmt.Errorf("%s: duplicate name", where))
		}
		seen[d.Name] = true
		if d.Source == "" {
			errs = append(errs, fmt.Errorf("%s: source is required", where))
		}
		if d.ValueCol == "" && !d.Wide {
			errs = append(errs, fmt.Errorf("%s: value column is required unless wide is set", where))
		}
		if d.Threshold != nil && *d.Threshold < 0 {
			errs = append(errs, fmt.Errorf("%s: threshold must be >= 0", where))
		}
		if d.Wide && d.Title != "" && !strings.Contains(d.Title, ColumnPlaceholder) {
			errs = append(errs, fmt.Errorf("%s: wide title must contain %s", where, ColumnPlaceholder))
		}
	}
	cseen := map[string]bool{}
	for i, c := range m.Comparisons {
		where := fmt.Sprintf("comparisons[%d]", i)
		if c.Name == "" {
			errs = append(errs, fmt.Errorf("%s: name is required", where))
		} else if cseen[c.Name] {
			errs = append(errs, fmt.Errorf("comparison %q: duplicate name", c.Name))
		}
		cseen[c.Name] = true
		if c.Source == "" {
			errs = append(errs, fmt.Errorf("%s: source is required", where))
		}
		if _, _, err := c.Kinds(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Dataset returns the descriptor with the given name.
func (m *Manifest) Dataset(name string) (Descriptor, bool) {
	for _, d := range m.Datasets {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Comparison returns the comparison with the given name.
func (m *Manifest) Comparison(name string) (ComparisonSpec, bool) {
	for _, c := range m.Comparisons {
		if c.Name == name {
			return c, true
		}
	}
	return ComparisonSpec{}, false
}

// ComparisonFor picks the first comparison offering kind, preferring one
// that has kind as its columns.
func (m *Manifest) ComparisonFor(kind selection.Kind) (ComparisonSpec, bool) {
	var fallback *ComparisonSpec
	for i, c := range m.Comparisons {
		rows, cols, err := c.Kinds()
		if err != nil {
			continue
		}
		if cols == kind {
			return c, true
		}
		if rows == kind && fallback == nil {
			fallback = &m.Comparisons[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return ComparisonSpec{}, false
}
