package pipeline

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/sift-cli/internal/compare"
	"github.com/KaramelBytes/sift-cli/internal/render"
	"github.com/KaramelBytes/sift-cli/internal/selection"
	"github.com/KaramelBytes/sift-cli/internal/table"
	"github.com/KaramelBytes/sift-cli/internal/utils"
)

// Comparison is a table oriented so that the chosen kind runs across its
// columns, together with the items offered for selection.
type Comparison struct {
	Spec    ComparisonSpec
	Kind    selection.Kind
	Table   *table.Table
	Options []string
}

// PrepareComparison loads spec's table and orients it for kind, transposing
// when kind names the rows. A province index is shown verbatim.
func (r *Runner) PrepareComparison(spec ComparisonSpec, kind selection.Kind) (*Comparison, error) {
	rows, cols, err := spec.Kinds()
	if err != nil {
		return nil, err
	}
	t, err := r.load(spec.Source, spec.Sheet)
	if err != nil {
		return nil, err
	}
	index := rows
	switch kind {
	case cols:
	case rows:
		if t, err = t.Transpose(keyName(cols)); err != nil {
			return nil, err
		}
		index = cols
	default:
		return nil, fmt.Errorf("comparison %q does not offer %s", spec.Name, kind)
	}

	// province names are proper nouns and are never pluralized
	if spec.Grouped || index == selection.Provinces {
		t.Schema.Grouped = true
	}
	c := &Comparison{Spec: spec, Kind: kind, Table: t}
	kj, err := t.KeyIndex()
	if err != nil {
		return nil, err
	}
	available := map[string]bool{}
	for j, h := range t.Header {
		if j != kj && h != "" {
			available[h] = true
			if spec.OptionsSource == "" {
				c.Options = append(c.Options, h)
			}
		}
	}
	if spec.OptionsSource != "" {
		ot, err := r.load(spec.OptionsSource, "")
		if err != nil {
			return nil, err
		}
		keys, err := ot.Keys()
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			if available[k] {
				c.Options = append(c.Options, k)
			} else if k != "" {
				r.log().Warn().Str("comparison", spec.Name).Str("option", k).Msg("option not found in table, skipped")
			}
		}
	}
	r.log().Debug().Str("comparison", spec.Name).Stringer("kind", kind).Int("options", len(c.Options)).Msg("comparison prepared")
	return c, nil
}

// Compare builds the comparison of a and b and writes its grouped bar chart.
func (r *Runner) Compare(c *Comparison, a, b string) (*compare.Result, string, error) {
	res, err := compare.Build(c.Table, a, b)
	if err != nil {
		return nil, "", err
	}
	if err := utils.EnsureDir(r.OutDir); err != nil {
		return nil, "", fmt.Errorf("create output dir: %w", err)
	}
	var buf bytes.Buffer
	if err := render.GroupedBar(&buf, res, r.Render); err != nil {
		return nil, "", fmt.Errorf("%s: %w", res.Title, err)
	}
	path := filepath.Join(r.OutDir, fmt.Sprintf("%s_%s_vs_%s.png", c.Kind, columnSlug(a), columnSlug(b)))
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return nil, "", err
	}
	r.log().Info().Str("comparison", c.Spec.Name).Str("a", a).Str("b", b).Int("rows", res.Len()).Str("path", path).Msg("comparison written")
	if r.Console != nil {
		if err := render.ComparisonTable(r.Console, res); err != nil {
			return nil, "", err
		}
	}
	return res, path, nil
}

// Interactive asks p for two of c's options and compares them.
func (r *Runner) Interactive(c *Comparison, p *selection.Prompter) (*compare.Result, string, error) {
	a, b, err := p.SelectTwo(c.Options, c.Kind)
	if err != nil {
		return nil, "", err
	}
	return r.Compare(c, a, b)
}

// keyName is the singular column name used for an index of kind k.
func keyName(k selection.Kind) string {
	return strings.TrimSuffix(k.String(), "s")
}
