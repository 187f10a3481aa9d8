package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/sift-cli/internal/aggregate"
	"github.com/KaramelBytes/sift-cli/internal/label"
	"github.com/KaramelBytes/sift-cli/internal/parser"
	"github.com/KaramelBytes/sift-cli/internal/render"
	"github.com/KaramelBytes/sift-cli/internal/table"
	"github.com/KaramelBytes/sift-cli/internal/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// LoadFunc reads a table from disk.
type LoadFunc func(path string, opt parser.Options) (*table.Table, error)

// Runner processes descriptors into chart files.
type Runner struct {
	Load     LoadFunc
	Logger   *zerolog.Logger
	Defaults aggregate.Options
	OutDir   string
	Render   render.Options
	// Console, when set, receives a text table for every chart.
	Console io.Writer
	Width   int
	// Progress, when set, is called before each dataset of a run.
	Progress func(i, n int, d Descriptor)
}

// NewRunner returns a runner writing into outDir with default thresholds.
func NewRunner(outDir string, logger *zerolog.Logger) *Runner {
	return &Runner{
		Load:     parser.LoadFile,
		Logger:   logger,
		Defaults: aggregate.DefaultOptions(""),
		OutDir:   outDir,
		Render:   render.DefaultOptions(),
	}
}

// ChartRecord describes one written chart.
type ChartRecord struct {
	Dataset    string  `json:"dataset"`
	Column     string  `json:"column"`
	Title      string  `json:"title"`
	Path       string  `json:"path"`
	Categories int     `json:"categories"`
	Demoted    int     `json:"demoted"`
	Threshold  float64 `json:"threshold"`
	Total      float64 `json:"total"`
}

// Run summarizes one pass over a manifest.
type Run struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Manifest  string        `json:"manifest,omitempty"`
	Charts    []ChartRecord `json:"charts"`
}

func (r *Runner) log() *zerolog.Logger {
	if r.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return r.Logger
}

func (r *Runner) load(path, sheet string) (*table.Table, error) {
	load := r.Load
	if load == nil {
		load = parser.LoadFile
	}
	t, err := load(path, parser.Options{Sheet: sheet})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// Run charts every dataset of m in order and stops at the first failure.
func (r *Runner) Run(m *Manifest) (*Run, error) {
	run := &Run{ID: uuid.New().String(), StartedAt: time.Now(), Manifest: m.Path()}
	if err := utils.EnsureDir(r.OutDir); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	r.log().Info().Str("run", run.ID).Int("datasets", len(m.Datasets)).Msg("run started")
	for i, d := range m.Datasets {
		if r.Progress != nil {
			r.Progress(i+1, len(m.Datasets), d)
		}
		recs, err := r.Dataset(d)
		if err != nil {
			return run, fmt.Errorf("dataset %q: %w", d.Name, err)
		}
		run.Charts = append(run.Charts, recs...)
	}
	r.log().Info().Str("run", run.ID).Int("charts", len(run.Charts)).Dur("elapsed", time.Since(run.StartedAt)).Msg("run finished")
	return run, nil
}

// Prepare loads d's table with its key and composite label applied and
// resolves the descriptor's threshold against the runner defaults.
func (r *Runner) Prepare(d Descriptor) (*table.Table, aggregate.Options, error) {
	opt := r.Defaults
	opt.ValueCol = d.ValueCol
	if d.Threshold != nil {
		opt.Threshold = *d.Threshold
	}
	if d.ThresholdIsPercentage != nil {
		opt.ThresholdIsPercentage = *d.ThresholdIsPercentage
	}
	t, err := r.load(d.Source, d.Sheet)
	if err != nil {
		return nil, opt, err
	}
	if d.KeyCol != "" {
		if t, err = t.WithKey(d.KeyCol); err != nil {
			return nil, opt, err
		}
	}
	if d.QualifierCol != "" {
		if t, err = t.WithComposite(t.Schema.Key, d.QualifierCol, label.Composite); err != nil {
			return nil, opt, err
		}
	}
	if d.Grouped {
		t.Schema.Grouped = true
	}
	return t, opt, nil
}

// Dataset loads one descriptor's table and writes its pie chart, or one
// chart per numeric column when the descriptor is wide.
func (r *Runner) Dataset(d Descriptor) ([]ChartRecord, error) {
	t, opt, err := r.Prepare(d)
	if err != nil {
		return nil, err
	}

	cols := []string{d.ValueCol}
	if d.Wide {
		if cols, err = numericColumns(t); err != nil {
			return nil, err
		}
		if len(cols) == 0 {
			return nil, fmt.Errorf("%s: no numeric columns to chart", t.Name)
		}
	}
	if err := utils.EnsureDir(r.OutDir); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var recs []ChartRecord
	for _, col := range cols {
		opt.ValueCol = col
		res, err := aggregate.Aggregate(t, opt)
		if err != nil {
			return recs, err
		}
		rec := ChartRecord{
			Dataset:    d.Name,
			Column:     res.ValueCol,
			Title:      chartTitle(d, res),
			Path:       filepath.Join(r.OutDir, chartName(d, res.ValueCol)+".png"),
			Categories: len(res.Rows),
			Demoted:    res.Demoted,
			Threshold:  res.ThresholdAbs,
			Total:      res.Sum(),
		}
		var buf bytes.Buffer
		if err := render.Pie(&buf, res, rec.Title, r.Render); err != nil {
			return recs, fmt.Errorf("%s: %w", rec.Title, err)
		}
		if err := utils.SafeWriteFile(rec.Path, buf.Bytes()); err != nil {
			return recs, err
		}
		r.log().Info().
			Str("dataset", d.Name).
			Str("column", rec.Column).
			Int("categories", rec.Categories).
			Int("demoted", rec.Demoted).
			Float64("threshold", rec.Threshold).
			Str("path", rec.Path).
			Msg("chart written")
		if r.Console != nil {
			if err := render.Table(r.Console, res, rec.Title, r.Width); err != nil {
				return recs, err
			}
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func numericColumns(t *table.Table) ([]string, error) {
	kj, err := t.KeyIndex()
	if err != nil {
		return nil, err
	}
	var cols []string
	for j, h := range t.Header {
		if j != kj && h != "" && t.IsNumeric(j) {
			cols = append(cols, h)
		}
	}
	return cols, nil
}

func chartTitle(d Descriptor, res *aggregate.Result) string {
	switch {
	case d.Wide && d.Title != "":
		return strings.ReplaceAll(d.Title, ColumnPlaceholder, columnTitle(res.ValueCol))
	case d.Wide:
		return fmt.Sprintf("Distribution of %s by %s", label.Title(res.Key), columnTitle(res.ValueCol))
	case d.Title != "":
		return d.Title
	default:
		return fmt.Sprintf("Distribution of %s by %s", label.Format(res.Key), label.Title(res.ValueCol))
	}
}

func chartName(d Descriptor, col string) string {
	if !d.Wide {
		return d.OutputName()
	}
	return d.OutputName() + "_" + columnSlug(col)
}

// columnTitle capitalizes each whitespace-separated word of a column name.
func columnTitle(col string) string {
	return cases.Title(language.English).String(strings.Join(strings.Fields(col), " "))
}

// columnSlug lowercases a column name and joins its words with underscores.
func columnSlug(col string) string {
	return strings.ToLower(strings.Join(strings.Fields(col), "_"))
}
