package render

import (
	"fmt"
	"io"

	"github.com/KaramelBytes/sift-cli/internal/compare"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const barWidth = 24

// GroupedBar writes a PNG bar chart with the two series of cmp side by side
// over the shared index.
func GroupedBar(w io.Writer, cmp *compare.Result, opt Options) error {
	opt = opt.withDefaults()
	if cmp == nil || cmp.Len() == 0 {
		return ErrEmpty
	}
	p := plot.New()
	p.Title.Text = cmp.Title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = cmp.IndexName
	p.Y.Min = 0

	bw := vg.Points(barWidth)
	series := []compare.Series{cmp.A, cmp.B}
	offsets := []vg.Length{-bw / 2, bw / 2}
	for i, s := range series {
		bars, err := plotter.NewBarChart(plotter.Values(s.Values), bw)
		if err != nil {
			return fmt.Errorf("bar series %q: %w", s.Name, err)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		bars.Offset = offsets[i]
		p.Add(bars)
		p.Legend.Add(s.Name, bars)
	}
	p.Legend.Top = true
	p.NominalX(cmp.Index...)

	// vgimg renders at 96 dpi
	width := vg.Length(opt.Width) * vg.Inch / 96
	height := vg.Length(opt.Height) * vg.Inch / 96
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("render bar: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write bar: %w", err)
	}
	return nil
}
