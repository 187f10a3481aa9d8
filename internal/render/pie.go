// Package render draws bucketed distributions and comparisons as PNG charts
// and console tables.
package render

import (
	"errors"
	"fmt"
	"io"

	"github.com/KaramelBytes/sift-cli/internal/aggregate"
	"github.com/KaramelBytes/sift-cli/internal/label"
	chart "github.com/wcharczuk/go-chart/v2"
)

// Options sets chart dimensions in pixels.
type Options struct {
	Width  int
	Height int
}

// DefaultOptions matches a 10x6 inch figure at 100 dpi.
func DefaultOptions() Options {
	return Options{Width: 1000, Height: 600}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	return o
}

// ErrEmpty is returned when there is nothing to draw.
var ErrEmpty = errors.New("render: nothing to draw")

// Pie writes a PNG pie chart of res. Slice labels carry their share of the
// total; zero-valued rows are skipped.
func Pie(w io.Writer, res *aggregate.Result, title string, opt Options) error {
	opt = opt.withDefaults()
	total := res.Sum()
	if total <= 0 {
		return ErrEmpty
	}
	var values []chart.Value
	for i, row := range res.Rows {
		if row.Value() <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: row.Value(),
			Label: fmt.Sprintf("%s (%.1f%%)", label.Title(row.Category), res.Share(i)),
		})
	}
	if len(values) == 0 {
		return ErrEmpty
	}
	pie := chart.PieChart{
		Title:  title,
		Width:  opt.Width,
		Height: opt.Height,
		Values: values,
	}
	if err := pie.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render pie: %w", err)
	}
	return nil
}
