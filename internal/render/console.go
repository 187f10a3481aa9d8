package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/KaramelBytes/sift-cli/internal/aggregate"
	"github.com/KaramelBytes/sift-cli/internal/compare"
	"github.com/KaramelBytes/sift-cli/internal/label"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	defaultTermWidth = 80
	barGlyph         = "█"
	minBar           = 10
)

var headingStyle = lipgloss.NewStyle().Bold(true)

// TerminalWidth reports the width of stdout, or 80 when it is not a terminal.
func TerminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultTermWidth
	}
	return w
}

// Table prints res as an aligned table with a share column and a bar scaled
// to fit width columns.
func Table(w io.Writer, res *aggregate.Result, title string, width int) error {
	if width <= 0 {
		width = defaultTermWidth
	}
	header := []string{res.Key, res.ValueCol, "share"}
	rows := make([][]string, 0, len(res.Rows))
	for i, row := range res.Rows {
		rows = append(rows, []string{
			label.Title(row.Category),
			formatValue(row.Value()),
			fmt.Sprintf("%.1f%%", res.Share(i)),
		})
	}
	widths := columnWidths(header, rows)
	used := 0
	for _, cw := range widths {
		used += cw + 2
	}
	barMax := width - used - 1
	if barMax < minBar {
		barMax = minBar
	}

	if title != "" {
		fmt.Fprintln(w, headingStyle.Render(title))
	}
	fmt.Fprintln(w, formatRow(header, widths))
	fmt.Fprintln(w, formatRule(widths))
	for i, r := range rows {
		n := int(res.Share(i) / 100 * float64(barMax))
		fmt.Fprintf(w, "%s  %s\n", formatRow(r, widths), strings.Repeat(barGlyph, n))
	}
	if res.HasOther() {
		fmt.Fprintf(w, "%d categories below %s folded into %s\n", res.Demoted, formatValue(res.ThresholdAbs), aggregate.OtherLabel)
	}
	return nil
}

// ComparisonTable prints both series of cmp against their shared index.
func ComparisonTable(w io.Writer, cmp *compare.Result) error {
	if cmp == nil || cmp.Len() == 0 {
		return ErrEmpty
	}
	header := []string{cmp.IndexName, cmp.A.Name, cmp.B.Name}
	rows := make([][]string, cmp.Len())
	for i, idx := range cmp.Index {
		rows[i] = []string{idx, formatValue(cmp.A.Values[i]), formatValue(cmp.B.Values[i])}
	}
	widths := columnWidths(header, rows)
	fmt.Fprintln(w, headingStyle.Render(cmp.Title))
	fmt.Fprintln(w, formatRow(header, widths))
	fmt.Fprintln(w, formatRule(widths))
	for _, r := range rows {
		fmt.Fprintln(w, formatRow(r, widths))
	}
	return nil
}

func columnWidths(header []string, rows [][]string) []int {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range rows {
		for i, c := range r {
			if cw := runewidth.StringWidth(c); cw > widths[i] {
				widths[i] = cw
			}
		}
	}
	return widths
}

// formatRow left-aligns the first cell and right-aligns the rest.
func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		if i == 0 {
			parts[i] = runewidth.FillRight(c, widths[i])
		} else {
			parts[i] = runewidth.FillLeft(c, widths[i])
		}
	}
	return strings.Join(parts, "  ")
}

func formatRule(widths []int) string {
	parts := make([]string, len(widths))
	for i, cw := range widths {
		parts[i] = strings.Repeat("-", cw)
	}
	return strings.Join(parts, "  ")
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
