package aggregate

import (
	"fmt"
	"strings"
)

// Markdown renders a compact summary of the bucketed table.
func (r *Result) Markdown(title string) string {
	var b strings.Builder
	b.WriteString("[DISTRIBUTION]\n")
	if title != "" {
		b.WriteString(fmt.Sprintf("Title: %s\n", title))
	}
	b.WriteString(fmt.Sprintf("Key: %s\n", safeName(r.Key)))
	b.WriteString(fmt.Sprintf("Value: %s\n", safeName(r.ValueCol)))
	b.WriteString(fmt.Sprintf("Threshold: %.4g\n", r.ThresholdAbs))
	b.WriteString(fmt.Sprintf("Categories: %d", len(r.Rows)))
	if r.Demoted > 0 {
		b.WriteString(fmt.Sprintf(" (%d merged into %s)", r.Demoted, OtherLabel))
	}
	b.WriteString("\n\n")
	if len(r.Rows) == 0 {
		b.WriteString("(no rows)\n")
		return b.String()
	}
	b.WriteString("| ")
	b.WriteString(safeName(r.Key))
	for _, c := range r.Columns {
		b.WriteString(" | ")
		b.WriteString(safeName(c))
	}
	b.WriteString(" | share |\n|---")
	for range r.Columns {
		b.WriteString("|---")
	}
	b.WriteString("|---|\n")
	for i, row := range r.Rows {
		b.WriteString("| ")
		b.WriteString(safeVal(row.Category))
		for _, v := range row.Values {
			b.WriteString(fmt.Sprintf(" | %.4g", v))
		}
		b.WriteString(fmt.Sprintf(" | %.1f%% |\n", r.Share(i)))
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
