package table

import (
	"fmt"
	"strings"
)

// Table is an in-memory, row-oriented dataset loaded from a file with a header row.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
	Schema Schema
	// Format controls how numeric cells are parsed.
	Format NumberFormat
}

// Schema carries the named-field metadata that replaces positional conventions.
type Schema struct {
	// Key names the category column. Defaults to the first header cell.
	Key string
	// Grouped marks the key as a grouping index (composite or hierarchical)
	// whose values are shown verbatim instead of being reformatted.
	Grouped bool
}

// New builds a table, padding short rows and trimming cells.
// The first header cell becomes the key column.
func New(name string, header []string, rows [][]string) *Table {
	h := make([]string, len(header))
	for i, c := range header {
		h[i] = strings.TrimSpace(c)
	}
	t := &Table{Name: name, Header: h}
	for _, r := range rows {
		row := make([]string, len(h))
		for j := 0; j < len(h) && j < len(r); j++ {
			row[j] = strings.TrimSpace(r[j])
		}
		t.Rows = append(t.Rows, row)
	}
	if len(h) > 0 {
		t.Schema = Schema{Key: h[0], Grouped: IsGroupingName(h[0])}
	}
	return t
}

// IsGroupingName reports whether a column name denotes a grouping index rather
// than a plain category name.
func IsGroupingName(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	return n == "x" || n == CompositeColumn || strings.HasSuffix(n, "group") || strings.HasSuffix(n, "groups")
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index resolves a column name, first exactly and then case-insensitively.
func (t *Table) Index(col string) (int, error) {
	name := strings.TrimSpace(col)
	for i, h := range t.Header {
		if h == name {
			return i, nil
		}
	}
	for i, h := range t.Header {
		if strings.EqualFold(h, name) {
			return i, nil
		}
	}
	return -1, &ColumnError{Table: t.Name, Column: col}
}

// KeyIndex returns the position of the schema key column.
func (t *Table) KeyIndex() (int, error) {
	if t.Schema.Key == "" {
		if len(t.Header) == 0 {
			return -1, &ColumnError{Table: t.Name, Column: "(key)"}
		}
		return 0, nil
	}
	return t.Index(t.Schema.Key)
}

// Strings returns the cells of a column.
func (t *Table) Strings(col string) ([]string, error) {
	j, err := t.Index(col)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[j]
	}
	return out, nil
}

// Keys returns the key column values.
func (t *Table) Keys() ([]string, error) {
	j, err := t.KeyIndex()
	if err != nil {
		return nil, err
	}
	return t.Strings(t.Header[j])
}

// Floats parses a column as numbers. Any cell that is empty or not numeric
// yields a *TypeError; no coercion is attempted.
func (t *Table) Floats(col string) ([]float64, error) {
	j, err := t.Index(col)
	if err != nil {
		return nil, err
	}
	return t.floatsAt(j)
}

func (t *Table) floatsAt(j int) ([]float64, error) {
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		x, ok := ParseNumber(r[j], t.Format)
		if !ok {
			return nil, &TypeError{Table: t.Name, Column: t.Header[j], Row: i + 1, Value: r[j]}
		}
		out[i] = x
	}
	return out, nil
}

// IsNumeric reports whether every cell of the column at position j parses as a number.
func (t *Table) IsNumeric(j int) bool {
	if j < 0 || j >= len(t.Header) {
		return false
	}
	_, err := t.floatsAt(j)
	return err == nil
}

// WithKey returns a shallow copy keyed on another column.
func (t *Table) WithKey(col string) (*Table, error) {
	j, err := t.Index(col)
	if err != nil {
		return nil, err
	}
	cp := *t
	cp.Schema = Schema{Key: t.Header[j], Grouped: IsGroupingName(t.Header[j])}
	return &cp, nil
}

// Select restricts the table to the key column followed by the given columns.
func (t *Table) Select(cols ...string) (*Table, error) {
	kj, err := t.KeyIndex()
	if err != nil {
		return nil, err
	}
	idx := []int{kj}
	for _, c := range cols {
		j, err := t.Index(c)
		if err != nil {
			return nil, err
		}
		idx = append(idx, j)
	}
	header := make([]string, len(idx))
	for i, j := range idx {
		header[i] = t.Header[j]
	}
	out := &Table{Name: t.Name, Header: header, Schema: t.Schema, Format: t.Format}
	for _, r := range t.Rows {
		row := make([]string, len(idx))
		for i, j := range idx {
			row[i] = r[j]
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// Transpose swaps rows and columns: key values become column names and the
// remaining column names become the new key column, named newKey.
func (t *Table) Transpose(newKey string) (*Table, error) {
	kj, err := t.KeyIndex()
	if err != nil {
		return nil, err
	}
	header := []string{newKey}
	for _, r := range t.Rows {
		header = append(header, r[kj])
	}
	var rows [][]string
	for j, h := range t.Header {
		if j == kj {
			continue
		}
		row := []string{h}
		for _, r := range t.Rows {
			row = append(row, r[j])
		}
		rows = append(rows, row)
	}
	out := New(t.Name, header, rows)
	out.Format = t.Format
	return out, nil
}

// CompositeColumn is the name of the key column built by WithComposite.
const CompositeColumn = "label"

// WithComposite appends a column concatenating base and qualifier as
// "<base> (<qualifier>)" and makes it the grouping key.
func (t *Table) WithComposite(base, qualifier string, join func(base, qualifier string) string) (*Table, error) {
	bj, err := t.Index(base)
	if err != nil {
		return nil, err
	}
	qj, err := t.Index(qualifier)
	if err != nil {
		return nil, err
	}
	if join == nil {
		join = func(b, q string) string { return fmt.Sprintf("%s (%s)", b, q) }
	}
	header := append(append([]string{}, t.Header...), CompositeColumn)
	out := &Table{Name: t.Name, Header: header, Format: t.Format, Schema: Schema{Key: CompositeColumn, Grouped: true}}
	for _, r := range t.Rows {
		row := append(append([]string{}, r...), join(r[bj], r[qj]))
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}
