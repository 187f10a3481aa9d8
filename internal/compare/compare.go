// Package compare extracts the rows worth showing when two columns of a table
// are compared side by side.
package compare

import (
	"sort"

	"github.com/KaramelBytes/sift-cli/internal/label"
	"github.com/KaramelBytes/sift-cli/internal/table"
)

// TopK is the number of leading rows taken from each compared column.
const TopK = 2

// Series is one named column of values aligned with Result.Index.
type Series struct {
	Name   string
	Values []float64
}

// Result holds two aligned series over a shared categorical index.
type Result struct {
	Title     string
	IndexName string
	Index     []string
	A, B      Series
}

// Len returns the number of compared rows.
func (r *Result) Len() int { return len(r.Index) }

// Build restricts t to columns a and b and keeps the union of the top rows of
// each, in that order, without duplicates. Index values and column names are
// passed through label.Format unless the key is a grouping index.
func Build(t *table.Table, a, b string) (*Result, error) {
	ki, err := t.KeyIndex()
	if err != nil {
		return nil, err
	}
	sub, err := t.Select(a, b)
	if err != nil {
		return nil, err
	}
	va, err := sub.Floats(sub.Header[1])
	if err != nil {
		return nil, err
	}
	vb, err := sub.Floats(sub.Header[2])
	if err != nil {
		return nil, err
	}

	rows := Top(va, TopK)
	picked := make(map[int]bool, 2*TopK)
	for _, i := range rows {
		picked[i] = true
	}
	for _, i := range Top(vb, TopK) {
		if !picked[i] {
			picked[i] = true
			rows = append(rows, i)
		}
	}

	display := label.Format
	if t.Schema.Grouped {
		display = func(s string) string { return s }
	}
	res := &Result{
		IndexName: t.Header[ki],
		A:         Series{Name: display(sub.Header[1])},
		B:         Series{Name: display(sub.Header[2])},
	}
	res.Title = res.A.Name + " and " + res.B.Name
	for _, i := range rows {
		res.Index = append(res.Index, display(sub.Rows[i][0]))
		res.A.Values = append(res.A.Values, va[i])
		res.B.Values = append(res.B.Values, vb[i])
	}
	return res, nil
}

// Top returns the indices of the k largest values, largest first. Ties keep
// their input order.
func Top(values []float64, k int) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return values[idx[i]] > values[idx[j]] })
	if k < len(idx) {
		idx = idx[:k]
	}
	return idx
}
