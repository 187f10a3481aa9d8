// Package aggregate buckets a categorical distribution into a ranked
// "Top-N + Other" summary.
package aggregate

import (
	"errors"
	"sort"

	"github.com/KaramelBytes/sift-cli/internal/table"
)

// OtherLabel is the category that absorbs every demoted row.
const OtherLabel = "Other"

// DefaultThreshold is the cut used when a dataset does not set one:
// 3 percent of the value column's total.
const DefaultThreshold = 3.0

// Options controls bucketing.
type Options struct {
	// KeyCol names the category column; empty means the table's schema key.
	KeyCol string
	// ValueCol names the magnitude column.
	ValueCol string
	// Threshold is the minimum magnitude a category needs to stay distinct.
	Threshold float64
	// ThresholdIsPercentage makes Threshold a percentage of the column total.
	ThresholdIsPercentage bool
}

// DefaultOptions returns the default threshold settings for a value column.
func DefaultOptions(valueCol string) Options {
	return Options{ValueCol: valueCol, Threshold: DefaultThreshold, ThresholdIsPercentage: true}
}

// Entry is one category/measure pair of a distribution.
type Entry struct {
	Category string
	Value    float64
}

// Row is one bucketed category with the sums of every numeric column.
// Values[0] is the value column.
type Row struct {
	Category string
	Values   []float64
}

// Value returns the row's measure.
func (r Row) Value() float64 { return r.Values[0] }

// Result is the bucketed table: kept rows sorted descending by value,
// followed by at most one "Other" row.
type Result struct {
	Key      string
	ValueCol string
	// Columns lists the summed numeric columns, value column first.
	Columns []string
	Rows    []Row
	// ThresholdAbs is the cut in value units after percentage conversion.
	ThresholdAbs float64
	// Demoted counts input rows relabeled as Other.
	Demoted int
}

// ErrNoValueColumn is returned when Options.ValueCol is empty.
var ErrNoValueColumn = errors.New("aggregate: value column is required")

// Aggregate collapses rows below the threshold into a single "Other" row.
//
// Rows are grouped by category in order of first appearance, summing every
// numeric column, so duplicate keys merge. Non-Other rows are sorted
// descending by value (stable on ties) and the Other row is appended last
// unless its value is exactly zero. A non-numeric or negative value yields a
// *table.TypeError; an empty table yields an empty result.
func Aggregate(t *table.Table, opt Options) (*Result, error) {
	if opt.ValueCol == "" {
		return nil, ErrNoValueColumn
	}
	var ki int
	var err error
	if opt.KeyCol != "" {
		ki, err = t.Index(opt.KeyCol)
	} else {
		ki, err = t.KeyIndex()
	}
	if err != nil {
		return nil, err
	}
	vi, err := t.Index(opt.ValueCol)
	if err != nil {
		return nil, err
	}
	values, err := t.Floats(t.Header[vi])
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		if v < 0 {
			return nil, &table.TypeError{Table: t.Name, Column: t.Header[vi], Row: i + 1, Value: t.Rows[i][vi], Reason: "is negative"}
		}
	}

	cols := []int{vi}
	for j := range t.Header {
		if j != ki && j != vi && t.IsNumeric(j) {
			cols = append(cols, j)
		}
	}
	res := &Result{Key: t.Header[ki], ValueCol: t.Header[vi]}
	for _, j := range cols {
		res.Columns = append(res.Columns, t.Header[j])
	}
	if t.Len() == 0 {
		return res, nil
	}

	in := make([]Row, t.Len())
	for i, r := range t.Rows {
		vals := make([]float64, len(cols))
		vals[0] = values[i]
		for c := 1; c < len(cols); c++ {
			vals[c], _ = table.ParseNumber(r[cols[c]], t.Format)
		}
		in[i] = Row{Category: r[ki], Values: vals}
	}
	res.Rows, res.ThresholdAbs, res.Demoted = bucket(in, opt.Threshold, opt.ThresholdIsPercentage)
	return res, nil
}

// Entries buckets a plain distribution.
func Entries(entries []Entry, threshold float64, isPercentage bool) []Entry {
	in := make([]Row, len(entries))
	for i, e := range entries {
		in[i] = Row{Category: e.Category, Values: []float64{e.Value}}
	}
	rows, _, _ := bucket(in, threshold, isPercentage)
	return toEntries(rows)
}

func bucket(in []Row, threshold float64, isPercentage bool) ([]Row, float64, int) {
	if len(in) == 0 {
		return nil, 0, 0
	}
	thr := threshold
	if isPercentage {
		var total float64
		for _, r := range in {
			total += r.Value()
		}
		thr = threshold * total / 100
	}

	var order []string
	groups := make(map[string][]float64)
	demoted := 0
	for _, r := range in {
		cat := r.Category
		if r.Value() < thr {
			cat = OtherLabel
			demoted++
		}
		sums, ok := groups[cat]
		if !ok {
			sums = make([]float64, len(r.Values))
			order = append(order, cat)
		}
		for c, v := range r.Values {
			sums[c] += v
		}
		groups[cat] = sums
	}

	out := make([]Row, 0, len(order))
	var other *Row
	for _, cat := range order {
		row := Row{Category: cat, Values: groups[cat]}
		if cat == OtherLabel {
			other = &row
			continue
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value() > out[j].Value() })
	if other != nil && other.Value() != 0 {
		out = append(out, *other)
	}
	return out, thr, demoted
}

func toEntries(rows []Row) []Entry {
	out := make([]Entry, len(rows))
	for i, r := range rows {
		out[i] = Entry{Category: r.Category, Value: r.Value()}
	}
	return out
}

// Distribution returns the category/value pairs in output order.
func (r *Result) Distribution() []Entry {
	return toEntries(r.Rows)
}

// Sum returns the total of the value column.
func (r *Result) Sum() float64 {
	var s float64
	for _, row := range r.Rows {
		s += row.Value()
	}
	return s
}

// HasOther reports whether the last row is the Other bucket.
func (r *Result) HasOther() bool {
	return len(r.Rows) > 0 && r.Rows[len(r.Rows)-1].Category == OtherLabel
}

// Share returns row i's percentage of the total, or 0 for a zero total.
func (r *Result) Share(i int) float64 {
	total := r.Sum()
	if total == 0 {
		return 0
	}
	return r.Rows[i].Value() * 100 / total
}
