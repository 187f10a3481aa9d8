package table

import "fmt"

// ColumnError reports a column the caller expected but the table lacks.
type ColumnError struct {
	Table  string
	Column string
}

func (e *ColumnError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("missing column %q", e.Column)
	}
	return fmt.Sprintf("%s: missing column %q", e.Table, e.Column)
}

// TypeError reports a non-numeric cell in a column that must be numeric.
// Row is 1-based and does not count the header. Reason, when set, replaces
// the default "is not numeric" wording.
type TypeError struct {
	Table  string
	Column string
	Row    int
	Value  string
	Reason string
}

func (e *TypeError) Error() string {
	prefix := ""
	if e.Table != "" {
		prefix = e.Table + ": "
	}
	if e.Reason != "" {
		return fmt.Sprintf("%scolumn %q row %d: %q %s", prefix, e.Column, e.Row, e.Value, e.Reason)
	}
	if e.Value == "" {
		return fmt.Sprintf("%scolumn %q row %d: empty value where a number is required", prefix, e.Column, e.Row)
	}
	return fmt.Sprintf("%scolumn %q row %d: %q is not numeric", prefix, e.Column, e.Row, e.Value)
}
