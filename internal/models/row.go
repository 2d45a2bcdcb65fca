package models

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Row is a single result row. Column order is kept so that rendered tables
// and JSON objects list columns the way the query selected them.
type Row struct {
	Columns []string
	Values  []any
}

// NewRow builds a row from parallel column and value slices.
func NewRow(columns []string, values []any) Row {
	return Row{Columns: columns, Values: values}
}

// Get returns the value for column and whether the column exists.
func (r Row) Get(column string) (any, bool) {
	for i, c := range r.Columns {
		if c == column {
			return r.Values[i], true
		}
	}
	return nil, false
}

// Len returns the number of columns.
func (r Row) Len() int {
	return len(r.Columns)
}

// Clone returns a copy whose value slice can be modified independently.
func (r Row) Clone() Row {
	values := make([]any, len(r.Values))
	copy(values, r.Values)
	return Row{Columns: r.Columns, Values: values}
}

// MarshalJSON encodes the row as a JSON object with keys in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var v any
		if i < len(r.Values) {
			v = r.Values[i]
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
