// Package frame provides Frame, a feature matrix with column labels.
//
// A Frame embeds *mat.Dense, so it can be passed to any estimator that accepts
// a mat.Matrix while the report helpers can still recover feature names.
package frame

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/clfreport/pkg/errors"
)

// Frame is a labelled feature matrix, one row per observation.
type Frame struct {
	*mat.Dense
	columns []string
}

// New wraps data with column labels. len(columns) must equal the number of
// columns of data.
func New(columns []string, data *mat.Dense) (*Frame, error) {
	if data == nil {
		return nil, errors.Wrap(errors.ErrEmptyData, "frame.New")
	}
	_, c := data.Dims()
	if len(columns) != c {
		return nil, errors.NewDimensionError("frame.New", c, len(columns), 1)
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Frame{Dense: data, columns: cols}, nil
}

// FromRows builds a Frame from row-major values.
func FromRows(columns []string, rows [][]float64) (*Frame, error) {
	if len(rows) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "frame.FromRows")
	}
	data := mat.NewDense(len(rows), len(columns), nil)
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, errors.NewDimensionError("frame.FromRows", len(columns), len(row), 1)
		}
		data.SetRow(i, row)
	}
	return New(columns, data)
}

// Columns returns a copy of the column labels.
func (f *Frame) Columns() []string {
	cols := make([]string, len(f.columns))
	copy(cols, f.columns)
	return cols
}

// Column returns the label of column j.
func (f *Frame) Column(j int) string {
	return f.columns[j]
}

// Rows returns a new Frame holding the given rows in order.
func (f *Frame) Rows(indices []int) *Frame {
	_, c := f.Dims()
	data := mat.NewDense(len(indices), c, nil)
	for i, idx := range indices {
		data.SetRow(i, f.RawRowView(idx))
	}
	return &Frame{Dense: data, columns: f.columns}
}
