// Package table provides Table, the row-oriented result type returned by the
// report helpers: a descriptive key column ("Features", "Metric", "Model")
// followed by value columns. Cells are either string or float64.
package table

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/YuminosukeSato/clfreport/pkg/errors"
)

// Table is an in-memory result table.
type Table struct {
	Columns []string
	Rows    [][]any
}

// New creates an empty table with the given column names.
func New(columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// Append adds a row. Every cell must be a string or float64 and the arity
// must match the columns.
func (t *Table) Append(cells ...any) error {
	if len(cells) != len(t.Columns) {
		return errors.NewDimensionError("Table.Append", len(t.Columns), len(cells), 1)
	}
	row := make([]any, len(cells))
	for j, c := range cells {
		switch v := c.(type) {
		case string, float64:
			row[j] = v
		case int:
			row[j] = float64(v)
		default:
			return errors.NewValidationError(t.Columns[j], "cell must be string or float64", c)
		}
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of a column, or -1.
func (t *Table) Index(column string) int {
	for j, c := range t.Columns {
		if c == column {
			return j
		}
	}
	return -1
}

// Cell returns the raw cell at row i of the named column.
func (t *Table) Cell(i int, column string) (any, error) {
	j := t.Index(column)
	if j < 0 {
		return nil, errors.NewValueError("Table.Cell", fmt.Sprintf("unknown column %q", column))
	}
	if i < 0 || i >= len(t.Rows) {
		return nil, errors.NewValueError("Table.Cell", fmt.Sprintf("row %d out of range [0, %d)", i, len(t.Rows)))
	}
	return t.Rows[i][j], nil
}

// Float returns a numeric cell.
func (t *Table) Float(i int, column string) (float64, error) {
	c, err := t.Cell(i, column)
	if err != nil {
		return 0, err
	}
	v, ok := c.(float64)
	if !ok {
		return 0, errors.NewValueError("Table.Float", fmt.Sprintf("column %q holds %T", column, c))
	}
	return v, nil
}

// Text returns a string cell.
func (t *Table) Text(i int, column string) (string, error) {
	c, err := t.Cell(i, column)
	if err != nil {
		return "", err
	}
	v, ok := c.(string)
	if !ok {
		return "", errors.NewValueError("Table.Text", fmt.Sprintf("column %q holds %T", column, c))
	}
	return v, nil
}

// Floats returns every value of a numeric column.
func (t *Table) Floats(column string) ([]float64, error) {
	out := make([]float64, t.Len())
	for i := range t.Rows {
		v, err := t.Float(i, column)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Texts returns every value of a string column.
func (t *Table) Texts(column string) ([]string, error) {
	out := make([]string, t.Len())
	for i := range t.Rows {
		v, err := t.Text(i, column)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// SortByFloat stable-sorts rows by a numeric column. Rows with equal values
// keep their relative order.
func (t *Table) SortByFloat(column string, descending bool) error {
	j := t.Index(column)
	if j < 0 {
		return errors.NewValueError("Table.SortByFloat", fmt.Sprintf("unknown column %q", column))
	}
	for _, row := range t.Rows {
		if _, ok := row[j].(float64); !ok {
			return errors.NewValueError("Table.SortByFloat", fmt.Sprintf("column %q is not numeric", column))
		}
	}
	sort.SliceStable(t.Rows, func(a, b int) bool {
		va, vb := t.Rows[a][j].(float64), t.Rows[b][j].(float64)
		if descending {
			return va > vb
		}
		return va < vb
	})
	return nil
}

// Melt unpivots the table from wide to long format like pandas.melt: every
// column not in idVars becomes a (varName, valueName) pair. Output order is
// value column first, then row, so all rows of the first value column come
// before those of the second.
func (t *Table) Melt(idVars []string, varName, valueName string) (*Table, error) {
	idIdx := make([]int, len(idVars))
	isID := make(map[int]bool, len(idVars))
	for k, name := range idVars {
		j := t.Index(name)
		if j < 0 {
			return nil, errors.NewValueError("Table.Melt", fmt.Sprintf("unknown id column %q", name))
		}
		idIdx[k] = j
		isID[j] = true
	}

	cols := append(append([]string{}, idVars...), varName, valueName)
	long := New(cols...)
	for j, name := range t.Columns {
		if isID[j] {
			continue
		}
		for _, row := range t.Rows {
			cells := make([]any, 0, len(cols))
			for _, k := range idIdx {
				cells = append(cells, row[k])
			}
			cells = append(cells, name, row[j])
			if err := long.Append(cells...); err != nil {
				return nil, err
			}
		}
	}
	return long, nil
}

// Render writes the table as ASCII art. Floats are printed with precision
// significant digits; precision < 0 uses the shortest exact representation.
func (t *Table) Render(w io.Writer, precision int) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(t.Columns)
	tw.SetAutoFormatHeaders(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, row := range t.Rows {
		tw.Append(formatRow(row, precision))
	}
	tw.Render()
}

func formatRow(row []any, precision int) []string {
	out := make([]string, len(row))
	for j, c := range row {
		switch v := c.(type) {
		case float64:
			out[j] = strconv.FormatFloat(v, 'g', precision, 64)
		default:
			out[j] = fmt.Sprint(v)
		}
	}
	return out
}
