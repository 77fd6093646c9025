package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/clfreport/pkg/errors"
)

func TestNew(t *testing.T) {
	f, err := New([]string{"age", "income"}, mat.NewDense(2, 2, []float64{30, 1000, 40, 2000}))
	require.NoError(t, err)

	r, c := f.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, "income", f.Column(1))
	assert.Equal(t, 2000.0, f.At(1, 1))

	var _ mat.Matrix = f

	cols := f.Columns()
	cols[0] = "mutated"
	assert.Equal(t, "age", f.Column(0), "Columns returns a copy")
}

func TestNewDimensionMismatch(t *testing.T) {
	_, err := New([]string{"only"}, mat.NewDense(1, 2, []float64{1, 2}))
	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 2, dimErr.Expected)

	_, err = New([]string{"a"}, nil)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}

func TestFromRowsAndRows(t *testing.T) {
	f, err := FromRows([]string{"x", "y"}, [][]float64{{1, 2}, {3, 4}, {5, 6}})
	require.NoError(t, err)

	sub := f.Rows([]int{2, 0})
	assert.Equal(t, []float64{5, 6}, mat.Row(nil, 0, sub))
	assert.Equal(t, []float64{1, 2}, mat.Row(nil, 1, sub))
	assert.Equal(t, []string{"x", "y"}, sub.Columns())

	_, err = FromRows([]string{"x", "y"}, [][]float64{{1}})
	assert.Error(t, err)
	_, err = FromRows([]string{"x"}, nil)
	assert.Error(t, err)
}
