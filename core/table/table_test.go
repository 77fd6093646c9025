package table

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/clfreport/pkg/errors"
)

func TestAppendValidatesCells(t *testing.T) {
	tb := New("Metric", "Value")
	require.NoError(t, tb.Append("Recall", 0.875))
	require.NoError(t, tb.Append("Count", 3))

	err := tb.Append("Precision")
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	err = tb.Append("F1", []float64{0.8})
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))

	assert.Equal(t, 2, tb.Len())
	v, err := tb.Float(1, "Value")
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
}

func TestAccessors(t *testing.T) {
	tb := New("Feature", "Importance")
	require.NoError(t, tb.Append("age", 0.6))
	require.NoError(t, tb.Append("income", 0.4))

	name, err := tb.Text(1, "Feature")
	require.NoError(t, err)
	assert.Equal(t, "income", name)

	_, err = tb.Float(0, "Feature")
	assert.Error(t, err)
	_, err = tb.Cell(0, "Missing")
	assert.Error(t, err)
	_, err = tb.Cell(5, "Feature")
	assert.Error(t, err)

	names, err := tb.Texts("Feature")
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "income"}, names)
	values, err := tb.Floats("Importance")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.6, 0.4}, values)
}

func TestSortByFloatIsStable(t *testing.T) {
	tb := New("Feature", "Importance")
	for _, r := range []struct {
		name string
		imp  float64
	}{{"a", 0.1}, {"b", 0.3}, {"c", 0.1}, {"d", 0.3}, {"e", 0.2}} {
		require.NoError(t, tb.Append(r.name, r.imp))
	}

	require.NoError(t, tb.SortByFloat("Importance", true))
	names, _ := tb.Texts("Feature")
	assert.Equal(t, []string{"b", "d", "e", "a", "c"}, names)

	require.NoError(t, tb.SortByFloat("Importance", false))
	names, _ = tb.Texts("Feature")
	assert.Equal(t, []string{"a", "c", "e", "b", "d"}, names)

	assert.Error(t, tb.SortByFloat("Feature", true))
	assert.Error(t, tb.SortByFloat("nope", true))
}

func TestMelt(t *testing.T) {
	wide := New("Model", "Recall", "AUC")
	require.NoError(t, wide.Append("A", 0.7, 0.8))
	require.NoError(t, wide.Append("B", 0.6, 0.7))

	long, err := wide.Melt([]string{"Model"}, "Metric", "Value")
	require.NoError(t, err)
	assert.Equal(t, []string{"Model", "Metric", "Value"}, long.Columns)
	assert.Equal(t, [][]any{
		{"A", "Recall", 0.7},
		{"B", "Recall", 0.6},
		{"A", "AUC", 0.8},
		{"B", "AUC", 0.7},
	}, long.Rows)

	_, err = wide.Melt([]string{"Name"}, "Metric", "Value")
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	tb := New("Metric", "Value")
	require.NoError(t, tb.Append("Precision", 0.7777777))

	var buf bytes.Buffer
	tb.Render(&buf, 4)
	out := buf.String()
	assert.Contains(t, out, "Metric")
	assert.Contains(t, out, "Precision")
	assert.Contains(t, out, "0.7778")
}
