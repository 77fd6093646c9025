package linear_model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/clfreport/pkg/errors"
)

// x=0 は 6 件中 2 件、x=1 は 6 件中 4 件が陽性
func twoByTwo() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(12, 1, []float64{0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1})
	y := mat.NewDense(12, 1, []float64{1, 1, 0, 0, 0, 0, 1, 1, 1, 1, 0, 0})
	return X, y
}

func TestLogisticRegression_FitPredict_Binary(t *testing.T) {
	X, y := twoByTwo()
	lr := NewLogisticRegression()
	require.NoError(t, lr.Fit(X, y))

	assert.InDelta(t, math.Log(0.5), lr.Intercept(), 1e-8)
	assert.InDelta(t, math.Log(4), lr.Coef()[0], 1e-8)
	assert.Greater(t, lr.NIter(), 0)
	assert.Equal(t, []float64{0, 1}, lr.Classes())

	proba, err := lr.PredictProba(mat.NewDense(2, 1, []float64{0, 1}))
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3, proba.At(0, 1), 1e-8)
	assert.InDelta(t, 2.0/3, proba.At(1, 1), 1e-8)
	assert.InDelta(t, 1.0, proba.At(0, 0)+proba.At(0, 1), 1e-12)

	pred, err := lr.Predict(mat.NewDense(2, 1, []float64{0, 1}))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, mat.Col(nil, 0, pred))

	score, err := lr.Score(X, y)
	require.NoError(t, err)
	assert.InDelta(t, 8.0/12, score, 1e-12)
}

func TestLogisticRegression_NoIntercept(t *testing.T) {
	X := mat.NewDense(8, 1, []float64{-2, -1, -1, 1, 1, 2, -0.5, 0.5})
	y := mat.NewDense(8, 1, []float64{0, 0, 1, 1, 0, 1, 0, 1})

	lr := NewLogisticRegression(WithLogisticFitIntercept(false))
	require.NoError(t, lr.Fit(X, y))
	assert.Equal(t, 0.0, lr.Intercept())
	assert.Len(t, lr.Coef(), 1)
	assert.Greater(t, lr.Coef()[0], 0.0)
}

func TestLogisticRegression_Errors(t *testing.T) {
	lr := NewLogisticRegression()
	_, err := lr.Predict(mat.NewDense(1, 1, nil))
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	// 完全分離
	sep := mat.NewDense(6, 1, []float64{1, 2, 3, 4, 5, 6})
	err = lr.Fit(sep, mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 1}))
	var sepErr *errors.PerfectSeparationError
	assert.True(t, errors.As(err, &sepErr))

	X, y := twoByTwo()
	require.NoError(t, lr.Fit(X, y))
	_, err = lr.Predict(mat.NewDense(1, 2, nil))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	assert.Error(t, lr.Fit(X, mat.NewDense(12, 1, []float64{0, 1, 2, 0, 1, 0, 1, 0, 1, 0, 1, 0})))
}

func TestLogisticRegression_Params(t *testing.T) {
	lr := NewLogisticRegression()
	require.NoError(t, lr.SetParams(map[string]interface{}{"max_iter": 50, "tol": 1e-6, "penalty": nil}))
	assert.Equal(t, 50, lr.GetParams()["max_iter"])

	clone := lr.Clone().(*LogisticRegression)
	assert.Equal(t, lr.GetParams(), clone.GetParams())
	assert.False(t, clone.IsFitted())

	assert.Error(t, lr.SetParams(map[string]interface{}{"penalty": "l2"}))
	assert.Error(t, lr.SetParams(map[string]interface{}{"C": 1.0}))
}
