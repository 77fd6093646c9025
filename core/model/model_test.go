package model

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/clfreport/pkg/errors"
)

func TestStateManager(t *testing.T) {
	s := NewStateManager()
	assert.False(t, s.IsFitted())

	err := s.RequireFitted("KNeighborsClassifier", "Predict")
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf))

	s.SetFitted(3, 100)
	assert.True(t, s.IsFitted())
	assert.NoError(t, s.RequireFitted("KNeighborsClassifier", "Predict"))
	nFeatures, nSamples := s.GetDimensions()
	assert.Equal(t, 3, nFeatures)
	assert.Equal(t, 100, nSamples)

	assert.NoError(t, s.RequireFeatures("Predict", 3))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(s.RequireFeatures("Predict", 2), &dimErr))

	s.Reset()
	assert.False(t, s.IsFitted())
}

func TestStateManager_Concurrent(t *testing.T) {
	s := NewStateManager()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			s.SetFitted(n, n)
		}(i)
		go func() {
			defer wg.Done()
			_ = s.IsFitted()
		}()
	}
	wg.Wait()
	assert.True(t, s.IsFitted())
}

func TestCheckXy(t *testing.T) {
	X := mat.NewDense(3, 2, nil)

	n, p, labels, err := CheckXy("Fit", X, mat.NewVecDense(3, []float64{1, 0, 1}))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 2, p)
	assert.Equal(t, []float64{1, 0, 1}, labels)

	var dimErr *errors.DimensionError
	_, _, _, err = CheckXy("Fit", X, mat.NewVecDense(2, nil))
	assert.True(t, errors.As(err, &dimErr))
	_, _, _, err = CheckXy("Fit", X, mat.NewDense(3, 2, nil))
	assert.True(t, errors.As(err, &dimErr))

	_, _, _, err = CheckXy("Fit", X, mat.NewVecDense(3, []float64{0, math.NaN(), 1}))
	assert.Error(t, err)
	_, _, _, err = CheckXy("Fit", nil, nil)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}

func TestEncodeClasses(t *testing.T) {
	classes, encoded := EncodeClasses([]float64{3, 1, 3, 2})
	assert.Equal(t, []float64{1, 2, 3}, classes)
	assert.Equal(t, []int{2, 0, 2, 1}, encoded)
}

func TestAccuracy(t *testing.T) {
	pred := mat.NewDense(4, 1, []float64{0, 1, 1, 0})
	assert.Equal(t, 0.75, Accuracy(pred, []float64{0, 1, 0, 0}))
}

func TestParams(t *testing.T) {
	v, err := ParamInt("n_neighbors", 3.0)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	_, err = ParamInt("n_neighbors", 2.5)
	assert.Error(t, err)

	f, err := ParamFloat("ccp_alpha", 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, f)

	_, err = ParamString("metric", 1)
	assert.Error(t, err)
	_, err = ParamBool("bootstrap", "true")
	assert.Error(t, err)

	assert.Error(t, UnknownParam("KNeighborsClassifier", "leaf_size"))
	assert.Equal(t, "a: 1, b: None, c: sqrt", FormatParams(map[string]interface{}{"c": "sqrt", "a": 1, "b": nil}))
}
