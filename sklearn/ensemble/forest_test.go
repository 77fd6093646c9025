package ensemble

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/clfreport/pkg/errors"
)

// informative returns rows whose class depends only on feature 0; the
// other two columns are noise.
func informative(n int, seed int64) (*mat.Dense, *mat.Dense) {
	rng := rand.New(rand.NewSource(seed))
	X := mat.NewDense(n, 3, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		c := float64(i % 2)
		y.Set(i, 0, c)
		X.Set(i, 0, 4*c+rng.Float64())
		X.Set(i, 1, rng.NormFloat64())
		X.Set(i, 2, rng.NormFloat64())
	}
	return X, y
}

func TestRandomForestClassifier_Fit(t *testing.T) {
	X, y := informative(80, 1)
	rf := NewRandomForestClassifier(WithNEstimators(25), WithRandomState(42))
	require.NoError(t, rf.Fit(X, y))

	assert.Len(t, rf.Estimators(), 25)
	assert.Equal(t, []float64{0, 1}, rf.Classes())

	score, err := rf.Score(X, y)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, score, 0.95)

	proba, err := rf.PredictProba(X)
	require.NoError(t, err)
	r, c := proba.Dims()
	assert.Equal(t, 80, r)
	assert.Equal(t, 2, c)
	for i := 0; i < r; i++ {
		assert.InDelta(t, 1.0, proba.At(i, 0)+proba.At(i, 1), 1e-12)
	}

	imp, err := rf.FeatureImportances()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, floats.Sum(imp), 1e-9)
	assert.Equal(t, 0, floats.MaxIdx(imp))
}

func TestRandomForestClassifier_Deterministic(t *testing.T) {
	X, y := informative(60, 2)

	a := NewRandomForestClassifier(WithNEstimators(10), WithRandomState(7), WithMinSamplesLeaf(2))
	b := NewRandomForestClassifier(WithNEstimators(10), WithRandomState(7), WithMinSamplesLeaf(2), WithNJobs(-1))
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))

	pa, err := a.PredictProba(X)
	require.NoError(t, err)
	pb, err := b.PredictProba(X)
	require.NoError(t, err)
	assert.True(t, mat.Equal(pa, pb), "n_jobs must not change the result")

	ia, _ := a.FeatureImportances()
	ib, _ := b.FeatureImportances()
	assert.Equal(t, ia, ib)
}

func TestRandomForestClassifier_NoBootstrap(t *testing.T) {
	X, y := informative(40, 3)
	rf := NewRandomForestClassifier(WithNEstimators(5), WithBootstrap(false), WithMaxFeatures(nil), WithRandomState(0))
	require.NoError(t, rf.Fit(X, y))

	// 全特徴量・全サンプルなので全ての木が同じ分割になる
	first := rf.Estimators()[0].NodeCount()
	for _, est := range rf.Estimators() {
		assert.Equal(t, first, est.NodeCount())
	}
}

func TestRandomForestClassifier_ConstantFeatures(t *testing.T) {
	X := mat.NewDense(6, 2, nil)
	y := mat.NewDense(6, 1, []float64{0, 1, 0, 1, 0, 1})
	rf := NewRandomForestClassifier(WithNEstimators(3), WithRandomState(1))
	require.NoError(t, rf.Fit(X, y))

	imp, err := rf.FeatureImportances()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, imp)
}

func TestRandomForestClassifier_Errors(t *testing.T) {
	X, y := informative(10, 4)

	rf := NewRandomForestClassifier()
	_, err := rf.Predict(X)
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))
	_, err = rf.FeatureImportances()
	assert.True(t, errors.As(err, &nf))

	assert.Error(t, NewRandomForestClassifier(WithNEstimators(0)).Fit(X, y))
	assert.Error(t, NewRandomForestClassifier(WithMaxFeatures("cube")).Fit(X, y))
	assert.Error(t, NewRandomForestClassifier(WithMinSamplesLeaf(0)).Fit(X, y))

	fitted := NewRandomForestClassifier(WithNEstimators(2))
	require.NoError(t, fitted.Fit(X, y))
	_, err = fitted.Predict(mat.NewDense(2, 2, nil))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}

func TestRandomForestClassifier_ParamsAndClone(t *testing.T) {
	rf := NewRandomForestClassifier()
	params := rf.GetParams()
	assert.Equal(t, 100, params["n_estimators"])
	assert.Equal(t, "sqrt", params["max_features"])
	assert.Nil(t, params["max_depth"])
	assert.Nil(t, params["random_state"])

	require.NoError(t, rf.SetParams(map[string]interface{}{
		"n_estimators":     350,
		"max_features":     "log2",
		"min_samples_leaf": 10,
		"random_state":     42,
		"n_jobs":           -1,
	}))
	clone := rf.Clone().(*RandomForestClassifier)
	assert.Equal(t, rf.GetParams(), clone.GetParams())
	assert.Equal(t, int64(42), clone.GetParams()["random_state"])
	assert.False(t, clone.IsFitted())

	assert.Error(t, rf.SetParams(map[string]interface{}{"oob_score": true}))
	assert.Error(t, rf.SetParams(map[string]interface{}{"bootstrap": "yes"}))
}
