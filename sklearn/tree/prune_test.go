package tree

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/clfreport/pkg/errors"
)

// stairData grows a full tree with a subtree at node 2 that is pruned at
// alpha 0.125 before the root at 0.25.
func stairData() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(6, 1, []float64{1, 2, 3, 4, 5, 6})
	y := mat.NewDense(6, 1, []float64{0, 0, 1, 0, 1, 1})
	return X, y
}

func TestCostComplexityPruningPath(t *testing.T) {
	X, y := stairData()
	dt := NewDecisionTreeClassifier(WithRandomState(0))

	path, err := dt.CostComplexityPruningPath(X, y)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{0, 0.125, 0.25}, path.CCPAlphas, 1e-12)
	assert.InDeltaSlice(t, []float64{0, 0.25, 0.5}, path.Impurities, 1e-12)
	assert.False(t, dt.IsFitted(), "the path must not fit the receiver")

	for i := 1; i < len(path.CCPAlphas); i++ {
		assert.GreaterOrEqual(t, path.CCPAlphas[i], path.CCPAlphas[i-1])
		assert.GreaterOrEqual(t, path.Impurities[i], path.Impurities[i-1])
	}
}

func TestCCPAlpha_Pruning(t *testing.T) {
	X, y := stairData()

	tests := []struct {
		name      string
		alpha     float64
		nodes     int
		leaves    int
		depth     int
		trainPred []float64
	}{
		{name: "unpruned", alpha: 0, nodes: 7, leaves: 4, depth: 3, trainPred: []float64{0, 0, 1, 0, 1, 1}},
		{name: "below first link", alpha: 0.1, nodes: 7, leaves: 4, depth: 3, trainPred: []float64{0, 0, 1, 0, 1, 1}},
		{name: "at first link", alpha: 0.125, nodes: 3, leaves: 2, depth: 1, trainPred: []float64{0, 0, 1, 1, 1, 1}},
		{name: "between links", alpha: 0.2, nodes: 3, leaves: 2, depth: 1, trainPred: []float64{0, 0, 1, 1, 1, 1}},
		{name: "root only", alpha: 0.25, nodes: 1, leaves: 1, depth: 0, trainPred: []float64{0, 0, 0, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt := NewDecisionTreeClassifier(WithCCPAlpha(tt.alpha), WithRandomState(0))
			require.NoError(t, dt.Fit(X, y))

			assert.Equal(t, tt.nodes, dt.NodeCount())
			assert.Equal(t, tt.leaves, dt.GetNLeaves())
			assert.Equal(t, tt.depth, dt.GetDepth())

			pred, err := dt.Predict(X)
			require.NoError(t, err)
			assert.Equal(t, tt.trainPred, mat.Col(nil, 0, pred))
		})
	}
}

func TestFeatureImportances_RootOnly(t *testing.T) {
	X, y := stairData()
	dt := NewDecisionTreeClassifier(WithCCPAlpha(1))
	require.NoError(t, dt.Fit(X, y))

	imp, err := dt.FeatureImportances()
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, imp)
}

func TestFeatureImportances_NotFitted(t *testing.T) {
	dt := NewDecisionTreeClassifier()
	_, err := dt.FeatureImportances()

	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))
	assert.Nil(t, dt.GetFeatureImportances())
}

func TestRandomState_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	X := mat.NewDense(60, 5, nil)
	y := mat.NewDense(60, 1, nil)
	for i := 0; i < 60; i++ {
		for j := 0; j < 5; j++ {
			X.Set(i, j, rng.NormFloat64())
		}
		if X.At(i, 0)+0.5*X.At(i, 3)+0.3*rng.NormFloat64() > 0 {
			y.Set(i, 0, 1)
		}
	}

	fit := func() []float64 {
		dt := NewDecisionTreeClassifier(WithMaxFeatures("sqrt"), WithRandomState(42))
		require.NoError(t, dt.Fit(X, y))
		imp, err := dt.FeatureImportances()
		require.NoError(t, err)
		return imp
	}
	first := fit()
	assert.Equal(t, first, fit())

	var sum float64
	for _, v := range first {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestResolveMaxFeatures(t *testing.T) {
	tests := []struct {
		in      interface{}
		want    int
		wantErr bool
	}{
		{in: nil, want: 10},
		{in: "sqrt", want: 3},
		{in: "log2", want: 3},
		{in: 4, want: 4},
		{in: 0.5, want: 5},
		{in: 11, wantErr: true},
		{in: "cube", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ResolveMaxFeatures(tt.in, 10)
		if tt.wantErr {
			assert.Error(t, err, "%v", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}

	got, err := ResolveMaxFeatures("log2", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestSetParams_Unknown(t *testing.T) {
	dt := NewDecisionTreeClassifier()
	assert.Error(t, dt.SetParams(map[string]interface{}{"n_neighbors": 3}))

	require.NoError(t, dt.SetParams(map[string]interface{}{"ccp_alpha": 0.01, "max_depth": nil}))
	clone := dt.Clone().(*DecisionTreeClassifier)
	assert.Equal(t, dt.GetParams(), clone.GetParams())
	assert.False(t, clone.IsFitted())
}
