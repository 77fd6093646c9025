package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/clfreport/pkg/errors"
)

// applicants returns (income, debt_ratio) rows where default (1) happens
// exactly when debt_ratio > 0.5. Income has the same values in both classes.
func applicants() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(10, 2, []float64{
		5, 0.10,
		3, 0.20,
		4, 0.30,
		6, 0.40,
		2, 0.45,
		5, 0.60,
		3, 0.70,
		4, 0.80,
		6, 0.90,
		2, 0.95,
	})
	y := mat.NewDense(10, 1, []float64{0, 0, 0, 0, 0, 1, 1, 1, 1, 1})
	return X, y
}

func TestDecisionTreeClassifier_FitPredict_Default(t *testing.T) {
	for _, criterion := range []string{"gini", "entropy", "log_loss"} {
		t.Run(criterion, func(t *testing.T) {
			X, y := applicants()
			dt := NewDecisionTreeClassifier(WithCriterion(criterion), WithRandomState(0))
			require.NoError(t, dt.Fit(X, y))

			assert.Equal(t, []float64{0, 1}, dt.Classes())
			assert.Equal(t, 3, dt.NodeCount())
			assert.Equal(t, 1, dt.GetDepth())
			assert.Equal(t, 2, dt.GetNLeaves())

			pred, err := dt.Predict(X)
			require.NoError(t, err)
			assert.Equal(t, mat.Col(nil, 0, y), mat.Col(nil, 0, pred))

			newApplicants := mat.NewDense(2, 2, []float64{
				4, 0.2,
				4, 0.85,
			})
			pred, err = dt.Predict(newApplicants)
			require.NoError(t, err)
			assert.Equal(t, []float64{0, 1}, mat.Col(nil, 0, pred))

			imp, err := dt.FeatureImportances()
			require.NoError(t, err)
			assert.InDeltaSlice(t, []float64{0, 1}, imp, 1e-12)
		})
	}
}

func TestDecisionTreeClassifier_PredictProba(t *testing.T) {
	X, y := applicants()
	dt := NewDecisionTreeClassifier(WithMaxDepth(3))
	require.NoError(t, dt.Fit(X, y))

	proba, err := dt.PredictProba(X)
	require.NoError(t, err)
	r, c := proba.Dims()
	require.Equal(t, 10, r)
	require.Equal(t, 2, c)
	for i := 0; i < r; i++ {
		assert.InDelta(t, 1.0, proba.At(i, 0)+proba.At(i, 1), 1e-12)
		// 純粋な葉
		assert.Equal(t, y.At(i, 0), proba.At(i, 1))
	}
}

func TestDecisionTreeClassifier_Score(t *testing.T) {
	X, y := applicants()
	dt := NewDecisionTreeClassifier()
	require.NoError(t, dt.Fit(X, y))

	score, err := dt.Score(X, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)

	XTest := mat.NewDense(4, 2, []float64{
		4, 0.2,
		4, 0.85,
		4, 0.3,
		4, 0.9,
	})
	// 3 行目は低い負債比率なのに債務不履行
	yTest := mat.NewVecDense(4, []float64{0, 1, 1, 1})
	score, err = dt.Score(XTest, yTest)
	require.NoError(t, err)
	assert.Equal(t, 0.75, score)
}

func TestDecisionTreeClassifier_MaxFeatures(t *testing.T) {
	X, y := applicants()
	grid := mat.NewDense(4, 2, []float64{
		2, 0.1,
		6, 0.5,
		3, 0.55,
		5, 0.99,
	})

	for _, mf := range []interface{}{"sqrt", "log2", 1} {
		fit := func() (*DecisionTreeClassifier, mat.Matrix) {
			dt := NewDecisionTreeClassifier(WithMaxFeatures(mf), WithRandomState(42))
			require.NoError(t, dt.Fit(X, y))
			pred, err := dt.Predict(grid)
			require.NoError(t, err)
			return dt, pred
		}
		dt, first := fit()
		_, second := fit()
		assert.True(t, mat.Equal(first, second), "max_features=%v is deterministic for a fixed seed", mf)

		// 全行が異なるので完全に成長した木は訓練データに一致する
		score, err := dt.Score(X, y)
		require.NoError(t, err)
		assert.Equal(t, 1.0, score, "max_features=%v", mf)
	}

	dt := NewDecisionTreeClassifier(WithMaxFeatures("cube"))
	assert.Error(t, dt.Fit(X, y))
}

func TestDecisionTreeClassifier_CCPAlpha(t *testing.T) {
	X, y := applicants()

	path, err := NewDecisionTreeClassifier().CostComplexityPruningPath(X, y)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0.5}, path.CCPAlphas, 1e-12)
	assert.InDeltaSlice(t, []float64{0, 0.5}, path.Impurities, 1e-12)

	kept := NewDecisionTreeClassifier(WithCCPAlpha(0.49))
	require.NoError(t, kept.Fit(X, y))
	assert.Equal(t, 3, kept.NodeCount())

	// 根だけの木は同数のとき小さいラベルを返す
	pruned := NewDecisionTreeClassifier(WithCCPAlpha(0.5))
	require.NoError(t, pruned.Fit(X, y))
	assert.Equal(t, 1, pruned.NodeCount())
	pred, err := pruned.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, make([]float64, 10), mat.Col(nil, 0, pred))

	var valErr *errors.ValidationError
	err = NewDecisionTreeClassifier(WithCCPAlpha(-0.1)).Fit(X, y)
	assert.True(t, errors.As(err, &valErr))
}

func TestDecisionTreeClassifier_StoppingRules(t *testing.T) {
	X, y := stairData()

	tests := []struct {
		name   string
		opts   []Option
		nodes  int
		depth  int
		leaves int
	}{
		{name: "unlimited", nodes: 7, depth: 3, leaves: 4},
		{name: "max_depth", opts: []Option{WithMaxDepth(1)}, nodes: 3, depth: 1, leaves: 2},
		{name: "min_samples_leaf", opts: []Option{WithMinSamplesLeaf(3)}, nodes: 3, depth: 1, leaves: 2},
		{name: "min_samples_split", opts: []Option{WithMinSamplesSplit(7)}, nodes: 1, depth: 0, leaves: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt := NewDecisionTreeClassifier(append(tt.opts, WithRandomState(0))...)
			require.NoError(t, dt.Fit(X, y))
			assert.Equal(t, tt.nodes, dt.NodeCount())
			assert.Equal(t, tt.depth, dt.GetDepth())
			assert.Equal(t, tt.leaves, dt.GetNLeaves())
		})
	}

	dt := NewDecisionTreeClassifier(WithMinSamplesLeaf(3))
	require.NoError(t, dt.Fit(X, y))
	pred, err := dt.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 1, 1, 1}, mat.Col(nil, 0, pred))
}

func TestDecisionTreeClassifier_GetSetParams(t *testing.T) {
	dt := NewDecisionTreeClassifier()
	params := dt.GetParams()
	assert.Equal(t, "gini", params["criterion"])
	assert.Nil(t, params["max_depth"])
	assert.Nil(t, params["random_state"])
	assert.Equal(t, 0.0, params["ccp_alpha"])

	require.NoError(t, dt.SetParams(map[string]interface{}{
		"criterion":        "entropy",
		"max_depth":        3,
		"min_samples_leaf": 2.0,
		"max_features":     "sqrt",
		"random_state":     7,
	}))
	params = dt.GetParams()
	assert.Equal(t, "entropy", params["criterion"])
	assert.Equal(t, 3, params["max_depth"])
	assert.Equal(t, 2, params["min_samples_leaf"])
	assert.Equal(t, "sqrt", params["max_features"])
	assert.Equal(t, int64(7), params["random_state"])

	assert.Error(t, dt.SetParams(map[string]interface{}{"max_depth": 2.5}))

	X, y := applicants()
	bad := NewDecisionTreeClassifier(WithCriterion("mse"))
	var valErr *errors.ValidationError
	assert.True(t, errors.As(bad.Fit(X, y), &valErr))
}

func TestDecisionTreeClassifier_NotFitted(t *testing.T) {
	dt := NewDecisionTreeClassifier()
	X, y := applicants()

	var nf *errors.NotFittedError
	_, err := dt.Predict(X)
	assert.True(t, errors.As(err, &nf))
	_, err = dt.PredictProba(X)
	assert.True(t, errors.As(err, &nf))
	_, err = dt.FeatureImportances()
	assert.True(t, errors.As(err, &nf))
	assert.Equal(t, 0, dt.NodeCount())

	require.NoError(t, dt.Fit(X, y))
	_, err = dt.Predict(mat.NewDense(1, 3, nil))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}
