package neighbors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/clfreport/pkg/errors"
)

func TestKNeighborsClassifier_FitPredict(t *testing.T) {
	X := mat.NewDense(6, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		5, 5,
		5, 6,
		6, 5,
	})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 1})

	for _, metric := range []string{"manhattan", "euclidean", "minkowski"} {
		t.Run(metric, func(t *testing.T) {
			knn := NewKNeighborsClassifier(WithNNeighbors(3), WithMetric(metric))
			require.NoError(t, knn.Fit(X, y))

			pred, err := knn.Predict(mat.NewDense(2, 2, []float64{0.2, 0.2, 5.5, 5.5}))
			require.NoError(t, err)
			assert.Equal(t, []float64{0, 1}, mat.Col(nil, 0, pred))

			score, err := knn.Score(X, y)
			require.NoError(t, err)
			assert.Equal(t, 1.0, score)
		})
	}
}

func TestKNeighborsClassifier_Distances(t *testing.T) {
	// (3,0) と (2,2) は manhattan では 3 と 4、euclidean では 3 と 2.83
	X := mat.NewDense(2, 2, []float64{3, 0, 2, 2})
	y := mat.NewDense(2, 1, []float64{0, 1})
	query := mat.NewDense(1, 2, []float64{0, 0})

	manhattan := NewKNeighborsClassifier(WithNNeighbors(1), WithMetric("manhattan"))
	require.NoError(t, manhattan.Fit(X, y))
	pred, err := manhattan.Predict(query)
	require.NoError(t, err)
	assert.Equal(t, 0.0, pred.At(0, 0))

	euclidean := NewKNeighborsClassifier(WithNNeighbors(1), WithMetric("euclidean"))
	require.NoError(t, euclidean.Fit(X, y))
	pred, err = euclidean.Predict(query)
	require.NoError(t, err)
	assert.Equal(t, 1.0, pred.At(0, 0))
}

func TestKNeighborsClassifier_TiesGoToSmallerLabel(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{-1, 1, -2, 2})
	y := mat.NewDense(4, 1, []float64{1, 0, 1, 0})

	knn := NewKNeighborsClassifier(WithNNeighbors(2), WithMetric("manhattan"))
	require.NoError(t, knn.Fit(X, y))

	proba, err := knn.PredictProba(mat.NewDense(1, 1, []float64{0}))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5}, mat.Row(nil, 0, proba))

	pred, err := knn.Predict(mat.NewDense(1, 1, []float64{0}))
	require.NoError(t, err)
	assert.Equal(t, 0.0, pred.At(0, 0))

	// 同距離の近傍は学習データ順
	idx, err := knn.Kneighbors(mat.NewDense(1, 1, []float64{0}))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, idx[0])
}

func TestKNeighborsClassifier_Errors(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(3, 1, []float64{0, 1, 0})

	knn := NewKNeighborsClassifier()
	_, err := knn.Predict(X)
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	require.NoError(t, knn.Fit(X, y))
	_, err = knn.Predict(X)
	assert.Error(t, err, "5 neighbors with 3 training samples")

	bad := NewKNeighborsClassifier(WithMetric("cosine"))
	assert.Error(t, bad.Fit(X, y))

	assert.Error(t, knn.SetParams(map[string]interface{}{"weights": "distance"}))
	assert.Error(t, knn.SetParams(map[string]interface{}{"leaf_size": 30}))
}

func TestKNeighborsClassifier_ParamsAndClone(t *testing.T) {
	knn := NewKNeighborsClassifier()
	require.NoError(t, knn.SetParams(map[string]interface{}{"n_neighbors": 7, "metric": "manhattan"}))

	params := knn.GetParams()
	assert.Equal(t, 7, params["n_neighbors"])
	assert.Equal(t, "manhattan", params["metric"])

	clone := knn.Clone().(*KNeighborsClassifier)
	assert.Equal(t, params, clone.GetParams())
	assert.False(t, clone.IsFitted())
}
