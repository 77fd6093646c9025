// Package neighbors provides a k-nearest-neighbors classifier compatible
// with scikit-learn's KNeighborsClassifier (brute-force search, uniform
// weights).
package neighbors

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/clfreport/core/model"
	"github.com/YuminosukeSato/clfreport/core/parallel"
	"github.com/YuminosukeSato/clfreport/pkg/errors"
)

// Rows below this count are predicted on the calling goroutine.
const parallelThreshold = 256

// KNeighborsClassifier votes among the k training samples closest to each
// query row.
type KNeighborsClassifier struct {
	state *model.StateManager

	nNeighbors int
	metric     string  // "minkowski", "euclidean" or "manhattan"
	p          float64 // Minkowski power, used when metric is "minkowski"

	xTrain   *mat.Dense
	yEncoded []int
	classes_ []float64
}

// Option is a functional option for KNeighborsClassifier.
type Option func(*KNeighborsClassifier)

// NewKNeighborsClassifier creates a classifier with scikit-learn defaults
// (5 neighbors, Minkowski p=2).
func NewKNeighborsClassifier(opts ...Option) *KNeighborsClassifier {
	knn := &KNeighborsClassifier{
		state:      model.NewStateManager(),
		nNeighbors: 5,
		metric:     "minkowski",
		p:          2,
	}
	for _, opt := range opts {
		opt(knn)
	}
	return knn
}

// WithNNeighbors sets k.
func WithNNeighbors(k int) Option {
	return func(knn *KNeighborsClassifier) {
		knn.nNeighbors = k
	}
}

// WithMetric sets the distance metric.
func WithMetric(metric string) Option {
	return func(knn *KNeighborsClassifier) {
		knn.metric = metric
	}
}

// WithP sets the Minkowski power.
func WithP(p float64) Option {
	return func(knn *KNeighborsClassifier) {
		knn.p = p
	}
}

func (knn *KNeighborsClassifier) power() (float64, error) {
	switch knn.metric {
	case "manhattan", "cityblock", "l1":
		return 1, nil
	case "euclidean", "l2":
		return 2, nil
	case "minkowski":
		if knn.p < 1 {
			return 0, errors.NewValidationError("p", "must be >= 1", knn.p)
		}
		return knn.p, nil
	}
	return 0, errors.NewValidationError("metric", "must be 'minkowski', 'euclidean' or 'manhattan'", knn.metric)
}

// Fit stores the training data.
func (knn *KNeighborsClassifier) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures, labels, err := model.CheckXy("KNeighborsClassifier.Fit", X, y)
	if err != nil {
		return err
	}
	if knn.nNeighbors < 1 {
		return errors.NewValidationError("n_neighbors", "must be >= 1", knn.nNeighbors)
	}
	if _, err := knn.power(); err != nil {
		return err
	}
	knn.xTrain = mat.DenseCopyOf(X)
	knn.classes_, knn.yEncoded = model.EncodeClasses(labels)
	knn.state.SetFitted(nFeatures, nSamples)
	return nil
}

// Kneighbors returns, for each row of X, the indices of the k closest
// training samples ordered by distance. Equal distances keep training order.
func (knn *KNeighborsClassifier) Kneighbors(X mat.Matrix) ([][]int, error) {
	if err := knn.state.RequireFitted("KNeighborsClassifier", "Kneighbors"); err != nil {
		return nil, err
	}
	n, c := X.Dims()
	if err := knn.state.RequireFeatures("KNeighborsClassifier.Kneighbors", c); err != nil {
		return nil, err
	}
	_, nFit := knn.state.GetDimensions()
	if knn.nNeighbors > nFit {
		return nil, errors.NewValueError("KNeighborsClassifier.Kneighbors",
			fmt.Sprintf("expected n_neighbors <= n_samples_fit, but n_neighbors = %d, n_samples_fit = %d", knn.nNeighbors, nFit))
	}
	p, _ := knn.power()

	out := make([][]int, n)
	parallel.ParallelizeWithThreshold(n, parallelThreshold, func(start, end int) {
		row := make([]float64, c)
		dist := make([]float64, nFit)
		order := make([]int, nFit)
		for i := start; i < end; i++ {
			mat.Row(row, i, X)
			for j := 0; j < nFit; j++ {
				dist[j] = floats.Distance(row, knn.xTrain.RawRowView(j), p)
				order[j] = j
			}
			sort.SliceStable(order, func(a, b int) bool { return dist[order[a]] < dist[order[b]] })
			out[i] = append([]int(nil), order[:knn.nNeighbors]...)
		}
	})
	return out, nil
}

// PredictProba returns the fraction of the k neighbors in each class.
func (knn *KNeighborsClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	neighbors, err := knn.Kneighbors(X)
	if err != nil {
		return nil, err
	}
	proba := mat.NewDense(len(neighbors), len(knn.classes_), nil)
	for i, idx := range neighbors {
		for _, j := range idx {
			proba.Set(i, knn.yEncoded[j], proba.At(i, knn.yEncoded[j])+1)
		}
		for k := range knn.classes_ {
			proba.Set(i, k, proba.At(i, k)/float64(len(idx)))
		}
	}
	return proba, nil
}

// Predict returns the majority class among the neighbors of each row (n×1).
// Ties go to the smaller class label.
func (knn *KNeighborsClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := knn.PredictProba(X)
	if err != nil {
		return nil, err
	}
	n, _ := proba.Dims()
	pred := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		row := proba.(*mat.Dense).RawRowView(i)
		pred.Set(i, 0, knn.classes_[floats.MaxIdx(row)])
	}
	return pred, nil
}

// Score returns the mean accuracy on X and y.
func (knn *KNeighborsClassifier) Score(X, y mat.Matrix) (float64, error) {
	_, _, labels, err := model.CheckXy("KNeighborsClassifier.Score", X, y)
	if err != nil {
		return 0, err
	}
	pred, err := knn.Predict(X)
	if err != nil {
		return 0, err
	}
	return model.Accuracy(pred, labels), nil
}

// Classes returns the sorted class labels seen during Fit.
func (knn *KNeighborsClassifier) Classes() []float64 {
	return append([]float64(nil), knn.classes_...)
}

// IsFitted reports whether Fit has completed.
func (knn *KNeighborsClassifier) IsFitted() bool {
	return knn.state.IsFitted()
}

// GetParams returns the hyperparameters keyed by scikit-learn name.
func (knn *KNeighborsClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_neighbors": knn.nNeighbors,
		"metric":      knn.metric,
		"p":           knn.p,
		"weights":     "uniform",
	}
}

// SetParams sets hyperparameters by scikit-learn name. Only uniform
// weights are supported.
func (knn *KNeighborsClassifier) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		var err error
		switch key {
		case "n_neighbors":
			knn.nNeighbors, err = model.ParamInt(key, value)
		case "metric":
			knn.metric, err = model.ParamString(key, value)
		case "p":
			knn.p, err = model.ParamFloat(key, value)
		case "weights":
			var w string
			if w, err = model.ParamString(key, value); err == nil && w != "uniform" {
				err = errors.NewValidationError(key, "only 'uniform' is supported", w)
			}
		default:
			return model.UnknownParam("KNeighborsClassifier", key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Clone returns an unfitted classifier with the same hyperparameters.
func (knn *KNeighborsClassifier) Clone() model.ParamEstimator {
	return &KNeighborsClassifier{
		state:      model.NewStateManager(),
		nNeighbors: knn.nNeighbors,
		metric:     knn.metric,
		p:          knn.p,
	}
}
