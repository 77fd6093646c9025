package model_selection

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/clfreport/core/model"
	"github.com/YuminosukeSato/clfreport/core/parallel"
	"github.com/YuminosukeSato/clfreport/pkg/errors"
)

// DefaultFolds is the number of folds used when no splitter is given.
const DefaultFolds = 5

// foldData is the materialized train/test data of one fold.
type foldData struct {
	XTrain, yTrain *mat.Dense
	XTest, yTest   *mat.Dense
}

func materialize(X, y mat.Matrix, folds []Fold) []foldData {
	out := make([]foldData, len(folds))
	for i, f := range folds {
		out[i] = foldData{
			XTrain: takeRows(X, f.Train),
			yTrain: takeRows(y, f.Train),
			XTest:  takeRows(X, f.Test),
			yTest:  takeRows(y, f.Test),
		}
	}
	return out
}

func takeRows(m mat.Matrix, indices []int) *mat.Dense {
	_, c := m.Dims()
	out := mat.NewDense(len(indices), c, nil)
	for i, idx := range indices {
		for j := 0; j < c; j++ {
			out.Set(i, j, m.At(idx, j))
		}
	}
	return out
}

// fitAndScore fits a fresh clone of est with params on the fold's training
// rows and returns its accuracy on the test rows.
func fitAndScore(est model.ParamEstimator, params map[string]interface{}, fd foldData) (float64, error) {
	clone := est.Clone()
	if len(params) > 0 {
		if err := clone.SetParams(params); err != nil {
			return 0, err
		}
	}
	if err := clone.Fit(fd.XTrain, fd.yTrain); err != nil {
		return 0, err
	}
	return score(clone, fd.XTest, fd.yTest)
}

func score(est model.Estimator, X, y mat.Matrix) (float64, error) {
	if s, ok := est.(model.Scorer); ok {
		return s.Score(X, y)
	}
	pred, err := est.Predict(X)
	if err != nil {
		return 0, err
	}
	n, _ := y.Dims()
	labels := make([]float64, n)
	for i := range labels {
		labels[i] = y.At(i, 0)
	}
	return model.Accuracy(pred, labels), nil
}

// CrossValScore returns the test accuracy of est on each fold of cv. A nil
// cv means 5-fold StratifiedKFold without shuffling. est itself is never
// fitted; each fold uses a clone. nJobs follows parallel.Workers.
func CrossValScore(ctx context.Context, est model.ParamEstimator, X, y mat.Matrix, cv Splitter, nJobs int) ([]float64, error) {
	if est == nil {
		return nil, errors.NewValueError("CrossValScore", "nil estimator")
	}
	if cv == nil {
		cv = NewStratifiedKFold(DefaultFolds, false, 0)
	}
	if _, _, _, err := model.CheckXy("CrossValScore", X, y); err != nil {
		return nil, err
	}
	folds, err := cv.Split(X, y)
	if err != nil {
		return nil, err
	}
	data := materialize(X, y, folds)

	scores := make([]float64, len(folds))
	err = parallel.Do(ctx, len(folds), nJobs, func(_ context.Context, i int) error {
		s, err := fitAndScore(est, nil, data[i])
		if err != nil {
			return errors.Wrapf(err, "fold %d", i)
		}
		scores[i] = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return scores, nil
}
