// Package linear_model provides an unpenalized binary LogisticRegression with
// the scikit-learn estimator interface, fitted by the Newton-Raphson solver
// of stats/logit.
package linear_model

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/clfreport/core/model"
	"github.com/YuminosukeSato/clfreport/pkg/errors"
	"github.com/YuminosukeSato/clfreport/stats/logit"
)

// LogisticRegression is a binary classifier for labels 0/1. It maximizes the
// plain likelihood (penalty=None), so coefficients equal those of
// stats/logit on the same design.
type LogisticRegression struct {
	state *model.StateManager // State management (composition)

	// Hyperparameters
	fitIntercept bool
	maxIter      int
	tol          float64

	// Model parameters
	coef_      []float64
	intercept_ float64
	nIter_     int
	classes_   []float64
	nFeatures_ int
}

// LogisticRegressionOption is a functional option for LogisticRegression.
type LogisticRegressionOption func(*LogisticRegression)

// NewLogisticRegression creates a classifier with an intercept and the
// logit solver defaults (35 iterations, tol 1e-8).
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		state:        model.NewStateManager(),
		fitIntercept: true,
		maxIter:      logit.DefaultMaxIter,
		tol:          logit.DefaultTol,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// WithLogisticFitIntercept sets whether to fit intercept.
func WithLogisticFitIntercept(fit bool) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.fitIntercept = fit
	}
}

// WithLRMaxIter sets the maximum number of Newton iterations.
func WithLRMaxIter(maxIter int) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithLRTol sets the tolerance on the largest parameter change.
func WithLRTol(tol float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

// Fit estimates the coefficients. Errors from the solver (non-convergence,
// singular design, perfect separation) are returned unchanged.
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures, labels, err := model.CheckXy("LogisticRegression.Fit", X, y)
	if err != nil {
		return err
	}

	design := X
	if lr.fitIntercept {
		design = logit.AddConstant(X)
	}
	// 既に定数列があれば AddConstant は列を追加しない
	_, k := design.Dims()
	hasConst := k > nFeatures

	m, err := logit.New(y, design, logit.WithMaxIter(lr.maxIter), logit.WithTol(lr.tol))
	if err != nil {
		return err
	}
	res, err := m.Fit()
	if err != nil {
		return errors.Wrap(err, "LogisticRegression.Fit")
	}

	lr.intercept_ = 0
	params := res.Params
	if hasConst {
		lr.intercept_ = params[0]
		params = params[1:]
	}
	lr.coef_ = append([]float64(nil), params...)
	lr.nIter_ = res.Iterations
	lr.classes_, _ = model.EncodeClasses(labels)
	lr.nFeatures_ = nFeatures
	lr.state.SetFitted(nFeatures, nSamples)
	return nil
}

// PredictProba returns P(y=0) and P(y=1) for each row (n×2).
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := lr.state.RequireFitted("LogisticRegression", "PredictProba"); err != nil {
		return nil, err
	}
	n, c := X.Dims()
	if err := lr.state.RequireFeatures("LogisticRegression.PredictProba", c); err != nil {
		return nil, err
	}
	z := mat.NewVecDense(n, nil)
	z.MulVec(X, mat.NewVecDense(c, lr.coef_))
	out := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		p := sigmoid(z.AtVec(i) + lr.intercept_)
		out.Set(i, 0, 1-p)
		out.Set(i, 1, p)
	}
	return out, nil
}

// Predict returns 1 where P(y=1) > 0.5 and 0 otherwise (n×1).
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := lr.PredictProba(X)
	if err != nil {
		return nil, err
	}
	n, _ := proba.Dims()
	pred := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		if proba.At(i, 1) > 0.5 {
			pred.Set(i, 0, 1)
		}
	}
	return pred, nil
}

// Score returns the mean accuracy on X and y.
func (lr *LogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	_, _, labels, err := model.CheckXy("LogisticRegression.Score", X, y)
	if err != nil {
		return 0, err
	}
	pred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	return model.Accuracy(pred, labels), nil
}

// Coef returns the feature coefficients.
func (lr *LogisticRegression) Coef() []float64 {
	return lr.coef_
}

// Intercept returns the intercept, 0 when it was not fitted.
func (lr *LogisticRegression) Intercept() float64 {
	return lr.intercept_
}

// NIter returns the number of Newton iterations of the last Fit.
func (lr *LogisticRegression) NIter() int {
	return lr.nIter_
}

// Classes returns the class labels seen during Fit.
func (lr *LogisticRegression) Classes() []float64 {
	return lr.classes_
}

// IsFitted reports whether Fit has completed.
func (lr *LogisticRegression) IsFitted() bool {
	return lr.state.IsFitted()
}

// GetParams returns the hyperparameters keyed by scikit-learn name.
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"penalty":       nil,
		"fit_intercept": lr.fitIntercept,
		"max_iter":      lr.maxIter,
		"tol":           lr.tol,
	}
}

// SetParams sets hyperparameters by scikit-learn name. Only penalty=None is
// accepted.
func (lr *LogisticRegression) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		var err error
		switch key {
		case "penalty":
			if value != nil && value != "none" {
				return errors.NewValidationError("penalty", "only None is supported", value)
			}
		case "fit_intercept":
			lr.fitIntercept, err = model.ParamBool(key, value)
		case "max_iter":
			lr.maxIter, err = model.ParamInt(key, value)
		case "tol":
			lr.tol, err = model.ParamFloat(key, value)
		default:
			return model.UnknownParam("LogisticRegression", key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Clone returns an unfitted copy with the same hyperparameters.
func (lr *LogisticRegression) Clone() model.ParamEstimator {
	return &LogisticRegression{
		state:        model.NewStateManager(),
		fitIntercept: lr.fitIntercept,
		maxIter:      lr.maxIter,
		tol:          lr.tol,
	}
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
