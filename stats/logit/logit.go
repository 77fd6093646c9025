// Package logit fits binary logistic regression by maximum likelihood and
// reports the inference statistics of statsmodels' Logit: standard errors,
// z-statistics, p-values, confidence intervals, log-likelihoods, McFadden's
// pseudo R-squared and information criteria.
//
// Unlike sklearn/linear_model-style estimators there is no regularization:
// the model is fitted with Newton-Raphson from a zero start, and the inverse
// Hessian at the optimum is the parameter covariance.
//
//	exog := logit.AddConstant(X)
//	m, err := logit.New(y, exog)
//	res, err := m.Fit()
//	fmt.Println(res.Summary())
package logit

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/clfreport/core/frame"
	"github.com/YuminosukeSato/clfreport/pkg/errors"
	"github.com/YuminosukeSato/clfreport/pkg/log"
)

const (
	// DefaultMaxIter matches statsmodels' Newton default.
	DefaultMaxIter = 35
	// DefaultTol is the largest absolute parameter change at convergence.
	DefaultTol = 1e-8
	// ConstName labels the column added by AddConstant.
	ConstName = "const"

	// Hessians with a larger condition number are treated as singular.
	condLimit = 1e14
)

// Logit is an unfitted logistic regression model of endog on exog.
type Logit struct {
	endog   *mat.VecDense
	exog    *mat.Dense
	names   []string
	maxIter int
	tol     float64
	logger  log.Logger
}

// Option configures a Logit.
type Option func(*Logit)

// WithMaxIter sets the maximum number of Newton iterations.
func WithMaxIter(n int) Option {
	return func(m *Logit) {
		m.maxIter = n
	}
}

// WithTol sets the convergence tolerance on the parameter change.
func WithTol(tol float64) Option {
	return func(m *Logit) {
		m.tol = tol
	}
}

// WithNames overrides the parameter names.
func WithNames(names []string) Option {
	return func(m *Logit) {
		m.names = append([]string(nil), names...)
	}
}

// WithLogger sets the logger used for iteration traces.
func WithLogger(logger log.Logger) Option {
	return func(m *Logit) {
		m.logger = logger
	}
}

// New creates a model of the binary response y on the design matrix X. X is
// used as given; call AddConstant to include an intercept. Parameter names
// are taken from X when it is a *frame.Frame, otherwise x1..xk.
func New(y, X mat.Matrix, opts ...Option) (*Logit, error) {
	if X == nil || y == nil {
		return nil, errors.Wrap(errors.ErrEmptyData, "logit.New")
	}
	n, k := X.Dims()
	if n == 0 || k == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "logit.New")
	}
	yRows, yCols := y.Dims()
	if yCols != 1 {
		return nil, errors.NewDimensionError("logit.New", 1, yCols, 1)
	}
	if yRows != n {
		return nil, errors.NewDimensionError("logit.New", n, yRows, 0)
	}

	endog := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		v := y.At(i, 0)
		if v != 0 && v != 1 {
			return nil, errors.NewValueError("logit.New", fmt.Sprintf("endog must be in {0, 1}, got %v at row %d", v, i))
		}
		endog.SetVec(i, v)
	}

	m := &Logit{
		endog:   endog,
		exog:    mat.DenseCopyOf(X),
		names:   defaultNames(X, k),
		maxIter: DefaultMaxIter,
		tol:     DefaultTol,
		logger:  log.GetLoggerWithName("stats.logit"),
	}
	for _, opt := range opts {
		opt(m)
	}
	if len(m.names) != k {
		return nil, errors.NewDimensionError("logit.WithNames", k, len(m.names), 1)
	}
	if m.maxIter <= 0 {
		return nil, errors.NewValidationError("maxiter", "must be positive", m.maxIter)
	}
	return m, nil
}

func defaultNames(X mat.Matrix, k int) []string {
	if f, ok := X.(*frame.Frame); ok {
		return f.Columns()
	}
	names := make([]string, k)
	for j := range names {
		names[j] = fmt.Sprintf("x%d", j+1)
	}
	return names
}

// AddConstant returns X with a leading column of ones named "const". If X
// already holds a constant non-zero column it is returned unchanged.
func AddConstant(X mat.Matrix) *frame.Frame {
	n, k := X.Dims()
	names := defaultNames(X, k)
	if hasConstant(X) {
		f, _ := frame.New(names, mat.DenseCopyOf(X))
		return f
	}
	data := mat.NewDense(n, k+1, nil)
	for i := 0; i < n; i++ {
		data.Set(i, 0, 1)
		for j := 0; j < k; j++ {
			data.Set(i, j+1, X.At(i, j))
		}
	}
	f, _ := frame.New(append([]string{ConstName}, names...), data)
	return f
}

func hasConstant(X mat.Matrix) bool {
	n, k := X.Dims()
	if n == 0 {
		return false
	}
	for j := 0; j < k; j++ {
		first := X.At(0, j)
		if first == 0 {
			continue
		}
		constant := true
		for i := 1; i < n; i++ {
			if X.At(i, j) != first {
				constant = false
				break
			}
		}
		if constant {
			return true
		}
	}
	return false
}

// Fit maximizes the log-likelihood with Newton-Raphson.
//
// Errors: PerfectSeparationError when the fitted probabilities reproduce y
// after rounding, ErrSingularMatrix when the Hessian cannot be factorized,
// ConvergenceError when the parameter change stays above tol for maxIter
// iterations.
func (m *Logit) Fit() (*Result, error) {
	start := time.Now()
	n, k := m.exog.Dims()

	params := mat.NewVecDense(k, nil)
	var (
		converged bool
		iter      int
	)
	for iter = 1; iter <= m.maxIter; iter++ {
		prob := m.probabilities(params)
		chol, err := m.hessianCholesky(prob)
		if err != nil {
			return nil, errors.Wrapf(err, "logit newton iteration %d", iter)
		}

		// score = Xᵀ(y - p)
		resid := mat.NewVecDense(n, nil)
		resid.SubVec(m.endog, prob)
		score := mat.NewVecDense(k, nil)
		score.MulVec(m.exog.T(), resid)

		step := mat.NewVecDense(k, nil)
		if err := chol.SolveVecTo(step, score); err != nil {
			return nil, errors.Wrapf(errors.ErrSingularMatrix, "logit newton iteration %d: %v", iter, err)
		}
		params.AddVec(params, step)

		if err := errors.CheckNumericalStability("logit.newton", params.RawVector().Data, iter); err != nil {
			return nil, err
		}
		if m.perfectPrediction(params) {
			return nil, errors.NewPerfectSeparationError(iter)
		}
		if m.logger.Enabled(context.Background(), log.LevelDebug) {
			m.logger.Debug("newton step",
				log.IterationKey, iter,
				log.LogLikelihoodKey, m.loglike(params),
			)
		}
		if floats.Norm(step.RawVector().Data, math.Inf(1)) <= m.tol {
			converged = true
			break
		}
	}
	if !converged {
		return nil, errors.NewConvergenceError("logit newton", m.maxIter,
			"maximum likelihood optimization failed to converge")
	}

	res, err := m.newResult(params, iter)
	if err != nil {
		return nil, err
	}
	m.logger.Info("logit fitted",
		log.ModelNameKey, "Logit",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, n,
		log.FeaturesKey, k,
		log.IterationKey, iter,
		log.LogLikelihoodKey, res.LLF,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return res, nil
}

// probabilities returns σ(Xβ).
func (m *Logit) probabilities(params *mat.VecDense) *mat.VecDense {
	n, _ := m.exog.Dims()
	eta := mat.NewVecDense(n, nil)
	eta.MulVec(m.exog, params)
	for i := 0; i < n; i++ {
		eta.SetVec(i, sigmoid(eta.AtVec(i)))
	}
	return eta
}

// hessianCholesky factorizes the negative Hessian XᵀWX, W = diag(p(1-p)).
func (m *Logit) hessianCholesky(prob *mat.VecDense) (*mat.Cholesky, error) {
	n, k := m.exog.Dims()
	weighted := mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		w := prob.AtVec(i) * (1 - prob.AtVec(i))
		for j := 0; j < k; j++ {
			weighted.Set(i, j, w*m.exog.At(i, j))
		}
	}
	var h mat.Dense
	h.Mul(m.exog.T(), weighted)

	sym := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			sym.SetSym(i, j, (h.At(i, j)+h.At(j, i))/2)
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok || chol.Cond() > condLimit {
		return nil, errors.Wrap(errors.ErrSingularMatrix, "hessian is not positive definite")
	}
	return &chol, nil
}

// perfectPrediction reports whether rounded probabilities equal y everywhere.
func (m *Logit) perfectPrediction(params *mat.VecDense) bool {
	prob := m.probabilities(params)
	for i := 0; i < prob.Len(); i++ {
		// numpy.round は偶数丸め
		if math.RoundToEven(prob.AtVec(i)) != m.endog.AtVec(i) {
			return false
		}
	}
	return true
}

// loglike computes Σ y·η − log(1 + e^η) without overflow.
func (m *Logit) loglike(params *mat.VecDense) float64 {
	n, _ := m.exog.Dims()
	eta := mat.NewVecDense(n, nil)
	eta.MulVec(m.exog, params)
	var ll float64
	for i := 0; i < n; i++ {
		e := eta.AtVec(i)
		ll += m.endog.AtVec(i)*e - log1pExp(e)
	}
	return ll
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	ez := math.Exp(z)
	return ez / (1 + ez)
}

func log1pExp(x float64) float64 {
	if x > 0 {
		return x + math.Log1p(math.Exp(-x))
	}
	return math.Log1p(math.Exp(x))
}
