package logit

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/clfreport/pkg/errors"
)

// Result holds a fitted Logit model. Slices are indexed like the columns of
// the design matrix.
type Result struct {
	Names   []string
	Params  []float64
	BSE     []float64 // standard errors
	TValues []float64 // z-statistics Params/BSE
	PValues []float64 // two-sided, standard normal

	// CovParams is the inverse of the negative Hessian at Params.
	CovParams *mat.SymDense

	LLF            float64
	LLNull         float64
	LLR            float64 // likelihood-ratio statistic 2(LLF-LLNull)
	LLRPValue      float64 // χ²(DFModel) survival of LLR
	PseudoRSquared float64 // McFadden: 1 - LLF/LLNull
	AIC            float64
	BIC            float64

	NObs       int
	DFModel    int
	DFResid    int
	Iterations int
	Converged  bool

	exog *mat.Dense
}

func (m *Logit) newResult(params *mat.VecDense, iterations int) (*Result, error) {
	n, k := m.exog.Dims()

	chol, err := m.hessianCholesky(m.probabilities(params))
	if err != nil {
		return nil, errors.Wrap(err, "logit covariance")
	}
	cov := mat.NewSymDense(k, nil)
	if err := chol.InverseTo(cov); err != nil {
		return nil, errors.Wrapf(errors.ErrSingularMatrix, "logit covariance: %v", err)
	}

	r := &Result{
		Names:      append([]string(nil), m.names...),
		Params:     make([]float64, k),
		BSE:        make([]float64, k),
		TValues:    make([]float64, k),
		PValues:    make([]float64, k),
		CovParams:  cov,
		NObs:       n,
		Iterations: iterations,
		Converged:  true,
		exog:       m.exog,
	}
	for j := 0; j < k; j++ {
		r.Params[j] = params.AtVec(j)
		r.BSE[j] = math.Sqrt(cov.At(j, j))
		r.TValues[j] = r.Params[j] / r.BSE[j]
		r.PValues[j] = 2 * distuv.UnitNormal.Survival(math.Abs(r.TValues[j]))
	}

	// statsmodels は定数項を除いたランクを df_model とする
	r.DFModel = k
	if hasConstant(m.exog) {
		r.DFModel = k - 1
	}
	r.DFResid = n - k

	r.LLF = m.loglike(params)
	r.LLNull = nullLoglike(m.endog.RawVector().Data)
	r.LLR = 2 * (r.LLF - r.LLNull)
	if r.DFModel > 0 {
		r.LLRPValue = distuv.ChiSquared{K: float64(r.DFModel)}.Survival(r.LLR)
	} else {
		r.LLRPValue = math.NaN()
	}
	r.PseudoRSquared = 1 - r.LLF/r.LLNull
	r.AIC = -2*r.LLF + 2*float64(k)
	r.BIC = -2*r.LLF + math.Log(float64(n))*float64(k)
	return r, nil
}

// nullLoglike is the log-likelihood of the intercept-only model, whose MLE
// is the sample mean of y.
func nullLoglike(y []float64) float64 {
	p := stat.Mean(y, nil)
	if p == 0 || p == 1 {
		return 0
	}
	n := float64(len(y))
	return n * (p*math.Log(p) + (1-p)*math.Log(1-p))
}

// ConfInt returns the (1-alpha) normal confidence interval of each parameter.
func (r *Result) ConfInt(alpha float64) [][2]float64 {
	q := distuv.UnitNormal.Quantile(1 - alpha/2)
	out := make([][2]float64, len(r.Params))
	for j, p := range r.Params {
		out[j] = [2]float64{p - q*r.BSE[j], p + q*r.BSE[j]}
	}
	return out
}

// Predict returns fitted probabilities for X, or for the training design
// when X is nil. X must include the constant column if the model does.
func (r *Result) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if X == nil {
		X = r.exog
	}
	n, k := X.Dims()
	if k != len(r.Params) {
		return nil, errors.NewDimensionError("logit.Predict", len(r.Params), k, 1)
	}
	out := mat.NewVecDense(n, nil)
	out.MulVec(X, mat.NewVecDense(k, r.Params))
	for i := 0; i < n; i++ {
		out.SetVec(i, sigmoid(out.AtVec(i)))
	}
	return out, nil
}
