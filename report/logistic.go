package report

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/clfreport/core/table"
	"github.com/YuminosukeSato/clfreport/pkg/errors"
	"github.com/YuminosukeSato/clfreport/stats/logit"
)

// Coefficient table columns.
const (
	ColFeatures    = "Features"
	ColCoefficient = "Coefficient"
	ColPValue      = "P-value"
	ColStdError    = "Std Error"
	ColCILower     = "CI Lower"
	ColCIUpper     = "CI Upper"
)

// FitLogisticWithIntercept prepends a "const" column to X, fits a logistic
// regression of y on it by maximum likelihood and prints the summary.
// Column names are taken from X when it is a *frame.Frame.
//
// Non-convergence, a singular Hessian and perfect separation are returned
// unchanged from logit.Logit.Fit.
func (r *Reporter) FitLogisticWithIntercept(X, y mat.Matrix) (*logit.Result, error) {
	if X == nil {
		return nil, errors.Wrap(errors.ErrEmptyData, "FitLogisticWithIntercept")
	}
	m, err := logit.New(y, logit.AddConstant(X), logit.WithLogger(r.getLogger()))
	if err != nil {
		return nil, err
	}
	res, err := m.Fit()
	if err != nil {
		r.getLogger().Error("logistic regression failed", err)
		return nil, err
	}
	r.printer.Text(res.Summary())
	return res, nil
}

// SummarizeCoefficients returns one row per parameter in fit order
// (intercept first) with its estimate, p-value, standard error and 95%
// confidence bounds.
func SummarizeCoefficients(res *logit.Result) (*table.Table, error) {
	if res == nil {
		return nil, errors.NewValueError("SummarizeCoefficients", "nil result")
	}
	t := table.New(ColFeatures, ColCoefficient, ColPValue, ColStdError, ColCILower, ColCIUpper)
	ci := res.ConfInt(0.05)
	for j, name := range res.Names {
		if err := t.Append(name, res.Params[j], res.PValues[j], res.BSE[j], ci[j][0], ci[j][1]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// FitLogisticWithIntercept runs Reporter.FitLogisticWithIntercept with the
// default Reporter.
func FitLogisticWithIntercept(X, y mat.Matrix) (*logit.Result, error) {
	return std.FitLogisticWithIntercept(X, y)
}
