package metrics

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/clfreport/pkg/errors"
)

// ScoreOption configures precision, recall, F1 and specificity.
type ScoreOption func(*scoreOptions)

type scoreOptions struct {
	zeroDivision float64
	warn         bool
}

// WithZeroDivision sets the value returned when a metric's denominator is
// zero and silences the UndefinedMetricWarning. Pass math.NaN() to propagate
// IEEE semantics.
func WithZeroDivision(v float64) ScoreOption {
	return func(o *scoreOptions) {
		o.zeroDivision = v
		o.warn = false
	}
}

func newScoreOptions(opts []ScoreOption) scoreOptions {
	// scikit-learn の zero_division="warn" と同じ既定値
	o := scoreOptions{zeroDivision: 0, warn: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ConfusionCounts holds the four cells of a binary confusion matrix with
// class 1 as the positive label.
type ConfusionCounts struct {
	TN, FP, FN, TP int
}

// Total returns the number of samples.
func (c ConfusionCounts) Total() int {
	return c.TN + c.FP + c.FN + c.TP
}

// Matrix returns the counts as a 2×2 matrix, rows true label, columns
// predicted label, in label order (0, 1). Row-major flattening yields
// (tn, fp, fn, tp).
func (c ConfusionCounts) Matrix() *mat.Dense {
	return mat.NewDense(2, 2, []float64{
		float64(c.TN), float64(c.FP),
		float64(c.FN), float64(c.TP),
	})
}

// CountsFromMatrix reads (tn, fp, fn, tp) from a 2×2 confusion matrix.
func CountsFromMatrix(cm mat.Matrix) (ConfusionCounts, error) {
	if cm == nil {
		return ConfusionCounts{}, errors.NewValueError("CountsFromMatrix", "nil confusion matrix")
	}
	r, c := cm.Dims()
	if r != 2 {
		return ConfusionCounts{}, errors.NewDimensionError("CountsFromMatrix", 2, r, 0)
	}
	if c != 2 {
		return ConfusionCounts{}, errors.NewDimensionError("CountsFromMatrix", 2, c, 1)
	}
	return ConfusionCounts{
		TN: int(cm.At(0, 0)),
		FP: int(cm.At(0, 1)),
		FN: int(cm.At(1, 0)),
		TP: int(cm.At(1, 1)),
	}, nil
}

// BinaryConfusion counts outcomes for labels in {0, 1}.
func BinaryConfusion(yTrue, yPred *mat.VecDense) (ConfusionCounts, error) {
	n, err := checkPair("BinaryConfusion", yTrue, yPred)
	if err != nil {
		return ConfusionCounts{}, err
	}
	var c ConfusionCounts
	for i := 0; i < n; i++ {
		t, p := yTrue.AtVec(i), yPred.AtVec(i)
		if !isBinary(t) || !isBinary(p) {
			return ConfusionCounts{}, errors.NewValueError("BinaryConfusion",
				fmt.Sprintf("labels must be 0 or 1, got true=%v pred=%v at index %d", t, p, i))
		}
		switch {
		case t == 1 && p == 1:
			c.TP++
		case t == 1:
			c.FN++
		case p == 1:
			c.FP++
		default:
			c.TN++
		}
	}
	return c, nil
}

// ConfusionMatrix computes the 2×2 confusion matrix of binary labels.
func ConfusionMatrix(yTrue, yPred *mat.VecDense) (*mat.Dense, error) {
	c, err := BinaryConfusion(yTrue, yPred)
	if err != nil {
		return nil, err
	}
	return c.Matrix(), nil
}

// PrecisionScore computes tp / (tp + fp).
func PrecisionScore(yTrue, yPred *mat.VecDense, opts ...ScoreOption) (float64, error) {
	c, err := BinaryConfusion(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return c.Precision(opts...), nil
}

// RecallScore computes tp / (tp + fn).
func RecallScore(yTrue, yPred *mat.VecDense, opts ...ScoreOption) (float64, error) {
	c, err := BinaryConfusion(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return c.Recall(opts...), nil
}

// F1Score computes the harmonic mean of precision and recall.
func F1Score(yTrue, yPred *mat.VecDense, opts ...ScoreOption) (float64, error) {
	c, err := BinaryConfusion(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return c.F1(opts...), nil
}

// SpecificityScore computes the true-negative rate tn / (tn + fp).
func SpecificityScore(yTrue, yPred *mat.VecDense, opts ...ScoreOption) (float64, error) {
	c, err := BinaryConfusion(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return c.Specificity(opts...), nil
}

// Precision computes tp / (tp + fp) from the counts.
func (c ConfusionCounts) Precision(opts ...ScoreOption) float64 {
	return ratio("precision", "no predicted positive samples", c.TP, c.TP+c.FP, opts)
}

// Recall computes tp / (tp + fn) from the counts.
func (c ConfusionCounts) Recall(opts ...ScoreOption) float64 {
	return ratio("recall", "no true positive samples", c.TP, c.TP+c.FN, opts)
}

// F1 computes 2tp / (2tp + fp + fn), which equals the harmonic mean of
// precision and recall whenever both are defined.
func (c ConfusionCounts) F1(opts ...ScoreOption) float64 {
	return ratio("f1-score", "no true nor predicted positive samples", 2*c.TP, 2*c.TP+c.FP+c.FN, opts)
}

// Specificity computes tn / (tn + fp) from the counts.
func (c ConfusionCounts) Specificity(opts ...ScoreOption) float64 {
	return ratio("specificity", "no true negative samples", c.TN, c.TN+c.FP, opts)
}

func ratio(metric, condition string, num, den int, opts []ScoreOption) float64 {
	if den == 0 {
		o := newScoreOptions(opts)
		if o.warn {
			errors.Warn(errors.NewUndefinedMetricWarning(metric, condition, o.zeroDivision))
		}
		return o.zeroDivision
	}
	return float64(num) / float64(den)
}

// Accuracy computes the fraction of exact label matches.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("Accuracy", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ROCAUCScore computes the area under the ROC curve of binary labels yTrue
// against scores yScore. yScore may be probabilities or hard 0/1 labels; with
// hard labels the ROC curve has a single interior point and the result equals
// balanced accuracy. Tied scores count one half. Fails if yTrue holds only one
// class.
func ROCAUCScore(yTrue, yScore *mat.VecDense) (float64, error) {
	auc, ok, err := rankAUC("ROCAUCScore", yTrue, yScore)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.NewValueError("ROCAUCScore",
			"only one class present in y_true. ROC AUC score is not defined in that case")
	}
	return auc, nil
}

// rankAUC computes the Mann-Whitney statistic with midranks. ok is false
// when one of the classes is absent.
func rankAUC(op string, yTrue, yScore *mat.VecDense) (auc float64, ok bool, err error) {
	n, err := checkPair(op, yTrue, yScore)
	if err != nil {
		return 0, false, err
	}

	idx := make([]int, n)
	nPos := 0
	for i := 0; i < n; i++ {
		idx[i] = i
		t := yTrue.AtVec(i)
		if !isBinary(t) {
			return 0, false, errors.NewValueError(op, fmt.Sprintf("y_true must be binary (0/1), got %v at index %d", t, i))
		}
		if t == 1 {
			nPos++
		}
	}
	nNeg := n - nPos
	if nPos == 0 || nNeg == 0 {
		return 0, false, nil
	}

	sort.SliceStable(idx, func(a, b int) bool { return yScore.AtVec(idx[a]) < yScore.AtVec(idx[b]) })

	var rankSumPos float64
	for i := 0; i < n; {
		j := i
		for j+1 < n && yScore.AtVec(idx[j+1]) == yScore.AtVec(idx[i]) {
			j++
		}
		// 同順位には平均順位を割り当てる（1始まり）
		midrank := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			if yTrue.AtVec(idx[k]) == 1 {
				rankSumPos += midrank
			}
		}
		i = j + 1
	}

	u := rankSumPos - float64(nPos)*float64(nPos+1)/2
	return u / (float64(nPos) * float64(nNeg)), true, nil
}

// FirstColumn copies the first column of m into a vector.
func FirstColumn(op string, m mat.Matrix) (*mat.VecDense, error) {
	if m == nil {
		return nil, errors.NewValueError(op, "nil matrix")
	}
	if v, ok := m.(*mat.VecDense); ok {
		if v == nil || v.Len() == 0 {
			return nil, errors.NewValueError(op, "empty vector")
		}
		return v, nil
	}
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewValueError(op, "empty matrix")
	}
	v := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v, nil
}

func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	if yTrue == nil || yPred == nil || yTrue.Len() == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	n := yTrue.Len()
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

func isBinary(v float64) bool {
	return v == 0 || v == 1
}
