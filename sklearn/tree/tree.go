// Package tree provides a CART decision tree classifier compatible with
// scikit-learn's DecisionTreeClassifier, including minimal cost-complexity
// pruning (ccp_alpha and cost_complexity_pruning_path).
package tree

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/clfreport/core/model"
	"github.com/YuminosukeSato/clfreport/pkg/errors"
)

// DecisionTreeClassifier is a binary-split classification tree.
type DecisionTreeClassifier struct {
	state *model.StateManager

	// Hyperparameters
	criterion       string      // "gini" or "entropy" ("log_loss" is an alias)
	maxDepth        int         // <= 0 means unlimited
	minSamplesSplit int         // Minimum samples to split an internal node
	minSamplesLeaf  int         // Minimum samples in each leaf
	maxFeatures     interface{} // nil, int, float64 fraction, "sqrt" or "log2"
	ccpAlpha        float64     // Cost-complexity pruning penalty
	randomState     int64       // Seed of the feature permutation, -1 for none

	// Fitted attributes
	tree_      *treeStruct
	classes_   []float64
	nClasses_  int
	nFeatures_ int
}

// Option is a functional option for DecisionTreeClassifier.
type Option func(*DecisionTreeClassifier)

// NewDecisionTreeClassifier creates a tree with scikit-learn defaults.
func NewDecisionTreeClassifier(opts ...Option) *DecisionTreeClassifier {
	dt := &DecisionTreeClassifier{
		state:           model.NewStateManager(),
		criterion:       "gini",
		maxDepth:        -1,
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
		randomState:     -1,
	}
	for _, opt := range opts {
		opt(dt)
	}
	return dt
}

// WithCriterion sets the split quality measure.
func WithCriterion(criterion string) Option {
	return func(dt *DecisionTreeClassifier) {
		dt.criterion = criterion
	}
}

// WithMaxDepth limits the depth of the tree.
func WithMaxDepth(depth int) Option {
	return func(dt *DecisionTreeClassifier) {
		dt.maxDepth = depth
	}
}

// WithMinSamplesSplit sets the minimum number of samples to split a node.
func WithMinSamplesSplit(n int) Option {
	return func(dt *DecisionTreeClassifier) {
		dt.minSamplesSplit = n
	}
}

// WithMinSamplesLeaf sets the minimum number of samples per leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(dt *DecisionTreeClassifier) {
		dt.minSamplesLeaf = n
	}
}

// WithMaxFeatures sets how many features are considered per split: an int,
// a float64 fraction, "sqrt", "log2", or nil for all.
func WithMaxFeatures(v interface{}) Option {
	return func(dt *DecisionTreeClassifier) {
		dt.maxFeatures = v
	}
}

// WithCCPAlpha sets the cost-complexity pruning penalty.
func WithCCPAlpha(alpha float64) Option {
	return func(dt *DecisionTreeClassifier) {
		dt.ccpAlpha = alpha
	}
}

// WithRandomState seeds the per-node feature permutation.
func WithRandomState(seed int64) Option {
	return func(dt *DecisionTreeClassifier) {
		dt.randomState = seed
	}
}

// Fit builds the tree from X and class labels y (n×1).
func (dt *DecisionTreeClassifier) Fit(X, y mat.Matrix) error {
	nSamples, _, labels, err := model.CheckXy("DecisionTreeClassifier.Fit", X, y)
	if err != nil {
		return err
	}
	weights := make([]float64, nSamples)
	for i := range weights {
		weights[i] = 1
	}
	return dt.fitWeighted(X, labels, weights)
}

// FitSampleWeight fits with per-sample weights. Samples with zero weight
// are left out; a random forest passes bootstrap counts here.
func (dt *DecisionTreeClassifier) FitSampleWeight(X, y mat.Matrix, sampleWeight []float64) error {
	nSamples, _, labels, err := model.CheckXy("DecisionTreeClassifier.Fit", X, y)
	if err != nil {
		return err
	}
	if len(sampleWeight) != nSamples {
		return errors.NewDimensionError("DecisionTreeClassifier.Fit", nSamples, len(sampleWeight), 0)
	}
	for _, w := range sampleWeight {
		if w < 0 || math.IsNaN(w) {
			return errors.NewValidationError("sample_weight", "must be non-negative", w)
		}
	}
	return dt.fitWeighted(X, labels, sampleWeight)
}

func (dt *DecisionTreeClassifier) newRand() *rand.Rand {
	if dt.randomState >= 0 {
		return rand.New(rand.NewSource(dt.randomState))
	}
	return rand.New(rand.NewSource(rand.Int63()))
}

func (dt *DecisionTreeClassifier) fitWeighted(X mat.Matrix, labels, weights []float64) error {
	if err := dt.validate(); err != nil {
		return err
	}
	_, nFeatures := X.Dims()
	maxFeatures, err := ResolveMaxFeatures(dt.maxFeatures, nFeatures)
	if err != nil {
		return err
	}

	classes, encoded := model.EncodeClasses(labels)
	samples := make([]int, 0, len(labels))
	for i, w := range weights {
		if w > 0 {
			samples = append(samples, i)
		}
	}
	if len(samples) == 0 {
		return errors.Wrap(errors.ErrEmptyData, "DecisionTreeClassifier.Fit")
	}

	b := &builder{
		X:               mat.DenseCopyOf(X),
		y:               encoded,
		weights:         weights,
		nClasses:        len(classes),
		criterion:       criterionFunc(dt.criterion),
		maxDepth:        dt.maxDepth,
		minSamplesSplit: dt.minSamplesSplit,
		minSamplesLeaf:  dt.minSamplesLeaf,
		maxFeatures:     maxFeatures,
		rng:             dt.newRand(),
	}
	t := b.build(samples)
	if dt.ccpAlpha > 0 {
		t = t.prune(dt.ccpAlpha)
	}

	dt.tree_ = t
	dt.classes_ = classes
	dt.nClasses_ = len(classes)
	dt.nFeatures_ = nFeatures
	dt.state.SetFitted(nFeatures, len(labels))
	return nil
}

func (dt *DecisionTreeClassifier) validate() error {
	switch dt.criterion {
	case "gini", "entropy", "log_loss":
	default:
		return errors.NewValidationError("criterion", "must be 'gini', 'entropy' or 'log_loss'", dt.criterion)
	}
	if dt.minSamplesSplit < 2 {
		return errors.NewValidationError("min_samples_split", "must be >= 2", dt.minSamplesSplit)
	}
	if dt.minSamplesLeaf < 1 {
		return errors.NewValidationError("min_samples_leaf", "must be >= 1", dt.minSamplesLeaf)
	}
	if dt.ccpAlpha < 0 || math.IsNaN(dt.ccpAlpha) {
		return errors.NewValidationError("ccp_alpha", "must be non-negative", dt.ccpAlpha)
	}
	return nil
}

func criterionFunc(name string) impurityFunc {
	if name == "gini" {
		return gini
	}
	return entropy
}

// ResolveMaxFeatures turns a max_features setting into a feature count:
// nil means all, "sqrt" and "log2" are floored with a minimum of one, a
// float64 is a fraction of nFeatures and an int is used as is.
func ResolveMaxFeatures(v interface{}, nFeatures int) (int, error) {
	var n int
	switch x := v.(type) {
	case nil:
		return nFeatures, nil
	case string:
		switch x {
		case "sqrt":
			n = int(math.Sqrt(float64(nFeatures)))
		case "log2":
			n = int(math.Log2(float64(nFeatures)))
		case "all", "auto", "":
			return nFeatures, nil
		default:
			return 0, errors.NewValidationError("max_features", "must be 'sqrt', 'log2', an int, a float or None", x)
		}
		if n < 1 {
			n = 1
		}
		return n, nil
	case int:
		n = x
	case float64:
		if x <= 0 || x > 1 {
			return 0, errors.NewValidationError("max_features", "fraction must be in (0, 1]", x)
		}
		n = int(x * float64(nFeatures))
		if n < 1 {
			n = 1
		}
	default:
		return 0, errors.NewValidationError("max_features", "unsupported type", v)
	}
	if n < 1 || n > nFeatures {
		return 0, errors.NewValidationError("max_features", fmt.Sprintf("must be in [1, %d]", nFeatures), n)
	}
	return n, nil
}

// Predict returns the most probable class of each row (n×1). Ties go to the
// smaller class label.
func (dt *DecisionTreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := dt.PredictProba(X)
	if err != nil {
		return nil, err
	}
	n, _ := proba.Dims()
	pred := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		pred.Set(i, 0, dt.classes_[argmax(proba.(*mat.Dense).RawRowView(i))])
	}
	return pred, nil
}

// PredictProba returns the class distribution of the leaf each row falls
// into, one column per class in Classes order.
func (dt *DecisionTreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := dt.state.RequireFitted("DecisionTreeClassifier", "PredictProba"); err != nil {
		return nil, err
	}
	n, c := X.Dims()
	if err := dt.state.RequireFeatures("DecisionTreeClassifier.PredictProba", c); err != nil {
		return nil, err
	}
	out := mat.NewDense(n, dt.nClasses_, nil)
	row := make([]float64, c)
	for i := 0; i < n; i++ {
		mat.Row(row, i, X)
		dt.tree_.proba(row, out.RawRowView(i))
	}
	return out, nil
}

// Score returns the mean accuracy on X and y.
func (dt *DecisionTreeClassifier) Score(X, y mat.Matrix) (float64, error) {
	_, _, labels, err := model.CheckXy("DecisionTreeClassifier.Score", X, y)
	if err != nil {
		return 0, err
	}
	pred, err := dt.Predict(X)
	if err != nil {
		return 0, err
	}
	return model.Accuracy(pred, labels), nil
}

// CostComplexityPruningPath grows an unpruned tree with the same
// hyperparameters on X, y and returns its pruning path.
func (dt *DecisionTreeClassifier) CostComplexityPruningPath(X, y mat.Matrix) (PruningPath, error) {
	est := dt.cloneTree()
	est.ccpAlpha = 0
	if err := est.Fit(X, y); err != nil {
		return PruningPath{}, err
	}
	return est.tree_.pruningPath(), nil
}

// Classes returns the sorted class labels seen during Fit.
func (dt *DecisionTreeClassifier) Classes() []float64 {
	return append([]float64(nil), dt.classes_...)
}

// IsFitted reports whether Fit has completed.
func (dt *DecisionTreeClassifier) IsFitted() bool {
	return dt.state.IsFitted()
}

// GetFeatureImportances returns the normalized impurity decrease per
// feature, or nil before Fit.
func (dt *DecisionTreeClassifier) GetFeatureImportances() []float64 {
	if !dt.state.IsFitted() {
		return nil
	}
	return dt.tree_.featureImportances()
}

// FeatureImportances is GetFeatureImportances with a NotFittedError.
func (dt *DecisionTreeClassifier) FeatureImportances() ([]float64, error) {
	if err := dt.state.RequireFitted("DecisionTreeClassifier", "FeatureImportances"); err != nil {
		return nil, err
	}
	return dt.tree_.featureImportances(), nil
}

// GetDepth returns the depth of the fitted tree (a root-only tree has depth 0).
func (dt *DecisionTreeClassifier) GetDepth() int {
	if dt.tree_ == nil {
		return 0
	}
	return dt.tree_.maxDepth
}

// GetNLeaves returns the number of leaves of the fitted tree.
func (dt *DecisionTreeClassifier) GetNLeaves() int {
	if dt.tree_ == nil {
		return 0
	}
	return dt.tree_.nLeaves()
}

// NodeCount returns the number of nodes of the fitted tree.
func (dt *DecisionTreeClassifier) NodeCount() int {
	if dt.tree_ == nil {
		return 0
	}
	return len(dt.tree_.nodes)
}

// GetParams returns the hyperparameters keyed by scikit-learn name.
func (dt *DecisionTreeClassifier) GetParams() map[string]interface{} {
	var maxDepth interface{}
	if dt.maxDepth > 0 {
		maxDepth = dt.maxDepth
	}
	var randomState interface{}
	if dt.randomState >= 0 {
		randomState = dt.randomState
	}
	return map[string]interface{}{
		"criterion":         dt.criterion,
		"max_depth":         maxDepth,
		"min_samples_split": dt.minSamplesSplit,
		"min_samples_leaf":  dt.minSamplesLeaf,
		"max_features":      dt.maxFeatures,
		"ccp_alpha":         dt.ccpAlpha,
		"random_state":      randomState,
	}
}

// SetParams sets hyperparameters by scikit-learn name.
func (dt *DecisionTreeClassifier) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		var err error
		switch key {
		case "criterion":
			dt.criterion, err = model.ParamString(key, value)
		case "max_depth":
			if value == nil {
				dt.maxDepth = -1
			} else {
				dt.maxDepth, err = model.ParamInt(key, value)
			}
		case "min_samples_split":
			dt.minSamplesSplit, err = model.ParamInt(key, value)
		case "min_samples_leaf":
			dt.minSamplesLeaf, err = model.ParamInt(key, value)
		case "max_features":
			dt.maxFeatures = value
		case "ccp_alpha":
			dt.ccpAlpha, err = model.ParamFloat(key, value)
		case "random_state":
			if value == nil {
				dt.randomState = -1
			} else {
				var seed int
				seed, err = model.ParamInt(key, value)
				dt.randomState = int64(seed)
			}
		default:
			return model.UnknownParam("DecisionTreeClassifier", key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Clone returns an unfitted tree with the same hyperparameters.
func (dt *DecisionTreeClassifier) Clone() model.ParamEstimator {
	return dt.cloneTree()
}

func (dt *DecisionTreeClassifier) cloneTree() *DecisionTreeClassifier {
	return &DecisionTreeClassifier{
		state:           model.NewStateManager(),
		criterion:       dt.criterion,
		maxDepth:        dt.maxDepth,
		minSamplesSplit: dt.minSamplesSplit,
		minSamplesLeaf:  dt.minSamplesLeaf,
		maxFeatures:     dt.maxFeatures,
		ccpAlpha:        dt.ccpAlpha,
		randomState:     dt.randomState,
	}
}

func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
