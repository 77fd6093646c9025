// Package ensemble provides a RandomForestClassifier built from bootstrapped
// CART trees.
package ensemble

import (
	"context"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/clfreport/core/model"
	"github.com/YuminosukeSato/clfreport/core/parallel"
	"github.com/YuminosukeSato/clfreport/pkg/errors"
	"github.com/YuminosukeSato/clfreport/sklearn/tree"
)

// RandomForestClassifier averages the class probabilities of NEstimators
// decision trees, each grown on a bootstrap sample with a random feature
// subset considered at every split.
type RandomForestClassifier struct {
	state *model.StateManager

	// Hyperparameters
	nEstimators     int
	criterion       string
	maxDepth        int // <= 0 means unlimited
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     interface{} // same forms as the tree's max_features
	bootstrap       bool
	randomState     int64 // -1 for none
	nJobs           int

	// Fitted attributes
	estimators_ []*tree.DecisionTreeClassifier
	classes_    []float64
	nFeatures_  int
}

// Option is a functional option for RandomForestClassifier.
type Option func(*RandomForestClassifier)

// NewRandomForestClassifier creates a forest with scikit-learn defaults:
// 100 trees, gini, max_features "sqrt", bootstrap on. Trees are fitted on
// one goroutine unless WithNJobs says otherwise.
func NewRandomForestClassifier(opts ...Option) *RandomForestClassifier {
	rf := &RandomForestClassifier{
		state:           model.NewStateManager(),
		nEstimators:     100,
		criterion:       "gini",
		maxDepth:        -1,
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
		maxFeatures:     "sqrt",
		bootstrap:       true,
		randomState:     -1,
		nJobs:           1,
	}
	for _, opt := range opts {
		opt(rf)
	}
	return rf
}

// WithNEstimators sets the number of trees.
func WithNEstimators(n int) Option {
	return func(rf *RandomForestClassifier) {
		rf.nEstimators = n
	}
}

// WithCriterion sets the split quality measure of every tree.
func WithCriterion(criterion string) Option {
	return func(rf *RandomForestClassifier) {
		rf.criterion = criterion
	}
}

// WithMaxDepth limits the depth of every tree.
func WithMaxDepth(depth int) Option {
	return func(rf *RandomForestClassifier) {
		rf.maxDepth = depth
	}
}

// WithMinSamplesSplit sets the minimum number of samples to split a node.
func WithMinSamplesSplit(n int) Option {
	return func(rf *RandomForestClassifier) {
		rf.minSamplesSplit = n
	}
}

// WithMinSamplesLeaf sets the minimum number of samples per leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(rf *RandomForestClassifier) {
		rf.minSamplesLeaf = n
	}
}

// WithMaxFeatures sets the number of features considered per split.
func WithMaxFeatures(v interface{}) Option {
	return func(rf *RandomForestClassifier) {
		rf.maxFeatures = v
	}
}

// WithBootstrap toggles bootstrap sampling. Without it every tree sees all
// rows and only the feature subsets differ.
func WithBootstrap(b bool) Option {
	return func(rf *RandomForestClassifier) {
		rf.bootstrap = b
	}
}

// WithRandomState fixes the seed from which per-tree seeds are drawn.
func WithRandomState(seed int64) Option {
	return func(rf *RandomForestClassifier) {
		rf.randomState = seed
	}
}

// WithNJobs sets the number of trees fitted concurrently (-1 for all CPUs).
func WithNJobs(n int) Option {
	return func(rf *RandomForestClassifier) {
		rf.nJobs = n
	}
}

// Fit grows the forest with a background context.
func (rf *RandomForestClassifier) Fit(X, y mat.Matrix) error {
	return rf.FitContext(context.Background(), X, y)
}

// FitContext grows the forest. Tree seeds are drawn up front in tree order,
// so results do not depend on nJobs.
func (rf *RandomForestClassifier) FitContext(ctx context.Context, X, y mat.Matrix) error {
	nSamples, nFeatures, labels, err := model.CheckXy("RandomForestClassifier.Fit", X, y)
	if err != nil {
		return err
	}
	if rf.nEstimators < 1 {
		return errors.NewValidationError("n_estimators", "must be >= 1", rf.nEstimators)
	}
	if _, err := tree.ResolveMaxFeatures(rf.maxFeatures, nFeatures); err != nil {
		return err
	}

	master := rf.newRand()
	seeds := make([]int64, rf.nEstimators)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	Xd := mat.DenseCopyOf(X)
	yd := mat.NewDense(nSamples, 1, labels)
	trees := make([]*tree.DecisionTreeClassifier, rf.nEstimators)
	err = parallel.Do(ctx, rf.nEstimators, rf.nJobs, func(_ context.Context, i int) error {
		t := rf.newTree(seeds[i])
		weights := make([]float64, nSamples)
		if rf.bootstrap {
			r := rand.New(rand.NewSource(seeds[i]))
			for j := 0; j < nSamples; j++ {
				weights[r.Intn(nSamples)]++
			}
		} else {
			for j := range weights {
				weights[j] = 1
			}
		}
		if err := t.FitSampleWeight(Xd, yd, weights); err != nil {
			return errors.Wrapf(err, "tree %d", i)
		}
		trees[i] = t
		return nil
	})
	if err != nil {
		return err
	}

	rf.estimators_ = trees
	rf.classes_, _ = model.EncodeClasses(labels)
	rf.nFeatures_ = nFeatures
	rf.state.SetFitted(nFeatures, nSamples)
	return nil
}

func (rf *RandomForestClassifier) newRand() *rand.Rand {
	if rf.randomState >= 0 {
		return rand.New(rand.NewSource(rf.randomState))
	}
	return rand.New(rand.NewSource(rand.Int63()))
}

func (rf *RandomForestClassifier) newTree(seed int64) *tree.DecisionTreeClassifier {
	return tree.NewDecisionTreeClassifier(
		tree.WithCriterion(rf.criterion),
		tree.WithMaxDepth(rf.maxDepth),
		tree.WithMinSamplesSplit(rf.minSamplesSplit),
		tree.WithMinSamplesLeaf(rf.minSamplesLeaf),
		tree.WithMaxFeatures(rf.maxFeatures),
		tree.WithRandomState(seed&(1<<31-1)),
	)
}

// PredictProba returns the mean of the trees' class probabilities (n×k).
func (rf *RandomForestClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := rf.state.RequireFitted("RandomForestClassifier", "PredictProba"); err != nil {
		return nil, err
	}
	if err := rf.state.RequireFeatures("RandomForestClassifier.PredictProba", columns(X)); err != nil {
		return nil, err
	}
	n, _ := X.Dims()
	sum := mat.NewDense(n, len(rf.classes_), nil)
	for _, t := range rf.estimators_ {
		p, err := t.PredictProba(X)
		if err != nil {
			return nil, err
		}
		sum.Add(sum, p)
	}
	sum.Scale(1/float64(len(rf.estimators_)), sum)
	return sum, nil
}

// Predict returns the class with the highest averaged probability (n×1).
func (rf *RandomForestClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := rf.PredictProba(X)
	if err != nil {
		return nil, err
	}
	n, _ := proba.Dims()
	pred := mat.NewDense(n, 1, nil)
	row := make([]float64, len(rf.classes_))
	for i := 0; i < n; i++ {
		mat.Row(row, i, proba)
		pred.Set(i, 0, rf.classes_[floats.MaxIdx(row)])
	}
	return pred, nil
}

// Score returns the mean accuracy on X and y.
func (rf *RandomForestClassifier) Score(X, y mat.Matrix) (float64, error) {
	_, _, labels, err := model.CheckXy("RandomForestClassifier.Score", X, y)
	if err != nil {
		return 0, err
	}
	pred, err := rf.Predict(X)
	if err != nil {
		return 0, err
	}
	return model.Accuracy(pred, labels), nil
}

// FeatureImportances returns the mean impurity-based importance over the
// trees that split at least once, normalized to sum to one. A forest of
// root-only trees yields all zeros.
func (rf *RandomForestClassifier) FeatureImportances() ([]float64, error) {
	if err := rf.state.RequireFitted("RandomForestClassifier", "FeatureImportances"); err != nil {
		return nil, err
	}
	out := make([]float64, rf.nFeatures_)
	used := 0
	for _, t := range rf.estimators_ {
		if t.NodeCount() <= 1 {
			continue
		}
		floats.Add(out, t.GetFeatureImportances())
		used++
	}
	if used == 0 {
		return out, nil
	}
	if total := floats.Sum(out); total > 0 {
		floats.Scale(1/total, out)
	}
	return out, nil
}

// Estimators returns the fitted trees.
func (rf *RandomForestClassifier) Estimators() []*tree.DecisionTreeClassifier {
	return rf.estimators_
}

// Classes returns the sorted class labels seen during Fit.
func (rf *RandomForestClassifier) Classes() []float64 {
	return rf.classes_
}

// IsFitted reports whether Fit has completed.
func (rf *RandomForestClassifier) IsFitted() bool {
	return rf.state.IsFitted()
}

// GetParams returns the hyperparameters keyed by scikit-learn name.
func (rf *RandomForestClassifier) GetParams() map[string]interface{} {
	var maxDepth interface{}
	if rf.maxDepth > 0 {
		maxDepth = rf.maxDepth
	}
	var randomState interface{}
	if rf.randomState >= 0 {
		randomState = rf.randomState
	}
	return map[string]interface{}{
		"n_estimators":      rf.nEstimators,
		"criterion":         rf.criterion,
		"max_depth":         maxDepth,
		"min_samples_split": rf.minSamplesSplit,
		"min_samples_leaf":  rf.minSamplesLeaf,
		"max_features":      rf.maxFeatures,
		"bootstrap":         rf.bootstrap,
		"random_state":      randomState,
		"n_jobs":            rf.nJobs,
	}
}

// SetParams sets hyperparameters by scikit-learn name.
func (rf *RandomForestClassifier) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		var err error
		switch key {
		case "n_estimators":
			rf.nEstimators, err = model.ParamInt(key, value)
		case "criterion":
			rf.criterion, err = model.ParamString(key, value)
		case "max_depth":
			if value == nil {
				rf.maxDepth = -1
			} else {
				rf.maxDepth, err = model.ParamInt(key, value)
			}
		case "min_samples_split":
			rf.minSamplesSplit, err = model.ParamInt(key, value)
		case "min_samples_leaf":
			rf.minSamplesLeaf, err = model.ParamInt(key, value)
		case "max_features":
			rf.maxFeatures = value
		case "bootstrap":
			rf.bootstrap, err = model.ParamBool(key, value)
		case "random_state":
			if value == nil {
				rf.randomState = -1
			} else {
				var seed int
				seed, err = model.ParamInt(key, value)
				rf.randomState = int64(seed)
			}
		case "n_jobs":
			if value == nil {
				rf.nJobs = 1
			} else {
				rf.nJobs, err = model.ParamInt(key, value)
			}
		default:
			return model.UnknownParam("RandomForestClassifier", key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Clone returns an unfitted forest with the same hyperparameters.
func (rf *RandomForestClassifier) Clone() model.ParamEstimator {
	return &RandomForestClassifier{
		state:           model.NewStateManager(),
		nEstimators:     rf.nEstimators,
		criterion:       rf.criterion,
		maxDepth:        rf.maxDepth,
		minSamplesSplit: rf.minSamplesSplit,
		minSamplesLeaf:  rf.minSamplesLeaf,
		maxFeatures:     rf.maxFeatures,
		bootstrap:       rf.bootstrap,
		randomState:     rf.randomState,
		nJobs:           rf.nJobs,
	}
}

func columns(X mat.Matrix) int {
	_, c := X.Dims()
	return c
}
