package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/clfreport/core/model"
	"github.com/YuminosukeSato/clfreport/pkg/errors"
	"github.com/YuminosukeSato/clfreport/pkg/log"
	"github.com/YuminosukeSato/clfreport/sklearn/model_selection"
	"github.com/YuminosukeSato/clfreport/sklearn/tree"
)

// KNN grid: n_neighbors 1..22 with the manhattan metric.
const (
	KNNMinNeighbors = 1
	KNNMaxNeighbors = 22
	KNNMetric       = "manhattan"
)

// KNNGrid returns the fixed KNN search grid.
func KNNGrid() model_selection.ParameterGrid {
	ks := make([]interface{}, 0, KNNMaxNeighbors-KNNMinNeighbors+1)
	for k := KNNMinNeighbors; k <= KNNMaxNeighbors; k++ {
		ks = append(ks, k)
	}
	return model_selection.ParameterGrid{
		"n_neighbors": ks,
		"metric":      {KNNMetric},
	}
}

// RandomForestGrid returns the fixed random forest search grid (18
// candidates).
func RandomForestGrid() model_selection.ParameterGrid {
	return model_selection.ParameterGrid{
		"n_estimators":     {100, 350, 500},
		"max_features":     {"log2", "sqrt"},
		"min_samples_leaf": {2, 10, 30},
	}
}

// KNNTuning is the outcome of TuneKNN. Search holds the fitted search with
// the refitted best estimator.
type KNNTuning struct {
	BestK      int
	BestMetric string
	BestScore  float64
	Search     *model_selection.GridSearchCV
}

// TuneKNN grid-searches est over KNNGrid with stratified k-fold CV and
// accuracy. Ties keep the first candidate in grid order, i.e. the smallest
// k. Prints the best k, metric and score.
func (r *Reporter) TuneKNN(est model.ParamEstimator, X, y mat.Matrix) (*KNNTuning, error) {
	search := model_selection.NewGridSearchCV(est, KNNGrid(),
		model_selection.WithCV(r.cv()),
		model_selection.WithLogger(r.getLogger()),
	)
	if err := search.Fit(X, y); err != nil {
		return nil, err
	}
	k, err := model.ParamInt("n_neighbors", search.BestParams["n_neighbors"])
	if err != nil {
		return nil, err
	}
	metric, err := model.ParamString("metric", search.BestParams["metric"])
	if err != nil {
		return nil, err
	}

	r.printer.Title("KNN tuning")
	r.printer.Printf("Best K: %d\n", k)
	r.printer.Printf("Best Metric: %s\n", metric)
	r.printer.Printf("Best Accuracy: %v\n", search.BestScore)
	return &KNNTuning{BestK: k, BestMetric: metric, BestScore: search.BestScore, Search: search}, nil
}

// TuneDecisionTreePruning evaluates one fresh tree per alpha of est's
// cost-complexity pruning path on X, y. Each candidate has default
// hyperparameters, the reporter's random state and that ccp_alpha, and is
// scored by mean stratified k-fold accuracy.
//
// The best score starts at 0 and only a strictly greater mean replaces it,
// so the first alpha wins ties. If no candidate beats 0 (or the path is
// empty) the returned model is nil. The model is returned unfitted.
func (r *Reporter) TuneDecisionTreePruning(est *tree.DecisionTreeClassifier, X, y mat.Matrix) (float64, *tree.DecisionTreeClassifier, error) {
	if est == nil {
		return 0, nil, errors.NewValueError("TuneDecisionTreePruning", "nil estimator")
	}
	start := time.Now()
	logger := r.getLogger().With(
		log.EstimatorIDKey, uuid.New().String(),
		log.ModelNameKey, "DecisionTreeClassifier",
		log.OperationKey, log.OperationPrune,
	)

	path, err := est.CostComplexityPruningPath(X, y)
	if err != nil {
		return 0, nil, err
	}
	logger.Info("pruning search started", log.SearchCandidatesKey, len(path.CCPAlphas))

	var (
		bestScore float64
		bestModel *tree.DecisionTreeClassifier
	)
	for _, alpha := range path.CCPAlphas {
		candidate := tree.NewDecisionTreeClassifier(
			tree.WithRandomState(r.randomState),
			tree.WithCCPAlpha(alpha),
		)
		scores, err := model_selection.CrossValScore(context.Background(), candidate, X, y, r.cv(), 1)
		if err != nil {
			return 0, nil, errors.Wrapf(err, "ccp_alpha=%g", alpha)
		}
		mean := stat.Mean(scores, nil)
		logger.Debug("alpha scored", log.CCPAlphaKey, alpha, log.AccuracyKey, mean)
		if mean > bestScore {
			bestScore = mean
			bestModel = candidate
		}
	}

	if bestModel != nil {
		logger.Info("pruning search finished",
			log.CCPAlphaKey, bestModel.GetParams()["ccp_alpha"],
			log.SearchBestScoreKey, bestScore,
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
	} else {
		logger.Warn("pruning search selected no model", log.DurationMsKey, time.Since(start).Milliseconds())
	}
	r.printer.Title("Decision tree pruning")
	r.printer.Printf("Best cross-validated accuracy: %.2f\n", bestScore)
	return bestScore, bestModel, nil
}

// TuneRandomForest grid-searches est over RandomForestGrid with stratified
// k-fold CV and accuracy, evaluating candidates and folds on all CPUs
// unless the reporter's n_jobs says otherwise. Prints the best parameters
// and score.
func (r *Reporter) TuneRandomForest(est model.ParamEstimator, X, y mat.Matrix) (*model_selection.GridSearchCV, error) {
	search := model_selection.NewGridSearchCV(est, RandomForestGrid(),
		model_selection.WithCV(r.cv()),
		model_selection.WithNJobs(r.nJobs),
		model_selection.WithLogger(r.getLogger()),
	)
	if err := search.Fit(X, y); err != nil {
		return nil, err
	}
	r.printer.Title("Random forest tuning")
	r.printer.Printf("Best N. Estimators: %v\n", search.BestParams["n_estimators"])
	r.printer.Printf("Best Max Features: %v\n", search.BestParams["max_features"])
	r.printer.Printf("Best Min Samples Leaf: %v\n", search.BestParams["min_samples_leaf"])
	r.printer.Printf("Best Accuracy: %v\n", search.BestScore)
	return search, nil
}

// TuneKNN runs Reporter.TuneKNN with the default Reporter.
func TuneKNN(est model.ParamEstimator, X, y mat.Matrix) (*KNNTuning, error) {
	return std.TuneKNN(est, X, y)
}

// TuneDecisionTreePruning runs Reporter.TuneDecisionTreePruning with the
// default Reporter.
func TuneDecisionTreePruning(est *tree.DecisionTreeClassifier, X, y mat.Matrix) (float64, *tree.DecisionTreeClassifier, error) {
	return std.TuneDecisionTreePruning(est, X, y)
}

// TuneRandomForest runs Reporter.TuneRandomForest with the default Reporter.
func TuneRandomForest(est model.ParamEstimator, X, y mat.Matrix) (*model_selection.GridSearchCV, error) {
	return std.TuneRandomForest(est, X, y)
}
