package model_selection

import (
	"context"
	"reflect"
	"sort"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/clfreport/core/model"
	"github.com/YuminosukeSato/clfreport/core/parallel"
	"github.com/YuminosukeSato/clfreport/pkg/errors"
	"github.com/YuminosukeSato/clfreport/pkg/log"
)

// ParameterGrid maps hyperparameter names to the values to try.
type ParameterGrid map[string][]interface{}

// Candidates expands the grid into its cartesian product. Keys are taken in
// sorted order and the last key varies fastest. An empty grid yields one
// empty candidate.
func (g ParameterGrid) Candidates() []map[string]interface{} {
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := []map[string]interface{}{{}}
	for _, k := range keys {
		next := make([]map[string]interface{}, 0, len(out)*len(g[k]))
		for _, partial := range out {
			for _, v := range g[k] {
				c := make(map[string]interface{}, len(partial)+1)
				for pk, pv := range partial {
					c[pk] = pv
				}
				c[k] = v
				next = append(next, c)
			}
		}
		out = next
	}
	return out
}

// Len returns the number of candidates.
func (g ParameterGrid) Len() int {
	n := 1
	for _, v := range g {
		n *= len(v)
	}
	return n
}

// CVResults holds per-candidate cross-validation results, indexed like
// Params.
type CVResults struct {
	Params        []map[string]interface{}
	SplitScores   [][]float64 // [candidate][fold]
	MeanTestScore []float64
	StdTestScore  []float64 // population standard deviation
	RankTestScore []int     // 1 is best; ties share the smallest rank
}

// GridSearchCV evaluates every candidate of ParamGrid with cross-validation
// and keeps the one with the highest mean accuracy.
type GridSearchCV struct {
	Estimator model.ParamEstimator
	ParamGrid ParameterGrid
	CV        Splitter // nil means 5-fold StratifiedKFold
	NJobs     int      // -1 uses all CPUs
	Refit     bool

	// Fitted attributes
	CVResults     CVResults
	BestIndex     int
	BestParams    map[string]interface{}
	BestScore     float64
	BestEstimator model.ParamEstimator
	RunID         string

	logger log.Logger
}

// SearchOption configures a GridSearchCV.
type SearchOption func(*GridSearchCV)

// WithCV sets the splitter.
func WithCV(cv Splitter) SearchOption {
	return func(g *GridSearchCV) {
		g.CV = cv
	}
}

// WithNJobs sets the number of parallel workers.
func WithNJobs(n int) SearchOption {
	return func(g *GridSearchCV) {
		g.NJobs = n
	}
}

// WithRefit sets whether the best candidate is refitted on all data.
func WithRefit(refit bool) SearchOption {
	return func(g *GridSearchCV) {
		g.Refit = refit
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) SearchOption {
	return func(g *GridSearchCV) {
		g.logger = logger
	}
}

// NewGridSearchCV creates a search over grid. Defaults: 5-fold stratified
// CV, one job, refit enabled.
func NewGridSearchCV(est model.ParamEstimator, grid ParameterGrid, opts ...SearchOption) *GridSearchCV {
	g := &GridSearchCV{
		Estimator: est,
		ParamGrid: grid,
		NJobs:     1,
		Refit:     true,
		BestIndex: -1,
		logger:    log.GetLoggerWithName("model_selection"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Fit runs the search with a background context.
func (g *GridSearchCV) Fit(X, y mat.Matrix) error {
	return g.FitContext(context.Background(), X, y)
}

// FitContext runs the search. All (candidate, fold) pairs are evaluated on
// up to NJobs workers; the first error cancels the rest.
func (g *GridSearchCV) FitContext(ctx context.Context, X, y mat.Matrix) error {
	start := time.Now()
	if g.Estimator == nil {
		return errors.NewValueError("GridSearchCV.Fit", "nil estimator")
	}
	if _, _, _, err := model.CheckXy("GridSearchCV.Fit", X, y); err != nil {
		return err
	}
	candidates := g.ParamGrid.Candidates()
	if len(candidates) == 0 {
		return errors.Wrap(errors.ErrNoCandidates, "GridSearchCV.Fit")
	}
	cv := g.CV
	if cv == nil {
		cv = NewStratifiedKFold(DefaultFolds, false, 0)
	}
	folds, err := cv.Split(X, y)
	if err != nil {
		return err
	}
	data := materialize(X, y, folds)

	g.RunID = uuid.New().String()
	logger := g.logger.With(
		log.EstimatorIDKey, g.RunID,
		log.ModelNameKey, modelName(g.Estimator),
		log.OperationKey, log.OperationSearch,
	)
	logger.Info("grid search started",
		log.SearchCandidatesKey, len(candidates),
		log.CVFoldsKey, len(folds),
		log.NJobsKey, parallel.Workers(g.NJobs),
	)

	nFolds := len(folds)
	scores := make([][]float64, len(candidates))
	for i := range scores {
		scores[i] = make([]float64, nFolds)
	}
	err = parallel.Do(ctx, len(candidates)*nFolds, g.NJobs, func(_ context.Context, task int) error {
		c, f := task/nFolds, task%nFolds
		s, err := fitAndScore(g.Estimator, candidates[c], data[f])
		if err != nil {
			return errors.Wrapf(err, "candidate %d (%s) fold %d", c, model.FormatParams(candidates[c]), f)
		}
		scores[c][f] = s
		logger.Debug("fold scored",
			log.HyperParamsKey, candidates[c],
			log.PhaseKey, log.PhaseValidation,
			log.AccuracyKey, s,
		)
		return nil
	})
	if err != nil {
		logger.Error("grid search failed", err)
		return err
	}

	g.CVResults = buildResults(candidates, scores)
	g.BestIndex = 0
	for i, r := range g.CVResults.RankTestScore {
		if r == 1 {
			g.BestIndex = i
			break
		}
	}
	g.BestParams = candidates[g.BestIndex]
	g.BestScore = g.CVResults.MeanTestScore[g.BestIndex]

	if g.Refit {
		best := g.Estimator.Clone()
		if err := best.SetParams(g.BestParams); err != nil {
			return err
		}
		if err := best.Fit(X, y); err != nil {
			return errors.Wrap(err, "GridSearchCV refit")
		}
		g.BestEstimator = best
	}

	logger.Info("grid search finished",
		log.SearchBestParamsKey, model.FormatParams(g.BestParams),
		log.SearchBestScoreKey, g.BestScore,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

func buildResults(candidates []map[string]interface{}, scores [][]float64) CVResults {
	r := CVResults{
		Params:        candidates,
		SplitScores:   scores,
		MeanTestScore: make([]float64, len(candidates)),
		StdTestScore:  make([]float64, len(candidates)),
		RankTestScore: make([]int, len(candidates)),
	}
	for i, s := range scores {
		r.MeanTestScore[i], r.StdTestScore[i] = stat.PopMeanStdDev(s, nil)
	}
	for i, m := range r.MeanTestScore {
		rank := 1
		for _, other := range r.MeanTestScore {
			if other > m {
				rank++
			}
		}
		r.RankTestScore[i] = rank
	}
	return r
}

func modelName(est interface{}) string {
	t := reflect.TypeOf(est)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Predict calls Predict on the refitted best estimator.
func (g *GridSearchCV) Predict(X mat.Matrix) (mat.Matrix, error) {
	if g.BestEstimator == nil {
		return nil, errors.NewNotFittedError("GridSearchCV", "Predict")
	}
	return g.BestEstimator.Predict(X)
}

// Score returns the accuracy of the refitted best estimator.
func (g *GridSearchCV) Score(X, y mat.Matrix) (float64, error) {
	if g.BestEstimator == nil {
		return 0, errors.NewNotFittedError("GridSearchCV", "Score")
	}
	return score(g.BestEstimator, X, y)
}
