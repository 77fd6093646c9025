// Standard attribute keys for classification workflows.
//
// Keys follow a hierarchical naming convention ("model.name", "data.samples",
// "search.best_score") so that records from tuners, estimators and reporters
// can be filtered uniformly.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the estimator type.
	// Examples: "Logit", "KNeighborsClassifier", "RandomForestClassifier"
	ModelNameKey = "model.name"

	// EstimatorIDKey identifies one search or fit run (a UUID string).
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the operation being performed.
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is logging.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the workflow.
	PhaseKey = "ml.phase"
)

// Data Shape
const (
	// SamplesKey is the number of rows being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of feature columns.
	FeaturesKey = "data.features"
)

// Performance and Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records accuracy, in [0, 1].
	AccuracyKey = "metrics.accuracy"

	// PrecisionKey, RecallKey, F1Key and SpecificityKey record confusion-matrix metrics.
	PrecisionKey   = "metrics.precision"
	RecallKey      = "metrics.recall"
	F1Key          = "metrics.f1"
	SpecificityKey = "metrics.specificity"

	// AUCKey records the area under the ROC curve.
	AUCKey = "metrics.auc"

	// GiniKey records the Gini index derived from AUC (2*AUC-1).
	GiniKey = "metrics.gini"

	// LogLikelihoodKey records the log-likelihood of a fitted likelihood model.
	LogLikelihoodKey = "metrics.llf"

	// IterationKey records the current iteration of an iterative optimizer.
	IterationKey = "training.iteration"
)

// Model Selection
const (
	// SearchCandidatesKey is the number of hyperparameter candidates evaluated.
	SearchCandidatesKey = "search.candidates"

	// SearchBestScoreKey is the best mean cross-validated score.
	SearchBestScoreKey = "search.best_score"

	// SearchBestParamsKey holds the winning hyperparameters.
	SearchBestParamsKey = "search.best_params"

	// CVFoldsKey is the number of cross-validation folds.
	CVFoldsKey = "cv.folds"

	// CCPAlphaKey is a cost-complexity pruning penalty.
	CCPAlphaKey = "pruning.ccp_alpha"

	// NJobsKey is the number of parallel workers.
	NJobsKey = "search.n_jobs"
)

// Error Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the error or warning type.
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information extracted from cockroachdb/errors.
	StacktraceKey = "error.stacktrace"
)

// Configuration
const (
	// HyperParamsKey contains model hyperparameters.
	HyperParamsKey = "model.hyperparams"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Standard attribute values.
const (
	OperationFit      = "fit"
	OperationPredict  = "predict"
	OperationScore    = "score"
	OperationSearch   = "grid_search"
	OperationPrune    = "prune"
	OperationEvaluate = "evaluate"

	PhaseTraining   = "training"
	PhaseValidation = "validation"
	PhaseTesting    = "testing"
	PhaseReporting  = "reporting"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorConvergence       = "CONVERGENCE_FAILURE"
	ErrorSingularMatrix    = "SINGULAR_MATRIX"
)
