// Package report holds the helpers of a binary-classification workflow:
// logistic-regression summaries, hyperparameter tuning for KNN, pruned
// decision trees and random forests, feature importances, confusion-matrix
// metrics, AUC/Gini evaluation and model comparison tables.
//
// Each helper delegates to an estimator or metric package of this module,
// reshapes the output into a table.Table and prints a short summary. The
// package-level functions use a Reporter that writes to os.Stdout; create
// one with New to redirect output or change seed, folds and parallelism.
//
//	rep := report.New(report.WithOutput(&buf), report.WithConfig(cfg))
//	search, err := rep.TuneKNN(neighbors.NewKNeighborsClassifier(), X, y)
package report

import (
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/YuminosukeSato/clfreport/pkg/config"
	"github.com/YuminosukeSato/clfreport/pkg/log"
	"github.com/YuminosukeSato/clfreport/sklearn/model_selection"
)

// Reporter runs the helpers with a shared printer and settings.
type Reporter struct {
	printer     *Printer
	logger      log.Logger
	randomState int64
	folds       int
	nJobs       int
	splitter    model_selection.Splitter
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithOutput sends printed summaries to w.
func WithOutput(w io.Writer) Option {
	return func(r *Reporter) {
		r.printer = NewPrinter(w, r.printer.colored)
	}
}

// WithColor toggles colored titles.
func WithColor(enabled bool) Option {
	return func(r *Reporter) {
		r.printer = NewPrinter(r.printer.w, enabled)
	}
}

// WithLogger sets the structured logger. Without it the global provider's
// "report" logger is fetched on every call.
func WithLogger(logger log.Logger) Option {
	return func(r *Reporter) {
		r.logger = logger
	}
}

// WithConfig takes seed, folds, parallelism and color from cfg. A nil cfg
// leaves the Reporter unchanged. Color stays off when the output is not a
// terminal.
func WithConfig(cfg *config.Config) Option {
	return func(r *Reporter) {
		if cfg == nil {
			return
		}
		r.randomState = cfg.RandomState
		r.folds = cfg.CVFolds
		r.nJobs = cfg.NJobs
		r.printer = NewPrinter(r.printer.w, cfg.Output.Color && !color.NoColor)
	}
}

// WithCV replaces the stratified k-fold splitter used by the tuners. The
// folds setting is ignored while a splitter is set.
func WithCV(cv model_selection.Splitter) Option {
	return func(r *Reporter) {
		r.splitter = cv
	}
}

// New creates a Reporter with the settings of config.Default.
func New(opts ...Option) *Reporter {
	def := config.Default()
	r := &Reporter{
		printer:     NewPrinter(os.Stdout, def.Output.Color && !color.NoColor),
		randomState: def.RandomState,
		folds:       def.CVFolds,
		nJobs:       def.NJobs,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reporter) getLogger() log.Logger {
	if r.logger != nil {
		return r.logger
	}
	return log.GetLoggerWithName("report")
}

func (r *Reporter) cv() model_selection.Splitter {
	if r.splitter != nil {
		return r.splitter
	}
	return model_selection.NewStratifiedKFold(r.folds, false, 0)
}

var std = New()
