// Package model provides the estimator interfaces shared by the sklearn/*
// packages and the report helpers.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Scorer is the interface for models that compute a score on labelled data.
// Classifiers return mean accuracy.
type Scorer interface {
	Score(X, y mat.Matrix) (float64, error)
}

// Classifier combines interfaces for classification models.
type Classifier interface {
	Estimator
	Scorer

	// PredictProba returns probability estimates, one column per class.
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes returns the sorted class labels seen during fitting.
	Classes() []float64
}

// ParamEstimator is an estimator whose hyperparameters can be read, written
// and copied. Model selection clones it once per candidate and fold.
type ParamEstimator interface {
	Estimator

	// GetParams returns the model's hyperparameters keyed by scikit-learn name.
	GetParams() map[string]interface{}

	// SetParams sets the named hyperparameters; unknown names are an error.
	SetParams(params map[string]interface{}) error

	// Clone returns an unfitted copy with the same hyperparameters.
	Clone() ParamEstimator
}

// FeatureImportancer is implemented by fitted tree-based models.
type FeatureImportancer interface {
	// FeatureImportances returns one impurity-based score per feature, or a
	// NotFittedError before Fit.
	FeatureImportances() ([]float64, error)
}

// Fitted reports fitted state without exposing the StateManager.
type Fitted interface {
	IsFitted() bool
}
