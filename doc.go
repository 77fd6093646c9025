// Package clfreport provides helpers for a binary-classification workflow in
// Go: fitting and summarizing a logistic regression, tuning k-nearest
// neighbors, pruned decision trees and random forests, extracting feature
// importances, computing confusion-matrix metrics, AUC-ROC and the Gini
// index, and assembling comparison tables across models.
//
// # Packages
//
//   - report: the workflow helpers (TuneKNN, TuneDecisionTreePruning,
//     TuneRandomForest, ConfusionMetrics, EvaluateModel, BuildComparisonTable, ...)
//   - stats/logit: maximum-likelihood logistic regression with standard
//     errors, p-values, confidence intervals and a text summary
//   - sklearn/tree, sklearn/ensemble, sklearn/neighbors: scikit-learn
//     compatible classifiers
//   - sklearn/model_selection: KFold, StratifiedKFold, CrossValScore and
//     GridSearchCV
//   - metrics: accuracy, confusion matrix, precision/recall/F1/specificity
//     and ROC AUC
//   - core/frame, core/table: labelled feature matrices and result tables
//   - pkg/errors, pkg/log, pkg/config: error types, structured logging and
//     YAML configuration
//
// # Quick Start
//
//	X, _ := frame.FromRows([]string{"income", "debt"}, rows)
//	y := mat.NewVecDense(len(rows), labels)
//
//	tuning, err := report.TuneKNN(neighbors.NewKNeighborsClassifier(), X, y)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	yPred, acc, err := report.EvaluateModel(tuning.Search.BestEstimator, X, XTest, y, yTest)
//
// All estimators take gonum mat.Matrix inputs and follow scikit-learn's
// defaults and parameter names, so results can be checked against Python.
package clfreport
