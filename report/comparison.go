package report

import (
	"github.com/YuminosukeSato/clfreport/core/table"
	"github.com/YuminosukeSato/clfreport/pkg/errors"
)

// Comparison table columns. The value columns are melted in this order.
const (
	ColModel       = "Model"
	ColAccuracy    = "Test Accuracy"
	ColRecall      = "Recall"
	ColF1          = "F1-score"
	ColSpecificity = "Specificity"
	ColAUC         = "AUC-ROC"
	ColGini        = "Gini Index"
)

// ComparisonWide returns one row per model with columns Model, Test
// Accuracy, Recall, F1-score, Specificity, AUC-ROC and Gini Index. Every
// slice must have len(models) entries.
func ComparisonWide(models []string, accuracies, recalls, f1s, specificities, aucs, ginis []float64) (*table.Table, error) {
	n := len(models)
	for axis, s := range [][]float64{accuracies, recalls, f1s, specificities, aucs, ginis} {
		if len(s) != n {
			return nil, errors.NewDimensionError("BuildComparisonTable", n, len(s), axis+1)
		}
	}
	t := table.New(ColModel, ColAccuracy, ColRecall, ColF1, ColSpecificity, ColAUC, ColGini)
	for i, name := range models {
		if err := t.Append(name, accuracies[i], recalls[i], f1s[i], specificities[i], aucs[i], ginis[i]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// BuildComparisonTable returns the comparison in long format, columns
// [Model, Metric, Value]: all models' Test Accuracy rows first, then Recall,
// and so on, 6·len(models) rows in total.
func BuildComparisonTable(models []string, accuracies, recalls, f1s, specificities, aucs, ginis []float64) (*table.Table, error) {
	wide, err := ComparisonWide(models, accuracies, recalls, f1s, specificities, aucs, ginis)
	if err != nil {
		return nil, err
	}
	return wide.Melt([]string{ColModel}, ColMetric, ColValue)
}
