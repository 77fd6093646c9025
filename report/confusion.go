package report

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/clfreport/core/table"
	"github.com/YuminosukeSato/clfreport/metrics"
	"github.com/YuminosukeSato/clfreport/pkg/log"
)

// Metric table columns and row names.
const (
	ColMetric = "Metric"
	ColValue  = "Value"

	MetricPrecision   = "Precision"
	MetricRecall      = "Recall"
	MetricF1          = "F1-score"
	MetricSpecificity = "Specificity"
)

// ConfusionReport holds the headline metrics of a binary classifier and the
// cells of its confusion matrix.
type ConfusionReport struct {
	Precision   float64
	Recall      float64
	F1          float64
	TN, FP      int
	FN, TP      int
	Specificity float64
}

// ConfusionMetrics computes precision, recall and F1 from yTest and yPred,
// and reads (tn, fp, fn, tp) from the 2×2 matrix cm to compute specificity
// tn/(tn+fp). Undefined ratios are NaN, never an error: F1 is NaN whenever
// precision or recall is, and 0 when both are 0.
func (r *Reporter) ConfusionMetrics(yTest, yPred, cm mat.Matrix) (ConfusionReport, error) {
	counts, err := metrics.CountsFromMatrix(cm)
	if err != nil {
		return ConfusionReport{}, err
	}
	yt, err := metrics.FirstColumn("ConfusionMetrics", yTest)
	if err != nil {
		return ConfusionReport{}, err
	}
	yp, err := metrics.FirstColumn("ConfusionMetrics", yPred)
	if err != nil {
		return ConfusionReport{}, err
	}

	nan := metrics.WithZeroDivision(math.NaN())
	rep := ConfusionReport{
		TN: counts.TN, FP: counts.FP, FN: counts.FN, TP: counts.TP,
		Specificity: float64(counts.TN) / float64(counts.TN+counts.FP),
	}
	if rep.Precision, err = metrics.PrecisionScore(yt, yp, nan); err != nil {
		return ConfusionReport{}, err
	}
	if rep.Recall, err = metrics.RecallScore(yt, yp, nan); err != nil {
		return ConfusionReport{}, err
	}
	if math.IsNaN(rep.Precision) || math.IsNaN(rep.Recall) {
		rep.F1 = math.NaN()
	} else if rep.F1, err = metrics.F1Score(yt, yp, nan); err != nil {
		return ConfusionReport{}, err
	}

	r.getLogger().Debug("confusion metrics",
		log.OperationKey, log.OperationEvaluate,
		log.PrecisionKey, rep.Precision,
		log.RecallKey, rep.Recall,
		log.F1Key, rep.F1,
		log.SpecificityKey, rep.Specificity,
	)
	r.printer.Printf("Precision: %v\n", rep.Precision)
	r.printer.Printf("Recall: %v\n", rep.Recall)
	r.printer.Printf("F1-score: %v\n", rep.F1)
	r.printer.Printf("Specificity: %v\n", rep.Specificity)
	return rep, nil
}

// MetricsToTable returns the four headline metrics as [Metric, Value] rows
// in the order Precision, Recall, F1-score, Specificity.
func MetricsToTable(precision, recall, f1, specificity float64) *table.Table {
	return &table.Table{
		Columns: []string{ColMetric, ColValue},
		Rows: [][]any{
			{MetricPrecision, precision},
			{MetricRecall, recall},
			{MetricF1, f1},
			{MetricSpecificity, specificity},
		},
	}
}

// Table returns the report's four headline metrics, see MetricsToTable.
func (c ConfusionReport) Table() *table.Table {
	return MetricsToTable(c.Precision, c.Recall, c.F1, c.Specificity)
}

// ConfusionMetrics runs Reporter.ConfusionMetrics with the default Reporter.
func ConfusionMetrics(yTest, yPred, cm mat.Matrix) (ConfusionReport, error) {
	return std.ConfusionMetrics(yTest, yPred, cm)
}
