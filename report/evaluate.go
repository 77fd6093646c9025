package report

import (
	"reflect"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/clfreport/core/model"
	"github.com/YuminosukeSato/clfreport/metrics"
	"github.com/YuminosukeSato/clfreport/pkg/errors"
	"github.com/YuminosukeSato/clfreport/pkg/log"
)

// EvaluateModel fits est on the training data, overwriting any previous fit,
// predicts XTest and returns the predictions with their accuracy against
// yTest.
func (r *Reporter) EvaluateModel(est model.Estimator, XTrain, XTest, yTrain, yTest mat.Matrix) (*mat.VecDense, float64, error) {
	if est == nil {
		return nil, 0, errors.NewValueError("EvaluateModel", "nil estimator")
	}
	if err := est.Fit(XTrain, yTrain); err != nil {
		return nil, 0, err
	}
	pred, err := est.Predict(XTest)
	if err != nil {
		return nil, 0, err
	}
	yPred, err := metrics.FirstColumn("EvaluateModel", pred)
	if err != nil {
		return nil, 0, err
	}
	yTrue, err := metrics.FirstColumn("EvaluateModel", yTest)
	if err != nil {
		return nil, 0, err
	}
	acc, err := metrics.Accuracy(yTrue, yPred)
	if err != nil {
		return nil, 0, err
	}

	r.getLogger().Info("model evaluated",
		log.ModelNameKey, typeName(est),
		log.OperationKey, log.OperationEvaluate,
		log.SamplesKey, yTrue.Len(),
		log.AccuracyKey, acc,
	)
	r.printer.Printf("Test Accuracy: %v\n", acc)
	return yPred, acc, nil
}

// AUCROCAndGini returns the ROC AUC of the hard labels yPred against yTest
// and the Gini index 2·AUC−1. With 0/1 predictions the AUC equals the
// balanced accuracy. A yTest holding a single class is a ValueError.
func (r *Reporter) AUCROCAndGini(name string, yPred, yTest mat.Matrix) (float64, float64, error) {
	yp, err := metrics.FirstColumn("AUCROCAndGini", yPred)
	if err != nil {
		return 0, 0, err
	}
	yt, err := metrics.FirstColumn("AUCROCAndGini", yTest)
	if err != nil {
		return 0, 0, err
	}
	auc, err := metrics.ROCAUCScore(yt, yp)
	if err != nil {
		return 0, 0, err
	}
	gini := Gini(auc)

	r.getLogger().Info("roc auc computed",
		log.ModelNameKey, name,
		log.OperationKey, log.OperationEvaluate,
		log.AUCKey, auc,
		log.GiniKey, gini,
	)
	r.printer.Printf("%s - AUC-ROC: %v\n", name, auc)
	r.printer.Printf("%s - Gini Index: %v\n", name, gini)
	return auc, gini, nil
}

// Gini rescales an AUC to the Gini index 2·auc−1.
func Gini(auc float64) float64 {
	return 2*auc - 1
}

func typeName(v interface{}) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EvaluateModel runs Reporter.EvaluateModel with the default Reporter.
func EvaluateModel(est model.Estimator, XTrain, XTest, yTrain, yTest mat.Matrix) (*mat.VecDense, float64, error) {
	return std.EvaluateModel(est, XTrain, XTest, yTrain, yTest)
}

// AUCROCAndGini runs Reporter.AUCROCAndGini with the default Reporter.
func AUCROCAndGini(name string, yPred, yTest mat.Matrix) (float64, float64, error) {
	return std.AUCROCAndGini(name, yPred, yTest)
}
