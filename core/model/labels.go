package model

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/clfreport/pkg/errors"
)

// CheckXy validates the shapes passed to Fit and returns the labels as a
// slice. y may be an n×1 matrix or a vector.
func CheckXy(op string, X, y mat.Matrix) (nSamples, nFeatures int, labels []float64, err error) {
	if X == nil || y == nil {
		return 0, 0, nil, errors.Wrap(errors.ErrEmptyData, op)
	}
	nSamples, nFeatures = X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return 0, 0, nil, errors.Wrap(errors.ErrEmptyData, op)
	}
	yRows, yCols := y.Dims()
	if yCols != 1 {
		return 0, 0, nil, errors.NewDimensionError(op, 1, yCols, 1)
	}
	if yRows != nSamples {
		return 0, 0, nil, errors.NewDimensionError(op, nSamples, yRows, 0)
	}
	labels = make([]float64, nSamples)
	for i := range labels {
		v := y.At(i, 0)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, nil, errors.NewValueError(op, "labels must be finite")
		}
		labels[i] = v
	}
	return nSamples, nFeatures, labels, nil
}

// EncodeClasses returns the sorted distinct labels and, for each sample,
// the index of its label in classes.
func EncodeClasses(labels []float64) (classes []float64, encoded []int) {
	seen := make(map[float64]struct{}, 2)
	for _, v := range labels {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			classes = append(classes, v)
		}
	}
	sort.Float64s(classes)
	index := make(map[float64]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	encoded = make([]int, len(labels))
	for i, v := range labels {
		encoded[i] = index[v]
	}
	return classes, encoded
}

// Accuracy is the fraction of predictions equal to labels. Classifiers use
// it for Score.
func Accuracy(pred mat.Matrix, labels []float64) float64 {
	correct := 0
	for i, v := range labels {
		if pred.At(i, 0) == v {
			correct++
		}
	}
	return float64(correct) / float64(len(labels))
}
