// Package model_selection provides cross-validation splitters, CrossValScore
// and an exhaustive GridSearchCV compatible with scikit-learn.
package model_selection

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/clfreport/pkg/errors"
)

// Splitter generates train/test folds.
type Splitter interface {
	// Split returns the folds for X and labels y (n×1).
	Split(X, y mat.Matrix) ([]Fold, error)
	// NSplits returns the number of folds.
	NSplits() int
}

// Fold holds the row indices of one train/test split, each in ascending
// order.
type Fold struct {
	Train []int
	Test  []int
}

// KFold splits rows into consecutive folds. The first n % nSplits folds get
// one extra row.
type KFold struct {
	nSplits     int
	shuffle     bool
	randomState int64
}

// NewKFold creates a k-fold splitter. randomState is used only when
// shuffle is true.
func NewKFold(nSplits int, shuffle bool, randomState int64) *KFold {
	return &KFold{nSplits: nSplits, shuffle: shuffle, randomState: randomState}
}

// NSplits returns the number of folds.
func (kf *KFold) NSplits() int {
	return kf.nSplits
}

// Split generates train/test indices for each fold.
func (kf *KFold) Split(X, _ mat.Matrix) ([]Fold, error) {
	nSamples, _ := X.Dims()
	if err := checkSplits(kf.nSplits, nSamples); err != nil {
		return nil, err
	}

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}
	if kf.shuffle {
		r := rand.New(rand.NewSource(kf.randomState))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	testFold := make([]int, nSamples)
	foldSize := nSamples / kf.nSplits
	remainder := nSamples % kf.nSplits
	current := 0
	for i := 0; i < kf.nSplits; i++ {
		size := foldSize
		if i < remainder {
			size++
		}
		for _, idx := range indices[current : current+size] {
			testFold[idx] = i
		}
		current += size
	}
	return foldsFromAssignment(testFold, kf.nSplits), nil
}

// StratifiedKFold preserves the class proportions of y in every fold.
//
// Without shuffling the assignment is deterministic and matches
// scikit-learn: labels are sorted and dealt round-robin to obtain the
// per-fold class counts, then the samples of each class fill fold 0, fold 1,
// ... in their original order.
type StratifiedKFold struct {
	nSplits     int
	shuffle     bool
	randomState int64
}

// NewStratifiedKFold creates a stratified k-fold splitter.
func NewStratifiedKFold(nSplits int, shuffle bool, randomState int64) *StratifiedKFold {
	return &StratifiedKFold{nSplits: nSplits, shuffle: shuffle, randomState: randomState}
}

// NSplits returns the number of folds.
func (skf *StratifiedKFold) NSplits() int {
	return skf.nSplits
}

// Split generates stratified train/test indices for each fold.
func (skf *StratifiedKFold) Split(X, y mat.Matrix) ([]Fold, error) {
	nSamples, _ := X.Dims()
	if err := checkSplits(skf.nSplits, nSamples); err != nil {
		return nil, err
	}
	if y == nil {
		return nil, errors.NewValueError("StratifiedKFold.Split", "y is required")
	}
	if yRows, _ := y.Dims(); yRows != nSamples {
		return nil, errors.NewDimensionError("StratifiedKFold.Split", nSamples, yRows, 0)
	}

	// クラスは出現順に番号付けする
	classOf := make(map[float64]int)
	encoded := make([]int, nSamples)
	var counts []int
	for i := 0; i < nSamples; i++ {
		label := y.At(i, 0)
		k, ok := classOf[label]
		if !ok {
			k = len(counts)
			classOf[label] = k
			counts = append(counts, 0)
		}
		encoded[i] = k
		counts[k]++
	}
	nClasses := len(counts)

	tooFew := true
	for _, c := range counts {
		if c >= skf.nSplits {
			tooFew = false
		}
	}
	if tooFew {
		return nil, errors.NewValueError("StratifiedKFold.Split",
			fmt.Sprintf("n_splits=%d cannot be greater than the number of members in each class", skf.nSplits))
	}

	// 並べ替えたラベル列を fold ごとに間引いたときのクラス件数
	sorted := make([]int, 0, nSamples)
	for k, c := range counts {
		for j := 0; j < c; j++ {
			sorted = append(sorted, k)
		}
	}
	allocation := make([][]int, skf.nSplits)
	for f := range allocation {
		allocation[f] = make([]int, nClasses)
		for i := f; i < nSamples; i += skf.nSplits {
			allocation[f][sorted[i]]++
		}
	}

	var r *rand.Rand
	if skf.shuffle {
		r = rand.New(rand.NewSource(skf.randomState))
	}
	testFold := make([]int, nSamples)
	for k := 0; k < nClasses; k++ {
		foldsForClass := make([]int, 0, counts[k])
		for f := 0; f < skf.nSplits; f++ {
			for j := 0; j < allocation[f][k]; j++ {
				foldsForClass = append(foldsForClass, f)
			}
		}
		if r != nil {
			r.Shuffle(len(foldsForClass), func(i, j int) {
				foldsForClass[i], foldsForClass[j] = foldsForClass[j], foldsForClass[i]
			})
		}
		next := 0
		for i := 0; i < nSamples; i++ {
			if encoded[i] == k {
				testFold[i] = foldsForClass[next]
				next++
			}
		}
	}
	return foldsFromAssignment(testFold, skf.nSplits), nil
}

func checkSplits(nSplits, nSamples int) error {
	if nSplits < 2 {
		return errors.NewValidationError("n_splits", "must be at least 2", nSplits)
	}
	if nSplits > nSamples {
		return errors.NewValueError("Split",
			fmt.Sprintf("cannot have number of splits n_splits=%d greater than the number of samples: n_samples=%d", nSplits, nSamples))
	}
	return nil
}

func foldsFromAssignment(testFold []int, nSplits int) []Fold {
	folds := make([]Fold, nSplits)
	for i, f := range testFold {
		for g := range folds {
			if g == f {
				folds[g].Test = append(folds[g].Test, i)
			} else {
				folds[g].Train = append(folds[g].Train, i)
			}
		}
	}
	return folds
}
