package tree

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

const (
	// Nodes at or below this impurity are not split.
	impurityEpsilon = 1e-12
	// Adjacent feature values closer than this are not separated.
	featureThreshold = 1e-7
)

// node is one node of a fitted tree. Nodes are stored in preorder, so the
// root is index 0 and every parent precedes its children.
type node struct {
	left, right int // -1 for leaves
	feature     int
	threshold   float64
	impurity    float64
	nSamples    int
	weightedN   float64
	value       []float64 // weighted class counts
	depth       int
}

// treeStruct is the array representation of a fitted tree.
type treeStruct struct {
	nodes     []node
	nFeatures int
	nClasses  int
	maxDepth  int
}

func (t *treeStruct) isLeaf(i int) bool {
	return t.nodes[i].left < 0
}

func (t *treeStruct) nLeaves() int {
	n := 0
	for i := range t.nodes {
		if t.isLeaf(i) {
			n++
		}
	}
	return n
}

// apply returns the index of the leaf that row falls into.
func (t *treeStruct) apply(row []float64) int {
	i := 0
	for !t.isLeaf(i) {
		n := &t.nodes[i]
		if row[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
	return i
}

// proba writes the class distribution of the leaf row falls into.
func (t *treeStruct) proba(row []float64, dst []float64) {
	leaf := &t.nodes[t.apply(row)]
	for k, c := range leaf.value {
		dst[k] = c / leaf.weightedN
	}
}

// featureImportances returns the normalized total impurity decrease per
// feature, weighted by the fraction of samples reaching each split.
func (t *treeStruct) featureImportances() []float64 {
	imp := make([]float64, t.nFeatures)
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.left < 0 {
			continue
		}
		l, r := &t.nodes[n.left], &t.nodes[n.right]
		imp[n.feature] += n.weightedN*n.impurity - l.weightedN*l.impurity - r.weightedN*r.impurity
	}
	var sum float64
	root := t.nodes[0].weightedN
	for j := range imp {
		imp[j] /= root
		sum += imp[j]
	}
	if sum > 0 {
		for j := range imp {
			imp[j] /= sum
		}
	}
	return imp
}

// impurityFunc measures the impurity of weighted class counts summing to w.
type impurityFunc func(counts []float64, w float64) float64

func gini(counts []float64, w float64) float64 {
	if w <= 0 {
		return 0
	}
	sq := 0.0
	for _, c := range counts {
		p := c / w
		sq += p * p
	}
	return 1 - sq
}

// entropy is measured in bits.
func entropy(counts []float64, w float64) float64 {
	if w <= 0 {
		return 0
	}
	h := 0.0
	for _, c := range counts {
		if c > 0 {
			p := c / w
			h -= p * math.Log2(p)
		}
	}
	return h
}

// builder grows a tree depth first, left child before right.
type builder struct {
	X         *mat.Dense
	y         []int
	weights   []float64
	nClasses  int
	criterion impurityFunc

	maxDepth        int // <= 0 means unlimited
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     int
	rng             *rand.Rand

	tree *treeStruct
}

type split struct {
	feature   int
	threshold float64
	pos       int
	order     []int // samples sorted by feature
}

func (b *builder) build(samples []int) *treeStruct {
	_, nFeatures := b.X.Dims()
	b.tree = &treeStruct{nFeatures: nFeatures, nClasses: b.nClasses}
	b.grow(samples, 0)
	return b.tree
}

func (b *builder) counts(samples []int) ([]float64, float64) {
	counts := make([]float64, b.nClasses)
	var w float64
	for _, s := range samples {
		counts[b.y[s]] += b.weights[s]
		w += b.weights[s]
	}
	return counts, w
}

func (b *builder) grow(samples []int, depth int) int {
	counts, w := b.counts(samples)
	impurity := b.criterion(counts, w)

	idx := len(b.tree.nodes)
	b.tree.nodes = append(b.tree.nodes, node{
		left:      -1,
		right:     -1,
		feature:   -1,
		impurity:  impurity,
		nSamples:  len(samples),
		weightedN: w,
		value:     counts,
		depth:     depth,
	})
	if depth > b.tree.maxDepth {
		b.tree.maxDepth = depth
	}

	n := len(samples)
	isLeaf := (b.maxDepth > 0 && depth >= b.maxDepth) ||
		n < b.minSamplesSplit ||
		n < 2*b.minSamplesLeaf ||
		impurity <= impurityEpsilon
	if isLeaf {
		return idx
	}
	best, ok := b.bestSplit(samples, counts, w)
	if !ok {
		return idx
	}

	left := append([]int(nil), best.order[:best.pos]...)
	right := append([]int(nil), best.order[best.pos:]...)
	b.tree.nodes[idx].feature = best.feature
	b.tree.nodes[idx].threshold = best.threshold

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.tree.nodes[idx].left = l
	b.tree.nodes[idx].right = r
	return idx
}

// bestSplit searches features in a random order until maxFeatures
// non-constant features have been evaluated. A candidate replaces the
// current best only when it is strictly better.
func (b *builder) bestSplit(samples []int, total []float64, wTotal float64) (split, bool) {
	_, nFeatures := b.X.Dims()
	n := len(samples)

	var (
		best      split
		found     bool
		bestProxy = math.Inf(1)
		visited   int
	)
	left := make([]float64, b.nClasses)
	right := make([]float64, b.nClasses)

	for _, f := range b.rng.Perm(nFeatures) {
		order := append([]int(nil), samples...)
		sort.SliceStable(order, func(i, j int) bool {
			return b.X.At(order[i], f) < b.X.At(order[j], f)
		})
		if b.X.At(order[n-1], f) <= b.X.At(order[0], f)+featureThreshold {
			continue
		}
		visited++

		for k := range left {
			left[k] = 0
		}
		copy(right, total)
		var wLeft float64
		for p := 1; p < n; p++ {
			s := order[p-1]
			left[b.y[s]] += b.weights[s]
			right[b.y[s]] -= b.weights[s]
			wLeft += b.weights[s]

			prev, cur := b.X.At(s, f), b.X.At(order[p], f)
			if cur <= prev+featureThreshold {
				continue
			}
			if p < b.minSamplesLeaf || n-p < b.minSamplesLeaf {
				continue
			}
			wRight := wTotal - wLeft
			proxy := wLeft*b.criterion(left, wLeft) + wRight*b.criterion(right, wRight)
			if proxy < bestProxy {
				bestProxy = proxy
				threshold := prev/2 + cur/2
				if threshold == cur || math.IsInf(threshold, 0) {
					threshold = prev
				}
				best = split{feature: f, threshold: threshold, pos: p, order: order}
				found = true
			}
		}
		if visited >= b.maxFeatures {
			break
		}
	}
	return best, found
}
