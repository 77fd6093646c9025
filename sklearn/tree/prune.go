package tree

import "math"

// PruningPath is the minimal cost-complexity pruning sequence of a tree.
// CCPAlphas[i] is the effective alpha at which the i-th subtree becomes
// optimal and Impurities[i] the total leaf impurity of that subtree. Both
// are non-decreasing; the last entry is the root-only tree.
type PruningPath struct {
	CCPAlphas  []float64
	Impurities []float64
}

// costComplexityPrune runs weakest-link pruning. It stops before pruning a
// link whose effective alpha exceeds ccpAlpha; pass +Inf to collapse the
// tree to its root. When path is non-nil every intermediate subtree is
// recorded. It returns which nodes remain and which of those are leaves.
func (t *treeStruct) costComplexityPrune(ccpAlpha float64, path *PruningPath) (inSubtree, isLeaf []bool) {
	n := len(t.nodes)
	total := t.nodes[0].weightedN

	parent := make([]int, n)
	parent[0] = -1
	for i := range t.nodes {
		if !t.isLeaf(i) {
			parent[t.nodes[i].left] = i
			parent[t.nodes[i].right] = i
		}
	}

	rNode := make([]float64, n)
	rBranch := make([]float64, n)
	nLeaves := make([]int, n)
	inSubtree = make([]bool, n)
	isLeaf = make([]bool, n)
	for i := range t.nodes {
		rNode[i] = t.nodes[i].impurity * t.nodes[i].weightedN / total
		inSubtree[i] = true
		isLeaf[i] = t.isLeaf(i)
	}
	for i := range t.nodes {
		if !isLeaf[i] {
			continue
		}
		for p := i; p >= 0; p = parent[p] {
			rBranch[p] += rNode[i]
			nLeaves[p]++
		}
	}

	record := func(alpha float64) {
		if path != nil {
			path.CCPAlphas = append(path.CCPAlphas, alpha)
			path.Impurities = append(path.Impurities, rBranch[0])
		}
	}
	record(0)

	for !isLeaf[0] {
		effective := math.MaxFloat64
		weakest := -1
		for i := 0; i < n; i++ {
			if !inSubtree[i] || isLeaf[i] {
				continue
			}
			alpha := (rNode[i] - rBranch[i]) / float64(nLeaves[i]-1)
			if alpha < effective {
				effective = alpha
				weakest = i
			}
		}
		if ccpAlpha < effective {
			break
		}

		stack := []int{t.nodes[weakest].left, t.nodes[weakest].right}
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			inSubtree[i] = false
			if !t.isLeaf(i) {
				stack = append(stack, t.nodes[i].left, t.nodes[i].right)
			}
		}
		isLeaf[weakest] = true

		rDiff := rBranch[weakest] - rNode[weakest]
		leavesDiff := nLeaves[weakest] - 1
		for p := weakest; p >= 0; p = parent[p] {
			rBranch[p] -= rDiff
			nLeaves[p] -= leavesDiff
		}
		record(effective)
	}
	return inSubtree, isLeaf
}

// pruningPath returns the full pruning sequence down to the root.
func (t *treeStruct) pruningPath() PruningPath {
	var path PruningPath
	t.costComplexityPrune(math.Inf(1), &path)
	return path
}

// prune returns the subtree that is optimal for ccpAlpha, renumbered in
// preorder.
func (t *treeStruct) prune(ccpAlpha float64) *treeStruct {
	_, isLeaf := t.costComplexityPrune(ccpAlpha, nil)
	pruned := &treeStruct{nFeatures: t.nFeatures, nClasses: t.nClasses}

	var copyNode func(i int) int
	copyNode = func(i int) int {
		nd := t.nodes[i]
		idx := len(pruned.nodes)
		if nd.depth > pruned.maxDepth {
			pruned.maxDepth = nd.depth
		}
		if isLeaf[i] {
			nd.left, nd.right, nd.feature, nd.threshold = -1, -1, -1, 0
			pruned.nodes = append(pruned.nodes, nd)
			return idx
		}
		pruned.nodes = append(pruned.nodes, nd)
		l := copyNode(nd.left)
		r := copyNode(nd.right)
		pruned.nodes[idx].left = l
		pruned.nodes[idx].right = r
		return idx
	}
	copyNode(0)
	return pruned
}
