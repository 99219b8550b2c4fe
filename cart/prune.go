package cart

import (
	"math"

	"github.com/lauracline/gocart/pkg/errors"
	"github.com/lauracline/gocart/pkg/log"
)

// PruneEntry is one tree on the cost-complexity path: the pruned tree
// itself, the complexity threshold at which it becomes optimal, its number
// of leaves, and its total resubstitution risk under the path's error
// mode.
type PruneEntry struct {
	Tree  *Node
	Alpha float64
	Size  int
	Risk  float64
}

// floating-point slack when comparing link strengths
const linkEpsilon = 1e-10

// PrunePath computes the full weakest-link pruning sequence of a grown
// tree. The first entry is the unpruned tree at alpha = -Inf; each later
// entry collapses every internal node whose link strength attains the
// current minimum. Alphas are strictly increasing and sizes strictly
// decreasing down to the root-only tree. The input tree is not modified.
//
// Each entry's tree is an independent clone and never shares nodes with
// the input or with other entries.
func PrunePath(root *Node, mode ErrorMode) []PruneEntry {
	logger := log.GetLoggerWithName("cart.prune")

	tree := root.Clone()
	path := []PruneEntry{{
		Tree:  tree.Clone(),
		Alpha: math.Inf(-1),
		Size:  tree.Leaves(),
		Risk:  subtreeRisk(tree, mode),
	}}

	for !tree.IsLeaf() {
		g := minLinkStrength(tree, mode)
		collapseWeakest(tree, mode, g)

		entry := PruneEntry{
			Tree:  tree.Clone(),
			Alpha: g,
			Size:  tree.Leaves(),
			Risk:  subtreeRisk(tree, mode),
		}
		if last := &path[len(path)-1]; g <= last.Alpha+linkEpsilon {
			// same threshold collapsed further; keep only the smaller tree
			*last = entry
		} else {
			path = append(path, entry)
		}
	}

	logger.Debug("pruning path computed",
		log.LeavesKey, path[0].Size,
		log.PathLenKey, len(path),
	)
	return path
}

// PruneToAlpha returns the subtree on the pruning path that is optimal for
// the given complexity parameter: the entry with the largest threshold not
// exceeding alpha.
func PruneToAlpha(root *Node, alpha float64, mode ErrorMode) *Node {
	path := PrunePath(root, mode)
	chosen := path[0]
	for _, e := range path[1:] {
		if e.Alpha <= alpha {
			chosen = e
		}
	}
	return chosen.Tree
}

// PruneToSize returns the path tree with exactly the requested number of
// leaves. When that size is not on the path, it returns the smallest path
// tree with at least the requested size together with a SizeNotOnPathError
// naming the substitution; the returned tree is still usable.
func PruneToSize(root *Node, size int, mode ErrorMode) (*Node, error) {
	if size < 1 {
		return nil, errors.NewValidationError("size", "must be at least 1", size)
	}
	path := PrunePath(root, mode)

	available := make([]int, len(path))
	for i, e := range path {
		available[i] = e.Size
	}

	for _, e := range path {
		if e.Size == size {
			return e.Tree, nil
		}
	}

	// nearest larger size; the full tree when the request exceeds the path
	nearest := path[0]
	for _, e := range path[1:] {
		if e.Size >= size {
			nearest = e
		}
	}
	return nearest.Tree, errors.NewSizeNotOnPathError(size, nearest.Size, available)
}

// nodeRisk is R(t), the total-scale resubstitution risk of predicting a
// node's fitted value for all of its rows.
func nodeRisk(node *Node, mode ErrorMode) float64 {
	switch mode {
	case ErrorMisclass:
		best := 0
		for _, c := range node.ClassCounts {
			if c > best {
				best = c
			}
		}
		return float64(node.Samples - best)
	case ErrorDeviance:
		return totalFrequencyImpurity(node.ClassCounts, Entropy)
	default:
		return node.Impurity
	}
}

// subtreeRisk is R(T_t), the summed risk of a subtree's leaves.
func subtreeRisk(node *Node, mode ErrorMode) float64 {
	if node.IsLeaf() {
		return nodeRisk(node, mode)
	}
	return subtreeRisk(node.Left, mode) + subtreeRisk(node.Right, mode)
}

// linkStrength is g(t) = (R(t) - R(T_t)) / (|leaves(T_t)| - 1), the per-leaf
// price of keeping the subtree below t.
func linkStrength(node *Node, mode ErrorMode) float64 {
	return (nodeRisk(node, mode) - subtreeRisk(node, mode)) / float64(node.Leaves()-1)
}

func minLinkStrength(node *Node, mode ErrorMode) float64 {
	min := linkStrength(node, mode)
	if !node.Left.IsLeaf() {
		if g := minLinkStrength(node.Left, mode); g < min {
			min = g
		}
	}
	if !node.Right.IsLeaf() {
		if g := minLinkStrength(node.Right, mode); g < min {
			min = g
		}
	}
	return min
}

// collapseWeakest turns every topmost internal node with link strength at
// the current minimum into a leaf, in place. Descendants of a collapsed
// node vanish with it.
func collapseWeakest(node *Node, mode ErrorMode, g float64) {
	if node.IsLeaf() {
		return
	}
	if linkStrength(node, mode) <= g+linkEpsilon {
		node.collapse()
		return
	}
	collapseWeakest(node.Left, mode, g)
	collapseWeakest(node.Right, mode, g)
}

// FeatureImportances accumulates the total impurity decrease contributed
// by each feature's splits, normalized to sum to one. A tree with no
// splits yields all zeros.
func FeatureImportances(root *Node, nFeatures int) []float64 {
	imp := make([]float64, nFeatures)
	total := 0.0
	root.Walk(func(n *Node) {
		if n.IsLeaf() {
			return
		}
		dec := n.Impurity - n.Left.Impurity - n.Right.Impurity
		if dec < 0 {
			dec = 0
		}
		imp[n.Feature] += dec
		total += dec
	})
	if total > 0 {
		for j := range imp {
			imp[j] /= total
		}
	}
	return imp
}
