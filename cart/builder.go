package cart

import (
	"math/rand/v2"
	"time"

	"github.com/lauracline/gocart/pkg/errors"
	"github.com/lauracline/gocart/pkg/log"
)

// Build grows a full decision tree over ds by greedy recursive
// partitioning, honoring the stopping rules in cfg. The returned root is
// self-contained: prediction and pruning need only the tree, not ds.
func Build(ds *Dataset, cfg Config) (*Node, error) {
	if ds == nil || ds.NumSamples() == 0 {
		return nil, errors.ErrEmptyData
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(ds.Task, ds.NumFeatures()); err != nil {
		return nil, err
	}

	logger := log.GetLoggerWithName("cart.builder")
	start := time.Now()

	rng := rand.New(rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed)>>1|1))

	root, err := buildNode(ds, ds.allIndices(), &cfg, rng, 0)
	if err != nil {
		return nil, err
	}

	logger.Debug("tree grown",
		log.SamplesKey, ds.NumSamples(),
		log.FeaturesKey, ds.NumFeatures(),
		log.LeavesKey, root.Leaves(),
		log.DepthKey, root.Depth(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return root, nil
}

// buildNode constructs the subtree over one row subset. Every node carries
// its payload (size, total impurity, fitted value, class counts) before
// any split is attempted, so stopping early always leaves a valid leaf.
func buildNode(ds *Dataset, indices []int, cfg *Config, rng *rand.Rand, depth int) (*Node, error) {
	if len(indices) == 0 {
		return nil, errors.NewEmptySubsetError("build")
	}

	node := newLeaf(ds, indices, cfg)

	if cfg.MaxDepth > 0 && depth >= cfg.MaxDepth {
		return node, nil
	}
	if len(indices) < cfg.MinNodeSize {
		return node, nil
	}
	if isPure(node.Impurity) {
		return node, nil
	}

	cand, err := findBestSplit(ds, indices, cfg, rng)
	if err != nil {
		return nil, err
	}
	if !cand.ok {
		return node, nil
	}
	if node.Impurity-cand.score < cfg.MinImpurityDecrease {
		return node, nil
	}

	leftIdx, rightIdx := partition(ds, indices, cand)
	if len(leftIdx) == 0 || len(rightIdx) == 0 {
		// a legal candidate always routes rows both ways; guard anyway
		return node, nil
	}

	node.Feature = cand.feature
	node.Threshold = cand.threshold
	node.Categories = cand.categories

	node.Left, err = buildNode(ds, leftIdx, cfg, rng, depth+1)
	if err != nil {
		return nil, err
	}
	node.Right, err = buildNode(ds, rightIdx, cfg, rng, depth+1)
	if err != nil {
		return nil, err
	}
	return node, nil
}

// newLeaf fills a node's payload from the subset: size, total-scale
// impurity, and the fitted value (subset mean for regression, majority
// class for classification, with the lowest class code winning ties).
func newLeaf(ds *Dataset, indices []int, cfg *Config) *Node {
	node := &Node{
		Feature: -1,
		Samples: len(indices),
	}
	if ds.Task == TaskClassification {
		node.ClassCounts = classCounts(ds, indices)
		node.Impurity = totalFrequencyImpurity(node.ClassCounts, cfg.Impurity)
		node.Value = float64(majorityClass(node.ClassCounts))
	} else {
		node.Value = subsetMean(ds, indices)
		node.Impurity = subsetRSS(ds, indices)
	}
	return node
}

// partition routes the subset through one split predicate.
func partition(ds *Dataset, indices []int, cand splitCandidate) (left, right []int) {
	left = make([]int, 0, len(indices))
	right = make([]int, 0, len(indices))
	for _, idx := range indices {
		v := ds.X.At(idx, cand.feature)
		if routesLeft(v, cand.threshold, cand.categories) {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	return left, right
}

// routesLeft applies a split predicate to one feature value. Numeric
// splits send values <= threshold left; categorical splits send the
// listed level codes left.
func routesLeft(value, threshold float64, categories []int) bool {
	if categories == nil {
		return value <= threshold
	}
	code := int(value)
	for _, c := range categories {
		if c == code {
			return true
		}
	}
	return false
}
