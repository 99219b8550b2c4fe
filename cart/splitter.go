package cart

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/lauracline/gocart/core/parallel"
	"github.com/lauracline/gocart/pkg/errors"
)

// splitCandidate is the outcome of a split search: the predicate and the
// total impurity of the two children it induces.
type splitCandidate struct {
	feature    int
	threshold  float64
	categories []int // nil for numeric splits
	score      float64
	ok         bool
}

// sequential below this many features; goroutines don't pay off for tiny
// feature counts
const parallelFeatureThreshold = 8

// findBestSplit returns the split minimizing the total impurity of the two
// children over all eligible features, or ok=false when no legal split
// exists (constant features, subset below the minimum node size, or no
// candidate leaving both children with at least MinLeafSize rows). It is a
// pure function of the subset: ds is never mutated.
//
// Ties are broken by lowest feature index, then lowest threshold, which
// keeps results reproducible regardless of the parallel feature search.
func findBestSplit(ds *Dataset, indices []int, cfg *Config, rng *rand.Rand) (splitCandidate, error) {
	none := splitCandidate{ok: false}
	if len(indices) < cfg.MinNodeSize || len(indices) < 2 {
		return none, nil
	}

	features := eligibleFeatures(ds.NumFeatures(), cfg, rng)

	results := make([]splitCandidate, len(features))
	errs := make([]error, len(features))

	parallel.ParallelizeWithThreshold(len(features), parallelFeatureThreshold, func(start, end int) {
		for fi := start; fi < end; fi++ {
			j := features[fi]
			if ds.Schema[j].Kind == Categorical {
				results[fi], errs[fi] = bestCategoricalSplit(ds, indices, j, cfg)
			} else {
				results[fi] = bestNumericSplit(ds, indices, j, cfg)
			}
		}
	})

	for _, err := range errs {
		if err != nil {
			return none, err
		}
	}

	// merge by ascending feature index, strict improvement only, so the
	// lowest feature wins ties deterministically
	best := none
	for _, cand := range results {
		if !cand.ok {
			continue
		}
		if !best.ok || cand.score < best.score {
			best = cand
		}
	}
	return best, nil
}

// eligibleFeatures returns the sorted feature indices a split at this node
// may use: all of them, or a seeded random subset when FeatureSubset is
// set.
func eligibleFeatures(nFeatures int, cfg *Config, rng *rand.Rand) []int {
	if cfg.FeatureSubset <= 0 || cfg.FeatureSubset >= nFeatures {
		features := make([]int, nFeatures)
		for j := range features {
			features[j] = j
		}
		return features
	}

	perm := rng.Perm(nFeatures)
	features := perm[:cfg.FeatureSubset]
	sort.Ints(features)
	return features
}

// bestNumericSplit scans the midpoints between consecutive distinct sorted
// values of one numeric feature, exhaustively.
func bestNumericSplit(ds *Dataset, indices []int, feature int, cfg *Config) splitCandidate {
	type pair struct {
		value float64
		row   int
	}
	pairs := make([]pair, len(indices))
	for i, idx := range indices {
		pairs[i] = pair{value: ds.X.At(idx, feature), row: idx}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].value < pairs[j].value })

	best := splitCandidate{feature: feature, ok: false}
	n := len(pairs)

	if ds.Task == TaskRegression {
		var totalSum, totalSumSq float64
		for _, p := range pairs {
			y := ds.Y.AtVec(p.row)
			totalSum += y
			totalSumSq += y * y
		}

		var leftSum, leftSumSq float64
		for i := 0; i < n-1; i++ {
			y := ds.Y.AtVec(pairs[i].row)
			leftSum += y
			leftSumSq += y * y

			if pairs[i].value == pairs[i+1].value {
				continue
			}
			nL, nR := i+1, n-i-1
			if nL < cfg.MinLeafSize || nR < cfg.MinLeafSize {
				continue
			}

			score := rssFromSums(leftSum, leftSumSq, nL) +
				rssFromSums(totalSum-leftSum, totalSumSq-leftSumSq, nR)
			if !best.ok || score < best.score {
				best = splitCandidate{
					feature:   feature,
					threshold: (pairs[i].value + pairs[i+1].value) / 2,
					score:     score,
					ok:        true,
				}
			}
		}
		return best
	}

	totalCounts := make([]int, ds.NumClasses())
	for _, p := range pairs {
		totalCounts[int(ds.Y.AtVec(p.row))]++
	}

	leftCounts := make([]int, ds.NumClasses())
	rightCounts := make([]int, ds.NumClasses())
	for i := 0; i < n-1; i++ {
		leftCounts[int(ds.Y.AtVec(pairs[i].row))]++

		if pairs[i].value == pairs[i+1].value {
			continue
		}
		nL, nR := i+1, n-i-1
		if nL < cfg.MinLeafSize || nR < cfg.MinLeafSize {
			continue
		}

		for c := range rightCounts {
			rightCounts[c] = totalCounts[c] - leftCounts[c]
		}
		score := totalFrequencyImpurity(leftCounts, cfg.Impurity) +
			totalFrequencyImpurity(rightCounts, cfg.Impurity)
		if !best.ok || score < best.score {
			best = splitCandidate{
				feature:   feature,
				threshold: (pairs[i].value + pairs[i+1].value) / 2,
				score:     score,
				ok:        true,
			}
		}
	}
	return best
}

// levelStat aggregates the response of one categorical level within the
// subset.
type levelStat struct {
	code   int
	count  int
	counts []int // classification
	sum    float64
	sumSq  float64
}

// bestCategoricalSplit searches non-trivial bipartitions of the levels
// observed in the subset. Regression and binary classification use the
// level-ordering optimization (sort by within-level mean or positive-class
// proportion and scan prefixes, which contains the optimal bipartition);
// multi-class search is exhaustive, bounded by MaxCategories.
func bestCategoricalSplit(ds *Dataset, indices []int, feature int, cfg *Config) (splitCandidate, error) {
	none := splitCandidate{feature: feature, ok: false}

	stats := make(map[int]*levelStat)
	for _, idx := range indices {
		code := int(ds.X.At(idx, feature))
		st, found := stats[code]
		if !found {
			st = &levelStat{code: code}
			if ds.Task == TaskClassification {
				st.counts = make([]int, ds.NumClasses())
			}
			stats[code] = st
		}
		st.count++
		y := ds.Y.AtVec(idx)
		if ds.Task == TaskClassification {
			st.counts[int(y)]++
		} else {
			st.sum += y
			st.sumSq += y * y
		}
	}

	if len(stats) < 2 {
		return none, nil
	}
	if len(stats) > cfg.MaxCategories {
		return none, errors.NewFeatureCardinalityError(ds.Schema[feature].Name, len(stats), cfg.MaxCategories)
	}

	levels := make([]*levelStat, 0, len(stats))
	for _, st := range stats {
		levels = append(levels, st)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].code < levels[j].code })

	if ds.Task == TaskRegression || ds.NumClasses() == 2 {
		return bestOrderedBipartition(ds, levels, feature, cfg), nil
	}
	return bestExhaustiveBipartition(ds, levels, feature, cfg), nil
}

// bestOrderedBipartition sorts levels by within-level mean response (or
// positive-class proportion) and scans the k-1 ordered prefixes.
func bestOrderedBipartition(ds *Dataset, levels []*levelStat, feature int, cfg *Config) splitCandidate {
	ordered := make([]*levelStat, len(levels))
	copy(ordered, levels)
	sort.SliceStable(ordered, func(i, j int) bool {
		return levelOrderKey(ds, ordered[i]) < levelOrderKey(ds, ordered[j])
	})

	best := splitCandidate{feature: feature, ok: false}
	for m := 1; m < len(ordered); m++ {
		cand := evaluateBipartition(ds, ordered[:m], ordered[m:], feature, cfg)
		if cand.ok && (!best.ok || cand.score < best.score) {
			best = cand
		}
	}
	return best
}

func levelOrderKey(ds *Dataset, st *levelStat) float64 {
	if ds.Task == TaskRegression {
		return st.sum / float64(st.count)
	}
	return float64(st.counts[1]) / float64(st.count)
}

// bestExhaustiveBipartition enumerates every bipartition with the first
// level pinned to the left side, halving the symmetric search space.
func bestExhaustiveBipartition(ds *Dataset, levels []*levelStat, feature int, cfg *Config) splitCandidate {
	k := len(levels)
	best := splitCandidate{feature: feature, ok: false}

	for mask := 0; mask < 1<<(k-1); mask++ {
		left := []*levelStat{levels[0]}
		var right []*levelStat
		for i := 1; i < k; i++ {
			if mask&(1<<(i-1)) != 0 {
				left = append(left, levels[i])
			} else {
				right = append(right, levels[i])
			}
		}
		if len(right) == 0 {
			continue
		}
		cand := evaluateBipartition(ds, left, right, feature, cfg)
		if cand.ok && (!best.ok || cand.score < best.score) {
			best = cand
		}
	}
	return best
}

// evaluateBipartition scores one left/right grouping of levels.
func evaluateBipartition(ds *Dataset, left, right []*levelStat, feature int, cfg *Config) splitCandidate {
	none := splitCandidate{feature: feature, ok: false}

	nL, nR := 0, 0
	for _, st := range left {
		nL += st.count
	}
	for _, st := range right {
		nR += st.count
	}
	if nL < cfg.MinLeafSize || nR < cfg.MinLeafSize {
		return none
	}

	var score float64
	if ds.Task == TaskRegression {
		var sumL, sumSqL, sumR, sumSqR float64
		for _, st := range left {
			sumL += st.sum
			sumSqL += st.sumSq
		}
		for _, st := range right {
			sumR += st.sum
			sumSqR += st.sumSq
		}
		score = rssFromSums(sumL, sumSqL, nL) + rssFromSums(sumR, sumSqR, nR)
	} else {
		countsL := make([]int, ds.NumClasses())
		countsR := make([]int, ds.NumClasses())
		for _, st := range left {
			for c, v := range st.counts {
				countsL[c] += v
			}
		}
		for _, st := range right {
			for c, v := range st.counts {
				countsR[c] += v
			}
		}
		score = totalFrequencyImpurity(countsL, cfg.Impurity) +
			totalFrequencyImpurity(countsR, cfg.Impurity)
	}

	categories := make([]int, len(left))
	for i, st := range left {
		categories[i] = st.code
	}
	sort.Ints(categories)

	return splitCandidate{
		feature:    feature,
		categories: categories,
		score:      score,
		ok:         true,
	}
}

// impurityEpsilon treats numerically zero impurity as pure.
const impurityEpsilon = 1e-12

// isPure reports whether a total-scale impurity is effectively zero.
func isPure(impurity float64) bool {
	return math.Abs(impurity) <= impurityEpsilon
}
