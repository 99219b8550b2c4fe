package cart

import "math"

// Impurity values in this package are kept on the total scale: a node's
// impurity is n·I(p) for classification and the residual sum of squares
// for regression. On this scale a valid split never increases the sum of
// the children's impurities beyond the parent's, which keeps impurity
// monotonically non-increasing along every root-to-leaf path.

// classCounts tallies class codes of the given rows.
func classCounts(ds *Dataset, indices []int) []int {
	counts := make([]int, ds.NumClasses())
	for _, idx := range indices {
		counts[int(ds.Y.AtVec(idx))]++
	}
	return counts
}

// countsTotal returns the sample count behind a counts vector.
func countsTotal(counts []int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}

// frequencyImpurity computes the per-sample impurity of a class
// distribution for gini, entropy or misclassification.
func frequencyImpurity(counts []int, kind ImpurityKind) float64 {
	n := countsTotal(counts)
	if n == 0 {
		return 0
	}

	switch kind {
	case Entropy:
		var h float64
		for _, c := range counts {
			if c == 0 {
				continue
			}
			p := float64(c) / float64(n)
			h -= p * math.Log(p)
		}
		return h
	case Misclassification:
		maxC := 0
		for _, c := range counts {
			if c > maxC {
				maxC = c
			}
		}
		return 1 - float64(maxC)/float64(n)
	default: // Gini
		var g float64
		for _, c := range counts {
			p := float64(c) / float64(n)
			g += p * (1 - p)
		}
		return g
	}
}

// totalFrequencyImpurity is n times the per-sample impurity.
func totalFrequencyImpurity(counts []int, kind ImpurityKind) float64 {
	return float64(countsTotal(counts)) * frequencyImpurity(counts, kind)
}

// subsetMean returns the mean response of the given rows.
func subsetMean(ds *Dataset, indices []int) float64 {
	var sum float64
	for _, idx := range indices {
		sum += ds.Y.AtVec(idx)
	}
	return sum / float64(len(indices))
}

// subsetRSS returns the residual sum of squares of the rows around their
// own mean, computed with sums to avoid a second pass.
func subsetRSS(ds *Dataset, indices []int) float64 {
	var sum, sumSq float64
	for _, idx := range indices {
		y := ds.Y.AtVec(idx)
		sum += y
		sumSq += y * y
	}
	rss := sumSq - sum*sum/float64(len(indices))
	if rss < 0 {
		// guard against catastrophic cancellation on constant responses
		rss = 0
	}
	return rss
}

// rssFromSums computes Σ(y−ȳ)² from a running sum and sum of squares.
func rssFromSums(sum, sumSq float64, n int) float64 {
	if n == 0 {
		return 0
	}
	rss := sumSq - sum*sum/float64(n)
	if rss < 0 {
		rss = 0
	}
	return rss
}

// nodeImpurity computes the total-scale impurity of a subset under the
// configured criterion.
func nodeImpurity(ds *Dataset, indices []int, kind ImpurityKind) float64 {
	if ds.Task == TaskRegression {
		return subsetRSS(ds, indices)
	}
	return totalFrequencyImpurity(classCounts(ds, indices), kind)
}

// majorityClass returns the most frequent class code, lowest code winning
// ties.
func majorityClass(counts []int) int {
	best, bestCount := 0, -1
	for c, count := range counts {
		if count > bestCount {
			best, bestCount = c, count
		}
	}
	return best
}
