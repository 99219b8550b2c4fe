package cart

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/lauracline/gocart/core/parallel"
	"github.com/lauracline/gocart/pkg/errors"
	"github.com/lauracline/gocart/pkg/log"
)

// CVOptions controls cost-complexity cross-validation.
type CVOptions struct {
	// Folds is the number of cross-validation folds. Zero means 10,
	// clamped to the number of samples.
	Folds int
	// Mode is the error measure guiding pruning and fold evaluation.
	Mode ErrorMode
	// Seed fixes the fold shuffle. The same seed over the same dataset
	// always produces the same folds and the same result.
	Seed int64
	// OneSE, when set, chooses the smallest tree whose cross-validated
	// error is within one standard error of the minimum instead of the
	// minimizer itself.
	OneSE bool
}

// CVResult reports the cross-validated error along the master pruning
// path. Slices are parallel and ordered by descending size, mirroring the
// path itself.
type CVResult struct {
	// Path is the pruning path of the tree grown on the full dataset.
	Path []PruneEntry
	// Sizes holds the leaf count of each path entry.
	Sizes []int
	// Alphas holds the complexity threshold of each path entry.
	Alphas []float64
	// Resub holds each entry's total resubstitution risk on the full
	// dataset.
	Resub []float64
	// CVErr holds the total held-out risk of each entry, summed over
	// folds.
	CVErr []float64
	// StdErr holds the standard error of each entry's held-out risk
	// across folds.
	StdErr []float64
	// ChosenSize and ChosenAlpha identify the selected entry.
	ChosenSize  int
	ChosenAlpha float64
}

// ChosenTree returns the path tree at the selected size.
func (r *CVResult) ChosenTree() *Node {
	for _, e := range r.Path {
		if e.Size == r.ChosenSize {
			return e.Tree
		}
	}
	return r.Path[len(r.Path)-1].Tree
}

// CrossValidate grows a tree on the full dataset, computes its pruning
// path, and estimates each path entry's generalization error by k-fold
// cross-validation. Every fold grows its own tree with the same
// configuration, prunes it, and scores the held-out rows; fold paths are
// aligned to the master path by leaf count, each master size mapping to
// the smallest fold tree with at least that many leaves.
func CrossValidate(ds *Dataset, cfg Config, opts CVOptions) (*CVResult, error) {
	if ds == nil || ds.NumSamples() == 0 {
		return nil, errors.ErrEmptyData
	}
	n := ds.NumSamples()

	folds := opts.Folds
	if folds == 0 {
		folds = 10
	}
	if folds > n {
		folds = n
	}
	if folds < 2 {
		return nil, errors.NewValidationError("folds", "must be at least 2", opts.Folds)
	}

	logger := log.GetLoggerWithName("cart.cv")
	start := time.Now()

	master, err := Build(ds, cfg)
	if err != nil {
		return nil, err
	}
	path := PrunePath(master, opts.Mode)

	rng := rand.New(rand.NewPCG(uint64(opts.Seed), uint64(opts.Seed)>>1|1))
	perm := rng.Perm(n)

	// foldErrs[f][i] is fold f's held-out risk for master path entry i
	foldErrs := make([][]float64, folds)
	buildErrs := make([]error, folds)
	parallel.Parallelize(folds, func(startFold, endFold int) {
		for f := startFold; f < endFold; f++ {
			holdout := perm[f*n/folds : (f+1)*n/folds]
			train := make([]int, 0, n-len(holdout))
			train = append(train, perm[:f*n/folds]...)
			train = append(train, perm[(f+1)*n/folds:]...)

			foldErrs[f], buildErrs[f] = foldRisks(ds, cfg, opts.Mode, train, holdout, path)
		}
	})
	for _, err := range buildErrs {
		if err != nil {
			return nil, err
		}
	}

	result := &CVResult{
		Path:   path,
		Sizes:  make([]int, len(path)),
		Alphas: make([]float64, len(path)),
		Resub:  make([]float64, len(path)),
		CVErr:  make([]float64, len(path)),
		StdErr: make([]float64, len(path)),
	}
	for i, e := range path {
		result.Sizes[i] = e.Size
		result.Alphas[i] = e.Alpha
		result.Resub[i] = e.Risk
		for f := 0; f < folds; f++ {
			result.CVErr[i] += foldErrs[f][i]
		}
		result.StdErr[i] = foldStdErr(foldErrs, i, folds)
	}

	chooseSize(result, opts.OneSE)

	logger.Debug("cross-validation complete",
		log.FoldsKey, folds,
		log.PathLenKey, len(path),
		log.ChosenSizeKey, result.ChosenSize,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return result, nil
}

// foldRisks grows one fold's tree, prunes it, and scores every master path
// entry against the held-out rows.
func foldRisks(ds *Dataset, cfg Config, mode ErrorMode, train, holdout []int, masterPath []PruneEntry) ([]float64, error) {
	trainDS, err := ds.Select(train)
	if err != nil {
		return nil, err
	}
	foldTree, err := Build(trainDS, cfg)
	if err != nil {
		return nil, err
	}
	foldPath := PrunePath(foldTree, mode)

	risks := make([]float64, len(masterPath))
	for i, e := range masterPath {
		aligned := alignBySize(foldPath, e.Size)
		risks[i] = holdoutRisk(aligned.Tree, ds, holdout, mode)
	}
	return risks, nil
}

// alignBySize maps a master tree size onto a fold path: the smallest fold
// entry with at least that many leaves, or the fold's largest tree when
// none qualifies.
func alignBySize(path []PruneEntry, size int) PruneEntry {
	chosen := path[0]
	for _, e := range path[1:] {
		if e.Size >= size {
			chosen = e
		}
	}
	return chosen
}

// devianceFloor clamps leaf class probabilities away from zero when a
// held-out row lands in a leaf that never saw its class.
const devianceFloor = 1e-10

// holdoutRisk scores a tree's predictions on a row subset, on the same
// total scale as resubstitution risk.
func holdoutRisk(tree *Node, ds *Dataset, indices []int, mode ErrorMode) float64 {
	total := 0.0
	for _, idx := range indices {
		leaf := tree
		for !leaf.IsLeaf() {
			if routesLeft(ds.X.At(idx, leaf.Feature), leaf.Threshold, leaf.Categories) {
				leaf = leaf.Left
			} else {
				leaf = leaf.Right
			}
		}
		y := ds.Y.AtVec(idx)
		switch mode {
		case ErrorMisclass:
			if int(y) != int(leaf.Value) {
				total++
			}
		case ErrorDeviance:
			p := float64(leaf.ClassCounts[int(y)]) / float64(leaf.Samples)
			if p < devianceFloor {
				p = devianceFloor
			}
			total -= math.Log(p)
		default:
			d := y - leaf.Value
			total += d * d
		}
	}
	return total
}

func foldStdErr(foldErrs [][]float64, i, folds int) float64 {
	mean := 0.0
	for f := 0; f < folds; f++ {
		mean += foldErrs[f][i]
	}
	mean /= float64(folds)

	variance := 0.0
	for f := 0; f < folds; f++ {
		d := foldErrs[f][i] - mean
		variance += d * d
	}
	variance /= float64(folds - 1)
	return math.Sqrt(variance / float64(folds))
}

// chooseSize selects the path entry with minimum cross-validated error,
// preferring the smaller tree on ties. Under the one-standard-error rule
// it instead selects the smallest tree within one standard error of that
// minimum.
func chooseSize(r *CVResult, oneSE bool) {
	best := 0
	for i := 1; i < len(r.CVErr); i++ {
		if r.CVErr[i] <= r.CVErr[best] {
			best = i
		}
	}

	if oneSE {
		limit := r.CVErr[best] + r.StdErr[best]
		for i := len(r.CVErr) - 1; i > best; i-- {
			if r.CVErr[i] <= limit {
				best = i
				break
			}
		}
	}

	r.ChosenSize = r.Sizes[best]
	r.ChosenAlpha = r.Alphas[best]
}
