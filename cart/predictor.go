package cart

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/lauracline/gocart/core/parallel"
	"github.com/lauracline/gocart/pkg/errors"
)

// sequential below this many rows
const parallelRowThreshold = 256

// Predict routes every row of X through the tree and returns the fitted
// leaf values: predicted means for regression trees, predicted class codes
// for classification trees. X must have one column per schema feature.
func Predict(root *Node, schema []Feature, X mat.Matrix) (*mat.VecDense, error) {
	if root == nil {
		return nil, errors.NewValueError("predict", "nil tree")
	}
	rows, cols := X.Dims()
	if cols != len(schema) {
		return nil, errors.NewSchemaMismatchError("predict", "columns",
			strconv.Itoa(len(schema)), strconv.Itoa(cols))
	}

	out := mat.NewVecDense(rows, nil)
	rowErrs := make([]error, rows)
	parallel.ParallelizeWithThreshold(rows, parallelRowThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			leaf, err := routeRow(root, schema, X, i)
			if err != nil {
				rowErrs[i] = err
				continue
			}
			out.SetVec(i, leaf.Value)
		}
	})
	for _, err := range rowErrs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// PredictProba returns a rows x nClasses matrix of leaf class frequencies
// for a classification tree.
func PredictProba(root *Node, schema []Feature, X mat.Matrix, nClasses int) (*mat.Dense, error) {
	if root == nil {
		return nil, errors.NewValueError("predict_proba", "nil tree")
	}
	rows, cols := X.Dims()
	if cols != len(schema) {
		return nil, errors.NewSchemaMismatchError("predict_proba", "columns",
			strconv.Itoa(len(schema)), strconv.Itoa(cols))
	}

	out := mat.NewDense(rows, nClasses, nil)
	rowErrs := make([]error, rows)
	parallel.ParallelizeWithThreshold(rows, parallelRowThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			leaf, err := routeRow(root, schema, X, i)
			if err != nil {
				rowErrs[i] = err
				continue
			}
			proba := leaf.Proba()
			for c := 0; c < nClasses; c++ {
				out.Set(i, c, proba[c])
			}
		}
	})
	for _, err := range rowErrs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// routeRow validates a row's categorical codes against the schema, then
// walks it from the root to its leaf. Validation covers every categorical
// column, not just the ones the path happens to test.
func routeRow(root *Node, schema []Feature, X mat.Matrix, row int) (*Node, error) {
	for j, feat := range schema {
		if feat.Kind != Categorical {
			continue
		}
		if err := checkLevel(feat, X.At(row, j)); err != nil {
			return nil, err
		}
	}

	node := root
	for !node.IsLeaf() {
		if routesLeft(X.At(row, node.Feature), node.Threshold, node.Categories) {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node, nil
}

// checkLevel rejects non-integral codes and codes outside the feature's
// training vocabulary. Levels inside the vocabulary that a particular
// split never saw still route (to the right side), matching how unseen
// combinations behave at training time.
func checkLevel(feat Feature, v float64) error {
	if v != math.Trunc(v) || math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.NewUnseenCategoryError(feat.Name, v)
	}
	code := int(v)
	if code < 0 || code >= len(feat.Levels) {
		return errors.NewUnseenCategoryError(feat.Name, v)
	}
	return nil
}
