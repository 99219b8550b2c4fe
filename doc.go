// Package gocart provides classification and regression trees with
// cost-complexity pruning for Go, designed for backend services that need
// interpretable models without a Python dependency.
//
// Trees are grown by recursive partitioning, pruned along the weakest-link
// cost-complexity path, and sized by k-fold cross-validation, the
// procedure behind R's tree and rpart packages.
//
// # Installation
//
//	go get github.com/lauracline/gocart
//
// # Quick Start
//
// Fit a classification tree and prune it by cross-validation:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/lauracline/gocart/cart"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(8, 2, []float64{
//	        0, 0, 0, 1, 1, 0, 1, 1,
//	        3, 3, 3, 4, 4, 3, 4, 4,
//	    })
//	    y := mat.NewDense(8, 1, []float64{0, 0, 0, 0, 1, 1, 1, 1})
//
//	    dt := cart.NewDecisionTreeClassifier(cart.WithCriterion("gini"))
//	    if err := dt.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    result, err := dt.PruneCV(cart.CVOptions{Folds: 4, Mode: cart.ErrorMisclass})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("chosen size:", result.ChosenSize)
//	}
//
// # Packages
//
//   - cart: tree growing, pruning, cross-validation and the sklearn-style
//     estimators
//   - metrics: evaluation metrics (MSE, RMSE, MAE, R², accuracy,
//     confusion matrix)
//   - preprocessing: label encoding for categorical columns
//   - core/model: estimator state and persistence helpers
//   - core/parallel: parallel processing utilities
//
// # Performance
//
// Split searches parallelize across features and cross-validation
// parallelizes across folds, with automatic thresholds so small inputs
// stay sequential. Given the same data, configuration and seed, every
// result is deterministic.
//
// # License
//
// gocart is released under the MIT License.
package gocart
