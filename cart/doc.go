// Package cart implements classification and regression trees with
// cost-complexity pruning.
//
// Trees are grown by greedy recursive partitioning over numeric and
// categorical features, then pruned along the weakest-link path. The
// pruned size is typically chosen by k-fold cross-validation:
//
//	ds, _ := cart.NewClassificationDataset(X, y)
//	cfg := cart.DefaultConfig(cart.TaskClassification)
//	result, _ := cart.CrossValidate(ds, cfg, cart.CVOptions{
//		Folds: 10,
//		Mode:  cart.ErrorMisclass,
//		Seed:  42,
//	})
//	tree := result.ChosenTree()
//
// For a sklearn-flavored surface, DecisionTreeClassifier and
// DecisionTreeRegressor wrap the same primitives with Fit, Predict,
// Score, parameter maps, and gob persistence.
package cart
