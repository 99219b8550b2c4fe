package cart

import (
	"github.com/lauracline/gocart/pkg/errors"
)

// treeParams holds the sklearn-style hyperparameters shared by both tree
// estimators.
type treeParams struct {
	criterion           string
	maxDepth            int
	minSamplesSplit     int
	minSamplesLeaf      int
	minImpurityDecrease float64
	maxFeatures         int
	maxCategories       int
	seed                int64
}

func defaultTreeParams(task Task) treeParams {
	criterion := "gini"
	if task == TaskRegression {
		criterion = "mse"
	}
	return treeParams{
		criterion:       criterion,
		maxDepth:        0,
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
	}
}

// TreeOption configures a tree estimator at construction time.
type TreeOption func(*treeParams)

// WithCriterion sets the split quality measure: "gini" or "entropy" for
// classification, "mse" (alias "rss") for regression.
func WithCriterion(criterion string) TreeOption {
	return func(p *treeParams) { p.criterion = criterion }
}

// WithMaxDepth limits the depth of the grown tree. Zero means unlimited.
func WithMaxDepth(depth int) TreeOption {
	return func(p *treeParams) { p.maxDepth = depth }
}

// WithMinSamplesSplit sets the minimum number of samples a node needs to
// be considered for splitting.
func WithMinSamplesSplit(n int) TreeOption {
	return func(p *treeParams) { p.minSamplesSplit = n }
}

// WithMinSamplesLeaf sets the minimum number of samples each child of a
// split must receive.
func WithMinSamplesLeaf(n int) TreeOption {
	return func(p *treeParams) { p.minSamplesLeaf = n }
}

// WithMinImpurityDecrease sets the smallest total impurity reduction a
// split must achieve to be accepted.
func WithMinImpurityDecrease(d float64) TreeOption {
	return func(p *treeParams) { p.minImpurityDecrease = d }
}

// WithMaxFeatures limits how many features are considered at each split.
// Zero means all features.
func WithMaxFeatures(n int) TreeOption {
	return func(p *treeParams) { p.maxFeatures = n }
}

// WithMaxCategories sets the level-count cap for categorical split
// searches.
func WithMaxCategories(n int) TreeOption {
	return func(p *treeParams) { p.maxCategories = n }
}

// WithSeed fixes the random stream used for feature subsampling and fold
// shuffling.
func WithSeed(seed int64) TreeOption {
	return func(p *treeParams) { p.seed = seed }
}

// impurityFor translates a criterion name into an impurity measure.
func impurityFor(criterion string, task Task) (ImpurityKind, error) {
	switch criterion {
	case "gini":
		if task != TaskClassification {
			return 0, errors.NewValidationError("criterion", "gini requires a classification task", criterion)
		}
		return Gini, nil
	case "entropy":
		if task != TaskClassification {
			return 0, errors.NewValidationError("criterion", "entropy requires a classification task", criterion)
		}
		return Entropy, nil
	case "mse", "rss":
		if task != TaskRegression {
			return 0, errors.NewValidationError("criterion", "mse requires a regression task", criterion)
		}
		return RSS, nil
	default:
		return 0, errors.NewValidationError("criterion", "unknown criterion", criterion)
	}
}

// config lowers the sklearn-style parameters onto the builder
// configuration.
func (p treeParams) config(task Task) (Config, error) {
	impurity, err := impurityFor(p.criterion, task)
	if err != nil {
		return Config{}, err
	}
	return Config{
		MaxDepth:            p.maxDepth,
		MinNodeSize:         p.minSamplesSplit,
		MinLeafSize:         p.minSamplesLeaf,
		MinImpurityDecrease: p.minImpurityDecrease,
		Impurity:            impurity,
		MaxCategories:       p.maxCategories,
		FeatureSubset:       p.maxFeatures,
		Seed:                p.seed,
	}, nil
}

// getParams exposes the hyperparameters under their sklearn names.
func (p treeParams) getParams() map[string]interface{} {
	return map[string]interface{}{
		"criterion":             p.criterion,
		"max_depth":             p.maxDepth,
		"min_samples_split":     p.minSamplesSplit,
		"min_samples_leaf":      p.minSamplesLeaf,
		"min_impurity_decrease": p.minImpurityDecrease,
		"max_features":          p.maxFeatures,
		"max_categories":        p.maxCategories,
		"seed":                  p.seed,
	}
}

// setParams applies sklearn-named hyperparameters, rejecting unknown keys
// and wrongly typed values.
func (p *treeParams) setParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "criterion":
			s, ok := value.(string)
			if !ok {
				return errors.NewValidationError(key, "must be a string", value)
			}
			p.criterion = s
		case "max_depth":
			n, ok := toInt(value)
			if !ok {
				return errors.NewValidationError(key, "must be an integer", value)
			}
			p.maxDepth = n
		case "min_samples_split":
			n, ok := toInt(value)
			if !ok {
				return errors.NewValidationError(key, "must be an integer", value)
			}
			p.minSamplesSplit = n
		case "min_samples_leaf":
			n, ok := toInt(value)
			if !ok {
				return errors.NewValidationError(key, "must be an integer", value)
			}
			p.minSamplesLeaf = n
		case "min_impurity_decrease":
			f, ok := toFloat(value)
			if !ok {
				return errors.NewValidationError(key, "must be numeric", value)
			}
			p.minImpurityDecrease = f
		case "max_features":
			n, ok := toInt(value)
			if !ok {
				return errors.NewValidationError(key, "must be an integer", value)
			}
			p.maxFeatures = n
		case "max_categories":
			n, ok := toInt(value)
			if !ok {
				return errors.NewValidationError(key, "must be an integer", value)
			}
			p.maxCategories = n
		case "seed":
			n, ok := toInt(value)
			if !ok {
				return errors.NewValidationError(key, "must be an integer", value)
			}
			p.seed = int64(n)
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
