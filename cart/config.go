package cart

import (
	"github.com/lauracline/gocart/pkg/errors"
)

// Task distinguishes regression from classification trees.
type Task int

const (
	TaskRegression Task = iota
	TaskClassification
)

// String returns the task name.
func (t Task) String() string {
	switch t {
	case TaskRegression:
		return "regression"
	case TaskClassification:
		return "classification"
	default:
		return "unknown"
	}
}

// ImpurityKind selects the node impurity measure used to grow a tree.
type ImpurityKind int

const (
	// Gini is the Gini index Σ p(1−p), classification only.
	Gini ImpurityKind = iota
	// Entropy is the cross-entropy −Σ p·log p (deviance), classification only.
	Entropy
	// RSS is the residual sum of squares, regression only.
	RSS
	// Misclassification is 1 − max p, classification only. Rarely used for
	// growing; mostly relevant when pruning is guided by classification
	// error.
	Misclassification
)

// String returns the impurity name.
func (k ImpurityKind) String() string {
	switch k {
	case Gini:
		return "gini"
	case Entropy:
		return "entropy"
	case RSS:
		return "rss"
	case Misclassification:
		return "misclassification"
	default:
		return "unknown"
	}
}

// ErrorMode selects the error measure R used by the pruner and the
// cross-validator.
type ErrorMode int

const (
	// ErrorRSS measures residual sum of squares (regression).
	ErrorRSS ErrorMode = iota
	// ErrorMisclass measures misclassification count (classification).
	ErrorMisclass
	// ErrorDeviance measures total cross-entropy (classification). This is
	// the default guidance of deviance-based pruning; ErrorMisclass is the
	// explicit classification-error request.
	ErrorDeviance
)

// String returns the error mode name.
func (m ErrorMode) String() string {
	switch m {
	case ErrorRSS:
		return "rss"
	case ErrorMisclass:
		return "misclass"
	case ErrorDeviance:
		return "deviance"
	default:
		return "unknown"
	}
}

// Config holds the hyperparameters for growing a tree.
type Config struct {
	// MaxDepth limits tree depth; 0 means unlimited.
	MaxDepth int

	// MinNodeSize is the minimum number of samples a node must have to be
	// considered for splitting. Nodes below the floor become leaves.
	MinNodeSize int

	// MinLeafSize is the minimum number of samples each child of a split
	// must receive. Candidates violating it are discarded.
	MinLeafSize int

	// MinImpurityDecrease is the smallest total impurity decrease a split
	// must achieve; weaker splits are rejected and the node becomes a leaf.
	MinImpurityDecrease float64

	// Impurity is the split selection criterion.
	Impurity ImpurityKind

	// MaxCategories caps the observed level count for which exhaustive
	// categorical bipartition search is attempted.
	MaxCategories int

	// FeatureSubset, when positive, restricts every split search to a
	// random subset of that many features. This is the hook ensemble
	// learners use; 0 means all features are eligible.
	FeatureSubset int

	// Seed drives all randomness (feature subsampling). Builds are fully
	// deterministic given (data, Config).
	Seed int64
}

const (
	defaultMinNodeSize   = 10
	defaultMaxCategories = 10
)

// DefaultConfig returns the default configuration for a task.
func DefaultConfig(task Task) Config {
	impurity := RSS
	if task == TaskClassification {
		impurity = Gini
	}
	return Config{
		MinNodeSize:   defaultMinNodeSize,
		MinLeafSize:   1,
		MaxCategories: defaultMaxCategories,
		Impurity:      impurity,
	}
}

// withDefaults fills zero-valued fields with their defaults.
func (c Config) withDefaults() Config {
	if c.MinNodeSize == 0 {
		c.MinNodeSize = defaultMinNodeSize
	}
	if c.MinLeafSize == 0 {
		c.MinLeafSize = 1
	}
	if c.MaxCategories == 0 {
		c.MaxCategories = defaultMaxCategories
	}
	return c
}

// Validate checks the configuration against a task and feature count.
func (c Config) Validate(task Task, nFeatures int) error {
	if c.MaxDepth < 0 {
		return errors.NewValidationError("max_depth", "must be >= 0 (0 disables the limit)", c.MaxDepth)
	}
	if c.MinNodeSize < 1 {
		return errors.NewValidationError("min_node_size", "must be >= 1", c.MinNodeSize)
	}
	if c.MinLeafSize < 1 {
		return errors.NewValidationError("min_leaf_size", "must be >= 1", c.MinLeafSize)
	}
	if c.MinImpurityDecrease < 0 {
		return errors.NewValidationError("min_impurity_decrease", "must be >= 0", c.MinImpurityDecrease)
	}
	if c.MaxCategories < 2 {
		return errors.NewValidationError("max_categories", "must be >= 2", c.MaxCategories)
	}
	if c.FeatureSubset < 0 || c.FeatureSubset > nFeatures {
		return errors.NewValidationError("feature_subset", "must be in [0, number of features]", c.FeatureSubset)
	}

	switch task {
	case TaskRegression:
		if c.Impurity != RSS {
			return errors.NewValidationError("impurity", "regression trees require rss", c.Impurity.String())
		}
	case TaskClassification:
		if c.Impurity == RSS {
			return errors.NewValidationError("impurity", "classification trees require gini, entropy or misclassification", c.Impurity.String())
		}
	}

	return nil
}
