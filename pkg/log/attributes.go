// Standard attribute keys for tree-learning operations. Using these keys
// consistently keeps log output filterable across fit, prune and
// cross-validation runs.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the model type, e.g. "DecisionTreeClassifier".
	ModelNameKey = "model.name"

	// OperationKey names the operation: "fit", "predict", "prune", "cv".
	OperationKey = "ml.operation"

	// ComponentKey identifies the package or component emitting the record.
	ComponentKey = "ml.component"
)

// Data shape.
const (
	// SamplesKey is the number of rows involved in the operation.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of feature columns.
	FeaturesKey = "data.features"

	// ClassesKey is the number of target classes (classification only).
	ClassesKey = "data.classes"
)

// Tree and pruning context.
const (
	// LeavesKey is the terminal-node count of a tree.
	LeavesKey = "tree.leaves"

	// DepthKey is the depth of a tree.
	DepthKey = "tree.depth"

	// AlphaKey is a cost-complexity parameter value.
	AlphaKey = "prune.alpha"

	// PathLenKey is the number of entries on a pruning path.
	PathLenKey = "prune.path_len"

	// FoldsKey is the number of cross-validation folds.
	FoldsKey = "cv.folds"

	// ChosenSizeKey is the tree size selected by cross-validation.
	ChosenSizeKey = "cv.chosen_size"
)

// Performance.
const (
	// DurationMsKey is the wall-clock duration of an operation in
	// milliseconds.
	DurationMsKey = "perf.duration_ms"
)
