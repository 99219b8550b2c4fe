package cart

import (
	"encoding/gob"
	"io"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/lauracline/gocart/core/model"
	"github.com/lauracline/gocart/metrics"
	"github.com/lauracline/gocart/pkg/errors"
	"github.com/lauracline/gocart/pkg/log"
)

var (
	_ model.Classifier      = (*DecisionTreeClassifier)(nil)
	_ model.ParameterGetter = (*DecisionTreeClassifier)(nil)
	_ model.ParameterSetter = (*DecisionTreeClassifier)(nil)
	_ model.Persistable     = (*DecisionTreeClassifier)(nil)
)

// DecisionTreeClassifier is a CART classification tree with a
// sklearn-style estimator surface: Fit, Predict, PredictProba, Score, and
// cost-complexity pruning helpers on top of the tree primitives.
type DecisionTreeClassifier struct {
	treeParams
	state *model.StateManager

	tree_     *Node
	schema_   []Feature
	classes_  []string
	nClasses_ int

	// training data retained for cross-validated pruning; not persisted
	dataset_ *Dataset
}

// NewDecisionTreeClassifier creates a classifier with sklearn defaults:
// gini criterion, unlimited depth, min_samples_split=2, min_samples_leaf=1.
func NewDecisionTreeClassifier(opts ...TreeOption) *DecisionTreeClassifier {
	dt := &DecisionTreeClassifier{
		treeParams: defaultTreeParams(TaskClassification),
		state:      model.NewStateManager(),
	}
	for _, opt := range opts {
		opt(&dt.treeParams)
	}
	return dt
}

// Fit grows a classification tree on numeric features. y must be a column
// of class codes 0..k-1.
func (dt *DecisionTreeClassifier) Fit(X, y mat.Matrix) error {
	ds, err := classificationDatasetFrom(X, y)
	if err != nil {
		return err
	}
	return dt.FitDataset(ds)
}

// FitDataset grows a classification tree on a dataset carrying an
// explicit schema, which is how categorical features enter the estimator.
func (dt *DecisionTreeClassifier) FitDataset(ds *Dataset) error {
	if ds.Task != TaskClassification {
		return errors.NewValueError("DecisionTreeClassifier.Fit", "dataset task must be classification")
	}

	cfg, err := dt.treeParams.config(TaskClassification)
	if err != nil {
		return err
	}

	start := time.Now()
	root, err := Build(ds, cfg)
	if err != nil {
		return err
	}

	dt.tree_ = root
	dt.schema_ = ds.Schema
	dt.classes_ = ds.Classes
	dt.nClasses_ = ds.NumClasses()
	dt.dataset_ = ds
	dt.state.SetDimensions(ds.NumFeatures(), ds.NumSamples())
	dt.state.SetFitted()

	log.GetLoggerWithName("cart.classifier").Debug("model fitted",
		log.ModelNameKey, "DecisionTreeClassifier",
		log.SamplesKey, ds.NumSamples(),
		log.FeaturesKey, ds.NumFeatures(),
		log.ClassesKey, dt.nClasses_,
		log.LeavesKey, root.Leaves(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Predict returns the predicted class code for each row of X as an n x 1
// matrix.
func (dt *DecisionTreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !dt.state.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "Predict")
	}
	preds, err := Predict(dt.tree_, dt.schema_, X)
	if err != nil {
		return nil, err
	}
	return columnMatrix(preds), nil
}

// PredictProba returns an n x nClasses matrix of leaf class frequencies.
func (dt *DecisionTreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !dt.state.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "PredictProba")
	}
	return PredictProba(dt.tree_, dt.schema_, X, dt.nClasses_)
}

// Score returns the accuracy of the model on X against y.
func (dt *DecisionTreeClassifier) Score(X, y mat.Matrix) float64 {
	preds, err := dt.Predict(X)
	if err != nil {
		return 0
	}
	acc, err := metrics.AccuracyMatrix(y, preds)
	if err != nil {
		return 0
	}
	return acc
}

// GetFeatureImportances returns the normalized impurity-decrease
// importance of each feature.
func (dt *DecisionTreeClassifier) GetFeatureImportances() []float64 {
	if !dt.state.IsFitted() {
		return nil
	}
	return FeatureImportances(dt.tree_, len(dt.schema_))
}

// GetDepth returns the depth of the fitted tree.
func (dt *DecisionTreeClassifier) GetDepth() int {
	if !dt.state.IsFitted() {
		return 0
	}
	return dt.tree_.Depth()
}

// GetNLeaves returns the number of terminal nodes of the fitted tree.
func (dt *DecisionTreeClassifier) GetNLeaves() int {
	if !dt.state.IsFitted() {
		return 0
	}
	return dt.tree_.Leaves()
}

// Tree returns the fitted root node.
func (dt *DecisionTreeClassifier) Tree() *Node {
	return dt.tree_
}

// Classes returns the class names in code order.
func (dt *DecisionTreeClassifier) Classes() []string {
	return dt.classes_
}

// GetParams returns the hyperparameters under their sklearn names.
func (dt *DecisionTreeClassifier) GetParams() map[string]interface{} {
	return dt.treeParams.getParams()
}

// SetParams updates hyperparameters from sklearn-named keys. It does not
// refit.
func (dt *DecisionTreeClassifier) SetParams(params map[string]interface{}) error {
	return dt.treeParams.setParams(params)
}

// CostComplexityPath returns the weakest-link pruning sequence of the
// fitted tree under the given error measure.
func (dt *DecisionTreeClassifier) CostComplexityPath(mode ErrorMode) ([]PruneEntry, error) {
	if !dt.state.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "CostComplexityPath")
	}
	return PrunePath(dt.tree_, mode), nil
}

// Prune replaces the fitted tree with the path tree of the requested leaf
// count. When that size is not on the path the nearest larger tree is
// installed and the substitution is reported through the returned error.
func (dt *DecisionTreeClassifier) Prune(size int, mode ErrorMode) error {
	if !dt.state.IsFitted() {
		return errors.NewNotFittedError("DecisionTreeClassifier", "Prune")
	}
	tree, err := PruneToSize(dt.tree_, size, mode)
	if tree != nil {
		dt.tree_ = tree
	}
	return err
}

// PruneCV selects the pruned tree size by k-fold cross-validation over the
// retained training data and installs it. An unset Mode prunes by
// misclassification count; pass ErrorDeviance for deviance-guided pruning.
// Models restored from storage do not retain training data and cannot be
// pruned this way.
func (dt *DecisionTreeClassifier) PruneCV(opts CVOptions) (*CVResult, error) {
	if !dt.state.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "PruneCV")
	}
	if dt.dataset_ == nil {
		return nil, errors.NewValueError("DecisionTreeClassifier.PruneCV", "no training data retained")
	}
	if opts.Mode == ErrorRSS {
		opts.Mode = ErrorMisclass
	}
	cfg, err := dt.treeParams.config(TaskClassification)
	if err != nil {
		return nil, err
	}
	result, err := CrossValidate(dt.dataset_, cfg, opts)
	if err != nil {
		return nil, err
	}
	dt.tree_ = result.ChosenTree().Clone()
	return result, nil
}

// classifierSnapshot is the gob representation of a fitted classifier.
type classifierSnapshot struct {
	Criterion           string
	MaxDepth            int
	MinSamplesSplit     int
	MinSamplesLeaf      int
	MinImpurityDecrease float64
	MaxFeatures         int
	MaxCategories       int
	Seed                int64
	Tree                *Node
	Schema              []Feature
	Classes             []string
	NClasses            int
	NFeatures           int
	NSamples            int
}

// Save writes the fitted model to w in gob format. The retained training
// data is not persisted.
func (dt *DecisionTreeClassifier) Save(w io.Writer) error {
	if !dt.state.IsFitted() {
		return errors.NewNotFittedError("DecisionTreeClassifier", "Save")
	}
	nFeatures, nSamples := dt.state.GetDimensions()
	snap := classifierSnapshot{
		Criterion:           dt.criterion,
		MaxDepth:            dt.maxDepth,
		MinSamplesSplit:     dt.minSamplesSplit,
		MinSamplesLeaf:      dt.minSamplesLeaf,
		MinImpurityDecrease: dt.minImpurityDecrease,
		MaxFeatures:         dt.maxFeatures,
		MaxCategories:       dt.maxCategories,
		Seed:                dt.seed,
		Tree:                dt.tree_,
		Schema:              dt.schema_,
		Classes:             dt.classes_,
		NClasses:            dt.nClasses_,
		NFeatures:           nFeatures,
		NSamples:            nSamples,
	}
	if err := gob.NewEncoder(w).Encode(snap); err != nil {
		return errors.Wrap(err, "gocart: encoding classifier")
	}
	return nil
}

// Load restores a fitted model from r.
func (dt *DecisionTreeClassifier) Load(r io.Reader) error {
	var snap classifierSnapshot
	if err := gob.NewDecoder(r).Decode(&snap); err != nil {
		return errors.Wrap(err, "gocart: decoding classifier")
	}
	dt.criterion = snap.Criterion
	dt.maxDepth = snap.MaxDepth
	dt.minSamplesSplit = snap.MinSamplesSplit
	dt.minSamplesLeaf = snap.MinSamplesLeaf
	dt.minImpurityDecrease = snap.MinImpurityDecrease
	dt.maxFeatures = snap.MaxFeatures
	dt.maxCategories = snap.MaxCategories
	dt.seed = snap.Seed
	dt.tree_ = snap.Tree
	dt.schema_ = snap.Schema
	dt.classes_ = snap.Classes
	dt.nClasses_ = snap.NClasses
	dt.dataset_ = nil
	if dt.state == nil {
		dt.state = model.NewStateManager()
	}
	dt.state.SetDimensions(snap.NFeatures, snap.NSamples)
	dt.state.SetFitted()
	return nil
}

// classificationDatasetFrom adapts raw matrices into a numeric-schema
// classification dataset, validating shapes the way every estimator in
// this module does.
func classificationDatasetFrom(X, y mat.Matrix) (*Dataset, error) {
	XDense, yVec, err := denseAndColumn("DecisionTreeClassifier.Fit", X, y)
	if err != nil {
		return nil, err
	}
	return NewClassificationDataset(XDense, yVec)
}

// denseAndColumn copies X into a Dense matrix and y into a column vector,
// checking shape agreement.
func denseAndColumn(op string, X, y mat.Matrix) (*mat.Dense, *mat.VecDense, error) {
	r, c := X.Dims()
	ry, cy := y.Dims()
	if r == 0 || c == 0 {
		return nil, nil, errors.ErrEmptyData
	}
	if ry != r {
		return nil, nil, errors.NewDimensionError(op, r, ry, 0)
	}
	if cy != 1 {
		return nil, nil, errors.NewValueError(op, "y must be a column vector")
	}

	XDense := mat.DenseCopyOf(X)
	yVec := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}
	return XDense, yVec, nil
}

// columnMatrix lifts a vector of predictions into an n x 1 matrix.
func columnMatrix(v *mat.VecDense) *mat.Dense {
	n := v.Len()
	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		out.Set(i, 0, v.AtVec(i))
	}
	return out
}
