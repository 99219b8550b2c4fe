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
	_ model.Regressor   = (*DecisionTreeRegressor)(nil)
	_ model.Persistable = (*DecisionTreeRegressor)(nil)
)

// DecisionTreeRegressor is a CART regression tree with the same estimator
// surface as the classifier, scored by R².
type DecisionTreeRegressor struct {
	treeParams
	state *model.StateManager

	tree_   *Node
	schema_ []Feature

	// training data retained for cross-validated pruning; not persisted
	dataset_ *Dataset
}

// NewDecisionTreeRegressor creates a regressor with sklearn defaults: mse
// criterion, unlimited depth, min_samples_split=2, min_samples_leaf=1.
func NewDecisionTreeRegressor(opts ...TreeOption) *DecisionTreeRegressor {
	dt := &DecisionTreeRegressor{
		treeParams: defaultTreeParams(TaskRegression),
		state:      model.NewStateManager(),
	}
	for _, opt := range opts {
		opt(&dt.treeParams)
	}
	return dt
}

// Fit grows a regression tree on numeric features. y must be a column
// vector.
func (dt *DecisionTreeRegressor) Fit(X, y mat.Matrix) error {
	XDense, yVec, err := denseAndColumn("DecisionTreeRegressor.Fit", X, y)
	if err != nil {
		return err
	}
	ds, err := NewRegressionDataset(XDense, yVec)
	if err != nil {
		return err
	}
	return dt.FitDataset(ds)
}

// FitDataset grows a regression tree on a dataset carrying an explicit
// schema.
func (dt *DecisionTreeRegressor) FitDataset(ds *Dataset) error {
	if ds.Task != TaskRegression {
		return errors.NewValueError("DecisionTreeRegressor.Fit", "dataset task must be regression")
	}

	cfg, err := dt.treeParams.config(TaskRegression)
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
	dt.dataset_ = ds
	dt.state.SetDimensions(ds.NumFeatures(), ds.NumSamples())
	dt.state.SetFitted()

	log.GetLoggerWithName("cart.regressor").Debug("model fitted",
		log.ModelNameKey, "DecisionTreeRegressor",
		log.SamplesKey, ds.NumSamples(),
		log.FeaturesKey, ds.NumFeatures(),
		log.LeavesKey, root.Leaves(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Predict returns the predicted mean response for each row of X as an
// n x 1 matrix.
func (dt *DecisionTreeRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !dt.state.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeRegressor", "Predict")
	}
	preds, err := Predict(dt.tree_, dt.schema_, X)
	if err != nil {
		return nil, err
	}
	return columnMatrix(preds), nil
}

// Score returns the coefficient of determination R² on X against y.
func (dt *DecisionTreeRegressor) Score(X, y mat.Matrix) float64 {
	preds, err := dt.Predict(X)
	if err != nil {
		return 0
	}
	r2, err := metrics.R2ScoreMatrix(y, preds)
	if err != nil {
		return 0
	}
	return r2
}

// GetFeatureImportances returns the normalized impurity-decrease
// importance of each feature.
func (dt *DecisionTreeRegressor) GetFeatureImportances() []float64 {
	if !dt.state.IsFitted() {
		return nil
	}
	return FeatureImportances(dt.tree_, len(dt.schema_))
}

// GetDepth returns the depth of the fitted tree.
func (dt *DecisionTreeRegressor) GetDepth() int {
	if !dt.state.IsFitted() {
		return 0
	}
	return dt.tree_.Depth()
}

// GetNLeaves returns the number of terminal nodes of the fitted tree.
func (dt *DecisionTreeRegressor) GetNLeaves() int {
	if !dt.state.IsFitted() {
		return 0
	}
	return dt.tree_.Leaves()
}

// Tree returns the fitted root node.
func (dt *DecisionTreeRegressor) Tree() *Node {
	return dt.tree_
}

// GetParams returns the hyperparameters under their sklearn names.
func (dt *DecisionTreeRegressor) GetParams() map[string]interface{} {
	return dt.treeParams.getParams()
}

// SetParams updates hyperparameters from sklearn-named keys. It does not
// refit.
func (dt *DecisionTreeRegressor) SetParams(params map[string]interface{}) error {
	return dt.treeParams.setParams(params)
}

// CostComplexityPath returns the weakest-link pruning sequence of the
// fitted tree. Regression trees always prune by residual sum of squares.
func (dt *DecisionTreeRegressor) CostComplexityPath() ([]PruneEntry, error) {
	if !dt.state.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeRegressor", "CostComplexityPath")
	}
	return PrunePath(dt.tree_, ErrorRSS), nil
}

// Prune replaces the fitted tree with the path tree of the requested leaf
// count, substituting the nearest larger size when the request is not on
// the path.
func (dt *DecisionTreeRegressor) Prune(size int) error {
	if !dt.state.IsFitted() {
		return errors.NewNotFittedError("DecisionTreeRegressor", "Prune")
	}
	tree, err := PruneToSize(dt.tree_, size, ErrorRSS)
	if tree != nil {
		dt.tree_ = tree
	}
	return err
}

// PruneCV selects the pruned tree size by k-fold cross-validation over the
// retained training data and installs it.
func (dt *DecisionTreeRegressor) PruneCV(opts CVOptions) (*CVResult, error) {
	if !dt.state.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeRegressor", "PruneCV")
	}
	if dt.dataset_ == nil {
		return nil, errors.NewValueError("DecisionTreeRegressor.PruneCV", "no training data retained")
	}
	cfg, err := dt.treeParams.config(TaskRegression)
	if err != nil {
		return nil, err
	}
	opts.Mode = ErrorRSS
	result, err := CrossValidate(dt.dataset_, cfg, opts)
	if err != nil {
		return nil, err
	}
	dt.tree_ = result.ChosenTree().Clone()
	return result, nil
}

// regressorSnapshot is the gob representation of a fitted regressor.
type regressorSnapshot struct {
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
	NFeatures           int
	NSamples            int
}

// Save writes the fitted model to w in gob format.
func (dt *DecisionTreeRegressor) Save(w io.Writer) error {
	if !dt.state.IsFitted() {
		return errors.NewNotFittedError("DecisionTreeRegressor", "Save")
	}
	nFeatures, nSamples := dt.state.GetDimensions()
	snap := regressorSnapshot{
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
		NFeatures:           nFeatures,
		NSamples:            nSamples,
	}
	if err := gob.NewEncoder(w).Encode(snap); err != nil {
		return errors.Wrap(err, "gocart: encoding regressor")
	}
	return nil
}

// Load restores a fitted model from r.
func (dt *DecisionTreeRegressor) Load(r io.Reader) error {
	var snap regressorSnapshot
	if err := gob.NewDecoder(r).Decode(&snap); err != nil {
		return errors.Wrap(err, "gocart: decoding regressor")
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
	dt.dataset_ = nil
	if dt.state == nil {
		dt.state = model.NewStateManager()
	}
	dt.state.SetDimensions(snap.NFeatures, snap.NSamples)
	dt.state.SetFitted()
	return nil
}
