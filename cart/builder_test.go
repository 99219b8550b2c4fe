package cart

import (
	"encoding/json"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/lauracline/gocart/pkg/errors"
)

func regressionDataset(t *testing.T, x, y []float64) *Dataset {
	t.Helper()
	ds, err := NewRegressionDataset(
		mat.NewDense(len(x), 1, x),
		mat.NewVecDense(len(y), y),
	)
	if err != nil {
		t.Fatalf("Failed to build dataset: %v", err)
	}
	return ds
}

// TestBuildSingleMidpointSplit grows a tree over two separated pairs and
// expects exactly one split at the midpoint of the gap.
func TestBuildSingleMidpointSplit(t *testing.T) {
	ds := regressionDataset(t,
		[]float64{1, 2, 8, 9},
		[]float64{0, 0, 1, 1},
	)

	cfg := DefaultConfig(TaskRegression)
	cfg.MinNodeSize = 2

	root, err := Build(ds, cfg)
	if err != nil {
		t.Fatalf("Failed to build: %v", err)
	}

	if root.Leaves() != 2 {
		t.Fatalf("Expected 2 leaves, got %d", root.Leaves())
	}
	if root.Feature != 0 {
		t.Errorf("Expected split on feature 0, got %d", root.Feature)
	}
	if root.Threshold != 5 {
		t.Errorf("Expected threshold at the midpoint 5, got %v", root.Threshold)
	}
	if root.Left.Value != 0 || root.Right.Value != 1 {
		t.Errorf("Expected leaf values 0 and 1, got %v and %v", root.Left.Value, root.Right.Value)
	}
	if root.Left.Impurity != 0 || root.Right.Impurity != 0 {
		t.Errorf("Expected pure children, got impurities %v and %v",
			root.Left.Impurity, root.Right.Impurity)
	}
}

// TestBuildMinNodeSizeSingleLeaf checks that a subset below the split
// floor becomes a single leaf.
func TestBuildMinNodeSizeSingleLeaf(t *testing.T) {
	ds := regressionDataset(t,
		[]float64{1, 2, 8, 9},
		[]float64{0, 0, 1, 1},
	)

	cfg := DefaultConfig(TaskRegression)
	cfg.MinNodeSize = 10

	root, err := Build(ds, cfg)
	if err != nil {
		t.Fatalf("Failed to build: %v", err)
	}

	if !root.IsLeaf() {
		t.Fatalf("Expected a single leaf, got %d leaves", root.Leaves())
	}
	if root.Value != 0.5 {
		t.Errorf("Leaf should predict the global mean 0.5, got %v", root.Value)
	}
	if root.Samples != 4 {
		t.Errorf("Leaf should cover all 4 samples, got %d", root.Samples)
	}
}

// TestBuildPureNodeStops checks that a constant response yields one leaf.
func TestBuildPureNodeStops(t *testing.T) {
	ds := regressionDataset(t,
		[]float64{1, 2, 3, 4, 5, 6},
		[]float64{7, 7, 7, 7, 7, 7},
	)

	cfg := DefaultConfig(TaskRegression)
	cfg.MinNodeSize = 2

	root, err := Build(ds, cfg)
	if err != nil {
		t.Fatalf("Failed to build: %v", err)
	}
	if !root.IsLeaf() {
		t.Errorf("Constant response should produce a single leaf, got %d leaves", root.Leaves())
	}
}

// TestBuildImpurityMonotone checks that total impurity never increases
// from parent to children.
func TestBuildImpurityMonotone(t *testing.T) {
	n := 30
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = float64(i)
		y[i] = float64((i * i) % 13)
	}
	ds := regressionDataset(t, x, y)

	cfg := DefaultConfig(TaskRegression)
	cfg.MinNodeSize = 4

	root, err := Build(ds, cfg)
	if err != nil {
		t.Fatalf("Failed to build: %v", err)
	}

	root.Walk(func(node *Node) {
		if node.IsLeaf() {
			return
		}
		sum := node.Left.Impurity + node.Right.Impurity
		if sum > node.Impurity+1e-9 {
			t.Errorf("Children impurity %v exceeds parent impurity %v", sum, node.Impurity)
		}
	})
}

// TestBuildCategoricalSplit grows a classification tree over one
// categorical feature and checks the level grouping.
func TestBuildCategoricalSplit(t *testing.T) {
	// levels 0 and 2 are class 0, level 1 is class 1
	X := mat.NewDense(9, 1, []float64{0, 0, 0, 1, 1, 1, 2, 2, 2})
	y := mat.NewVecDense(9, []float64{0, 0, 0, 1, 1, 1, 0, 0, 0})
	schema := []Feature{{Name: "color", Kind: Categorical, Levels: []string{"red", "green", "blue"}}}

	ds, err := NewDataset(X, y, schema, TaskClassification, []string{"no", "yes"})
	if err != nil {
		t.Fatalf("Failed to build dataset: %v", err)
	}

	cfg := DefaultConfig(TaskClassification)
	cfg.MinNodeSize = 2

	root, err := Build(ds, cfg)
	if err != nil {
		t.Fatalf("Failed to build: %v", err)
	}

	if root.IsLeaf() {
		t.Fatal("Expected a categorical split at the root")
	}
	if root.Categories == nil {
		t.Fatal("Root split should carry a level set")
	}
	if root.Left.Impurity != 0 || root.Right.Impurity != 0 {
		t.Errorf("Split should separate the classes exactly, got impurities %v and %v",
			root.Left.Impurity, root.Right.Impurity)
	}
	for i := 1; i < len(root.Categories); i++ {
		if root.Categories[i-1] >= root.Categories[i] {
			t.Errorf("Level set should be sorted, got %v", root.Categories)
		}
	}
}

// TestBuildCategoricalCardinalityCap checks the level-count cap error.
func TestBuildCategoricalCardinalityCap(t *testing.T) {
	X := mat.NewDense(8, 1, []float64{0, 1, 2, 3, 0, 1, 2, 3})
	y := mat.NewVecDense(8, []float64{0, 1, 0, 1, 0, 1, 0, 1})
	schema := []Feature{{Name: "code", Kind: Categorical, Levels: []string{"a", "b", "c", "d"}}}

	ds, err := NewDataset(X, y, schema, TaskClassification, []string{"n", "y"})
	if err != nil {
		t.Fatalf("Failed to build dataset: %v", err)
	}

	cfg := DefaultConfig(TaskClassification)
	cfg.MinNodeSize = 2
	cfg.MaxCategories = 3

	_, err = Build(ds, cfg)
	if err == nil {
		t.Fatal("Expected a cardinality error for 4 levels with cap 3")
	}
	var cardErr *errors.FeatureCardinalityError
	if !errors.As(err, &cardErr) {
		t.Fatalf("Expected FeatureCardinalityError, got %T: %v", err, err)
	}
	if cardErr.Feature != "code" || cardErr.Levels != 4 || cardErr.Cap != 3 {
		t.Errorf("Unexpected error fields: %+v", cardErr)
	}
}

// TestBuildMaxDepth checks the depth constraint.
func TestBuildMaxDepth(t *testing.T) {
	n := 16
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = float64(i)
		y[i] = float64(i)
	}
	ds := regressionDataset(t, x, y)

	cfg := DefaultConfig(TaskRegression)
	cfg.MinNodeSize = 2
	cfg.MaxDepth = 3

	root, err := Build(ds, cfg)
	if err != nil {
		t.Fatalf("Failed to build: %v", err)
	}
	if root.Depth() > 3 {
		t.Errorf("Tree depth %d exceeds limit 3", root.Depth())
	}
}

// TestBuildFeatureSubsetDeterministic checks that the same seed yields the
// same tree when feature subsampling is on.
func TestBuildFeatureSubsetDeterministic(t *testing.T) {
	n := 24
	X := mat.NewDense(n, 3, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		X.Set(i, 1, float64((i*5)%n))
		X.Set(i, 2, float64((i*7)%n))
		y.SetVec(i, float64(i%4))
	}
	ds, err := NewRegressionDataset(X, y)
	if err != nil {
		t.Fatalf("Failed to build dataset: %v", err)
	}

	cfg := DefaultConfig(TaskRegression)
	cfg.MinNodeSize = 4
	cfg.FeatureSubset = 1
	cfg.Seed = 99

	first, err := Build(ds, cfg)
	if err != nil {
		t.Fatalf("Failed to build: %v", err)
	}
	second, err := Build(ds, cfg)
	if err != nil {
		t.Fatalf("Failed to rebuild: %v", err)
	}

	firstJSON, _ := json.Marshal(first)
	secondJSON, _ := json.Marshal(second)
	if string(firstJSON) != string(secondJSON) {
		t.Error("Same seed should reproduce the same tree")
	}
}

// TestBuildEmptyDataset checks the empty-input error.
func TestBuildEmptyDataset(t *testing.T) {
	_, err := Build(nil, DefaultConfig(TaskRegression))
	if !errors.Is(err, errors.ErrEmptyData) {
		t.Errorf("Expected ErrEmptyData, got %v", err)
	}
}

// TestBuildInvalidConfig checks configuration validation.
func TestBuildInvalidConfig(t *testing.T) {
	ds := regressionDataset(t, []float64{1, 2, 3, 4}, []float64{1, 2, 3, 4})

	cfg := DefaultConfig(TaskRegression)
	cfg.MaxDepth = -1
	if _, err := Build(ds, cfg); err == nil {
		t.Error("Expected error for negative max depth")
	}

	cfg = DefaultConfig(TaskRegression)
	cfg.Impurity = Gini
	if _, err := Build(ds, cfg); err == nil {
		t.Error("Expected error for gini impurity on regression")
	}

	cfg = DefaultConfig(TaskRegression)
	cfg.FeatureSubset = 5
	if _, err := Build(ds, cfg); err == nil {
		t.Error("Expected error for feature subset larger than feature count")
	}
}

// TestBuildClassificationMajorityTies checks that ties go to the lowest
// class code.
func TestBuildClassificationMajorityTies(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 1, 1, 1})
	y := mat.NewVecDense(4, []float64{1, 0, 1, 0})
	ds, err := NewClassificationDataset(X, y)
	if err != nil {
		t.Fatalf("Failed to build dataset: %v", err)
	}

	root, err := Build(ds, DefaultConfig(TaskClassification))
	if err != nil {
		t.Fatalf("Failed to build: %v", err)
	}
	if !root.IsLeaf() {
		t.Fatal("Constant feature should produce a single leaf")
	}
	if root.Value != 0 {
		t.Errorf("Tied majority should pick the lowest class code, got %v", root.Value)
	}
	if math.Abs(root.Impurity-4*0.5) > 1e-12 {
		t.Errorf("Expected total gini 2 for a 2/2 split, got %v", root.Impurity)
	}
}
