package cart

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

// thresholdDataset has a clean class boundary on feature 0 plus a noise
// feature.
func thresholdDataset(t *testing.T, n int) *Dataset {
	t.Helper()
	X := mat.NewDense(n, 2, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		X.Set(i, 1, float64((i*13)%n))
		if i >= n/2 {
			y.SetVec(i, 1)
		}
	}
	ds, err := NewClassificationDataset(X, y)
	if err != nil {
		t.Fatalf("Failed to build dataset: %v", err)
	}
	return ds
}

// TestCrossValidateChoosesTrueSize checks that CV recovers the two-leaf
// tree on cleanly separable data.
func TestCrossValidateChoosesTrueSize(t *testing.T) {
	ds := thresholdDataset(t, 40)
	cfg := DefaultConfig(TaskClassification)
	cfg.MinNodeSize = 2

	result, err := CrossValidate(ds, cfg, CVOptions{Folds: 5, Mode: ErrorMisclass, Seed: 1})
	if err != nil {
		t.Fatalf("Cross-validation failed: %v", err)
	}

	if result.ChosenSize != 2 {
		t.Errorf("Expected chosen size 2 on separable data, got %d", result.ChosenSize)
	}
	if tree := result.ChosenTree(); tree.Leaves() != result.ChosenSize {
		t.Errorf("Chosen tree has %d leaves, chosen size is %d", tree.Leaves(), result.ChosenSize)
	}
}

// TestCrossValidateAlignedSlices checks the shape of the result.
func TestCrossValidateAlignedSlices(t *testing.T) {
	ds := thresholdDataset(t, 30)
	cfg := DefaultConfig(TaskClassification)
	cfg.MinNodeSize = 2

	result, err := CrossValidate(ds, cfg, CVOptions{Folds: 3, Mode: ErrorDeviance, Seed: 5})
	if err != nil {
		t.Fatalf("Cross-validation failed: %v", err)
	}

	k := len(result.Path)
	if len(result.Sizes) != k || len(result.Alphas) != k ||
		len(result.CVErr) != k || len(result.Resub) != k || len(result.StdErr) != k {
		t.Fatal("Result slices must all align with the path")
	}
	for i, e := range result.Path {
		if result.Sizes[i] != e.Size {
			t.Errorf("Entry %d: size %d does not match path entry %d", i, result.Sizes[i], e.Size)
		}
	}
	if result.Sizes[len(result.Sizes)-1] != 1 {
		t.Errorf("Path must end at the root-only tree, got size %d", result.Sizes[len(result.Sizes)-1])
	}
}

// TestCrossValidateReproducible checks seeded determinism.
func TestCrossValidateReproducible(t *testing.T) {
	ds := thresholdDataset(t, 36)
	cfg := DefaultConfig(TaskClassification)
	cfg.MinNodeSize = 2

	opts := CVOptions{Folds: 6, Mode: ErrorMisclass, Seed: 77}
	first, err := CrossValidate(ds, cfg, opts)
	if err != nil {
		t.Fatalf("Cross-validation failed: %v", err)
	}
	second, err := CrossValidate(ds, cfg, opts)
	if err != nil {
		t.Fatalf("Cross-validation failed: %v", err)
	}

	if first.ChosenSize != second.ChosenSize {
		t.Errorf("Same seed chose different sizes: %d vs %d", first.ChosenSize, second.ChosenSize)
	}
	for i := range first.CVErr {
		if first.CVErr[i] != second.CVErr[i] {
			t.Errorf("Entry %d: CV error differs between identical runs: %v vs %v",
				i, first.CVErr[i], second.CVErr[i])
		}
	}
}

// TestCrossValidateSeedChangesFolds checks that the seed actually drives
// the shuffle.
func TestCrossValidateSeedChangesFolds(t *testing.T) {
	ds := thresholdDataset(t, 36)
	cfg := DefaultConfig(TaskClassification)
	cfg.MinNodeSize = 2

	first, err := CrossValidate(ds, cfg, CVOptions{Folds: 6, Mode: ErrorMisclass, Seed: 1})
	if err != nil {
		t.Fatalf("Cross-validation failed: %v", err)
	}
	second, err := CrossValidate(ds, cfg, CVOptions{Folds: 6, Mode: ErrorMisclass, Seed: 2})
	if err != nil {
		t.Fatalf("Cross-validation failed: %v", err)
	}

	same := true
	for i := range first.CVErr {
		if first.CVErr[i] != second.CVErr[i] {
			same = false
			break
		}
	}
	if same {
		t.Log("Different seeds produced identical fold errors; possible but unlikely")
	}
}

// TestCrossValidateOneSE checks that the one-standard-error rule never
// picks a larger tree than the plain minimum.
func TestCrossValidateOneSE(t *testing.T) {
	ds := thresholdDataset(t, 40)
	cfg := DefaultConfig(TaskClassification)
	cfg.MinNodeSize = 2

	plain, err := CrossValidate(ds, cfg, CVOptions{Folds: 5, Mode: ErrorMisclass, Seed: 3})
	if err != nil {
		t.Fatalf("Cross-validation failed: %v", err)
	}
	oneSE, err := CrossValidate(ds, cfg, CVOptions{Folds: 5, Mode: ErrorMisclass, Seed: 3, OneSE: true})
	if err != nil {
		t.Fatalf("Cross-validation failed: %v", err)
	}

	if oneSE.ChosenSize > plain.ChosenSize {
		t.Errorf("One-SE choice (%d leaves) must not exceed the minimum-error choice (%d leaves)",
			oneSE.ChosenSize, plain.ChosenSize)
	}
}

// TestCrossValidateFoldValidation checks fold count validation.
func TestCrossValidateFoldValidation(t *testing.T) {
	ds := thresholdDataset(t, 20)
	cfg := DefaultConfig(TaskClassification)
	cfg.MinNodeSize = 2

	if _, err := CrossValidate(ds, cfg, CVOptions{Folds: 1, Mode: ErrorMisclass}); err == nil {
		t.Error("Expected error for a single fold")
	}
	if _, err := CrossValidate(nil, cfg, CVOptions{Folds: 5}); err == nil {
		t.Error("Expected error for a nil dataset")
	}
}

// TestCrossValidateRegression runs the RSS mode end to end.
func TestCrossValidateRegression(t *testing.T) {
	n := 40
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = float64(i)
		if i >= n/2 {
			y[i] = 10
		}
	}
	ds := regressionDataset(t, x, y)

	cfg := DefaultConfig(TaskRegression)
	cfg.MinNodeSize = 2

	result, err := CrossValidate(ds, cfg, CVOptions{Folds: 5, Mode: ErrorRSS, Seed: 11})
	if err != nil {
		t.Fatalf("Cross-validation failed: %v", err)
	}
	if result.ChosenSize != 2 {
		t.Errorf("Expected chosen size 2 on a clean step function, got %d", result.ChosenSize)
	}
}
