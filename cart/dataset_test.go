package cart

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

// TestNewDatasetValidation exercises the consistency checks.
func TestNewDatasetValidation(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{0, 1, 2})

	// response length mismatch
	_, err := NewDataset(X, mat.NewVecDense(2, []float64{0, 1}), numericSchema(1), TaskRegression, nil)
	if err == nil {
		t.Error("Expected error for response length mismatch")
	}

	// schema length mismatch
	_, err = NewDataset(X, mat.NewVecDense(3, []float64{0, 1, 0}), numericSchema(2), TaskRegression, nil)
	if err == nil {
		t.Error("Expected error for schema length mismatch")
	}

	// non-integral level code
	badX := mat.NewDense(2, 1, []float64{0, 1.5})
	schema := []Feature{{Name: "f", Kind: Categorical, Levels: []string{"a", "b"}}}
	_, err = NewDataset(badX, mat.NewVecDense(2, []float64{1, 2}), schema, TaskRegression, nil)
	if err == nil {
		t.Error("Expected error for non-integral level code")
	}

	// level code out of range
	badX = mat.NewDense(2, 1, []float64{0, 3})
	_, err = NewDataset(badX, mat.NewVecDense(2, []float64{1, 2}), schema, TaskRegression, nil)
	if err == nil {
		t.Error("Expected error for out-of-range level code")
	}

	// invalid class code
	_, err = NewDataset(X, mat.NewVecDense(3, []float64{0, 1, 5}), numericSchema(1),
		TaskClassification, []string{"a", "b"})
	if err == nil {
		t.Error("Expected error for out-of-range class code")
	}

	// too few classes
	_, err = NewDataset(X, mat.NewVecDense(3, []float64{0, 0, 0}), numericSchema(1),
		TaskClassification, []string{"only"})
	if err == nil {
		t.Error("Expected error for a single class")
	}
}

// TestNewClassificationDatasetInfersClasses checks default class labels.
func TestNewClassificationDatasetInfersClasses(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewVecDense(4, []float64{0, 2, 1, 0})

	ds, err := NewClassificationDataset(X, y)
	if err != nil {
		t.Fatalf("Failed to build dataset: %v", err)
	}
	if ds.NumClasses() != 3 {
		t.Errorf("Expected 3 classes, got %d", ds.NumClasses())
	}
	if ds.Classes[2] != "2" {
		t.Errorf("Default class labels should be code strings, got %v", ds.Classes)
	}
}

// TestDatasetSelect checks row subsetting.
func TestDatasetSelect(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
	})
	y := mat.NewVecDense(4, []float64{1, 2, 3, 4})
	ds, err := NewRegressionDataset(X, y)
	if err != nil {
		t.Fatalf("Failed to build dataset: %v", err)
	}

	sub, err := ds.Select([]int{3, 1})
	if err != nil {
		t.Fatalf("Failed to select: %v", err)
	}
	if sub.NumSamples() != 2 {
		t.Fatalf("Expected 2 rows, got %d", sub.NumSamples())
	}
	if sub.X.At(0, 1) != 40 || sub.Y.AtVec(0) != 4 {
		t.Errorf("Row 0 should be the original row 3, got x=%v y=%v", sub.X.At(0, 1), sub.Y.AtVec(0))
	}

	// subset is a copy
	sub.X.Set(0, 0, 99)
	if ds.X.At(3, 0) == 99 {
		t.Error("Select must copy rows, not alias them")
	}

	if _, err := ds.Select(nil); err == nil {
		t.Error("Expected error for an empty selection")
	}
	if _, err := ds.Select([]int{7}); err == nil {
		t.Error("Expected error for an out-of-range index")
	}
}
