package cart

import (
	"fmt"
	"math"

	"github.com/lauracline/gocart/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// FeatureKind tags a feature column as numeric or categorical.
type FeatureKind int

const (
	Numeric FeatureKind = iota
	Categorical
)

// String returns the kind name.
func (k FeatureKind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// Feature describes one column of the feature matrix. Categorical columns
// store non-negative level codes; Levels maps a code to its label, and its
// length defines the set of levels observed during training.
type Feature struct {
	Name   string
	Kind   FeatureKind
	Levels []string
}

// Dataset is a schema-typed sample set: a feature matrix, a response
// vector, per-column type tags and the task. It is treated as read-only by
// every builder, pruner and cross-validation operation.
type Dataset struct {
	X      *mat.Dense
	Y      *mat.VecDense
	Schema []Feature
	Task   Task

	// Classes holds the class labels for classification; Y then stores
	// class codes indexing into it.
	Classes []string
}

// NewDataset builds a Dataset and validates that the matrix, response,
// schema and codes are mutually consistent.
func NewDataset(X *mat.Dense, y *mat.VecDense, schema []Feature, task Task, classes []string) (*Dataset, error) {
	rows, cols := X.Dims()
	if rows == 0 {
		return nil, errors.NewEmptySubsetError("NewDataset")
	}
	if y.Len() != rows {
		return nil, errors.NewDimensionError("NewDataset", rows, y.Len(), 0)
	}
	if len(schema) != cols {
		return nil, errors.NewDimensionError("NewDataset", cols, len(schema), 1)
	}

	for j, f := range schema {
		if f.Kind != Categorical {
			continue
		}
		if len(f.Levels) == 0 {
			return nil, errors.NewValueError("NewDataset",
				fmt.Sprintf("categorical feature '%s' has no levels", f.Name))
		}
		for i := 0; i < rows; i++ {
			v := X.At(i, j)
			if v != math.Trunc(v) || v < 0 || int(v) >= len(f.Levels) {
				return nil, errors.NewValueError("NewDataset",
					fmt.Sprintf("row %d: invalid level code %v for categorical feature '%s'", i, v, f.Name))
			}
		}
	}

	if task == TaskClassification {
		if len(classes) < 2 {
			return nil, errors.NewValueError("NewDataset", "classification requires at least 2 classes")
		}
		for i := 0; i < rows; i++ {
			v := y.AtVec(i)
			if v != math.Trunc(v) || v < 0 || int(v) >= len(classes) {
				return nil, errors.NewValueError("NewDataset",
					fmt.Sprintf("row %d: invalid class code %v", i, v))
			}
		}
	}

	return &Dataset{X: X, Y: y, Schema: schema, Task: task, Classes: classes}, nil
}

// NewRegressionDataset builds a regression Dataset with all-numeric
// features named x0..x(p-1).
func NewRegressionDataset(X *mat.Dense, y *mat.VecDense) (*Dataset, error) {
	_, cols := X.Dims()
	return NewDataset(X, y, numericSchema(cols), TaskRegression, nil)
}

// NewClassificationDataset builds a classification Dataset with
// all-numeric features. The response must hold class codes 0..k-1; class
// labels default to the code strings.
func NewClassificationDataset(X *mat.Dense, y *mat.VecDense) (*Dataset, error) {
	_, cols := X.Dims()

	maxCode := 0
	for i := 0; i < y.Len(); i++ {
		v := y.AtVec(i)
		if v == math.Trunc(v) && int(v) > maxCode {
			maxCode = int(v)
		}
	}
	classes := make([]string, maxCode+1)
	for c := range classes {
		classes[c] = fmt.Sprintf("%d", c)
	}

	return NewDataset(X, y, numericSchema(cols), TaskClassification, classes)
}

func numericSchema(cols int) []Feature {
	schema := make([]Feature, cols)
	for j := range schema {
		schema[j] = Feature{Name: fmt.Sprintf("x%d", j), Kind: Numeric}
	}
	return schema
}

// NumSamples returns the row count.
func (ds *Dataset) NumSamples() int {
	rows, _ := ds.X.Dims()
	return rows
}

// NumFeatures returns the feature column count.
func (ds *Dataset) NumFeatures() int {
	_, cols := ds.X.Dims()
	return cols
}

// NumClasses returns the class count, 0 for regression.
func (ds *Dataset) NumClasses() int {
	return len(ds.Classes)
}

// Select copies the given rows into a new Dataset with the same schema.
// The receiver is not modified.
func (ds *Dataset) Select(indices []int) (*Dataset, error) {
	if len(indices) == 0 {
		return nil, errors.NewEmptySubsetError("Dataset.Select")
	}

	rows := len(indices)
	cols := ds.NumFeatures()
	X := mat.NewDense(rows, cols, nil)
	y := mat.NewVecDense(rows, nil)

	n := ds.NumSamples()
	for i, idx := range indices {
		if idx < 0 || idx >= n {
			return nil, errors.NewValueError("Dataset.Select", fmt.Sprintf("row index %d out of range", idx))
		}
		for j := 0; j < cols; j++ {
			X.Set(i, j, ds.X.At(idx, j))
		}
		y.SetVec(i, ds.Y.AtVec(idx))
	}

	return &Dataset{X: X, Y: y, Schema: ds.Schema, Task: ds.Task, Classes: ds.Classes}, nil
}

// allIndices returns 0..n-1.
func (ds *Dataset) allIndices() []int {
	indices := make([]int, ds.NumSamples())
	for i := range indices {
		indices[i] = i
	}
	return indices
}
