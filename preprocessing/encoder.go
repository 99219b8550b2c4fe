// Package preprocessing turns raw columns into the numeric form the tree
// builders consume.
package preprocessing

import (
	"sort"

	"github.com/lauracline/gocart/core/model"
	"github.com/lauracline/gocart/pkg/errors"
)

// LabelEncoder maps string labels to dense integer codes 0..k-1, assigned
// in sorted label order. It is the bridge from raw categorical columns to
// the level codes a tree dataset stores.
type LabelEncoder struct {
	state *model.StateManager

	// Classes_ holds the labels in code order after fitting.
	Classes_ []string

	codes map[string]int
}

// NewLabelEncoder creates an unfitted encoder.
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{state: model.NewStateManager()}
}

// Fit learns the label vocabulary from values.
func (e *LabelEncoder) Fit(values []string) error {
	if len(values) == 0 {
		return errors.ErrEmptyData
	}

	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}

	e.Classes_ = make([]string, 0, len(seen))
	for v := range seen {
		e.Classes_ = append(e.Classes_, v)
	}
	sort.Strings(e.Classes_)

	e.codes = make(map[string]int, len(e.Classes_))
	for code, label := range e.Classes_ {
		e.codes[label] = code
	}

	e.state.SetDimensions(1, len(values))
	e.state.SetFitted()
	return nil
}

// Transform maps values to their codes. Labels not seen during fitting are
// rejected.
func (e *LabelEncoder) Transform(values []string) ([]float64, error) {
	if !e.state.IsFitted() {
		return nil, errors.NewNotFittedError("LabelEncoder", "Transform")
	}

	out := make([]float64, len(values))
	for i, v := range values {
		code, ok := e.codes[v]
		if !ok {
			return nil, errors.NewValueError("LabelEncoder.Transform", "unknown label '"+v+"'")
		}
		out[i] = float64(code)
	}
	return out, nil
}

// FitTransform fits the vocabulary and encodes values in one step.
func (e *LabelEncoder) FitTransform(values []string) ([]float64, error) {
	if err := e.Fit(values); err != nil {
		return nil, err
	}
	return e.Transform(values)
}

// InverseTransform maps codes back to labels.
func (e *LabelEncoder) InverseTransform(codes []float64) ([]string, error) {
	if !e.state.IsFitted() {
		return nil, errors.NewNotFittedError("LabelEncoder", "InverseTransform")
	}

	out := make([]string, len(codes))
	for i, c := range codes {
		idx := int(c)
		if float64(idx) != c || idx < 0 || idx >= len(e.Classes_) {
			return nil, errors.NewValueError("LabelEncoder.InverseTransform", "code out of range")
		}
		out[i] = e.Classes_[idx]
	}
	return out, nil
}
