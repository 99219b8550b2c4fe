package preprocessing

import (
	"reflect"
	"testing"
)

func TestLabelEncoderFitTransform(t *testing.T) {
	enc := NewLabelEncoder()
	codes, err := enc.FitTransform([]string{"red", "green", "blue", "green"})
	if err != nil {
		t.Fatalf("Failed to fit-transform: %v", err)
	}

	// codes follow sorted label order: blue=0, green=1, red=2
	want := []float64{2, 1, 0, 1}
	if !reflect.DeepEqual(codes, want) {
		t.Errorf("Expected codes %v, got %v", want, codes)
	}
	if !reflect.DeepEqual(enc.Classes_, []string{"blue", "green", "red"}) {
		t.Errorf("Unexpected vocabulary %v", enc.Classes_)
	}
}

func TestLabelEncoderUnknownLabel(t *testing.T) {
	enc := NewLabelEncoder()
	if err := enc.Fit([]string{"a", "b"}); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}
	if _, err := enc.Transform([]string{"c"}); err == nil {
		t.Error("Expected error for an unknown label")
	}
}

func TestLabelEncoderInverseTransform(t *testing.T) {
	enc := NewLabelEncoder()
	if _, err := enc.FitTransform([]string{"x", "y", "z"}); err != nil {
		t.Fatalf("Failed to fit-transform: %v", err)
	}

	labels, err := enc.InverseTransform([]float64{2, 0})
	if err != nil {
		t.Fatalf("Failed to inverse-transform: %v", err)
	}
	if !reflect.DeepEqual(labels, []string{"z", "x"}) {
		t.Errorf("Expected [z x], got %v", labels)
	}

	if _, err := enc.InverseTransform([]float64{5}); err == nil {
		t.Error("Expected error for an out-of-range code")
	}
}

func TestLabelEncoderNotFitted(t *testing.T) {
	enc := NewLabelEncoder()
	if _, err := enc.Transform([]string{"a"}); err == nil {
		t.Error("Expected error before fitting")
	}
	if err := enc.Fit(nil); err == nil {
		t.Error("Expected error for empty input")
	}
}
