package cart

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

// TestNodeJSONRoundTrip serializes a mixed tree and restores it.
func TestNodeJSONRoundTrip(t *testing.T) {
	leaf := func(samples int, impurity, value float64) *Node {
		return &Node{Feature: -1, Samples: samples, Impurity: impurity, Value: value}
	}
	tree := &Node{
		Feature: 1, Categories: []int{0, 2},
		Samples: 10, Impurity: 5, Value: 1.2,
		Left: &Node{
			Feature: 0, Threshold: 3.5,
			Samples: 6, Impurity: 2, Value: 0.8,
			Left:  leaf(3, 0.5, 0.4),
			Right: leaf(3, 0.5, 1.1),
		},
		Right: leaf(4, 1, 2.5),
	}

	data, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	var restored Node
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}

	if !reflect.DeepEqual(tree, &restored) {
		t.Errorf("Round trip changed the tree:\n%s", data)
	}
}

// TestNodeJSONTags checks the tagged-record encoding.
func TestNodeJSONTags(t *testing.T) {
	tree := &Node{
		Feature: 0, Threshold: 2,
		Samples: 4, Impurity: 1, Value: 0.5,
		Left:  &Node{Feature: -1, Samples: 2, Value: 0},
		Right: &Node{Feature: -1, Samples: 2, Value: 1},
	}

	data, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	s := string(data)
	if !strings.Contains(s, `"type":"split"`) {
		t.Errorf("Split node missing type tag: %s", s)
	}
	if !strings.Contains(s, `"type":"leaf"`) {
		t.Errorf("Leaf nodes missing type tag: %s", s)
	}
}

// TestNodeJSONRejectsUnknownType checks decode validation.
func TestNodeJSONRejectsUnknownType(t *testing.T) {
	var n Node
	if err := json.Unmarshal([]byte(`{"type":"branch","samples":1}`), &n); err == nil {
		t.Error("Expected error for unknown node type")
	}
	if err := json.Unmarshal([]byte(`{"type":"split","samples":1}`), &n); err == nil {
		t.Error("Expected error for a split without children")
	}
}

// TestNodeCloneIndependence checks that clones share no nodes.
func TestNodeCloneIndependence(t *testing.T) {
	tree := fourLeafTree()
	clone := tree.Clone()

	clone.Left.collapse()
	clone.Categories = append(clone.Categories, 9)

	if tree.Left.IsLeaf() {
		t.Error("Collapsing the clone modified the original")
	}
	if tree.Leaves() != 4 {
		t.Errorf("Original should keep 4 leaves, got %d", tree.Leaves())
	}
}

// TestNodeLeavesAndDepth checks the shape accessors.
func TestNodeLeavesAndDepth(t *testing.T) {
	tree := fourLeafTree()
	if tree.Leaves() != 4 {
		t.Errorf("Expected 4 leaves, got %d", tree.Leaves())
	}
	if tree.Depth() != 2 {
		t.Errorf("Expected depth 2, got %d", tree.Depth())
	}

	leaf := &Node{Feature: -1, Samples: 1}
	if leaf.Leaves() != 1 || leaf.Depth() != 0 {
		t.Errorf("A stump has 1 leaf and depth 0, got %d and %d", leaf.Leaves(), leaf.Depth())
	}
}

// TestNodeProba checks class frequency extraction.
func TestNodeProba(t *testing.T) {
	n := &Node{Feature: -1, Samples: 4, ClassCounts: []int{1, 3}}
	probs := n.Proba()
	if probs[0] != 0.25 || probs[1] != 0.75 {
		t.Errorf("Expected [0.25 0.75], got %v", probs)
	}

	reg := &Node{Feature: -1, Samples: 4}
	if reg.Proba() != nil {
		t.Error("Regression nodes have no class probabilities")
	}
}

// TestNodeCollapsePayload checks in-place collapse.
func TestNodeCollapsePayload(t *testing.T) {
	tree := fourLeafTree()
	tree.collapse()
	if !tree.IsLeaf() {
		t.Fatal("Collapse should produce a leaf")
	}
	if tree.Feature != -1 || tree.Left != nil || tree.Right != nil {
		t.Error("Collapse should clear split fields")
	}
	if tree.Value != 2 || tree.Samples != 8 {
		t.Errorf("Collapse should keep the payload, got value %v samples %d", tree.Value, tree.Samples)
	}
}
