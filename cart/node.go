package cart

import (
	"encoding/json"

	"github.com/lauracline/gocart/pkg/errors"
)

// Node is one node of a fitted tree, serving as a tagged leaf/split
// variant. A split routes a row left when the feature value satisfies its
// predicate: value <= Threshold for numeric features, level code contained
// in Categories for categorical ones. A tree is a strict binary tree: the
// root owns its entire subtree exclusively, with no sharing and no cycles.
type Node struct {
	// Split fields. Feature is -1 on leaves.
	Feature    int
	Threshold  float64
	Categories []int // sorted level codes routed left; nil for numeric splits
	Left       *Node
	Right      *Node

	// Payload present on every node, describing its training subset.
	Samples  int
	Impurity float64 // total scale: RSS for regression, n·I for classification

	// Value is the node's prediction if collapsed to a leaf: the mean
	// response for regression, the majority class code for classification.
	Value float64

	// ClassCounts is the class distribution of the training subset,
	// classification only.
	ClassCounts []int
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// Leaves returns the terminal-node count of the subtree.
func (n *Node) Leaves() int {
	if n.IsLeaf() {
		return 1
	}
	return n.Left.Leaves() + n.Right.Leaves()
}

// Depth returns the depth of the subtree; a single leaf has depth 0.
func (n *Node) Depth() int {
	if n.IsLeaf() {
		return 0
	}
	left := n.Left.Depth()
	right := n.Right.Depth()
	if right > left {
		left = right
	}
	return left + 1
}

// Clone deep-copies the subtree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		Feature:   n.Feature,
		Threshold: n.Threshold,
		Samples:   n.Samples,
		Impurity:  n.Impurity,
		Value:     n.Value,
	}
	if n.Categories != nil {
		c.Categories = make([]int, len(n.Categories))
		copy(c.Categories, n.Categories)
	}
	if n.ClassCounts != nil {
		c.ClassCounts = make([]int, len(n.ClassCounts))
		copy(c.ClassCounts, n.ClassCounts)
	}
	c.Left = n.Left.Clone()
	c.Right = n.Right.Clone()
	return c
}

// Walk visits the subtree depth-first, parents before children.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	n.Left.Walk(fn)
	n.Right.Walk(fn)
}

// Proba returns the class-probability vector of the node's training
// subset, or nil for regression nodes.
func (n *Node) Proba() []float64 {
	if n.ClassCounts == nil {
		return nil
	}
	probs := make([]float64, len(n.ClassCounts))
	if n.Samples == 0 {
		return probs
	}
	for c, count := range n.ClassCounts {
		probs[c] = float64(count) / float64(n.Samples)
	}
	return probs
}

// collapse turns the node into a leaf in place, discarding its subtree.
// The stored Value and ClassCounts already describe the node's whole
// training subset, so no recomputation is needed.
func (n *Node) collapse() {
	n.Feature = -1
	n.Threshold = 0
	n.Categories = nil
	n.Left = nil
	n.Right = nil
}

// nodeJSON is the serialized form: nested tagged records.
type nodeJSON struct {
	Type        string    `json:"type"`
	Feature     *int      `json:"feature,omitempty"`
	Threshold   *float64  `json:"threshold,omitempty"`
	Categories  []int     `json:"categories,omitempty"`
	Samples     int       `json:"samples"`
	Impurity    float64   `json:"impurity"`
	Value       float64   `json:"value"`
	ClassCounts []int     `json:"class_counts,omitempty"`
	Left        *nodeJSON `json:"left,omitempty"`
	Right       *nodeJSON `json:"right,omitempty"`
}

func (n *Node) toJSON() *nodeJSON {
	if n == nil {
		return nil
	}
	j := &nodeJSON{
		Type:        "leaf",
		Samples:     n.Samples,
		Impurity:    n.Impurity,
		Value:       n.Value,
		ClassCounts: n.ClassCounts,
	}
	if !n.IsLeaf() {
		j.Type = "split"
		feature := n.Feature
		threshold := n.Threshold
		j.Feature = &feature
		j.Threshold = &threshold
		j.Categories = n.Categories
		j.Left = n.Left.toJSON()
		j.Right = n.Right.toJSON()
	}
	return j
}

func (j *nodeJSON) toNode() (*Node, error) {
	if j == nil {
		return nil, nil
	}
	n := &Node{
		Feature:     -1,
		Samples:     j.Samples,
		Impurity:    j.Impurity,
		Value:       j.Value,
		ClassCounts: j.ClassCounts,
	}
	switch j.Type {
	case "leaf":
		return n, nil
	case "split":
		if j.Feature == nil || j.Left == nil || j.Right == nil {
			return nil, errors.New("split node missing feature or children")
		}
		n.Feature = *j.Feature
		if j.Threshold != nil {
			n.Threshold = *j.Threshold
		}
		n.Categories = j.Categories
		var err error
		if n.Left, err = j.Left.toNode(); err != nil {
			return nil, err
		}
		if n.Right, err = j.Right.toNode(); err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, errors.Newf("unknown node type %q", j.Type)
	}
}

// MarshalJSON serializes the subtree as nested tagged records.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.toJSON())
}

// UnmarshalJSON deserializes a subtree produced by MarshalJSON.
func (n *Node) UnmarshalJSON(data []byte) error {
	var j nodeJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return errors.Wrap(err, "decoding tree")
	}
	decoded, err := j.toNode()
	if err != nil {
		return err
	}
	*n = *decoded
	return nil
}
