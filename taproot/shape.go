// Copyright (c) 2013-2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package taproot

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Shape describes the structure of a tapscript tree independently of any
// hashing.  A shape node is either a leaf (Leaf set, no children) or a branch
// (Leaf nil, exactly two children).  The zero Shape is the empty tree.
//
// Shapes are serializable, which lets the committing and the spending side
// rebuild byte-identical trees from the same document.
type Shape struct {
	Leaf     *ScriptLeaf
	Children []Shape
}

// LeafShape returns a shape consisting of the single passed leaf.
func LeafShape(leaf ScriptLeaf) Shape {
	return Shape{Leaf: &leaf}
}

// BranchShape returns a shape joining the two passed shapes under a branch.
func BranchShape(left, right Shape) Shape {
	return Shape{Children: []Shape{left, right}}
}

// IsEmpty returns whether the shape describes a tree with no scripts.
func (s Shape) IsEmpty() bool {
	return s.Leaf == nil && len(s.Children) == 0
}

// ShapeFromLeaves returns the default shape for a flat sequence of leaves.
// No leaves yield the empty shape, a single leaf is the root itself and two
// leaves are joined under one branch.  Any larger set of leaves is ambiguous
// and must be described with an explicit nested shape instead.
func ShapeFromLeaves(leaves ...ScriptLeaf) (Shape, error) {
	switch len(leaves) {
	case 0:
		return Shape{}, nil

	case 1:
		return LeafShape(leaves[0]), nil

	case 2:
		return BranchShape(LeafShape(leaves[0]), LeafShape(leaves[1])), nil
	}

	str := fmt.Sprintf("%d leaves need an explicit nested shape",
		len(leaves))
	return Shape{}, MakeError(ErrInvalidTreeShape, str)
}

// Build constructs and validates the tree described by the passed shape.
func Build(shape Shape) (*Tree, error) {
	if shape.IsEmpty() {
		return EmptyTree(), nil
	}

	root, err := buildNode(shape)
	if err != nil {
		return nil, err
	}

	return NewTree(root)
}

// buildNode recursively converts a shape node into a tree node.
func buildNode(s Shape) (Node, error) {
	switch {
	case s.Leaf != nil && len(s.Children) != 0:
		return nil, MakeError(ErrInvalidTreeShape, "shape node has "+
			"both a leaf and children")

	case s.Leaf != nil:
		leaf, err := NewScriptLeaf(s.Leaf.Version, s.Leaf.Script)
		if err != nil {
			return nil, err
		}

		return NewLeaf(leaf), nil

	case len(s.Children) != 2:
		str := fmt.Sprintf("branch must have exactly two children, "+
			"got %d", len(s.Children))
		return nil, MakeError(ErrInvalidTreeShape, str)
	}

	left, err := buildNode(s.Children[0])
	if err != nil {
		return nil, err
	}
	right, err := buildNode(s.Children[1])
	if err != nil {
		return nil, err
	}

	return NewBranch(left, right), nil
}

// jsonLeaf is the object form of a leaf with an explicit version.
type jsonLeaf struct {
	Version uint8  `json:"version"`
	Script  string `json:"script"`
}

// MarshalJSON encodes the shape.  Base version leaves are hex strings, other
// leaves are objects and branches are arrays.
func (s Shape) MarshalJSON() ([]byte, error) {
	switch {
	case s.IsEmpty():
		return []byte("null"), nil

	case s.Leaf != nil && s.Leaf.Version == BaseLeafVersion:
		return json.Marshal(hex.EncodeToString(s.Leaf.Script))

	case s.Leaf != nil:
		return json.Marshal(jsonLeaf{
			Version: uint8(s.Leaf.Version),
			Script:  hex.EncodeToString(s.Leaf.Script),
		})
	}

	return json.Marshal(s.Children)
}

// UnmarshalJSON decodes a shape.  Branch arity is not checked here; Build
// reports malformed branches.
func (s *Shape) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return MakeError(ErrInvalidTreeShape, "empty shape document")
	}

	*s = Shape{}

	switch data[0] {
	case 'n':
		if !bytes.Equal(data, []byte("null")) {
			str := fmt.Sprintf("invalid shape token %q", data)
			return MakeError(ErrInvalidTreeShape, str)
		}
		return nil

	case '"':
		var scriptHex string
		if err := json.Unmarshal(data, &scriptHex); err != nil {
			return err
		}
		script, err := hex.DecodeString(scriptHex)
		if err != nil {
			return fmt.Errorf("invalid leaf script hex: %w", err)
		}
		leaf := NewBaseLeaf(script)
		s.Leaf = &leaf

		return nil

	case '{':
		var jl jsonLeaf
		if err := json.Unmarshal(data, &jl); err != nil {
			return err
		}
		script, err := hex.DecodeString(jl.Script)
		if err != nil {
			return fmt.Errorf("invalid leaf script hex: %w", err)
		}
		leaf, err := NewScriptLeaf(LeafVersion(jl.Version), script)
		if err != nil {
			return err
		}
		s.Leaf = &leaf

		return nil

	case '[':
		var children []Shape
		if err := json.Unmarshal(data, &children); err != nil {
			return err
		}
		if len(children) == 0 {
			return MakeError(ErrInvalidTreeShape, "branch must have "+
				"exactly two children, got 0")
		}
		s.Children = children

		return nil
	}

	str := fmt.Sprintf("unexpected shape token %q", data[0])
	return MakeError(ErrInvalidTreeShape, str)
}
