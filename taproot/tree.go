// Copyright (c) 2013-2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package taproot

import (
	"context"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/lnd/fn/v2"
	"golang.org/x/sync/errgroup"
)

// Node represents an abstract node in a tapscript merkle tree.  A node is
// either a *Branch, or a *Leaf.
type Node interface {
	// TapHash returns the hash of the node.  This will either be a tagged
	// hash derived from a branch, or a leaf.
	TapHash() chainhash.Hash

	// Left returns the left node.  If this is a leaf node, this is nil.
	Left() Node

	// Right returns the right node.  If this is a leaf node, this is nil.
	Right() Node
}

// Leaf is the tree node wrapping a ScriptLeaf.  Its tapleaf hash is computed
// at most once and cached, so a leaf may be hashed from several goroutines.
type Leaf struct {
	leaf ScriptLeaf

	hashOnce sync.Once
	hash     chainhash.Hash
}

// NewLeaf returns a new tree node for a copy of the passed script leaf.
func NewLeaf(leaf ScriptLeaf) *Leaf {
	return &Leaf{leaf: leaf.Copy()}
}

// ScriptLeaf returns a copy of the script leaf held by the node.  The node
// itself is never modified, so its cached hash stays valid.
func (l *Leaf) ScriptLeaf() ScriptLeaf {
	return l.leaf.Copy()
}

// TapHash returns the cached tapleaf hash of the node.
//
// NOTE: This is part of the Node interface.
func (l *Leaf) TapHash() chainhash.Hash {
	l.hashOnce.Do(func() {
		l.hash = l.leaf.TapHash()
	})

	return l.hash
}

// Left returns nil as a leaf has no children.
//
// NOTE: This is part of the Node interface.
func (l *Leaf) Left() Node {
	return nil
}

// Right returns nil as a leaf has no children.
//
// NOTE: This is part of the Node interface.
func (l *Leaf) Right() Node {
	return nil
}

// Branch is an internal node of the tapscript tree.  The left or right nodes
// may either be another branch, leaves, or a combination of both.  A branch
// exclusively owns its children: NewTree rejects trees in which a node is
// reachable more than once.
type Branch struct {
	left  Node
	right Node

	hashOnce sync.Once
	hash     chainhash.Hash
}

// NewBranch creates a new internal branch from a left and right node.
func NewBranch(left, right Node) *Branch {
	return &Branch{
		left:  left,
		right: right,
	}
}

// TapHash returns the cached tapbranch hash of the two children.  Children
// are sorted before hashing, so swapping them yields the same hash.
//
// NOTE: This is part of the Node interface.
func (b *Branch) TapHash() chainhash.Hash {
	b.hashOnce.Do(func() {
		b.hash = TapBranchHash(b.left.TapHash(), b.right.TapHash())
	})

	return b.hash
}

// Left is the left node of the branch.
//
// NOTE: This is part of the Node interface.
func (b *Branch) Left() Node {
	return b.left
}

// Right is the right node of the branch.
//
// NOTE: This is part of the Node interface.
func (b *Branch) Right() Node {
	return b.right
}

// Tree is a fully validated tapscript tree.  Leaves are indexed in depth
// first, left to right order.  A tree without a root is the key-path-only
// commitment and has no merkle root.
type Tree struct {
	root   Node
	leaves []*Leaf
	depths []int
}

// EmptyTree returns a tree committing to no scripts at all.
func EmptyTree() *Tree {
	return &Tree{}
}

// NewTree validates the tree hanging off the passed root node and indexes
// its leaves.  A nil root yields the empty tree.  Every branch must have two
// non-nil children, no node may be reachable twice, and no leaf may sit
// deeper than ControlBlockMaxNodeCount.
func NewTree(root Node) (*Tree, error) {
	t := &Tree{root: root}
	if root == nil {
		return t, nil
	}

	visited := make(map[Node]struct{})

	var walk func(n Node, depth int) error
	walk = func(n Node, depth int) error {
		if depth > ControlBlockMaxNodeCount {
			str := fmt.Sprintf("tree depth exceeds maximum of %d",
				ControlBlockMaxNodeCount)
			return MakeError(ErrInvalidTreeShape, str)
		}
		if _, ok := visited[n]; ok {
			return MakeError(ErrInvalidTreeShape, "tree node is "+
				"reachable more than once")
		}
		visited[n] = struct{}{}

		switch node := n.(type) {
		case *Leaf:
			if node == nil {
				return MakeError(ErrInvalidTreeShape,
					"nil leaf node")
			}
			if !node.leaf.Version.Valid() {
				str := fmt.Sprintf("leaf %d has invalid version "+
					"%#02x", len(t.leaves),
					uint8(node.leaf.Version))
				return MakeError(ErrInvalidLeafVersion, str)
			}

			t.leaves = append(t.leaves, node)
			t.depths = append(t.depths, depth)

			return nil

		case *Branch:
			if node == nil || node.left == nil ||
				node.right == nil {

				return MakeError(ErrInvalidTreeShape, "branch "+
					"must have exactly two children")
			}
			if err := walk(node.left, depth+1); err != nil {
				return err
			}

			return walk(node.right, depth+1)

		default:
			str := fmt.Sprintf("unknown tree node type %T", n)
			return MakeError(ErrInvalidTreeShape, str)
		}
	}
	if err := walk(root, 0); err != nil {
		return nil, err
	}

	log.Tracef("Indexed tapscript tree with %d leaves", len(t.leaves))

	return t, nil
}

// Root returns the root node of the tree, or nil for the empty tree.
func (t *Tree) Root() Node {
	return t.root
}

// NumLeaves returns the number of leaves in the tree.
func (t *Tree) NumLeaves() int {
	return len(t.leaves)
}

// Leaf returns the script leaf at the passed index.
func (t *Tree) Leaf(index int) (ScriptLeaf, error) {
	if err := t.checkIndex(index); err != nil {
		return ScriptLeaf{}, err
	}

	return t.leaves[index].leaf.Copy(), nil
}

// Leaves returns all script leaves in depth-first, left-to-right order.
func (t *Tree) Leaves() []ScriptLeaf {
	leaves := make([]ScriptLeaf, 0, len(t.leaves))
	for _, l := range t.leaves {
		leaves = append(leaves, l.leaf.Copy())
	}

	return leaves
}

// Depth returns the number of branches between the root and the leaf at the
// passed index.  This is also the number of hashes in its inclusion path.
func (t *Tree) Depth(index int) (int, error) {
	if err := t.checkIndex(index); err != nil {
		return 0, err
	}

	return t.depths[index], nil
}

// LeafIndex returns the index of the first leaf with the passed tapleaf
// hash.
func (t *Tree) LeafIndex(leafHash chainhash.Hash) (int, bool) {
	for i, l := range t.leaves {
		if l.TapHash() == leafHash {
			return i, true
		}
	}

	return 0, false
}

// MerkleRoot returns the merkle root of the tree.  For a single leaf tree
// this is the hash of that leaf.  The empty tree has no root.
func (t *Tree) MerkleRoot() fn.Option[chainhash.Hash] {
	if t.root == nil {
		return fn.None[chainhash.Hash]()
	}

	return fn.Some(t.root.TapHash())
}

// InclusionPath returns the merkle path of the leaf at the passed index:
// the hash of the sibling at every branch between the leaf and the root,
// nearest sibling first.  This is exactly the inclusion proof carried by a
// control block for that leaf.
func (t *Tree) InclusionPath(index int) ([]chainhash.Hash, error) {
	if err := t.checkIndex(index); err != nil {
		return nil, err
	}

	target := t.leaves[index]
	path := make([]chainhash.Hash, 0, t.depths[index])

	// The siblings are appended while unwinding, which yields them in
	// leaf-to-root order.
	var walk func(n Node) bool
	walk = func(n Node) bool {
		if n == Node(target) {
			return true
		}

		branch, ok := n.(*Branch)
		if !ok {
			return false
		}

		if walk(branch.left) {
			path = append(path, branch.right.TapHash())
			return true
		}
		if walk(branch.right) {
			path = append(path, branch.left.TapHash())
			return true
		}

		return false
	}
	walk(t.root)

	return path, nil
}

// PrecomputeHashes hashes every leaf concurrently and then folds the
// branches up to the root.  Calling it is optional: hashes are otherwise
// computed lazily on first use.  Leaf hashes are independent of each other,
// so the only synchronization needed is the final join.
func (t *Tree) PrecomputeHashes(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, leaf := range t.leaves {
		leaf := leaf
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			leaf.TapHash()

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if t.root != nil {
		root := t.root.TapHash()
		log.Debugf("Precomputed %d leaf hashes, merkle root %x",
			len(t.leaves), root[:])
	}

	return nil
}

// checkIndex ensures the passed index names a leaf of the tree.
func (t *Tree) checkIndex(index int) error {
	if index < 0 || index >= len(t.leaves) {
		str := fmt.Sprintf("leaf index %d out of range for tree with "+
			"%d leaves", index, len(t.leaves))
		return MakeError(ErrLeafIndexOutOfRange, str)
	}

	return nil
}
