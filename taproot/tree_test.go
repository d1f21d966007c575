// Copyright (c) 2013-2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package taproot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/davecgh/go-spew/spew"
	"github.com/lwhile/mastering-taproot/internal/taptest"
	"github.com/stretchr/testify/require"
)

// TestTreeMerkleRootVectors checks the merkle roots of the reference trees.
func TestTreeMerkleRootVectors(t *testing.T) {
	t.Parallel()

	hashLock, _, _, _ := referenceLeaves(t)

	tests := []struct {
		name  string
		shape Shape
		root  string
	}{
		{"single leaf", LeafShape(hashLock), taptest.HashLockLeafHex},
		{"dual leaf", dualShape(t), taptest.DualRootHex},
		{"four leaf", fourShape(t), taptest.FourRootHex},
	}
	for _, test := range tests {
		tree := mustBuild(t, test.shape)

		root := tree.MerkleRoot()
		require.True(t, root.IsSome(), test.name)
		require.Equal(
			t, test.root, hashHex(root.UnwrapOr(chainhash.Hash{})),
			test.name,
		)
	}
}

// TestEmptyTree asserts that the empty tree has no root and no leaves.
func TestEmptyTree(t *testing.T) {
	t.Parallel()

	tree := mustBuild(t, Shape{})
	require.True(t, tree.MerkleRoot().IsNone())
	require.Zero(t, tree.NumLeaves())
	require.Nil(t, tree.Root())

	_, err := tree.InclusionPath(0)
	require.True(t, errors.Is(err, ErrLeafIndexOutOfRange))
}

// TestInclusionPath checks the merkle paths of every leaf of the four leaf
// tree, nearest sibling first.
func TestInclusionPath(t *testing.T) {
	t.Parallel()

	tree := mustBuild(t, fourShape(t))
	require.Equal(t, 4, tree.NumLeaves())

	want := [][]string{
		{taptest.MultiSigLeafHex, taptest.FourRightBranchHex},
		{taptest.HashLockLeafHex, taptest.FourRightBranchHex},
		{taptest.BobLeafHex, taptest.FourLeftBranchHex},
		{taptest.CSVLeafHex, taptest.FourLeftBranchHex},
	}
	for i, wantPath := range want {
		path, err := tree.InclusionPath(i)
		require.NoError(t, err)

		got := make([]string, 0, len(path))
		for _, h := range path {
			got = append(got, hashHex(h))
		}
		require.Equal(t, wantPath, got, "leaf %d", i)

		depth, err := tree.Depth(i)
		require.NoError(t, err)
		require.Equal(t, len(path), depth)
	}

	for _, index := range []int{-1, 4} {
		_, err := tree.InclusionPath(index)
		require.True(t, errors.Is(err, ErrLeafIndexOutOfRange))

		_, err = tree.Leaf(index)
		require.True(t, errors.Is(err, ErrLeafIndexOutOfRange))
	}
}

// TestUnbalancedTree checks depths and path lengths of a right leaning tree.
func TestUnbalancedTree(t *testing.T) {
	t.Parallel()

	hashLock, multiSig, csv, bob := referenceLeaves(t)
	shape := BranchShape(
		LeafShape(hashLock),
		BranchShape(
			LeafShape(multiSig),
			BranchShape(LeafShape(csv), LeafShape(bob)),
		),
	)
	tree := mustBuild(t, shape)

	for i, wantDepth := range []int{1, 2, 3, 3} {
		depth, err := tree.Depth(i)
		require.NoError(t, err)
		require.Equal(t, wantDepth, depth)

		path, err := tree.InclusionPath(i)
		require.NoError(t, err)

		// Folding the path onto the leaf hash must give the root.
		leaf, err := tree.Leaf(i)
		require.NoError(t, err)
		acc := leaf.TapHash()
		for _, node := range path {
			acc = TapBranchHash(acc, node)
		}
		require.Equal(t, tree.Root().TapHash(), acc, spew.Sdump(path))
	}
}

// TestLeafIndex tests locating leaves by their hash.
func TestLeafIndex(t *testing.T) {
	t.Parallel()

	tree := mustBuild(t, fourShape(t))

	tests := []struct {
		leaf  string
		index int
	}{
		{taptest.HashLockLeafHex, 0},
		{taptest.MultiSigLeafHex, 1},
		{taptest.CSVLeafHex, 2},
		{taptest.BobLeafHex, 3},
	}
	for _, test := range tests {
		index, ok := tree.LeafIndex(hashFromHex(t, test.leaf))
		require.True(t, ok)
		require.Equal(t, test.index, index)
	}

	_, ok := tree.LeafIndex(chainhash.Hash{})
	require.False(t, ok)
}

// TestNewTreeRejectsMalformed ensures shared nodes, missing children and
// foreign node types are rejected.
func TestNewTreeRejectsMalformed(t *testing.T) {
	t.Parallel()

	leaf := NewLeaf(NewBaseLeaf([]byte{0x51}))
	other := NewLeaf(NewBaseLeaf([]byte{0x52}))

	tests := []struct {
		name string
		root Node
	}{
		{"shared leaf", NewBranch(leaf, leaf)},
		{"shared subtree", func() Node {
			sub := NewBranch(leaf, other)
			return NewBranch(sub, sub)
		}()},
		{"missing child", NewBranch(leaf, nil)},
		{"foreign node", NewBranch(leaf, fakeNode{})},
	}
	for _, test := range tests {
		_, err := NewTree(test.root)
		require.True(
			t, errors.Is(err, ErrInvalidTreeShape), "%s: %v",
			test.name, err,
		)
	}

	// An odd leaf version smuggled past the constructor is rejected too.
	bad := NewLeaf(ScriptLeaf{Version: 0xc1, Script: []byte{0x51}})
	_, err := NewTree(bad)
	require.True(t, errors.Is(err, ErrInvalidLeafVersion))
}

// TestNewTreeMaxDepth checks the depth limit matches the control block
// capacity.
func TestNewTreeMaxDepth(t *testing.T) {
	t.Parallel()

	chain := func(depth int) Node {
		var n Node = NewLeaf(NewBaseLeaf([]byte{0x00}))
		for i := 0; i < depth; i++ {
			sibling := NewLeaf(NewBaseLeaf([]byte{byte(i + 1)}))
			n = NewBranch(n, sibling)
		}
		return n
	}

	tree, err := NewTree(chain(ControlBlockMaxNodeCount))
	require.NoError(t, err)
	depth, err := tree.Depth(0)
	require.NoError(t, err)
	require.Equal(t, ControlBlockMaxNodeCount, depth)

	_, err = NewTree(chain(ControlBlockMaxNodeCount + 1))
	require.True(t, errors.Is(err, ErrInvalidTreeShape))
}

// TestPrecomputeHashes ensures the concurrent precomputation agrees with the
// lazily computed root, and honors cancellation.
func TestPrecomputeHashes(t *testing.T) {
	t.Parallel()

	leaves := make([]Shape, 0, 64)
	for i := 0; i < 64; i++ {
		script := []byte(fmt.Sprintf("leaf-%d", i))
		leaves = append(leaves, LeafShape(NewBaseLeaf(script)))
	}
	for len(leaves) > 1 {
		next := make([]Shape, 0, len(leaves)/2)
		for i := 0; i < len(leaves); i += 2 {
			next = append(next, BranchShape(leaves[i], leaves[i+1]))
		}
		leaves = next
	}

	lazy := mustBuild(t, leaves[0])
	eager := mustBuild(t, leaves[0])
	require.NoError(t, eager.PrecomputeHashes(context.Background()))
	require.Equal(t, lazy.MerkleRoot(), eager.MerkleRoot())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := mustBuild(t, leaves[0]).PrecomputeHashes(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

// TestConcurrentTapHash reads hashes of a shared tree from many goroutines.
func TestConcurrentTapHash(t *testing.T) {
	t.Parallel()

	tree := mustBuild(t, fourShape(t))
	want := taptest.FourRootHex

	done := make(chan string)
	for i := 0; i < 16; i++ {
		go func() {
			done <- hashHex(tree.Root().TapHash())
		}()
	}
	for i := 0; i < 16; i++ {
		require.Equal(t, want, <-done)
	}
}

// fakeNode is a Node implementation unknown to the tree.
type fakeNode struct{}

func (fakeNode) TapHash() chainhash.Hash { return chainhash.Hash{} }
func (fakeNode) Left() Node              { return nil }
func (fakeNode) Right() Node             { return nil }

// TestTreeLeavesAreCopies ensures neither the script passed to NewLeaf nor
// the leaves returned by the tree share memory with the tree, so the cached
// hashes always match the committed scripts.
func TestTreeLeavesAreCopies(t *testing.T) {
	t.Parallel()

	hashLock, _, _, bob := referenceLeaves(t)
	script := bytes.Clone(hashLock.Script)
	input := ScriptLeaf{Version: BaseLeafVersion, Script: script}

	tree, err := NewTree(NewBranch(NewLeaf(input), NewLeaf(bob)))
	require.NoError(t, err)
	wantRoot := hashFromHex(t, taptest.DualRootHex)

	// Edit the caller's script and every leaf handed out by the tree.
	script[0] ^= 0xff
	leaf, err := tree.Leaf(0)
	require.NoError(t, err)
	leaf.Script[0] ^= 0xff
	tree.Leaves()[0].Script[1] ^= 0xff
	tree.Root().Left().(*Leaf).ScriptLeaf().Script[2] ^= 0xff

	leaf, err = tree.Leaf(0)
	require.NoError(t, err)
	require.True(t, leaf.Equal(hashLock))
	require.Equal(t, wantRoot, tree.MerkleRoot().UnwrapOr(chainhash.Hash{}))

	fresh := mustBuild(t, dualShape(t))
	require.Equal(t, fresh.MerkleRoot(), tree.MerkleRoot())
}
