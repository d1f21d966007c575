// Copyright (c) 2013-2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package taproot

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lwhile/mastering-taproot/internal/taptest"
	"github.com/stretchr/testify/require"
)

// referenceLeaves returns the four leaf scripts shared by the reference
// trees.
func referenceLeaves(t *testing.T) (hashLock, multiSig, csv, bob ScriptLeaf) {
	t.Helper()

	hashLock = NewBaseLeaf(taptest.Hex(t, taptest.HashLockScriptHex))
	multiSig = NewBaseLeaf(taptest.Hex(t, taptest.MultiSigScriptHex))
	csv = NewBaseLeaf(taptest.Hex(t, taptest.CSVScriptHex))
	bob = NewBaseLeaf(taptest.Hex(t, taptest.BobScriptHex))

	return hashLock, multiSig, csv, bob
}

// dualShape returns the shape [hash lock, bob].
func dualShape(t *testing.T) Shape {
	t.Helper()

	hashLock, _, _, bob := referenceLeaves(t)
	shape, err := ShapeFromLeaves(hashLock, bob)
	require.NoError(t, err)

	return shape
}

// fourShape returns the shape [[hash lock, multisig], [csv, bob]].
func fourShape(t *testing.T) Shape {
	t.Helper()

	hashLock, multiSig, csv, bob := referenceLeaves(t)

	return BranchShape(
		BranchShape(LeafShape(hashLock), LeafShape(multiSig)),
		BranchShape(LeafShape(csv), LeafShape(bob)),
	)
}

// mustBuild builds the passed shape, failing the test on error.
func mustBuild(t *testing.T, shape Shape) *Tree {
	t.Helper()

	tree, err := Build(shape)
	require.NoError(t, err)

	return tree
}

// hashFromHex decodes a hash in internal byte order.  chainhash.NewHashFromStr
// is not used as it expects the reversed display order.
func hashFromHex(t *testing.T, s string) chainhash.Hash {
	t.Helper()

	var h chainhash.Hash
	require.NoError(t, h.SetBytes(taptest.Hex(t, s)))

	return h
}

// hashHex encodes a hash in internal byte order.
func hashHex(h chainhash.Hash) string {
	return hex.EncodeToString(h[:])
}
