// Copyright (c) 2013-2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package taproot

import (
	"bytes"
	"crypto/sha256"
	"testing"
	"testing/quick"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lwhile/mastering-taproot/internal/taptest"
	"github.com/stretchr/testify/require"
)

// TestTaggedHash checks the tagged hash construction against a direct
// computation of SHA256(SHA256(tag) || SHA256(tag) || msg).
func TestTaggedHash(t *testing.T) {
	t.Parallel()

	tags := []string{TagTapLeaf, TagTapBranch, TagTapTweak, TagTapSighash,
		"custom/tag"}
	for _, tag := range tags {
		msg := []byte("mastering taproot")

		tagHash := sha256.Sum256([]byte(tag))
		var preimage bytes.Buffer
		preimage.Write(tagHash[:])
		preimage.Write(tagHash[:])
		preimage.Write(msg)
		want := sha256.Sum256(preimage.Bytes())

		got := TaggedHash(tag, msg[:4], msg[4:])
		require.Equal(t, chainhash.Hash(want), got, "tag %s", tag)
	}
}

// TestTapLeafHashVectors checks leaf hashes of the reference scripts.
func TestTapLeafHashVectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		script string
		leaf   string
	}{
		{"hash lock", taptest.HashLockScriptHex, taptest.HashLockLeafHex},
		{"bob", taptest.BobScriptHex, taptest.BobLeafHex},
		{"multisig", taptest.MultiSigScriptHex, taptest.MultiSigLeafHex},
		{"csv", taptest.CSVScriptHex, taptest.CSVLeafHex},
	}
	for _, test := range tests {
		leaf := NewBaseLeaf(taptest.Hex(t, test.script))
		require.Equal(t, test.leaf, hashHex(leaf.TapHash()), test.name)
	}
}

// TestTapLeafHashLongScript makes sure scripts longer than 252 bytes use a
// multi-byte compact size prefix.
func TestTapLeafHashLongScript(t *testing.T) {
	t.Parallel()

	script := bytes.Repeat([]byte{0x51}, 300)

	var preimage bytes.Buffer
	preimage.WriteByte(byte(BaseLeafVersion))
	preimage.Write([]byte{0xfd, 0x2c, 0x01})
	preimage.Write(script)
	want := TaggedHash(TagTapLeaf, preimage.Bytes())

	require.Equal(t, want, NewBaseLeaf(script).TapHash())
}

// TestTapBranchHashCommutative asserts that the order of the children does
// not affect a branch hash.
func TestTapBranchHashCommutative(t *testing.T) {
	t.Parallel()

	commutative := func(a, b [32]byte) bool {
		return TapBranchHash(a, b) == TapBranchHash(b, a)
	}
	require.NoError(t, quick.Check(commutative, nil))

	left := hashFromHex(t, taptest.HashLockLeafHex)
	right := hashFromHex(t, taptest.BobLeafHex)
	require.Equal(t, taptest.DualRootHex, hashHex(TapBranchHash(left, right)))
}
