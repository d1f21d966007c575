// Copyright (c) 2013-2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package taproot

import (
	"bytes"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// Domain separation tags of the BIP 340/341 tagged hashes used by this
// package and the sighash engine.
const (
	// TagTapLeaf is the tag of a tapscript leaf hash.
	TagTapLeaf = "TapLeaf"

	// TagTapBranch is the tag of an internal tapscript branch hash.
	TagTapBranch = "TapBranch"

	// TagTapTweak is the tag of the hash committing an internal key to a
	// script root.
	TagTapTweak = "TapTweak"

	// TagTapSighash is the tag of a taproot signature hash.
	TagTapSighash = "TapSighash"
)

// TaggedHash implements the tagged hash scheme described in BIP 340:
//
//	sha256(sha256(tag) || sha256(tag) || data...)
//
// The data slices are hashed as if they were concatenated.  The four taproot
// tags are served from precomputed midstates.
func TaggedHash(tag string, data ...[]byte) chainhash.Hash {
	return *chainhash.TaggedHash([]byte(tag), data...)
}

// tapLeafHash computes h_tapleaf(leafVersion || compactSize(script) ||
// script).
func tapLeafHash(version LeafVersion, script []byte) chainhash.Hash {
	var leafEncoding bytes.Buffer
	leafEncoding.Grow(1 + wire.VarIntSerializeSize(uint64(len(script))) +
		len(script))

	_ = leafEncoding.WriteByte(byte(version))
	_ = wire.WriteVarBytes(&leafEncoding, 0, script)

	return TaggedHash(TagTapLeaf, leafEncoding.Bytes())
}

// TapBranchHash combines two child hashes into their parent branch hash.  The
// children are ordered lexicographically before hashing, so the result does
// not depend on which side each child was supplied on:
//
//	h_tapbranch(min(a, b) || max(a, b))
func TapBranchHash(a, b chainhash.Hash) chainhash.Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}

	return TaggedHash(TagTapBranch, a[:], b[:])
}
