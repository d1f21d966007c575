// Copyright (c) 2013-2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package taproot

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/lnd/fn/v2"
)

const (
	// ControlBlockBaseSize is the base size of a control block.  This
	// includes the initial byte for the leaf version, and then the
	// serialized schnorr public key.
	ControlBlockBaseSize = 33

	// ControlBlockNodeSize is the size of a given merkle branch hash in
	// the control block.
	ControlBlockNodeSize = 32

	// ControlBlockMaxNodeCount is the max number of nodes that can be
	// included in a control block.  This value represents a merkle tree
	// of depth 2^128.
	ControlBlockMaxNodeCount = 128

	// ControlBlockMaxSize is the max possible size of a control block.
	ControlBlockMaxSize = ControlBlockBaseSize + (ControlBlockNodeSize *
		ControlBlockMaxNodeCount)
)

// ControlBlock is the final witness element of a script path spend.  It
// reveals the internal key and the inclusion proof of the executed leaf, and
// carries the leaf version together with the parity of the output key.
type ControlBlock struct {
	// InternalKey is the internal key of the output.  Only its x
	// coordinate is serialized.
	InternalKey *btcec.PublicKey

	// OutputKeyYIsOdd is the parity of the y coordinate of the output key.
	OutputKeyYIsOdd bool

	// LeafVersion is the version of the leaf being spent.
	LeafVersion LeafVersion

	// InclusionPath holds the sibling hashes from the leaf up to the root,
	// nearest sibling first.
	InclusionPath []chainhash.Hash
}

// NewControlBlock returns the control block proving the leaf at the passed
// index of the tree.  The internal key is normalized to its x-only form.
func NewControlBlock(internalKey *btcec.PublicKey, tree *Tree, leafIndex int,
	outputKeyYIsOdd bool) (*ControlBlock, error) {

	leaf, err := tree.Leaf(leafIndex)
	if err != nil {
		return nil, err
	}
	path, err := tree.InclusionPath(leafIndex)
	if err != nil {
		return nil, err
	}

	xOnlyKey, err := schnorr.ParsePubKey(schnorr.SerializePubKey(internalKey))
	if err != nil {
		return nil, err
	}

	return &ControlBlock{
		InternalKey:     xOnlyKey,
		OutputKeyYIsOdd: outputKeyYIsOdd,
		LeafVersion:     leaf.Version,
		InclusionPath:   path,
	}, nil
}

// Size returns the serialized size of the control block in bytes.
func (c *ControlBlock) Size() int {
	return ControlBlockBaseSize + ControlBlockNodeSize*len(c.InclusionPath)
}

// Bytes serializes the control block:
//
//	(leafVersion | parity) || internalKeyX || path[0] || ... || path[k-1]
func (c *ControlBlock) Bytes() []byte {
	b := make([]byte, 0, c.Size())

	first := byte(c.LeafVersion) & LeafVersionMask
	if c.OutputKeyYIsOdd {
		first |= 0x01
	}

	b = append(b, first)
	b = append(b, schnorr.SerializePubKey(c.InternalKey)...)
	for _, node := range c.InclusionPath {
		b = append(b, node[:]...)
	}

	return b
}

// ParseControlBlock parses a serialized control block.
func ParseControlBlock(b []byte) (*ControlBlock, error) {
	switch {
	case len(b) < ControlBlockBaseSize:
		str := fmt.Sprintf("control block is %d bytes, minimum is %d",
			len(b), ControlBlockBaseSize)
		return nil, MakeError(ErrMalformedControlBlock, str)

	case len(b) > ControlBlockMaxSize:
		str := fmt.Sprintf("control block is %d bytes, maximum is %d",
			len(b), ControlBlockMaxSize)
		return nil, MakeError(ErrMalformedControlBlock, str)

	case (len(b)-ControlBlockBaseSize)%ControlBlockNodeSize != 0:
		str := fmt.Sprintf("control block path of %d bytes is not a "+
			"multiple of %d", len(b)-ControlBlockBaseSize,
			ControlBlockNodeSize)
		return nil, MakeError(ErrMalformedControlBlock, str)
	}

	internalKey, err := schnorr.ParsePubKey(b[1:ControlBlockBaseSize])
	if err != nil {
		str := fmt.Sprintf("invalid internal key: %v", err)
		return nil, MakeError(ErrMalformedControlBlock, str)
	}

	numNodes := (len(b) - ControlBlockBaseSize) / ControlBlockNodeSize
	path := make([]chainhash.Hash, numNodes)
	for i := range path {
		offset := ControlBlockBaseSize + i*ControlBlockNodeSize
		copy(path[i][:], b[offset:offset+ControlBlockNodeSize])
	}

	return &ControlBlock{
		InternalKey:     internalKey,
		OutputKeyYIsOdd: b[0]&0x01 == 0x01,
		LeafVersion:     LeafVersion(b[0] & LeafVersionMask),
		InclusionPath:   path,
	}, nil
}

// RootHash folds the inclusion path onto the tapleaf hash of the revealed
// script, yielding the merkle root the control block commits to.
func (c *ControlBlock) RootHash(script []byte) chainhash.Hash {
	acc := tapLeafHash(c.LeafVersion, script)
	for _, node := range c.InclusionPath {
		acc = TapBranchHash(acc, node)
	}

	return acc
}

// Verify checks that the control block proves the passed script and leaf
// version to be committed to by the x-only output key.
func (c *ControlBlock) Verify(outputKey []byte, script []byte,
	version LeafVersion) error {

	if version != c.LeafVersion {
		str := fmt.Sprintf("leaf version %#02x does not match control "+
			"block version %#02x", uint8(version),
			uint8(c.LeafVersion))
		return MakeError(ErrControlBlockVerificationFailed, str)
	}

	root := c.RootHash(script)
	result, err := ComputeOutputKey(c.InternalKey, fn.Some(root))
	if err != nil {
		return err
	}

	if !bytes.Equal(result.XOnlyOutputKey(), outputKey) {
		str := fmt.Sprintf("derived output key %x does not match %x",
			result.XOnlyOutputKey(), outputKey)
		return MakeError(ErrControlBlockVerificationFailed, str)
	}

	if result.OutputKeyYIsOdd != c.OutputKeyYIsOdd {
		return MakeError(ErrControlBlockVerificationFailed, "output "+
			"key parity does not match control block")
	}

	log.Debugf("Verified control block for root %x", root[:])

	return nil
}

// Verifies is the boolean form of Verify.
func (c *ControlBlock) Verifies(outputKey []byte, script []byte,
	version LeafVersion) bool {

	return c.Verify(outputKey, script, version) == nil
}
