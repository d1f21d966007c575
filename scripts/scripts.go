// Copyright (c) 2013-2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package scripts builds the tapscript leaf scripts used by the reference
// spending scenarios together with the witness stacks that unlock them.
package scripts

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/txscript"
	"github.com/lwhile/mastering-taproot/spend"
	"github.com/lwhile/mastering-taproot/taproot"
)

// maxRelativeBlocks is the largest block based relative lock time encodable
// in a sequence number.
const maxRelativeBlocks = 0xffff

// HashLock returns a script that can be spent by revealing the preimage of
// the passed SHA256 hash:
//
//	OP_SHA256 <hash> OP_EQUALVERIFY OP_TRUE
func HashLock(hash [sha256.Size]byte) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_SHA256).
		AddData(hash[:]).
		AddOp(txscript.OP_EQUALVERIFY).
		AddOp(txscript.OP_TRUE).
		Script()
}

// HashLockFromPreimage returns the hash lock script for the passed preimage.
func HashLockFromPreimage(preimage []byte) ([]byte, error) {
	return HashLock(sha256.Sum256(preimage))
}

// HashLockUnlock returns the witness elements unlocking a hash lock script.
func HashLockUnlock(preimage []byte) [][]byte {
	return [][]byte{preimage}
}

// SingleSig returns a script that requires a signature from the passed key:
//
//	<x-only key> OP_CHECKSIG
func SingleSig(pubKey *btcec.PublicKey) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddData(schnorr.SerializePubKey(pubKey)).
		AddOp(txscript.OP_CHECKSIG).
		Script()
}

// SigUnlock returns the witness elements unlocking a single signature or a
// timelocked single signature script.
func SigUnlock(sig []byte) [][]byte {
	return [][]byte{sig}
}

// MultiSigAdd returns a threshold multisig script using OP_CHECKSIGADD as
// defined in BIP 342:
//
//	OP_0 <key_1> OP_CHECKSIGADD ... <key_n> OP_CHECKSIGADD <m> OP_EQUAL
//
// Keys are checked in the order given.
func MultiSigAdd(threshold int, pubKeys ...*btcec.PublicKey) ([]byte, error) {
	if len(pubKeys) == 0 {
		return nil, taproot.MakeError(taproot.ErrNoKeys, "multisig "+
			"script requires at least one key")
	}
	if threshold < 1 || threshold > len(pubKeys) {
		str := fmt.Sprintf("multisig threshold %d of %d keys", threshold,
			len(pubKeys))
		return nil, taproot.MakeError(taproot.ErrInvalidThreshold, str)
	}

	builder := txscript.NewScriptBuilder().AddOp(txscript.OP_0)
	for _, pubKey := range pubKeys {
		builder.AddData(schnorr.SerializePubKey(pubKey))
		builder.AddOp(txscript.OP_CHECKSIGADD)
	}
	builder.AddInt64(int64(threshold))
	builder.AddOp(txscript.OP_EQUAL)

	return builder.Script()
}

// MultiSigUnlock returns the witness elements unlocking a MultiSigAdd
// script.  The signatures must be given in the order their keys appear in
// the script, using an empty signature for keys that do not sign.  They are
// reversed so the first key's signature ends up on top of the stack.
func MultiSigUnlock(sigsInKeyOrder ...[]byte) [][]byte {
	return spend.ReverseForStack(sigsInKeyOrder)
}

// CSVTimelock returns a script that requires a signature from the passed key
// once the spent output has the given number of confirmations:
//
//	<blocks> OP_CHECKSEQUENCEVERIFY OP_DROP <x-only key> OP_CHECKSIG
//
// The spending input must carry a sequence of at least blocks and the
// transaction must be version 2 or higher.  Blocks must be in [1, 0xffff].
func CSVTimelock(blocks int64, pubKey *btcec.PublicKey) ([]byte, error) {
	if blocks < 1 || blocks > maxRelativeBlocks {
		str := fmt.Sprintf("relative timelock of %d blocks is not in "+
			"[1, %d]", blocks, maxRelativeBlocks)
		return nil, taproot.MakeError(taproot.ErrInvalidSequence, str)
	}

	return txscript.NewScriptBuilder().
		AddInt64(blocks).
		AddOp(txscript.OP_CHECKSEQUENCEVERIFY).
		AddOp(txscript.OP_DROP).
		AddData(schnorr.SerializePubKey(pubKey)).
		AddOp(txscript.OP_CHECKSIG).
		Script()
}
