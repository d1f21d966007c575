// Copyright (c) 2013-2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sighash

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/lwhile/mastering-taproot/taproot"
)

// SigHashType represents the hash type byte of a taproot signature.
type SigHashType uint8

const (
	// SigHashDefault commits to the entire transaction.  Signatures using
	// it are 64 bytes long as the hash type byte is omitted.
	SigHashDefault SigHashType = 0x00

	// SigHashAll commits to the entire transaction, like SigHashDefault,
	// but the hash type byte is appended to the signature.
	SigHashAll SigHashType = 0x01
)

const (
	// sigHashEpoch is the epoch byte prefixing every taproot signature
	// message.
	sigHashEpoch = 0x00

	// baseKeyVersion is the key version of BIP 342 tapscript signatures.
	baseKeyVersion = 0x00

	// blankCodeSepValue is the code separator position committed to when
	// no OP_CODESEPARATOR was executed.
	blankCodeSepValue = 0xffffffff
)

// String returns the hash type as a human-readable name.
func (t SigHashType) String() string {
	switch t {
	case SigHashDefault:
		return "SIGHASH_DEFAULT"
	case SigHashAll:
		return "SIGHASH_ALL"
	}

	return fmt.Sprintf("SIGHASH_UNKNOWN(%#02x)", uint8(t))
}

// IsSupported returns whether signatures of this hash type can be produced.
// Only the hash types committing to the whole transaction are supported.
func (t SigHashType) IsSupported() bool {
	return t == SigHashDefault || t == SigHashAll
}

// sigHashOptions houses the spend specific parts of a signature message.
type sigHashOptions struct {
	leaf  fn.Option[taproot.ScriptLeaf]
	annex []byte
}

// extFlag returns the extension flag of the spend: 1 for script path spends
// and 0 for key path spends.
func (o *sigHashOptions) extFlag() byte {
	if o.leaf.IsSome() {
		return 1
	}

	return 0
}

// SigHashOption is a functional option selecting the kind of spend a
// signature message is computed for.  By default it is a key path spend
// without annex.
type SigHashOption func(*sigHashOptions)

// WithScriptPath computes the signature message of a script path spend of
// the passed leaf.  The message commits to the tapleaf hash of the leaf.
func WithScriptPath(leaf taproot.ScriptLeaf) SigHashOption {
	return func(o *sigHashOptions) {
		o.leaf = fn.Some(leaf)
	}
}

// WithAnnex commits the signature message to the annex of the witness.  The
// annex includes its leading 0x50 byte.
func WithAnnex(annex []byte) SigHashOption {
	return func(o *sigHashOptions) {
		o.annex = annex
	}
}

// SignatureMessage returns the byte sequence hashed by CalcSignatureHash for
// the input at the passed index:
//
//	epoch || hash_type || tx data || input data || extension
//
// A nil sigHashes computes the transaction midstate on the fly.
func SignatureMessage(sigHashes *txscript.TxSigHashes, hashType SigHashType,
	tx *wire.MsgTx, idx int, prevOuts txscript.PrevOutputFetcher,
	opts ...SigHashOption) ([]byte, error) {

	opt := &sigHashOptions{}
	for _, o := range opts {
		o(opt)
	}

	if !hashType.IsSupported() {
		str := fmt.Sprintf("sighash type %v is not supported", hashType)
		return nil, taproot.MakeError(taproot.ErrUnsupportedSighashType, str)
	}
	if idx < 0 || idx >= len(tx.TxIn) {
		str := fmt.Sprintf("input index %d out of range for "+
			"transaction with %d inputs", idx, len(tx.TxIn))
		return nil, taproot.MakeError(taproot.ErrInvalidInputIndex, str)
	}

	if sigHashes == nil {
		var err error
		sigHashes, err = NewTxSigHashes(tx, prevOuts)
		if err != nil {
			return nil, err
		}
	}
	if prevOuts.FetchPrevOutput(tx.TxIn[idx].PreviousOutPoint) == nil {
		str := fmt.Sprintf("previous output of input %d is unknown", idx)
		return nil, taproot.MakeError(taproot.ErrMissingPrevOut, str)
	}

	var (
		msg bytes.Buffer
		buf [4]byte
	)

	// Epoch and hash type.
	msg.WriteByte(sigHashEpoch)
	msg.WriteByte(byte(hashType))

	// Transaction data.  With only SIGHASH_ALL style types supported, all
	// inputs and outputs are always committed to.
	binary.LittleEndian.PutUint32(buf[:], uint32(tx.Version))
	msg.Write(buf[:])
	binary.LittleEndian.PutUint32(buf[:], tx.LockTime)
	msg.Write(buf[:])

	msg.Write(sigHashes.HashPrevOutsV1[:])
	msg.Write(sigHashes.HashInputAmountsV1[:])
	msg.Write(sigHashes.HashInputScriptsV1[:])
	msg.Write(sigHashes.HashSequenceV1[:])
	msg.Write(sigHashes.HashOutputsV1[:])

	// Data about this input.
	var annexBit byte
	if len(opt.annex) > 0 {
		annexBit = 1
	}
	msg.WriteByte(opt.extFlag()*2 + annexBit)

	binary.LittleEndian.PutUint32(buf[:], uint32(idx))
	msg.Write(buf[:])

	if annexBit == 1 {
		var annex bytes.Buffer
		_ = wire.WriteVarBytes(&annex, 0, opt.annex)
		annexHash := sha256.Sum256(annex.Bytes())
		msg.Write(annexHash[:])
	}

	// Script path extension.
	opt.leaf.WhenSome(func(leaf taproot.ScriptLeaf) {
		leafHash := leaf.TapHash()
		msg.Write(leafHash[:])
		msg.WriteByte(baseKeyVersion)

		binary.LittleEndian.PutUint32(buf[:], blankCodeSepValue)
		msg.Write(buf[:])
	})

	return msg.Bytes(), nil
}

// CalcSignatureHash computes the BIP 341 signature hash of the input at the
// passed index.  This is the 32-byte message signed with BIP 340 Schnorr.
func CalcSignatureHash(sigHashes *txscript.TxSigHashes, hashType SigHashType,
	tx *wire.MsgTx, idx int, prevOuts txscript.PrevOutputFetcher,
	opts ...SigHashOption) (chainhash.Hash, error) {

	msg, err := SignatureMessage(
		sigHashes, hashType, tx, idx, prevOuts, opts...,
	)
	if err != nil {
		return chainhash.Hash{}, err
	}

	sigHash := taproot.TaggedHash(taproot.TagTapSighash, msg)

	log.Tracef("Signature hash of input %d (%v): %x", idx, hashType,
		sigHash[:])

	return sigHash, nil
}
