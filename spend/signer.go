// Copyright (c) 2013-2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package spend

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lwhile/mastering-taproot/sighash"
)

// Signer produces BIP 340 signatures over taproot signature hashes.  The
// returned signature is the serialized witness element, including the hash
// type byte when one is required.
type Signer interface {
	// Sign signs the signature hash with the passed key.
	Sign(privKey *btcec.PrivateKey, sigHash chainhash.Hash,
		hashType sighash.SigHashType) ([]byte, error)
}

// SchnorrSigner is a Signer backed by the btcec schnorr implementation.
type SchnorrSigner struct{}

// A compile-time assertion to ensure SchnorrSigner meets the Signer
// interface.
var _ Signer = (*SchnorrSigner)(nil)

// Sign signs the signature hash with the passed key.  The hash type byte is
// appended unless it is SigHashDefault.
//
// NOTE: This is part of the Signer interface.
func (s *SchnorrSigner) Sign(privKey *btcec.PrivateKey, sigHash chainhash.Hash,
	hashType sighash.SigHashType) ([]byte, error) {

	sig, err := schnorr.Sign(privKey, sigHash[:])
	if err != nil {
		return nil, err
	}

	raw := sig.Serialize()
	if hashType != sighash.SigHashDefault {
		raw = append(raw, byte(hashType))
	}

	return raw, nil
}

// ReverseForStack returns the passed signatures in reverse order.  Witness
// elements are pushed onto the stack in order, so the last element ends up on
// top.  A script checking signatures in key order therefore needs the
// signature of its first key last.
func ReverseForStack(sigsInVerificationOrder [][]byte) [][]byte {
	reversed := make([][]byte, len(sigsInVerificationOrder))
	for i, sig := range sigsInVerificationOrder {
		reversed[len(reversed)-1-i] = sig
	}

	return reversed
}
