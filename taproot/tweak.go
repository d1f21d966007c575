// Copyright (c) 2013-2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package taproot

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	secp "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// TweakResult is the outcome of committing a merkle root to an internal key.
type TweakResult struct {
	// Tweak is the big-endian tweak scalar t = h_taptweak(P || root).
	Tweak chainhash.Hash

	// OutputKey is the full output key Q = P + t*G.
	OutputKey *btcec.PublicKey

	// OutputKeyYIsOdd is the parity of the y coordinate of the output
	// key.  It must be carried in the control block of every script path
	// spend.
	OutputKeyYIsOdd bool
}

// XOnlyOutputKey returns the 32-byte x-only output key committed to in a
// segwit v1 output script.
func (r *TweakResult) XOnlyOutputKey() []byte {
	return schnorr.SerializePubKey(r.OutputKey)
}

// TapTweakHash returns the tweak hash committing the merkle root to the
// internal key.  With no root the hash commits to the key alone.
func TapTweakHash(internalKey *btcec.PublicKey,
	root fn.Option[chainhash.Hash]) chainhash.Hash {

	rootBytes := fn.MapOptionZ(root, func(h chainhash.Hash) []byte {
		return h[:]
	})

	return TaggedHash(
		TagTapTweak, schnorr.SerializePubKey(internalKey), rootBytes,
	)
}

// ComputeOutputKey tweaks the internal key with the passed merkle root
// following BIP 341:
//
//	Q = P + h_taptweak(P || root)*G
//
// The internal key is interpreted as its x-only form, so a key with an odd
// y coordinate is first replaced by its even counterpart.
func ComputeOutputKey(internalKey *btcec.PublicKey,
	root fn.Option[chainhash.Hash]) (*TweakResult, error) {

	// Lift the x coordinate to the point with even y.
	evenKey, err := schnorr.ParsePubKey(
		schnorr.SerializePubKey(internalKey),
	)
	if err != nil {
		return nil, err
	}

	tweakHash := TapTweakHash(evenKey, root)

	var tweakScalar btcec.ModNScalar
	if overflow := tweakScalar.SetBytes((*[32]byte)(&tweakHash)); overflow != 0 {
		return nil, MakeError(ErrInvalidTweak, "tweak hash overflows "+
			"the curve order")
	}

	var internalPoint, tweakPoint, outputPoint btcec.JacobianPoint
	evenKey.AsJacobian(&internalPoint)
	btcec.ScalarBaseMultNonConst(&tweakScalar, &tweakPoint)
	btcec.AddNonConst(&internalPoint, &tweakPoint, &outputPoint)

	if (outputPoint.X.IsZero() && outputPoint.Y.IsZero()) ||
		outputPoint.Z.IsZero() {

		return nil, MakeError(ErrInvalidTweak, "tweaked output key is "+
			"the point at infinity")
	}
	outputPoint.ToAffine()

	result := &TweakResult{
		Tweak:           tweakHash,
		OutputKey:       btcec.NewPublicKey(&outputPoint.X, &outputPoint.Y),
		OutputKeyYIsOdd: outputPoint.Y.IsOdd(),
	}

	log.Tracef("Tweaked internal key %x to output key %x (odd=%v)",
		schnorr.SerializePubKey(evenKey), result.XOnlyOutputKey(),
		result.OutputKeyYIsOdd)

	return result, nil
}

// TweakPrivKey returns the private key for the output key produced by
// ComputeOutputKey for the public key of priv and the same root.  The key is
// negated first if its public key has an odd y coordinate.  The passed key is
// not modified.
func TweakPrivKey(priv *btcec.PrivateKey,
	root fn.Option[chainhash.Hash]) (*btcec.PrivateKey, error) {

	var scalar btcec.ModNScalar
	scalar.Set(&priv.Key)

	pubKey := priv.PubKey()
	if pubKey.SerializeCompressed()[0] == secp.PubKeyFormatCompressedOdd {
		scalar.Negate()
	}

	tweakHash := TapTweakHash(pubKey, root)

	var tweakScalar btcec.ModNScalar
	if overflow := tweakScalar.SetBytes((*[32]byte)(&tweakHash)); overflow != 0 {
		return nil, MakeError(ErrInvalidTweak, "tweak hash overflows "+
			"the curve order")
	}

	scalar.Add(&tweakScalar)
	if scalar.IsZero() {
		return nil, MakeError(ErrInvalidTweak, "tweaked private key is "+
			"zero")
	}

	return btcec.PrivKeyFromScalar(&scalar), nil
}

// OutputKey commits the tree to the passed internal key.
func (t *Tree) OutputKey(internalKey *btcec.PublicKey) (*TweakResult, error) {
	return ComputeOutputKey(internalKey, t.MerkleRoot())
}
