// Copyright (c) 2013-2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package spend

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/lwhile/mastering-taproot/sighash"
	"github.com/lwhile/mastering-taproot/taproot"
)

// Path selects how a taproot output is spent.  It is either KeyPath or
// ScriptPath.
type Path interface {
	isPath()
}

// KeyPath spends the output with a single signature of the tweaked internal
// key.
type KeyPath struct {
	// PrivKey is the untweaked private key of the internal key.
	PrivKey *btcec.PrivateKey
}

func (KeyPath) isPath() {}

// ScriptPath spends the output by executing one of the leaves of the tree.
type ScriptPath struct {
	// LeafIndex is the index of the executed leaf.
	LeafIndex int

	// Unlock holds the witness elements satisfying the leaf script, in
	// push order.
	Unlock [][]byte
}

func (ScriptPath) isPath() {}

// SigningContext identifies the input being signed.
type SigningContext struct {
	// Tx is the spending transaction.
	Tx *wire.MsgTx

	// InputIndex is the index of the input spending the taproot output.
	InputIndex int

	// PrevOuts knows the outputs spent by every input of Tx.
	PrevOuts txscript.PrevOutputFetcher

	// SigHashes is the optional precomputed midstate of Tx.
	SigHashes *txscript.TxSigHashes

	// HashType is the signature hash type to sign with.
	HashType sighash.SigHashType
}

// Request is a request to assemble the witness of a taproot input.
type Request struct {
	SigningContext

	// Path is the spend path to assemble.
	Path Path
}

// Assembler builds witnesses spending outputs that commit to a tree.
type Assembler struct {
	tree        *taproot.Tree
	internalKey *btcec.PublicKey
	output      *taproot.TweakResult
	signer      Signer
}

// NewAssembler returns an assembler for the output committing the tree to
// the internal key.  A nil signer defaults to SchnorrSigner.
func NewAssembler(tree *taproot.Tree, internalKey *btcec.PublicKey,
	signer Signer) (*Assembler, error) {

	output, err := tree.OutputKey(internalKey)
	if err != nil {
		return nil, err
	}

	if signer == nil {
		signer = &SchnorrSigner{}
	}

	return &Assembler{
		tree:        tree,
		internalKey: internalKey,
		output:      output,
		signer:      signer,
	}, nil
}

// Tree returns the tree committed to by the output.
func (a *Assembler) Tree() *taproot.Tree {
	return a.tree
}

// Output returns the tweaked output key.
func (a *Assembler) Output() *taproot.TweakResult {
	return a.output
}

// PkScript returns the segwit v1 output script paying to the output key.
func (a *Assembler) PkScript() ([]byte, error) {
	return txscript.PayToTaprootScript(a.output.OutputKey)
}

// ControlBlock returns the control block proving the leaf at the passed
// index.
func (a *Assembler) ControlBlock(leafIndex int) (*taproot.ControlBlock, error) {
	return taproot.NewControlBlock(
		a.internalKey, a.tree, leafIndex, a.output.OutputKeyYIsOdd,
	)
}

// SignKeyPath returns the key path signature of the input.  The internal
// private key is tweaked with the merkle root of the whole tree.
func (a *Assembler) SignKeyPath(ctx *SigningContext,
	privKey *btcec.PrivateKey) ([]byte, error) {

	if !sameXOnlyKey(privKey.PubKey(), a.internalKey) {
		return nil, taproot.MakeError(taproot.ErrWrongInternalKey,
			"private key does not match the internal key")
	}

	tweaked, err := taproot.TweakPrivKey(privKey, a.tree.MerkleRoot())
	if err != nil {
		return nil, err
	}

	sigHash, err := sighash.CalcSignatureHash(
		ctx.SigHashes, ctx.HashType, ctx.Tx, ctx.InputIndex,
		ctx.PrevOuts,
	)
	if err != nil {
		return nil, err
	}

	return a.signer.Sign(tweaked, sigHash, ctx.HashType)
}

// SignLeaf returns a signature of the input for the leaf at the passed
// index.  Script path signatures commit to the leaf and are made with the
// untweaked key named in the leaf script.
func (a *Assembler) SignLeaf(ctx *SigningContext, leafIndex int,
	privKey *btcec.PrivateKey) ([]byte, error) {

	leaf, err := a.tree.Leaf(leafIndex)
	if err != nil {
		return nil, err
	}

	sigHash, err := sighash.CalcSignatureHash(
		ctx.SigHashes, ctx.HashType, ctx.Tx, ctx.InputIndex,
		ctx.PrevOuts, sighash.WithScriptPath(leaf),
	)
	if err != nil {
		return nil, err
	}

	return a.signer.Sign(privKey, sigHash, ctx.HashType)
}

// Assemble builds the witness requested.  A key path witness is the single
// signature.  A script path witness is the unlocking elements followed by
// the leaf script and its control block.
func (a *Assembler) Assemble(req *Request) (wire.TxWitness, error) {
	switch path := req.Path.(type) {
	case KeyPath:
		sig, err := a.SignKeyPath(&req.SigningContext, path.PrivKey)
		if err != nil {
			return nil, err
		}

		log.Debugf("Assembled key path witness for input %d",
			req.InputIndex)

		return wire.TxWitness{sig}, nil

	case ScriptPath:
		leaf, err := a.tree.Leaf(path.LeafIndex)
		if err != nil {
			return nil, err
		}
		controlBlock, err := a.ControlBlock(path.LeafIndex)
		if err != nil {
			return nil, err
		}

		witness := make(wire.TxWitness, 0, len(path.Unlock)+2)
		witness = append(witness, path.Unlock...)
		witness = append(witness, leaf.Script, controlBlock.Bytes())

		log.Debugf("Assembled script path witness for input %d, leaf "+
			"%d with %d unlock elements", req.InputIndex,
			path.LeafIndex, len(path.Unlock))

		return witness, nil
	}

	str := fmt.Sprintf("unknown spend path %T", req.Path)
	return nil, taproot.MakeError(taproot.ErrUnknownSpendPath, str)
}

// sameXOnlyKey reports whether both keys have the same x coordinate.
func sameXOnlyKey(a, b *btcec.PublicKey) bool {
	return string(schnorr.SerializePubKey(a)) ==
		string(schnorr.SerializePubKey(b))
}
