// Copyright (c) 2013-2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package tappsbt decorates PSBT inputs spending taproot outputs with the
// BIP 371 fields describing their tree, and finalizes them with witnesses
// built by the spend package.
package tappsbt

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/lwhile/mastering-taproot/sighash"
	"github.com/lwhile/mastering-taproot/spend"
	"github.com/lwhile/mastering-taproot/taproot"
)

// AddTaprootInput records the internal key, the merkle root and one leaf
// script per leaf of the tree in the passed input.  Existing leaf scripts are
// replaced.
func AddTaprootInput(pIn *psbt.PInput, tree *taproot.Tree,
	internalKey *btcec.PublicKey) error {

	output, err := tree.OutputKey(internalKey)
	if err != nil {
		return err
	}

	pIn.TaprootInternalKey = schnorr.SerializePubKey(internalKey)
	pIn.TaprootMerkleRoot = nil
	tree.MerkleRoot().WhenSome(func(root chainhash.Hash) {
		pIn.TaprootMerkleRoot = root[:]
	})

	pIn.TaprootLeafScript = make(
		[]*psbt.TaprootTapLeafScript, 0, tree.NumLeaves(),
	)
	for i := 0; i < tree.NumLeaves(); i++ {
		leaf, err := tree.Leaf(i)
		if err != nil {
			return err
		}
		controlBlock, err := taproot.NewControlBlock(
			internalKey, tree, i, output.OutputKeyYIsOdd,
		)
		if err != nil {
			return err
		}

		pIn.TaprootLeafScript = append(
			pIn.TaprootLeafScript, &psbt.TaprootTapLeafScript{
				ControlBlock: controlBlock.Bytes(),
				Script:       leaf.Script,
				LeafVersion: txscript.TapscriptLeafVersion(
					leaf.Version,
				),
			},
		)
	}

	log.Debugf("Added taproot data for output key %x with %d leaves",
		output.XOnlyOutputKey(), tree.NumLeaves())

	return nil
}

// PrevOutFetcher returns a fetcher for the outputs spent by the packet,
// built from the witness UTXO of every input.
func PrevOutFetcher(pkt *psbt.Packet) (*txscript.MultiPrevOutFetcher, error) {
	if len(pkt.Inputs) != len(pkt.UnsignedTx.TxIn) {
		str := fmt.Sprintf("packet has %d inputs but transaction has "+
			"%d", len(pkt.Inputs), len(pkt.UnsignedTx.TxIn))
		return nil, taproot.MakeError(taproot.ErrMissingPrevOut, str)
	}

	fetcher := txscript.NewMultiPrevOutFetcher(nil)
	for i, txIn := range pkt.UnsignedTx.TxIn {
		utxo := pkt.Inputs[i].WitnessUtxo
		if utxo == nil {
			str := fmt.Sprintf("input %d has no witness utxo", i)
			return nil, taproot.MakeError(
				taproot.ErrMissingPrevOut, str,
			)
		}

		fetcher.AddPrevOut(txIn.PreviousOutPoint, utxo)
	}

	return fetcher, nil
}

// FinalizeWitness sets the final witness of the input and clears the fields
// that are no longer needed once the input is final.
func FinalizeWitness(pIn *psbt.PInput, witness wire.TxWitness) error {
	var b bytes.Buffer
	if err := psbt.WriteTxWitness(&b, witness); err != nil {
		return err
	}

	pIn.FinalScriptWitness = b.Bytes()

	pIn.PartialSigs = nil
	pIn.SighashType = 0
	pIn.RedeemScript = nil
	pIn.WitnessScript = nil
	pIn.Bip32Derivation = nil
	pIn.TaprootKeySpendSig = nil
	pIn.TaprootScriptSpendSig = nil
	pIn.TaprootLeafScript = nil
	pIn.TaprootBip32Derivation = nil
	pIn.TaprootInternalKey = nil
	pIn.TaprootMerkleRoot = nil

	return nil
}

// SignAndFinalize assembles the witness of the input at the passed index
// along the passed spend path and finalizes the input with it.  Every input
// of the packet must carry its witness UTXO.  The transaction midstate is
// taken from, or added to, the passed cache so the inputs of one packet share
// it.  A nil cache computes the midstate for this input alone.
func SignAndFinalize(pkt *psbt.Packet, index int, a *spend.Assembler,
	path spend.Path, hashType sighash.SigHashType,
	cache *txscript.HashCache) error {

	if index < 0 || index >= len(pkt.Inputs) {
		str := fmt.Sprintf("input index %d out of range for packet "+
			"with %d inputs", index, len(pkt.Inputs))
		return taproot.MakeError(taproot.ErrInvalidInputIndex, str)
	}

	prevOuts, err := PrevOutFetcher(pkt)
	if err != nil {
		return err
	}

	var sigHashes *txscript.TxSigHashes
	if cache != nil {
		sigHashes, err = sighash.CachedSigHashes(
			cache, pkt.UnsignedTx, prevOuts,
		)
	} else {
		sigHashes, err = sighash.NewTxSigHashes(pkt.UnsignedTx, prevOuts)
	}
	if err != nil {
		return err
	}

	witness, err := a.Assemble(&spend.Request{
		SigningContext: spend.SigningContext{
			Tx:         pkt.UnsignedTx,
			InputIndex: index,
			PrevOuts:   prevOuts,
			SigHashes:  sigHashes,
			HashType:   hashType,
		},
		Path: path,
	})
	if err != nil {
		return err
	}

	log.Debugf("Finalizing input %d with %d witness elements", index,
		len(witness))

	return FinalizeWitness(&pkt.Inputs[index], witness)
}
