// Copyright (c) 2016-2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sighash

import (
	"fmt"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/lwhile/mastering-taproot/taproot"
)

// checkPrevOuts ensures the fetcher knows the output spent by every input of
// the transaction.  BIP 341 signatures commit to all of them.
func checkPrevOuts(tx *wire.MsgTx, prevOuts txscript.PrevOutputFetcher) error {
	for i, txIn := range tx.TxIn {
		if prevOuts.FetchPrevOutput(txIn.PreviousOutPoint) == nil {
			str := fmt.Sprintf("previous output %v of input %d is "+
				"unknown", txIn.PreviousOutPoint, i)
			return taproot.MakeError(taproot.ErrMissingPrevOut, str)
		}
	}

	return nil
}

// NewTxSigHashes computes the transaction wide midstate of the passed
// transaction.  The fetcher must know the previous output of every input.
func NewTxSigHashes(tx *wire.MsgTx,
	prevOuts txscript.PrevOutputFetcher) (*txscript.TxSigHashes, error) {

	if err := checkPrevOuts(tx, prevOuts); err != nil {
		return nil, err
	}

	return txscript.NewTxSigHashes(tx, prevOuts), nil
}

// CachedSigHashes returns the midstate of the passed transaction from the
// cache, computing and adding it first when it is not cached yet.
func CachedSigHashes(cache *txscript.HashCache, tx *wire.MsgTx,
	prevOuts txscript.PrevOutputFetcher) (*txscript.TxSigHashes, error) {

	txid := tx.TxHash()
	if sigHashes, ok := cache.GetSigHashes(&txid); ok {
		return sigHashes, nil
	}

	if err := checkPrevOuts(tx, prevOuts); err != nil {
		return nil, err
	}
	cache.AddSigHashes(tx, prevOuts)

	log.Debugf("Cached signature midstate of tx %v", txid)

	sigHashes, _ := cache.GetSigHashes(&txid)
	return sigHashes, nil
}

// NewPrevOutFetcher returns a fetcher for the outputs spent by the passed
// transaction, given their scripts and amounts in input order.
func NewPrevOutFetcher(tx *wire.MsgTx, pkScripts [][]byte,
	amounts []int64) (*txscript.MultiPrevOutFetcher, error) {

	if len(pkScripts) != len(tx.TxIn) || len(amounts) != len(tx.TxIn) {
		str := fmt.Sprintf("transaction has %d inputs, got %d scripts "+
			"and %d amounts", len(tx.TxIn), len(pkScripts),
			len(amounts))
		return nil, taproot.MakeError(taproot.ErrMissingPrevOut, str)
	}

	fetcher := txscript.NewMultiPrevOutFetcher(nil)
	for i, txIn := range tx.TxIn {
		fetcher.AddPrevOut(txIn.PreviousOutPoint, &wire.TxOut{
			Value:    amounts[i],
			PkScript: pkScripts[i],
		})
	}

	return fetcher, nil
}
