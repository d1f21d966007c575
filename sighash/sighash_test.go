// Copyright (c) 2013-2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sighash

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/lwhile/mastering-taproot/internal/taptest"
	"github.com/lwhile/mastering-taproot/taproot"
	"github.com/stretchr/testify/require"
)

// spendFixture is a two input transaction spending the dual leaf output and
// Alice's key only output.
type spendFixture struct {
	tx       *wire.MsgTx
	prevOuts *txscript.MultiPrevOutFetcher
	leaves   []taproot.ScriptLeaf
}

func newSpendFixture(t *testing.T) *spendFixture {
	t.Helper()

	dualScript := append(
		[]byte{txscript.OP_1, txscript.OP_DATA_32},
		taptest.Hex(t, taptest.DualOutputKeyHex)...,
	)
	keyOnlyScript := append(
		[]byte{txscript.OP_1, txscript.OP_DATA_32},
		taptest.Hex(t, taptest.KeyOnlyOutputKeyHex)...,
	)

	tx := wire.NewMsgTx(2)
	tx.LockTime = 2_500_000
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{
			Hash:  chainhash.HashH([]byte("funding 0")),
			Index: 0,
		},
		Sequence: wire.MaxTxInSequenceNum - 1,
	})
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{
			Hash:  chainhash.HashH([]byte("funding 1")),
			Index: 3,
		},
		Sequence: 2,
	})
	tx.AddTxOut(wire.NewTxOut(4_000, keyOnlyScript))
	tx.AddTxOut(wire.NewTxOut(1_234, dualScript))

	prevOuts, err := NewPrevOutFetcher(
		tx, [][]byte{dualScript, keyOnlyScript}, []int64{5_000, 1_000},
	)
	require.NoError(t, err)

	return &spendFixture{
		tx:       tx,
		prevOuts: prevOuts,
		leaves: []taproot.ScriptLeaf{
			taproot.NewBaseLeaf(taptest.Hex(t, taptest.HashLockScriptHex)),
			taproot.NewBaseLeaf(taptest.Hex(t, taptest.BobScriptHex)),
		},
	}
}

// TestCalcSignatureHashKeyPath cross checks key path signature hashes with
// the btcd implementation.
func TestCalcSignatureHashKeyPath(t *testing.T) {
	t.Parallel()

	f := newSpendFixture(t)
	btcdHashes := txscript.NewTxSigHashes(f.tx, f.prevOuts)
	sigHashes, err := NewTxSigHashes(f.tx, f.prevOuts)
	require.NoError(t, err)

	hashTypes := []SigHashType{SigHashDefault, SigHashAll}
	for _, hashType := range hashTypes {
		for idx := range f.tx.TxIn {
			want, err := txscript.CalcTaprootSignatureHash(
				btcdHashes, txscript.SigHashType(hashType), f.tx,
				idx, f.prevOuts,
			)
			require.NoError(t, err)

			got, err := CalcSignatureHash(
				sigHashes, hashType, f.tx, idx, f.prevOuts,
			)
			require.NoError(t, err)
			require.Equal(t, want, got[:], "%v input %d", hashType,
				idx)

			// The midstate is optional.
			lazy, err := CalcSignatureHash(
				nil, hashType, f.tx, idx, f.prevOuts,
			)
			require.NoError(t, err)
			require.Equal(t, got, lazy)
		}
	}
}

// TestCalcSignatureHashScriptPath cross checks script path signature hashes
// with the btcd implementation.
func TestCalcSignatureHashScriptPath(t *testing.T) {
	t.Parallel()

	f := newSpendFixture(t)
	btcdHashes := txscript.NewTxSigHashes(f.tx, f.prevOuts)

	for _, hashType := range []SigHashType{SigHashDefault, SigHashAll} {
		for _, leaf := range f.leaves {
			want, err := txscript.CalcTapscriptSignaturehash(
				btcdHashes, txscript.SigHashType(hashType), f.tx, 0,
				f.prevOuts, txscript.NewBaseTapLeaf(leaf.Script),
			)
			require.NoError(t, err)

			got, err := CalcSignatureHash(
				nil, hashType, f.tx, 0, f.prevOuts,
				WithScriptPath(leaf),
			)
			require.NoError(t, err)
			require.Equal(t, want, got[:])
		}
	}

	// The leaf must be committed to.
	first, err := CalcSignatureHash(
		nil, SigHashDefault, f.tx, 0, f.prevOuts,
		WithScriptPath(f.leaves[0]),
	)
	require.NoError(t, err)
	second, err := CalcSignatureHash(
		nil, SigHashDefault, f.tx, 0, f.prevOuts,
		WithScriptPath(f.leaves[1]),
	)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

// TestSignatureMessageLayout checks the size and fixed fields of the
// signature message for every kind of spend.
func TestSignatureMessageLayout(t *testing.T) {
	t.Parallel()

	f := newSpendFixture(t)
	annex := []byte{0x50, 0x01, 0x02}

	tests := []struct {
		name      string
		opts      []SigHashOption
		size      int
		spendType byte
	}{
		{"key path", nil, 175, 0x00},
		{"key path annex", []SigHashOption{WithAnnex(annex)}, 207, 0x01},
		{
			"script path",
			[]SigHashOption{WithScriptPath(f.leaves[1])},
			212, 0x02,
		},
		{
			"script path annex",
			[]SigHashOption{
				WithScriptPath(f.leaves[1]), WithAnnex(annex),
			},
			244, 0x03,
		},
	}
	for _, test := range tests {
		msg, err := SignatureMessage(
			nil, SigHashAll, f.tx, 1, f.prevOuts, test.opts...,
		)
		require.NoError(t, err, test.name)
		require.Len(t, msg, test.size, test.name)

		// Epoch, hash type, spend type and input index.
		require.Equal(t, byte(0x00), msg[0], test.name)
		require.Equal(t, byte(SigHashAll), msg[1], test.name)
		require.Equal(t, test.spendType, msg[170], test.name)
		require.Equal(t, []byte{1, 0, 0, 0}, msg[171:175], test.name)

		if test.spendType&0x01 == 0x01 {
			var annexEnc bytes.Buffer
			require.NoError(t, wire.WriteVarBytes(&annexEnc, 0, annex))
			annexHash := sha256.Sum256(annexEnc.Bytes())
			require.Equal(t, annexHash[:], msg[175:207], test.name)
		}
		if test.spendType&0x02 == 0x02 {
			leafHash := f.leaves[1].TapHash()
			ext := msg[len(msg)-37:]
			require.Equal(t, leafHash[:], ext[:32], test.name)
			require.Equal(
				t, []byte{0x00, 0xff, 0xff, 0xff, 0xff}, ext[32:],
				test.name,
			)
		}
	}
}

// TestCalcSignatureHashErrors tests unsupported hash types, bad input indexes
// and unknown spent outputs.
func TestCalcSignatureHashErrors(t *testing.T) {
	t.Parallel()

	f := newSpendFixture(t)

	unsupported := []SigHashType{0x02, 0x03, 0x81, 0x82, 0x83, 0x04}
	for _, hashType := range unsupported {
		_, err := CalcSignatureHash(nil, hashType, f.tx, 0, f.prevOuts)
		require.True(
			t, errors.Is(err, taproot.ErrUnsupportedSighashType),
			"%v", hashType,
		)
	}

	for _, idx := range []int{-1, 2} {
		_, err := CalcSignatureHash(
			nil, SigHashDefault, f.tx, idx, f.prevOuts,
		)
		require.True(t, errors.Is(err, taproot.ErrInvalidInputIndex))
	}

	_, err := CalcSignatureHash(
		nil, SigHashDefault, f.tx, 0, txscript.NewMultiPrevOutFetcher(nil),
	)
	require.True(t, errors.Is(err, taproot.ErrMissingPrevOut))
}

// TestSigHashTypeString tests the stringized hash types.
func TestSigHashTypeString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "SIGHASH_DEFAULT", SigHashDefault.String())
	require.Equal(t, "SIGHASH_ALL", SigHashAll.String())
	require.Equal(t, "SIGHASH_UNKNOWN(0x83)", SigHashType(0x83).String())
}
