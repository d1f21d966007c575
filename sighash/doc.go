// Copyright (c) 2013-2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package sighash computes BIP 341 signature hashes for key path and script
path spends of taproot outputs.

The transaction wide part of the signature message is computed once per
transaction into a txscript.TxSigHashes midstate, which a txscript.HashCache
can share between inputs and goroutines.  The input specific part is selected with SigHashOption values:
WithScriptPath commits to the tapleaf hash of the leaf being executed and
WithAnnex to the annex of the witness.

Only SigHashDefault and SigHashAll are supported.
*/
package sighash
