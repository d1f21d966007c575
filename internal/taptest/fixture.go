// Copyright (c) 2013-2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package taptest provides the shared keys and reference vectors used by the
// tests of the taproot packages.
package taptest

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
)

const (
	// AliceWIF is the testnet private key acting as internal key in all
	// reference trees.
	AliceWIF = "cRxebG1hY6vVgS9CSLNaEbEJaXkpZvc6nFeqqGT7v6gcW7MbzKNT"

	// BobWIF is the testnet private key used inside leaf scripts.
	BobWIF = "cSNdLFDf3wjx1rswNL2jKykbVkC6o56o5nYZi4FUkWKjFn2Q5DSG"

	// AliceXOnlyHex is the x-only public key of Alice.
	AliceXOnlyHex = "50be5fc44ec580c387bf45df275aaa8b27e2d7716af31f10eeed" +
		"357d126bb4d3"

	// BobXOnlyHex is the x-only public key of Bob.
	BobXOnlyHex = "84b5951609b76619a1ce7f48977b4312ebe226987166ef044bfb" +
		"374ceef63af5"

	// Preimage is the secret unlocking HashLockScriptHex.
	Preimage = "helloworld"

	// HashLockScriptHex is OP_SHA256 <sha256(Preimage)> OP_EQUALVERIFY
	// OP_TRUE.
	HashLockScriptHex = "a820936a185caaa266bb9cbe981e9e05cb78cd732b0b3280eb" +
		"944412bb6f8f8f07af8851"

	// HashLockLeafHex is the tapleaf hash of HashLockScriptHex.
	HashLockLeafHex = "fe78d8523ce9603014b28739a51ef826f791aa17511e617af6dc" +
		"96a8f10f659e"

	// BobScriptHex is <Bob> OP_CHECKSIG.
	BobScriptHex = "20" + BobXOnlyHex + "ac"

	// BobLeafHex is the tapleaf hash of BobScriptHex.
	BobLeafHex = "2faaa677cb6ad6a74bf7025e4cd03d2a82c7fb8e3c277916d7751078" +
		"105cf9df"

	// MultiSigScriptHex is OP_0 <Alice> OP_CHECKSIGADD <Bob>
	// OP_CHECKSIGADD OP_2 OP_EQUAL.
	MultiSigScriptHex = "0020" + AliceXOnlyHex + "ba20" + BobXOnlyHex +
		"ba5287"

	// MultiSigLeafHex is the tapleaf hash of MultiSigScriptHex.
	MultiSigLeafHex = "63cb9e4776a1cbb195c5cf0cbdbb3110d308969353680e38ec5f" +
		"446336b60def"

	// CSVScriptHex is OP_2 OP_CHECKSEQUENCEVERIFY OP_DROP <Bob>
	// OP_CHECKSIG.
	CSVScriptHex = "52b27520" + BobXOnlyHex + "ac"

	// CSVLeafHex is the tapleaf hash of CSVScriptHex.
	CSVLeafHex = "593d543a01c2c3c16c950ed97dfb3f3a1025b4b66323ed6b2814a1fb" +
		"61d8e4b9"

	// KeyOnlyOutputKeyHex is Alice's key committed to no scripts.
	KeyOnlyOutputKeyHex = "7e9e22f81c870d9f3b57389ff2dbbba5a7ed4b8352b38cff" +
		"d474bfb9d8265cff"

	// HashLockOutputKeyHex is Alice's key committed to the hash lock leaf
	// alone.  Its y coordinate is odd.
	HashLockOutputKeyHex = "a46780148be98aaa861ad0b5dfc5c9b935d515c7be8c9e2b" +
		"c6cedfa594e2b6d9"

	// DualRootHex is the merkle root of [hash lock, bob].
	DualRootHex = "868ba8150cd670ce73709de6d9056427e2974c4214a729c6b69064" +
		"7947441219"

	// DualTweakHex is the tweak of Alice's key with DualRootHex.
	DualTweakHex = "630a17e3217a2b5b5120b500ae3b160f1b7d78e9aed8116b6c6c96" +
		"ea524a35af"

	// DualOutputKeyHex is the output key of the dual leaf tree.  Its y
	// coordinate is even.
	DualOutputKeyHex = "2c71571a033f8273cbbcf307c3c441b68df7c2e9a127be2da533" +
		"d06777915cd0"

	// DualAddress is the testnet address of DualOutputKeyHex.
	DualAddress = "tb1p93c4wxsr87p88jau7vru83zpk6xl0shf5ynmutd9x0gxwau3tngq9a4w3z"

	// DualHashLockControlBlockHex spends the hash lock leaf of the dual
	// leaf tree.
	DualHashLockControlBlockHex = "c0" + AliceXOnlyHex + BobLeafHex

	// DualBobControlBlockHex spends the bob leaf of the dual leaf tree.
	DualBobControlBlockHex = "c0" + AliceXOnlyHex + HashLockLeafHex

	// FourLeftBranchHex is the branch over [hash lock, multisig].
	FourLeftBranchHex = "d6ac4c0133faaf95feb8e5656367d882f250e23b3295cafcbc46" +
		"5779960d1210"

	// FourRightBranchHex is the branch over [csv, bob].
	FourRightBranchHex = "da55197526f26fa309563b7a3551ca945c046e5b7ada957e59" +
		"160d4d27f299e3"

	// FourRootHex is the merkle root of the four leaf tree
	// [[hash lock, multisig], [csv, bob]].
	FourRootHex = "33fd4d4bfe64086adf33ce383261b9a79ce6fc193e4d494d76cd28d06" +
		"98a0ecf"

	// FourOutputKeyHex is the output key of the four leaf tree.  Its y
	// coordinate is even.
	FourOutputKeyHex = "925bb2bd44575a379c139d57db9a4c0e8d4867e8db046d448905" +
		"9576e48f5118"

	// FourAddress is the testnet address of FourOutputKeyHex.
	FourAddress = "tb1pjfdm902y2adr08qnn4tahxjvp6x5selgmvzx63yfqk2hdey02yvqjcr29q"
)

// Fixture carries the decoded keys shared by the reference vectors.  It is
// built once per test and handed to the code under test explicitly.
type Fixture struct {
	// Net is the network the keys and addresses belong to.
	Net *chaincfg.Params

	// Alice is the internal key of every reference tree.
	Alice *btcec.PrivateKey

	// Bob is the key used inside leaf scripts.
	Bob *btcec.PrivateKey

	// Preimage unlocks the hash lock leaf.
	Preimage []byte
}

// New decodes the fixture keys, failing the test on error.
func New(t testing.TB) *Fixture {
	t.Helper()

	alice, err := btcutil.DecodeWIF(AliceWIF)
	require.NoError(t, err)
	bob, err := btcutil.DecodeWIF(BobWIF)
	require.NoError(t, err)

	return &Fixture{
		Net:      &chaincfg.TestNet3Params,
		Alice:    alice.PrivKey,
		Bob:      bob.PrivKey,
		Preimage: []byte(Preimage),
	}
}

// Hex decodes a hex string, failing the test on error.
func Hex(t testing.TB, s string) []byte {
	t.Helper()

	b, err := hex.DecodeString(s)
	require.NoError(t, err)

	return b
}
