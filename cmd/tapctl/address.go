// Copyright (c) 2015-2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/lwhile/mastering-taproot/internal/log"
)

// addressCmd defines the configuration options for the address command.
type addressCmd struct {
	shapeOptions
}

var (
	// addressCfg defines the configuration options for the command.
	addressCfg = addressCmd{}
)

// Execute is the main entry point for the command.  It's invoked by the parser.
func (cmd *addressCmd) Execute(args []string) error {
	// Setup the global config options and ensure they are valid.
	if err := setupGlobalConfig(); err != nil {
		return err
	}

	internalKey, tree, err := cmd.load()
	if err != nil {
		return err
	}

	result, err := tree.OutputKey(internalKey)
	if err != nil {
		return err
	}

	addr, err := btcutil.NewAddressTaproot(
		result.XOnlyOutputKey(), activeNetParams,
	)
	if err != nil {
		return err
	}
	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return err
	}

	root := fn.MapOptionZ(tree.MerkleRoot(), func(h chainhash.Hash) string {
		return hex.EncodeToString(h[:])
	})
	if root == "" {
		root = "none"
	}
	parity := "even"
	if result.OutputKeyYIsOdd {
		parity = "odd"
	}

	log.TctlLog.Debugf("Derived address %v on %s", addr,
		activeNetParams.Name)

	fmt.Fprintf(out, "merkle root: %s\n", root)
	fmt.Fprintf(out, "tweak: %x\n", result.Tweak[:])
	fmt.Fprintf(out, "output key: %x\n", result.XOnlyOutputKey())
	fmt.Fprintf(out, "parity: %s\n", parity)
	fmt.Fprintf(out, "pkscript: %x\n", pkScript)
	fmt.Fprintf(out, "address: %s\n", addr.EncodeAddress())

	return nil
}

// Usage overrides the usage display for the command.
func (cmd *addressCmd) Usage() string {
	return "--internalkey=<key> [--shape=<json> | --shapefile=<file>]"
}
