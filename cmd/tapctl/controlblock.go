// Copyright (c) 2015-2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/btcsuite/btcd/txscript"
	"github.com/lwhile/mastering-taproot/taproot"
)

// controlBlockCmd defines the configuration options for the controlblock
// command.
type controlBlockCmd struct {
	shapeOptions
	Leaf int `short:"l" long:"leaf" description:"Index of the leaf in depth first order"`
}

var (
	// controlBlockCfg defines the configuration options for the command.
	controlBlockCfg = controlBlockCmd{}
)

// Execute is the main entry point for the command.  It's invoked by the parser.
func (cmd *controlBlockCmd) Execute(args []string) error {
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
	cb, err := taproot.NewControlBlock(
		internalKey, tree, cmd.Leaf, result.OutputKeyYIsOdd,
	)
	if err != nil {
		return err
	}

	leaf, err := tree.Leaf(cmd.Leaf)
	if err != nil {
		return err
	}
	leafHash := leaf.TapHash()
	disasm, err := txscript.DisasmString(leaf.Script)
	if err != nil {
		disasm = fmt.Sprintf("<%v>", err)
	}

	fmt.Fprintf(out, "leaf version: %#02x\n", uint8(leaf.Version))
	fmt.Fprintf(out, "script: %x\n", leaf.Script)
	fmt.Fprintf(out, "disasm: %s\n", disasm)
	fmt.Fprintf(out, "leaf hash: %x\n", leafHash[:])
	fmt.Fprintf(out, "control block: %x\n", cb.Bytes())

	return nil
}

// Usage overrides the usage display for the command.
func (cmd *controlBlockCmd) Usage() string {
	return "--internalkey=<key> --shape=<json> --leaf=<index>"
}
