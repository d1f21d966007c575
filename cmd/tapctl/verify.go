// Copyright (c) 2015-2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/lwhile/mastering-taproot/internal/log"
	"github.com/lwhile/mastering-taproot/taproot"
)

// verifyCmd defines the configuration options for the verify command.
type verifyCmd struct {
	OutputKey    string `long:"outputkey" description:"x-only output key as hex"`
	Address      string `long:"address" description:"Segwit v1 address holding the output key"`
	Script       string `long:"script" description:"Leaf script as hex" required:"true"`
	ControlBlock string `long:"controlblock" description:"Serialized control block as hex" required:"true"`
	LeafVersion  uint8  `long:"leafversion" description:"Leaf version of the script" default:"192"`
}

var (
	// verifyCfg defines the configuration options for the command.
	verifyCfg = verifyCmd{}
)

// outputKey returns the x-only output key given either directly or through
// an address.
func (cmd *verifyCmd) outputKey() ([]byte, error) {
	switch {
	case cmd.OutputKey != "" && cmd.Address != "":
		return nil, errors.New("outputkey and address can't be used " +
			"together")

	case cmd.OutputKey != "":
		key, err := hex.DecodeString(cmd.OutputKey)
		if err != nil {
			return nil, fmt.Errorf("invalid output key: %w", err)
		}
		if len(key) != schnorr.PubKeyBytesLen {
			return nil, fmt.Errorf("output key must be %d bytes, "+
				"got %d", schnorr.PubKeyBytesLen, len(key))
		}

		return key, nil

	case cmd.Address != "":
		addr, err := btcutil.DecodeAddress(cmd.Address, activeNetParams)
		if err != nil {
			return nil, err
		}
		if !addr.IsForNet(activeNetParams) {
			return nil, fmt.Errorf("address %s is not for network %s",
				cmd.Address, activeNetParams.Name)
		}
		taprootAddr, ok := addr.(*btcutil.AddressTaproot)
		if !ok {
			return nil, fmt.Errorf("address %s is not a taproot "+
				"address", cmd.Address)
		}

		return taprootAddr.WitnessProgram(), nil
	}

	return nil, errors.New("one of outputkey or address is required")
}

// Execute is the main entry point for the command.  It's invoked by the parser.
func (cmd *verifyCmd) Execute(args []string) error {
	// Setup the global config options and ensure they are valid.
	if err := setupGlobalConfig(); err != nil {
		return err
	}

	outputKey, err := cmd.outputKey()
	if err != nil {
		return err
	}
	script, err := hex.DecodeString(cmd.Script)
	if err != nil {
		return fmt.Errorf("invalid script: %w", err)
	}
	rawControlBlock, err := hex.DecodeString(cmd.ControlBlock)
	if err != nil {
		return fmt.Errorf("invalid control block: %w", err)
	}

	cb, err := taproot.ParseControlBlock(rawControlBlock)
	if err != nil {
		return err
	}

	version := taproot.LeafVersion(cmd.LeafVersion)
	if err := cb.Verify(outputKey, script, version); err != nil {
		return err
	}

	log.TctlLog.Debugf("Control block of %d nodes verified",
		len(cb.InclusionPath))

	fmt.Fprintln(out, "valid")

	return nil
}

// Usage overrides the usage display for the command.
func (cmd *verifyCmd) Usage() string {
	return "(--outputkey=<hex> | --address=<addr>) --script=<hex> " +
		"--controlblock=<hex> [--leafversion=<version>]"
}
