// Copyright (c) 2015-2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"github.com/lwhile/mastering-taproot/internal/log"
	"github.com/lwhile/mastering-taproot/internal/version"
	"github.com/lwhile/mastering-taproot/taproot"
)

const (
	defaultLogFilename = "tapctl.log"
	defaultDebugLevel  = "info"
)

var (
	activeNetParams = &chaincfg.MainNetParams

	// Default global config.
	cfg = defaultConfig()
)

// config defines the global configuration options.
type config struct {
	TestNet3       bool   `long:"testnet" description:"Use the test network"`
	RegressionTest bool   `long:"regtest" description:"Use the regression test network"`
	SimNet         bool   `long:"simnet" description:"Use the simulation test network"`
	LogDir         string `long:"logdir" description:"Directory to log output, logs only to stderr if empty"`
	ShowVersion    bool   `short:"V" long:"version" description:"Display version information and exit"`
	DebugLevel     string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`
}

// defaultConfig returns the global config with default values.
func defaultConfig() *config {
	return &config{
		DebugLevel: defaultDebugLevel,
	}
}

// netName returns the name used when referring to a bitcoin network.  btcd
// places testnet version 3 data in a directory named "testnet", which does
// not match the Name field of the chaincfg parameters.
func netName(chainParams *chaincfg.Params) string {
	switch chainParams.Net {
	case wire.TestNet3:
		return "testnet"
	default:
		return chainParams.Name
	}
}

// setupGlobalConfig examine the global configuration options for any conditions
// which are invalid as well as performs any addition setup necessary after the
// initial parse.
func setupGlobalConfig() error {
	if cfg.ShowVersion {
		fmt.Fprintln(out, appName, "version", version.String())
		return errInfoShown
	}

	// Multiple networks can't be selected simultaneously.  Count number
	// of network flags passed; assign active network params while we're
	// at it.
	activeNetParams = &chaincfg.MainNetParams
	numNets := 0
	if cfg.TestNet3 {
		numNets++
		activeNetParams = &chaincfg.TestNet3Params
	}
	if cfg.RegressionTest {
		numNets++
		activeNetParams = &chaincfg.RegressionNetParams
	}
	if cfg.SimNet {
		numNets++
		activeNetParams = &chaincfg.SimNetParams
	}
	if numNets > 1 {
		return errors.New("the testnet, regtest, and simnet params " +
			"can't be used together -- choose one of the three")
	}

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Fprintln(out, "Supported subsystems", log.SupportedSubsystems())
		return errInfoShown
	}

	if err := log.ParseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		return err
	}

	// Logs are namespaced per network like btcd does.
	if cfg.LogDir != "" {
		logFile := filepath.Join(
			cfg.LogDir, netName(activeNetParams), defaultLogFilename,
		)
		if err := log.InitLogRotator(logFile); err != nil {
			return err
		}
	}

	return nil
}

// errInfoShown stops the command after the version or the supported
// subsystems were printed.
var errInfoShown = errors.New("information shown")

// parseKey parses a public key given as WIF private key, 32-byte x-only hex
// or 33-byte compressed hex.
func parseKey(s string) (*btcec.PublicKey, error) {
	if wif, err := btcutil.DecodeWIF(s); err == nil {
		if !wif.IsForNet(activeNetParams) {
			return nil, fmt.Errorf("private key is not for network %s",
				activeNetParams.Name)
		}

		return wif.PrivKey.PubKey(), nil
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("key is neither WIF nor hex: %w", err)
	}

	switch len(raw) {
	case schnorr.PubKeyBytesLen:
		return schnorr.ParsePubKey(raw)

	case btcec.PubKeyBytesLenCompressed:
		return btcec.ParsePubKey(raw)
	}

	return nil, fmt.Errorf("key of %d bytes is neither x-only nor "+
		"compressed", len(raw))
}

// shapeOptions are the options shared by commands operating on a tree.
type shapeOptions struct {
	InternalKey string `short:"k" long:"internalkey" description:"Internal key as WIF, x-only hex or compressed hex" required:"true"`
	Shape       string `short:"s" long:"shape" unquote:"false" description:"Tree shape as JSON: a hex string is a leaf script, an array of two shapes a branch"`
	ShapeFile   string `long:"shapefile" description:"File holding the JSON tree shape"`
}

// load parses the internal key and builds the tree.  No shape at all means
// the key path only commitment.
func (o *shapeOptions) load() (*btcec.PublicKey, *taproot.Tree, error) {
	internalKey, err := parseKey(o.InternalKey)
	if err != nil {
		return nil, nil, err
	}

	if o.Shape != "" && o.ShapeFile != "" {
		return nil, nil, errors.New("shape and shapefile can't be used " +
			"together")
	}

	doc := []byte(o.Shape)
	if o.ShapeFile != "" {
		doc, err = os.ReadFile(o.ShapeFile)
		if err != nil {
			return nil, nil, err
		}
	}

	var shape taproot.Shape
	if len(doc) != 0 {
		if err := json.Unmarshal(doc, &shape); err != nil {
			return nil, nil, fmt.Errorf("invalid shape: %w", err)
		}
	}

	tree, err := taproot.Build(shape)
	if err != nil {
		return nil, nil, err
	}

	log.TctlLog.Debugf("Loaded tree with %d leaves", tree.NumLeaves())

	return internalKey, tree, nil
}
