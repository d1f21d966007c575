// Copyright (c) 2015-2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"io"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/lwhile/mastering-taproot/internal/log"
)

const (
	// appName is the name of the application.
	appName = "tapctl"
)

// out is where commands write their results.
var out io.Writer = os.Stdout

// newParser returns the command parser with the global options and every
// command registered.
func newParser() (*flags.Parser, error) {
	// Setup the parser options and commands.
	parserFlags := flags.Options(flags.HelpFlag | flags.PassDoubleDash)
	parser := flags.NewNamedParser(appName, parserFlags)
	_, err := parser.AddGroup("Global Options", "", cfg)
	if err != nil {
		return nil, err
	}

	commands := []struct {
		name, short, long string
		data              interface{}
	}{
		{
			"address",
			"Derive the output key and address of a tree",
			"Derive the tweaked output key, its parity, the merkle " +
				"root and the segwit v1 address committing to a " +
				"script tree",
			&addressCfg,
		},
		{
			"controlblock",
			"Build the control block of a tree leaf",
			"Build the serialized control block proving the leaf " +
				"at the passed index of a script tree",
			&controlBlockCfg,
		},
		{
			"verify",
			"Verify a control block against an output key",
			"Verify that a control block proves a leaf script to " +
				"be committed to by an output key or address",
			&verifyCfg,
		},
	}
	for _, c := range commands {
		_, err := parser.AddCommand(c.name, c.short, c.long, c.data)
		if err != nil {
			return nil, err
		}
	}

	return parser, nil
}

// runArgs parses the passed arguments and invokes the Execute function of
// the selected command.
func runArgs(parser *flags.Parser, args []string) error {
	_, err := parser.ParseArgs(args)
	return err
}

// realMain is the real main function for the utility.  It is necessary to
// work around the fact that deferred functions do not run when os.Exit() is
// called.
func realMain() error {
	defer log.CloseLogRotator()

	parser, err := newParser()
	if err != nil {
		return err
	}

	// Parse command line and invoke the Execute function for the specified
	// command.
	err = runArgs(parser, os.Args[1:])
	switch {
	case err == nil, errors.Is(err, errInfoShown):
		return nil

	default:
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			parser.WriteHelp(os.Stderr)
		} else {
			log.TctlLog.Error(err)
		}

		return err
	}
}

func main() {
	if err := realMain(); err != nil {
		os.Exit(1)
	}
}
