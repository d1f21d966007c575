// Copyright (c) 2013-2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package taproot

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// LeafVersion represents the version of a tapscript leaf.  Leaf versions are
// used to define, or introduce new script semantics, under the base taproot
// execution model.  The low bit is never part of a leaf version as it carries
// the output key parity inside a control block.
type LeafVersion uint8

const (
	// BaseLeafVersion is the base tapscript leaf version.  The semantics
	// of this version are defined in BIP 342.
	BaseLeafVersion LeafVersion = 0xc0

	// LeafVersionMask masks the leaf version out of the first byte of a
	// control block.
	LeafVersionMask = 0xfe
)

// Valid returns whether the leaf version leaves the parity bit clear.
func (v LeafVersion) Valid() bool {
	return byte(v)&^LeafVersionMask == 0
}

// ScriptLeaf is a single alternative spending script committed to in a
// tapscript tree.  The leaf is identified by its version and script.  A
// ScriptLeaf is immutable once constructed: the constructors copy the script
// and no method modifies it.
type ScriptLeaf struct {
	// Version is the leaf version of the script.
	Version LeafVersion

	// Script is the serialized script.  It is opaque to this package.
	Script []byte
}

// NewScriptLeaf returns a new leaf with the given version committing to a
// copy of the passed script.
func NewScriptLeaf(version LeafVersion, script []byte) (ScriptLeaf, error) {
	if !version.Valid() {
		str := fmt.Sprintf("leaf version %#02x has the parity bit set",
			uint8(version))
		return ScriptLeaf{}, MakeError(ErrInvalidLeafVersion, str)
	}

	return ScriptLeaf{
		Version: version,
		Script:  bytes.Clone(script),
	}, nil
}

// NewBaseLeaf returns a new leaf for the specified script using the base
// leaf version (BIP 342).
func NewBaseLeaf(script []byte) ScriptLeaf {
	return ScriptLeaf{
		Version: BaseLeafVersion,
		Script:  bytes.Clone(script),
	}
}

// TapHash returns the tapleaf hash of the leaf:
//
//	h_tapleaf(version || compactSize(script) || script)
func (l ScriptLeaf) TapHash() chainhash.Hash {
	return tapLeafHash(l.Version, l.Script)
}

// Copy returns a leaf with the same version and its own copy of the script.
func (l ScriptLeaf) Copy() ScriptLeaf {
	return ScriptLeaf{
		Version: l.Version,
		Script:  bytes.Clone(l.Script),
	}
}

// Equal reports whether both leaves have the same version and script.
func (l ScriptLeaf) Equal(other ScriptLeaf) bool {
	return l.Version == other.Version && bytes.Equal(l.Script, other.Script)
}
