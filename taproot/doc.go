// Copyright (c) 2013-2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package taproot implements the commitment side of BIP 341 script trees.

A set of spending scripts is arranged into a binary merkle tree whose leaves
are tapleaf hashes and whose branches are lexicographically sorted tapbranch
hashes.  The merkle root is committed to an internal key by tweaking it:

	Q = P + h_taptweak(P || root)*G

Either party may later spend through the key path, signing for Q with the
tweaked private key, or through a script path, revealing one leaf script
together with a control block proving that leaf is part of the committed
tree.

# Trees

Trees are built from a Shape, which describes the nesting of leaves
explicitly.  Shapes can be serialized to JSON so the committing and the
spending side rebuild the exact same tree:

	["<hex script A>", ["<hex script B>", "<hex script C>"]]

Leaves are indexed depth first, left to right.  Hashes are computed lazily and
cached, so a built tree may be shared between goroutines.

# Errors

Errors returned by this package are of type Error and wrap an ErrorKind, so
callers can test for a specific kind with errors.Is.
*/
package taproot
