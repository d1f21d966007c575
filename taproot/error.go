// Copyright (c) 2013-2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package taproot

// ErrorKind identifies a kind of error.  It has full support for errors.Is
// and errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific Error.
const (
	// ErrInvalidTreeShape is returned when a tree shape node has an arity
	// other than zero (leaf) or two (branch), carries both a leaf and
	// children, or when a node is reachable more than once from the root.
	ErrInvalidTreeShape = ErrorKind("ErrInvalidTreeShape")

	// ErrInvalidLeafVersion is returned when a leaf version has its low
	// bit set.  That bit is reserved for the output key parity in the
	// control block.
	ErrInvalidLeafVersion = ErrorKind("ErrInvalidLeafVersion")

	// ErrLeafIndexOutOfRange is returned when a leaf index does not name a
	// leaf of the tree in depth-first, left-to-right order.
	ErrLeafIndexOutOfRange = ErrorKind("ErrLeafIndexOutOfRange")

	// ErrMalformedControlBlock is returned when a serialized control block
	// has an invalid length or an invalid internal key.
	ErrMalformedControlBlock = ErrorKind("ErrMalformedControlBlock")

	// ErrControlBlockVerificationFailed is returned when the root or
	// output key recomputed from a control block does not match the
	// expected output key and parity.
	ErrControlBlockVerificationFailed = ErrorKind(
		"ErrControlBlockVerificationFailed",
	)

	// ErrInvalidTweak is returned when a tweak scalar overflows the curve
	// order or when tweaking yields the point at infinity or a zero
	// private key.
	ErrInvalidTweak = ErrorKind("ErrInvalidTweak")

	// ErrUnsupportedSighashType is returned when a signature hash type is
	// requested that the sighash engine does not implement.
	ErrUnsupportedSighashType = ErrorKind("ErrUnsupportedSighashType")

	// ErrInvalidInputIndex is returned when a signature hash is requested
	// for an input that does not exist in the transaction.
	ErrInvalidInputIndex = ErrorKind("ErrInvalidInputIndex")

	// ErrMissingPrevOut is returned when the previous output of an input
	// being committed to is not known to the output fetcher.
	ErrMissingPrevOut = ErrorKind("ErrMissingPrevOut")

	// ErrWrongInternalKey is returned when a key path spend is requested
	// with a private key that does not belong to the internal key.
	ErrWrongInternalKey = ErrorKind("ErrWrongInternalKey")

	// ErrUnknownSpendPath is returned when a witness is requested for a
	// spend path that is neither the key path nor a script path.
	ErrUnknownSpendPath = ErrorKind("ErrUnknownSpendPath")

	// ErrNoKeys is returned when a multisig leaf script is requested
	// without any keys.
	ErrNoKeys = ErrorKind("ErrNoKeys")

	// ErrInvalidThreshold is returned when a multisig threshold is not in
	// the range [1, number of keys].
	ErrInvalidThreshold = ErrorKind("ErrInvalidThreshold")

	// ErrInvalidSequence is returned for a relative timelock outside the
	// block based range of BIP 68, or one of zero blocks.
	ErrInvalidSequence = ErrorKind("ErrInvalidSequence")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies an error related to taproot commitments and spends.  It
// has full support for errors.Is and errors.As, so the caller can ascertain
// the specific reason for the error by checking the underlying error.
type Error struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// MakeError creates an Error given a set of arguments.  It is exported so
// the sighash and spend packages report failures with the same kinds.
func MakeError(kind ErrorKind, desc string) Error {
	return Error{Err: kind, Description: desc}
}
