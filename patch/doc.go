// Package patch declares function interceptions: replacing a system
// function's effective address with a plugin-supplied one while retaining
// access to the original.
//
// Each Replace call produces one load-entry descriptor holding the target
// symbol, the replacement, and a mutable original-function slot. An entry
// moves through three states:
//
//	Unbound       the slot is empty; the entry is visible to the loader
//	LoaderFilled  the loader has written the real function into the slot
//	Active        plugin initialization has completed; wrapper calls are
//	              well-defined
//
// The loader fills every mandatory slot before the plugin's init hook runs.
// Reading a slot that was never filled is a fatal, unrecoverable condition:
// it signals a module linking defect, not a runtime error, so Original aborts
// the process with a diagnostic naming the symbol instead of returning a
// zeroed function.
//
// Entries are generic over the function type. The replacement and the
// original slot share that type, so a wrapper whose signature drifts from the
// function it replaces fails to compile rather than misbehaving at the call
// boundary. How the host physically redirects calls is outside this
// contract.
package patch
