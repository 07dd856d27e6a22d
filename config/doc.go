// Package config builds the plugin's settings menu against the host UI.
//
// The protocol is stateless: whenever the user opens the settings screen the
// host invokes the open callback with a fresh, opaque root category handle.
// The registered build func produces a new node tree on every open; the tree
// is attached node by node to the handle and discarded when the menu closes.
// Nothing of the tree is persisted directly - interactive items read and
// write their values through the storage layer, keyed by the item identifier.
//
// On attach, an interactive item loads its identifier from storage. A missing
// item stores and reports the declared default; a stored value outside the
// item's domain (a Range value outside [min,max], a Select index past the
// option count) is silently substituted with the default rather than
// surfaced as an error.
//
// The host invokes change callbacks as bare function references with no
// captured environment, so each callback recovers the item's identifier from
// the host-provided item structure passed back at call time and stores the
// new value under it. A storage failure inside a change callback is
// deliberately swallowed: the host gives the callback no channel to report
// it. On close, pending storage writes are flushed with Save(force=false).
package config
