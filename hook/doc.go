// Package hook registers lifecycle hook descriptors for the host loader.
//
// Each call to Register produces exactly one descriptor pairing an enumerated
// hook type with a callable target. The loader scans the aggregate set in
// whatever order the hooks region yields; no hook's correctness may depend on
// being scanned before or after a hook of a different type, and same-type
// ordering is undefined. Duplicate (type, target) pairs collapse to a single
// descriptor, so the set is stable under re-registration and re-ordering.
//
// Most hook targets are plain func(). The storage-init and config-init hooks
// instead receive the loader-provided collaborator (a storage backend or a
// config host); the target's signature must match what the loader expects for
// the hook type, and a mismatch is undefined behavior at the boundary rather
// than something this layer detects.
//
// The registry also carries two loader-installed facilities used by the
// standard runtime hooks: a table of runtime support symbols (BindRuntime)
// and the linking-order probe (SetProbe) the init wrapper consults before the
// plugin's own initialization runs.
package hook
