// Package region implements the descriptor regions a plugin exposes to the
// host loader.
//
// A plugin declares itself through three named regions that the loader scans
// before and during module load:
//
//   - Metadata: "name=value\0" ASCII records (plugin identity, framework
//     version, diagnostic strings).
//   - Hooks: fixed-size (hook type, target) records, one per lifecycle
//     subscription.
//   - LoadEntries: fixed-size function-interception records, each carrying a
//     mutable original-function slot the loader fills before plugin
//     initialization runs.
//
// On the original target the regions are dedicated linker sections populated
// at link time. Here they are explicit registries populated during process
// start-up, before the loader is handed control; Seal marks the end of
// population, after which any append is a programming error and panics. This
// ordering is the one synchronization guarantee of the whole subsystem: the
// loader never observes a partially built region.
//
// Record layouts use big-endian byte order, matching the target console.
package region
