// Package plugin is the declaration surface a plugin uses to describe itself
// to the host loader.
//
// A plugin declares static metadata once, at process start-up, before the
// loader is handed control:
//
//	func init() {
//		plugin.MustDeclare(plugin.Info{
//			Name:    "Screenshot Tool",
//			Version: "1.2.0",
//			Author:  "someone",
//		})
//		plugin.MustUseStorage("screenshot_tool")
//		plugin.OnInit(setup)
//		plugin.OnDeinit(teardown)
//	}
//
// Declare emits the metadata records and registers the standard hook set:
// the runtime support pairs (malloc, newlib, stdcpp, devoptab), the weak
// socket pair, the init/fini wrappers, and the config-subsystem init hook.
// UseStorage adds the storage-init hook that binds the storage layer to the
// loader-provided backend. OnInit, OnDeinit and the application lifecycle
// subscriptions each add one hook descriptor.
//
// All of this populates the descriptor regions in the region package; the
// loader seals and scans them at module load. Nothing here runs plugin code:
// execution is driven entirely by the loader firing hooks.
package plugin
