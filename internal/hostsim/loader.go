// Package hostsim is a reference implementation of the host side of the
// plugin contract, used by tests and the demo binary. It scans the sealed
// descriptor regions, completes the interception table, fires hooks in
// canonical order, and supplies the storage backend and config host
// collaborators. It is not the production loader.
package hostsim

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/halcyonic/pluginkit/config"
	"github.com/halcyonic/pluginkit/hook"
	"github.com/halcyonic/pluginkit/patch"
	"github.com/halcyonic/pluginkit/region"
	"github.com/halcyonic/pluginkit/storage"
)

// Options configures a Loader.
type Options struct {
	// Log receives loader diagnostics. Defaults to a no-op logger.
	Log *zap.Logger

	// StoragePath is the JSON store location; empty keeps the store in
	// memory.
	StoragePath string

	// Symbols maps intercepted symbol names to the real functions whose
	// addresses the loader writes into the original slots.
	Symbols map[string]any

	// Runtime maps runtime support symbol names to their implementations.
	Runtime map[string]func()
}

// Loader drives one plugin through its lifecycle against simulated host
// services.
type Loader struct {
	log     *zap.Logger
	opts    Options
	meta    map[string]string
	backend *FileBackend
	menu    *ConfigHost
	loaded  bool
}

// NewLoader creates a loader.
func NewLoader(opts Options) *Loader {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{log: log, opts: opts}
}

// Canonical hook firing orders.
var (
	initOrder = []hook.Type{
		hook.InitMalloc, hook.InitNewlib, hook.InitStdcpp,
		hook.InitDevoptab, hook.InitSockets,
	}
	finiOrder = []hook.Type{
		hook.FiniSockets, hook.FiniDevoptab, hook.FiniStdcpp,
		hook.FiniNewlib, hook.FiniMalloc,
	}
)

// Load seals the descriptor regions, scans them, completes the interception
// table, and fires the initialization hooks. After Load returns, every
// interception entry is Active and the plugin is running.
func (l *Loader) Load() error {
	if l.loaded {
		return fmt.Errorf("hostsim: already loaded")
	}

	region.SealAll()

	recs, err := region.ParseMetadata(region.Metadata.Bytes())
	if err != nil {
		return fmt.Errorf("hostsim: metadata region: %w", err)
	}
	l.meta = make(map[string]string, len(recs))
	for _, rec := range recs {
		l.meta[rec.Name] = rec.Value
	}
	if l.meta["name"] == "" {
		return fmt.Errorf("hostsim: plugin has no name record")
	}
	l.log.Info("loading plugin",
		zap.String("name", l.meta["name"]),
		zap.String("version", l.meta["version"]),
		zap.String("framework", l.meta["framework"]),
		zap.Int("hooks", len(hook.Default.Descriptors())),
		zap.Int("load_entries", patch.Default.Len()),
	)

	// The probe answers the magic before any hook fires; the init wrapper
	// aborts the plugin when it cannot see it.
	hook.Default.SetProbe(func(key uint32) uint32 {
		if key == hook.ProbeKey {
			return hook.ProbeMagic
		}
		return 0
	})
	hook.Default.BindRuntime(l.runtimeSymbols())

	// Original slots are completed before any plugin code runs.
	if err := patch.Default.FillFrom(l.opts.Symbols); err != nil {
		return err
	}

	if id := l.meta["storage_id"]; id != "" {
		l.backend, err = NewFileBackend(l.opts.StoragePath, id, l.log)
		if err != nil {
			return err
		}
	}
	l.menu = NewConfigHost(l.log)

	for _, t := range initOrder {
		if err := l.fire(t); err != nil {
			return err
		}
	}
	for _, t := range []hook.Type{hook.InitWrapper, hook.InitStorage, hook.InitConfig, hook.InitPlugin} {
		if err := l.fire(t); err != nil {
			return err
		}
	}
	patch.Default.Activate()

	l.loaded = true
	l.log.Info("plugin loaded", zap.String("name", l.meta["name"]))
	return nil
}

// Shutdown fires the teardown hooks and flushes the store.
func (l *Loader) Shutdown() error {
	if !l.loaded {
		return fmt.Errorf("hostsim: not loaded")
	}
	for _, t := range []hook.Type{hook.DeinitPlugin, hook.FiniWrapper} {
		if err := l.fire(t); err != nil {
			return err
		}
	}
	for _, t := range finiOrder {
		if err := l.fire(t); err != nil {
			return err
		}
	}
	if l.backend != nil {
		if status := l.backend.Save(true); status != storage.StatusOK {
			return fmt.Errorf("hostsim: final save failed with status %d", status)
		}
	}
	l.loaded = false
	l.log.Info("plugin unloaded", zap.String("name", l.meta["name"]))
	return nil
}

// Application lifecycle events.

// StartApplication fires the application-start hooks.
func (l *Loader) StartApplication() error { return l.fire(hook.ApplicationStarts) }

// RequestExit fires the exit-requested hooks.
func (l *Loader) RequestExit() error { return l.fire(hook.ApplicationRequestsExit) }

// EndApplication fires the application-end hooks.
func (l *Loader) EndApplication() error { return l.fire(hook.ApplicationEnds) }

// AcquireForeground fires the foreground-acquired hooks.
func (l *Loader) AcquireForeground() error { return l.fire(hook.AcquiredForeground) }

// ReleaseForeground fires the foreground-released hooks.
func (l *Loader) ReleaseForeground() error { return l.fire(hook.ReleaseForeground) }

// Meta returns the parsed metadata records, last record winning per name.
func (l *Loader) Meta() map[string]string { return l.meta }

// Backend returns the storage backend, nil when the plugin declared no
// storage.
func (l *Loader) Backend() *FileBackend { return l.backend }

// Menu returns the simulated config host.
func (l *Loader) Menu() *ConfigHost { return l.menu }

// runtimeSymbols builds the runtime support symbol table: a no-op for every
// standard runtime library, overlaid with caller-provided implementations.
// The host always links the standard runtimes, so their init and fini
// symbols are never absent.
func (l *Loader) runtimeSymbols() map[string]func() {
	nop := func() {}
	table := make(map[string]func())
	for _, name := range []string{"malloc", "newlib", "stdcpp", "devoptab", "sockets"} {
		table["__init_"+name] = nop
		table["__fini_"+name] = nop
	}
	for name, fn := range l.opts.Runtime {
		table[name] = fn
	}
	return table
}

// fire invokes every target registered for t. Target signatures follow the
// per-type contract: plain func() except for the storage-init and
// config-init hooks, which receive their collaborator.
func (l *Loader) fire(t hook.Type) error {
	for _, target := range hook.Default.Targets(t) {
		l.log.Debug("firing hook", zap.Stringer("type", t))
		switch fn := target.(type) {
		case func():
			fn()
		case func(storage.Backend):
			if l.backend == nil {
				return fmt.Errorf("hostsim: %s hook registered but plugin declared no storage id", t)
			}
			fn(l.backend)
		case func(config.Host):
			fn(l.menu)
		default:
			return fmt.Errorf("hostsim: %s hook target has unsupported signature %T", t, target)
		}
	}
	return nil
}
