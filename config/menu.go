package config

import (
	"fmt"
	"sync"

	"github.com/halcyonic/pluginkit/storage"
)

// BuildFunc produces the settings tree for one open event. It is called on
// every open; the returned nodes are attached to the root handle and
// discarded on close.
type BuildFunc func() []Node

// The process-wide menu registration. The host fires config-init at most
// once per process, and a plugin registers at most one settings entry, so
// both bindings are one-time.
var menu struct {
	mu         sync.Mutex
	host       Host
	registered bool
	name       string
	build      BuildFunc
}

// BindHost installs the loader-provided config host. The config-init hook
// calls this; the first binding wins and later calls are no-ops, matching
// the at-most-once contract of the hook.
func BindHost(h Host) {
	menu.mu.Lock()
	defer menu.mu.Unlock()
	if menu.host == nil {
		menu.host = h
	}
}

// Register wires the plugin's settings entry: name is the top-level menu
// title, build produces the tree on every open. Register must run after the
// config-init hook has bound the host (in practice, from the plugin's init
// hook) and may only be called once.
func Register(name string, build BuildFunc) error {
	if name == "" || build == nil {
		return fmt.Errorf("%w: menu name and build func are required", ErrInvalidArgument)
	}
	if err := checkText(name); err != nil {
		return err
	}

	// The registration slot is reserved before calling into the host: a host
	// may fire the open callback synchronously from Init, and menuOpened
	// takes the same mutex.
	menu.mu.Lock()
	if menu.host == nil {
		menu.mu.Unlock()
		return ErrUninitialized
	}
	if menu.registered {
		menu.mu.Unlock()
		return ErrAlreadyRegistered
	}
	host := menu.host
	menu.registered = true
	menu.name = name
	menu.build = build
	menu.mu.Unlock()

	status := host.Init(InitOptions{Name: name}, menuOpened, menuClosed)
	if err := errFromStatus(status); err != nil {
		menu.mu.Lock()
		menu.registered = false
		menu.name = ""
		menu.build = nil
		menu.mu.Unlock()
		return fmt.Errorf("register menu %q: %w", name, err)
	}
	return nil
}

// menuOpened is the open callback handed to the host: rebuild the tree and
// attach it to the fresh root handle. Any attach failure is reported to the
// host as a callback error; the host owns the user-visible handling.
func menuOpened(root CategoryHandle) int32 {
	menu.mu.Lock()
	h := menu.host
	build := menu.build
	menu.mu.Unlock()

	if h == nil || build == nil {
		return CallbackResultError
	}
	for _, node := range build() {
		if err := node.attach(h, root); err != nil {
			return CallbackResultError
		}
	}
	return CallbackResultSuccess
}

// menuClosed flushes pending storage writes. The flush is best-effort: the
// close callback has no way to report failure to the host.
func menuClosed() {
	_ = storage.Save(false)
}
