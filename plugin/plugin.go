package plugin

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/halcyonic/pluginkit/hook"
	"github.com/halcyonic/pluginkit/region"
	"github.com/halcyonic/pluginkit/storage"
)

// FrameworkVersion is recorded in the metadata region so the loader can
// check plugin-side protocol compatibility.
const FrameworkVersion = "0.8.1"

// Declaration errors.
var (
	// ErrAlreadyDeclared is returned when Declare is called twice.
	ErrAlreadyDeclared = errors.New("plugin: already declared")

	// ErrMissingName is returned when the declaration has no name.
	ErrMissingName = errors.New("plugin: name is required")

	// ErrInvalidStorageID is returned for an unusable storage id.
	ErrInvalidStorageID = errors.New("plugin: invalid storage id")
)

// fatalf aborts the process. Used for linking defects detected inside
// standard hooks, where no caller exists that could recover. Swappable for
// tests.
var fatalf = func(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// Info is the plugin's static identity. Name is required; an empty Version
// defaults to "0.0.0".
type Info struct {
	Name           string
	Version        string
	Author         string
	License        string
	Description    string
	ConfigRevision string
}

var declare struct {
	mu   sync.Mutex
	done bool
	name string
}

// Declare emits the plugin's metadata records and registers the standard
// hook set. It must be called exactly once, at process start-up.
func Declare(info Info) error {
	if info.Name == "" {
		return ErrMissingName
	}
	if strings.ContainsRune(info.Name, 0) {
		return fmt.Errorf("%w: name contains NUL byte", ErrMissingName)
	}
	if info.Version == "" {
		info.Version = "0.0.0"
	}

	declare.mu.Lock()
	defer declare.mu.Unlock()
	if declare.done {
		return ErrAlreadyDeclared
	}

	// Records are staged first so a rejected declaration leaves the real
	// region untouched and a corrected retry starts clean.
	staged := region.NewMetaRegion()
	if err := staged.Emit("name", info.Name); err != nil {
		return err
	}
	if err := staged.Emit("framework", FrameworkVersion); err != nil {
		return err
	}
	if err := staged.Emit("buildtimestamp", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	for _, rec := range []struct{ name, value string }{
		{"version", info.Version},
		{"author", info.Author},
		{"license", info.License},
		{"description", info.Description},
		{"config_revision", info.ConfigRevision},
	} {
		if rec.value == "" {
			continue
		}
		if err := staged.Emit(rec.name, rec.value); err != nil {
			return err
		}
	}
	if err := staged.Emit("info_dump",
		fmt.Sprintf("(plugin: %s; framework: %s)", info.Name, FrameworkVersion)); err != nil {
		return err
	}
	if err := staged.Emit("info_linking_order", linkingOrderMessage(info.Name)); err != nil {
		return err
	}
	for _, rec := range staged.Records() {
		if err := region.Metadata.Emit(rec.Name, rec.Value); err != nil {
			return err
		}
	}

	registerStandardHooks(info.Name)

	declare.done = true
	declare.name = info.Name
	return nil
}

// MustDeclare is Declare but panics on failure. Declarations run at process
// start-up, where a failure is a build defect.
func MustDeclare(info Info) {
	if err := Declare(info); err != nil {
		panic(err)
	}
}

// OnInit subscribes fn to the plugin-init hook. The loader fires it after
// every interception entry has been completed.
func OnInit(fn func()) {
	hook.Register(hook.InitPlugin, fn)
}

// OnDeinit subscribes fn to the plugin-deinit hook.
func OnDeinit(fn func()) {
	hook.Register(hook.DeinitPlugin, fn)
}

// OnApplicationStarts subscribes fn to application start transitions.
func OnApplicationStarts(fn func()) {
	hook.Register(hook.ApplicationStarts, fn)
}

// OnApplicationRequestsExit subscribes fn to application exit requests.
func OnApplicationRequestsExit(fn func()) {
	hook.Register(hook.ApplicationRequestsExit, fn)
}

// OnApplicationEnds subscribes fn to application exit.
func OnApplicationEnds(fn func()) {
	hook.Register(hook.ApplicationEnds, fn)
}

// OnAcquiredForeground subscribes fn to foreground acquisition.
func OnAcquiredForeground(fn func()) {
	hook.Register(hook.AcquiredForeground, fn)
}

// OnReleaseForeground subscribes fn to foreground release.
func OnReleaseForeground(fn func()) {
	hook.Register(hook.ReleaseForeground, fn)
}

// UseStorage declares the plugin's persistent store: id names the store on
// the host side, and the registered storage-init hook binds the storage
// layer to the loader-provided backend.
func UseStorage(id string) error {
	if id == "" || len(id) > 64 || strings.ContainsRune(id, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidStorageID, id)
	}
	if err := region.Metadata.Emit("storage_id", id); err != nil {
		return err
	}
	hook.Register(hook.InitStorage, func(b storage.Backend) {
		// The hook may be re-fired if the loader restarts the plugin
		// in-process; the first binding stays authoritative.
		if err := storage.Init(b); err != nil && !errors.Is(err, storage.ErrAlreadyInitialized) {
			fatalf("plugin: storage init failed: %v", err)
		}
	})
	return nil
}

// MustUseStorage is UseStorage but panics on failure.
func MustUseStorage(id string) {
	if err := UseStorage(id); err != nil {
		panic(err)
	}
}

func linkingOrderMessage(name string) string {
	return fmt.Sprintf("Loading %s failed. The runtime probe returned an unexpected value. Please check the module linking order.", name)
}
