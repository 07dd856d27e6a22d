package patch

import (
	"fmt"
	"os"
	"reflect"
	"sync"

	"github.com/halcyonic/pluginkit/region"
)

// fatalf aborts the process with a diagnostic. A missing original function
// means the host failed to complete linking; no caller exists that could
// recover, so this never returns. Swappable for tests, which install a
// panicking handler they can recover from.
var fatalf = func(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// Entry is one function interception, generic over the function type F. The
// replacement and the original slot both have type F, so a signature mismatch
// between wrapper and replaced function is a compile error.
type Entry[F any] struct {
	kind    Kind
	library Library
	symbol  string
	name    string
	process Process

	replacement F

	mu       sync.Mutex
	original *F
	state    State
}

// Options adjusts how an entry is declared. The zero value declares a
// mandatory entry scoped to all processes with the conventional replacement
// name ("my_" + symbol).
type Options struct {
	Kind    Kind
	Process Process
	Name    string
}

// Replace declares an interception of library/symbol in the process-wide
// table. F must be a func type; anything else is a declaration defect and
// panics.
func Replace[F any](library Library, symbol string, replacement F) *Entry[F] {
	return ReplaceEx(Default, library, symbol, replacement, Options{})
}

// ReplaceEx declares an interception in an explicit table with options.
func ReplaceEx[F any](t *Table, library Library, symbol string, replacement F, opts Options) *Entry[F] {
	if reflect.TypeOf((*F)(nil)).Elem().Kind() != reflect.Func {
		panic(fmt.Sprintf("patch: replacement for %q must be a func type, got %v", symbol, reflect.TypeOf((*F)(nil)).Elem()))
	}
	if symbol == "" {
		panic("patch: symbol must not be empty")
	}
	name := opts.Name
	if name == "" {
		name = "my_" + symbol
	}

	e := &Entry[F]{
		kind:        opts.Kind,
		library:     library,
		symbol:      symbol,
		name:        name,
		process:     opts.Process,
		replacement: replacement,
	}
	t.add(e, region.LoadEntry{
		Kind:            uint32(opts.Kind),
		Symbol:          symbol,
		Library:         uint32(library),
		ReplacementName: name,
		Target:          replacement,
		Slot:            e,
		Process:         uint32(opts.Process),
	})
	return e
}

// Symbol returns the intercepted symbol name.
func (e *Entry[F]) Symbol() string { return e.symbol }

// Library returns the owning system library.
func (e *Entry[F]) Library() Library { return e.library }

// Kind returns the entry kind.
func (e *Entry[F]) Kind() Kind { return e.kind }

// Process returns the target process scope.
func (e *Entry[F]) Process() Process { return e.process }

// State returns the entry's lifecycle state.
func (e *Entry[F]) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Replacement returns the plugin-supplied function.
func (e *Entry[F]) Replacement() F { return e.replacement }

// Original returns the real function the loader bound to this entry. Calling
// it before the loader has filled the slot aborts the process: an empty slot
// at call time is a linking-order defect, never a recoverable condition.
func (e *Entry[F]) Original() F {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.original == nil {
		fatalf("patch: original for %s/%s is not bound; the loader never completed this entry (check module linking order)", e.library, e.symbol)
		panic("patch: fatalf returned")
	}
	return *e.original
}

// Fill implements region.OriginalSlot. The loader writes the real function
// here before the plugin's init hook runs; fn must have the entry's function
// type.
func (e *Entry[F]) Fill(fn any) error {
	f, ok := fn.(F)
	if !ok {
		return fmt.Errorf("patch: original for %q has type %T, want %v", e.symbol, fn, reflect.TypeOf((*F)(nil)).Elem())
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.original = &f
	if e.state == StateUnbound {
		e.state = StateLoaderFilled
	}
	return nil
}

// Filled implements region.OriginalSlot.
func (e *Entry[F]) Filled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.original != nil
}

// activate marks the entry Active once plugin initialization has completed.
// Unbound optional entries stay unbound.
func (e *Entry[F]) activate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateLoaderFilled {
		e.state = StateActive
	}
}
