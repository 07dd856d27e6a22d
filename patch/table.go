package patch

import (
	"errors"
	"fmt"
	"sync"

	"github.com/halcyonic/pluginkit/region"
)

// Interception table errors.
var (
	// ErrSymbolUnresolved is returned when a mandatory symbol is missing from
	// the loader's symbol table.
	ErrSymbolUnresolved = errors.New("patch: mandatory symbol unresolved")

	// ErrDuplicateSymbol is returned when the same symbol is intercepted
	// twice in one table.
	ErrDuplicateSymbol = errors.New("patch: symbol already intercepted")
)

// tableEntry is the type-erased view of an Entry the table works with.
type tableEntry interface {
	Symbol() string
	Kind() Kind
	State() State
	Fill(fn any) error
	Filled() bool
	activate()
}

// Table owns the interception entries of one plugin and emits their
// descriptors into a load-entries region.
type Table struct {
	mu      sync.Mutex
	region  *region.LoadEntryRegion
	entries []tableEntry
}

// NewTable creates a table emitting into the given region.
func NewTable(r *region.LoadEntryRegion) *Table {
	return &Table{region: r}
}

// Default is the process-wide table, bound to the process-wide load-entries
// region.
var Default = NewTable(region.LoadEntries)

func (t *Table) add(e tableEntry, rec region.LoadEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, existing := range t.entries {
		if existing.Symbol() == e.Symbol() {
			panic(fmt.Sprintf("%v: %q", ErrDuplicateSymbol, e.Symbol()))
		}
	}
	t.entries = append(t.entries, e)
	t.region.Append(rec)
}

// Len returns the number of declared entries.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// FillFrom completes the table from the loader's symbol table: every entry's
// original slot is filled with symbols[entry.Symbol()]. A missing mandatory
// symbol or a type mismatch fails the load; a missing optional symbol leaves
// that entry unbound.
func (t *Table) FillFrom(symbols map[string]any) error {
	t.mu.Lock()
	entries := make([]tableEntry, len(t.entries))
	copy(entries, t.entries)
	t.mu.Unlock()

	for _, e := range entries {
		fn, ok := symbols[e.Symbol()]
		if !ok {
			if e.Kind() == KindMandatory {
				return fmt.Errorf("%w: %q", ErrSymbolUnresolved, e.Symbol())
			}
			continue
		}
		if err := e.Fill(fn); err != nil {
			return err
		}
	}
	return nil
}

// Activate marks every loader-filled entry Active. The loader calls this
// after the plugin's init hook has returned.
func (t *Table) Activate() {
	t.mu.Lock()
	entries := make([]tableEntry, len(t.entries))
	copy(entries, t.entries)
	t.mu.Unlock()

	for _, e := range entries {
		e.activate()
	}
}

// SetFatalHandler replaces the process-abort handler used when an unbound
// original slot is read. The handler must not return; tests install one that
// panics.
func SetFatalHandler(fn func(format string, args ...any)) {
	fatalf = fn
}
