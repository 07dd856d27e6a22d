package hook

import (
	"reflect"
	"sync"

	"github.com/halcyonic/pluginkit/region"
)

// Linking-order probe protocol. The loader stores a magic word in a
// thread-specific slot before firing any hook; the init wrapper reads it back
// through the probe and aborts when the answer is wrong, because that means
// the module was linked against the wrong runtime order.
const (
	ProbeKey   uint32 = 0x13371337
	ProbeMagic uint32 = 0x42424242
)

// Descriptor is one registered hook: a type paired with its callable target.
type Descriptor struct {
	Type   Type
	Target any
}

// Registry builds the hook descriptor set, one descriptor per Register call,
// deduplicated by (type, target). It also holds the loader-installed runtime
// symbol table and linking-order probe consumed by the standard runtime
// hooks.
type Registry struct {
	mu      sync.Mutex
	region  *region.HookRegion
	seen    map[seenKey]struct{}
	runtime map[string]func()
	probe   func(key uint32) uint32
}

type seenKey struct {
	t  Type
	pc uintptr
}

// NewRegistry creates a registry emitting into the given hooks region.
func NewRegistry(r *region.HookRegion) *Registry {
	return &Registry{
		region: r,
		seen:   make(map[seenKey]struct{}),
	}
}

// Register adds one descriptor for (t, target). Registering the same pair
// again is a no-op: the aggregate set contains exactly one descriptor per
// distinct pair regardless of registration order. The target must be a
// non-nil func whose signature matches the loader's expectation for t.
func (r *Registry) Register(t Type, target any) {
	key := seenKey{t: t, pc: targetPC(target)}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.seen[key]; dup {
		return
	}
	r.seen[key] = struct{}{}
	r.region.Append(uint32(t), target)
}

// Descriptors returns the registered set in emission order.
func (r *Registry) Descriptors() []Descriptor {
	recs := r.region.Records()
	out := make([]Descriptor, len(recs))
	for i, rec := range recs {
		out[i] = Descriptor{Type: Type(rec.Type), Target: rec.Target}
	}
	return out
}

// Targets returns the targets registered for one hook type, in emission
// order.
func (r *Registry) Targets(t Type) []any {
	var out []any
	for _, rec := range r.region.Records() {
		if Type(rec.Type) == t {
			out = append(out, rec.Target)
		}
	}
	return out
}

// BindRuntime installs the runtime support symbol table. The loader calls
// this before firing any runtime hook.
func (r *Registry) BindRuntime(symbols map[string]func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runtime = symbols
}

// RuntimeFunc looks up a runtime support symbol. A nil result means the
// symbol is absent; whether that is tolerable depends on the hook (weak
// hooks no-op, required hooks treat it as a linking defect).
func (r *Registry) RuntimeFunc(name string) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runtime[name]
}

// SetProbe installs the linking-order probe.
func (r *Registry) SetProbe(probe func(key uint32) uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.probe = probe
}

// Probe queries the linking-order probe. Without an installed probe every
// query answers zero, which the init wrapper treats as a linking defect.
func (r *Registry) Probe(key uint32) uint32 {
	r.mu.Lock()
	probe := r.probe
	r.mu.Unlock()
	if probe == nil {
		return 0
	}
	return probe(key)
}

// Default is the process-wide registry, bound to the process-wide hooks
// region. Plugin declarations register through it.
var Default = NewRegistry(region.Hooks)

// Register adds a descriptor to the process-wide registry.
func Register(t Type, target any) {
	Default.Register(t, target)
}

// targetPC returns the code address used for duplicate detection. The region
// performs the same validation on append; doing it here keeps a duplicate
// registration from touching the region at all.
func targetPC(fn any) uintptr {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		panic("hook: target must be a non-nil func")
	}
	return v.Pointer()
}
