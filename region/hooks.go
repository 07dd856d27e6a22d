package region

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"reflect"
	"sync"
)

// HookDescriptor is one fixed-size record in the hooks region: an enumerated
// hook type paired with a callable target. The target's call signature must
// match what the loader expects for the hook type; that obligation sits with
// the registrant, not with this layer.
type HookDescriptor struct {
	Type   uint32
	Target any
}

// HookRegion holds the hook descriptors the loader scans at module load.
type HookRegion struct {
	mu      sync.Mutex
	records []HookDescriptor
	targets *targetTable
	sealed  bool
}

// NewHookRegion creates an empty hooks region.
func NewHookRegion() *HookRegion {
	return &HookRegion{targets: newTargetTable()}
}

// Append adds one descriptor. The target must be a non-nil func value.
// Appending after Seal panics: hook tables are built at process start-up and
// a late append means the loader could observe a partially built table.
func (r *HookRegion) Append(hookType uint32, target any) {
	pc := funcPC(target)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		panic(fmt.Sprintf("region: hooks region sealed, cannot append hook type %d", hookType))
	}
	r.targets.intern(pc, target)
	r.records = append(r.records, HookDescriptor{Type: hookType, Target: target})
}

// Seal freezes the region. Sealing twice is a no-op.
func (r *HookRegion) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Records returns a copy of the descriptors in emission order.
func (r *HookRegion) Records() []HookDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]HookDescriptor, len(r.records))
	copy(out, r.records)
	return out
}

// Bytes renders the region image: a sequence of fixed-size 8-byte records,
// each a big-endian uint32 hook type followed by a uint32 reference into the
// region's target table.
func (r *HookRegion) Bytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	var buf bytes.Buffer
	for _, rec := range r.records {
		idx, _ := r.targets.index(funcPC(rec.Target))
		_ = binary.Write(&buf, binary.BigEndian, uint32(rec.Type))
		_ = binary.Write(&buf, binary.BigEndian, idx)
	}
	return buf.Bytes()
}

// targetTable interns callable targets so serialized records can reference
// them by a stable index instead of a raw code address.
type targetTable struct {
	byPC  map[uintptr]uint32
	funcs []any
}

func newTargetTable() *targetTable {
	return &targetTable{byPC: make(map[uintptr]uint32)}
}

func (t *targetTable) intern(pc uintptr, fn any) uint32 {
	if idx, ok := t.byPC[pc]; ok {
		return idx
	}
	idx := uint32(len(t.funcs))
	t.byPC[pc] = idx
	t.funcs = append(t.funcs, fn)
	return idx
}

func (t *targetTable) index(pc uintptr) (uint32, bool) {
	idx, ok := t.byPC[pc]
	return idx, ok
}

// funcPC returns the code address of a func value, used for interning and
// for duplicate detection. Panics on nil or non-func targets: descriptor
// construction happens at start-up, where a bad target is a build defect.
func funcPC(fn any) uintptr {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		panic(fmt.Sprintf("region: hook target must be a non-nil func, got %T", fn))
	}
	return v.Pointer()
}
