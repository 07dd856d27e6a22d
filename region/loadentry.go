package region

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
)

// LoadEntrySize is the serialized size of one load-entry record.
const LoadEntrySize = 28

// OriginalSlot is the mutable cell of a load entry. It starts empty and is
// filled by the loader with the real function before the plugin's init hook
// runs.
type OriginalSlot interface {
	// Fill stores the real function. It fails if fn does not have the
	// replacement's type.
	Fill(fn any) error

	// Filled reports whether the loader has completed this entry.
	Filled() bool
}

// LoadEntry is one function-interception record: which system function to
// replace, with what, and in which process scope. Kind, Library and Process
// are enumerated values owned by the patch layer; this layer only carries
// them at wire width.
type LoadEntry struct {
	Kind            uint32
	Symbol          string
	Library         uint32
	ReplacementName string
	Target          any
	Slot            OriginalSlot
	Process         uint32
}

// LoadEntryRegion holds the interception records the loader scans and
// completes at module load.
type LoadEntryRegion struct {
	mu      sync.Mutex
	records []LoadEntry
	targets *targetTable
	sealed  bool
}

// NewLoadEntryRegion creates an empty load-entries region.
func NewLoadEntryRegion() *LoadEntryRegion {
	return &LoadEntryRegion{targets: newTargetTable()}
}

// Append adds one record. Appending after Seal panics, as with hooks.
func (r *LoadEntryRegion) Append(e LoadEntry) {
	pc := funcPC(e.Target)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		panic(fmt.Sprintf("region: load-entries region sealed, cannot append %q", e.Symbol))
	}
	r.targets.intern(pc, e.Target)
	r.records = append(r.records, e)
}

// Seal freezes the region. Sealing twice is a no-op.
func (r *LoadEntryRegion) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Entries returns a copy of the records in emission order. Slot cells are
// shared with the emitting entries, which is what lets the loader complete
// them.
func (r *LoadEntryRegion) Entries() []LoadEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LoadEntry, len(r.records))
	copy(out, r.records)
	return out
}

// Bytes renders the region image: LoadEntrySize-byte big-endian records of
// (kind, symbol offset, library, replacement-name offset, target ref, slot
// ref, process scope). String offsets point into the blob returned by
// StringTable; the slot ref is the record's own index, since each record owns
// exactly one original-function cell.
func (r *LoadEntryRegion) Bytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	strtab := newStringTable()
	var buf bytes.Buffer
	for i, rec := range r.records {
		targetRef, _ := r.targets.index(funcPC(rec.Target))
		for _, word := range [7]uint32{
			rec.Kind,
			strtab.intern(rec.Symbol),
			rec.Library,
			strtab.intern(rec.ReplacementName),
			targetRef,
			uint32(i),
			rec.Process,
		} {
			_ = binary.Write(&buf, binary.BigEndian, word)
		}
	}
	return buf.Bytes()
}

// StringTable renders the NUL-terminated string blob referenced by Bytes.
// Offset 0 is the empty string.
func (r *LoadEntryRegion) StringTable() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	strtab := newStringTable()
	for _, rec := range r.records {
		strtab.intern(rec.Symbol)
		strtab.intern(rec.ReplacementName)
	}
	return strtab.bytes()
}

// stringTable interns NUL-terminated strings, elf-style: the table starts
// with a single NUL so that offset 0 always names the empty string.
type stringTable struct {
	offsets map[string]uint32
	blob    []byte
}

func newStringTable() *stringTable {
	return &stringTable{
		offsets: map[string]uint32{"": 0},
		blob:    []byte{0},
	}
}

func (t *stringTable) intern(s string) uint32 {
	if off, ok := t.offsets[s]; ok {
		return off
	}
	off := uint32(len(t.blob))
	t.offsets[s] = off
	t.blob = append(t.blob, s...)
	t.blob = append(t.blob, 0)
	return off
}

func (t *stringTable) bytes() []byte {
	out := make([]byte, len(t.blob))
	copy(out, t.blob)
	return out
}
