package region

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Metadata record limits. Oversized records are a defect in the plugin
// declaration, not a runtime condition, so they are rejected at emission.
const (
	MaxMetaNameLen  = 64
	MaxMetaValueLen = 256
)

// Metadata emission errors.
var (
	// ErrMetaName is returned when a record name is empty or not an identifier.
	ErrMetaName = errors.New("region: meta record name must be a non-empty identifier")

	// ErrMetaTooLong is returned when a record name or value exceeds its bound.
	ErrMetaTooLong = errors.New("region: meta record exceeds size bound")

	// ErrMetaNulByte is returned when a record value embeds a NUL byte, which
	// would corrupt the record framing.
	ErrMetaNulByte = errors.New("region: meta record value contains NUL byte")

	// ErrSealed is returned when appending to a region after Seal.
	ErrSealed = errors.New("region: region is sealed")
)

// metaNamePattern matches record names: C-identifier style, lower case.
var metaNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// MetaRecord is one immutable name/value pair in the metadata region.
type MetaRecord struct {
	Name  string
	Value string
}

// MetaRegion holds the metadata records the loader scans at module load.
type MetaRegion struct {
	mu      sync.Mutex
	records []MetaRecord
	sealed  bool
}

// NewMetaRegion creates an empty metadata region.
func NewMetaRegion() *MetaRegion {
	return &MetaRegion{}
}

// Emit appends one "name=value" record. The name must be an identifier and
// neither side may embed a NUL byte or exceed its size bound.
func (r *MetaRegion) Emit(name, value string) error {
	if !metaNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrMetaName, name)
	}
	if len(name) > MaxMetaNameLen || len(value) > MaxMetaValueLen {
		return fmt.Errorf("%w: %s=%q", ErrMetaTooLong, name, value)
	}
	if strings.ContainsRune(value, 0) {
		return fmt.Errorf("%w: %s", ErrMetaNulByte, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return fmt.Errorf("%w: meta %s", ErrSealed, name)
	}
	r.records = append(r.records, MetaRecord{Name: name, Value: value})
	return nil
}

// MustEmit is Emit but panics on a malformed record. Plugin declarations run
// at process start-up, so a malformed record is a build defect.
func (r *MetaRegion) MustEmit(name, value string) {
	if err := r.Emit(name, value); err != nil {
		panic(err)
	}
}

// Seal freezes the region. Sealing twice is a no-op.
func (r *MetaRegion) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Records returns a copy of the emitted records in emission order.
func (r *MetaRegion) Records() []MetaRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]MetaRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Bytes renders the region as the loader sees it: concatenated
// "name=value\0" ASCII records with no additional framing.
func (r *MetaRegion) Bytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	var buf bytes.Buffer
	for _, rec := range r.records {
		buf.WriteString(rec.Name)
		buf.WriteByte('=')
		buf.WriteString(rec.Value)
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

// ParseMetadata decodes a metadata region image back into records. The only
// framing is the NUL terminator; a record without '=' or a trailing
// unterminated record is malformed.
func ParseMetadata(data []byte) ([]MetaRecord, error) {
	var out []MetaRecord
	for len(data) > 0 {
		end := bytes.IndexByte(data, 0)
		if end < 0 {
			return nil, fmt.Errorf("region: unterminated meta record %q", data)
		}
		rec := data[:end]
		data = data[end+1:]

		name, value, ok := strings.Cut(string(rec), "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("region: malformed meta record %q", rec)
		}
		out = append(out, MetaRecord{Name: name, Value: value})
	}
	return out, nil
}
