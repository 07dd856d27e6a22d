package storage

import (
	"encoding/binary"
	"fmt"
	"math"
)

// MaxItemLength is the byte bound shared by text and binary items, including
// the implicit terminator.
const MaxItemLength = 1024

// ItemType tags the wire representation of a stored value. Each supported Go
// type maps to exactly one tag.
type ItemType uint32

// Item type tags, in host enumeration order.
const (
	ItemS32 ItemType = iota
	ItemS64
	ItemU32
	ItemU64
	ItemBool
	ItemFloat
	ItemDouble
	ItemString
	ItemBinary
)

// String returns a string representation of the tag.
func (t ItemType) String() string {
	switch t {
	case ItemS32:
		return "s32"
	case ItemS64:
		return "s64"
	case ItemU32:
		return "u32"
	case ItemU64:
		return "u64"
	case ItemBool:
		return "bool"
	case ItemFloat:
		return "float"
	case ItemDouble:
		return "double"
	case ItemString:
		return "string"
	case ItemBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Backend is the host storage API. Status codes follow the protocol in
// errFromStatus: negative is failure, non-negative is success.
type Backend interface {
	// GetItem reads the item under key into buf, checking it was stored with
	// the given type tag. It returns the number of bytes written to buf and a
	// status code.
	GetItem(key string, typ ItemType, buf []byte) (int, int32)

	// StoreItem creates or overwrites the item under key.
	StoreItem(key string, typ ItemType, data []byte) int32

	// DeleteItem removes the item under key.
	DeleteItem(key string) int32

	// Wipe permanently removes all items.
	Wipe() int32

	// ForceReload discards cached state and re-reads the backing medium.
	ForceReload() int32

	// Save flushes pending writes. force bypasses any host-side debounce.
	Save(force bool) int32
}

// Value is the set of storable Go types.
type Value interface {
	int32 | int64 | uint32 | uint64 | bool | float32 | float64 | string | []byte
}

// itemTypeOf returns the tag for T.
func itemTypeOf[T Value]() ItemType {
	var zero T
	switch any(zero).(type) {
	case int32:
		return ItemS32
	case int64:
		return ItemS64
	case uint32:
		return ItemU32
	case uint64:
		return ItemU64
	case bool:
		return ItemBool
	case float32:
		return ItemFloat
	case float64:
		return ItemDouble
	case string:
		return ItemString
	default:
		return ItemBinary
	}
}

// encode marshals v into its bounded byte representation. Fixed-width values
// are big-endian, matching the target; text and binary values are raw bytes
// with no terminator (the terminator byte is the backend's headroom, which is
// why the bound check reserves one byte).
func encode[T Value](v T) []byte {
	switch val := any(v).(type) {
	case int32:
		return binary.BigEndian.AppendUint32(nil, uint32(val))
	case int64:
		return binary.BigEndian.AppendUint64(nil, uint64(val))
	case uint32:
		return binary.BigEndian.AppendUint32(nil, val)
	case uint64:
		return binary.BigEndian.AppendUint64(nil, val)
	case bool:
		if val {
			return []byte{1}
		}
		return []byte{0}
	case float32:
		return binary.BigEndian.AppendUint32(nil, math.Float32bits(val))
	case float64:
		return binary.BigEndian.AppendUint64(nil, math.Float64bits(val))
	case string:
		return []byte(val)
	case []byte:
		out := make([]byte, len(val))
		copy(out, val)
		return out
	default:
		panic("storage: unreachable value type")
	}
}

// fixedWidth returns the exact wire width of T, or 0 for variable-width
// types.
func fixedWidth[T Value]() int {
	var zero T
	switch any(zero).(type) {
	case int32, uint32, float32:
		return 4
	case int64, uint64, float64:
		return 8
	case bool:
		return 1
	default:
		return 0
	}
}

// decode unmarshals the bytes read back for T. For fixed-width types a read
// of any other width is an internal-consistency fault in the host store: it
// is reported as an error wrapping ErrUnexpectedDataType, never a crash. For
// strings, at most one trailing terminator byte is stripped; the content
// itself is never altered, so multi-byte text survives a short read intact.
func decode[T Value](data []byte) (T, error) {
	var zero T
	if w := fixedWidth[T](); w != 0 && len(data) != w {
		return zero, fmt.Errorf("%w: read %d bytes for %s item, want %d",
			ErrUnexpectedDataType, len(data), itemTypeOf[T](), w)
	}

	var out any
	switch any(zero).(type) {
	case int32:
		out = int32(binary.BigEndian.Uint32(data))
	case int64:
		out = int64(binary.BigEndian.Uint64(data))
	case uint32:
		out = binary.BigEndian.Uint32(data)
	case uint64:
		out = binary.BigEndian.Uint64(data)
	case bool:
		out = data[0] != 0
	case float32:
		out = math.Float32frombits(binary.BigEndian.Uint32(data))
	case float64:
		out = math.Float64frombits(binary.BigEndian.Uint64(data))
	case string:
		if n := len(data); n > 0 && data[n-1] == 0 {
			data = data[:n-1]
		}
		out = string(data)
	default:
		cp := make([]byte, len(data))
		copy(cp, data)
		out = cp
	}
	return out.(T), nil
}
