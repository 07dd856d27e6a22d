package storage

import (
	"fmt"
	"strings"
	"sync"
)

// The process-wide store connection. The host guarantees at most one
// storage-init per process lifetime, so the connection is a one-time
// singleton: initialized by the storage-init hook, never reinitialized.
var (
	initOnce sync.Once
	mu       sync.RWMutex
	conn     Backend
)

// Init binds the host backend. The storage-init hook calls this exactly once
// per process; a second call is rejected with ErrAlreadyInitialized and
// leaves the first binding in place.
func Init(b Backend) error {
	if b == nil {
		return fmt.Errorf("%w: nil backend", ErrInvalidArgs)
	}
	bound := false
	initOnce.Do(func() {
		mu.Lock()
		conn = b
		mu.Unlock()
		bound = true
	})
	if !bound {
		return ErrAlreadyInitialized
	}
	return nil
}

// Initialized reports whether the storage-init hook has fired.
func Initialized() bool {
	mu.RLock()
	defer mu.RUnlock()
	return conn != nil
}

func backend() (Backend, error) {
	mu.RLock()
	defer mu.RUnlock()
	if conn == nil {
		return nil, ErrNotInitialized
	}
	return conn, nil
}

// checkKey rejects keys the host protocol cannot carry, before any host call
// is made.
func checkKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidArgs)
	}
	if strings.ContainsRune(key, 0) {
		return fmt.Errorf("%w: key contains NUL byte", ErrInvalidArgs)
	}
	if len(key) >= MaxItemLength {
		return fmt.Errorf("%w: key length %d", ErrInvalidArgs, len(key))
	}
	return nil
}

// Load reads the item under key as type T. ErrNotFound when no such item
// exists; ErrUnexpectedDataType when it was stored under a different tag or
// a fixed-width read came back with the wrong width.
func Load[T Value](key string) (T, error) {
	var zero T
	b, err := backend()
	if err != nil {
		return zero, err
	}
	if err := checkKey(key); err != nil {
		return zero, err
	}

	size := fixedWidth[T]()
	if size == 0 {
		size = MaxItemLength
	}
	buf := make([]byte, size)
	n, status := b.GetItem(key, itemTypeOf[T](), buf)
	if err := errFromStatus(status); err != nil {
		return zero, err
	}
	return decode[T](buf[:n])
}

// LoadOrDefault reads the item under key, mapping every failure to T's zero
// value. It never fails.
func LoadOrDefault[T Value](key string) T {
	v, err := Load[T](key)
	if err != nil {
		var zero T
		return zero
	}
	return v
}

// Store creates or overwrites the item under key. Text and binary values
// within one byte of MaxItemLength are rejected with ErrBufferTooSmall: the
// final byte is reserved for the implicit terminator, and truncating
// silently would corrupt the value.
func Store[T Value](key string, value T) error {
	b, err := backend()
	if err != nil {
		return err
	}
	if err := checkKey(key); err != nil {
		return err
	}

	typ := itemTypeOf[T]()
	if s, ok := any(value).(string); ok && strings.ContainsRune(s, 0) {
		return fmt.Errorf("%w: value contains NUL byte", ErrInvalidArgs)
	}
	data := encode(value)
	if (typ == ItemString || typ == ItemBinary) && len(data) >= MaxItemLength-1 {
		return fmt.Errorf("%w: %d bytes, bound %d", ErrBufferTooSmall, len(data), MaxItemLength)
	}
	return errFromStatus(b.StoreItem(key, typ, data))
}

// Delete removes the item under key. ErrNotFound when no such item exists.
func Delete(key string) error {
	b, err := backend()
	if err != nil {
		return err
	}
	if err := checkKey(key); err != nil {
		return err
	}
	return errFromStatus(b.DeleteItem(key))
}

// Reset permanently wipes all items.
func Reset() error {
	b, err := backend()
	if err != nil {
		return err
	}
	return errFromStatus(b.Wipe())
}

// Reload forces the host store to re-read its backing medium.
func Reload() error {
	b, err := backend()
	if err != nil {
		return err
	}
	return errFromStatus(b.ForceReload())
}

// Save flushes pending writes. force bypasses any host-side debounce.
func Save(force bool) error {
	b, err := backend()
	if err != nil {
		return err
	}
	return errFromStatus(b.Save(force))
}
