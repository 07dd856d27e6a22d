package hostsim

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/match"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"github.com/halcyonic/pluginkit/storage"
)

// FileBackend is a storage.Backend over a JSON document: one object per
// storage id, one {"t": tag, "v": base64} entry per item. With an empty path
// the backend is purely in-memory, which is what tests use.
//
// Writes are debounced the way the real host debounces them: mutations only
// mark the document dirty, and Save decides whether the medium is touched.
// Save(force=true) always writes; Save(force=false) writes only when dirty.
type FileBackend struct {
	log  *zap.Logger
	path string
	id   string

	mu    sync.Mutex
	doc   []byte
	dirty bool
}

// NewFileBackend opens (or creates) the store for one storage id. path may
// be empty for an in-memory store.
func NewFileBackend(path, id string, log *zap.Logger) (*FileBackend, error) {
	if id == "" {
		return nil, fmt.Errorf("hostsim: storage id is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	b := &FileBackend{log: log, path: path, id: id, doc: []byte("{}")}
	if err := b.readMedium(); err != nil {
		return nil, err
	}
	return b, nil
}

// GetItem implements storage.Backend.
func (b *FileBackend) GetItem(key string, typ storage.ItemType, buf []byte) (int, int32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	item := gjson.GetBytes(b.doc, b.itemPath(key))
	if !item.Exists() {
		return 0, storage.StatusNotFound
	}
	if storage.ItemType(item.Get("t").Uint()) != typ {
		return 0, storage.StatusUnexpectedDataType
	}
	data, err := base64.StdEncoding.DecodeString(item.Get("v").String())
	if err != nil {
		return 0, storage.StatusIOError
	}
	if len(data) > len(buf) {
		return 0, storage.StatusBufferTooSmall
	}
	copy(buf, data)
	return len(data), storage.StatusOK
}

// StoreItem implements storage.Backend.
func (b *FileBackend) StoreItem(key string, typ storage.ItemType, data []byte) int32 {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := sjson.SetBytes(b.doc, b.itemPath(key), map[string]any{
		"t": uint32(typ),
		"v": base64.StdEncoding.EncodeToString(data),
	})
	if err != nil {
		return storage.StatusInvalidArgs
	}
	b.doc = doc
	b.dirty = true
	return storage.StatusOK
}

// DeleteItem implements storage.Backend.
func (b *FileBackend) DeleteItem(key string) int32 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !gjson.GetBytes(b.doc, b.itemPath(key)).Exists() {
		return storage.StatusNotFound
	}
	doc, err := sjson.DeleteBytes(b.doc, b.itemPath(key))
	if err != nil {
		return storage.StatusInvalidArgs
	}
	b.doc = doc
	b.dirty = true
	return storage.StatusOK
}

// Wipe implements storage.Backend. The wipe is permanent, so it hits the
// medium immediately instead of waiting for Save.
func (b *FileBackend) Wipe() int32 {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := sjson.SetBytes(b.doc, escapePath(b.id), map[string]any{})
	if err != nil {
		return storage.StatusInvalidArgs
	}
	b.doc = doc
	if err := b.writeMedium(); err != nil {
		b.log.Warn("wipe write failed", zap.Error(err))
		return storage.StatusIOError
	}
	b.dirty = false
	return storage.StatusOK
}

// ForceReload implements storage.Backend: pending writes are discarded and
// the document is re-read from the medium.
func (b *FileBackend) ForceReload() int32 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.readMedium(); err != nil {
		return storage.StatusIOError
	}
	b.dirty = false
	return storage.StatusOK
}

// Save implements storage.Backend.
func (b *FileBackend) Save(force bool) int32 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.dirty && !force {
		return storage.StatusOK
	}
	if err := b.writeMedium(); err != nil {
		b.log.Warn("save failed", zap.Error(err))
		return storage.StatusIOError
	}
	b.dirty = false
	return storage.StatusOK
}

// Keys lists the stored keys matching a wildcard pattern ("*" for all), in
// document order.
func (b *FileBackend) Keys(pattern string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var keys []string
	gjson.GetBytes(b.doc, escapePath(b.id)).ForEach(func(k, _ gjson.Result) bool {
		if match.Match(k.String(), pattern) {
			keys = append(keys, k.String())
		}
		return true
	})
	return keys
}

func (b *FileBackend) itemPath(key string) string {
	return escapePath(b.id) + "." + escapePath(key)
}

func (b *FileBackend) readMedium() error {
	if b.path == "" {
		return nil
	}
	data, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		b.doc = []byte("{}")
		return nil
	}
	if err != nil {
		return fmt.Errorf("hostsim: read store: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("hostsim: store %s is not valid JSON", b.path)
	}
	b.doc = data
	return nil
}

func (b *FileBackend) writeMedium() error {
	if b.path == "" {
		return nil
	}
	tmp := b.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, pretty.Pretty(b.doc), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, b.path)
}

// escapePath escapes the characters gjson/sjson treat as path syntax, so
// arbitrary storage keys address exactly one document entry.
func escapePath(s string) string {
	var out strings.Builder
	for _, r := range s {
		switch r {
		case '.', '*', '?', '#', '|', '@', '\\':
			out.WriteByte('\\')
		}
		out.WriteRune(r)
	}
	return out.String()
}
