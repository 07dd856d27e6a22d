package hostsim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonic/pluginkit/storage"
)

func TestFileBackendRequiresID(t *testing.T) {
	_, err := NewFileBackend("", "", nil)
	assert.Error(t, err)
}

func TestFileBackendGetStore(t *testing.T) {
	b, err := NewFileBackend("", "test", nil)
	require.NoError(t, err)

	buf := make([]byte, 16)
	n, status := b.GetItem("missing", storage.ItemS32, buf)
	assert.Equal(t, storage.StatusNotFound, status)
	assert.Zero(t, n)

	require.Equal(t, storage.StatusOK, b.StoreItem("key", storage.ItemS32, []byte{1, 2, 3, 4}))

	n, status = b.GetItem("key", storage.ItemS32, buf)
	require.Equal(t, storage.StatusOK, status)
	assert.Equal(t, []byte{1, 2, 3, 4}, buf[:n])

	// Type tags are checked on read.
	_, status = b.GetItem("key", storage.ItemString, buf)
	assert.Equal(t, storage.StatusUnexpectedDataType, status)

	// A too-small destination is reported, not truncated.
	_, status = b.GetItem("key", storage.ItemS32, make([]byte, 2))
	assert.Equal(t, storage.StatusBufferTooSmall, status)
}

func TestFileBackendDelete(t *testing.T) {
	b, err := NewFileBackend("", "test", nil)
	require.NoError(t, err)

	assert.Equal(t, storage.StatusNotFound, b.DeleteItem("missing"))

	require.Equal(t, storage.StatusOK, b.StoreItem("key", storage.ItemBool, []byte{1}))
	assert.Equal(t, storage.StatusOK, b.DeleteItem("key"))
	_, status := b.GetItem("key", storage.ItemBool, make([]byte, 1))
	assert.Equal(t, storage.StatusNotFound, status)
}

func TestFileBackendAwkwardKeys(t *testing.T) {
	b, err := NewFileBackend("", "plug.in", nil)
	require.NoError(t, err)

	// Keys carrying path syntax must address exactly one entry.
	for _, key := range []string{"a.b", "a.*", "we|rd", "#tag", "back\\slash"} {
		require.Equal(t, storage.StatusOK, b.StoreItem(key, storage.ItemBool, []byte{1}), "key %q", key)
		buf := make([]byte, 1)
		n, status := b.GetItem(key, storage.ItemBool, buf)
		require.Equal(t, storage.StatusOK, status, "key %q", key)
		assert.Equal(t, 1, n, "key %q", key)
	}
	assert.Len(t, b.Keys("*"), 5)
}

func TestFileBackendPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	b, err := NewFileBackend(path, "test", nil)
	require.NoError(t, err)
	require.Equal(t, storage.StatusOK, b.StoreItem("key", storage.ItemU32, []byte{0, 0, 0, 7}))

	// Mutations are debounced: nothing reaches the medium before Save.
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	require.Equal(t, storage.StatusOK, b.Save(false))
	_, statErr = os.Stat(path)
	require.NoError(t, statErr)

	// A fresh backend over the same file sees the item.
	b2, err := NewFileBackend(path, "test", nil)
	require.NoError(t, err)
	buf := make([]byte, 4)
	n, status := b2.GetItem("key", storage.ItemU32, buf)
	require.Equal(t, storage.StatusOK, status)
	assert.Equal(t, []byte{0, 0, 0, 7}, buf[:n])
}

func TestFileBackendForceReloadDiscardsPending(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	b, err := NewFileBackend(path, "test", nil)
	require.NoError(t, err)
	require.Equal(t, storage.StatusOK, b.StoreItem("key", storage.ItemBool, []byte{1}))
	require.Equal(t, storage.StatusOK, b.Save(true))

	require.Equal(t, storage.StatusOK, b.StoreItem("pending", storage.ItemBool, []byte{1}))
	require.Equal(t, storage.StatusOK, b.ForceReload())

	_, status := b.GetItem("pending", storage.ItemBool, make([]byte, 1))
	assert.Equal(t, storage.StatusNotFound, status)
	_, status = b.GetItem("key", storage.ItemBool, make([]byte, 1))
	assert.Equal(t, storage.StatusOK, status)
}

func TestFileBackendWipeIsImmediate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	b, err := NewFileBackend(path, "test", nil)
	require.NoError(t, err)
	require.Equal(t, storage.StatusOK, b.StoreItem("key", storage.ItemBool, []byte{1}))
	require.Equal(t, storage.StatusOK, b.Save(true))

	require.Equal(t, storage.StatusOK, b.Wipe())

	// The wipe hit the medium without a Save.
	b2, err := NewFileBackend(path, "test", nil)
	require.NoError(t, err)
	_, status := b2.GetItem("key", storage.ItemBool, make([]byte, 1))
	assert.Equal(t, storage.StatusNotFound, status)
}

func TestFileBackendKeysPattern(t *testing.T) {
	b, err := NewFileBackend("", "test", nil)
	require.NoError(t, err)

	for _, key := range []string{"net_host", "net_port", "video_mode"} {
		require.Equal(t, storage.StatusOK, b.StoreItem(key, storage.ItemBool, []byte{1}))
	}

	assert.Equal(t, []string{"net_host", "net_port", "video_mode"}, b.Keys("*"))
	assert.Equal(t, []string{"net_host", "net_port"}, b.Keys("net_*"))
	assert.Empty(t, b.Keys("audio_*"))
}

func TestFileBackendRejectsCorruptStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := NewFileBackend(path, "test", nil)
	assert.Error(t, err)
}
