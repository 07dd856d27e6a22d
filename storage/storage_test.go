package storage

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend is an in-memory Backend speaking the status-code protocol.
type fakeBackend struct {
	items   map[string]fakeItem
	saves   []bool
	reloads int

	// statusOverride, when nonzero, is returned by StoreItem verbatim.
	statusOverride int32
}

type fakeItem struct {
	typ  ItemType
	data []byte
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{items: make(map[string]fakeItem)}
}

func (b *fakeBackend) GetItem(key string, typ ItemType, buf []byte) (int, int32) {
	item, ok := b.items[key]
	if !ok {
		return 0, StatusNotFound
	}
	if item.typ != typ {
		return 0, StatusUnexpectedDataType
	}
	if len(item.data) > len(buf) {
		return 0, StatusBufferTooSmall
	}
	return copy(buf, item.data), StatusOK
}

func (b *fakeBackend) StoreItem(key string, typ ItemType, data []byte) int32 {
	if b.statusOverride != 0 {
		return b.statusOverride
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	b.items[key] = fakeItem{typ: typ, data: cp}
	return StatusOK
}

func (b *fakeBackend) DeleteItem(key string) int32 {
	if _, ok := b.items[key]; !ok {
		return StatusNotFound
	}
	delete(b.items, key)
	return StatusOK
}

func (b *fakeBackend) Wipe() int32 {
	b.items = make(map[string]fakeItem)
	return StatusOK
}

func (b *fakeBackend) ForceReload() int32 {
	b.reloads++
	return StatusOK
}

func (b *fakeBackend) Save(force bool) int32 {
	b.saves = append(b.saves, force)
	return StatusOK
}

// withBackend binds b as the store connection for one test, bypassing the
// one-shot Init guard so tests stay independent.
func withBackend(t *testing.T, b Backend) {
	t.Helper()
	mu.Lock()
	prev := conn
	conn = b
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		conn = prev
		mu.Unlock()
	})
}

func TestStoreLoadRoundTrip(t *testing.T) {
	fake := newFakeBackend()
	withBackend(t, fake)

	require.NoError(t, Store[int32]("s32", -5))
	require.NoError(t, Store[int64]("s64", -1<<40))
	require.NoError(t, Store[uint32]("u32", 0xDEADBEEF))
	require.NoError(t, Store[uint64]("u64", 1<<60))
	require.NoError(t, Store("bool", true))
	require.NoError(t, Store[float32]("float", 1.5))
	require.NoError(t, Store("double", 2.25))
	require.NoError(t, Store("text", "héllo"))
	require.NoError(t, Store("blob", []byte{0, 1, 2, 255}))

	got32, err := Load[int32]("s32")
	require.NoError(t, err)
	assert.Equal(t, int32(-5), got32)

	got64, err := Load[int64]("s64")
	require.NoError(t, err)
	assert.Equal(t, int64(-1<<40), got64)

	gotU32, err := Load[uint32]("u32")
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), gotU32)

	gotU64, err := Load[uint64]("u64")
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<60), gotU64)

	gotBool, err := Load[bool]("bool")
	require.NoError(t, err)
	assert.True(t, gotBool)

	gotF32, err := Load[float32]("float")
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), gotF32)

	gotF64, err := Load[float64]("double")
	require.NoError(t, err)
	assert.Equal(t, 2.25, gotF64)

	gotText, err := Load[string]("text")
	require.NoError(t, err)
	assert.Equal(t, "héllo", gotText)

	gotBlob, err := Load[[]byte]("blob")
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 255}, gotBlob)
}

func TestStoreWireEncoding(t *testing.T) {
	fake := newFakeBackend()
	withBackend(t, fake)

	require.NoError(t, Store[uint32]("word", 0x01020304))
	item := fake.items["word"]
	assert.Equal(t, ItemU32, item.typ)
	assert.Equal(t, []byte{1, 2, 3, 4}, item.data)
}

func TestLoadMissingItem(t *testing.T) {
	withBackend(t, newFakeBackend())

	_, err := Load[int32]("absent")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(0), LoadOrDefault[int32]("absent"))
	assert.Equal(t, "", LoadOrDefault[string]("absent"))
}

func TestLoadWrongType(t *testing.T) {
	withBackend(t, newFakeBackend())

	require.NoError(t, Store[int32]("n", 7))
	_, err := Load[int64]("n")
	assert.ErrorIs(t, err, ErrUnexpectedDataType)
}

func TestLoadShortFixedWidthRead(t *testing.T) {
	fake := newFakeBackend()
	withBackend(t, fake)

	// A truncated item in the host store must surface as a typed error.
	fake.items["n"] = fakeItem{typ: ItemS64, data: []byte{1, 2, 3}}
	_, err := Load[int64]("n")
	assert.ErrorIs(t, err, ErrUnexpectedDataType)
}

func TestLoadStringStripsOneTerminator(t *testing.T) {
	fake := newFakeBackend()
	withBackend(t, fake)

	fake.items["t"] = fakeItem{typ: ItemString, data: []byte("abc\x00")}
	got, err := Load[string]("t")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
}

func TestStoreTextBound(t *testing.T) {
	fake := newFakeBackend()
	withBackend(t, fake)

	require.NoError(t, Store("k", strings.Repeat("a", MaxItemLength-2)))

	// An over-bound write must fail without touching the stored value.
	err := Store("k", strings.Repeat("b", MaxItemLength-1))
	assert.ErrorIs(t, err, ErrBufferTooSmall)
	got, err := Load[string]("k")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", MaxItemLength-2), got)
}

func TestStoreBinaryBound(t *testing.T) {
	withBackend(t, newFakeBackend())

	require.NoError(t, Store("k", make([]byte, MaxItemLength-2)))
	err := Store("k2", make([]byte, MaxItemLength-1))
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestStoreStringWithNul(t *testing.T) {
	withBackend(t, newFakeBackend())

	err := Store("k", "a\x00b")
	assert.ErrorIs(t, err, ErrInvalidArgs)
}

func TestKeyValidation(t *testing.T) {
	withBackend(t, newFakeBackend())

	tests := []struct {
		name string
		key  string
	}{
		{"empty", ""},
		{"embedded nul", "a\x00b"},
		{"too long", strings.Repeat("k", MaxItemLength)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, Store[int32](tt.key, 1), ErrInvalidArgs)
			_, err := Load[int32](tt.key)
			assert.ErrorIs(t, err, ErrInvalidArgs)
			assert.ErrorIs(t, Delete(tt.key), ErrInvalidArgs)
		})
	}
}

func TestDeleteAndReset(t *testing.T) {
	withBackend(t, newFakeBackend())

	require.NoError(t, Store[int32]("a", 1))
	require.NoError(t, Store[int32]("b", 2))

	require.NoError(t, Delete("a"))
	_, err := Load[int32]("a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, Delete("a"), ErrNotFound)

	require.NoError(t, Reset())
	_, err = Load[int32]("b")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveAndReload(t *testing.T) {
	fake := newFakeBackend()
	withBackend(t, fake)

	require.NoError(t, Save(false))
	require.NoError(t, Save(true))
	assert.Equal(t, []bool{false, true}, fake.saves)

	require.NoError(t, Reload())
	assert.Equal(t, 1, fake.reloads)
}

func TestNotInitialized(t *testing.T) {
	withBackend(t, nil)

	assert.False(t, Initialized())
	_, err := Load[int32]("k")
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, Store[int32]("k", 1), ErrNotInitialized)
	assert.ErrorIs(t, Delete("k"), ErrNotInitialized)
	assert.ErrorIs(t, Reset(), ErrNotInitialized)
	assert.ErrorIs(t, Save(true), ErrNotInitialized)
	assert.Equal(t, int32(0), LoadOrDefault[int32]("k"))
}

func TestInitIsOneShot(t *testing.T) {
	assert.ErrorIs(t, Init(nil), ErrInvalidArgs)

	first := newFakeBackend()
	require.NoError(t, Init(first))
	assert.True(t, Initialized())

	err := Init(newFakeBackend())
	assert.ErrorIs(t, err, ErrAlreadyInitialized)

	// The first binding stays in place.
	mu.RLock()
	assert.Same(t, first, conn)
	mu.RUnlock()
}

func TestErrFromStatus(t *testing.T) {
	tests := []struct {
		code int32
		want error
	}{
		{StatusInvalidArgs, ErrInvalidArgs},
		{StatusMallocFailed, ErrMallocFailed},
		{StatusUnexpectedDataType, ErrUnexpectedDataType},
		{StatusBufferTooSmall, ErrBufferTooSmall},
		{StatusAlreadyExists, ErrAlreadyExists},
		{StatusIOError, ErrIO},
		{StatusNotFound, ErrNotFound},
		{StatusNotInitialized, ErrNotInitialized},
		{StatusInvalidVersion, ErrInvalidVersion},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, errFromStatus(tt.code), tt.want, "code %d", tt.code)
	}

	assert.NoError(t, errFromStatus(StatusOK))

	var unknown *UnknownStatusError
	require.ErrorAs(t, errFromStatus(5), &unknown)
	assert.Equal(t, int32(5), unknown.Code)
	require.ErrorAs(t, errFromStatus(-100), &unknown)
	assert.Equal(t, int32(-100), unknown.Code)
}

func TestStoreSurfacesBackendStatus(t *testing.T) {
	fake := newFakeBackend()
	fake.statusOverride = StatusIOError
	withBackend(t, fake)

	assert.ErrorIs(t, Store[int32]("k", 1), ErrIO)
	assert.True(t, errors.Is(Store[int32]("k", 1), ErrIO))
}
