package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populatedStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore(2)
	tx := NewTransaction()
	tx.Put(0, []byte("key1"), []byte("horse"))
	tx.Put(1, []byte("key2"), []byte("pigeon"))
	tx.Put(1, []byte("key3"), []byte("cat"))
	require.NoError(t, store.Write(tx))
	return store
}

func TestMemoryStore_GetPutDelete(t *testing.T) {
	store := populatedStore(t)

	value, err := store.Get(0, []byte("key1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("horse"), value)

	value, err = store.Get(0, []byte("missing"))
	require.NoError(t, err)
	assert.Nil(t, value)

	tx := NewTransaction()
	tx.Delete(1, []byte("key2"))
	require.NoError(t, store.Write(tx))
	value, err = store.Get(1, []byte("key2"))
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestMemoryStore_UnknownColumn(t *testing.T) {
	store := NewMemoryStore(2)

	_, err := store.Get(2, []byte("key"))
	require.ErrorIs(t, err, ErrNoSuchColumn)

	tx := NewTransaction()
	tx.Put(5, []byte("key"), []byte("value"))
	require.ErrorIs(t, store.Write(tx), ErrNoSuchColumn)
}

func TestMemoryStore_TransactionAppliesInOrder(t *testing.T) {
	store := NewMemoryStore(1)
	tx := NewTransaction()
	tx.Put(0, []byte("key"), []byte("first"))
	tx.Put(0, []byte("key"), []byte("second"))
	tx.Delete(0, []byte("other"))
	tx.Put(0, []byte("other"), []byte("kept"))
	require.NoError(t, store.Write(tx))

	value, err := store.Get(0, []byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), value)

	value, err = store.Get(0, []byte("other"))
	require.NoError(t, err)
	assert.Equal(t, []byte("kept"), value)
}

func TestMemoryStore_PrefixScans(t *testing.T) {
	store := NewMemoryStore(1)
	tx := NewTransaction()
	tx.Put(0, []byte("aux/a"), []byte("1"))
	tx.Put(0, []byte("aux/b"), []byte("2"))
	tx.Put(0, []byte("meta"), []byte("3"))
	require.NoError(t, store.Write(tx))

	assert.Equal(t, []byte("1"), store.GetByPrefix(0, []byte("aux/")))
	assert.Nil(t, store.GetByPrefix(0, []byte("zzz")))

	var keys []string
	require.NoError(t, store.IterFromPrefix(0, []byte("aux/"), func(key, _ []byte) bool {
		keys = append(keys, string(key))
		return true
	}))
	assert.Equal(t, []string{"aux/a", "aux/b"}, keys)
}

func TestMemoryStore_IterIsOrdered(t *testing.T) {
	store := NewMemoryStore(1)
	tx := NewTransaction()
	tx.Put(0, []byte("c"), []byte("3"))
	tx.Put(0, []byte("a"), []byte("1"))
	tx.Put(0, []byte("b"), []byte("2"))
	require.NoError(t, store.Write(tx))

	var keys []string
	require.NoError(t, store.Iter(0, func(key, _ []byte) bool {
		keys = append(keys, string(key))
		return true
	}))
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestMemoryStore_EncodeDecode(t *testing.T) {
	store := populatedStore(t)

	encoded, err := store.Encode()
	require.NoError(t, err)
	require.NotEmpty(t, encoded)

	decoded, err := DecodeStore(encoded)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), decoded.NumColumns())

	value, err := decoded.Get(0, []byte("key1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("horse"), value)
	value, err = decoded.Get(1, []byte("key2"))
	require.NoError(t, err)
	assert.Equal(t, []byte("pigeon"), value)
	value, err = decoded.Get(1, []byte("key3"))
	require.NoError(t, err)
	assert.Equal(t, []byte("cat"), value)
}

func TestMemoryStore_DeterministicEncoding(t *testing.T) {
	store := populatedStore(t)

	// Decoding and re-encoding must reproduce the same bytes every time.
	for i := 0; i < 100; i++ {
		encoded, err := store.Encode()
		require.NoError(t, err)
		decoded, err := DecodeStore(encoded)
		require.NoError(t, err)
		reencoded, err := decoded.Encode()
		require.NoError(t, err)
		require.Equal(t, encoded, reencoded)
	}

	// Two instances sharing a history and receiving the same transaction
	// must encode identically.
	encoded, err := store.Encode()
	require.NoError(t, err)
	decoded, err := DecodeStore(encoded)
	require.NoError(t, err)

	tx := NewTransaction()
	tx.Put(0, []byte("another_format"), []byte("pikachu"))
	require.NoError(t, store.Write(tx))
	require.NoError(t, decoded.Write(tx))

	first, err := store.Encode()
	require.NoError(t, err)
	second, err := decoded.Encode()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDecodeStore_RejectsTrailingBytes(t *testing.T) {
	store := populatedStore(t)
	encoded, err := store.Encode()
	require.NoError(t, err)

	_, err = DecodeStore(append(encoded, 0xff))
	require.Error(t, err)
}

func TestMemoryStore_ValueIsolation(t *testing.T) {
	store := NewMemoryStore(1)
	value := []byte("mutable")
	tx := NewTransaction()
	tx.Put(0, []byte("key"), value)
	require.NoError(t, store.Write(tx))

	value[0] = 'X'
	stored, err := store.Get(0, []byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("mutable"), stored)

	stored[0] = 'Y'
	again, err := store.Get(0, []byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("mutable"), again)
}
