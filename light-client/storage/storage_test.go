package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChorusOne/substrate-light-client/light-client/db"
	"github.com/ChorusOne/substrate-light-client/types"
)

func setupStorage(t *testing.T, maxNonFinalized uint64) *Storage {
	t.Helper()
	s, err := New(db.NewMemoryStore(NumColumns), maxNonFinalized)
	require.NoError(t, err)
	return s
}

func genesisHeader() types.Header {
	return types.Header{Number: 1, Digest: []types.DigestItem{}}
}

func childOf(t *testing.T, parent types.Header) types.Header {
	t.Helper()
	parentHash, err := parent.Hash()
	require.NoError(t, err)
	return types.Header{
		Number:     parent.Number + 1,
		ParentHash: parentHash,
		Digest:     []types.DigestItem{},
	}
}

func mustHash(t *testing.T, header types.Header) types.Hash {
	t.Helper()
	hash, err := header.Hash()
	require.NoError(t, err)
	return hash
}

func importChain(t *testing.T, s *Storage, headers ...types.Header) {
	t.Helper()
	for i := range headers {
		require.NoError(t, s.ImportHeader(&headers[i]))
	}
}

func TestImportHeader_Bootstrap(t *testing.T) {
	s := setupStorage(t, 256)
	genesis := genesisHeader()
	require.NoError(t, s.ImportHeader(&genesis))

	meta, err := s.Info()
	require.NoError(t, err)
	assert.Equal(t, mustHash(t, genesis), meta.BestHash)
	assert.Equal(t, mustHash(t, genesis), meta.GenesisHash)
	assert.Equal(t, uint32(1), meta.BestNumber)
	assert.Equal(t, uint64(1), meta.NonFinalizedBlocks)
	assert.True(t, meta.FinalizedHash.IsEmpty())
}

func TestImportHeader_Sequence(t *testing.T) {
	s := setupStorage(t, 256)
	genesis := genesisHeader()
	second := childOf(t, genesis)
	importChain(t, s, genesis, second)

	meta, err := s.Info()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), meta.BestNumber)
	assert.Equal(t, mustHash(t, second), meta.BestHash)
	assert.Equal(t, mustHash(t, genesis), meta.GenesisHash)
}

func TestImportHeader_WrongParent(t *testing.T) {
	s := setupStorage(t, 256)
	genesis := genesisHeader()
	importChain(t, s, genesis)

	bad := childOf(t, genesis)
	bad.ParentHash = types.NewHash([]byte("nope"))
	require.ErrorIs(t, s.ImportHeader(&bad), ErrUnknownParent)
}

func TestImportHeader_NonSequentialNumber(t *testing.T) {
	s := setupStorage(t, 256)
	genesis := genesisHeader()
	importChain(t, s, genesis)

	bad := childOf(t, genesis)
	bad.Number++
	require.ErrorIs(t, s.ImportHeader(&bad), ErrNonSequential)
}

func TestImportHeader_DuplicateIsNoop(t *testing.T) {
	s := setupStorage(t, 256)
	genesis := genesisHeader()
	importChain(t, s, genesis, genesis)

	meta, err := s.Info()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), meta.NonFinalizedBlocks)
	assert.Equal(t, uint32(1), meta.BestNumber)
}

func TestImportHeader_RespectsCap(t *testing.T) {
	s := setupStorage(t, 2)
	genesis := genesisHeader()
	second := childOf(t, genesis)
	importChain(t, s, genesis, second)

	third := childOf(t, second)
	require.ErrorIs(t, s.ImportHeader(&third), ErrTooManyNonFinalized)

	// Finalizing shrinks the window and imports resume.
	require.NoError(t, s.FinalizeHeader(mustHash(t, genesis), nil))
	require.NoError(t, s.ImportHeader(&third))
}

func TestLookupIndexes(t *testing.T) {
	s := setupStorage(t, 256)
	genesis := genesisHeader()
	second := childOf(t, genesis)
	importChain(t, s, genesis, second)

	hash, err := s.Hash(2)
	require.NoError(t, err)
	require.NotNil(t, hash)
	assert.Equal(t, mustHash(t, second), *hash)

	number, err := s.Number(mustHash(t, second))
	require.NoError(t, err)
	require.NotNil(t, number)
	assert.Equal(t, uint32(2), *number)

	header, err := s.HeaderByNumber(1)
	require.NoError(t, err)
	require.NotNil(t, header)
	assert.Equal(t, genesis, *header)

	missing, err := s.Hash(42)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStatus(t *testing.T) {
	s := setupStorage(t, 256)
	genesis := genesisHeader()
	importChain(t, s, genesis)

	status, err := s.Status(mustHash(t, genesis))
	require.NoError(t, err)
	assert.Equal(t, StatusInChain, status)

	status, err = s.Status(types.NewHash([]byte("unknown")))
	require.NoError(t, err)
	assert.Equal(t, StatusUnknown, status)
}

func TestFinalizeHeader_FirstMustBeGenesis(t *testing.T) {
	s := setupStorage(t, 256)
	genesis := genesisHeader()
	second := childOf(t, genesis)
	importChain(t, s, genesis, second)

	require.ErrorIs(t, s.FinalizeHeader(mustHash(t, second), nil), ErrNonSequentialFinalization)
	require.NoError(t, s.FinalizeHeader(mustHash(t, genesis), nil))

	meta, err := s.Info()
	require.NoError(t, err)
	assert.Equal(t, mustHash(t, genesis), meta.FinalizedHash)
	assert.Equal(t, uint32(1), meta.FinalizedNumber)
	assert.Equal(t, uint64(1), meta.NonFinalizedBlocks)
}

func TestFinalizeHeader_WalksChildren(t *testing.T) {
	s := setupStorage(t, 256)
	genesis := genesisHeader()
	second := childOf(t, genesis)
	third := childOf(t, second)
	importChain(t, s, genesis, second, third)

	require.NoError(t, s.FinalizeHeader(mustHash(t, genesis), nil))
	require.NoError(t, s.FinalizeHeader(mustHash(t, second), nil))

	// Skipping third is rejected once second is finalized.
	fourth := childOf(t, third)
	require.NoError(t, s.ImportHeader(&fourth))
	require.ErrorIs(t, s.FinalizeHeader(mustHash(t, fourth), nil), ErrNonSequentialFinalization)

	require.NoError(t, s.FinalizeHeader(mustHash(t, third), []byte("proof")))

	meta, err := s.Info()
	require.NoError(t, err)
	assert.Equal(t, mustHash(t, third), meta.FinalizedHash)
	assert.Equal(t, uint64(1), meta.NonFinalizedBlocks)

	justification, err := s.FinalizedJustification()
	require.NoError(t, err)
	assert.Equal(t, []byte("proof"), justification)
}

func TestFinalizeHeader_PrunesParent(t *testing.T) {
	s := setupStorage(t, 256)
	genesis := genesisHeader()
	second := childOf(t, genesis)
	importChain(t, s, genesis, second)

	require.NoError(t, s.FinalizeHeader(mustHash(t, genesis), nil))
	require.NoError(t, s.FinalizeHeader(mustHash(t, second), nil))

	// The genesis record and its number index are gone.
	header, err := s.Header(mustHash(t, genesis))
	require.NoError(t, err)
	assert.Nil(t, header)
	hash, err := s.Hash(1)
	require.NoError(t, err)
	assert.Nil(t, hash)

	// The finalized head itself is still there.
	header, err = s.Header(mustHash(t, second))
	require.NoError(t, err)
	assert.NotNil(t, header)
}

func TestFinalizeHeader_RefusesRevert(t *testing.T) {
	s := setupStorage(t, 256)
	genesis := genesisHeader()
	second := childOf(t, genesis)
	third := childOf(t, second)
	importChain(t, s, genesis, second, third)

	require.NoError(t, s.FinalizeHeader(mustHash(t, genesis), nil))
	require.NoError(t, s.FinalizeHeader(mustHash(t, second), nil))
	require.NoError(t, s.FinalizeHeader(mustHash(t, third), nil))

	require.ErrorIs(t, s.FinalizeHeader(mustHash(t, third), nil), ErrNotInFinalizedChain)
}

func TestFinalizeHeader_UnknownBlock(t *testing.T) {
	s := setupStorage(t, 256)
	genesis := genesisHeader()
	importChain(t, s, genesis)

	err := s.FinalizeHeader(types.NewHash([]byte("missing")), nil)
	require.ErrorIs(t, err, ErrUnknownBlock)
}

func TestLastFinalized(t *testing.T) {
	s := setupStorage(t, 256)

	_, err := s.LastFinalized()
	require.ErrorIs(t, err, ErrUnavailableMeta)

	genesis := genesisHeader()
	importChain(t, s, genesis)

	hash, err := s.LastFinalized()
	require.NoError(t, err)
	assert.True(t, hash.IsEmpty())

	require.NoError(t, s.FinalizeHeader(mustHash(t, genesis), nil))
	hash, err = s.LastFinalized()
	require.NoError(t, err)
	assert.Equal(t, mustHash(t, genesis), hash)
}
