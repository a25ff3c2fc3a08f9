package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockNumber_CompactEncoding(t *testing.T) {
	tests := []struct {
		number BlockNumber
		want   []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x04}},
		{42, []byte{0xa8}},
		{63, []byte{0xfc}},
		{64, []byte{0x01, 0x01}},
	}
	for _, tt := range tests {
		encoded, err := EncodeToBytes(tt.number)
		require.NoError(t, err)
		assert.Equal(t, tt.want, encoded, "number %d", tt.number)

		var decoded BlockNumber
		require.NoError(t, DecodeFromBytes(encoded, &decoded))
		assert.Equal(t, tt.number, decoded)
	}
}

func TestAuthorityList_Encoding(t *testing.T) {
	list := AuthorityList{
		{ID: AuthorityID{1}, Weight: 3},
		{ID: AuthorityID{2}, Weight: 4},
	}
	encoded, err := EncodeToBytes(list)
	require.NoError(t, err)
	// Compact length prefix, then per authority 32 id bytes + 8 weight bytes.
	require.Equal(t, 1+2*40, len(encoded))
	assert.Equal(t, byte(0x08), encoded[0])

	var decoded AuthorityList
	require.NoError(t, DecodeFromBytes(encoded, &decoded))
	assert.Equal(t, list, decoded)
}

func TestAuthorityList_TotalWeight(t *testing.T) {
	list := AuthorityList{
		{ID: AuthorityID{1}, Weight: 3},
		{ID: AuthorityID{2}, Weight: 4},
	}
	assert.Equal(t, uint64(7), list.TotalWeight())
	assert.Equal(t, uint64(0), AuthorityList{}.TotalWeight())
}

func TestLightAuthoritySet_Roundtrip(t *testing.T) {
	set := NewLightAuthoritySet(7, AuthorityList{{ID: AuthorityID{9}, Weight: 1}})
	encoded, err := EncodeToBytes(set)
	require.NoError(t, err)

	var decoded LightAuthoritySet
	require.NoError(t, DecodeFromBytes(encoded, &decoded))
	assert.Equal(t, set, decoded)
}

func TestNextAuthoritySet_IncrementsSetID(t *testing.T) {
	prev := NewLightAuthoritySet(3, nil)
	next := NextAuthoritySet(prev, AuthorityList{{ID: AuthorityID{1}, Weight: 1}})
	assert.Equal(t, uint64(4), next.SetID)
	assert.Len(t, next.Authorities, 1)
}

func TestNextAuthorityChange_Roundtrip(t *testing.T) {
	change := NextAuthorityChange{
		NextChangeAt: 12,
		Change: ScheduledChange{
			NextAuthorities: AuthorityList{{ID: AuthorityID{5}, Weight: 2}},
			Delay:           4,
		},
	}
	encoded, err := EncodeToBytes(change)
	require.NoError(t, err)

	var decoded NextAuthorityChange
	require.NoError(t, DecodeFromBytes(encoded, &decoded))
	assert.Equal(t, change, decoded)
}

func TestHash_IsEmpty(t *testing.T) {
	assert.True(t, Hash{}.IsEmpty())
	assert.False(t, NewHash([]byte{1}).IsEmpty())
}
