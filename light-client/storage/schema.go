package storage

import "github.com/ChorusOne/substrate-light-client/types"

// Column layout of the backing store. The ids and their order are part of
// the state-blob wire format.
const (
	// MetaColumn holds the single chain-metadata record.
	MetaColumn uint32 = 0
	// HeaderColumn maps header hash to encoded header.
	HeaderColumn uint32 = 1
	// AuxColumn holds free-form auxiliary slots.
	AuxColumn uint32 = 2
	// LookupColumn maps encoded block number to header hash.
	LookupColumn uint32 = 3

	// NumColumns is the number of columns a light-client store carries.
	NumColumns uint32 = 4
)

var (
	metaKey = []byte("meta")

	// Reserved aux slots.
	authoritySetKey           = []byte("light_authority_set")
	nextAuthorityChangeKey    = []byte("pending_change")
	finalizedJustificationKey = []byte("finalized_justification")
)

func headerKey(hash types.Hash) []byte {
	return hash[:]
}

func lookupKey(number uint32) ([]byte, error) {
	return types.EncodeToBytes(number)
}
