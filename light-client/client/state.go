package client

import (
	"github.com/pkg/errors"

	"github.com/ChorusOne/substrate-light-client/light-client/db"
	"github.com/ChorusOne/substrate-light-client/types"
)

// genesisData is the marker record appended to the store encoding in the
// state blob. It currently carries no fields; the record is kept so the
// blob layout stays (store, genesis marker) and can grow without a format
// break.
type genesisData struct{}

// encodeState serializes the store followed by the genesis marker into the
// state blob handed back to the host.
func encodeState(store *db.MemoryStore) ([]byte, error) {
	encoded, err := store.Encode()
	if err != nil {
		return nil, errors.Wrap(err, "encode store")
	}
	marker, err := types.EncodeToBytes(genesisData{})
	if err != nil {
		return nil, errors.Wrap(err, "encode genesis marker")
	}
	return append(encoded, marker...), nil
}

// decodeState rebuilds the store from a state blob produced by encodeState.
func decodeState(blob []byte) (*db.MemoryStore, error) {
	store, err := db.DecodeStore(blob)
	if err != nil {
		return nil, errors.Wrap(err, "decode store")
	}
	return store, nil
}
