package contract

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// stateKey is the byte slot holding the contract's singleton state.
var stateKey = []byte("client_state")

// Store is the host-provided persistence: flat byte slots with get/set.
type Store interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
}

// State is the contract's persistent singleton. LightClientData is the
// opaque state blob of the light-client state machine; the remaining fields
// are denormalized from it for cheap queries.
type State struct {
	Name                         string `json:"name"`
	Height                       uint32 `json:"height"`
	BestHeaderHash               []byte `json:"best_header_hash"`
	LastFinalizedHeaderHash      []byte `json:"last_finalized_header_hash"`
	BestHeaderCommitmentRoot     []byte `json:"best_header_commitment_root"`
	LightClientData              []byte `json:"light_client_data"`
	MaxNonFinalizedBlocksAllowed uint64 `json:"max_non_finalized_blocks_allowed"`
}

func loadState(store Store) (*State, error) {
	encoded, err := store.Get(stateKey)
	if err != nil {
		return nil, errors.Wrap(err, "load contract state")
	}
	if encoded == nil {
		return nil, errors.New("contract is not initialized")
	}
	state := new(State)
	if err := json.Unmarshal(encoded, state); err != nil {
		return nil, errors.Wrap(err, "decode contract state")
	}
	return state, nil
}

func saveState(store Store, state *State) error {
	encoded, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "encode contract state")
	}
	return errors.Wrap(store.Set(stateKey, encoded), "save contract state")
}
