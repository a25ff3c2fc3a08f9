// Package client is the light-client state machine façade. Every operation
// takes the serialized state blob in and hands a new one back; no state
// survives between calls anywhere else.
package client

import (
	"github.com/pkg/errors"

	"github.com/ChorusOne/substrate-light-client/light-client/db"
	"github.com/ChorusOne/substrate-light-client/light-client/importer"
	"github.com/ChorusOne/substrate-light-client/light-client/storage"
	"github.com/ChorusOne/substrate-light-client/light-client/verification"
	"github.com/ChorusOne/substrate-light-client/shared/bytesutil"
	"github.com/ChorusOne/substrate-light-client/types"
)

// ErrInvalidJustification is surfaced to the caller when a block carried a
// justification that did not validate within the tracked authority set; the
// previous state blob remains the caller's source of truth.
var ErrInvalidJustification = errors.New("justification is invalid or authority set is not updated")

// Status is the observational snapshot returned by CurrentStatus.
type Status struct {
	BestHeader          *types.Header
	FinalizedHeader     *types.Header
	AuthoritySet        *types.LightAuthoritySet
	NextAuthorityChange *types.NextAuthorityChange
}

// Initialize bootstraps a fresh light client from a trusted header and
// authority set and returns the serialized state.
func Initialize(
	initialHeader types.Header,
	initialAuthoritySet types.LightAuthoritySet,
	maxNonFinalizedBlocksAllowed uint64,
) ([]byte, error) {
	store := db.NewMemoryStore(storage.NumColumns)
	stor, err := storage.New(store, maxNonFinalizedBlocksAllowed)
	if err != nil {
		return nil, err
	}
	if err := stor.PutAuthoritySet(initialAuthoritySet); err != nil {
		return nil, err
	}
	if err := stor.ImportHeader(&initialHeader); err != nil {
		return nil, err
	}
	hash, err := initialHeader.Hash()
	if err != nil {
		return nil, err
	}
	log.WithField("block", bytesutil.Trunc(hash[:])).Info("Initialized light client")
	return encodeState(store)
}

// IngestFinalizedHeader advances the light client by one header, optionally
// finalizing through the supplied justification. On success it returns the
// import result together with the new state blob; on any failure no blob is
// returned and the caller keeps its previous state.
func IngestFinalizedHeader(
	state []byte,
	header types.Header,
	justification []byte,
	maxNonFinalizedBlocksAllowed uint64,
) (*importer.Result, []byte, error) {
	store, err := decodeState(state)
	if err != nil {
		return nil, nil, err
	}
	stor, err := storage.New(store, maxNonFinalizedBlocksAllowed)
	if err != nil {
		return nil, nil, err
	}

	hash, err := header.Hash()
	if err != nil {
		return nil, nil, err
	}
	status, err := stor.Status(hash)
	if err != nil {
		return nil, nil, err
	}
	if status == storage.StatusInChain {
		blob, err := encodeState(store)
		if err != nil {
			return nil, nil, err
		}
		return &importer.Result{AlreadyKnown: true, Number: uint32(header.Number)}, blob, nil
	}

	verifier := verification.NewVerifier(stor)
	params, err := verifier.Verify(&header)
	if err != nil {
		return nil, nil, err
	}

	result, err := importer.New(stor).ImportBlock(params, justification)
	if err != nil {
		return nil, nil, err
	}
	if result.Aux.BadJustification || result.Aux.NeedsFinalityProof {
		return nil, nil, ErrInvalidJustification
	}

	blob, err := encodeState(store)
	if err != nil {
		return nil, nil, err
	}
	return result, blob, nil
}

// CurrentStatus decodes the state blob and reports the chain position and
// authority-set lifecycle without mutating anything.
func CurrentStatus(state []byte) (*Status, error) {
	store, err := decodeState(state)
	if err != nil {
		return nil, err
	}
	stor, err := storage.New(store, 1)
	if err != nil {
		return nil, err
	}

	status := new(Status)
	meta, err := stor.Info()
	if err != nil {
		return nil, err
	}
	if !meta.BestHash.IsEmpty() {
		if status.BestHeader, err = stor.Header(meta.BestHash); err != nil {
			return nil, err
		}
	}
	if !meta.FinalizedHash.IsEmpty() {
		if status.FinalizedHeader, err = stor.Header(meta.FinalizedHash); err != nil {
			return nil, err
		}
	}
	if status.AuthoritySet, err = stor.AuthoritySet(); err != nil {
		return nil, err
	}
	if status.NextAuthorityChange, err = stor.NextAuthorityChange(); err != nil {
		return nil, err
	}
	return status, nil
}
