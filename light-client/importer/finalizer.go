package importer

import (
	"github.com/pkg/errors"

	"github.com/ChorusOne/substrate-light-client/light-client/storage"
	"github.com/ChorusOne/substrate-light-client/shared/bytesutil"
	"github.com/ChorusOne/substrate-light-client/types"
)

// Finalizer walks the chain from the last finalized block to a justified
// target, marking every header on the way. Because the client follows a
// single chain there is exactly one route and nothing is ever retracted.
type Finalizer struct {
	storage *storage.Storage
}

// NewFinalizer returns a finalizer over the given storage.
func NewFinalizer(s *storage.Storage) *Finalizer {
	return &Finalizer{storage: s}
}

// Finalize marks the block with the given hash and all its not-yet-final
// ancestors as finalized, in chain order. The justification is recorded
// with the target block. Finalizing the current finalized head is a no-op.
func (f *Finalizer) Finalize(hash types.Hash, justification []byte) error {
	meta, err := f.storage.Info()
	if err != nil {
		return err
	}
	if hash == meta.FinalizedHash {
		return nil
	}

	route, err := f.routeFromFinalized(hash, meta)
	if err != nil {
		return err
	}
	for _, ancestor := range route[:len(route)-1] {
		if err := f.storage.FinalizeHeader(ancestor, nil); err != nil {
			return err
		}
	}
	if err := f.storage.FinalizeHeader(hash, justification); err != nil {
		return err
	}
	log.WithField("block", bytesutil.Trunc(hash[:])).Info("Finalized block")
	return nil
}

// routeFromFinalized collects the hashes from the oldest unfinalized block
// up to and including the target, by walking parent links backwards.
func (f *Finalizer) routeFromFinalized(target types.Hash, meta *storage.Meta) ([]types.Hash, error) {
	var reversed []types.Hash
	current := target
	for {
		header, err := f.storage.Header(current)
		if err != nil {
			return nil, err
		}
		if header == nil {
			return nil, errors.Wrapf(storage.ErrUnknownBlock,
				"ancestry of %x is not stored", current)
		}
		reversed = append(reversed, current)
		if meta.FinalizedHash.IsEmpty() {
			if current == meta.GenesisHash {
				break
			}
		} else if header.ParentHash == meta.FinalizedHash {
			break
		}
		current = header.ParentHash
	}

	route := make([]types.Hash, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		route = append(route, reversed[i])
	}
	return route, nil
}
