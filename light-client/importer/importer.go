// Package importer writes verified headers into storage, carries the
// verifier's authority-set decisions through to the auxiliary registry and
// drives finalization when a justification is present.
package importer

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ChorusOne/substrate-light-client/light-client/storage"
	"github.com/ChorusOne/substrate-light-client/light-client/verification"
	"github.com/ChorusOne/substrate-light-client/shared/bytesutil"
	"github.com/ChorusOne/substrate-light-client/types"
)

// ErrNoAuthoritySet is returned when a justification arrives before any
// authority set was persisted; without a trust anchor nothing can be
// finalized.
var ErrNoAuthoritySet = errors.New("no previous authority set")

// AuxInfo carries the two justification outcomes the caller reacts to
// without treating the import itself as failed.
type AuxInfo struct {
	// BadJustification is not set by ImportBlock; a malformed
	// justification is reported through NeedsFinalityProof like every
	// other rejected one.
	BadJustification bool
	// NeedsFinalityProof is set when the justification failed to decode or
	// did not validate within the current authority set; the caller should
	// obtain a finality proof instead.
	NeedsFinalityProof bool
}

// Result describes the outcome of one block import.
type Result struct {
	// AlreadyKnown is set when the header was in the store before the
	// call; nothing was modified.
	AlreadyKnown bool
	Number       uint32
	Aux          AuxInfo
}

// BlockImport applies verified blocks to a storage view.
type BlockImport struct {
	storage *storage.Storage
}

// New returns a block importer over the given storage.
func New(s *storage.Storage) *BlockImport {
	return &BlockImport{storage: s}
}

// ImportBlock persists the verified header as the new best block, stores a
// freshly scheduled authority change, enacts a matured one, and — when a
// justification is supplied — verifies it and finalizes up to the imported
// header. Justification failures that are local to the current authority
// set are reported through Result.Aux rather than as errors.
func (bi *BlockImport) ImportBlock(params *verification.BlockImportParams, justification []byte) (*Result, error) {
	hash, err := params.Header.Hash()
	if err != nil {
		return nil, err
	}
	number := uint32(params.Header.Number)

	status, err := bi.storage.Status(hash)
	if err != nil {
		return nil, err
	}
	if status == storage.StatusInChain {
		return &Result{AlreadyKnown: true, Number: number}, nil
	}

	if err := bi.storage.ImportHeader(&params.Header); err != nil {
		return nil, errors.Wrap(err, "client import")
	}

	if params.NextAuthorityChange != nil {
		if err := bi.storage.PutNextAuthorityChange(*params.NextAuthorityChange); err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{
			"block":   bytesutil.Trunc(hash[:]),
			"enactAt": params.NextAuthorityChange.NextChangeAt,
		}).Debug("Scheduled authority change registered")
	}

	if params.EnactingChange != nil {
		current, err := bi.storage.AuthoritySet()
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, ErrNoAuthoritySet
		}
		next := types.NextAuthoritySet(*current, params.EnactingChange.Change.NextAuthorities)
		if err := bi.storage.PutAuthoritySet(next); err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{
			"block": bytesutil.Trunc(hash[:]),
			"setId": next.SetID,
		}).Info("Enacted authority set change")
	}

	result := &Result{Number: number}
	if justification == nil {
		return result, nil
	}

	set, err := bi.storage.AuthoritySet()
	if err != nil {
		return nil, err
	}
	if set == nil {
		return nil, ErrNoAuthoritySet
	}
	if _, err := verification.VerifyJustification(justification, set.SetID, set.Authorities, hash, number); err != nil {
		if errors.Is(err, verification.ErrBadJustification) {
			log.WithField("block", bytesutil.Trunc(hash[:])).
				WithError(err).Warn("Rejected justification")
			result.Aux.NeedsFinalityProof = true
			return result, nil
		}
		return nil, err
	}

	finalizer := NewFinalizer(bi.storage)
	if err := finalizer.Finalize(hash, justification); err != nil {
		return nil, errors.Wrap(err, "client import")
	}
	return result, nil
}
