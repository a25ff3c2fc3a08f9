package storage

import (
	"github.com/pkg/errors"

	"github.com/ChorusOne/substrate-light-client/light-client/db"
	"github.com/ChorusOne/substrate-light-client/types"
)

// The auxiliary registry persists the consensus bookkeeping that is not a
// header: the trusted authority set and the pending authority change. Both
// live in reserved slots of the aux column and are overwritten, never
// appended.

// GetAux returns the raw value of an aux slot, or nil if the slot is empty.
func (s *Storage) GetAux(key []byte) ([]byte, error) {
	value, err := s.store.Get(AuxColumn, key)
	if err != nil {
		return nil, errors.Wrap(err, "fetch aux slot")
	}
	return value, nil
}

// InsertAux writes and deletes raw aux slots in one atomic batch.
func (s *Storage) InsertAux(insert map[string][]byte, remove [][]byte) error {
	tx := db.NewTransaction()
	for key, value := range insert {
		tx.Put(AuxColumn, []byte(key), value)
	}
	for _, key := range remove {
		tx.Delete(AuxColumn, key)
	}
	return errors.Wrap(s.store.Write(tx), "write aux slots")
}

// AuthoritySet returns the current trusted authority set, or nil if the
// client was never bootstrapped.
func (s *Storage) AuthoritySet() (*types.LightAuthoritySet, error) {
	encoded, err := s.GetAux(authoritySetKey)
	if err != nil {
		return nil, err
	}
	if encoded == nil {
		return nil, nil
	}
	set := new(types.LightAuthoritySet)
	if err := types.DecodeFromBytes(encoded, set); err != nil {
		return nil, errors.Wrap(err, "decode authority set")
	}
	return set, nil
}

// PutAuthoritySet overwrites the trusted authority set.
func (s *Storage) PutAuthoritySet(set types.LightAuthoritySet) error {
	encoded, err := types.EncodeToBytes(set)
	if err != nil {
		return errors.Wrap(err, "encode authority set")
	}
	tx := db.NewTransaction()
	tx.Put(AuxColumn, authoritySetKey, encoded)
	return errors.Wrap(s.store.Write(tx), "write authority set")
}

// NextAuthorityChange returns the pending authority change, or nil if no
// change is scheduled.
func (s *Storage) NextAuthorityChange() (*types.NextAuthorityChange, error) {
	encoded, err := s.GetAux(nextAuthorityChangeKey)
	if err != nil {
		return nil, err
	}
	if encoded == nil {
		return nil, nil
	}
	change := new(types.NextAuthorityChange)
	if err := types.DecodeFromBytes(encoded, change); err != nil {
		return nil, errors.Wrap(err, "decode pending authority change")
	}
	return change, nil
}

// PutNextAuthorityChange overwrites the pending authority change.
func (s *Storage) PutNextAuthorityChange(change types.NextAuthorityChange) error {
	encoded, err := types.EncodeToBytes(change)
	if err != nil {
		return errors.Wrap(err, "encode pending authority change")
	}
	tx := db.NewTransaction()
	tx.Put(AuxColumn, nextAuthorityChangeKey, encoded)
	return errors.Wrap(s.store.Write(tx), "write pending authority change")
}

// DeleteNextAuthorityChange removes the pending authority change, if any.
func (s *Storage) DeleteNextAuthorityChange() error {
	tx := db.NewTransaction()
	tx.Delete(AuxColumn, nextAuthorityChangeKey)
	return errors.Wrap(s.store.Write(tx), "delete pending authority change")
}

// FinalizedJustification returns the justification recorded with the last
// finalized block, or nil.
func (s *Storage) FinalizedJustification() ([]byte, error) {
	return s.GetAux(finalizedJustificationKey)
}
