// Package storage provides the typed views over the columnar store: chain
// metadata, the header table with its number index, and the auxiliary
// registry. It enforces the single-chain import and finalization rules.
package storage

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/ChorusOne/substrate-light-client/light-client/db"
	"github.com/ChorusOne/substrate-light-client/types"
)

// headerCacheSize bounds the decoded-header cache. Reads dominate the
// ancestry walks during finalization; the store itself stays authoritative.
const headerCacheSize = 64

// Meta is the chain metadata record kept at (MetaColumn, "meta").
type Meta struct {
	BestHash           types.Hash
	BestNumber         uint32
	FinalizedHash      types.Hash
	FinalizedNumber    uint32
	GenesisHash        types.Hash
	NonFinalizedBlocks uint64
}

// BlockStatus reports whether a block is part of the tracked chain.
type BlockStatus int

const (
	// StatusUnknown means the block is not in the store.
	StatusUnknown BlockStatus = iota
	// StatusInChain means the block's header is stored.
	StatusInChain
)

// Storage is a view over a columnar store. It is cheap to construct and
// holds no state of its own apart from a read cache.
type Storage struct {
	store                        db.Store
	maxNonFinalizedBlocksAllowed uint64
	headerCache                  *lru.Cache
}

// New wraps store with typed views. maxNonFinalizedBlocksAllowed caps the
// number of imported-but-unfinalized headers.
func New(store db.Store, maxNonFinalizedBlocksAllowed uint64) (*Storage, error) {
	cache, err := lru.New(headerCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "create header cache")
	}
	return &Storage{
		store:                        store,
		maxNonFinalizedBlocksAllowed: maxNonFinalizedBlocksAllowed,
		headerCache:                  cache,
	}, nil
}

// Meta returns the current metadata record, or a zero record if the store
// has never been written to.
func (s *Storage) Meta() (*Meta, error) {
	encoded, err := s.store.Get(MetaColumn, metaKey)
	if err != nil {
		return nil, errors.Wrap(err, "fetch meta")
	}
	meta := new(Meta)
	if encoded == nil {
		return meta, nil
	}
	if err := types.DecodeFromBytes(encoded, meta); err != nil {
		return nil, errors.Wrap(err, "decode meta")
	}
	return meta, nil
}

func putMeta(tx *db.Transaction, meta *Meta) error {
	encoded, err := types.EncodeToBytes(*meta)
	if err != nil {
		return errors.Wrap(err, "encode meta")
	}
	tx.Put(MetaColumn, metaKey, encoded)
	return nil
}

// ImportHeader stores header as the new best block. The header must extend
// the current best header by exactly one; importing a header that is
// already stored is a no-op. Refuses to grow the non-finalized window past
// the configured cap.
func (s *Storage) ImportHeader(header *types.Header) error {
	hash, err := header.Hash()
	if err != nil {
		return err
	}
	status, err := s.Status(hash)
	if err != nil {
		return err
	}
	if status == StatusInChain {
		return nil
	}

	meta, err := s.Meta()
	if err != nil {
		return err
	}
	if meta.NonFinalizedBlocks >= s.maxNonFinalizedBlocksAllowed {
		return ErrTooManyNonFinalized
	}

	firstImportedHeader := meta.BestHash.IsEmpty()
	if firstImportedHeader {
		meta.GenesisHash = hash
	} else {
		parent, err := s.Header(meta.BestHash)
		if err != nil {
			return err
		}
		if parent == nil {
			return errors.Wrap(ErrUnknownBlock, "could not find parent of importing block")
		}
		parentHash, err := parent.Hash()
		if err != nil {
			return err
		}
		if header.ParentHash != parentHash {
			return ErrUnknownParent
		}
		if uint32(header.Number) != meta.BestNumber+1 {
			return errors.Wrapf(ErrNonSequential,
				"expected block number %d, got %d", meta.BestNumber+1, header.Number)
		}
	}

	meta.NonFinalizedBlocks++
	meta.BestHash = hash
	meta.BestNumber = uint32(header.Number)

	encodedHeader, err := types.EncodeToBytes(*header)
	if err != nil {
		return errors.Wrap(err, "encode header")
	}
	numberKey, err := lookupKey(uint32(header.Number))
	if err != nil {
		return err
	}

	tx := db.NewTransaction()
	if err := putMeta(tx, meta); err != nil {
		return err
	}
	tx.Put(HeaderColumn, headerKey(hash), encodedHeader)
	tx.Put(LookupColumn, numberKey, hash[:])
	if err := s.store.Write(tx); err != nil {
		return errors.Wrap(err, "write header import")
	}
	s.headerCache.Add(hash, header)
	return nil
}

// FinalizeHeader marks the block as finalized. The target must be the
// genesis on the first call and a direct child of the last finalized block
// afterwards. The parent's header record is deleted — the linear chain
// never needs it again. A non-nil justification is recorded alongside.
func (s *Storage) FinalizeHeader(hash types.Hash, justification []byte) error {
	header, err := s.Header(hash)
	if err != nil {
		return err
	}
	if header == nil {
		return errors.Wrap(ErrUnknownBlock, "could not find block header to finalize")
	}
	meta, err := s.Meta()
	if err != nil {
		return err
	}
	if meta.BestHash.IsEmpty() {
		return ErrUnavailableMeta
	}

	firstFinalized := meta.FinalizedHash.IsEmpty()
	if firstFinalized {
		if hash != meta.GenesisHash {
			return ErrNonSequentialFinalization
		}
	} else if header.ParentHash != meta.FinalizedHash {
		if uint32(header.Number) <= meta.FinalizedNumber {
			return ErrNotInFinalizedChain
		}
		return ErrNonSequentialFinalization
	}

	meta.NonFinalizedBlocks--
	meta.FinalizedHash = hash
	meta.FinalizedNumber = uint32(header.Number)

	tx := db.NewTransaction()
	if err := putMeta(tx, meta); err != nil {
		return err
	}
	if !firstFinalized {
		parentNumberKey, err := lookupKey(uint32(header.Number) - 1)
		if err != nil {
			return err
		}
		tx.Delete(HeaderColumn, headerKey(header.ParentHash))
		tx.Delete(LookupColumn, parentNumberKey)
	}
	if justification != nil {
		tx.Put(AuxColumn, finalizedJustificationKey, justification)
	}
	if err := s.store.Write(tx); err != nil {
		return errors.Wrap(err, "write finalization")
	}
	if !firstFinalized {
		s.headerCache.Remove(header.ParentHash)
	}
	return nil
}

// LastFinalized returns the hash of the last finalized block.
func (s *Storage) LastFinalized() (types.Hash, error) {
	meta, err := s.Meta()
	if err != nil {
		return types.Hash{}, err
	}
	if meta.BestHash.IsEmpty() {
		return types.Hash{}, ErrUnavailableMeta
	}
	return meta.FinalizedHash, nil
}

// Header returns the header stored under hash, or nil if absent.
func (s *Storage) Header(hash types.Hash) (*types.Header, error) {
	if cached, ok := s.headerCache.Get(hash); ok {
		return cached.(*types.Header), nil
	}
	encoded, err := s.store.Get(HeaderColumn, headerKey(hash))
	if err != nil {
		return nil, errors.Wrap(err, "fetch header")
	}
	if encoded == nil {
		return nil, nil
	}
	header := new(types.Header)
	if err := types.DecodeFromBytes(encoded, header); err != nil {
		return nil, errors.Wrap(err, "decode header")
	}
	s.headerCache.Add(hash, header)
	return header, nil
}

// HeaderByNumber returns the header at the given height, or nil if absent.
func (s *Storage) HeaderByNumber(number uint32) (*types.Header, error) {
	hash, err := s.Hash(number)
	if err != nil || hash == nil {
		return nil, err
	}
	return s.Header(*hash)
}

// Hash returns the hash of the stored header at the given height, or nil.
func (s *Storage) Hash(number uint32) (*types.Hash, error) {
	key, err := lookupKey(number)
	if err != nil {
		return nil, err
	}
	encoded, err := s.store.Get(LookupColumn, key)
	if err != nil {
		return nil, errors.Wrap(err, "fetch number lookup")
	}
	if encoded == nil {
		return nil, nil
	}
	hash := types.NewHash(encoded)
	return &hash, nil
}

// Number returns the height of the stored header with the given hash, or
// nil if the header is absent.
func (s *Storage) Number(hash types.Hash) (*uint32, error) {
	header, err := s.Header(hash)
	if err != nil || header == nil {
		return nil, err
	}
	number := uint32(header.Number)
	return &number, nil
}

// Status reports whether the block with the given hash is in the chain.
func (s *Storage) Status(hash types.Hash) (BlockStatus, error) {
	header, err := s.Header(hash)
	if err != nil {
		return StatusUnknown, err
	}
	if header == nil {
		return StatusUnknown, nil
	}
	return StatusInChain, nil
}

// Info returns a snapshot of the chain metadata.
func (s *Storage) Info() (*Meta, error) {
	return s.Meta()
}
